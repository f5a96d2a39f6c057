package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/xmlsyntax/internal/logging"
	"github.com/yaklabco/xmlsyntax/internal/ui/pretty"
	"github.com/yaklabco/xmlsyntax/pkg/config"
	"github.com/yaklabco/xmlsyntax/pkg/fsutil"
	"github.com/yaklabco/xmlsyntax/pkg/parser"
	"github.com/yaklabco/xmlsyntax/pkg/reporter"
	"github.com/yaklabco/xmlsyntax/pkg/runner"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// stdinPath names standard input on the command line.
const stdinPath = "-"

type parseFlags struct {
	format      string
	noDiagnostics bool
}

func newParseCommand() *cobra.Command {
	var cfg config.Config
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the syntax tree of an XML file",
		Long: `Parse a single XML file and print its syntax tree.

Every node is listed with its kind and span; tokens also show their text.
With --trivia, whitespace, line breaks and skipped text attached to each
token are listed below it. Use - to read from standard input.

Examples:
  xmlsyntax parse pom.xml
  xmlsyntax parse --trivia broken.xml
  xmlsyntax parse --format json doc.xml
  cat doc.xml | xmlsyntax parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], &cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")
	cmd.Flags().BoolVar(&cfg.ShowTrivia, "trivia", false, "include trivia in the tree")
	cmd.Flags().BoolVar(&flags.noDiagnostics, "no-diagnostics", false, "do not list diagnostics after a text tree")

	return cmd
}

func runParse(cmd *cobra.Command, path string, cliCfg *config.Config, flags *parseFlags) error {
	ctx := commandContext(cmd)

	if cmd.Flags().Changed("format") {
		cliCfg.Format = config.OutputFormat(flags.format)
		if !cliCfg.Format.IsValid() {
			return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid format %q: must be text, json or yaml", flags.format))
		}
	}

	cfg, _, err := loadConfig(ctx, cmd, cliCfg)
	if err != nil {
		return err
	}

	p := parser.NewFromConfig(cfg, parser.WithLogger(logging.FromContext(ctx)))

	var outcome runner.FileOutcome
	if path == stdinPath {
		outcome, err = parseStdin(p, cmd.InOrStdin())
		if err != nil {
			return withExitCode(ExitIOError, err)
		}
	} else {
		outcome = runner.ParseFile(ctx, p, path)
		if outcome.Error != nil {
			return withExitCode(ExitIOError, fmt.Errorf("read %s: %w", path, outcome.Error))
		}
	}

	out := cmd.OutOrStdout()
	switch cfg.Format {
	case config.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(dumpTree(outcome.Root, cfg.ShowTrivia)); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case config.FormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(config.YAMLIndent())
		if err := encoder.Encode(dumpTree(outcome.Root, cfg.ShowTrivia)); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("close encoder: %w", err)
		}
	default:
		writeTextTree(out, &outcome, colorMode(cmd, cfg), cfg.ShowTrivia, !flags.noDiagnostics)
	}

	return nil
}

func parseStdin(p *parser.Parser, in io.Reader) (runner.FileOutcome, error) {
	content, err := io.ReadAll(in)
	if err != nil {
		return runner.FileOutcome{}, fmt.Errorf("read standard input: %w", err)
	}
	src := &fsutil.Source{Path: "<stdin>", Size: int64(len(content)), Text: string(content)}
	root := syntax.CreateRed(p.Parse(src.Buffer()))
	return runner.FileOutcome{
		Path:        src.Path,
		Source:      src,
		Root:        root,
		Diagnostics: root.AllDiagnostics(),
	}, nil
}

func writeTextTree(out io.Writer, outcome *runner.FileOutcome, color string, trivia, diagnostics bool) {
	styles := pretty.NewStyles(pretty.IsColorEnabled(color, out))

	fmt.Fprint(out, styles.FormatTree(outcome.Root, pretty.TreeOptions{
		ShowTrivia: trivia,
		Width:      reporter.TerminalWidth(out),
	}))

	if !diagnostics || len(outcome.Diagnostics) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.FormatFileHeader(outcome.Path, len(outcome.Diagnostics)))
	for _, diag := range outcome.Diagnostics {
		fmt.Fprint(out, styles.FormatDiagnostic(outcome.Path, diag, outcome.Locate(diag.Span), true))
	}
}
