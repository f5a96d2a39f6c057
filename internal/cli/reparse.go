package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/xmlsyntax/internal/logging"
	"github.com/yaklabco/xmlsyntax/internal/ui/pretty"
	"github.com/yaklabco/xmlsyntax/pkg/config"
	"github.com/yaklabco/xmlsyntax/pkg/fsutil"
	"github.com/yaklabco/xmlsyntax/pkg/parser"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// ErrInvalidEdit is returned for a malformed --edit value.
var ErrInvalidEdit = errors.New("invalid edit")

type reparseFlags struct {
	edits  []string
	write  bool
	backup bool
	force  bool
	tree   bool
}

func newReparseCommand() *cobra.Command {
	var cfg config.Config
	flags := &reparseFlags{}

	cmd := &cobra.Command{
		Use:   "reparse FILE --edit START:LENGTH:TEXT...",
		Short: "Apply edits to an XML file and reparse it incrementally",
		Long: `Apply one or more edits to an XML file, reparse the result incrementally
from the tree of the original text and check that it matches a parse from
scratch.

Each edit replaces LENGTH bytes at byte offset START with TEXT. All offsets
refer to the original file and edits must not overlap. TEXT may be written
as a double-quoted Go string to include escapes such as \n.

Examples:
  xmlsyntax reparse doc.xml --edit 10:0:'<b/>'
  xmlsyntax reparse doc.xml --edit 0:4:'<x' --edit 20:4:'</x>'
  xmlsyntax reparse doc.xml --edit '5:0:"\n  "' --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReparse(cmd, args[0], &cfg, flags)
		},
	}

	cmd.Flags().StringArrayVar(&flags.edits, "edit", nil, "edit as START:LENGTH:TEXT (repeatable)")
	cmd.Flags().BoolVar(&flags.write, "write", false, "write the edited text back to the file")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep a backup of the original when writing")
	cmd.Flags().BoolVar(&flags.force, "force", false, "write even if the file changed since it was read")
	cmd.Flags().BoolVar(&flags.tree, "tree", false, "print the reparsed tree")
	cmd.Flags().BoolVar(&cfg.ShowTrivia, "trivia", false, "include trivia in the printed tree")

	return cmd
}

// parseEdit parses START:LENGTH:TEXT.
func parseEdit(s string) (text.Change, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return text.Change{}, fmt.Errorf("%w %q: want START:LENGTH:TEXT", ErrInvalidEdit, s)
	}

	start, err := strconv.Atoi(parts[0])
	if err != nil || start < 0 {
		return text.Change{}, fmt.Errorf("%w %q: bad start offset", ErrInvalidEdit, s)
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil || length < 0 {
		return text.Change{}, fmt.Errorf("%w %q: bad length", ErrInvalidEdit, s)
	}

	newText := parts[2]
	if strings.HasPrefix(newText, `"`) {
		newText, err = strconv.Unquote(newText)
		if err != nil {
			return text.Change{}, fmt.Errorf("%w %q: %w", ErrInvalidEdit, s, err)
		}
	}

	return text.Change{Span: text.Span{Start: start, Length: length}, NewText: newText}, nil
}

func runReparse(cmd *cobra.Command, path string, cliCfg *config.Config, flags *reparseFlags) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	if len(flags.edits) == 0 {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("%w: at least one --edit is required", ErrInvalidEdit))
	}
	changes := make([]text.Change, 0, len(flags.edits))
	for _, e := range flags.edits {
		c, err := parseEdit(e)
		if err != nil {
			return withExitCode(ExitInvalidUsage, err)
		}
		changes = append(changes, c)
	}

	cfg, _, err := loadConfig(ctx, cmd, cliCfg)
	if err != nil {
		return err
	}

	src, err := fsutil.ReadSource(ctx, path)
	if err != nil {
		return withExitCode(ExitIOError, fmt.Errorf("read %s: %w", path, err))
	}

	newText, ranges, err := text.ApplyChanges(src.Text, changes)
	if err != nil {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("apply edits: %w", err))
	}

	p := parser.NewFromConfig(cfg, parser.WithLogger(logger))
	old := p.Parse(src.Buffer())

	buf := text.NewStringBuffer(newText)
	began := time.Now()
	reparsed, stats := p.Reparse(buf, ranges, old)
	elapsed := time.Since(began)

	logger.Debug("reparsed",
		logging.FieldPath, path,
		logging.FieldChanges, len(ranges),
		logging.FieldDuration, elapsed,
	)

	matches := reparsed.IsEquivalentTo(p.Parse(buf))
	root := syntax.CreateRed(reparsed)

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd, cfg), out))
	if flags.tree {
		fmt.Fprint(out, styles.FormatTree(root, pretty.TreeOptions{ShowTrivia: cfg.ShowTrivia}))
		fmt.Fprintln(out)
	}
	writeReparseStats(out, styles, reparseReport{
		edits:       len(ranges),
		stats:       stats,
		diagnostics: len(root.AllDiagnostics()),
		matches:     matches,
	})

	if !matches {
		return withExitCode(ExitInternalError, fmt.Errorf("%s: %w", path, ErrReparseMismatch))
	}

	if flags.write {
		written, err := src.Save(ctx, newText, fsutil.SaveOptions{Backup: flags.backup, Force: flags.force})
		if err != nil {
			return withExitCode(ExitIOError, fmt.Errorf("write %s: %w", path, err))
		}
		if written {
			logger.Info("wrote file", logging.FieldPath, path)
		}
	}

	return nil
}

type reparseReport struct {
	edits       int
	stats       parser.Stats
	diagnostics int
	matches     bool
}

func writeReparseStats(out io.Writer, styles *pretty.Styles, r reparseReport) {
	row := func(label, value string) {
		fmt.Fprintf(out, "%s %s\n", styles.Dim.Render(fmt.Sprintf("%-16s", label+":")), value)
	}

	row("Edits", strconv.Itoa(r.edits))
	row("Tokens reused", strconv.Itoa(r.stats.TokensReused))
	row("Tokens scanned", strconv.Itoa(r.stats.TokensScanned))
	row("Nodes reused", strconv.Itoa(r.stats.NodesReused))
	row("Full reparse", yesNo(r.stats.FullReparse))
	row("Diagnostics", strconv.Itoa(r.diagnostics))

	if r.matches {
		row("Full parse", styles.Success.Render("identical"))
	} else {
		row("Full parse", styles.Failure.Render("different"))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
