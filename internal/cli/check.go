package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/xmlsyntax/internal/logging"
	"github.com/yaklabco/xmlsyntax/pkg/config"
	"github.com/yaklabco/xmlsyntax/pkg/parser"
	"github.com/yaklabco/xmlsyntax/pkg/reporter"
	"github.com/yaklabco/xmlsyntax/pkg/runner"
)

type checkFlags struct {
	format         string
	include        []string
	strict         bool
	noContext      bool
	noSummary      bool
	compact        bool
	followSymlinks bool
}

func newCheckCommand(info BuildInfo) *cobra.Command {
	var cfg config.Config
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report diagnostics for XML files",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, &cfg, flags, info)
		},
	}

	addCheckFlags(cmd, &cfg, flags)

	return cmd
}

const checkLongDescription = `Parse XML files and report every diagnostic found.

By default, checks all XML-family files (.xml, .xsd, .svg, .plist, project
files such as .csproj, ...) in the current directory and subdirectories.
Hidden files and directories are skipped unless named explicitly.

The exit code is 1 when any document is not well-formed, 2 when --strict is
set and only warnings were found, and 74 when a file could not be read.

Examples:
  xmlsyntax check                       # Check current directory
  xmlsyntax check config/ pom.xml       # Check a directory and a file
  xmlsyntax check --exclude 'vendor/**' # Skip a tree
  xmlsyntax check --format sarif        # SARIF for code scanning
  xmlsyntax check --format summary      # Counts per code and file`

func runCheck(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *checkFlags, info BuildInfo) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	// Parse output format before doing any work.
	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid format: %w", err))
	}

	cfg, workDir, err := loadConfig(ctx, cmd, cliCfg)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		logging.FieldJobs, cfg.Jobs,
		logging.FieldExclude, cfg.Exclude,
		logging.FieldExtensions, cfg.Extensions,
	)

	checkRunner := runner.New(parser.NewFromConfig(cfg, parser.WithLogger(logger)))

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		Extensions:     cfg.Extensions,
		IncludeGlobs:   flags.include,
		ExcludeGlobs:   cfg.Exclude,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           cfg.Jobs,
	}

	logger.Debug("starting check run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
	)

	result, err := checkRunner.Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("check run failed"), err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       colorMode(cmd, cfg),
		ShowContext: !flags.noContext,
		ShowSummary: !flags.noSummary,
		GroupByFile: true,
		Compact:     flags.compact,
		WorkingDir:  workDir,
		Version:     info.Version,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	if code := ExitCodeFromResult(result, flags.strict); code != ExitSuccess {
		return withExitCode(code, ErrIssuesFound)
	}

	return nil
}

func addCheckFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, sarif, summary")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&cfg.Exclude, "exclude", nil, "glob patterns to skip")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "only check files matching these glob patterns")
	cmd.Flags().StringSliceVar(&cfg.Extensions, "ext", nil, "extra file extensions to treat as XML (e.g. .xaml)")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "walk into symlinked directories")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "omit the closing summary line")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
}
