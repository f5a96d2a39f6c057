package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/xmlsyntax/internal/logging"
	"github.com/yaklabco/xmlsyntax/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

// defaultConfigFile is the project configuration file init writes.
const defaultConfigFile = ".xmlsyntax.yml"

const configHeader = `# xmlsyntax configuration.
#
# cache:        green node interning (size is rounded up to a power of two)
# incremental:  reuse of the previous tree when reparsing edited text
# exclude:      glob patterns skipped by 'xmlsyntax check'
# extensions:   extra file extensions treated as XML
# jobs:         files parsed at once by 'xmlsyntax check' (0 = one per CPU)`

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new xmlsyntax configuration file",
		Long: `Create a new .xmlsyntax.yml configuration file in the current directory
holding the default settings, ready to be customized.

Examples:
  xmlsyntax init                        Create .xmlsyntax.yml
  xmlsyntax init --output custom.yml    Write to a custom file path`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigFile, "Output file path")

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", flags.output)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	cfg := config.NewConfig()
	cfg.Exclude = []string{"**/node_modules/**"}
	content, err := cfg.ToYAMLWithHeader(configHeader)
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return withExitCode(ExitIOError, fmt.Errorf("write file: %w", err))
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'xmlsyntax codes' to see all diagnostic codes")

	return nil
}
