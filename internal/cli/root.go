// Package cli provides the Cobra command structure for xmlsyntax.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/xmlsyntax/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root xmlsyntax command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "xmlsyntax",
		Short: "Lossless, error-tolerant XML syntax trees",
		Long: `xmlsyntax parses XML into full-fidelity syntax trees that keep every byte
of the input, including whitespace, comments and malformed markup.

Parsing never fails: problems are reported as diagnostics attached to the
nodes involved. Edited documents can be reparsed incrementally, reusing the
parts of the previous tree that the edit cannot have affected.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newCheckCommand(info))
	rootCmd.AddCommand(newReparseCommand())
	rootCmd.AddCommand(newCodesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
