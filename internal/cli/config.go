package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/xmlsyntax/internal/configloader"
	"github.com/yaklabco/xmlsyntax/internal/logging"
	"github.com/yaklabco/xmlsyntax/pkg/config"
)

// commandContext returns the command's context with the default logger
// attached.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logging.Default())
}

// loadConfig resolves the configuration for cmd, with cliCfg holding the
// values set by its flags.
func loadConfig(ctx context.Context, cmd *cobra.Command, cliCfg *config.Config) (*config.Config, string, error) {
	logger := logging.FromContext(ctx)

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", withExitCode(ExitConfigError,
			errors.Join(errors.New("failed to load configuration"), err))
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	if cfg.LogLevel != "" && !cmd.Flags().Changed("debug") {
		logging.SetLevel(cfg.LogLevel)
	}

	return cfg, workDir, nil
}

// colorMode returns the persistent --color flag when set on the command
// line, then the configured color mode, then auto.
func colorMode(cmd *cobra.Command, cfg *config.Config) string {
	mode, err := cmd.Flags().GetString("color")
	if err == nil && mode != "" && cmd.Flags().Changed("color") {
		return mode
	}
	if cfg != nil && cfg.Color.IsValid() {
		return string(cfg.Color)
	}
	if err != nil || mode == "" {
		return string(config.ColorAuto)
	}
	return mode
}
