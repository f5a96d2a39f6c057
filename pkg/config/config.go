// Package config defines the configuration of the XML parser and its
// inspection tools. These types are plain data with YAML tags; discovery and
// merging live in internal/configloader.
package config

import (
	"errors"
	"fmt"
	"math/bits"
)

// Validation errors.
var (
	ErrInvalidCacheSize  = errors.New("invalid cache size")
	ErrInvalidDirtyRatio = errors.New("invalid max dirty ratio")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidColorMode  = errors.New("invalid color mode")
	ErrInvalidJobs       = errors.New("invalid job count")
)

// OutputFormat selects how trees and diagnostics are printed.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// ColorMode controls styled terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid returns true if the color mode is known.
func (m ColorMode) IsValid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// Defaults.
const (
	DefaultCacheSize     = 1 << 16
	DefaultMaxDirtyRatio = 0.5
	DefaultLogLevel      = "info"
)

// CacheConfig controls the green node cache.
type CacheConfig struct {
	// Enabled turns node interning on or off. Unset means on.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`

	// Size is the number of cache entries, rounded up to a power of two.
	Size int `mapstructure:"size" yaml:"size,omitempty"`
}

// IsEnabled reports whether the cache is on.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// IncrementalConfig controls reuse of the previous tree on reparse.
type IncrementalConfig struct {
	// Enabled turns incremental reparsing on or off. Unset means on.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`

	// ReuseNodes allows whole subtrees to be reused, not only tokens.
	// Unset means on.
	ReuseNodes *bool `mapstructure:"reuse_nodes" yaml:"reuse_nodes,omitempty"`

	// MaxDirtyRatio is the share of the old document that may need
	// rescanning before a full parse is done instead.
	MaxDirtyRatio float64 `mapstructure:"max_dirty_ratio" yaml:"max_dirty_ratio,omitempty"`
}

// IsEnabled reports whether incremental reparsing is on.
func (c IncrementalConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ReusesNodes reports whether subtree reuse is on.
func (c IncrementalConfig) ReusesNodes() bool {
	return c.ReuseNodes == nil || *c.ReuseNodes
}

// Config is the root configuration structure.
type Config struct {
	// Cache configures node interning.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Incremental configures reparsing.
	Incremental IncrementalConfig `mapstructure:"incremental" yaml:"incremental"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level,omitempty"`

	// Extensions lists additional file extensions treated as XML by check.
	Extensions []string `mapstructure:"extensions" yaml:"extensions,omitempty"`

	// Exclude lists glob patterns of paths check skips.
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty"`

	// Jobs is the number of files check parses at once. Zero means one
	// per CPU.
	Jobs int `mapstructure:"jobs" yaml:"jobs,omitempty"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// Color controls styled output.
	Color ColorMode `mapstructure:"-" yaml:"-"`

	// ShowTrivia includes trivia in tree dumps.
	ShowTrivia bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	enabled := true
	reuse := true
	return &Config{
		Cache: CacheConfig{
			Enabled: &enabled,
			Size:    DefaultCacheSize,
		},
		Incremental: IncrementalConfig{
			Enabled:       &enabled,
			ReuseNodes:    &reuse,
			MaxDirtyRatio: DefaultMaxDirtyRatio,
		},
		LogLevel: DefaultLogLevel,
		Format:   FormatText,
		Color:    ColorAuto,
	}
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size %d: %w", c.Cache.Size, ErrInvalidCacheSize))
	}
	if r := c.Incremental.MaxDirtyRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("incremental.max_dirty_ratio %g must be within [0, 1]: %w", r, ErrInvalidDirtyRatio))
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalidLogLevel))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs %d: %w", c.Jobs, ErrInvalidJobs))
	}
	if c.Format != "" && !c.Format.IsValid() {
		errs = append(errs, fmt.Errorf("format %q: %w", c.Format, ErrInvalidFormat))
	}
	if c.Color != "" && !c.Color.IsValid() {
		errs = append(errs, fmt.Errorf("color %q: %w", c.Color, ErrInvalidColorMode))
	}
	return errors.Join(errs...)
}

// CacheSizeRounded reports whether the configured cache size will be
// rounded up to a power of two.
func (c *Config) CacheSizeRounded() bool {
	return c.Cache.Size > 0 && bits.OnesCount(uint(c.Cache.Size)) != 1
}
