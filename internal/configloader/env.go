package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/xmlsyntax/pkg/config"
)

// envVarPrefix is the prefix for all xmlsyntax environment variables.
const envVarPrefix = "XMLSYNTAX_"

// envSetter applies one environment value to the configuration.
type envSetter struct {
	description string
	apply       func(cfg *config.Config, value string) error
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envSetter{
	"CACHE_ENABLED": {"Enable the node cache: true or false", func(cfg *config.Config, v string) error {
		return setBool(&cfg.Cache.Enabled, v)
	}},
	"CACHE_SIZE": {"Number of node cache entries", func(cfg *config.Config, v string) error {
		return setInt(&cfg.Cache.Size, v)
	}},
	"INCREMENTAL_ENABLED": {"Enable incremental reparsing: true or false", func(cfg *config.Config, v string) error {
		return setBool(&cfg.Incremental.Enabled, v)
	}},
	"INCREMENTAL_REUSE_NODES": {"Reuse whole subtrees on reparse: true or false", func(cfg *config.Config, v string) error {
		return setBool(&cfg.Incremental.ReuseNodes, v)
	}},
	"INCREMENTAL_MAX_DIRTY_RATIO": {"Share of the document that may be rescanned, 0 to 1", func(cfg *config.Config, v string) error {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
		cfg.Incremental.MaxDirtyRatio = ratio
		return nil
	}},
	"LOG_LEVEL": {"Log level: debug, info, warn, or error", func(cfg *config.Config, v string) error {
		cfg.LogLevel = v
		return nil
	}},
	"EXTENSIONS": {"Comma-separated list of extra XML file extensions", func(cfg *config.Config, v string) error {
		cfg.Extensions = parseSliceValue(v)
		return nil
	}},
	"EXCLUDE": {"Comma-separated list of glob patterns check skips", func(cfg *config.Config, v string) error {
		cfg.Exclude = parseSliceValue(v)
		return nil
	}},
	"JOBS": {"Number of files check parses at once", func(cfg *config.Config, v string) error {
		return setInt(&cfg.Jobs, v)
	}},
	"FORMAT": {"Output format: text, json, or yaml", func(cfg *config.Config, v string) error {
		cfg.Format = config.OutputFormat(v)
		return nil
	}},
	"COLOR": {"Color output: auto, always, or never", func(cfg *config.Config, v string) error {
		cfg.Color = config.ColorMode(v)
		return nil
	}},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with XMLSYNTAX_ (e.g., XMLSYNTAX_LOG_LEVEL).
func LoadFromEnv(cfg *config.Config) error {
	return loadFromLookup(cfg, os.LookupEnv)
}

func loadFromLookup(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range sortedEnvSuffixes() {
		envVar := envVarPrefix + suffix
		value, ok := lookup(envVar)
		if !ok || value == "" {
			continue
		}
		if err := envMappings[suffix].apply(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", envVar, err)
		}
	}
	return nil
}

func sortedEnvSuffixes() []string {
	suffixes := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}

func setBool(field **bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", value)
	}
	*field = &b
	return nil
}

func setInt(field *int, value string) error {
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer %q", value)
	}
	*field = i
	return nil
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, m := range envMappings {
		vars[envVarPrefix+suffix] = m.description
	}
	return vars
}
