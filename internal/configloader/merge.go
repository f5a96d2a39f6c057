package configloader

import (
	"slices"

	"github.com/yaklabco/xmlsyntax/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Toggles: override overwrites base if override is set, so false is kept
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Cache.Enabled != nil {
		result.Cache.Enabled = override.Cache.Enabled
	}
	if override.Cache.Size != 0 {
		result.Cache.Size = override.Cache.Size
	}
	if override.Incremental.Enabled != nil {
		result.Incremental.Enabled = override.Incremental.Enabled
	}
	if override.Incremental.ReuseNodes != nil {
		result.Incremental.ReuseNodes = override.Incremental.ReuseNodes
	}
	if override.Incremental.MaxDirtyRatio != 0 {
		result.Incremental.MaxDirtyRatio = override.Incremental.MaxDirtyRatio
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Extensions != nil {
		result.Extensions = slices.Clone(override.Extensions)
	}
	if override.Exclude != nil {
		result.Exclude = slices.Clone(override.Exclude)
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.ShowTrivia {
		result.ShowTrivia = true
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
