// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldFormat     = "format"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"
	FieldExclude    = "exclude"
	FieldExtensions = "extensions"

	// Parse fields.
	FieldKind        = "kind"
	FieldBytes       = "bytes"
	FieldDiagnostics = "diagnostics"
	FieldDuration    = "duration"
	FieldJobs        = "jobs"

	// Incremental reparse fields.
	FieldReason        = "reason"
	FieldChanges       = "changes"
	FieldDirtyRatio    = "dirty_ratio"
	FieldTokensReused  = "tokens_reused"
	FieldTokensScanned = "tokens_scanned"
	FieldNodesReused   = "nodes_reused"

	// Cache fields.
	FieldCacheHits   = "cache_hits"
	FieldCacheMisses = "cache_misses"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
