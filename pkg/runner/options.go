// Package runner finds XML files and parses them concurrently.
package runner

import "github.com/yaklabco/xmlsyntax/pkg/parser"

// Options controls a multi-file run.
type Options struct {
	// Paths are files or directories to process. Empty means the working
	// directory.
	Paths []string

	// WorkingDir resolves relative paths. Empty means the process working
	// directory.
	WorkingDir string

	// Extensions are extra file extensions, lowercase with a leading dot,
	// treated as XML in addition to the ones language detection knows.
	Extensions []string

	// IncludeGlobs restrict discovered files when non-empty. ExcludeGlobs
	// skip files and directories. Both are relative to WorkingDir.
	IncludeGlobs []string
	ExcludeGlobs []string

	// FollowSymlinks walks into symlinked directories.
	FollowSymlinks bool

	// Jobs is the number of concurrent workers. Zero or less means one per
	// CPU.
	Jobs int

	// Parser parses each file. Nil means a parser with default options.
	Parser *parser.Parser
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
