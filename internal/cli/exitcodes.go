package cli

import (
	"errors"

	"github.com/yaklabco/xmlsyntax/internal/ui/pretty"
	"github.com/yaklabco/xmlsyntax/pkg/runner"
)

// Exit codes for xmlsyntax.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitParseErrors indicates documents were parsed but are not
	// well-formed.
	ExitParseErrors = 1

	// ExitParseWarnings indicates warnings were found in strict mode.
	ExitParseWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrIssuesFound is returned when diagnostics decide the exit code. It
// carries no message worth logging.
var ErrIssuesFound = errors.New("issues found")

// ErrReparseMismatch is returned when an incremental reparse does not
// produce the tree a full parse does.
var ErrReparseMismatch = errors.New("incremental reparse differs from full parse")

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	errs, warnings := pretty.SeverityCounts(result.Stats)

	if errs > 0 {
		return ExitParseErrors
	}
	if strict && warnings > 0 {
		return ExitParseWarnings
	}
	if result.Stats.FilesErrored > 0 {
		return ExitIOError
	}

	return ExitSuccess
}

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// ExitCode returns the process exit code for an error returned by a
// command. Errors without an attached code exit with 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
