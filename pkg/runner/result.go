package runner

import (
	"github.com/yaklabco/xmlsyntax/pkg/fsutil"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// FileOutcome is the parse of one file.
type FileOutcome struct {
	Path string

	// Source and Root are nil when Error is set.
	Source *fsutil.Source
	Root   *syntax.Node

	// Diagnostics are every diagnostic of the tree in document order.
	Diagnostics []syntax.LocatedDiagnostic

	Error error

	lines *text.LineIndex
}

// Lines returns the line index of the source text, built on first use.
func (o *FileOutcome) Lines() *text.LineIndex {
	if o.Source == nil {
		return nil
	}
	if o.lines == nil {
		o.lines = text.NewLineIndex(o.Source.Text)
	}
	return o.lines
}

// Location is a span resolved to line and column positions.
type Location struct {
	Start text.Position
	End   text.Position

	// Line is the source line containing Start, without its line break.
	Line string
}

// Locate resolves a span of the file text.
func (o *FileOutcome) Locate(span text.Span) Location {
	lines := o.Lines()
	if lines == nil {
		return Location{}
	}
	loc := Location{
		Start: lines.PositionAt(span.Start),
		End:   lines.PositionAt(span.End()),
	}
	if info, ok := lines.Line(loc.Start.Line); ok {
		loc.Line = o.Source.Text[info.StartOffset:info.NewlineStart]
	}
	return loc
}

// Stats aggregates a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int
	FilesWithIssues int

	DiagnosticsTotal  int
	DiagnosticsByCode map[syntax.ErrorID]int
}

// Result is the outcome of a run, files sorted by path.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// HasIssues reports whether any file has diagnostics.
func (r *Result) HasIssues() bool {
	return r != nil && r.Stats.DiagnosticsTotal > 0
}

// HasErrors reports whether any file could not be read.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	r.Stats.FilesProcessed++

	if len(outcome.Diagnostics) > 0 {
		r.Stats.FilesWithIssues++
	}
	r.Stats.DiagnosticsTotal += len(outcome.Diagnostics)
	for _, d := range outcome.Diagnostics {
		r.Stats.DiagnosticsByCode[d.ID]++
	}
}
