package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/xmlsyntax/pkg/runner"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// FormatDiagnostic formats a single diagnostic for terminal output:
//
//	path:line:col  error  message  (XML0017 MismatchedEndTag)
func (s *Styles) FormatDiagnostic(path string, diag syntax.LocatedDiagnostic, loc runner.Location, showContext bool) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(path),
		loc.Start.Line,
		loc.Start.Column,
	)

	fmt.Fprintf(&builder, "  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(diag.ID.Severity()),
		s.Message.Render(diag.Description()),
		s.Code.Render("("+diag.ID.Code()+" "+diag.ID.String()+")"),
	)

	if showContext && loc.Line != "" {
		width := 1
		if loc.End.Line == loc.Start.Line && loc.End.Column > loc.Start.Column {
			width = loc.End.Column - loc.Start.Column
		}
		builder.WriteString(s.FormatSourceContext(loc.Line, loc.Start.Column, width))
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev syntax.Severity) string {
	switch sev {
	case syntax.SeverityError:
		return s.Error.Render("error")
	case syntax.SeverityWarning:
		return s.Warning.Render("warning")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a marker under width
// bytes starting at column. Tabs are expanded to tabWidth spaces.
func (s *Styles) FormatSourceContext(line string, column, width int) string {
	var builder strings.Builder

	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(expandTabs(line)) + "\n")

	if column > 0 {
		prefix := line[:min(column-1, len(line))]
		pad := len(expandTabs(prefix)) + max(column-1-len(line), 0)
		marker := "^" + strings.Repeat("~", max(width-1, 0))
		builder.WriteString(indent + strings.Repeat(" ", pad) + s.Caret.Render(marker) + "\n")
	}

	return builder.String()
}

const tabWidth = 4

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		word := "issues"
		if issueCount == 1 {
			word = "issue"
		}
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", issueCount, word))
	}
	return header
}
