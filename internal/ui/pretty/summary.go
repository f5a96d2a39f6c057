package pretty

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/xmlsyntax/pkg/runner"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

// SeverityCounts splits the diagnostics of a run by severity.
func SeverityCounts(stats runner.Stats) (errors, warnings int) {
	for id, count := range stats.DiagnosticsByCode {
		switch id.Severity() {
		case syntax.SeverityWarning:
			warnings += count
		default:
			errors += count
		}
	}
	return errors, warnings
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 issues (4 errors, 1 warning) in 2 files".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.DiagnosticsTotal == 0 {
		msg := s.Success.Render("No issues found") + s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, pluralFiles(stats.FilesProcessed)))
		if stats.FilesErrored > 0 {
			msg += ", " + s.Failure.Render(fmt.Sprintf("%d unreadable", stats.FilesErrored))
		}
		return msg + "\n"
	}

	issueWord := "issues"
	if stats.DiagnosticsTotal == 1 {
		issueWord = "issue"
	}

	var severityParts []string
	errors, warnings := SeverityCounts(stats)
	if errors > 0 {
		severityParts = append(severityParts, s.Error.Render(plural(errors, "error")))
	}
	if warnings > 0 {
		severityParts = append(severityParts, s.Warning.Render(plural(warnings, "warning")))
	}

	head := fmt.Sprintf("%d %s", stats.DiagnosticsTotal, issueWord)
	if len(severityParts) > 0 {
		head += " (" + strings.Join(severityParts, ", ") + ")"
	}
	parts := []string{
		fmt.Sprintf("%s in %d %s", head, stats.FilesWithIssues, pluralFiles(stats.FilesWithIssues)),
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d unreadable", stats.FilesErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files parsed:      " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)) + "\n")

	if stats.FilesWithIssues > 0 {
		builder.WriteString("  Files with issues: " +
			s.Failure.Render(strconv.Itoa(stats.FilesWithIssues)) + "\n")
	}

	if stats.FilesErrored > 0 {
		builder.WriteString("  Files unreadable:  " +
			s.Failure.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Total issues:      " +
		s.SummaryValue.Render(strconv.Itoa(stats.DiagnosticsTotal)) + "\n")

	ids := make([]syntax.ErrorID, 0, len(stats.DiagnosticsByCode))
	for id := range stats.DiagnosticsByCode {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		label := fmt.Sprintf("    %s %-28s", id.Code(), id.String())
		count := strconv.Itoa(stats.DiagnosticsByCode[id])
		if id.Severity() == syntax.SeverityWarning {
			count = s.Warning.Render(count)
		} else {
			count = s.Error.Render(count)
		}
		builder.WriteString(s.Code.Render(label) + " " + count + "\n")
	}

	builder.WriteString("\n")

	errors, warnings := SeverityCounts(stats)
	switch {
	case errors > 0 || stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Documents are not well-formed"))
	case warnings > 0:
		builder.WriteString(s.Warning.Render("Documents parsed with warnings"))
	default:
		builder.WriteString(s.Success.Render("All documents are well-formed"))
	}
	builder.WriteString("\n")

	return builder.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func pluralFiles(n int) string {
	if n == 1 {
		return wordFile
	}
	return wordFiles
}
