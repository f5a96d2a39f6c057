package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/xmlsyntax/pkg/runner"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 4 // FILE, LOC, MESSAGE, CODE
	minFileWidth     = 20
	minLocWidth      = 8
	minMessageWidth  = 35
	minCodeWidth     = 7
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// TableRow is a single row in the diagnostic table.
type TableRow struct {
	File     string
	Location string
	Message  string
	Code     string
	Severity syntax.Severity
}

// TableFormatter formats diagnostics as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int

	// DisplayPath maps a file path to the text shown in the FILE column.
	DisplayPath func(string) string
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable formats the diagnostics of a run as one table, files
// separated by light rules.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil {
		return ""
	}

	groups := t.collectRows(result)
	if len(groups) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(groups)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths) + "\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator) + "\n")

	for i, group := range groups {
		if i > 0 {
			builder.WriteString(t.formatSeparator(widths, lightSeparator) + "\n")
		}
		for _, row := range group {
			builder.WriteString(t.formatRow(row, widths) + "\n")
		}
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator) + "\n")
	builder.WriteString(t.formatLegend() + "\n")

	return builder.String()
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats) string {
	parts := []string{fmt.Sprintf("%d %s parsed", stats.FilesProcessed, pluralFiles(stats.FilesProcessed))}

	errors, warnings := SeverityCounts(stats)
	if errors > 0 {
		parts = append(parts, t.styles.Error.Render(plural(errors, "error")))
	}
	if warnings > 0 {
		parts = append(parts, t.styles.Warning.Render(plural(warnings, "warning")))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, t.styles.Failure.Render(fmt.Sprintf("%d unreadable", stats.FilesErrored)))
	}

	return " " + strings.Join(parts, " | ")
}

func (t *TableFormatter) collectRows(result *runner.Result) [][]TableRow {
	var groups [][]TableRow

	for i := range result.Files {
		file := &result.Files[i]
		if file.Error != nil || len(file.Diagnostics) == 0 {
			continue
		}

		path := file.Path
		if t.DisplayPath != nil {
			path = t.DisplayPath(path)
		}

		rows := make([]TableRow, 0, len(file.Diagnostics))
		for _, diag := range file.Diagnostics {
			loc := file.Locate(diag.Span)
			rows = append(rows, TableRow{
				File:     path,
				Location: fmt.Sprintf("%d:%d", loc.Start.Line, loc.Start.Column),
				Message:  diag.Description(),
				Code:     diag.ID.Code(),
				Severity: diag.ID.Severity(),
			})
		}
		groups = append(groups, rows)
	}

	return groups
}

type columnWidths struct {
	file    int
	loc     int
	message int
	code    int
}

func (w columnWidths) total() int {
	return w.file + w.loc + w.message + w.code + tablePadding*tableColumnCount
}

// calculateColumnWidths fits the columns to the content, then shrinks the
// message and file columns to the terminal width.
func (t *TableFormatter) calculateColumnWidths(groups [][]TableRow) columnWidths {
	widths := columnWidths{
		file:    minFileWidth,
		loc:     minLocWidth,
		message: minMessageWidth,
		code:    minCodeWidth,
	}

	for _, group := range groups {
		for _, row := range group {
			widths.file = max(widths.file, len(row.File))
			widths.loc = max(widths.loc, len(row.Location))
			widths.message = max(widths.message, len(row.Message))
			widths.code = max(widths.code, len(row.Code))
		}
	}

	if excess := widths.total() - t.termWidth; excess > 0 {
		widths.message = max(minMessageWidth, widths.message-excess)
	}
	if excess := widths.total() - t.termWidth; excess > 0 {
		widths.file = max(minFileWidth, widths.file-excess)
	}

	return widths
}

func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s ",
		widths.file, "FILE",
		widths.loc, "LOC",
		widths.message, "MESSAGE",
		widths.code, "CODE",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, widths.total()))
}

func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	content := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s ",
		widths.file, truncateFilePath(row.File, widths.file),
		widths.loc, truncateString(row.Location, widths.loc),
		widths.message, truncateString(row.Message, widths.message),
		widths.code, row.Code,
	)
	return t.getRowStyle(row.Severity).Render(content)
}

func (t *TableFormatter) getRowStyle(severity syntax.Severity) lipgloss.Style {
	switch severity {
	case syntax.SeverityError:
		return t.styles.TableErrorRow
	case syntax.SeverityWarning:
		return t.styles.TableWarnRow
	default:
		return lipgloss.NewStyle()
	}
}

func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: run 'xmlsyntax codes' to list diagnostic codes")
	}

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s = error  %s = warning",
			t.styles.TableErrorRow.Render(" error "), t.styles.TableWarnRow.Render(" warning ")),
	)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, keeping the file name.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
