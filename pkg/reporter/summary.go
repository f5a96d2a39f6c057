package reporter

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/xmlsyntax/internal/ui/pretty"
	"github.com/yaklabco/xmlsyntax/pkg/runner"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// Table layout constants for summary output.
const (
	tableWidth        = 80
	codeColWidth      = 40
	fileColWidth      = 56
	numColWidth       = 7
	warnColWidth      = 8
	maxFilePathLength = 54
)

// SummaryReporter writes counts per diagnostic code and per file instead
// of the diagnostics themselves.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

type fileCount struct {
	path     string
	errors   int
	warnings int
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil || result.Stats.DiagnosticsTotal == 0 {
		if _, err := fmt.Fprintln(r.out, r.styles.Success.Render("No issues found")); err != nil {
			return 0, fmt.Errorf("write summary: %w", err)
		}
		return 0, nil
	}

	var builder strings.Builder
	r.writeCodeTable(&builder, result.Stats)
	builder.WriteString("\n")
	r.writeFileTable(&builder, result)
	builder.WriteString("\n")
	builder.WriteString(r.styles.Bold.Render("Total: ") + strings.TrimSuffix(r.styles.FormatSummaryOneLine(result.Stats), "\n") + "\n")

	if _, err := io.WriteString(r.out, builder.String()); err != nil {
		return 0, fmt.Errorf("write summary: %w", err)
	}
	return result.Stats.DiagnosticsTotal, nil
}

func (r *SummaryReporter) writeCodeTable(builder *strings.Builder, stats runner.Stats) {
	ids := make([]syntax.ErrorID, 0, len(stats.DiagnosticsByCode))
	for id := range stats.DiagnosticsByCode {
		ids = append(ids, id)
	}
	// Most frequent first, then by code.
	slices.SortFunc(ids, func(a, b syntax.ErrorID) int {
		if c := cmp.Compare(stats.DiagnosticsByCode[b], stats.DiagnosticsByCode[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	builder.WriteString(r.styles.Bold.Render("Codes Summary") + "\n")
	builder.WriteString(r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)) + "\n")
	fmt.Fprintf(builder, "%s %s\n",
		r.styles.TableHeader.Render(padRight("Code", codeColWidth)),
		r.styles.TableHeader.Render(padLeft("Count", numColWidth)),
	)
	builder.WriteString(r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)) + "\n")

	for _, id := range ids {
		name := padRight(id.Code()+" "+id.String(), codeColWidth)
		if id.Severity() == syntax.SeverityWarning {
			name = r.styles.TableWarnRow.Render(name)
		} else {
			name = r.styles.TableErrorRow.Render(name)
		}
		fmt.Fprintf(builder, "%s %s\n", name, padLeft(strconv.Itoa(stats.DiagnosticsByCode[id]), numColWidth))
	}
}

func (r *SummaryReporter) writeFileTable(builder *strings.Builder, result *runner.Result) {
	var files []fileCount
	for i := range result.Files {
		file := &result.Files[i]
		if len(file.Diagnostics) == 0 {
			continue
		}
		count := fileCount{path: r.opts.displayPath(file.Path)}
		for _, d := range file.Diagnostics {
			if d.ID.Severity() == syntax.SeverityWarning {
				count.warnings++
			} else {
				count.errors++
			}
		}
		files = append(files, count)
	}
	slices.SortStableFunc(files, func(a, b fileCount) int {
		return cmp.Compare(b.errors+b.warnings, a.errors+a.warnings)
	})

	builder.WriteString(r.styles.Bold.Render("Files Summary") + "\n")
	builder.WriteString(r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)) + "\n")
	fmt.Fprintf(builder, "%s %s %s\n",
		r.styles.TableHeader.Render(padRight("File", fileColWidth)),
		r.styles.TableHeader.Render(padLeft("Errors", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Warnings", warnColWidth)),
	)
	builder.WriteString(r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)) + "\n")

	for _, file := range files {
		path := file.path
		if len(path) > maxFilePathLength {
			path = "…" + path[len(path)-(maxFilePathLength-1):]
		}

		padded := padRight(path, fileColWidth)
		if file.errors > 0 {
			padded = r.styles.TableErrorRow.Render(padded)
		} else {
			padded = r.styles.TableWarnRow.Render(padded)
		}

		fmt.Fprintf(builder, "%s %s %s\n",
			padded,
			padLeft(strconv.Itoa(file.errors), numColWidth),
			padLeft(strconv.Itoa(file.warnings), warnColWidth),
		)
	}
}

// padRight pads a string to the given width with spaces on the right.
// This must be called BEFORE applying ANSI styles.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string to the given width with spaces on the left.
// This must be called BEFORE applying ANSI styles.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
