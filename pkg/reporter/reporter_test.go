package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/xmlsyntax/pkg/reporter"
	"github.com/yaklabco/xmlsyntax/pkg/runner"
)

// runFixture parses a small tree with two malformed documents:
// mismatched.xml has one mismatched end tag, nested/open.xml one missing
// end tag.
func runFixture(t *testing.T) (*runner.Result, string) {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"ok.xml":          "<r/>",
		"mismatched.xml":  "<root></toor>",
		"nested/open.xml": "<root>\n  <a>\n</root>",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	result, err := runner.New(nil).Run(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	require.Equal(t, 2, result.Stats.DiagnosticsTotal)
	return result, dir
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{input: "", want: reporter.FormatText},
		{input: "text", want: reporter.FormatText},
		{input: "table", want: reporter.FormatTable},
		{input: "json", want: reporter.FormatJSON},
		{input: "sarif", want: reporter.FormatSARIF},
		{input: "summary", want: reporter.FormatSummary},
		{input: "diff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, reporter.Format(tt.input).IsValid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []reporter.Format{"", reporter.FormatText, reporter.FormatTable, reporter.FormatJSON, reporter.FormatSARIF, reporter.FormatSummary} {
		rep, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: format, Color: "never"})
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, rep)
	}

	rep, err := reporter.New(reporter.Options{Format: "xml"})
	require.Error(t, err)
	assert.Nil(t, rep)
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	result, dir := runFixture(t)

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowContext: true,
		ShowSummary: true,
		GroupByFile: true,
		WorkingDir:  dir,
	})

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	output := buf.String()
	assert.Contains(t, output, "mismatched.xml (1 issue)\n")
	assert.Contains(t, output, "  mismatched.xml:1:7  error  end tag \"toor\" does not match start tag \"root\"  (XML0017 MismatchedEndTag)\n")
	assert.Contains(t, output, filepath.Join("nested", "open.xml")+" (1 issue)\n")
	assert.Contains(t, output, `element "a" has no end tag  (XML0016 MissingEndTag)`)
	assert.Contains(t, output, "        <root></toor>\n              ^~~~~~\n")
	assert.NotContains(t, output, "ok.xml")
	assert.True(t, strings.HasSuffix(output, "2 issues (2 errors) in 2 files\n"))
}

func TestTextReporter_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, "No files to check.\n", buf.String())
}

func TestTextReporter_ReadError(t *testing.T) {
	t.Parallel()

	result := &runner.Result{Files: []runner.FileOutcome{
		runner.ParseFile(context.Background(), nil, filepath.Join(t.TempDir(), "gone.xml")),
	}}

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never"})
	_, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "gone.xml: error: ")
}

func TestTableReporter(t *testing.T) {
	t.Parallel()

	result, dir := runFixture(t)

	var buf bytes.Buffer
	rep := reporter.NewTableReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true, WorkingDir: dir})

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	output := buf.String()
	assert.Regexp(t, `FILE +LOC +MESSAGE +CODE`, output)
	assert.Regexp(t, `mismatched\.xml +1:7 `, output)
	assert.Contains(t, output, "XML0017")
	assert.Contains(t, output, "XML0016")
	assert.Contains(t, output, " 3 files parsed | 2 errors\n")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	result, dir := runFixture(t)

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, WorkingDir: dir})

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Files, 3)
	assert.Equal(t, "mismatched.xml", output.Files[0].Path)
	require.Len(t, output.Files[0].Diagnostics, 1)
	assert.Equal(t, reporter.JSONDiagnostic{
		Code:        "XML0017",
		Name:        "MismatchedEndTag",
		Severity:    "error",
		Message:     `end tag "toor" does not match start tag "root"`,
		Node:        "EndTag",
		StartOffset: 6,
		EndOffset:   13,
		StartLine:   1,
		StartColumn: 7,
		EndLine:     1,
		EndColumn:   14,
	}, output.Files[0].Diagnostics[0])

	assert.Equal(t, reporter.JSONSummary{
		FilesChecked:    3,
		FilesWithIssues: 2,
		TotalIssues:     2,
		BySeverity:      map[string]int{"error": 2},
		ByCode:          map[string]int{"XML0016": 1, "XML0017": 1},
	}, output.Summary)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	result, _ := runFixture(t)

	var buf bytes.Buffer
	_, err := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true}).Report(context.Background(), result)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 1)
}

func TestSARIFReporter(t *testing.T) {
	t.Parallel()

	result, dir := runFixture(t)

	var buf bytes.Buffer
	rep := reporter.NewSARIFReporter(reporter.Options{Writer: &buf, WorkingDir: dir, Version: "1.2.3"})

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var output reporter.SARIFOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.Len(t, output.Runs, 1)

	run := output.Runs[0]
	assert.Equal(t, "xmlsyntax", run.Tool.Driver.Name)
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)

	require.Len(t, run.Results, 2)
	res := run.Results[1]
	assert.Equal(t, "XML0016", res.RuleID)
	assert.Equal(t, "XML0016", run.Tool.Driver.Rules[res.RuleIndex].ID)
	assert.Equal(t, "nested/open.xml", res.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, "error", res.Level)
}

func TestSummaryReporter(t *testing.T) {
	t.Parallel()

	result, dir := runFixture(t)

	var buf bytes.Buffer
	rep := reporter.NewSummaryReporter(reporter.Options{Writer: &buf, Color: "never", WorkingDir: dir})

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	output := buf.String()
	assert.Contains(t, output, "Codes Summary")
	assert.Regexp(t, `XML0016 MissingEndTag +1\n`, output)
	assert.Regexp(t, `XML0017 MismatchedEndTag +1\n`, output)
	assert.Regexp(t, `mismatched\.xml +1 +0\n`, output)
	assert.Contains(t, output, "Total: 2 issues (2 errors) in 2 files\n")

	buf.Reset()
	_, err = rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No issues found\n", buf.String())
}
