package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/xmlsyntax/internal/ui/pretty"
	"github.com/yaklabco/xmlsyntax/pkg/runner"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

func TestSeverityCounts(t *testing.T) {
	t.Parallel()

	errors, warnings := pretty.SeverityCounts(runner.Stats{
		DiagnosticsByCode: map[syntax.ErrorID]int{
			syntax.ErrMissingEndTag:   3,
			syntax.ErrBareAmpersand:   1,
			syntax.ErrDTDNotSupported: 2,
		},
	})
	assert.Equal(t, 4, errors)
	assert.Equal(t, 2, warnings)
}

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{
			name:  "clean",
			stats: runner.Stats{FilesProcessed: 3},
			want:  "No issues found (3 files checked)\n",
		},
		{
			name:  "clean single file with read error",
			stats: runner.Stats{FilesProcessed: 1, FilesErrored: 2},
			want:  "No issues found (1 file checked), 2 unreadable\n",
		},
		{
			name: "issues",
			stats: runner.Stats{
				FilesProcessed:   4,
				FilesWithIssues:  2,
				DiagnosticsTotal: 5,
				DiagnosticsByCode: map[syntax.ErrorID]int{
					syntax.ErrMissingEndTag:   4,
					syntax.ErrDTDNotSupported: 1,
				},
			},
			want: "5 issues (4 errors, 1 warning) in 2 files\n",
		},
		{
			name: "single issue",
			stats: runner.Stats{
				FilesProcessed:    1,
				FilesWithIssues:   1,
				DiagnosticsTotal:  1,
				DiagnosticsByCode: map[syntax.ErrorID]int{syntax.ErrMultipleRoots: 1},
			},
			want: "1 issue (1 error) in 1 file\n",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, styles.FormatSummaryOneLine(testCase.stats))
		})
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	result := styles.FormatSummary(runner.Stats{
		FilesProcessed:   10,
		FilesWithIssues:  3,
		DiagnosticsTotal: 6,
		DiagnosticsByCode: map[syntax.ErrorID]int{
			syntax.ErrMultipleRoots: 2,
			syntax.ErrMissingEndTag: 4,
		},
	})

	assert.Contains(t, result, "Files parsed:      10\n")
	assert.Contains(t, result, "Files with issues: 3\n")
	assert.Contains(t, result, "Total issues:      6\n")
	assert.Regexp(t, `XML0016 MissingEndTag +4\n(?s:.*)XML0019 MultipleRoots +2\n`, result)
	assert.Contains(t, result, "Documents are not well-formed")
	assert.NotContains(t, result, "unreadable")
}

func TestFormatSummary_Outcomes(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	clean := styles.FormatSummary(runner.Stats{FilesProcessed: 2})
	assert.Contains(t, clean, "All documents are well-formed")
	assert.NotContains(t, clean, "Files with issues:")

	warned := styles.FormatSummary(runner.Stats{
		FilesProcessed:    1,
		FilesWithIssues:   1,
		DiagnosticsTotal:  1,
		DiagnosticsByCode: map[syntax.ErrorID]int{syntax.ErrDTDNotSupported: 1},
	})
	assert.Contains(t, warned, "Documents parsed with warnings")

	unreadable := styles.FormatSummary(runner.Stats{FilesErrored: 1})
	assert.Contains(t, unreadable, "Files unreadable:  1\n")
	assert.Contains(t, unreadable, "Documents are not well-formed")
}
