package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/xmlsyntax/internal/ui/pretty"
	"github.com/yaklabco/xmlsyntax/pkg/runner"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

func mismatched() (syntax.LocatedDiagnostic, runner.Location) {
	diag := syntax.LocatedDiagnostic{
		Diagnostic: syntax.NewDiagnostic(syntax.ErrMismatchedEndTag, "toor", "root"),
		Span:       text.NewSpan(6, 13),
		Kind:       syntax.KindEndTag,
	}
	loc := runner.Location{
		Start: text.Position{Line: 1, Column: 7},
		End:   text.Position{Line: 1, Column: 14},
		Line:  "<root></toor>",
	}
	return diag, loc
}

func TestFormatDiagnostic_Basic(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	diag, loc := mismatched()

	result := styles.FormatDiagnostic("doc.xml", diag, loc, false)
	assert.Equal(t,
		"  doc.xml:1:7  error  end tag \"toor\" does not match start tag \"root\"  (XML0017 MismatchedEndTag)\n",
		result)
}

func TestFormatDiagnostic_WithContext(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	diag, loc := mismatched()

	result := styles.FormatDiagnostic("doc.xml", diag, loc, true)
	assert.Contains(t, result, "\n        <root></toor>\n")
	assert.Contains(t, result, "\n              ^~~~~~\n")
}

func TestFormatDiagnostic_Warning(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	diag := syntax.LocatedDiagnostic{Diagnostic: syntax.NewDiagnostic(syntax.ErrDTDNotSupported)}

	result := styles.FormatDiagnostic("doc.xml", diag, runner.Location{
		Start: text.Position{Line: 2, Column: 1},
		End:   text.Position{Line: 4, Column: 3},
		Line:  "<!DOCTYPE r [",
	}, true)
	assert.Contains(t, result, "doc.xml:2:1  warning  DTD declarations are not supported")
	assert.Contains(t, result, "\n        ^\n")
}

func TestFormatSeverity(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "error", styles.FormatSeverity(syntax.SeverityError))
	assert.Equal(t, "warning", styles.FormatSeverity(syntax.SeverityWarning))
	assert.Equal(t, "fatal", styles.FormatSeverity(syntax.Severity("fatal")))
}

func TestFormatSourceContext(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		name   string
		line   string
		column int
		width  int
		want   string
	}{
		{"caret", "test line", 6, 1, "        test line\n             ^\n"},
		{"underline", "test line", 1, 4, "        test line\n        ^~~~\n"},
		{"tabs are expanded", "\t<a>", 2, 3, "            <a>\n            ^~~\n"},
		{"past the end", "ab", 4, 1, "        ab\n           ^\n"},
		{"no column", "test line", 0, 1, "        test line\n"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, styles.FormatSourceContext(testCase.line, testCase.column, testCase.width))
		})
	}
}

func TestFormatFileHeader(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "docs/a.xml (5 issues)", styles.FormatFileHeader("docs/a.xml", 5))
	assert.Equal(t, "docs/a.xml (1 issue)", styles.FormatFileHeader("docs/a.xml", 1))
	assert.Equal(t, "docs/a.xml", styles.FormatFileHeader("docs/a.xml", 0))
}
