package parser_test

import (
	"bytes"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/xmlsyntax/pkg/parser"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// incrementalDocs are edited at every offset by the exhaustive tests.
var incrementalDocs = []string{
	"<a><b/></a>",
	"<a x=\"1\" y='2'>t&amp;u</a>",
	"<?xml version=\"1.0\"?>\n<r>\n  <c>1</c>\n  <c>2</c>\n</r>\n",
	"<r><!-- c --><![CDATA[d]]><?p q?></r>",
	"<a><a></a></a>",
	"<p:a p:b=\"v\">\n\t<p:c/>\n</p:a>",
	"x<a/>y",
}

// editChars are inserted at every offset. They include every delimiter
// that changes how the surrounding text scans.
var editChars = []string{"<", ">", "/", "!", "?", "\"", "'", "=", ":", "&", ";", "-", "]", "a", " ", "\n"}

func newTestParser(opts ...parser.Option) *parser.Parser {
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.DebugLevel})
	return parser.New(append([]parser.Option{parser.WithLogger(logger)}, opts...)...)
}

// assertEquivalent reparses newText from old and compares the result with
// a parse from scratch.
func assertEquivalent(t *testing.T, p *parser.Parser, old *syntax.GreenNode, newText string, changes []text.ChangeRange) *syntax.GreenNode {
	t.Helper()

	buf := text.NewStringBuffer(newText)
	got, _ := p.Reparse(buf, changes, old)
	want := p.Parse(buf)

	gotRed, wantRed := syntax.CreateRed(got), syntax.CreateRed(want)
	require.Equal(t, newText, gotRed.ToFullString())
	if diff := cmp.Diff(shapes(wantRed), shapes(gotRed)); diff != "" {
		t.Fatalf("reparse of %q after %v differs from a full parse (-want +got):\n%s", newText, changes, diff)
	}
	return got
}

func TestReparse_SingleInsertions(t *testing.T) {
	t.Parallel()

	for _, src := range incrementalDocs {
		t.Run(src, func(t *testing.T) {
			t.Parallel()

			p := newTestParser()
			old := p.Parse(text.NewStringBuffer(src))
			for pos := 0; pos <= len(src); pos++ {
				for _, ch := range editChars {
					newText := src[:pos] + ch + src[pos:]
					changes := []text.ChangeRange{text.NewChangeRange(text.NewSpan(pos, pos), len(ch))}
					assertEquivalent(t, p, old, newText, changes)
				}
			}
		})
	}
}

func TestReparse_SingleDeletions(t *testing.T) {
	t.Parallel()

	for _, src := range incrementalDocs {
		t.Run(src, func(t *testing.T) {
			t.Parallel()

			p := newTestParser()
			old := p.Parse(text.NewStringBuffer(src))
			for pos := range len(src) {
				newText := src[:pos] + src[pos+1:]
				changes := []text.ChangeRange{text.NewChangeRange(text.NewSpan(pos, pos+1), 0)}
				assertEquivalent(t, p, old, newText, changes)
			}
		})
	}
}

func TestReparse_HardCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		old   string
		edits func(b *text.ChangeBuilder)
	}{
		{
			name:  "nested same-named element",
			old:   "<a>\n  <a>\n  </a>\n</a>",
			edits: func(b *text.ChangeBuilder) { b.Insert(10, "<a>") },
		},
		{
			name:  "close inner same-named element",
			old:   "<a><a>x</a>",
			edits: func(b *text.ChangeBuilder) { b.Insert(11, "</a>") },
		},
		{
			name:  "indentation change",
			old:   "<r>\n  <a>\n    <b/>\n  </a>\n</r>\n",
			edits: func(b *text.ChangeBuilder) { b.Delete(4, 6).Insert(10, "\t\t") },
		},
		{
			name:  "rename start tag",
			old:   "<r><a>text</a><a/></r>",
			edits: func(b *text.ChangeBuilder) { b.Replace(4, 5, "b") },
		},
		{
			name:  "open a quote",
			old:   `<r a="1" b="2"><c d="3"/></r>`,
			edits: func(b *text.ChangeBuilder) { b.Delete(7, 8) },
		},
		{
			name:  "turn text into a comment",
			old:   "<r>one<b/>two</r>",
			edits: func(b *text.ChangeBuilder) { b.Insert(3, "<!--").Insert(13, "-->") },
		},
		{
			name:  "unterminate a comment",
			old:   "<r><!-- c --><b/></r>",
			edits: func(b *text.ChangeBuilder) { b.Delete(10, 11) },
		},
		{
			name:  "append after the end",
			old:   "<r/>",
			edits: func(b *text.ChangeBuilder) { b.Insert(4, "<s/>") },
		},
		{
			name:  "entity becomes text",
			old:   "<r>&amp;x</r>",
			edits: func(b *text.ChangeBuilder) { b.Delete(7, 8).Insert(9, "y") },
		},
		{
			name:  "text after entity",
			old:   "<r>&amp;<b/></r>",
			edits: func(b *text.ChangeBuilder) { b.Insert(8, "x") },
		},
		{
			name:  "declaration appears",
			old:   "<r/>",
			edits: func(b *text.ChangeBuilder) { b.Insert(0, `<?xml version="1.0"?>`) },
		},
		{
			name:  "declaration keyword changes",
			old:   `<?xml version="1.0"?><r/>`,
			edits: func(b *text.ChangeBuilder) { b.Replace(4, 5, "m") },
		},
		{
			name:  "stray end tag loses its closing bracket",
			old:   "<r/></a b>",
			edits: func(b *text.ChangeBuilder) { b.Delete(9, 10) },
		},
		{
			name:  "junk typed into a stray end tag",
			old:   "<r/></a",
			edits: func(b *text.ChangeBuilder) { b.Insert(7, " b") },
		},
		{
			name:  "three edits in one batch",
			old:   "<r>\n  <a x=\"1\"/>\n  <b>t</b>\n  <c/>\n</r>\n",
			edits: func(b *text.ChangeBuilder) { b.Replace(12, 13, "22").Insert(24, "u").Delete(32, 34) },
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			builder := text.NewChangeBuilder()
			testCase.edits(builder)
			newText, ranges, err := text.ApplyChanges(testCase.old, builder.Changes)
			require.NoError(t, err)

			p := newTestParser()
			old := p.Parse(text.NewStringBuffer(testCase.old))
			assertEquivalent(t, p, old, newText, ranges)
		})
	}
}

func TestReparse_WideSiblingList(t *testing.T) {
	t.Parallel()

	const count = 300
	src := "<r>" + strings.Repeat("<e/>", count) + "</r>"
	at := 3 + 4*(count/2) + 1

	tests := []struct {
		name    string
		changes []text.Change
	}{
		{"rename one sibling", []text.Change{{Span: text.NewSpan(at, at+1), NewText: "f"}}},
		{"break one sibling", []text.Change{{Span: text.NewSpan(at+1, at+2), NewText: ""}}},
		{"insert between siblings", []text.Change{{Span: text.NewSpan(at-1, at-1), NewText: "<g/>"}}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			p := newTestParser()
			old := p.Parse(text.NewStringBuffer(src))
			newText, ranges, err := text.ApplyChanges(src, testCase.changes)
			require.NoError(t, err)

			assertEquivalent(t, p, old, newText, ranges)

			_, stats := p.Reparse(text.NewStringBuffer(newText), ranges, old)
			assert.False(t, stats.FullReparse)
			assert.GreaterOrEqual(t, stats.NodesReused, count-3)
		})
	}
}

// snippets are the replacement texts of random edits.
var snippets = []string{
	"", "<", ">", "/>", "</", "<a>", "</a>", "<b/>", "\"", "'", "=", "x", "text", " ", "\n  ",
	"<!--", "-->", "<![CDATA[", "]]>", "<?p", "?>", "&amp;", "&", "a=\"v\"", "<c d='e'>f</c>",
}

func randomEdit(rng *rand.Rand, src string) (string, []text.ChangeRange) {
	count := 1 + rng.IntN(3)
	if 2*count > len(src)+1 {
		count = (len(src) + 1) / 2
	}
	if count == 0 {
		return src + "x", []text.ChangeRange{text.NewChangeRange(text.NewSpan(len(src), len(src)), 1)}
	}

	cuts := rng.Perm(len(src) + 1)[:2*count]
	slices.Sort(cuts)

	builder := text.NewChangeBuilder()
	for i := 0; i < len(cuts); i += 2 {
		builder.Replace(cuts[i], cuts[i+1], snippets[rng.IntN(len(snippets))])
	}
	newText, ranges, err := text.ApplyChanges(src, builder.Changes)
	if err != nil {
		panic(err)
	}
	return newText, ranges
}

func TestReparse_RandomEditChains(t *testing.T) {
	t.Parallel()

	seeds := []string{
		"<?xml version=\"1.0\"?>\n<root a=\"1\">\n  <item id=\"x\">one</item>\n  <!-- note -->\n  <item id=\"y\"/>\n</root>\n",
		"<a><b><c>deep</c></b><b/><![CDATA[x]]></a>",
		"",
	}

	for i, seed := range seeds {
		rng := rand.New(rand.NewPCG(uint64(i), 42))
		t.Run(seed, func(t *testing.T) {
			t.Parallel()

			p := newTestParser()
			src := seed
			tree := p.Parse(text.NewStringBuffer(src))
			for range 200 {
				newText, ranges := randomEdit(rng, src)
				tree = assertEquivalent(t, p, tree, newText, ranges)
				src = newText
			}
		})
	}
}

const reuseDoc = `<root>
  <Y id="first"/>
  <item reusedName="keep" reusedValue="keep too" target="old value"/>
  <Y id="second">text</Y>
</root>
`

func TestReparse_StructuralReuse(t *testing.T) {
	t.Parallel()

	p := newTestParser()
	oldRoot := syntax.CreateRed(p.Parse(text.NewStringBuffer(reuseDoc)))

	start := strings.Index(reuseDoc, "old value")
	require.Positive(t, start)
	builder := text.NewChangeBuilder().Replace(start, start+len("old value"), "a much longer new value")
	newText, ranges, err := text.ApplyChanges(reuseDoc, builder.Changes)
	require.NoError(t, err)

	green, stats := p.Reparse(text.NewStringBuffer(newText), ranges, oldRoot.Green())
	newRoot := syntax.CreateRed(green)
	require.Equal(t, newText, newRoot.ToFullString())
	assert.False(t, stats.FullReparse)
	assert.GreaterOrEqual(t, stats.NodesReused, 4)

	oldElems := oldRoot.Body().Elements()
	newElems := newRoot.Body().Elements()
	require.Len(t, oldElems, 3)
	require.Len(t, newElems, 3)

	assert.Same(t, oldElems[0].Green(), newElems[0].Green(), "first Y")
	assert.Same(t, oldElems[2].Green(), newElems[2].Green(), "second Y")
	assert.NotSame(t, oldElems[1].Green(), newElems[1].Green(), "edited element")

	for _, name := range []string{"reusedName", "reusedValue"} {
		oldAttr, newAttr := oldElems[1].Attribute(name), newElems[1].Attribute(name)
		require.NotNil(t, oldAttr)
		require.NotNil(t, newAttr)
		assert.Same(t, oldAttr.Green(), newAttr.Green(), name)
	}
	assert.Equal(t, "a much longer new value", newElems[1].Attribute("target").Value())
}

func TestReparse_Fallbacks(t *testing.T) {
	t.Parallel()

	insert := []text.ChangeRange{text.NewChangeRange(text.NewSpan(3, 3), 1)}

	tests := []struct {
		name    string
		opts    []parser.Option
		old     string
		newText string
		changes []text.ChangeRange
		reason  string
	}{
		{"no previous tree", nil, "", "<a>x</a>", insert, "no previous tree"},
		{"disabled", []parser.Option{parser.WithIncremental(false)}, "<a></a>", "<a>x</a>", insert, "incremental parsing disabled"},
		{"change out of range", nil, "<a></a>", "<a></a>x", []text.ChangeRange{text.NewChangeRange(text.NewSpan(9, 9), 1)}, "invalid changes"},
		{"length mismatch", nil, "<a></a>", "<a>xy</a>", insert, "invalid changes"},
		{"empty previous text", nil, "", "x", []text.ChangeRange{text.NewChangeRange(text.NewSpan(0, 0), 1)}, "empty previous tree"},
		{"dirty region too large", nil, "<a>b</a>", "<c>d</c>", []text.ChangeRange{text.NewChangeRange(text.NewSpan(0, 8), 8)}, "dirty region too large"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var logs bytes.Buffer
			logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})
			p := parser.New(append([]parser.Option{parser.WithLogger(logger)}, testCase.opts...)...)

			var old *syntax.GreenNode
			if testCase.name != "no previous tree" {
				old = p.Parse(text.NewStringBuffer(testCase.old))
			}
			got, stats := p.Reparse(text.NewStringBuffer(testCase.newText), testCase.changes, old)
			assert.True(t, stats.FullReparse)
			assert.Zero(t, stats.TokensReused)
			assert.Equal(t, testCase.newText, got.ToFullString())
			assert.Contains(t, logs.String(), testCase.reason)
		})
	}
}

func TestReparse_NoChanges(t *testing.T) {
	t.Parallel()

	p := newTestParser()
	old := p.Parse(text.NewStringBuffer("<a/>"))
	got, stats := p.Reparse(text.NewStringBuffer("<a/>"), nil, old)
	assert.Same(t, old, got)
	assert.Equal(t, parser.Stats{}, stats)
}

func TestReparse_Stats(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("<item a=\"1\">value</item>\n", 50)
	src = "<list>\n" + src + "</list>\n"
	pos := strings.Index(src, "value") + 2

	p := newTestParser()
	old := p.Parse(text.NewStringBuffer(src))
	newText := src[:pos] + "X" + src[pos:]
	_, stats := p.Reparse(text.NewStringBuffer(newText),
		[]text.ChangeRange{text.NewChangeRange(text.NewSpan(pos, pos), 1)}, old)

	assert.False(t, stats.FullReparse)
	assert.GreaterOrEqual(t, stats.NodesReused, 49)
	assert.Less(t, stats.TokensScanned, 10)
}

func TestReparse_WithoutNodeReuse(t *testing.T) {
	t.Parallel()

	p := newTestParser(parser.WithNodeReuse(false))
	src := "<r><a x=\"1\"/><b>t</b></r>"
	old := p.Parse(text.NewStringBuffer(src))
	newText := "<r><a x=\"12\"/><b>t</b></r>"
	got := assertEquivalent(t, p, old, newText,
		[]text.ChangeRange{text.NewChangeRange(text.NewSpan(10, 10), 1)})

	_, stats := p.Reparse(text.NewStringBuffer(newText),
		[]text.ChangeRange{text.NewChangeRange(text.NewSpan(10, 10), 1)}, old)
	assert.False(t, stats.FullReparse)
	assert.Positive(t, stats.TokensReused)
	assert.Equal(t, newText, got.ToFullString())
}

func TestParseIncremental(t *testing.T) {
	t.Parallel()

	previous := parser.Parse("<a>1</a>")
	next := parser.ParseIncremental("<a>12</a>",
		[]text.ChangeRange{text.NewChangeRange(text.NewSpan(4, 4), 1)}, previous)
	assert.Equal(t, "<a>12</a>", next.ToFullString())
	assert.Equal(t, "12", next.Body().Value())

	fresh := parser.ParseIncremental("<b/>", nil, nil)
	assert.Equal(t, shapes(parser.Parse("<b/>")), shapes(fresh))
}
