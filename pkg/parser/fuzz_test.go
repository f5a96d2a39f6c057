package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yaklabco/xmlsyntax/pkg/parser"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

var fuzzSeeds = []string{
	"",
	"<a/>",
	"<e a=\"\"/>",
	"<e>Content</e>",
	"<a/ >",
	"<root></toor>",
	"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<r>\n  <c a='1'>t&amp;u</c>\n</r>\n",
	"<!DOCTYPE r [<!ENTITY e \"v\">]><r>&e;</r>",
	"<r><!-- c --><![CDATA[<x>]]><?p d?></r>",
	"<a><a></a>",
	"<p:a p:b=\"v\"/>",
	"</a b",
	"<r/></a b",
	"x</a:b c",
}

// FuzzParse checks that any input parses into a lossless tree.
func FuzzParse(f *testing.F) {
	for _, seed := range fuzzSeeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		checkTree(t, parser.Parse(src), src)
	})
}

// FuzzReparse checks that replacing any range of any input reparses to the
// same tree as a parse from scratch.
func FuzzReparse(f *testing.F) {
	for _, seed := range fuzzSeeds {
		f.Add(seed, uint(0), uint(1), "<")
		f.Add(seed, uint(len(seed)/2), uint(len(seed)/2), "\"x")
	}

	p := parser.New(parser.WithLogger(nil))
	f.Fuzz(func(t *testing.T, src string, start, end uint, insert string) {
		if start > end || end > uint(len(src)) {
			t.Skip()
		}
		newText := src[:start] + insert + src[end:]
		changes := []text.ChangeRange{text.NewChangeRange(text.NewSpan(int(start), int(end)), len(insert))}

		old := p.Parse(text.NewStringBuffer(src))
		buf := text.NewStringBuffer(newText)
		got, _ := p.Reparse(buf, changes, old)
		want := p.Parse(buf)

		gotRed, wantRed := syntax.CreateRed(got), syntax.CreateRed(want)
		checkTree(t, gotRed, newText)
		if diff := cmp.Diff(shapes(wantRed), shapes(gotRed)); diff != "" {
			t.Fatalf("reparse differs from a full parse (-want +got):\n%s", diff)
		}
	})
}
