package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/yaklabco/xmlsyntax/pkg/parser"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

func benchDocument(items int) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<catalog>\n")
	for i := range items {
		fmt.Fprintf(&b, "  <item id=\"%d\" kind='book'>\n    <title>Title &amp; %d</title>\n    <!-- note -->\n  </item>\n", i, i)
	}
	b.WriteString("</catalog>\n")
	return b.String()
}

func BenchmarkParse(b *testing.B) {
	src := benchDocument(500)
	buf := text.NewStringBuffer(src)
	p := parser.New(parser.WithNodeCache(syntax.NewCache(syntax.DefaultCacheSize)))

	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for range b.N {
		p.Parse(buf)
	}
}

func BenchmarkParseNoCache(b *testing.B) {
	src := benchDocument(500)
	buf := text.NewStringBuffer(src)
	p := parser.New(parser.WithNodeCache(nil))

	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for range b.N {
		p.Parse(buf)
	}
}

func BenchmarkReparse(b *testing.B) {
	src := benchDocument(500)
	p := parser.New()
	old := p.Parse(text.NewStringBuffer(src))

	// Rename one title in the middle of the document.
	at := strings.Index(src, "Title &amp; 250")
	newText, changes, err := text.ApplyChanges(src, []text.Change{
		{Span: text.Span{Start: at, Length: len("Title")}, NewText: "Heading"},
	})
	if err != nil {
		b.Fatal(err)
	}
	buf := text.NewStringBuffer(newText)

	b.ResetTimer()
	for range b.N {
		p.Reparse(buf, changes, old)
	}
}

func BenchmarkReparseWide(b *testing.B) {
	src := "<r>" + strings.Repeat("<e/>", 100_000) + "</r>"
	p := parser.New()
	old := p.Parse(text.NewStringBuffer(src))

	at := 3 + 4*50_000 + 1
	newText, changes, err := text.ApplyChanges(src, []text.Change{
		{Span: text.NewSpan(at, at+1), NewText: "f"},
	})
	if err != nil {
		b.Fatal(err)
	}
	buf := text.NewStringBuffer(newText)

	b.ResetTimer()
	for range b.N {
		p.Reparse(buf, changes, old)
	}
}
