package parser

import (
	"slices"
	"strings"

	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// delimiters are the bytes whose insertion or removal can change how the
// enclosing markup construct is tokenized.
const delimiters = `<>/!?"'`

// constructKinds are the nodes an edit touching a delimiter is widened to.
var constructKinds = []syntax.Kind{
	syntax.KindStartTag, syntax.KindEndTag, syntax.KindEmptyElement,
	syntax.KindComment, syntax.KindCDATASection, syntax.KindProcessingInstruction,
	syntax.KindXMLDeclaration, syntax.KindText,
}

// dirtySpans returns the merged old ranges that must be rescanned. changes
// must be sorted.
func dirtySpans(old *syntax.GreenNode, changes []text.ChangeRange, buf text.Buffer) []text.Span {
	spans := make([]text.Span, 0, len(changes))
	delta := 0
	for _, c := range changes {
		span := c.Span
		newSpan := c.NewSpan(delta)
		if strings.ContainsAny(buf.Slice(newSpan.Start, newSpan.End()), delimiters) ||
			strings.ContainsAny(textInSpan(old, c.Span), delimiters) {
			span = span.Union(enclosingConstruct(old, c.Span))
		}
		spans = append(spans, span)
		delta += c.Delta()
	}
	return mergeSpans(spans)
}

// enclosingConstruct returns the full span of the innermost markup
// construct containing span, or span itself.
func enclosingConstruct(root *syntax.GreenNode, span text.Span) text.Span {
	found := span
	cur, offset := root, 0
	for cur != nil && !cur.IsToken() {
		i := cur.SlotIndexAt(span.Start - offset)
		if i < 0 {
			break
		}
		childStart := offset + cur.SlotOffset(i)
		child := cur.Slot(i)
		if span.End() > childStart+child.FullWidth() {
			break
		}
		if slices.Contains(constructKinds, child.Kind()) {
			found = text.NewSpan(childStart, childStart+child.FullWidth())
		}
		cur, offset = child, childStart
	}
	return found
}

func mergeSpans(spans []text.Span) []text.Span {
	slices.SortFunc(spans, func(a, b text.Span) int { return a.Start - b.Start })
	merged := spans[:0]
	for _, s := range spans {
		if n := len(merged); n > 0 && s.Start <= merged[n-1].End() {
			merged[n-1] = merged[n-1].Union(s)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func spansLength(spans []text.Span) int {
	total := 0
	for _, s := range spans {
		total += s.Length
	}
	return total
}

// textInSpan returns the old text covered by span.
func textInSpan(root *syntax.GreenNode, span text.Span) string {
	if span.IsEmpty() {
		return ""
	}
	var b strings.Builder
	appendSpanText(&b, root, 0, span)
	return b.String()
}

func appendSpanText(b *strings.Builder, n *syntax.GreenNode, offset int, span text.Span) {
	if n == nil || n.FullWidth() == 0 {
		return
	}
	end := offset + n.FullWidth()
	if end <= span.Start || offset >= span.End() {
		return
	}
	if n.IsToken() || n.Kind() == syntax.KindWhitespaceTrivia || n.Kind() == syntax.KindEndOfLineTrivia {
		full := n.ToFullString()
		b.WriteString(full[max(span.Start-offset, 0):min(span.End()-offset, len(full))])
		return
	}
	for i := range n.SlotCount() {
		child := n.Slot(i)
		if child == nil {
			continue
		}
		appendSpanText(b, child, offset, span)
		offset += child.FullWidth()
	}
}
