package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// nodeShape is what an incremental parse must reproduce for every node.
type nodeShape struct {
	Kind     syntax.Kind
	FullSpan text.Span
	Span     text.Span
	Missing  bool
	Diags    []syntax.ErrorID
}

func shapes(root *syntax.Node) []nodeShape {
	var out []nodeShape
	for n := range root.DescendantsAndSelf() {
		var ids []syntax.ErrorID
		for _, d := range n.Green().Diagnostics() {
			ids = append(ids, d.ID)
		}
		out = append(out, nodeShape{
			Kind:     n.Kind(),
			FullSpan: n.FullSpan(),
			Span:     n.Span(),
			Missing:  n.IsMissing(),
			Diags:    ids,
		})
	}
	return out
}

func diagnosticIDs(root *syntax.Node) []syntax.ErrorID {
	var ids []syntax.ErrorID
	for _, d := range root.AllDiagnostics() {
		ids = append(ids, d.ID)
	}
	return ids
}

var requiredSlots = map[syntax.Kind][]int{
	syntax.KindDocument:              {syntax.DocumentBody, syntax.DocumentEndOfFile},
	syntax.KindElement:               {0, 2},
	syntax.KindEmptyElement:          {0, 1, 3},
	syntax.KindStartTag:              {0, 1, 3},
	syntax.KindEndTag:                {0, 1, 2},
	syntax.KindName:                  {1},
	syntax.KindPrefix:                {0, 1},
	syntax.KindAttribute:             {0, 1, 2},
	syntax.KindDeclarationOption:     {0, 1, 2},
	syntax.KindString:                {0, 2},
	syntax.KindComment:               {0, 2},
	syntax.KindCDATASection:          {0, 2},
	syntax.KindProcessingInstruction: {0, 1, 3},
	syntax.KindXMLDeclaration:        {0, 1, 2, 5},
}

// checkTree verifies the invariants every parse result has, whatever the
// input.
func checkTree(t *testing.T, root *syntax.Node, src string) {
	t.Helper()

	require.NotNil(t, root)
	require.Equal(t, syntax.KindDocument, root.Kind())
	require.Equal(t, src, root.ToFullString(), "round trip")
	require.Equal(t, len(src), root.FullWidth())
	require.NotNil(t, root.Body(), "document body")

	for n := range root.DescendantsAndSelf() {
		g := n.Green()
		if !n.IsToken() {
			sum := 0
			for i := range g.SlotCount() {
				if s := g.Slot(i); s != nil {
					sum += s.FullWidth()
				}
			}
			assert.Equal(t, g.FullWidth(), sum, "full width of %s at %s", n.Kind(), n.FullSpan())
		}
		for _, i := range requiredSlots[n.Kind()] {
			assert.NotNil(t, g.Slot(i), "%s at %s lacks slot %d", n.Kind(), n.FullSpan(), i)
		}
		if n.IsMissing() {
			assert.Zero(t, n.Width(), "missing %s has width", n.Kind())
		}
		if n.ContainsDiagnostics() && n.Parent() != nil {
			assert.True(t, n.Parent().ContainsDiagnostics(),
				"%s at %s does not propagate diagnostics", n.Parent().Kind(), n.Parent().FullSpan())
		}
	}
}
