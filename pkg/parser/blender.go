package parser

import (
	"slices"
	"sort"

	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// blender offers tokens and nodes of the previous tree to the parser.
// Something old is handed out only when every byte the scanner inspected
// to produce it lies outside the dirty spans, so that scanning the new text
// would have produced the same thing.
type blender struct {
	old *syntax.GreenNode

	// changes are sorted and in old coordinates. newStarts[i] is where
	// change i begins in the new text and deltaBefore[i] the total delta
	// of the changes before it.
	changes     []text.ChangeRange
	newStarts   []int
	deltaBefore []int

	// dirty is sorted, merged and in old coordinates.
	dirty []text.Span

	// next is the old sibling following the last node handed out, so that
	// a run of clean siblings is found without descending from the root.
	next siblingCursor
}

// siblingCursor points at slot index of list, which starts at old offset.
type siblingCursor struct {
	list   *syntax.GreenNode
	index  int
	offset int
}

// at returns the sibling under the cursor if it starts at old offset q.
func (c *siblingCursor) at(q int) *syntax.GreenNode {
	if c.list == nil || c.offset != q || c.index >= c.list.SlotCount() {
		return nil
	}
	return c.list.Slot(c.index)
}

// advance moves the cursor past n, found at old offset q in parent.
func (c *siblingCursor) advance(parent *syntax.GreenNode, index, q int, n *syntax.GreenNode) {
	if parent == nil || parent.Kind() != syntax.KindList {
		*c = siblingCursor{}
		return
	}
	*c = siblingCursor{list: parent, index: index + 1, offset: q + n.FullWidth()}
}

func newBlender(old *syntax.GreenNode, changes []text.ChangeRange, dirty []text.Span) *blender {
	b := &blender{
		old:         old,
		changes:     changes,
		newStarts:   make([]int, len(changes)),
		deltaBefore: make([]int, len(changes)+1),
		dirty:       dirty,
	}
	for i, c := range changes {
		b.newStarts[i] = c.Span.Start + b.deltaBefore[i]
		b.deltaBefore[i+1] = b.deltaBefore[i] + c.Delta()
	}
	return b
}

// toOld maps a position in the new text to the old text. Positions inside
// inserted text have no counterpart.
func (b *blender) toOld(pos int) (int, bool) {
	i := sort.Search(len(b.changes), func(i int) bool {
		return b.newStarts[i]+b.changes[i].NewLength > pos
	})
	if i < len(b.changes) && b.newStarts[i] <= pos {
		return 0, false
	}
	return pos - b.deltaBefore[i], true
}

// clean reports whether the old range [start, end) is untouched by the
// edit. An empty dirty span counts only when it lies strictly inside.
func (b *blender) clean(start, end int) bool {
	i := sort.Search(len(b.dirty), func(i int) bool { return b.dirty[i].End() > start })
	return i == len(b.dirty) || b.dirty[i].Start >= end
}

// examined returns the old range inspected to produce n at old offset q.
func examined(q int, n *syntax.GreenNode) (int, int) {
	return q, q + n.FullWidth() + n.Lookahead()
}

// nodesAt calls visit for each old node starting at offset q, outermost
// first, until visit returns false. visit also gets the node's parent and
// its slot index there.
func (b *blender) nodesAt(q int, visit func(n, parent *syntax.GreenNode, index int) bool) {
	var parent *syntax.GreenNode
	cur, offset, index := b.old, 0, -1
	for cur != nil {
		if offset == q && !visit(cur, parent, index) {
			return
		}
		if cur.IsToken() {
			return
		}
		i := cur.SlotIndexAt(q - offset)
		if i < 0 {
			return
		}
		offset += cur.SlotOffset(i)
		parent, cur, index = cur, cur.Slot(i), i
	}
}

// reusable reports whether an old node can stand for itself in the new
// tree regardless of its surroundings.
func reusable(n *syntax.GreenNode, mode syntax.LexMode) bool {
	return n.Mode() == mode && !n.IsMissing() && !n.ContainsDiagnostics() && !n.ContainsSkippedText()
}

// token returns the old token at new position pos, scanned in mode.
func (b *blender) token(pos int, mode syntax.LexMode) *syntax.GreenNode {
	q, ok := b.toOld(pos)
	if !ok {
		return nil
	}
	var tok *syntax.GreenNode
	b.nodesAt(q, func(n, _ *syntax.GreenNode, _ int) bool {
		if n.IsToken() {
			tok = n
		}
		return true
	})
	if tok == nil || tok.Kind() == syntax.KindXMLKeyword || !reusable(tok, mode) || tok.FullWidth() == 0 {
		return nil
	}
	if !b.clean(examined(q, tok)) {
		return nil
	}
	return tok
}

// node returns the outermost old node of one of kinds at new position pos.
func (b *blender) node(pos int, mode syntax.LexMode, kinds ...syntax.Kind) *syntax.GreenNode {
	q, ok := b.toOld(pos)
	if !ok {
		return nil
	}
	// No ancestor of a sibling past the first starts where the sibling
	// does, so the sibling under the cursor is the outermost node at q.
	found := b.next.at(q)
	if found != nil && slices.Contains(kinds, found.Kind()) {
		b.next.advance(b.next.list, b.next.index, q, found)
	} else {
		found = nil
		b.nodesAt(q, func(n, parent *syntax.GreenNode, index int) bool {
			if slices.Contains(kinds, n.Kind()) {
				found = n
				b.next.advance(parent, index, q, n)
				return false
			}
			return true
		})
	}
	if found == nil || found.FullWidth() == 0 || !reusable(found, mode) {
		return nil
	}
	start, end := examined(q, found)
	if found.Kind() == syntax.KindText {
		// Text runs until the next token is not text, so the byte after it
		// decided where it ended.
		end = max(end, q+found.FullWidth()+1)
	}
	if !b.clean(start, end) {
		return nil
	}
	return found
}

// match returns the old node at new position start that has the given
// kind, exactly the given children and the same diagnostics of its own.
func (b *blender) match(start int, kind syntax.Kind, diags []syntax.Diagnostic, slots []*syntax.GreenNode) *syntax.GreenNode {
	q, ok := b.toOld(start)
	if !ok {
		return nil
	}
	var found *syntax.GreenNode
	b.nodesAt(q, func(n, _ *syntax.GreenNode, _ int) bool {
		if n.Kind() == kind && !n.IsMissing() && n.HasSlots(slots) {
			found = n
			return false
		}
		return true
	})
	if found == nil || !syntax.DiagnosticsEqual(found.Diagnostics(), diags) || len(found.Annotations()) > 0 {
		return nil
	}
	return found
}
