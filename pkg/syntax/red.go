package syntax

import (
	"iter"
	"sync/atomic"

	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// Node is the position-aware view of a green node. Children are created on
// first access and cached, so navigating to the same slot twice yields the
// same *Node. A Node is safe for concurrent use.
type Node struct {
	green    *GreenNode
	parent   *Node
	index    int
	position int
	children []atomic.Pointer[Node]
}

// CreateRed returns the root of a red tree over green.
func CreateRed(green *GreenNode) *Node {
	if green == nil {
		return nil
	}
	return newRed(green, nil, -1, 0)
}

func newRed(green *GreenNode, parent *Node, index, position int) *Node {
	n := &Node{green: green, parent: parent, index: index, position: position}
	if k := green.SlotCount(); k > 0 {
		n.children = make([]atomic.Pointer[Node], k)
	}
	return n
}

// Green returns the underlying green node.
func (n *Node) Green() *GreenNode { return n.green }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.green.kind }

// Parent returns the parent node, or nil for the root. The parent of the
// structure of skipped-tokens trivia is the token carrying the trivia.
func (n *Node) Parent() *Node { return n.parent }

// Index returns the slot index of n in its parent, or -1.
func (n *Node) Index() int { return n.index }

// Root returns the root of the tree n belongs to.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Position returns the absolute full start, before leading trivia.
func (n *Node) Position() int { return n.position }

// Start returns the absolute start, after leading trivia.
func (n *Node) Start() int { return n.position + n.green.leadingWidth }

// End returns the absolute end, before trailing trivia.
func (n *Node) End() int { return n.Start() + n.green.Width() }

// Span is the span without the outermost trivia.
func (n *Node) Span() text.Span { return text.Span{Start: n.Start(), Length: n.green.Width()} }

// FullSpan is the span including all trivia.
func (n *Node) FullSpan() text.Span { return text.Span{Start: n.position, Length: n.green.fullWidth} }

func (n *Node) Width() int               { return n.green.Width() }
func (n *Node) FullWidth() int           { return n.green.fullWidth }
func (n *Node) LeadingTriviaWidth() int  { return n.green.leadingWidth }
func (n *Node) TrailingTriviaWidth() int { return n.green.trailingWidth }
func (n *Node) IsMissing() bool          { return n.green.IsMissing() }
func (n *Node) IsToken() bool            { return n.green.IsToken() }
func (n *Node) IsList() bool             { return n.green.IsList() }

// Text returns the literal text of a token, or the text of a node without
// its outermost trivia.
func (n *Node) Text() string {
	if n.IsToken() {
		return n.green.text
	}
	return n.green.String()
}

// ToFullString returns the exact source text of the subtree.
func (n *Node) ToFullString() string { return n.green.ToFullString() }

// String returns the source text of the subtree without its outermost
// trivia.
func (n *Node) String() string { return n.green.String() }

// SlotCount returns the number of child slots, empty ones included.
func (n *Node) SlotCount() int { return len(n.children) }

// Slot returns child i, or nil for an empty slot.
func (n *Node) Slot(i int) *Node {
	g := n.green.Slot(i)
	if g == nil {
		return nil
	}
	if c := n.children[i].Load(); c != nil {
		return c
	}
	c := newRed(g, n, i, n.position+n.green.SlotOffset(i))
	if n.children[i].CompareAndSwap(nil, c) {
		return c
	}
	return n.children[i].Load()
}

// ChildNodes yields the non-empty slots in order.
func (n *Node) ChildNodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for i := range n.children {
			if c := n.Slot(i); c != nil && !yield(c) {
				return
			}
		}
	}
}

// Descendants yields all nodes and tokens below n in pre-order.
func (n *Node) Descendants() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.descend(nil, yield)
	}
}

// DescendantsAndSelf yields n followed by its descendants.
func (n *Node) DescendantsAndSelf() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if yield(n) {
			n.descend(nil, yield)
		}
	}
}

// DescendantsInSpan yields, in pre-order, the descendants whose full span
// intersects span.
func (n *Node) DescendantsInSpan(span text.Span) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.descend(&span, yield)
	}
}

// Tokens yields the tokens whose full span intersects span, in document
// order.
func (n *Node) Tokens(span text.Span) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.descend(&span, func(c *Node) bool {
			if !c.IsToken() {
				return true
			}
			return yield(c)
		})
	}
}

// DescendantTokens yields every token below n in document order.
func (n *Node) DescendantTokens() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if n.IsToken() {
			yield(n)
			return
		}
		n.descend(nil, func(c *Node) bool {
			if !c.IsToken() {
				return true
			}
			return yield(c)
		})
	}
}

func (n *Node) descend(span *text.Span, yield func(*Node) bool) bool {
	for i := range n.children {
		c := n.Slot(i)
		if c == nil {
			continue
		}
		if span != nil && !c.FullSpan().IntersectsWith(*span) {
			continue
		}
		if !yield(c) || !c.descend(span, yield) {
			return false
		}
	}
	return true
}

// FirstToken returns the first token of the subtree, missing tokens
// included.
func (n *Node) FirstToken() *Node {
	if n.IsToken() {
		return n
	}
	for i := range n.children {
		if c := n.Slot(i); c != nil {
			if t := c.FirstToken(); t != nil {
				return t
			}
		}
	}
	return nil
}

// LastToken returns the last token of the subtree, missing tokens included.
func (n *Node) LastToken() *Node {
	if n.IsToken() {
		return n
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if c := n.Slot(i); c != nil {
			if t := c.LastToken(); t != nil {
				return t
			}
		}
	}
	return nil
}

// NextToken returns the token following n in document order, or nil.
func (n *Node) NextToken() *Node {
	for cur := n; cur.parent != nil && cur.index >= 0; cur = cur.parent {
		p := cur.parent
		for i := cur.index + 1; i < len(p.children); i++ {
			if c := p.Slot(i); c != nil {
				if t := c.FirstToken(); t != nil {
					return t
				}
			}
		}
	}
	return nil
}

// PreviousToken returns the token preceding n in document order, or nil.
func (n *Node) PreviousToken() *Node {
	for cur := n; cur.parent != nil && cur.index >= 0; cur = cur.parent {
		p := cur.parent
		for i := cur.index - 1; i >= 0; i-- {
			if c := p.Slot(i); c != nil {
				if t := c.LastToken(); t != nil {
					return t
				}
			}
		}
	}
	return nil
}

// FindToken returns the token whose full span contains position. The end
// of the root maps to its last token.
func (n *Node) FindToken(position int) *Node {
	span := n.FullSpan()
	if position == span.End() && n.parent == nil {
		return n.LastToken()
	}
	if !span.Contains(position) {
		return nil
	}
	cur := n
	for !cur.IsToken() {
		i := cur.green.SlotIndexAt(position - cur.position)
		if i < 0 {
			return nil
		}
		cur = cur.Slot(i)
	}
	return cur
}

// FindNode returns the innermost node, other than a token or list, whose
// full span contains position.
func (n *Node) FindNode(position int) *Node {
	cur := n.FindToken(position)
	for cur != nil && cur != n && (cur.IsToken() || cur.IsList()) {
		cur = cur.parent
	}
	return cur
}

// Trivia is a trivia item in a red tree.
type Trivia struct {
	green    *GreenNode
	token    *Node
	position int
}

func (t Trivia) Kind() Kind                { return t.green.kind }
func (t Trivia) Green() *GreenNode         { return t.green }
func (t Trivia) Token() *Node              { return t.token }
func (t Trivia) Span() text.Span           { return text.Span{Start: t.position, Length: t.green.fullWidth} }
func (t Trivia) Text() string              { return t.green.ToFullString() }
func (t Trivia) HasStructure() bool        { return t.green.kind == KindSkippedTokensTrivia }
func (t Trivia) ContainsDiagnostics() bool { return t.green.ContainsDiagnostics() }

// Structure returns the skipped items of skipped-tokens trivia as a red
// node whose parent is the carrying token.
func (t Trivia) Structure() *Node {
	if !t.HasStructure() {
		return nil
	}
	return newRed(t.green, t.token, -1, t.position)
}

// LeadingTrivia returns the trivia before a token.
func (n *Node) LeadingTrivia() []Trivia {
	return n.trivia(n.green.leading, n.position)
}

// TrailingTrivia returns the trivia after a token.
func (n *Node) TrailingTrivia() []Trivia {
	return n.trivia(n.green.trailing, n.position+n.green.fullWidth-n.green.trailingWidth)
}

func (n *Node) trivia(list *GreenNode, position int) []Trivia {
	if !n.IsToken() || list == nil {
		return nil
	}
	items := list.TriviaItems()
	out := make([]Trivia, 0, len(items))
	for _, g := range items {
		out = append(out, Trivia{green: g, token: n, position: position})
		position += g.fullWidth
	}
	return out
}

// ContainsDiagnostics reports whether n or a descendant has diagnostics.
func (n *Node) ContainsDiagnostics() bool { return n.green.ContainsDiagnostics() }

// Diagnostics returns the diagnostics attached to n itself, located at its
// span.
func (n *Node) Diagnostics() []LocatedDiagnostic {
	own := n.green.Diagnostics()
	if len(own) == 0 {
		return nil
	}
	span := n.Span()
	out := make([]LocatedDiagnostic, len(own))
	for i, d := range own {
		out[i] = LocatedDiagnostic{Diagnostic: d, Span: span, Kind: n.Kind()}
	}
	return out
}

// AllDiagnostics returns the diagnostics of n and every descendant,
// including those inside skipped trivia, in document order.
func (n *Node) AllDiagnostics() []LocatedDiagnostic {
	var out []LocatedDiagnostic
	n.collectDiagnostics(&out)
	return out
}

func (n *Node) collectDiagnostics(out *[]LocatedDiagnostic) {
	if !n.ContainsDiagnostics() {
		return
	}
	if !n.IsToken() {
		*out = append(*out, n.Diagnostics()...)
		for i := range n.children {
			if c := n.Slot(i); c != nil {
				c.collectDiagnostics(out)
			}
		}
		return
	}

	for _, t := range n.LeadingTrivia() {
		if t.HasStructure() && t.ContainsDiagnostics() {
			t.Structure().collectDiagnostics(out)
		}
	}
	*out = append(*out, n.Diagnostics()...)
	for _, t := range n.TrailingTrivia() {
		if t.HasStructure() && t.ContainsDiagnostics() {
			t.Structure().collectDiagnostics(out)
		}
	}
}

// Annotations returns the annotations attached to n itself.
func (n *Node) Annotations() []Annotation { return n.green.Annotations() }

// HasAnnotation reports whether a is attached to n itself.
func (n *Node) HasAnnotation(a Annotation) bool { return n.green.HasAnnotation(a) }

// ContainsAnnotations reports whether n or a descendant has annotations.
func (n *Node) ContainsAnnotations() bool { return n.green.ContainsAnnotations() }

// AnnotatedNodes returns the nodes at or below n that carry a, in
// pre-order.
func (n *Node) AnnotatedNodes(a Annotation) []*Node {
	var out []*Node
	var visit func(c *Node)
	visit = func(c *Node) {
		if !c.ContainsAnnotations() {
			return
		}
		if c.HasAnnotation(a) {
			out = append(out, c)
		}
		for i := range c.children {
			if s := c.Slot(i); s != nil {
				visit(s)
			}
		}
	}
	visit(n)
	return out
}
