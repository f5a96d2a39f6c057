// Package syntax implements a lossless XML syntax tree.
//
// The tree has two layers. Green nodes are immutable, position-independent
// and shareable between trees: a node stores only its kind, its width and its
// children, and a token stores its text and the trivia around it. Red nodes
// (see [Node]) are a lazily materialized, position-aware view over a green
// tree with parent navigation.
//
// Diagnostics and annotations live in side tables keyed by green node
// identity. A node carries only flags saying whether it or a descendant has
// any.
package syntax

import (
	"slices"
	"sort"
	"strings"
)

// NodeFlags describe properties of a green node and its descendants.
type NodeFlags uint8

// Node flags.
const (
	FlagContainsDiagnostics NodeFlags = 1 << iota
	FlagContainsAnnotations
	FlagIsMissing
	FlagContainsSkippedText

	flagOwnDiagnostics
	flagOwnAnnotations
)

const (
	propagatedFlags = FlagContainsDiagnostics | FlagContainsAnnotations | FlagContainsSkippedText
	publicFlags     = propagatedFlags | FlagIsMissing
)

// listOffsetThreshold is the list length from which slot offsets are
// indexed and located by binary search.
const listOffsetThreshold = 8

// GreenNode is an immutable node, token or trivia. Which fields are in use
// depends on the kind.
type GreenNode struct {
	kind  Kind
	flags NodeFlags
	mode  LexMode

	fullWidth     int
	leadingWidth  int
	trailingWidth int

	// lookahead is how many bytes past the end of the node the scanner
	// inspected while producing it.
	lookahead int

	// Nodes, lists and skipped-tokens trivia.
	slots   []*GreenNode
	inline  [3]*GreenNode
	offsets []int

	// Tokens and plain trivia.
	text     string
	value    string
	leading  *GreenNode
	trailing *GreenNode
}

// TokenSpec describes a token to construct.
type TokenSpec struct {
	Kind Kind
	Text string

	// Value is the resolved value. Empty means the same as Text.
	Value string

	Leading  *GreenNode
	Trailing *GreenNode

	Mode      LexMode
	Lookahead int
}

// NewNode creates a node of the given kind. Absent optional slots are nil.
func NewNode(kind Kind, slots ...*GreenNode) *GreenNode {
	n := &GreenNode{kind: kind}
	n.setSlots(slots)
	return n
}

// NewList creates a list node, or returns nil for an empty list.
func NewList(items ...*GreenNode) *GreenNode {
	if len(items) == 0 {
		return nil
	}
	return NewNode(KindList, items...)
}

// NewToken creates a token.
func NewToken(spec TokenSpec) *GreenNode {
	n := &GreenNode{
		kind:      spec.Kind,
		mode:      spec.Mode,
		text:      spec.Text,
		value:     spec.Value,
		leading:   spec.Leading,
		trailing:  spec.Trailing,
		lookahead: spec.Lookahead,
	}
	if n.value == "" {
		n.value = n.text
	}
	n.computeToken()
	return n
}

// NewMissingToken creates a zero-width token standing in for required but
// absent syntax.
func NewMissingToken(kind Kind, diags ...Diagnostic) *GreenNode {
	n := &GreenNode{kind: kind, flags: FlagIsMissing}
	return n.attach(diags, nil)
}

// NewMissingNode creates a zero-width node of the given kind, usually built
// from missing tokens, standing in for an absent construct.
func NewMissingNode(kind Kind, diags []Diagnostic, slots ...*GreenNode) *GreenNode {
	n := NewNode(kind, slots...)
	n.flags |= FlagIsMissing
	return n.attach(diags, nil)
}

// RetagToken returns token n with its kind changed. Everything else,
// diagnostics and annotations included, is kept.
func RetagToken(n *GreenNode, kind Kind) *GreenNode {
	if n.kind == kind || !n.IsToken() || !kind.IsToken() {
		return n
	}
	c := n.rebuild()
	c.kind = kind
	return n.carry(c)
}

// NewTrivia creates whitespace or end-of-line trivia.
func NewTrivia(kind Kind, text string) *GreenNode {
	return &GreenNode{kind: kind, text: text, value: text, fullWidth: len(text)}
}

// NewSkippedTrivia wraps tokens or nodes the parser could not place. The
// items are reproduced verbatim.
func NewSkippedTrivia(items ...*GreenNode) *GreenNode {
	n := &GreenNode{kind: KindSkippedTokensTrivia}
	n.setSlots(items)
	n.flags |= FlagContainsSkippedText
	n.leadingWidth, n.trailingWidth = 0, 0
	return n
}

// TriviaList combines trivia into the form stored on a token: nil, the
// single item, or a list.
func TriviaList(items ...*GreenNode) *GreenNode {
	items = slices.DeleteFunc(slices.Clone(items), func(t *GreenNode) bool { return t == nil })
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	}

	var flat []*GreenNode
	for _, t := range items {
		flat = append(flat, t.TriviaItems()...)
	}
	n := NewNode(KindList, flat...)
	n.leadingWidth, n.trailingWidth = 0, 0
	return n
}

func (n *GreenNode) setSlots(slots []*GreenNode) {
	if len(slots) <= len(n.inline) {
		copy(n.inline[:], slots)
		n.slots = n.inline[:len(slots):len(slots)]
	} else {
		n.slots = slices.Clone(slots)
	}
	if n.kind == KindList && len(slots) >= listOffsetThreshold {
		n.offsets = make([]int, len(slots))
	}

	width, reach := 0, 0
	seenFirst, seenMode := false, false
	for i, s := range n.slots {
		if n.offsets != nil {
			n.offsets[i] = width
		}
		if s == nil {
			continue
		}
		n.flags |= s.flags & propagatedFlags
		if !seenMode && !s.IsMissing() {
			n.mode = s.mode
			seenMode = true
		}
		if s.fullWidth > 0 {
			if !seenFirst {
				n.leadingWidth = s.leadingWidth
				seenFirst = true
			}
			n.trailingWidth = s.trailingWidth
		}
		width += s.fullWidth
		reach = max(reach, width+s.lookahead)
	}
	n.fullWidth = width
	n.lookahead = max(0, reach-width)
}

func (n *GreenNode) computeToken() {
	n.fullWidth = len(n.text)
	n.leadingWidth, n.trailingWidth = 0, 0
	if n.leading != nil {
		n.leadingWidth = n.leading.fullWidth
		n.flags |= n.leading.flags & propagatedFlags
	}
	if n.trailing != nil {
		n.trailingWidth = n.trailing.fullWidth
		n.flags |= n.trailing.flags & propagatedFlags
	}
	n.fullWidth += n.leadingWidth + n.trailingWidth
}

// attach registers own diagnostics and annotations on a node that has not
// been published yet.
func (n *GreenNode) attach(diags []Diagnostic, anns []Annotation) *GreenNode {
	if len(diags) > 0 {
		diagnosticTable.set(n, slices.Clip(slices.Clone(diags)))
		n.flags |= flagOwnDiagnostics | FlagContainsDiagnostics
	}
	if len(anns) > 0 {
		annotationTable.set(n, slices.Clip(slices.Clone(anns)))
		n.flags |= flagOwnAnnotations | FlagContainsAnnotations
	}
	return n
}

// rebuild returns a fresh copy of n without own diagnostics or annotations.
func (n *GreenNode) rebuild() *GreenNode {
	switch {
	case n.kind.IsToken():
		c := &GreenNode{
			kind:      n.kind,
			flags:     n.flags & FlagIsMissing,
			mode:      n.mode,
			text:      n.text,
			value:     n.value,
			leading:   n.leading,
			trailing:  n.trailing,
			lookahead: n.lookahead,
		}
		c.computeToken()
		return c
	case n.kind == KindWhitespaceTrivia || n.kind == KindEndOfLineTrivia:
		return NewTrivia(n.kind, n.text)
	case n.kind == KindSkippedTokensTrivia:
		return NewSkippedTrivia(n.slots...)
	default:
		c := NewNode(n.kind, n.slots...)
		c.flags |= n.flags & FlagIsMissing
		return c
	}
}

// carry copies the own diagnostics and annotations of n onto c.
func (n *GreenNode) carry(c *GreenNode) *GreenNode {
	return c.attach(n.Diagnostics(), n.Annotations())
}

// Kind returns the node kind.
func (n *GreenNode) Kind() Kind { return n.kind }

// Flags returns the public flags of the node.
func (n *GreenNode) Flags() NodeFlags { return n.flags & publicFlags }

// FullWidth is the width including leading and trailing trivia.
func (n *GreenNode) FullWidth() int { return n.fullWidth }

// Width is the width excluding the outermost leading and trailing trivia.
func (n *GreenNode) Width() int { return n.fullWidth - n.leadingWidth - n.trailingWidth }

// LeadingTriviaWidth is the width of the leading trivia of the first token.
func (n *GreenNode) LeadingTriviaWidth() int { return n.leadingWidth }

// TrailingTriviaWidth is the width of the trailing trivia of the last token.
func (n *GreenNode) TrailingTriviaWidth() int { return n.trailingWidth }

// Mode is the lexical mode of the first token of the node.
func (n *GreenNode) Mode() LexMode { return n.mode }

// Lookahead is how far past its end the scanner looked to produce n.
func (n *GreenNode) Lookahead() int { return n.lookahead }

func (n *GreenNode) IsToken() bool   { return n.kind.IsToken() }
func (n *GreenNode) IsTrivia() bool  { return n.kind.IsTrivia() }
func (n *GreenNode) IsList() bool    { return n.kind == KindList }
func (n *GreenNode) IsMissing() bool { return n.flags&FlagIsMissing != 0 }

// ContainsDiagnostics reports whether n or a descendant has diagnostics.
func (n *GreenNode) ContainsDiagnostics() bool { return n.flags&FlagContainsDiagnostics != 0 }

// ContainsAnnotations reports whether n or a descendant has annotations.
func (n *GreenNode) ContainsAnnotations() bool { return n.flags&FlagContainsAnnotations != 0 }

// ContainsSkippedText reports whether skipped-tokens trivia occurs in n.
func (n *GreenNode) ContainsSkippedText() bool { return n.flags&FlagContainsSkippedText != 0 }

// Text returns the literal text of a token or plain trivia.
func (n *GreenNode) Text() string { return n.text }

// Value returns the resolved value of a token, with character references
// decoded.
func (n *GreenNode) Value() string { return n.value }

// LeadingTrivia returns the trivia before a token: nil, one trivia node, or
// a list of them.
func (n *GreenNode) LeadingTrivia() *GreenNode { return n.leading }

// TrailingTrivia returns the trivia after a token.
func (n *GreenNode) TrailingTrivia() *GreenNode { return n.trailing }

// TriviaItems flattens a trivia list into its items.
func (n *GreenNode) TriviaItems() []*GreenNode {
	switch {
	case n == nil:
		return nil
	case n.kind == KindList:
		return slices.Clone(n.slots)
	default:
		return []*GreenNode{n}
	}
}

// Items returns the items of a list, or n itself for a single item.
func (n *GreenNode) Items() []*GreenNode {
	return n.TriviaItems()
}

// SlotCount returns the number of child slots.
func (n *GreenNode) SlotCount() int { return len(n.slots) }

// Slot returns child i, or nil when the slot is empty or out of range.
func (n *GreenNode) Slot(i int) *GreenNode {
	if i < 0 || i >= len(n.slots) {
		return nil
	}
	return n.slots[i]
}

// HasSlots reports whether the children of n are exactly slots.
func (n *GreenNode) HasSlots(slots []*GreenNode) bool {
	return slices.Equal(n.slots, slots)
}

// SlotOffset returns the offset of slot i relative to the full start of n.
func (n *GreenNode) SlotOffset(i int) int {
	if n.offsets != nil {
		return n.offsets[i]
	}
	offset := 0
	for _, s := range n.slots[:i] {
		if s != nil {
			offset += s.fullWidth
		}
	}
	return offset
}

// SlotIndexAt returns the index of the slot whose full span contains
// offset, or -1.
func (n *GreenNode) SlotIndexAt(offset int) int {
	if offset < 0 || offset >= n.fullWidth {
		return -1
	}
	if n.offsets != nil {
		i := sort.Search(len(n.offsets), func(i int) bool { return n.offsets[i] > offset }) - 1
		if i >= 0 && n.slots[i] != nil && offset < n.offsets[i]+n.slots[i].fullWidth {
			return i
		}
		return -1
	}
	start := 0
	for i, s := range n.slots {
		if s == nil {
			continue
		}
		if offset < start+s.fullWidth {
			return i
		}
		start += s.fullWidth
	}
	return -1
}

// Diagnostics returns the diagnostics attached to n itself.
func (n *GreenNode) Diagnostics() []Diagnostic {
	if n.flags&flagOwnDiagnostics == 0 {
		return nil
	}
	d, _ := diagnosticTable.get(n)
	return d
}

// Annotations returns the annotations attached to n itself.
func (n *GreenNode) Annotations() []Annotation {
	if n.flags&flagOwnAnnotations == 0 {
		return nil
	}
	a, _ := annotationTable.get(n)
	return a
}

// HasAnnotation reports whether a is attached to n itself.
func (n *GreenNode) HasAnnotation(a Annotation) bool {
	return slices.Contains(n.Annotations(), a)
}

// WithDiagnostics returns a copy of n with diags added to its own.
func (n *GreenNode) WithDiagnostics(diags ...Diagnostic) *GreenNode {
	if len(diags) == 0 {
		return n
	}
	return n.rebuild().attach(append(slices.Clone(n.Diagnostics()), diags...), n.Annotations())
}

// WithoutDiagnostics returns a copy of n without own diagnostics.
func (n *GreenNode) WithoutDiagnostics() *GreenNode {
	if n.flags&flagOwnDiagnostics == 0 {
		return n
	}
	return n.rebuild().attach(nil, n.Annotations())
}

// WithAnnotations returns a copy of n with anns added to its own.
func (n *GreenNode) WithAnnotations(anns ...Annotation) *GreenNode {
	if len(anns) == 0 {
		return n
	}
	return n.rebuild().attach(n.Diagnostics(), mergeAnnotations(n.Annotations(), anns))
}

// WithoutAnnotations returns a copy of n with anns removed from its own.
func (n *GreenNode) WithoutAnnotations(anns ...Annotation) *GreenNode {
	own := n.Annotations()
	kept := slices.DeleteFunc(slices.Clone(own), func(a Annotation) bool {
		return slices.Contains(anns, a)
	})
	if len(kept) == len(own) {
		return n
	}
	return n.rebuild().attach(n.Diagnostics(), kept)
}

// WithSlot returns a copy of n with slot i replaced. Own diagnostics and
// annotations are kept.
func (n *GreenNode) WithSlot(i int, child *GreenNode) *GreenNode {
	if n.Slot(i) == child {
		return n
	}
	slots := slices.Clone(n.slots)
	slots[i] = child
	var c *GreenNode
	if n.kind == KindSkippedTokensTrivia {
		c = NewSkippedTrivia(slots...)
	} else {
		c = NewNode(n.kind, slots...)
		c.flags |= n.flags & FlagIsMissing
	}
	return n.carry(c)
}

// WithLeadingTrivia returns a copy of token n with its leading trivia
// replaced.
func (n *GreenNode) WithLeadingTrivia(trivia *GreenNode) *GreenNode {
	c := n.rebuild()
	c.leading = trivia
	c.flags &= FlagIsMissing
	c.computeToken()
	return n.carry(c)
}

// WithTrailingTrivia returns a copy of token n with its trailing trivia
// replaced.
func (n *GreenNode) WithTrailingTrivia(trivia *GreenNode) *GreenNode {
	c := n.rebuild()
	c.trailing = trivia
	c.flags &= FlagIsMissing
	c.computeToken()
	return n.carry(c)
}

// FirstToken returns the first token in n, missing tokens included.
func (n *GreenNode) FirstToken() *GreenNode {
	if n == nil || n.IsToken() {
		return n
	}
	for _, s := range n.slots {
		if t := s.FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

// LastToken returns the last token in n, missing tokens included.
func (n *GreenNode) LastToken() *GreenNode {
	if n == nil || n.IsToken() {
		return n
	}
	for i := len(n.slots) - 1; i >= 0; i-- {
		if t := n.slots[i].LastToken(); t != nil {
			return t
		}
	}
	return nil
}

// ToFullString returns the exact text of n including all trivia.
func (n *GreenNode) ToFullString() string {
	var b strings.Builder
	b.Grow(n.fullWidth)
	n.writeTo(&b)
	return b.String()
}

// String returns the text of n without its outermost trivia.
func (n *GreenNode) String() string {
	full := n.ToFullString()
	return full[n.leadingWidth : len(full)-n.trailingWidth]
}

func (n *GreenNode) writeTo(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.kind.IsToken() {
		n.leading.writeTo(b)
		b.WriteString(n.text)
		n.trailing.writeTo(b)
		return
	}
	if n.kind == KindWhitespaceTrivia || n.kind == KindEndOfLineTrivia {
		b.WriteString(n.text)
		return
	}
	for _, s := range n.slots {
		s.writeTo(b)
	}
}

// IsEquivalentTo reports whether n and other have the same structure, text
// and own diagnostics.
func (n *GreenNode) IsEquivalentTo(other *GreenNode) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.kind != other.kind || n.fullWidth != other.fullWidth || n.Flags() != other.Flags() {
		return false
	}
	if n.text != other.text || n.value != other.value || len(n.slots) != len(other.slots) {
		return false
	}
	if !n.leading.IsEquivalentTo(other.leading) || !n.trailing.IsEquivalentTo(other.trailing) {
		return false
	}
	if !DiagnosticsEqual(n.Diagnostics(), other.Diagnostics()) {
		return false
	}
	for i, s := range n.slots {
		if !s.IsEquivalentTo(other.slots[i]) {
			return false
		}
	}
	return true
}
