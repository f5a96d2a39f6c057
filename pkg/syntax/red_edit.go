package syntax

import (
	"errors"
	"fmt"
	"slices"
)

// Errors returned by persistent edits.
var (
	ErrNodeNotInTree = errors.New("node is not part of this tree")
	ErrNoRealToken   = errors.New("no token to carry trivia")
	ErrNoChildList   = errors.New("node kind has no child list")
)

// ReplaceNode returns a new tree in which target is replaced by
// replacement. Only the ancestors of target are rebuilt; every other
// subtree is shared with the old tree. The receiver may be any node of the
// tree; the result is always a new root.
func (n *Node) ReplaceNode(target *Node, replacement *GreenNode) (*Node, error) {
	root := n.Root()
	if err := root.owns(target); err != nil {
		return nil, err
	}
	if replacement == nil {
		return nil, fmt.Errorf("replace %s: nil replacement", target.Kind())
	}
	return CreateRed(spliceUp(target, replacement)), nil
}

func (n *Node) owns(target *Node) error {
	if target == nil {
		return ErrNodeNotInTree
	}
	cur := target
	for cur.parent != nil {
		if cur.index < 0 {
			return fmt.Errorf("%s inside trivia: %w", target.Kind(), ErrNodeNotInTree)
		}
		cur = cur.parent
	}
	if cur != n {
		return fmt.Errorf("%s at %d: %w", target.Kind(), target.position, ErrNodeNotInTree)
	}
	return nil
}

// spliceUp rebuilds every ancestor of target with one slot swapped and
// returns the new root green node.
func spliceUp(target *Node, replacement *GreenNode) *GreenNode {
	g := replacement
	for cur := target; cur.parent != nil; cur = cur.parent {
		g = cur.parent.green.WithSlot(cur.index, g)
	}
	return g
}

// WithDiagnostics returns a new tree in which target carries diags in
// addition to its own diagnostics.
func (n *Node) WithDiagnostics(target *Node, diags ...Diagnostic) (*Node, error) {
	if target == nil {
		return nil, ErrNodeNotInTree
	}
	return n.ReplaceNode(target, target.green.WithDiagnostics(diags...))
}

// WithAnnotations returns a new tree in which target carries anns. The
// annotations survive later edits elsewhere in the tree.
func (n *Node) WithAnnotations(target *Node, anns ...Annotation) (*Node, error) {
	if target == nil {
		return nil, ErrNodeNotInTree
	}
	return n.ReplaceNode(target, target.green.WithAnnotations(anns...))
}

// WithoutAnnotations returns a new tree in which anns are removed from
// target.
func (n *Node) WithoutAnnotations(target *Node, anns ...Annotation) (*Node, error) {
	if target == nil {
		return nil, ErrNodeNotInTree
	}
	return n.ReplaceNode(target, target.green.WithoutAnnotations(anns...))
}

// AddChild returns a new tree in which child is appended to the child list
// of target: the attributes of a tag, the content of an element, the text
// of a string, comment, CDATA section or processing instruction, the items
// of a list, or the trailing misc of a document.
func (n *Node) AddChild(target *Node, child *GreenNode) (*Node, error) {
	if target == nil || child == nil {
		return nil, ErrNodeNotInTree
	}
	if target.Kind() == KindList {
		items := append(slices.Clone(target.green.slots), child)
		return n.ReplaceNode(target, target.green.carry(NewList(items...)))
	}

	slot := target.Kind().childListSlot()
	if slot < 0 || slot >= target.green.SlotCount() {
		return nil, fmt.Errorf("add child to %s: %w", target.Kind(), ErrNoChildList)
	}
	var items []*GreenNode
	if list := target.green.Slot(slot); list != nil {
		items = list.Items()
	}
	items = append(items, child)
	return n.ReplaceNode(target, target.green.WithSlot(slot, NewList(items...)))
}

// AddLeadingTrivia returns a new tree with trivia added before the first
// token of target. A missing token cannot carry trivia: the trivia goes to
// the first real token of target, or failing that the next real token in
// the tree.
func (n *Node) AddLeadingTrivia(target *Node, trivia ...*GreenNode) (*Node, error) {
	root := n.Root()
	if err := root.owns(target); err != nil {
		return nil, err
	}
	if len(trivia) == 0 {
		return root, nil
	}

	first := target.FirstToken()
	tok := firstRealToken(target)
	if tok == nil {
		for t := target.LastToken(); t != nil && tok == nil; {
			t = t.NextToken()
			if t != nil && !t.IsMissing() {
				tok = t
			}
		}
	}
	if tok == nil {
		return nil, fmt.Errorf("leading trivia for %s: %w", target.Kind(), ErrNoRealToken)
	}

	existing := tok.green.leading.TriviaItems()
	var combined []*GreenNode
	if tok == first {
		combined = append(existing, trivia...)
	} else {
		// Redirected past missing tokens: keep the trivia at the position
		// the caller aimed at.
		combined = append(slices.Clone(trivia), existing...)
	}
	return root.ReplaceNode(tok, tok.green.WithLeadingTrivia(TriviaList(combined...)))
}

// AddTrailingTrivia returns a new tree with trivia added after the last
// token of target, redirected like AddLeadingTrivia but searching
// backwards.
func (n *Node) AddTrailingTrivia(target *Node, trivia ...*GreenNode) (*Node, error) {
	root := n.Root()
	if err := root.owns(target); err != nil {
		return nil, err
	}
	if len(trivia) == 0 {
		return root, nil
	}

	tok := lastRealToken(target)
	if tok == nil {
		for t := target.FirstToken(); t != nil && tok == nil; {
			t = t.PreviousToken()
			if t != nil && !t.IsMissing() {
				tok = t
			}
		}
	}
	if tok == nil {
		return nil, fmt.Errorf("trailing trivia for %s: %w", target.Kind(), ErrNoRealToken)
	}

	combined := append(tok.green.trailing.TriviaItems(), trivia...)
	return root.ReplaceNode(tok, tok.green.WithTrailingTrivia(TriviaList(combined...)))
}

func firstRealToken(n *Node) *Node {
	for t := range n.DescendantTokens() {
		if !t.IsMissing() {
			return t
		}
	}
	return nil
}

func lastRealToken(n *Node) *Node {
	var last *Node
	for t := range n.DescendantTokens() {
		if !t.IsMissing() {
			last = t
		}
	}
	return last
}
