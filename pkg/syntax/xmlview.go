package syntax

import "strings"

// Document slots.
const (
	DocumentPrologue = iota
	DocumentPrecedingMisc
	DocumentBody
	DocumentFollowingMisc
	DocumentEndOfFile
)

// Prologue returns the XML declaration of a document, or nil.
func (n *Node) Prologue() *Node {
	if n.Kind() != KindDocument {
		return nil
	}
	return n.Slot(DocumentPrologue)
}

// Body returns the root element of a document.
func (n *Node) Body() *Node {
	if n.Kind() != KindDocument {
		return nil
	}
	return n.Slot(DocumentBody)
}

// StartTag returns the start tag of an element.
func (n *Node) StartTag() *Node {
	if n.Kind() != KindElement {
		return nil
	}
	return n.Slot(0)
}

// EndTag returns the end tag of an element.
func (n *Node) EndTag() *Node {
	if n.Kind() != KindElement {
		return nil
	}
	return n.Slot(2)
}

// NameNode returns the Name node of an element, tag, attribute or
// declaration option.
func (n *Node) NameNode() *Node {
	switch n.Kind() {
	case KindElement:
		return n.Slot(0).NameNode()
	case KindEmptyElement, KindStartTag, KindEndTag:
		return n.Slot(1)
	case KindAttribute, KindDeclarationOption:
		return n.Slot(0)
	case KindName:
		return n
	default:
		return nil
	}
}

// Name returns the qualified name of an element, tag, attribute,
// declaration option or processing instruction, or the text of a token.
func (n *Node) Name() string {
	switch n.Kind() {
	case KindName:
		if p := n.Prefix(); p != "" {
			return p + ":" + n.LocalName()
		}
		return n.LocalName()
	case KindProcessingInstruction:
		return n.Slot(1).Text()
	case KindXMLDeclaration:
		return "xml"
	}
	if n.IsToken() {
		return n.Text()
	}
	if name := n.NameNode(); name != nil {
		return name.Name()
	}
	return ""
}

// Prefix returns the namespace prefix of a name, or "".
func (n *Node) Prefix() string {
	name := n.NameNode()
	if name == nil {
		return ""
	}
	prefix := name.Slot(0)
	if prefix == nil {
		return ""
	}
	return prefix.Slot(0).Text()
}

// LocalName returns the name without its prefix.
func (n *Node) LocalName() string {
	name := n.NameNode()
	if name == nil {
		return ""
	}
	return name.Slot(1).Text()
}

func (n *Node) attributeList() *Node {
	switch n.Kind() {
	case KindElement:
		return n.Slot(0).attributeList()
	case KindEmptyElement, KindStartTag:
		return n.Slot(2)
	default:
		return nil
	}
}

// Attributes returns the attributes of an element or tag in source order.
func (n *Node) Attributes() []*Node {
	return listItems(n.attributeList())
}

// Attribute returns the first attribute with the given qualified name.
func (n *Node) Attribute(name string) *Node {
	for _, a := range n.Attributes() {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// Content returns the content items of an element.
func (n *Node) Content() []*Node {
	if n.Kind() != KindElement {
		return nil
	}
	return listItems(n.Slot(1))
}

// Elements returns the child elements of an element, or the top-level
// elements of a document.
func (n *Node) Elements() []*Node {
	var items []*Node
	switch n.Kind() {
	case KindElement:
		items = n.Content()
	case KindDocument:
		items = append(items, n.Slot(DocumentBody))
		items = append(items, listItems(n.Slot(DocumentFollowingMisc))...)
	default:
		return nil
	}
	var out []*Node
	for _, c := range items {
		if c != nil && c.Kind().IsElement() && !c.IsMissing() {
			out = append(out, c)
		}
	}
	return out
}

// Value returns the value of n:
//   - an attribute or declaration option: its value, normalized as XML
//     requires for attribute values;
//   - an element: its character data, with line breaks normalized.
//     Whitespace kept as trivia around tags is not part of it;
//   - a string, text, comment, CDATA section or processing instruction:
//     its text with character references decoded;
//   - a token: its resolved value.
func (n *Node) Value() string {
	switch n.Kind() {
	case KindAttribute, KindDeclarationOption:
		return attributeValue(n.green.Slot(2))
	case KindString, KindComment, KindCDATASection:
		return rawValue(n.green.Slot(1))
	case KindProcessingInstruction:
		return rawValue(n.green.Slot(2))
	case KindText:
		return rawValue(n.green.Slot(0))
	case KindElement:
		var b strings.Builder
		for _, c := range n.Content() {
			switch c.Kind() {
			case KindText:
				b.WriteString(c.Value())
			case KindCDATASection:
				b.WriteString(c.Value())
			}
		}
		return NormalizeLineEndings(b.String())
	}
	if n.IsToken() {
		return n.green.value
	}
	return ""
}

func listItems(list *Node) []*Node {
	if list == nil {
		return nil
	}
	if list.Kind() != KindList {
		return []*Node{list}
	}
	out := make([]*Node, 0, list.SlotCount())
	for c := range list.ChildNodes() {
		out = append(out, c)
	}
	return out
}
