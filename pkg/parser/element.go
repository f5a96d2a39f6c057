package parser

import (
	"slices"
	"strings"

	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// parseElement parses an element whose `<` has been peeked in mode.
func (p *parser) parseElement(mode syntax.LexMode) *syntax.GreenNode {
	start := p.nodeStart()
	p.peek(mode)
	lt := p.take()
	name := p.parseName()
	attrs := p.parseAttributes()

	tok := p.peek(syntax.ModeTag)
	if tok.Kind() == syntax.KindSlashGreaterThanToken {
		return p.finish(start, syntax.KindEmptyElement, nil, lt, name, attrs, p.take())
	}
	gt := p.expect(syntax.ModeTag, syntax.KindGreaterThanToken)
	startTag := p.finish(start, syntax.KindStartTag, nil, lt, name, attrs, gt)

	qname := qualifiedName(name)
	p.open = append(p.open, qname)
	content := p.parseContent()
	end := p.parseElementEnd(qname)
	p.open = p.open[:len(p.open)-1]

	return p.finish(start, syntax.KindElement, nil, startTag, content, end)
}

func (p *parser) parseContent() *syntax.GreenNode {
	var items []*syntax.GreenNode
	listStart := 0

	for {
		start := p.nodeStart()
		item := p.tryReuse(syntax.ModeContent,
			syntax.KindElement, syntax.KindEmptyElement, syntax.KindText,
			syntax.KindComment, syntax.KindCDATASection, syntax.KindProcessingInstruction)
		if item == nil {
			tok := p.peek(syntax.ModeContent)
			switch tok.Kind() {
			case syntax.KindLessThanToken:
				item = p.parseElement(syntax.ModeContent)
			case syntax.KindBeginCommentToken:
				item = p.parseComment(syntax.ModeContent)
			case syntax.KindBeginCDATAToken:
				item = p.parseCDATA(syntax.ModeContent)
			case syntax.KindLessThanQuestionToken:
				item = p.parseInstruction(syntax.ModeContent)
			case syntax.KindTextLiteralToken, syntax.KindEntityReferenceToken:
				item = p.parseText()
			case syntax.KindLessThanSlashToken, syntax.KindEndOfFileToken:
				return p.list(listStart, items)
			default:
				p.skip(unexpected(tok))
				continue
			}
		}
		if len(items) == 0 {
			listStart = start
		}
		items = append(items, item)
	}
}

// parseElementEnd parses the end tag closing the element named name. An
// end tag for an enclosing element is left for that element, and this one
// gets a missing end tag.
func (p *parser) parseElementEnd(name string) *syntax.GreenNode {
	tok := p.peek(syntax.ModeContent)
	if tok.Kind() != syntax.KindLessThanSlashToken {
		return missingEndTag(name)
	}

	endName := p.peekEndTagName(tok)
	if endName == name {
		return p.parseEndTag(syntax.ModeContent, nil)
	}
	if slices.Contains(p.open[:len(p.open)-1], endName) {
		return missingEndTag(name)
	}
	return p.parseEndTag(syntax.ModeContent,
		[]syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrMismatchedEndTag, endName, name)})
}

// peekEndTagName returns the qualified name following the peeked `</`
// without consuming anything. It reads names the way parseName does.
func (p *parser) peekEndTagName(lt *syntax.GreenNode) string {
	pos := p.pos + lt.FullWidth()
	first, _ := p.tokenAt(pos, syntax.ModeTag)
	if first.Kind() != syntax.KindNameToken {
		return ""
	}
	name := first.Text()
	if first.TrailingTriviaWidth() > 0 {
		return name
	}
	pos += first.FullWidth()
	colon, _ := p.tokenAt(pos, syntax.ModeTag)
	if colon.Kind() != syntax.KindColonToken {
		return name
	}
	name += ":"
	if colon.TrailingTriviaWidth() > 0 {
		return name
	}
	local, _ := p.tokenAt(pos+colon.FullWidth(), syntax.ModeTag)
	if local.Kind() == syntax.KindNameToken {
		name += local.Text()
	}
	return name
}

func (p *parser) parseEndTag(mode syntax.LexMode, diags []syntax.Diagnostic) *syntax.GreenNode {
	start := p.nodeStart()
	p.peek(mode)
	lt := p.take()
	name := p.parseName()
	for {
		tok := p.peek(syntax.ModeTag)
		if endsTag(tok) {
			break
		}
		p.skip(unexpected(tok))
	}
	gt := p.expect(syntax.ModeTag, syntax.KindGreaterThanToken)
	return p.finish(start, syntax.KindEndTag, diags, lt, name, gt)
}

func missingEndTag(name string) *syntax.GreenNode {
	return syntax.NewMissingNode(syntax.KindEndTag,
		[]syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrMissingEndTag, name)},
		syntax.NewMissingToken(syntax.KindLessThanSlashToken), missingName(),
		syntax.NewMissingToken(syntax.KindGreaterThanToken))
}

// parseName parses a possibly prefixed name in a tag. The colon binds only
// when nothing separates it from the names around it.
func (p *parser) parseName() *syntax.GreenNode {
	start := p.nodeStart()
	if p.peek(syntax.ModeTag).Kind() != syntax.KindNameToken {
		return syntax.NewMissingNode(syntax.KindName, nil, nil,
			p.missing(syntax.KindNameToken, syntax.NewDiagnostic(syntax.ErrExpectedName)))
	}
	first := p.take()
	if first.TrailingTriviaWidth() > 0 || p.peek(syntax.ModeTag).Kind() != syntax.KindColonToken {
		return p.finish(start, syntax.KindName, nil, nil, first)
	}

	colon := p.take()
	var local *syntax.GreenNode
	if colon.TrailingTriviaWidth() == 0 && p.peek(syntax.ModeTag).Kind() == syntax.KindNameToken {
		local = p.take()
	} else {
		local = p.missing(syntax.KindNameToken, syntax.NewDiagnostic(syntax.ErrExpectedName))
	}
	prefix := p.finish(start, syntax.KindPrefix, nil, first, colon)
	return p.finish(start, syntax.KindName, nil, prefix, local)
}

func (p *parser) parseAttributes() *syntax.GreenNode {
	var items []*syntax.GreenNode
	listStart := 0

	for {
		tok := p.peek(syntax.ModeTag)
		if endsTag(tok) {
			break
		}
		if tok.Kind() != syntax.KindNameToken {
			p.skip(unexpected(tok))
			continue
		}
		start := p.nodeStart()
		attr := p.parseAttribute(syntax.KindAttribute)
		if len(items) == 0 {
			listStart = start
		}
		items = append(items, attr)
	}

	seen := make(map[string]bool, len(items))
	for i, attr := range items {
		name := qualifiedName(attr.Slot(0))
		if name == "" {
			continue
		}
		if seen[name] {
			items[i] = attr.WithDiagnostics(syntax.NewDiagnostic(syntax.ErrDuplicateAttribute, name))
		}
		seen[name] = true
	}
	return p.list(listStart, items)
}

// parseAttribute parses name="value" as an attribute or a declaration
// option.
func (p *parser) parseAttribute(kind syntax.Kind) *syntax.GreenNode {
	if kind == syntax.KindAttribute {
		if n := p.tryReuse(syntax.ModeTag, syntax.KindAttribute); n != nil {
			return n
		}
	}
	start := p.nodeStart()
	name := p.parseName()
	eq := p.expect(syntax.ModeTag, syntax.KindEqualsToken)
	value := p.parseString()
	return p.finish(start, kind, nil, name, eq, value)
}

func (p *parser) parseString() *syntax.GreenNode {
	start := p.nodeStart()
	open := p.peek(syntax.ModeTag)
	var mode syntax.LexMode
	switch open.Kind() {
	case syntax.KindDoubleQuoteToken:
		mode = syntax.ModeDoubleQuoted
	case syntax.KindSingleQuoteToken:
		mode = syntax.ModeSingleQuoted
	default:
		return syntax.NewMissingNode(syntax.KindString,
			[]syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrExpectedAttributeValue)},
			p.missing(syntax.KindDoubleQuoteToken), nil, p.missing(syntax.KindDoubleQuoteToken))
	}
	open = p.take()

	itemsStart := p.pos
	var items []*syntax.GreenNode
	tok := p.peek(mode)
	for tok.Kind() == syntax.KindTextLiteralToken || tok.Kind() == syntax.KindEntityReferenceToken {
		items = append(items, p.take())
		tok = p.peek(mode)
	}

	var closeQuote *syntax.GreenNode
	switch {
	case tok.Kind() == open.Kind():
		closeQuote = p.take()
	case startsMarkup(tok):
		closeQuote = p.missing(open.Kind(), syntax.NewDiagnostic(syntax.ErrLessThanInAttributeValue))
	default:
		closeQuote = p.missing(open.Kind(), syntax.NewDiagnostic(syntax.ErrUnterminatedString))
	}
	return p.finish(start, syntax.KindString, nil, open, p.list(itemsStart, items), closeQuote)
}

func (p *parser) parseText() *syntax.GreenNode {
	start := p.nodeStart()
	var items []*syntax.GreenNode
	for {
		tok := p.peek(syntax.ModeContent)
		if tok.Kind() != syntax.KindTextLiteralToken && tok.Kind() != syntax.KindEntityReferenceToken {
			break
		}
		items = append(items, p.take())
	}
	return p.finish(start, syntax.KindText, nil, p.list(start, items))
}

// parseDelimited parses a comment or CDATA section: an opener already
// peeked in mode, text tokens in inner mode and a closer.
func (p *parser) parseDelimited(kind syntax.Kind, mode, inner syntax.LexMode, closer syntax.Kind, unterminated syntax.ErrorID) *syntax.GreenNode {
	start := p.nodeStart()
	p.peek(mode)
	open := p.take()

	itemsStart := p.pos
	var items []*syntax.GreenNode
	tok := p.peek(inner)
	for tok.Kind() == syntax.KindTextLiteralToken {
		items = append(items, p.take())
		tok = p.peek(inner)
	}

	var end *syntax.GreenNode
	if tok.Kind() == closer {
		end = p.take()
	} else {
		end = p.missing(closer, syntax.NewDiagnostic(unterminated))
	}
	return p.finish(start, kind, nil, open, p.list(itemsStart, items), end)
}

func (p *parser) parseComment(mode syntax.LexMode) *syntax.GreenNode {
	return p.parseDelimited(syntax.KindComment, mode, syntax.ModeComment,
		syntax.KindEndCommentToken, syntax.ErrUnterminatedComment)
}

func (p *parser) parseCDATA(mode syntax.LexMode) *syntax.GreenNode {
	return p.parseDelimited(syntax.KindCDATASection, mode, syntax.ModeCData,
		syntax.KindEndCDATAToken, syntax.ErrUnterminatedCDATA)
}

func (p *parser) parseInstruction(mode syntax.LexMode) *syntax.GreenNode {
	start := p.nodeStart()
	p.peek(mode)
	open := p.take()

	var diags []syntax.Diagnostic
	var target *syntax.GreenNode
	if p.peek(syntax.ModeTag).Kind() == syntax.KindNameToken && open.TrailingTriviaWidth() == 0 {
		target = p.take()
		switch {
		case target.Text() == "xml":
			diags = append(diags, syntax.NewDiagnostic(syntax.ErrMisplacedDeclaration))
		case strings.EqualFold(target.Text(), "xml"):
			diags = append(diags, syntax.NewDiagnostic(syntax.ErrReservedInstructionTarget, target.Text()))
		}
	} else {
		target = p.missing(syntax.KindNameToken, syntax.NewDiagnostic(syntax.ErrExpectedName))
	}

	itemsStart := p.pos
	var items []*syntax.GreenNode
	tok := p.peek(syntax.ModeInstruction)
	for tok.Kind() == syntax.KindTextLiteralToken {
		items = append(items, p.take())
		tok = p.peek(syntax.ModeInstruction)
	}

	var end *syntax.GreenNode
	if tok.Kind() == syntax.KindQuestionGreaterThanToken {
		end = p.take()
	} else {
		end = p.missing(syntax.KindQuestionGreaterThanToken, syntax.NewDiagnostic(syntax.ErrUnterminatedInstruction))
	}
	return p.finish(start, syntax.KindProcessingInstruction, diags, open, target, p.list(itemsStart, items), end)
}
