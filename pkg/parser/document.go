package parser

import (
	"slices"

	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// Declaration option names in the order XML requires them.
var declarationOptions = [...]string{"version", "encoding", "standalone"}

func (p *parser) parseDocument() *syntax.GreenNode {
	var prologue *syntax.GreenNode
	if p.atDeclaration() {
		prologue = p.parseDeclaration()
	}

	preceding := p.parseMiscList(false)

	var body *syntax.GreenNode
	if n := p.tryReuse(syntax.ModeMisc, syntax.KindElement, syntax.KindEmptyElement); n != nil {
		body = n
	} else if p.peek(syntax.ModeMisc).Kind() == syntax.KindLessThanToken {
		body = p.parseElement(syntax.ModeMisc)
	} else {
		body = syntax.NewMissingNode(syntax.KindEmptyElement,
			[]syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrMissingRoot)},
			p.missing(syntax.KindLessThanToken), missingName(), nil, p.missing(syntax.KindSlashGreaterThanToken))
	}

	following := p.parseMiscList(true)

	p.peek(syntax.ModeMisc)
	eof := p.take()

	return p.finish(0, syntax.KindDocument, nil, prologue, preceding, body, following, eof)
}

// parseMiscList parses the comments and processing instructions around the
// root element. Before the root it stops at the first element; after it,
// further elements are kept and reported.
func (p *parser) parseMiscList(afterRoot bool) *syntax.GreenNode {
	var items []*syntax.GreenNode
	listStart := 0

	reusable := []syntax.Kind{syntax.KindComment, syntax.KindProcessingInstruction}
	if afterRoot {
		reusable = append(reusable, syntax.KindElement, syntax.KindEmptyElement)
	}

	for {
		start := p.nodeStart()
		item := p.tryReuse(syntax.ModeMisc, reusable...)
		if item == nil {
			tok := p.peek(syntax.ModeMisc)
			if tok.Kind() == syntax.KindEndOfFileToken {
				break
			}
			if tok.Kind() == syntax.KindLessThanToken {
				if !afterRoot {
					break
				}
				item = p.parseElement(syntax.ModeMisc)
			} else {
				item = p.parseMisc(tok)
			}
		}
		if item == nil {
			continue
		}
		if item.Kind().IsElement() {
			item = item.WithDiagnostics(syntax.NewDiagnostic(syntax.ErrMultipleRoots))
		}
		if len(items) == 0 {
			listStart = start
		}
		items = append(items, item)
	}
	return p.list(listStart, items)
}

// parseMisc parses one item outside the root element. Anything other than
// a comment or processing instruction is skipped and nil returned.
func (p *parser) parseMisc(tok *syntax.GreenNode) *syntax.GreenNode {
	switch tok.Kind() {
	case syntax.KindBeginCommentToken:
		return p.parseComment(syntax.ModeMisc)
	case syntax.KindLessThanQuestionToken:
		return p.parseInstruction(syntax.ModeMisc)
	case syntax.KindLessThanSlashToken:
		start := p.nodeStart()
		end := p.parseEndTag(syntax.ModeMisc, nil)
		p.skipNode(start, end.WithDiagnostics(unexpected(end)))
	case syntax.KindBeginCDATAToken:
		start := p.nodeStart()
		cdata := p.parseCDATA(syntax.ModeMisc)
		p.skipNode(start, cdata.WithDiagnostics(unexpected(cdata)))
	default:
		p.skip(unexpected(tok))
	}
	return nil
}

// atDeclaration reports whether the document starts with `<?xml`.
func (p *parser) atDeclaration() bool {
	if p.pos != 0 {
		return false
	}
	tok := p.peek(syntax.ModeMisc)
	if tok.Kind() != syntax.KindLessThanQuestionToken || tok.TrailingTriviaWidth() > 0 {
		return false
	}
	name := p.peekAfter(tok, syntax.ModeTag)
	return name.Kind() == syntax.KindNameToken && name.Text() == "xml"
}

func (p *parser) parseDeclaration() *syntax.GreenNode {
	start := p.nodeStart()
	lt := p.take()
	p.peek(syntax.ModeTag)
	keyword := syntax.RetagToken(p.take(), syntax.KindXMLKeyword)

	var diags []syntax.Diagnostic
	if lt.LeadingTriviaWidth() > 0 {
		diags = append(diags, syntax.NewDiagnostic(syntax.ErrMisplacedDeclaration))
	}

	var placed [len(declarationOptions)]*syntax.GreenNode
	stage := 0
	for {
		tok := p.peek(syntax.ModeTag)
		if tok.Kind() == syntax.KindQuestionGreaterThanToken || endsTag(tok) {
			break
		}
		if tok.Kind() != syntax.KindNameToken {
			p.skip(unexpected(tok))
			continue
		}

		optStart := p.nodeStart()
		opt := p.parseAttribute(syntax.KindDeclarationOption)
		name := qualifiedName(opt.Slot(0))
		rank := slices.Index(declarationOptions[:], name)
		switch {
		case rank < 0:
			p.skipNode(optStart, opt.WithDiagnostics(
				syntax.NewDiagnostic(syntax.ErrUnknownDeclarationOption, name)))
		case placed[rank] != nil:
			p.skipNode(optStart, opt.WithDiagnostics(
				syntax.NewDiagnostic(syntax.ErrDuplicateAttribute, name)))
		case rank < stage:
			p.skipNode(optStart, opt.WithDiagnostics(
				syntax.NewDiagnostic(syntax.ErrDeclarationOrder, name, declarationOptions[stage-1])))
		default:
			placed[rank] = checkDeclarationValue(name, opt)
			stage = rank + 1
		}
	}

	if placed[0] == nil {
		placed[0] = syntax.NewMissingNode(syntax.KindDeclarationOption,
			[]syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrMissingVersion)},
			missingName(), p.missing(syntax.KindEqualsToken), missingString())
	}

	end := p.expect(syntax.ModeTag, syntax.KindQuestionGreaterThanToken)
	return p.finish(start, syntax.KindXMLDeclaration, diags, lt, keyword, placed[0], placed[1], placed[2], end)
}

// checkDeclarationValue reports a value the named option does not allow.
func checkDeclarationValue(name string, opt *syntax.GreenNode) *syntax.GreenNode {
	str := opt.Slot(2)
	if str == nil || str.IsMissing() {
		return opt
	}
	value := stringValue(str)
	var ok bool
	switch name {
	case "version":
		ok = value == "1.0" || value == "1.1"
	case "encoding":
		ok = validEncodingName(value)
	case "standalone":
		ok = value == "yes" || value == "no"
	}
	if ok {
		return opt
	}
	return opt.WithDiagnostics(syntax.NewDiagnostic(syntax.ErrDeclarationValue, value, name))
}

// validEncodingName matches [A-Za-z] ([A-Za-z0-9._] | '-')*.
func validEncodingName(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		c := int(s[i])
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if i == 0 && !letter {
			return false
		}
		if !letter && !isDigit(c) && c != '.' && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

func missingName() *syntax.GreenNode {
	return syntax.NewMissingNode(syntax.KindName, nil, nil, syntax.NewMissingToken(syntax.KindNameToken))
}

func missingString() *syntax.GreenNode {
	return syntax.NewMissingNode(syntax.KindString, nil,
		syntax.NewMissingToken(syntax.KindDoubleQuoteToken), nil, syntax.NewMissingToken(syntax.KindDoubleQuoteToken))
}
