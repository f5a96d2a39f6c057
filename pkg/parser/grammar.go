package parser

import (
	"strconv"

	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// parser is the state of one parse. It pulls tokens on demand in the mode
// the grammar expects next, from the old tree when a blender is set and
// from the scanner otherwise.
type parser struct {
	scanner    *scanner
	cache      syntax.NodeCache
	blend      *blender
	reuseNodes bool

	// pos is the full position after the last consumed token.
	pos int

	peekTok    *syntax.GreenNode
	peekPos    int
	peekMode   syntax.LexMode
	peekReused bool

	// pending holds skipped tokens and nodes until the next real token.
	pending      []*syntax.GreenNode
	pendingStart int

	// open holds the qualified names of the elements being parsed.
	open []string

	stats Stats
}

func newParser(buf text.Buffer, cache syntax.NodeCache, b *blender, reuseNodes bool) *parser {
	return &parser{
		scanner:    newScanner(buf, cache),
		cache:      cache,
		blend:      b,
		reuseNodes: reuseNodes,
	}
}

func (p *parser) tokenAt(pos int, mode syntax.LexMode) (*syntax.GreenNode, bool) {
	if p.blend != nil {
		if tok := p.blend.token(pos, mode); tok != nil {
			return tok, true
		}
	}
	return p.scanner.scan(pos, mode), false
}

// peek returns the token at the current position in mode without
// consuming it.
func (p *parser) peek(mode syntax.LexMode) *syntax.GreenNode {
	if p.peekTok != nil && p.peekPos == p.pos && p.peekMode == mode {
		return p.peekTok
	}
	p.peekTok, p.peekReused = p.tokenAt(p.pos, mode)
	p.peekPos, p.peekMode = p.pos, mode
	return p.peekTok
}

// peekAfter returns the token following tok, which must start at the
// current position.
func (p *parser) peekAfter(tok *syntax.GreenNode, mode syntax.LexMode) *syntax.GreenNode {
	next, _ := p.tokenAt(p.pos+tok.FullWidth(), mode)
	return next
}

func (p *parser) consume() *syntax.GreenNode {
	tok := p.peekTok
	if p.peekReused {
		p.stats.TokensReused++
	} else {
		p.stats.TokensScanned++
	}
	p.pos += tok.FullWidth()
	p.peekTok = nil
	return tok
}

// take consumes the peeked token. Pending skipped items become its
// leading trivia.
func (p *parser) take() *syntax.GreenNode {
	tok := p.consume()
	if len(p.pending) > 0 {
		skipped := syntax.NewSkippedTrivia(p.pending...)
		tok = tok.WithLeadingTrivia(syntax.TriviaList(skipped, tok.LeadingTrivia()))
		p.pending = nil
	}
	return tok
}

// skip consumes the peeked token as skipped text. diags are added unless
// the token already reports a problem of its own.
func (p *parser) skip(diags ...syntax.Diagnostic) {
	start := p.pos
	tok := p.consume()
	if len(diags) > 0 && !tok.ContainsDiagnostics() {
		tok = tok.WithDiagnostics(diags...)
	}
	p.addPending(start, tok)
}

// skipNode turns an already parsed node starting at start into skipped
// text. Anything skipped while parsing n is still pending when n ends
// without its closing token, and must stay after n.
func (p *parser) skipNode(start int, n *syntax.GreenNode) {
	if len(p.pending) > 0 && p.pendingStart > start {
		p.pending = append([]*syntax.GreenNode{n}, p.pending...)
		p.pendingStart = start
		return
	}
	p.addPending(start, n)
}

func (p *parser) addPending(start int, n *syntax.GreenNode) {
	if len(p.pending) == 0 {
		p.pendingStart = start
	}
	p.pending = append(p.pending, n)
}

// nodeStart is the full start of the node about to be parsed: pending
// skipped text ends up in its first token.
func (p *parser) nodeStart() int {
	if len(p.pending) > 0 {
		return p.pendingStart
	}
	return p.pos
}

func (p *parser) missing(kind syntax.Kind, diags ...syntax.Diagnostic) *syntax.GreenNode {
	return syntax.NewMissingToken(kind, diags...)
}

func expected(kind syntax.Kind) syntax.Diagnostic {
	return syntax.NewDiagnostic(syntax.ErrExpectedToken, kind.FixedText())
}

// expect consumes a token of the given kind, or returns a missing one.
func (p *parser) expect(mode syntax.LexMode, kind syntax.Kind) *syntax.GreenNode {
	if p.peek(mode).Kind() == kind {
		return p.take()
	}
	return p.missing(kind, expected(kind))
}

// finish builds a node, returning the old node when an identical one was
// at the same place in the previous tree.
func (p *parser) finish(start int, kind syntax.Kind, diags []syntax.Diagnostic, slots ...*syntax.GreenNode) *syntax.GreenNode {
	if p.blend != nil {
		if old := p.blend.match(start, kind, diags, slots); old != nil {
			p.stats.NodesReused++
			return old
		}
	}
	n := p.cache.Node(kind, slots...)
	if len(diags) > 0 {
		n = n.WithDiagnostics(diags...)
	}
	return n
}

func (p *parser) list(start int, items []*syntax.GreenNode) *syntax.GreenNode {
	if len(items) == 0 {
		return nil
	}
	return p.finish(start, syntax.KindList, nil, items...)
}

// tryReuse returns an old node of one of the given kinds starting at the
// current position, if it is safe to take over as is.
func (p *parser) tryReuse(mode syntax.LexMode, kinds ...syntax.Kind) *syntax.GreenNode {
	if p.blend == nil || !p.reuseNodes || len(p.pending) > 0 {
		return nil
	}
	n := p.blend.node(p.pos, mode, kinds...)
	if n == nil {
		return nil
	}
	p.pos += n.FullWidth()
	p.peekTok = nil
	p.stats.NodesReused++
	return n
}

func unexpected(tok *syntax.GreenNode) syntax.Diagnostic {
	what := strconv.Quote(tok.Text())
	switch tok.Kind() {
	case syntax.KindTextLiteralToken, syntax.KindEntityReferenceToken:
		what = "text"
	case syntax.KindEndTag:
		what = "end tag"
	case syntax.KindCDATASection:
		what = "CDATA section"
	}
	return syntax.NewDiagnostic(syntax.ErrUnexpectedContent, what)
}

// startsMarkup reports whether tok begins a new markup construct.
func startsMarkup(tok *syntax.GreenNode) bool {
	switch tok.Kind() {
	case syntax.KindLessThanToken, syntax.KindLessThanSlashToken, syntax.KindLessThanQuestionToken,
		syntax.KindBeginCommentToken, syntax.KindBeginCDATAToken:
		return true
	case syntax.KindBadToken:
		return len(tok.Text()) > 1 && tok.Text()[0] == '<'
	default:
		return false
	}
}

// endsTag reports whether tok terminates the inside of a tag.
func endsTag(tok *syntax.GreenNode) bool {
	switch tok.Kind() {
	case syntax.KindGreaterThanToken, syntax.KindSlashGreaterThanToken, syntax.KindEndOfFileToken:
		return true
	default:
		return startsMarkup(tok)
	}
}

// qualifiedName returns the prefix:local text of a Name node.
func qualifiedName(name *syntax.GreenNode) string {
	if name == nil || name.Kind() != syntax.KindName {
		return ""
	}
	local := name.Slot(1).Text()
	if prefix := name.Slot(0); prefix != nil {
		return prefix.Slot(0).Text() + ":" + local
	}
	return local
}

// stringValue returns the raw value of a String node.
func stringValue(str *syntax.GreenNode) string {
	if str == nil || str.IsMissing() {
		return ""
	}
	var value string
	for _, tok := range str.Slot(1).Items() {
		value += tok.Value()
	}
	return value
}
