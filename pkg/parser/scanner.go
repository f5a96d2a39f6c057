package parser

import (
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

const eof = -1

// trail selects how much trailing trivia a token takes.
type trail uint8

const (
	// trailNone takes no trailing trivia.
	trailNone trail = iota
	// trailInterior takes spaces and tabs up to and including a line break.
	trailInterior
	// trailCloser takes a run of spaces and tabs only if it ends in a line
	// break, so that text after markup keeps its leading spaces.
	trailCloser
)

// lexeme is the significant part of a token, before trivia is attached.
type lexeme struct {
	kind  syntax.Kind
	end   int
	value string
	diags []syntax.Diagnostic
	trail trail
}

// scanner produces one token at a time. scan is a pure function of the
// buffer contents, the position and the mode; the scanner never looks
// behind the position it is asked to start at.
type scanner struct {
	buf     text.Buffer
	length  int
	cache   syntax.NodeCache
	strings *syntax.StringTable

	// horizon is one past the furthest byte inspected for the current
	// token.
	horizon int
}

func newScanner(buf text.Buffer, cache syntax.NodeCache) *scanner {
	return &scanner{
		buf:     buf,
		length:  buf.Len(),
		cache:   cache,
		strings: syntax.NewStringTable(),
	}
}

// at returns the byte at i, or eof, and records that i was inspected.
func (s *scanner) at(i int) int {
	if i >= s.horizon {
		s.horizon = i + 1
	}
	if i >= s.length {
		return eof
	}
	return int(s.buf.ByteAt(i))
}

func (s *scanner) hasPrefix(i int, lit string) bool {
	for k := range len(lit) {
		if s.at(i+k) != int(lit[k]) {
			return false
		}
	}
	return true
}

func (s *scanner) slice(start, end int) string {
	return s.strings.Intern(s.buf.Slice(start, end))
}

// scan returns the token starting at pos in the given mode.
func (s *scanner) scan(pos int, mode syntax.LexMode) *syntax.GreenNode {
	s.horizon = pos

	leading, start := s.leadingTrivia(pos, mode)
	lx := s.lex(start, mode)
	trailing, fullEnd := s.trailingTrivia(lx.end, lx.trail)

	tok := s.cache.Token(syntax.TokenSpec{
		Kind:      lx.kind,
		Text:      s.slice(start, lx.end),
		Value:     lx.value,
		Leading:   leading,
		Trailing:  trailing,
		Mode:      mode,
		Lookahead: max(0, s.horizon-fullEnd),
	})
	if len(lx.diags) > 0 {
		tok = tok.WithDiagnostics(lx.diags...)
	}
	return tok
}

func (s *scanner) leadingTrivia(pos int, mode syntax.LexMode) (*syntax.GreenNode, int) {
	switch mode {
	case syntax.ModeMisc, syntax.ModeTag:
		return s.triviaRun(pos)
	case syntax.ModeContent:
		end := pos
		for c := s.at(end); isSpace(c) || isLineBreak(c); c = s.at(end) {
			end++
		}
		if end == pos {
			return nil, pos
		}
		// Whitespace is markup trivia only when markup or the end of
		// input follows; otherwise it begins character data.
		if c := s.at(end); c == '<' || c == eof {
			return s.triviaRun(pos)
		}
		return nil, pos
	default:
		return nil, pos
	}
}

// triviaRun collects whitespace and line breaks starting at pos.
func (s *scanner) triviaRun(pos int) (*syntax.GreenNode, int) {
	var items []*syntax.GreenNode
	for {
		c := s.at(pos)
		switch {
		case isSpace(c):
			end := pos + 1
			for isSpace(s.at(end)) {
				end++
			}
			items = append(items, s.cache.Trivia(syntax.KindWhitespaceTrivia, s.slice(pos, end)))
			pos = end
		case isLineBreak(c):
			end := s.lineBreakEnd(pos)
			items = append(items, s.cache.Trivia(syntax.KindEndOfLineTrivia, s.slice(pos, end)))
			pos = end
		default:
			return syntax.TriviaList(items...), pos
		}
	}
}

func (s *scanner) lineBreakEnd(pos int) int {
	if s.at(pos) == '\r' && s.at(pos+1) == '\n' {
		return pos + 2
	}
	return pos + 1
}

func (s *scanner) trailingTrivia(pos int, policy trail) (*syntax.GreenNode, int) {
	if policy == trailNone {
		return nil, pos
	}

	end := pos
	for isSpace(s.at(end)) {
		end++
	}
	hasBreak := isLineBreak(s.at(end))
	if policy == trailCloser && !hasBreak {
		return nil, pos
	}

	var items []*syntax.GreenNode
	if end > pos {
		items = append(items, s.cache.Trivia(syntax.KindWhitespaceTrivia, s.slice(pos, end)))
	}
	if hasBreak {
		brk := s.lineBreakEnd(end)
		items = append(items, s.cache.Trivia(syntax.KindEndOfLineTrivia, s.slice(end, brk)))
		end = brk
	}
	return syntax.TriviaList(items...), end
}

func (s *scanner) lex(pos int, mode syntax.LexMode) lexeme {
	c := s.at(pos)
	if c == eof {
		return lexeme{kind: syntax.KindEndOfFileToken, end: pos}
	}

	switch mode {
	case syntax.ModeMisc:
		if c == '<' {
			return s.lexMarkup(pos)
		}
		end := pos
		for c := s.at(end); c != '<' && c != eof; c = s.at(end) {
			end++
		}
		return lexeme{kind: syntax.KindTextLiteralToken, end: end}

	case syntax.ModeContent:
		switch c {
		case '<':
			return s.lexMarkup(pos)
		case '&':
			return s.lexReference(pos)
		}
		return s.lexContentText(pos)

	case syntax.ModeTag:
		return s.lexTag(pos, c)

	case syntax.ModeDoubleQuoted, syntax.ModeSingleQuoted:
		quote := int('"')
		kind := syntax.KindDoubleQuoteToken
		if mode == syntax.ModeSingleQuoted {
			quote, kind = '\'', syntax.KindSingleQuoteToken
		}
		switch c {
		case quote:
			return lexeme{kind: kind, end: pos + 1, trail: trailInterior}
		case '&':
			return s.lexReference(pos)
		case '<':
			return s.lexMarkup(pos)
		}
		end := pos
		for c := s.at(end); c != quote && c != '&' && c != '<' && c != eof; c = s.at(end) {
			end++
		}
		return lexeme{kind: syntax.KindTextLiteralToken, end: end}

	case syntax.ModeComment:
		if s.hasPrefix(pos, "-->") {
			return lexeme{kind: syntax.KindEndCommentToken, end: pos + 3, trail: trailCloser}
		}
		return s.lexCommentText(pos)

	case syntax.ModeCData:
		if s.hasPrefix(pos, "]]>") {
			return lexeme{kind: syntax.KindEndCDATAToken, end: pos + 3, trail: trailCloser}
		}
		return s.lexUntil(pos, "]]>")

	case syntax.ModeInstruction:
		if s.hasPrefix(pos, "?>") {
			return lexeme{kind: syntax.KindQuestionGreaterThanToken, end: pos + 2, trail: trailCloser}
		}
		return s.lexUntil(pos, "?>")
	}

	return s.lexBad(pos, c)
}

func (s *scanner) lexTag(pos, c int) lexeme {
	switch {
	case c == '<':
		return s.lexMarkup(pos)
	case c == '>':
		return lexeme{kind: syntax.KindGreaterThanToken, end: pos + 1, trail: trailCloser}
	case c == '/' && s.at(pos+1) == '>':
		return lexeme{kind: syntax.KindSlashGreaterThanToken, end: pos + 2, trail: trailCloser}
	case c == '?' && s.at(pos+1) == '>':
		return lexeme{kind: syntax.KindQuestionGreaterThanToken, end: pos + 2, trail: trailCloser}
	case c == '=':
		return lexeme{kind: syntax.KindEqualsToken, end: pos + 1, trail: trailInterior}
	case c == ':':
		return lexeme{kind: syntax.KindColonToken, end: pos + 1, trail: trailInterior}
	case c == '"':
		return lexeme{kind: syntax.KindDoubleQuoteToken, end: pos + 1}
	case c == '\'':
		return lexeme{kind: syntax.KindSingleQuoteToken, end: pos + 1}
	case isNameStart(c):
		end := pos + 1
		for isNameChar(s.at(end)) {
			end++
		}
		return lexeme{kind: syntax.KindNameToken, end: end, trail: trailInterior}
	default:
		return s.lexBad(pos, c)
	}
}

func (s *scanner) lexBad(pos, c int) lexeme {
	return lexeme{
		kind:  syntax.KindBadToken,
		end:   pos + 1,
		diags: []syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrIllegalCharacter, string(rune(c)))},
		trail: trailInterior,
	}
}

// lexMarkup scans a token starting with '<'.
func (s *scanner) lexMarkup(pos int) lexeme {
	switch s.at(pos + 1) {
	case '/':
		return lexeme{kind: syntax.KindLessThanSlashToken, end: pos + 2, trail: trailInterior}
	case '?':
		return lexeme{kind: syntax.KindLessThanQuestionToken, end: pos + 2, trail: trailInterior}
	case '!':
		switch {
		case s.hasPrefix(pos, "<!--"):
			return lexeme{kind: syntax.KindBeginCommentToken, end: pos + 4}
		case s.hasPrefix(pos, "<![CDATA["):
			return lexeme{kind: syntax.KindBeginCDATAToken, end: pos + 9}
		default:
			return s.lexDTD(pos)
		}
	default:
		return lexeme{kind: syntax.KindLessThanToken, end: pos + 1, trail: trailInterior}
	}
}

// lexDTD consumes a markup declaration such as <!DOCTYPE ...>, including
// an internal subset, as one bad token.
func (s *scanner) lexDTD(pos int) lexeme {
	i := pos + 2
	depth, quote := 0, 0
scan:
	for {
		c := s.at(i)
		switch {
		case c == eof:
			break scan
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']' && depth > 0:
			depth--
		case c == '>' && depth == 0:
			i++
			break scan
		}
		i++
	}
	return lexeme{
		kind:  syntax.KindBadToken,
		end:   i,
		diags: []syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrDTDNotSupported)},
		trail: trailCloser,
	}
}

// lexReference scans an entity or character reference starting at '&'.
func (s *scanner) lexReference(pos int) lexeme {
	i := pos + 1
	c := s.at(i)

	switch {
	case c == '#':
		i++
		hex := s.at(i) == 'x'
		if hex {
			i++
		}
		digitsStart := i
		for c := s.at(i); isDigit(c) || (hex && isHexDigit(c)); c = s.at(i) {
			i++
		}
		digits := s.buf.Slice(digitsStart, i)
		if s.at(i) != ';' {
			return s.invalidReference(pos, i)
		}
		i++
		value, ok := decodeCharRef(digits, hex)
		if !ok {
			return s.invalidReference(pos, i)
		}
		return lexeme{kind: syntax.KindEntityReferenceToken, end: i, value: value}

	case isNameStart(c):
		for isNameChar(s.at(i)) {
			i++
		}
		name := s.buf.Slice(pos+1, i)
		if s.at(i) != ';' {
			return lexeme{
				kind:  syntax.KindTextLiteralToken,
				end:   i,
				diags: []syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrBareAmpersand)},
			}
		}
		i++
		if value, ok := predefinedEntities[name]; ok {
			return lexeme{kind: syntax.KindEntityReferenceToken, end: i, value: value}
		}
		return lexeme{
			kind:  syntax.KindEntityReferenceToken,
			end:   i,
			diags: []syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrUnknownEntity, name)},
		}

	default:
		return lexeme{
			kind:  syntax.KindTextLiteralToken,
			end:   pos + 1,
			diags: []syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrBareAmpersand)},
		}
	}
}

func (s *scanner) invalidReference(pos, end int) lexeme {
	return lexeme{
		kind:  syntax.KindEntityReferenceToken,
		end:   end,
		diags: []syntax.Diagnostic{syntax.NewDiagnostic(syntax.ErrInvalidCharacterReference, s.buf.Slice(pos, end))},
	}
}

// lexContentText scans character data up to markup or a reference.
func (s *scanner) lexContentText(pos int) lexeme {
	lx := lexeme{kind: syntax.KindTextLiteralToken}
	end := pos
	for {
		c := s.at(end)
		if c == '<' || c == '&' || c == eof {
			break
		}
		if c == ']' && len(lx.diags) == 0 && s.at(end+1) == ']' && s.at(end+2) == '>' {
			lx.diags = append(lx.diags, syntax.NewDiagnostic(syntax.ErrCDATAEndInContent))
		}
		end++
	}
	lx.end = end
	return lx
}

func (s *scanner) lexCommentText(pos int) lexeme {
	lx := lexeme{kind: syntax.KindTextLiteralToken}
	end := pos
	for {
		c := s.at(end)
		if c == eof {
			break
		}
		if c == '-' && s.at(end+1) == '-' {
			if s.at(end+2) == '>' {
				break
			}
			if len(lx.diags) == 0 {
				lx.diags = append(lx.diags, syntax.NewDiagnostic(syntax.ErrDoubleHyphenInComment))
			}
		}
		end++
	}
	lx.end = end
	return lx
}

// lexUntil scans text up to the terminator or the end of input.
func (s *scanner) lexUntil(pos int, terminator string) lexeme {
	end := pos
	for s.at(end) != eof && !s.hasPrefix(end, terminator) {
		end++
	}
	return lexeme{kind: syntax.KindTextLiteralToken, end: end}
}
