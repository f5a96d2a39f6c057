package syntax

// Kind classifies a green node, token or trivia.
type Kind uint16

// Node kinds, one per grammar production.
const (
	KindNone Kind = iota

	KindDocument
	KindXMLDeclaration
	KindDeclarationOption
	KindElement
	KindEmptyElement
	KindStartTag
	KindEndTag
	KindName
	KindPrefix
	KindAttribute
	KindString
	KindComment
	KindCDATASection
	KindProcessingInstruction
	KindText
	KindList

	// Tokens.
	KindLessThanToken            // <
	KindLessThanSlashToken       // </
	KindGreaterThanToken         // >
	KindSlashGreaterThanToken    // />
	KindEqualsToken              // =
	KindColonToken               // :
	KindDoubleQuoteToken         // "
	KindSingleQuoteToken         // '
	KindLessThanQuestionToken    // <?
	KindQuestionGreaterThanToken // ?>
	KindBeginCommentToken        // <!--
	KindEndCommentToken          // -->
	KindBeginCDATAToken          // <![CDATA[
	KindEndCDATAToken            // ]]>
	KindNameToken
	KindXMLKeyword // the "xml" target of a declaration
	KindTextLiteralToken
	KindEntityReferenceToken
	KindBadToken
	KindEndOfFileToken

	// Trivia.
	KindWhitespaceTrivia
	KindEndOfLineTrivia
	KindSkippedTokensTrivia

	kindCount
)

var kindNames = [kindCount]string{
	KindNone:                     "None",
	KindDocument:                 "Document",
	KindXMLDeclaration:           "XMLDeclaration",
	KindDeclarationOption:        "DeclarationOption",
	KindElement:                  "Element",
	KindEmptyElement:             "EmptyElement",
	KindStartTag:                 "StartTag",
	KindEndTag:                   "EndTag",
	KindName:                     "Name",
	KindPrefix:                   "Prefix",
	KindAttribute:                "Attribute",
	KindString:                   "String",
	KindComment:                  "Comment",
	KindCDATASection:             "CDATASection",
	KindProcessingInstruction:    "ProcessingInstruction",
	KindText:                     "Text",
	KindList:                     "List",
	KindLessThanToken:            "LessThanToken",
	KindLessThanSlashToken:       "LessThanSlashToken",
	KindGreaterThanToken:         "GreaterThanToken",
	KindSlashGreaterThanToken:    "SlashGreaterThanToken",
	KindEqualsToken:              "EqualsToken",
	KindColonToken:               "ColonToken",
	KindDoubleQuoteToken:         "DoubleQuoteToken",
	KindSingleQuoteToken:         "SingleQuoteToken",
	KindLessThanQuestionToken:    "LessThanQuestionToken",
	KindQuestionGreaterThanToken: "QuestionGreaterThanToken",
	KindBeginCommentToken:        "BeginCommentToken",
	KindEndCommentToken:          "EndCommentToken",
	KindBeginCDATAToken:          "BeginCDATAToken",
	KindEndCDATAToken:            "EndCDATAToken",
	KindNameToken:                "NameToken",
	KindXMLKeyword:               "XMLKeyword",
	KindTextLiteralToken:         "TextLiteralToken",
	KindEntityReferenceToken:     "EntityReferenceToken",
	KindBadToken:                 "BadToken",
	KindEndOfFileToken:           "EndOfFileToken",
	KindWhitespaceTrivia:         "WhitespaceTrivia",
	KindEndOfLineTrivia:          "EndOfLineTrivia",
	KindSkippedTokensTrivia:      "SkippedTokensTrivia",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Unknown"
}

// IsToken reports whether k is a terminal kind.
func (k Kind) IsToken() bool {
	return k >= KindLessThanToken && k <= KindEndOfFileToken
}

// IsTrivia reports whether k is a trivia kind.
func (k Kind) IsTrivia() bool {
	return k >= KindWhitespaceTrivia && k <= KindSkippedTokensTrivia
}

// IsElement reports whether k is an element production.
func (k Kind) IsElement() bool {
	return k == KindElement || k == KindEmptyElement
}

// FixedText returns the spelling of punctuation tokens, or "" for kinds
// whose text varies.
func (k Kind) FixedText() string {
	switch k {
	case KindLessThanToken:
		return "<"
	case KindLessThanSlashToken:
		return "</"
	case KindGreaterThanToken:
		return ">"
	case KindSlashGreaterThanToken:
		return "/>"
	case KindEqualsToken:
		return "="
	case KindColonToken:
		return ":"
	case KindDoubleQuoteToken:
		return `"`
	case KindSingleQuoteToken:
		return "'"
	case KindLessThanQuestionToken:
		return "<?"
	case KindQuestionGreaterThanToken:
		return "?>"
	case KindBeginCommentToken:
		return "<!--"
	case KindEndCommentToken:
		return "-->"
	case KindBeginCDATAToken:
		return "<![CDATA["
	case KindEndCDATAToken:
		return "]]>"
	case KindXMLKeyword:
		return "xml"
	default:
		return ""
	}
}

// childListSlot returns the slot holding the child list of kind k, or -1.
func (k Kind) childListSlot() int {
	switch k {
	case KindElement, KindString, KindComment, KindCDATASection:
		return 1
	case KindStartTag, KindEmptyElement, KindProcessingInstruction:
		return 2
	case KindDocument:
		return 3
	case KindText:
		return 0
	default:
		return -1
	}
}
