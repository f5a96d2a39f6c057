package syntax

import "strings"

const (
	nextLine      = "\u0085"
	lineSeparator = "\u2028"
)

var lineEndingReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r"+nextLine, "\n",
	"\r", "\n",
	nextLine, "\n",
	lineSeparator, "\n",
)

// NormalizeLineEndings translates CRLF, CR, CR NEL, NEL and LS line breaks
// to a single LF.
func NormalizeLineEndings(s string) string {
	if !strings.ContainsAny(s, "\r"+nextLine+lineSeparator) {
		return s
	}
	return lineEndingReplacer.Replace(s)
}

var attributeWhitespace = strings.NewReplacer("\n", " ", "\t", " ")

// NormalizeAttributeText applies attribute-value normalization to literal
// text: line breaks are normalized, then each tab and line feed becomes a
// space. Character references are not literal text and must not be passed
// through it.
func NormalizeAttributeText(s string) string {
	return attributeWhitespace.Replace(NormalizeLineEndings(s))
}

// attributeValue computes the normalized value of a String node.
func attributeValue(str *GreenNode) string {
	if str == nil || str.kind != KindString {
		return ""
	}
	var b strings.Builder
	for _, tok := range str.Slot(1).Items() {
		if tok.kind == KindEntityReferenceToken {
			b.WriteString(tok.value)
			continue
		}
		b.WriteString(NormalizeAttributeText(tok.value))
	}
	return b.String()
}

// rawValue concatenates the values of the tokens in a text list.
func rawValue(list *GreenNode) string {
	var b strings.Builder
	for _, tok := range list.Items() {
		b.WriteString(tok.value)
	}
	return b.String()
}
