package parser

import (
	"strconv"
	"unicode/utf8"
)

// predefinedEntities are the only named entities resolved without a DTD.
var predefinedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// decodeCharRef decodes the digits of a numeric character reference. It
// returns false when the digits do not denote a character XML allows.
func decodeCharRef(digits string, hex bool) (string, bool) {
	base := 10
	if hex {
		base = 16
	}
	cp, err := strconv.ParseUint(digits, base, 32)
	if err != nil || !isXMLChar(rune(cp)) {
		return "", false
	}
	return string(rune(cp)), true
}

// isXMLChar reports whether r is in the Char production of XML 1.0.
func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	default:
		return false
	}
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c int) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// isNameStart accepts ASCII letters, underscore and any non-ASCII byte.
// Multi-byte characters are not validated against the XML name ranges.
func isNameStart(c int) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= utf8.RuneSelf
}

func isNameChar(c int) bool {
	return isNameStart(c) || isDigit(c) || c == '-' || c == '.'
}

func isSpace(c int) bool {
	return c == ' ' || c == '\t'
}

func isLineBreak(c int) bool {
	return c == '\n' || c == '\r'
}
