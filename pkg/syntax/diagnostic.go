package syntax

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// ErrorID identifies a kind of syntax error.
type ErrorID uint16

// Error kinds. Lexical errors come first, then structural, value and
// unsupported-construct errors.
const (
	ErrNone ErrorID = iota

	// Lexical.
	ErrIllegalCharacter
	ErrUnterminatedComment
	ErrUnterminatedCDATA
	ErrUnterminatedInstruction
	ErrUnterminatedString
	ErrDoubleHyphenInComment
	ErrInvalidCharacterReference
	ErrUnknownEntity
	ErrBareAmpersand
	ErrLessThanInAttributeValue
	ErrCDATAEndInContent

	// Structural.
	ErrExpectedToken
	ErrExpectedName
	ErrExpectedAttributeValue
	ErrUnexpectedContent
	ErrMissingEndTag
	ErrMismatchedEndTag
	ErrMissingRoot
	ErrMultipleRoots
	ErrMisplacedDeclaration
	ErrReservedInstructionTarget

	// Values and attributes.
	ErrDuplicateAttribute
	ErrMissingVersion
	ErrDeclarationOrder
	ErrDeclarationValue
	ErrUnknownDeclarationOption

	// Unsupported constructs.
	ErrDTDNotSupported

	errorIDCount
)

var errorDescriptions = [errorIDCount]string{
	ErrNone:                      "no error",
	ErrIllegalCharacter:          "illegal character %q",
	ErrUnterminatedComment:       "comment is not terminated, '-->' expected",
	ErrUnterminatedCDATA:         "CDATA section is not terminated, ']]>' expected",
	ErrUnterminatedInstruction:   "processing instruction is not terminated, '?>' expected",
	ErrUnterminatedString:        "string literal is not terminated",
	ErrDoubleHyphenInComment:     "'--' is not allowed inside a comment",
	ErrInvalidCharacterReference: "invalid character reference %q",
	ErrUnknownEntity:             "reference to undeclared entity %q",
	ErrBareAmpersand:             "'&' must start a character or entity reference",
	ErrLessThanInAttributeValue:  "'<' is not allowed in an attribute value",
	ErrCDATAEndInContent:         "']]>' is not allowed in content",
	ErrExpectedToken:             "%q expected",
	ErrExpectedName:              "name expected",
	ErrExpectedAttributeValue:    "quoted attribute value expected",
	ErrUnexpectedContent:         "unexpected %s",
	ErrMissingEndTag:             "element %q has no end tag",
	ErrMismatchedEndTag:          "end tag %q does not match start tag %q",
	ErrMissingRoot:               "the document has no root element",
	ErrMultipleRoots:             "the document has more than one root element",
	ErrMisplacedDeclaration:      "the XML declaration must be at the start of the document",
	ErrReservedInstructionTarget: "processing instruction target %q is reserved",
	ErrDuplicateAttribute:        "duplicate attribute %q",
	ErrMissingVersion:            "the XML declaration must specify a version",
	ErrDeclarationOrder:          "%q must come before %q",
	ErrDeclarationValue:          "invalid value %q for %q",
	ErrUnknownDeclarationOption:  "unknown XML declaration option %q",
	ErrDTDNotSupported:           "DTD declarations are not supported",
}

var errorNames = [errorIDCount]string{
	ErrNone:                      "None",
	ErrIllegalCharacter:          "IllegalCharacter",
	ErrUnterminatedComment:       "UnterminatedComment",
	ErrUnterminatedCDATA:         "UnterminatedCDATA",
	ErrUnterminatedInstruction:   "UnterminatedInstruction",
	ErrUnterminatedString:        "UnterminatedString",
	ErrDoubleHyphenInComment:     "DoubleHyphenInComment",
	ErrInvalidCharacterReference: "InvalidCharacterReference",
	ErrUnknownEntity:             "UnknownEntity",
	ErrBareAmpersand:             "BareAmpersand",
	ErrLessThanInAttributeValue:  "LessThanInAttributeValue",
	ErrCDATAEndInContent:         "CDATAEndInContent",
	ErrExpectedToken:             "ExpectedToken",
	ErrExpectedName:              "ExpectedName",
	ErrExpectedAttributeValue:    "ExpectedAttributeValue",
	ErrUnexpectedContent:         "UnexpectedContent",
	ErrMissingEndTag:             "MissingEndTag",
	ErrMismatchedEndTag:          "MismatchedEndTag",
	ErrMissingRoot:               "MissingRoot",
	ErrMultipleRoots:             "MultipleRoots",
	ErrMisplacedDeclaration:      "MisplacedDeclaration",
	ErrReservedInstructionTarget: "ReservedInstructionTarget",
	ErrDuplicateAttribute:        "DuplicateAttribute",
	ErrMissingVersion:            "MissingVersion",
	ErrDeclarationOrder:          "DeclarationOrder",
	ErrDeclarationValue:          "DeclarationValue",
	ErrUnknownDeclarationOption:  "UnknownDeclarationOption",
	ErrDTDNotSupported:           "DTDNotSupported",
}

// String returns the error kind name.
func (id ErrorID) String() string {
	if id < errorIDCount {
		return errorNames[id]
	}
	return fmt.Sprintf("ErrorID(%d)", uint16(id))
}

// Code returns the stable diagnostic code, e.g. "XML0017".
func (id ErrorID) Code() string {
	return fmt.Sprintf("XML%04d", uint16(id))
}

// Severity grades a diagnostic.
type Severity string

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Severity returns the grade of the error kind. Unsupported constructs are
// warnings, everything else is an error.
func (id ErrorID) Severity() Severity {
	if id == ErrDTDNotSupported {
		return SeverityWarning
	}
	return SeverityError
}

// Template returns the unformatted message of the error kind.
func (id ErrorID) Template() string {
	if id < errorIDCount {
		return errorDescriptions[id]
	}
	return ""
}

// AllErrorIDs returns every error kind except ErrNone, in code order.
func AllErrorIDs() []ErrorID {
	ids := make([]ErrorID, 0, errorIDCount-1)
	for id := ErrNone + 1; id < errorIDCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParseErrorID looks up an error kind by code ("XML0017") or by name
// ("MissingEndTag"), ignoring case.
func ParseErrorID(s string) (ErrorID, bool) {
	for id := ErrNone + 1; id < errorIDCount; id++ {
		if strings.EqualFold(s, id.Code()) || strings.EqualFold(s, errorNames[id]) {
			return id, true
		}
	}
	return ErrNone, false
}

// Diagnostic is an error attached to a green node. Its span is the span of
// the owning node.
type Diagnostic struct {
	ID   ErrorID
	Args []any
}

// NewDiagnostic creates a diagnostic of the given kind.
func NewDiagnostic(id ErrorID, args ...any) Diagnostic {
	return Diagnostic{ID: id, Args: args}
}

// Description returns the human-readable message.
func (d Diagnostic) Description() string {
	if d.ID >= errorIDCount {
		return d.ID.String()
	}
	format := errorDescriptions[d.ID]
	if len(d.Args) == 0 {
		return format
	}
	return fmt.Sprintf(format, d.Args...)
}

// Error implements error.
func (d Diagnostic) Error() string {
	return d.ID.Code() + ": " + d.Description()
}

// Equal reports whether two diagnostics have the same kind and arguments.
func (d Diagnostic) Equal(other Diagnostic) bool {
	return d.ID == other.ID && slices.Equal(d.Args, other.Args)
}

// LocatedDiagnostic is a diagnostic resolved against a red tree.
type LocatedDiagnostic struct {
	Diagnostic
	Span text.Span
	Kind Kind
}

// DiagnosticsEqual reports whether a and b hold equal diagnostics in the
// same order.
func DiagnosticsEqual(a, b []Diagnostic) bool {
	return slices.EqualFunc(a, b, Diagnostic.Equal)
}
