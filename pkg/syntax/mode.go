package syntax

// LexMode is the lexical context a token was scanned in. The same bytes
// scan differently depending on the mode, so a token can only be reused
// where the parser would request the same mode.
type LexMode uint8

// Lexical modes.
const (
	ModeMisc LexMode = iota
	ModeTag
	ModeContent
	ModeDoubleQuoted
	ModeSingleQuoted
	ModeComment
	ModeCData
	ModeInstruction
	modeCount
)

var modeNames = [modeCount]string{
	ModeMisc:         "Misc",
	ModeTag:          "Tag",
	ModeContent:      "Content",
	ModeDoubleQuoted: "DoubleQuoted",
	ModeSingleQuoted: "SingleQuoted",
	ModeComment:      "Comment",
	ModeCData:        "CData",
	ModeInstruction:  "Instruction",
}

func (m LexMode) String() string {
	if m < modeCount {
		return modeNames[m]
	}
	return "Unknown"
}
