package text

import "sort"

// LineInfo holds metadata for a single line.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where the line break begins.
	// For a line without a line break this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the line break (or end of text).
	EndOffset int
}

// Position is a 1-based line and column. Columns count bytes.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if this position has positive values.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// LineIndex maps between byte offsets and line/column positions.
type LineIndex struct {
	lines  []LineInfo
	length int
}

// NewLineIndex builds the line index of s. It recognizes LF, CRLF and a
// lone CR as line breaks.
func NewLineIndex(s string) *LineIndex {
	idx := &LineIndex{length: len(s)}
	lineStart := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			idx.lines = append(idx.lines, LineInfo{StartOffset: lineStart, NewlineStart: i, EndOffset: i + 1})
			lineStart = i + 1
		case '\r':
			end := i + 1
			if end < len(s) && s[end] == '\n' {
				end++
			}
			idx.lines = append(idx.lines, LineInfo{StartOffset: lineStart, NewlineStart: i, EndOffset: end})
			lineStart = end
			i = end - 1
		}
	}

	idx.lines = append(idx.lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(s),
		EndOffset:    len(s),
	})

	return idx
}

// LineCount returns the number of lines.
func (idx *LineIndex) LineCount() int {
	return len(idx.lines)
}

// Line returns the metadata of a 1-based line.
func (idx *LineIndex) Line(line int) (LineInfo, bool) {
	if line < 1 || line > len(idx.lines) {
		return LineInfo{}, false
	}
	return idx.lines[line-1], true
}

// PositionAt converts a byte offset to a 1-based position. Offsets past the
// end clamp to the end of the last line.
func (idx *LineIndex) PositionAt(offset int) Position {
	if offset < 0 {
		return Position{}
	}
	if offset > idx.length {
		offset = idx.length
	}

	lineIdx := sort.Search(len(idx.lines), func(i int) bool {
		return idx.lines[i].EndOffset > offset
	})
	if lineIdx >= len(idx.lines) {
		lineIdx = len(idx.lines) - 1
	}

	return Position{Line: lineIdx + 1, Column: offset - idx.lines[lineIdx].StartOffset + 1}
}

// Offset converts a 1-based position to a byte offset.
func (idx *LineIndex) Offset(pos Position) (int, bool) {
	info, ok := idx.Line(pos.Line)
	if !ok || pos.Column < 1 {
		return 0, false
	}
	offset := info.StartOffset + pos.Column - 1
	if offset > info.EndOffset {
		return 0, false
	}
	return offset, true
}
