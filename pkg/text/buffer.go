// Package text provides the text abstractions the syntax tree is built on:
// a read-only buffer, half-open spans, change ranges and a line index.
// Offsets are byte offsets into UTF-8 text.
package text

// Buffer is the only input dependency of the scanner.
// Implementations must be safe for concurrent reads.
type Buffer interface {
	// Len returns the length of the text in bytes.
	Len() int

	// ByteAt returns the byte at index i. i must be in [0, Len()).
	ByteAt(i int) byte

	// Slice returns the text in [start, end).
	Slice(start, end int) string

	// CopyTo copies text starting at src into dst and returns the number of
	// bytes copied.
	CopyTo(src int, dst []byte) int
}

// StringBuffer is a Buffer backed by an immutable string.
type StringBuffer struct {
	s string
}

// NewStringBuffer wraps s in a Buffer.
func NewStringBuffer(s string) *StringBuffer {
	return &StringBuffer{s: s}
}

// Len implements Buffer.
func (b *StringBuffer) Len() int {
	return len(b.s)
}

// ByteAt implements Buffer.
func (b *StringBuffer) ByteAt(i int) byte {
	return b.s[i]
}

// Slice implements Buffer. Out-of-range bounds are clamped.
func (b *StringBuffer) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(b.s) {
		end = len(b.s)
	}
	if start >= end {
		return ""
	}
	return b.s[start:end]
}

// CopyTo implements Buffer.
func (b *StringBuffer) CopyTo(src int, dst []byte) int {
	if src < 0 || src >= len(b.s) {
		return 0
	}
	return copy(dst, b.s[src:])
}

// String returns the full text.
func (b *StringBuffer) String() string {
	return b.s
}

// String returns the full contents of any Buffer.
func String(b Buffer) string {
	if sb, ok := b.(*StringBuffer); ok {
		return sb.s
	}
	return b.Slice(0, b.Len())
}
