package text

import "fmt"

// Span is the half-open byte range [Start, Start+Length).
type Span struct {
	Start  int
	Length int
}

// NewSpan returns the span [start, end).
func NewSpan(start, end int) Span {
	if end < start {
		end = start
	}
	return Span{Start: start, Length: end - start}
}

// End returns the exclusive end offset.
func (s Span) End() int {
	return s.Start + s.Length
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.Length == 0
}

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End()
}

// ContainsSpan reports whether other lies entirely inside s.
func (s Span) ContainsSpan(other Span) bool {
	return other.Start >= s.Start && other.End() <= s.End()
}

// OverlapsWith reports whether the two spans share at least one byte.
func (s Span) OverlapsWith(other Span) bool {
	return max(s.Start, other.Start) < min(s.End(), other.End())
}

// IntersectsWith reports whether the spans overlap or touch. An empty span
// intersects a span it lies on or at the edge of.
func (s Span) IntersectsWith(other Span) bool {
	return other.Start <= s.End() && other.End() >= s.Start
}

// Union returns the smallest span covering both.
func (s Span) Union(other Span) Span {
	return NewSpan(min(s.Start, other.Start), max(s.End(), other.End()))
}

// String formats the span as [start..end).
func (s Span) String() string {
	return fmt.Sprintf("[%d..%d)", s.Start, s.End())
}
