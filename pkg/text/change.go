package text

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Errors returned when a change set does not describe a valid edit.
var (
	ErrChangeOutOfRange   = errors.New("change out of range")
	ErrOverlappingChanges = errors.New("overlapping changes")
	ErrLengthMismatch     = errors.New("new text length does not match changes")
)

// ChangeRange describes an edit: Span is the replaced range in the old text
// and NewLength is the length of the replacement.
type ChangeRange struct {
	Span      Span
	NewLength int
}

// NewChangeRange returns the change replacing span with newLength bytes.
func NewChangeRange(span Span, newLength int) ChangeRange {
	return ChangeRange{Span: span, NewLength: newLength}
}

// Delta is the change in text length caused by the edit.
func (c ChangeRange) Delta() int {
	return c.NewLength - c.Span.Length
}

// NewSpan returns the span the replacement occupies in the new text, given
// the accumulated delta of the changes preceding it.
func (c ChangeRange) NewSpan(deltaBefore int) Span {
	return Span{Start: c.Span.Start + deltaBefore, Length: c.NewLength}
}

func (c ChangeRange) String() string {
	return fmt.Sprintf("%s->%d", c.Span, c.NewLength)
}

// Change is a ChangeRange together with the replacement text.
type Change struct {
	Span    Span
	NewText string
}

// Range returns the ChangeRange of the change.
func (c Change) Range() ChangeRange {
	return ChangeRange{Span: c.Span, NewLength: len(c.NewText)}
}

// ChangeBuilder accumulates changes against one text.
type ChangeBuilder struct {
	Changes []Change
}

// NewChangeBuilder creates an empty ChangeBuilder.
func NewChangeBuilder() *ChangeBuilder {
	return &ChangeBuilder{
		Changes: make([]Change, 0),
	}
}

// Replace adds a change that replaces bytes [start, end) with newText.
func (b *ChangeBuilder) Replace(start, end int, newText string) *ChangeBuilder {
	b.Changes = append(b.Changes, Change{Span: NewSpan(start, end), NewText: newText})
	return b
}

// Insert adds a change that inserts text at offset.
func (b *ChangeBuilder) Insert(offset int, text string) *ChangeBuilder {
	return b.Replace(offset, offset, text)
}

// Delete adds a change that deletes bytes [start, end).
func (b *ChangeBuilder) Delete(start, end int) *ChangeBuilder {
	return b.Replace(start, end, "")
}

// Ranges returns the ChangeRanges of the accumulated changes.
func (b *ChangeBuilder) Ranges() []ChangeRange {
	ranges := make([]ChangeRange, len(b.Changes))
	for i, c := range b.Changes {
		ranges[i] = c.Range()
	}
	return ranges
}

// SortChanges returns the changes ordered by start offset after checking
// that they fit in a text of oldLength bytes and do not overlap. Two
// insertions at the same offset are rejected because their order is
// ambiguous.
func SortChanges(changes []ChangeRange, oldLength int) ([]ChangeRange, error) {
	sorted := slices.Clone(changes)
	slices.SortStableFunc(sorted, func(a, b ChangeRange) int {
		return a.Span.Start - b.Span.Start
	})

	prevEnd := -1
	for i, c := range sorted {
		if c.Span.Start < 0 || c.Span.Length < 0 || c.NewLength < 0 || c.Span.End() > oldLength {
			return nil, fmt.Errorf("change %d %s: %w", i, c, ErrChangeOutOfRange)
		}
		if c.Span.Start < prevEnd || (i > 0 && c.Span.Start == sorted[i-1].Span.Start) {
			return nil, fmt.Errorf("change %d %s: %w", i, c, ErrOverlappingChanges)
		}
		prevEnd = c.Span.End()
	}

	return sorted, nil
}

// CheckLength verifies that applying changes to a text of oldLength bytes
// yields newLength bytes.
func CheckLength(changes []ChangeRange, oldLength, newLength int) error {
	length := oldLength
	for _, c := range changes {
		length += c.Delta()
	}
	if length != newLength {
		return fmt.Errorf("expected %d bytes, got %d: %w", length, newLength, ErrLengthMismatch)
	}
	return nil
}

// Collapse returns one ChangeRange covering all changes, expressed against
// the old text. changes must be sorted.
func Collapse(changes []ChangeRange) ChangeRange {
	if len(changes) == 0 {
		return ChangeRange{}
	}
	first := changes[0]
	last := changes[len(changes)-1]
	delta := 0
	for _, c := range changes {
		delta += c.Delta()
	}
	span := NewSpan(first.Span.Start, last.Span.End())
	return ChangeRange{Span: span, NewLength: span.Length + delta}
}

// ApplyChanges applies changes, all expressed against old, in document
// order. It returns the new text and the validated, sorted change ranges.
func ApplyChanges(old string, changes []Change) (string, []ChangeRange, error) {
	ranges := make([]ChangeRange, len(changes))
	for i, c := range changes {
		ranges[i] = c.Range()
	}

	sorted := slices.Clone(changes)
	slices.SortStableFunc(sorted, func(a, b Change) int {
		return a.Span.Start - b.Span.Start
	})

	sortedRanges, err := SortChanges(ranges, len(old))
	if err != nil {
		return "", nil, err
	}

	delta := 0
	for _, c := range sorted {
		delta += len(c.NewText) - c.Span.Length
	}

	var out strings.Builder
	out.Grow(len(old) + delta)

	cursor := 0
	for _, c := range sorted {
		out.WriteString(old[cursor:c.Span.Start])
		out.WriteString(c.NewText)
		cursor = c.Span.End()
	}
	out.WriteString(old[cursor:])

	return out.String(), sortedRanges, nil
}
