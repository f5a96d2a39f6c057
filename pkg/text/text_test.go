package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/xmlsyntax/pkg/text"
)

func TestStringBuffer(t *testing.T) {
	t.Parallel()

	buf := text.NewStringBuffer("héllo")
	assert.Equal(t, 6, buf.Len())
	assert.Equal(t, byte('h'), buf.ByteAt(0))
	assert.Equal(t, "él", buf.Slice(1, 4))
	assert.Equal(t, "héllo", buf.Slice(-3, 99))
	assert.Empty(t, buf.Slice(4, 2))

	dst := make([]byte, 3)
	assert.Equal(t, 3, buf.CopyTo(3, dst))
	assert.Equal(t, "llo", string(dst))
	assert.Equal(t, 0, buf.CopyTo(6, dst))
	assert.Equal(t, "héllo", text.String(buf))
}

func TestSpan(t *testing.T) {
	t.Parallel()

	s := text.NewSpan(2, 5)
	assert.Equal(t, 5, s.End())
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(5))
	assert.True(t, s.ContainsSpan(text.NewSpan(3, 5)))
	assert.False(t, s.ContainsSpan(text.NewSpan(3, 6)))
	assert.Equal(t, "[2..5)", s.String())
	assert.True(t, text.NewSpan(5, 3).IsEmpty())

	tests := []struct {
		name       string
		other      text.Span
		overlaps   bool
		intersects bool
	}{
		{"inside", text.NewSpan(3, 4), true, true},
		{"touching end", text.NewSpan(5, 7), false, true},
		{"touching start", text.NewSpan(0, 2), false, true},
		{"disjoint", text.NewSpan(6, 8), false, false},
		{"empty inside", text.NewSpan(3, 3), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.overlaps, s.OverlapsWith(tt.other))
			assert.Equal(t, tt.intersects, s.IntersectsWith(tt.other))
		})
	}

	assert.Equal(t, text.NewSpan(0, 5), s.Union(text.NewSpan(0, 1)))
}

func TestSortChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		changes []text.ChangeRange
		wantErr error
	}{
		{
			name: "sorts disjoint changes",
			changes: []text.ChangeRange{
				text.NewChangeRange(text.NewSpan(6, 8), 0),
				text.NewChangeRange(text.NewSpan(0, 1), 3),
			},
		},
		{
			name:    "out of range",
			changes: []text.ChangeRange{text.NewChangeRange(text.NewSpan(8, 12), 0)},
			wantErr: text.ErrChangeOutOfRange,
		},
		{
			name: "overlapping",
			changes: []text.ChangeRange{
				text.NewChangeRange(text.NewSpan(0, 4), 0),
				text.NewChangeRange(text.NewSpan(3, 5), 1),
			},
			wantErr: text.ErrOverlappingChanges,
		},
		{
			name: "two insertions at one offset",
			changes: []text.ChangeRange{
				text.NewChangeRange(text.NewSpan(2, 2), 1),
				text.NewChangeRange(text.NewSpan(2, 2), 1),
			},
			wantErr: text.ErrOverlappingChanges,
		},
		{
			name: "adjacent changes",
			changes: []text.ChangeRange{
				text.NewChangeRange(text.NewSpan(2, 4), 0),
				text.NewChangeRange(text.NewSpan(4, 4), 2),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sorted, err := text.SortChanges(tt.changes, 10)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			for i := 1; i < len(sorted); i++ {
				assert.LessOrEqual(t, sorted[i-1].Span.End(), sorted[i].Span.Start)
			}
		})
	}
}

func TestCheckLength(t *testing.T) {
	t.Parallel()

	changes := []text.ChangeRange{text.NewChangeRange(text.NewSpan(1, 3), 5)}
	require.NoError(t, text.CheckLength(changes, 10, 13))
	require.ErrorIs(t, text.CheckLength(changes, 10, 10), text.ErrLengthMismatch)
}

func TestApplyChanges(t *testing.T) {
	t.Parallel()

	b := text.NewChangeBuilder().
		Replace(5, 8, "big").
		Insert(0, "<").
		Delete(9, 10)

	got, ranges, err := text.ApplyChanges("a old one!", b.Changes)
	require.NoError(t, err)
	assert.Equal(t, "<a oldbige", got)
	require.Len(t, ranges, 3)
	assert.Equal(t, 0, ranges[0].Span.Start)
	require.NoError(t, text.CheckLength(ranges, 10, len(got)))

	collapsed := text.Collapse(ranges)
	assert.Equal(t, text.NewSpan(0, 10), collapsed.Span)
	assert.Equal(t, len(got), collapsed.NewLength)

	_, _, err = text.ApplyChanges("abc", []text.Change{{Span: text.NewSpan(2, 9)}})
	require.ErrorIs(t, err, text.ErrChangeOutOfRange)
}

func TestChangeRangeNewSpan(t *testing.T) {
	t.Parallel()

	c := text.NewChangeRange(text.NewSpan(4, 6), 5)
	assert.Equal(t, 3, c.Delta())
	assert.Equal(t, text.NewSpan(7, 12), c.NewSpan(3))
	assert.Equal(t, "[4..6)->5", c.String())
}

func TestLineIndex(t *testing.T) {
	t.Parallel()

	idx := text.NewLineIndex("ab\ncd\r\nef\rg")
	assert.Equal(t, 4, idx.LineCount())

	line, ok := idx.Line(2)
	require.True(t, ok)
	assert.Equal(t, text.LineInfo{StartOffset: 3, NewlineStart: 5, EndOffset: 7}, line)

	_, ok = idx.Line(5)
	assert.False(t, ok)

	tests := []struct {
		offset int
		want   text.Position
	}{
		{0, text.Position{Line: 1, Column: 1}},
		{2, text.Position{Line: 1, Column: 3}},
		{3, text.Position{Line: 2, Column: 1}},
		{6, text.Position{Line: 2, Column: 4}},
		{7, text.Position{Line: 3, Column: 1}},
		{10, text.Position{Line: 4, Column: 1}},
		{11, text.Position{Line: 4, Column: 2}},
		{99, text.Position{Line: 4, Column: 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, idx.PositionAt(tt.offset), "offset %d", tt.offset)
		if tt.offset <= 11 {
			off, ok := idx.Offset(tt.want)
			require.True(t, ok)
			assert.Equal(t, tt.offset, off)
		}
	}

	assert.False(t, idx.PositionAt(-1).IsValid())
	_, ok = idx.Offset(text.Position{Line: 1, Column: 0})
	assert.False(t, ok)
}
