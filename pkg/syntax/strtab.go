package syntax

import (
	"strings"
	"unique"
)

const (
	// maxInternLength bounds the strings the table canonicalizes. Longer
	// text is copied so the tree never pins the source buffer.
	maxInternLength = 64

	maxLocalStrings = 4096
)

// StringTable deduplicates short strings during one parse. Lookups hit a
// private map first and fall back to the process-wide unique handles, so
// names repeated across documents share one copy.
//
// A StringTable is not safe for concurrent use.
type StringTable struct {
	local map[string]string
}

// NewStringTable creates an empty table.
func NewStringTable() *StringTable {
	return &StringTable{local: make(map[string]string)}
}

// Intern returns a canonical copy of s that does not alias its argument.
func (t *StringTable) Intern(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > maxInternLength:
		return strings.Clone(s)
	}
	if v, ok := t.local[s]; ok {
		return v
	}
	v := unique.Make(s).Value()
	if len(t.local) < maxLocalStrings {
		t.local[v] = v
	}
	return v
}
