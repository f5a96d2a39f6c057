package syntax

import (
	"hash/maphash"
	"math/bits"
	"slices"
	"sync"
	"sync/atomic"
)

// DefaultCacheSize is the number of entries of the process-wide cache.
const DefaultCacheSize = 1 << 16

const maxCachedSlots = 3

// NodeCache constructs green nodes, possibly returning a shared instance
// equal to the one requested. A cache never changes what is built, only how
// often it is allocated.
type NodeCache interface {
	Node(kind Kind, slots ...*GreenNode) *GreenNode
	Token(spec TokenSpec) *GreenNode
	Trivia(kind Kind, text string) *GreenNode
}

// NoopCache allocates every node.
type NoopCache struct{}

func (NoopCache) Node(kind Kind, slots ...*GreenNode) *GreenNode { return NewNode(kind, slots...) }
func (NoopCache) Token(spec TokenSpec) *GreenNode                { return NewToken(spec) }
func (NoopCache) Trivia(kind Kind, text string) *GreenNode       { return NewTrivia(kind, text) }

// Cache is a bounded, direct-mapped interning table for small subtrees.
// It is safe for concurrent use without locks: entries are replaced
// wholesale and a lost update only costs an allocation.
type Cache struct {
	seed    maphash.Seed
	mask    uint64
	entries []atomic.Pointer[GreenNode]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache creates a cache with at least size entries, rounded up to a
// power of two.
func NewCache(size int) *Cache {
	size = max(size, 16)
	size = 1 << bits.Len(uint(size-1))
	return &Cache{
		seed:    maphash.MakeSeed(),
		mask:    uint64(size - 1),
		entries: make([]atomic.Pointer[GreenNode], size),
	}
}

var defaultCache = sync.OnceValue(func() *Cache {
	return NewCache(DefaultCacheSize)
})

// DefaultCache returns the process-wide cache, creating it on first use.
func DefaultCache() *Cache {
	return defaultCache()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Stats returns the number of hits and misses so far.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func cacheable(n *GreenNode) bool {
	return n == nil || n.flags&(FlagContainsDiagnostics|FlagContainsAnnotations) == 0
}

// Node returns a node with the given kind and slots.
func (c *Cache) Node(kind Kind, slots ...*GreenNode) *GreenNode {
	if len(slots) > maxCachedSlots || slices.ContainsFunc(slots, func(s *GreenNode) bool { return !cacheable(s) }) {
		return NewNode(kind, slots...)
	}

	var h maphash.Hash
	h.SetSeed(c.seed)
	maphash.WriteComparable(&h, kind)
	for _, s := range slots {
		maphash.WriteComparable(&h, s)
	}
	entry := &c.entries[h.Sum64()&c.mask]

	if e := entry.Load(); e != nil && e.kind == kind && !e.kind.IsToken() && slices.Equal(e.slots, slots) {
		c.hits.Add(1)
		return e
	}
	c.misses.Add(1)
	n := NewNode(kind, slots...)
	entry.Store(n)
	return n
}

// Token returns a token matching spec.
func (c *Cache) Token(spec TokenSpec) *GreenNode {
	if !cacheable(spec.Leading) || !cacheable(spec.Trailing) {
		return NewToken(spec)
	}
	if spec.Value == "" {
		spec.Value = spec.Text
	}

	var h maphash.Hash
	h.SetSeed(c.seed)
	maphash.WriteComparable(&h, spec)
	entry := &c.entries[h.Sum64()&c.mask]

	if e := entry.Load(); e != nil && e.kind == spec.Kind && e.flags&FlagIsMissing == 0 &&
		e.text == spec.Text && e.value == spec.Value && e.mode == spec.Mode &&
		e.lookahead == spec.Lookahead && e.leading == spec.Leading && e.trailing == spec.Trailing {
		c.hits.Add(1)
		return e
	}
	c.misses.Add(1)
	n := NewToken(spec)
	entry.Store(n)
	return n
}

// Trivia returns whitespace or end-of-line trivia with the given text.
func (c *Cache) Trivia(kind Kind, text string) *GreenNode {
	var h maphash.Hash
	h.SetSeed(c.seed)
	maphash.WriteComparable(&h, kind)
	h.WriteString(text)
	entry := &c.entries[h.Sum64()&c.mask]

	if e := entry.Load(); e != nil && e.kind == kind && e.text == text {
		c.hits.Add(1)
		return e
	}
	c.misses.Add(1)
	n := NewTrivia(kind, text)
	entry.Store(n)
	return n
}
