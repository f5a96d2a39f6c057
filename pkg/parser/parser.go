// Package parser builds lossless XML syntax trees, from scratch or
// incrementally from a previous tree and a set of text changes.
//
// Parsing never fails. Whatever the input, the result is a single Document
// whose full text is exactly the input; problems are reported as
// diagnostics on the nodes involved.
package parser

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/xmlsyntax/internal/logging"
	"github.com/yaklabco/xmlsyntax/pkg/config"
	"github.com/yaklabco/xmlsyntax/pkg/syntax"
	"github.com/yaklabco/xmlsyntax/pkg/text"
)

// DefaultMaxDirtyRatio is the share of the old document that may need
// rescanning before Reparse gives up on reuse.
const DefaultMaxDirtyRatio = 0.5

// Stats reports how much of the previous tree a parse reused.
type Stats struct {
	TokensReused  int
	TokensScanned int
	NodesReused   int

	// FullReparse is set when nothing of the previous tree was considered.
	FullReparse bool
}

// Parser parses XML text. A Parser holds only configuration and is safe for
// concurrent use.
type Parser struct {
	cache         syntax.NodeCache
	logger        *log.Logger
	incremental   bool
	reuseNodes    bool
	maxDirtyRatio float64
}

// Option configures a Parser.
type Option func(*Parser)

// WithNodeCache sets the cache green nodes are built through. The default
// is the process-wide cache.
func WithNodeCache(cache syntax.NodeCache) Option {
	return func(p *Parser) {
		if cache == nil {
			cache = syntax.NoopCache{}
		}
		p.cache = cache
	}
}

// WithLogger sets the logger for reparse statistics.
func WithLogger(logger *log.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithIncremental enables or disables reuse in Reparse. When disabled,
// Reparse always parses from scratch.
func WithIncremental(enabled bool) Option {
	return func(p *Parser) {
		p.incremental = enabled
	}
}

// WithNodeReuse enables or disables taking over whole old subtrees. Token
// reuse is unaffected.
func WithNodeReuse(enabled bool) Option {
	return func(p *Parser) {
		p.reuseNodes = enabled
	}
}

// WithMaxDirtyRatio sets the share of the old document that may be dirty
// before Reparse falls back to a full parse.
func WithMaxDirtyRatio(ratio float64) Option {
	return func(p *Parser) {
		p.maxDirtyRatio = ratio
	}
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		cache:         syntax.DefaultCache(),
		incremental:   true,
		reuseNodes:    true,
		maxDirtyRatio: DefaultMaxDirtyRatio,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Default()
	}
	return p
}

// NewFromConfig creates a parser configured by cfg. opts are applied after
// the configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) *Parser {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	var cache syntax.NodeCache = syntax.NoopCache{}
	if cfg.Cache.IsEnabled() {
		if cfg.Cache.Size > 0 && cfg.Cache.Size != syntax.DefaultCacheSize {
			cache = syntax.NewCache(cfg.Cache.Size)
		} else {
			cache = syntax.DefaultCache()
		}
	}

	base := []Option{
		WithNodeCache(cache),
		WithIncremental(cfg.Incremental.IsEnabled()),
		WithNodeReuse(cfg.Incremental.ReusesNodes()),
	}
	if cfg.Incremental.MaxDirtyRatio > 0 {
		base = append(base, WithMaxDirtyRatio(cfg.Incremental.MaxDirtyRatio))
	}
	return New(append(base, opts...)...)
}

// Parse parses buf from scratch.
func (p *Parser) Parse(buf text.Buffer) *syntax.GreenNode {
	root, _ := p.parseFull(buf)
	return root
}

func (p *Parser) parseFull(buf text.Buffer) (*syntax.GreenNode, Stats) {
	ps := newParser(buf, p.cache, nil, false)
	root := ps.parseDocument()
	ps.stats.FullReparse = true
	return root, ps.stats
}

// Reparse parses buf, the result of applying changes to the text of old,
// reusing whatever parts of old the edit cannot have affected. The result
// is the tree Parse would return for buf.
func (p *Parser) Reparse(buf text.Buffer, changes []text.ChangeRange, old *syntax.GreenNode) (*syntax.GreenNode, Stats) {
	full := func(reason string, keyvals ...any) (*syntax.GreenNode, Stats) {
		p.logger.Debug("full reparse", append([]any{logging.FieldReason, reason}, keyvals...)...)
		return p.parseFull(buf)
	}

	switch {
	case old == nil:
		return full("no previous tree")
	case !p.incremental:
		return full("incremental parsing disabled")
	case old.Kind() != syntax.KindDocument:
		return full("previous tree is not a document", logging.FieldKind, old.Kind())
	}

	oldLen := old.FullWidth()
	sorted, err := text.SortChanges(changes, oldLen)
	if err == nil {
		err = text.CheckLength(sorted, oldLen, buf.Len())
	}
	if err != nil {
		return full("invalid changes", logging.FieldError, err)
	}
	if len(sorted) == 0 {
		return old, Stats{}
	}
	if oldLen == 0 {
		return full("empty previous tree")
	}

	dirty := dirtySpans(old, sorted, buf)
	if ratio := float64(spansLength(dirty)) / float64(oldLen); ratio > p.maxDirtyRatio {
		return full("dirty region too large", logging.FieldDirtyRatio, ratio)
	}

	ps := newParser(buf, p.cache, newBlender(old, sorted, dirty), p.reuseNodes)
	root := ps.parseDocument()
	p.logger.Debug("incremental reparse",
		logging.FieldChanges, len(sorted),
		logging.FieldTokensReused, ps.stats.TokensReused,
		logging.FieldTokensScanned, ps.stats.TokensScanned,
		logging.FieldNodesReused, ps.stats.NodesReused,
	)
	return root, ps.stats
}

var defaultParser = sync.OnceValue(func() *Parser { return New() })

// Parse parses s with the default parser and returns the red root.
func Parse(s string) *syntax.Node {
	return syntax.CreateRed(defaultParser().Parse(text.NewStringBuffer(s)))
}

// ParseBuffer parses buf with the default parser.
func ParseBuffer(buf text.Buffer) *syntax.GreenNode {
	return defaultParser().Parse(buf)
}

// ParseIncremental parses newText, the text of previous after changes,
// reusing what it can of previous. A nil previous means a full parse.
func ParseIncremental(newText string, changes []text.ChangeRange, previous *syntax.Node) *syntax.Node {
	var old *syntax.GreenNode
	if previous != nil {
		old = previous.Root().Green()
	}
	root, _ := defaultParser().Reparse(text.NewStringBuffer(newText), changes, old)
	return syntax.CreateRed(root)
}
