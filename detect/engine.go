// Package detect runs rule registries against text: finding spans, validating
// whole values, and producing redacted output.
package detect

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/blake2b"

	"github.com/zafrem/data-detector/hint"
	"github.com/zafrem/data-detector/rules"
)

var tracer = otel.Tracer("github.com/zafrem/data-detector/detect")

// Source yields the registry an Engine scans with. Both *rules.Registry and
// *rules.Store satisfy it; a Store-backed engine picks up hot reloads on the
// next call.
type Source interface {
	Snapshot() *rules.Registry
}

// Generator produces synthetic replacement values for the fake strategy.
type Generator interface {
	// FromRule returns a synthetic value shaped like data the rule matches.
	FromRule(ruleID string) (string, error)
}

const defaultMaskWidth = 8

var digests = map[string]func() hash.Hash{
	"sha256": sha256.New,
	"sha512": sha512.New,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
}

// Engine scans text against a rule source. It is safe for concurrent use;
// all configuration happens at construction.
type Engine struct {
	source    Source
	normalize bool
	filtering bool
	keywords  *hint.KeywordIndex
	filter    *hint.Filter
	maskChar  string
	maskWidth int
	digest    string
	hashSalt  string
	generator Generator
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaskChar sets the character used for generic masks. Default "*".
func WithMaskChar(c string) Option {
	return func(e *Engine) { e.maskChar = c }
}

// WithMaskWidth sets the width of generic masks for rules that declare no
// mask of their own. Default 8.
func WithMaskWidth(w int) Option {
	return func(e *Engine) { e.maskWidth = w }
}

// WithDigest selects the hash strategy's digest: sha256, sha512 or
// blake2b-256. Default sha256.
func WithDigest(name string) Option {
	return func(e *Engine) { e.digest = name }
}

// WithHashSalt prepends a salt to every hashed value.
func WithHashSalt(salt string) Option {
	return func(e *Engine) { e.hashSalt = salt }
}

// WithNormalization toggles CJK boundary normalization before scanning.
// Default on.
func WithNormalization(on bool) Option {
	return func(e *Engine) { e.normalize = on }
}

// WithKeywordIndex supplies the keyword index used to resolve context hints.
// Default is the embedded index.
func WithKeywordIndex(idx *hint.KeywordIndex) Option {
	return func(e *Engine) { e.keywords = idx }
}

// WithContextFiltering toggles hint-based rule filtering. Default on; when
// off, hints passed to Find are ignored.
func WithContextFiltering(on bool) Option {
	return func(e *Engine) { e.filtering = on }
}

// WithGenerator supplies the synthetic value generator for the fake strategy.
func WithGenerator(g Generator) Option {
	return func(e *Engine) { e.generator = g }
}

// New builds an Engine over the given source.
func New(source Source, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("detect: source is required")
	}
	e := &Engine{
		source:    source,
		normalize: true,
		filtering: true,
		maskChar:  "*",
		maskWidth: defaultMaskWidth,
		digest:    "sha256",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maskChar == "" {
		return nil, fmt.Errorf("detect: mask character must not be empty")
	}
	if e.maskWidth < 1 {
		return nil, fmt.Errorf("detect: mask width must be positive, got %d", e.maskWidth)
	}
	if _, ok := digests[e.digest]; !ok {
		return nil, fmt.Errorf("detect: unknown digest %q", e.digest)
	}
	if e.keywords == nil {
		idx, err := hint.DefaultKeywordIndex()
		if err != nil {
			return nil, fmt.Errorf("loading keyword index: %w", err)
		}
		e.keywords = idx
	}
	e.filter = hint.NewFilter(e.keywords)
	return e, nil
}

// Registry returns the current registry snapshot.
func (e *Engine) Registry() *rules.Registry {
	return e.source.Snapshot()
}

func (e *Engine) newHash() hash.Hash {
	return digests[e.digest]()
}
