// Package token replaces detected values with reversible references. Unlike
// the one-way redaction strategies, Tokenize hands the caller a Map that can
// restore the original text; the map is never persisted by this package.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/zafrem/data-detector/detect"
)

// Tokenizer substitutes matches with [prefix:namespace:category:suffix]
// references. The zero value is not usable; build one with New.
type Tokenizer struct {
	engine  *detect.Engine
	prefix  string
	stable  bool
	counter atomic.Uint64
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithPrefix sets the reference prefix. Default "TOKEN".
func WithPrefix(p string) Option {
	return func(t *Tokenizer) { t.prefix = p }
}

// WithStableTokens switches the suffix from a per-tokenizer counter to a
// digest of the value, so equal values always yield equal tokens. Stable
// suffixes are 32 bits; use them for correlation, not for uniqueness
// guarantees across a large token population.
func WithStableTokens(stable bool) Option {
	return func(t *Tokenizer) { t.stable = stable }
}

// New builds a Tokenizer over an engine.
func New(engine *detect.Engine, opts ...Option) (*Tokenizer, error) {
	if engine == nil {
		return nil, fmt.Errorf("token: engine is required")
	}
	t := &Tokenizer{engine: engine, prefix: "TOKEN"}
	for _, opt := range opts {
		opt(t)
	}
	if t.prefix == "" {
		return nil, fmt.Errorf("token: prefix must not be empty")
	}
	return t, nil
}

// Tokenize scans text and replaces every match with a reference, returning
// the rewritten text and the map needed to reverse it. The counter keeps
// increasing across calls so references from one tokenizer never collide.
func (t *Tokenizer) Tokenize(ctx context.Context, text string, opts ...detect.FindOption) (string, *Map, error) {
	res, err := t.engine.Find(ctx, text, opts...)
	if err != nil {
		return "", nil, err
	}

	m := NewMap()

	// Assign references in text order, skipping anything that overlaps an
	// accepted span so the substitution below stays well formed.
	type replacement struct {
		start, end int
		token      string
	}
	var repls []replacement
	limit := 0
	for _, match := range res.Matches {
		if match.Start < limit {
			continue
		}
		value := text[match.Start:match.End]
		tok := t.reference(match, value)
		m.Add(tok, value)
		repls = append(repls, replacement{start: match.Start, end: match.End, token: tok})
		limit = match.End
	}

	// Substitute back to front so earlier offsets stay valid.
	out := text
	for i := len(repls) - 1; i >= 0; i-- {
		r := repls[i]
		out = out[:r.start] + r.token + out[r.end:]
	}
	return out, m, nil
}

func (t *Tokenizer) reference(m detect.Match, value string) string {
	suffix := ""
	if t.stable {
		sum := sha256.Sum256([]byte(value))
		suffix = hex.EncodeToString(sum[:])[:8]
	} else {
		suffix = fmt.Sprintf("%06d", t.counter.Add(1))
	}
	return fmt.Sprintf("[%s:%s:%s:%s]", t.prefix, m.Namespace, m.Category, suffix)
}

// Detokenize restores the original values for every reference found in text.
// References present in the map but absent from the text are logged unless
// partial is set, which callers use when detokenizing a fragment of the
// tokenized output.
func Detokenize(text string, m *Map, partial bool) string {
	if m == nil {
		return text
	}
	for _, tok := range m.Tokens() {
		if !strings.Contains(text, tok) {
			if !partial {
				log.Warn().Str("token", tok).Msg("token not present in text")
			}
			continue
		}
		value, _ := m.Original(tok)
		text = strings.ReplaceAll(text, tok, value)
	}
	return text
}
