package detect

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Redact scans text and rewrites every verified match according to the
// strategy. Overlap resolution and exhaustive scanning are always on here,
// whatever options are passed, so replacements never collide and no match is
// left in place. Replacement values are derived from the original text, so
// rules that forbid storing raw values still redact correctly.
func (e *Engine) Redact(ctx context.Context, text string, strategy Strategy, opts ...FindOption) (*RedactionResult, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("detect: unknown strategy %q", strategy)
	}

	ctx, span := tracer.Start(ctx, "detect.Redact")
	defer span.End()

	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}
	o.overlaps = false
	o.stopOnFirst = false

	found, err := e.find(ctx, text, o)
	if err != nil {
		return nil, err
	}

	// Replace back to front so earlier offsets stay valid.
	redacted := text
	for i := len(found.Matches) - 1; i >= 0; i-- {
		m := found.Matches[i]
		redacted = redacted[:m.Start] + e.replacement(m, text[m.Start:m.End], strategy) + redacted[m.End:]
	}

	span.SetAttributes(
		attribute.String("strategy", string(strategy)),
		attribute.Int("matches.replaced", len(found.Matches)),
	)
	log.Debug().
		Str("strategy", string(strategy)).
		Int("replaced", len(found.Matches)).
		Msg("redaction complete")

	return &RedactionResult{
		Original: text,
		Redacted: redacted,
		Strategy: strategy,
		Matches:  found.Matches,
		Count:    len(found.Matches),
	}, nil
}

func (e *Engine) replacement(m Match, value string, strategy Strategy) string {
	switch strategy {
	case StrategyHash:
		return e.hashRef(value)
	case StrategyTokenize:
		return fmt.Sprintf("[TOKEN:%s:%d]", m.RuleID, m.Start)
	case StrategyFake:
		if e.generator == nil {
			log.Warn().Str("rule", m.RuleID).Msg("no generator configured, masking instead")
			return e.mask(m)
		}
		fake, err := e.generator.FromRule(m.RuleID)
		if err != nil {
			log.Warn().Err(err).Str("rule", m.RuleID).Msg("fake generation failed, masking instead")
			return e.mask(m)
		}
		return fake
	default:
		return e.mask(m)
	}
}

// mask returns the rule's declared mask, or a fixed-width run of the mask
// character. Fixed width, not the match length, so the redacted output does
// not leak how long the value was.
func (e *Engine) mask(m Match) string {
	if m.Mask != "" {
		return m.Mask
	}
	return strings.Repeat(e.maskChar, e.maskWidth)
}

// hashRef builds the salted digest reference substituted by the hash
// strategy. The digest is truncated to 16 hex characters; the reference
// identifies repeated values without being reversible.
func (e *Engine) hashRef(value string) string {
	h := e.newHash()
	h.Write([]byte(e.hashSalt + value))
	return "[HASH:" + hex.EncodeToString(h.Sum(nil))[:16] + "]"
}
