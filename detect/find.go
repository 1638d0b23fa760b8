package detect

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zafrem/data-detector/hint"
	"github.com/zafrem/data-detector/normalize"
	"github.com/zafrem/data-detector/rules"
)

type findOptions struct {
	namespaces  []string
	hint        hint.Context
	hasHint     bool
	overlaps    bool
	includeRaw  bool
	stopOnFirst bool
}

// FindOption adjusts a single Find or Redact call.
type FindOption func(*findOptions)

// InNamespaces restricts the scan to the given namespaces. Default is every
// loaded namespace.
func InNamespaces(namespaces ...string) FindOption {
	return func(o *findOptions) { o.namespaces = append(o.namespaces, namespaces...) }
}

// WithHint narrows the rule set with a context hint. Ignored when the engine
// was built with context filtering off.
func WithHint(h hint.Context) FindOption {
	return func(o *findOptions) { o.hint, o.hasHint = h, true }
}

// AllowOverlaps keeps overlapping matches instead of resolving contested
// spans by rule priority. Redact always resolves, regardless of this option.
func AllowOverlaps() FindOption {
	return func(o *findOptions) { o.overlaps = true }
}

// IncludeRaw copies matched values into results, for rules whose policy
// permits storing them.
func IncludeRaw() FindOption {
	return func(o *findOptions) { o.includeRaw = true }
}

// StopOnFirst returns after the first verified match, for cheap yes/no
// screening.
func StopOnFirst() FindOption {
	return func(o *findOptions) { o.stopOnFirst = true }
}

// Find scans text and returns every verified match. Offsets always refer to
// the original text, even when the scan ran over a normalized copy. Matches
// are sorted by position; contested spans go to the rule with the lower
// priority value unless AllowOverlaps was given.
func (e *Engine) Find(ctx context.Context, text string, opts ...FindOption) (*FindResult, error) {
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}
	return e.find(ctx, text, o)
}

func (e *Engine) find(ctx context.Context, text string, o findOptions) (*FindResult, error) {
	_, span := tracer.Start(ctx, "detect.Find")
	defer span.End()

	reg := e.source.Snapshot()
	namespaces := o.namespaces
	if len(namespaces) == 0 {
		namespaces = reg.Namespaces()
	}

	var candidates []*rules.Rule
	for _, ns := range namespaces {
		candidates = append(candidates, reg.Namespace(ns)...)
	}

	if e.filtering && o.hasHint {
		ids := make([]string, len(candidates))
		for i, r := range candidates {
			ids[i] = r.FullID()
		}
		kept, err := e.filter.Apply(o.hint, ids)
		if err != nil {
			return nil, err
		}
		keep := make(map[string]bool, len(kept))
		for _, id := range kept {
			keep[id] = true
		}
		filtered := candidates[:0]
		for _, r := range candidates {
			if keep[r.FullID()] {
				filtered = append(filtered, r)
			}
		}
		candidates = filtered
	}

	// Lower priority value scans first and claims contested spans. Full id
	// breaks ties so results do not depend on load order.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].FullID() < candidates[j].FullID()
	})

	prepared := normalize.Identity(text)
	if e.normalize {
		prepared = normalize.Prepare(text)
	}

	var matches []Match
scan:
	for _, r := range candidates {
		for _, loc := range r.Expr.FindAllStringIndex(prepared.Text, -1) {
			if !r.Verified(prepared.Text[loc[0]:loc[1]]) {
				continue
			}
			start, end := prepared.MapSpan(loc[0], loc[1])
			if start >= end {
				continue
			}
			if !o.overlaps && overlapsAny(matches, start, end) {
				continue
			}
			m := Match{
				RuleID:    r.FullID(),
				Namespace: r.Namespace,
				Category:  r.Category,
				Start:     start,
				End:       end,
				Mask:      r.Mask,
				Severity:  r.Policy.Severity,
			}
			if o.includeRaw && r.Policy.StoreRaw {
				m.Raw = text[start:end]
			}
			matches = append(matches, m)
			if o.stopOnFirst {
				break scan
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].End < matches[j].End
	})

	span.SetAttributes(
		attribute.Int("rules.scanned", len(candidates)),
		attribute.Int("matches.found", len(matches)),
	)
	log.Debug().
		Int("rules", len(candidates)).
		Int("matches", len(matches)).
		Bool("normalized", prepared.Changed()).
		Msg("scan complete")

	return &FindResult{Text: text, Matches: matches, Namespaces: namespaces}, nil
}

// overlapsAny reports whether [start, end) intersects an accepted match.
// Spans are compared in original text coordinates.
func overlapsAny(matches []Match, start, end int) bool {
	for _, m := range matches {
		if start < m.End && m.Start < end {
			return true
		}
	}
	return false
}

// Validate reports whether value as a whole is an instance of the given rule:
// the anchored expression must cover the entire value and the rule's
// verification function, when present, must accept it. An unknown rule id
// returns *rules.UnknownRuleError.
func (e *Engine) Validate(ctx context.Context, value, ruleID string) (*ValidationResult, error) {
	_, span := tracer.Start(ctx, "detect.Validate")
	defer span.End()

	r, ok := e.source.Snapshot().Lookup(ruleID)
	if !ok {
		return nil, &rules.UnknownRuleError{ID: ruleID}
	}

	res := &ValidationResult{Text: value, RuleID: ruleID}
	if !r.FullMatch(value) || !r.Verified(value) {
		return res, nil
	}
	res.Valid = true
	m := Match{
		RuleID:    r.FullID(),
		Namespace: r.Namespace,
		Category:  r.Category,
		Start:     0,
		End:       len(value),
		Mask:      r.Mask,
		Severity:  r.Policy.Severity,
	}
	if r.Policy.StoreRaw {
		m.Raw = value
	}
	res.Match = &m
	return res, nil
}
