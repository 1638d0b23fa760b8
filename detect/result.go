package detect

import "github.com/zafrem/data-detector/rules"

// Match is one detected span. Start and End are byte offsets into the
// original text, even when the scan ran over normalized text.
type Match struct {
	RuleID    string         `json:"rule_id"`
	Namespace string         `json:"namespace"`
	Category  rules.Category `json:"category"`
	Start     int            `json:"start"`
	End       int            `json:"end"`
	// Raw is the matched value. It is populated only when the caller asked
	// for raw values and the rule's policy permits storing them.
	Raw      string         `json:"raw,omitempty"`
	Mask     string         `json:"mask,omitempty"`
	Severity rules.Severity `json:"severity"`
}

// FindResult is the outcome of a Find call.
type FindResult struct {
	Text       string   `json:"text"`
	Matches    []Match  `json:"matches"`
	Namespaces []string `json:"namespaces"`
}

// HasMatches reports whether anything was detected.
func (r *FindResult) HasMatches() bool { return len(r.Matches) > 0 }

// ValidationResult is the outcome of a Validate call. Match is set only when
// Valid, spanning the whole input.
type ValidationResult struct {
	Text   string `json:"text"`
	RuleID string `json:"rule_id"`
	Valid  bool   `json:"valid"`
	Match  *Match `json:"match,omitempty"`
}

// Strategy selects how Redact replaces matched spans.
type Strategy string

const (
	// StrategyMask substitutes the rule's declared mask, or a fixed-width
	// run of the engine's mask character when the rule declares none.
	StrategyMask Strategy = "mask"
	// StrategyHash substitutes a salted digest reference, [HASH:16 hex].
	StrategyHash Strategy = "hash"
	// StrategyTokenize substitutes a positional reference,
	// [TOKEN:rule id:offset]. For reversible tokens see the token package.
	StrategyTokenize Strategy = "tokenize"
	// StrategyFake substitutes a synthetic value from the configured
	// Generator, falling back to a mask when none is available.
	StrategyFake Strategy = "fake"
)

// Valid reports whether the strategy is one of the known values.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyMask, StrategyHash, StrategyTokenize, StrategyFake:
		return true
	}
	return false
}

// RedactionResult is the outcome of a Redact call. Matches are the spans
// that were replaced, in text order.
type RedactionResult struct {
	Original string   `json:"-"`
	Redacted string   `json:"redacted"`
	Strategy Strategy `json:"strategy"`
	Matches  []Match  `json:"matches"`
	Count    int      `json:"count"`
}
