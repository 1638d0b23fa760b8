// Package hint narrows which rules a scan considers. A Context carries what
// the caller knows about the text being scanned (a database column name, a
// form field, a document type) as keywords, category names, and explicit rule
// ids; the Filter resolves that knowledge against the loaded rule set.
//
// Matching is case-insensitive, and underscores and hyphens are equivalent to
// spaces, so the column name "user_ssn" finds the keyword "ssn".
package hint

import (
	"regexp"
	"strings"
)

// Strategy controls how a Context narrows the rule set.
type Strategy string

const (
	// StrategyStrict scans only the resolved rules, even when nothing
	// resolved. Use when the caller knows exactly what a field holds.
	StrategyStrict Strategy = "strict"
	// StrategyLoose scans the resolved rules, falling back to the whole
	// rule set when nothing resolved. The default.
	StrategyLoose Strategy = "loose"
	// StrategyNone disables filtering.
	StrategyNone Strategy = "none"
)

// Context is a caller-supplied description of the text being scanned.
// The zero value applies no narrowing (loose with an empty selection).
type Context struct {
	// Keywords are free-form terms matched against the keyword table,
	// e.g. a column name fragment.
	Keywords []string `json:"keywords,omitempty"`
	// Categories select rules via the keyword table's category entries.
	Categories []string `json:"categories,omitempty"`
	// RuleIDs select rules directly. Entries may contain * wildcards;
	// a non-wildcard id that is not loaded is an error.
	RuleIDs []string `json:"rule_ids,omitempty"`
	// Exclude removes rules after selection. Wildcards allowed.
	Exclude []string `json:"exclude,omitempty"`
	// Strategy defaults to loose when empty.
	Strategy Strategy `json:"strategy,omitempty"`
}

// Empty reports whether the context selects nothing.
func (h Context) Empty() bool {
	return len(h.Keywords) == 0 && len(h.Categories) == 0 && len(h.RuleIDs) == 0
}

var fieldSplit = regexp.MustCompile(`[_\-\s.]+`)

// FromFieldName derives a Context from an identifier such as a database
// column or JSON key: "user_ssn" becomes keywords ["user", "ssn"].
// Fragments shorter than two characters are dropped.
func FromFieldName(field string, strategy Strategy) Context {
	var keywords []string
	for _, frag := range fieldSplit.Split(strings.ToLower(field), -1) {
		if len([]rune(frag)) < 2 {
			continue
		}
		keywords = append(keywords, frag)
	}
	return Context{Keywords: keywords, Strategy: strategy}
}

// normalizeKeyword lowercases and maps separator punctuation to spaces so
// "social_security", "social-security" and "Social Security" compare equal.
func normalizeKeyword(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return s
}
