package hint

import (
	"regexp"
	"strings"

	"github.com/zafrem/data-detector/rules"
)

// Filter resolves a Context against a concrete rule id list.
type Filter struct {
	index *KeywordIndex
}

// NewFilter wraps a keyword index. A nil index behaves as an empty one, so
// only explicit rule ids can select anything.
func NewFilter(index *KeywordIndex) *Filter {
	if index == nil {
		index = NewKeywordIndex()
	}
	return &Filter{index: index}
}

// Index returns the filter's keyword index.
func (f *Filter) Index() *KeywordIndex { return f.index }

// Apply narrows all (the loaded rule ids) according to the context:
//
//   - strategy none returns all unchanged;
//   - keywords, categories and explicit ids select rules, and * wildcards
//     expand against the loaded ids;
//   - strict keeps exactly the selection, even when empty; loose falls back
//     to the unfiltered list when the selection is empty;
//   - exclusions subtract last (not from the loose fallback).
//
// The result preserves the order of all. An explicit non-wildcard id that is
// not loaded returns *rules.UnknownRuleError.
func (f *Filter) Apply(h Context, all []string) ([]string, error) {
	if h.Strategy == StrategyNone {
		return all, nil
	}

	loaded := make(map[string]bool, len(all))
	for _, id := range all {
		loaded[id] = true
	}
	for _, id := range h.RuleIDs {
		if !strings.Contains(id, "*") && !loaded[id] {
			return nil, &rules.UnknownRuleError{ID: id}
		}
	}

	selected := make(map[string]bool)
	for _, kw := range h.Keywords {
		for _, id := range f.index.PatternsForKeyword(kw) {
			selected[id] = true
		}
	}
	for _, cat := range h.Categories {
		for _, id := range f.index.PatternsForCategory(cat) {
			selected[id] = true
		}
	}
	for _, id := range h.RuleIDs {
		selected[id] = true
	}

	expanded := expandWildcards(selected, all, loaded)
	if len(expanded) == 0 && h.Strategy != StrategyStrict {
		return all, nil
	}

	if len(h.Exclude) > 0 {
		excludeSet := make(map[string]bool, len(h.Exclude))
		for _, id := range h.Exclude {
			excludeSet[id] = true
		}
		for id := range expandWildcards(excludeSet, all, loaded) {
			delete(expanded, id)
		}
	}

	out := make([]string, 0, len(expanded))
	for _, id := range all {
		if expanded[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// expandWildcards resolves a selection against the loaded ids: entries with
// a * match as a prefix-anchored pattern, plain entries pass through only
// when loaded (keyword tables may reference rules from namespaces that are
// not active).
func expandWildcards(selection map[string]bool, all []string, loaded map[string]bool) map[string]bool {
	expanded := make(map[string]bool, len(selection))
	for id := range selection {
		if !strings.Contains(id, "*") {
			if loaded[id] {
				expanded[id] = true
			}
			continue
		}
		re := wildcardRegexp(id)
		for _, candidate := range all {
			if re.MatchString(candidate) {
				expanded[candidate] = true
			}
		}
	}
	return expanded
}

func wildcardRegexp(pattern string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	return regexp.MustCompile(`^` + quoted)
}
