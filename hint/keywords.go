package hint

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zafrem/data-detector/patterns"
)

// KeywordIndex maps keywords and category names to rule ids. It is built
// once (from the embedded table or a YAML file) and read concurrently.
type KeywordIndex struct {
	keywords   map[string][]string
	categories map[string][]string
}

type keywordFile struct {
	Keywords   map[string]keywordEntry `yaml:"keywords"`
	Categories map[string]keywordEntry `yaml:"categories"`
}

type keywordEntry struct {
	Patterns []string `yaml:"patterns"`
}

// NewKeywordIndex returns an empty index.
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{
		keywords:   make(map[string][]string),
		categories: make(map[string][]string),
	}
}

// ParseKeywordIndex builds an index from YAML bytes.
func ParseKeywordIndex(data []byte) (*KeywordIndex, error) {
	var doc keywordFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing keyword table: %w", err)
	}
	idx := NewKeywordIndex()
	for kw, entry := range doc.Keywords {
		idx.AddKeyword(kw, entry.Patterns...)
	}
	for cat, entry := range doc.Categories {
		idx.AddCategory(cat, entry.Patterns...)
	}
	return idx, nil
}

// LoadKeywordIndex reads and parses a keyword table from disk.
func LoadKeywordIndex(path string) (*KeywordIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keyword table %s: %w", path, err)
	}
	idx, err := ParseKeywordIndex(data)
	if err != nil {
		return nil, fmt.Errorf("loading keyword table %s: %w", path, err)
	}
	return idx, nil
}

// DefaultKeywordIndex builds the index from the embedded builtin table.
func DefaultKeywordIndex() (*KeywordIndex, error) {
	return ParseKeywordIndex(patterns.Keywords())
}

// AddKeyword associates rule ids with a keyword. The keyword is stored
// normalized.
func (x *KeywordIndex) AddKeyword(keyword string, ids ...string) {
	key := normalizeKeyword(keyword)
	if key == "" {
		return
	}
	x.keywords[key] = append(x.keywords[key], ids...)
}

// AddCategory associates rule ids with a category name.
func (x *KeywordIndex) AddCategory(category string, ids ...string) {
	key := normalizeKeyword(category)
	if key == "" {
		return
	}
	x.categories[key] = append(x.categories[key], ids...)
}

// PatternsForKeyword returns the rule ids whose registered keyword equals,
// contains, or is contained in the query. "user ssn" therefore reaches the
// "ssn" entry, and "social" reaches "social security".
func (x *KeywordIndex) PatternsForKeyword(keyword string) []string {
	query := normalizeKeyword(keyword)
	if query == "" {
		return nil
	}
	set := make(map[string]bool)
	for registered, ids := range x.keywords {
		if registered == query ||
			strings.Contains(registered, query) ||
			strings.Contains(query, registered) {
			for _, id := range ids {
				set[id] = true
			}
		}
	}
	return sortedKeys(set)
}

// PatternsForCategory returns the rule ids registered under a category.
// Category lookup is exact.
func (x *KeywordIndex) PatternsForCategory(category string) []string {
	ids := x.categories[normalizeKeyword(category)]
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return sortedKeys(set)
}

// Keywords returns the registered keywords, sorted.
func (x *KeywordIndex) Keywords() []string {
	out := make([]string, 0, len(x.keywords))
	for k := range x.keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Categories returns the registered category names, sorted.
func (x *KeywordIndex) Categories() []string {
	out := make([]string, 0, len(x.categories))
	for k := range x.categories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
