package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/zafrem/data-detector/patterns"
	"github.com/zafrem/data-detector/verify"
)

// LoadError reports a rule file that cannot be activated: malformed YAML, a
// missing required field, an expression that does not compile, or a bundled
// example that contradicts the compiled expression. Any LoadError aborts the
// whole load so a broken file can never partially activate.
type LoadError struct {
	File string
	Rule string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("loading %s: rule %s: %v", e.File, e.Rule, e.Err)
	}
	return fmt.Sprintf("loading %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ruleFile is the top-level YAML document: one namespace per file.
type ruleFile struct {
	Namespace   string       `yaml:"namespace"`
	Description string       `yaml:"description"`
	Patterns    []ruleConfig `yaml:"patterns"`
}

// ruleConfig is the declarative form of a single rule.
type ruleConfig struct {
	ID          string            `yaml:"id"`
	Category    string            `yaml:"category"`
	Pattern     string            `yaml:"pattern"`
	Flags       []string          `yaml:"flags"`
	Mask        string            `yaml:"mask"`
	Priority    *int              `yaml:"priority"`
	Verify      string            `yaml:"verify"`
	Description string            `yaml:"description"`
	Policy      *Policy           `yaml:"policy"`
	Examples    *Examples         `yaml:"examples"`
	Metadata    map[string]string `yaml:"metadata"`
}

// flagLetters maps declared flags to Go inline flag letters. UNICODE is
// accepted for compatibility and is a no-op (RE2 is always Unicode-aware).
// VERBOSE has no RE2 equivalent and is rejected.
var flagLetters = map[string]string{
	"IGNORECASE": "i",
	"MULTILINE":  "m",
	"DOTALL":     "s",
	"UNICODE":    "",
}

// Load builds a registry from the given paths. A path may be a rule file or
// a directory, in which case every *.yml and *.yaml directly inside it is
// loaded in name order. Missing paths and directories without rule files are
// logged and skipped; any file that fails to parse, compile, or self-test
// aborts the load with a *LoadError.
func Load(paths ...string) (*Registry, error) {
	reg := NewRegistry()
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			log.Warn().Str("path", path).Msg("rule path not found, skipping")
			continue
		}
		if !info.IsDir() {
			if err := loadFile(reg, path); err != nil {
				return nil, err
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading rule directory %s: %w", path, err)
		}
		found := false
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if ext != ".yml" && ext != ".yaml" {
				continue
			}
			found = true
			if err := loadFile(reg, filepath.Join(path, entry.Name())); err != nil {
				return nil, err
			}
		}
		if !found {
			log.Warn().Str("path", path).Msg("no rule files in directory")
		}
	}
	return reg, nil
}

// LoadDefault builds a registry from the embedded builtin rule files.
func LoadDefault() (*Registry, error) {
	reg := NewRegistry()
	for _, f := range patterns.Files() {
		if err := Parse(f.Name, f.Data, reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func loadFile(reg *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{File: path, Err: fmt.Errorf("reading file: %w", err)}
	}
	return Parse(path, data, reg)
}

// Parse loads one YAML rule document into an existing registry. name is used
// in errors and logs only.
func Parse(name string, data []byte, reg *Registry) error {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &LoadError{File: name, Err: fmt.Errorf("parsing yaml: %w", err)}
	}
	if doc.Namespace == "" {
		return &LoadError{File: name, Err: errors.New("missing namespace")}
	}
	if len(doc.Patterns) == 0 {
		log.Warn().Str("file", name).Str("namespace", doc.Namespace).Msg("rule file declares no patterns")
		return nil
	}

	for i := range doc.Patterns {
		rule, err := buildRule(doc.Namespace, &doc.Patterns[i])
		if err != nil {
			id := doc.Patterns[i].ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			return &LoadError{File: name, Rule: doc.Namespace + "/" + id, Err: err}
		}
		if err := reg.Register(rule); err != nil {
			return &LoadError{File: name, Rule: rule.FullID(), Err: err}
		}
	}
	log.Debug().
		Str("file", name).
		Str("namespace", doc.Namespace).
		Int("rules", len(doc.Patterns)).
		Msg("loaded rule file")
	return nil
}

func buildRule(namespace string, cfg *ruleConfig) (*Rule, error) {
	if cfg.ID == "" {
		return nil, errors.New("missing id")
	}
	if cfg.Pattern == "" {
		return nil, errors.New("missing pattern")
	}
	if cfg.Category == "" {
		return nil, errors.New("missing category")
	}
	category := Category(cfg.Category)
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", cfg.Category)
	}
	if cfg.Policy == nil {
		return nil, errors.New("missing policy")
	}
	if !cfg.Policy.Action.Valid() {
		return nil, fmt.Errorf("unknown policy action %q", cfg.Policy.Action)
	}
	if !cfg.Policy.Severity.Valid() {
		return nil, fmt.Errorf("unknown policy severity %q", cfg.Policy.Severity)
	}

	prefix, err := flagPrefix(cfg.Flags)
	if err != nil {
		return nil, err
	}
	expr, err := regexp.Compile(prefix + cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}
	anchored, err := regexp.Compile(prefix + `\A(?:` + cfg.Pattern + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("compiling anchored pattern: %w", err)
	}

	priority := DefaultPriority
	if cfg.Priority != nil {
		priority = *cfg.Priority
	}

	rule := &Rule{
		Namespace:   namespace,
		ID:          cfg.ID,
		Category:    category,
		Description: cfg.Description,
		Expr:        expr,
		anchored:    anchored,
		Mask:        cfg.Mask,
		Priority:    priority,
		Policy:      *cfg.Policy,
		Metadata:    cfg.Metadata,
	}

	if cfg.Verify != "" {
		rule.VerifyName = cfg.Verify
		fn, ok := verify.Lookup(cfg.Verify)
		if !ok {
			log.Warn().
				Str("rule", rule.FullID()).
				Str("verify", cfg.Verify).
				Msg("verification function not found, rule degrades to match-only")
		} else {
			rule.Verify = fn
		}
	}

	if cfg.Examples != nil {
		rule.Examples = *cfg.Examples
		if err := selfTest(rule); err != nil {
			return nil, err
		}
	}
	return rule, nil
}

// selfTest checks the bundled examples against the compiled expression.
// Match examples must fully match; nomatch examples must not.
func selfTest(r *Rule) error {
	for _, ex := range r.Examples.Match {
		if !r.FullMatch(ex) {
			return fmt.Errorf("match example %q does not match the pattern", ex)
		}
	}
	for _, ex := range r.Examples.NoMatch {
		if r.FullMatch(ex) {
			return fmt.Errorf("nomatch example %q matches the pattern", ex)
		}
	}
	return nil
}

func flagPrefix(flags []string) (string, error) {
	if len(flags) == 0 {
		return "", nil
	}
	var letters strings.Builder
	for _, f := range flags {
		letter, ok := flagLetters[strings.ToUpper(strings.TrimSpace(f))]
		if !ok {
			return "", fmt.Errorf("unsupported regex flag %q", f)
		}
		letters.WriteString(letter)
	}
	if letters.Len() == 0 {
		return "", nil
	}
	return "(?" + letters.String() + ")", nil
}
