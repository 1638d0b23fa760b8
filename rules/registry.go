package rules

import (
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
)

// Registry holds compiled rules indexed by full id and by namespace.
// Build it with Load or by calling Register; once it is handed to an engine
// or a Store it must not be mutated again. Readers never synchronize.
type Registry struct {
	byID        map[string]*Rule
	byNamespace map[string][]*Rule
	version     int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:        make(map[string]*Rule),
		byNamespace: make(map[string][]*Rule),
	}
}

// Register adds a rule, replacing any rule with the same full id. A
// replacement keeps the original position within its namespace and is logged.
// Every successful call bumps the registry version.
func (g *Registry) Register(r *Rule) error {
	if r == nil {
		return errors.New("nil rule")
	}
	if r.Namespace == "" || r.ID == "" {
		return errors.New("rule is missing namespace or id")
	}
	if r.Expr == nil {
		return errors.New("rule " + r.FullID() + " has no compiled expression")
	}

	fullID := r.FullID()
	if _, exists := g.byID[fullID]; exists {
		log.Warn().Str("rule", fullID).Msg("rule already exists, overwriting")
		list := g.byNamespace[r.Namespace]
		for i, old := range list {
			if old.ID == r.ID {
				list[i] = r
				break
			}
		}
	} else {
		g.byNamespace[r.Namespace] = append(g.byNamespace[r.Namespace], r)
	}
	g.byID[fullID] = r
	g.version++
	return nil
}

// Lookup returns the rule registered under the given full id.
func (g *Registry) Lookup(fullID string) (*Rule, bool) {
	r, ok := g.byID[fullID]
	return r, ok
}

// Namespace returns the rules of one namespace in registration order.
// The returned slice is a copy.
func (g *Registry) Namespace(ns string) []*Rule {
	list := g.byNamespace[ns]
	if len(list) == 0 {
		return nil
	}
	out := make([]*Rule, len(list))
	copy(out, list)
	return out
}

// Namespaces returns all namespace names, sorted.
func (g *Registry) Namespaces() []string {
	names := make([]string, 0, len(g.byNamespace))
	for ns := range g.byNamespace {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

// IDs returns every registered full id, sorted.
func (g *Registry) IDs() []string {
	ids := make([]string, 0, len(g.byID))
	for id := range g.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered rules.
func (g *Registry) Len() int { return len(g.byID) }

// Version returns the registry version. It increases with every Register
// during a load, and Store.Reload guarantees it increases across swaps.
func (g *Registry) Version() int { return g.version }

// Snapshot returns the registry itself, satisfying the engine's Source
// interface so a plain Registry can back an engine without a Store.
func (g *Registry) Snapshot() *Registry { return g }
