package verify

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// The process-wide validator registry. Builtins are present from init;
// custom validators are registered during startup, before rules that name
// them are loaded. Lookup is safe from any goroutine.
var (
	mu    sync.RWMutex
	funcs = map[string]Func{
		"iban_mod97":         IBANMod97,
		"luhn":               Luhn,
		"dms_coordinate":     DMSCoordinate,
		"high_entropy_token": HighEntropyToken,
	}
)

// Register makes fn available to rules under the given name, replacing any
// previous registration.
func Register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := funcs[name]; exists {
		log.Debug().Str("name", name).Msg("replacing verification function")
	}
	funcs[name] = fn
	log.Info().Str("name", name).Msg("registered verification function")
}

// Lookup returns the validator registered under name.
func Lookup(name string) (Func, bool) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := funcs[name]
	return fn, ok
}

// Unregister removes a validator and reports whether it existed. Rules
// already compiled against it keep their resolved function.
func Unregister(name string) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := funcs[name]; !ok {
		return false
	}
	delete(funcs, name)
	log.Info().Str("name", name).Msg("unregistered verification function")
	return true
}

// Names returns the registered validator names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
