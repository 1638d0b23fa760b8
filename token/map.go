package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"sync"
)

// Map holds token to value associations produced by Tokenize. It is safe for
// concurrent use, so one map can collect the output of parallel tokenization.
type Map struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]string)}
}

// FromPairs builds a map from existing token/value pairs, for callers that
// received them over the wire.
func FromPairs(pairs map[string]string) *Map {
	m := NewMap()
	for tok, value := range pairs {
		m.values[tok] = value
	}
	return m
}

// Add records a token. Adding an existing token overwrites its value.
func (m *Map) Add(token, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[token] = value
}

// Original returns the value a token stands for.
func (m *Map) Original(token string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[token]
	return v, ok
}

// Len returns the number of tokens.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Tokens returns every token, sorted, so iteration order is stable.
func (m *Map) Tokens() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tokens := make([]string, 0, len(m.values))
	for tok := range m.values {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// Pairs returns a copy of the underlying associations.
func (m *Map) Pairs() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for tok, value := range m.values {
		out[tok] = value
	}
	return out
}

// Digest returns a hex sha256 over the sorted token/value pairs. Two maps
// with the same associations produce the same digest regardless of insertion
// order, so a caller can later prove a map was not altered.
func (m *Map) Digest() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens := make([]string, 0, len(m.values))
	for tok := range m.values {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	h := sha256.New()
	for _, tok := range tokens {
		h.Write([]byte(tok))
		h.Write([]byte{0})
		h.Write([]byte(m.values[tok]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether the map still matches a previously taken digest.
// The comparison is constant time.
func (m *Map) Verify(digest string) bool {
	return subtle.ConstantTimeCompare([]byte(m.Digest()), []byte(digest)) == 1
}
