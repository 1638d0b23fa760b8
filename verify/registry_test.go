package verify

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupBuiltins(t *testing.T) {
	for _, name := range []string{"iban_mod97", "luhn", "dms_coordinate", "high_entropy_token"} {
		fn, ok := Lookup(name)
		assert.True(t, ok, name)
		assert.NotNil(t, fn, name)
	}

	_, ok := Lookup("no_such_function")
	assert.False(t, ok)
}

func TestRegisterAndUnregister(t *testing.T) {
	Register("always_true", func(string) bool { return true })
	defer Unregister("always_true")

	fn, ok := Lookup("always_true")
	require.True(t, ok)
	assert.True(t, fn("anything"))

	assert.True(t, Unregister("always_true"))
	assert.False(t, Unregister("always_true"))
	_, ok = Lookup("always_true")
	assert.False(t, ok)
}

func TestRegisterReplaces(t *testing.T) {
	Register("flip", func(string) bool { return false })
	defer Unregister("flip")
	Register("flip", func(string) bool { return true })

	fn, ok := Lookup("flip")
	require.True(t, ok)
	assert.True(t, fn(""))
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "luhn")
	assert.Contains(t, names, "iban_mod97")
}
