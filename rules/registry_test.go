package rules

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRule(ns, id string, pattern string) *Rule {
	return &Rule{
		Namespace: ns,
		ID:        id,
		Category:  CategoryCustom,
		Expr:      regexp.MustCompile(pattern),
		Priority:  DefaultPriority,
		Policy:    Policy{Action: ActionRedact, Severity: SeverityMedium},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	r := testRule("kr", "mobile_01", `01[016789]-\d{3,4}-\d{4}`)
	require.NoError(t, reg.Register(r))

	got, ok := reg.Lookup("kr/mobile_01")
	require.True(t, ok)
	assert.Equal(t, "kr/mobile_01", got.FullID())
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, reg.Version())

	_, ok = reg.Lookup("kr/nope")
	assert.False(t, ok)
}

func TestRegisterOverwriteKeepsPosition(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(testRule("kr", "a", `a+`)))
	require.NoError(t, reg.Register(testRule("kr", "b", `b+`)))
	require.NoError(t, reg.Register(testRule("kr", "a", `aa+`)))

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 3, reg.Version())

	list := reg.Namespace("kr")
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "aa+", list[0].Expr.String())
	assert.Equal(t, "b", list[1].ID)
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(&Rule{Namespace: "kr", Expr: regexp.MustCompile(`a`)}))
	assert.Error(t, reg.Register(&Rule{Namespace: "kr", ID: "x"}))
	assert.Equal(t, 0, reg.Version())
}

func TestNamespaceReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(testRule("us", "ssn_01", `\d{3}-\d{2}-\d{4}`)))

	list := reg.Namespace("us")
	require.Len(t, list, 1)
	list[0] = nil

	again := reg.Namespace("us")
	require.Len(t, again, 1)
	assert.NotNil(t, again[0])

	assert.Nil(t, reg.Namespace("absent"))
}

func TestNamespacesSorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(testRule("us", "a", `a`)))
	require.NoError(t, reg.Register(testRule("cn", "a", `a`)))
	require.NoError(t, reg.Register(testRule("kr", "a", `a`)))

	assert.Equal(t, []string{"cn", "kr", "us"}, reg.Namespaces())
	assert.Equal(t, []string{"cn/a", "kr/a", "us/a"}, reg.IDs())
}

func TestFullMatch(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, Parse("inline.yml", []byte(`
namespace: kr
patterns:
  - id: mobile_01
    category: phone
    pattern: '01[016789]-\d{3,4}-\d{4}'
    policy: {action: redact, store_raw: false, severity: high}
`), reg))

	r, ok := reg.Lookup("kr/mobile_01")
	require.True(t, ok)
	assert.True(t, r.FullMatch("010-1234-5678"))
	assert.False(t, r.FullMatch("call 010-1234-5678"))
	assert.False(t, r.FullMatch("010-1234-567"))
}
