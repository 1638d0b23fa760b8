package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesCommand_ListsBuiltins(t *testing.T) {
	out, err := execCommand(t, "rules")
	require.NoError(t, err)

	assert.Contains(t, out, "kr/mobile_01")
	assert.Contains(t, out, "us/ssn_01")
	assert.Contains(t, out, "comm/credit_card_01")
	assert.Contains(t, out, "luhn")
	assert.Contains(t, out, "27 rules (registry version 27)")
}

func TestRulesCommand_NamespaceFilter(t *testing.T) {
	out, err := execCommand(t, "rules", "--namespace", "kr")
	require.NoError(t, err)

	assert.Contains(t, out, "kr/rrn_01")
	assert.NotContains(t, out, "us/ssn_01")
	assert.Contains(t, out, "6 rules")
}

func TestRulesCommand_UnknownNamespace(t *testing.T) {
	_, err := execCommand(t, "rules", "--namespace", "zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no rules in namespace "zz"`)
}

func TestRulesCommand_JSON(t *testing.T) {
	out, err := execCommand(t, "rules", "--json")
	require.NoError(t, err)

	var res struct {
		Rules   []ruleListing `json:"rules"`
		Count   int           `json:"count"`
		Version int           `json:"version"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 27, res.Count)
	assert.Equal(t, 27, res.Version)
	assert.Len(t, res.Rules, 27)

	for _, r := range res.Rules {
		if r.ID == "comm/credit_card_01" {
			assert.Equal(t, "luhn", r.Verify)
			assert.Equal(t, 90, r.Priority)
		}
	}
}

func TestRulesCommand_VerifyExamples(t *testing.T) {
	out, err := execCommand(t, "rules", "--verify-examples")
	require.NoError(t, err, "builtin examples should pass their own checks")

	assert.Contains(t, out, "✓ comm/credit_card_01")
	assert.Contains(t, out, "✓ comm/iban_01")
	assert.Contains(t, out, "27 rules checked, 0 failed")
}

func TestRulesCommand_VerifyExamplesCatchesBadExample(t *testing.T) {
	// A verify-gated rule whose match example fails its checksum loads fine
	// (load only replays expressions) but must fail the example replay.
	dir := t.TempDir()
	path := writeRuleFile(t, dir, "bad.yml", `namespace: custom
patterns:
  - id: card_like_01
    category: credit_card
    pattern: '\b\d{16}\b'
    verify: luhn
    policy:
      action: deny
      severity: high
    examples:
      match: ['4532015112830367']
`)

	out, err := execCommand(t, "rules", "--verify-examples", "--patterns", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 rules failed example checks")
	assert.Contains(t, out, "fails verification (luhn)")
}
