package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCommand_PassesWithDefaults(t *testing.T) {
	out, err := execCommand(t, "doctor")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Config: resolved")
	assert.Contains(t, out, "✓ Rules: 27 loaded across 5 namespaces")
	assert.Contains(t, out, "✓ Verify: all declared functions resolved")
	assert.Contains(t, out, "✓ Keywords: embedded index")
	assert.Contains(t, out, "✓ Engine: builds")
	assert.Contains(t, out, "All checks passed.")
}

func TestDoctorCommand_BrokenRuleSource(t *testing.T) {
	path := writeRuleFile(t, t.TempDir(), "broken.yml", `namespace: custom
patterns:
  - id: bad_01
    category: custom
    pattern: '[unclosed'
    policy:
      action: redact
      severity: low
`)

	out, err := execCommand(t, "doctor", "--patterns", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight checks failed")
	assert.Contains(t, out, "✓ Rule source: "+path)
	assert.Contains(t, out, "✗ Rules:")
}

func TestDoctorCommand_MissingRuleSource(t *testing.T) {
	out, err := execCommand(t, "doctor", "--patterns", "/nonexistent/rules.yml")
	require.Error(t, err)
	assert.Contains(t, out, "✗ Rule source: /nonexistent/rules.yml")
}

func TestDoctorCommand_UnknownVerifyFunction(t *testing.T) {
	// An unknown verify name degrades the rule to match-only; doctor warns
	// but the checks still pass.
	path := writeRuleFile(t, t.TempDir(), "unverified.yml", `namespace: custom
patterns:
  - id: odd_01
    category: custom
    pattern: 'ODD-\d{4}'
    verify: does_not_exist
    policy:
      action: redact
      severity: low
`)

	out, err := execCommand(t, "doctor", "--patterns", path)
	require.NoError(t, err)
	assert.Contains(t, out, `⚠ Verify: custom/odd_01 names unknown function "does_not_exist"`)
	assert.Contains(t, out, "All checks passed.")
}
