//go:build e2e

package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zafrem/data-detector/internal/testutil"
)

func TestScanBinary_FindsMatches(t *testing.T) {
	stdout, stderr, code := RunDetector(t, t.TempDir(), nil, "scan", testutil.MixedText)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "2 match(es):")
	assert.Contains(t, stdout, "kr/mobile_01")
	assert.Contains(t, stdout, "comm/email_01")
}

func TestScanBinary_CleanTextExitsZero(t *testing.T) {
	stdout, stderr, code := RunDetector(t, t.TempDir(), nil, "scan", testutil.CleanText)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "No sensitive data found.")
}

func TestRedactBinary_MasksStdout(t *testing.T) {
	stdout, stderr, code := RunDetector(t, t.TempDir(), nil, "redact", "SSN 123-45-6789")
	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, "SSN ***-**-****\n", stdout, "stdout should carry only the redacted text")
}

func TestValidateBinary_ExitCodes(t *testing.T) {
	_, stderr, code := RunDetector(t, t.TempDir(), nil, "validate", "comm/credit_card_01", "4532015112830366")
	assert.Equal(t, 0, code, stderr)

	_, _, code = RunDetector(t, t.TempDir(), nil, "validate", "comm/credit_card_01", "4532015112830367")
	assert.Equal(t, 1, code, "checksum failure should exit 1")
}

func TestScanBinary_EnvConfig(t *testing.T) {
	// Rule sources from the environment replace the embedded defaults.
	dir := t.TempDir()
	testutil.WriteBadgeRules(t, dir)

	env := map[string]string{"DATADETECTOR_PATTERNS_PATHS": dir + "/badge.yml"}
	stdout, stderr, code := RunDetector(t, dir, env, "scan", "door BADGE-1234 opened")
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "custom/badge_01")

	stdout, stderr, code = RunDetector(t, dir, env, "scan", testutil.MixedText)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "No sensitive data found.")
}
