//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/internal/testutil"
	"github.com/zafrem/data-detector/rules"
	"github.com/zafrem/data-detector/token"
)

// TestLibraryPipeline walks the full library surface over the embedded
// rules: find, redact, tokenize, detokenize, validate.
func TestLibraryPipeline(t *testing.T) {
	reg, err := rules.LoadDefault()
	require.NoError(t, err)
	engine, err := detect.New(reg)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := engine.Find(ctx, testutil.MixedText)
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "kr/mobile_01", res.Matches[0].RuleID)
	assert.Equal(t, "comm/email_01", res.Matches[1].RuleID)

	red, err := engine.Redact(ctx, testutil.MixedText, detect.StrategyMask)
	require.NoError(t, err)
	assert.Equal(t, "Reach me at 010-****-**** or ****@****.***", red.Redacted)
	assert.Equal(t, 2, red.Count)

	tk, err := token.New(engine)
	require.NoError(t, err)
	tokenized, m, err := tk.Tokenize(ctx, testutil.MixedText)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.NotContains(t, tokenized, "010-1234-5678")
	assert.NotContains(t, tokenized, "jane@example.com")
	assert.True(t, m.Verify(m.Digest()))

	restored := token.Detokenize(tokenized, m, false)
	assert.Equal(t, testutil.MixedText, restored)

	val, err := engine.Validate(ctx, "4532015112830366", "comm/credit_card_01")
	require.NoError(t, err)
	assert.True(t, val.Valid)

	clean, err := engine.Find(ctx, testutil.CleanText)
	require.NoError(t, err)
	assert.Empty(t, clean.Matches)
}

// TestCustomRulesPipeline loads rules from a file instead of the embedded
// defaults and checks the defaults really are replaced.
func TestCustomRulesPipeline(t *testing.T) {
	path := testutil.WriteBadgeRules(t, t.TempDir())
	reg, err := rules.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())

	engine, err := detect.New(reg)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := engine.Find(ctx, "door BADGE-1234 opened", detect.IncludeRaw())
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "custom/badge_01", res.Matches[0].RuleID)
	assert.Equal(t, "BADGE-1234", res.Matches[0].Raw)

	red, err := engine.Redact(ctx, "door BADGE-1234 opened", detect.StrategyMask)
	require.NoError(t, err)
	assert.Equal(t, "door BADGE-#### opened", red.Redacted)

	// The embedded rules are gone, so builtin identifiers pass through.
	clean, err := engine.Find(ctx, testutil.MixedText)
	require.NoError(t, err)
	assert.Empty(t, clean.Matches)
}
