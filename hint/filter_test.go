package hint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafrem/data-detector/rules"
)

var allIDs = []string{
	"kr/mobile_01",
	"kr/rrn_01",
	"kr/bank_account_01",
	"us/ssn_01",
	"us/phone_01",
	"comm/email_01",
	"comm/credit_card_01",
}

func TestApplyStrategyNone(t *testing.T) {
	f := NewFilter(testIndex())
	got, err := f.Apply(Context{Strategy: StrategyNone, Keywords: []string{"ssn"}}, allIDs)
	require.NoError(t, err)
	assert.Equal(t, allIDs, got)
}

func TestApplyKeywordSelection(t *testing.T) {
	f := NewFilter(testIndex())

	got, err := f.Apply(Context{Keywords: []string{"user_ssn"}, Strategy: StrategyStrict}, allIDs)
	require.NoError(t, err)
	assert.Equal(t, []string{"us/ssn_01"}, got)
}

func TestApplyPreservesInputOrder(t *testing.T) {
	f := NewFilter(testIndex())

	got, err := f.Apply(Context{Keywords: []string{"phone", "ssn"}, Strategy: StrategyStrict}, allIDs)
	require.NoError(t, err)
	// kr/mobile_01 precedes us/ssn_01 precedes us/phone_01 in the input.
	assert.Equal(t, []string{"kr/mobile_01", "us/ssn_01", "us/phone_01"}, got)
}

func TestApplyStrictKeepsEmptySelection(t *testing.T) {
	f := NewFilter(testIndex())

	got, err := f.Apply(Context{Keywords: []string{"no such keyword"}, Strategy: StrategyStrict}, allIDs)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyLooseFallsBackToAll(t *testing.T) {
	f := NewFilter(testIndex())

	hint := Context{Keywords: []string{"no such keyword"}, Strategy: StrategyLoose}
	got, err := f.Apply(hint, allIDs)
	require.NoError(t, err)
	assert.Equal(t, allIDs, got)

	// Empty strategy behaves as loose.
	hint.Strategy = ""
	got, err = f.Apply(hint, allIDs)
	require.NoError(t, err)
	assert.Equal(t, allIDs, got)
}

func TestApplyLooseFallbackIgnoresExclusions(t *testing.T) {
	f := NewFilter(testIndex())

	hint := Context{
		Keywords: []string{"no such keyword"},
		Exclude:  []string{"us/ssn_01"},
		Strategy: StrategyLoose,
	}
	got, err := f.Apply(hint, allIDs)
	require.NoError(t, err)
	assert.Equal(t, allIDs, got, "fallback is the unfiltered list")
}

func TestApplyExplicitIDs(t *testing.T) {
	f := NewFilter(testIndex())

	got, err := f.Apply(Context{RuleIDs: []string{"comm/email_01"}, Strategy: StrategyStrict}, allIDs)
	require.NoError(t, err)
	assert.Equal(t, []string{"comm/email_01"}, got)
}

func TestApplyUnknownExplicitID(t *testing.T) {
	f := NewFilter(testIndex())

	_, err := f.Apply(Context{RuleIDs: []string{"kr/absent_01"}, Strategy: StrategyStrict}, allIDs)
	require.Error(t, err)

	var unknown *rules.UnknownRuleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "kr/absent_01", unknown.ID)
}

func TestApplyWildcards(t *testing.T) {
	f := NewFilter(testIndex())

	got, err := f.Apply(Context{RuleIDs: []string{"kr/*"}, Strategy: StrategyStrict}, allIDs)
	require.NoError(t, err)
	assert.Equal(t, []string{"kr/mobile_01", "kr/rrn_01", "kr/bank_account_01"}, got)

	// A wildcard matching nothing is not an error.
	got, err = f.Apply(Context{RuleIDs: []string{"xx/*"}, Strategy: StrategyStrict}, allIDs)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyExclusionsSubtractLast(t *testing.T) {
	f := NewFilter(testIndex())

	hint := Context{
		RuleIDs:  []string{"kr/*"},
		Exclude:  []string{"kr/bank_account_01"},
		Strategy: StrategyStrict,
	}
	got, err := f.Apply(hint, allIDs)
	require.NoError(t, err)
	assert.Equal(t, []string{"kr/mobile_01", "kr/rrn_01"}, got)

	hint.Exclude = []string{"kr/*"}
	got, err = f.Apply(hint, allIDs)
	require.NoError(t, err)
	assert.Empty(t, got, "wildcard exclusions expand too")
}

func TestApplyKeywordTableMayReferenceUnloadedRules(t *testing.T) {
	idx := NewKeywordIndex()
	idx.AddKeyword("ssn", "us/ssn_01", "de/tax_id_01")
	f := NewFilter(idx)

	got, err := f.Apply(Context{Keywords: []string{"ssn"}, Strategy: StrategyStrict}, allIDs)
	require.NoError(t, err)
	assert.Equal(t, []string{"us/ssn_01"}, got, "table entries for unloaded namespaces drop silently")
}

func TestApplyNilIndex(t *testing.T) {
	f := NewFilter(nil)

	got, err := f.Apply(Context{RuleIDs: []string{"us/ssn_01"}, Strategy: StrategyStrict}, allIDs)
	require.NoError(t, err)
	assert.Equal(t, []string{"us/ssn_01"}, got)
}

func TestPresetsResolveAgainstDefaultTable(t *testing.T) {
	idx, err := DefaultKeywordIndex()
	require.NoError(t, err)
	f := NewFilter(idx)

	got, err := f.Apply(ColumnSSN(), allIDs)
	require.NoError(t, err)
	assert.Equal(t, []string{"us/ssn_01"}, got)

	got, err = f.Apply(FinancialData(), allIDs)
	require.NoError(t, err)
	assert.Contains(t, got, "comm/credit_card_01")
	assert.Contains(t, got, "kr/bank_account_01")

	got, err = f.Apply(All(), allIDs)
	require.NoError(t, err)
	assert.Equal(t, allIDs, got)
}
