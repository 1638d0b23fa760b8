package hint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex() *KeywordIndex {
	idx := NewKeywordIndex()
	idx.AddKeyword("ssn", "us/ssn_01")
	idx.AddKeyword("social security", "us/ssn_01")
	idx.AddKeyword("phone", "kr/mobile_01", "us/phone_01")
	idx.AddKeyword("주민등록번호", "kr/rrn_01")
	idx.AddCategory("financial", "comm/credit_card_01", "comm/iban_01")
	idx.AddCategory("contact", "comm/email_01", "kr/mobile_01")
	return idx
}

func TestPatternsForKeyword(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		name    string
		keyword string
		want    []string
	}{
		{"exact", "ssn", []string{"us/ssn_01"}},
		{"case insensitive", "SSN", []string{"us/ssn_01"}},
		{"underscore equals space", "social_security", []string{"us/ssn_01"}},
		{"query contains registered", "user ssn", []string{"us/ssn_01"}},
		{"registered contains query", "social", []string{"us/ssn_01"}},
		{"hangul", "주민등록번호", []string{"kr/rrn_01"}},
		{"multiple rules", "phone", []string{"kr/mobile_01", "us/phone_01"}},
		{"unknown", "favorite color", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.PatternsForKeyword(tt.keyword))
		})
	}
}

func TestPatternsForCategory(t *testing.T) {
	idx := testIndex()

	assert.Equal(t, []string{"comm/credit_card_01", "comm/iban_01"}, idx.PatternsForCategory("financial"))
	assert.Equal(t, []string{"comm/credit_card_01", "comm/iban_01"}, idx.PatternsForCategory("FINANCIAL"))
	assert.Nil(t, idx.PatternsForCategory("fin"), "category lookup is exact, not substring")
	assert.Nil(t, idx.PatternsForCategory("unknown"))
}

func TestParseKeywordIndex(t *testing.T) {
	data := []byte(`
keywords:
  ssn:
    patterns: [us/ssn_01]
categories:
  financial:
    patterns: [comm/credit_card_01]
`)
	idx, err := ParseKeywordIndex(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"us/ssn_01"}, idx.PatternsForKeyword("ssn"))
	assert.Equal(t, []string{"comm/credit_card_01"}, idx.PatternsForCategory("financial"))

	_, err = ParseKeywordIndex([]byte("keywords: [broken"))
	assert.Error(t, err)
}

func TestDefaultKeywordIndex(t *testing.T) {
	idx, err := DefaultKeywordIndex()
	require.NoError(t, err)

	assert.Contains(t, idx.PatternsForKeyword("ssn"), "us/ssn_01")
	assert.Contains(t, idx.PatternsForKeyword("전화번호"), "kr/mobile_01")
	assert.Contains(t, idx.PatternsForCategory("credentials"), "comm/github_token_01")
	assert.NotEmpty(t, idx.Keywords())
	assert.NotEmpty(t, idx.Categories())
}

func TestFromFieldName(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  []string
	}{
		{"snake case", "user_ssn", []string{"user", "ssn"}},
		{"kebab and dots", "billing-card.number", []string{"billing", "card", "number"}},
		{"drops short fragments", "a_b_email", []string{"email"}},
		{"uppercase", "USER_EMAIL", []string{"user", "email"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := FromFieldName(tt.field, StrategyStrict)
			assert.Equal(t, tt.want, h.Keywords)
			assert.Equal(t, StrategyStrict, h.Strategy)
		})
	}
}
