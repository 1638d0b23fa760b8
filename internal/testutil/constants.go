package testutil

// Sample inputs covering the builtin namespaces. The integration and e2e
// suites assert against these same values, so keep them in sync with the
// embedded rules.
const (
	// MixedText carries one Korean mobile number and one email address.
	MixedText = "Reach me at 010-1234-5678 or jane@example.com"
	// CardText carries a Luhn-valid card number (comm/credit_card_01).
	CardText = "card 4532015112830366"
	// CleanText matches no builtin rule.
	CleanText = "meeting notes, nothing sensitive"
)

// BadgeRules is a single-namespace rule document for tests that replace the
// embedded defaults. One rule, no verification, declared mask.
const BadgeRules = `namespace: custom
description: Test rules
patterns:
  - id: badge_01
    category: custom
    pattern: 'BADGE-\d{4}'
    mask: 'BADGE-####'
    policy: {action: redact, store_raw: true, severity: low}
    examples:
      match: ['BADGE-1234']
      nomatch: ['BADGE-12']
`

// BrokenRules is a rule document whose pattern does not compile, for
// exercising load-failure paths.
const BrokenRules = `namespace: custom
patterns:
  - id: broken_01
    category: custom
    pattern: '[unclosed'
    policy: {action: redact, severity: low}
`
