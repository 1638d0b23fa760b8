package hint

// Ready-made contexts for common scan targets. Each call returns a fresh
// value, so callers can append to the slices without affecting others.

// ColumnSSN scans database columns holding Social Security Numbers
// (user_ssn, taxpayer_id, social_security_number).
func ColumnSSN() Context {
	return Context{
		Keywords:   []string{"ssn", "social security", "taxpayer"},
		Categories: []string{"ssn"},
		Strategy:   StrategyStrict,
	}
}

// ColumnEmail scans database columns holding email addresses.
func ColumnEmail() Context {
	return Context{
		Keywords:   []string{"email", "mail"},
		Categories: []string{"email"},
		Strategy:   StrategyStrict,
	}
}

// ColumnPhone scans database columns holding phone numbers.
func ColumnPhone() Context {
	return Context{
		Keywords:   []string{"phone", "telephone", "mobile", "cell"},
		Categories: []string{"phone"},
		Strategy:   StrategyStrict,
	}
}

// ColumnCreditCard scans database columns holding card numbers.
func ColumnCreditCard() Context {
	return Context{
		Keywords:   []string{"card", "credit", "payment"},
		Categories: []string{"credit_card"},
		Strategy:   StrategyStrict,
	}
}

// ColumnBankAccount scans database columns holding account numbers.
func ColumnBankAccount() Context {
	return Context{
		Keywords:   []string{"account", "iban", "routing"},
		Categories: []string{"bank_account"},
		Strategy:   StrategyStrict,
	}
}

// KoreanRRN targets resident registration numbers only.
func KoreanRRN() Context {
	return Context{
		Keywords: []string{"주민등록번호", "rrn", "resident registration"},
		RuleIDs:  []string{"kr/rrn_01"},
		Strategy: StrategyStrict,
	}
}

// KoreanPhone targets Korean mobile numbers only.
func KoreanPhone() Context {
	return Context{
		Keywords: []string{"전화번호", "휴대폰"},
		RuleIDs:  []string{"kr/mobile_01"},
		Strategy: StrategyStrict,
	}
}

// ContactInfo scans for ways to reach a person: email and phone.
func ContactInfo() Context {
	return Context{
		Categories: []string{"contact"},
		Strategy:   StrategyStrict,
	}
}

// FinancialData scans for payment and account identifiers.
func FinancialData() Context {
	return Context{
		Categories: []string{"financial"},
		Strategy:   StrategyStrict,
	}
}

// PersonalIdentifiers scans for government-issued id numbers.
func PersonalIdentifiers() Context {
	return Context{
		Categories: []string{"government_id"},
		Strategy:   StrategyStrict,
	}
}

// Credentials scans for secret material: API keys, tokens, private keys.
func Credentials() Context {
	return Context{
		Categories: []string{"credentials"},
		Strategy:   StrategyStrict,
	}
}

// CriticalOnly scans for the identifiers whose leak is unrecoverable:
// government ids, payment cards, and credentials.
func CriticalOnly() Context {
	return Context{
		Categories: []string{"government_id", "credit_card", "credentials"},
		Strategy:   StrategyStrict,
	}
}

// All disables filtering.
func All() Context {
	return Context{Strategy: StrategyNone}
}
