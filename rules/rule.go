// Package rules defines the detection rule model and the registry that holds
// compiled rules. Rules are declared in YAML, grouped by namespace (usually a
// country code or "comm" for cross-border identifiers), compiled exactly once
// at load time, and optionally gated by a named verification function.
//
// A Registry is built by Load/LoadDefault and treated as immutable once it is
// handed to an engine or a Store; hot reload builds a fresh Registry and swaps
// it atomically.
package rules

import (
	"regexp"

	"github.com/zafrem/data-detector/verify"
)

// Category classifies what kind of data a rule detects.
type Category string

const (
	CategoryPhone         Category = "phone"
	CategoryEmail         Category = "email"
	CategorySSN           Category = "ssn"
	CategoryNationalID    Category = "national_id"
	CategoryCreditCard    Category = "credit_card"
	CategoryBankAccount   Category = "bank_account"
	CategoryPassport      Category = "passport"
	CategoryDriverLicense Category = "driver_license"
	CategoryZipcode       Category = "zipcode"
	CategoryAddress       Category = "address"
	CategoryName          Category = "name"
	CategoryDOB           Category = "dob"
	CategoryIPAddress     Category = "ip_address"
	CategoryMACAddress    Category = "mac_address"
	CategoryCoordinate    Category = "coordinate"
	CategoryCredential    Category = "credential"
	CategoryCustom        Category = "custom"
)

var validCategories = map[Category]bool{
	CategoryPhone: true, CategoryEmail: true, CategorySSN: true,
	CategoryNationalID: true, CategoryCreditCard: true, CategoryBankAccount: true,
	CategoryPassport: true, CategoryDriverLicense: true, CategoryZipcode: true,
	CategoryAddress: true, CategoryName: true, CategoryDOB: true,
	CategoryIPAddress: true, CategoryMACAddress: true, CategoryCoordinate: true,
	CategoryCredential: true, CategoryCustom: true,
}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool { return validCategories[c] }

// Severity ranks how damaging a leak of the matched data is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether the severity is one of the known values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Action is what downstream policy enforcement should do with a match.
type Action string

const (
	ActionDeny   Action = "deny"
	ActionRedact Action = "redact"
	ActionAlert  Action = "alert"
	ActionAllow  Action = "allow"
)

// Valid reports whether the action is one of the known values.
func (a Action) Valid() bool {
	switch a {
	case ActionDeny, ActionRedact, ActionAlert, ActionAllow:
		return true
	}
	return false
}

// Policy is the handling directive attached to every rule.
type Policy struct {
	Action Action `yaml:"action" json:"action"`
	// StoreRaw permits the matched value to appear in results. Rules for
	// high-risk identifiers set this false so raw values never leave the
	// scanned text even when a caller asks for them.
	StoreRaw bool     `yaml:"store_raw" json:"store_raw"`
	Severity Severity `yaml:"severity" json:"severity"`
}

// Examples are sample values bundled with a rule and checked against the
// compiled expression at load time.
type Examples struct {
	Match   []string `yaml:"match" json:"match,omitempty"`
	NoMatch []string `yaml:"nomatch" json:"nomatch,omitempty"`
}

// DefaultPriority is assigned when a rule declares none. Lower values win
// contested spans.
const DefaultPriority = 100

// Rule is one compiled detection rule.
type Rule struct {
	Namespace   string
	ID          string
	Category    Category
	Description string

	// Expr scans free text; anchored is the same expression required to
	// cover a whole input, used for exact validation.
	Expr     *regexp.Regexp
	anchored *regexp.Regexp

	// Mask, when set, replaces matches under the mask redaction strategy.
	Mask     string
	Priority int
	Policy   Policy

	// VerifyName is the declared verification function; Verify is the
	// resolved function, nil when none was declared or the name was unknown
	// at load time (the rule then degrades to match-only).
	VerifyName string
	Verify     verify.Func

	Metadata map[string]string
	Examples Examples
}

// FullID returns the namespace-qualified id, e.g. "kr/mobile_01".
func (r *Rule) FullID() string { return r.Namespace + "/" + r.ID }

// FullMatch reports whether the entire value matches the rule's expression.
func (r *Rule) FullMatch(value string) bool {
	if r.anchored != nil {
		return r.anchored.MatchString(value)
	}
	loc := r.Expr.FindStringIndex(value)
	return loc != nil && loc[0] == 0 && loc[1] == len(value)
}

// Verified runs the rule's verification function over a matched value.
// Rules without one accept every match.
func (r *Rule) Verified(value string) bool {
	if r.Verify == nil {
		return true
	}
	return r.Verify(value)
}
