package rules

// UnknownRuleError reports a reference to a rule id that is not registered:
// an exact-validation call or an explicit context-hint id naming a rule the
// active registry does not carry. It is surfaced to the caller, never
// silently dropped.
type UnknownRuleError struct {
	ID string
}

func (e *UnknownRuleError) Error() string {
	return "unknown rule: " + e.ID
}
