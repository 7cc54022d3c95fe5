package leave

import "fmt"

// =============================================================================
// CARRYOVER VALIDATOR - Diagnostic cross-check of a computed balance
// =============================================================================

// ValidationResult reports the outcome of the four balance consistency
// checks. Advisory tooling: it never blocks computation, the caller decides
// whether to persist an invalid record.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// ValidateBalance cross-checks a YearlyBalance for internal consistency.
// All four checks run independently; IsValid is true only if every one
// passes.
func ValidateBalance(b YearlyBalance, rule AccrualRule) ValidationResult {
	var errs []string

	// 1. Carryover never exceeds its ceiling. Strict, no tolerance.
	if b.NextCarryover.GreaterThan(b.MaxCarryover) {
		errs = append(errs, fmt.Sprintf(
			"next carryover %s exceeds the maximum %s", b.NextCarryover, b.MaxCarryover))
	}

	// 2. Consumption within availability. The expected case, not enforced
	// by the engine; a violation here flags an overdrawn year.
	consumed := b.Used.Add(b.UsedAdjustment)
	available := b.AnnualRate.Add(b.PreviousCarryover)
	if consumed.GreaterThan(available) {
		errs = append(errs, fmt.Sprintf(
			"consumption exceeds availability: %s consumed against %s available", consumed, available))
	}

	// 3. Remaining reconciles with entitlement minus consumption.
	// Fails whenever the engine clamped a negative remainder to zero,
	// which is exactly the overdrawn case check 2 reports.
	expectedRemaining := available.Sub(consumed)
	if !b.Remaining.WithinTolerance(expectedRemaining) {
		errs = append(errs, fmt.Sprintf(
			"remaining %s does not reconcile with entitlement minus consumption %s",
			b.Remaining, expectedRemaining))
	}

	// 4. Forfeiture is the excess of remaining over the carryover ceiling.
	expectedForfeited := b.Remaining.Sub(b.MaxCarryover).ClampZero()
	if !b.Forfeited.WithinTolerance(expectedForfeited) {
		errs = append(errs, fmt.Sprintf(
			"forfeited %s does not match remaining minus max carryover %s",
			b.Forfeited, expectedForfeited))
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
