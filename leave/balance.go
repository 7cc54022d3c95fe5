/*
balance.go - Yearly balance computation

PURPOSE:
  Computes the full leave-balance record for one employee-year. This is the
  central calculation that answers "how many days does this employee have
  left, and what happens to them at year end?"

KEY INSIGHT:
  A YearlyBalance has no identity of its own beyond (employee, year). It is
  always derived from its inputs, never edited: recomputation with the same
  inputs is idempotent and side-effect free, so callers may persist snapshots
  or recompute on demand interchangeably.

FIELDS AND INVARIANTS:
  Remaining     = max(0, AnnualRate + PreviousCarryover - (Used + UsedAdjustment))
  MaxCarryover  = AnnualRate × rule.MaxCarryoverRatio, rounded to 2 decimals
  NextCarryover = min(Remaining, MaxCarryover)
  Forfeited     = max(0, Remaining - MaxCarryover)
  Remaining    == NextCarryover + Forfeited   (within 0.01)

ADJUSTMENTS:
  Two distinct correction mechanisms, audited separately:
  - UsedAdjustment corrects CONSUMPTION (can be negative)
  - EntitlementAdjustment is the "+/- days" override: it behaves as bonus
    or penalty ENTITLEMENT, added to AnnualRate before anything downstream

REFERENCE DATE:
  Seniority for year Y is frozen as of December 31 of Y. Prorating for
  partial years is a separate operation (ProrataAccrual in accrual.go).
*/
package leave

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// YEARLY BALANCE - Computed result
// =============================================================================

// YearlyBalance is the computed leave accounting for one employee-year.
// Not independently mutable: always recomputed from inputs.
type YearlyBalance struct {
	EmployeeID string
	Year       int
	RuleID     string

	// YearsOfService is decimal service at December 31 of Year.
	YearsOfService decimal.Decimal

	// AnnualRate is the entitlement for the year: post-bonus, post-cap,
	// including any entitlement adjustment.
	AnnualRate Days

	// SeniorityBonus is the bonus component included in AnnualRate.
	SeniorityBonus Days

	// EntitlementAdjustment is the "+/- days" override included in AnnualRate.
	EntitlementAdjustment Days

	// PreviousCarryover is inherited from year N-1 (zero for the first
	// tracked year).
	PreviousCarryover Days

	// Used is the approved annual-type consumption for the year.
	Used Days

	// UsedAdjustment is the manual correction to consumption.
	UsedAdjustment Days

	Remaining    Days
	MaxCarryover Days

	// NextCarryover is the part of Remaining that survives into year N+1.
	NextCarryover Days

	// Forfeited is the part of Remaining lost at the year boundary.
	Forfeited Days

	// CarryoverExpiresAt is the last day the carried-over days may be used
	// in year N+1, per the rule's grace period.
	CarryoverExpiresAt CalendarDate

	// Overdrawn flags consumption exceeding availability. Flagged, not
	// blocked: the caller decides whether to act on it.
	Overdrawn bool
}

// BalanceInput bundles the inputs to a yearly balance computation. All day
// quantities must sit on the half-day grid.
type BalanceInput struct {
	EmployeeID string
	HireDate   CalendarDate
	Year       int

	// Used is approved annual-type consumption for the year.
	Used Days

	// UsedAdjustment corrects consumption; may be negative.
	UsedAdjustment Days

	// EntitlementAdjustment is the per-employee "+/- days" override.
	EntitlementAdjustment Days

	// PreviousCarryover comes from year N-1's NextCarryover.
	PreviousCarryover Days
}

// =============================================================================
// BALANCE ENGINE
// =============================================================================

// ComputeYearlyBalance derives the YearlyBalance for one employee-year under
// a rule. Pure: identical inputs always yield an identical record.
//
// Negative intermediate values clamp to zero; over-consumption is flagged on
// the record, never raised as an error.
func ComputeYearlyBalance(in BalanceInput, rule AccrualRule) (YearlyBalance, error) {
	for _, q := range []Days{in.Used, in.UsedAdjustment, in.EntitlementAdjustment, in.PreviousCarryover} {
		if !q.IsHalfDayMultiple() {
			return YearlyBalance{}, &InvalidDurationError{Duration: q}
		}
	}

	reference := YearEnd(in.Year)
	service := YearsOfService(in.HireDate, reference)

	annualRate := AnnualEntitlement(service, rule).Add(in.EntitlementAdjustment)
	bonus := SeniorityBonus(service, rule)

	consumed := in.Used.Add(in.UsedAdjustment)
	available := annualRate.Add(in.PreviousCarryover)

	remaining := available.Sub(consumed).ClampZero()
	maxCarryover := annualRate.Mul(rule.MaxCarryoverRatio).Round2()
	nextCarryover := remaining.Min(maxCarryover)
	forfeited := remaining.Sub(maxCarryover).ClampZero()

	expiry := YearStart(in.Year + 1).AddMonths(rule.CarryoverExpiryMonths).AddDays(-1)

	return YearlyBalance{
		EmployeeID:            in.EmployeeID,
		Year:                  in.Year,
		RuleID:                rule.ID,
		YearsOfService:        service,
		AnnualRate:            annualRate,
		SeniorityBonus:        bonus,
		EntitlementAdjustment: in.EntitlementAdjustment,
		PreviousCarryover:     in.PreviousCarryover,
		Used:                  in.Used,
		UsedAdjustment:        in.UsedAdjustment,
		Remaining:             remaining,
		MaxCarryover:          maxCarryover,
		NextCarryover:         nextCarryover,
		Forfeited:             forfeited,
		CarryoverExpiresAt:    expiry,
		Overdrawn:             consumed.GreaterThan(available),
	}, nil
}
