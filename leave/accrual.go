/*
accrual.go - Seniority and entitlement calculation

PURPOSE:
  Turns a hire date and a rule into an annual entitlement:

    entitlement = base + floor(yearsOfService / bonusPeriod) × bonus
    entitlement = min(entitlement, cap)

  Seniority periods are floored, never rounded: 4.9 years of service with a
  5-year bonus period grants zero bonus for that period. The cap applies
  after the bonus, never before.

  ProrataAccrual scales entitlement to a partial period (first or last year
  of employment), with the standard HR rounding to the nearest half day.
*/
package leave

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// YEARS OF SERVICE
// =============================================================================

// YearsOfService returns elapsed service in decimal years at the reference
// date, using the 365.25-day average year. Returns zero when the hire date
// is after the reference date or either date is the zero value.
func YearsOfService(hireDate, referenceDate CalendarDate) decimal.Decimal {
	if hireDate.IsZero() || referenceDate.IsZero() || hireDate.After(referenceDate) {
		return decimal.Zero
	}
	elapsed := decimal.NewFromInt(int64(DaysBetween(hireDate, referenceDate)))
	return elapsed.Div(yearLength)
}

// =============================================================================
// ANNUAL ENTITLEMENT
// =============================================================================

// AnnualEntitlement computes the entitled annual day count for a given
// seniority under a rule: base plus one bonus per completed bonus period,
// clamped to the rule's annual cap.
func AnnualEntitlement(yearsOfService decimal.Decimal, rule AccrualRule) Days {
	periods := yearsOfService.
		Div(decimal.NewFromInt(int64(rule.SeniorityBonusPeriodYears))).
		Floor()
	entitlement := rule.AnnualBaseDays.Add(periods.Mul(rule.SeniorityBonusDays))
	if entitlement.GreaterThan(rule.MaxAnnualDays) {
		entitlement = rule.MaxAnnualDays
	}
	return DaysFromDecimal(entitlement)
}

// SeniorityBonus returns only the bonus component of the entitlement, after
// the cap: the bonus cannot push total entitlement past the annual cap, so
// the reported bonus shrinks once the cap binds.
func SeniorityBonus(yearsOfService decimal.Decimal, rule AccrualRule) Days {
	total := AnnualEntitlement(yearsOfService, rule)
	base := DaysFromDecimal(rule.AnnualBaseDays)
	return total.Sub(base).ClampZero()
}

// =============================================================================
// PRORATED ACCRUAL - Partial-period entitlement
// =============================================================================

// ProrataAccrual returns the entitlement earned over the part of
// [periodStart, periodEnd] the employee actually worked. Used for partial
// first and last years of employment; full tracked years go through
// ComputeYearlyBalance instead, which freezes entitlement at year-end.
//
// Months worked are counted exactly when both the effective start and the
// day after the period end fall on the first of a month; otherwise the
// inclusive day count is converted at the 30.4375-day average month.
// Seniority is evaluated as of the period end. The result is rounded to the
// nearest half day, half up.
func ProrataAccrual(hireDate, periodStart, periodEnd CalendarDate, rule AccrualRule) Days {
	if hireDate.After(periodEnd) {
		return ZeroDays() // not yet hired
	}

	effectiveStart := periodStart
	if hireDate.After(effectiveStart) {
		effectiveStart = hireDate
	}

	dayAfterEnd := periodEnd.AddDays(1)
	var monthsWorked decimal.Decimal
	if effectiveStart.Day() == 1 && dayAfterEnd.Day() == 1 {
		whole := (dayAfterEnd.Year()-effectiveStart.Year())*12 +
			int(dayAfterEnd.Month()) - int(effectiveStart.Month())
		monthsWorked = decimal.NewFromInt(int64(whole))
	} else {
		daysWorked := DaysBetween(effectiveStart, periodEnd) + 1
		monthsWorked = decimal.NewFromInt(int64(daysWorked)).Div(monthLength)
	}

	entitlement := AnnualEntitlement(YearsOfService(hireDate, periodEnd), rule)
	return entitlement.Div(twelve).Mul(monthsWorked).RoundHalf()
}
