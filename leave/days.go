/*
Package leave implements the annual-leave accrual and carryover engine for
the Moroccan labor code (Dahir n° 1-03-194, Art. 231/241/242).

PURPOSE:
  Given an employee's hire date, elapsed service, leave consumption, and
  optional manual adjustments, the engine computes entitlement, consumption,
  remaining balance, and the amount that legally carries over versus is
  forfeited at year boundaries.

KEY CONCEPTS IN THIS FILE (days.go):
  - Days: A decimal day quantity with half-day granularity

DESIGN PRINCIPLES:
  1. Purity: every engine function is side-effect free and deterministic
  2. Precision: decimal.Decimal everywhere, no raw float64 day accounting
  3. Granularity: half-day (0.5) is the smallest unit a caller may supply
  4. Clamping over throwing: negative intermediate balances clamp to zero

SEE ALSO:
  - rule.go:       AccrualRule, RuleRegistry, rule selection
  - accrual.go:    Seniority and entitlement calculation
  - balance.go:    Yearly balance computation
  - projection.go: Multi-year chaining
*/
package leave

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DAYS - Decimal day quantity
// =============================================================================

// Days is a quantity of leave days. Business days are whole, half-day
// requests and prorated accruals are multiples of 0.5.
type Days struct {
	value decimal.Decimal
}

var (
	two        = decimal.NewFromInt(2)
	twelve     = decimal.NewFromInt(12)
	yearLength = decimal.NewFromFloat(365.25)
	// Average Gregorian month length, used for continuous prorating.
	monthLength = decimal.NewFromFloat(30.4375)
)

func NewDays(value float64) Days         { return Days{value: decimal.NewFromFloat(value)} }
func NewDaysFromInt(value int) Days      { return Days{value: decimal.NewFromInt(int64(value))} }
func DaysFromDecimal(d decimal.Decimal) Days { return Days{value: d} }

// ZeroDays is the additive identity.
func ZeroDays() Days { return Days{value: decimal.Zero} }

func (d Days) Decimal() decimal.Decimal { return d.value }
func (d Days) Float64() float64         { return d.value.InexactFloat64() }
func (d Days) String() string           { return d.value.String() }

func (d Days) Add(o Days) Days                 { return Days{value: d.value.Add(o.value)} }
func (d Days) Sub(o Days) Days                 { return Days{value: d.value.Sub(o.value)} }
func (d Days) Mul(s decimal.Decimal) Days      { return Days{value: d.value.Mul(s)} }
func (d Days) Div(s decimal.Decimal) Days      { return Days{value: d.value.Div(s)} }
func (d Days) Neg() Days                       { return Days{value: d.value.Neg()} }
func (d Days) IsZero() bool                    { return d.value.IsZero() }
func (d Days) IsNegative() bool                { return d.value.IsNegative() }
func (d Days) IsPositive() bool                { return d.value.IsPositive() }
func (d Days) Equal(o Days) bool               { return d.value.Equal(o.value) }
func (d Days) GreaterThan(o Days) bool         { return d.value.GreaterThan(o.value) }
func (d Days) LessThan(o Days) bool            { return d.value.LessThan(o.value) }
func (d Days) Min(o Days) Days {
	if d.LessThan(o) {
		return d
	}
	return o
}

func (d Days) Max(o Days) Days {
	if d.GreaterThan(o) {
		return d
	}
	return o
}

// ClampZero returns the quantity floored at zero.
func (d Days) ClampZero() Days {
	if d.IsNegative() {
		return ZeroDays()
	}
	return d
}

// Round2 rounds to two decimal places, half away from zero. Used for
// ratio-derived values such as the carryover ceiling.
func (d Days) Round2() Days { return Days{value: d.value.Round(2)} }

// RoundHalf rounds to the nearest 0.5 day, half up. This is the standard HR
// rounding convention for prorated accrual.
func (d Days) RoundHalf() Days {
	return Days{value: d.value.Mul(two).Round(0).Div(two)}
}

// IsHalfDayMultiple reports whether the quantity is a whole multiple of 0.5.
// Consumption inputs that fail this check are rejected at the boundary
// rather than silently rounded, so precision drift cannot accumulate across
// chained yearly calculations.
func (d Days) IsHalfDayMultiple() bool {
	return d.value.Mul(two).Equal(d.value.Mul(two).Round(0))
}

// WithinTolerance reports whether |d - o| <= 0.01, the float tolerance used
// by the balance invariants.
func (d Days) WithinTolerance(o Days) bool {
	return d.value.Sub(o.value).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01))
}
