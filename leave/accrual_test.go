package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlashr/leave-engine/leave"
)

// =============================================================================
// YEARS OF SERVICE
// =============================================================================

func TestYearsOfService_TwelveMonths(t *testing.T) {
	hire := date(2022, time.June, 1)
	ref := date(2023, time.June, 1)

	service := leave.YearsOfService(hire, ref)

	// 365 days / 365.25: just under one year.
	assert.True(t, service.GreaterThan(decimal.NewFromFloat(0.99)))
	assert.True(t, service.LessThan(decimal.NewFromInt(1)))
}

func TestYearsOfService_HireAfterReference_ReturnsZero(t *testing.T) {
	service := leave.YearsOfService(date(2024, time.March, 1), date(2023, time.March, 1))
	assert.True(t, service.IsZero())
}

func TestYearsOfService_ZeroDates_ReturnZero(t *testing.T) {
	assert.True(t, leave.YearsOfService(leave.CalendarDate{}, date(2023, time.March, 1)).IsZero())
	assert.True(t, leave.YearsOfService(date(2023, time.March, 1), leave.CalendarDate{}).IsZero())
}

// =============================================================================
// ANNUAL ENTITLEMENT
// =============================================================================

func TestAnnualEntitlement_ZeroSeniority(t *testing.T) {
	// GIVEN: hired exactly 12 months before the reference date
	// THEN: 18 base days, zero bonus periods elapsed
	service := leave.YearsOfService(date(2022, time.January, 1), date(2023, time.January, 1))
	got := leave.AnnualEntitlement(service, standardRule())
	assert.True(t, d(18).Equal(got), "got %s", got)
}

func TestAnnualEntitlement_SixYears(t *testing.T) {
	// floor(6/5) = 1 bonus period -> 18 + 1.5 = 19.5
	got := leave.AnnualEntitlement(decimal.NewFromInt(6), standardRule())
	assert.True(t, d(19.5).Equal(got), "got %s", got)
}

func TestAnnualEntitlement_PartialPeriodGrantsNothing(t *testing.T) {
	// 4.9 years with a 5-year period: periods are floored, not rounded.
	got := leave.AnnualEntitlement(decimal.NewFromFloat(4.9), standardRule())
	assert.True(t, d(18).Equal(got), "got %s", got)
}

func TestAnnualEntitlement_CapBindsExactly(t *testing.T) {
	// 40 years: 18 + floor(40/5)*1.5 = 30, the cap binds without being exceeded.
	got := leave.AnnualEntitlement(decimal.NewFromInt(40), standardRule())
	assert.True(t, d(30).Equal(got), "got %s", got)

	// 50 years would be 33 uncapped; still 30.
	got = leave.AnnualEntitlement(decimal.NewFromInt(50), standardRule())
	assert.True(t, d(30).Equal(got), "got %s", got)
}

func TestAnnualEntitlement_MonotoneAndCapped(t *testing.T) {
	// Property: for a fixed rule, entitlement is non-decreasing in service
	// and never exceeds the cap.
	rule := standardRule()
	prev := leave.ZeroDays()
	for tenths := 0; tenths <= 600; tenths++ {
		service := decimal.NewFromInt(int64(tenths)).Div(decimal.NewFromInt(10))
		got := leave.AnnualEntitlement(service, rule)
		assert.False(t, got.LessThan(prev), "entitlement decreased at %s years", service)
		assert.False(t, got.GreaterThan(d(30)), "cap exceeded at %s years", service)
		prev = got
	}
}

func TestSeniorityBonus_ShrinksOnceCapBinds(t *testing.T) {
	// At 6 years the bonus is 1.5; at 50 years the uncapped bonus would be
	// 15 but the cap limits the reportable bonus to 12.
	assert.True(t, d(1.5).Equal(leave.SeniorityBonus(decimal.NewFromInt(6), standardRule())))
	assert.True(t, d(12).Equal(leave.SeniorityBonus(decimal.NewFromInt(50), standardRule())))
}

// =============================================================================
// PRORATED ACCRUAL
// =============================================================================

func TestProrataAccrual_FullYearAlignedOnMonths(t *testing.T) {
	// GIVEN: employed for the whole calendar year, boundaries on the 1st
	// THEN: whole-month path yields 12 months -> the full entitlement
	rule := standardRule()
	got := leave.ProrataAccrual(
		date(2020, time.March, 1),
		date(2023, time.January, 1),
		date(2023, time.December, 31),
		rule,
	)
	assert.True(t, d(18).Equal(got), "got %s", got)
}

func TestProrataAccrual_MidYearHire(t *testing.T) {
	// GIVEN: hired July 1, tracked over the calendar year
	// THEN: 6 whole months -> 18/12*6 = 9 days
	rule := standardRule()
	got := leave.ProrataAccrual(
		date(2023, time.July, 1),
		date(2023, time.January, 1),
		date(2023, time.December, 31),
		rule,
	)
	assert.True(t, d(9).Equal(got), "got %s", got)
}

func TestProrataAccrual_ContinuousMonths_RoundsToHalfDay(t *testing.T) {
	// GIVEN: hired mid-month, so the continuous 30.4375-day month applies
	// Oct 15..Dec 31 = 78 days -> 2.5627 months -> 18/12*2.5627 = 3.844
	// THEN: rounded to the nearest half day -> 4
	rule := standardRule()
	got := leave.ProrataAccrual(
		date(2023, time.October, 15),
		date(2023, time.January, 1),
		date(2023, time.December, 31),
		rule,
	)
	assert.True(t, d(4).Equal(got), "got %s", got)

	result := got
	require.True(t, result.IsHalfDayMultiple())
}

func TestProrataAccrual_NotYetHired_ReturnsZero(t *testing.T) {
	rule := standardRule()
	got := leave.ProrataAccrual(
		date(2024, time.February, 1),
		date(2023, time.January, 1),
		date(2023, time.December, 31),
		rule,
	)
	assert.True(t, got.IsZero())
}
