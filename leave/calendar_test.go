package leave_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlashr/leave-engine/leave"
)

// =============================================================================
// TEST HELPERS (shared across the package tests)
// =============================================================================

func d(n float64) leave.Days { return leave.NewDays(n) }

func date(year int, month time.Month, day int) leave.CalendarDate {
	return leave.NewCalendarDate(year, month, day)
}

func standardRule() leave.AccrualRule { return leave.StandardRule("standard") }

// =============================================================================
// DATE PARSING
// =============================================================================

func TestParseDate_ValidISO(t *testing.T) {
	got, err := leave.ParseDate("2023-04-15")
	require.NoError(t, err)
	assert.Equal(t, date(2023, time.April, 15), got)
}

func TestParseDate_Invalid_SurfacesInvalidDate(t *testing.T) {
	// The engine never guesses or substitutes a default date.
	for _, input := range []string{"", "15/04/2023", "2023-13-01", "yesterday"} {
		_, err := leave.ParseDate(input)
		assert.Error(t, err, "input %q", input)
		assert.ErrorIs(t, err, leave.ErrInvalidDate)

		var dateErr *leave.InvalidDateError
		require.True(t, errors.As(err, &dateErr))
		assert.Equal(t, input, dateErr.Input)
	}
}

// =============================================================================
// BUSINESS DAY COUNTING
// =============================================================================

func TestCountBusinessDays_SingleDays(t *testing.T) {
	calc := leave.NewBusinessDayCalculator()

	// A Sunday counts for nothing.
	sunday := date(2023, time.June, 4)
	require.Equal(t, time.Sunday, sunday.Weekday())
	assert.Equal(t, 0, calc.CountBusinessDays(sunday, sunday))

	// A fixed holiday on a non-Sunday counts for nothing.
	laborDay := date(2023, time.May, 1) // Monday in 2023
	require.Equal(t, time.Monday, laborDay.Weekday())
	assert.Equal(t, 0, calc.CountBusinessDays(laborDay, laborDay))

	// An ordinary Tuesday counts as one working day.
	tuesday := date(2023, time.June, 6)
	require.Equal(t, time.Tuesday, tuesday.Weekday())
	assert.Equal(t, 1, calc.CountBusinessDays(tuesday, tuesday))
}

func TestCountBusinessDays_SaturdayIsAWorkingDay(t *testing.T) {
	// Only Sunday is the weekly rest day under the Moroccan workweek.
	calc := leave.NewBusinessDayCalculator()
	saturday := date(2023, time.June, 3)
	require.Equal(t, time.Saturday, saturday.Weekday())
	assert.Equal(t, 1, calc.CountBusinessDays(saturday, saturday))
}

func TestCountBusinessDays_FullWeek(t *testing.T) {
	// GIVEN: Monday June 5 through Sunday June 11, 2023 - no holidays
	// THEN: 6 working days (Saturday counts, Sunday does not)
	calc := leave.NewBusinessDayCalculator()
	got := calc.CountBusinessDays(date(2023, time.June, 5), date(2023, time.June, 11))
	assert.Equal(t, 6, got)
}

func TestCountBusinessDays_CrossesYearBoundary(t *testing.T) {
	// GIVEN: Dec 29, 2023 (Fri) through Jan 3, 2024 (Wed)
	// Dec 29 Fri, Dec 30 Sat, Dec 31 Sun (rest), Jan 1 (holiday),
	// Jan 2 Tue, Jan 3 Wed
	// THEN: 4 working days, with real-date iteration across the boundary
	calc := leave.NewBusinessDayCalculator()
	got := calc.CountBusinessDays(date(2023, time.December, 29), date(2024, time.January, 3))
	assert.Equal(t, 4, got)
}

func TestCountBusinessDays_InvertedRange_ReturnsZero(t *testing.T) {
	// Out-of-order ranges degrade to zero instead of erroring: a common and
	// recoverable slip from upstream forms.
	calc := leave.NewBusinessDayCalculator()
	got := calc.CountBusinessDays(date(2023, time.June, 10), date(2023, time.June, 1))
	assert.Equal(t, 0, got)
}

func TestHolidayName(t *testing.T) {
	calc := leave.NewBusinessDayCalculator()

	name, ok := calc.HolidayName(date(2024, time.November, 6))
	assert.True(t, ok)
	assert.Equal(t, "Marche Verte", name)

	_, ok = calc.HolidayName(date(2024, time.November, 7))
	assert.False(t, ok)
}

// =============================================================================
// DAYS GRANULARITY
// =============================================================================

func TestDays_HalfDayGrid(t *testing.T) {
	assert.True(t, d(0).IsHalfDayMultiple())
	assert.True(t, d(0.5).IsHalfDayMultiple())
	assert.True(t, d(-1.5).IsHalfDayMultiple())
	assert.True(t, d(21).IsHalfDayMultiple())
	assert.False(t, d(0.25).IsHalfDayMultiple())
	assert.False(t, d(1.2).IsHalfDayMultiple())
}

func TestDays_RoundHalf(t *testing.T) {
	// Standard HR convention: round half up to the nearest half unit.
	cases := []struct{ in, want float64 }{
		{10.2, 10.0},
		{10.25, 10.5},
		{10.3, 10.5},
		{10.74, 10.5},
		{10.75, 11.0},
		{0.1, 0.0},
	}
	for _, c := range cases {
		assert.True(t, d(c.want).Equal(d(c.in).RoundHalf()),
			"RoundHalf(%v) = %s, want %v", c.in, d(c.in).RoundHalf(), c.want)
	}
}
