package leave

import (
	"time"
)

// =============================================================================
// CALENDAR DATE - Day-granularity date value
// =============================================================================

// CalendarDate is a date with no time component (UTC midnight internally).
// All engine arithmetic is date-only; callers holding timestamps truncate
// before entering the engine.
type CalendarDate struct {
	t time.Time
}

// NewCalendarDate builds a date from its components.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "2006-01-02" date string.
// A string that fails to parse surfaces InvalidDateError; the engine never
// guesses or substitutes a default date.
func ParseDate(s string) (CalendarDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CalendarDate{}, &InvalidDateError{Input: s}
	}
	return NewCalendarDate(t.Year(), t.Month(), t.Day()), nil
}

// FromTime truncates a timestamp to a CalendarDate.
func FromTime(t time.Time) CalendarDate {
	return NewCalendarDate(t.Year(), t.Month(), t.Day())
}

// Comparison
func (d CalendarDate) Before(o CalendarDate) bool        { return d.t.Before(o.t) }
func (d CalendarDate) After(o CalendarDate) bool         { return d.t.After(o.t) }
func (d CalendarDate) Equal(o CalendarDate) bool         { return d.t.Equal(o.t) }
func (d CalendarDate) BeforeOrEqual(o CalendarDate) bool { return !d.After(o) }
func (d CalendarDate) AfterOrEqual(o CalendarDate) bool  { return !d.Before(o) }

// Arithmetic
func (d CalendarDate) AddDays(n int) CalendarDate   { return CalendarDate{t: d.t.AddDate(0, 0, n)} }
func (d CalendarDate) AddMonths(n int) CalendarDate { return CalendarDate{t: d.t.AddDate(0, n, 0)} }
func (d CalendarDate) AddYears(n int) CalendarDate  { return CalendarDate{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d CalendarDate) Year() int             { return d.t.Year() }
func (d CalendarDate) Month() time.Month     { return d.t.Month() }
func (d CalendarDate) Day() int              { return d.t.Day() }
func (d CalendarDate) Weekday() time.Weekday { return d.t.Weekday() }
func (d CalendarDate) IsZero() bool          { return d.t.IsZero() }
func (d CalendarDate) Time() time.Time       { return d.t }

func (d CalendarDate) String() string { return d.t.Format("2006-01-02") }

// MonthDay returns the "MM-DD" key used by the fixed holiday list.
func (d CalendarDate) MonthDay() string { return d.t.Format("01-02") }

// DaysBetween returns the signed number of calendar days from one date to
// another (exclusive of `from`, inclusive of `to` when to > from).
func DaysBetween(from, to CalendarDate) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

func YearEnd(year int) CalendarDate   { return NewCalendarDate(year, time.December, 31) }
func YearStart(year int) CalendarDate { return NewCalendarDate(year, time.January, 1) }

// =============================================================================
// BUSINESS DAY CALCULATOR
// =============================================================================

// BusinessDayCalculator counts working days between calendar dates,
// excluding the weekly rest day and fixed-date holidays.
//
// Under the Moroccan workweek only Sunday is a rest day: Saturday counts as
// a working day. Moving religious holidays (lunar calendar) are not in the
// fixed list; they land on a different Gregorian date each year and are
// handled administratively, outside this calculator.
type BusinessDayCalculator struct {
	// RestDay is the weekly rest day (Sunday per Art. 205).
	RestDay time.Weekday

	// Holidays maps "MM-DD" keys to holiday names.
	Holidays map[string]string
}

// NewBusinessDayCalculator returns a calculator configured with the Moroccan
// weekly rest day and fixed national holidays.
func NewBusinessDayCalculator() *BusinessDayCalculator {
	return &BusinessDayCalculator{
		RestDay:  time.Sunday,
		Holidays: MoroccanFixedHolidays(),
	}
}

// MoroccanFixedHolidays returns the fixed-date national holidays,
// keyed "MM-DD".
func MoroccanFixedHolidays() map[string]string {
	return map[string]string{
		"01-01": "Nouvel an",
		"01-11": "Manifeste de l'Indépendance",
		"05-01": "Fête du Travail",
		"07-30": "Fête du Trône",
		"08-14": "Allégeance Oued Eddahab",
		"08-20": "Révolution du Roi et du Peuple",
		"08-21": "Fête de la Jeunesse",
		"11-06": "Marche Verte",
		"11-18": "Fête de l'Indépendance",
	}
}

// IsWorkingDay reports whether a single date counts against leave.
func (c *BusinessDayCalculator) IsWorkingDay(d CalendarDate) bool {
	if d.Weekday() == c.RestDay {
		return false
	}
	if _, holiday := c.Holidays[d.MonthDay()]; holiday {
		return false
	}
	return true
}

// CountBusinessDays returns the number of working days in [start, end]
// inclusive. An out-of-order range (start after end) degrades to 0 rather
// than erroring: it is a common, recoverable input-ordering slip from
// upstream forms.
//
// Iterating real dates handles year boundaries naturally; no day-of-year
// arithmetic is involved.
func (c *BusinessDayCalculator) CountBusinessDays(start, end CalendarDate) int {
	if start.After(end) {
		return 0
	}
	count := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// HolidayName returns the holiday name for a date, if any.
func (c *BusinessDayCalculator) HolidayName(d CalendarDate) (string, bool) {
	name, ok := c.Holidays[d.MonthDay()]
	return name, ok
}
