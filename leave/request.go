/*
request.go - Leave request records and consumption aggregation

PURPOSE:
  The engine consumes leave requests as strict, fully-typed records: required
  duration on the half-day grid, explicit status and type enums, an explicit
  fiscal year. Legacy rows with missing fields are a data-migration concern
  of the record store, never handled defensively here.

CONSUMPTION:
  Only APPROVED requests of an annual-type leave count against the yearly
  balance. Sick, maternity and exceptional leaves have their own legal
  regimes and never touch the annual entitlement.
*/
package leave

// =============================================================================
// ENUMS
// =============================================================================

// RequestStatus is the lifecycle state of a leave request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCancelled RequestStatus = "CANCELLED"
)

// LeaveType classifies a request. Only TypeAnnual consumes the annual
// entitlement.
type LeaveType string

const (
	TypeAnnual      LeaveType = "annual"
	TypeSick        LeaveType = "sick"
	TypeExceptional LeaveType = "exceptional"
	TypeMaternity   LeaveType = "maternity"
	TypeUnpaid      LeaveType = "unpaid"
)

// CountsAgainstAnnual reports whether the type consumes annual entitlement.
func (t LeaveType) CountsAgainstAnnual() bool { return t == TypeAnnual }

// =============================================================================
// LEAVE REQUEST
// =============================================================================

// LeaveRequest is an approved-or-not request for consecutive days off.
// Duration is decimal days with half-day granularity (a morning off is 0.5).
type LeaveRequest struct {
	ID         string
	EmployeeID string
	Type       LeaveType
	Status     RequestStatus

	StartDate CalendarDate
	EndDate   CalendarDate

	// Duration is the working-day count charged for the request, on the
	// half-day grid. Supplied by the caller (usually from
	// BusinessDayCalculator, minus a half day for half-day requests).
	Duration Days

	// FiscalYear is the year the consumption is charged to. Normally the
	// start date's year; requests spanning January 1 are split upstream.
	FiscalYear int

	Reason string
}

// Validate rejects malformed requests before they reach any balance math.
func (r LeaveRequest) Validate() error {
	if !r.Duration.IsHalfDayMultiple() {
		return &InvalidDurationError{Duration: r.Duration}
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.StartDate.After(r.EndDate) {
		// Tolerated by the business-day calculator, but a stored request
		// with inverted dates is a data error.
		return &InvalidDateError{Input: r.EndDate.String()}
	}
	return nil
}

// =============================================================================
// CONSUMPTION AGGREGATION
// =============================================================================

// AnnualConsumption sums the approved annual-type durations charged to the
// given fiscal year.
func AnnualConsumption(requests []LeaveRequest, fiscalYear int) Days {
	total := ZeroDays()
	for _, r := range requests {
		if r.Status != StatusApproved || !r.Type.CountsAgainstAnnual() {
			continue
		}
		if r.FiscalYear != fiscalYear {
			continue
		}
		total = total.Add(r.Duration)
	}
	return total
}

// UsageByYear groups approved annual-type consumption into the ascending
// YearlyUsage sequence ProjectHistory expects.
func UsageByYear(requests []LeaveRequest, firstYear, lastYear int) []YearlyUsage {
	var usage []YearlyUsage
	for year := firstYear; year <= lastYear; year++ {
		usage = append(usage, YearlyUsage{
			Year: year,
			Used: AnnualConsumption(requests, year),
		})
	}
	return usage
}
