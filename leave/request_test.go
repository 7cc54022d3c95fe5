package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atlashr/leave-engine/leave"
)

func approvedAnnual(id string, year int, duration float64) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:         id,
		EmployeeID: "emp-1",
		Type:       leave.TypeAnnual,
		Status:     leave.StatusApproved,
		Duration:   d(duration),
		FiscalYear: year,
	}
}

// =============================================================================
// CONSUMPTION AGGREGATION
// =============================================================================

func TestAnnualConsumption_SumsOnlyApprovedAnnual(t *testing.T) {
	requests := []leave.LeaveRequest{
		approvedAnnual("r1", 2023, 3),
		approvedAnnual("r2", 2023, 0.5),
		{ID: "r3", Type: leave.TypeAnnual, Status: leave.StatusPending, Duration: d(5), FiscalYear: 2023},
		{ID: "r4", Type: leave.TypeAnnual, Status: leave.StatusRejected, Duration: d(2), FiscalYear: 2023},
		{ID: "r5", Type: leave.TypeAnnual, Status: leave.StatusCancelled, Duration: d(1), FiscalYear: 2023},
		{ID: "r6", Type: leave.TypeSick, Status: leave.StatusApproved, Duration: d(4), FiscalYear: 2023},
		approvedAnnual("r7", 2022, 8), // other fiscal year
	}

	got := leave.AnnualConsumption(requests, 2023)
	assert.True(t, d(3.5).Equal(got), "got %s", got)
}

func TestAnnualConsumption_NoRequests_IsZero(t *testing.T) {
	assert.True(t, leave.AnnualConsumption(nil, 2023).IsZero())
}

func TestUsageByYear_CoversEveryYearInRange(t *testing.T) {
	requests := []leave.LeaveRequest{
		approvedAnnual("r1", 2021, 6),
		approvedAnnual("r2", 2023, 2.5),
	}
	usage := leave.UsageByYear(requests, 2021, 2023)

	assert.Len(t, usage, 3)
	assert.Equal(t, 2021, usage[0].Year)
	assert.True(t, d(6).Equal(usage[0].Used))
	assert.Equal(t, 2022, usage[1].Year)
	assert.True(t, usage[1].Used.IsZero(), "a year with no requests still appears")
	assert.True(t, d(2.5).Equal(usage[2].Used))
}

// =============================================================================
// REQUEST VALIDATION
// =============================================================================

func TestLeaveRequest_Validate(t *testing.T) {
	ok := leave.LeaveRequest{
		Type:      leave.TypeAnnual,
		Status:    leave.StatusPending,
		StartDate: date(2023, time.May, 2),
		EndDate:   date(2023, time.May, 4),
		Duration:  d(2.5),
	}
	assert.NoError(t, ok.Validate())

	offGrid := ok
	offGrid.Duration = d(2.3)
	assert.ErrorIs(t, offGrid.Validate(), leave.ErrInvalidDuration)

	inverted := ok
	inverted.StartDate = date(2023, time.May, 9)
	assert.ErrorIs(t, inverted.Validate(), leave.ErrInvalidDate)
}

func TestLeaveType_CountsAgainstAnnual(t *testing.T) {
	assert.True(t, leave.TypeAnnual.CountsAgainstAnnual())
	for _, lt := range []leave.LeaveType{leave.TypeSick, leave.TypeExceptional, leave.TypeMaternity, leave.TypeUnpaid} {
		assert.False(t, lt.CountsAgainstAnnual(), "%s must not consume annual entitlement", lt)
	}
}
