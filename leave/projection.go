package leave

import "sort"

// =============================================================================
// MULTI-YEAR PROJECTOR - Chains yearly balances across an employee's history
// =============================================================================

// YearlyUsage is one year's consumption figures, supplied by the leave
// request store.
type YearlyUsage struct {
	Year           int
	Used           Days
	UsedAdjustment Days
}

// ProjectionInput bundles the inputs to a multi-year projection.
type ProjectionInput struct {
	EmployeeID string
	HireDate   CalendarDate
	Usage      []YearlyUsage

	// EntitlementAdjustment applies to every projected year (the
	// per-employee "+/- days" override is not year-scoped).
	EntitlementAdjustment Days

	// InitialCarryover seeds the first year. Zero for an employee whose
	// whole history is tracked.
	InitialCarryover Days
}

// ProjectHistory computes the YearlyBalance sequence for the given years in
// ascending order, feeding each year's NextCarryover into the next year's
// PreviousCarryover. Each per-year computation stays pure; the chaining is
// just this loop handing one output to the next input.
func ProjectHistory(in ProjectionInput, rule AccrualRule) ([]YearlyBalance, error) {
	usage := make([]YearlyUsage, len(in.Usage))
	copy(usage, in.Usage)
	sort.Slice(usage, func(i, j int) bool { return usage[i].Year < usage[j].Year })

	balances := make([]YearlyBalance, 0, len(usage))
	carryover := in.InitialCarryover

	for _, u := range usage {
		b, err := ComputeYearlyBalance(BalanceInput{
			EmployeeID:            in.EmployeeID,
			HireDate:              in.HireDate,
			Year:                  u.Year,
			Used:                  u.Used,
			UsedAdjustment:        u.UsedAdjustment,
			EntitlementAdjustment: in.EntitlementAdjustment,
			PreviousCarryover:     carryover,
		}, rule)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
		carryover = b.NextCarryover
	}
	return balances, nil
}
