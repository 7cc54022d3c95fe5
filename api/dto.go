/*
dto.go - Data transfer objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the engine types.
  Day quantities cross the wire as float64 for the benefit of frontends;
  nothing downstream of the engine recomputes with these values, so the
  float conversion is display-only.
*/
package api

import (
	"github.com/atlashr/leave-engine/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Role              string  `json:"role,omitempty"`
	Department        string  `json:"department,omitempty"`
	HireDate          string  `json:"hire_date"`
	BalanceAdjustment float64 `json:"balance_adjustment"`
}

type CreateEmployeeRequest struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Role              string  `json:"role"`
	Department        string  `json:"department"`
	HireDate          string  `json:"hire_date"`
	BalanceAdjustment float64 `json:"balance_adjustment"`
}

func employeeDTO(emp leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                emp.ID,
		Name:              emp.Name,
		Role:              emp.Role,
		Department:        emp.Department,
		HireDate:          emp.HireDate.String(),
		BalanceAdjustment: emp.BalanceAdjustment.Float64(),
	}
}

// =============================================================================
// BALANCES
// =============================================================================

type BalanceDTO struct {
	EmployeeID            string  `json:"employee_id"`
	Year                  int     `json:"year"`
	RuleID                string  `json:"rule_id"`
	YearsOfService        float64 `json:"years_of_service"`
	AnnualRate            float64 `json:"annual_rate"`
	SeniorityBonus        float64 `json:"seniority_bonus"`
	EntitlementAdjustment float64 `json:"entitlement_adjustment"`
	PreviousCarryover     float64 `json:"previous_carryover"`
	Used                  float64 `json:"used"`
	UsedAdjustment        float64 `json:"used_adjustment"`
	Remaining             float64 `json:"remaining"`
	MaxCarryover          float64 `json:"max_carryover"`
	NextCarryover         float64 `json:"next_carryover"`
	Forfeited             float64 `json:"forfeited"`
	CarryoverExpiresAt    string  `json:"carryover_expires_at"`
	Overdrawn             bool    `json:"overdrawn"`
}

func balanceDTO(b leave.YearlyBalance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:            b.EmployeeID,
		Year:                  b.Year,
		RuleID:                b.RuleID,
		YearsOfService:        b.YearsOfService.Round(4).InexactFloat64(),
		AnnualRate:            b.AnnualRate.Float64(),
		SeniorityBonus:        b.SeniorityBonus.Float64(),
		EntitlementAdjustment: b.EntitlementAdjustment.Float64(),
		PreviousCarryover:     b.PreviousCarryover.Float64(),
		Used:                  b.Used.Float64(),
		UsedAdjustment:        b.UsedAdjustment.Float64(),
		Remaining:             b.Remaining.Float64(),
		MaxCarryover:          b.MaxCarryover.Float64(),
		NextCarryover:         b.NextCarryover.Float64(),
		Forfeited:             b.Forfeited.Float64(),
		CarryoverExpiresAt:    b.CarryoverExpiresAt.String(),
		Overdrawn:             b.Overdrawn,
	}
}

type ValidationDTO struct {
	EmployeeID string   `json:"employee_id"`
	Year       int      `json:"year"`
	IsValid    bool     `json:"is_valid"`
	Errors     []string `json:"errors"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type SubmitRequestDTO struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	HalfDay   bool    `json:"half_day,omitempty"`
	Duration  float64 `json:"duration,omitempty"` // optional override of the computed working-day count
	Reason    string  `json:"reason,omitempty"`
}

type RequestDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Duration   float64 `json:"duration"`
	FiscalYear int     `json:"fiscal_year"`
	Reason     string  `json:"reason,omitempty"`
}

func requestDTO(r leave.LeaveRequest) RequestDTO {
	return RequestDTO{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Type:       string(r.Type),
		Status:     string(r.Status),
		StartDate:  r.StartDate.String(),
		EndDate:    r.EndDate.String(),
		Duration:   r.Duration.Float64(),
		FiscalYear: r.FiscalYear,
		Reason:     r.Reason,
	}
}

// =============================================================================
// MISC
// =============================================================================

type BusinessDaysDTO struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	BusinessDays int    `json:"business_days"`
}

type HolidayDTO struct {
	MonthDay string `json:"month_day"`
	Name     string `json:"name"`
}

type RecalculateRequest struct {
	Year  int    `json:"year"`
	Actor string `json:"actor"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
