/*
handlers.go - HTTP handlers exposing the leave engine

PURPOSE:
  REST surface over the pure engine. Handlers parse HTTP input, load plain
  data from the store, invoke the engine, and serialize results. No balance
  math lives here.

ENDPOINTS:
  Employees:
    GET    /api/employees                      List employees
    POST   /api/employees                      Create/update employee
    GET    /api/employees/{id}                 Employee details
    GET    /api/employees/{id}/balance         Balance for ?year=
    GET    /api/employees/{id}/history         Full multi-year projection
    GET    /api/employees/{id}/balance/validate Consistency check for ?year=
    GET    /api/employees/{id}/requests        Stored leave requests
    POST   /api/employees/{id}/requests        Submit a request
    GET    /api/employees/{id}/audit           Audit trail

  Rules:
    GET    /api/rules                          Active rule set
    POST   /api/rules                          Store a JSON rule definition

  Calendar:
    GET    /api/holidays                       Fixed holiday list
    GET    /api/business-days?start=&end=      Working-day count

  Admin:
    POST   /api/admin/recalculate              Bulk recalculation for a year

  Export:
    GET    /api/export/balances?year=          CSV of all balances

ERROR HANDLING:
  400 for invalid input (bad dates, off-grid durations, illegal rules),
  404 for unknown employees, 500 otherwise. Errors are JSON.
*/
package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atlashr/leave-engine/factory"
	"github.com/atlashr/leave-engine/leave"
	"github.com/atlashr/leave-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.RuleFactory
	Calc    *leave.BusinessDayCalculator

	mu       sync.RWMutex
	registry *leave.RuleRegistry
}

func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.NewRuleFactory(),
		Calc:    leave.NewBusinessDayCalculator(),
	}
}

// LoadRules builds the in-memory registry from stored definitions. An empty
// store is seeded with the standard rule so the engine is always usable.
func (h *Handler) LoadRules(ctx context.Context) error {
	defs, err := h.Store.ListRuleDefinitions(ctx)
	if err != nil {
		return err
	}

	if len(defs) == 0 {
		standard := leave.StandardRule("standard")
		data, err := h.Factory.MarshalRule(standard)
		if err != nil {
			return err
		}
		if err := h.Store.SaveRule(ctx, standard.ID, data); err != nil {
			return err
		}
		defs = [][]byte{data}
	}

	var rules []leave.AccrualRule
	for _, def := range defs {
		rule, _, err := h.Factory.ParseRule(def)
		if err != nil {
			return err
		}
		rules = append(rules, rule)
	}

	registry, err := leave.NewRuleRegistry(rules...)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.registry = registry
	h.mu.Unlock()
	return nil
}

// Registry returns the active rule registry.
func (h *Handler) Registry() *leave.RuleRegistry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry
}

// =============================================================================
// BALANCE COMPUTATION - Glue between store and engine
//
// The balance for year Y is never computed in isolation: the carryover chain
// starts at the hire year so a stale intermediate snapshot can never leak
// into the result.
// =============================================================================

func (h *Handler) balanceForYear(ctx context.Context, emp leave.Employee, year int) (leave.YearlyBalance, error) {
	if year < emp.HireDate.Year() {
		return leave.YearlyBalance{}, fmt.Errorf("year %d precedes hire date %s", year, emp.HireDate)
	}

	requests, err := h.Store.RequestsForEmployee(ctx, emp.ID)
	if err != nil {
		return leave.YearlyBalance{}, err
	}

	rule := h.Registry().Select(emp, leave.YearEnd(year))
	balances, err := leave.ProjectHistory(leave.ProjectionInput{
		EmployeeID:            emp.ID,
		HireDate:              emp.HireDate,
		Usage:                 leave.UsageByYear(requests, emp.HireDate.Year(), year),
		EntitlementAdjustment: emp.BalanceAdjustment,
	}, rule)
	if err != nil {
		return leave.YearlyBalance{}, err
	}
	return balances[len(balances)-1], nil
}

func (h *Handler) historyFor(ctx context.Context, emp leave.Employee, lastYear int) ([]leave.YearlyBalance, error) {
	requests, err := h.Store.RequestsForEmployee(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	rule := h.Registry().Select(emp, leave.YearEnd(lastYear))
	return leave.ProjectHistory(leave.ProjectionInput{
		EmployeeID:            emp.ID,
		HireDate:              emp.HireDate,
		Usage:                 leave.UsageByYear(requests, emp.HireDate.Year(), lastYear),
		EntitlementAdjustment: emp.BalanceAdjustment,
	}, rule)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, emp := range employees {
		dtos = append(dtos, employeeDTO(emp))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("id and name are required"))
		return
	}
	hireDate, err := leave.ParseDate(req.HireDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	adjustment := leave.NewDays(req.BalanceAdjustment)
	if !adjustment.IsHalfDayMultiple() {
		respondError(w, http.StatusBadRequest, &leave.InvalidDurationError{Duration: adjustment})
		return
	}

	emp := leave.Employee{
		ID:                req.ID,
		Name:              req.Name,
		Role:              req.Role,
		Department:        req.Department,
		HireDate:          hireDate,
		BalanceAdjustment: adjustment,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, employeeDTO(emp))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, employeeDTO(emp))
}

func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (leave.Employee, bool) {
	id := chi.URLParam(r, "id")
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return leave.Employee{}, false
	}
	if emp == nil {
		respondError(w, http.StatusNotFound, fmt.Errorf("employee %s not found", id))
		return leave.Employee{}, false
	}
	return *emp, true
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	year := yearParam(r)

	balance, err := h.balanceForYear(r.Context(), emp, year)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, balanceDTO(balance))
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	year := yearParam(r)

	balances, err := h.historyFor(r.Context(), emp, year)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, balanceDTO(b))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ValidateBalance(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	year := yearParam(r)

	balance, err := h.balanceForYear(r.Context(), emp, year)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	rule := h.Registry().Select(emp, leave.YearEnd(year))
	result := leave.ValidateBalance(balance, rule)

	respondJSON(w, http.StatusOK, ValidationDTO{
		EmployeeID: emp.ID,
		Year:       year,
		IsValid:    result.IsValid,
		Errors:     result.Errors,
	})
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	// Duration defaults to the working-day count of the range; half-day
	// requests knock off half a day.
	duration := leave.NewDays(req.Duration)
	if duration.IsZero() {
		duration = leave.NewDaysFromInt(h.Calc.CountBusinessDays(start, end))
		if req.HalfDay {
			duration = duration.Sub(leave.NewDays(0.5)).ClampZero()
		}
	}

	request := leave.LeaveRequest{
		ID:         req.ID,
		EmployeeID: emp.ID,
		Type:       leave.LeaveType(req.Type),
		Status:     leave.StatusPending,
		StartDate:  start,
		EndDate:    end,
		Duration:   duration,
		FiscalYear: start.Year(),
		Reason:     req.Reason,
	}
	if err := h.Store.SaveRequest(r.Context(), request); err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusCreated, requestDTO(request))
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	requests, err := h.Store.RequestsForEmployee(r.Context(), emp.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]RequestDTO, 0, len(requests))
	for _, req := range requests {
		dtos = append(dtos, requestDTO(req))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	entries, err := h.Store.AuditForEmployee(r.Context(), emp.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.Registry().Rules()
	dtos := make([]factory.RuleJSON, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, h.Factory.ToJSON(rule))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var def json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	rule, warnings, err := h.Factory.ParseRule(def)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	if err := h.Store.SaveRule(r.Context(), rule.ID, def); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if err := h.LoadRules(r.Context()); err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"rule":     h.Factory.ToJSON(rule),
		"warnings": warnings,
	})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	var dtos []HolidayDTO
	for monthDay, name := range h.Calc.Holidays {
		dtos = append(dtos, HolidayDTO{MonthDay: monthDay, Name: name})
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CountBusinessDays(w http.ResponseWriter, r *http.Request) {
	start, err := leave.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	end, err := leave.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, BusinessDaysDTO{
		Start:        start.String(),
		End:          end.String(),
		BusinessDays: h.Calc.CountBusinessDays(start, end),
	})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

func (h *Handler) TriggerRecalculation(w http.ResponseWriter, r *http.Request) {
	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}
	if req.Actor == "" {
		req.Actor = "api"
	}

	recalc := &BulkRecalculator{Store: h.Store, Handler: h}
	report := recalc.Run(r.Context(), req.Year, req.Actor)
	respondJSON(w, http.StatusOK, report)
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportBalancesCSV streams every employee's balance for a year as CSV.
// Formatting only: the fields are the engine's output, stringified.
func (h *Handler) ExportBalancesCSV(w http.ResponseWriter, r *http.Request) {
	year := yearParam(r)
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=balances-%d.csv", year))

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{
		"employee_id", "name", "year", "years_of_service", "annual_rate",
		"previous_carryover", "used", "used_adjustment", "remaining",
		"max_carryover", "next_carryover", "forfeited", "overdrawn",
	})

	for _, emp := range employees {
		balance, err := h.balanceForYear(r.Context(), emp, year)
		if err != nil {
			// One bad record must not sink the export; emit a marker row.
			cw.Write([]string{emp.ID, emp.Name, strconv.Itoa(year), "error: " + err.Error()})
			continue
		}
		cw.Write([]string{
			emp.ID,
			emp.Name,
			strconv.Itoa(year),
			balance.YearsOfService.Round(4).String(),
			balance.AnnualRate.String(),
			balance.PreviousCarryover.String(),
			balance.Used.String(),
			balance.UsedAdjustment.String(),
			balance.Remaining.String(),
			balance.MaxCarryover.String(),
			balance.NextCarryover.String(),
			balance.Forfeited.String(),
			strconv.FormatBool(balance.Overdrawn),
		})
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func yearParam(r *http.Request) int {
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 {
		return y
	}
	return time.Now().Year()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, leave.ErrInvalidDate),
		errors.Is(err, leave.ErrInvalidDuration),
		errors.Is(err, leave.ErrRuleViolatesMinimumLaw),
		errors.Is(err, leave.ErrNoDefaultRule),
		errors.Is(err, leave.ErrDuplicateDefaultRule):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, ErrorResponse{Error: err.Error()})
}
