/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Employee creation and retrieval
- Balance computation through the HTTP surface
- Request submission with working-day durations
- Rule management and legal-floor rejection
- CSV export
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlashr/leave-engine/leave"
	"github.com/atlashr/leave-engine/store/sqlite"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store)
	require.NoError(t, h.LoadRules(context.Background()))
	return h
}

func seedEmployee(t *testing.T, h *Handler, id string, hireDate leave.CalendarDate) leave.Employee {
	t.Helper()
	emp := leave.Employee{
		ID:       id,
		Name:     "Karim Bennani",
		Role:     "developer",
		HireDate: hireDate,
	}
	require.NoError(t, h.Store.SaveEmployee(context.Background(), emp))
	return emp
}

func doRequest(h *Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestCreateEmployee_RoundTrip(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID:       "emp-1",
		Name:     "Salma Idrissi",
		Role:     "accountant",
		HireDate: "2020-03-16",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(h, http.MethodGet, "/api/employees/emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto EmployeeDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Salma Idrissi", dto.Name)
	assert.Equal(t, "2020-03-16", dto.HireDate)
}

func TestCreateEmployee_RejectsBadInput(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID: "emp-1", Name: "X", HireDate: "16/03/2020",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID: "emp-1", Name: "X", HireDate: "2020-03-16", BalanceAdjustment: 1.3,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "off-grid adjustment must be rejected")
}

func TestGetEmployee_Unknown404(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/employees/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestGetBalance_ComputesFromStoredRequests(t *testing.T) {
	// GIVEN: An employee hired in 2019 with 4 approved annual days in 2023
	h := newTestHandler(t)
	seedEmployee(t, h, "emp-1", leave.NewCalendarDate(2019, time.September, 2))

	require.NoError(t, h.Store.SaveRequest(context.Background(), leave.LeaveRequest{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Type:       leave.TypeAnnual,
		Status:     leave.StatusApproved,
		StartDate:  leave.NewCalendarDate(2023, time.May, 2),
		EndDate:    leave.NewCalendarDate(2023, time.May, 5),
		Duration:   leave.NewDays(4),
		FiscalYear: 2023,
	}))

	// WHEN: Fetching the 2023 balance
	rec := doRequest(h, http.MethodGet, "/api/employees/emp-1/balance?year=2023", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The carryover chain since the hire year is reflected. Each full
	// prior year carried 6 days (a third of the 18-day rate), so 2023 opens
	// with 6, accrues 18, spends 4.
	var dto BalanceDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 2023, dto.Year)
	assert.InDelta(t, 18, dto.AnnualRate, 0.001)
	assert.InDelta(t, 6, dto.PreviousCarryover, 0.001)
	assert.InDelta(t, 4, dto.Used, 0.001)
	assert.InDelta(t, 20, dto.Remaining, 0.001)
	assert.InDelta(t, 6, dto.NextCarryover, 0.001)
	assert.InDelta(t, 14, dto.Forfeited, 0.001)
	assert.False(t, dto.Overdrawn)
}

func TestGetBalance_YearBeforeHireRejected(t *testing.T) {
	h := newTestHandler(t)
	seedEmployee(t, h, "emp-1", leave.NewCalendarDate(2022, time.June, 1))

	rec := doRequest(h, http.MethodGet, "/api/employees/emp-1/balance?year=2020", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetHistory_OneEntryPerYear(t *testing.T) {
	h := newTestHandler(t)
	seedEmployee(t, h, "emp-1", leave.NewCalendarDate(2021, time.January, 4))

	rec := doRequest(h, http.MethodGet, "/api/employees/emp-1/history?year=2023", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []BalanceDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 3)
	assert.Equal(t, 2021, history[0].Year)
	assert.Equal(t, 2023, history[2].Year)
	assert.InDelta(t, history[1].NextCarryover, history[2].PreviousCarryover, 0.001)
}

func TestValidateBalance_ComputedBalancePasses(t *testing.T) {
	h := newTestHandler(t)
	seedEmployee(t, h, "emp-1", leave.NewCalendarDate(2020, time.February, 3))

	rec := doRequest(h, http.MethodGet, "/api/employees/emp-1/balance/validate?year=2023", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto ValidationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.True(t, dto.IsValid)
	assert.Empty(t, dto.Errors)
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestSubmitRequest_DurationFromWorkingDays(t *testing.T) {
	// GIVEN: A range containing Labour Day (May 1st 2023, a Monday)
	h := newTestHandler(t)
	seedEmployee(t, h, "emp-1", leave.NewCalendarDate(2020, time.February, 3))

	// WHEN: Submitting May 1-5 without an explicit duration
	rec := doRequest(h, http.MethodPost, "/api/employees/emp-1/requests", SubmitRequestDTO{
		ID:        "req-1",
		Type:      "annual",
		StartDate: "2023-05-01",
		EndDate:   "2023-05-05",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// THEN: The holiday is excluded, leaving Tuesday through Friday
	var dto RequestDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.InDelta(t, 4, dto.Duration, 0.001)
	assert.Equal(t, string(leave.StatusPending), dto.Status)
	assert.Equal(t, 2023, dto.FiscalYear)
}

func TestSubmitRequest_HalfDay(t *testing.T) {
	h := newTestHandler(t)
	seedEmployee(t, h, "emp-1", leave.NewCalendarDate(2020, time.February, 3))

	rec := doRequest(h, http.MethodPost, "/api/employees/emp-1/requests", SubmitRequestDTO{
		ID:        "req-1",
		Type:      "annual",
		StartDate: "2023-06-06",
		EndDate:   "2023-06-06",
		HalfDay:   true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var dto RequestDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.InDelta(t, 0.5, dto.Duration, 0.001)
}

func TestSubmitRequest_OffGridOverrideRejected(t *testing.T) {
	h := newTestHandler(t)
	seedEmployee(t, h, "emp-1", leave.NewCalendarDate(2020, time.February, 3))

	rec := doRequest(h, http.MethodPost, "/api/employees/emp-1/requests", SubmitRequestDTO{
		ID:        "req-1",
		Type:      "annual",
		StartDate: "2023-06-06",
		EndDate:   "2023-06-07",
		Duration:  1.3,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// RULES
// =============================================================================

func TestCreateRule_StoredAndSelectable(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h, http.MethodPost, "/api/rules", json.RawMessage(
		`{"id": "engineering", "department": "engineering", "annual_base_days": 22}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Len(t, h.Registry().Rules(), 2)
}

func TestCreateRule_BelowLegalFloorRejected(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h, http.MethodPost, "/api/rules", json.RawMessage(
		`{"id": "cheap", "annual_base_days": 10}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, h.Registry().Rules(), 1, "registry unchanged after rejection")
}

func TestLoadRules_SeedsStandardRuleOnEmptyStore(t *testing.T) {
	h := newTestHandler(t)

	rules := h.Registry().Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "standard", rules[0].ID)
	assert.True(t, rules[0].Default)
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestCountBusinessDays_Endpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(h, http.MethodGet, "/api/business-days?start=2023-06-01&end=2023-06-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto BusinessDaysDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 6, dto.BusinessDays, "Thursday through Wednesday minus one Sunday")

	rec = doRequest(h, http.MethodGet, "/api/business-days?start=bad&end=2023-06-07", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportBalancesCSV(t *testing.T) {
	h := newTestHandler(t)
	seedEmployee(t, h, "emp-1", leave.NewCalendarDate(2020, time.February, 3))

	rec := doRequest(h, http.MethodGet, "/api/export/balances?year=2023", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "employee_id,name,year"))
	assert.True(t, strings.HasPrefix(lines[1], "emp-1,"))
	assert.Contains(t, lines[1], ",2023,")
}
