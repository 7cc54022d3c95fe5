/*
Package sqlite provides the SQLite-backed record store and persistence sink
around the leave engine.

PURPOSE:
  The engine itself is pure; everything it needs to be fed with, and
  everything it produces, lives here:
  - employees:          hire date, role, department, entitlement override
  - leave_requests:     strictly-typed request rows (status, type, duration)
  - leave_rules:        rule definitions as JSON (see factory package)
  - balance_snapshots:  one computed YearlyBalance per (employee, year)
  - audit_log:          append-only trail of who recomputed what, with
                        before/after values

AUDIT TRAIL:
  The audit log is APPEND-ONLY: no update, no delete. A recalculation that
  replaces a snapshot writes the previous snapshot JSON as "before" and the
  new one as "after", so any balance can be explained after the fact.

SNAPSHOTS:
  A snapshot is a cache of a pure computation, keyed (employee_id, year).
  Rewriting it with the same inputs is idempotent; the source of truth
  remains the inputs, never the snapshot.

WAL MODE:
  SQLite is opened with WAL for better read concurrency. A sync.RWMutex
  serializes writers; with PostgreSQL the database would handle this.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/atlashr/leave-engine/leave"
)

// Store implements the record store, rule registry storage, and the
// persistence sink using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		hire_date TEXT NOT NULL,
		balance_adjustment TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		duration TEXT NOT NULL,
		fiscal_year INTEGER NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee_year
		ON leave_requests(employee_id, fiscal_year);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS leave_rules (
		id TEXT PRIMARY KEY,
		definition_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS balance_snapshots (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		balance_json TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year)
	);

	-- Append-only: no UPDATE or DELETE is ever issued against this table.
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		actor TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		before_json TEXT,
		after_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_employee
		ON audit_log(employee_id, year);
	`
	_, err := s.db.Exec(schema)
	return err
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, role, department, hire_date, balance_adjustment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			department = excluded.department,
			hire_date = excluded.hire_date,
			balance_adjustment = excluded.balance_adjustment`,
		emp.ID, emp.Name, emp.Role, emp.Department,
		emp.HireDate.String(), emp.BalanceAdjustment.String(), nowRFC3339())
	return err
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, department, hire_date, balance_adjustment
		FROM employees WHERE id = ?`, id)
	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, department, hire_date, balance_adjustment
		FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*leave.Employee, error) {
	var emp leave.Employee
	var hireDate, adjustment string
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Role, &emp.Department, &hireDate, &adjustment); err != nil {
		return nil, err
	}

	hired, err := leave.ParseDate(hireDate)
	if err != nil {
		return nil, fmt.Errorf("employee %s: %w", emp.ID, err)
	}
	emp.HireDate = hired

	adj, err := decimal.NewFromString(adjustment)
	if err != nil {
		return nil, fmt.Errorf("employee %s: bad balance adjustment %q: %w", emp.ID, adjustment, err)
	}
	emp.BalanceAdjustment = leave.DaysFromDecimal(adj)
	return &emp, nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// SaveRequest inserts or updates a request row. The row is validated first:
// off-grid durations and inverted date ranges never reach the table.
func (s *Store) SaveRequest(ctx context.Context, r leave.LeaveRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowRFC3339()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
			(id, employee_id, leave_type, status, start_date, end_date, duration, fiscal_year, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			duration = excluded.duration,
			reason = excluded.reason,
			updated_at = excluded.updated_at`,
		r.ID, r.EmployeeID, string(r.Type), string(r.Status),
		r.StartDate.String(), r.EndDate.String(), r.Duration.String(),
		r.FiscalYear, r.Reason, now, now)
	return err
}

// RequestsForEmployee returns every stored request for an employee,
// chronologically by start date.
func (s *Store) RequestsForEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, leave_type, status, start_date, end_date, duration, fiscal_year, COALESCE(reason, '')
		FROM leave_requests WHERE employee_id = ? ORDER BY start_date`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows *sql.Rows) ([]leave.LeaveRequest, error) {
	var requests []leave.LeaveRequest
	for rows.Next() {
		var r leave.LeaveRequest
		var leaveType, status, start, end, duration string
		if err := rows.Scan(&r.ID, &r.EmployeeID, &leaveType, &status, &start, &end, &duration, &r.FiscalYear, &r.Reason); err != nil {
			return nil, err
		}
		r.Type = leave.LeaveType(leaveType)
		r.Status = leave.RequestStatus(status)

		startDate, err := leave.ParseDate(start)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", r.ID, err)
		}
		endDate, err := leave.ParseDate(end)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", r.ID, err)
		}
		r.StartDate, r.EndDate = startDate, endDate

		dur, err := decimal.NewFromString(duration)
		if err != nil {
			return nil, fmt.Errorf("request %s: bad duration %q: %w", r.ID, duration, err)
		}
		r.Duration = leave.DaysFromDecimal(dur)
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// =============================================================================
// RULES
// =============================================================================

func (s *Store) SaveRule(ctx context.Context, id string, definitionJSON []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowRFC3339()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_rules (id, definition_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			definition_json = excluded.definition_json,
			updated_at = excluded.updated_at`,
		id, string(definitionJSON), now, now)
	return err
}

// ListRuleDefinitions returns the stored JSON definitions, for the factory
// to parse into a registry.
func (s *Store) ListRuleDefinitions(ctx context.Context) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT definition_json FROM leave_rules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs [][]byte
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, err
		}
		defs = append(defs, []byte(def))
	}
	return defs, rows.Err()
}

// =============================================================================
// BALANCE SNAPSHOTS
// =============================================================================

// SaveSnapshot upserts the computed balance for (employee, year) and returns
// the previous snapshot JSON, if any, for the caller's audit entry.
func (s *Store) SaveSnapshot(ctx context.Context, b leave.YearlyBalance) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var before []byte
	var existing string
	err := s.db.QueryRowContext(ctx, `
		SELECT balance_json FROM balance_snapshots WHERE employee_id = ? AND year = ?`,
		b.EmployeeID, b.Year).Scan(&existing)
	switch err {
	case nil:
		before = []byte(existing)
	case sql.ErrNoRows:
	default:
		return nil, err
	}

	data, err := json.Marshal(snapshotJSON(b))
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO balance_snapshots (employee_id, year, balance_json, computed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id, year) DO UPDATE SET
			balance_json = excluded.balance_json,
			computed_at = excluded.computed_at`,
		b.EmployeeID, b.Year, string(data), nowRFC3339())
	if err != nil {
		return nil, err
	}
	return before, nil
}

// GetSnapshot returns the stored snapshot JSON for (employee, year), or nil.
func (s *Store) GetSnapshot(ctx context.Context, employeeID string, year int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT balance_json FROM balance_snapshots WHERE employee_id = ? AND year = ?`,
		employeeID, year).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// SnapshotJSON is the persisted shape of a YearlyBalance. Day quantities are
// serialized as decimal strings so nothing rounds in storage.
type SnapshotJSON struct {
	EmployeeID            string `json:"employee_id"`
	Year                  int    `json:"year"`
	RuleID                string `json:"rule_id"`
	YearsOfService        string `json:"years_of_service"`
	AnnualRate            string `json:"annual_rate"`
	SeniorityBonus        string `json:"seniority_bonus"`
	EntitlementAdjustment string `json:"entitlement_adjustment"`
	PreviousCarryover     string `json:"previous_carryover"`
	Used                  string `json:"used"`
	UsedAdjustment        string `json:"used_adjustment"`
	Remaining             string `json:"remaining"`
	MaxCarryover          string `json:"max_carryover"`
	NextCarryover         string `json:"next_carryover"`
	Forfeited             string `json:"forfeited"`
	CarryoverExpiresAt    string `json:"carryover_expires_at"`
	Overdrawn             bool   `json:"overdrawn"`
}

func snapshotJSON(b leave.YearlyBalance) SnapshotJSON {
	return SnapshotJSON{
		EmployeeID:            b.EmployeeID,
		Year:                  b.Year,
		RuleID:                b.RuleID,
		YearsOfService:        b.YearsOfService.Round(4).String(),
		AnnualRate:            b.AnnualRate.String(),
		SeniorityBonus:        b.SeniorityBonus.String(),
		EntitlementAdjustment: b.EntitlementAdjustment.String(),
		PreviousCarryover:     b.PreviousCarryover.String(),
		Used:                  b.Used.String(),
		UsedAdjustment:        b.UsedAdjustment.String(),
		Remaining:             b.Remaining.String(),
		MaxCarryover:          b.MaxCarryover.String(),
		NextCarryover:         b.NextCarryover.String(),
		Forfeited:             b.Forfeited.String(),
		CarryoverExpiresAt:    b.CarryoverExpiresAt.String(),
		Overdrawn:             b.Overdrawn,
	}
}

// MarshalSnapshot exposes the snapshot serialization for callers that format
// balances without storing them (CSV export).
func MarshalSnapshot(b leave.YearlyBalance) SnapshotJSON { return snapshotJSON(b) }

// =============================================================================
// AUDIT LOG - Append-only
// =============================================================================

// AuditEntry records one recalculation or validation action.
type AuditEntry struct {
	ID         int64
	Action     string
	Actor      string
	EmployeeID string
	Year       int
	Before     []byte
	After      []byte
	CreatedAt  time.Time
}

// AppendAudit writes one audit entry. There is no update or delete
// counterpart, by contract.
func (s *Store) AppendAudit(ctx context.Context, entry AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (action, actor, employee_id, year, before_json, after_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Action, entry.Actor, entry.EmployeeID, entry.Year,
		nullable(entry.Before), nullable(entry.After), nowRFC3339())
	return err
}

// AuditForEmployee returns the audit trail for an employee, oldest first.
func (s *Store) AuditForEmployee(ctx context.Context, employeeID string) ([]AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, actor, employee_id, year, before_json, after_json, created_at
		FROM audit_log WHERE employee_id = ? ORDER BY id`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var before, after sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Action, &e.Actor, &e.EmployeeID, &e.Year, &before, &after, &createdAt); err != nil {
			return nil, err
		}
		if before.Valid {
			e.Before = []byte(before.String)
		}
		if after.Valid {
			e.After = []byte(after.String)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
