/*
recalc.go - Bulk recalculation and the year-end scheduler

PURPOSE:
  Recomputes and snapshots every employee's balance for a fiscal year.
  Used by the admin endpoint for on-demand runs and by RecalcScheduler
  for the automated year-end pass.

DESIGN:
  - One employee's failure never aborts the batch: the error is recorded
    in the report and the run continues.
  - Every snapshot write is paired with an audit entry carrying the
    replaced snapshot, so balance changes stay traceable.
  - Context cancellation is honored between employees.

SEE ALSO:
  - handlers.go: TriggerRecalculation endpoint
  - store/sqlite: SaveSnapshot, AppendAudit
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/atlashr/leave-engine/store/sqlite"
)

// =============================================================================
// BULK RECALCULATION
// =============================================================================

// RecalcFailure records one employee the run could not process.
type RecalcFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// RecalcReport summarizes a bulk recalculation run.
type RecalcReport struct {
	Year      int             `json:"year"`
	Actor     string          `json:"actor"`
	Processed int             `json:"processed"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Failures  []RecalcFailure `json:"failures,omitempty"`
	StartedAt time.Time       `json:"started_at"`
	Duration  string          `json:"duration"`
}

// BulkRecalculator recomputes balances for all employees.
type BulkRecalculator struct {
	Store   *sqlite.Store
	Handler *Handler
}

// Run recalculates every employee's balance for the given year, snapshots
// the results, and writes one audit entry per employee.
func (br *BulkRecalculator) Run(ctx context.Context, year int, actor string) RecalcReport {
	started := time.Now()
	report := RecalcReport{Year: year, Actor: actor, StartedAt: started}

	employees, err := br.Store.ListEmployees(ctx)
	if err != nil {
		report.Failures = append(report.Failures, RecalcFailure{Error: err.Error()})
		report.Failed = 1
		report.Duration = time.Since(started).String()
		return report
	}

	for _, emp := range employees {
		if ctx.Err() != nil {
			report.Failures = append(report.Failures, RecalcFailure{
				EmployeeID: emp.ID,
				Error:      ctx.Err().Error(),
			})
			report.Failed++
			break
		}

		report.Processed++
		if err := br.recalcOne(ctx, emp.ID, year, actor); err != nil {
			log.Printf("[Recalc] %s year %d failed: %v", emp.ID, year, err)
			report.Failures = append(report.Failures, RecalcFailure{
				EmployeeID: emp.ID,
				Error:      err.Error(),
			})
			report.Failed++
			continue
		}
		report.Succeeded++
	}

	report.Duration = time.Since(started).String()
	log.Printf("[Recalc] Year %d: %d processed, %d succeeded, %d failed",
		year, report.Processed, report.Succeeded, report.Failed)
	return report
}

func (br *BulkRecalculator) recalcOne(ctx context.Context, employeeID string, year int, actor string) error {
	emp, err := br.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return fmt.Errorf("employee %s disappeared during run", employeeID)
	}

	balance, err := br.Handler.balanceForYear(ctx, *emp, year)
	if err != nil {
		return err
	}

	previous, err := br.Store.SaveSnapshot(ctx, balance)
	if err != nil {
		return err
	}

	after, err := json.Marshal(sqlite.MarshalSnapshot(balance))
	if err != nil {
		return err
	}
	return br.Store.AppendAudit(ctx, sqlite.AuditEntry{
		Action:     "recalculate",
		Actor:      actor,
		EmployeeID: employeeID,
		Year:       year,
		Before:     previous,
		After:      after,
	})
}

// =============================================================================
// SCHEDULER
// =============================================================================

// RecalcScheduler periodically refreshes the previous year's snapshots so
// carryover and forfeiture figures are frozen shortly after year end.
type RecalcScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewRecalcScheduler(store *sqlite.Store, handler *Handler) *RecalcScheduler {
	return &RecalcScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 24 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *RecalcScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (rs *RecalcScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RecalcScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.refresh()

	for {
		select {
		case <-rs.ticker.C:
			rs.refresh()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RecalcScheduler) refresh() {
	// The previous fiscal year is the one whose carryover window is live.
	year := time.Now().Year() - 1
	recalc := &BulkRecalculator{Store: rs.Store, Handler: rs.Handler}
	recalc.Run(context.Background(), year, "scheduler")
}

// RunNow triggers an immediate refresh (for testing/admin).
func (rs *RecalcScheduler) RunNow() {
	rs.refresh()
}
