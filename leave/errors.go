/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers wrap these with additional context.

ERROR CATEGORIES:
  1. Input errors      - Unparseable dates, off-granularity durations
  2. Rule errors       - Parameters below the legal floor
  3. Advisory warnings - Legal but below-standard rule parameters
                         (reported, never raised as errors)

USAGE:
  if errors.Is(err, leave.ErrRuleViolatesMinimumLaw) {
      // reject the rule before any balance is computed with it
  }
*/
package leave

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a supplied date string fails to parse.
	ErrInvalidDate = errors.New("invalid date")

	// ErrRuleViolatesMinimumLaw is returned when a rule's parameters fall
	// below the floor set by the labor code (Art. 231). Raised at rule
	// construction time, before any balance is computed with the rule.
	ErrRuleViolatesMinimumLaw = errors.New("rule violates legal minimum")

	// ErrInvalidDuration is returned when a leave duration is not a whole
	// multiple of half a day.
	ErrInvalidDuration = errors.New("duration is not a multiple of 0.5 days")

	// ErrNoDefaultRule is returned by a registry holding no default rule.
	ErrNoDefaultRule = errors.New("rule registry has no default rule")

	// ErrDuplicateDefaultRule is returned when a second default is registered.
	ErrDuplicateDefaultRule = errors.New("rule registry already has a default rule")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateError reports the exact input that failed to parse.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Input)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// RuleViolationError lists every legal-floor violation found in a rule.
type RuleViolationError struct {
	RuleID     string
	Violations []string
}

func (e *RuleViolationError) Error() string {
	return fmt.Sprintf("rule %q violates legal minimum: %s",
		e.RuleID, strings.Join(e.Violations, "; "))
}

func (e *RuleViolationError) Unwrap() error { return ErrRuleViolatesMinimumLaw }

// InvalidDurationError reports a consumption quantity off the half-day grid.
type InvalidDurationError struct {
	Duration Days
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("duration %s is not a multiple of 0.5 days", e.Duration)
}

func (e *InvalidDurationError) Unwrap() error { return ErrInvalidDuration }
