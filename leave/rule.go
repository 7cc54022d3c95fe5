/*
rule.go - Accrual rules and rule selection

PURPOSE:
  An AccrualRule is the immutable parameter set governing how annual leave
  accrues for a group of employees: base entitlement, seniority bonus,
  cap, and carryover limits. The RuleRegistry holds the active rule set and
  picks the applicable rule per employee.

LEGAL FLOOR (Art. 231):
  - 1.5 working days of leave per month of service, i.e. 18 days per year
  - +1.5 days per 5 full years of service (Art. 232)
  A rule below the floor is rejected outright. A rule above the floor but
  below the common standard (e.g. a carryover ratio under 1/3) is legal;
  it produces an advisory warning instead.

SELECTION ORDER (first match wins):
  1. "New employee" rule, when the employee has under one year of service
  2. Rule scoped to the employee's department
  3. Rule scoped to the employee's role
  4. The default rule
  This ordering is company policy, not law; registries may be built with
  synthetic rule sets to get different behavior.
*/
package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEGAL FLOOR AND COMMON STANDARD
// =============================================================================

var (
	// LegalMinimumBaseDays is the Art. 231 floor: 18 working days per year.
	LegalMinimumBaseDays = decimal.NewFromInt(18)

	// StandardBonusDays is the customary Art. 232 seniority bonus: 1.5 days.
	StandardBonusDays = decimal.NewFromFloat(1.5)

	// StandardCarryoverRatio is the customary cap on carryover: one third
	// of the annual entitlement.
	StandardCarryoverRatio = decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
)

// =============================================================================
// ACCRUAL RULE - Immutable configuration value
// =============================================================================

// AccrualRule parameterizes entitlement and carryover for the employees it
// applies to. Rules are values: built once, validated once, never mutated.
type AccrualRule struct {
	ID   string
	Name string

	// AnnualBaseDays is the yearly entitlement before seniority bonus.
	// Legal minimum 18.
	AnnualBaseDays decimal.Decimal

	// SeniorityBonusDays is added per completed bonus period of service.
	SeniorityBonusDays decimal.Decimal

	// SeniorityBonusPeriodYears is the length of one bonus period.
	SeniorityBonusPeriodYears int

	// MaxAnnualDays caps entitlement after the bonus is added.
	MaxAnnualDays decimal.Decimal

	// MaxCarryoverRatio is the fraction of annual entitlement eligible to
	// carry into the next year. Must be in [0, 1].
	MaxCarryoverRatio decimal.Decimal

	// CarryoverExpiryMonths is the grace period for using carried-over days.
	CarryoverExpiryMonths int

	// Applicability filters. Empty string means "any".
	Role       string
	Department string

	// Effective window. Zero dates mean unbounded.
	EffectiveFrom  CalendarDate
	EffectiveUntil CalendarDate

	// NewEmployee marks the rule reserved for employees in their first
	// year of service.
	NewEmployee bool

	// Default marks the fallback rule. A registry holds exactly one.
	Default bool
}

// StandardRule returns the rule encoding the common Moroccan private-sector
// policy: 18 base days, +1.5 days per 5 years, capped at 30, one third
// carryover usable within 3 months.
func StandardRule(id string) AccrualRule {
	return AccrualRule{
		ID:                        id,
		Name:                      "Congé annuel standard",
		AnnualBaseDays:            LegalMinimumBaseDays,
		SeniorityBonusDays:        StandardBonusDays,
		SeniorityBonusPeriodYears: 5,
		MaxAnnualDays:             decimal.NewFromInt(30),
		MaxCarryoverRatio:         StandardCarryoverRatio,
		CarryoverExpiryMonths:     3,
		Default:                   true,
	}
}

// Validate rejects rules below the legal floor. The returned error wraps
// ErrRuleViolatesMinimumLaw and lists every violation.
func (r AccrualRule) Validate() error {
	var violations []string

	if r.AnnualBaseDays.LessThan(LegalMinimumBaseDays) {
		violations = append(violations,
			fmt.Sprintf("annual base %s is below the legal minimum of 18 days", r.AnnualBaseDays))
	}
	if r.SeniorityBonusDays.IsNegative() {
		violations = append(violations,
			fmt.Sprintf("seniority bonus %s is negative", r.SeniorityBonusDays))
	}
	if r.SeniorityBonusPeriodYears < 1 {
		violations = append(violations,
			fmt.Sprintf("seniority bonus period %d years is not a positive period", r.SeniorityBonusPeriodYears))
	}
	if r.MaxCarryoverRatio.IsNegative() || r.MaxCarryoverRatio.GreaterThan(decimal.NewFromInt(1)) {
		violations = append(violations,
			fmt.Sprintf("carryover ratio %s is outside [0, 1]", r.MaxCarryoverRatio))
	}
	if r.CarryoverExpiryMonths < 0 {
		violations = append(violations,
			fmt.Sprintf("carryover expiry %d months is negative", r.CarryoverExpiryMonths))
	}
	if r.MaxAnnualDays.LessThan(r.AnnualBaseDays) {
		violations = append(violations,
			fmt.Sprintf("annual cap %s is below the base entitlement %s", r.MaxAnnualDays, r.AnnualBaseDays))
	}

	if len(violations) > 0 {
		return &RuleViolationError{RuleID: r.ID, Violations: violations}
	}
	return nil
}

// Warnings reports rule parameters that are legal but below the common
// standard. Advisory only: a rule with warnings still computes balances.
func (r AccrualRule) Warnings() []string {
	var warnings []string
	if r.SeniorityBonusDays.LessThan(StandardBonusDays) {
		warnings = append(warnings,
			fmt.Sprintf("seniority bonus %s is below the customary 1.5 days", r.SeniorityBonusDays))
	}
	if r.MaxCarryoverRatio.LessThan(StandardCarryoverRatio) {
		warnings = append(warnings,
			fmt.Sprintf("carryover ratio %s is below the customary one third", r.MaxCarryoverRatio))
	}
	return warnings
}

// EffectiveOn reports whether the rule's effective window contains the date.
func (r AccrualRule) EffectiveOn(d CalendarDate) bool {
	if !r.EffectiveFrom.IsZero() && d.Before(r.EffectiveFrom) {
		return false
	}
	if !r.EffectiveUntil.IsZero() && d.After(r.EffectiveUntil) {
		return false
	}
	return true
}

// =============================================================================
// EMPLOYEE - Selection input
// =============================================================================

// Employee carries the fields rule selection and balance computation need.
// The record store supplies it; the engine never loads it.
type Employee struct {
	ID         string
	Name       string
	Role       string
	Department string
	HireDate   CalendarDate

	// BalanceAdjustment is the per-employee "+/- days" entitlement override.
	// Distinct from the consumption correction on a yearly balance: this one
	// behaves as bonus (or penalty) entitlement. The two are audited
	// separately and must not be collapsed.
	BalanceAdjustment Days
}

// =============================================================================
// RULE REGISTRY - Explicit rule set passed into selection
// =============================================================================

// RuleRegistry holds a validated rule set with exactly one default.
// It is a plain value handed to the selector, so tests can build synthetic
// registries without touching any shared state.
type RuleRegistry struct {
	rules      []AccrualRule
	defaultIdx int
}

// NewRuleRegistry validates every rule and requires exactly one default.
func NewRuleRegistry(rules ...AccrualRule) (*RuleRegistry, error) {
	reg := &RuleRegistry{defaultIdx: -1}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if r.Default {
			if reg.defaultIdx >= 0 {
				return nil, ErrDuplicateDefaultRule
			}
			reg.defaultIdx = len(reg.rules)
		}
		reg.rules = append(reg.rules, r)
	}
	if reg.defaultIdx < 0 {
		return nil, ErrNoDefaultRule
	}
	return reg, nil
}

// Default returns the fallback rule.
func (reg *RuleRegistry) Default() AccrualRule { return reg.rules[reg.defaultIdx] }

// Rules returns the full rule set in registration order.
func (reg *RuleRegistry) Rules() []AccrualRule {
	out := make([]AccrualRule, len(reg.rules))
	copy(out, reg.rules)
	return out
}

// Select picks the applicable rule for an employee as of a reference date.
//
// Order: new-employee rule (service under one year), then department match,
// then role match, then the default.
func (reg *RuleRegistry) Select(emp Employee, asOf CalendarDate) AccrualRule {
	service := YearsOfService(emp.HireDate, asOf)
	if service.LessThan(decimal.NewFromInt(1)) {
		for _, r := range reg.rules {
			if r.NewEmployee && r.EffectiveOn(asOf) {
				return r
			}
		}
	}
	for _, r := range reg.rules {
		if r.Department != "" && r.Department == emp.Department && r.EffectiveOn(asOf) {
			return r
		}
	}
	for _, r := range reg.rules {
		if r.Role != "" && r.Role == emp.Role && r.EffectiveOn(asOf) {
			return r
		}
	}
	return reg.Default()
}
