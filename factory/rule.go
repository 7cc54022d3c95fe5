/*
Package factory provides JSON to Go accrual-rule conversion.

PURPOSE:
  Converts JSON rule definitions into leave.AccrualRule values. This enables
  rule configuration without code changes - HR can define rule sets in JSON,
  store them in the database, and the factory builds the proper Go values.

JSON SCHEMA:
  {
    "id": "standard",
    "name": "Congé annuel standard",
    "annual_base_days": 18,
    "seniority_bonus_days": 1.5,
    "seniority_bonus_period_years": 5,
    "max_annual_days": 30,
    "max_carryover_ratio": 0.3333,
    "carryover_expiry_months": 3,
    "department": "engineering",
    "default": false
  }

DEFAULTS:
  Omitted numeric fields fall back to the standard Moroccan parameters
  (18 / 1.5 per 5 years / cap 30 / ratio 1/3 / 3 months). A field set to an
  explicit zero keeps the zero, so a no-carryover rule stays expressible.

VALIDATION:
  Every parsed rule goes through leave.AccrualRule.Validate(), so a JSON
  definition below the legal floor is rejected here, before it can reach any
  balance computation. Advisory warnings are returned alongside the rule.
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atlashr/leave-engine/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the JSON representation of an accrual rule. Optional numeric
// fields are pointers so "absent" and "zero" stay distinguishable.
type RuleJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	AnnualBaseDays            *float64 `json:"annual_base_days,omitempty"`
	SeniorityBonusDays        *float64 `json:"seniority_bonus_days,omitempty"`
	SeniorityBonusPeriodYears *int     `json:"seniority_bonus_period_years,omitempty"`
	MaxAnnualDays             *float64 `json:"max_annual_days,omitempty"`
	MaxCarryoverRatio         *float64 `json:"max_carryover_ratio,omitempty"`
	CarryoverExpiryMonths     *int     `json:"carryover_expiry_months,omitempty"`

	Role           string `json:"role,omitempty"`
	Department     string `json:"department,omitempty"`
	EffectiveFrom  string `json:"effective_from,omitempty"`
	EffectiveUntil string `json:"effective_until,omitempty"`

	NewEmployee bool `json:"new_employee,omitempty"`
	Default     bool `json:"default,omitempty"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

type RuleFactory struct{}

func NewRuleFactory() *RuleFactory { return &RuleFactory{} }

// ParseRule converts a JSON definition into a validated AccrualRule.
// Returns the rule, any advisory warnings, and a hard error for malformed
// JSON, unparseable dates, or parameters below the legal floor.
func (f *RuleFactory) ParseRule(data []byte) (leave.AccrualRule, []string, error) {
	var rj RuleJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return leave.AccrualRule{}, nil, fmt.Errorf("invalid rule JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON converts an already-decoded RuleJSON into a validated AccrualRule.
func (f *RuleFactory) FromJSON(rj RuleJSON) (leave.AccrualRule, []string, error) {
	if rj.ID == "" {
		return leave.AccrualRule{}, nil, fmt.Errorf("rule definition is missing an id")
	}

	// Start from the standard parameters, then overlay what the JSON sets.
	rule := leave.StandardRule(rj.ID)
	rule.Name = rj.Name
	rule.Default = rj.Default
	rule.NewEmployee = rj.NewEmployee
	rule.Role = rj.Role
	rule.Department = rj.Department

	if rj.AnnualBaseDays != nil {
		rule.AnnualBaseDays = decimal.NewFromFloat(*rj.AnnualBaseDays)
	}
	if rj.SeniorityBonusDays != nil {
		rule.SeniorityBonusDays = decimal.NewFromFloat(*rj.SeniorityBonusDays)
	}
	if rj.SeniorityBonusPeriodYears != nil {
		rule.SeniorityBonusPeriodYears = *rj.SeniorityBonusPeriodYears
	}
	if rj.MaxAnnualDays != nil {
		rule.MaxAnnualDays = decimal.NewFromFloat(*rj.MaxAnnualDays)
	}
	if rj.MaxCarryoverRatio != nil {
		rule.MaxCarryoverRatio = decimal.NewFromFloat(*rj.MaxCarryoverRatio)
	}
	if rj.CarryoverExpiryMonths != nil {
		rule.CarryoverExpiryMonths = *rj.CarryoverExpiryMonths
	}

	if rj.EffectiveFrom != "" {
		from, err := leave.ParseDate(rj.EffectiveFrom)
		if err != nil {
			return leave.AccrualRule{}, nil, fmt.Errorf("rule %s: effective_from: %w", rj.ID, err)
		}
		rule.EffectiveFrom = from
	}
	if rj.EffectiveUntil != "" {
		until, err := leave.ParseDate(rj.EffectiveUntil)
		if err != nil {
			return leave.AccrualRule{}, nil, fmt.Errorf("rule %s: effective_until: %w", rj.ID, err)
		}
		rule.EffectiveUntil = until
	}

	if err := rule.Validate(); err != nil {
		return leave.AccrualRule{}, nil, err
	}
	return rule, rule.Warnings(), nil
}

// ToJSON converts a rule back into its JSON representation, for storage.
func (f *RuleFactory) ToJSON(rule leave.AccrualRule) RuleJSON {
	base := rule.AnnualBaseDays.InexactFloat64()
	bonus := rule.SeniorityBonusDays.InexactFloat64()
	period := rule.SeniorityBonusPeriodYears
	maxDays := rule.MaxAnnualDays.InexactFloat64()
	ratio := rule.MaxCarryoverRatio.InexactFloat64()
	expiry := rule.CarryoverExpiryMonths

	rj := RuleJSON{
		ID:                        rule.ID,
		Name:                      rule.Name,
		AnnualBaseDays:            &base,
		SeniorityBonusDays:        &bonus,
		SeniorityBonusPeriodYears: &period,
		MaxAnnualDays:             &maxDays,
		MaxCarryoverRatio:         &ratio,
		CarryoverExpiryMonths:     &expiry,
		Role:                      rule.Role,
		Department:                rule.Department,
		NewEmployee:               rule.NewEmployee,
		Default:                   rule.Default,
	}
	if !rule.EffectiveFrom.IsZero() {
		rj.EffectiveFrom = rule.EffectiveFrom.String()
	}
	if !rule.EffectiveUntil.IsZero() {
		rj.EffectiveUntil = rule.EffectiveUntil.String()
	}
	return rj
}

// MarshalRule serializes a rule to JSON bytes.
func (f *RuleFactory) MarshalRule(rule leave.AccrualRule) ([]byte, error) {
	return json.Marshal(f.ToJSON(rule))
}

// ParseRegistry builds a validated registry from a JSON array of rules.
func (f *RuleFactory) ParseRegistry(data []byte) (*leave.RuleRegistry, []string, error) {
	var defs []RuleJSON
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, nil, fmt.Errorf("invalid rule set JSON: %w", err)
	}

	var rules []leave.AccrualRule
	var warnings []string
	for _, def := range defs {
		rule, w, err := f.FromJSON(def)
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, rule)
		warnings = append(warnings, w...)
	}

	reg, err := leave.NewRuleRegistry(rules...)
	if err != nil {
		return nil, nil, err
	}
	return reg, warnings, nil
}
