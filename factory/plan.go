/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON documents into finance.FinancingPlan and points.Config
  values. This enables configuration without code changes - the business
  team can adjust plans and point rules in JSON, and the factory creates
  the proper Go structs.

WHY JSON?
  - Non-developers can modify plans and point rules
  - Easy integration with the admin UI
  - Version control for commercial configurations
  - Database storage of plan configs (store/sqlite keeps the documents)

PLAN JSON SCHEMA:
  {
    "id": "compra-programada-50",
    "name": "Compra Programada",
    "plan_type": "programmed",
    "min_term_months": 12,
    "max_term_months": 60,
    "annual_interest_rate": "0",
    "adjudication_percentage": "45"
  }

POINTS JSON SCHEMA:
  {
    "initial_points": 100,
    "on_time_payment_points": 5,
    ...
    "late_days_max": 5,
    "double_payment_factor": "1.9"
  }

  Rates, percentages and factors are JSON strings parsed with
  shopspring/decimal, so "12.5" survives the round trip exactly.
  Omitted numeric fields keep the package defaults.

USAGE:
  factory := NewPlanFactory()

  // From JSON string
  plan, err := factory.ParsePlan(jsonStr)

  // From preset (recommended)
  jsonStr := ProgrammedPurchaseJSON("compra-programada-50", "Compra Programada", 12, 60, "0")
  plan, err := factory.ParsePlan(jsonStr)

  // Use in system
  result, err := finance.Calculate(*plan, req)

SEE ALSO:
  - finance/types.go: FinancingPlan definition and validation
  - points/config.go: Config definition and defaults
  - store/sqlite: Where the JSON documents live at rest
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rubenbolivar/llevateloexpress.com/finance"
	"github.com/rubenbolivar/llevateloexpress.com/points"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a financing plan.
type PlanJSON struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PlanType      string `json:"plan_type"`
	MinTermMonths int    `json:"min_term_months"`
	MaxTermMonths int    `json:"max_term_months"`

	// Decimal fields travel as strings to keep exact precision.
	AnnualInterestRate     string `json:"annual_interest_rate"`
	AdjudicationPercentage string `json:"adjudication_percentage,omitempty"` // programmed plans
	DownPaymentPercentage  string `json:"down_payment_percentage,omitempty"` // immediate plans
}

// PointsConfigJSON is the JSON representation of the points configuration.
// Pointer fields distinguish "absent, use default" from an explicit zero.
type PointsConfigJSON struct {
	InitialPoints           *int `json:"initial_points,omitempty"`
	OnTimePaymentPoints     *int `json:"on_time_payment_points,omitempty"`
	AdvancePaymentPoints    *int `json:"advance_payment_points,omitempty"`
	LatePaymentPoints       *int `json:"late_payment_points,omitempty"`
	VeryLatePaymentPoints   *int `json:"very_late_payment_points,omitempty"`
	DoublePaymentPoints     *int `json:"double_payment_points,omitempty"`
	EducationalCoursePoints *int `json:"educational_course_points,omitempty"`

	Floor       *int `json:"floor,omitempty"`
	LateDaysMax *int `json:"late_days_max,omitempty"`

	DoublePaymentFactor string `json:"double_payment_factor,omitempty"`
}

// TiersJSON is the JSON representation of the standing thresholds and the
// waiting-days table, kept together because the business edits them as one.
type TiersJSON struct {
	Thresholds struct {
		Excellent int `json:"excellent"`
		Good      int `json:"good"`
		Average   int `json:"average"`
		Poor      int `json:"poor"`
	} `json:"thresholds"`
	WaitingDays struct {
		Excellent int `json:"excellent"`
		Good      int `json:"good"`
		Average   int `json:"average"`
		Poor      int `json:"poor"`
		Bad       int `json:"bad"`
	} `json:"waiting_days"`
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts JSON configuration documents to Go structs.
type PlanFactory struct{}

// NewPlanFactory creates a new plan factory.
func NewPlanFactory() *PlanFactory {
	return &PlanFactory{}
}

// ParsePlan parses a JSON string into a validated FinancingPlan.
func (f *PlanFactory) ParsePlan(jsonStr string) (*finance.FinancingPlan, error) {
	var pj PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PlanJSON to a validated FinancingPlan.
func (f *PlanFactory) FromJSON(pj PlanJSON) (*finance.FinancingPlan, error) {
	rate, err := parseDecimalField("annual_interest_rate", pj.AnnualInterestRate, decimal.Zero)
	if err != nil {
		return nil, err
	}

	plan := finance.FinancingPlan{
		ID:                 pj.ID,
		Name:               pj.Name,
		Type:               finance.PlanType(pj.PlanType),
		MinTermMonths:      pj.MinTermMonths,
		MaxTermMonths:      pj.MaxTermMonths,
		AnnualInterestRate: rate,
	}

	switch plan.Type {
	case finance.PlanProgrammed:
		plan.AdjudicationPercentage, err = parseDecimalField(
			"adjudication_percentage", pj.AdjudicationPercentage, decimal.NewFromInt(45))
	case finance.PlanImmediate:
		plan.DownPaymentPercentage, err = parseDecimalField(
			"down_payment_percentage", pj.DownPaymentPercentage, decimal.NewFromInt(30))
	}
	if err != nil {
		return nil, err
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ToJSON converts a FinancingPlan back to its JSON representation.
func (f *PlanFactory) ToJSON(plan finance.FinancingPlan) PlanJSON {
	pj := PlanJSON{
		ID:                 plan.ID,
		Name:               plan.Name,
		PlanType:           string(plan.Type),
		MinTermMonths:      plan.MinTermMonths,
		MaxTermMonths:      plan.MaxTermMonths,
		AnnualInterestRate: plan.AnnualInterestRate.String(),
	}
	switch plan.Type {
	case finance.PlanProgrammed:
		pj.AdjudicationPercentage = plan.AdjudicationPercentage.String()
	case finance.PlanImmediate:
		pj.DownPaymentPercentage = plan.DownPaymentPercentage.String()
	}
	return pj
}

// ParsePointsConfig parses a JSON string into a points.Config. Fields not
// present in the document keep their defaults.
func (f *PlanFactory) ParsePointsConfig(jsonStr string) (points.Config, error) {
	var cj PointsConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return points.Config{}, fmt.Errorf("failed to parse points config JSON: %w", err)
	}

	cfg := points.DefaultConfig()
	applyInt(&cfg.InitialPoints, cj.InitialPoints)
	applyInt(&cfg.OnTimePaymentPoints, cj.OnTimePaymentPoints)
	applyInt(&cfg.AdvancePaymentPoints, cj.AdvancePaymentPoints)
	applyInt(&cfg.LatePaymentPoints, cj.LatePaymentPoints)
	applyInt(&cfg.VeryLatePaymentPoints, cj.VeryLatePaymentPoints)
	applyInt(&cfg.DoublePaymentPoints, cj.DoublePaymentPoints)
	applyInt(&cfg.EducationalCoursePoints, cj.EducationalCoursePoints)
	applyInt(&cfg.Floor, cj.Floor)
	applyInt(&cfg.LateDaysMax, cj.LateDaysMax)

	if cj.DoublePaymentFactor != "" {
		factor, err := parseDecimalField("double_payment_factor", cj.DoublePaymentFactor, decimal.Decimal{})
		if err != nil {
			return points.Config{}, err
		}
		if !factor.IsPositive() {
			return points.Config{}, fmt.Errorf("double_payment_factor must be positive, got %s", factor)
		}
		cfg.DoublePaymentFactor = factor
	}

	if cfg.LateDaysMax < 0 {
		return points.Config{}, fmt.Errorf("late_days_max must not be negative, got %d", cfg.LateDaysMax)
	}
	return cfg, nil
}

// ParseTiers parses a JSON string into thresholds and a waiting-days table.
func (f *PlanFactory) ParseTiers(jsonStr string) (points.Thresholds, points.WaitingDaysTable, error) {
	var tj TiersJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return points.Thresholds{}, points.WaitingDaysTable{},
			fmt.Errorf("failed to parse tiers JSON: %w", err)
	}

	t := points.Thresholds{
		Excellent: tj.Thresholds.Excellent,
		Good:      tj.Thresholds.Good,
		Average:   tj.Thresholds.Average,
		Poor:      tj.Thresholds.Poor,
	}
	if err := t.Validate(); err != nil {
		return points.Thresholds{}, points.WaitingDaysTable{}, err
	}

	w := points.WaitingDaysTable{
		Excellent: tj.WaitingDays.Excellent,
		Good:      tj.WaitingDays.Good,
		Average:   tj.WaitingDays.Average,
		Poor:      tj.WaitingDays.Poor,
		Bad:       tj.WaitingDays.Bad,
	}
	return t, w, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDecimalField(field, value string, def decimal.Decimal) (decimal.Decimal, error) {
	if value == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// =============================================================================
// PRESET PLANS
// =============================================================================
//
// The presets mirror the two commercial products. Rates and percentages are
// decimal strings so the documents stay exact through storage round trips.

// ProgrammedPurchaseJSON builds the JSON document for a programmed-purchase
// plan: no down payment, vehicle adjudicated once 45% of the price is paid.
func ProgrammedPurchaseJSON(id, name string, minTerm, maxTerm int, annualRate string) string {
	doc := PlanJSON{
		ID:                     id,
		Name:                   name,
		PlanType:               string(finance.PlanProgrammed),
		MinTermMonths:          minTerm,
		MaxTermMonths:          maxTerm,
		AnnualInterestRate:     annualRate,
		AdjudicationPercentage: "45",
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

// ImmediateCreditJSON builds the JSON document for an immediate-credit plan:
// 30% minimum down payment, vehicle delivered at signing.
func ImmediateCreditJSON(id, name string, minTerm, maxTerm int, annualRate string) string {
	doc := PlanJSON{
		ID:                    id,
		Name:                  name,
		PlanType:              string(finance.PlanImmediate),
		MinTermMonths:         minTerm,
		MaxTermMonths:         maxTerm,
		AnnualInterestRate:    annualRate,
		DownPaymentPercentage: "30",
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

// DefaultPointsConfigJSON builds the JSON document for the standard points
// configuration, spelled out in full so the admin UI shows every knob.
func DefaultPointsConfigJSON() string {
	def := points.DefaultConfig()
	doc := PointsConfigJSON{
		InitialPoints:           &def.InitialPoints,
		OnTimePaymentPoints:     &def.OnTimePaymentPoints,
		AdvancePaymentPoints:    &def.AdvancePaymentPoints,
		LatePaymentPoints:       &def.LatePaymentPoints,
		VeryLatePaymentPoints:   &def.VeryLatePaymentPoints,
		DoublePaymentPoints:     &def.DoublePaymentPoints,
		EducationalCoursePoints: &def.EducationalCoursePoints,
		Floor:                   &def.Floor,
		LateDaysMax:             &def.LateDaysMax,
		DoublePaymentFactor:     def.DoublePaymentFactor.String(),
	}
	b, _ := json.Marshal(doc)
	return string(b)
}
