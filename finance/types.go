/*
Package finance provides the vehicle-financing calculation engine.

PURPOSE:
  This package computes fixed-payment amortization schedules for the two
  financing modalities the company sells:

  - Programmed purchase: no down payment. The full vehicle price is
    amortized over the term and the vehicle is handed over (adjudicated)
    once a configured percentage of the price has been paid in principal.

  - Immediate credit: an upfront down payment is required and the vehicle
    is delivered at contract signing; the remainder is amortized normally.

KEY CONCEPTS IN THIS FILE (types.go):
  - FinancingPlan:       Immutable plan configuration (terms, rate, percentages)
  - CalculationRequest:  One calculation call (price, term, optional down payment)
  - PaymentScheduleItem: One row of the amortization schedule
  - CalculatorResult:    Full output: payment, totals, schedule, adjudication info

DESIGN PRINCIPLES:
  1. Purity: Calculate() is a deterministic function of (plan, request).
     No I/O, no clock, no persistence.
  2. Precision: All money values use decimal.Decimal at 2 fractional digits.
     Rounding is half-up, applied once per period. Rate math keeps full
     precision until a money value is produced.
  3. Fail fast: Invalid input is rejected before any schedule work begins.

SEE ALSO:
  - engine.go:   The calculation itself
  - calendar.go: Period index -> calendar due dates, waiting-days handling
  - errors.go:   Error taxonomy
*/
package finance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - decimal values at currency precision
// =============================================================================

// MoneyScale is the number of fractional digits for all schedule values.
const MoneyScale = 2

// RoundMoney rounds to currency precision, half away from zero (half-up for
// the non-negative values this engine produces). This is the single rounding
// rule; it is applied once per period and once to the level payment.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// MustDecimal parses a decimal literal. Intended for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
	zero    = decimal.Zero

	defaultAdjudicationPct = decimal.NewFromInt(45)
	defaultDownPaymentPct  = decimal.NewFromInt(30)
)

// =============================================================================
// PLAN - Immutable financing plan configuration
// =============================================================================

// PlanType identifies the financing modality.
type PlanType string

const (
	// PlanProgrammed: no down payment, vehicle adjudicated mid-schedule.
	PlanProgrammed PlanType = "programmed"

	// PlanImmediate: down payment upfront, vehicle delivered at signing.
	PlanImmediate PlanType = "immediate"
)

// Valid reports whether the plan type is one of the known modalities.
func (pt PlanType) Valid() bool {
	return pt == PlanProgrammed || pt == PlanImmediate
}

// FinancingPlan is the immutable configuration for one commercial plan.
// Plans are created and edited by administrators (see factory package);
// the engine only reads them.
type FinancingPlan struct {
	ID   string
	Name string
	Type PlanType

	// Term bounds, in months. MinTermMonths <= MaxTermMonths, both > 0.
	MinTermMonths int
	MaxTermMonths int

	// Annual interest rate as a percentage (12 means 12%).
	AnnualInterestRate decimal.Decimal

	// Programmed plans: fraction of the vehicle price (percentage) that must
	// be paid in principal before the vehicle is handed over.
	AdjudicationPercentage decimal.Decimal

	// Immediate plans: minimum down payment as a percentage of vehicle price.
	DownPaymentPercentage decimal.Decimal
}

// DefaultProgrammedPlan returns a programmed-purchase plan with the standard
// commercial defaults (45% adjudication).
func DefaultProgrammedPlan(id, name string, minTerm, maxTerm int, annualRate decimal.Decimal) FinancingPlan {
	return FinancingPlan{
		ID:                     id,
		Name:                   name,
		Type:                   PlanProgrammed,
		MinTermMonths:          minTerm,
		MaxTermMonths:          maxTerm,
		AnnualInterestRate:     annualRate,
		AdjudicationPercentage: defaultAdjudicationPct,
	}
}

// DefaultImmediatePlan returns an immediate-credit plan with the standard
// commercial defaults (30% down payment).
func DefaultImmediatePlan(id, name string, minTerm, maxTerm int, annualRate decimal.Decimal) FinancingPlan {
	return FinancingPlan{
		ID:                    id,
		Name:                  name,
		Type:                  PlanImmediate,
		MinTermMonths:         minTerm,
		MaxTermMonths:         maxTerm,
		AnnualInterestRate:    annualRate,
		DownPaymentPercentage: defaultDownPaymentPct,
	}
}

// Validate checks the plan configuration invariants. A plan that fails
// validation is a configuration error, not a user error.
func (p FinancingPlan) Validate() error {
	if !p.Type.Valid() {
		return &UnsupportedPlanTypeError{PlanType: string(p.Type)}
	}
	if p.MinTermMonths <= 0 || p.MaxTermMonths <= 0 || p.MinTermMonths > p.MaxTermMonths {
		return &PlanConfigError{PlanID: p.ID, Field: "term bounds",
			Detail: "min and max term must be positive and min <= max"}
	}
	if p.AnnualInterestRate.IsNegative() {
		return &PlanConfigError{PlanID: p.ID, Field: "annual_interest_rate",
			Detail: "rate must not be negative"}
	}
	switch p.Type {
	case PlanProgrammed:
		if !percentageInRange(p.AdjudicationPercentage) {
			return &PlanConfigError{PlanID: p.ID, Field: "adjudication_percentage",
				Detail: "must be in (0, 100]"}
		}
	case PlanImmediate:
		if !percentageInRange(p.DownPaymentPercentage) {
			return &PlanConfigError{PlanID: p.ID, Field: "down_payment_percentage",
				Detail: "must be in (0, 100]"}
		}
	}
	return nil
}

func percentageInRange(pct decimal.Decimal) bool {
	return pct.IsPositive() && pct.LessThanOrEqual(hundred)
}

// MonthlyRate converts the annual percentage rate to a periodic monthly rate
// at full precision: r = annual / 100 / 12.
func (p FinancingPlan) MonthlyRate() decimal.Decimal {
	// DivisionPrecision in shopspring/decimal defaults to 16 digits, which
	// is more than enough headroom above currency precision for 60 periods.
	return p.AnnualInterestRate.Div(hundred).Div(twelve)
}

// MinimumDownPayment returns the smallest acceptable down payment for an
// immediate-plan request at the given vehicle price, rounded to cents.
func (p FinancingPlan) MinimumDownPayment(vehiclePrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(vehiclePrice.Mul(p.DownPaymentPercentage).Div(hundred))
}

// =============================================================================
// REQUEST - One calculation call
// =============================================================================

// CalculationRequest carries the caller-supplied parameters for a single
// schedule calculation. DownPayment is only meaningful for immediate plans;
// nil means "use the plan minimum".
type CalculationRequest struct {
	PlanType     PlanType
	VehiclePrice decimal.Decimal
	TermMonths   int
	DownPayment  *decimal.Decimal
}

// =============================================================================
// RESULT - Schedule rows and summary totals
// =============================================================================

// PaymentScheduleItem is one billing period of the amortization schedule.
type PaymentScheduleItem struct {
	// PaymentNumber is 1-based and contiguous: 1..TermMonths.
	PaymentNumber int

	Principal        decimal.Decimal
	Interest         decimal.Decimal
	TotalPayment     decimal.Decimal
	RemainingBalance decimal.Decimal

	// IsAdjudicationEvent is true on exactly one row of a programmed
	// schedule: the month the vehicle is handed over.
	IsAdjudicationEvent bool
}

// CalculatorResult is the full output of one calculation.
//
// MonthlyPayment is constant across the schedule except possibly the final
// period, which absorbs accumulated rounding so the balance lands exactly
// at zero.
type CalculatorResult struct {
	PlanID       string
	PlanType     PlanType
	VehiclePrice decimal.Decimal
	TermMonths   int

	MonthlyPayment decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalAmount    decimal.Decimal

	Schedule []PaymentScheduleItem

	// Programmed plans only.
	AdjudicationMonth   int             // 0 when not applicable
	AdjudicationPayment decimal.Decimal // the adjudication row's TotalPayment

	// Immediate plans only.
	DownPayment    decimal.Decimal
	FinancedAmount decimal.Decimal
}
