/*
engine.go - Fixed-payment amortization for both financing modalities

PURPOSE:
  Calculate() turns a (FinancingPlan, CalculationRequest) pair into a
  CalculatorResult: the level monthly payment, the full period-by-period
  schedule, summary totals, and the modality-specific figures
  (adjudication month/payment or down payment/financed amount).

ALGORITHM (shared by both modalities):
  r = annualRate / 100 / 12                       (full precision)
  payment = P * r * (1+r)^n / ((1+r)^n - 1)       (annuity formula)
  payment = P / n                                 (when r == 0)

  Each period:
    interest  = round(balance * r)
    principal = payment - interest
    balance  -= principal

  The FINAL period is adjusted so the balance lands exactly at zero:
    principal = balance, payment = principal + interest.
  All accumulated rounding drift is absorbed there, which keeps the
  round-trip invariant (sum of principal == amount financed) exact.

MODALITY DIFFERENCES:
  programmed: the full vehicle price is amortized; a forward scan over the
    finished schedule finds the first period where cumulative principal
    reaches adjudicationPercentage * price. That row is marked as the
    adjudication event. The scan never alters the schedule, and the
    schedule is NOT re-amortized after the vehicle is handed over.
  immediate: the financed amount (price - down payment) is amortized; the
    down payment is validated against the plan minimum first.

WAITING DAYS:
  A borrower's points standing can shrink the administrative delay before
  the vehicle is released, but that adjustment moves calendar dates only
  (see calendar.go). It never moves the adjudication month.

SEE ALSO:
  - types.go:    Input/output types and the rounding rule
  - calendar.go: Due dates and the waiting-days release date
*/
package finance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY POINT
// =============================================================================

// Calculate produces the payment schedule for the request under the plan.
// It is pure and deterministic: same inputs, same output, no side effects.
//
// Validation happens before any schedule work; on error the result is nil
// and no partial schedule is returned.
func Calculate(plan FinancingPlan, req CalculationRequest) (*CalculatorResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if req.PlanType != "" && req.PlanType != plan.Type {
		return nil, &UnsupportedPlanTypeError{PlanType: string(req.PlanType)}
	}
	if !req.VehiclePrice.IsPositive() {
		return nil, &InvalidPriceError{Price: req.VehiclePrice}
	}
	if req.TermMonths < plan.MinTermMonths || req.TermMonths > plan.MaxTermMonths {
		return nil, &InvalidTermError{
			TermMonths: req.TermMonths,
			Min:        plan.MinTermMonths,
			Max:        plan.MaxTermMonths,
		}
	}

	switch plan.Type {
	case PlanProgrammed:
		return calculateProgrammed(plan, req)
	case PlanImmediate:
		return calculateImmediate(plan, req)
	default:
		// Unreachable: plan.Validate() already rejected unknown types.
		return nil, &UnsupportedPlanTypeError{PlanType: string(plan.Type)}
	}
}

// =============================================================================
// PROGRAMMED PURCHASE - full price amortized, adjudication mid-schedule
// =============================================================================

func calculateProgrammed(plan FinancingPlan, req CalculationRequest) (*CalculatorResult, error) {
	price := req.VehiclePrice
	rate := plan.MonthlyRate()

	schedule, payment, err := buildSchedule(price, rate, req.TermMonths)
	if err != nil {
		return nil, err
	}

	// Forward scan: first period where cumulative principal reaches the
	// adjudication threshold. The threshold is kept at full precision; the
	// cumulative sum uses the already-rounded schedule values the customer
	// will actually pay.
	threshold := price.Mul(plan.AdjudicationPercentage).Div(hundred)
	adjudicationMonth := 0
	adjudicationPayment := zero
	cumulative := zero
	for i := range schedule {
		cumulative = cumulative.Add(schedule[i].Principal)
		if cumulative.GreaterThanOrEqual(threshold) {
			adjudicationMonth = schedule[i].PaymentNumber
			adjudicationPayment = schedule[i].TotalPayment
			schedule[i].IsAdjudicationEvent = true
			break
		}
	}

	totalInterest, totalPayments := sumSchedule(schedule)

	return &CalculatorResult{
		PlanID:              plan.ID,
		PlanType:            PlanProgrammed,
		VehiclePrice:        price,
		TermMonths:          req.TermMonths,
		MonthlyPayment:      payment,
		TotalInterest:       totalInterest,
		TotalAmount:         totalPayments,
		Schedule:            schedule,
		AdjudicationMonth:   adjudicationMonth,
		AdjudicationPayment: adjudicationPayment,
	}, nil
}

// =============================================================================
// IMMEDIATE CREDIT - down payment upfront, remainder amortized
// =============================================================================

func calculateImmediate(plan FinancingPlan, req CalculationRequest) (*CalculatorResult, error) {
	price := req.VehiclePrice
	minDown := plan.MinimumDownPayment(price)

	down := minDown
	if req.DownPayment != nil {
		down = RoundMoney(*req.DownPayment)
		if down.LessThan(minDown) {
			return nil, &InvalidDownPaymentError{Provided: down, Minimum: minDown}
		}
	}

	financed := price.Sub(down)
	rate := plan.MonthlyRate()

	schedule, payment, err := buildSchedule(financed, rate, req.TermMonths)
	if err != nil {
		return nil, err
	}

	totalInterest, totalPayments := sumSchedule(schedule)

	return &CalculatorResult{
		PlanID:         plan.ID,
		PlanType:       PlanImmediate,
		VehiclePrice:   price,
		TermMonths:     req.TermMonths,
		MonthlyPayment: payment,
		TotalInterest:  totalInterest,
		TotalAmount:    down.Add(totalPayments),
		Schedule:       schedule,
		DownPayment:    down,
		FinancedAmount: financed,
	}, nil
}

// =============================================================================
// SCHEDULE CONSTRUCTION
// =============================================================================

// levelPayment computes the constant monthly payment for amortizing principal
// over n periods at monthly rate r, rounded once to currency precision.
func levelPayment(principal, r decimal.Decimal, n int) decimal.Decimal {
	if r.IsZero() {
		return RoundMoney(principal.Div(decimal.NewFromInt(int64(n))))
	}
	// P * r * (1+r)^n / ((1+r)^n - 1)
	factor := one.Add(r).Pow(decimal.NewFromInt(int64(n)))
	raw := principal.Mul(r).Mul(factor).Div(factor.Sub(one))
	return RoundMoney(raw)
}

// buildSchedule amortizes principal over termMonths, absorbing all rounding
// residue into the final period so the balance reaches exactly zero.
func buildSchedule(principal, rate decimal.Decimal, termMonths int) ([]PaymentScheduleItem, decimal.Decimal, error) {
	payment := levelPayment(principal, rate, termMonths)

	schedule := make([]PaymentScheduleItem, 0, termMonths)
	balance := principal

	for period := 1; period <= termMonths; period++ {
		interest := RoundMoney(balance.Mul(rate))
		principalPart := payment.Sub(interest)
		total := payment

		if period == termMonths || principalPart.GreaterThan(balance) {
			// Final period lands the balance exactly at zero. Earlier
			// periods take this path only on degenerate inputs (price
			// under one cent per period) where the rounded payment
			// overshoots the remaining balance; capping the principal
			// keeps its column summing to the amount financed.
			principalPart = balance
			total = principalPart.Add(interest)
		}

		balance = balance.Sub(principalPart)

		schedule = append(schedule, PaymentScheduleItem{
			PaymentNumber:    period,
			Principal:        principalPart,
			Interest:         interest,
			TotalPayment:     total,
			RemainingBalance: balance,
		})
	}

	if !balance.IsZero() {
		return nil, zero, &ScheduleImbalanceError{Residual: balance}
	}
	return schedule, payment, nil
}

func sumSchedule(schedule []PaymentScheduleItem) (totalInterest, totalPayments decimal.Decimal) {
	totalInterest = zero
	totalPayments = zero
	for _, item := range schedule {
		totalInterest = totalInterest.Add(item.Interest)
		totalPayments = totalPayments.Add(item.TotalPayment)
	}
	return totalInterest, totalPayments
}
