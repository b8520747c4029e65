package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubenbolivar/llevateloexpress.com/finance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return finance.MustDecimal(s)
}

func programmedPlan(annualRate, adjudicationPct string) finance.FinancingPlan {
	plan := finance.DefaultProgrammedPlan("compra-programada", "Compra Programada", 12, 60, dec(annualRate))
	plan.AdjudicationPercentage = dec(adjudicationPct)
	return plan
}

func immediatePlan(annualRate string) finance.FinancingPlan {
	return finance.DefaultImmediatePlan("credito-inmediato", "Crédito Inmediato", 6, 36, dec(annualRate))
}

// sumPrincipal folds the rounded principal column the way a statement would.
func sumPrincipal(schedule []finance.PaymentScheduleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range schedule {
		total = total.Add(item.Principal)
	}
	return total
}

func assertDecimalEqual(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, actual.Equal(dec(expected)),
		"expected %s, got %s: %v", expected, actual, msgAndArgs)
}

// =============================================================================
// IMMEDIATE CREDIT TESTS
// =============================================================================

func TestCalculate_Immediate_StandardScenario(t *testing.T) {
	// GIVEN: 20,000 vehicle, 12% annual, 24 months, 30% minimum down payment
	// WHEN: Calculating with the default down payment
	// THEN: 6,000 down, 14,000 financed, 659.03 level payment, zero final balance

	plan := immediatePlan("12")
	result, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType:     finance.PlanImmediate,
		VehiclePrice: dec("20000"),
		TermMonths:   24,
	})
	require.NoError(t, err)

	assertDecimalEqual(t, "6000", result.DownPayment)
	assertDecimalEqual(t, "14000", result.FinancedAmount)
	assertDecimalEqual(t, "659.03", result.MonthlyPayment)

	require.Len(t, result.Schedule, 24)
	assert.True(t, result.Schedule[23].RemainingBalance.IsZero(),
		"final balance must be exactly zero, got %s", result.Schedule[23].RemainingBalance)

	// Round trip: the rounded principal column must rebuild the financed amount.
	assertDecimalEqual(t, "14000", sumPrincipal(result.Schedule))

	// Total amount is down payment plus every installment actually billed.
	expectedTotal := result.DownPayment
	for _, item := range result.Schedule {
		expectedTotal = expectedTotal.Add(item.TotalPayment)
	}
	assert.True(t, result.TotalAmount.Equal(expectedTotal))

	// No adjudication on immediate plans.
	assert.Equal(t, 0, result.AdjudicationMonth)
	for _, item := range result.Schedule {
		assert.False(t, item.IsAdjudicationEvent)
	}
}

func TestCalculate_Immediate_NilDownPaymentUsesPlanMinimum(t *testing.T) {
	// GIVEN: No down payment in the request
	// WHEN: Calculating
	// THEN: The plan minimum (30% of price) is used

	plan := immediatePlan("12")
	result, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType:     finance.PlanImmediate,
		VehiclePrice: dec("15000"),
		TermMonths:   12,
	})
	require.NoError(t, err)
	assertDecimalEqual(t, "4500", result.DownPayment)
	assertDecimalEqual(t, "10500", result.FinancedAmount)
}

func TestCalculate_Immediate_DownPaymentBoundary(t *testing.T) {
	// GIVEN: Minimum down payment is 6,000
	// WHEN: Offering one cent less, exactly the minimum, and more
	// THEN: Below is rejected, at and above are accepted

	plan := immediatePlan("12")
	req := finance.CalculationRequest{
		PlanType:     finance.PlanImmediate,
		VehiclePrice: dec("20000"),
		TermMonths:   24,
	}

	below := dec("5999.99")
	req.DownPayment = &below
	_, err := finance.Calculate(plan, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, finance.ErrInvalidDownPayment)
	var dpErr *finance.InvalidDownPaymentError
	require.ErrorAs(t, err, &dpErr)
	assertDecimalEqual(t, "6000", dpErr.Minimum)

	exact := dec("6000")
	req.DownPayment = &exact
	result, err := finance.Calculate(plan, req)
	require.NoError(t, err)
	assertDecimalEqual(t, "14000", result.FinancedAmount)

	above := dec("10000")
	req.DownPayment = &above
	result, err = finance.Calculate(plan, req)
	require.NoError(t, err)
	assertDecimalEqual(t, "10000", result.FinancedAmount)
}

func TestCalculate_Immediate_ZeroRateEvenDivision(t *testing.T) {
	// GIVEN: Zero interest and a financed amount dividing evenly
	// WHEN: Calculating
	// THEN: Every installment is identical and interest is zero throughout

	plan := immediatePlan("0")
	down := dec("6000")
	result, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType:     finance.PlanImmediate,
		VehiclePrice: dec("15000"),
		TermMonths:   12,
		DownPayment:  &down,
	})
	require.NoError(t, err)

	assertDecimalEqual(t, "750", result.MonthlyPayment)
	assert.True(t, result.TotalInterest.IsZero())
	for _, item := range result.Schedule {
		assertDecimalEqual(t, "750", item.TotalPayment, "period %d", item.PaymentNumber)
		assert.True(t, item.Interest.IsZero(), "period %d", item.PaymentNumber)
	}
}

// =============================================================================
// PROGRAMMED PURCHASE TESTS
// =============================================================================

func TestCalculate_Programmed_ZeroRateScenario(t *testing.T) {
	// GIVEN: 25,000 vehicle, 60 months, zero rate, 45% adjudication
	// WHEN: Calculating
	// THEN: 416.67 payment, adjudication at month 27, final period absorbs
	//       the rounding residue (416.47)

	plan := programmedPlan("0", "45")
	result, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType:     finance.PlanProgrammed,
		VehiclePrice: dec("25000"),
		TermMonths:   60,
	})
	require.NoError(t, err)

	assertDecimalEqual(t, "416.67", result.MonthlyPayment)
	assert.Equal(t, 27, result.AdjudicationMonth)
	assertDecimalEqual(t, "416.67", result.AdjudicationPayment)

	require.Len(t, result.Schedule, 60)

	// Exactly one row carries the adjudication flag, and it is row 27.
	flagged := 0
	for _, item := range result.Schedule {
		if item.IsAdjudicationEvent {
			flagged++
			assert.Equal(t, 27, item.PaymentNumber)
		}
	}
	assert.Equal(t, 1, flagged)

	// The final period absorbs the 60th-period rounding drift.
	last := result.Schedule[59]
	assertDecimalEqual(t, "416.47", last.Principal)
	assertDecimalEqual(t, "416.47", last.TotalPayment)
	assert.True(t, last.RemainingBalance.IsZero())

	assert.True(t, result.TotalInterest.IsZero())
	assertDecimalEqual(t, "25000", result.TotalAmount)
}

func TestCalculate_Programmed_AdjudicationScanMatchesThreshold(t *testing.T) {
	// GIVEN: A programmed schedule with interest
	// WHEN: Re-scanning cumulative principal against the exact threshold
	// THEN: The flagged month is the first period at or past the threshold

	plan := programmedPlan("18", "45")
	price := dec("32500")
	result, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType:     finance.PlanProgrammed,
		VehiclePrice: price,
		TermMonths:   48,
	})
	require.NoError(t, err)
	require.NotZero(t, result.AdjudicationMonth)

	threshold := price.Mul(dec("45")).Div(dec("100"))
	cumulative := decimal.Zero
	expectedMonth := 0
	for _, item := range result.Schedule {
		cumulative = cumulative.Add(item.Principal)
		if cumulative.GreaterThanOrEqual(threshold) {
			expectedMonth = item.PaymentNumber
			break
		}
	}
	assert.Equal(t, expectedMonth, result.AdjudicationMonth)

	// The adjudication payment is that row's billed amount, nothing extra.
	row := result.Schedule[result.AdjudicationMonth-1]
	assert.True(t, result.AdjudicationPayment.Equal(row.TotalPayment))
}

func TestCalculate_Programmed_AdjudicationMonotonicInPercentage(t *testing.T) {
	// GIVEN: Identical price/term/rate, increasing adjudication percentages
	// WHEN: Calculating each
	// THEN: The adjudication month never moves earlier

	previous := 0
	for _, pct := range []string{"25", "45", "60", "80"} {
		plan := programmedPlan("12", pct)
		result, err := finance.Calculate(plan, finance.CalculationRequest{
			PlanType:     finance.PlanProgrammed,
			VehiclePrice: dec("25000"),
			TermMonths:   60,
		})
		require.NoError(t, err)
		require.NotZero(t, result.AdjudicationMonth, "pct %s", pct)
		assert.GreaterOrEqual(t, result.AdjudicationMonth, previous, "pct %s", pct)
		previous = result.AdjudicationMonth
	}
}

func TestCalculate_Programmed_BalanceLandsAtZeroAcrossRates(t *testing.T) {
	// GIVEN: A grid of rates and terms
	// WHEN: Calculating each schedule
	// THEN: Contiguous payment numbers, exact-zero final balance, and the
	//       principal column rebuilding the price

	price := dec("18750.50")
	for _, rate := range []string{"0", "5.5", "12", "24", "36"} {
		for _, term := range []int{12, 24, 36, 60} {
			plan := programmedPlan(rate, "45")
			result, err := finance.Calculate(plan, finance.CalculationRequest{
				PlanType:     finance.PlanProgrammed,
				VehiclePrice: price,
				TermMonths:   term,
			})
			require.NoError(t, err, "rate %s term %d", rate, term)
			require.Len(t, result.Schedule, term)

			for i, item := range result.Schedule {
				assert.Equal(t, i+1, item.PaymentNumber)
			}
			assert.True(t, result.Schedule[term-1].RemainingBalance.IsZero(),
				"rate %s term %d: residual %s", rate, term,
				result.Schedule[term-1].RemainingBalance)
			assert.True(t, sumPrincipal(result.Schedule).Equal(price),
				"rate %s term %d: principal sum %s", rate, term,
				sumPrincipal(result.Schedule))
		}
	}
}

func TestCalculate_Programmed_SubCentPricePerPeriod(t *testing.T) {
	// GIVEN: A price so small the rounded payment overshoots the balance
	//        mid-schedule (0.06 over 12 periods pays 0.01 per month)
	// WHEN: Calculating at zero rate
	// THEN: Principal is capped at the remaining balance, so the column
	//       still sums to the price and no row pays more than it amortizes

	plan := programmedPlan("0", "45")
	result, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType:     finance.PlanProgrammed,
		VehiclePrice: dec("0.06"),
		TermMonths:   12,
	})
	require.NoError(t, err)
	require.Len(t, result.Schedule, 12)

	assertDecimalEqual(t, "0.01", result.MonthlyPayment)
	assertDecimalEqual(t, "0.06", sumPrincipal(result.Schedule))
	assert.True(t, result.Schedule[11].RemainingBalance.IsZero())

	for _, item := range result.Schedule {
		assert.False(t, item.Principal.IsNegative(),
			"period %d: negative principal %s", item.PaymentNumber, item.Principal)
		assert.True(t, item.TotalPayment.Equal(item.Principal.Add(item.Interest)),
			"period %d: total %s != principal %s + interest %s",
			item.PaymentNumber, item.TotalPayment, item.Principal, item.Interest)
	}

	// The balance is exhausted after period 6; later rows bill nothing.
	assertDecimalEqual(t, "0", result.Schedule[6].TotalPayment)
	assertDecimalEqual(t, "0.06", result.TotalAmount)
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestCalculate_RejectsInvalidInput(t *testing.T) {
	plan := programmedPlan("12", "45")

	// Non-positive price
	_, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType: finance.PlanProgrammed, VehiclePrice: decimal.Zero, TermMonths: 24,
	})
	assert.ErrorIs(t, err, finance.ErrInvalidPrice)

	_, err = finance.Calculate(plan, finance.CalculationRequest{
		PlanType: finance.PlanProgrammed, VehiclePrice: dec("-100"), TermMonths: 24,
	})
	assert.ErrorIs(t, err, finance.ErrInvalidPrice)

	// Term outside plan bounds, both sides
	for _, term := range []int{0, 11, 61} {
		_, err = finance.Calculate(plan, finance.CalculationRequest{
			PlanType: finance.PlanProgrammed, VehiclePrice: dec("20000"), TermMonths: term,
		})
		require.Error(t, err, "term %d", term)
		assert.ErrorIs(t, err, finance.ErrInvalidTerm)
		var termErr *finance.InvalidTermError
		require.ErrorAs(t, err, &termErr)
		assert.Equal(t, 12, termErr.Min)
		assert.Equal(t, 60, termErr.Max)
	}

	// Request plan type contradicting the plan
	_, err = finance.Calculate(plan, finance.CalculationRequest{
		PlanType: finance.PlanImmediate, VehiclePrice: dec("20000"), TermMonths: 24,
	})
	assert.ErrorIs(t, err, finance.ErrUnsupportedPlanType)
}

func TestCalculate_RejectsMisconfiguredPlan(t *testing.T) {
	plan := programmedPlan("12", "45")
	plan.MinTermMonths = 48
	plan.MaxTermMonths = 12

	_, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType: finance.PlanProgrammed, VehiclePrice: dec("20000"), TermMonths: 24,
	})
	assert.ErrorIs(t, err, finance.ErrPlanConfig)

	plan = programmedPlan("12", "0")
	_, err = finance.Calculate(plan, finance.CalculationRequest{
		PlanType: finance.PlanProgrammed, VehiclePrice: dec("20000"), TermMonths: 24,
	})
	assert.ErrorIs(t, err, finance.ErrPlanConfig)
}

func TestClientErrorClassification(t *testing.T) {
	// Caller-correctable errors are client errors; configuration and
	// engine bugs are not.
	assert.True(t, finance.IsClientError(&finance.InvalidTermError{TermMonths: 5, Min: 12, Max: 60}))
	assert.True(t, finance.IsClientError(&finance.InvalidPriceError{Price: decimal.Zero}))
	assert.True(t, finance.IsClientError(&finance.InvalidDownPaymentError{}))
	assert.False(t, finance.IsClientError(&finance.PlanConfigError{}))
	assert.False(t, finance.IsClientError(&finance.ScheduleImbalanceError{}))
}
