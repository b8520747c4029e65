package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubenbolivar/llevateloexpress.com/finance"
)

func TestPaymentDates_MonthlySteps(t *testing.T) {
	// GIVEN: A contract starting mid-month
	// WHEN: Generating 12 due dates
	// THEN: Each period is due one calendar month after the previous,
	//       keeping the day of month

	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	dates := finance.PaymentDates(start, 12)

	require.Len(t, dates, 12)
	assert.Equal(t, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC), dates[5])
	assert.Equal(t, time.Date(2027, time.January, 15, 0, 0, 0, 0, time.UTC), dates[11])

	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]), "dates must increase")
	}
}

func TestAdjudicationReleaseDate_ShiftsDaysNotMonths(t *testing.T) {
	// GIVEN: A programmed result adjudicating at month 27
	// WHEN: Applying tier waiting days
	// THEN: The release date is the month-27 due date plus the waiting days;
	//       the adjudication month itself never moves

	plan := programmedPlan("0", "45")
	result, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType:     finance.PlanProgrammed,
		VehiclePrice: dec("25000"),
		TermMonths:   60,
	})
	require.NoError(t, err)
	require.Equal(t, 27, result.AdjudicationMonth)

	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	due := start.AddDate(0, 27, 0)

	assert.Equal(t, due, finance.AdjudicationReleaseDate(result, start, 0))
	assert.Equal(t, due.AddDate(0, 0, 7), finance.AdjudicationReleaseDate(result, start, 7))
	assert.Equal(t, due.AddDate(0, 0, 45), finance.AdjudicationReleaseDate(result, start, 45))

	// Waiting days cannot be negative; a bad value clamps to zero.
	assert.Equal(t, due, finance.AdjudicationReleaseDate(result, start, -3))

	// Waiting days changed the date but result is untouched.
	assert.Equal(t, 27, result.AdjudicationMonth)
}

func TestAdjudicationReleaseDate_ZeroForImmediatePlans(t *testing.T) {
	plan := immediatePlan("12")
	result, err := finance.Calculate(plan, finance.CalculationRequest{
		PlanType:     finance.PlanImmediate,
		VehiclePrice: dec("20000"),
		TermMonths:   24,
	})
	require.NoError(t, err)

	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, finance.AdjudicationReleaseDate(result, start, 7).IsZero())
}
