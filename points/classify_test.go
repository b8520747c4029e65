package points_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rubenbolivar/llevateloexpress.com/points"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// TIMELINESS CLASSIFICATION TESTS
// =============================================================================

func TestClassifyPayment_Boundaries(t *testing.T) {
	// The late window is 1..LateDaysMax (default 5); day 6 is very late.
	cfg := points.DefaultConfig()

	cases := map[int]points.EventType{
		-10: points.EventAdvancePayment,
		-1:  points.EventAdvancePayment,
		0:   points.EventOnTimePayment,
		1:   points.EventLatePayment,
		5:   points.EventLatePayment,
		6:   points.EventVeryLatePayment,
		30:  points.EventVeryLatePayment,
	}
	for daysLate, want := range cases {
		assert.Equal(t, want, points.ClassifyPayment(daysLate, cfg), "daysLate=%d", daysLate)
	}
}

func TestClassifyPayment_CustomLateWindow(t *testing.T) {
	cfg := points.DefaultConfig()
	cfg.LateDaysMax = 3

	assert.Equal(t, points.EventLatePayment, points.ClassifyPayment(3, cfg))
	assert.Equal(t, points.EventVeryLatePayment, points.ClassifyPayment(4, cfg))
}

func TestPaymentEvent_DaysLate_DayGranularity(t *testing.T) {
	// GIVEN: Due and paid timestamps with times of day attached
	// WHEN: Computing lateness
	// THEN: Only the calendar day matters

	due := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)

	e := points.PaymentEvent{DueDate: due, PaidDate: time.Date(2026, time.April, 10, 23, 59, 0, 0, time.UTC)}
	assert.Equal(t, 0, e.DaysLate(), "same calendar day is on time")

	e = points.PaymentEvent{DueDate: due, PaidDate: day(2026, time.April, 11)}
	assert.Equal(t, 1, e.DaysLate())

	e = points.PaymentEvent{DueDate: due, PaidDate: day(2026, time.April, 8)}
	assert.Equal(t, -2, e.DaysLate())
}

// =============================================================================
// DOUBLE PAYMENT TESTS
// =============================================================================

func TestIsDoublePayment_FactorBoundary(t *testing.T) {
	// Default factor is 1.9: a 100 installment needs at least 190.
	cfg := points.DefaultConfig()
	scheduled := decimal.NewFromInt(100)

	assert.False(t, points.IsDoublePayment(decimal.NewFromFloat(189.99), scheduled, cfg))
	assert.True(t, points.IsDoublePayment(decimal.NewFromInt(190), scheduled, cfg))
	assert.True(t, points.IsDoublePayment(decimal.NewFromInt(250), scheduled, cfg))
}

func TestIsDoublePayment_SkippedWithoutAmounts(t *testing.T) {
	cfg := points.DefaultConfig()

	assert.False(t, points.IsDoublePayment(decimal.Zero, decimal.NewFromInt(100), cfg))
	assert.False(t, points.IsDoublePayment(decimal.NewFromInt(500), decimal.Zero, cfg))
}

// =============================================================================
// EVENT COMPOSITION TESTS
// =============================================================================

func TestEventsFor_OnTimeDoublePayment(t *testing.T) {
	// GIVEN: A payment on the due date covering two installments
	// WHEN: Deriving events
	// THEN: Both the on-time event and the double-payment bonus fire

	cfg := points.DefaultConfig()
	e := points.PaymentEvent{
		PaymentID:       "p-1",
		DueDate:         day(2026, time.May, 1),
		PaidDate:        day(2026, time.May, 1),
		Amount:          decimal.NewFromInt(1400),
		ScheduledAmount: decimal.NewFromInt(700),
	}

	events := points.EventsFor(e, cfg)
	assert.Equal(t, []points.EventType{points.EventOnTimePayment, points.EventDoublePayment}, events)
}

func TestEventsFor_LateSinglePayment(t *testing.T) {
	cfg := points.DefaultConfig()
	e := points.PaymentEvent{
		PaymentID: "p-2",
		DueDate:   day(2026, time.May, 1),
		PaidDate:  day(2026, time.May, 4),
	}

	events := points.EventsFor(e, cfg)
	assert.Equal(t, []points.EventType{points.EventLatePayment}, events)
}
