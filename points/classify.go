/*
classify.go - Payment timeliness classification

PURPOSE:
  The payment-verification workflow reports each verified payment with its
  due date and received date. This file turns that pair into the event
  type the ledger records. Classification is pure; the caller appends the
  resulting event.

CLASSIFICATION (daysLate = received - due, in days):
  daysLate < 0                advance_payment
  daysLate == 0               on_time_payment
  1 <= daysLate <= max        late_payment       (max = Config.LateDaysMax)
  daysLate > max              very_late_payment

  Independently, a payment amount of at least DoublePaymentFactor times
  the scheduled installment earns an additional double_payment event.

SEE ALSO:
  - config.go: LateDaysMax and DoublePaymentFactor
  - ledger.go: Record() for appending the classified event
*/
package points

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEvent describes one verified payment as reported by the external
// payment-verification workflow.
type PaymentEvent struct {
	PaymentID string
	DueDate   time.Time
	PaidDate  time.Time

	// Amount actually received, and the installment that was scheduled.
	// Both zero-valued when the caller does not track amounts; double
	// payment detection is skipped in that case.
	Amount          decimal.Decimal
	ScheduledAmount decimal.Decimal
}

// DaysLate returns the whole days between due date and paid date; negative
// means the payment arrived early. Dates are compared at day granularity
// in UTC.
func (e PaymentEvent) DaysLate() int {
	due := truncateToDay(e.DueDate)
	paid := truncateToDay(e.PaidDate)
	return int(paid.Sub(due).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ClassifyPayment maps a payment's timeliness to its event type.
func ClassifyPayment(daysLate int, cfg Config) EventType {
	switch {
	case daysLate < 0:
		return EventAdvancePayment
	case daysLate == 0:
		return EventOnTimePayment
	case daysLate <= cfg.LateDaysMax:
		return EventLatePayment
	default:
		return EventVeryLatePayment
	}
}

// IsDoublePayment reports whether a received amount covers the scheduled
// installment at least DoublePaymentFactor times over. False when either
// amount is non-positive.
func IsDoublePayment(amount, scheduledAmount decimal.Decimal, cfg Config) bool {
	if !amount.IsPositive() || !scheduledAmount.IsPositive() {
		return false
	}
	return amount.GreaterThanOrEqual(scheduledAmount.Mul(cfg.DoublePaymentFactor))
}

// EventsFor returns the full set of events one verified payment produces:
// the timeliness event, plus double_payment when the amount qualifies.
func EventsFor(e PaymentEvent, cfg Config) []EventType {
	events := []EventType{ClassifyPayment(e.DaysLate(), cfg)}
	if IsDoublePayment(e.Amount, e.ScheduledAmount, cfg) {
		events = append(events, EventDoublePayment)
	}
	return events
}
