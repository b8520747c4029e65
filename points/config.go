/*
config.go - Injected configuration for the points system

PURPOSE:
  Point deltas per event type, classifier boundaries, and the balance
  floor are business-tunable values, not code. They are loaded from the
  configuration source (see factory package) and passed into every call
  that needs them; the algorithms never hard-code them.

DEFAULTS:
  initial            +100
  on_time_payment    +5
  advance_payment    +8
  late_payment        0     (1-5 days late: no bonus, no penalty)
  very_late_payment  -10    (more than 5 days late)
  double_payment     +12
  educational_course +10
  floor               0     (current points never drop below this)
*/
package points

import "github.com/shopspring/decimal"

// Config holds the tunable values of the points system.
type Config struct {
	// Deltas per event type. EventManualAdjustment has no configured delta;
	// its amount is supplied per transaction.
	InitialPoints           int
	OnTimePaymentPoints     int
	AdvancePaymentPoints    int
	LatePaymentPoints       int
	VeryLatePaymentPoints   int
	DoublePaymentPoints     int
	EducationalCoursePoints int

	// Floor is the lowest value CurrentPoints can report.
	Floor int

	// LateDaysMax separates late_payment from very_late_payment:
	// 1..LateDaysMax days late is "late", beyond is "very late".
	LateDaysMax int

	// DoublePaymentFactor: a payment of at least this multiple of the
	// scheduled installment counts as a double payment.
	DoublePaymentFactor decimal.Decimal
}

// DefaultConfig returns the standard business configuration.
func DefaultConfig() Config {
	return Config{
		InitialPoints:           100,
		OnTimePaymentPoints:     5,
		AdvancePaymentPoints:    8,
		LatePaymentPoints:       0,
		VeryLatePaymentPoints:   -10,
		DoublePaymentPoints:     12,
		EducationalCoursePoints: 10,
		Floor:                   0,
		LateDaysMax:             5,
		DoublePaymentFactor:     decimal.NewFromFloat(1.9),
	}
}

// Delta returns the configured point delta for an event type. The second
// return is false for manual adjustments (caller supplies the amount) and
// for unknown types.
func (c Config) Delta(t EventType) (int, bool) {
	switch t {
	case EventInitial:
		return c.InitialPoints, true
	case EventOnTimePayment:
		return c.OnTimePaymentPoints, true
	case EventAdvancePayment:
		return c.AdvancePaymentPoints, true
	case EventLatePayment:
		return c.LatePaymentPoints, true
	case EventVeryLatePayment:
		return c.VeryLatePaymentPoints, true
	case EventDoublePayment:
		return c.DoublePaymentPoints, true
	case EventEducationalCourse:
		return c.EducationalCoursePoints, true
	default:
		return 0, false
	}
}
