/*
Package points tracks borrower loyalty points driven by payment timeliness.

PURPOSE:
  Every verified payment event (on time, late, very late, in advance,
  double) and every non-payment event (enrollment, educational course,
  manual adjustment) appends one immutable transaction to a per-borrower
  ledger. A borrower's current balance is always a fold over that history,
  never a mutable counter - the ledger cannot drift from its own log.

KEY CONCEPTS IN THIS FILE (types.go):
  - EventType:   Closed enumeration of point-bearing events
  - Transaction: One immutable, append-only ledger entry
  - Summary:     Derived balance (current points, lifetime points)

DESIGN PRINCIPLES:
  1. Append-only: Transactions are never updated or deleted. Corrections
     are new manual_adjustment entries.
  2. Configuration over constants: Point deltas per event type, the balance
     floor, and the standing thresholds are injected configuration
     (see config.go), so business tuning never touches the algorithms.
  3. Derived state: Summary and standing are recomputed from history on
     every read; nothing derived is persisted.

SEE ALSO:
  - ledger.go:   Append and fold operations
  - classify.go: Payment timeliness -> EventType
  - standing.go: Points -> standing tier -> waiting days
*/
package points

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type BorrowerID string
type TransactionID string

// =============================================================================
// EVENT TYPES - Closed enumeration of point-bearing events
// =============================================================================

// EventType identifies what caused a point transaction. The set is closed;
// the points awarded per type are configuration (see Config).
type EventType string

const (
	// EventInitial is granted once at enrollment.
	EventInitial EventType = "initial"

	// EventOnTimePayment: payment received exactly on the due date.
	EventOnTimePayment EventType = "on_time_payment"

	// EventAdvancePayment: payment received before the due date.
	EventAdvancePayment EventType = "advance_payment"

	// EventLatePayment: received 1..LateDaysMax days late. Default delta is
	// zero: no bonus, no penalty.
	EventLatePayment EventType = "late_payment"

	// EventVeryLatePayment: received more than LateDaysMax days late.
	EventVeryLatePayment EventType = "very_late_payment"

	// EventDoublePayment: a period paid together with an extra installment.
	EventDoublePayment EventType = "double_payment"

	// EventEducationalCourse: completion of a financial-literacy module.
	EventEducationalCourse EventType = "educational_course"

	// EventManualAdjustment: administrative correction; the delta is signed
	// and supplied by the administrator, not by configuration.
	EventManualAdjustment EventType = "manual_adjustment"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventInitial, EventOnTimePayment, EventAdvancePayment, EventLatePayment,
		EventVeryLatePayment, EventDoublePayment, EventEducationalCourse,
		EventManualAdjustment:
		return true
	}
	return false
}

// =============================================================================
// TRANSACTION - Immutable ledger entry
// =============================================================================

// Transaction is one append-only point movement for a borrower. Once
// created it is never modified or deleted.
type Transaction struct {
	ID         TransactionID
	BorrowerID BorrowerID
	Type       EventType

	// Points is the signed delta this event applies.
	Points int

	// Reason is free text for display and audit.
	Reason string

	// RelatedPaymentID back-references the payment that triggered the event,
	// when there is one. It is a reference, never an ownership relation.
	RelatedPaymentID string

	// IdempotencyKey deduplicates retried appends. Empty disables the check.
	IdempotencyKey string

	CreatedAt time.Time
}

// =============================================================================
// SUMMARY - Derived balance, never persisted
// =============================================================================

// Summary is the derived point state for one borrower.
type Summary struct {
	BorrowerID BorrowerID

	// CurrentPoints is the sum of all deltas, clamped at the configured
	// floor. It never goes below the floor even if the literal sum would.
	CurrentPoints int

	// LifetimePoints sums positive deltas only; it is monotonically
	// non-decreasing and unaffected by penalties.
	LifetimePoints int

	TransactionCount int
	LastActivity     time.Time
}

// Summarize folds a borrower's ordered transaction history into a Summary.
// It is the single source of truth for balance math; the ledger and any
// cached summaries must agree with it.
func Summarize(borrowerID BorrowerID, txs []Transaction, cfg Config) Summary {
	total := 0
	lifetime := 0
	var last time.Time
	for _, tx := range txs {
		total += tx.Points
		if tx.Points > 0 {
			lifetime += tx.Points
		}
		if tx.CreatedAt.After(last) {
			last = tx.CreatedAt
		}
	}
	if total < cfg.Floor {
		total = cfg.Floor
	}
	return Summary{
		BorrowerID:       borrowerID,
		CurrentPoints:    total,
		LifetimePoints:   lifetime,
		TransactionCount: len(txs),
		LastActivity:     last,
	}
}
