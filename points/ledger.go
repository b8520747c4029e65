/*
ledger.go - Append-only point transaction log

PURPOSE:
  The Ledger is the source of truth for borrower points. Every balance
  change is an appended Transaction; CurrentPoints is computed by folding
  the history (see Summarize in types.go), never read from a counter.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, no Delete. Corrections are manual_adjustment
     entries with the opposite sign.
  2. IDEMPOTENT: A transaction with an already-seen idempotency key is
     rejected, so payment-webhook retries cannot double-award points.
  3. SERIALIZED PER BORROWER: Two payment events for the same borrower
     never race. The ledger holds a per-borrower lock around the
     check-then-append sequence, so concurrent in-process callers are
     safe without external coordination. Reads take no lock.

SEE ALSO:
  - store.go:        Persistence interface
  - store/memory.go: In-memory Store for tests and development
  - store/sqlite:    Production persistence (top-level store/sqlite package)
*/
package points

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDuplicateIdempotencyKey is returned when a transaction with the same
	// idempotency key already exists. Expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrUnknownEventType is returned for an event type outside the closed set.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrNoConfiguredDelta is returned when Record is called with an event
	// type that has no configured delta (manual adjustments).
	ErrNoConfiguredDelta = errors.New("event type has no configured delta")
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is the borrower-points transaction log.
type Ledger interface {
	// Append adds a fully-formed transaction. The ONLY write operation.
	Append(ctx context.Context, tx Transaction) error

	// History returns all transactions for a borrower in append order.
	History(ctx context.Context, borrowerID BorrowerID) ([]Transaction, error)

	// Summary folds the borrower's history into the derived balance.
	Summary(ctx context.Context, borrowerID BorrowerID) (Summary, error)
}

// DefaultLedger implements Ledger over a Store, adding idempotency checks,
// per-borrower append serialization, and delta lookup from Config.
type DefaultLedger struct {
	store  Store
	config Config

	mu    sync.Mutex
	locks map[BorrowerID]*sync.Mutex
}

// NewLedger creates a ledger over the given store.
func NewLedger(store Store, cfg Config) *DefaultLedger {
	return &DefaultLedger{
		store:  store,
		config: cfg,
		locks:  make(map[BorrowerID]*sync.Mutex),
	}
}

// Append adds a transaction after validating its type and idempotency key.
func (l *DefaultLedger) Append(ctx context.Context, tx Transaction) error {
	if !tx.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, tx.Type)
	}
	if tx.ID == "" {
		tx.ID = newTransactionID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	unlock := l.lockBorrower(tx.BorrowerID)
	defer unlock()

	if tx.IdempotencyKey != "" {
		exists, err := l.store.Exists(ctx, tx.IdempotencyKey)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateIdempotencyKey
		}
	}
	return l.store.Append(ctx, tx)
}

// Record appends a transaction for an event whose delta comes from
// configuration. Use RecordAdjustment for manual, signed corrections.
func (l *DefaultLedger) Record(ctx context.Context, borrowerID BorrowerID, event EventType, reason, relatedPaymentID, idempotencyKey string) (Transaction, error) {
	delta, ok := l.config.Delta(event)
	if !ok {
		return Transaction{}, fmt.Errorf("%w: %q", ErrNoConfiguredDelta, event)
	}
	tx := Transaction{
		ID:               newTransactionID(),
		BorrowerID:       borrowerID,
		Type:             event,
		Points:           delta,
		Reason:           reason,
		RelatedPaymentID: relatedPaymentID,
		IdempotencyKey:   idempotencyKey,
		CreatedAt:        time.Now().UTC(),
	}
	if err := l.Append(ctx, tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// RecordBatch appends the transactions for every event one payment produced
// as a single atomic write, deriving each idempotency key as
// "<idempotencyKey>:<event>". Events already recorded under their keys are
// skipped, so a retry after a partial failure appends exactly the events
// that are still missing; when nothing is missing the whole batch is a
// duplicate. Returns the transactions actually appended.
func (l *DefaultLedger) RecordBatch(ctx context.Context, borrowerID BorrowerID, events []EventType, reason, relatedPaymentID, idempotencyKey string) ([]Transaction, error) {
	if len(events) == 0 {
		return nil, nil
	}
	txs := make([]Transaction, 0, len(events))
	for _, event := range events {
		delta, ok := l.config.Delta(event)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoConfiguredDelta, event)
		}
		key := ""
		if idempotencyKey != "" {
			key = fmt.Sprintf("%s:%s", idempotencyKey, event)
		}
		txs = append(txs, Transaction{
			ID:               newTransactionID(),
			BorrowerID:       borrowerID,
			Type:             event,
			Points:           delta,
			Reason:           reason,
			RelatedPaymentID: relatedPaymentID,
			IdempotencyKey:   key,
			CreatedAt:        time.Now().UTC(),
		})
	}

	unlock := l.lockBorrower(borrowerID)
	defer unlock()

	pending := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IdempotencyKey != "" {
			exists, err := l.store.Exists(ctx, tx.IdempotencyKey)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
		}
		pending = append(pending, tx)
	}
	if len(pending) == 0 {
		return nil, ErrDuplicateIdempotencyKey
	}
	if err := l.store.AppendBatch(ctx, pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// RecordAdjustment appends a signed manual correction.
func (l *DefaultLedger) RecordAdjustment(ctx context.Context, borrowerID BorrowerID, pointsDelta int, reason string) (Transaction, error) {
	tx := Transaction{
		ID:         newTransactionID(),
		BorrowerID: borrowerID,
		Type:       EventManualAdjustment,
		Points:     pointsDelta,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.Append(ctx, tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// History returns the borrower's transactions in append order.
func (l *DefaultLedger) History(ctx context.Context, borrowerID BorrowerID) ([]Transaction, error) {
	return l.store.Load(ctx, borrowerID)
}

// Summary folds the full history into the derived balance.
func (l *DefaultLedger) Summary(ctx context.Context, borrowerID BorrowerID) (Summary, error) {
	txs, err := l.store.Load(ctx, borrowerID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(borrowerID, txs, l.config), nil
}

// Config returns the ledger's injected configuration.
func (l *DefaultLedger) Config() Config { return l.config }

// lockBorrower takes the per-borrower append lock and returns its unlock.
func (l *DefaultLedger) lockBorrower(id BorrowerID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// =============================================================================
// ID GENERATION
// =============================================================================

var txCounter atomic.Uint64

func newTransactionID() TransactionID {
	n := txCounter.Add(1)
	return TransactionID(fmt.Sprintf("ptx-%d-%d", time.Now().UnixNano(), n))
}
