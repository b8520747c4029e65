/*
store.go - Persistence interface for point transactions

PURPOSE:
  Defines the contract between the ledger and its storage. The interface
  is append-only by construction: there is no Update and no Delete.

IMPLEMENTATIONS:
  - store/memory.go (points/store):  In-memory, for tests and development
  - store/sqlite (top level):        SQLite, for production

SEE ALSO:
  - ledger.go: The higher-level API over a Store
*/
package points

import "context"

// Store persists point transactions. APPEND-ONLY: no Update, no Delete.
type Store interface {
	// Append persists one transaction.
	Append(ctx context.Context, tx Transaction) error

	// AppendBatch persists several transactions atomically. Used when one
	// payment produces multiple events (e.g. on-time + double payment).
	AppendBatch(ctx context.Context, txs []Transaction) error

	// Load returns all transactions for a borrower, oldest first.
	Load(ctx context.Context, borrowerID BorrowerID) ([]Transaction, error)

	// Exists reports whether an idempotency key has been seen.
	Exists(ctx context.Context, idempotencyKey string) (bool, error)
}
