// Package store provides an in-memory points.Store for tests and development.
package store

import (
	"context"
	"sync"

	"github.com/rubenbolivar/llevateloexpress.com/points"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	transactions map[points.BorrowerID][]points.Transaction
	idempotency  map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		transactions: make(map[points.BorrowerID][]points.Transaction),
		idempotency:  make(map[string]bool),
	}
}

// Append adds a single transaction. Append-only.
func (m *Memory) Append(_ context.Context, tx points.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(tx)
	return nil
}

// AppendBatch adds multiple transactions atomically.
func (m *Memory) AppendBatch(_ context.Context, txs []points.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check all idempotency keys first so the batch is all-or-nothing.
	for _, tx := range txs {
		if tx.IdempotencyKey != "" && m.idempotency[tx.IdempotencyKey] {
			return points.ErrDuplicateIdempotencyKey
		}
	}
	for _, tx := range txs {
		m.appendLocked(tx)
	}
	return nil
}

func (m *Memory) appendLocked(tx points.Transaction) {
	m.transactions[tx.BorrowerID] = append(m.transactions[tx.BorrowerID], tx)
	if tx.IdempotencyKey != "" {
		m.idempotency[tx.IdempotencyKey] = true
	}
}

// Load returns the borrower's transactions in append order.
func (m *Memory) Load(_ context.Context, borrowerID points.BorrowerID) ([]points.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]points.Transaction, len(m.transactions[borrowerID]))
	copy(result, m.transactions[borrowerID])
	return result, nil
}

// Exists reports whether an idempotency key has been seen.
func (m *Memory) Exists(_ context.Context, idempotencyKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idempotency[idempotencyKey], nil
}

var _ points.Store = (*Memory)(nil)
