/*
Package sqlite provides SQLite-backed persistence for the financing service.

PURPOSE:
  Implements points.Store (the append-only transaction log) plus the two
  service-owned tables: financing plan configurations and saved
  calculator simulations. The same patterns apply to PostgreSQL; only
  minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The point_transactions table has no UPDATE and no DELETE paths in this
  package. Corrections happen through new manual_adjustment rows. The
  idempotency_key column carries a UNIQUE index, so a retried append
  fails at the database even if two processes race past the in-memory
  check.

KEY TABLES:
  point_transactions: Immutable ledger of borrower point movements
  financing_plans:    Plan configurations as JSON documents (versioned
                      by updated_at; the factory package parses them)
  simulations:        Saved calculator results per borrower

WAL MODE:
  Opened with WAL so readers don't block the single writer.

USAGE:
  st, err := sqlite.New("./data/llevatelo.db")   // ":memory:" for tests
  if err != nil { ... }
  defer st.Close()
  ledger := points.NewLedger(st, points.DefaultConfig())

SEE ALSO:
  - points/store.go: The interface this implements
  - points/store/memory.go: In-memory equivalent for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rubenbolivar/llevateloexpress.com/points"
)

// timeLayout keeps fractional seconds fixed-width so the stored strings
// sort lexicographically in timestamp order (RFC3339Nano trims trailing
// zeros and would not).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements persistence over a single SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a SQLite store. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Point transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS point_transactions (
		id TEXT PRIMARY KEY,
		borrower_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		points INTEGER NOT NULL,
		reason TEXT,
		related_payment_id TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_point_transactions_borrower
		ON point_transactions(borrower_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_point_transactions_payment
		ON point_transactions(related_payment_id)
		WHERE related_payment_id IS NOT NULL AND related_payment_id != '';

	-- Financing plans (JSON documents, parsed by the factory package)
	CREATE TABLE IF NOT EXISTS financing_plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		plan_type TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Saved calculator simulations
	CREATE TABLE IF NOT EXISTS simulations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		borrower_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_simulations_borrower
		ON simulations(borrower_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// POINT TRANSACTIONS - points.Store implementation
// =============================================================================

// Append persists one point transaction.
func (s *Store) Append(ctx context.Context, tx points.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendTx(ctx, s.db, tx)
}

// AppendBatch persists several transactions atomically.
func (s *Store) AppendBatch(ctx context.Context, txs []points.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, tx := range txs {
		if err := appendTx(ctx, dbTx, tx); err != nil {
			dbTx.Rollback()
			return err
		}
	}
	return dbTx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func appendTx(ctx context.Context, db execer, tx points.Transaction) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO point_transactions
			(id, borrower_id, event_type, points, reason, related_payment_id, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(tx.ID),
		string(tx.BorrowerID),
		string(tx.Type),
		tx.Points,
		tx.Reason,
		tx.RelatedPaymentID,
		nullable(tx.IdempotencyKey),
		tx.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return points.ErrDuplicateIdempotencyKey
	}
	return err
}

// nullable maps "" to NULL so the UNIQUE index ignores keyless rows.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Load returns a borrower's transactions, oldest first.
func (s *Store) Load(ctx context.Context, borrowerID points.BorrowerID) ([]points.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, borrower_id, event_type, points, reason, related_payment_id, idempotency_key, created_at
		FROM point_transactions
		WHERE borrower_id = ?
		ORDER BY created_at, id`,
		string(borrowerID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []points.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Exists reports whether an idempotency key has been seen.
func (s *Store) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM point_transactions WHERE idempotency_key = ?`,
		idempotencyKey,
	).Scan(&count)
	return count > 0, err
}

func scanTransaction(rows *sql.Rows) (points.Transaction, error) {
	var (
		tx             points.Transaction
		id, borrower   string
		eventType      string
		reason         sql.NullString
		paymentID      sql.NullString
		idempotencyKey sql.NullString
		createdAt      string
	)
	if err := rows.Scan(&id, &borrower, &eventType, &tx.Points, &reason, &paymentID, &idempotencyKey, &createdAt); err != nil {
		return points.Transaction{}, err
	}
	tx.ID = points.TransactionID(id)
	tx.BorrowerID = points.BorrowerID(borrower)
	tx.Type = points.EventType(eventType)
	tx.Reason = reason.String
	tx.RelatedPaymentID = paymentID.String
	tx.IdempotencyKey = idempotencyKey.String

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return points.Transaction{}, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	tx.CreatedAt = t
	return tx, nil
}

var _ points.Store = (*Store)(nil)

// =============================================================================
// FINANCING PLANS
// =============================================================================

// PlanRecord is a stored plan configuration. ConfigJSON is the document the
// factory package parses into a finance.FinancingPlan.
type PlanRecord struct {
	ID         string
	Name       string
	PlanType   string
	ConfigJSON string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SavePlan inserts or replaces a plan configuration.
func (s *Store) SavePlan(ctx context.Context, rec PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO financing_plans (id, name, plan_type, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			plan_type = excluded.plan_type,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Name, rec.PlanType, rec.ConfigJSON, now, now,
	)
	return err
}

// GetPlan returns one plan record, or sql.ErrNoRows.
func (s *Store) GetPlan(ctx context.Context, id string) (PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec PlanRecord
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, plan_type, config_json, created_at, updated_at
		FROM financing_plans WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &rec.PlanType, &rec.ConfigJSON, &createdAt, &updatedAt)
	if err != nil {
		return PlanRecord{}, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rec, nil
}

// ListPlans returns all plan records ordered by id.
func (s *Store) ListPlans(ctx context.Context) ([]PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, plan_type, config_json, created_at, updated_at
		FROM financing_plans ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []PlanRecord
	for rows.Next() {
		var rec PlanRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.PlanType, &rec.ConfigJSON, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// =============================================================================
// SIMULATIONS
// =============================================================================

// SimulationRecord is one saved calculator result.
type SimulationRecord struct {
	ID         int64
	BorrowerID string
	PlanID     string
	ResultJSON string
	CreatedAt  time.Time
}

// SaveSimulation stores a calculator result for a borrower.
func (s *Store) SaveSimulation(ctx context.Context, rec SimulationRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO simulations (borrower_id, plan_id, result_json, created_at)
		VALUES (?, ?, ?, ?)`,
		rec.BorrowerID, rec.PlanID, rec.ResultJSON,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSimulations returns a borrower's most recent simulations, newest first.
func (s *Store) ListSimulations(ctx context.Context, borrowerID string, limit int) ([]SimulationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, borrower_id, plan_id, result_json, created_at
		FROM simulations
		WHERE borrower_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		borrowerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []SimulationRecord
	for rows.Next() {
		var rec SimulationRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.BorrowerID, &rec.PlanID, &rec.ResultJSON, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
