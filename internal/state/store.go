package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Load when no value has ever been stored for
// the keyword. Callers treat it as "start from zero".
var ErrNotFound = errors.New("state: no stored value")

// Store persists the last applied output value.
//
// It holds one row per output keyword. This node has a single output, so
// in practice the table contains at most one row; Save overwrites it.
//
// The store is only ever called from the control loop goroutine, matching
// the single-writer model of the rest of the node.
type Store struct {
	db      *sql.DB
	keyword string
}

// NewStore creates a store for the given output keyword.
//
// Parameters:
//   - db: Open database connection (migrations already applied)
//   - keyword: The output keyword rows are keyed by
func NewStore(db *sql.DB, keyword string) *Store {
	return &Store{
		db:      db,
		keyword: keyword,
	}
}

// Load returns the last persisted output value.
//
// Returns:
//   - int: The stored value (0..1024)
//   - error: ErrNotFound if nothing was ever stored, or a query error
func (s *Store) Load(ctx context.Context) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM output_state WHERE keyword = ?",
		s.keyword,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("loading output state: %w", err)
	}
	return value, nil
}

// Save persists the given output value, replacing any previous one.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - value: The applied value (0..1024)
//
// Returns:
//   - error: If the write fails
func (s *Store) Save(ctx context.Context, value int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO output_state (keyword, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(keyword) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, s.keyword, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving output state: %w", err)
	}
	return nil
}
