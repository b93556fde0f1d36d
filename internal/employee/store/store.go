package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CountHandledSessions(ctx context.Context, employee string) (int64, error) {
	var count int64

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE employee = $1`, employee,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting handled sessions: %w", err)
	}

	return count, nil
}

func (s *Store) SumOutstandingAdvances(ctx context.Context, employee string) (int64, error) {
	var sum int64

	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM cash_advances WHERE employee = $1 AND settled_at IS NULL`,
		employee,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing outstanding advances: %w", err)
	}

	return sum, nil
}

// SaveStats upserts the projection row. The row is a cache, never a source
// of truth; clobbering it is always safe.
func (s *Store) SaveStats(ctx context.Context, employee string, sessions, advances int64) error {
	query := `
		INSERT INTO employee_stats (employee, handled_sessions, outstanding_advances, refreshed_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (employee) DO UPDATE
		SET handled_sessions = EXCLUDED.handled_sessions,
			outstanding_advances = EXCLUDED.outstanding_advances,
			refreshed_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, employee, sessions, advances); err != nil {
		return fmt.Errorf("saving employee stats: %w", err)
	}

	return nil
}

func (s *Store) MarkAdvanceSettled(ctx context.Context, advanceID int64) (string, error) {
	var employee string

	err := s.db.QueryRowContext(ctx, `
		UPDATE cash_advances
		SET settled_at = NOW()
		WHERE id = $1 AND settled_at IS NULL
		RETURNING employee
	`, advanceID).Scan(&employee)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("advance %d not found or already settled", advanceID)
		}

		return "", fmt.Errorf("marking advance settled: %w", err)
	}

	return employee, nil
}
