package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmarieta/chatarra/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const entryColumns = `id, kind, amount, description, employee, transaction_id, timestamp, created_at`

func (s *Store) Insert(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, kind, amount, description, employee, transaction_id, timestamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.ID,
		e.Kind,
		e.Amount,
		e.Description,
		e.Employee,
		e.TransactionID,
		e.Timestamp,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting ledger entry: %w", err)
	}

	return nil
}

// InsertEffect relies on the partial unique index on transaction_id for
// kind = 'transaction_effect': a second completion of the same transaction
// hits ON CONFLICT DO NOTHING and reports posted = false.
func (s *Store) InsertEffect(ctx context.Context, e *ledger.Entry) (bool, error) {
	query := `
		INSERT INTO ledger_entries (id, kind, amount, description, employee, transaction_id, timestamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (transaction_id) WHERE kind = 'transaction_effect' DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Kind,
		e.Amount,
		e.Description,
		e.Employee,
		e.TransactionID,
		e.Timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("inserting transaction effect: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking effect insert: %w", err)
	}

	return affected > 0, nil
}

func (s *Store) ExistsEffect(ctx context.Context, txID string) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ledger_entries
			WHERE kind = 'transaction_effect' AND transaction_id = $1
		)
	`, txID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking transaction effect: %w", err)
	}

	return exists, nil
}

// rangeClause appends timestamp bounds to query, reusing the positional
// argument style of the transaction store's list filter.
func rangeClause(query string, r ledger.Range, args []any) (string, []any) {
	argIdx := len(args) + 1

	if r.From != nil {
		query += fmt.Sprintf(" AND timestamp >= $%d", argIdx)

		args = append(args, *r.From)
		argIdx++
	}

	if r.To != nil {
		query += fmt.Sprintf(" AND timestamp < $%d", argIdx)

		args = append(args, *r.To)
	}

	return query, args
}

func (s *Store) SumAmounts(ctx context.Context, r ledger.Range) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE TRUE`

	query, args := rangeClause(query, r, nil)

	var sum int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing ledger entries: %w", err)
	}

	return sum, nil
}

func (s *Store) SumByKind(ctx context.Context, r ledger.Range) (ledger.Subtotals, error) {
	query := `
		SELECT kind,
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0),
			COALESCE(SUM(amount) FILTER (WHERE amount <= 0), 0)
		FROM ledger_entries WHERE TRUE`

	query, args := rangeClause(query, r, nil)
	query += " GROUP BY kind"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ledger.Subtotals{}, fmt.Errorf("summing ledger entries by kind: %w", err)
	}
	defer rows.Close()

	var totals ledger.Subtotals

	for rows.Next() {
		var (
			kind     ledger.Kind
			positive int64
			negative int64
		)

		if err := rows.Scan(&kind, &positive, &negative); err != nil {
			return ledger.Subtotals{}, fmt.Errorf("scanning subtotal row: %w", err)
		}

		switch kind {
		case ledger.KindOpening:
			totals.Opening += positive + negative
		case ledger.KindTransactionEffect:
			totals.TransactionIncome += positive
			totals.TransactionExpense += negative
		case ledger.KindGeneralExpense:
			totals.GeneralExpense += positive + negative
		case ledger.KindAdjustment:
			totals.Adjustment += positive + negative
		}
	}

	if err := rows.Err(); err != nil {
		return ledger.Subtotals{}, fmt.Errorf("iterating subtotal rows: %w", err)
	}

	return totals, nil
}

func (s *Store) ListEntries(ctx context.Context, r ledger.Range) ([]*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE TRUE`

	query, args := rangeClause(query, r, nil)
	query += " ORDER BY timestamp ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		var (
			e    ledger.Entry
			txID sql.NullString
		)

		if err := rows.Scan(
			&e.ID, &e.Kind, &e.Amount, &e.Description, &e.Employee,
			&txID, &e.Timestamp, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		if txID.Valid {
			e.TransactionID = &txID.String
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger entries: %w", err)
	}

	return entries, nil
}
