package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmarieta/chatarra/internal/attachment"
	"github.com/dmarieta/chatarra/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	t.id, t.kind, t.status, t.session_type, t.subtotal, t.expenses, t.total,
	t.employee, t.customer_name, t.customer_kind, t.location,
	t.session_images, t.timestamp, t.completed_at, t.created_at
`

// scanTransaction reads a transaction row in selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx           transaction.Transaction
		kindStr      string
		statusStr    string
		sessionStr   string
		customerKind sql.NullString
		images       []byte
		completedAt  sql.NullTime
	)

	if err := s.Scan(
		&tx.ID, &kindStr, &statusStr, &sessionStr, &tx.Subtotal, &tx.Expenses, &tx.Total,
		&tx.Employee, &tx.CustomerName, &customerKind, &tx.Location,
		&images, &tx.Timestamp, &completedAt, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Kind = transaction.Kind(kindStr)
	tx.Status = transaction.Status(statusStr)
	tx.SessionType = transaction.SessionType(sessionStr)

	if customerKind.Valid {
		tx.CustomerKind = transaction.CustomerKind(customerKind.String)
	}

	if completedAt.Valid {
		tx.CompletedAt = &completedAt.Time
	}

	refs, err := decodeRefs(images)
	if err != nil {
		return nil, err
	}

	tx.Attachments = attachment.FromRefs(refs)

	return &tx, nil
}

// Attachment references are stored as JSONB arrays of strings.
func encodeRefs(payloads []attachment.Payload) ([]byte, error) {
	refs := attachment.Refs(payloads)
	if refs == nil {
		refs = []string{}
	}

	return json.Marshal(refs)
}

func decodeRefs(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var refs []string
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("decoding image references: %w", err)
	}

	return refs, nil
}

// isUniqueViolation reports a duplicate-key failure (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking transaction existence: %w", err)
	}

	return exists, nil
}

func (s *Store) Insert(ctx context.Context, tx *transaction.Transaction) error {
	images, err := encodeRefs(tx.Attachments)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (id, kind, status, session_type, subtotal, expenses, total,
			employee, customer_name, customer_kind, location, session_images, timestamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		tx.ID,
		tx.Kind,
		tx.Status,
		tx.SessionType,
		tx.Subtotal,
		tx.Expenses,
		tx.Total,
		tx.Employee,
		tx.CustomerName,
		nullString(string(tx.CustomerKind)),
		tx.Location,
		images,
		tx.Timestamp,
	).Scan(&tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting transaction %s: %w", tx.ID, transaction.ErrConflict)
		}

		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

// UpdateFields writes only the set members of f, building the SET clause
// the same way the list filter builds its WHERE clause.
func (s *Store) UpdateFields(ctx context.Context, id string, f transaction.Fields) error {
	var (
		sets []string
		args []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if f.Kind != nil {
		add("kind", *f.Kind)
	}

	if f.Status != nil {
		add("status", *f.Status)
	}

	if f.SessionType != nil {
		add("session_type", *f.SessionType)
	}

	if f.Subtotal != nil {
		add("subtotal", *f.Subtotal)
	}

	if f.Expenses != nil {
		add("expenses", *f.Expenses)
	}

	if f.Total != nil {
		add("total", *f.Total)
	}

	if f.Employee != nil {
		add("employee", *f.Employee)
	}

	if f.CustomerName != nil {
		add("customer_name", *f.CustomerName)
	}

	if f.CustomerKind != nil {
		add("customer_kind", *f.CustomerKind)
	}

	if f.Location != nil {
		add("location", *f.Location)
	}

	if f.Timestamp != nil {
		add("timestamp", *f.Timestamp)
	}

	if f.Attachments != nil {
		images, err := json.Marshal(f.Attachments)
		if err != nil {
			return fmt.Errorf("encoding image references: %w", err)
		}

		add("session_images", images)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)

	query := "UPDATE transactions SET "

	for i, set := range sets {
		if i > 0 {
			query += ", "
		}

		query += set
	}

	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}

	if affected == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

// Delete removes the row outright; items ride the cascade. Used by the
// conflict-recovery path, not by any user-facing operation.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

// ReplaceItems swaps the whole item set in one database transaction:
// delete everything, insert the new batch. Readers can observe the brief
// empty window only if they read outside a transaction.
func (s *Store) ReplaceItems(ctx context.Context, id string, items []transaction.LineItem) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning item replacement: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx,
		`DELETE FROM transaction_items WHERE transaction_id = $1`, id,
	); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}

	query := `
		INSERT INTO transaction_items (transaction_id, position, name, weight_grams, piece_count, unit_price, line_total, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i, item := range items {
		images, err := encodeRefs(item.Images)
		if err != nil {
			return err
		}

		if _, err := dbTx.ExecContext(ctx, query,
			id,
			i,
			item.Name,
			item.WeightGrams,
			item.PieceCount,
			item.UnitPrice,
			item.LineTotal,
			images,
		); err != nil {
			return fmt.Errorf("inserting item %d: %w", i, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing item replacement: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status transaction.Status, completedAt *time.Time) error {
	query := `
		UPDATE transactions
		SET status = $1, completed_at = COALESCE($2, completed_at)
		WHERE id = $3
	`

	res, err := s.db.ExecContext(ctx, query, status, completedAt, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking status update: %w", err)
	}

	if affected == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}

	tx.LineItems = items

	return tx, nil
}

func (s *Store) loadItems(ctx context.Context, id string) ([]transaction.LineItem, error) {
	query := `
		SELECT name, weight_grams, piece_count, unit_price, line_total, images
		FROM transaction_items
		WHERE transaction_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []transaction.LineItem

	for rows.Next() {
		var (
			item   transaction.LineItem
			images []byte
		)

		if err := rows.Scan(
			&item.Name, &item.WeightGrams, &item.PieceCount,
			&item.UnitPrice, &item.LineTotal, &images,
		); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		refs, err := decodeRefs(images)
		if err != nil {
			return nil, err
		}

		item.Images = attachment.FromRefs(refs)

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND t.kind = $%d", argIdx)

		args = append(args, *filter.Kind)
		argIdx++
	}

	if filter.Employee != nil {
		query += fmt.Sprintf(" AND t.employee = $%d", argIdx)

		args = append(args, *filter.Employee)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.timestamp >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.timestamp < $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.timestamp ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
