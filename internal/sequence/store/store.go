package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// HighestNumber reads the highest sequence-shaped identifier with the
// prefix. Zero-padding to a fixed width makes lexicographic order match
// numeric order, so ORDER BY id is enough. Timestamp-fallback identifiers
// (PREFIX-T...) sort above padded ones and are excluded by the pattern.
func (s *Store) HighestNumber(ctx context.Context, prefix string) (int64, error) {
	query := `
		SELECT id FROM transactions
		WHERE id LIKE $1 AND id SIMILAR TO $2
		ORDER BY id DESC
		LIMIT 1
	`

	var id string

	err := s.db.QueryRowContext(ctx, query, prefix+"-%", prefix+"-[0-9]+").Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}

		return 0, fmt.Errorf("reading highest identifier: %w", err)
	}

	tail := strings.TrimPrefix(id, prefix+"-")

	n, err := strconv.ParseInt(tail, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing identifier %q: %w", id, err)
	}

	return n, nil
}
