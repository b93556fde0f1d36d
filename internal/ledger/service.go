package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Insert(ctx context.Context, e *Entry) error

	// InsertEffect appends a transaction_effect entry unless one already
	// exists for the same transaction, and reports whether a row was
	// written. This is the double-posting guard for retried completions.
	InsertEffect(ctx context.Context, e *Entry) (bool, error)

	ExistsEffect(ctx context.Context, txID string) (bool, error)
	SumAmounts(ctx context.Context, r Range) (int64, error)
	SumByKind(ctx context.Context, r Range) (Subtotals, error)
	ListEntries(ctx context.Context, r Range) ([]*Entry, error)
}

// Service derives balances by folding over the entry log. There is no
// stored running total anywhere; the sum of entry amounts is the only
// source of truth for the cash balance.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type AppendParams struct {
	Kind        Kind
	Amount      int64
	Description string
	Employee    string
	Timestamp   time.Time
}

// Append writes one immutable entry after checking the kind's sign
// convention. Transaction effects do not go through here; they are posted
// by PostTransactionEffect so the dedup guard applies.
func (s *Service) Append(ctx context.Context, params AppendParams) (*Entry, error) {
	switch params.Kind {
	case KindOpening, KindAdjustment:
	case KindGeneralExpense:
		if params.Amount > 0 {
			return nil, fmt.Errorf("%w: general expense must not be positive", ErrValidation)
		}
	case KindTransactionEffect:
		return nil, fmt.Errorf("%w: transaction effects are posted on completion", ErrValidation)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, params.Kind)
	}

	ts := params.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	e := &Entry{
		ID:          uuid.New(),
		Kind:        params.Kind,
		Amount:      params.Amount,
		Description: params.Description,
		Employee:    params.Employee,
		Timestamp:   ts,
	}

	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("appending ledger entry: %w", err)
	}

	return e, nil
}

// PostTransactionEffect appends the signed net cash impact of a completed
// transaction, exactly once per transaction. It reports whether this call
// wrote the entry; false means an effect was already on the ledger and the
// call was a no-op.
func (s *Service) PostTransactionEffect(ctx context.Context, txID string, amount int64, employee string, ts time.Time) (bool, error) {
	e := &Entry{
		ID:            uuid.New(),
		Kind:          KindTransactionEffect,
		Amount:        amount,
		Description:   fmt.Sprintf("transaction %s", txID),
		Employee:      employee,
		TransactionID: &txID,
		Timestamp:     ts,
	}

	posted, err := s.repo.InsertEffect(ctx, e)
	if err != nil {
		return false, fmt.Errorf("posting transaction effect: %w", err)
	}

	return posted, nil
}

// EffectExists reports whether a transaction already has its effect on
// the ledger. Cancellation uses it to detect the should-never-happen case
// of cancelling a posted transaction instead of silently accepting it.
func (s *Service) EffectExists(ctx context.Context, txID string) (bool, error) {
	return s.repo.ExistsEffect(ctx, txID)
}

// Balance is the sum of all entry amounts in the range. Always recomputed,
// never cached.
func (s *Service) Balance(ctx context.Context, r Range) (int64, error) {
	return s.repo.SumAmounts(ctx, r)
}

// Subtotals returns the per-category sums for the range.
func (s *Service) Subtotals(ctx context.Context, r Range) (Subtotals, error) {
	return s.repo.SumByKind(ctx, r)
}

// List returns the entries in the range, oldest first.
func (s *Service) List(ctx context.Context, r Range) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, r)
}
