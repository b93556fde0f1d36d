package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmarieta/chatarra/internal/attachment"
	"github.com/dmarieta/chatarra/internal/retry"
	"github.com/dmarieta/chatarra/internal/transaction/inflight"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=transaction
type Repository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, tx *Transaction) error

	// UpdateFields writes only the fields set in f, leaving everything
	// else untouched.
	UpdateFields(ctx context.Context, id string, f Fields) error

	Delete(ctx context.Context, id string) error
	ReplaceItems(ctx context.Context, id string, items []LineItem) error
	UpdateStatus(ctx context.Context, id string, status Status, completedAt *time.Time) error
	Get(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

// Sequencer hands out the next transaction identifier.
type Sequencer interface {
	Next(ctx context.Context) string
}

// LedgerPoster appends completed transactions' cash effects to the ledger.
type LedgerPoster interface {
	PostTransactionEffect(ctx context.Context, txID string, amount int64, employee string, ts time.Time) (bool, error)
	EffectExists(ctx context.Context, txID string) (bool, error)
}

// StatsRefresher recomputes an employee's cached aggregates. Best-effort:
// a refresh failure never fails the save that triggered it.
type StatsRefresher interface {
	RefreshStats(ctx context.Context, employee string) error
}

// Notifier is told after a successful commit that data changed. Delivery
// is not this engine's problem; the port is optional and decoupled from
// the write path's success or failure.
type Notifier interface {
	DataChanged(ctx context.Context, scope string)
}

// Fields is the partial-update mask for an existing transaction row.
// Nil members are left as they are.
type Fields struct {
	Kind         *Kind
	Status       *Status
	SessionType  *SessionType
	Subtotal     *int64
	Expenses     *int64
	Total        *int64
	Employee     *string
	CustomerName *string
	CustomerKind *CustomerKind
	Location     *string
	Timestamp    *time.Time
	Attachments  []string
}

type ListFilter struct {
	Status    *Status
	Kind      *Kind
	Employee  *string
	StartDate *time.Time
	EndDate   *time.Time
}

type Service struct {
	repo        Repository
	seq         Sequencer
	attachments *attachment.Pipeline
	ledger      LedgerPoster
	stats       StatsRefresher
	notifier    Notifier

	inflight *inflight.Group
	retry    retry.Policy
	now      func() time.Time
}

// NewService wires the save path. stats and notifier may be nil.
func NewService(repo Repository, seq Sequencer, attachments *attachment.Pipeline, ledger LedgerPoster, stats StatsRefresher, notifier Notifier) *Service {
	return &Service{
		repo:        repo,
		seq:         seq,
		attachments: attachments,
		ledger:      ledger,
		stats:       stats,
		notifier:    notifier,
		inflight:    inflight.New(time.Minute),
		retry:       retry.Default,
		now:         time.Now,
	}
}

type BeginParams struct {
	// ID resumes an existing session. Leave empty to open a new one.
	ID          string
	Kind        Kind
	SessionType SessionType
	Employee    string
	Location    string
}

// Begin opens a session. A new session gets its identifier assigned here,
// once, and it is immutable afterwards. Nothing is persisted until the
// first Save.
func (s *Service) Begin(ctx context.Context, params BeginParams) *Transaction {
	now := s.now()

	id := params.ID
	if id == "" {
		id = s.seq.Next(ctx)
	}

	return &Transaction{
		ID:          id,
		Kind:        params.Kind,
		Status:      StatusInProgress,
		SessionType: params.SessionType,
		Employee:    params.Employee,
		Location:    params.Location,
		Timestamp:   now,
		CreatedAt:   now,
	}
}

// Save persists the transaction and its line items as one logical unit and
// reports whether a new row was created. Concurrent saves of the same
// identity are serialized in-process; a duplicate-key race with another
// writer is recovered by deleting the partial row and retrying, up to the
// policy's bound. Attachment uploads degrade per item and never fail the
// save.
func (s *Service) Save(ctx context.Context, tx *Transaction) (bool, error) {
	if err := tx.Validate(); err != nil {
		return false, err
	}

	tx.Recalculate()

	s.materialize(ctx, tx)

	var created bool

	err := s.inflight.Do(ctx, tx.ID, func() error {
		var err error

		created, err = s.persist(ctx, tx)

		return err
	})
	if err != nil {
		return false, err
	}

	s.afterCommit(ctx, tx.Employee, "transactions")

	return created, nil
}

// materialize turns embedded payloads into stable references. After this
// every payload on the transaction is reference-only.
func (s *Service) materialize(ctx context.Context, tx *Transaction) {
	tx.Attachments = attachment.FromRefs(
		s.attachments.Materialize(ctx, tx.ID, tx.Attachments))

	for i := range tx.LineItems {
		owner := fmt.Sprintf("%s/items/%d", tx.ID, i)
		tx.LineItems[i].Images = attachment.FromRefs(
			s.attachments.Materialize(ctx, owner, tx.LineItems[i].Images))
	}
}

func (s *Service) persist(ctx context.Context, tx *Transaction) (bool, error) {
	var created bool

	err := s.retry.Do(ctx, IsConflict, func(ctx context.Context) error {
		exists, err := s.repo.Exists(ctx, tx.ID)
		if err != nil {
			return fmt.Errorf("checking existence of %s: %w", tx.ID, err)
		}

		created = !exists

		if exists {
			if err := s.repo.UpdateFields(ctx, tx.ID, fieldsFrom(tx)); err != nil {
				return fmt.Errorf("updating %s: %w", tx.ID, err)
			}
		} else {
			if err := s.repo.Insert(ctx, tx); err != nil {
				if IsConflict(err) {
					// The existence check raced another writer. Drop
					// whatever partial row won and re-insert on the next
					// attempt.
					if delErr := s.repo.Delete(ctx, tx.ID); delErr != nil {
						return fmt.Errorf("clearing conflicted row %s: %w", tx.ID, delErr)
					}
				}

				return fmt.Errorf("inserting %s: %w", tx.ID, err)
			}
		}

		// A draft checkpoint carries no items; skipping the replacement
		// keeps it from wiping items a concurrent fuller save just wrote.
		if tx.IsDraft() {
			return nil
		}

		if err := s.repo.ReplaceItems(ctx, tx.ID, tx.LineItems); err != nil {
			return fmt.Errorf("replacing items of %s: %w", tx.ID, err)
		}

		return nil
	})

	return created, err
}

// fieldsFrom builds the partial-update mask a save is allowed to touch.
// CompletedAt and CreatedAt are deliberately absent: the former belongs to
// the status path, the latter is immutable.
func fieldsFrom(tx *Transaction) Fields {
	f := Fields{
		Kind:         &tx.Kind,
		Status:       &tx.Status,
		SessionType:  &tx.SessionType,
		Expenses:     &tx.Expenses,
		Employee:     &tx.Employee,
		CustomerName: &tx.CustomerName,
		Location:     &tx.Location,
		Timestamp:    &tx.Timestamp,
		Attachments:  attachment.Refs(tx.Attachments),
	}

	// A draft carries no items, so its recomputed totals are zero and
	// bare expenses; writing them would clobber the row a fuller save
	// left behind.
	if !tx.IsDraft() {
		f.Subtotal = &tx.Subtotal
		f.Total = &tx.Total
	}

	if tx.CustomerKind != "" {
		f.CustomerKind = &tx.CustomerKind
	}

	return f
}

// UpdateStatus is the narrow status-flip path: no line items travel with
// it. Completion posts the transaction's signed total to the ledger
// exactly once; re-running the transition is rejected by the state machine
// and can never double-post thanks to the storage-level guard.
func (s *Service) UpdateStatus(ctx context.Context, id string, newStatus Status) error {
	tx, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	tr, err := NewTransition(tx.Status, newStatus, s.now())
	if err != nil {
		return err
	}

	if newStatus == StatusCancelled {
		posted, err := s.ledger.EffectExists(ctx, id)
		if err != nil {
			return fmt.Errorf("checking ledger effect for %s: %w", id, err)
		}

		if posted {
			return fmt.Errorf("cancelling %s: a ledger effect is already posted, refusing to hide it", id)
		}
	}

	if tr.PostsEffect {
		// Stored totals are never trusted here: a stale checkpoint can
		// leave zero alongside priced items. Get loaded the items, so the
		// amount is rederived from them.
		tx.Recalculate()

		// Post before flipping the status. If the status write below
		// fails, the transition is still legal on retry and the conflict
		// guard turns the second post into a no-op, so the path converges
		// on exactly one entry.
		posted, err := s.ledger.PostTransactionEffect(ctx, id, tx.SignedTotal(), tx.Employee, *tr.CompletedAt)
		if err != nil {
			return fmt.Errorf("posting effect of %s: %w", id, err)
		}

		if !posted {
			slog.Warn("transaction effect already on the ledger", "id", id)
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus, tr.CompletedAt); err != nil {
		return fmt.Errorf("updating status of %s: %w", id, err)
	}

	s.afterCommit(ctx, tx.Employee, "transactions")

	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// afterCommit runs the best-effort side effects of a successful write.
// Aggregates are derived data outside the consistency boundary; their
// failures are logged and swallowed.
func (s *Service) afterCommit(ctx context.Context, employee, scope string) {
	if s.stats != nil && employee != "" {
		if err := s.stats.RefreshStats(ctx, employee); err != nil {
			slog.Warn("aggregate refresh failed", "employee", employee, "error", err)
		}
	}

	if s.notifier != nil {
		s.notifier.DataChanged(ctx, scope)
	}
}
