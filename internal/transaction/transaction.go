package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmarieta/chatarra/internal/attachment"
)

var (
	// ErrNotFound is returned when no transaction exists for the given identifier.
	ErrNotFound = errors.New("transaction not found")

	// ErrValidation marks rejections that happen before any write is attempted.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a duplicate-key failure on insert. The save path
	// recovers from it with a bounded retry; callers only see it once
	// retries are exhausted.
	ErrConflict = errors.New("duplicate transaction identity")

	// ErrIllegalTransition is returned for status changes the state machine forbids.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Kind distinguishes a purchase session from a sale session.
type Kind string

const (
	KindBuy  Kind = "buy"
	KindSell Kind = "sell"
)

// Status represents the lifecycle state of a transaction session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusForPayment Status = "for_payment"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// SessionType says how the material changed hands.
type SessionType string

const (
	SessionDelivery SessionType = "delivery"
	SessionPickup   SessionType = "pickup"
	SessionWalkIn   SessionType = "walk_in"
)

// CustomerKind classifies the counterparty.
type CustomerKind string

const (
	CustomerIndividual CustomerKind = "individual"
	CustomerBusiness   CustomerKind = "business"
	CustomerAgent      CustomerKind = "agent"
)

// Transaction is one buy or sell session. All monetary amounts are in cents.
// Weights are in grams so line math stays integral.
type Transaction struct {
	ID           string // sequence-generated, immutable once assigned
	Kind         Kind
	Status       Status
	SessionType  SessionType
	Subtotal     int64
	Expenses     int64
	Total        int64
	Employee     string
	CustomerName string
	CustomerKind CustomerKind
	Location     string
	LineItems    []LineItem
	Attachments  []attachment.Payload
	Timestamp    time.Time
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// LineItem is one priced entry within a transaction. Exactly one of
// WeightGrams and PieceCount is set. Identity is positional; items are
// replaced wholesale on every save.
type LineItem struct {
	Name        string
	WeightGrams *int64
	PieceCount  *int64
	UnitPrice   int64 // cents per kilogram for weighed items, cents per piece otherwise
	LineTotal   int64
	Images      []attachment.Payload
}

// computeTotal derives the authoritative line total from quantity and price.
func (li *LineItem) computeTotal() int64 {
	if li.WeightGrams != nil {
		return *li.WeightGrams * li.UnitPrice / 1000
	}

	if li.PieceCount != nil {
		return *li.PieceCount * li.UnitPrice
	}

	return 0
}

// Recalculate rebuilds line totals, the subtotal, and the kind-signed total
// from the line items. Stored totals are never trusted over this: a zero
// total alongside priced items is corrected here, not persisted.
func (t *Transaction) Recalculate() {
	var subtotal int64

	for i := range t.LineItems {
		t.LineItems[i].LineTotal = t.LineItems[i].computeTotal()
		subtotal += t.LineItems[i].LineTotal
	}

	t.Subtotal = subtotal

	switch t.Kind {
	case KindSell:
		t.Total = subtotal - t.Expenses
	default:
		t.Total = subtotal + t.Expenses
	}
}

// SignedTotal is the transaction's net cash impact: buys drain cash,
// sells add to it.
func (t *Transaction) SignedTotal() int64 {
	if t.Kind == KindBuy {
		return -t.Total
	}

	return t.Total
}

// IsDraft reports whether this save is a recovery checkpoint: a session
// still being built, with no items yet.
func (t *Transaction) IsDraft() bool {
	return t.Status == StatusInProgress && len(t.LineItems) == 0
}

// Validate rejects a transaction before any write is attempted.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrValidation)
	}

	if t.Kind != KindBuy && t.Kind != KindSell {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, t.Kind)
	}

	switch t.Status {
	case StatusInProgress, StatusForPayment, StatusCompleted, StatusCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}

	switch t.SessionType {
	case SessionDelivery, SessionPickup, SessionWalkIn:
	default:
		return fmt.Errorf("%w: unknown session type %q", ErrValidation, t.SessionType)
	}

	if t.CustomerKind != "" {
		switch t.CustomerKind {
		case CustomerIndividual, CustomerBusiness, CustomerAgent:
		default:
			return fmt.Errorf("%w: unknown customer kind %q", ErrValidation, t.CustomerKind)
		}
	}

	if t.Employee == "" {
		return fmt.Errorf("%w: missing employee", ErrValidation)
	}

	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrValidation)
	}

	for i, li := range t.LineItems {
		if li.Name == "" {
			return fmt.Errorf("%w: item %d missing name", ErrValidation, i)
		}

		if (li.WeightGrams == nil) == (li.PieceCount == nil) {
			return fmt.Errorf("%w: item %d needs exactly one of weight or piece count", ErrValidation, i)
		}

		if li.UnitPrice < 0 {
			return fmt.Errorf("%w: item %d has negative unit price", ErrValidation, i)
		}
	}

	return nil
}

// IsConflict reports whether err is a duplicate-identity conflict,
// the one storage failure the save path retries.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
