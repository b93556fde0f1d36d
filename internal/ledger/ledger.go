package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrValidation marks entries rejected before any write.
	ErrValidation = errors.New("invalid ledger entry")
)

// Kind is the type of a balance-affecting fact.
type Kind string

const (
	KindOpening           Kind = "opening"
	KindTransactionEffect Kind = "transaction_effect"
	KindGeneralExpense    Kind = "general_expense"
	KindAdjustment        Kind = "adjustment"
)

// Entry is one immutable, signed, balance-affecting fact. Corrections are
// made by appending offsetting entries, never by mutating history.
type Entry struct {
	ID            uuid.UUID
	Kind          Kind
	Amount        int64 // cents, signed; expenses and buy effects negative
	Description   string
	Employee      string
	TransactionID *string // back-reference for transaction_effect lookup only
	Timestamp     time.Time
	CreatedAt     time.Time
}

// Range filters entries by timestamp, closed-open: [From, To). Nil bounds
// are unbounded.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Subtotals are the per-category sums of a ledger range. Transaction
// effects are split by sign into income and expense buckets.
type Subtotals struct {
	Opening            int64
	TransactionIncome  int64
	TransactionExpense int64
	GeneralExpense     int64
	Adjustment         int64
}
