package transaction

import (
	"fmt"
	"time"
)

// legalTransitions is the full set of allowed status changes. Terminal
// states have no outgoing edges; cancellation is reachable from every
// non-terminal state.
var legalTransitions = map[Status][]Status{
	StatusInProgress: {StatusForPayment, StatusCompleted, StatusCancelled},
	StatusForPayment: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to Status) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// Transition describes the side effects a legal status change carries.
type Transition struct {
	From Status
	To   Status

	// CompletedAt is set when the transition enters the completed state.
	CompletedAt *time.Time

	// PostsEffect is true when the transition must append the
	// transaction's signed total to the ledger. Posting is guarded at the
	// storage layer so a retried transition cannot double-post.
	PostsEffect bool
}

// NewTransition validates from -> to and returns the side effects the
// change requires. Repeating a transition into the state already held is
// rejected like any other illegal edge, which is what makes a retried
// completion a no-op at this layer.
func NewTransition(from, to Status, now time.Time) (Transition, error) {
	if !CanTransition(from, to) {
		return Transition{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	tr := Transition{From: from, To: to}

	if to == StatusCompleted {
		tr.CompletedAt = &now
		tr.PostsEffect = true
	}

	return tr, nil
}
