package transaction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarieta/chatarra/internal/transaction"
)

func TestCanTransition(t *testing.T) {
	type testCase struct {
		from transaction.Status
		to   transaction.Status
		want bool
	}

	tests := []testCase{
		{transaction.StatusInProgress, transaction.StatusForPayment, true},
		{transaction.StatusInProgress, transaction.StatusCompleted, true},
		{transaction.StatusInProgress, transaction.StatusCancelled, true},
		{transaction.StatusForPayment, transaction.StatusCompleted, true},
		{transaction.StatusForPayment, transaction.StatusCancelled, true},
		{transaction.StatusCompleted, transaction.StatusForPayment, false},
		{transaction.StatusCompleted, transaction.StatusCancelled, false},
		{transaction.StatusCompleted, transaction.StatusCompleted, false},
		{transaction.StatusCancelled, transaction.StatusInProgress, false},
		{transaction.StatusForPayment, transaction.StatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, transaction.CanTransition(tt.from, tt.to))
		})
	}
}

func TestNewTransition_Completion(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tr, err := transaction.NewTransition(transaction.StatusForPayment, transaction.StatusCompleted, now)
	require.NoError(t, err)

	require.NotNil(t, tr.CompletedAt)
	assert.Equal(t, now, *tr.CompletedAt)
	assert.True(t, tr.PostsEffect)
}

func TestNewTransition_Cancellation(t *testing.T) {
	tr, err := transaction.NewTransition(transaction.StatusInProgress, transaction.StatusCancelled, time.Now())
	require.NoError(t, err)

	assert.Nil(t, tr.CompletedAt)
	assert.False(t, tr.PostsEffect)
}

func TestNewTransition_Illegal(t *testing.T) {
	_, err := transaction.NewTransition(transaction.StatusCompleted, transaction.StatusForPayment, time.Now())
	assert.ErrorIs(t, err, transaction.ErrIllegalTransition)

	// Repeating a completion is just another illegal edge.
	_, err = transaction.NewTransition(transaction.StatusCompleted, transaction.StatusCompleted, time.Now())
	assert.ErrorIs(t, err, transaction.ErrIllegalTransition)
}
