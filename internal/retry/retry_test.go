package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarieta/chatarra/internal/retry"
)

var errTransient = errors.New("transient")

func always(error) bool { return true }

func TestPolicy_SucceedsFirstAttempt(t *testing.T) {
	p := retry.Policy{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), always, func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_RetriesUntilSuccess(t *testing.T) {
	p := retry.Policy{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), always, func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicy_NonRetryableStopsImmediately(t *testing.T) {
	p := retry.Policy{Attempts: 3, Delay: time.Millisecond}
	fatal := errors.New("fatal")

	calls := 0
	err := p.Do(context.Background(), func(err error) bool {
		return !errors.Is(err, fatal)
	}, func(context.Context) error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestPolicy_ExhaustionReturnsLastError(t *testing.T) {
	p := retry.Policy{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), always, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestPolicy_CancelledContextIsTerminal(t *testing.T) {
	p := retry.Policy{Attempts: 5, Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)

	go func() {
		done <- p.Do(ctx, always, func(context.Context) error {
			calls++
			return errTransient
		})
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not stop on cancellation")
	}
}

func TestPolicy_ZeroAttemptsStillRunsOnce(t *testing.T) {
	p := retry.Policy{}

	calls := 0
	err := p.Do(context.Background(), always, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
