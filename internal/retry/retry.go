// Package retry holds the one bounded-retry policy the write path uses,
// replacing per-call-site loops.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy retries an operation a fixed number of times with a linearly
// increasing delay between attempts.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Default matches the write path's contract: three attempts with a short
// increasing pause between them.
var Default = Policy{Attempts: 3, Delay: 150 * time.Millisecond}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. A cancelled context is terminal and counts as
// the final attempt. The last error is returned once attempts exhaust.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, fn func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if !retryable(err) {
			return err
		}

		if attempt == attempts {
			break
		}

		select {
		case <-time.After(time.Duration(attempt) * p.Delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled after attempt %d: %w", attempt, ctx.Err())
		}
	}

	return fmt.Errorf("retries exhausted after %d attempts: %w", attempts, err)
}
