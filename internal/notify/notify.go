// Package notify implements the change-notification port. The engine only
// promises correctness of stored state; delivery of "something changed" is
// a separate mechanism, so the default implementation just logs.
package notify

import (
	"context"
	"log/slog"
)

type Log struct{}

func (Log) DataChanged(_ context.Context, scope string) {
	slog.Debug("data changed", "scope", scope)
}
