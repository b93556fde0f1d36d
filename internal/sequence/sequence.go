// Package sequence assigns human-readable transaction identifiers of the
// form PREFIX-00000123.
package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

//go:generate mockgen -source=sequence.go -destination=store_mock.go -package=sequence
type Store interface {
	// HighestNumber returns the numeric tail of the highest identifier
	// with the given prefix, or 0 when none exist.
	HighestNumber(ctx context.Context, prefix string) (int64, error)
}

// Generator produces zero-padded, monotonically increasing identifiers.
// Generation is read-then-increment and therefore racy under concurrent
// callers; the save path's unique constraint and retry detect collisions,
// so no lock is taken here.
type Generator struct {
	store  Store
	prefix string
	width  int
	now    func() time.Time
}

func NewGenerator(store Store, prefix string, width int) *Generator {
	if width <= 0 {
		width = 8
	}

	return &Generator{
		store:  store,
		prefix: prefix,
		width:  width,
		now:    time.Now,
	}
}

// Next returns the next identifier in sequence. When the highest-identifier
// read fails, a timestamp-derived identifier is returned instead of
// blocking transaction creation: still unique, but outside the readable
// monotonic sequence. That is a known property of the fallback, not a bug.
func (g *Generator) Next(ctx context.Context) string {
	highest, err := g.store.HighestNumber(ctx, g.prefix)
	if err != nil {
		slog.Warn("sequence read failed, falling back to timestamp identifier",
			"prefix", g.prefix, "error", err)

		return fmt.Sprintf("%s-T%d", g.prefix, g.now().UnixNano())
	}

	return fmt.Sprintf("%s-%0*d", g.prefix, g.width, highest+1)
}
