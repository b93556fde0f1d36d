// Package inflight serializes concurrent saves of the same transaction
// identity within one process. The database's unique constraint is the
// cross-process backstop; this map just stops one client session from
// racing itself.
package inflight

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	done    chan struct{}
	err     error
	expires time.Time
}

// Group maps an identity to its in-progress save. The first caller for an
// identity runs the work; later callers for the same identity wait for the
// first result instead of issuing a second write. Entries are removed when
// the save settles, with a TTL sweep as a safety net against leaks.
type Group struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Group {
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Group{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Do runs fn for key, or waits for an already-running fn for the same key
// and returns its error. Waiters give up when ctx is cancelled.
func (g *Group) Do(ctx context.Context, key string, fn func() error) error {
	g.mu.Lock()

	g.sweepLocked()

	if e, ok := g.entries[key]; ok {
		g.mu.Unlock()

		select {
		case <-e.done:
			return e.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	e := &entry{
		done:    make(chan struct{}),
		expires: g.now().Add(g.ttl),
	}
	g.entries[key] = e
	g.mu.Unlock()

	e.err = fn()

	g.mu.Lock()
	// Only remove our own entry; a swept-out leader must not evict the
	// caller that replaced it.
	if g.entries[key] == e {
		delete(g.entries, key)
	}
	g.mu.Unlock()

	close(e.done)

	return e.err
}

// Len reports the number of unsettled saves.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.entries)
}

// sweepLocked drops expired entries so a save that never settles (a leaked
// goroutine, a hung driver) cannot block its identity forever. Waiters on
// a swept entry stay blocked on their contexts; only new callers proceed.
func (g *Group) sweepLocked() {
	now := g.now()
	for key, e := range g.entries {
		if now.After(e.expires) {
			delete(g.entries, key)
		}
	}
}
