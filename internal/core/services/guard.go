// internal/core/services/guard.go
package services

import "sync"

// listGuard is the in-process half of the single-writer guarantee.
// The redis lease protects across replicas; this protects the hot path
// inside one process without a network round trip.
type listGuard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func newListGuard() *listGuard {
	return &listGuard{busy: make(map[string]struct{})}
}

// tryAcquire claims a list, returning false when a sequence for it is
// already in flight. Attempts are rejected, not queued: a queued writer
// would operate on a snapshot made stale by the writer ahead of it.
func (g *listGuard) tryAcquire(listID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, inFlight := g.busy[listID]; inFlight {
		return false
	}
	g.busy[listID] = struct{}{}
	return true
}

func (g *listGuard) release(listID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, listID)
}
