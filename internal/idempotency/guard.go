package idempotency

import (
	"context"
	"sync"
)

// Guard admits each reference for processing at most once. A reference is
// reserved as in-flight at admission, so a concurrent duplicate arriving
// between Begin and Commit is suppressed rather than fanned out twice.
type Guard struct {
	store Store

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewGuard(store Store) *Guard {
	return &Guard{
		store:    store,
		inflight: make(map[string]struct{}),
	}
}

// Begin reserves the reference and reports whether the caller may proceed.
// False means the reference was already processed or is being processed right
// now; the caller must short-circuit without re-running fan-out.
func (g *Guard) Begin(ctx context.Context, reference string) (bool, error) {
	g.mu.Lock()
	if _, busy := g.inflight[reference]; busy {
		g.mu.Unlock()
		return false, nil
	}
	g.inflight[reference] = struct{}{}
	g.mu.Unlock()

	seen, err := g.store.Contains(ctx, reference)
	if err != nil {
		g.release(reference)
		return false, err
	}
	if seen {
		g.release(reference)
		return false, nil
	}
	return true, nil
}

// Commit records the reference as processed and drops the in-flight
// reservation. Must only be called after fan-out has been attempted.
func (g *Guard) Commit(ctx context.Context, reference string) error {
	err := g.store.Add(ctx, reference)
	g.release(reference)
	return err
}

// Abandon drops the in-flight reservation without recording the reference, so
// a later attempt can run fan-out. For admitted references that never reached
// Commit, such as a panic mid fan-out.
func (g *Guard) Abandon(reference string) {
	g.release(reference)
}

func (g *Guard) release(reference string) {
	g.mu.Lock()
	delete(g.inflight, reference)
	g.mu.Unlock()
}
