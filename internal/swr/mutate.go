package swr

import (
	"context"
	"errors"
	"sync"
)

// ErrMutationInFlight is returned when a trigger fires for a target that
// already has an outstanding mutation. Register/unregister are not
// idempotent upstream, so the second trigger is rejected rather than queued.
var ErrMutationInFlight = errors.New("mutation already in flight for target")

// TriggerFunc performs the write itself and returns the upstream result.
type TriggerFunc func(ctx context.Context) (any, error)

// Mutator runs writes against the gateway and invalidates the cache keys
// each write affects. The dependency between a mutation target and the keys
// it invalidates is a declared mapping, not implicit framework behavior.
type Mutator struct {
	cache *Cache

	mu          sync.Mutex
	inflight    map[string]bool
	invalidates map[string][]string
}

// NewMutator creates a Mutator over cache.
func NewMutator(cache *Cache) *Mutator {
	return &Mutator{
		cache:       cache,
		inflight:    make(map[string]bool),
		invalidates: make(map[string][]string),
	}
}

// Dependents declares that a successful mutation of target invalidates the
// given cache keys.
func (m *Mutator) Dependents(target string, keys ...string) {
	m.mu.Lock()
	m.invalidates[target] = append(m.invalidates[target], keys...)
	m.mu.Unlock()
}

// Trigger runs the write for target. On success it invalidates every
// declared dependent key, so subscribers refetch without a manual reload.
// A second concurrent trigger for the same target is rejected with
// ErrMutationInFlight.
func (m *Mutator) Trigger(ctx context.Context, target string, do TriggerFunc) (any, error) {
	m.mu.Lock()
	if m.inflight[target] {
		m.mu.Unlock()
		return nil, ErrMutationInFlight
	}
	m.inflight[target] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inflight, target)
		m.mu.Unlock()
	}()

	result, err := do(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	keys := append([]string(nil), m.invalidates[target]...)
	m.mu.Unlock()
	for _, key := range keys {
		m.cache.Invalidate(ctx, key)
	}
	return result, nil
}
