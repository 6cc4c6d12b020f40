// Package swr implements the browser-side synchronization model: a keyed
// revalidating cache (stale-while-revalidate), a polling loop for live log
// tailing, and a mutation trigger with explicit cache invalidation.
//
// Keys are fully-qualified gateway resource URLs. The cache serves whatever
// it has immediately and refreshes in the background; a rendering layer
// never blocks on the network.
package swr

import (
	"context"
	"sync"
	"time"
)

// Fetcher loads the current value for a resource key.
type Fetcher func(ctx context.Context, key string) (any, error)

// State is what a subscriber observes for a key. Data is the last-known-good
// value and survives failed refreshes; Err is the most recent refresh
// failure; Loading is true only while the first fetch for a key is still in
// flight.
type State struct {
	Data    any
	Err     error
	Loading bool
}

type entry struct {
	data      any
	err       error
	hasData   bool
	gen       uint64
	inflight  uint64 // generation of the newest in-flight fetch, 0 if none
	fetchedAt time.Time
}

// Cache is a keyed revalidating cache. All methods are safe for concurrent
// use.
type Cache struct {
	mu       sync.Mutex
	fetch    Fetcher
	freshFor time.Duration
	entries  map[string]*entry
	noStore  []func(key string) bool
	watchers map[string][]chan State
}

// NewCache creates a Cache. freshFor is the window within which a cached
// value is served without triggering a background refresh.
func NewCache(fetch Fetcher, freshFor time.Duration) *Cache {
	return &Cache{
		fetch:    fetch,
		freshFor: freshFor,
		entries:  make(map[string]*entry),
		watchers: make(map[string][]chan State),
	}
}

// AlwaysRefetch marks keys matching the predicate as non-cached: every
// subscription refetches instead of reusing a snapshot. Used for log keys,
// which grow while a step runs.
func (c *Cache) AlwaysRefetch(match func(key string) bool) {
	c.mu.Lock()
	c.noStore = append(c.noStore, match)
	c.mu.Unlock()
}

func (c *Cache) isNoStore(key string) bool {
	for _, match := range c.noStore {
		if match(key) {
			return true
		}
	}
	return false
}

func (c *Cache) ensure(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Subscribe returns the current state for key and, when no fresh entry
// exists, triggers a background refresh. Concurrent subscribers to the same
// key share one in-flight fetch.
func (c *Cache) Subscribe(ctx context.Context, key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(key)
	stale := !e.hasData || c.isNoStore(key) || time.Since(e.fetchedAt) > c.freshFor
	if stale && e.inflight == 0 {
		c.startRefreshLocked(ctx, key, e)
	}
	return c.stateLocked(e)
}

// Invalidate marks key stale and kicks a refresh immediately, superseding
// any fetch already in flight. Dependent subscribers observe the new value
// through Updates or their next Subscribe.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(key)
	e.fetchedAt = time.Time{}
	c.startRefreshLocked(ctx, key, e)
}

// Updates returns a channel that receives the state after each applied
// refresh of key. The channel holds only the latest state: a slow reader
// misses intermediate values, never blocks the cache. An abandoned
// subscriber can simply stop reading.
func (c *Cache) Updates(key string) <-chan State {
	ch := make(chan State, 1)
	c.mu.Lock()
	c.watchers[key] = append(c.watchers[key], ch)
	c.mu.Unlock()
	return ch
}

// startRefreshLocked issues generation gen+1 for the entry and fetches in
// the background. Only the result of the latest issued generation is
// applied; completions of superseded generations are discarded.
func (c *Cache) startRefreshLocked(ctx context.Context, key string, e *entry) {
	e.gen++
	e.inflight = e.gen
	gen := e.gen

	go func() {
		data, err := c.fetch(ctx, key)

		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != e.gen {
			// A newer refresh was issued after this one started.
			return
		}
		e.inflight = 0
		if err != nil {
			// Error isolation: keep the last-known-good data.
			e.err = err
		} else {
			e.data = data
			e.hasData = true
			e.err = nil
			e.fetchedAt = time.Now()
		}
		c.notifyLocked(key, c.stateLocked(e))
	}()
}

func (c *Cache) stateLocked(e *entry) State {
	return State{
		Data:    e.data,
		Err:     e.err,
		Loading: !e.hasData && e.inflight != 0,
	}
}

func (c *Cache) notifyLocked(key string, st State) {
	for _, ch := range c.watchers[key] {
		select {
		case ch <- st:
		default:
			// Drop the stale buffered state so the latest one lands.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
