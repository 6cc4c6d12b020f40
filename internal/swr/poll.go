package swr

import (
	"context"
	"time"
)

// Poll revalidates key on the given interval until done observes a state it
// considers terminal, or ctx is cancelled. It returns the last observed
// state. The log viewer uses this to tail a running step and stop once the
// step leaves the in-progress state, so no polling loop outlives the work
// it watches.
func (c *Cache) Poll(ctx context.Context, key string, interval time.Duration, done func(State) bool) State {
	updates := c.Updates(key)

	st := c.Subscribe(ctx, key)
	if done(st) {
		return st
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return st
		case st = <-updates:
			if done(st) {
				return st
			}
		case <-ticker.C:
			st = c.Subscribe(ctx, key)
			if done(st) {
				return st
			}
		}
	}
}
