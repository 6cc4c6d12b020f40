package swr_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/waabox/buildboard/internal/swr"
)

// fakeRepoBackend mimics the gateway's repository surface: a list read and
// a register write against the same state.
type fakeRepoBackend struct {
	mu         sync.Mutex
	registered bool
	reads      int
}

func (b *fakeRepoBackend) fetch(ctx context.Context, key string) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	if b.registered {
		return "widget:registered", nil
	}
	return "widget:unregistered", nil
}

func (b *fakeRepoBackend) register(ctx context.Context) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = true
	return "ok", nil
}

func TestTrigger_RegisterInvalidatesRepoList(t *testing.T) {
	backend := &fakeRepoBackend{}
	cache := swr.NewCache(backend.fetch, time.Hour)
	updates := cache.Updates(swr.ReposKey())

	mutator := swr.NewMutator(cache)
	mutator.Dependents("repo:widget", swr.ReposKey())

	cache.Subscribe(context.Background(), swr.ReposKey())
	st := waitUpdate(t, updates)
	if st.Data != "widget:unregistered" {
		t.Fatalf("expected unregistered list, got %v", st.Data)
	}

	result, err := mutator.Trigger(context.Background(), "repo:widget", backend.register)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected upstream result relayed, got %v", result)
	}

	// The next observed list reflects the registration without any manual
	// reload: the invalidation fired a refetch.
	st = waitUpdate(t, updates)
	if st.Data != "widget:registered" {
		t.Errorf("expected registered list after trigger, got %v", st.Data)
	}
}

func TestTrigger_FailedWriteDoesNotInvalidate(t *testing.T) {
	backend := &fakeRepoBackend{}
	cache := swr.NewCache(backend.fetch, time.Hour)
	updates := cache.Updates(swr.ReposKey())

	mutator := swr.NewMutator(cache)
	mutator.Dependents("repo:widget", swr.ReposKey())

	cache.Subscribe(context.Background(), swr.ReposKey())
	waitUpdate(t, updates)
	readsBefore := backend.reads

	_, err := mutator.Trigger(context.Background(), "repo:widget", func(ctx context.Context) (any, error) {
		return nil, fmt.Errorf("upstream rejected request: status 409")
	})
	if err == nil {
		t.Fatal("expected the write failure to surface")
	}

	time.Sleep(50 * time.Millisecond)
	backend.mu.Lock()
	reads := backend.reads
	backend.mu.Unlock()
	if reads != readsBefore {
		t.Errorf("failed mutation must not invalidate, reads went %d -> %d", readsBefore, reads)
	}
}

func TestTrigger_RejectsConcurrentTriggerForSameTarget(t *testing.T) {
	cache := swr.NewCache(func(ctx context.Context, key string) (any, error) {
		return nil, nil
	}, time.Hour)
	mutator := swr.NewMutator(cache)

	started := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		_, err := mutator.Trigger(context.Background(), "repo:widget", func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "ok", nil
		})
		firstDone <- err
	}()

	<-started
	_, err := mutator.Trigger(context.Background(), "repo:widget", func(ctx context.Context) (any, error) {
		return "second", nil
	})
	if !errors.Is(err, swr.ErrMutationInFlight) {
		t.Fatalf("expected ErrMutationInFlight, got: %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("unexpected error from first trigger: %v", err)
	}

	// Once the first trigger settles, the target accepts writes again.
	if _, err := mutator.Trigger(context.Background(), "repo:widget", func(ctx context.Context) (any, error) {
		return "third", nil
	}); err != nil {
		t.Fatalf("unexpected error after first trigger settled: %v", err)
	}
}

func TestTrigger_DistinctTargetsDoNotSerialize(t *testing.T) {
	cache := swr.NewCache(func(ctx context.Context, key string) (any, error) {
		return nil, nil
	}, time.Hour)
	mutator := swr.NewMutator(cache)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		mutator.Trigger(context.Background(), "repo:widget", func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "ok", nil
		})
	}()

	<-started
	if _, err := mutator.Trigger(context.Background(), "repo:gadget", func(ctx context.Context) (any, error) {
		return "ok", nil
	}); err != nil {
		t.Fatalf("distinct target must not be rejected, got: %v", err)
	}
	close(release)
}
