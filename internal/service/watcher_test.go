package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

// chanSubscriber hands out channels that the test drives.
type chanSubscriber struct {
	mu    sync.Mutex
	subs  []chan struct{}
	calls int
}

func (s *chanSubscriber) Subscribe(context.Context) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	s.subs = append(s.subs, ch)
	s.calls++
	return ch, nil
}

func (s *chanSubscriber) last() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[len(s.subs)-1]
}

func (s *chanSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRosterWatcherFollowsChanges(t *testing.T) {
	users := newMemUsers(&entities.User{ID: "a", Name: "A", IntendToTeach: true})
	sub := &chanSubscriber{}
	w := NewRosterWatcher(sub, users, zap.NewNop())
	w.retry = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, func() bool { return w.Version() >= 1 })

	list, err := w.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("Expected 1 user, got %d (%v)", len(list), err)
	}

	if err := users.Create(ctx, &entities.User{ID: "b", Email: "b@x.org", Name: "B"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	version := w.Version()
	sub.last() <- struct{}{}
	waitFor(t, func() bool { return w.Version() > version })

	list, _ = w.List(ctx)
	if len(list) != 2 {
		t.Errorf("Expected 2 users after change, got %d", len(list))
	}

	close(sub.last())
	waitFor(t, func() bool { return sub.count() >= 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRosterWatcherFallsBackBeforeFirstLoad(t *testing.T) {
	users := newMemUsers(&entities.User{ID: "a"})
	w := NewRosterWatcher(&chanSubscriber{}, users, zap.NewNop())

	list, err := w.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Errorf("Expected source users before the first load, got %d (%v)", len(list), err)
	}
}
