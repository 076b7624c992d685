package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

const defaultResubscribeDelay = 5 * time.Second

// RosterWatcher keeps the latest snapshot of all users, reloading it
// whenever the subscriber signals a change. Only raw users are cached;
// compliance is derived by readers.
type RosterWatcher struct {
	subscriber UserChangeSubscriber
	source     UserLister
	logger     *zap.Logger
	retry      time.Duration

	mu      sync.RWMutex
	users   []*entities.User
	loaded  bool
	version uint64
}

func NewRosterWatcher(subscriber UserChangeSubscriber, source UserLister, logger *zap.Logger) *RosterWatcher {
	return &RosterWatcher{
		subscriber: subscriber,
		source:     source,
		logger:     logger,
		retry:      defaultResubscribeDelay,
	}
}

// Run follows changes until ctx is done, resubscribing when a subscription ends.
func (w *RosterWatcher) Run(ctx context.Context) error {
	w.logger.Info("roster watcher started")

	for {
		changes, err := w.subscriber.Subscribe(ctx)
		if err != nil {
			w.logger.Error("failed to subscribe to user changes", zap.Error(err))
		} else {
			for range changes {
				if err := w.reload(ctx); err != nil && ctx.Err() == nil {
					w.logger.Error("failed to reload users", zap.Error(err))
				}
			}
		}

		select {
		case <-ctx.Done():
			w.logger.Info("roster watcher stopped")
			return nil
		case <-time.After(w.retry):
		}
	}
}

func (w *RosterWatcher) reload(ctx context.Context) error {
	users, err := w.source.List(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.users = users
	w.loaded = true
	w.version++
	w.mu.Unlock()

	w.logger.Debug("user snapshot reloaded", zap.Int("users", len(users)))
	return nil
}

// List returns the latest snapshot. Before the first load it reads the source.
func (w *RosterWatcher) List(ctx context.Context) ([]*entities.User, error) {
	w.mu.RLock()
	users, loaded := w.users, w.loaded
	w.mu.RUnlock()

	if loaded {
		out := make([]*entities.User, len(users))
		copy(out, users)
		return out, nil
	}

	users, err := w.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Version increases with every reloaded snapshot.
func (w *RosterWatcher) Version() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}
