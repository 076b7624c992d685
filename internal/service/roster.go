package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/metrics"
)

// RosterReport is the admin view of staff compliance.
type RosterReport struct {
	Filter  entities.RosterFilter
	Entries []entities.RosterEntry
	Stats   entities.RosterStats // over all staff, regardless of the filter
	Now     time.Time
}

// ReminderBatch reports the outcome of a bulk reminder.
type ReminderBatch struct {
	Recipients []*entities.User
	Failed     []*entities.User
}

// Sent returns the number of delivered reminders.
func (b ReminderBatch) Sent() int {
	return len(b.Recipients) - len(b.Failed)
}

// RosterService implements the administrator operations over all staff.
type RosterService struct {
	lister   UserLister
	users    UserRepository
	notifier Notifier
	clock    func() time.Time
	logger   *zap.Logger
}

// NewRosterService creates a RosterService. lister supplies the user
// snapshot, users serves single-record reads and deletion.
func NewRosterService(
	lister UserLister,
	users UserRepository,
	notifier Notifier,
	clock func() time.Time,
	logger *zap.Logger,
) *RosterService {
	if clock == nil {
		clock = time.Now
	}

	return &RosterService{
		lister:   lister,
		users:    users,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// Roster evaluates every non-admin user at the current time and applies filter.
func (s *RosterService) Roster(ctx context.Context, filter entities.RosterFilter) (*RosterReport, error) {
	entries, now, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}

	return &RosterReport{
		Filter:  filter,
		Entries: entities.FilterRoster(entries, filter),
		Stats:   entities.SummarizeRoster(entries),
		Now:     now,
	}, nil
}

// SendReminders notifies every outstanding user who intends to teach, as one batch.
func (s *RosterService) SendReminders(ctx context.Context) (ReminderBatch, error) {
	entries, _, err := s.entries(ctx)
	if err != nil {
		return ReminderBatch{}, err
	}

	batch := ReminderBatch{Recipients: entities.ReminderRecipients(entries)}
	if len(batch.Recipients) == 0 {
		s.logger.Info("no reminders due")
		return batch, nil
	}

	err = s.notifier.NotifyComplianceReminder(ctx, batch.Recipients)
	if err != nil {
		var be *BatchError
		if errors.As(err, &be) {
			for _, u := range batch.Recipients {
				if _, failed := be.Failed[u.ID]; failed {
					batch.Failed = append(batch.Failed, u)
				}
			}
		} else {
			batch.Failed = batch.Recipients
		}
		metrics.NotificationsFailed.WithLabelValues(metrics.KindReminder).Add(float64(len(batch.Failed)))
	}

	metrics.RemindersSent.Add(float64(batch.Sent()))
	s.logger.Info("reminders sent",
		zap.Int("recipients", len(batch.Recipients)),
		zap.Int("failed", len(batch.Failed)),
	)

	if err != nil {
		return batch, fmt.Errorf("%w: %w", ErrNotificationNotSent, err)
	}
	return batch, nil
}

// DeleteUser notifies the user and then removes the account with its history.
// ErrDeletedNotNotified means the record is gone but the notice was not delivered;
// ErrDeleteFailed means the record is still present.
func (s *RosterService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	notifyErr := s.notifier.NotifyAccountDeleted(ctx, user)
	if notifyErr != nil {
		metrics.NotificationsFailed.WithLabelValues(metrics.KindAccountDeleted).Inc()
		s.logger.Warn("failed to notify account deletion",
			zap.String("user_id", id),
			zap.Error(notifyErr),
		)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	s.logger.Info("user deleted",
		zap.String("user_id", id),
		zap.Bool("notified", notifyErr == nil),
	)

	if notifyErr != nil {
		return fmt.Errorf("%w: %w", ErrDeletedNotNotified, notifyErr)
	}
	return nil
}

func (s *RosterService) entries(ctx context.Context) ([]entities.RosterEntry, time.Time, error) {
	users, err := s.lister.List(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("list users: %w", err)
	}

	now := s.clock()
	return entities.BuildRoster(users, now), now, nil
}
