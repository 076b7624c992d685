package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const retryPendingSchedule = "@every 1m"

// ReminderSender sends the bulk compliance reminder.
type ReminderSender interface {
	SendReminders(ctx context.Context) (ReminderBatch, error)
}

// PendingRetrier re-persists results that the store rejected earlier.
type PendingRetrier interface {
	RetryPending(ctx context.Context) error
}

// ReminderService runs the scheduled jobs: the periodic compliance reminder
// and the retry of unpersisted results.
type ReminderService struct {
	sender   ReminderSender
	retrier  PendingRetrier
	schedule string
	enabled  bool
	location *time.Location
	logger   *zap.Logger
}

// NewReminderService creates a new reminder service. schedule is a standard
// five-field cron expression.
func NewReminderService(
	sender ReminderSender,
	retrier PendingRetrier,
	schedule string,
	enabled bool,
	location *time.Location,
	logger *zap.Logger,
) *ReminderService {
	if location == nil {
		location = time.UTC
	}

	return &ReminderService{
		sender:   sender,
		retrier:  retrier,
		schedule: schedule,
		enabled:  enabled,
		location: location,
		logger:   logger,
	}
}

// Start registers the jobs and blocks until ctx is done.
func (s *ReminderService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(s.location))

	if s.enabled {
		if _, err := c.AddFunc(s.schedule, func() { s.runReminders(ctx) }); err != nil {
			return fmt.Errorf("add reminder job %q: %w", s.schedule, err)
		}
	}

	if _, err := c.AddFunc(retryPendingSchedule, func() { s.runRetry(ctx) }); err != nil {
		return fmt.Errorf("add retry job: %w", err)
	}

	c.Start()
	s.logger.Info("scheduler started",
		zap.Bool("reminders_enabled", s.enabled),
		zap.String("reminder_schedule", s.schedule),
	)

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *ReminderService) runReminders(ctx context.Context) {
	s.logger.Info("cron triggered: sending compliance reminders")

	batch, err := s.sender.SendReminders(ctx)
	if err != nil {
		s.logger.Error("failed to send compliance reminders",
			zap.Int("recipients", len(batch.Recipients)),
			zap.Int("failed", len(batch.Failed)),
			zap.Error(err),
		)
	}
}

func (s *ReminderService) runRetry(ctx context.Context) {
	err := s.retrier.RetryPending(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("pending results still not persisted", zap.Error(err))
	}
}

// ValidateSchedule reports whether expr is a valid five-field cron expression.
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return nil
}
