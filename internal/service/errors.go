package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResultNotPersisted  = errors.New("result not yet persisted")
	ErrNotificationNotSent = errors.New("notification not sent")
	ErrDeletedNotNotified  = errors.New("user deleted but not notified")
	ErrDeleteFailed        = errors.New("user not deleted")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrWeakPassword        = errors.New("password is too short")
	ErrChatNotLinked       = errors.New("telegram chat is not linked to an account")
	ErrQuizInProgress      = errors.New("quiz already in progress")
	ErrNotAdmin            = errors.New("administrator rights required")
)

// BatchError collects per-recipient delivery failures keyed by user ID.
type BatchError struct {
	Failed map[string]error
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for id, err := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", id, err))
	}
	return fmt.Sprintf("%d deliveries failed: %s", len(e.Failed), strings.Join(parts, "; "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// Add records a failed delivery.
func (e *BatchError) Add(userID string, err error) {
	if e.Failed == nil {
		e.Failed = make(map[string]error)
	}
	e.Failed[userID] = err
}

// ErrOrNil returns e when it holds failures.
func (e *BatchError) ErrOrNil() error {
	if e == nil || len(e.Failed) == 0 {
		return nil
	}
	return e
}
