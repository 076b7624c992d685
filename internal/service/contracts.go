package service

import (
	"context"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

// UserRepository persists user profiles. Users returned carry their result history.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
	UpdateProfile(ctx context.Context, id string, upd entities.ProfileUpdate) error
	LinkChat(ctx context.Context, id string, chatID int64) error
	Delete(ctx context.Context, id string) error
}

// UserLister supplies the current snapshot of all users.
type UserLister interface {
	List(ctx context.Context) ([]*entities.User, error)
}

// CredentialRepository stores password hashes owned by the account layer.
type CredentialRepository interface {
	Save(ctx context.Context, userID, passwordHash string) error
	PasswordHash(ctx context.Context, email string) (string, error)
}

// ResultRepository appends finished results. It does not retry internally.
type ResultRepository interface {
	Append(ctx context.Context, userID string, result entities.TestResult) error
}

type QuestionBank interface {
	GetAll() []entities.Question
	Len() int
}

// UserChangeSubscriber signals that the user collection may have changed.
// The channel is closed when the subscription ends.
type UserChangeSubscriber interface {
	Subscribe(ctx context.Context) (<-chan struct{}, error)
}

// Notifier delivers human-readable messages about user events.
// NotifyComplianceReminder reports per-recipient failures as *BatchError.
type Notifier interface {
	NotifyTestCompleted(ctx context.Context, user *entities.User, result entities.TestResult) error
	NotifyAccountDeleted(ctx context.Context, user *entities.User) error
	NotifyComplianceReminder(ctx context.Context, users []*entities.User) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
