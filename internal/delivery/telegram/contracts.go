package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

// Sender is the part of *tgbotapi.BotAPI the bot writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// QuestionCatalog looks up bank questions for result breakdowns.
type QuestionCatalog interface {
	GetByID(id int) (entities.Question, error)
	Len() int
}

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*entities.User, error)
	LinkChat(ctx context.Context, email, password string, chatID int64) (*entities.User, error)
	ByChat(ctx context.Context, chatID int64) (*entities.User, error)
	UpdateProfile(ctx context.Context, id string, upd entities.ProfileUpdate) (*entities.User, error)
	Status(ctx context.Context, id string) (*service.Dashboard, error)
}

type QuizService interface {
	Start(ctx context.Context, userID string) (service.QuizView, error)
	Current(userID string) (service.QuizView, error)
	Answer(ctx context.Context, userID string, position, option int) (service.QuizView, error)
	Continue(ctx context.Context, userID string) (service.QuizView, error)
	Cancel(userID string) error
	HasPending(userID string) bool
	PoolSize() int
}

type RosterService interface {
	Roster(ctx context.Context, filter entities.RosterFilter) (*service.RosterReport, error)
	SendReminders(ctx context.Context) (service.ReminderBatch, error)
	DeleteUser(ctx context.Context, id string) error
}

// Admins resolves an e-mail to an account for administrative commands.
type Admins interface {
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}
