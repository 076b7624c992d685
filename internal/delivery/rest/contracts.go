package rest

import (
	"context"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*entities.User, error)
	Authenticate(ctx context.Context, email, password string) (*entities.User, error)
	Get(ctx context.Context, id string) (*entities.User, error)
	UpdateProfile(ctx context.Context, id string, upd entities.ProfileUpdate) (*entities.User, error)
	Status(ctx context.Context, id string) (*service.Dashboard, error)
}

type RosterService interface {
	Roster(ctx context.Context, filter entities.RosterFilter) (*service.RosterReport, error)
	SendReminders(ctx context.Context) (service.ReminderBatch, error)
	DeleteUser(ctx context.Context, id string) error
}
