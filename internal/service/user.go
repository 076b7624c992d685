package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/safeguard-bot/internal/metrics"
)

const MinPasswordLength = 8

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Grade    string
	ChatID   int64 // optional Telegram chat to link right away
}

// Dashboard is the personal certification overview of a user.
type Dashboard struct {
	User       *entities.User
	Compliance entities.Compliance
	Attempts   int
	History    []entities.TestResult // newest first
	Now        time.Time
}

// UserService manages accounts, profiles and chat links.
type UserService struct {
	users       UserRepository
	credentials CredentialRepository
	tr          Transactor
	adminEmails []string
	clock       func() time.Time
	logger      *zap.Logger
}

// NewUserService creates a UserService. Accounts registered with one of
// adminEmails become administrators.
func NewUserService(
	users UserRepository,
	credentials CredentialRepository,
	tr Transactor,
	adminEmails []string,
	clock func() time.Time,
	logger *zap.Logger,
) *UserService {
	if clock == nil {
		clock = time.Now
	}

	normalized := make([]string, 0, len(adminEmails))
	for _, e := range adminEmails {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(e)))
	}

	return &UserService{
		users:       users,
		credentials: credentials,
		tr:          tr,
		adminEmails: normalized,
		clock:       clock,
		logger:      logger,
	}
}

// Register creates a user and stores the password hash in one transaction.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	if len(in.Password) < MinPasswordLength {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		return nil, ErrWeakPassword
	}

	user, err := entities.NewUser(uuid.NewString(), in.Email, in.Name, in.Grade)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		return nil, err
	}
	user.CreatedAt = s.clock()
	user.IsAdmin = slices.Contains(s.adminEmails, user.Email)
	user.TelegramChatID = in.ChatID

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err = s.tr.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.credentials.Save(ctx, user.ID, string(hash))
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		return nil, fmt.Errorf("register user: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.Bool("is_admin", user.IsAdmin),
		zap.Bool("chat_linked", user.HasChat()),
	)

	return user, nil
}

// Authenticate checks e-mail and password and returns the account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, err
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return user, nil
}

func (s *UserService) authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	email, err := entities.NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.credentials.PasswordHash(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialsNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return user, nil
}

// LinkChat authenticates the account and binds chatID to it.
func (s *UserService) LinkChat(ctx context.Context, email, password string, chatID int64) (*entities.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.users.LinkChat(ctx, user.ID, chatID); err != nil {
		return nil, fmt.Errorf("link chat: %w", err)
	}
	user.TelegramChatID = chatID

	s.logger.Info("chat linked",
		zap.String("user_id", user.ID),
		zap.Int64("chat_id", chatID),
	)

	return user, nil
}

// ByChat returns the account linked to a Telegram chat.
func (s *UserService) ByChat(ctx context.Context, chatID int64) (*entities.User, error) {
	user, err := s.users.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrChatNotLinked
		}
		return nil, fmt.Errorf("get user by chat: %w", err)
	}
	return user, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*entities.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile validates and applies upd, returning the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd entities.ProfileUpdate) (*entities.User, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	if !upd.Empty() {
		if err := s.users.UpdateProfile(ctx, id, upd); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		s.logger.Info("profile updated", zap.String("user_id", id))
	}

	return s.users.GetByID(ctx, id)
}

// Status builds the personal dashboard of a user at the current time.
func (s *UserService) Status(ctx context.Context, id string) (*Dashboard, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewDashboard(user, s.clock()), nil
}

// NewDashboard derives the dashboard of user at now.
func NewDashboard(user *entities.User, now time.Time) *Dashboard {
	history := slices.Clone(user.Results)
	slices.Reverse(history)

	return &Dashboard{
		User:       user,
		Compliance: user.Compliance(now),
		Attempts:   len(user.Results),
		History:    history,
		Now:        now,
	}
}
