package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrChatAlreadyLinked = errors.New("telegram chat already linked to another account")
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, grade_taught, intend_to_teach, is_admin, COALESCE(telegram_chat_id, 0), created_at`

// UserRepository provides access to user data in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository with the provided database handle.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, email, name, grade_taught, intend_to_teach, is_admin, telegram_chat_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7::bigint, 0), $8)
	`

	_, err := postgres.Conn(ctx, r.db).Exec(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.GradeTaught,
		user.IntendToTeach,
		user.IsAdmin,
		user.TelegramChatID,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", mapUniqueViolation(err))
	}

	return nil
}

// GetByID retrieves a user and the user's result history.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves a user by normalized e-mail.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

// GetByChatID retrieves the user linked to a Telegram chat.
func (r *UserRepository) GetByChatID(ctx context.Context, chatID int64) (*entities.User, error) {
	return r.getOne(ctx, "telegram_chat_id = $1", chatID)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entities.User, error) {
	db := postgres.Conn(ctx, r.db)
	query := "SELECT " + userColumns + " FROM users WHERE " + where

	var user entities.User
	err := db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.GradeTaught,
		&user.IntendToTeach,
		&user.IsAdmin,
		&user.TelegramChatID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	results, err := listResults(ctx, db, `WHERE user_id = $1`, user.ID)
	if err != nil {
		return nil, err
	}
	user.Results = results[user.ID]

	return &user, nil
}

// List returns every user with results, ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	db := postgres.Conn(ctx, r.db)

	rows, err := db.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY name, email")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		var user entities.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.GradeTaught,
			&user.IntendToTeach,
			&user.IsAdmin,
			&user.TelegramChatID,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	results, err := listResults(ctx, db, "")
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Results = results[u.ID]
	}

	return users, nil
}

// UpdateProfile changes the set fields of upd.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd entities.ProfileUpdate) error {
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			grade_taught = COALESCE($3, grade_taught),
			intend_to_teach = COALESCE($4, intend_to_teach)
		WHERE id = $1
	`

	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, query, id, upd.Name, upd.GradeTaught, upd.IntendToTeach)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// LinkChat binds a Telegram chat to the user.
func (r *UserRepository) LinkChat(ctx context.Context, id string, chatID int64) error {
	query := `UPDATE users SET telegram_chat_id = NULLIF($2::bigint, 0) WHERE id = $1`

	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, query, id, chatID)
	if err != nil {
		return fmt.Errorf("link chat: %w", mapUniqueViolation(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete removes the user; credentials and results cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case "users_email_key":
		return ErrEmailTaken
	case "users_telegram_chat_id_key":
		return ErrChatAlreadyLinked
	default:
		return err
	}
}
