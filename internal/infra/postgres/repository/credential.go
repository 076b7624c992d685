package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres"
)

var ErrCredentialsNotFound = errors.New("credentials not found")

// CredentialRepository stores password hashes apart from user profiles.
type CredentialRepository struct {
	db postgres.DBTX
}

func NewCredentialRepository(db postgres.DBTX) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Save sets the password hash of a user.
func (r *CredentialRepository) Save(ctx context.Context, userID, passwordHash string) error {
	query := `
		INSERT INTO user_credentials (user_id, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			updated_at = now()
	`

	if _, err := postgres.Conn(ctx, r.db).Exec(ctx, query, userID, passwordHash); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// PasswordHash returns the stored hash for the account with the given e-mail.
func (r *CredentialRepository) PasswordHash(ctx context.Context, email string) (string, error) {
	query := `
		SELECT c.password_hash
		FROM user_credentials c
		JOIN users u ON u.id = c.user_id
		WHERE u.email = $1
	`

	var hash string
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, query, email).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCredentialsNotFound
		}
		return "", fmt.Errorf("get password hash: %w", err)
	}

	return hash, nil
}
