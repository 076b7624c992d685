package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
	"github.com/aliskhannn/safeguard-bot/internal/infra/postgres"
)

const foreignKeyViolation = "23503"

// ResultRepository appends finished test results to a user's history.
type ResultRepository struct {
	db postgres.DBTX
}

func NewResultRepository(db postgres.DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// Append stores one result. Results are never updated or removed individually.
func (r *ResultRepository) Append(ctx context.Context, userID string, result entities.TestResult) error {
	details, err := json.Marshal(result.Details)
	if err != nil {
		return fmt.Errorf("marshal question details: %w", err)
	}

	query := `
		INSERT INTO test_results (user_id, taken_at, score, passed, details)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = postgres.Conn(ctx, r.db).Exec(ctx, query, userID, result.TakenAt, result.Score, result.Passed, details)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return ErrUserNotFound
		}
		return fmt.Errorf("append result: %w", err)
	}

	return nil
}

// ListByUser returns the user's results in insertion order.
func (r *ResultRepository) ListByUser(ctx context.Context, userID string) ([]entities.TestResult, error) {
	results, err := listResults(ctx, postgres.Conn(ctx, r.db), `WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	return results[userID], nil
}

// listResults groups results by user id, each group in insertion order.
func listResults(ctx context.Context, db postgres.DBTX, where string, args ...any) (map[string][]entities.TestResult, error) {
	query := `SELECT user_id, taken_at, score, passed, details FROM test_results ` + where + ` ORDER BY user_id, id`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	results := make(map[string][]entities.TestResult)
	for rows.Next() {
		var (
			userID  string
			res     entities.TestResult
			details []byte
		)
		if err := rows.Scan(&userID, &res.TakenAt, &res.Score, &res.Passed, &details); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(details, &res.Details); err != nil {
			return nil, fmt.Errorf("unmarshal question details: %w", err)
		}
		results[userID] = append(results[userID], res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return results, nil
}
