package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"auth-gate/internal/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements domain.UserStore for PostgreSQL.
type UserRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db Querier, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger.With("component", "user_repository"),
	}
}

// FindByUserID looks up a user record by its upstream user ID.
// Returns domain.ErrUserNotFound when no row exists.
func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*domain.UserRecord, error) {
	query := `
		SELECT user_id, access_token, refresh_token, created_at, updated_at
		FROM users
		WHERE user_id = $1`

	var record domain.UserRecord
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&record.AccessToken,
		&record.RefreshToken,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user record: %w", err)
	}

	return &record, nil
}

// Upsert inserts a user record or, on conflict, refreshes its token pair.
// Called on every successful OAuth exchange; never from the request path.
func (r *UserRepository) Upsert(ctx context.Context, record *domain.UserRecord) error {
	query := `
		INSERT INTO users (user_id, access_token, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (user_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    updated_at = now()`

	_, err := r.db.Exec(ctx, query, record.UserID, record.AccessToken, record.RefreshToken)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to upsert user record", "user_id", record.UserID, "error", err)
		return fmt.Errorf("failed to upsert user record: %w", err)
	}

	return nil
}
