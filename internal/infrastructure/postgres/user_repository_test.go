package postgres

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"auth-gate/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_FindByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT user_id, access_token, refresh_token").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "access_token", "refresh_token", "created_at", "updated_at"}).
			AddRow("u1", "at", "rt", now, now))

	repo := NewUserRepository(mock, slog.Default())
	record, err := repo.FindByUserID(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, "at", record.AccessToken)
	assert.Equal(t, "rt", record.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT user_id, access_token, refresh_token").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mock, slog.Default())
	record, err := repo.FindByUserID(context.Background(), "missing")

	assert.Nil(t, record)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUserID_QueryFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	queryErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT user_id, access_token, refresh_token").
		WithArgs("u1").
		WillReturnError(queryErr)

	repo := NewUserRepository(mock, slog.Default())
	record, err := repo.FindByUserID(context.Background(), "u1")

	assert.Nil(t, record)
	assert.True(t, errors.Is(err, queryErr))
	assert.False(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestUserRepository_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "at", "rt").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewUserRepository(mock, slog.Default())
	err = repo.Upsert(context.Background(), &domain.UserRecord{
		UserID:       "u1",
		AccessToken:  "at",
		RefreshToken: "rt",
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Upsert_Failure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	execErr := errors.New("constraint violation")
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "at", "rt").
		WillReturnError(execErr)

	repo := NewUserRepository(mock, slog.Default())
	err = repo.Upsert(context.Background(), &domain.UserRecord{
		UserID:       "u1",
		AccessToken:  "at",
		RefreshToken: "rt",
	})

	assert.True(t, errors.Is(err, execErr))
}
