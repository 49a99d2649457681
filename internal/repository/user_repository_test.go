package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetUserByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewUserRepository(sqlxDB)

	ctx := context.Background()
	userID := uuid.New().String()
	prefs := `{"push_notifications":{"clap":false}}`

	t.Run("user found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"user_id", "username", "display_name", "notification_preferences", "created_at",
		}).
			AddRow(userID, "ada", "Ada Lovelace", prefs, time.Now())

		mock.ExpectQuery(`SELECT * FROM users WHERE user_id = $1`).
			WithArgs(userID).
			WillReturnRows(rows)

		user, err := repo.GetUserByID(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, userID, user.UserID)
		assert.Equal(t, "ada", user.Username)
		assert.Equal(t, "Ada Lovelace", user.DisplayName)
		require.NotNil(t, user.NotificationPreferences)
		assert.Equal(t, prefs, *user.NotificationPreferences)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT * FROM users WHERE user_id = $1`).
			WithArgs(userID).
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByID(ctx, userID)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, user)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT * FROM users WHERE user_id = $1`).
			WithArgs(userID).
			WillReturnError(errors.New("connection failed"))

		user, err := repo.GetUserByID(ctx, userID)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Nil(t, user)
		assert.Contains(t, err.Error(), "could not get user")
	})
}

func TestUserRepository_GetFollowers(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "notification_preferences"}).
		AddRow("f1", nil).
		AddRow("f2", `{"push_notifications":{"new_article":false}}`)

	mock.ExpectQuery("FROM follows f JOIN users u").
		WithArgs("author").
		WillReturnRows(rows)

	followers, err := repo.GetFollowers(context.Background(), "author")

	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "f1", followers[0].UserID)
	assert.Nil(t, followers[0].NotificationPreferences)
	require.NotNil(t, followers[1].NotificationPreferences)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateNotificationPreferences(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "updated",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE users SET notification_preferences").
					WithArgs(`{}`, "u1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "unknown user",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE users SET notification_preferences").
					WithArgs(`{}`, "u1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewUserRepository(db)
			tt.setupMock(mock)

			err := repo.UpdateNotificationPreferences(context.Background(), "u1", `{}`)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
