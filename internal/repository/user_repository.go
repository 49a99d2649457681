package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"publishingCore/internal/models"
)

type userRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE user_id = $1`

	if err := sqlx.GetContext(ctx, r.db, &user, query, userID); err != nil {
		return nil, wrap(err, "could not get user "+userID)
	}

	return &user, nil
}

func (r *userRepository) GetRecipient(ctx context.Context, userID string) (*models.Recipient, error) {
	var recipient models.Recipient

	query := `SELECT user_id, notification_preferences FROM users WHERE user_id = $1`

	if err := sqlx.GetContext(ctx, r.db, &recipient, query, userID); err != nil {
		return nil, wrap(err, "could not get recipient "+userID)
	}

	return &recipient, nil
}

// GetFollowers returns everyone following userID with their preference blobs.
func (r *userRepository) GetFollowers(ctx context.Context, userID string) ([]models.Recipient, error) {
	followers := []models.Recipient{}

	query := `
		SELECT u.user_id, u.notification_preferences
		FROM follows f
		JOIN users u ON u.user_id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at
	`

	if err := sqlx.SelectContext(ctx, r.db, &followers, query, userID); err != nil {
		return nil, wrap(err, "could not list followers")
	}

	return followers, nil
}

func (r *userRepository) UpdateNotificationPreferences(ctx context.Context, userID, preferences string) error {
	query := `UPDATE users SET notification_preferences = $1 WHERE user_id = $2`

	result, err := r.db.ExecContext(ctx, query, preferences, userID)
	if err != nil {
		return wrap(err, "could not update notification preferences")
	}

	return expectOne(result, "user "+userID, ErrNotFound)
}
