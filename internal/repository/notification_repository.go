package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"publishingCore/internal/models"
)

type notificationRepository struct {
	db sqlx.ExtContext
}

func NewNotificationRepository(db sqlx.ExtContext) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications
		(notification_id, user_id, actor_id, type, content, related_id, is_read, created_at)
		VALUES
		(:notification_id, :user_id, :actor_id, :type, :content, :related_id, :is_read, :created_at)
	`

	notification.NotificationID = uuid.New().String()
	notification.IsRead = false
	notification.CreatedAt = time.Now().UTC()

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, notification); err != nil {
		return wrap(err, "could not create notification")
	}

	return nil
}

// UpsertClap keeps one clap notification per (recipient, article, actor). A
// repeat clap rewrites the text, moves it to the top and marks it unread.
func (r *notificationRepository) UpsertClap(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications
		(notification_id, user_id, actor_id, type, content, related_id, is_read, created_at)
		VALUES
		(:notification_id, :user_id, :actor_id, 'clap', :content, :related_id, FALSE, :created_at)
		ON CONFLICT (user_id, type, related_id, actor_id) WHERE type = 'clap'
		DO UPDATE SET
			content = EXCLUDED.content,
			is_read = FALSE,
			created_at = EXCLUDED.created_at
	`

	notification.NotificationID = uuid.New().String()
	notification.Type = models.NotificationClap
	notification.IsRead = false
	notification.CreatedAt = time.Now().UTC()

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, notification); err != nil {
		return wrap(err, "could not upsert clap notification")
	}

	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	notifications := []models.Notification{}

	query := `
		SELECT * FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	if err := sqlx.SelectContext(ctx, r.db, &notifications, query, userID, unreadOnly, limit, offset); err != nil {
		return nil, wrap(err, "could not list notifications")
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return wrap(err, "could not mark notification read")
	}

	return expectOne(result, "notification "+notificationID, ErrNotFound)
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, wrap(err, "could not mark notifications read")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(err, "could not check updated rows")
	}

	return rowsAffected, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`

	if err := sqlx.GetContext(ctx, r.db, &count, query, userID); err != nil {
		return 0, wrap(err, "could not count unread notifications")
	}

	return count, nil
}

func (r *notificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, wrap(err, "could not delete old notifications")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(err, "could not check deleted rows")
	}

	return rowsAffected, nil
}
