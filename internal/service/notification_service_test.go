package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publishingCore/internal/errs"
	"publishingCore/internal/models"
	"publishingCore/internal/repository"
)

const (
	recipientQuery = `SELECT user_id, notification_preferences FROM users WHERE user_id`
	userQuery      = `SELECT \* FROM users WHERE user_id`
)

var userColumns = []string{"user_id", "username", "display_name", "notification_preferences", "created_at"}

func newNotificationFixture(t *testing.T) (NotificationService, sqlmock.Sqlmock) {
	db, sqlMock := setupMockDB(t)
	return NewNotificationService(repository.NewRepository(db), zerolog.Nop()), sqlMock
}

func TestWants(t *testing.T) {
	tests := []struct {
		name  string
		prefs *string
		typ   models.NotificationType
		want  bool
	}{
		{name: "no preferences", prefs: nil, typ: models.NotificationClap, want: true},
		{name: "empty blob", prefs: strPtr(""), typ: models.NotificationClap, want: true},
		{name: "unreadable blob", prefs: strPtr("{not json"), typ: models.NotificationClap, want: true},
		{name: "type not mentioned", prefs: strPtr(`{"push_notifications":{"follow":false}}`), typ: models.NotificationClap, want: true},
		{name: "disabled", prefs: strPtr(`{"push_notifications":{"clap":false}}`), typ: models.NotificationClap, want: false},
		{name: "enabled", prefs: strPtr(`{"push_notifications":{"clap":true}}`), typ: models.NotificationClap, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipient := &models.Recipient{UserID: "u1", NotificationPreferences: tt.prefs}
			assert.Equal(t, tt.want, wants(recipient, tt.typ))
		})
	}
}

func TestNotificationService_NotifyClap(t *testing.T) {
	svc, db := newNotificationFixture(t)

	db.ExpectQuery(articleByID).WithArgs("art-1").
		WillReturnRows(articleRows("art-1", "author", "My Post", "my-post", models.ArticlePublished))
	db.ExpectQuery(recipientQuery).WithArgs("author").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "notification_preferences"}).AddRow("author", nil))
	db.ExpectQuery(userQuery).WithArgs("fan").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("fan", "fan", "Ada", nil, time.Now()))
	db.ExpectExec(`ON CONFLICT \(user_id, type, related_id, actor_id\) WHERE type = 'clap'`).
		WithArgs(sqlmock.AnyArg(), "author", "fan", `Ada gave 1,200 claps to "My Post"`, "art-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.NotifyClap(context.Background(), "art-1", "fan", 1200)

	require.NoError(t, err)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestNotificationService_NotifyClap_Skipped(t *testing.T) {
	t.Run("author clapping", func(t *testing.T) {
		svc, db := newNotificationFixture(t)
		db.ExpectQuery(articleByID).WithArgs("art-1").
			WillReturnRows(articleRows("art-1", "author", "My Post", "my-post", models.ArticlePublished))

		err := svc.NotifyClap(context.Background(), "art-1", "author", 1)

		require.NoError(t, err)
		assert.NoError(t, db.ExpectationsWereMet())
	})

	t.Run("claps turned off", func(t *testing.T) {
		svc, db := newNotificationFixture(t)
		db.ExpectQuery(articleByID).WithArgs("art-1").
			WillReturnRows(articleRows("art-1", "author", "My Post", "my-post", models.ArticlePublished))
		db.ExpectQuery(recipientQuery).WithArgs("author").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "notification_preferences"}).
				AddRow("author", `{"push_notifications":{"clap":false}}`))

		err := svc.NotifyClap(context.Background(), "art-1", "fan", 1)

		require.NoError(t, err)
		assert.NoError(t, db.ExpectationsWereMet())
	})
}

func TestNotificationService_NotifyNewArticle(t *testing.T) {
	svc, db := newNotificationFixture(t)

	db.ExpectQuery("FROM follows f JOIN users u").WithArgs("author").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "notification_preferences"}).
			AddRow("f1", nil).
			AddRow("f2", `{"push_notifications":{"new_article":false}}`).
			AddRow("f3", `{"push_notifications":{"clap":false}}`))
	db.ExpectQuery(userQuery).WithArgs("author").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("author", "writer", "", nil, time.Now()))
	db.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "f1", "author", "new_article", `writer published "My Post"`, "art-1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "f3", "author", "new_article", `writer published "My Post"`, "art-1", false, sqlmock.AnyArg()).
		WillReturnError(errors.New("deadlock detected"))

	sent, err := svc.NotifyNewArticle(context.Background(), &models.Article{ArticleID: "art-1", AuthorID: "author", Title: "My Post"})

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestNotificationService_NotifySubmissionDecision(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		svc, db := newNotificationFixture(t)
		db.ExpectQuery(recipientQuery).WithArgs("author").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "notification_preferences"}).AddRow("author", nil))
		db.ExpectExec("INSERT INTO notifications").
			WithArgs(sqlmock.AnyArg(), "author", "editor", "submission_approved",
				`Your submission "My Post" was approved and published`, "sub-1", false, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		submission := &models.ArticleSubmission{SubmissionID: "sub-1", SubmittedBy: "author", Status: models.SubmissionApproved}
		err := svc.NotifySubmissionDecision(context.Background(), submission, &models.Article{Title: "My Post"}, "editor")

		require.NoError(t, err)
		assert.NoError(t, db.ExpectationsWereMet())
	})

	t.Run("no decision yet", func(t *testing.T) {
		svc, db := newNotificationFixture(t)

		submission := &models.ArticleSubmission{SubmissionID: "sub-1", SubmittedBy: "author", Status: models.SubmissionPending}
		err := svc.NotifySubmissionDecision(context.Background(), submission, &models.Article{Title: "My Post"}, "editor")

		assert.True(t, errs.Is(err, errs.ValidationFailed))
		assert.NoError(t, db.ExpectationsWereMet())
	})
}

func TestNotificationService_NotifySubmissionReceived_OwnerSubmitting(t *testing.T) {
	svc, db := newNotificationFixture(t)

	db.ExpectQuery(`SELECT \* FROM publications WHERE publication_id`).WithArgs("pub-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"publication_id", "owner_id", "name", "description", "logo_url", "created_at", "updated_at",
		}).AddRow("pub-1", "author", "Weekly", "", "", time.Now(), time.Now()))

	submission := &models.ArticleSubmission{SubmissionID: "sub-1", PublicationID: "pub-1", SubmittedBy: "author"}
	err := svc.NotifySubmissionReceived(context.Background(), submission, &models.Article{Title: "My Post"})

	require.NoError(t, err)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestNotificationService_NotifyFollow_Self(t *testing.T) {
	svc, db := newNotificationFixture(t)

	err := svc.NotifyFollow(context.Background(), "u1", "u1")

	require.NoError(t, err)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestNotificationService_SetPreference(t *testing.T) {
	svc, db := newNotificationFixture(t)

	db.ExpectQuery(userQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "ada", "Ada", `{"push_notifications":{"follow":true}}`, time.Now()))
	db.ExpectExec("UPDATE users SET notification_preferences").
		WithArgs(`{"push_notifications":{"clap":false,"follow":true}}`, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.SetPreference(context.Background(), "u1", models.NotificationClap, false)

	require.NoError(t, err)
	assert.NoError(t, db.ExpectationsWereMet())
}

func TestNotificationService_ListNotifications_Limits(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		wantLimit int
		wantOff   int
	}{
		{name: "default", limit: 0, offset: 0, wantLimit: 20, wantOff: 0},
		{name: "capped", limit: 500, offset: 10, wantLimit: 100, wantOff: 10},
		{name: "negative offset", limit: 5, offset: -3, wantLimit: 5, wantOff: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := newNotificationFixture(t)
			db.ExpectQuery("FROM notifications WHERE user_id").
				WithArgs("u1", true, tt.wantLimit, tt.wantOff).
				WillReturnRows(sqlmock.NewRows([]string{"notification_id"}))

			notifications, err := svc.ListNotifications(context.Background(), "u1", true, tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Empty(t, notifications)
			assert.NoError(t, db.ExpectationsWereMet())
		})
	}
}

func TestNotificationService_CleanupOld(t *testing.T) {
	t.Run("non positive retention", func(t *testing.T) {
		svc, db := newNotificationFixture(t)

		_, err := svc.CleanupOld(context.Background(), 0)

		assert.True(t, errs.Is(err, errs.ValidationFailed))
		assert.NoError(t, db.ExpectationsWereMet())
	})

	t.Run("deletes", func(t *testing.T) {
		svc, db := newNotificationFixture(t)
		db.ExpectExec("DELETE FROM notifications WHERE created_at").
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 7))

		n, err := svc.CleanupOld(context.Background(), 30*24*time.Hour)

		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})
}
