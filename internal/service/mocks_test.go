package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"publishingCore/internal/models"
)

type MockPermissionChecker struct {
	mock.Mock
}

func (m *MockPermissionChecker) HasPermission(ctx context.Context, publicationID, userID string, required models.Role) (bool, error) {
	args := m.Called(ctx, publicationID, userID, required)
	return args.Bool(0), args.Error(1)
}

func (m *MockPermissionChecker) CanEditArticle(ctx context.Context, article *models.Article, userID string) (bool, error) {
	args := m.Called(ctx, article, userID)
	return args.Bool(0), args.Error(1)
}

type MockComplianceChecker struct {
	mock.Mock
}

func (m *MockComplianceChecker) CheckCompliance(ctx context.Context, articleID, publicationID string) (*ComplianceReport, error) {
	args := m.Called(ctx, articleID, publicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ComplianceReport), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifyFollow(ctx context.Context, followerID, followedID string) error {
	return m.Called(ctx, followerID, followedID).Error(0)
}

func (m *MockNotificationService) NotifyClap(ctx context.Context, articleID, actorID string, clapCount int) error {
	return m.Called(ctx, articleID, actorID, clapCount).Error(0)
}

func (m *MockNotificationService) NotifyComment(ctx context.Context, articleID, commenterID, commentID string) error {
	return m.Called(ctx, articleID, commenterID, commentID).Error(0)
}

func (m *MockNotificationService) NotifyPublicationInvite(ctx context.Context, publicationID, inviterID, inviteeID string, role models.Role) error {
	return m.Called(ctx, publicationID, inviterID, inviteeID, role).Error(0)
}

func (m *MockNotificationService) NotifyNewArticle(ctx context.Context, article *models.Article) (int, error) {
	args := m.Called(ctx, article)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) NotifySubmissionReceived(ctx context.Context, submission *models.ArticleSubmission, article *models.Article) error {
	return m.Called(ctx, submission, article).Error(0)
}

func (m *MockNotificationService) NotifySubmissionDecision(ctx context.Context, submission *models.ArticleSubmission, article *models.Article, reviewerID string) error {
	return m.Called(ctx, submission, article, reviewerID).Error(0)
}

func (m *MockNotificationService) SetPreference(ctx context.Context, userID string, notificationType models.NotificationType, enabled bool) error {
	return m.Called(ctx, userID, notificationType, enabled).Error(0)
}

func (m *MockNotificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return m.Called(ctx, notificationID, userID).Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) CleanupOld(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	return sqlxDB, mock
}

var articleColumns = []string{
	"article_id", "author_id", "publication_id", "submission_id", "title", "subtitle", "content",
	"featured_image_url", "slug", "status", "published_at", "reading_time", "revision_count",
	"last_edited_by", "last_edited_at", "moderation_status", "created_at", "updated_at", "tags",
}

// articleRows returns one article row. publishedAt is only set for published
// articles.
func articleRows(id, authorID, title, slug string, status models.ArticleStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	var publishedAt any
	if status == models.ArticlePublished {
		publishedAt = now
	}
	var publicationID any = "pub-1"

	return sqlmock.NewRows(articleColumns).AddRow(
		id, authorID, publicationID, nil, title, "", "body",
		"", slug, string(status), publishedAt, 1, 1,
		nil, nil, "pending", now, now, "{}",
	)
}

var submissionColumns = []string{
	"submission_id", "article_id", "publication_id", "submitted_by", "status",
	"reviewed_by", "reviewed_at", "review_notes", "revision_notes", "submitted_at", "updated_at",
}

func submissionRows(id string, status models.SubmissionStatus, reviewedBy any, reviewedAt any, notes any) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(submissionColumns).AddRow(
		id, "art-1", "pub-1", "author", string(status),
		reviewedBy, reviewedAt, notes, nil, now, now,
	)
}

var revisionColumns = []string{
	"revision_id", "article_id", "revision_number", "title", "subtitle", "content",
	"featured_image_url", "tags", "created_by", "change_summary", "is_major_revision", "created_at",
}
