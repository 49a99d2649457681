package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"publishingCore/internal/errs"
	"publishingCore/internal/models"
	"publishingCore/internal/repository"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type NotificationService interface {
	NotifyFollow(ctx context.Context, followerID, followedID string) error
	NotifyClap(ctx context.Context, articleID, actorID string, clapCount int) error
	NotifyComment(ctx context.Context, articleID, commenterID, commentID string) error
	NotifyPublicationInvite(ctx context.Context, publicationID, inviterID, inviteeID string, role models.Role) error
	NotifyNewArticle(ctx context.Context, article *models.Article) (int, error)
	NotifySubmissionReceived(ctx context.Context, submission *models.ArticleSubmission, article *models.Article) error
	NotifySubmissionDecision(ctx context.Context, submission *models.ArticleSubmission, article *models.Article, reviewerID string) error

	SetPreference(ctx context.Context, userID string, notificationType models.NotificationType, enabled bool) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	CleanupOld(ctx context.Context, retention time.Duration) (int64, error)
}

// Preferences mirrors the JSON blob stored on the user row.
type Preferences struct {
	PushNotifications map[models.NotificationType]bool `json:"push_notifications"`
}

type notificationService struct {
	repo *repository.Repository
	log  zerolog.Logger
}

func NewNotificationService(repo *repository.Repository, log zerolog.Logger) NotificationService {
	return &notificationService{
		repo: repo,
		log:  log,
	}
}

// wants reports whether the recipient accepts notifications of type t. Missing
// or unreadable preferences mean yes.
func wants(recipient *models.Recipient, t models.NotificationType) bool {
	if recipient == nil || recipient.NotificationPreferences == nil || *recipient.NotificationPreferences == "" {
		return true
	}

	var prefs Preferences
	if err := json.Unmarshal([]byte(*recipient.NotificationPreferences), &prefs); err != nil {
		return true
	}

	enabled, ok := prefs.PushNotifications[t]
	if !ok {
		return true
	}
	return enabled
}

// allowed looks the recipient up and applies the preference gate.
func (s *notificationService) allowed(ctx context.Context, userID string, t models.NotificationType) (bool, error) {
	recipient, err := s.repo.User.GetRecipient(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return wants(recipient, t), nil
}

func (s *notificationService) displayName(ctx context.Context, userID string) string {
	user, err := s.repo.User.GetUserByID(ctx, userID)
	if err != nil {
		return "Someone"
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Username
}

func (s *notificationService) send(ctx context.Context, op string, n *models.Notification) error {
	ok, err := s.allowed(ctx, n.UserID, n.Type)
	if err != nil {
		return fail(s.log, op, err)
	}
	if !ok {
		s.log.Debug().Str("op", op).Str("user_id", n.UserID).Str("type", string(n.Type)).Msg("notification disabled by preferences")
		return nil
	}

	if err := s.repo.Notification.Create(ctx, n); err != nil {
		return fail(s.log, op, err)
	}
	return nil
}

func (s *notificationService) NotifyFollow(ctx context.Context, followerID, followedID string) error {
	const op = "notification.NotifyFollow"

	if followerID == followedID {
		return nil
	}

	return s.send(ctx, op, &models.Notification{
		UserID:    followedID,
		ActorID:   strPtr(followerID),
		Type:      models.NotificationFollow,
		Content:   fmt.Sprintf("%s started following you", s.displayName(ctx, followerID)),
		RelatedID: strPtr(followerID),
	})
}

// NotifyClap keeps a single notification per clapper and article; clapping
// again refreshes it instead of adding a row.
func (s *notificationService) NotifyClap(ctx context.Context, articleID, actorID string, clapCount int) error {
	const op = "notification.NotifyClap"

	article, err := s.repo.Article.GetByID(ctx, articleID)
	if err != nil {
		return fail(s.log, op, err)
	}
	if article.AuthorID == actorID {
		return nil
	}

	ok, err := s.allowed(ctx, article.AuthorID, models.NotificationClap)
	if err != nil {
		return fail(s.log, op, err)
	}
	if !ok {
		return nil
	}

	claps := "clap"
	if clapCount != 1 {
		claps = "claps"
	}

	notification := &models.Notification{
		UserID:    article.AuthorID,
		ActorID:   strPtr(actorID),
		Type:      models.NotificationClap,
		Content:   fmt.Sprintf("%s gave %s %s to %q", s.displayName(ctx, actorID), humanize.Comma(int64(clapCount)), claps, article.Title),
		RelatedID: strPtr(articleID),
	}

	if err := s.repo.Notification.UpsertClap(ctx, notification); err != nil {
		return fail(s.log, op, err)
	}
	return nil
}

func (s *notificationService) NotifyComment(ctx context.Context, articleID, commenterID, commentID string) error {
	const op = "notification.NotifyComment"

	article, err := s.repo.Article.GetByID(ctx, articleID)
	if err != nil {
		return fail(s.log, op, err)
	}
	if article.AuthorID == commenterID {
		return nil
	}

	return s.send(ctx, op, &models.Notification{
		UserID:    article.AuthorID,
		ActorID:   strPtr(commenterID),
		Type:      models.NotificationComment,
		Content:   fmt.Sprintf("%s commented on %q", s.displayName(ctx, commenterID), article.Title),
		RelatedID: strPtr(commentID),
	})
}

func (s *notificationService) NotifyPublicationInvite(ctx context.Context, publicationID, inviterID, inviteeID string, role models.Role) error {
	const op = "notification.NotifyPublicationInvite"

	if !ValidRole(role) {
		return errs.E(op, errs.ValidationFailed, "invalid role "+string(role))
	}

	publication, err := s.repo.Publication.GetByID(ctx, publicationID)
	if err != nil {
		return fail(s.log, op, err)
	}

	return s.send(ctx, op, &models.Notification{
		UserID:    inviteeID,
		ActorID:   strPtr(inviterID),
		Type:      models.NotificationPublicationInvite,
		Content:   fmt.Sprintf("%s invited you to join %s as %s", s.displayName(ctx, inviterID), publication.Name, role),
		RelatedID: strPtr(publicationID),
	})
}

// NotifyNewArticle tells every follower of the author about a published
// article and returns how many notifications were written. A failure for one
// follower does not stop the others.
func (s *notificationService) NotifyNewArticle(ctx context.Context, article *models.Article) (int, error) {
	const op = "notification.NotifyNewArticle"

	followers, err := s.repo.User.GetFollowers(ctx, article.AuthorID)
	if err != nil {
		return 0, fail(s.log, op, err)
	}

	text := fmt.Sprintf("%s published %q", s.displayName(ctx, article.AuthorID), article.Title)

	sent := 0
	for i := range followers {
		follower := &followers[i]
		if !wants(follower, models.NotificationNewArticle) {
			continue
		}

		err := s.repo.Notification.Create(ctx, &models.Notification{
			UserID:    follower.UserID,
			ActorID:   strPtr(article.AuthorID),
			Type:      models.NotificationNewArticle,
			Content:   text,
			RelatedID: strPtr(article.ArticleID),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("op", op).Str("user_id", follower.UserID).Msg("could not notify follower")
			continue
		}
		sent++
	}

	return sent, nil
}

// NotifySubmissionReceived tells the publication owner about a new or
// resubmitted submission.
func (s *notificationService) NotifySubmissionReceived(ctx context.Context, submission *models.ArticleSubmission, article *models.Article) error {
	const op = "notification.NotifySubmissionReceived"

	publication, err := s.repo.Publication.GetByID(ctx, submission.PublicationID)
	if err != nil {
		return fail(s.log, op, err)
	}
	if publication.OwnerID == submission.SubmittedBy {
		return nil
	}

	return s.send(ctx, op, &models.Notification{
		UserID:    publication.OwnerID,
		ActorID:   strPtr(submission.SubmittedBy),
		Type:      models.NotificationSubmissionReceived,
		Content:   fmt.Sprintf("%q was submitted to %s", article.Title, publication.Name),
		RelatedID: strPtr(submission.SubmissionID),
	})
}

// NotifySubmissionDecision tells the submitter that a reviewer approved,
// rejected or sent back their submission. The submission status picks the
// notification type.
func (s *notificationService) NotifySubmissionDecision(ctx context.Context, submission *models.ArticleSubmission, article *models.Article, reviewerID string) error {
	const op = "notification.NotifySubmissionDecision"

	var (
		t    models.NotificationType
		text string
	)
	switch submission.Status {
	case models.SubmissionApproved:
		t = models.NotificationSubmissionApproved
		text = fmt.Sprintf("Your submission %q was approved and published", article.Title)
	case models.SubmissionRejected:
		t = models.NotificationSubmissionRejected
		text = fmt.Sprintf("Your submission %q was not accepted", article.Title)
	case models.SubmissionRevisionRequested:
		t = models.NotificationRevisionRequested
		text = fmt.Sprintf("Changes were requested on %q", article.Title)
	default:
		return errs.E(op, errs.ValidationFailed, "no decision for status "+string(submission.Status))
	}

	return s.send(ctx, op, &models.Notification{
		UserID:    submission.SubmittedBy,
		ActorID:   strPtr(reviewerID),
		Type:      t,
		Content:   text,
		RelatedID: strPtr(submission.SubmissionID),
	})
}

func (s *notificationService) SetPreference(ctx context.Context, userID string, notificationType models.NotificationType, enabled bool) error {
	const op = "notification.SetPreference"

	user, err := s.repo.User.GetUserByID(ctx, userID)
	if err != nil {
		return fail(s.log, op, err)
	}

	prefs := Preferences{}
	if user.NotificationPreferences != nil && *user.NotificationPreferences != "" {
		// an unreadable blob is replaced
		_ = json.Unmarshal([]byte(*user.NotificationPreferences), &prefs)
	}
	if prefs.PushNotifications == nil {
		prefs.PushNotifications = make(map[models.NotificationType]bool)
	}
	prefs.PushNotifications[notificationType] = enabled

	blob, err := json.Marshal(prefs)
	if err != nil {
		return fail(s.log, op, err)
	}

	if err := s.repo.User.UpdateNotificationPreferences(ctx, userID, string(blob)); err != nil {
		return fail(s.log, op, err)
	}
	return nil
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.repo.Notification.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fail(s.log, "notification.ListNotifications", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	if err := s.repo.Notification.MarkRead(ctx, notificationID, userID); err != nil {
		return fail(s.log, "notification.MarkRead", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fail(s.log, "notification.MarkAllRead", err)
	}
	return n, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		return 0, fail(s.log, "notification.UnreadCount", err)
	}
	return n, nil
}

func (s *notificationService) CleanupOld(ctx context.Context, retention time.Duration) (int64, error) {
	const op = "notification.CleanupOld"

	if retention <= 0 {
		return 0, errs.E(op, errs.ValidationFailed, "retention must be positive")
	}

	cutoff := time.Now().UTC().Add(-retention)
	n, err := s.repo.Notification.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fail(s.log, op, err)
	}

	s.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("old notifications removed")
	return n, nil
}
