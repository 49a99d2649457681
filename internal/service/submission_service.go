package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"publishingCore/internal/errs"
	"publishingCore/internal/models"
	"publishingCore/internal/repository"
)

type SubmissionService interface {
	SubmitArticle(ctx context.Context, articleID, publicationID, submittedBy string) (*models.ArticleSubmission, error)
	AssignReviewer(ctx context.Context, submissionID, reviewerID string) (*models.ArticleSubmission, error)
	ApproveSubmission(ctx context.Context, submissionID, reviewerID string, notes *string) (*models.ArticleSubmission, error)
	RejectSubmission(ctx context.Context, submissionID, reviewerID string, notes *string) (*models.ArticleSubmission, error)
	RequestRevision(ctx context.Context, submissionID, reviewerID string, revisionNotes *string) (*models.ArticleSubmission, error)
	ResubmitAfterRevision(ctx context.Context, submissionID, userID string) (*models.ArticleSubmission, error)
	CanUserReview(ctx context.Context, submissionID, userID string) (bool, error)
	GetSubmission(ctx context.Context, submissionID string) (*models.ArticleSubmission, error)
	ListPublicationSubmissions(ctx context.Context, publicationID string, status models.SubmissionStatus) ([]models.ArticleSubmission, error)
	ListArticleSubmissions(ctx context.Context, articleID string) ([]models.ArticleSubmission, error)
}

type submissionService struct {
	repo              *repository.Repository
	permissions       PermissionChecker
	compliance        ComplianceChecker
	notifier          NotificationService
	enforceGuidelines bool
	log               zerolog.Logger
}

func NewSubmissionService(
	repo *repository.Repository,
	permissions PermissionChecker,
	compliance ComplianceChecker,
	notifier NotificationService,
	enforceGuidelines bool,
	log zerolog.Logger,
) SubmissionService {
	return &submissionService{
		repo:              repo,
		permissions:       permissions,
		compliance:        compliance,
		notifier:          notifier,
		enforceGuidelines: enforceGuidelines,
		log:               log,
	}
}

// SubmitArticle opens a pending submission of the author's article to a
// publication where the author writes. A second active submission for the
// same pair is a Conflict.
func (s *submissionService) SubmitArticle(ctx context.Context, articleID, publicationID, submittedBy string) (*models.ArticleSubmission, error) {
	const op = "submission.SubmitArticle"

	article, err := s.repo.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, op, err)
	}
	if article.AuthorID != submittedBy {
		return nil, errs.E(op, errs.Unauthorized, "only the author may submit this article")
	}

	ok, err := s.permissions.HasPermission(ctx, publicationID, submittedBy, models.RoleWriter)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.E(op, errs.Unauthorized, "submitter is not a writer of the publication")
	}

	if s.enforceGuidelines {
		report, err := s.compliance.CheckCompliance(ctx, articleID, publicationID)
		if err != nil {
			return nil, err
		}
		if !report.Compliant {
			return nil, errs.E(op, errs.ValidationFailed, fmt.Sprintf("article does not meet the publication guidelines (score %d)", report.Score))
		}
	}

	submission := &models.ArticleSubmission{
		ArticleID:     articleID,
		PublicationID: publicationID,
		SubmittedBy:   submittedBy,
	}

	err = s.repo.Transact(ctx, func(tx *repository.Repository) error {
		created, err := tx.Submission.CreateIfNoActive(ctx, submission)
		if err != nil {
			return err
		}
		if !created {
			return errs.E(op, errs.Conflict, "article already has an active submission to this publication")
		}
		return tx.Article.AttachSubmission(ctx, articleID, submission.SubmissionID)
	})
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	s.log.Info().Str("op", op).Str("submission_id", submission.SubmissionID).Str("article_id", articleID).Str("publication_id", publicationID).Msg("article submitted")

	if err := s.notifier.NotifySubmissionReceived(ctx, submission, article); err != nil {
		s.log.Warn().Err(err).Str("op", op).Str("submission_id", submission.SubmissionID).Msg("submission notification failed")
	}

	return submission, nil
}

// reviewable loads the submission and makes sure reviewerID may review it.
func (s *submissionService) reviewable(ctx context.Context, op, submissionID, reviewerID string) (*models.ArticleSubmission, error) {
	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	ok, err := s.canReview(ctx, submission, reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.E(op, errs.Unauthorized, "user may not review this submission")
	}
	return submission, nil
}

func (s *submissionService) canReview(ctx context.Context, submission *models.ArticleSubmission, userID string) (bool, error) {
	if submission.SubmittedBy == userID {
		return false, nil
	}
	return s.permissions.HasPermission(ctx, submission.PublicationID, userID, models.RoleEditor)
}

func (s *submissionService) CanUserReview(ctx context.Context, submissionID, userID string) (bool, error) {
	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		return false, fail(s.log, "submission.CanUserReview", err)
	}
	return s.canReview(ctx, submission, userID)
}

func (s *submissionService) AssignReviewer(ctx context.Context, submissionID, reviewerID string) (*models.ArticleSubmission, error) {
	const op = "submission.AssignReviewer"

	if _, err := s.reviewable(ctx, op, submissionID, reviewerID); err != nil {
		return nil, err
	}

	if err := s.repo.Submission.AssignReviewer(ctx, submissionID, reviewerID); err != nil {
		return nil, fail(s.log, op, err)
	}

	return s.GetSubmission(ctx, submissionID)
}

// ApproveSubmission approves the submission and publishes its article in one
// transaction. The article joins the reviewing publication only here, so a
// pending or rejected submission gives that publication no rights over it.
func (s *submissionService) ApproveSubmission(ctx context.Context, submissionID, reviewerID string, notes *string) (*models.ArticleSubmission, error) {
	const op = "submission.ApproveSubmission"

	submission, err := s.reviewable(ctx, op, submissionID, reviewerID)
	if err != nil {
		return nil, err
	}

	var article *models.Article
	err = s.repo.Transact(ctx, func(tx *repository.Repository) error {
		now := time.Now().UTC()
		if err := tx.Submission.Review(ctx, submissionID, models.SubmissionApproved, reviewerID, notes, now); err != nil {
			return err
		}

		var err error
		article, err = tx.Article.GetByID(ctx, submission.ArticleID)
		if err != nil {
			return err
		}

		if article.PublicationID == nil || *article.PublicationID != submission.PublicationID {
			if err := tx.Article.JoinPublication(ctx, article.ArticleID, submission.PublicationID); err != nil {
				return err
			}
			publicationID := submission.PublicationID
			article.PublicationID = &publicationID
		}
		return publishInTx(ctx, tx, article, now)
	})
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	s.log.Info().Str("op", op).Str("submission_id", submissionID).Str("article_id", submission.ArticleID).Msg("submission approved")

	return s.decided(ctx, op, submissionID, article, reviewerID)
}

func (s *submissionService) RejectSubmission(ctx context.Context, submissionID, reviewerID string, notes *string) (*models.ArticleSubmission, error) {
	const op = "submission.RejectSubmission"

	if _, err := s.reviewable(ctx, op, submissionID, reviewerID); err != nil {
		return nil, err
	}

	if err := s.repo.Submission.Review(ctx, submissionID, models.SubmissionRejected, reviewerID, notes, time.Now().UTC()); err != nil {
		return nil, fail(s.log, op, err)
	}

	return s.decided(ctx, op, submissionID, nil, reviewerID)
}

func (s *submissionService) RequestRevision(ctx context.Context, submissionID, reviewerID string, revisionNotes *string) (*models.ArticleSubmission, error) {
	const op = "submission.RequestRevision"

	if _, err := s.reviewable(ctx, op, submissionID, reviewerID); err != nil {
		return nil, err
	}

	if err := s.repo.Submission.RequestRevision(ctx, submissionID, reviewerID, revisionNotes, time.Now().UTC()); err != nil {
		return nil, fail(s.log, op, err)
	}

	return s.decided(ctx, op, submissionID, nil, reviewerID)
}

// decided reloads a reviewed submission and tells the submitter. Notification
// failures are logged only.
func (s *submissionService) decided(ctx context.Context, op, submissionID string, article *models.Article, reviewerID string) (*models.ArticleSubmission, error) {
	submission, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if article == nil {
		article, err = s.repo.Article.GetByID(ctx, submission.ArticleID)
		if err != nil {
			s.log.Warn().Err(err).Str("op", op).Str("submission_id", submissionID).Msg("could not load article for notification")
			return submission, nil
		}
	}

	if err := s.notifier.NotifySubmissionDecision(ctx, submission, article, reviewerID); err != nil {
		s.log.Warn().Err(err).Str("op", op).Str("submission_id", submissionID).Msg("decision notification failed")
	}

	return submission, nil
}

// ResubmitAfterRevision puts a submission back to pending. Whether the author
// actually changed anything is not checked.
func (s *submissionService) ResubmitAfterRevision(ctx context.Context, submissionID, userID string) (*models.ArticleSubmission, error) {
	const op = "submission.ResubmitAfterRevision"

	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fail(s.log, op, err)
	}
	if submission.SubmittedBy != userID {
		return nil, errs.E(op, errs.Unauthorized, "only the submitter may resubmit")
	}

	if err := s.repo.Submission.Resubmit(ctx, submissionID); err != nil {
		return nil, fail(s.log, op, err)
	}

	submission, err = s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if article, err := s.repo.Article.GetByID(ctx, submission.ArticleID); err == nil {
		if err := s.notifier.NotifySubmissionReceived(ctx, submission, article); err != nil {
			s.log.Warn().Err(err).Str("op", op).Str("submission_id", submissionID).Msg("resubmission notification failed")
		}
	}

	return submission, nil
}

func (s *submissionService) GetSubmission(ctx context.Context, submissionID string) (*models.ArticleSubmission, error) {
	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fail(s.log, "submission.GetSubmission", err)
	}
	return submission, nil
}

// ListPublicationSubmissions lists a publication's queue. An empty status
// lists all of them.
func (s *submissionService) ListPublicationSubmissions(ctx context.Context, publicationID string, status models.SubmissionStatus) ([]models.ArticleSubmission, error) {
	submissions, err := s.repo.Submission.ListByPublication(ctx, publicationID, status)
	if err != nil {
		return nil, fail(s.log, "submission.ListPublicationSubmissions", err)
	}
	return submissions, nil
}

func (s *submissionService) ListArticleSubmissions(ctx context.Context, articleID string) ([]models.ArticleSubmission, error) {
	submissions, err := s.repo.Submission.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, "submission.ListArticleSubmissions", err)
	}
	return submissions, nil
}
