package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"publishingCore/internal/models"
)

type submissionRepository struct {
	db sqlx.ExtContext
}

func NewSubmissionRepository(db sqlx.ExtContext) SubmissionRepository {
	return &submissionRepository{db: db}
}

// CreateIfNoActive inserts a pending submission unless the pair already has an
// active one. The partial unique index decides, so concurrent callers cannot
// both succeed. It reports false when the insert was skipped.
func (r *submissionRepository) CreateIfNoActive(ctx context.Context, submission *models.ArticleSubmission) (bool, error) {
	query := `
		INSERT INTO article_submissions
		(submission_id, article_id, publication_id, submitted_by, status, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, $5)
		ON CONFLICT (article_id, publication_id) WHERE status IN ('pending', 'under_review', 'approved')
		DO NOTHING
		RETURNING submission_id
	`

	now := time.Now().UTC()
	id := uuid.New().String()

	var inserted string
	err := sqlx.GetContext(ctx, r.db, &inserted, query,
		id,
		submission.ArticleID,
		submission.PublicationID,
		submission.SubmittedBy,
		now,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrap(err, "could not create submission")
	}

	submission.SubmissionID = inserted
	submission.Status = models.SubmissionPending
	submission.SubmittedAt = now
	submission.UpdatedAt = now

	return true, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, submissionID string) (*models.ArticleSubmission, error) {
	var submission models.ArticleSubmission

	query := `SELECT * FROM article_submissions WHERE submission_id = $1`

	if err := sqlx.GetContext(ctx, r.db, &submission, query, submissionID); err != nil {
		return nil, wrap(err, "could not get submission")
	}

	return &submission, nil
}

func (r *submissionRepository) GetActive(ctx context.Context, articleID, publicationID string) (*models.ArticleSubmission, error) {
	var submission models.ArticleSubmission

	query := `
		SELECT * FROM article_submissions
		WHERE article_id = $1 AND publication_id = $2
		AND status IN ('pending', 'under_review', 'approved')
	`

	if err := sqlx.GetContext(ctx, r.db, &submission, query, articleID, publicationID); err != nil {
		return nil, wrap(err, "could not get active submission")
	}

	return &submission, nil
}

func (r *submissionRepository) AssignReviewer(ctx context.Context, submissionID, reviewerID string) error {
	query := `
		UPDATE article_submissions SET
			status = 'under_review',
			reviewed_by = $1,
			updated_at = CURRENT_TIMESTAMP
		WHERE submission_id = $2 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, reviewerID, submissionID)
	if err != nil {
		return wrap(err, "could not assign reviewer")
	}

	return expectOne(result, "submission "+submissionID+" is not pending", ErrConflict)
}

// Review closes an under_review submission as approved or rejected.
func (r *submissionRepository) Review(ctx context.Context, submissionID string, to models.SubmissionStatus, reviewerID string, notes *string, at time.Time) error {
	query := `
		UPDATE article_submissions SET
			status = $1,
			reviewed_by = $2,
			reviewed_at = $3,
			review_notes = $4,
			updated_at = $3
		WHERE submission_id = $5 AND status = 'under_review'
	`

	result, err := r.db.ExecContext(ctx, query, to, reviewerID, at, notes, submissionID)
	if err != nil {
		return wrap(err, "could not review submission")
	}

	return expectOne(result, "submission "+submissionID+" is not under review", ErrConflict)
}

func (r *submissionRepository) RequestRevision(ctx context.Context, submissionID, reviewerID string, notes *string, at time.Time) error {
	query := `
		UPDATE article_submissions SET
			status = 'revision_requested',
			reviewed_by = $1,
			reviewed_at = $2,
			revision_notes = $3,
			updated_at = $2
		WHERE submission_id = $4 AND status = 'under_review'
	`

	result, err := r.db.ExecContext(ctx, query, reviewerID, at, notes, submissionID)
	if err != nil {
		return wrap(err, "could not request revision")
	}

	return expectOne(result, "submission "+submissionID+" is not under review", ErrConflict)
}

// Resubmit returns a revision_requested submission to pending. A concurrent
// submission of the same pair wins through the partial unique index.
func (r *submissionRepository) Resubmit(ctx context.Context, submissionID string) error {
	query := `
		UPDATE article_submissions SET
			status = 'pending',
			revision_notes = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE submission_id = $1 AND status = 'revision_requested'
	`

	result, err := r.db.ExecContext(ctx, query, submissionID)
	if err != nil {
		return wrap(err, "could not resubmit")
	}

	return expectOne(result, "submission "+submissionID+" has no revision requested", ErrConflict)
}

// ListByPublication lists the submissions of a publication, newest first. An
// empty status lists every status.
func (r *submissionRepository) ListByPublication(ctx context.Context, publicationID string, status models.SubmissionStatus) ([]models.ArticleSubmission, error) {
	submissions := []models.ArticleSubmission{}

	query := `
		SELECT * FROM article_submissions
		WHERE publication_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY submitted_at DESC
	`

	if err := sqlx.SelectContext(ctx, r.db, &submissions, query, publicationID, string(status)); err != nil {
		return nil, wrap(err, "could not list publication submissions")
	}

	return submissions, nil
}

func (r *submissionRepository) ListByArticle(ctx context.Context, articleID string) ([]models.ArticleSubmission, error) {
	submissions := []models.ArticleSubmission{}

	query := `SELECT * FROM article_submissions WHERE article_id = $1 ORDER BY submitted_at DESC`

	if err := sqlx.SelectContext(ctx, r.db, &submissions, query, articleID); err != nil {
		return nil, wrap(err, "could not list article submissions")
	}

	return submissions, nil
}
