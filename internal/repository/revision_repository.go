package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"publishingCore/internal/models"
)

type revisionRepository struct {
	db sqlx.ExtContext
}

func NewRevisionRepository(db sqlx.ExtContext) RevisionRepository {
	return &revisionRepository{db: db}
}

// NextNumber returns max(revision_number)+1, or 1 for an article without
// revisions. Callers serialise on the article row before calling it.
func (r *revisionRepository) NextNumber(ctx context.Context, articleID string) (int, error) {
	var next int

	query := `SELECT COALESCE(MAX(revision_number), 0) + 1 FROM article_revisions WHERE article_id = $1`

	if err := sqlx.GetContext(ctx, r.db, &next, query, articleID); err != nil {
		return 0, wrap(err, "could not compute next revision number")
	}

	return next, nil
}

func (r *revisionRepository) Create(ctx context.Context, revision *models.ArticleRevision) error {
	query := `
		INSERT INTO article_revisions
		(revision_id, article_id, revision_number, title, subtitle, content, featured_image_url,
		 tags, created_by, change_summary, is_major_revision, created_at)
		VALUES
		(:revision_id, :article_id, :revision_number, :title, :subtitle, :content, :featured_image_url,
		 :tags, :created_by, :change_summary, :is_major_revision, :created_at)
	`

	revision.RevisionID = uuid.New().String()
	revision.CreatedAt = time.Now().UTC()
	if revision.Tags == nil {
		revision.Tags = []string{}
	}

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, revision); err != nil {
		return wrap(err, "could not create revision")
	}

	return nil
}

func (r *revisionRepository) GetByNumber(ctx context.Context, articleID string, number int) (*models.ArticleRevision, error) {
	var revision models.ArticleRevision

	query := `SELECT * FROM article_revisions WHERE article_id = $1 AND revision_number = $2`

	if err := sqlx.GetContext(ctx, r.db, &revision, query, articleID, number); err != nil {
		return nil, wrap(err, "could not get revision")
	}

	return &revision, nil
}

func (r *revisionRepository) GetLatest(ctx context.Context, articleID string) (*models.ArticleRevision, error) {
	var revision models.ArticleRevision

	query := `
		SELECT * FROM article_revisions
		WHERE article_id = $1
		ORDER BY revision_number DESC
		LIMIT 1
	`

	if err := sqlx.GetContext(ctx, r.db, &revision, query, articleID); err != nil {
		return nil, wrap(err, "could not get latest revision")
	}

	return &revision, nil
}

func (r *revisionRepository) List(ctx context.Context, articleID string) ([]models.ArticleRevision, error) {
	revisions := []models.ArticleRevision{}

	query := `SELECT * FROM article_revisions WHERE article_id = $1 ORDER BY revision_number DESC`

	if err := sqlx.SelectContext(ctx, r.db, &revisions, query, articleID); err != nil {
		return nil, wrap(err, "could not list revisions")
	}

	return revisions, nil
}

func (r *revisionRepository) Stats(ctx context.Context, articleID string) (*models.RevisionStats, error) {
	var stats models.RevisionStats

	query := `
		SELECT
			COUNT(*) AS total_revisions,
			COUNT(*) FILTER (WHERE is_major_revision) AS major_revisions,
			COUNT(DISTINCT created_by) AS contributors,
			MIN(created_at) AS first_revision,
			MAX(created_at) AS last_revision
		FROM article_revisions
		WHERE article_id = $1
	`

	if err := sqlx.GetContext(ctx, r.db, &stats, query, articleID); err != nil {
		return nil, wrap(err, "could not get revision stats")
	}

	return &stats, nil
}

func (r *revisionRepository) Contributors(ctx context.Context, articleID string) ([]models.Contributor, error) {
	contributors := []models.Contributor{}

	query := `
		SELECT
			u.user_id,
			u.username,
			COUNT(*) AS revision_count,
			MIN(ar.created_at) AS first_contribution,
			MAX(ar.created_at) AS last_contribution
		FROM article_revisions ar
		JOIN users u ON u.user_id = ar.created_by
		WHERE ar.article_id = $1
		GROUP BY u.user_id, u.username
		ORDER BY revision_count DESC, u.username
	`

	if err := sqlx.SelectContext(ctx, r.db, &contributors, query, articleID); err != nil {
		return nil, wrap(err, "could not list contributors")
	}

	return contributors, nil
}
