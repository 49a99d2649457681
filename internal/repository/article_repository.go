package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"publishingCore/internal/models"
)

const articleColumns = `
	a.article_id, a.author_id, a.publication_id, a.submission_id, a.title, a.subtitle, a.content,
	a.featured_image_url, COALESCE(a.slug, '') AS slug, a.status, a.published_at, a.reading_time,
	a.revision_count, a.last_edited_by, a.last_edited_at, a.moderation_status, a.created_at, a.updated_at,
	ARRAY(
		SELECT t.name FROM article_tags at JOIN tags t ON t.tag_id = at.tag_id
		WHERE at.article_id = a.article_id ORDER BY t.name
	) AS tags`

type ArticleRepositoryImpl struct {
	db sqlx.ExtContext
}

func NewArticleRepository(db sqlx.ExtContext) *ArticleRepositoryImpl {
	return &ArticleRepositoryImpl{db: db}
}

func (r *ArticleRepositoryImpl) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles
		(article_id, author_id, publication_id, title, subtitle, content, featured_image_url,
		 status, reading_time, moderation_status, created_at, updated_at)
		VALUES
		(:article_id, :author_id, :publication_id, :title, :subtitle, :content, :featured_image_url,
		 :status, :reading_time, :moderation_status, :created_at, :updated_at)
	`

	if article.ArticleID == "" {
		article.ArticleID = uuid.New().String()
	}
	if article.Status == "" {
		article.Status = models.ArticleDraft
	}
	if article.ModerationStatus == "" {
		article.ModerationStatus = models.ModerationPending
	}

	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, article); err != nil {
		return wrap(err, "could not create article")
	}

	return nil
}

func (r *ArticleRepositoryImpl) get(ctx context.Context, where string, arg any) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles a WHERE ` + where

	var article models.Article
	if err := sqlx.GetContext(ctx, r.db, &article, query, arg); err != nil {
		return nil, wrap(err, "could not get article")
	}

	return &article, nil
}

func (r *ArticleRepositoryImpl) GetByID(ctx context.Context, articleID string) (*models.Article, error) {
	return r.get(ctx, "a.article_id = $1", articleID)
}

func (r *ArticleRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.get(ctx, "a.slug = $1", slug)
}

func (r *ArticleRepositoryImpl) UpdateContent(ctx context.Context, article *models.Article, editedBy string, editedAt time.Time) error {
	query := `
		UPDATE articles SET
			title = $1,
			subtitle = $2,
			content = $3,
			featured_image_url = $4,
			reading_time = $5,
			last_edited_by = $6,
			last_edited_at = $7,
			updated_at = $7
		WHERE article_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		article.Title,
		article.Subtitle,
		article.Content,
		article.FeaturedImageURL,
		article.ReadingTime,
		editedBy,
		editedAt,
		article.ArticleID,
	)
	if err != nil {
		return wrap(err, "could not update article")
	}

	return expectOne(result, "article "+article.ArticleID, ErrNotFound)
}

// Publish moves a draft or archived article to published. The status guard
// makes a concurrent transition surface as ErrConflict.
func (r *ArticleRepositoryImpl) Publish(ctx context.Context, articleID, slug string, publishedAt time.Time) error {
	query := `
		UPDATE articles SET
			status = 'published',
			published_at = $1,
			slug = $2,
			updated_at = $1
		WHERE article_id = $3 AND status IN ('draft', 'archived')
	`

	result, err := r.db.ExecContext(ctx, query, publishedAt, slug, articleID)
	if err != nil {
		return wrap(err, "could not publish article")
	}

	return expectOne(result, "article "+articleID+" is not publishable", ErrConflict)
}

func (r *ArticleRepositoryImpl) Unpublish(ctx context.Context, articleID string) error {
	query := `
		UPDATE articles SET
			status = 'draft',
			published_at = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE article_id = $1 AND status = 'published'
	`

	result, err := r.db.ExecContext(ctx, query, articleID)
	if err != nil {
		return wrap(err, "could not unpublish article")
	}

	return expectOne(result, "article "+articleID+" is not published", ErrConflict)
}

func (r *ArticleRepositoryImpl) Archive(ctx context.Context, articleID string) error {
	query := `
		UPDATE articles SET
			status = 'archived',
			updated_at = CURRENT_TIMESTAMP
		WHERE article_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, articleID)
	if err != nil {
		return wrap(err, "could not archive article")
	}

	return expectOne(result, "article "+articleID, ErrNotFound)
}

// Delete removes the article. Tags links, revisions and submissions go with it
// through ON DELETE CASCADE.
func (r *ArticleRepositoryImpl) Delete(ctx context.Context, articleID string) error {
	query := `DELETE FROM articles WHERE article_id = $1`

	result, err := r.db.ExecContext(ctx, query, articleID)
	if err != nil {
		return wrap(err, "could not delete article")
	}

	return expectOne(result, "article "+articleID, ErrNotFound)
}

func (r *ArticleRepositoryImpl) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	query := `SELECT slug FROM articles WHERE slug = $1 OR slug LIKE $2`

	var slugs []string
	if err := sqlx.SelectContext(ctx, r.db, &slugs, query, base, base+"-%"); err != nil {
		return nil, wrap(err, "could not list slugs")
	}

	return slugs, nil
}

// AttachSubmission points the article at its latest submission. The owning
// publication is left alone until a submission is approved.
func (r *ArticleRepositoryImpl) AttachSubmission(ctx context.Context, articleID, submissionID string) error {
	query := `
		UPDATE articles SET
			submission_id = $1,
			updated_at = CURRENT_TIMESTAMP
		WHERE article_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, submissionID, articleID)
	if err != nil {
		return wrap(err, "could not attach submission")
	}

	return expectOne(result, "article "+articleID, ErrNotFound)
}

func (r *ArticleRepositoryImpl) JoinPublication(ctx context.Context, articleID, publicationID string) error {
	query := `
		UPDATE articles SET
			publication_id = $1,
			updated_at = CURRENT_TIMESTAMP
		WHERE article_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, publicationID, articleID)
	if err != nil {
		return wrap(err, "could not move article to publication")
	}

	return expectOne(result, "article "+articleID, ErrNotFound)
}

func (r *ArticleRepositoryImpl) SetModerationStatus(ctx context.Context, articleID string, status models.ModerationStatus) error {
	query := `UPDATE articles SET moderation_status = $1, updated_at = CURRENT_TIMESTAMP WHERE article_id = $2`

	result, err := r.db.ExecContext(ctx, query, status, articleID)
	if err != nil {
		return wrap(err, "could not set moderation status")
	}

	return expectOne(result, "article "+articleID, ErrNotFound)
}

// TouchRevision bumps revision_count and stamps the editor. Inside a
// transaction it also takes the row lock that serialises revision numbering.
func (r *ArticleRepositoryImpl) TouchRevision(ctx context.Context, articleID, editedBy string, editedAt time.Time) error {
	query := `
		UPDATE articles SET
			revision_count = revision_count + 1,
			last_edited_by = $1,
			last_edited_at = $2
		WHERE article_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, editedBy, editedAt, articleID)
	if err != nil {
		return wrap(err, "could not update revision count")
	}

	return expectOne(result, "article "+articleID, ErrNotFound)
}

// ReplaceTags drops every tag link of the article and links names instead,
// creating missing tags on the way.
func (r *ArticleRepositoryImpl) ReplaceTags(ctx context.Context, articleID string, names []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return wrap(err, "could not clear article tags")
	}

	for _, name := range names {
		var tagID string
		err := sqlx.GetContext(ctx, r.db, &tagID, `
			INSERT INTO tags (tag_id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING tag_id
		`, uuid.New().String(), name)
		if err != nil {
			return wrap(err, fmt.Sprintf("could not upsert tag %q", name))
		}

		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, articleID, tagID); err != nil {
			return wrap(err, "could not link tag")
		}
	}

	return nil
}
