package service

import (
	"context"
	"time"

	"publishingCore/internal/content"
	"publishingCore/internal/models"
	"publishingCore/internal/repository"
)

// publishInTx is the only way an article becomes published, whether the
// author publishes it or a submission gets approved. An article that is
// already published is left alone so published_at keeps its value.
func publishInTx(ctx context.Context, tx *repository.Repository, article *models.Article, at time.Time) error {
	if article.Status == models.ArticlePublished {
		return nil
	}

	slug := article.Slug
	if slug == "" {
		base := content.Slugify(article.Title)
		taken, err := tx.Article.SlugsWithPrefix(ctx, base)
		if err != nil {
			return err
		}
		slug = content.UniqueSlug(base, taken)
	}

	if err := tx.Article.Publish(ctx, article.ArticleID, slug, at); err != nil {
		return err
	}

	article.Status = models.ArticlePublished
	article.Slug = slug
	article.PublishedAt = &at
	return nil
}

// appendRevision writes the next revision of an article. Bumping the
// article's revision_count first locks the article row, so two writers in
// separate transactions cannot pick the same number.
func appendRevision(ctx context.Context, tx *repository.Repository, articleID string, data RevisionData, createdBy string, summary *string, major bool) (*models.ArticleRevision, error) {
	now := time.Now().UTC()

	if err := tx.Article.TouchRevision(ctx, articleID, createdBy, now); err != nil {
		return nil, err
	}

	number, err := tx.Revision.NextNumber(ctx, articleID)
	if err != nil {
		return nil, err
	}

	revision := &models.ArticleRevision{
		ArticleID:        articleID,
		RevisionNumber:   number,
		Title:            data.Title,
		Subtitle:         data.Subtitle,
		Content:          data.Content,
		FeaturedImageURL: data.FeaturedImageURL,
		Tags:             append([]string{}, data.Tags...),
		CreatedBy:        createdBy,
		ChangeSummary:    summary,
		IsMajorRevision:  major,
	}

	if err := tx.Revision.Create(ctx, revision); err != nil {
		return nil, err
	}

	return revision, nil
}

func strPtr(s string) *string {
	return &s
}
