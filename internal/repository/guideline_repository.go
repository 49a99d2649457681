package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"publishingCore/internal/models"
)

type guidelineRepository struct {
	db sqlx.ExtContext
}

func NewGuidelineRepository(db sqlx.ExtContext) GuidelineRepository {
	return &guidelineRepository{db: db}
}

func (r *guidelineRepository) ListByPublication(ctx context.Context, publicationID string) ([]models.PublicationGuideline, error) {
	guidelines := []models.PublicationGuideline{}

	query := `
		SELECT * FROM publication_guidelines
		WHERE publication_id = $1
		ORDER BY display_order, title
	`

	if err := sqlx.SelectContext(ctx, r.db, &guidelines, query, publicationID); err != nil {
		return nil, wrap(err, "could not list guidelines")
	}

	return guidelines, nil
}
