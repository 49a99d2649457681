package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"publishingCore/internal/models"
)

// PublicationAccess is what the permission resolver needs to know about a user
// in a publication: who owns it and which role, if any, the user holds.
type PublicationAccess struct {
	OwnerID string  `db:"owner_id"`
	Role    *string `db:"role"`
}

type publicationRepository struct {
	db sqlx.ExtContext
}

func NewPublicationRepository(db sqlx.ExtContext) PublicationRepository {
	return &publicationRepository{db: db}
}

func (r *publicationRepository) GetByID(ctx context.Context, publicationID string) (*models.Publication, error) {
	var publication models.Publication

	query := `SELECT * FROM publications WHERE publication_id = $1`

	if err := sqlx.GetContext(ctx, r.db, &publication, query, publicationID); err != nil {
		return nil, wrap(err, "could not get publication")
	}

	return &publication, nil
}

func (r *publicationRepository) GetAccess(ctx context.Context, publicationID, userID string) (*PublicationAccess, error) {
	var access PublicationAccess

	query := `
		SELECT p.owner_id, pm.role
		FROM publications p
		LEFT JOIN publication_members pm
			ON pm.publication_id = p.publication_id AND pm.user_id = $2
		WHERE p.publication_id = $1
	`

	if err := sqlx.GetContext(ctx, r.db, &access, query, publicationID, userID); err != nil {
		return nil, wrap(err, "could not get publication access")
	}

	return &access, nil
}
