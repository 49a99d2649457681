package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"publishingCore/internal/errs"
	"publishingCore/internal/models"
	"publishingCore/internal/repository"
)

// PermissionChecker answers role questions about publication members. It is
// evaluated against the database on every call.
type PermissionChecker interface {
	HasPermission(ctx context.Context, publicationID, userID string, required models.Role) (bool, error)
	CanEditArticle(ctx context.Context, article *models.Article, userID string) (bool, error)
}

type permissionService struct {
	publicationRepo repository.PublicationRepository
	log             zerolog.Logger
}

func NewPermissionService(publicationRepo repository.PublicationRepository, log zerolog.Logger) PermissionChecker {
	return &permissionService{
		publicationRepo: publicationRepo,
		log:             log,
	}
}

func ValidRole(role models.Role) bool {
	return role.Level() > 0
}

// HasPermission reports whether userID owns the publication or holds a role at
// least as strong as required. The owner passes whatever required is; everyone
// else needs a valid role. Unknown publications and non-members get false.
func (s *permissionService) HasPermission(ctx context.Context, publicationID, userID string, required models.Role) (bool, error) {
	const op = "permission.HasPermission"

	access, err := s.publicationRepo.GetAccess(ctx, publicationID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, fail(s.log, op, err)
	}

	if err == nil && access.OwnerID == userID {
		return true, nil
	}
	if !ValidRole(required) {
		return false, errs.E(op, errs.ValidationFailed, "invalid role "+string(required))
	}
	if err != nil || access.Role == nil {
		return false, nil
	}

	return models.Role(*access.Role).Level() >= required.Level(), nil
}

// CanEditArticle allows the author, and editors of the article's publication.
func (s *permissionService) CanEditArticle(ctx context.Context, article *models.Article, userID string) (bool, error) {
	if article.AuthorID == userID {
		return true, nil
	}
	if article.PublicationID == nil || *article.PublicationID == "" {
		return false, nil
	}

	return s.HasPermission(ctx, *article.PublicationID, userID, models.RoleEditor)
}
