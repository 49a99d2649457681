package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"publishingCore/internal/content"
	"publishingCore/internal/errs"
	"publishingCore/internal/models"
	"publishingCore/internal/repository"
)

type CreateArticleRequest struct {
	AuthorID         string   `json:"authorId" validate:"required"`
	PublicationID    *string  `json:"publicationId" validate:"omitempty,min=1"`
	Title            string   `json:"title" validate:"required,max=255"`
	Subtitle         string   `json:"subtitle" validate:"max=255"`
	Content          string   `json:"content"`
	FeaturedImageURL string   `json:"featuredImageUrl" validate:"omitempty,url"`
	Tags             []string `json:"tags" validate:"max=10,dive,required,max=100"`
}

type UpdateArticleRequest struct {
	ArticleID        string   `json:"articleId" validate:"required"`
	EditorID         string   `json:"editorId" validate:"required"`
	Title            string   `json:"title" validate:"required,max=255"`
	Subtitle         string   `json:"subtitle" validate:"max=255"`
	Content          string   `json:"content"`
	FeaturedImageURL string   `json:"featuredImageUrl" validate:"omitempty,url"`
	Tags             []string `json:"tags" validate:"max=10,dive,required,max=100"`
	ChangeSummary    *string  `json:"changeSummary"`
	IsMajorRevision  bool     `json:"isMajorRevision"`
}

type PublishOptions struct {
	NotifyFollowers bool
}

type ArticleService interface {
	CreateArticle(ctx context.Context, req CreateArticleRequest) (*models.Article, error)
	UpdateArticle(ctx context.Context, req UpdateArticleRequest) (*models.Article, error)
	GetArticle(ctx context.Context, articleID string) (*models.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
	Publish(ctx context.Context, articleID, userID string, opts PublishOptions) (*models.Article, error)
	Unpublish(ctx context.Context, articleID, userID string) error
	Archive(ctx context.Context, articleID, userID string) error
	DeleteArticle(ctx context.Context, articleID, userID string) error
	SetModerationStatus(ctx context.Context, articleID string, status models.ModerationStatus) error
}

type articleService struct {
	repo        *repository.Repository
	permissions PermissionChecker
	notifier    NotificationService
	validate    *validator.Validate
	log         zerolog.Logger
}

func NewArticleService(repo *repository.Repository, permissions PermissionChecker, notifier NotificationService, validate *validator.Validate, log zerolog.Logger) ArticleService {
	return &articleService{
		repo:        repo,
		permissions: permissions,
		notifier:    notifier,
		validate:    validate,
		log:         log,
	}
}

func (s *articleService) CreateArticle(ctx context.Context, req CreateArticleRequest) (*models.Article, error) {
	const op = "article.CreateArticle"

	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(op, err)
	}

	if req.PublicationID != nil {
		ok, err := s.permissions.HasPermission(ctx, *req.PublicationID, req.AuthorID, models.RoleWriter)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.E(op, errs.Unauthorized, "author is not a writer of the publication")
		}
	}

	article := &models.Article{
		AuthorID:         req.AuthorID,
		PublicationID:    req.PublicationID,
		Title:            req.Title,
		Subtitle:         req.Subtitle,
		Content:          req.Content,
		FeaturedImageURL: req.FeaturedImageURL,
		Status:           models.ArticleDraft,
		ReadingTime:      content.ReadingTime(req.Content),
	}

	err := s.repo.Transact(ctx, func(tx *repository.Repository) error {
		if err := tx.Article.Create(ctx, article); err != nil {
			return err
		}
		if err := tx.Article.ReplaceTags(ctx, article.ArticleID, req.Tags); err != nil {
			return err
		}

		_, err := appendRevision(ctx, tx, article.ArticleID, RevisionData{
			Title:            article.Title,
			Subtitle:         article.Subtitle,
			Content:          article.Content,
			FeaturedImageURL: article.FeaturedImageURL,
			Tags:             req.Tags,
		}, req.AuthorID, strPtr("Initial draft"), true)
		return err
	})
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	s.log.Info().Str("op", op).Str("article_id", article.ArticleID).Str("author_id", article.AuthorID).Msg("article created")

	return s.GetArticle(ctx, article.ArticleID)
}

// UpdateArticle overwrites the editable fields and records the result as a new
// revision in the same transaction.
func (s *articleService) UpdateArticle(ctx context.Context, req UpdateArticleRequest) (*models.Article, error) {
	const op = "article.UpdateArticle"

	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(op, err)
	}

	article, err := s.repo.Article.GetByID(ctx, req.ArticleID)
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	ok, err := s.permissions.CanEditArticle(ctx, article, req.EditorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.E(op, errs.Unauthorized, "user may not edit this article")
	}

	article.Title = req.Title
	article.Subtitle = req.Subtitle
	article.Content = req.Content
	article.FeaturedImageURL = req.FeaturedImageURL
	article.ReadingTime = content.ReadingTime(req.Content)

	err = s.repo.Transact(ctx, func(tx *repository.Repository) error {
		if err := tx.Article.UpdateContent(ctx, article, req.EditorID, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.Article.ReplaceTags(ctx, article.ArticleID, req.Tags); err != nil {
			return err
		}

		_, err := appendRevision(ctx, tx, article.ArticleID, RevisionData{
			Title:            req.Title,
			Subtitle:         req.Subtitle,
			Content:          req.Content,
			FeaturedImageURL: req.FeaturedImageURL,
			Tags:             req.Tags,
		}, req.EditorID, req.ChangeSummary, req.IsMajorRevision)
		return err
	})
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	return s.GetArticle(ctx, article.ArticleID)
}

func (s *articleService) GetArticle(ctx context.Context, articleID string) (*models.Article, error) {
	article, err := s.repo.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, "article.GetArticle", err)
	}
	return article, nil
}

func (s *articleService) GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	article, err := s.repo.Article.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fail(s.log, "article.GetArticleBySlug", err)
	}
	return article, nil
}

// owned loads the article and checks that userID wrote it. Publication roles
// do not count here.
func (s *articleService) owned(ctx context.Context, op, articleID, userID string) (*models.Article, error) {
	article, err := s.repo.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, op, err)
	}
	if article.AuthorID != userID {
		return nil, errs.E(op, errs.Unauthorized, "only the author may do this")
	}
	return article, nil
}

func (s *articleService) Publish(ctx context.Context, articleID, userID string, opts PublishOptions) (*models.Article, error) {
	const op = "article.Publish"

	article, err := s.owned(ctx, op, articleID, userID)
	if err != nil {
		return nil, err
	}
	if article.Status != models.ArticleDraft && article.Status != models.ArticleArchived {
		return nil, errs.E(op, errs.Conflict, "article is already published")
	}

	err = s.repo.Transact(ctx, func(tx *repository.Repository) error {
		return publishInTx(ctx, tx, article, time.Now().UTC())
	})
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	s.log.Info().Str("op", op).Str("article_id", articleID).Str("slug", article.Slug).Msg("article published")

	refreshed, err := s.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	if opts.NotifyFollowers {
		if sent, err := s.notifier.NotifyNewArticle(ctx, refreshed); err != nil {
			s.log.Warn().Err(err).Str("op", op).Str("article_id", articleID).Msg("follower notification failed")
		} else {
			s.log.Debug().Str("op", op).Int("sent", sent).Msg("followers notified")
		}
	}

	return refreshed, nil
}

func (s *articleService) Unpublish(ctx context.Context, articleID, userID string) error {
	const op = "article.Unpublish"

	if _, err := s.owned(ctx, op, articleID, userID); err != nil {
		return err
	}

	if err := s.repo.Article.Unpublish(ctx, articleID); err != nil {
		return fail(s.log, op, err)
	}
	return nil
}

// Archive is allowed from any status.
func (s *articleService) Archive(ctx context.Context, articleID, userID string) error {
	const op = "article.Archive"

	if _, err := s.owned(ctx, op, articleID, userID); err != nil {
		return err
	}

	if err := s.repo.Article.Archive(ctx, articleID); err != nil {
		return fail(s.log, op, err)
	}
	return nil
}

func (s *articleService) DeleteArticle(ctx context.Context, articleID, userID string) error {
	const op = "article.DeleteArticle"

	if _, err := s.owned(ctx, op, articleID, userID); err != nil {
		return err
	}

	if err := s.repo.Article.Delete(ctx, articleID); err != nil {
		return fail(s.log, op, err)
	}

	s.log.Info().Str("op", op).Str("article_id", articleID).Msg("article deleted")
	return nil
}

func (s *articleService) SetModerationStatus(ctx context.Context, articleID string, status models.ModerationStatus) error {
	const op = "article.SetModerationStatus"

	if !status.Valid() {
		return errs.E(op, errs.ValidationFailed, "invalid moderation status "+string(status))
	}

	if err := s.repo.Article.SetModerationStatus(ctx, articleID, status); err != nil {
		return fail(s.log, op, err)
	}
	return nil
}
