package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"publishingCore/internal/content"
	"publishingCore/internal/errs"
	"publishingCore/internal/models"
	"publishingCore/internal/repository"
)

// RevisionData is the snapshot written into a revision.
type RevisionData struct {
	Title            string   `json:"title" validate:"required,max=255"`
	Subtitle         string   `json:"subtitle" validate:"max=255"`
	Content          string   `json:"content"`
	FeaturedImageURL string   `json:"featuredImageUrl"`
	Tags             []string `json:"tags" validate:"dive,required,max=100"`
}

type FieldChanges struct {
	Title            bool `json:"title"`
	Subtitle         bool `json:"subtitle"`
	Content          bool `json:"content"`
	FeaturedImageURL bool `json:"featuredImageUrl"`
	Tags             bool `json:"tags"`
}

type RevisionComparison struct {
	From    *models.ArticleRevision `json:"from"`
	To      *models.ArticleRevision `json:"to"`
	Changes FieldChanges            `json:"changes"`
	Words   content.WordDiff        `json:"words"`
}

type RevisionService interface {
	CreateRevision(ctx context.Context, articleID string, data RevisionData, createdBy string, changeSummary *string, isMajor bool) (*models.ArticleRevision, error)
	RestoreToRevision(ctx context.Context, articleID string, revisionNumber int, restoredBy string) (*models.ArticleRevision, error)
	CompareRevisions(ctx context.Context, articleID string, from, to int) (*RevisionComparison, error)
	GetRevisions(ctx context.Context, articleID string) ([]models.ArticleRevision, error)
	GetRevision(ctx context.Context, articleID string, revisionNumber int) (*models.ArticleRevision, error)
	GetLatestRevision(ctx context.Context, articleID string) (*models.ArticleRevision, error)
	GetRevisionStats(ctx context.Context, articleID string) (*models.RevisionStats, error)
	GetArticleContributors(ctx context.Context, articleID string) ([]models.Contributor, error)
}

type revisionService struct {
	repo        *repository.Repository
	permissions PermissionChecker
	validate    *validator.Validate
	log         zerolog.Logger
}

func NewRevisionService(repo *repository.Repository, permissions PermissionChecker, validate *validator.Validate, log zerolog.Logger) RevisionService {
	return &revisionService{
		repo:        repo,
		permissions: permissions,
		validate:    validate,
		log:         log,
	}
}

// CreateRevision appends a revision to the ledger. Every call adds a row.
func (s *revisionService) CreateRevision(ctx context.Context, articleID string, data RevisionData, createdBy string, changeSummary *string, isMajor bool) (*models.ArticleRevision, error) {
	const op = "revision.CreateRevision"

	if err := s.validate.Struct(data); err != nil {
		return nil, invalid(op, err)
	}

	var revision *models.ArticleRevision
	err := s.repo.Transact(ctx, func(tx *repository.Repository) error {
		var err error
		revision, err = appendRevision(ctx, tx, articleID, data, createdBy, changeSummary, isMajor)
		return err
	})
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	return revision, nil
}

// RestoreToRevision copies revision N back onto the article and records the
// restore as a new major revision. Later history is kept.
func (s *revisionService) RestoreToRevision(ctx context.Context, articleID string, revisionNumber int, restoredBy string) (*models.ArticleRevision, error) {
	const op = "revision.RestoreToRevision"

	article, err := s.repo.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	ok, err := s.permissions.CanEditArticle(ctx, article, restoredBy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.E(op, errs.Unauthorized, "user may not edit this article")
	}

	var restored *models.ArticleRevision
	err = s.repo.Transact(ctx, func(tx *repository.Repository) error {
		target, err := tx.Revision.GetByNumber(ctx, articleID, revisionNumber)
		if err != nil {
			return err
		}

		article.Title = target.Title
		article.Subtitle = target.Subtitle
		article.Content = target.Content
		article.FeaturedImageURL = target.FeaturedImageURL
		article.ReadingTime = content.ReadingTime(target.Content)

		if err := tx.Article.UpdateContent(ctx, article, restoredBy, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.Article.ReplaceTags(ctx, articleID, target.Tags); err != nil {
			return err
		}

		restored, err = appendRevision(ctx, tx, articleID, RevisionData{
			Title:            target.Title,
			Subtitle:         target.Subtitle,
			Content:          target.Content,
			FeaturedImageURL: target.FeaturedImageURL,
			Tags:             target.Tags,
		}, restoredBy, strPtr(fmt.Sprintf("Restored to revision #%d", revisionNumber)), true)
		return err
	})
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	s.log.Info().Str("op", op).Str("article_id", articleID).Int("from", revisionNumber).Int("revision", restored.RevisionNumber).Msg("revision restored")
	return restored, nil
}

func (s *revisionService) CompareRevisions(ctx context.Context, articleID string, from, to int) (*RevisionComparison, error) {
	const op = "revision.CompareRevisions"

	fromRev, err := s.repo.Revision.GetByNumber(ctx, articleID, from)
	if err != nil {
		return nil, fail(s.log, op, err)
	}
	toRev, err := s.repo.Revision.GetByNumber(ctx, articleID, to)
	if err != nil {
		return nil, fail(s.log, op, err)
	}

	return compareRevisions(fromRev, toRev), nil
}

func compareRevisions(from, to *models.ArticleRevision) *RevisionComparison {
	return &RevisionComparison{
		From: from,
		To:   to,
		Changes: FieldChanges{
			Title:            from.Title != to.Title,
			Subtitle:         from.Subtitle != to.Subtitle,
			Content:          from.Content != to.Content,
			FeaturedImageURL: from.FeaturedImageURL != to.FeaturedImageURL,
			Tags:             !sameTags(from.Tags, to.Tags),
		},
		Words: content.DiffWords(content.PlainText(from.Content), content.PlainText(to.Content)),
	}
}

func sameTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string{}, a...)
	y := append([]string{}, b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func (s *revisionService) GetRevisions(ctx context.Context, articleID string) ([]models.ArticleRevision, error) {
	revisions, err := s.repo.Revision.List(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, "revision.GetRevisions", err)
	}
	return revisions, nil
}

func (s *revisionService) GetRevision(ctx context.Context, articleID string, revisionNumber int) (*models.ArticleRevision, error) {
	revision, err := s.repo.Revision.GetByNumber(ctx, articleID, revisionNumber)
	if err != nil {
		return nil, fail(s.log, "revision.GetRevision", err)
	}
	return revision, nil
}

func (s *revisionService) GetLatestRevision(ctx context.Context, articleID string) (*models.ArticleRevision, error) {
	revision, err := s.repo.Revision.GetLatest(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, "revision.GetLatestRevision", err)
	}
	return revision, nil
}

func (s *revisionService) GetRevisionStats(ctx context.Context, articleID string) (*models.RevisionStats, error) {
	stats, err := s.repo.Revision.Stats(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, "revision.GetRevisionStats", err)
	}
	return stats, nil
}

func (s *revisionService) GetArticleContributors(ctx context.Context, articleID string) ([]models.Contributor, error) {
	contributors, err := s.repo.Revision.Contributors(ctx, articleID)
	if err != nil {
		return nil, fail(s.log, "revision.GetArticleContributors", err)
	}
	return contributors, nil
}
