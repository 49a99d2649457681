package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"publishingCore/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a unique constraint is violated or a guarded
	// update matched no row because the state changed underneath.
	ErrConflict = errors.New("conflicting state")
)

const (
	uniqueViolation = "23505"
	// raised when an id is not a valid uuid; no such row can exist
	invalidTextRepresentation = "22P02"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetRecipient(ctx context.Context, userID string) (*models.Recipient, error)
	GetFollowers(ctx context.Context, userID string) ([]models.Recipient, error)
	UpdateNotificationPreferences(ctx context.Context, userID, preferences string) error
}

type PublicationRepository interface {
	GetByID(ctx context.Context, publicationID string) (*models.Publication, error)
	GetAccess(ctx context.Context, publicationID, userID string) (*PublicationAccess, error)
}

type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, articleID string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	UpdateContent(ctx context.Context, article *models.Article, editedBy string, editedAt time.Time) error
	Publish(ctx context.Context, articleID, slug string, publishedAt time.Time) error
	Unpublish(ctx context.Context, articleID string) error
	Archive(ctx context.Context, articleID string) error
	Delete(ctx context.Context, articleID string) error
	SlugsWithPrefix(ctx context.Context, base string) ([]string, error)
	AttachSubmission(ctx context.Context, articleID, submissionID string) error
	JoinPublication(ctx context.Context, articleID, publicationID string) error
	SetModerationStatus(ctx context.Context, articleID string, status models.ModerationStatus) error
	TouchRevision(ctx context.Context, articleID, editedBy string, editedAt time.Time) error
	ReplaceTags(ctx context.Context, articleID string, names []string) error
}

type RevisionRepository interface {
	NextNumber(ctx context.Context, articleID string) (int, error)
	Create(ctx context.Context, revision *models.ArticleRevision) error
	GetByNumber(ctx context.Context, articleID string, number int) (*models.ArticleRevision, error)
	GetLatest(ctx context.Context, articleID string) (*models.ArticleRevision, error)
	List(ctx context.Context, articleID string) ([]models.ArticleRevision, error)
	Stats(ctx context.Context, articleID string) (*models.RevisionStats, error)
	Contributors(ctx context.Context, articleID string) ([]models.Contributor, error)
}

type SubmissionRepository interface {
	CreateIfNoActive(ctx context.Context, submission *models.ArticleSubmission) (bool, error)
	GetByID(ctx context.Context, submissionID string) (*models.ArticleSubmission, error)
	GetActive(ctx context.Context, articleID, publicationID string) (*models.ArticleSubmission, error)
	AssignReviewer(ctx context.Context, submissionID, reviewerID string) error
	Review(ctx context.Context, submissionID string, to models.SubmissionStatus, reviewerID string, notes *string, at time.Time) error
	RequestRevision(ctx context.Context, submissionID, reviewerID string, notes *string, at time.Time) error
	Resubmit(ctx context.Context, submissionID string) error
	ListByPublication(ctx context.Context, publicationID string, status models.SubmissionStatus) ([]models.ArticleSubmission, error)
	ListByArticle(ctx context.Context, articleID string) ([]models.ArticleSubmission, error)
}

type GuidelineRepository interface {
	ListByPublication(ctx context.Context, publicationID string) ([]models.PublicationGuideline, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	UpsertClap(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
}

// Repository groups the repositories over one executor, either the pool or a
// single transaction.
type Repository struct {
	db *sqlx.DB

	User         UserRepository
	Publication  PublicationRepository
	Article      ArticleRepository
	Revision     RevisionRepository
	Submission   SubmissionRepository
	Guideline    GuidelineRepository
	Notification NotificationRepository
	Tables       TablesRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	repo := newRepository(db)
	repo.db = db
	return repo
}

func newRepository(ext sqlx.ExtContext) *Repository {
	return &Repository{
		User:         NewUserRepository(ext),
		Publication:  NewPublicationRepository(ext),
		Article:      NewArticleRepository(ext),
		Revision:     NewRevisionRepository(ext),
		Submission:   NewSubmissionRepository(ext),
		Guideline:    NewGuidelineRepository(ext),
		Notification: NewNotificationRepository(ext),
		Tables:       NewTablesRepository(ext),
	}
}

// Transact runs fn with repositories bound to one transaction. The transaction
// is committed when fn returns nil and rolled back otherwise. Called on a
// repository that is already transactional, fn joins the running transaction.
func (r *Repository) Transact(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(newRepository(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// sqlState returns the SQLSTATE of a lib/pq or pgx error, or "".
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// wrap maps driver errors onto ErrNotFound / ErrConflict and adds context.
func wrap(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}

	switch sqlState(err) {
	case uniqueViolation:
		return fmt.Errorf("%s: %w: %v", msg, ErrConflict, err)
	case invalidTextRepresentation:
		return fmt.Errorf("%s: %w: %v", msg, ErrNotFound, err)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// expectOne turns a zero row count of a guarded statement into sentinel.
func expectOne(result sql.Result, msg string, sentinel error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", msg, sentinel)
	}
	return nil
}
