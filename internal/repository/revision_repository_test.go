package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publishingCore/internal/models"
)

func TestRevisionRepository_NextNumber(t *testing.T) {
	tests := []struct {
		name string
		next int
	}{
		{name: "first revision", next: 1},
		{name: "after three revisions", next: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewRevisionRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(revision_number), 0) + 1")).
				WithArgs("a1").
				WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(tt.next))

			next, err := repo.NextNumber(context.Background(), "a1")

			require.NoError(t, err)
			assert.Equal(t, tt.next, next)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRevisionRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRevisionRepository(db)

	mock.ExpectExec("INSERT INTO article_revisions").
		WithArgs(
			sqlmock.AnyArg(), "a1", 2, "Title", "", "body", "",
			`{"go"}`, "author", "Fix typo", false, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	summary := "Fix typo"
	revision := &models.ArticleRevision{
		ArticleID:      "a1",
		RevisionNumber: 2,
		Title:          "Title",
		Content:        "body",
		Tags:           []string{"go"},
		CreatedBy:      "author",
		ChangeSummary:  &summary,
	}

	err := repo.Create(context.Background(), revision)

	require.NoError(t, err)
	assert.NotEmpty(t, revision.RevisionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionRepository_Stats(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRevisionRepository(db)

	first := time.Now().Add(-48 * time.Hour)
	last := time.Now()

	mock.ExpectQuery("FROM article_revisions WHERE article_id").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{
			"total_revisions", "major_revisions", "contributors", "first_revision", "last_revision",
		}).AddRow(5, 2, 3, first, last))

	stats, err := repo.Stats(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalRevisions)
	assert.Equal(t, 2, stats.MajorRevisions)
	assert.Equal(t, 3, stats.Contributors)
	require.NotNil(t, stats.FirstRevision)
	assert.True(t, stats.FirstRevision.Equal(first))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionRepository_GetByNumber_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRevisionRepository(db)

	mock.ExpectQuery("FROM article_revisions WHERE article_id").
		WithArgs("a1", 9).
		WillReturnRows(sqlmock.NewRows([]string{"revision_id"}))

	revision, err := repo.GetByNumber(context.Background(), "a1", 9)

	assert.Nil(t, revision)
	assert.ErrorIs(t, err, ErrNotFound)
}
