package repository

import (
	"context"
	"errors"
	"testing"

	"bloggr/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostRepository_Create_TranslatesSlugConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "posts"`).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "idx_posts_slug"`))
	mock.ExpectRollback()

	err := repo.Create(ctx, &models.Post{Title: "Hello", Slug: "hello", Content: "body", UserID: 1})
	assert.Error(t, err)

	var appErr *models.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ToggleLike(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO post_likes`).
		WithArgs(uint(4), uint(9)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "post_likes" WHERE post_id = \$1`).
		WithArgs(uint(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectCommit()

	liked, count, err := repo.ToggleLike(ctx, 4, 9)
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_RecordRead(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	userID := uint(3)

	// First read inserts a row.
	mock.ExpectExec(`INSERT INTO post_reads`).
		WithArgs(uint(9), "user:3", &userID).
		WillReturnResult(sqlmock.NewResult(1, 1))

	recorded, err := repo.RecordRead(ctx, 9, "user:3", &userID)
	assert.NoError(t, err)
	assert.True(t, recorded)

	// Re-read by the same identity hits the conflict clause and records nothing.
	mock.ExpectExec(`INSERT INTO post_reads`).
		WithArgs(uint(9), "user:3", &userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	recorded, err = repo.RecordRead(ctx, 9, "user:3", &userID)
	assert.NoError(t, err)
	assert.False(t, recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_TotalReadsForAuthor(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "post_reads" JOIN posts`).
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.TotalReadsForAuthor(ctx, 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
