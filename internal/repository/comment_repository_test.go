package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogstats/internal/models"
)

var commentColumns = []string{"id", "content", "status", "user_id", "post_id", "created_at"}

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	comment := &models.Comment{Content: "nice post", UserID: 2, PostID: 9}

	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs("nice post", models.CommentStatusPending, int64(2), int64(9), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	err := NewCommentRepository(db).Create(context.Background(), comment)

	require.NoError(t, err)
	assert.Equal(t, int64(11), comment.ID)
	assert.Equal(t, models.CommentStatusPending, comment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ByPostIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("no posts runs no query", func(t *testing.T) {
		comments, err := repo.ByPostIDs(ctx, []int64{})
		require.NoError(t, err)
		assert.NotNil(t, comments)
		assert.Empty(t, comments)
	})

	t.Run("filters narrow the single query", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(
			`FROM comments c WHERE (c.post_id IN ($1, $2)) AND (c.status = $3) ORDER BY c.post_id ASC, c.created_at ASC, c.id ASC`)).
			WithArgs(int64(1), int64(2), "approved").
			WillReturnRows(sqlmock.NewRows(commentColumns).
				AddRow(1, "first", "approved", 5, 1, at).
				AddRow(4, "second", "approved", 6, 2, at))

		comments, err := repo.ByPostIDs(ctx, []int64{1, 2}, CommentsApproved())

		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.True(t, comments[0].IsApproved())
		assert.Equal(t, int64(2), comments[1].PostID)
	})

	t.Run("approved and pending shortcuts", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`(c.status = $2)`)).
			WithArgs(int64(3), "approved").
			WillReturnRows(sqlmock.NewRows(commentColumns))
		mock.ExpectQuery(regexp.QuoteMeta(`(c.status = $2)`)).
			WithArgs(int64(3), "pending").
			WillReturnRows(sqlmock.NewRows(commentColumns).AddRow(8, "hmm", "pending", 5, 3, at))

		approved, err := repo.Approved(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, approved)

		pending, err := repo.Pending(ctx, 3)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.False(t, pending[0].IsApproved())
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
