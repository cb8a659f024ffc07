package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"blogstats/internal/models"
)

const selectComments = `SELECT c.id, c.content, c.status, c.user_id, c.post_id, c.created_at FROM comments c`

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (content, status, user_id, post_id, created_at)
		VALUES (:content, :status, :user_id, :post_id, :created_at)
		RETURNING id
	`

	if comment.Status == "" {
		comment.Status = models.CommentStatusPending
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	if err := insertReturning(ctx, r.db, query, comment, &comment.ID); err != nil {
		return wrapWriteErr("failed to create comment", err)
	}

	return nil
}

// ByPostIDs loads the comments of all given posts in one query, narrowed by filters.
// Rows come back grouped by post, oldest first.
func (r *commentRepository) ByPostIDs(ctx context.Context, postIDs []int64, filters ...Filter) ([]models.Comment, error) {
	if len(postIDs) == 0 {
		return []models.Comment{}, nil
	}

	return r.list(ctx, ListOptions{
		Filters: append([]Filter{CommentsByPostIDs(postIDs)}, filters...),
		Order:   OrderCommentsByAge,
	})
}

func (r *commentRepository) Approved(ctx context.Context, postID int64) ([]models.Comment, error) {
	return r.ByPostIDs(ctx, []int64{postID}, CommentsApproved())
}

func (r *commentRepository) Pending(ctx context.Context, postID int64) ([]models.Comment, error) {
	return r.ByPostIDs(ctx, []int64{postID}, CommentsPending())
}

func (r *commentRepository) list(ctx context.Context, opts ListOptions) ([]models.Comment, error) {
	query, args, err := build(r.db, selectComments, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build comments query: %w", err)
	}

	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
