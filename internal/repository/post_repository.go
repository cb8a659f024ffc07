package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"blogstats/internal/models"
)

const selectPosts = `
	SELECT p.id, p.title, p.content, p.status, p.user_id, p.category_id, p.published_at,
		p.approved_comment_count, p.tag_count, p.last_commented_at, p.created_at, p.updated_at
	FROM posts p`

type PostRepositoryImpl struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts
		(title, content, status, user_id, category_id, published_at, created_at, updated_at)
		VALUES
		(:title, :content, :status, :user_id, :category_id, :published_at, :created_at, :updated_at)
		RETURNING id
	`

	if post.Status == "" {
		post.Status = models.PostStatusDraft
	}

	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	// a published post always carries its publication time
	if post.IsPublished() && post.PublishedAt == nil {
		publishedAt := post.CreatedAt
		post.PublishedAt = &publishedAt
	}

	if err := insertReturning(ctx, r.db, query, post, &post.ID); err != nil {
		return wrapWriteErr("failed to create post", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post

	query := r.db.Rebind(selectPosts + ` WHERE p.id = ?`)

	if err := r.db.GetContext(ctx, &post, query, postID); err != nil {
		return nil, wrapGetErr("post", postID, err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) List(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	if opts.Order == "" {
		opts.Order = OrderPostsByID
	}

	query, args, err := build(r.db, selectPosts, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build posts query: %w", err)
	}

	posts := []models.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// Published returns published posts, newest first when recent is set. A limit of 0 means no limit.
func (r *PostRepositoryImpl) Published(ctx context.Context, recent bool, limit int) ([]models.Post, error) {
	order := OrderPostsByID
	if recent {
		order = OrderPostsRecent
	}

	return r.List(ctx, ListOptions{
		Filters: []Filter{PostsPublished()},
		Order:   order,
		Limit:   limit,
	})
}

func (r *PostRepositoryImpl) Drafts(ctx context.Context) ([]models.Post, error) {
	return r.List(ctx, ListOptions{Filters: []Filter{PostsDraft()}})
}

// Page returns up to limit posts with id greater than afterID, in id order.
func (r *PostRepositoryImpl) Page(ctx context.Context, afterID int64, limit int) ([]models.Post, error) {
	return r.List(ctx, ListOptions{
		Filters: []Filter{PostsAfter(afterID)},
		Order:   OrderPostsByID,
		Limit:   limit,
	})
}

// Delete removes the post; its comments and tag links go with it through ON DELETE CASCADE.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID int64) error {
	query := r.db.Rebind(`DELETE FROM posts WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return expectAffected(result, "post", postID)
}

// UpdateStatistics persists the derived counters of one post in its own transaction.
// updated_at only moves when a counter actually changed.
func (r *PostRepositoryImpl) UpdateStatistics(ctx context.Context, stats models.PostStatistics) error {
	query := `
		UPDATE posts SET
			approved_comment_count = :approved_comment_count,
			tag_count = :tag_count,
			last_commented_at = :last_commented_at,
			updated_at = CASE
				WHEN approved_comment_count IS DISTINCT FROM CAST(:approved_comment_count AS INTEGER)
					OR tag_count IS DISTINCT FROM CAST(:tag_count AS INTEGER)
					OR last_commented_at IS DISTINCT FROM CAST(:last_commented_at AS TIMESTAMPTZ)
				THEN NOW()
				ELSE updated_at
			END
		WHERE id = :post_id
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.NamedExecContext(ctx, query, stats)
	if err != nil {
		return wrapWriteErr("failed to update post statistics", err)
	}

	if err := expectAffected(result, "post", stats.PostID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post statistics: %w", err)
	}

	return nil
}
