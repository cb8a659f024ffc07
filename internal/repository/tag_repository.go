package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogstats/internal/models"
)

type tagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := `INSERT INTO tags (name) VALUES (:name) RETURNING id`

	if err := insertReturning(ctx, r.db, query, tag, &tag.ID); err != nil {
		return wrapWriteErr("failed to create tag", err)
	}

	return nil
}

// AttachToPost links a tag to a post. Linking the same pair twice is a no-op.
func (r *tagRepository) AttachToPost(ctx context.Context, postID, tagID int64) error {
	query := `
		INSERT INTO post_tags (post_id, tag_id)
		VALUES (:post_id, :tag_id)
		ON CONFLICT (post_id, tag_id) DO NOTHING
	`

	if _, err := r.db.NamedExecContext(ctx, query, models.PostTag{PostID: postID, TagID: tagID}); err != nil {
		return wrapWriteErr("failed to attach tag to post", err)
	}

	return nil
}

// ByPostIDs returns the tags of all given posts in one query, ordered by post then tag id.
func (r *tagRepository) ByPostIDs(ctx context.Context, postIDs []int64) ([]models.TaggedPost, error) {
	if len(postIDs) == 0 {
		return []models.TaggedPost{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT pt.post_id, t.id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (?)
		ORDER BY pt.post_id, t.id
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build post tags query: %w", err)
	}

	tags := []models.TaggedPost{}
	if err := r.db.SelectContext(ctx, &tags, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get post tags: %w", err)
	}

	return tags, nil
}
