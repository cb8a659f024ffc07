package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"blogstats/internal/models"
)

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

// RecentPopularPosts counts approved comments per post created after since, authored by an
// active user, and keeps posts reaching minApprovedComments. The approval condition sits in
// the join so posts without approved comments still count as zero.
func (r *statsRepository) RecentPopularPosts(ctx context.Context, since time.Time, minApprovedComments int) ([]models.PopularPostRow, error) {
	approved, approvedArgs := CommentsApproved().SQL()
	where, whereArgs := And(PostsCreatedAfter(since), UsersActive()).SQL()

	query := r.db.Rebind(`
		SELECT p.title, u.name AS author_name, COUNT(c.id) AS approved_comment_count
		FROM posts p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN comments c ON c.post_id = p.id AND ` + approved + `
		WHERE ` + where + `
		GROUP BY p.id, u.name, p.title
		HAVING COUNT(c.id) >= ?
		ORDER BY approved_comment_count DESC, p.id ASC
	`)

	args := make([]interface{}, 0, len(approvedArgs)+len(whereArgs)+1)
	args = append(args, approvedArgs...)
	args = append(args, whereArgs...)
	args = append(args, minApprovedComments)

	rows := []models.PopularPostRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get recent popular posts: %w", err)
	}

	return rows, nil
}

// UserCountsPage aggregates posts and approved comments for the next page of users after afterUserID.
func (r *statsRepository) UserCountsPage(ctx context.Context, afterUserID int64, limit int) ([]models.UserCounts, error) {
	query := r.db.Rebind(`
		SELECT u.id AS user_id, u.name,
			COUNT(DISTINCT p.id) AS total_posts,
			COUNT(DISTINCT p.id) FILTER (WHERE p.status = ?) AS published_posts,
			COUNT(c.id) AS total_comments_received
		FROM users u
		LEFT JOIN posts p ON p.user_id = u.id
		LEFT JOIN comments c ON c.post_id = p.id AND c.status = ?
		WHERE u.id > ?
		GROUP BY u.id, u.name
		ORDER BY u.id ASC
		LIMIT ?
	`)

	counts := []models.UserCounts{}
	err := r.db.SelectContext(ctx, &counts, query,
		models.PostStatusPublished,
		models.CommentStatusApproved,
		afterUserID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user statistics: %w", err)
	}

	return counts, nil
}

// PostStatistics computes the derived counters of the given posts in one statement.
func (r *statsRepository) PostStatistics(ctx context.Context, postIDs []int64) ([]models.PostStatistics, error) {
	if len(postIDs) == 0 {
		return []models.PostStatistics{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT p.id AS post_id,
			COALESCE(ac.approved_comment_count, 0) AS approved_comment_count,
			COALESCE(pt.tag_count, 0) AS tag_count,
			ac.last_commented_at
		FROM posts p
		LEFT JOIN (
			SELECT post_id, COUNT(*) AS approved_comment_count, MAX(created_at) AS last_commented_at
			FROM comments
			WHERE status = ? AND post_id IN (?)
			GROUP BY post_id
		) ac ON ac.post_id = p.id
		LEFT JOIN (
			SELECT post_id, COUNT(*) AS tag_count
			FROM post_tags
			WHERE post_id IN (?)
			GROUP BY post_id
		) pt ON pt.post_id = p.id
		WHERE p.id IN (?)
		ORDER BY p.id ASC
	`, models.CommentStatusApproved, postIDs, postIDs, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build post statistics query: %w", err)
	}

	stats := []models.PostStatistics{}
	if err := r.db.SelectContext(ctx, &stats, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to compute post statistics: %w", err)
	}

	return stats, nil
}

// PopularTags ranks tags by the number of distinct posts referencing them.
func (r *statsRepository) PopularTags(ctx context.Context, limit int) ([]models.TagPopularity, error) {
	if limit <= 0 {
		return []models.TagPopularity{}, nil
	}

	query := r.db.Rebind(`
		SELECT t.id, t.name, COUNT(DISTINCT pt.post_id) AS post_count
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id, t.name
		ORDER BY post_count DESC, t.id ASC
		LIMIT ?
	`)

	tags := []models.TagPopularity{}
	if err := r.db.SelectContext(ctx, &tags, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get popular tags: %w", err)
	}

	return tags, nil
}

// ActiveUsersCount counts distinct users who authored a post created on or after since.
func (r *statsRepository) ActiveUsersCount(ctx context.Context, since time.Time) (int, error) {
	query, args, err := build(r.db, `
		SELECT COUNT(DISTINCT u.id)
		FROM users u
		JOIN posts p ON p.user_id = u.id
	`, ListOptions{Filters: []Filter{PostsCreatedSince(since)}})
	if err != nil {
		return 0, fmt.Errorf("failed to build active users query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}

	return count, nil
}
