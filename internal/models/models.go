package models

import (
	"time"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"

	PostStatusDraft     = "draft"
	PostStatusPublished = "published"

	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
)

type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// PostTag is the join row between posts and tags.
type PostTag struct {
	PostID int64 `json:"post_id" db:"post_id"`
	TagID  int64 `json:"tag_id" db:"tag_id"`
}

// TaggedPost is a tag row joined with the post that references it.
type TaggedPost struct {
	PostID int64 `db:"post_id"`
	Tag
}

type Post struct {
	ID                   int64      `json:"id" db:"id"`
	Title                string     `json:"title" db:"title"`
	Content              string     `json:"content" db:"content"`
	Status               string     `json:"status" db:"status"`
	UserID               int64      `json:"user_id" db:"user_id"`
	CategoryID           int64      `json:"category_id" db:"category_id"`
	PublishedAt          *time.Time `json:"published_at,omitempty" db:"published_at"`
	ApprovedCommentCount int        `json:"approved_comment_count" db:"approved_comment_count"`
	TagCount             int        `json:"tag_count" db:"tag_count"`
	LastCommentedAt      *time.Time `json:"last_commented_at,omitempty" db:"last_commented_at"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

func (p *Post) IsPublished() bool {
	return p != nil && p.Status == PostStatusPublished
}

type Comment struct {
	ID        int64     `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	Status    string    `json:"status" db:"status"`
	UserID    int64     `json:"user_id" db:"user_id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (c *Comment) IsApproved() bool {
	return c != nil && c.Status == CommentStatusApproved
}

// PostStatistics holds the derived counters persisted on a post.
type PostStatistics struct {
	PostID               int64      `db:"post_id" validate:"gt=0"`
	ApprovedCommentCount int        `db:"approved_comment_count" validate:"gte=0"`
	TagCount             int        `db:"tag_count" validate:"gte=0"`
	LastCommentedAt      *time.Time `db:"last_commented_at"`
}

// UserCounts is the raw per-user aggregate read from the database.
type UserCounts struct {
	UserID                int64  `db:"user_id"`
	Name                  string `db:"name"`
	TotalPosts            int    `db:"total_posts"`
	PublishedPosts        int    `db:"published_posts"`
	TotalCommentsReceived int    `db:"total_comments_received"`
}

type TagPopularity struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	PostCount int    `db:"post_count"`
}
