package models

import "time"

type DashboardRow struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Category      string   `json:"category"`
	CommentCount  int      `json:"comment_count"`
	TagNames      []string `json:"tag_names"`
	LatestComment *string  `json:"latest_comment"`
}

type RecentPost struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

type SidebarPayload struct {
	PopularTags      []string     `json:"popular_tags"`
	RecentPosts      []RecentPost `json:"recent_posts"`
	ActiveUsersCount int          `json:"active_users_count"`
}

// ExportRow is one (post, comment) pair of the user activity export.
type ExportRow struct {
	AuthorName       string    `json:"author_name"`
	AuthorEmail      string    `json:"author_email"`
	PostTitle        string    `json:"post_title"`
	CommentContent   string    `json:"comment_content"`
	CommentCreatedAt time.Time `json:"comment_created_at"`
}

type StatisticsRow struct {
	Name                  string  `json:"name"`
	TotalPosts            int     `json:"total_posts"`
	PublishedPosts        int     `json:"published_posts"`
	TotalCommentsReceived int     `json:"total_comments_received"`
	AvgCommentsPerPost    float64 `json:"avg_comments_per_post"`
}

type PopularPostRow struct {
	Title                string `json:"title" db:"title"`
	AuthorName           string `json:"author_name" db:"author_name"`
	ApprovedCommentCount int    `json:"approved_comment_count" db:"approved_comment_count"`
}

type RecentComment struct {
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type PostWithRecentComments struct {
	PostID         int64           `json:"post_id"`
	Title          string          `json:"title"`
	RecentComments []RecentComment `json:"recent_comments"`
}
