package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"blogstats/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	GetByIDs(ctx context.Context, userIDs []int64) ([]models.User, error)
	List(ctx context.Context, opts ListOptions) ([]models.User, error)
	Active(ctx context.Context) ([]models.User, error)
	Inactive(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, userID int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByIDs(ctx context.Context, categoryIDs []int64) ([]models.Category, error)
}

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	AttachToPost(ctx context.Context, postID, tagID int64) error
	ByPostIDs(ctx context.Context, postIDs []int64) ([]models.TaggedPost, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID int64) (*models.Post, error)
	List(ctx context.Context, opts ListOptions) ([]models.Post, error)
	Published(ctx context.Context, recent bool, limit int) ([]models.Post, error)
	Drafts(ctx context.Context) ([]models.Post, error)
	Page(ctx context.Context, afterID int64, limit int) ([]models.Post, error)
	Delete(ctx context.Context, postID int64) error
	UpdateStatistics(ctx context.Context, stats models.PostStatistics) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ByPostIDs(ctx context.Context, postIDs []int64, filters ...Filter) ([]models.Comment, error)
	Approved(ctx context.Context, postID int64) ([]models.Comment, error)
	Pending(ctx context.Context, postID int64) ([]models.Comment, error)
}

// StatsRepository runs the aggregations that the database computes in a single statement.
type StatsRepository interface {
	RecentPopularPosts(ctx context.Context, since time.Time, minApprovedComments int) ([]models.PopularPostRow, error)
	UserCountsPage(ctx context.Context, afterUserID int64, limit int) ([]models.UserCounts, error)
	PostStatistics(ctx context.Context, postIDs []int64) ([]models.PostStatistics, error)
	PopularTags(ctx context.Context, limit int) ([]models.TagPopularity, error)
	ActiveUsersCount(ctx context.Context, since time.Time) (int, error)
}

type Repository struct {
	User     UserRepository
	Category CategoryRepository
	Tag      TagRepository
	Post     PostRepository
	Comment  CommentRepository
	Stats    StatsRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:     NewUserRepository(db),
		Category: NewCategoryRepository(db),
		Tag:      NewTagRepository(db),
		Post:     NewPostRepository(db),
		Comment:  NewCommentRepository(db),
		Stats:    NewStatsRepository(db),
	}
}
