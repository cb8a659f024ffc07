package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"blogstats/internal/config"
	"blogstats/internal/metrics"
	"blogstats/internal/models"
	"blogstats/internal/relations"
	"blogstats/internal/repository"
)

type PostsService interface {
	// PostsWithRecentComments lists every published post with its newest approved comments
	// written by active users.
	PostsWithRecentComments(ctx context.Context) ([]models.PostWithRecentComments, error)
}

type postsService struct {
	postRepo  repository.PostRepository
	loader    *relations.Loader
	limit     int
	batchSize int
}

func NewPostsService(postRepo repository.PostRepository, loader *relations.Loader, cfg *config.Config) PostsService {
	return &postsService{
		postRepo:  postRepo,
		loader:    loader,
		limit:     cfg.Report.RecentCommentsLimit,
		batchSize: cfg.Batch.Size,
	}
}

func (s *postsService) PostsWithRecentComments(ctx context.Context) ([]models.PostWithRecentComments, error) {
	defer metrics.ObserveSince("posts_with_recent_comments", time.Now())

	result := []models.PostWithRecentComments{}
	var afterID int64
	for {
		posts, err := s.postRepo.List(ctx, repository.ListOptions{
			Filters: []repository.Filter{repository.PostsPublished(), repository.PostsAfter(afterID)},
			Order:   repository.OrderPostsByID,
			Limit:   s.batchSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load published posts: %w", err)
		}
		if len(posts) == 0 {
			break
		}

		idx, err := s.loader.Load(ctx, posts, relations.Commenters, repository.CommentsApproved())
		if err != nil {
			return nil, err
		}

		for _, post := range posts {
			result = append(result, models.PostWithRecentComments{
				PostID:         post.ID,
				Title:          post.Title,
				RecentComments: s.recentComments(idx, post.ID),
			})
		}

		if len(posts) < s.batchSize {
			break
		}
		afterID = posts[len(posts)-1].ID
	}

	return result, nil
}

func (s *postsService) recentComments(idx *relations.Index, postID int64) []models.RecentComment {
	var eligible []models.Comment
	for _, c := range idx.ApprovedComments(postID) {
		if author := idx.User(c.UserID); author != nil && author.IsActive() {
			eligible = append(eligible, c)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].CreatedAt.Equal(eligible[j].CreatedAt) {
			return eligible[i].CreatedAt.After(eligible[j].CreatedAt)
		}
		return eligible[i].ID > eligible[j].ID
	})

	if len(eligible) > s.limit {
		eligible = eligible[:s.limit]
	}

	recent := make([]models.RecentComment, 0, len(eligible))
	for _, c := range eligible {
		recent = append(recent, models.RecentComment{
			Content:    c.Content,
			AuthorName: idx.UserName(c.UserID),
			CreatedAt:  c.CreatedAt,
		})
	}
	return recent
}
