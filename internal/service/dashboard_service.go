package service

import (
	"context"
	"fmt"
	"time"

	"blogstats/internal/config"
	"blogstats/internal/metrics"
	"blogstats/internal/models"
	"blogstats/internal/relations"
	"blogstats/internal/repository"
)

type DashboardService interface {
	BlogDashboard(ctx context.Context) ([]models.DashboardRow, error)
}

type dashboardService struct {
	postRepo repository.PostRepository
	loader   *relations.Loader
	limit    int
}

func NewDashboardService(postRepo repository.PostRepository, loader *relations.Loader, cfg *config.Config) DashboardService {
	return &dashboardService{
		postRepo: postRepo,
		loader:   loader,
		limit:    cfg.Report.DashboardLimit,
	}
}

// BlogDashboard summarizes the most recent published posts.
func (s *dashboardService) BlogDashboard(ctx context.Context) ([]models.DashboardRow, error) {
	defer metrics.ObserveSince("dashboard", time.Now())

	posts, err := s.postRepo.Published(ctx, true, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard posts: %w", err)
	}

	include := relations.Authors | relations.Categories | relations.Comments | relations.Tags
	idx, err := s.loader.Load(ctx, posts, include)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dashboard posts: %w", err)
	}

	rows := make([]models.DashboardRow, 0, len(posts))
	for _, post := range idx.Posts() {
		rows = append(rows, dashboardRow(idx, post))
	}

	return rows, nil
}

// dashboardRow counts approved comments only; the latest comment is taken from every status.
func dashboardRow(idx *relations.Index, post models.Post) models.DashboardRow {
	row := models.DashboardRow{
		Title:        post.Title,
		Author:       idx.UserName(post.UserID),
		CommentCount: len(idx.ApprovedComments(post.ID)),
		TagNames:     idx.TagNames(post.ID),
	}

	if category := idx.Category(post); category != nil {
		row.Category = category.Name
	}

	if latest := latestComment(idx.Comments(post.ID)); latest != nil {
		content := latest.Content
		row.LatestComment = &content
	}

	return row
}

// latestComment picks the newest comment; equal timestamps go to the higher id.
func latestComment(comments []models.Comment) *models.Comment {
	var latest *models.Comment
	for i := range comments {
		c := &comments[i]
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) ||
			(c.CreatedAt.Equal(latest.CreatedAt) && c.ID > latest.ID) {
			latest = c
		}
	}
	return latest
}
