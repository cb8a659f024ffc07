package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"blogstats/internal/config"
	"blogstats/internal/metrics"
	"blogstats/internal/models"
	"blogstats/internal/repository"
)

type StatisticsService interface {
	// RecentPopularPosts lists posts created within window by active authors with at least
	// minApproved approved comments. A zero window falls back to the configured default.
	RecentPopularPosts(ctx context.Context, window time.Duration, minApproved int) ([]models.PopularPostRow, error)
	UserStatistics(ctx context.Context) (map[int64]models.StatisticsRow, error)
	// EachUserStatistics calls fn for every user in id order, one page at a time.
	EachUserStatistics(ctx context.Context, fn func(userID int64, row models.StatisticsRow) error) error
}

type statisticsService struct {
	statsRepo     repository.StatsRepository
	defaultWindow time.Duration
	pageSize      int
	now           clock
}

func NewStatisticsService(statsRepo repository.StatsRepository, cfg *config.Config) StatisticsService {
	return &statisticsService{
		statsRepo:     statsRepo,
		defaultWindow: cfg.Report.PopularPostsWindow,
		pageSize:      cfg.Batch.Size,
		now:           time.Now,
	}
}

func (s *statisticsService) RecentPopularPosts(ctx context.Context, window time.Duration, minApproved int) ([]models.PopularPostRow, error) {
	defer metrics.ObserveSince("recent_popular_posts", time.Now())

	if window <= 0 {
		window = s.defaultWindow
	}
	if minApproved < 0 {
		minApproved = 0
	}

	rows, err := s.statsRepo.RecentPopularPosts(ctx, s.now().Add(-window), minApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular posts: %w", err)
	}
	return rows, nil
}

func (s *statisticsService) UserStatistics(ctx context.Context) (map[int64]models.StatisticsRow, error) {
	stats := make(map[int64]models.StatisticsRow)
	err := s.EachUserStatistics(ctx, func(userID int64, row models.StatisticsRow) error {
		stats[userID] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *statisticsService) EachUserStatistics(ctx context.Context, fn func(userID int64, row models.StatisticsRow) error) error {
	defer metrics.ObserveSince("user_statistics", time.Now())

	var afterID int64
	for {
		page, err := s.statsRepo.UserCountsPage(ctx, afterID, s.pageSize)
		if err != nil {
			return fmt.Errorf("failed to load user counts after %d: %w", afterID, err)
		}

		for _, counts := range page {
			if err := fn(counts.UserID, statisticsRow(counts)); err != nil {
				return err
			}
		}

		if len(page) < s.pageSize {
			return nil
		}
		afterID = page[len(page)-1].UserID
	}
}

func statisticsRow(c models.UserCounts) models.StatisticsRow {
	return models.StatisticsRow{
		Name:                  c.Name,
		TotalPosts:            c.TotalPosts,
		PublishedPosts:        c.PublishedPosts,
		TotalCommentsReceived: c.TotalCommentsReceived,
		AvgCommentsPerPost:    averagePerPost(c.TotalCommentsReceived, c.TotalPosts),
	}
}

// averagePerPost divides by at least one post and rounds to two decimals.
func averagePerPost(comments, posts int) float64 {
	avg := float64(comments) / float64(max(posts, 1))
	return math.Round(avg*100) / 100
}
