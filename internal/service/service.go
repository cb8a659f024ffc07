package service

import (
	"time"

	"blogstats/internal/cache"
	"blogstats/internal/config"
	"blogstats/internal/relations"
	"blogstats/internal/repository"
	"blogstats/internal/storage"
)

type Service struct {
	Dashboard  DashboardService
	Sidebar    SidebarService
	Export     ExportService
	Statistics StatisticsService
	Batch      BatchService
	Posts      PostsService
}

// NewService wires the report services. sidebarCache and store may be nil, which disables
// sidebar caching and export uploads respectively.
func NewService(rep *repository.Repository, cfg *config.Config, sidebarCache cache.Cache, store storage.Storage) *Service {
	loader := relations.NewLoader(rep.User, rep.Category, rep.Comment, rep.Tag)

	return &Service{
		Dashboard:  NewDashboardService(rep.Post, loader, cfg),
		Sidebar:    NewSidebarService(rep.Post, rep.Stats, loader, sidebarCache, cfg),
		Export:     NewExportService(rep.Post, loader, store, cfg),
		Statistics: NewStatisticsService(rep.Stats, cfg),
		Batch:      NewBatchService(rep.Post, rep.Stats, cfg),
		Posts:      NewPostsService(rep.Post, loader, cfg),
	}
}

type clock func() time.Time
