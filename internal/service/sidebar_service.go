package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"blogstats/internal/cache"
	"blogstats/internal/config"
	"blogstats/internal/metrics"
	"blogstats/internal/models"
	"blogstats/internal/relations"
	"blogstats/internal/repository"
)

const sidebarCacheKey = "sidebar:v1"

type SidebarService interface {
	SidebarData(ctx context.Context) (*models.SidebarPayload, error)
	InvalidateSidebar(ctx context.Context) error
}

type sidebarService struct {
	postRepo  repository.PostRepository
	statsRepo repository.StatsRepository
	loader    *relations.Loader
	cache     cache.Cache
	cfg       config.Report
	ttl       time.Duration
	now       clock
}

func NewSidebarService(postRepo repository.PostRepository, statsRepo repository.StatsRepository,
	loader *relations.Loader, sidebarCache cache.Cache, cfg *config.Config) SidebarService {
	return &sidebarService{
		postRepo:  postRepo,
		statsRepo: statsRepo,
		loader:    loader,
		cache:     sidebarCache,
		cfg:       cfg.Report,
		ttl:       cfg.Cache.SidebarTTL,
		now:       time.Now,
	}
}

// SidebarData serves the sidebar from the cache when possible. Cache failures are logged and
// fall through to the database.
func (s *sidebarService) SidebarData(ctx context.Context) (*models.SidebarPayload, error) {
	if payload, ok := s.cached(ctx); ok {
		return payload, nil
	}

	payload, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, payload)
	return payload, nil
}

func (s *sidebarService) InvalidateSidebar(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, sidebarCacheKey)
}

func (s *sidebarService) build(ctx context.Context) (*models.SidebarPayload, error) {
	defer metrics.ObserveSince("sidebar", time.Now())

	tags, err := s.statsRepo.PopularTags(ctx, s.cfg.SidebarTags)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular tags: %w", err)
	}

	posts, err := s.postRepo.Published(ctx, true, s.cfg.SidebarRecentPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent posts: %w", err)
	}

	idx, err := s.loader.Load(ctx, posts, relations.Authors)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recent posts: %w", err)
	}

	activeUsers, err := s.statsRepo.ActiveUsersCount(ctx, s.now().Add(-s.cfg.ActiveUsersWindow))
	if err != nil {
		return nil, err
	}

	payload := &models.SidebarPayload{
		PopularTags:      make([]string, 0, len(tags)),
		RecentPosts:      make([]models.RecentPost, 0, len(posts)),
		ActiveUsersCount: activeUsers,
	}
	for _, t := range tags {
		payload.PopularTags = append(payload.PopularTags, t.Name)
	}
	for _, p := range idx.Posts() {
		payload.RecentPosts = append(payload.RecentPosts, models.RecentPost{
			Title:  p.Title,
			Author: idx.UserName(p.UserID),
		})
	}

	return payload, nil
}

func (s *sidebarService) cached(ctx context.Context) (*models.SidebarPayload, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, sidebarCacheKey)
	if errors.Is(err, cache.ErrMiss) {
		metrics.SidebarCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.SidebarCacheRequests.WithLabelValues("error").Inc()
		log.WithError(err).Warn("sidebar cache read failed")
		return nil, false
	}

	var payload models.SidebarPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		metrics.SidebarCacheRequests.WithLabelValues("error").Inc()
		log.WithError(err).Warn("sidebar cache entry is corrupt")
		return nil, false
	}

	metrics.SidebarCacheRequests.WithLabelValues("hit").Inc()
	return &payload, true
}

func (s *sidebarService) store(ctx context.Context, payload *models.SidebarPayload) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Warn("failed to encode sidebar payload")
		return
	}

	if err := s.cache.Set(ctx, sidebarCacheKey, data, s.ttl); err != nil {
		log.WithError(err).Warn("sidebar cache write failed")
	}
}
