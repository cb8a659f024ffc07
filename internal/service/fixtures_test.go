package service

import (
	"testing"
	"time"

	"blogstats/internal/config"
	"blogstats/internal/models"
	"blogstats/internal/relations"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Report: config.Report{
			DashboardLimit:      10,
			SidebarTags:         10,
			SidebarRecentPosts:  5,
			ActiveUsersWindow:   7 * 24 * time.Hour,
			PopularPostsWindow:  30 * 24 * time.Hour,
			MinApprovedComments: 2,
			RecentCommentsLimit: 3,
		},
		Batch: config.Batch{Size: 1000, Timeout: time.Minute},
		Cache: config.Cache{SidebarTTL: 5 * time.Minute},
	}
}

type repoMocks struct {
	users      *MockUserRepository
	categories *MockCategoryRepository
	tags       *MockTagRepository
	posts      *MockPostRepository
	comments   *MockCommentRepository
	stats      *MockStatsRepository
}

func newRepoMocks() *repoMocks {
	return &repoMocks{
		users:      new(MockUserRepository),
		categories: new(MockCategoryRepository),
		tags:       new(MockTagRepository),
		posts:      new(MockPostRepository),
		comments:   new(MockCommentRepository),
		stats:      new(MockStatsRepository),
	}
}

func (m *repoMocks) loader() *relations.Loader {
	return relations.NewLoader(m.users, m.categories, m.comments, m.tags)
}

func (m *repoMocks) assertExpectations(t *testing.T) {
	m.users.AssertExpectations(t)
	m.categories.AssertExpectations(t)
	m.tags.AssertExpectations(t)
	m.posts.AssertExpectations(t)
	m.comments.AssertExpectations(t)
	m.stats.AssertExpectations(t)
}

func user(id int64, name, status string) models.User {
	return models.User{ID: id, Name: name, Email: name + "@example.com", Status: status}
}

func publishedPost(id, userID, categoryID int64, title string) models.Post {
	at := fixedNow.Add(-time.Duration(id) * time.Hour)
	return models.Post{
		ID:          id,
		Title:       title,
		Status:      models.PostStatusPublished,
		UserID:      userID,
		CategoryID:  categoryID,
		PublishedAt: &at,
		CreatedAt:   at,
	}
}

func comment(id, postID, userID int64, status, content string, at time.Time) models.Comment {
	return models.Comment{ID: id, PostID: postID, UserID: userID, Status: status, Content: content, CreatedAt: at}
}
