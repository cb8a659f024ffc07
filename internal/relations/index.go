// Package relations resolves the associations of a set of posts with one bulk query per
// relationship level and serves them from in-memory maps keyed by id.
package relations

import (
	"context"
	"fmt"

	"blogstats/internal/models"
	"blogstats/internal/repository"
)

// Include selects which associations Load fetches.
type Include uint8

const (
	Authors Include = 1 << iota
	Categories
	Comments
	// Commenters loads the users who wrote the loaded comments. It implies Comments.
	Commenters
	Tags
)

func (i Include) has(flag Include) bool {
	return i&flag != 0
}

type Loader struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	comments   repository.CommentRepository
	tags       repository.TagRepository
}

func NewLoader(users repository.UserRepository, categories repository.CategoryRepository,
	comments repository.CommentRepository, tags repository.TagRepository) *Loader {
	return &Loader{
		users:      users,
		categories: categories,
		comments:   comments,
		tags:       tags,
	}
}

// Load fetches the requested associations of posts. commentFilters narrow the comment level
// (for example repository.CommentsApproved()).
func (l *Loader) Load(ctx context.Context, posts []models.Post, include Include, commentFilters ...repository.Filter) (*Index, error) {
	idx := newIndex(posts)
	if len(posts) == 0 {
		return idx, nil
	}

	postIDs := make([]int64, 0, len(posts))
	authorIDs := newIDSet()
	categoryIDs := newIDSet()
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs.add(p.UserID)
		categoryIDs.add(p.CategoryID)
	}

	userIDs := newIDSet()
	if include.has(Authors) {
		userIDs.addAll(authorIDs.ids)
	}

	if include.has(Comments) || include.has(Commenters) {
		comments, err := l.comments.ByPostIDs(ctx, postIDs, commentFilters...)
		if err != nil {
			return nil, fmt.Errorf("failed to load comments: %w", err)
		}
		for _, c := range comments {
			idx.comments[c.PostID] = append(idx.comments[c.PostID], c)
			if include.has(Commenters) {
				userIDs.add(c.UserID)
			}
		}
	}

	if len(userIDs.ids) > 0 {
		users, err := l.users.GetByIDs(ctx, userIDs.ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load users: %w", err)
		}
		for i := range users {
			idx.users[users[i].ID] = &users[i]
		}
	}

	if include.has(Categories) {
		categories, err := l.categories.GetByIDs(ctx, categoryIDs.ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		for i := range categories {
			idx.categories[categories[i].ID] = &categories[i]
		}
	}

	if include.has(Tags) {
		tagged, err := l.tags.ByPostIDs(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load tags: %w", err)
		}
		for _, t := range tagged {
			idx.tags[t.PostID] = append(idx.tags[t.PostID], t.Tag)
		}
	}

	return idx, nil
}

type idSet struct {
	seen map[int64]struct{}
	ids  []int64
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[int64]struct{})}
}

func (s *idSet) add(id int64) {
	if id == 0 {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *idSet) addAll(ids []int64) {
	for _, id := range ids {
		s.add(id)
	}
}
