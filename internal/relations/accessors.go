package relations

import (
	"blogstats/internal/models"
)

// Index holds the posts of one Load call and their resolved associations.
// Lookups of rows that were not loaded, or that no longer exist, return nil or an empty slice.
type Index struct {
	posts      []models.Post
	users      map[int64]*models.User
	categories map[int64]*models.Category
	comments   map[int64][]models.Comment
	tags       map[int64][]models.Tag
}

func newIndex(posts []models.Post) *Index {
	return &Index{
		posts:      posts,
		users:      make(map[int64]*models.User),
		categories: make(map[int64]*models.Category),
		comments:   make(map[int64][]models.Comment),
		tags:       make(map[int64][]models.Tag),
	}
}

func (i *Index) Posts() []models.Post {
	return i.posts
}

func (i *Index) User(userID int64) *models.User {
	return i.users[userID]
}

func (i *Index) Author(post models.Post) *models.User {
	return i.users[post.UserID]
}

func (i *Index) Category(post models.Post) *models.Category {
	return i.categories[post.CategoryID]
}

// Comments returns the loaded comments of a post, oldest first.
func (i *Index) Comments(postID int64) []models.Comment {
	if comments, ok := i.comments[postID]; ok {
		return comments
	}
	return []models.Comment{}
}

func (i *Index) ApprovedComments(postID int64) []models.Comment {
	approved := []models.Comment{}
	for _, c := range i.comments[postID] {
		if c.IsApproved() {
			approved = append(approved, c)
		}
	}
	return approved
}

func (i *Index) Tags(postID int64) []models.Tag {
	if tags, ok := i.tags[postID]; ok {
		return tags
	}
	return []models.Tag{}
}

func (i *Index) TagNames(postID int64) []string {
	tags := i.tags[postID]
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

// UserName returns the name of the user, or "" when the user was not resolved.
func (i *Index) UserName(userID int64) string {
	if u := i.users[userID]; u != nil {
		return u.Name
	}
	return ""
}
