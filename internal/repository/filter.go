package repository

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"blogstats/internal/models"
)

// Filter is a WHERE predicate with ? placeholders. Slice arguments are expanded by sqlx.In,
// so an IN (?) clause takes a slice. The zero Filter matches everything.
type Filter struct {
	clause string
	args   []interface{}
}

func Where(clause string, args ...interface{}) Filter {
	return Filter{clause: clause, args: args}
}

func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.clause) == ""
}

func (f Filter) SQL() (string, []interface{}) {
	return f.clause, f.args
}

// And joins the non-empty filters with AND.
func And(filters ...Filter) Filter {
	return join(" AND ", filters)
}

// Or joins the non-empty filters with OR.
func Or(filters ...Filter) Filter {
	return join(" OR ", filters)
}

func join(op string, filters []Filter) Filter {
	var nonEmpty []Filter
	for _, f := range filters {
		if !f.IsEmpty() {
			nonEmpty = append(nonEmpty, f)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return Filter{}
	case 1:
		return nonEmpty[0]
	}

	parts := make([]string, 0, len(nonEmpty))
	var args []interface{}
	for _, f := range nonEmpty {
		parts = append(parts, "("+f.clause+")")
		args = append(args, f.args...)
	}
	return Filter{clause: strings.Join(parts, op), args: args}
}

// Users are aliased u, posts p, comments c.

func UsersWithStatus(status string) Filter {
	return Where("u.status = ?", status)
}

func UsersActive() Filter {
	return UsersWithStatus(models.UserStatusActive)
}

func UsersInactive() Filter {
	return UsersWithStatus(models.UserStatusInactive)
}

func UsersByIDs(ids []int64) Filter {
	return Where("u.id IN (?)", ids)
}

func PostsWithStatus(status string) Filter {
	return Where("p.status = ?", status)
}

func PostsPublished() Filter {
	return PostsWithStatus(models.PostStatusPublished)
}

func PostsDraft() Filter {
	return PostsWithStatus(models.PostStatusDraft)
}

func PostsCreatedSince(t time.Time) Filter {
	return Where("p.created_at >= ?", t)
}

func PostsCreatedAfter(t time.Time) Filter {
	return Where("p.created_at > ?", t)
}

func PostsByIDs(ids []int64) Filter {
	return Where("p.id IN (?)", ids)
}

// PostsAfter selects the keyset page following afterID.
func PostsAfter(afterID int64) Filter {
	return Where("p.id > ?", afterID)
}

func CommentsWithStatus(status string) Filter {
	return Where("c.status = ?", status)
}

func CommentsApproved() Filter {
	return CommentsWithStatus(models.CommentStatusApproved)
}

func CommentsPending() Filter {
	return CommentsWithStatus(models.CommentStatusPending)
}

func CommentsByPostIDs(postIDs []int64) Filter {
	return Where("c.post_id IN (?)", postIDs)
}

// Order is an ORDER BY list. Every order ends on the primary key so ties are deterministic.
type Order string

const (
	OrderPostsByID     Order = "p.id ASC"
	OrderPostsRecent   Order = "p.created_at DESC, p.id ASC"
	OrderUsersByID     Order = "u.id ASC"
	OrderCommentsByAge Order = "c.post_id ASC, c.created_at ASC, c.id ASC"
)

// ListOptions describes one filtered, ordered, optionally limited projection.
type ListOptions struct {
	Filters []Filter
	Order   Order
	Limit   int
}

// build appends WHERE, ORDER BY and LIMIT to base and expands slice arguments for the bindvar type of db.
func build(db *sqlx.DB, base string, opts ListOptions) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString(base)

	where := And(opts.Filters...)
	args := where.args
	if !where.IsEmpty() {
		sb.WriteString(" WHERE ")
		sb.WriteString(where.clause)
	}
	if opts.Order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(string(opts.Order))
	}
	if opts.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}

	query, args, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return "", nil, err
	}
	return db.Rebind(query), args, nil
}
