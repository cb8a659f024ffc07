package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"blogstats/internal/models"
)

const selectUsers = `SELECT u.id, u.name, u.email, u.status, u.created_at FROM users u`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, status, created_at)
		VALUES (:name, :email, :status, :created_at)
		RETURNING id
	`

	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if err := insertReturning(ctx, r.db, query, user, &user.ID); err != nil {
		return wrapWriteErr("failed to create user", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	query := r.db.Rebind(selectUsers + ` WHERE u.id = ?`)

	if err := r.db.GetContext(ctx, &user, query, userID); err != nil {
		return nil, wrapGetErr("user", userID, err)
	}

	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, userIDs []int64) ([]models.User, error) {
	if len(userIDs) == 0 {
		return []models.User{}, nil
	}

	return r.List(ctx, ListOptions{
		Filters: []Filter{UsersByIDs(userIDs)},
		Order:   OrderUsersByID,
	})
}

func (r *userRepository) List(ctx context.Context, opts ListOptions) ([]models.User, error) {
	if opts.Order == "" {
		opts.Order = OrderUsersByID
	}

	query, args, err := build(r.db, selectUsers, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (r *userRepository) Active(ctx context.Context) ([]models.User, error) {
	return r.List(ctx, ListOptions{Filters: []Filter{UsersActive()}})
}

func (r *userRepository) Inactive(ctx context.Context) ([]models.User, error) {
	return r.List(ctx, ListOptions{Filters: []Filter{UsersInactive()}})
}

// Delete removes the user; posts, comments and post tags go with it through ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, userID int64) error {
	query := r.db.Rebind(`DELETE FROM users WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectAffected(result, "user", userID)
}

// insertReturning runs a named INSERT ... RETURNING and scans the single returned row into dest.
func insertReturning(ctx context.Context, db *sqlx.DB, query string, arg interface{}, dest ...interface{}) error {
	rows, err := db.NamedQueryContext(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}

	return rows.Scan(dest...)
}

func expectAffected(result sql.Result, what string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}

	return nil
}
