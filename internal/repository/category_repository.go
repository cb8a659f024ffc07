package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogstats/internal/models"
)

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, description)
		VALUES (:name, :description)
		RETURNING id
	`

	if err := insertReturning(ctx, r.db, query, category, &category.ID); err != nil {
		return wrapWriteErr("failed to create category", err)
	}

	return nil
}

func (r *categoryRepository) GetByIDs(ctx context.Context, categoryIDs []int64) ([]models.Category, error) {
	if len(categoryIDs) == 0 {
		return []models.Category{}, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, description FROM categories WHERE id IN (?) ORDER BY id`, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build categories query: %w", err)
	}

	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	return categories, nil
}
