package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"contas/internal/domain/category"
)

type CategoryRepository struct {
	db querier
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, user_id, name, is_system, created_at, updated_at`

func (r *CategoryRepository) Create(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	query := `
		INSERT INTO categories (id, user_id, name, is_system)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + categoryColumns

	var c category.Category
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.Name, params.IsSystem,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.IsSystem, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var c category.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.IsSystem, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

// GetOrCreate relies on the (user_id, name) unique constraint: the insert is
// a no-op when the category already exists and the select always wins.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, userID int64, name string, isSystem bool) (*category.Category, error) {
	query := `
		INSERT INTO categories (id, user_id, name, is_system)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET updated_at = categories.updated_at
		RETURNING ` + categoryColumns

	var c category.Category
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), userID, name, isSystem,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.IsSystem, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create category %q: %w", name, err)
	}

	return &c, nil
}

func (r *CategoryRepository) ListByUserID(ctx context.Context, userID int64) ([]*category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.IsSystem, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return category.ErrCategoryNotFound
	}

	return nil
}
