package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/catalog-admin-api/internal/database"
	"github.com/catalog-admin-api/internal/models"
	"github.com/google/uuid"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// Create inserts a new category
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	if category.UniqueID == "" {
		category.UniqueID = uuid.New().String()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	query := `
		INSERT INTO categories (unique_id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		category.UniqueID, category.Name, category.Description, category.IsActive,
		category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID)
}

// GetByID retrieves a category by ID
func (r *categoryRepo) GetByID(ctx context.Context, id int) (*models.Category, error) {
	query := `
		SELECT id, unique_id, name, description, is_active, created_at, updated_at
		FROM categories WHERE id = $1
	`
	var c models.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UniqueID, &c.Name, &c.Description, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CategoryExists checks if a category with the given ID exists
func (r *categoryRepo) CategoryExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// List retrieves categories with pagination, search and product counts
func (r *categoryRepo) List(ctx context.Context, opts CategoryListOptions) ([]*models.Category, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if opts.Search != "" {
		where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.description ILIKE $%d)", idx, idx)
		args = append(args, "%"+opts.Search+"%")
		idx++
	}
	if opts.IsActive != nil {
		where += fmt.Sprintf(" AND c.is_active = $%d", idx)
		args = append(args, *opts.IsActive)
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories c"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT c.id, c.unique_id, c.name, c.description, c.is_active,
			c.created_at, c.updated_at, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id` + where + fmt.Sprintf(`
		GROUP BY c.id
		ORDER BY c.created_at DESC
		LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.UniqueID, &c.Name, &c.Description, &c.IsActive,
			&c.CreatedAt, &c.UpdatedAt, &c.ProductCount,
		)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, &c)
	}
	return categories, total, rows.Err()
}

// Update persists mutable category fields
func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories SET name = $1, description = $2, is_active = $3, updated_at = $4
		WHERE id = $5
	`
	category.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		category.Name, category.Description, category.IsActive, category.UpdatedAt, category.ID,
	)
	return err
}

// Delete removes a category
func (r *categoryRepo) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}

// ProductCount returns the number of products referencing the category
func (r *categoryRepo) ProductCount(ctx context.Context, id int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE category_id = $1", id).Scan(&count)
	return count, err
}
