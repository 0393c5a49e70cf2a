package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/catalog-admin-api/internal/database"
	"github.com/catalog-admin-api/internal/models"
	"github.com/google/uuid"
)

// allowedSortFields whitelists product list sort columns.
var allowedSortFields = map[string]bool{
	"name":           true,
	"price":          true,
	"created_at":     true,
	"stock_quantity": true,
}

// productRepo is the concrete implementation of ProductRepository
type productRepo struct {
	db *database.DB
}

// NewProductRepo creates a new product repository
func NewProductRepo(db *database.DB) ProductRepository {
	return &productRepo{db: db}
}

// Create inserts a new product
func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	if product.UniqueID == "" {
		product.UniqueID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	query := `
		INSERT INTO products (unique_id, name, description, price, image, category_id,
			stock_quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		product.UniqueID, product.Name, product.Description, product.Price,
		product.Image, product.CategoryID, product.StockQuantity, product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
}

// GetByID retrieves a product by ID with its category name
func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	query := `
		SELECT p.id, p.unique_id, p.name, p.description, p.price, p.image,
			p.category_id, p.stock_quantity, p.is_active, p.created_at, p.updated_at,
			c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`
	var p models.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UniqueID, &p.Name, &p.Description, &p.Price, &p.Image,
		&p.CategoryID, &p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// buildFilter renders a ProductFilter into a WHERE clause. The category
// filter matches by numeric id, unique_id or a name fragment.
func buildFilter(filter models.ProductFilter, args *[]interface{}, idx *int) string {
	where := " WHERE 1=1"

	if filter.Search != "" {
		where += fmt.Sprintf(" AND p.name ILIKE $%d", *idx)
		*args = append(*args, "%"+filter.Search+"%")
		*idx++
	}
	if filter.Category != "" {
		if id, err := strconv.Atoi(filter.Category); err == nil {
			where += fmt.Sprintf(" AND p.category_id = $%d", *idx)
			*args = append(*args, id)
			*idx++
		} else {
			where += fmt.Sprintf(" AND (c.unique_id = $%d OR c.name ILIKE $%d)", *idx, *idx+1)
			*args = append(*args, filter.Category, "%"+filter.Category+"%")
			*idx += 2
		}
	}
	if filter.MinPrice != nil {
		where += fmt.Sprintf(" AND p.price >= $%d", *idx)
		*args = append(*args, *filter.MinPrice)
		*idx++
	}
	if filter.MaxPrice != nil {
		where += fmt.Sprintf(" AND p.price <= $%d", *idx)
		*args = append(*args, *filter.MaxPrice)
		*idx++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(" AND p.is_active = $%d", *idx)
		*args = append(*args, *filter.IsActive)
		*idx++
	}
	return where
}

func orderClause(filter models.ProductFilter) string {
	sortField := "created_at"
	if allowedSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	order := "DESC"
	if filter.SortOrder == "asc" || filter.SortOrder == "ASC" {
		order = "ASC"
	}
	return fmt.Sprintf(" ORDER BY p.%s %s", sortField, order)
}

// List retrieves products with pagination and filters
func (r *productRepo) List(ctx context.Context, filter models.ProductFilter, page, limit int) ([]*models.Product, int, error) {
	args := []interface{}{}
	idx := 1
	where := buildFilter(filter, &args, &idx)

	countQuery := "SELECT COUNT(*) FROM products p JOIN categories c ON c.id = p.category_id" + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT p.id, p.unique_id, p.name, p.description, p.price, p.image,
			p.category_id, p.stock_quantity, p.is_active, p.created_at, p.updated_at,
			c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id` + where + orderClause(filter) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.UniqueID, &p.Name, &p.Description, &p.Price, &p.Image,
			&p.CategoryID, &p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName,
		)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, &p)
	}
	return products, total, rows.Err()
}

// Update persists mutable product fields
func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products SET name = $1, description = $2, price = $3, image = $4,
			category_id = $5, stock_quantity = $6, is_active = $7, updated_at = $8
		WHERE id = $9
	`
	product.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Image,
		product.CategoryID, product.StockQuantity, product.IsActive,
		product.UpdatedAt, product.ID,
	)
	return err
}

// Delete removes a product
func (r *productRepo) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

// Count returns the total number of products
func (r *productRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}

// StreamAll streams filtered products for report generation (memory efficient)
func (r *productRepo) StreamAll(ctx context.Context, filter models.ProductFilter, callback func(*models.Product) error) error {
	args := []interface{}{}
	idx := 1
	where := buildFilter(filter, &args, &idx)

	query := `
		SELECT p.id, p.unique_id, p.name, p.description, p.price, p.image,
			p.category_id, p.stock_quantity, p.is_active, p.created_at, p.updated_at,
			c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id` + where + " ORDER BY p.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.UniqueID, &p.Name, &p.Description, &p.Price, &p.Image,
			&p.CategoryID, &p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName,
		)
		if err != nil {
			return err
		}
		if err := callback(&p); err != nil {
			return err
		}
	}
	return rows.Err()
}
