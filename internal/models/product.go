package models

import (
	"time"
)

// Product is a catalog item belonging to exactly one category.
type Product struct {
	ID            int       `json:"id" db:"id"`
	UniqueID      string    `json:"unique_id" db:"unique_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	Price         float64   `json:"price" db:"price"`
	Image         string    `json:"image,omitempty" db:"image"`
	CategoryID    int       `json:"category_id" db:"category_id"`
	StockQuantity int       `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// CategoryName is populated on list/report queries via join.
	CategoryName string `json:"category_name,omitempty" db:"-"`
}

// ProductRecord is a normalized product-creation record produced by
// the import validator from one spreadsheet row.
type ProductRecord struct {
	Row           int // source row number, for error attribution
	Name          string
	Description   string
	Price         float64
	CategoryID    int
	StockQuantity int
	Image         string
}

// ProductFilter narrows product list and report queries.
type ProductFilter struct {
	Search    string
	Category  string // id, unique_id or name fragment
	MinPrice  *float64
	MaxPrice  *float64
	IsActive  *bool
	SortBy    string
	SortOrder string
}

// Pagination carries page metadata on list responses.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}
