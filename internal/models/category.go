package models

import (
	"time"
)

// Category groups products in the catalog.
type Category struct {
	ID          int       `json:"id" db:"id"`
	UniqueID    string    `json:"unique_id" db:"unique_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// ProductCount is populated on list responses only.
	ProductCount int `json:"product_count,omitempty" db:"-"`
}
