package validation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/parser"
)

// Column describes one expected spreadsheet column for product import.
type Column struct {
	Name     string
	Required bool
}

// ProductColumns is the fixed import schema. Columns outside this list
// are ignored; missing required columns produce a row error.
var ProductColumns = []Column{
	{Name: "name", Required: true},
	{Name: "price", Required: true},
	{Name: "category_id", Required: true},
	{Name: "description", Required: false},
	{Name: "stock_quantity", Required: false},
	{Name: "image", Required: false},
}

// ErrorCode classifies a per-row import failure.
type ErrorCode string

const (
	CodeMissingFields    ErrorCode = "missing_required_fields"
	CodeCategoryNotFound ErrorCode = "category_not_found"
	CodeRowFailed        ErrorCode = "row_failed"
)

// RowError is a structured per-row failure. It is recorded against the
// job and never aborts the import. The message text is the user-facing
// form stored in the result payload.
type RowError struct {
	Row     int
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *RowError) Error() string {
	return e.Message
}

func (e *RowError) Unwrap() error {
	return e.Cause
}

// CategoryLookup is the read-only storage collaborator used to confirm
// a referenced category exists.
type CategoryLookup interface {
	CategoryExists(ctx context.Context, id int) (bool, error)
}

// ProductRowValidator checks and normalizes raw import rows against
// ProductColumns.
type ProductRowValidator struct {
	categories CategoryLookup
}

// NewProductRowValidator creates a validator backed by the given
// category lookup.
func NewProductRowValidator(categories CategoryLookup) *ProductRowValidator {
	return &ProductRowValidator{categories: categories}
}

// Validate turns one raw row into a normalized product-creation record
// or a RowError. Rules are checked in order; the first failure wins.
func (v *ProductRowValidator) Validate(ctx context.Context, row parser.Row) (*models.ProductRecord, *RowError) {
	name := row.Field("name")
	rawPrice := row.Field("price")
	rawCategoryID := row.Field("category_id")

	if name == "" || rawPrice == "" || rawCategoryID == "" {
		return nil, &RowError{
			Row:     row.Number,
			Code:    CodeMissingFields,
			Message: "Missing required fields (name, price, category_id)",
		}
	}

	// A category_id that does not parse cannot reference any category,
	// so it reports the same not-found message as an unknown id.
	categoryID, err := strconv.Atoi(rawCategoryID)
	if err != nil {
		return nil, &RowError{
			Row:     row.Number,
			Code:    CodeCategoryNotFound,
			Message: fmt.Sprintf("Category with ID %s not found", rawCategoryID),
			Cause:   err,
		}
	}

	exists, err := v.categories.CategoryExists(ctx, categoryID)
	if err != nil {
		return nil, &RowError{
			Row:     row.Number,
			Code:    CodeRowFailed,
			Message: err.Error(),
			Cause:   err,
		}
	}
	if !exists {
		return nil, &RowError{
			Row:     row.Number,
			Code:    CodeCategoryNotFound,
			Message: fmt.Sprintf("Category with ID %s not found", rawCategoryID),
		}
	}

	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return nil, &RowError{
			Row:     row.Number,
			Code:    CodeRowFailed,
			Message: err.Error(),
			Cause:   err,
		}
	}

	// stock_quantity defaults to 0 when absent or unparseable.
	stock, err := strconv.Atoi(row.Field("stock_quantity"))
	if err != nil {
		stock = 0
	}

	return &models.ProductRecord{
		Row:           row.Number,
		Name:          name,
		Description:   row.Field("description"),
		Price:         price,
		CategoryID:    categoryID,
		StockQuantity: stock,
		Image:         row.Field("image"),
	}, nil
}
