package repository

import (
	"context"
	"time"

	"github.com/catalog-admin-api/internal/database"
	"github.com/catalog-admin-api/internal/models"
)

// UserListOptions narrows user list queries.
type UserListOptions struct {
	Page     int
	Limit    int
	Search   string
	Role     string
	IsActive *bool
}

// CategoryListOptions narrows category list queries.
type CategoryListOptions struct {
	Page     int
	Limit    int
	Search   string
	IsActive *bool
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, opts UserListOptions) ([]*models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	CategoryExists(ctx context.Context, id int) (bool, error)
	List(ctx context.Context, opts CategoryListOptions) ([]*models.Category, int, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int) error
	ProductCount(ctx context.Context, id int) (int, error)
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter, page, limit int) ([]*models.Product, int, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, filter models.ProductFilter, callback func(*models.Product) error) error
}

// JobRepository defines the interface for import job data operations.
// State transitions are expressed as conditional updates so that reads
// and writes of job state stay atomic.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetQueued(ctx context.Context) ([]*models.Job, error)
	Claim(ctx context.Context, id string) (bool, error)
	UpdateProgress(ctx context.Context, id string, progress float64) error
	Complete(ctx context.Context, id string, totalRows, processedCount, errorCount int) error
	Fail(ctx context.Context, id, reason string) error
	AddErrors(ctx context.Context, jobID string, errs []models.ImportError) error
	GetErrors(ctx context.Context, jobID string, limit int) ([]models.ImportError, error)
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Category CategoryRepository
	Product  ProductRepository
	Job      JobRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Category: NewCategoryRepo(db),
		Product:  NewProductRepo(db),
		Job:      NewJobRepo(db),
	}
}
