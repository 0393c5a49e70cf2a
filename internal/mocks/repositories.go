package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository     = (*MockUserRepository)(nil)
	_ repository.CategoryRepository = (*MockCategoryRepository)(nil)
	_ repository.ProductRepository  = (*MockProductRepository)(nil)
	_ repository.JobRepository      = (*MockJobRepository)(nil)
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users       map[int]*models.User
	EmailToUser map[string]*models.User
	InsertError error
	nextID      int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:       make(map[int]*models.User),
		EmailToUser: make(map[string]*models.User),
		nextID:      1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.Users[user.ID] = user
	m.EmailToUser[user.Email] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return m.Users[id], nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.EmailToUser[email], nil
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.UserListOptions) ([]*models.User, int, error) {
	users := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		if opts.Role != "" && u.Role != opts.Role {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(opts.Search)) &&
			!strings.Contains(strings.ToLower(u.Name), strings.ToLower(opts.Search)) {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, len(users), nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.Users[user.ID] = user
	m.EmailToUser[user.Email] = user
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int) error {
	if u, ok := m.Users[id]; ok {
		delete(m.EmailToUser, u.Email)
		delete(m.Users, id)
	}
	return nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	Categories  map[int]*models.Category
	ExistsError error
	InsertError error
	ExistsCalls int
	nextID      int
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int]*models.Category),
		nextID:     1,
	}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if category.ID == 0 {
		category.ID = m.nextID
		m.nextID++
	}
	m.Categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	return m.Categories[id], nil
}

func (m *MockCategoryRepository) CategoryExists(ctx context.Context, id int) (bool, error) {
	m.ExistsCalls++
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	_, exists := m.Categories[id]
	return exists, nil
}

func (m *MockCategoryRepository) List(ctx context.Context, opts repository.CategoryListOptions) ([]*models.Category, int, error) {
	categories := make([]*models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		if opts.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(opts.Search)) {
			continue
		}
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, len(categories), nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	m.Categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int) error {
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) ProductCount(ctx context.Context, id int) (int, error) {
	return 0, nil
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mu          sync.Mutex
	Products    map[int]*models.Product
	InsertError error
	CreateFunc  func(ctx context.Context, product *models.Product) error
	CreateCalls int
	nextID      int
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		Products: make(map[int]*models.Product),
		nextID:   1,
	}
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	if m.InsertError != nil {
		return m.InsertError
	}
	if product.ID == 0 {
		product.ID = m.nextID
		m.nextID++
	}
	m.Products[product.ID] = product
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Products[id], nil
}

func (m *MockProductRepository) List(ctx context.Context, filter models.ProductFilter, page, limit int) ([]*models.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := m.sorted()
	return products, len(products), nil
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Products[product.ID] = product
	return nil
}

func (m *MockProductRepository) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Products, id)
	return nil
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Products), nil
}

func (m *MockProductRepository) StreamAll(ctx context.Context, filter models.ProductFilter, callback func(*models.Product) error) error {
	m.mu.Lock()
	products := m.sorted()
	m.mu.Unlock()
	for _, p := range products {
		if err := callback(p); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockProductRepository) sorted() []*models.Product {
	products := make([]*models.Product, 0, len(m.Products))
	for _, p := range m.Products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

// MockJobRepository is a mock implementation of JobRepository. All job
// state lives in memory so tests can assert on transitions directly.
type MockJobRepository struct {
	mu            sync.Mutex
	Jobs          map[string]*models.Job
	Errors        map[string][]models.ImportError
	ProgressCalls map[string][]float64
	InsertError   error
	ClaimError    error
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		Jobs:          make(map[string]*models.Job),
		Errors:        make(map[string][]models.ImportError),
		ProgressCalls: make(map[string][]float64),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	copy := *job
	m.Jobs[job.ID] = &copy
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok {
		return nil, nil
	}
	copy := *job
	return &copy, nil
}

func (m *MockJobRepository) GetQueued(ctx context.Context) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	queued := make([]*models.Job, 0)
	for _, job := range m.Jobs {
		if job.State == models.JobStateQueued {
			copy := *job
			queued = append(queued, &copy)
		}
	}
	sort.Slice(queued, func(i, j int) bool { return queued[i].CreatedAt.Before(queued[j].CreatedAt) })
	return queued, nil
}

func (m *MockJobRepository) Claim(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClaimError != nil {
		return false, m.ClaimError
	}
	job, ok := m.Jobs[id]
	if !ok || job.State != models.JobStateQueued {
		return false, nil
	}
	job.State = models.JobStateActive
	now := time.Now()
	job.StartedAt = &now
	return true, nil
}

func (m *MockJobRepository) UpdateProgress(ctx context.Context, id string, progress float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok || job.State != models.JobStateActive {
		return nil
	}
	m.ProgressCalls[id] = append(m.ProgressCalls[id], progress)
	if progress > job.Progress {
		job.Progress = progress
	}
	return nil
}

func (m *MockJobRepository) Complete(ctx context.Context, id string, totalRows, processedCount, errorCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok || job.State != models.JobStateActive {
		return nil
	}
	job.State = models.JobStateCompleted
	job.Progress = 100
	job.TotalRows = totalRows
	job.ProcessedCount = processedCount
	job.ErrorCount = errorCount
	now := time.Now()
	job.CompletedAt = &now
	return nil
}

func (m *MockJobRepository) Fail(ctx context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok || job.State.Terminal() {
		return nil
	}
	job.State = models.JobStateFailed
	job.FailureReason = reason
	now := time.Now()
	job.CompletedAt = &now
	return nil
}

func (m *MockJobRepository) AddErrors(ctx context.Context, jobID string, errs []models.ImportError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[jobID] = append(m.Errors[jobID], errs...)
	return nil
}

func (m *MockJobRepository) GetErrors(ctx context.Context, jobID string, limit int) ([]models.ImportError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs := m.Errors[jobID]
	if limit > 0 && len(errs) > limit {
		errs = errs[:limit]
	}
	out := make([]models.ImportError, len(errs))
	copy(out, errs)
	return out, nil
}

func (m *MockJobRepository) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, job := range m.Jobs {
		if job.State.Terminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.Jobs, id)
			delete(m.Errors, id)
			deleted++
		}
	}
	return deleted, nil
}
