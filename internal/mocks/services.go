package mocks

import (
	"context"
	"io"

	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/service"
)

// Verify interface compliance
var (
	_ service.ImportService = (*MockImportService)(nil)
	_ service.ReportService = (*MockReportService)(nil)
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	SubmitFunc    func(ctx context.Context, filePath, fileType string, requestedBy int) (*models.Job, error)
	ProcessFunc   func(ctx context.Context, job *models.Job) error
	StatusFunc    func(ctx context.Context, id string) (*models.JobStatusResponse, error)
	SubmittedJobs []*models.Job
	ProcessedJobs []*models.Job
}

func NewMockImportService() *MockImportService {
	return &MockImportService{
		SubmittedJobs: make([]*models.Job, 0),
		ProcessedJobs: make([]*models.Job, 0),
	}
}

func (m *MockImportService) SubmitImport(ctx context.Context, filePath, fileType string, requestedBy int) (*models.Job, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, filePath, fileType, requestedBy)
	}
	job := &models.Job{
		ID:          "test-job-id",
		State:       models.JobStateQueued,
		FilePath:    filePath,
		FileType:    fileType,
		RequestedBy: requestedBy,
	}
	m.SubmittedJobs = append(m.SubmittedJobs, job)
	return job, nil
}

func (m *MockImportService) ProcessImport(ctx context.Context, job *models.Job) error {
	m.ProcessedJobs = append(m.ProcessedJobs, job)
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, job)
	}
	return nil
}

func (m *MockImportService) GetStatus(ctx context.Context, id string) (*models.JobStatusResponse, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, id)
	}
	return nil, nil
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	CSVFunc       func(ctx context.Context, w io.Writer, filter models.ProductFilter) error
	XLSXFunc      func(ctx context.Context, w io.Writer, filter models.ProductFilter) error
	CSVCalls      int
	XLSXCalls     int
	TemplateCalls int
	LastFilter    models.ProductFilter
}

func NewMockReportService() *MockReportService {
	return &MockReportService{}
}

func (m *MockReportService) StreamProductsCSV(ctx context.Context, w io.Writer, filter models.ProductFilter) error {
	m.CSVCalls++
	m.LastFilter = filter
	if m.CSVFunc != nil {
		return m.CSVFunc(ctx, w, filter)
	}
	_, err := w.Write([]byte("Product ID,Product Name\n"))
	return err
}

func (m *MockReportService) StreamProductsXLSX(ctx context.Context, w io.Writer, filter models.ProductFilter) error {
	m.XLSXCalls++
	m.LastFilter = filter
	if m.XLSXFunc != nil {
		return m.XLSXFunc(ctx, w, filter)
	}
	return nil
}

func (m *MockReportService) WriteTemplateCSV(w io.Writer) error {
	m.TemplateCalls++
	_, err := w.Write([]byte("name,price,category_id\n"))
	return err
}

func (m *MockReportService) WriteTemplateXLSX(w io.Writer) error {
	m.TemplateCalls++
	return nil
}
