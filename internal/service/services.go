package service

import (
	"context"
	"io"

	"github.com/catalog-admin-api/internal/config"
	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/catalog-admin-api/internal/storage"
	"github.com/rs/zerolog"
)

// ImportService defines the interface for bulk product import
type ImportService interface {
	SubmitImport(ctx context.Context, filePath, fileType string, requestedBy int) (*models.Job, error)
	ProcessImport(ctx context.Context, job *models.Job) error
	GetStatus(ctx context.Context, id string) (*models.JobStatusResponse, error)
}

// JobService defines the interface for background job processing
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	SetImportService(importService ImportService)
}

// ReportService defines the interface for product report generation
type ReportService interface {
	StreamProductsCSV(ctx context.Context, w io.Writer, filter models.ProductFilter) error
	StreamProductsXLSX(ctx context.Context, w io.Writer, filter models.ProductFilter) error
	WriteTemplateCSV(w io.Writer) error
	WriteTemplateXLSX(w io.Writer) error
}

// Services holds all service interfaces
type Services struct {
	Import ImportService
	Job    JobService
	Report ReportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, files storage.FileStore, log zerolog.Logger) *Services {
	jobSvc := newJobService(repos.Job, cfg, log)
	importSvc := newImportService(repos, cfg, files, log)
	reportSvc := newReportService(repos, log)

	// Wire up job processor to the import pipeline
	jobSvc.SetImportService(importSvc)

	return &Services{
		Import: importSvc,
		Job:    jobSvc,
		Report: reportSvc,
	}
}
