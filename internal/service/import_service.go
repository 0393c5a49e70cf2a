package service

import (
	"context"
	"fmt"
	"time"

	"github.com/catalog-admin-api/internal/config"
	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/parser"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/catalog-admin-api/internal/storage"
	"github.com/catalog-admin-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// importService is the concrete implementation of ImportService
type importService struct {
	repos *repository.Repositories
	cfg   *config.Config
	files storage.FileStore
	log   zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, cfg *config.Config, files storage.FileStore, log zerolog.Logger) *importService {
	return &importService{
		repos: repos,
		cfg:   cfg,
		files: files,
		log:   log.With().Str("service", "import").Logger(),
	}
}

// SubmitImport creates a queued job for an uploaded file and returns
// immediately; parsing happens on the worker.
func (s *importService) SubmitImport(ctx context.Context, filePath, fileType string, requestedBy int) (*models.Job, error) {
	if !s.files.Exists(filePath) {
		return nil, fmt.Errorf("upload file not found: %s", filePath)
	}

	job := &models.Job{
		ID:          uuid.New().String(),
		State:       models.JobStateQueued,
		FilePath:    filePath,
		FileType:    fileType,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now(),
	}

	if err := s.repos.Job.Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("file", filePath).
		Str("file_type", fileType).
		Msg("Import job queued")

	return job, nil
}

// ProcessImport runs the parse -> validate -> insert pipeline for one
// claimed job. The uploaded file is removed exactly once on the
// terminal transition, success or failure.
func (s *importService) ProcessImport(ctx context.Context, job *models.Job) error {
	startTime := time.Now()
	defer func() {
		if err := s.files.Remove(job.FilePath); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Str("file", job.FilePath).Msg("Failed to remove uploaded file")
		}
	}()

	s.log.Info().
		Str("job_id", job.ID).
		Str("file_type", job.FileType).
		Msg("Starting import processing")

	rows, err := parser.ReadAll(job.FilePath, job.FileType)
	if err != nil {
		// Unsupported type or a malformed file fails the whole job
		// before any row is counted; no partial result is produced.
		reason := fmt.Sprintf("Bulk upload failed: %v", err)
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import failed")
		return s.repos.Job.Fail(ctx, job.ID, reason)
	}

	totalRows := len(rows)
	if totalRows == 0 {
		// Header-only file: nothing to process, no progress updates.
		if err := s.repos.Job.Complete(ctx, job.ID, 0, 0, 0); err != nil {
			return err
		}
		s.log.Info().Str("job_id", job.ID).Msg("Import completed with no data rows")
		return nil
	}

	validator := validation.NewProductRowValidator(s.repos.Category)
	batchSize := s.cfg.Import.BatchSize

	var processedCount, errorCount int
	var importErrors []models.ImportError

	for start := 0; start < totalRows; start += batchSize {
		select {
		case <-ctx.Done():
			reason := fmt.Sprintf("Bulk upload failed: %v", ctx.Err())
			s.log.Error().Err(ctx.Err()).Str("job_id", job.ID).Msg("Import aborted")
			return s.repos.Job.Fail(context.WithoutCancel(ctx), job.ID, reason)
		default:
		}

		end := start + batchSize
		if end > totalRows {
			end = totalRows
		}

		for _, row := range rows[start:end] {
			record, rowErr := validator.Validate(ctx, row)
			if rowErr != nil {
				importErrors = append(importErrors, models.ImportError{Row: rowErr.Row, Error: rowErr.Message})
				errorCount++
				continue
			}

			product := &models.Product{
				Name:          record.Name,
				Description:   record.Description,
				Price:         record.Price,
				Image:         record.Image,
				CategoryID:    record.CategoryID,
				StockQuantity: record.StockQuantity,
				IsActive:      true,
			}
			if err := s.repos.Product.Create(ctx, product); err != nil {
				// Storage failures stay per-row; siblings are unaffected.
				importErrors = append(importErrors, models.ImportError{Row: record.Row, Error: err.Error()})
				errorCount++
				continue
			}
			processedCount++
		}

		progress := float64(end) / float64(totalRows) * 100
		if err := s.repos.Job.UpdateProgress(ctx, job.ID, progress); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to update progress")
		}

		s.log.Debug().
			Str("job_id", job.ID).
			Int("consumed", end).
			Float64("progress", progress).
			Msg("Batch processed")
	}

	if err := s.repos.Job.AddErrors(ctx, job.ID, importErrors); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Int("count", len(importErrors)).Msg("Failed to store row errors")
	}

	if err := s.repos.Job.Complete(ctx, job.ID, totalRows, processedCount, errorCount); err != nil {
		return err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Int("total", totalRows).
		Int("processed", processedCount).
		Int("errors", errorCount).
		Dur("duration", time.Since(startTime)).
		Msg("Import completed")

	return nil
}

// GetStatus returns an idempotent snapshot of a job: state, progress
// and, for completed jobs, the result summary with the error list
// truncated to the first 50 entries.
func (s *importService) GetStatus(ctx context.Context, id string) (*models.JobStatusResponse, error) {
	job, err := s.repos.Job.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	resp := &models.JobStatusResponse{
		JobID:    job.ID,
		State:    job.State,
		Progress: job.Progress,
	}

	switch job.State {
	case models.JobStateCompleted:
		errs, err := s.repos.Job.GetErrors(ctx, id, models.MaxResultErrors)
		if err != nil {
			return nil, err
		}
		if errs == nil {
			errs = []models.ImportError{}
		}
		resp.Result = &models.ImportResult{
			TotalRows:      job.TotalRows,
			ProcessedCount: job.ProcessedCount,
			ErrorCount:     job.ErrorCount,
			Errors:         errs,
		}
	case models.JobStateFailed:
		resp.FailureReason = job.FailureReason
	}

	return resp, nil
}
