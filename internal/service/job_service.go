package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/catalog-admin-api/internal/config"
	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/rs/zerolog"
)

// jobService polls for queued jobs and dispatches them to a bounded
// worker pool. The default pool size is one, which keeps job execution
// strictly FIFO; larger pools still guarantee per-job exclusivity
// through the atomic claim.
type jobService struct {
	jobRepo       repository.JobRepository
	importService ImportService
	cfg           *config.Config
	log           zerolog.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	running       bool
	mu            sync.Mutex
	// Semaphore: buffered channel bounding concurrent job execution
	sem chan struct{}
}

// newJobService creates a new JobService
func newJobService(jobRepo repository.JobRepository, cfg *config.Config, log zerolog.Logger) *jobService {
	workers := cfg.Import.WorkerCount
	if workers < 1 {
		workers = 1
	}

	log.Info().Int("workers", workers).Msg("Initializing import job worker pool")

	return &jobService{
		jobRepo: jobRepo,
		cfg:     cfg,
		log:     log.With().Str("service", "job").Logger(),
		sem:     make(chan struct{}, workers),
	}
}

// SetImportService sets the import service for job processing
func (s *jobService) SetImportService(importService ImportService) {
	s.importService = importService
}

// StartProcessor starts the background job processor and the retention
// sweep. Blocks until the context is cancelled or StopProcessor runs.
func (s *jobService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Msg("Job processor started")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	sweep := time.NewTicker(10 * time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
			s.processQueuedJobs()
		case <-sweep.C:
			s.evictExpiredJobs()
		}
	}
}

// StopProcessor stops the background job processor
func (s *jobService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

// processQueuedJobs claims and dispatches all currently queued jobs
func (s *jobService) processQueuedJobs() {
	jobs, err := s.jobRepo.GetQueued(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get queued jobs")
		return
	}

	for _, job := range jobs {
		// Acquire a worker slot; blocks when the pool is saturated.
		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			return
		}

		claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
		if err != nil || !claimed {
			<-s.sem
			continue // another worker already owns this job
		}

		s.wg.Add(1)
		go func(j *models.Job) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("job_id", j.ID).
						Msg("Job processing panicked - recovered")
					s.jobRepo.Fail(context.Background(), j.ID, fmt.Sprintf("internal error: %v", r))
				}
			}()

			s.runJob(j)
		}(job)
	}
}

// runJob executes a single claimed job under the configured timeout
func (s *jobService) runJob(job *models.Job) {
	job.State = models.JobStateActive
	s.log.Info().Str("job_id", job.ID).Msg("Processing import job")

	ctx := s.ctx
	if s.cfg.Import.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Import.JobTimeout)
		defer cancel()
	}

	if s.importService == nil {
		return
	}
	if err := s.importService.ProcessImport(ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import processing failed")
	}
}

// evictExpiredJobs deletes terminal jobs older than the retention window
func (s *jobService) evictExpiredJobs() {
	if s.cfg.Import.JobRetention <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.cfg.Import.JobRetention)
	deleted, err := s.jobRepo.DeleteTerminalBefore(s.ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("Job retention sweep failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Time("cutoff", cutoff).Msg("Evicted expired jobs")
	}
}
