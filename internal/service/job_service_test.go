package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/catalog-admin-api/internal/mocks"
	"github.com/catalog-admin-api/internal/models"
)

func TestJobClaim_OnlyOneWinner(t *testing.T) {
	jobRepo := mocks.NewMockJobRepository()
	ctx := context.Background()

	job := &models.Job{
		ID:        "claim-test",
		State:     models.JobStateQueued,
		FilePath:  "/tmp/x.csv",
		FileType:  ".csv",
		CreatedAt: time.Now(),
	}
	jobRepo.Create(ctx, job)

	first, err := jobRepo.Claim(ctx, job.ID)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if !first {
		t.Fatal("First claim should win")
	}

	second, err := jobRepo.Claim(ctx, job.ID)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if second {
		t.Error("Second claim should lose")
	}

	stored, _ := jobRepo.GetByID(ctx, job.ID)
	if stored.State != models.JobStateActive {
		t.Errorf("Claimed job should be active, got %s", stored.State)
	}
	if stored.StartedAt == nil {
		t.Error("Claimed job should record a start time")
	}
}

func TestJobTransitions_TerminalStatesAreFinal(t *testing.T) {
	jobRepo := mocks.NewMockJobRepository()
	ctx := context.Background()

	job := &models.Job{ID: "final-test", State: models.JobStateQueued, CreatedAt: time.Now()}
	jobRepo.Create(ctx, job)
	jobRepo.Claim(ctx, job.ID)
	jobRepo.Complete(ctx, job.ID, 10, 10, 0)

	// Terminal jobs ignore further transitions
	jobRepo.Fail(ctx, job.ID, "should be ignored")
	jobRepo.UpdateProgress(ctx, job.ID, 10)

	stored, _ := jobRepo.GetByID(ctx, job.ID)
	if stored.State != models.JobStateCompleted {
		t.Errorf("Completed job should stay completed, got %s", stored.State)
	}
	if stored.FailureReason != "" {
		t.Errorf("Completed job should have no failure reason, got %q", stored.FailureReason)
	}
	if stored.Progress != 100 {
		t.Errorf("Completed job progress should stay 100, got %f", stored.Progress)
	}
}

func TestJobProgress_NeverDecreases(t *testing.T) {
	jobRepo := mocks.NewMockJobRepository()
	ctx := context.Background()

	job := &models.Job{ID: "progress-test", State: models.JobStateQueued, CreatedAt: time.Now()}
	jobRepo.Create(ctx, job)
	jobRepo.Claim(ctx, job.ID)

	jobRepo.UpdateProgress(ctx, job.ID, 40)
	jobRepo.UpdateProgress(ctx, job.ID, 20)

	stored, _ := jobRepo.GetByID(ctx, job.ID)
	if stored.Progress != 40 {
		t.Errorf("Progress should not decrease, got %f", stored.Progress)
	}
}

func TestJobRetention_DeletesOldTerminalJobs(t *testing.T) {
	jobRepo := mocks.NewMockJobRepository()
	ctx := context.Background()

	old := &models.Job{ID: "old-job", State: models.JobStateQueued, CreatedAt: time.Now().Add(-48 * time.Hour)}
	jobRepo.Create(ctx, old)
	jobRepo.Claim(ctx, old.ID)
	jobRepo.Complete(ctx, old.ID, 1, 1, 0)
	// Force completion time into the past
	past := time.Now().Add(-25 * time.Hour)
	jobRepo.Jobs[old.ID].CompletedAt = &past

	fresh := &models.Job{ID: "fresh-job", State: models.JobStateQueued, CreatedAt: time.Now()}
	jobRepo.Create(ctx, fresh)
	jobRepo.Claim(ctx, fresh.ID)
	jobRepo.Complete(ctx, fresh.ID, 1, 1, 0)

	pending := &models.Job{ID: "pending-job", State: models.JobStateQueued, CreatedAt: time.Now().Add(-48 * time.Hour)}
	jobRepo.Create(ctx, pending)

	deleted, err := jobRepo.DeleteTerminalBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteTerminalBefore failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted job, got %d", deleted)
	}

	if j, _ := jobRepo.GetByID(ctx, "old-job"); j != nil {
		t.Error("Old terminal job should be deleted")
	}
	if j, _ := jobRepo.GetByID(ctx, "fresh-job"); j == nil {
		t.Error("Recent terminal job should survive")
	}
	if j, _ := jobRepo.GetByID(ctx, "pending-job"); j == nil {
		t.Error("Queued job should survive regardless of age")
	}
}

func TestJobProcessor_PicksUpQueuedJob(t *testing.T) {
	h := newTestHarness(t)
	h.categoryRepo.Create(context.Background(), &models.Category{ID: 1, Name: "Tools"})

	path := h.writeUpload(t, "processor.csv", "name,price,category_id\nA,1.00,1\n")

	job, err := h.services.Import.SubmitImport(context.Background(), path, ".csv", 1)
	if err != nil {
		t.Fatalf("SubmitImport failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.services.Job.StartProcessor(ctx)
		close(done)
	}()

	// Poll until the job reaches a terminal state or we give up
	deadline := time.After(10 * time.Second)
	for {
		stored, _ := h.jobRepo.GetByID(context.Background(), job.ID)
		if stored != nil && stored.State.Terminal() {
			if stored.State != models.JobStateCompleted {
				t.Errorf("Expected completed, got %s (%s)", stored.State, stored.FailureReason)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("Job was never processed")
		case <-time.After(100 * time.Millisecond):
		}
	}

	h.services.Job.StopProcessor()
	cancel()
	<-done
}
