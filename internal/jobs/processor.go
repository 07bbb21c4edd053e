package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arvindnk/dataforge/internal/cache"
	"github.com/arvindnk/dataforge/internal/store"
	"github.com/arvindnk/dataforge/pkg/models"
)

const completedMessage = "Processing finished successfully."

// JobStore is the slice of the store the processor needs. The processor
// always goes back to the pool for its own connections; it never shares
// a session with the request that scheduled it.
type JobStore interface {
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	LatestJobForDataset(ctx context.Context, datasetID int64) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id int64, status string, opts ...store.JobUpdateOption) error
}

// Processor advances jobs through PENDING -> RUNNING -> terminal.
type Processor struct {
	store    JobStore
	cache    cache.Cache
	cacheTTL time.Duration

	// workFn performs the processing step. The default simulates work
	// with a fixed delay; tests swap it out.
	workFn func() error
}

// NewProcessor creates a Processor. delay simulates the processing step;
// cacheTTL bounds how long finished jobs are kept in the cache.
func NewProcessor(s JobStore, c cache.Cache, delay, cacheTTL time.Duration) *Processor {
	return &Processor{
		store:    s,
		cache:    c,
		cacheTTL: cacheTTL,
		// Deliberately not cancellable: in-flight work has no
		// cancellation or timeout contract.
		workFn: func() error {
			time.Sleep(delay)
			return nil
		},
	}
}

// ProcessDataset runs the detached processing step for a dataset. It
// loads the most recent job for the dataset, marks it RUNNING (committed
// immediately so pollers can observe it), performs the work, and commits
// a terminal state. A processing failure is recorded into the job's
// message and swallowed; it never propagates to any client. There is no
// retry and no timeout: if the process dies between the RUNNING commit
// and the terminal commit, the job stays RUNNING forever.
func (p *Processor) ProcessDataset(ctx context.Context, datasetID int64) error {
	job, err := p.store.LatestJobForDataset(ctx, datasetID)
	if err != nil {
		return fmt.Errorf("load job for dataset %d: %w", datasetID, err)
	}

	if err := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning); err != nil {
		return fmt.Errorf("mark job %d running: %w", job.ID, err)
	}

	if err := p.workFn(); err != nil {
		msg := fmt.Sprintf("Processing failed: %s", err)
		if err := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed, store.WithMessage(msg)); err != nil {
			return fmt.Errorf("mark job %d failed: %w", job.ID, err)
		}
		slog.Warn("dataset processing failed", "job_id", job.ID, "dataset_id", datasetID, "error", err)
		p.cacheTerminal(ctx, job.ID)
		return nil
	}

	if err := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted, store.WithMessage(completedMessage)); err != nil {
		return fmt.Errorf("mark job %d completed: %w", job.ID, err)
	}
	slog.Info("dataset processing completed", "job_id", job.ID, "dataset_id", datasetID)
	p.cacheTerminal(ctx, job.ID)
	return nil
}

// cacheTerminal mirrors the finished job into the cache, best effort.
func (p *Processor) cacheTerminal(ctx context.Context, jobID int64) {
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		slog.Warn("reload finished job for cache", "job_id", jobID, "error", err)
		return
	}
	if err := p.cache.SetTerminalJob(ctx, job, p.cacheTTL); err != nil {
		slog.Warn("cache finished job", "job_id", jobID, "error", err)
	}
}
