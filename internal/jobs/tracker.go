package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arvindnk/dataforge/internal/cache"
	"github.com/arvindnk/dataforge/pkg/models"
)

// TrackerStore is the slice of the store the tracker needs.
type TrackerStore interface {
	CreateJob(ctx context.Context, datasetID int64) (*models.Job, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
}

// Tracker creates jobs and schedules their processing. Each creation
// persists exactly one PENDING job and submits exactly one task for it,
// so no two workers ever race on the same job.
type Tracker struct {
	store TrackerStore
	cache cache.Cache
	pool  *Pool
	proc  *Processor
}

// NewTracker creates a Tracker.
func NewTracker(s TrackerStore, c cache.Cache, pool *Pool, proc *Processor) *Tracker {
	return &Tracker{store: s, cache: c, pool: pool, proc: proc}
}

// CreateJob persists a PENDING job for the dataset and schedules the
// detached processing task. Submit blocks under queue pressure rather
// than dropping, so every accepted creation gets exactly one worker.
// The job is returned before that worker runs; the HTTP response never
// waits on processing. Dataset existence is not checked: a dangling
// dataset_id is accepted.
func (t *Tracker) CreateJob(ctx context.Context, datasetID int64) (*models.Job, error) {
	job, err := t.store.CreateJob(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := t.pool.Submit(func(workerCtx context.Context) error {
		return t.proc.ProcessDataset(workerCtx, datasetID)
	}); err != nil {
		// Only reachable when the pool is already stopped, i.e. the
		// server is shutting down. The job stays PENDING.
		slog.Warn("schedule job processing", "job_id", job.ID, "dataset_id", datasetID, "error", err)
	}

	return job, nil
}

// GetJob returns a job, serving terminal jobs from the cache when
// possible. Terminal states are immutable, so a cache hit is always
// accurate.
func (t *Tracker) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	if job, found, err := t.cache.GetTerminalJob(ctx, id); err == nil && found {
		return job, nil
	}
	return t.store.GetJob(ctx, id)
}
