package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/arvindnk/dataforge/internal/api/response"
	"github.com/arvindnk/dataforge/internal/store"
	"github.com/arvindnk/dataforge/pkg/models"
)

// JobTracker defines the interface the job handlers depend on.
type JobTracker interface {
	CreateJob(ctx context.Context, datasetID int64) (*models.Job, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
}

// NewCreateJobHandler returns an http.HandlerFunc for
// POST /api/v1/jobs/dataset/{dataset_id}. The response carries the
// PENDING job; processing happens after the response is written.
func NewCreateJobHandler(tracker JobTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		datasetID, err := parseID(r, "dataset_id")
		if err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "dataset_id must be an integer")
			return
		}

		job, err := tracker.CreateJob(r.Context(), datasetID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response.Created(w, job)
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{job_id}.
func NewGetJobHandler(tracker JobTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "job_id")
		if err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "job_id must be an integer")
			return
		}

		job, err := tracker.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "Job not found")
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response.JSON(w, job)
	}
}
