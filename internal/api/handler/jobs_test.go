package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvindnk/dataforge/internal/store"
	"github.com/arvindnk/dataforge/pkg/models"
)

type fakeTracker struct {
	nextID int64
	jobs   map[int64]*models.Job
	err    error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{nextID: 1, jobs: map[int64]*models.Job{}}
}

func (f *fakeTracker) CreateJob(_ context.Context, datasetID int64) (*models.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	j := &models.Job{ID: f.nextID, DatasetID: datasetID, Status: models.JobStatusPending}
	f.jobs[j.ID] = j
	f.nextID++
	return j, nil
}

func (f *fakeTracker) GetJob(_ context.Context, id int64) (*models.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return j, nil
}

func jobRouter(tr JobTracker) chi.Router {
	r := chi.NewRouter()
	r.Post("/jobs/dataset/{dataset_id}", NewCreateJobHandler(tr))
	r.Get("/jobs/{job_id}", NewGetJobHandler(tr))
	return r
}

func TestCreateJobHandler(t *testing.T) {
	tr := newFakeTracker()
	r := jobRouter(tr)

	req := httptest.NewRequest(http.MethodPost, "/jobs/dataset/7", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, int64(7), job.DatasetID)
	assert.Equal(t, models.JobStatusPending, job.Status)
}

func TestCreateJobHandler_BadID(t *testing.T) {
	r := jobRouter(newFakeTracker())

	req := httptest.NewRequest(http.MethodPost, "/jobs/dataset/notanumber", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateJobHandler_StoreError(t *testing.T) {
	tr := newFakeTracker()
	tr.err = errors.New("pool exhausted")
	r := jobRouter(tr)

	req := httptest.NewRequest(http.MethodPost, "/jobs/dataset/7", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeDetail(t, rec))
}

func TestGetJobHandler(t *testing.T) {
	tr := newFakeTracker()
	_, err := tr.CreateJob(context.Background(), 7)
	require.NoError(t, err)
	r := jobRouter(tr)

	req := httptest.NewRequest(http.MethodGet, "/jobs/1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, int64(1), job.ID)
}

func TestGetJobHandler_NotFound(t *testing.T) {
	r := jobRouter(newFakeTracker())

	req := httptest.NewRequest(http.MethodGet, "/jobs/999", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found", decodeDetail(t, rec))
}
