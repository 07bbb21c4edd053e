package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arvindnk/dataforge/internal/api/response"
	"github.com/arvindnk/dataforge/internal/store"
	"github.com/arvindnk/dataforge/pkg/models"
)

// DatasetStore defines the interface the dataset handlers depend on.
type DatasetStore interface {
	CreateDataset(ctx context.Context, in store.DatasetInput) (*models.Dataset, error)
	GetDataset(ctx context.Context, id int64) (*models.Dataset, error)
	ListDatasets(ctx context.Context, skip, limit int) ([]*models.Dataset, error)
	UpdateDataset(ctx context.Context, id int64, patch store.DatasetPatch) (*models.Dataset, error)
	DeleteDataset(ctx context.Context, id int64) error
	UpdateDatasets(ctx context.Context, patches []store.DatasetBatchPatch) ([]*models.Dataset, error)
	DeleteDatasets(ctx context.Context, ids []int64) error
}

func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// NewCreateDatasetHandler returns an http.HandlerFunc for POST /api/v1/datasets/create.
func NewCreateDatasetHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string  `json:"name"`
			Source string  `json:"source"`
			Format string  `json:"format"`
			Owner  *string `json:"owner"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "Invalid JSON body")
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusUnprocessableEntity, "name is required")
			return
		}
		if req.Source == "" {
			response.Error(w, http.StatusUnprocessableEntity, "source is required")
			return
		}
		if req.Format == "" {
			response.Error(w, http.StatusUnprocessableEntity, "format is required")
			return
		}

		ds, err := st.CreateDataset(r.Context(), store.DatasetInput{
			Name:   req.Name,
			Source: req.Source,
			Format: req.Format,
			Owner:  req.Owner,
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "Dataset name already exists")
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response.Created(w, ds)
	}
}

// NewListDatasetsHandler returns an http.HandlerFunc for GET /api/v1/datasets/list/all.
func NewListDatasetsHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip := 0
		limit := store.DefaultListLimit
		if v := r.URL.Query().Get("skip"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				response.Error(w, http.StatusUnprocessableEntity, "skip must be a non-negative integer")
				return
			}
			skip = n
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				response.Error(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
				return
			}
			limit = n
		}

		datasets, err := st.ListDatasets(r.Context(), skip, limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if datasets == nil {
			datasets = []*models.Dataset{}
		}

		response.JSON(w, datasets)
	}
}

// NewGetDatasetHandler returns an http.HandlerFunc for GET /api/v1/datasets/{dataset_id}.
func NewGetDatasetHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "dataset_id")
		if err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "dataset_id must be an integer")
			return
		}

		ds, err := st.GetDataset(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "Dataset not found")
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response.JSON(w, ds)
	}
}

// NewUpdateDatasetHandler returns an http.HandlerFunc for PUT /api/v1/datasets/{dataset_id}.
// Only fields present in the body are overwritten.
func NewUpdateDatasetHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "dataset_id")
		if err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "dataset_id must be an integer")
			return
		}

		var patch store.DatasetPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "Invalid JSON body")
			return
		}

		ds, err := st.UpdateDataset(r.Context(), id, patch)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				response.Error(w, http.StatusNotFound, "Dataset not found")
			case errors.Is(err, store.ErrDuplicateKey):
				response.Error(w, http.StatusConflict, "Dataset name already exists")
			default:
				response.Error(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		response.JSON(w, ds)
	}
}

// NewDeleteDatasetHandler returns an http.HandlerFunc for DELETE /api/v1/datasets/{dataset_id}.
func NewDeleteDatasetHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "dataset_id")
		if err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "dataset_id must be an integer")
			return
		}

		if err := st.DeleteDataset(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "Dataset not found")
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response.Message(w, http.StatusOK, "Dataset deleted successfully")
	}
}

// NewBatchUpdateDatasetsHandler returns an http.HandlerFunc for
// PUT /api/v1/datasets/update/multiple. Entries referencing unknown ids
// are dropped from the result; the rest commit as one unit.
func NewBatchUpdateDatasetsHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patches []store.DatasetBatchPatch
		if err := json.NewDecoder(r.Body).Decode(&patches); err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "Invalid JSON body")
			return
		}
		for _, p := range patches {
			if p.ID <= 0 {
				response.Error(w, http.StatusUnprocessableEntity, "each entry needs a positive id")
				return
			}
		}

		updated, err := st.UpdateDatasets(r.Context(), patches)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "Dataset name already exists")
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if updated == nil {
			updated = []*models.Dataset{}
		}

		response.JSON(w, updated)
	}
}

// NewBatchDeleteDatasetsHandler returns an http.HandlerFunc for
// DELETE /api/v1/datasets/delete/multiple?dataset_ids=1&dataset_ids=2.
// Unknown ids are silently skipped.
func NewBatchDeleteDatasetsHandler(st DatasetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query()["dataset_ids"]
		if len(raw) == 0 {
			response.Error(w, http.StatusUnprocessableEntity, "dataset_ids is required")
			return
		}

		var ids []int64
		for _, group := range raw {
			for _, part := range strings.Split(group, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := strconv.ParseInt(part, 10, 64)
				if err != nil {
					response.Error(w, http.StatusUnprocessableEntity, "dataset_ids must be integers")
					return
				}
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			response.Error(w, http.StatusUnprocessableEntity, "dataset_ids is required")
			return
		}

		if err := st.DeleteDatasets(r.Context(), ids); err != nil {
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response.Message(w, http.StatusOK, "Datasets deleted successfully")
	}
}
