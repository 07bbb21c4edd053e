// Package api assembles the HTTP surface: middleware stack, route table,
// and the wiring between handlers and their dependencies.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/arvindnk/dataforge/internal/api/middleware"
	"github.com/arvindnk/dataforge/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	RootHandler      http.HandlerFunc
	HealthHandler    http.HandlerFunc
	ReadinessHandler http.HandlerFunc

	RegisterHandler http.HandlerFunc
	LoginHandler    http.HandlerFunc

	CreateDatasetHandler       http.HandlerFunc
	ListDatasetsHandler        http.HandlerFunc
	GetDatasetHandler          http.HandlerFunc
	UpdateDatasetHandler       http.HandlerFunc
	DeleteDatasetHandler       http.HandlerFunc
	BatchUpdateDatasetsHandler http.HandlerFunc
	BatchDeleteDatasetsHandler http.HandlerFunc

	CreateJobHandler http.HandlerFunc
	GetJobHandler    http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/", orNotImplemented(deps.RootHandler))
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/v1/health/ready", orNotImplemented(deps.ReadinessHandler))

	r.Post("/api/v1/auth/register", orNotImplemented(deps.RegisterHandler))
	r.Post("/api/v1/auth/login", orNotImplemented(deps.LoginHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/v1/datasets/create", orNotImplemented(deps.CreateDatasetHandler))
		r.Get("/api/v1/datasets/list/all", orNotImplemented(deps.ListDatasetsHandler))
		r.Put("/api/v1/datasets/update/multiple", orNotImplemented(deps.BatchUpdateDatasetsHandler))
		r.Delete("/api/v1/datasets/delete/multiple", orNotImplemented(deps.BatchDeleteDatasetsHandler))
		r.Get("/api/v1/datasets/{dataset_id}", orNotImplemented(deps.GetDatasetHandler))
		r.Put("/api/v1/datasets/{dataset_id}", orNotImplemented(deps.UpdateDatasetHandler))
		r.Delete("/api/v1/datasets/{dataset_id}", orNotImplemented(deps.DeleteDatasetHandler))

		r.Post("/api/v1/jobs/dataset/{dataset_id}", orNotImplemented(deps.CreateJobHandler))
		r.Get("/api/v1/jobs/{job_id}", orNotImplemented(deps.GetJobHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "Endpoint not yet implemented")
	}
}
