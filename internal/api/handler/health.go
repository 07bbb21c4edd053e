package handler

import (
	"context"
	"net/http"

	"github.com/arvindnk/dataforge/internal/api/response"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health.
// It reports process liveness only and never touches the backends.
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, map[string]string{"status": "ok"})
	}
}

// NewReadinessHandler returns an http.HandlerFunc for GET /api/v1/health/ready.
// Readiness requires both the database and the cache to answer a ping.
func NewReadinessHandler(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "Database connection error")
			return
		}
		if err := cache.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "Cache connection error")
			return
		}
		response.JSON(w, map[string]string{"status": "ready"})
	}
}

// NewRootHandler returns an http.HandlerFunc for GET /.
func NewRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Message(w, http.StatusOK, "dataforge API is running")
	}
}
