// Package handler holds the HTTP handlers. Each handler depends on a
// narrow interface declared here, so tests can swap in fakes without
// touching the real services.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arvindnk/dataforge/internal/api/response"
	"github.com/arvindnk/dataforge/internal/auth"
)

// Authenticator defines the interface the auth handlers depend on.
type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// NewRegisterHandler returns an http.HandlerFunc for POST /api/v1/auth/register.
func NewRegisterHandler(svc Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "Invalid JSON body")
			return
		}
		if req.Username == "" {
			response.Error(w, http.StatusUnprocessableEntity, "username is required")
			return
		}
		if req.Password == "" {
			response.Error(w, http.StatusUnprocessableEntity, "password is required")
			return
		}

		if err := svc.Register(r.Context(), req.Username, req.Password); err != nil {
			if errors.Is(err, auth.ErrUsernameTaken) {
				response.Error(w, http.StatusConflict, "Username already registered")
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response.Message(w, http.StatusCreated, "User registered successfully")
	}
}

// NewLoginHandler returns an http.HandlerFunc for POST /api/v1/auth/login.
// Credentials arrive form-encoded; a successful login returns a bearer
// token.
func NewLoginHandler(svc Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "Invalid form body")
			return
		}
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if username == "" || password == "" {
			response.Error(w, http.StatusUnprocessableEntity, "username and password are required")
			return
		}

		token, err := svc.Authenticate(r.Context(), username, password)
		if err != nil {
			if errors.Is(err, auth.ErrBadCredentials) {
				response.Unauthorized(w, "Invalid username or password")
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		response.JSON(w, map[string]string{
			"access_token": token,
			"token_type":   "bearer",
		})
	}
}
