package middleware

import (
	"net/http"
	"strings"

	"github.com/arvindnk/dataforge/internal/api/response"
)

// TokenVerifier validates a bearer token and returns the identity it
// carries.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth enforces bearer-token authentication on protected routes.
type Auth struct {
	tokens TokenVerifier
}

// NewAuth creates a new Auth middleware.
func NewAuth(tokens TokenVerifier) *Auth {
	return &Auth{tokens: tokens}
}

// Authenticate verifies the Authorization header and puts the username
// into the request context. Any failure is a 401 with a Bearer
// challenge; the verified identity is not further authorized against
// the resources it touches.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			response.Unauthorized(w, "Not authenticated")
			return
		}

		username, err := a.tokens.Verify(token)
		if err != nil {
			response.Unauthorized(w, "Could not validate credentials")
			return
		}

		r = r.WithContext(SetUsername(r.Context(), username))
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
