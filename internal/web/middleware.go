package web

import (
	"context"
	"net/http"

	"github.com/bookstandapp/bookstand-web/internal/http/response"
	"github.com/bookstandapp/bookstand-web/internal/session"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// withSession resolves the session cookie once per request and stores the
// claims in the context. A missing or invalid cookie leaves the request
// anonymous; an invalid cookie is also cleared so the browser stops sending it.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.sessions.FromRequest(r)
		if err != nil {
			s.logger.Debug("Rejected session cookie", "error", err)
			s.sessions.ClearCookie(w)
			claims = nil
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFromContext returns the verified session claims, or nil when the
// request is anonymous.
func sessionFromContext(ctx context.Context) *session.Claims {
	claims, _ := ctx.Value(sessionContextKey).(*session.Claims)
	return claims
}

// requirePage redirects anonymous visitors to the sign-in page.
func (s *Server) requirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession rejects anonymous requests to the JSON endpoints. Every
// mutation is re-checked here server-side; the browser cookie alone is never
// trusted without verification.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFromContext(r.Context()) == nil {
			response.Unauthorized(w, "Sign in required", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
