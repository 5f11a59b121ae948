// Package web provides the browser-facing HTTP server: server-rendered pages
// for the storefront plus JSON action endpoints the pages call with fetch.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookstandapp/bookstand-web/internal/catalog"
	"github.com/bookstandapp/bookstand-web/internal/http/response"
	"github.com/bookstandapp/bookstand-web/internal/session"
	"github.com/bookstandapp/bookstand-web/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog   *catalog.Client
	sessions  *session.Manager
	events    Emitter
	sseStream http.Handler
	validator *validation.Validator
	templates *template.Template
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates the web server with all routes configured.
func NewServer(catalogClient *catalog.Client, sessions *session.Manager, events Emitter, sseStream http.Handler, logger *slog.Logger) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		catalog:   catalogClient,
		sessions:  sessions,
		events:    events,
		sseStream: sseStream,
		validator: validation.New(),
		templates: templates,
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/healthz", s.handleHealthCheck)

	s.router.Group(func(r chi.Router) {
		r.Use(s.withSession)

		// Sign-in (public).
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		// Pages (require a session; anonymous visitors get the login page).
		r.Group(func(r chi.Router) {
			r.Use(s.requirePage)
			r.Get("/", s.handleHome)
			r.Get("/stores", s.handleStores)
			r.Get("/stores/{storeID}", s.handleStorePage)
		})

		// JSON action endpoints the pages call with fetch.
		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
			r.Use(s.requireSession)

			r.Get("/stores/{storeID}/candidates", s.handleCandidates)
			r.Post("/inventory", s.handleCreateInventory)
			r.Patch("/inventory/{inventoryID}", s.handleUpdateInventory)
			r.Delete("/inventory/{inventoryID}", s.handleDeleteInventory)
		})

		// Inventory change stream.
		r.With(s.requireSession).Get("/events", s.sseStream.ServeHTTP)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

// render executes a page template into a buffer first so a template failure
// can still produce a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("Failed to write rendered page", "template", name, "error", err)
	}
}

// errorPageData feeds error.tmpl.
type errorPageData struct {
	Title    string
	Message  string
	UserName string
}

// renderErrorPage shows a full-page error for page (non-API) routes.
func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	data := errorPageData{Title: title, Message: message}
	if claims := sessionFromContext(r.Context()); claims != nil {
		data.UserName = claims.Name
	}
	s.render(w, status, "error.tmpl", data)
}
