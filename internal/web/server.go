// Package web exposes the reconciliation service as a JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/pricematch/internal/config"
	"github.com/JonMunkholm/pricematch/internal/service"
	mw "github.com/JonMunkholm/pricematch/internal/web/middleware"
)

// Server is the HTTP server for the reconciliation API.
type Server struct {
	service *service.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server over svc.
func NewServer(svc *service.Service, cfg *config.Config) *Server {
	s := &Server{
		service: svc,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Matching runs are bounded by the service's own run timeout.
		r.Post("/match", s.handleRunMatching)

		r.Group(func(r chi.Router) {
			if t := s.cfg.Server.RequestTimeout; t > 0 {
				r.Use(middleware.Timeout(t))
			}

			// Catalog
			r.Get("/master-items", s.handleListCatalog)
			r.Get("/master-items/search", s.handleSearchCatalog)
			r.Post("/master-items/import", s.handleImportCatalog)

			// Supplier price lists
			r.Post("/upload", s.handleUpload)

			// Review
			r.Get("/results", s.handleResults)
			r.Post("/manual-match/{recordID}", s.handleManualMatch)

			r.Get("/export", s.handleExport)
		})
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.writeTimeout(),
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// writeTimeout must outlast a matching run, which writes its response last.
func (s *Server) writeTimeout() time.Duration {
	return max(s.cfg.Server.WriteTimeout, s.cfg.Matching.Timeout+5*time.Second)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
