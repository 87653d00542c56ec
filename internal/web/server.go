// Package web provides the HTTP server and handlers for bulk order upload,
// shopping list editing, quote notes, tips and the masquerade dashboard.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/bulkorder/internal/config"
	"github.com/JonMunkholm/bulkorder/internal/core"
	webmw "github.com/JonMunkholm/bulkorder/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server.
type Server struct {
	service *core.Service
	tips    *core.TipCenter
	tokens  webmw.TokenVerifier
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer wires routes and middleware. tips should be the same center
// the service notifies; nil gets a private one. tokens may be nil, in which
// case bearer tokens are ignored and only X-Sales-Rep-ID identifies a rep.
func NewServer(service *core.Service, tips *core.TipCenter, tokens webmw.TokenVerifier, cfg *config.Config) *Server {
	if tips == nil {
		tips = core.NewTipCenter(cfg.Tips.AutoHide)
	}
	s := &Server{
		service: service,
		tips:    tips,
		tokens:  tokens,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := webmw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, 0)
		s.router.Use(limiter.Handler)
	}

	s.router.Use(webmw.Identity(s.tokens))
	s.router.Use(webmw.Logger)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(webmw.APIKeyAuth(&s.cfg.Security))

		r.Get("/dashboard/cards", s.handleDashboardCards)

		r.Route("/api", func(r chi.Router) {
			r.Route("/uploads", func(r chi.Router) {
				r.Post("/", s.handleOpenSession)
				r.Get("/status", s.handleUploadStatus)
				r.Get("/history", s.handleUploadHistory)
				r.Get("/targets", s.handleListTargets)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", s.handleGetSession)
					r.Delete("/", s.handleCloseSession)
					r.With(s.uploadRateLimit()).Post("/file", s.handleUploadFile)
					r.Get("/wait", s.handleWaitSession)
					r.Post("/reset", s.handleResetSession)
					r.Post("/confirm", s.handleConfirmUpload)
					r.Get("/report", s.handleUploadReport)
				})
			})

			r.Route("/shopping-lists/{listID}/items", func(r chi.Router) {
				r.Get("/", s.handleListItems)
				r.Put("/{itemID}", s.handleUpdateItem)
				r.Patch("/{itemID}/quantity", s.handleUpdateItemQuantity)
				r.Delete("/{itemID}", s.handleDeleteItem)
			})

			r.Get("/quote", s.handleGetQuote)
			r.Get("/quote/note", s.handleGetQuoteNote)
			r.Put("/quote/note", s.handleSetQuoteNote)

			r.Get("/companies", s.handleListCompanies)
			r.Post("/masquerade/{companyID}", s.handleStartMasquerade)
			r.Delete("/masquerade", s.handleEndMasquerade)

			r.Get("/tips", s.handleListTips)
			r.Delete("/tips/{tipID}", s.handleDismissTip)
		})
	})
}

// uploadRateLimit is the stricter per-IP limit on file uploads.
func (s *Server) uploadRateLimit() func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled || s.cfg.Rate.UploadLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return webmw.NewRateLimiter(s.cfg.Rate.UploadLimit, 0).Handler
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
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

// securityHeaders sets the standard hardening headers; CSP is optional.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self'")
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status. Encoding errors are only
// logged because the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
