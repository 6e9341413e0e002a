// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "bursary-portal/internal/common/errors"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/dashboard"
	"bursary-portal/internal/wizard/controller"
	stepcompletion "bursary-portal/internal/wizard/step-completion"
	"bursary-portal/pkg/catalog"
)

type ctxKey struct{}

// Server exposes wizard sessions over HTTP.
type Server struct {
	config    *Config
	sessions  *controller.Manager
	dashboard *dashboard.Client
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	catalog   *catalog.Catalog
	ready     func(ctx context.Context) error
}

func New(config *Config, sessions *controller.Manager, dash *dashboard.Client, log logger.Logger) *Server {
	if config == nil {
		config = LoadConfig(nil)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "http"})
	return &Server{
		config:    config,
		sessions:  sessions,
		dashboard: dash,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
		catalog:   stepcompletion.Catalog(config.MaxDocumentBytes, time.Now().UTC().Format("2006-01-02")),
	}
}

// WithReadiness installs the check behind /ready.
func (s *Server) WithReadiness(check func(ctx context.Context) error) *Server {
	s.ready = check
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/catalog", s.handleCatalog)

	r.With(middleware.Timeout(s.config.RequestTimeout)).Post("/sessions", s.handleCreateSession)

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.withSession)

		// Submission runs to completion: no request deadline applies.
		r.Post("/submit", s.handleSubmit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.config.RequestTimeout))

			r.Get("/", s.handleView)
			r.Put("/fields/{field}", s.handleChange)
			r.Post("/fields/{field}/blur", s.handleBlur)
			r.Post("/next", s.handleNext)
			r.Post("/back", s.handleBack)
			r.Post("/steps/{step}", s.handleGoTo)

			r.Post("/subjects", s.handleAddSubject)
			r.Put("/subjects/{index}", s.handleUpdateSubject)
			r.Delete("/subjects/{index}", s.handleDeleteSubject)

			r.Post("/previous-educations", s.handleAddPreviousEducation)
			r.Put("/previous-educations/{index}", s.handleUpdatePreviousEducation)
			r.Delete("/previous-educations/{index}", s.handleRemovePreviousEducation)

			r.Put("/documents/{type}", s.handleAttachDocument)
			r.Delete("/documents/{type}", s.handleDetachDocument)
			r.Post("/additional-documents", s.handleAddAdditionalDocument)
			r.Delete("/additional-documents/{index}", s.handleRemoveAdditionalDocument)

			r.Post("/clear", s.handleClear)
			r.Post("/login", s.handleLogin)
			r.Get("/dashboard", s.handleDashboard)
		})
	})

	return r
}

// withSession resolves {id} and saves a bearer token when one is sent.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wiz, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.errors.HandleHTTPError(w, r, err)
			return
		}
		if token := bearerToken(r); token != "" {
			if err := wiz.Draft().SetToken(r.Context(), token); err != nil {
				s.errors.HandleHTTPError(w, r, err)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, wiz)))
	})
}

func wizardFrom(r *http.Request) *controller.Wizard {
	return r.Context().Value(ctxKey{}).(*controller.Wizard)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	wiz := s.sessions.Create(r.Context())
	if token := bearerToken(r); token != "" {
		_ = wiz.Draft().SetToken(r.Context(), token)
	}
	s.logger.Info("session created", map[string]interface{}{"sessionId": wiz.ID()})
	writeJSON(w, http.StatusCreated, wiz.View())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wizardFrom(r).View())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
