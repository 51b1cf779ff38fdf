// Package http exposes the patch engine over a REST + SSE surface.
//
// PRINCIPLES:
// - SRP: Transport only; every operation delegates to the patchbay façade
// - DIP: The snapshot store and logger arrive as interfaces
// - KISS: chi routing, plain handlers, sentinel-to-status mapping in one place
package http

import (
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/patchbay/patchbay/internal/app/usecases"
	"github.com/patchbay/patchbay/internal/core/catalog"
	"github.com/patchbay/patchbay/internal/core/graph"
	"github.com/patchbay/patchbay/internal/core/snapshot"
	"github.com/patchbay/patchbay/internal/logging"
	"github.com/patchbay/patchbay/pkg/patchbay"
	"github.com/patchbay/patchbay/pkg/validation"
)

// Server serves one shared Patch over HTTP
type Server struct {
	patch *patchbay.Patch
	store patchbay.Store
	hub   *EventHub
	log   *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithStore enables the /snapshots endpoints against the given store
func WithStore(store patchbay.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithLogger supplies the request and handler logger
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithHub supplies the SSE event hub. Pass the same hub registered on the
// patch as its refresh notifier so /events carries refresh signals.
func WithHub(hub *EventHub) Option {
	return func(s *Server) { s.hub = hub }
}

// NewServer creates a server over the given patch. Without WithStore the
// snapshot routes are not mounted.
func NewServer(patch *patchbay.Patch, opts ...Option) *Server {
	s := &Server{patch: patch}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}
	if s.hub == nil {
		s.hub = NewEventHub()
	}
	return s
}

// Hub returns the server's event hub
func (s *Server) Hub() *EventHub {
	return s.hub
}

// Router builds the chi handler tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "patchbay server is running. See /healthz, /types, /nodes, /debug/vars")
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/types", s.handleTypes)
	r.Get("/events", s.handleEvents)
	r.Get("/metrics", promMetricsHandler)

	r.Route("/debug", func(r chi.Router) {
		r.Handle("/vars", expvar.Handler())
		r.Get("/pprof/", pprof.Index)
		r.Get("/pprof/cmdline", pprof.Cmdline)
		r.Get("/pprof/profile", pprof.Profile)
		r.Get("/pprof/symbol", pprof.Symbol)
		r.Get("/pprof/trace", pprof.Trace)
		r.Get("/pprof/{name}", func(w http.ResponseWriter, req *http.Request) {
			pprof.Handler(chi.URLParam(req, "name")).ServeHTTP(w, req)
		})
	})

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.handleListNodes)
		r.Post("/", s.handleAddNode)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetNode)
			r.Delete("/", s.handleRemoveNode)
			r.Put("/control", s.handleSetControl)
			r.Put("/inspect", s.handleInspect)
		})
	})

	r.Route("/edges", func(r chi.Router) {
		r.Get("/", s.handleListEdges)
		r.Post("/", s.handleConnect)
		r.Delete("/{id}", s.handleDisconnect)
	})

	r.Post("/evaluate", s.handleEvaluate)

	r.Route("/drag", func(r chi.Router) {
		r.Get("/", s.handleDragState)
		r.Post("/begin", s.handleDragBegin)
		r.Post("/drop", s.handleDragDrop)
		r.Post("/canvas", s.handleDragCanvas)
		r.Post("/choose", s.handleDragChoose)
		r.Post("/cancel", s.handleDragCancel)
	})

	if s.store != nil {
		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/", s.handleSaveSnapshot)
			r.Get("/{id}", s.handleGetSnapshot)
			r.Delete("/{id}", s.handleDeleteSnapshot)
			r.Post("/{id}/restore", s.handleRestoreSnapshot)
		})
	}

	return enableCORS(r)
}

// requestLogger tags each request with a short id and logs it on completion
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()[:8]
		start := time.Now()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		ww.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(ww, r)

		s.log.Debug("request",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration", time.Since(start),
		)
	})
}

// statusWriter records the response status and forwards Flush so SSE
// streaming keeps working behind the middleware.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusFor maps engine sentinels to HTTP statuses: missing things are 404,
// rejected operations are 409, malformed requests are 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, graph.ErrPortNotFound),
		errors.Is(err, graph.ErrEdgeNotFound),
		errors.Is(err, catalog.ErrTypeNotFound),
		errors.Is(err, snapshot.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrDirectionMismatch),
		errors.Is(err, graph.ErrSameNode),
		errors.Is(err, usecases.ErrDragInProgress),
		errors.Is(err, usecases.ErrNotDragging),
		errors.Is(err, usecases.ErrNoSuggestion),
		errors.Is(err, usecases.ErrIncompatibleType):
		return http.StatusConflict
	case errors.Is(err, snapshot.ErrInvalidSnapshotName),
		errors.Is(err, snapshot.ErrInvalidLimit),
		errors.Is(err, snapshot.ErrInvalidOffset),
		errors.Is(err, snapshot.ErrInvalidTimeRange):
		return http.StatusBadRequest
	}

	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	} else {
		s.log.Debug("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode parses and validates a JSON request body. On failure it writes
// the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	if err := validation.ValidateStruct(v); err != nil {
		s.writeError(w, err)
		return false
	}
	return true
}

// urlID parses the {id} route parameter as an int32 handle
func urlID(r *http.Request) (int32, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return int32(v), nil
}
