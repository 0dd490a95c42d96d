// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/requests"
	"github.com/vmunix/mediarr/internal/scheduler"
)

// Server is the v1 API server.
type Server struct {
	deps     ServerDeps
	validate *validator.Validate
	log      *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		deps:     deps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With("component", "api"),
	}, nil
}

// Handler returns the API router with middleware applied.
func (s *Server) Handler() http.Handler {
	rtr := mux.NewRouter()
	rtr.Use(s.logMiddleware())
	s.RegisterRoutes(rtr)
	return rtr
}

// RegisterRoutes registers API routes on the given router.
func (s *Server) RegisterRoutes(rtr *mux.Router) {
	if s.deps.Metrics != nil {
		rtr.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	v1 := rtr.PathPrefix("/api/v1").Subrouter()
	v1.Use(s.actorMiddleware())

	// Requests
	v1.HandleFunc("/requests", s.createRequest).Methods(http.MethodPost)
	v1.HandleFunc("/requests/{id:[0-9]+}", s.getRequest).Methods(http.MethodGet)
	v1.HandleFunc("/requests/{id:[0-9]+}", s.deleteRequest).Methods(http.MethodDelete)
	v1.HandleFunc("/requests/{id:[0-9]+}/approve", s.approveRequest).Methods(http.MethodPost)
	v1.HandleFunc("/requests/{id:[0-9]+}/decline", s.declineRequest).Methods(http.MethodPost)
	v1.HandleFunc("/requests/{id:[0-9]+}/retry", s.retryRequest).Methods(http.MethodPost)
	v1.HandleFunc("/season-requests/{id:[0-9]+}/complete", s.completeSeason).Methods(http.MethodPost)

	// Media
	v1.HandleFunc("/media/{id:[0-9]+}", s.getMedia).Methods(http.MethodGet)
	v1.HandleFunc("/media/{id:[0-9]+}/events", s.listMediaEvents).Methods(http.MethodGet)

	// Events
	v1.HandleFunc("/events", s.listEvents).Methods(http.MethodGet)

	// Jobs
	v1.HandleFunc("/jobs", s.listJobs).Methods(http.MethodGet)
	v1.HandleFunc("/jobs/{id}/run", s.requireAdmin(s.runJob)).Methods(http.MethodPost)
	v1.HandleFunc("/jobs/{id}/cancel", s.requireAdmin(s.cancelJob)).Methods(http.MethodPost)

	// Users
	v1.HandleFunc("/users/{id:[0-9]+}", s.requireAdmin(s.deleteUser)).Methods(http.MethodDelete)

	// Download managers
	v1.HandleFunc("/radarr/{id:[0-9]+}/exclusions", s.requireAdmin(s.listExclusions)).Methods(http.MethodGet)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps domain errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, requests.ErrPermission):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, requests.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, "DUPLICATE_REQUEST", err.Error())
	case errors.Is(err, requests.ErrNoSeasonsAvailable):
		writeError(w, http.StatusConflict, "NO_SEASONS_AVAILABLE", err.Error())
	case errors.Is(err, requests.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, media.ErrDuplicate):
		writeError(w, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, requests.ErrNoInstance), errors.Is(err, requests.ErrMissingTVDB):
		writeError(w, http.StatusUnprocessableEntity, "NOT_SUBMITTABLE", err.Error())
	case errors.Is(err, scheduler.ErrUnknownJob):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, scheduler.ErrJobRunning):
		writeError(w, http.StatusConflict, "JOB_RUNNING", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// pathID extracts the integer {id} route variable.
func pathID(r *http.Request) (int64, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("missing path parameter: id")
	}
	return strconv.ParseInt(idStr, 10, 64)
}
