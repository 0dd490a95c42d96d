package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vmunix/mediarr/internal/media"
)

// UserHeader carries the id of the acting user. Authentication happens in
// front of this API.
const UserHeader = "X-Mediarr-User"

type actorKey struct{}

// actor returns the user set by actorMiddleware.
func actor(r *http.Request) *media.User {
	u, _ := r.Context().Value(actorKey{}).(*media.User)
	return u
}

// actorMiddleware resolves the acting user or answers 401.
func (s *Server) actorMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserHeader)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", UserHeader+" header required")
				return
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid user id")
				return
			}
			u, err := s.deps.Store.GetUser(id)
			if errors.Is(err, media.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "unknown user")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, u)))
		})
	}
}

// requireAdmin wraps a handler and returns 403 unless the actor is an admin.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if u := actor(r); u == nil || !u.HasAny(media.PermissionAdmin) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "admin permission required")
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logMiddleware logs every request with a generated request id.
func (s *Server) logMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			s.log.Debug("http request",
				"id", uuid.NewString(),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}
