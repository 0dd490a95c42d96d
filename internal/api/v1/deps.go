package v1

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/mediarr/internal/adapters/radarr"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/metrics"
	"github.com/vmunix/mediarr/internal/requests"
	"github.com/vmunix/mediarr/internal/scheduler"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// RequestService is the request lifecycle the API drives.
//
//go:generate mockgen -destination=mocks/deps_mock.go -package=mocks . RequestService,JobRunner
type RequestService interface {
	Create(ctx context.Context, actor *media.User, in requests.CreateInput) (*media.Request, error)
	Approve(ctx context.Context, actor *media.User, requestID int64) (*media.Request, error)
	Decline(ctx context.Context, actor *media.User, requestID int64) (*media.Request, error)
	Retry(ctx context.Context, actor *media.User, requestID int64) (*media.Request, error)
	Remove(ctx context.Context, requestID int64) error
	CompleteSeason(ctx context.Context, seasonRequestID int64) (*media.Request, error)
	DeleteUser(ctx context.Context, actor *media.User, userID int64) error
}

// JobRunner is the job registry.
type JobRunner interface {
	Jobs() []scheduler.Info
	RunNow(id string) error
	Cancel(id string) error
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Store    *media.Store
	Requests RequestService

	// Optional dependencies (nil if not configured)
	Jobs      JobRunner
	EventLog  *events.EventLog
	Metrics   *metrics.Metrics
	Settings  func() config.Snapshot
	NewRadarr func(config.RadarrConfig) radarr.API
	Logger    *slog.Logger
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Store == nil {
		return errors.New("media store is required")
	}
	if d.Requests == nil {
		return errors.New("request service is required")
	}
	return nil
}
