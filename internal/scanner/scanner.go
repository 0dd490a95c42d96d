// Package scanner walks the Plex libraries and promotes media to available:
// movies per quality tier, shows per season. Demotion is left to the
// availability sync.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/metrics"
	"github.com/vmunix/mediarr/internal/resolver"
	"github.com/vmunix/mediarr/internal/tmdb"
)

// ErrAborted is returned by Run when the scan was cancelled or replaced by
// a newer session.
var ErrAborted = errors.New("library scan aborted")

const (
	defaultPageSize    = 50
	defaultConcurrency = 4
	// recentBuffer is subtracted from the last scan time so items Plex
	// indexed while the previous scan was running are not missed.
	recentBuffer = 10 * time.Minute
)

// AvailabilityHandler runs the request cascades of a tier that the scanner
// changed. Implemented by the request service.
//
//go:generate mockgen -destination=mocks/scanner_mock.go -package=mocks . AvailabilityHandler,AnimeSyncer
type AvailabilityHandler interface {
	MediaAvailable(ctx context.Context, mediaID int64, tier media.Tier, previous media.Status, newlyAvailable []int) error
}

// AnimeSyncer refreshes the anime mapping table. Called when an enabled
// library uses the Hama agent.
type AnimeSyncer interface {
	Sync(ctx context.Context) error
}

// Settings is what a scan reads from the configuration.
type Settings struct {
	Libraries     []config.PlexLibrary
	Enable4KMovie bool
	Enable4KTV    bool
}

// Scanner scans the enabled Plex libraries. A full scanner pages through
// every item; a recent scanner only looks at items added since its last run.
type Scanner struct {
	store     *media.Store
	newReader func(token string) plex.LibraryReader
	resolver  *resolver.Resolver
	tmdb      tmdb.API
	anime     AnimeSyncer
	handler   AvailabilityHandler
	settings  func() Settings
	events    events.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger

	recentOnly  bool
	pageSize    int
	concurrency int
	now         func() time.Time

	running atomic.Bool
	session atomic.Value // string

	mu       sync.Mutex
	lastScan map[string]time.Time

	locks sync.Map // tmdb key -> *sync.Mutex
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithPublisher sets where status change events go.
func WithPublisher(p events.Publisher) Option {
	return func(s *Scanner) { s.events = p }
}

// WithAnimeList enables the anime list refresh for Hama libraries.
func WithAnimeList(a AnimeSyncer) Option {
	return func(s *Scanner) { s.anime = a }
}

// WithAvailabilityHandler sets who is told about tiers that became available.
func WithAvailabilityHandler(h AvailabilityHandler) Option {
	return func(s *Scanner) { s.handler = h }
}

// WithRecentOnly makes the scanner look at recently added items only.
func WithRecentOnly() Option {
	return func(s *Scanner) { s.recentOnly = true }
}

// WithPageSize sets the library page size of a full scan.
func WithPageSize(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithConcurrency bounds how many items of a page are processed at once.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner. newReader builds a Plex client authenticated as the
// admin account.
func New(store *media.Store, newReader func(token string) plex.LibraryReader, res *resolver.Resolver, tmdbClient tmdb.API, settings func() Settings, opts ...Option) *Scanner {
	s := &Scanner{
		store:       store,
		newReader:   newReader,
		resolver:    res,
		tmdb:        tmdbClient,
		settings:    settings,
		log:         slog.Default(),
		pageSize:    defaultPageSize,
		concurrency: defaultConcurrency,
		now:         time.Now,
		lastScan:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	name := "plex_full_scan"
	if s.recentOnly {
		name = "plex_recent_scan"
	}
	s.log = s.log.With("component", "scanner", "scanner", name)
	s.metrics = metrics.OrNop(s.metrics)
	s.session.Store("")
	return s
}

// Running reports whether a scan is in progress.
func (s *Scanner) Running() bool {
	return s.running.Load()
}

// Session returns the id of the current or last scan.
func (s *Scanner) Session() string {
	return s.session.Load().(string)
}

// Cancel stops the running scan before its next page or item.
func (s *Scanner) Cancel() {
	s.session.Store("")
}

// LastScan returns when a library was last scanned by this scanner.
func (s *Scanner) LastScan(libraryID string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan[libraryID]
}

// Run scans every enabled library once. A second call while a scan runs is
// a no-op.
func (s *Scanner) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug("scan already running")
		return nil
	}
	defer s.running.Store(false)

	session := uuid.NewString()
	s.session.Store(session)
	log := s.log.With("session", session)

	admin, err := s.store.AdminUser()
	if err != nil || admin.PlexToken == "" {
		log.Warn("no admin plex token, scan skipped", "error", err)
		return nil
	}

	settings := s.settings()
	sc := &scan{
		Scanner:  s,
		session:  session,
		settings: settings,
		reader:   s.newReader(admin.PlexToken),
		log:      log,
	}
	sc.resolver = s.resolver.WithPlex(sc.reader)

	libraries := enabled(settings.Libraries)
	if s.anime != nil && sc.hasHama(ctx, libraries) {
		if err := s.anime.Sync(ctx); err != nil {
			log.Warn("anime list sync failed", "error", err)
		}
	}

	start := s.now()
	for _, lib := range libraries {
		if err := sc.library(ctx, lib); err != nil {
			if errors.Is(err, ErrAborted) {
				log.Warn("scan aborted", "library", lib.Name)
			} else {
				log.Error("scan interrupted", "library", lib.Name, "error", err)
			}
			return err
		}
	}
	log.Info("scan complete", "libraries", len(libraries), "duration", time.Since(start))
	return nil
}

func enabled(libs []config.PlexLibrary) []config.PlexLibrary {
	var out []config.PlexLibrary
	for _, l := range libs {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

// lock serializes processing of one title, so two library items that
// resolve to the same media row don't race on its creation.
func (s *Scanner) lock(typ media.Type, tmdbID int64) func() {
	v, _ := s.locks.LoadOrStore(fmt.Sprintf("%s:%d", typ, tmdbID), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Scanner) publish(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}
