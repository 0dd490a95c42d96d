// Package availability re-verifies media marked available against Plex and
// the download managers, and demotes whatever no longer holds.
//
// A pass walks every media row that is available or partially available in
// either tier, page by page. Existence per tier is the OR of the Plex rating
// key lookup and every sync-enabled download manager instance of that tier.
// The pass only ever demotes; promotion belongs to the library scanner.
package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	"github.com/vmunix/mediarr/internal/adapters/radarr"
	"github.com/vmunix/mediarr/internal/adapters/sonarr"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/metrics"
)

// ErrAborted is returned by Run when the pass was cancelled.
var ErrAborted = errors.New("availability sync aborted")

const (
	defaultPageSize    = 50
	defaultConcurrency = 4
)

// Sync is the availability reconciliation job. One pass runs at a time.
type Sync struct {
	store     *media.Store
	settings  func() config.Snapshot
	newPlex   func(token string) plex.MediaServer
	newRadarr func(config.RadarrConfig) radarr.API
	newSonarr func(config.SonarrConfig) sonarr.API
	events    events.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger

	pageSize    int
	concurrency int

	running atomic.Bool
	stop    atomic.Bool
}

// Option configures a Sync.
type Option func(*Sync)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sync) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sync) { s.metrics = m }
}

// WithPublisher sets where demotion and request removal events go.
func WithPublisher(p events.Publisher) Option {
	return func(s *Sync) { s.events = p }
}

// WithRadarrFactory overrides how Radarr clients are built for an instance.
func WithRadarrFactory(fn func(config.RadarrConfig) radarr.API) Option {
	return func(s *Sync) { s.newRadarr = fn }
}

// WithSonarrFactory overrides how Sonarr clients are built for an instance.
func WithSonarrFactory(fn func(config.SonarrConfig) sonarr.API) Option {
	return func(s *Sync) { s.newSonarr = fn }
}

// WithPageSize sets how many media rows are fetched per page.
func WithPageSize(n int) Option {
	return func(s *Sync) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithConcurrency bounds how many items of one page are checked at once.
func WithConcurrency(n int) Option {
	return func(s *Sync) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates the job. newPlex builds a Plex client authenticated as the
// admin account; settings is read once per pass.
func New(store *media.Store, settings func() config.Snapshot, newPlex func(token string) plex.MediaServer, opts ...Option) *Sync {
	s := &Sync{
		store:       store,
		settings:    settings,
		newPlex:     newPlex,
		log:         slog.Default(),
		pageSize:    defaultPageSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "availability")
	s.metrics = metrics.OrNop(s.metrics)
	if s.newRadarr == nil {
		s.newRadarr = func(c config.RadarrConfig) radarr.API { return radarr.New(c, s.log) }
	}
	if s.newSonarr == nil {
		s.newSonarr = func(c config.SonarrConfig) sonarr.API { return sonarr.New(c, s.log) }
	}
	return s
}

// Running reports whether a pass is in progress.
func (s *Sync) Running() bool {
	return s.running.Load()
}

// Cancel asks the running pass to stop before its next page or item.
func (s *Sync) Cancel() {
	if s.running.Load() {
		s.stop.Store(true)
	}
}

// Run executes one pass. A call while another pass is running returns
// immediately. Per-item failures are logged and never end the pass; a
// missing admin token skips it. Cancellation returns ErrAborted, with every
// write made so far left in place.
func (s *Sync) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug("availability sync already running")
		return nil
	}
	defer s.running.Store(false)
	s.stop.Store(false)

	start := time.Now()
	result := "ok"
	defer func() {
		s.metrics.SyncRuns.WithLabelValues(result).Inc()
		s.metrics.SyncDuration.Observe(time.Since(start).Seconds())
	}()

	admin, err := s.store.AdminUser()
	if err != nil || admin.PlexToken == "" {
		result = "skipped"
		s.log.Warn("no admin plex token, availability sync skipped", "error", err)
		return nil
	}

	p := s.newPass(admin.PlexToken)
	s.log.Info("availability sync started",
		"radarr_instances", len(p.radarr), "sonarr_instances", len(p.sonarr))

	err = p.run(ctx)
	switch {
	case errors.Is(err, ErrAborted):
		result = "aborted"
		s.log.Warn("availability sync aborted", "checked", p.checked.Load(), "duration", time.Since(start))
		return err
	case err != nil:
		result = "error"
		s.log.Error("availability sync failed", "error", err)
		return err
	}
	s.log.Info("availability sync complete", "checked", p.checked.Load(), "duration", time.Since(start))
	return nil
}

func (s *Sync) aborted(ctx context.Context) bool {
	return s.stop.Load() || ctx.Err() != nil
}

type radarrInstance struct {
	config.RadarrConfig
	api radarr.API
}

type sonarrInstance struct {
	config.SonarrConfig
	api sonarr.API
}

// pass holds the clients and caches of one run. It is discarded when the
// run ends.
type pass struct {
	*Sync
	plex    plex.MediaServer
	radarr  []radarrInstance
	sonarr  []sonarrInstance
	cache   *passCache
	checked atomic.Int64
}

func (s *Sync) newPass(token string) *pass {
	snap := s.settings()
	p := &pass{
		Sync:  s,
		plex:  s.newPlex(token),
		cache: newPassCache(),
	}
	for _, c := range snap.SyncRadarr() {
		p.radarr = append(p.radarr, radarrInstance{RadarrConfig: c, api: s.newRadarr(c)})
	}
	for _, c := range snap.SyncSonarr() {
		p.sonarr = append(p.sonarr, sonarrInstance{SonarrConfig: c, api: s.newSonarr(c)})
	}
	return p
}

// run pages through candidate rows by id. Rows demoted earlier in the pass
// drop out of later pages on their own.
func (p *pass) run(ctx context.Context) error {
	var afterID int64
	for {
		if p.aborted(ctx) {
			return ErrAborted
		}
		page, err := p.store.ListAvailableMedia(afterID, p.pageSize)
		if err != nil {
			return fmt.Errorf("list available media after %d: %w", afterID, err)
		}
		if len(page) == 0 {
			return nil
		}

		var g errgroup.Group
		g.SetLimit(p.concurrency)
		for _, m := range page {
			g.Go(func() error {
				if p.aborted(ctx) {
					return ErrAborted
				}
				p.check(ctx, m)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		afterID = page[len(page)-1].ID
	}
}

func (p *pass) check(ctx context.Context, m *media.Media) {
	p.checked.Add(1)
	var err error
	switch m.Type {
	case media.TypeMovie:
		err = p.checkMovie(ctx, m)
	case media.TypeTV:
		err = p.checkShow(ctx, m)
	default:
		err = fmt.Errorf("unknown media type %q", m.Type)
	}
	if err != nil {
		p.log.Error("availability check failed", "media_id", m.ID, "tmdb_id", m.TMDBID, "error", err)
	}
}

func (p *pass) publish(ctx context.Context, e events.Event) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(ctx, e); err != nil {
		p.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}
