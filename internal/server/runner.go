// Package server wires the store, adapters, background jobs and HTTP API
// into one running process.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	"github.com/vmunix/mediarr/internal/adapters/radarr"
	"github.com/vmunix/mediarr/internal/adapters/sonarr"
	"github.com/vmunix/mediarr/internal/animelist"
	v1 "github.com/vmunix/mediarr/internal/api/v1"
	"github.com/vmunix/mediarr/internal/availability"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/handlers"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/metrics"
	"github.com/vmunix/mediarr/internal/requests"
	"github.com/vmunix/mediarr/internal/resolver"
	"github.com/vmunix/mediarr/internal/scanner"
	"github.com/vmunix/mediarr/internal/scheduler"
	"github.com/vmunix/mediarr/internal/tmdb"
)

// Job ids as exposed by the jobs API.
const (
	JobAvailabilitySync = "availability-sync"
	JobPlexFullScan     = "plex-full-scan"
	JobPlexRecentScan   = "plex-recent-scan"
	JobAnimeListRefresh = "anime-list-refresh"
	JobEventLogPrune    = "event-log-prune"
)

const (
	eventRetention  = 30 * 24 * time.Hour
	shutdownTimeout = 30 * time.Second
)

// Runner manages the long-lived components.
type Runner struct {
	db       *sql.DB
	config   *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	listening chan net.Addr
}

// NewRunner creates a new runner. The config is read once; restart the
// process to pick up edits.
func NewRunner(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		db:        db,
		config:    cfg,
		logger:    logger,
		registry:  prometheus.NewRegistry(),
		listening: make(chan net.Addr, 1),
	}
}

// Listening delivers the bound HTTP address once the server accepts
// connections.
func (r *Runner) Listening() <-chan net.Addr {
	return r.listening
}

// app holds everything Run starts and stops.
type app struct {
	bus       *events.Bus
	eventLog  *events.EventLog
	store     *media.Store
	requests  *requests.Service
	scheduler *scheduler.Scheduler
	handlers  []handlers.Handler
	api       *v1.Server
}

func (r *Runner) build() (*app, error) {
	cfg := r.config
	m := metrics.New(r.registry)

	eventLog := events.NewEventLog(r.db)
	bus := events.NewBus(eventLog, r.logger.With("component", "bus"))
	bus.OnDrop(func(eventType string) {
		m.EventsDropped.WithLabelValues(eventType).Inc()
	})

	store := media.NewStore(r.db)
	settings := cfg.Snapshot

	tmdbClient := tmdb.NewClient(cfg.TMDB.APIKey, tmdb.WithCacheTTL(cfg.TMDB.CacheTTL))
	newRadarr := func(in config.RadarrConfig) radarr.API {
		return radarr.New(in, r.logger)
	}
	newSonarr := func(in config.SonarrConfig) sonarr.API {
		return sonarr.New(in, r.logger)
	}
	plexClient := plex.New(cfg.Plex.URL, "",
		plex.WithTimeout(cfg.Plex.Timeout),
		plex.WithLogger(r.logger.With("component", "plex")),
	)
	newMediaServer := func(token string) plex.MediaServer { return plexClient.WithToken(token) }
	newReader := func(token string) plex.LibraryReader { return plexClient.WithToken(token) }

	anime := animelist.New(cfg.AnimeList.URL, cfg.AnimeList.Path,
		animelist.WithRefreshInterval(cfg.AnimeList.RefreshInterval),
		animelist.WithLogger(r.logger.With("component", "animelist")),
	)
	res := resolver.New(tmdbClient, anime, r.logger.With("component", "resolver"))

	svc := requests.NewService(store, tmdbClient, settings, bus,
		requests.WithLogger(r.logger),
		requests.WithMetrics(m),
		requests.WithRadarrFactory(newRadarr),
		requests.WithSonarrFactory(newSonarr),
	)

	sync := availability.New(store, settings, newMediaServer,
		availability.WithLogger(r.logger),
		availability.WithMetrics(m),
		availability.WithPublisher(bus),
		availability.WithRadarrFactory(newRadarr),
		availability.WithSonarrFactory(newSonarr),
	)

	scanSettings := func() scanner.Settings {
		return scanner.Settings{
			Libraries:     cfg.Plex.Libraries,
			Enable4KMovie: cfg.Features.Enable4KMovie,
			Enable4KTV:    cfg.Features.Enable4KTV,
		}
	}
	scanOpts := []scanner.Option{
		scanner.WithLogger(r.logger),
		scanner.WithMetrics(m),
		scanner.WithPublisher(bus),
		scanner.WithAnimeList(anime),
		scanner.WithAvailabilityHandler(svc),
	}
	fullScan := scanner.New(store, newReader, res, tmdbClient, scanSettings, scanOpts...)
	recentScan := scanner.New(store, newReader, res, tmdbClient, scanSettings,
		append(scanOpts, scanner.WithRecentOnly())...)

	sched := scheduler.New(
		scheduler.WithLogger(r.logger),
		scheduler.WithPublisher(bus),
	)
	specs := []scheduler.Spec{
		{ID: JobAvailabilitySync, Name: "Media Availability Sync", Schedule: cfg.Jobs.AvailabilitySync, Job: sync, Aborted: availability.ErrAborted},
		{ID: JobPlexFullScan, Name: "Plex Full Library Scan", Schedule: cfg.Jobs.PlexFullScan, Job: fullScan, Aborted: scanner.ErrAborted},
		{ID: JobPlexRecentScan, Name: "Plex Recently Added Scan", Schedule: cfg.Jobs.PlexRecentScan, Job: recentScan, Aborted: scanner.ErrAborted},
		{ID: JobAnimeListRefresh, Name: "Anime List Refresh", Schedule: cfg.Jobs.AnimeListRefresh, Job: scheduler.NewFunc(anime.Sync)},
		{ID: JobEventLogPrune, Name: "Event Log Prune", Schedule: "30 4 * * *", Job: scheduler.NewFunc(r.pruneEvents(eventLog))},
	}
	for _, spec := range specs {
		if err := sched.Register(spec); err != nil {
			return nil, fmt.Errorf("register job %s: %w", spec.ID, err)
		}
	}

	api, err := v1.New(v1.ServerDeps{
		Store:     store,
		Requests:  svc,
		Jobs:      sched,
		EventLog:  eventLog,
		Metrics:   m,
		Settings:  settings,
		NewRadarr: newRadarr,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}

	var hs []handlers.Handler
	if wh := cfg.Notifications.Webhook; wh != nil && wh.URL != "" {
		hs = append(hs, handlers.NewWebhookHandler(bus, handlers.WebhookConfig{
			URL:     wh.URL,
			Retries: wh.Retries,
		}, r.logger.With("component", "webhook")))
	}

	return &app{
		bus:       bus,
		eventLog:  eventLog,
		store:     store,
		requests:  svc,
		scheduler: sched,
		handlers:  hs,
		api:       api,
	}, nil
}

func (r *Runner) pruneEvents(l *events.EventLog) func(context.Context) error {
	return func(context.Context) error {
		n, err := l.Prune(time.Now().Add(-eventRetention))
		if err != nil {
			return err
		}
		r.logger.Info("pruned event log", "deleted", n)
		return nil
	}
}

// Run starts all components.
// It blocks until the context is canceled or a component fails.
func (r *Runner) Run(ctx context.Context) error {
	a, err := r.build()
	if err != nil {
		return err
	}
	defer a.bus.Close()

	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           a.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	if len(a.handlers) > 0 {
		g.Go(func() error {
			return handlers.RunAll(ctx, r.logger, a.handlers...)
		})
	}

	a.scheduler.Start()

	g.Go(func() error {
		r.logger.Info("server starting",
			"addr", ln.Addr().String(),
			"database", r.config.Database.Path,
			"radarr", len(r.config.Radarr),
			"sonarr", len(r.config.Sonarr),
			"plex_libraries", len(r.config.Plex.Libraries),
		)
		r.listening <- ln.Addr()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("http shutdown", "error", err)
		}
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			r.logger.Error("scheduler shutdown", "error", err)
		}
		a.requests.Wait()
		r.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
