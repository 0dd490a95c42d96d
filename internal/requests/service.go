// Package requests implements the request lifecycle: creation, approval,
// decline, removal and submission to the download managers, together with
// the media status cascades each transition implies.
package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/vmunix/mediarr/internal/adapters/radarr"
	"github.com/vmunix/mediarr/internal/adapters/sonarr"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/metrics"
	"github.com/vmunix/mediarr/internal/tmdb"
)

const defaultSubmitTimeout = 2 * time.Minute

// Service owns every request state change.
type Service struct {
	store    *media.Store
	tmdb     tmdb.API
	settings func() config.Snapshot
	events   events.Publisher
	metrics  *metrics.Metrics
	log      *slog.Logger

	newRadarr func(config.RadarrConfig) radarr.API
	newSonarr func(config.SonarrConfig) sonarr.API

	submitTimeout time.Duration
	inflight      sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRadarrFactory overrides how Radarr clients are built for an instance.
func WithRadarrFactory(fn func(config.RadarrConfig) radarr.API) Option {
	return func(s *Service) { s.newRadarr = fn }
}

// WithSonarrFactory overrides how Sonarr clients are built for an instance.
func WithSonarrFactory(fn func(config.SonarrConfig) sonarr.API) Option {
	return func(s *Service) { s.newSonarr = fn }
}

// WithSubmitTimeout bounds one background submission.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Service) { s.submitTimeout = d }
}

// NewService creates a request service. settings is called once per
// operation so instance edits apply to the next request.
func NewService(store *media.Store, tmdbClient tmdb.API, settings func() config.Snapshot, pub events.Publisher, opts ...Option) *Service {
	s := &Service{
		store:         store,
		tmdb:          tmdbClient,
		settings:      settings,
		events:        pub,
		log:           slog.Default(),
		submitTimeout: defaultSubmitTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "requests")
	s.metrics = metrics.OrNop(s.metrics)
	if s.newRadarr == nil {
		s.newRadarr = func(c config.RadarrConfig) radarr.API { return radarr.New(c, s.log) }
	}
	if s.newSonarr == nil {
		s.newSonarr = func(c config.SonarrConfig) sonarr.API { return sonarr.New(c, s.log) }
	}
	return s
}

// Wait blocks until background submissions have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// CreateInput describes a new request.
type CreateInput struct {
	MediaType media.Type
	TMDBID    int64
	TVDBID    *int64
	Is4K      bool
	// Seasons lists the requested seasons of a series; AllSeasons requests
	// every regular season known to TMDB instead.
	Seasons    []int
	AllSeasons bool

	ServerID          *int64
	ProfileID         *int64
	RootFolder        *string
	LanguageProfileID *int64
	Tags              []int

	// UserID files the request on behalf of another user. Requires the
	// manage requests capability.
	UserID        *int64
	IsAutoRequest bool
}

// Create files a request. The media row is created on first request and its
// tier moves to pending. Auto-approved requests are submitted right away.
func (s *Service) Create(ctx context.Context, actor *media.User, in CreateInput) (*media.Request, error) {
	tier := media.TierOf(in.Is4K)

	requester := actor
	if in.UserID != nil && *in.UserID != actor.ID {
		if !actor.HasAny(media.PermissionManageRequests) {
			return nil, fmt.Errorf("request on behalf of user %d: %w", *in.UserID, ErrPermission)
		}
		u, err := s.store.GetUser(*in.UserID)
		if err != nil {
			return nil, fmt.Errorf("get requesting user: %w", err)
		}
		requester = u
	}
	if !requester.CanRequest(in.MediaType, tier) {
		return nil, fmt.Errorf("%s %s request: %w", tier, in.MediaType, ErrPermission)
	}
	snap := s.settings()
	if in.Is4K && ((in.MediaType == media.TypeMovie && !snap.Enable4KMovie) || (in.MediaType == media.TypeTV && !snap.Enable4KTV)) {
		return nil, fmt.Errorf("4k %s requests are disabled: %w", in.MediaType, ErrPermission)
	}

	var (
		tvdbID  = in.TVDBID
		seasons []int
		show    *tmdb.TV
	)
	switch in.MediaType {
	case media.TypeMovie:
		if _, err := s.tmdb.GetMovie(ctx, in.TMDBID); err != nil {
			return nil, fmt.Errorf("get movie %d: %w", in.TMDBID, err)
		}
	case media.TypeTV:
		tv, err := s.tmdb.GetTV(ctx, in.TMDBID)
		if err != nil {
			return nil, fmt.Errorf("get tv %d: %w", in.TMDBID, err)
		}
		show = tv
		if tvdbID == nil && tv.ExternalIDs.TVDBID != 0 {
			tvdbID = &tv.ExternalIDs.TVDBID
		}
	default:
		return nil, fmt.Errorf("unknown media type %q", in.MediaType)
	}

	m, err := s.store.GetMediaByTMDB(in.TMDBID, in.MediaType)
	if err != nil && !errors.Is(err, media.ErrNotFound) {
		return nil, err
	}
	var existing []*media.Request
	if m != nil {
		if existing, err = s.store.ListRequestsForMedia(m.ID); err != nil {
			return nil, err
		}
	}

	for _, r := range existing {
		if r.Tier() != tier {
			continue
		}
		if in.MediaType == media.TypeMovie && r.Status != media.RequestDeclined {
			s.log.Warn("duplicate request for media blocked", "tmdb_id", in.TMDBID, "is_4k", in.Is4K)
			return nil, ErrDuplicateRequest
		}
		if r.IsAutoRequest && r.RequestedByID == requester.ID {
			return nil, fmt.Errorf("auto request for this media and user: %w", ErrDuplicateRequest)
		}
	}

	if in.MediaType == media.TypeTV {
		requested := in.Seasons
		if in.AllSeasons {
			requested = show.SeasonNumbers()
		}
		taken, err := s.takenSeasons(m, existing, tier)
		if err != nil {
			return nil, err
		}
		for _, n := range requested {
			if !slices.Contains(taken, n) && !slices.Contains(seasons, n) {
				seasons = append(seasons, n)
			}
		}
		if len(seasons) == 0 {
			return nil, ErrNoSeasonsAvailable
		}
	}

	autoApprove := actor.CanAutoApprove(in.MediaType, tier)
	req := &media.Request{
		Type:              in.MediaType,
		Is4K:              in.Is4K,
		Status:            media.RequestPending,
		RequestedByID:     requester.ID,
		IsAutoRequest:     in.IsAutoRequest,
		ServerID:          in.ServerID,
		ProfileID:         in.ProfileID,
		RootFolder:        in.RootFolder,
		LanguageProfileID: in.LanguageProfileID,
		Tags:              in.Tags,
	}
	if autoApprove {
		req.Status = media.RequestApproved
		req.ModifiedByID = &actor.ID
	}
	for _, n := range seasons {
		req.Seasons = append(req.Seasons, media.SeasonRequest{SeasonNumber: n})
	}

	previous := media.StatusUnknown
	if m == nil {
		m = &media.Media{Type: in.MediaType, TMDBID: in.TMDBID, TVDBID: tvdbID}
	} else {
		previous = m.StatusFor(tier)
		if m.TVDBID == nil {
			m.TVDBID = tvdbID
		}
	}
	if m.StatusFor(tier) == media.StatusUnknown || m.StatusFor(tier) == "" {
		m.SetStatus(tier, media.StatusPending)
	}

	if err := s.saveNew(m, req); err != nil {
		return nil, err
	}

	s.log.Info("request created", "request_id", req.ID, "media_id", m.ID, "type", req.Type,
		"is_4k", req.Is4K, "status", req.Status, "seasons", seasons)
	s.publish(ctx, &events.RequestCreated{
		BaseEvent: events.NewBaseEvent(events.EventRequestCreated, events.EntityRequest, req.ID),
		RequestID: req.ID,
		MediaID:   m.ID,
		MediaType: string(req.Type),
		Is4K:      req.Is4K,
		Status:    string(req.Status),
		Seasons:   seasons,
		UserID:    requester.ID,
	})
	s.publishStatusChange(ctx, m.ID, tier, previous, m.StatusFor(tier), "request created")

	if req.Status == media.RequestPending {
		s.notify(ctx, events.NotifyMediaPending, m, req, nil)
		if req.IsAutoRequest {
			s.notify(ctx, events.NotifyMediaAutoRequested, m, req, nil)
		}
		return req, nil
	}

	if err := s.applyApproval(ctx, req, &actor.ID, true); err != nil {
		return nil, err
	}
	s.submitAsync(ctx, req)
	return req, nil
}

// takenSeasons lists seasons already covered in tier: by a non-declined
// request, or by a season whose status is not unknown.
func (s *Service) takenSeasons(m *media.Media, existing []*media.Request, tier media.Tier) ([]int, error) {
	var taken []int
	for _, r := range existing {
		if r.Tier() != tier || r.Status == media.RequestDeclined {
			continue
		}
		for _, sr := range r.Seasons {
			taken = append(taken, sr.SeasonNumber)
		}
	}
	if m == nil {
		return taken, nil
	}
	known, err := s.store.ListSeasons(m.ID)
	if err != nil {
		return nil, err
	}
	for _, season := range known {
		if season.StatusFor(tier) != media.StatusUnknown {
			taken = append(taken, season.SeasonNumber)
		}
	}
	return taken, nil
}

// saveNew writes the media row and the request with its seasons in one
// transaction.
func (s *Service) saveNew(m *media.Media, req *media.Request) error {
	tx, err := s.store.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if m.ID == 0 {
		if err := tx.AddMedia(m); err != nil {
			return err
		}
	} else if err := tx.UpdateMedia(m); err != nil {
		return err
	}
	req.MediaID = m.ID
	if err := tx.AddRequest(req); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}

func (s *Service) publishStatusChange(ctx context.Context, mediaID int64, tier media.Tier, from, to media.Status, reason string) {
	if from == to {
		return
	}
	s.publish(ctx, &events.MediaStatusChanged{
		BaseEvent: events.NewBaseEvent(events.EventMediaStatusChanged, events.EntityMedia, mediaID),
		MediaID:   mediaID,
		Is4K:      tier.Is4K(),
		OldStatus: string(from),
		NewStatus: string(to),
		Reason:    reason,
	})
}

// setTierStatus writes a new tier status when it differs from the current one.
func (s *Service) setTierStatus(ctx context.Context, m *media.Media, tier media.Tier, status media.Status, reason string) error {
	previous := m.StatusFor(tier)
	if previous == status {
		return nil
	}
	m.SetStatus(tier, status)
	if err := s.store.UpdateMedia(m); err != nil {
		return fmt.Errorf("update media %d: %w", m.ID, err)
	}
	s.publishStatusChange(ctx, m.ID, tier, previous, status, reason)
	return nil
}
