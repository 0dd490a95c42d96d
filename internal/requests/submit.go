package requests

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vmunix/mediarr/internal/adapters/radarr"
	"github.com/vmunix/mediarr/internal/adapters/sonarr"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
)

// submitAsync hands an approved request to its download manager without
// blocking the caller. The submission outlives the caller's context.
func (s *Service) submitAsync(ctx context.Context, req *media.Request) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.submitTimeout)
		defer cancel()
		if err := s.submit(subCtx, req); err != nil && !errors.Is(err, ErrNoInstance) {
			s.log.Warn("background submission failed", "request_id", req.ID, "error", err)
		}
	}()
}

// submit sends an approved request to Radarr or Sonarr.
func (s *Service) submit(ctx context.Context, req *media.Request) error {
	if ok, err := s.stillApproved(req); !ok {
		return err
	}
	switch req.Type {
	case media.TypeMovie:
		return s.submitMovie(ctx, req)
	case media.TypeTV:
		return s.submitSeries(ctx, req)
	}
	return fmt.Errorf("unknown media type %q", req.Type)
}

func (s *Service) submitMovie(ctx context.Context, req *media.Request) error {
	snap := s.settings()
	inst, ok := config.SelectInstance(snap.Radarr, req.Is4K, req.ServerID)
	if !ok {
		s.log.Warn("no radarr instance for request", "request_id", req.ID, "is_4k", req.Is4K, "server_id", req.ServerID)
		return fmt.Errorf("radarr for request %d: %w", req.ID, ErrNoInstance)
	}

	m, err := s.store.GetMedia(req.MediaID)
	if err != nil {
		return err
	}
	if m.StatusFor(req.Tier()) == media.StatusAvailable {
		s.log.Info("media already available, skipping submission", "request_id", req.ID, "media_id", m.ID)
		return nil
	}

	movie, err := s.tmdb.GetMovie(ctx, m.TMDBID)
	if err != nil {
		return s.fail(ctx, req, "radarr", fmt.Errorf("get movie %d: %w", m.TMDBID, err))
	}

	opts := radarr.AddOptions{
		TMDBID:              movie.ID,
		Title:               movie.Title,
		Year:                movie.Year(),
		ProfileID:           inst.ActiveProfileID,
		RootFolder:          inst.ActiveDirectory,
		MinimumAvailability: inst.MinimumAvailability,
		Tags:                slices.Clone(inst.Tags),
		SearchNow:           !inst.PreventSearch,
	}
	applyOverrides(req, &opts.ProfileID, &opts.RootFolder, nil, &opts.Tags)

	// The metadata fetch can be slow; a decline may have landed meanwhile.
	if ok, err := s.stillApproved(req); !ok {
		return err
	}
	added, err := s.newRadarr(inst).AddMovie(ctx, opts)
	if err != nil {
		return s.fail(ctx, req, "radarr", err)
	}
	return s.succeed(ctx, req, "radarr", inst.ID, added.ID, added.TitleSlug, added.HasFile)
}

func (s *Service) submitSeries(ctx context.Context, req *media.Request) error {
	snap := s.settings()
	inst, ok := config.SelectInstance(snap.Sonarr, req.Is4K, req.ServerID)
	if !ok {
		s.log.Warn("no sonarr instance for request", "request_id", req.ID, "is_4k", req.Is4K, "server_id", req.ServerID)
		return fmt.Errorf("sonarr for request %d: %w", req.ID, ErrNoInstance)
	}

	m, err := s.store.GetMedia(req.MediaID)
	if err != nil {
		return err
	}
	if m.StatusFor(req.Tier()) == media.StatusAvailable {
		s.log.Info("media already available, skipping submission", "request_id", req.ID, "media_id", m.ID)
		return nil
	}

	show, err := s.tmdb.GetTV(ctx, m.TMDBID)
	if err != nil {
		return s.fail(ctx, req, "sonarr", fmt.Errorf("get tv %d: %w", m.TMDBID, err))
	}
	tvdbID := show.ExternalIDs.TVDBID
	if tvdbID == 0 && m.TVDBID != nil {
		tvdbID = *m.TVDBID
	}
	if tvdbID == 0 {
		return s.fail(ctx, req, "sonarr", fmt.Errorf("series tmdb %d: %w", m.TMDBID, ErrMissingTVDB))
	}

	opts := sonarr.AddOptions{
		TVDBID:            tvdbID,
		Title:             show.Name,
		SeriesType:        sonarr.SeriesTypeStandard,
		ProfileID:         inst.ActiveProfileID,
		LanguageProfileID: inst.ActiveLanguageProfileID,
		RootFolder:        inst.ActiveDirectory,
		Tags:              slices.Clone(inst.Tags),
		SeasonFolder:      inst.SeasonFolders,
		SearchNow:         !inst.PreventSearch,
	}
	if show.IsAnime() {
		opts.SeriesType = sonarr.SeriesTypeAnime
		if inst.ActiveAnimeDirectory != "" {
			opts.RootFolder = inst.ActiveAnimeDirectory
		}
		if inst.ActiveAnimeProfileID != 0 {
			opts.ProfileID = inst.ActiveAnimeProfileID
		}
		if inst.ActiveAnimeLanguageProfileID != 0 {
			opts.LanguageProfileID = inst.ActiveAnimeLanguageProfileID
		}
		opts.Tags = slices.Clone(inst.AnimeTags)
	}
	applyOverrides(req, &opts.ProfileID, &opts.RootFolder, &opts.LanguageProfileID, &opts.Tags)
	for _, sr := range req.Seasons {
		opts.Seasons = append(opts.Seasons, sr.SeasonNumber)
	}

	if ok, err := s.stillApproved(req); !ok {
		return err
	}
	added, err := s.newSonarr(inst).AddSeries(ctx, opts)
	if err != nil {
		return s.fail(ctx, req, "sonarr", err)
	}
	return s.succeed(ctx, req, "sonarr", inst.ID, added.ID, added.TitleSlug, false)
}

// stillApproved re-reads the request. Submissions run in the background, so
// the copy taken at approval time may be stale.
func (s *Service) stillApproved(req *media.Request) (bool, error) {
	cur, err := s.store.GetRequest(req.ID)
	if errors.Is(err, media.ErrNotFound) {
		s.log.Info("request removed before submission", "request_id", req.ID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reload request %d: %w", req.ID, err)
	}
	if cur.Status != media.RequestApproved {
		s.log.Info("request no longer approved, skipping submission", "request_id", req.ID, "status", cur.Status)
		return false, nil
	}
	return true, nil
}

// applyOverrides lets request-level choices win over instance defaults.
// Nil tags mean "use default"; an empty slice clears the tags.
func applyOverrides(req *media.Request, profile *int64, root *string, language *int64, tags *[]int) {
	if req.ProfileID != nil && *req.ProfileID != 0 {
		*profile = *req.ProfileID
	}
	if req.RootFolder != nil && *req.RootFolder != "" {
		*root = *req.RootFolder
	}
	if language != nil && req.LanguageProfileID != nil && *req.LanguageProfileID != 0 {
		*language = *req.LanguageProfileID
	}
	if req.Tags != nil {
		*tags = slices.Clone(req.Tags)
	}
}

// succeed records where the title now lives. The media row is re-read so
// concurrent status changes are not overwritten.
func (s *Service) succeed(ctx context.Context, req *media.Request, service string, instanceID, externalID int64, slug string, alreadyAvailable bool) error {
	if ok, err := s.stillApproved(req); !ok {
		s.log.Warn("request changed while submitting, not recording external id",
			"request_id", req.ID, "service", service, "external_id", externalID)
		return err
	}
	m, err := s.store.GetMedia(req.MediaID)
	if err != nil {
		return err
	}
	f := m.Fields(req.Tier())
	f.ServiceID = &instanceID
	f.ExternalServiceID = &externalID
	if slug != "" {
		f.ExternalServiceSlug = &slug
	}
	if err := s.store.UpdateMedia(m); err != nil {
		return fmt.Errorf("record submission of request %d: %w", req.ID, err)
	}

	s.metrics.Submissions.WithLabelValues(service, "success").Inc()
	s.log.Info("request submitted", "request_id", req.ID, "media_id", m.ID, "service", service,
		"instance_id", instanceID, "external_id", externalID)
	s.publish(ctx, &events.SubmissionSucceeded{
		BaseEvent:         events.NewBaseEvent(events.EventSubmissionSucceeded, events.EntityRequest, req.ID),
		RequestID:         req.ID,
		MediaID:           m.ID,
		Service:           service,
		ServiceID:         instanceID,
		ExternalServiceID: externalID,
		AlreadyAvailable:  alreadyAvailable,
	})
	return nil
}

// fail rolls the tier back to unknown and reports the failure. There is no
// automatic retry; Retry re-runs the submission on demand.
func (s *Service) fail(ctx context.Context, req *media.Request, service string, cause error) error {
	s.metrics.Submissions.WithLabelValues(service, "failure").Inc()
	s.log.Warn("submission failed, marking media unknown", "request_id", req.ID, "media_id", req.MediaID,
		"service", service, "error", cause)

	m, err := s.store.GetMedia(req.MediaID)
	if err != nil {
		return errors.Join(cause, err)
	}
	if err := s.setTierStatus(ctx, m, req.Tier(), media.StatusUnknown, "submission failed"); err != nil {
		return errors.Join(cause, err)
	}
	s.publish(ctx, &events.SubmissionFailed{
		BaseEvent: events.NewBaseEvent(events.EventSubmissionFailed, events.EntityRequest, req.ID),
		RequestID: req.ID,
		MediaID:   m.ID,
		Service:   service,
		Reason:    cause.Error(),
	})
	s.notify(ctx, events.NotifyMediaFailed, m, req, nil)
	return cause
}
