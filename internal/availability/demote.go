package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/metrics"
)

// Demotion kinds, also used as metric labels.
const (
	demoteMedia  = "media"
	demoteTier   = "tier"
	demoteSeason = "season"
)

// demote resets one tier of a media row to unknown, clears its external
// references and deletes the tier's requests. The row is re-read inside the
// transaction; a tier that stopped being available meanwhile is left alone.
// m is refreshed with the stored state.
func (p *pass) demote(ctx context.Context, m *media.Media, t media.Tier, kind string) error {
	tx, err := p.store.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := tx.GetMedia(m.ID)
	if err != nil {
		return fmt.Errorf("reload media %d: %w", m.ID, err)
	}
	previous := cur.StatusFor(t)
	if !previous.IsAvailable() {
		*m = *cur
		return nil
	}
	cur.SetStatus(t, media.StatusUnknown)
	cur.ClearTier(t)
	if err := tx.UpdateMedia(cur); err != nil {
		return err
	}

	reqs, err := tx.ListRequestsForMedia(cur.ID)
	if err != nil {
		return err
	}
	var removed []int64
	for _, r := range reqs {
		if r.Tier() != t {
			continue
		}
		if err := tx.DeleteRequest(r.ID); err != nil {
			return err
		}
		removed = append(removed, r.ID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit demotion of media %d: %w", cur.ID, err)
	}
	*m = *cur

	p.log.Info("media demoted", "media_id", cur.ID, "tmdb_id", cur.TMDBID, "kind", kind,
		"tier", t, "previous", previous, "requests_removed", len(removed))
	p.metrics.Demotions.WithLabelValues(kind, metrics.TierLabel(t.Is4K())).Inc()

	p.publish(ctx, &events.MediaDemoted{
		BaseEvent:       events.NewBaseEvent(events.EventMediaDemoted, events.EntityMedia, cur.ID),
		MediaID:         cur.ID,
		Kind:            kind,
		Is4K:            t.Is4K(),
		RequestsRemoved: len(removed),
	})
	for _, id := range removed {
		p.publishRemoved(ctx, id, cur.ID, t)
	}
	return nil
}

// demoteSeason resets one season tier, drops the matching season requests
// (and any request left without seasons), and marks a fully available show
// as partially available in that tier.
func (p *pass) demoteSeason(ctx context.Context, m *media.Media, season *media.Season, t media.Tier) error {
	previous := season.StatusFor(t)
	season.SetStatus(t, media.StatusUnknown)
	if err := p.store.UpdateSeason(season); err != nil {
		return err
	}
	p.log.Info("season demoted", "media_id", m.ID, "tmdb_id", m.TMDBID, "season", season.SeasonNumber,
		"tier", t, "previous", previous)
	p.metrics.Demotions.WithLabelValues(demoteSeason, metrics.TierLabel(t.Is4K())).Inc()
	p.publish(ctx, &events.SeasonDemoted{
		BaseEvent:    events.NewBaseEvent(events.EventSeasonDemoted, events.EntitySeason, season.ID),
		MediaID:      m.ID,
		SeasonNumber: season.SeasonNumber,
		Is4K:         t.Is4K(),
	})

	var errs []error
	parents, err := p.store.DeleteSeasonRequests(m.ID, season.SeasonNumber, t)
	if err != nil {
		errs = append(errs, err)
	}
	for _, id := range parents {
		if err := p.dropIfEmpty(ctx, id, m.ID, t); err != nil {
			errs = append(errs, err)
		}
	}

	cur, err := p.store.GetMedia(m.ID)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	if cur.StatusFor(t) == media.StatusAvailable {
		cur.SetStatus(t, media.StatusPartiallyAvailable)
		if err := p.store.UpdateMedia(cur); err != nil {
			return errors.Join(append(errs, err)...)
		}
		p.log.Info("show marked partially available", "media_id", cur.ID, "tmdb_id", cur.TMDBID, "tier", t)
		p.publish(ctx, &events.MediaStatusChanged{
			BaseEvent: events.NewBaseEvent(events.EventMediaStatusChanged, events.EntityMedia, cur.ID),
			MediaID:   cur.ID,
			Is4K:      t.Is4K(),
			OldStatus: string(media.StatusAvailable),
			NewStatus: string(media.StatusPartiallyAvailable),
			Reason:    "season removed",
		})
	}
	*m = *cur
	return errors.Join(errs...)
}

func (p *pass) dropIfEmpty(ctx context.Context, requestID, mediaID int64, t media.Tier) error {
	req, err := p.store.GetRequest(requestID)
	if errors.Is(err, media.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(req.Seasons) > 0 {
		return nil
	}
	if err := p.store.DeleteRequest(req.ID); err != nil && !errors.Is(err, media.ErrNotFound) {
		return err
	}
	p.publishRemoved(ctx, req.ID, mediaID, t)
	return nil
}

func (p *pass) publishRemoved(ctx context.Context, requestID, mediaID int64, t media.Tier) {
	p.publish(ctx, &events.RequestRemoved{
		BaseEvent: events.NewBaseEvent(events.EventRequestRemoved, events.EntityRequest, requestID),
		RequestID: requestID,
		MediaID:   mediaID,
		Is4K:      t.Is4K(),
		Reason:    events.RemovedByAvailability,
	})
}
