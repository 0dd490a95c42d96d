package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/resolver"
)

// promotion is a tier whose status the scanner changed, or whose seasons
// newly became available.
type promotion struct {
	tier     media.Tier
	previous media.Status
	current  media.Status
	newly    []int
}

// libraryItem is the Plex side of a title being processed.
type libraryItem struct {
	tmdbID    int64
	tvdbID    int64
	imdbID    string
	ratingKey string
	addedAt   int64
}

// seasonCount is the number of episodes of one season found in Plex, per
// tier, against the number TMDB lists.
type seasonCount struct {
	number   int
	total    int
	standard int
	fourK    int
}

func (c seasonCount) count(t media.Tier) int {
	if t.Is4K() {
		return c.fourK
	}
	return c.standard
}

func (c seasonCount) status(t media.Tier) media.Status {
	n := c.count(t)
	switch {
	case n == 0:
		return media.StatusUnknown
	case n >= c.total:
		return media.StatusAvailable
	}
	return media.StatusPartiallyAvailable
}

// rank orders statuses by how much library truth they carry. The scanner
// only ever moves a status up.
func rank(s media.Status) int {
	switch s {
	case media.StatusAvailable:
		return 2
	case media.StatusPartiallyAvailable:
		return 1
	}
	return 0
}

// tiers returns the quality tiers an item's versions cover. Items without
// version info count as standard.
func tiers(it plex.Metadata, enable4K bool) []media.Tier {
	var out []media.Tier
	if !enable4K || len(it.Media) == 0 || it.HasStandard() {
		out = append(out, media.Standard)
	}
	if enable4K && it.Has4K() {
		out = append(out, media.FourK)
	}
	return out
}

func (sc *scan) plexMovie(ctx context.Context, it plex.Metadata) error {
	ids, err := sc.resolver.Resolve(ctx, it)
	if err != nil {
		return err
	}
	return sc.processMovie(ctx, libraryItem{
		tmdbID:    ids.TMDBID,
		imdbID:    ids.IMDBID,
		ratingKey: it.RatingKey,
		addedAt:   it.AddedAt,
	}, tiers(it, sc.settings.Enable4KMovie))
}

// processMovie marks the movie available in every tier it was found in,
// creating the media row when the library is ahead of the requests.
func (sc *scan) processMovie(ctx context.Context, item libraryItem, found []media.Tier) error {
	if len(found) == 0 {
		return nil
	}
	defer sc.lock(media.TypeMovie, item.tmdbID)()

	tx, err := sc.store.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var promos []promotion
	m, err := tx.GetMediaByTMDB(item.tmdbID, media.TypeMovie)
	switch {
	case errors.Is(err, media.ErrNotFound):
		m = &media.Media{
			Type:     media.TypeMovie,
			TMDBID:   item.tmdbID,
			Status:   media.StatusUnknown,
			Status4K: media.StatusUnknown,
		}
		if item.imdbID != "" {
			m.IMDBID = &item.imdbID
		}
		setAddedAt(m, item.addedAt)
		for _, t := range found {
			m.SetStatus(t, media.StatusAvailable)
			m.Fields(t).RatingKey = &item.ratingKey
			promos = append(promos, promotion{tier: t, previous: media.StatusUnknown, current: media.StatusAvailable})
		}
		if err := tx.AddMedia(m); err != nil {
			return err
		}
		sc.log.Info("movie added from library", "tmdb_id", item.tmdbID, "media_id", m.ID)
	case err != nil:
		return err
	default:
		dirty := false
		for _, t := range found {
			if prev := m.StatusFor(t); prev != media.StatusAvailable {
				m.SetStatus(t, media.StatusAvailable)
				promos = append(promos, promotion{tier: t, previous: prev, current: media.StatusAvailable})
				dirty = true
			}
			if f := m.Fields(t); f.RatingKey == nil || *f.RatingKey != item.ratingKey {
				f.RatingKey = &item.ratingKey
				dirty = true
			}
		}
		if m.IMDBID == nil && item.imdbID != "" {
			m.IMDBID = &item.imdbID
			dirty = true
		}
		if m.MediaAddedAt == nil && item.addedAt > 0 {
			setAddedAt(m, item.addedAt)
			dirty = true
		}
		if !dirty {
			return nil
		}
		if err := tx.UpdateMedia(m); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	sc.cascade(ctx, m, promos)
	return nil
}

func (sc *scan) plexShow(ctx context.Context, it plex.Metadata) error {
	rk := it.RatingKey
	switch {
	case it.GrandparentRatingKey != "":
		rk = it.GrandparentRatingKey
	case it.ParentRatingKey != "":
		rk = it.ParentRatingKey
	}
	show, err := sc.reader.Metadata(ctx, rk)
	if err != nil {
		return fmt.Errorf("fetch show %s: %w", rk, err)
	}
	ids, err := sc.resolver.Resolve(ctx, *show)
	if err != nil {
		return err
	}
	seasons, err := sc.reader.Children(ctx, rk)
	if err != nil {
		return fmt.Errorf("fetch seasons of %s: %w", rk, err)
	}

	// Hama maps some anime "series" onto a single movie.
	if ids.IsHama && ids.TVDBID == 0 {
		return sc.hamaMovie(ctx, *show, ids, seasons)
	}

	tv, err := sc.tmdb.GetTV(ctx, ids.TMDBID)
	if err != nil {
		return fmt.Errorf("get tv %d: %w", ids.TMDBID, err)
	}
	if ids.TVDBID == 0 {
		ids.TVDBID = tv.ExternalIDs.TVDBID
	}

	var counts []seasonCount
	for _, ts := range tv.Seasons {
		if ts.SeasonNumber == 0 {
			continue
		}
		c := seasonCount{number: ts.SeasonNumber, total: ts.EpisodeCount}
		for _, ps := range seasons {
			if ps.Index != ts.SeasonNumber {
				continue
			}
			episodes, err := sc.reader.Children(ctx, ps.RatingKey)
			if err != nil {
				return fmt.Errorf("fetch episodes of %s season %d: %w", rk, ps.Index, err)
			}
			for _, ep := range episodes {
				for _, t := range tiers(ep, sc.settings.Enable4KTV) {
					if t.Is4K() {
						c.fourK++
					} else {
						c.standard++
					}
				}
			}
		}
		counts = append(counts, c)
	}

	if ids.IsHama {
		sc.hamaSpecials(ctx, ids.TVDBID, seasons)
	}

	return sc.processShow(ctx, libraryItem{
		tmdbID:    ids.TMDBID,
		tvdbID:    ids.TVDBID,
		imdbID:    ids.IMDBID,
		ratingKey: rk,
		addedAt:   show.AddedAt,
	}, counts)
}

// hamaMovie processes a Hama series that maps to a TMDB movie. The tiers
// come from the first episode, the show itself carries no versions.
func (sc *scan) hamaMovie(ctx context.Context, show plex.Metadata, ids resolver.IDs, seasons []plex.Metadata) error {
	if len(seasons) == 0 {
		return nil
	}
	episodes, err := sc.reader.Children(ctx, seasons[0].RatingKey)
	if err != nil {
		return fmt.Errorf("fetch episodes of %s: %w", show.RatingKey, err)
	}
	if len(episodes) == 0 {
		return nil
	}
	sc.log.Debug("hama movie", "title", show.Title, "tmdb_id", ids.TMDBID)
	return sc.processMovie(ctx, libraryItem{
		tmdbID:    ids.TMDBID,
		imdbID:    ids.IMDBID,
		ratingKey: show.RatingKey,
		addedAt:   show.AddedAt,
	}, tiers(episodes[0], sc.settings.Enable4KMovie))
}

// hamaSpecials processes the specials of a Hama series that the anime list
// maps onto movies. Failures are logged per episode.
func (sc *scan) hamaSpecials(ctx context.Context, tvdbID int64, seasons []plex.Metadata) {
	for _, s := range seasons {
		if s.Index != 0 {
			continue
		}
		episodes, err := sc.reader.Children(ctx, s.RatingKey)
		if err != nil {
			sc.log.Warn("fetch specials failed", "tvdb_id", tvdbID, "error", err)
			return
		}
		for _, ep := range episodes {
			tmdbID, err := sc.resolver.ResolveSpecial(ctx, tvdbID, ep.Index)
			if err != nil {
				sc.log.Warn("resolve special failed", "tvdb_id", tvdbID, "episode", ep.Index, "error", err)
				continue
			}
			if tmdbID == 0 {
				continue
			}
			err = sc.processMovie(ctx, libraryItem{
				tmdbID:    tmdbID,
				ratingKey: ep.RatingKey,
				addedAt:   ep.AddedAt,
			}, tiers(ep, sc.settings.Enable4KMovie))
			if err != nil {
				sc.log.Warn("process special failed", "tvdb_id", tvdbID, "episode", ep.Index, "error", err)
			}
		}
	}
}

// processShow folds the per-season episode counts into the season rows and
// derives the show status of each tier from them.
func (sc *scan) processShow(ctx context.Context, item libraryItem, counts []seasonCount) error {
	defer sc.lock(media.TypeTV, item.tmdbID)()

	tx, err := sc.store.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	dirty := false
	m, err := tx.GetMediaByTMDB(item.tmdbID, media.TypeTV)
	switch {
	case errors.Is(err, media.ErrNotFound):
		m = &media.Media{
			Type:     media.TypeTV,
			TMDBID:   item.tmdbID,
			Status:   media.StatusUnknown,
			Status4K: media.StatusUnknown,
		}
		if err := tx.AddMedia(m); err != nil {
			return err
		}
		sc.log.Info("show added from library", "tmdb_id", item.tmdbID, "media_id", m.ID)
		dirty = true
	case err != nil:
		return err
	}

	existing, err := tx.ListSeasons(m.ID)
	if err != nil {
		return err
	}
	byNumber := make(map[int]*media.Season, len(existing))
	for _, s := range existing {
		byNumber[s.SeasonNumber] = s
	}

	newly := make(map[media.Tier][]int)
	seasonsChanged := false
	present := make(map[media.Tier]bool)
	for _, c := range counts {
		s, ok := byNumber[c.number]
		if !ok {
			s = &media.Season{
				MediaID:      m.ID,
				SeasonNumber: c.number,
				Status:       media.StatusUnknown,
				Status4K:     media.StatusUnknown,
			}
		}
		changed := !ok
		for _, t := range media.Tiers {
			if c.count(t) > 0 {
				present[t] = true
			}
			derived := c.status(t)
			if rank(derived) <= rank(s.StatusFor(t)) {
				continue
			}
			s.SetStatus(t, derived)
			changed = true
			if derived == media.StatusAvailable {
				newly[t] = append(newly[t], c.number)
			}
		}
		if !changed {
			continue
		}
		seasonsChanged = true
		if err := tx.UpsertSeason(s); err != nil {
			return err
		}
	}

	all, err := tx.ListSeasons(m.ID)
	if err != nil {
		return err
	}
	var promos []promotion
	for _, t := range media.Tiers {
		prev := m.StatusFor(t)
		derived := media.DeriveShowStatus(all, t)
		switch {
		case derived == media.StatusUnknown:
			// Nothing in the library; requests keep driving this tier.
		case derived != prev:
			m.SetStatus(t, derived)
			promos = append(promos, promotion{tier: t, previous: prev, current: derived, newly: newly[t]})
			dirty = true
		case len(newly[t]) > 0:
			promos = append(promos, promotion{tier: t, previous: prev, current: prev, newly: newly[t]})
		}
		if present[t] {
			if f := m.Fields(t); f.RatingKey == nil || *f.RatingKey != item.ratingKey {
				f.RatingKey = &item.ratingKey
				dirty = true
			}
		}
	}
	if m.TVDBID == nil && item.tvdbID != 0 {
		m.TVDBID = &item.tvdbID
		dirty = true
	}
	if m.IMDBID == nil && item.imdbID != "" {
		m.IMDBID = &item.imdbID
		dirty = true
	}
	if m.MediaAddedAt == nil && item.addedAt > 0 {
		setAddedAt(m, item.addedAt)
		dirty = true
	}
	if seasonsChanged {
		now := sc.now()
		m.LastSeasonChange = &now
		dirty = true
	}
	if !dirty {
		return nil
	}
	if err := tx.UpdateMedia(m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	sc.cascade(ctx, m, promos)
	return nil
}

// cascade tells the request side about every promoted tier and publishes
// the status changes.
func (sc *scan) cascade(ctx context.Context, m *media.Media, promos []promotion) {
	for _, p := range promos {
		if p.previous != p.current {
			sc.log.Info("media status changed", "media_id", m.ID, "tmdb_id", m.TMDBID,
				"tier", p.tier, "from", p.previous, "to", p.current)
			sc.publish(ctx, &events.MediaStatusChanged{
				BaseEvent: events.NewBaseEvent(events.EventMediaStatusChanged, events.EntityMedia, m.ID),
				MediaID:   m.ID,
				Is4K:      p.tier.Is4K(),
				OldStatus: string(p.previous),
				NewStatus: string(p.current),
				Reason:    "library scan",
			})
		}
		if sc.handler == nil {
			continue
		}
		if err := sc.handler.MediaAvailable(ctx, m.ID, p.tier, p.previous, p.newly); err != nil {
			sc.log.Error("availability cascade failed", "media_id", m.ID, "tier", p.tier, "error", err)
		}
	}
}

func setAddedAt(m *media.Media, unix int64) {
	if unix <= 0 {
		return
	}
	t := time.Unix(unix, 0)
	m.MediaAddedAt = &t
}
