package availability

import (
	"context"
	"errors"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	"github.com/vmunix/mediarr/internal/adapters/radarr"
	"github.com/vmunix/mediarr/internal/adapters/sonarr"
	"github.com/vmunix/mediarr/internal/media"
)

// existence is the per-tier verdict for one media row or season.
type existence map[media.Tier]bool

func (e existence) none() bool {
	return !e[media.Standard] && !e[media.FourK]
}

func (p *pass) checkMovie(ctx context.Context, m *media.Media) error {
	exists := existence{}
	for _, t := range media.Tiers {
		exists[t] = p.inPlex(ctx, m, t) || p.movieHasFile(ctx, m, t)
	}
	return p.reconcile(ctx, m, exists)
}

func (p *pass) checkShow(ctx context.Context, m *media.Media) error {
	exists := existence{}
	for _, t := range media.Tiers {
		exists[t] = p.inPlex(ctx, m, t) || p.seriesHasFiles(ctx, m, t)
	}
	if err := p.reconcile(ctx, m, exists); err != nil {
		return err
	}
	return p.checkSeasons(ctx, m, exists)
}

// reconcile demotes every available tier that exists nowhere. When neither
// tier exists the row is treated as gone; otherwise the missing tier alone
// is demoted so a lost 4K copy never touches the standard one.
func (p *pass) reconcile(ctx context.Context, m *media.Media, exists existence) error {
	if exists.none() {
		p.log.Info("media missing from every source", "media_id", m.ID, "tmdb_id", m.TMDBID, "type", m.Type)
	}
	var errs []error
	for _, t := range media.Tiers {
		if exists[t] || !m.StatusFor(t).IsAvailable() {
			continue
		}
		kind := demoteTier
		if !exists[t.Other()] {
			kind = demoteMedia
		}
		if err := p.demote(ctx, m, t, kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// inPlex reports whether the tier's rating key still resolves. Lookup
// failures count as absent.
func (p *pass) inPlex(ctx context.Context, m *media.Media, t media.Tier) bool {
	rk := m.Fields(t).RatingKey
	if rk == nil || *rk == "" {
		return false
	}
	ok, err := p.plex.ItemExists(ctx, *rk)
	if err != nil {
		p.log.Debug("plex lookup failed", "media_id", m.ID, "rating_key", *rk, "tier", t, "error", err)
		return false
	}
	return ok
}

// movieHasFile asks every sync-enabled Radarr of the tier. Tracked is not
// enough, the movie must have its file.
func (p *pass) movieHasFile(ctx context.Context, m *media.Media, t media.Tier) bool {
	ext := m.Fields(t).ExternalServiceID
	if ext == nil {
		return false
	}
	for _, inst := range p.radarr {
		if inst.Is4K != t.Is4K() {
			continue
		}
		movie, err := inst.api.GetMovie(ctx, *ext)
		if err != nil {
			logLookup(p, "radarr", inst.Name, m, err, radarr.ErrNotFound)
			continue
		}
		if movie.HasFile {
			return true
		}
	}
	return false
}

// series returns the Sonarr view of a show from one instance, through the
// pass cache.
func (p *pass) series(ctx context.Context, inst sonarrInstance, m *media.Media, id int64) (*sonarr.Series, bool) {
	if s, ok := p.cache.series(inst.ID, id); ok {
		return s, true
	}
	s, err := inst.api.GetSeries(ctx, id)
	if err != nil {
		logLookup(p, "sonarr", inst.Name, m, err, sonarr.ErrNotFound)
		return nil, false
	}
	p.cache.setSeries(inst.ID, id, s)
	return s, true
}

func (p *pass) seriesHasFiles(ctx context.Context, m *media.Media, t media.Tier) bool {
	ext := m.Fields(t).ExternalServiceID
	if ext == nil {
		return false
	}
	for _, inst := range p.sonarr {
		if inst.Is4K != t.Is4K() {
			continue
		}
		if s, ok := p.series(ctx, inst, m, *ext); ok && s.EpisodeFileCount > 0 {
			return true
		}
	}
	return false
}

// checkSeasons re-verifies each available season of a show per tier. A
// season can only exist in a tier the show still exists in.
func (p *pass) checkSeasons(ctx context.Context, m *media.Media, show existence) error {
	seasons, err := p.store.ListSeasons(m.ID)
	if err != nil {
		return err
	}
	var errs []error
	for _, season := range seasons {
		for _, t := range media.Tiers {
			if !season.StatusFor(t).IsAvailable() {
				continue
			}
			if show[t] && (p.seasonInPlex(ctx, m, t, season.SeasonNumber) || p.seasonHasFiles(ctx, m, t, season.SeasonNumber)) {
				continue
			}
			if err := p.demoteSeason(ctx, m, season, t); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (p *pass) seasonInPlex(ctx context.Context, m *media.Media, t media.Tier, number int) bool {
	rk := m.Fields(t).RatingKey
	if rk == nil || *rk == "" {
		return false
	}
	children, ok := p.cache.children(*rk)
	if !ok {
		var err error
		children, err = p.plex.Children(ctx, *rk)
		if err != nil {
			p.log.Debug("plex season listing failed", "media_id", m.ID, "rating_key", *rk, "error", err)
			return false
		}
		p.cache.setChildren(*rk, children)
	}
	return hasChild(children, number)
}

func hasChild(children []plex.Metadata, index int) bool {
	for _, c := range children {
		if c.Index == index {
			return true
		}
	}
	return false
}

func (p *pass) seasonHasFiles(ctx context.Context, m *media.Media, t media.Tier, number int) bool {
	ext := m.Fields(t).ExternalServiceID
	if ext == nil {
		return false
	}
	for _, inst := range p.sonarr {
		if inst.Is4K != t.Is4K() {
			continue
		}
		s, ok := p.series(ctx, inst, m, *ext)
		if !ok {
			continue
		}
		if st, found := s.Season(number); found && st.EpisodeFileCount > 0 {
			return true
		}
	}
	return false
}

// logLookup logs a failed download manager lookup. Both not-found and
// transport errors only mean "this instance says no".
func logLookup(p *pass, service, instance string, m *media.Media, err, notFound error) {
	if errors.Is(err, notFound) {
		p.log.Debug(service+" item not found", "instance", instance, "media_id", m.ID, "tmdb_id", m.TMDBID)
		return
	}
	p.log.Debug(service+" lookup failed", "instance", instance, "media_id", m.ID, "tmdb_id", m.TMDBID, "error", err)
}
