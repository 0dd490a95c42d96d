// Package resolver maps Plex library items to catalog ids (TMDB, TVDB, IMDb)
// across the Plex, legacy and Hama metadata agents.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	"github.com/vmunix/mediarr/internal/animelist"
	"github.com/vmunix/mediarr/internal/tmdb"
)

// ErrUnresolvable is returned when no TMDB id can be found for an item.
var ErrUnresolvable = errors.New("unable to find TMDB ID")

const guidCacheTTL = 6 * time.Hour

const plexAgentPrefix = "plex://"

var (
	imdbRegexp      = regexp.MustCompile(`imdb://(tt[0-9]+)`)
	tmdbRegexp      = regexp.MustCompile(`tmdb://([0-9]+)`)
	tvdbRegexp      = regexp.MustCompile(`tvdb://([0-9]+)`)
	tmdbShowRegexp  = regexp.MustCompile(`themoviedb://([0-9]+)`)
	hamaTVDBRegexp  = regexp.MustCompile(`hama://tvdb[0-9]?-([0-9]+)`)
	hamaAniDBRegexp = regexp.MustCompile(`hama://anidb[0-9]?-([0-9]+)`)
)

// IDs is the resolved identity of a library item. Zero values mean unknown.
type IDs struct {
	TMDBID int64
	TVDBID int64
	IMDBID string
	// IsHama marks items matched by the Hama agent, which get anime-specific
	// movie and specials handling in the scanner.
	IsHama bool
}

// MetadataFetcher loads an item's full metadata when the listing carried no
// GUID list.
type MetadataFetcher interface {
	Metadata(ctx context.Context, ratingKey string) (*plex.Metadata, error)
}

// Resolver resolves items to catalog ids.
type Resolver struct {
	tmdb   tmdb.API
	anime  animelist.Mapper
	plex   MetadataFetcher
	guids  *cache.Cache
	logger *slog.Logger
}

// New creates a Resolver. The GUID cache is shared by every copy returned
// from WithPlex.
func New(tmdbClient tmdb.API, anime animelist.Mapper, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		tmdb:   tmdbClient,
		anime:  anime,
		guids:  cache.New(guidCacheTTL, time.Hour),
		logger: logger.With("component", "resolver"),
	}
}

// WithPlex returns a copy that fetches missing metadata through f.
func (r *Resolver) WithPlex(f MetadataFetcher) *Resolver {
	cp := *r
	cp.plex = f
	return &cp
}

// Resolve returns the catalog ids of item. The first agent pattern that
// matches item.GUID wins.
func (r *Resolver) Resolve(ctx context.Context, item plex.Metadata) (IDs, error) {
	var (
		ids IDs
		err error
	)
	guid := item.GUID

	switch {
	case strings.HasPrefix(guid, plexAgentPrefix):
		ids, err = r.resolvePlexAgent(ctx, item)
	case imdbRegexp.MatchString(guid):
		ids.IMDBID = imdbRegexp.FindStringSubmatch(guid)[1]
		ids.TMDBID, err = r.tmdbFromIMDb(ctx, ids.IMDBID)
	case tmdbRegexp.MatchString(guid):
		ids.TMDBID = parseID(tmdbRegexp, guid)
	case tvdbRegexp.MatchString(guid):
		ids.TVDBID = parseID(tvdbRegexp, guid)
		ids.TMDBID, err = r.tmdbShowFromTVDB(ctx, ids.TVDBID)
	case tmdbShowRegexp.MatchString(guid):
		ids.TMDBID = parseID(tmdbShowRegexp, guid)
	case hamaTVDBRegexp.MatchString(guid):
		ids.TVDBID = parseID(hamaTVDBRegexp, guid)
		ids.IsHama = true
		ids.TMDBID, err = r.tmdbShowFromTVDB(ctx, ids.TVDBID)
	case hamaAniDBRegexp.MatchString(guid):
		ids, err = r.resolveAniDB(ctx, item, parseID(hamaAniDBRegexp, guid))
	}
	if err != nil {
		return IDs{}, err
	}
	if ids.TMDBID == 0 {
		return IDs{}, fmt.Errorf("%s (guid %q): %w", item.Title, guid, ErrUnresolvable)
	}
	return ids, nil
}

func (r *Resolver) resolvePlexAgent(ctx context.Context, item plex.Metadata) (IDs, error) {
	if cached, ok := r.guids.Get(item.RatingKey); ok {
		r.logger.Debug("guids cached, skipping metadata request", "title", item.Title)
		return cached.(IDs), nil
	}

	guids := item.Guids
	if len(guids) == 0 {
		if r.plex == nil {
			return IDs{}, fmt.Errorf("%s: no guid metadata: %w", item.Title, ErrUnresolvable)
		}
		full, err := r.plex.Metadata(ctx, item.RatingKey)
		if err != nil {
			return IDs{}, fmt.Errorf("fetch metadata %s: %w", item.RatingKey, err)
		}
		guids = full.Guids
	}
	if len(guids) == 0 {
		return IDs{}, fmt.Errorf("%s: no guid metadata, refresh the item in plex: %w", item.Title, ErrUnresolvable)
	}

	var ids IDs
	for _, g := range guids {
		switch {
		case imdbRegexp.MatchString(g.ID):
			ids.IMDBID = imdbRegexp.FindStringSubmatch(g.ID)[1]
		case tmdbRegexp.MatchString(g.ID):
			ids.TMDBID = parseID(tmdbRegexp, g.ID)
		case tvdbRegexp.MatchString(g.ID):
			ids.TVDBID = parseID(tvdbRegexp, g.ID)
		}
	}
	if ids.IMDBID != "" && ids.TMDBID == 0 {
		id, err := r.tmdbFromIMDb(ctx, ids.IMDBID)
		if err != nil {
			return IDs{}, err
		}
		ids.TMDBID = id
	}
	if ids.TMDBID == 0 && ids.TVDBID != 0 {
		id, err := r.tmdbShowFromTVDB(ctx, ids.TVDBID)
		if err != nil {
			return IDs{}, err
		}
		ids.TMDBID = id
	}

	r.guids.SetDefault(item.RatingKey, ids)
	return ids, nil
}

func (r *Resolver) resolveAniDB(ctx context.Context, item plex.Metadata, anidbID int64) (IDs, error) {
	if r.anime == nil || !r.anime.Loaded() {
		r.logger.Warn("hama id detected but the anime list is not loaded", "guid", item.GUID, "title", item.Title)
		return IDs{}, nil
	}

	ids := IDs{IsHama: true}
	entry, ok := r.anime.ByAniDBID(anidbID)
	if !ok {
		return ids, nil
	}

	if entry.TVDBID != 0 {
		found, err := r.tmdb.FindByTVDB(ctx, entry.TVDBID)
		if err != nil && !errors.Is(err, tmdb.ErrNotFound) {
			return IDs{}, fmt.Errorf("find tvdb %d: %w", entry.TVDBID, err)
		}
		if found != nil && found.FirstTV() != 0 {
			show, err := r.tmdb.GetTV(ctx, found.FirstTV())
			if err != nil {
				return IDs{}, fmt.Errorf("get tv %d: %w", found.FirstTV(), err)
			}
			ids.TVDBID = entry.TVDBID
			ids.TMDBID = show.ID
			return ids, nil
		}
		r.logger.Info("tvdb entry missing in tmdb", "tvdb_id", entry.TVDBID, "anidb_id", anidbID)
	}

	// Some series carry an imdb id too, so the movie fallback runs second.
	switch {
	case entry.TMDBID != 0:
		ids.TMDBID = entry.TMDBID
		ids.IMDBID = entry.IMDBID
	case entry.IMDBID != "":
		id, err := r.tmdbFromIMDb(ctx, entry.IMDBID)
		if err != nil {
			return IDs{}, err
		}
		ids.TMDBID = id
		ids.IMDBID = entry.IMDBID
	}
	return ids, nil
}

// ResolveSpecial returns the movie TMDB id that a Hama specials episode
// stands for, or 0 when the episode is not mapped.
func (r *Resolver) ResolveSpecial(ctx context.Context, tvdbID int64, episode int) (int64, error) {
	if r.anime == nil {
		return 0, nil
	}
	special, ok := r.anime.SpecialEpisode(tvdbID, episode)
	if !ok {
		return 0, nil
	}
	if special.TMDBID != 0 {
		return special.TMDBID, nil
	}
	if special.IMDBID != "" {
		return r.tmdbFromIMDb(ctx, special.IMDBID)
	}
	return 0, nil
}

func (r *Resolver) tmdbFromIMDb(ctx context.Context, imdbID string) (int64, error) {
	found, err := r.tmdb.FindByIMDb(ctx, imdbID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("find imdb %s: %w", imdbID, err)
	}
	if id := found.FirstMovie(); id != 0 {
		return id, nil
	}
	return found.FirstTV(), nil
}

func (r *Resolver) tmdbShowFromTVDB(ctx context.Context, tvdbID int64) (int64, error) {
	found, err := r.tmdb.FindByTVDB(ctx, tvdbID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("find tvdb %d: %w", tvdbID, err)
	}
	return found.FirstTV(), nil
}

func parseID(re *regexp.Regexp, s string) int64 {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	id, _ := strconv.ParseInt(m[1], 10, 64)
	return id
}
