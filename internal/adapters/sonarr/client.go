// Package sonarr adapts a Sonarr instance to the series acquisition and
// existence checks used by requests and the availability sync.
package sonarr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"golift.io/starr"
	sonarrapi "golift.io/starr/sonarr"

	"github.com/vmunix/mediarr/internal/config"
)

// ErrNotFound is returned when Sonarr does not track the series.
var ErrNotFound = errors.New("sonarr series not found")

// Series types understood by Sonarr.
const (
	SeriesTypeStandard = "standard"
	SeriesTypeAnime    = "anime"
)

// API is the Sonarr surface consumed by this module.
//
//go:generate mockgen -destination=mocks/sonarr_mock.go -package=mocks . API
type API interface {
	GetSeries(ctx context.Context, id int64) (*Series, error)
	LookupByTVDB(ctx context.Context, tvdbID int64) (*Series, error)
	AddSeries(ctx context.Context, opts AddOptions) (*Series, error)
}

// SeasonStats is the file count of one season as Sonarr sees it.
type SeasonStats struct {
	Number           int
	EpisodeFileCount int
}

// Series is the subset of a Sonarr series this module needs.
type Series struct {
	ID               int64
	TVDBID           int64
	Title            string
	TitleSlug        string
	EpisodeFileCount int
	Seasons          []SeasonStats
}

// Season returns the stats of one season.
func (s *Series) Season(number int) (SeasonStats, bool) {
	for _, st := range s.Seasons {
		if st.Number == number {
			return st, true
		}
	}
	return SeasonStats{}, false
}

// AddOptions describes a series to add to Sonarr.
type AddOptions struct {
	TVDBID            int64
	Title             string
	ProfileID         int64
	LanguageProfileID int64
	RootFolder        string
	SeriesType        string
	SeasonFolder      bool
	Seasons           []int
	Tags              []int
	SearchNow         bool
}

// Client wraps one configured Sonarr instance.
type Client struct {
	instance config.SonarrConfig
	api      *sonarrapi.Sonarr
	log      *slog.Logger
}

// New creates a client for a configured instance.
func New(instance config.SonarrConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := starr.New(instance.APIKey, instance.URL, 30*time.Second)
	return &Client{
		instance: instance,
		api:      sonarrapi.New(cfg),
		log:      logger.With("component", "sonarr", "instance", instance.Name),
	}
}

// Instance returns the configuration the client was built from.
func (c *Client) Instance() config.SonarrConfig { return c.instance }

func fromAPI(s *sonarrapi.Series) *Series {
	out := &Series{
		ID:        s.ID,
		TVDBID:    s.TvdbID,
		Title:     s.Title,
		TitleSlug: s.TitleSlug,
	}
	if s.Statistics != nil {
		out.EpisodeFileCount = s.Statistics.EpisodeFileCount
	}
	for _, season := range s.Seasons {
		if season == nil {
			continue
		}
		st := SeasonStats{Number: season.SeasonNumber}
		if season.Statistics != nil {
			st.EpisodeFileCount = season.Statistics.EpisodeFileCount
		}
		out.Seasons = append(out.Seasons, st)
	}
	return out
}

func isNotFound(err error) bool {
	var reqErr *starr.ReqError
	return errors.As(err, &reqErr) && reqErr.Code == http.StatusNotFound
}

// GetSeries fetches a tracked series with its per-season statistics.
func (c *Client) GetSeries(ctx context.Context, id int64) (*Series, error) {
	s, err := c.api.GetSeriesByIDContext(ctx, id)
	if isNotFound(err) {
		return nil, fmt.Errorf("get series %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get series %d: %w", id, err)
	}
	return fromAPI(s), nil
}

// LookupByTVDB finds a tracked series by TVDB id.
func (c *Client) LookupByTVDB(ctx context.Context, tvdbID int64) (*Series, error) {
	s, err := c.lookup(ctx, tvdbID)
	if err != nil {
		return nil, err
	}
	return fromAPI(s), nil
}

func (c *Client) lookup(ctx context.Context, tvdbID int64) (*sonarrapi.Series, error) {
	list, err := c.api.GetSeriesContext(ctx, tvdbID)
	if err != nil {
		return nil, fmt.Errorf("lookup tvdb %d: %w", tvdbID, err)
	}
	for _, s := range list {
		if s.TvdbID == tvdbID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("lookup tvdb %d: %w", tvdbID, ErrNotFound)
}

// AddSeries adds a series with the requested seasons monitored. When Sonarr
// already tracks it, the requested seasons are switched to monitored on the
// existing entry instead.
func (c *Client) AddSeries(ctx context.Context, opts AddOptions) (*Series, error) {
	existing, err := c.lookup(ctx, opts.TVDBID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return c.monitorSeasons(ctx, existing, opts)
	}

	seasons := make([]*sonarrapi.Season, 0, len(opts.Seasons))
	for _, n := range opts.Seasons {
		seasons = append(seasons, &sonarrapi.Season{SeasonNumber: n, Monitored: true})
	}

	added, err := c.api.AddSeriesContext(ctx, &sonarrapi.AddSeriesInput{
		TvdbID:            opts.TVDBID,
		Title:             opts.Title,
		QualityProfileID:  opts.ProfileID,
		LanguageProfileID: opts.LanguageProfileID,
		RootFolderPath:    opts.RootFolder,
		SeriesType:        opts.SeriesType,
		SeasonFolder:      opts.SeasonFolder,
		Seasons:           seasons,
		Tags:              opts.Tags,
		Monitored:         true,
		AddOptions: &sonarrapi.AddSeriesOptions{
			SearchForMissingEpisodes: opts.SearchNow,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("add series tvdb %d: %w", opts.TVDBID, err)
	}
	c.log.Info("series added", "tvdb_id", opts.TVDBID, "sonarr_id", added.ID)
	return fromAPI(added), nil
}

// monitorSeasons merges the requested seasons into an existing series as
// monitored, saves it and optionally starts a search.
func (c *Client) monitorSeasons(ctx context.Context, existing *sonarrapi.Series, opts AddOptions) (*Series, error) {
	seasons := make([]*sonarrapi.Season, 0, len(existing.Seasons)+len(opts.Seasons))
	seen := make(map[int]bool, len(existing.Seasons))
	for _, season := range existing.Seasons {
		if season == nil {
			continue
		}
		seen[season.SeasonNumber] = true
		seasons = append(seasons, &sonarrapi.Season{
			SeasonNumber: season.SeasonNumber,
			Monitored:    season.Monitored || slices.Contains(opts.Seasons, season.SeasonNumber),
		})
	}
	for _, n := range opts.Seasons {
		if !seen[n] {
			seasons = append(seasons, &sonarrapi.Season{SeasonNumber: n, Monitored: true})
		}
	}

	updated, err := c.api.UpdateSeriesContext(ctx, &sonarrapi.AddSeriesInput{
		ID:                existing.ID,
		TvdbID:            existing.TvdbID,
		Title:             existing.Title,
		TitleSlug:         existing.TitleSlug,
		Path:              existing.Path,
		RootFolderPath:    existing.RootFolderPath,
		QualityProfileID:  existing.QualityProfileID,
		LanguageProfileID: existing.LanguageProfileID,
		SeriesType:        existing.SeriesType,
		SeasonFolder:      existing.SeasonFolder,
		UseSceneNumbering: existing.UseSceneNumbering,
		ImdbID:            existing.ImdbID,
		Tags:              existing.Tags,
		Images:            existing.Images,
		Seasons:           seasons,
		Monitored:         true,
	}, false)
	if err != nil {
		return nil, fmt.Errorf("update series %d: %w", existing.ID, err)
	}

	if opts.SearchNow {
		if _, err := c.api.SendCommandContext(ctx, &sonarrapi.CommandRequest{
			Name:     "SeriesSearch",
			SeriesID: existing.ID,
		}); err != nil {
			return nil, fmt.Errorf("search series %d: %w", existing.ID, err)
		}
	}
	c.log.Info("series already tracked, seasons monitored",
		"tvdb_id", opts.TVDBID, "sonarr_id", existing.ID, "seasons", opts.Seasons)
	return fromAPI(updated), nil
}
