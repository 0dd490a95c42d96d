// Package radarr adapts a Radarr instance to the movie acquisition and
// existence checks used by requests and the availability sync.
package radarr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golift.io/starr"
	radarrapi "golift.io/starr/radarr"

	"github.com/vmunix/mediarr/internal/config"
)

// ErrNotFound is returned when Radarr does not track the movie.
var ErrNotFound = errors.New("radarr movie not found")

// API is the Radarr surface consumed by this module.
//
//go:generate mockgen -destination=mocks/radarr_mock.go -package=mocks . API
type API interface {
	GetMovie(ctx context.Context, id int64) (*Movie, error)
	LookupByTMDB(ctx context.Context, tmdbID int64) (*Movie, error)
	AddMovie(ctx context.Context, opts AddOptions) (*Movie, error)
	Exclusions(ctx context.Context) ([]Exclusion, error)
}

// Movie is the subset of a Radarr movie this module needs.
type Movie struct {
	ID        int64
	TMDBID    int64
	Title     string
	TitleSlug string
	HasFile   bool
	Monitored bool
}

// AddOptions describes a movie to add to Radarr.
type AddOptions struct {
	TMDBID              int64
	Title               string
	Year                int
	ProfileID           int64
	RootFolder          string
	MinimumAvailability string
	Tags                []int
	SearchNow           bool
}

// Exclusion is a movie Radarr has been told never to import.
type Exclusion struct {
	ID     int64  `json:"id"`
	TMDBID int64  `json:"tmdb_id"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
}

// Client wraps one configured Radarr instance.
type Client struct {
	instance config.RadarrConfig
	api      *radarrapi.Radarr
	log      *slog.Logger
}

// New creates a client for a configured instance.
func New(instance config.RadarrConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := starr.New(instance.APIKey, instance.URL, 30*time.Second)
	return &Client{
		instance: instance,
		api:      radarrapi.New(cfg),
		log:      logger.With("component", "radarr", "instance", instance.Name),
	}
}

// Instance returns the configuration the client was built from.
func (c *Client) Instance() config.RadarrConfig { return c.instance }

func fromAPI(m *radarrapi.Movie) *Movie {
	return &Movie{
		ID:        m.ID,
		TMDBID:    m.TmdbID,
		Title:     m.Title,
		TitleSlug: m.TitleSlug,
		HasFile:   m.HasFile,
		Monitored: m.Monitored,
	}
}

// isNotFound reports whether err is a 404 from the *arr API.
func isNotFound(err error) bool {
	var reqErr *starr.ReqError
	return errors.As(err, &reqErr) && reqErr.Code == http.StatusNotFound
}

// GetMovie fetches a tracked movie by its Radarr id.
func (c *Client) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	m, err := c.api.GetMovieByIDContext(ctx, id)
	if isNotFound(err) {
		return nil, fmt.Errorf("get movie %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return fromAPI(m), nil
}

// LookupByTMDB finds a tracked movie by TMDB id.
func (c *Client) LookupByTMDB(ctx context.Context, tmdbID int64) (*Movie, error) {
	movies, err := c.api.GetMovieContext(ctx, &radarrapi.GetMovie{TMDBID: tmdbID})
	if err != nil {
		return nil, fmt.Errorf("lookup tmdb %d: %w", tmdbID, err)
	}
	for _, m := range movies {
		if m.TmdbID == tmdbID {
			return fromAPI(m), nil
		}
	}
	return nil, fmt.Errorf("lookup tmdb %d: %w", tmdbID, ErrNotFound)
}

// AddMovie adds a movie, or reuses the existing entry. A tracked movie that
// already has its file is returned untouched; a tracked movie without one
// gets a search unless SearchNow is false.
func (c *Client) AddMovie(ctx context.Context, opts AddOptions) (*Movie, error) {
	existing, err := c.LookupByTMDB(ctx, opts.TMDBID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.HasFile {
			c.log.Info("movie already has file, skipping add", "tmdb_id", opts.TMDBID, "radarr_id", existing.ID)
			return existing, nil
		}
		if opts.SearchNow {
			if _, err := c.api.SendCommandContext(ctx, &radarrapi.CommandRequest{
				Name:     "MoviesSearch",
				MovieIDs: []int64{existing.ID},
			}); err != nil {
				return nil, fmt.Errorf("search movie %d: %w", existing.ID, err)
			}
		}
		c.log.Info("movie already tracked", "tmdb_id", opts.TMDBID, "radarr_id", existing.ID)
		return existing, nil
	}

	added, err := c.api.AddMovieContext(ctx, &radarrapi.AddMovieInput{
		Title:               opts.Title,
		TmdbID:              opts.TMDBID,
		Year:                opts.Year,
		QualityProfileID:    opts.ProfileID,
		RootFolderPath:      opts.RootFolder,
		MinimumAvailability: radarrapi.Availability(opts.MinimumAvailability),
		Tags:                opts.Tags,
		Monitored:           true,
		AddOptions:          &radarrapi.AddMovieOptions{SearchForMovie: opts.SearchNow},
	})
	if err != nil {
		return nil, fmt.Errorf("add movie tmdb %d: %w", opts.TMDBID, err)
	}
	c.log.Info("movie added", "tmdb_id", opts.TMDBID, "radarr_id", added.ID)
	return fromAPI(added), nil
}

// Exclusions lists the import exclusions of the instance.
func (c *Client) Exclusions(ctx context.Context) ([]Exclusion, error) {
	list, err := c.api.GetExclusionsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("get exclusions: %w", err)
	}
	out := make([]Exclusion, 0, len(list))
	for _, e := range list {
		out = append(out, Exclusion{ID: e.ID, TMDBID: e.TMDBID, Title: e.Title, Year: e.Year})
	}
	return out, nil
}
