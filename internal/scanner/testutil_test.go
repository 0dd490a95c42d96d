package scanner

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	plexmocks "github.com/vmunix/mediarr/internal/adapters/plex/mocks"
	animemocks "github.com/vmunix/mediarr/internal/animelist/mocks"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/metrics"
	"github.com/vmunix/mediarr/internal/migrations"
	"github.com/vmunix/mediarr/internal/resolver"
	scannermocks "github.com/vmunix/mediarr/internal/scanner/mocks"
	tmdbmocks "github.com/vmunix/mediarr/internal/tmdb/mocks"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Notify(context.Context, events.Notification) {}

func (r *recorder) statusChanges() []*events.MediaStatusChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*events.MediaStatusChanged
	for _, e := range r.events {
		if c, ok := e.(*events.MediaStatusChanged); ok {
			out = append(out, c)
		}
	}
	return out
}

type fixture struct {
	store    *media.Store
	plex     *plexmocks.MockLibraryReader
	tmdb     *tmdbmocks.MockAPI
	anime    *animemocks.MockMapper
	handler  *scannermocks.MockAvailabilityHandler
	syncer   *scannermocks.MockAnimeSyncer
	rec      *recorder
	metrics  *metrics.Metrics
	settings Settings
	now      time.Time
	tokens   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		store:   media.NewStore(setupTestDB(t)),
		plex:    plexmocks.NewMockLibraryReader(ctrl),
		tmdb:    tmdbmocks.NewMockAPI(ctrl),
		anime:   animemocks.NewMockMapper(ctrl),
		handler: scannermocks.NewMockAvailabilityHandler(ctrl),
		syncer:  scannermocks.NewMockAnimeSyncer(ctrl),
		rec:     &recorder{},
		metrics: metrics.Nop(),
		settings: Settings{
			Libraries: []config.PlexLibrary{
				{ID: "1", Name: "Movies", Type: "movie", Enabled: true},
			},
		},
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	admin := &media.User{DisplayName: "admin", PlexToken: "admin-token", Permissions: media.PermissionAdmin}
	require.NoError(t, f.store.AddUser(admin))
	return f
}

func (f *fixture) scanner(opts ...Option) *Scanner {
	res := resolver.New(f.tmdb, f.anime, testLogger())
	base := []Option{
		WithLogger(testLogger()),
		WithMetrics(f.metrics),
		WithPublisher(f.rec),
		WithAvailabilityHandler(f.handler),
		WithConcurrency(1),
		WithClock(func() time.Time { return f.now }),
	}
	return New(f.store, func(token string) plex.LibraryReader {
		f.tokens = append(f.tokens, token)
		return f.plex
	}, res, f.tmdb, func() Settings { return f.settings }, append(base, opts...)...)
}

func movieItem(rk string, tmdbID int64, resolutions ...string) plex.Metadata {
	it := plex.Metadata{
		RatingKey: rk,
		GUID:      fmt.Sprintf("com.plexapp.agents.themoviedb://%d?lang=en", tmdbID),
		Type:      "movie",
		Title:     "movie " + rk,
		AddedAt:   1700000000,
	}
	for _, r := range resolutions {
		it.Media = append(it.Media, plex.MediaInfo{VideoResolution: r})
	}
	return it
}

func episodes(seasonRK string, n int, resolution string) []plex.Metadata {
	out := make([]plex.Metadata, n)
	for i := range out {
		out[i] = plex.Metadata{
			RatingKey:       fmt.Sprintf("%s-e%d", seasonRK, i+1),
			ParentRatingKey: seasonRK,
			Type:            "episode",
			Index:           i + 1,
			Media:           []plex.MediaInfo{{VideoResolution: resolution}},
		}
	}
	return out
}

func (f *fixture) byTMDB(t *testing.T, tmdbID int64, typ media.Type) *media.Media {
	t.Helper()
	m, err := f.store.GetMediaByTMDB(tmdbID, typ)
	require.NoError(t, err)
	return m
}

func (f *fixture) seasons(t *testing.T, mediaID int64) map[int]*media.Season {
	t.Helper()
	list, err := f.store.ListSeasons(mediaID)
	require.NoError(t, err)
	out := make(map[int]*media.Season, len(list))
	for _, s := range list {
		out[s.SeasonNumber] = s
	}
	return out
}
