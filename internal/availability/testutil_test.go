package availability

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	plexmocks "github.com/vmunix/mediarr/internal/adapters/plex/mocks"
	"github.com/vmunix/mediarr/internal/adapters/radarr"
	radarrmocks "github.com/vmunix/mediarr/internal/adapters/radarr/mocks"
	"github.com/vmunix/mediarr/internal/adapters/sonarr"
	sonarrmocks "github.com/vmunix/mediarr/internal/adapters/sonarr/mocks"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/metrics"
	"github.com/vmunix/mediarr/internal/migrations"
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

func ptr[T any](v T) *T {
	return &v
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

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) ofType(typ string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.EventType() == typ {
			out = append(out, e)
		}
	}
	return out
}

// Instance ids: radarr 0 (standard) and 1 (4K), sonarr 0 (standard) and 1 (4K).
type fixture struct {
	store    *media.Store
	plex     *plexmocks.MockMediaServer
	radarr   *radarrmocks.MockAPI
	radarr4k *radarrmocks.MockAPI
	sonarr   *sonarrmocks.MockAPI
	sonarr4k *sonarrmocks.MockAPI
	rec      *recorder
	metrics  *metrics.Metrics
	snap     config.Snapshot
	sync     *Sync
	admin    *media.User
	tokens   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		store:    media.NewStore(setupTestDB(t)),
		plex:     plexmocks.NewMockMediaServer(ctrl),
		radarr:   radarrmocks.NewMockAPI(ctrl),
		radarr4k: radarrmocks.NewMockAPI(ctrl),
		sonarr:   sonarrmocks.NewMockAPI(ctrl),
		sonarr4k: sonarrmocks.NewMockAPI(ctrl),
		rec:      &recorder{},
		metrics:  metrics.Nop(),
		snap: config.Snapshot{
			Radarr: []config.RadarrConfig{
				{ServarrConfig: config.ServarrConfig{ID: 0, Name: "radarr", IsDefault: true, SyncEnabled: true}},
				{ServarrConfig: config.ServarrConfig{ID: 1, Name: "radarr-4k", Is4K: true, IsDefault: true, SyncEnabled: true}},
			},
			Sonarr: []config.SonarrConfig{
				{ServarrConfig: config.ServarrConfig{ID: 0, Name: "sonarr", IsDefault: true, SyncEnabled: true}},
				{ServarrConfig: config.ServarrConfig{ID: 1, Name: "sonarr-4k", Is4K: true, IsDefault: true, SyncEnabled: true}},
			},
		},
	}

	f.admin = &media.User{DisplayName: "admin", PlexToken: "admin-token", Permissions: media.PermissionAdmin}
	require.NoError(t, f.store.AddUser(f.admin))

	f.sync = New(f.store, func() config.Snapshot { return f.snap },
		func(token string) plex.MediaServer {
			f.tokens = append(f.tokens, token)
			return f.plex
		},
		WithLogger(testLogger()),
		WithMetrics(f.metrics),
		WithPublisher(f.rec),
		WithRadarrFactory(func(c config.RadarrConfig) radarr.API {
			if c.Is4K {
				return f.radarr4k
			}
			return f.radarr
		}),
		WithSonarrFactory(func(c config.SonarrConfig) sonarr.API {
			if c.Is4K {
				return f.sonarr4k
			}
			return f.sonarr
		}),
	)
	return f
}

func (f *fixture) addMedia(t *testing.T, m *media.Media) *media.Media {
	t.Helper()
	require.NoError(t, f.store.AddMedia(m))
	return m
}

func (f *fixture) addSeason(t *testing.T, mediaID int64, number int, std, fourK media.Status) {
	t.Helper()
	require.NoError(t, f.store.AddSeason(&media.Season{MediaID: mediaID, SeasonNumber: number, Status: std, Status4K: fourK}))
}

func (f *fixture) addRequest(t *testing.T, m *media.Media, is4k bool, seasons ...int) *media.Request {
	t.Helper()
	r := &media.Request{
		MediaID:       m.ID,
		Type:          m.Type,
		Is4K:          is4k,
		Status:        media.RequestApproved,
		RequestedByID: f.admin.ID,
	}
	for _, n := range seasons {
		r.Seasons = append(r.Seasons, media.SeasonRequest{SeasonNumber: n})
	}
	require.NoError(t, f.store.AddRequest(r))
	return r
}

func (f *fixture) media(t *testing.T, id int64) *media.Media {
	t.Helper()
	m, err := f.store.GetMedia(id)
	require.NoError(t, err)
	return m
}

func (f *fixture) seasonStatus(t *testing.T, mediaID int64, number int) (media.Status, media.Status) {
	t.Helper()
	seasons, err := f.store.ListSeasons(mediaID)
	require.NoError(t, err)
	for _, s := range seasons {
		if s.SeasonNumber == number {
			return s.Status, s.Status4K
		}
	}
	t.Fatalf("season %d of media %d not found", number, mediaID)
	return "", ""
}
