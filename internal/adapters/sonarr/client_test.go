package sonarr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sonarrapi "golift.io/starr/sonarr"

	"github.com/vmunix/mediarr/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(config.SonarrConfig{ServarrConfig: config.ServarrConfig{
		ID: 0, Name: "sonarr", URL: server.URL, APIKey: "key",
	}}, nil)
}

func TestClient_GetSeries_SeasonStatistics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/series/12", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":12,"tvdbId":121361,"title":"Game of Thrones","titleSlug":"game-of-thrones",
			"statistics":{"episodeFileCount":18},
			"seasons":[{"seasonNumber":1,"statistics":{"episodeFileCount":10}},{"seasonNumber":2,"statistics":{"episodeFileCount":0}}]}`))
	})

	series, err := client.GetSeries(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(121361), series.TVDBID)
	assert.Equal(t, 18, series.EpisodeFileCount)

	s1, ok := series.Season(1)
	require.True(t, ok)
	assert.Equal(t, 10, s1.EpisodeFileCount)
	s2, ok := series.Season(2)
	require.True(t, ok)
	assert.Zero(t, s2.EpisodeFileCount)
	_, ok = series.Season(3)
	assert.False(t, ok)
}

func TestClient_GetSeries_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetSeries(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_GetSeries_TransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetSeries(context.Background(), 99)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_AddSeries_ExistingMonitorsRequestedSeasons(t *testing.T) {
	var calls []string
	var put sonarrapi.AddSeriesInput
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v3/series":
			assert.Equal(t, "121361", r.URL.Query().Get("tvdbId"))
			_, _ = w.Write([]byte(`[{"id":12,"tvdbId":121361,"title":"Game of Thrones","path":"/tv/Game of Thrones",
				"qualityProfileId":4,"seasons":[{"seasonNumber":1,"monitored":true},{"seasonNumber":2,"monitored":false},{"seasonNumber":3,"monitored":false}]}]`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/v3/series/12":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&put))
			_, _ = w.Write([]byte(`{"id":12,"tvdbId":121361,"title":"Game of Thrones"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v3/command":
			_, _ = w.Write([]byte(`{"id":1,"name":"SeriesSearch"}`))
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	series, err := client.AddSeries(context.Background(), AddOptions{TVDBID: 121361, Seasons: []int{2, 4}, SearchNow: true})
	require.NoError(t, err)
	assert.Equal(t, int64(12), series.ID)
	assert.Equal(t, []string{
		"GET /api/v3/series",
		"PUT /api/v3/series/12",
		"POST /api/v3/command",
	}, calls)

	monitored := map[int]bool{}
	for _, s := range put.Seasons {
		monitored[s.SeasonNumber] = s.Monitored
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: false, 4: true}, monitored)
	assert.Equal(t, "/tv/Game of Thrones", put.Path)
	assert.Equal(t, int64(4), put.QualityProfileID)
	assert.Nil(t, put.AddOptions)
}

func TestClient_AddSeries_ExistingWithoutSearch(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id":12,"tvdbId":5,"seasons":[{"seasonNumber":1,"monitored":false}]}]`))
			return
		}
		_, _ = w.Write([]byte(`{"id":12,"tvdbId":5}`))
	})

	_, err := client.AddSeries(context.Background(), AddOptions{TVDBID: 5, Seasons: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /api/v3/series", "PUT /api/v3/series/12"}, calls)
}
