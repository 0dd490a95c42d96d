package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Metadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/metadata/123", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("includeGuids"))
		assert.Equal(t, "test-token", r.Header.Get("X-Plex-Token"))

		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="1">
  <Video ratingKey="123" guid="plex://movie/5d776" type="movie" title="Fight Club" year="1999">
    <Media videoResolution="4k" width="3840"/>
    <Guid id="imdb://tt0137523"/>
    <Guid id="tmdb://550"/>
  </Video>
</MediaContainer>`))
	}))
	defer server.Close()

	client := New(server.URL, "test-token")
	item, err := client.Metadata(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, "movie", item.Type)
	assert.Equal(t, "plex://movie/5d776", item.GUID)
	require.Len(t, item.Guids, 2)
	assert.Equal(t, "tmdb://550", item.Guids[1].ID)
	assert.True(t, item.Has4K())
	assert.False(t, item.HasStandard())
}

func TestClient_ItemExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/library/metadata/1":
			_, _ = w.Write([]byte(`<MediaContainer size="1"><Video ratingKey="1" type="movie"/></MediaContainer>`))
		case "/library/metadata/2":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := New(server.URL, "token")
	ctx := context.Background()

	ok, err := client.ItemExists(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.ItemExists(ctx, "2")
	require.NoError(t, err, "404 is a negative answer")
	assert.False(t, ok)

	ok, err = client.ItemExists(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.ItemExists(ctx, "3")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_Children(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/metadata/10/children", r.URL.Path)
		_, _ = w.Write([]byte(`<MediaContainer size="2">
  <Directory ratingKey="11" type="season" index="1" leafCount="10"/>
  <Directory ratingKey="12" type="season" index="2" leafCount="8"/>
</MediaContainer>`))
	}))
	defer server.Close()

	children, err := New(server.URL, "token").Children(context.Background(), "10")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, 2, children[1].Index)
	assert.Equal(t, "12", children[1].RatingKey)
}

func TestClient_Libraries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/sections", r.URL.Path)
		_, _ = w.Write([]byte(`<MediaContainer size="2">
  <Directory key="1" title="Movies" type="movie" agent="tv.plex.agents.movie"/>
  <Directory key="2" title="Anime" type="show" agent="com.plexapp.agents.hama"/>
</MediaContainer>`))
	}))
	defer server.Close()

	libs, err := New(server.URL, "token").Libraries(context.Background())
	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.Equal(t, AgentHama, libs[1].Agent)
}

func TestClient_LibraryContents_Paging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/sections/1/all", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("X-Plex-Container-Start"))
		assert.Equal(t, "50", r.URL.Query().Get("X-Plex-Container-Size"))
		_, _ = w.Write([]byte(`<MediaContainer size="1" totalSize="51"><Video ratingKey="99" type="movie"/></MediaContainer>`))
	}))
	defer server.Close()

	page, err := New(server.URL, "token").LibraryContents(context.Background(), "1", 50, 50)
	require.NoError(t, err)
	assert.Equal(t, 51, page.TotalSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "99", page.Items[0].RatingKey)
}

func TestClient_RecentlyAdded(t *testing.T) {
	since := time.Unix(1700000000, 0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1700000000", r.URL.Query().Get("addedAt>>"))
		assert.Equal(t, "addedAt:desc", r.URL.Query().Get("sort"))
		_, _ = w.Write([]byte(`<MediaContainer size="1"><Directory ratingKey="5" type="show"/></MediaContainer>`))
	}))
	defer server.Close()

	items, err := New(server.URL, "token").RecentlyAdded(context.Background(), "2", since)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "show", items[0].Type)
}

func TestClient_WithToken(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Plex-Token")
		_, _ = w.Write([]byte(`<MediaContainer size="0"/>`))
	}))
	defer server.Close()

	base := New(server.URL, "")
	_, err := base.WithToken("admin-token").Libraries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin-token", seen)
}
