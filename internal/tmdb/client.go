package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

//go:generate mockgen -destination=mocks/tmdb_mock.go -package=mocks . API

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 6 * time.Hour

// ErrNotFound is returned when a title doesn't exist in TMDB.
var ErrNotFound = errors.New("tmdb: not found")

// API is the subset of TMDB the resolver, scanner and request service use.
type API interface {
	GetMovie(ctx context.Context, tmdbID int64) (*Movie, error)
	GetTV(ctx context.Context, tmdbID int64) (*TV, error)
	FindByIMDb(ctx context.Context, imdbID string) (*FindResult, error)
	FindByTVDB(ctx context.Context, tvdbID int64) (*FindResult, error)
}

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: cache.New(defaultCacheTTL, 2*defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMovie fetches movie metadata by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, tmdbID int64) (*Movie, error) {
	key := fmt.Sprintf("movie:%d", tmdbID)
	if v, ok := c.cache.Get(key); ok {
		return v.(*Movie), nil
	}
	var movie Movie
	if err := c.get(ctx, fmt.Sprintf("/3/movie/%d", tmdbID), nil, &movie); err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, &movie)
	return &movie, nil
}

// GetTV fetches series metadata, including keywords and external ids.
func (c *Client) GetTV(ctx context.Context, tmdbID int64) (*TV, error) {
	key := fmt.Sprintf("tv:%d", tmdbID)
	if v, ok := c.cache.Get(key); ok {
		return v.(*TV), nil
	}
	var tv TV
	params := url.Values{"append_to_response": {"keywords,external_ids"}}
	if err := c.get(ctx, fmt.Sprintf("/3/tv/%d", tmdbID), params, &tv); err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, &tv)
	return &tv, nil
}

// FindByIMDb looks up titles by IMDb id ("tt0133093").
func (c *Client) FindByIMDb(ctx context.Context, imdbID string) (*FindResult, error) {
	return c.find(ctx, imdbID, "imdb_id")
}

// FindByTVDB looks up titles by TVDB id.
func (c *Client) FindByTVDB(ctx context.Context, tvdbID int64) (*FindResult, error) {
	return c.find(ctx, fmt.Sprintf("%d", tvdbID), "tvdb_id")
}

func (c *Client) find(ctx context.Context, externalID, source string) (*FindResult, error) {
	key := "find:" + source + ":" + externalID
	if v, ok := c.cache.Get(key); ok {
		return v.(*FindResult), nil
	}
	var result FindResult
	params := url.Values{"external_source": {source}}
	if err := c.get(ctx, "/3/find/"+url.PathEscape(externalID), params, &result); err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, &result)
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
