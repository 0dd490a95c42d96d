// Package plex is a client for the Plex Media Server library API.
package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when Plex answers 404 for a rating key.
var ErrNotFound = errors.New("plex item not found")

// MediaServer is the existence view of Plex used by the availability sync.
//
//go:generate mockgen -destination=mocks/plex_mock.go -package=mocks . MediaServer,LibraryReader
type MediaServer interface {
	ItemExists(ctx context.Context, ratingKey string) (bool, error)
	Children(ctx context.Context, ratingKey string) ([]Metadata, error)
}

// LibraryReader is the browsing view of Plex used by the scanner and resolver.
type LibraryReader interface {
	Metadata(ctx context.Context, ratingKey string) (*Metadata, error)
	Children(ctx context.Context, ratingKey string) ([]Metadata, error)
	Libraries(ctx context.Context) ([]Library, error)
	LibraryContents(ctx context.Context, libraryID string, offset, size int) (*Page, error)
	RecentlyAdded(ctx context.Context, libraryID string, since time.Time) ([]Metadata, error)
}

// Client talks to one Plex server on behalf of one account token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.With("component", "plex")
		}
	}
}

// New creates a Plex client.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default().With("component", "plex"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("plex request", "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Metadata fetches one item with its GUID list.
func (c *Client) Metadata(ctx context.Context, ratingKey string) (*Metadata, error) {
	var result container
	q := url.Values{"includeGuids": {"1"}}
	if err := c.get(ctx, "/library/metadata/"+url.PathEscape(ratingKey), q, &result); err != nil {
		return nil, fmt.Errorf("get metadata %s: %w", ratingKey, err)
	}
	items := result.items()
	if len(items) == 0 {
		return nil, fmt.Errorf("get metadata %s: %w", ratingKey, ErrNotFound)
	}
	return &items[0], nil
}

// ItemExists reports whether a rating key still resolves. A 404 is a
// negative answer, not an error.
func (c *Client) ItemExists(ctx context.Context, ratingKey string) (bool, error) {
	if ratingKey == "" {
		return false, nil
	}
	_, err := c.Metadata(ctx, ratingKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Children lists the seasons of a show or the episodes of a season.
func (c *Client) Children(ctx context.Context, ratingKey string) ([]Metadata, error) {
	var result container
	q := url.Values{"includeGuids": {"1"}}
	if err := c.get(ctx, "/library/metadata/"+url.PathEscape(ratingKey)+"/children", q, &result); err != nil {
		return nil, fmt.Errorf("get children of %s: %w", ratingKey, err)
	}
	return result.items(), nil
}

// Libraries lists the library sections of the server.
func (c *Client) Libraries(ctx context.Context) ([]Library, error) {
	var result librariesResponse
	if err := c.get(ctx, "/library/sections", nil, &result); err != nil {
		return nil, fmt.Errorf("get libraries: %w", err)
	}
	return result.Libraries, nil
}

// LibraryContents returns one page of a library section.
func (c *Client) LibraryContents(ctx context.Context, libraryID string, offset, size int) (*Page, error) {
	var result container
	q := url.Values{
		"includeGuids":           {"1"},
		"X-Plex-Container-Start": {strconv.Itoa(offset)},
		"X-Plex-Container-Size":  {strconv.Itoa(size)},
	}
	if err := c.get(ctx, "/library/sections/"+url.PathEscape(libraryID)+"/all", q, &result); err != nil {
		return nil, fmt.Errorf("get library %s contents: %w", libraryID, err)
	}
	return &Page{Items: result.items(), TotalSize: result.TotalSize}, nil
}

// RecentlyAdded returns items of a section added at or after since, newest first.
func (c *Client) RecentlyAdded(ctx context.Context, libraryID string, since time.Time) ([]Metadata, error) {
	var result container
	q := url.Values{
		"includeGuids": {"1"},
		"sort":         {"addedAt:desc"},
		"addedAt>>":    {strconv.FormatInt(since.Unix(), 10)},
	}
	if err := c.get(ctx, "/library/sections/"+url.PathEscape(libraryID)+"/all", q, &result); err != nil {
		return nil, fmt.Errorf("get recently added for %s: %w", libraryID, err)
	}
	return result.items(), nil
}
