package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// userHeader carries the acting user id on every call.
const userHeader = "X-Mediarr-User"

// Client wraps HTTP calls to the mediarr server.
type Client struct {
	baseURL    string
	userID     int64
	httpClient *http.Client
}

// NewClient creates a new mediarr API client acting as userID.
func NewClient(serverURL string, userID int64) *Client {
	return &Client{
		baseURL: serverURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

func (c *Client) do(method, path string, body, result any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set(userHeader, strconv.FormatInt(c.userID, 10))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Code, apiErr.Message = e.Code, e.Error
		} else {
			apiErr.Message = string(bytes.TrimSpace(raw))
		}
		return apiErr
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// API response types (mirror server types)

type SeasonRequestResponse struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Status       string `json:"status"`
}

type RequestResponse struct {
	ID            int64                   `json:"id"`
	MediaID       int64                   `json:"media_id"`
	Type          string                  `json:"type"`
	Is4K          bool                    `json:"is_4k"`
	Status        string                  `json:"status"`
	RequestedByID int64                   `json:"requested_by_id"`
	ModifiedByID  *int64                  `json:"modified_by_id,omitempty"`
	IsAutoRequest bool                    `json:"is_auto_request"`
	ServerID      *int64                  `json:"server_id,omitempty"`
	ProfileID     *int64                  `json:"profile_id,omitempty"`
	RootFolder    *string                 `json:"root_folder,omitempty"`
	Tags          []int                   `json:"tags,omitempty"`
	Seasons       []SeasonRequestResponse `json:"seasons,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

type TierResponse struct {
	Status              string  `json:"status"`
	ServiceID           *int64  `json:"service_id,omitempty"`
	ExternalServiceID   *int64  `json:"external_service_id,omitempty"`
	ExternalServiceSlug *string `json:"external_service_slug,omitempty"`
	RatingKey           *string `json:"rating_key,omitempty"`
}

type SeasonResponse struct {
	SeasonNumber int    `json:"season_number"`
	Status       string `json:"status"`
	Status4K     string `json:"status_4k"`
}

type MediaResponse struct {
	ID           int64             `json:"id"`
	Type         string            `json:"type"`
	TMDBID       int64             `json:"tmdb_id"`
	TVDBID       *int64            `json:"tvdb_id,omitempty"`
	IMDBID       *string           `json:"imdb_id,omitempty"`
	Standard     TierResponse      `json:"standard"`
	FourK        TierResponse      `json:"4k"`
	MediaAddedAt *time.Time        `json:"media_added_at,omitempty"`
	Seasons      []SeasonResponse  `json:"seasons,omitempty"`
	Requests     []RequestResponse `json:"requests"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type JobResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule,omitempty"`
	Running   bool       `json:"running"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type ListJobsResponse struct {
	Items []JobResponse `json:"items"`
}

// CreateRequestInput is the body of POST /requests. Seasons is either a
// list of season numbers or the string "all".
type CreateRequestInput struct {
	MediaType  string  `json:"media_type"`
	TMDBID     int64   `json:"tmdb_id"`
	TVDBID     *int64  `json:"tvdb_id,omitempty"`
	Is4K       bool    `json:"is_4k"`
	Seasons    any     `json:"seasons,omitempty"`
	ServerID   *int64  `json:"server_id,omitempty"`
	ProfileID  *int64  `json:"profile_id,omitempty"`
	RootFolder *string `json:"root_folder,omitempty"`
	Tags       []int   `json:"tags,omitempty"`
}

// API methods

func (c *Client) Jobs() (*ListJobsResponse, error) {
	var out ListJobsResponse
	if err := c.do(http.MethodGet, "/api/v1/jobs", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RunJob(id string) error {
	return c.do(http.MethodPost, "/api/v1/jobs/"+id+"/run", nil, nil)
}

func (c *Client) CancelJob(id string) error {
	return c.do(http.MethodPost, "/api/v1/jobs/"+id+"/cancel", nil, nil)
}

func (c *Client) CreateRequest(in CreateRequestInput) (*RequestResponse, error) {
	var out RequestResponse
	if err := c.do(http.MethodPost, "/api/v1/requests", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Request(id int64) (*RequestResponse, error) {
	var out RequestResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/requests/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestAction posts one of approve, decline or retry.
func (c *Client) RequestAction(id int64, action string) (*RequestResponse, error) {
	var out RequestResponse
	if err := c.do(http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/%s", id, action), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRequest(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/api/v1/requests/%d", id), nil, nil)
}

// DeleteUser removes a user and every request it owns. Admin only.
func (c *Client) DeleteUser(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", id), nil, nil)
}

func (c *Client) Media(id int64) (*MediaResponse, error) {
	var out MediaResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/media/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
