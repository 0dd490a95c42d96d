// internal/api/v1/types.go
package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/vmunix/mediarr/internal/media"
)

// seasonsField accepts either a list of season numbers or the string "all".
type seasonsField struct {
	All     bool
	Numbers []int
}

func (f *seasonsField) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte(`"all"`)) {
		f.All = true
		return nil
	}
	if err := json.Unmarshal(b, &f.Numbers); err != nil {
		return errors.New(`seasons must be a list of numbers or "all"`)
	}
	return nil
}

// createRequestBody is the body of POST /requests.
type createRequestBody struct {
	MediaType         string       `json:"media_type" validate:"required,oneof=movie tv"`
	TMDBID            int64        `json:"tmdb_id" validate:"required,gt=0"`
	TVDBID            *int64       `json:"tvdb_id,omitempty" validate:"omitempty,gt=0"`
	Is4K              bool         `json:"is_4k"`
	Seasons           seasonsField `json:"seasons"`
	ServerID          *int64       `json:"server_id,omitempty" validate:"omitempty,gte=0"`
	ProfileID         *int64       `json:"profile_id,omitempty" validate:"omitempty,gt=0"`
	RootFolder        *string      `json:"root_folder,omitempty" validate:"omitempty,min=1"`
	LanguageProfileID *int64       `json:"language_profile_id,omitempty" validate:"omitempty,gt=0"`
	Tags              []int        `json:"tags,omitempty" validate:"omitempty,dive,gte=0"`
	UserID            *int64       `json:"user_id,omitempty" validate:"omitempty,gt=0"`
}

type seasonRequestResponse struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Status       string `json:"status"`
}

type requestResponse struct {
	ID                int64                   `json:"id"`
	MediaID           int64                   `json:"media_id"`
	Type              string                  `json:"type"`
	Is4K              bool                    `json:"is_4k"`
	Status            string                  `json:"status"`
	RequestedByID     int64                   `json:"requested_by_id"`
	ModifiedByID      *int64                  `json:"modified_by_id,omitempty"`
	IsAutoRequest     bool                    `json:"is_auto_request"`
	ServerID          *int64                  `json:"server_id,omitempty"`
	ProfileID         *int64                  `json:"profile_id,omitempty"`
	RootFolder        *string                 `json:"root_folder,omitempty"`
	LanguageProfileID *int64                  `json:"language_profile_id,omitempty"`
	Tags              []int                   `json:"tags,omitempty"`
	Seasons           []seasonRequestResponse `json:"seasons,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func requestToResponse(r *media.Request) requestResponse {
	resp := requestResponse{
		ID:                r.ID,
		MediaID:           r.MediaID,
		Type:              string(r.Type),
		Is4K:              r.Is4K,
		Status:            string(r.Status),
		RequestedByID:     r.RequestedByID,
		ModifiedByID:      r.ModifiedByID,
		IsAutoRequest:     r.IsAutoRequest,
		ServerID:          r.ServerID,
		ProfileID:         r.ProfileID,
		RootFolder:        r.RootFolder,
		LanguageProfileID: r.LanguageProfileID,
		Tags:              r.Tags,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	for _, s := range r.Seasons {
		resp.Seasons = append(resp.Seasons, seasonRequestResponse{ID: s.ID, SeasonNumber: s.SeasonNumber, Status: string(s.Status)})
	}
	return resp
}

type tierResponse struct {
	Status              string  `json:"status"`
	ServiceID           *int64  `json:"service_id,omitempty"`
	ExternalServiceID   *int64  `json:"external_service_id,omitempty"`
	ExternalServiceSlug *string `json:"external_service_slug,omitempty"`
	RatingKey           *string `json:"rating_key,omitempty"`
}

type seasonResponse struct {
	SeasonNumber int    `json:"season_number"`
	Status       string `json:"status"`
	Status4K     string `json:"status_4k"`
}

type mediaResponse struct {
	ID               int64             `json:"id"`
	Type             string            `json:"type"`
	TMDBID           int64             `json:"tmdb_id"`
	TVDBID           *int64            `json:"tvdb_id,omitempty"`
	IMDBID           *string           `json:"imdb_id,omitempty"`
	Standard         tierResponse      `json:"standard"`
	FourK            tierResponse      `json:"4k"`
	MediaAddedAt     *time.Time        `json:"media_added_at,omitempty"`
	LastSeasonChange *time.Time        `json:"last_season_change,omitempty"`
	Seasons          []seasonResponse  `json:"seasons,omitempty"`
	Requests         []requestResponse `json:"requests"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func tierToResponse(m *media.Media, t media.Tier) tierResponse {
	f := m.Fields(t)
	return tierResponse{
		Status:              string(m.StatusFor(t)),
		ServiceID:           f.ServiceID,
		ExternalServiceID:   f.ExternalServiceID,
		ExternalServiceSlug: f.ExternalServiceSlug,
		RatingKey:           f.RatingKey,
	}
}

func mediaToResponse(m *media.Media, seasons []*media.Season, reqs []*media.Request) mediaResponse {
	resp := mediaResponse{
		ID:               m.ID,
		Type:             string(m.Type),
		TMDBID:           m.TMDBID,
		TVDBID:           m.TVDBID,
		IMDBID:           m.IMDBID,
		Standard:         tierToResponse(m, media.Standard),
		FourK:            tierToResponse(m, media.FourK),
		MediaAddedAt:     m.MediaAddedAt,
		LastSeasonChange: m.LastSeasonChange,
		Requests:         make([]requestResponse, 0, len(reqs)),
		UpdatedAt:        m.UpdatedAt,
	}
	for _, s := range seasons {
		resp.Seasons = append(resp.Seasons, seasonResponse{
			SeasonNumber: s.SeasonNumber,
			Status:       string(s.Status),
			Status4K:     string(s.Status4K),
		})
	}
	for _, r := range reqs {
		resp.Requests = append(resp.Requests, requestToResponse(r))
	}
	return resp
}

// EventResponse is a persisted event.
type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt string          `json:"occurred_at"`
}

type listEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

type listJobsResponse struct {
	Items []jobResponse `json:"items"`
}

type jobResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule,omitempty"`
	Running   bool       `json:"running"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type exclusionResponse struct {
	ID     int64  `json:"id"`
	TMDBID int64  `json:"tmdb_id"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
}
