// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

// AnimeKeywordID is the TMDB keyword attached to anime series.
const AnimeKeywordID = 210024

// Movie represents TMDB movie metadata.
type Movie struct {
	ID           int64   `json:"id"`
	IMDBID       string  `json:"imdb_id,omitempty"` // e.g., "tt0133093"
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"` // "2024-03-01"
	PosterPath   string  `json:"poster_path"`  // "/abc123.jpg"
	BackdropPath string  `json:"backdrop_path"`
	Runtime      int     `json:"runtime"` // minutes
	Genres       []Genre `json:"genres"`
}

// Genre represents a movie or series genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	return year(m.ReleaseDate)
}

// TV represents TMDB series metadata, fetched with keywords and external ids
// appended.
type TV struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	FirstAirDate string      `json:"first_air_date"`
	Seasons      []Season    `json:"seasons"`
	Keywords     KeywordList `json:"keywords"`
	ExternalIDs  ExternalIDs `json:"external_ids"`
}

// Season is one entry of a series' season list.
type Season struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
}

// KeywordList wraps the keywords sub-resource. Series use "results".
type KeywordList struct {
	Results []Keyword `json:"results"`
}

type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// Year extracts the year from FirstAirDate.
func (t *TV) Year() int {
	return year(t.FirstAirDate)
}

// IsAnime reports whether the series carries the anime keyword.
func (t *TV) IsAnime() bool {
	for _, k := range t.Keywords.Results {
		if k.ID == AnimeKeywordID {
			return true
		}
	}
	return false
}

// SeasonNumbers returns the regular season numbers; specials (season 0) are
// left out.
func (t *TV) SeasonNumbers() []int {
	var out []int
	for _, s := range t.Seasons {
		if s.SeasonNumber > 0 {
			out = append(out, s.SeasonNumber)
		}
	}
	return out
}

// FindResult is the response of the /find endpoint.
type FindResult struct {
	MovieResults []FindItem `json:"movie_results"`
	TVResults    []FindItem `json:"tv_results"`
}

type FindItem struct {
	ID int64 `json:"id"`
}

// FirstMovie returns the first movie match, or 0.
func (f *FindResult) FirstMovie() int64 {
	if len(f.MovieResults) == 0 {
		return 0
	}
	return f.MovieResults[0].ID
}

// FirstTV returns the first series match, or 0.
func (f *FindResult) FirstTV() int64 {
	if len(f.TVResults) == 0 {
		return 0
	}
	return f.TVResults[0].ID
}

func year(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
