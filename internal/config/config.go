// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultAnimeListURL is the community mapping of AniDB ids to TVDB/TMDB/IMDb ids.
const DefaultAnimeListURL = "https://raw.githubusercontent.com/Anime-Lists/anime-lists/master/anime-list.xml"

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Plex          PlexConfig          `toml:"plex"`
	TMDB          TMDBConfig          `toml:"tmdb"`
	Radarr        []RadarrConfig      `toml:"radarr"`
	Sonarr        []SonarrConfig      `toml:"sonarr"`
	Jobs          JobsConfig          `toml:"jobs"`
	AnimeList     AnimeListConfig     `toml:"animelist"`
	Notifications NotificationsConfig `toml:"notifications"`
	Features      FeaturesConfig      `toml:"features"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type PlexConfig struct {
	URL       string        `toml:"url"`
	Libraries []PlexLibrary `toml:"libraries"`
	Timeout   time.Duration `toml:"timeout"`
}

// PlexLibrary is one library section that the scanner walks.
type PlexLibrary struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Type    string `toml:"type"` // "movie" or "show"
	Enabled bool   `toml:"enabled"`
}

type TMDBConfig struct {
	APIKey   string        `toml:"api_key"`
	CacheTTL time.Duration `toml:"cache_ttl"`
}

// ServarrConfig holds the settings shared by Radarr and Sonarr instances.
type ServarrConfig struct {
	ID              int64  `toml:"id"`
	Name            string `toml:"name"`
	URL             string `toml:"url"`
	APIKey          string `toml:"api_key"`
	Is4K            bool   `toml:"is_4k"`
	IsDefault       bool   `toml:"is_default"`
	SyncEnabled     bool   `toml:"sync_enabled"`
	PreventSearch   bool   `toml:"prevent_search"`
	ActiveProfileID int64  `toml:"active_profile_id"`
	ActiveDirectory string `toml:"active_directory"`
	Tags            []int  `toml:"tags"`
}

type RadarrConfig struct {
	ServarrConfig
	MinimumAvailability string `toml:"minimum_availability"`
}

// Common returns the shared instance settings.
func (r RadarrConfig) Common() ServarrConfig { return r.ServarrConfig }

type SonarrConfig struct {
	ServarrConfig
	ActiveLanguageProfileID      int64  `toml:"active_language_profile_id"`
	ActiveAnimeProfileID         int64  `toml:"active_anime_profile_id"`
	ActiveAnimeDirectory         string `toml:"active_anime_directory"`
	ActiveAnimeLanguageProfileID int64  `toml:"active_anime_language_profile_id"`
	AnimeTags                    []int  `toml:"anime_tags"`
	SeasonFolders                bool   `toml:"season_folders"`
}

// Common returns the shared instance settings.
func (s SonarrConfig) Common() ServarrConfig { return s.ServarrConfig }

// JobsConfig holds cron specs (standard 5-field syntax) for background jobs.
type JobsConfig struct {
	AvailabilitySync string `toml:"availability_sync"`
	PlexFullScan     string `toml:"plex_full_scan"`
	PlexRecentScan   string `toml:"plex_recent_scan"`
	AnimeListRefresh string `toml:"anime_list_refresh"`
}

type AnimeListConfig struct {
	URL             string        `toml:"url"`
	Path            string        `toml:"path"`
	RefreshInterval time.Duration `toml:"refresh_interval"`
}

type NotificationsConfig struct {
	Webhook *WebhookConfig `toml:"webhook"`
}

type WebhookConfig struct {
	URL     string `toml:"url"`
	Retries uint64 `toml:"retries"`
}

type FeaturesConfig struct {
	Enable4KMovie bool `toml:"enable_4k_movie"`
	Enable4KTV    bool `toml:"enable_4k_tv"`
}

// Load reads and parses the configuration file.
// Unresolved environment variables and validation failures are reported
// together as a *ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, missing, err := decode(string(data))
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads the config file, substitutes environment
// variables and applies defaults, but skips validation. Used by the CLI
// commands that only need the server address.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, _, err := decode(string(data))
	return cfg, err
}

func decode(data string) (*Config, []string, error) {
	content, missing := substituteEnvVars(data)

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5055
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/mediarr.db"
	}
	if c.Plex.URL == "" {
		c.Plex.URL = "http://localhost:32400"
	}
	if c.Plex.Timeout == 0 {
		c.Plex.Timeout = 30 * time.Second
	}
	if c.TMDB.CacheTTL == 0 {
		c.TMDB.CacheTTL = 6 * time.Hour
	}
	if c.Jobs.AvailabilitySync == "" {
		c.Jobs.AvailabilitySync = "0 5 * * *"
	}
	if c.Jobs.PlexFullScan == "" {
		c.Jobs.PlexFullScan = "0 3 * * *"
	}
	if c.Jobs.PlexRecentScan == "" {
		c.Jobs.PlexRecentScan = "*/5 * * * *"
	}
	if c.Jobs.AnimeListRefresh == "" {
		c.Jobs.AnimeListRefresh = "0 4 * * *"
	}
	if c.AnimeList.URL == "" {
		c.AnimeList.URL = DefaultAnimeListURL
	}
	if c.AnimeList.Path == "" {
		c.AnimeList.Path = "./data/anime-list.xml"
	}
	if c.AnimeList.RefreshInterval == 0 {
		c.AnimeList.RefreshInterval = 24 * time.Hour
	}
	if c.Notifications.Webhook != nil && c.Notifications.Webhook.Retries == 0 {
		c.Notifications.Webhook.Retries = 3
	}
}

// Snapshot is the read-only view of download manager settings handed to the
// request service and the availability sync for one operation.
type Snapshot struct {
	Radarr        []RadarrConfig
	Sonarr        []SonarrConfig
	Enable4KMovie bool
	Enable4KTV    bool
}

// Snapshot copies the instance lists so later config edits don't leak into
// a running operation.
func (c *Config) Snapshot() Snapshot {
	return Snapshot{
		Radarr:        append([]RadarrConfig(nil), c.Radarr...),
		Sonarr:        append([]SonarrConfig(nil), c.Sonarr...),
		Enable4KMovie: c.Features.Enable4KMovie,
		Enable4KTV:    c.Features.Enable4KTV,
	}
}

// SyncRadarr returns the Radarr instances that take part in availability sync.
func (s Snapshot) SyncRadarr() []RadarrConfig {
	return syncEnabled(s.Radarr)
}

// SyncSonarr returns the Sonarr instances that take part in availability sync.
func (s Snapshot) SyncSonarr() []SonarrConfig {
	return syncEnabled(s.Sonarr)
}

func syncEnabled[T Instance](instances []T) []T {
	var out []T
	for _, in := range instances {
		if in.Common().SyncEnabled {
			out = append(out, in)
		}
	}
	return out
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Unresolved references are left in place and reported in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, op, arg := parts[1], parts[2], parts[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		}

		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
