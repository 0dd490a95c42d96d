// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLibraryTypes = map[string]bool{
	"movie": true, "show": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if err := checkURL(c.Plex.URL); err != nil {
		errs = append(errs, fmt.Sprintf("plex.url: %v", err))
	}
	for i, lib := range c.Plex.Libraries {
		if lib.ID == "" {
			errs = append(errs, fmt.Sprintf("plex.libraries[%d].id: required", i))
		}
		if !validLibraryTypes[lib.Type] {
			errs = append(errs, fmt.Sprintf("plex.libraries[%d].type: must be movie or show; got %q", i, lib.Type))
		}
	}

	errs = append(errs, validateInstances("radarr", c.Radarr)...)
	errs = append(errs, validateInstances("sonarr", c.Sonarr)...)

	jobs := map[string]string{
		"jobs.availability_sync":  c.Jobs.AvailabilitySync,
		"jobs.plex_full_scan":     c.Jobs.PlexFullScan,
		"jobs.plex_recent_scan":   c.Jobs.PlexRecentScan,
		"jobs.anime_list_refresh": c.Jobs.AnimeListRefresh,
	}
	for _, field := range []string{"jobs.availability_sync", "jobs.plex_full_scan", "jobs.plex_recent_scan", "jobs.anime_list_refresh"} {
		spec := jobs[field]
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Sprintf("%s: invalid cron spec %q: %v", field, spec, err))
		}
	}

	if c.Notifications.Webhook != nil {
		if err := checkURL(c.Notifications.Webhook.URL); err != nil {
			errs = append(errs, fmt.Sprintf("notifications.webhook.url: %v", err))
		}
	}

	return errs
}

func validateInstances[T Instance](section string, instances []T) []string {
	var errs []string
	seen := make(map[int64]bool)
	defaults := make(map[bool]int)

	for i, in := range instances {
		c := in.Common()
		prefix := fmt.Sprintf("%s[%d]", section, i)
		if seen[c.ID] {
			errs = append(errs, fmt.Sprintf("%s.id: duplicate id %d", prefix, c.ID))
		}
		seen[c.ID] = true
		if err := checkURL(c.URL); err != nil {
			errs = append(errs, fmt.Sprintf("%s.url: %v", prefix, err))
		}
		if c.APIKey == "" {
			errs = append(errs, fmt.Sprintf("%s.api_key: required", prefix))
		}
		if c.IsDefault {
			defaults[c.Is4K]++
		}
	}

	for _, is4k := range []bool{false, true} {
		if defaults[is4k] > 1 {
			tier := "standard"
			if is4k {
				tier = "4k"
			}
			errs = append(errs, fmt.Sprintf("%s: more than one default %s instance", section, tier))
		}
	}
	return errs
}

func checkURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http or https URL; got %q", raw)
	}
	return nil
}
