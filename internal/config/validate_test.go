// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := &Config{
		Radarr: []RadarrConfig{
			{ServarrConfig: ServarrConfig{ID: 0, URL: "http://radarr:7878", APIKey: "a", IsDefault: true}},
			{ServarrConfig: ServarrConfig{ID: 1, URL: "http://radarr4k:7878", APIKey: "b", IsDefault: true, Is4K: true}},
		},
		Sonarr: []SonarrConfig{
			{ServarrConfig: ServarrConfig{ID: 0, URL: "http://sonarr:8989", APIKey: "c", IsDefault: true}},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func hasError(errs []string, prefix string) bool {
	for _, e := range errs {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	assert.True(t, hasError(cfg.Validate(), "server.port"))
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Server.LogLevel = "verbose"
	assert.True(t, hasError(cfg.Validate(), "server.log_level"))
}

func TestValidate_InstanceFields(t *testing.T) {
	cfg := validConfig()
	cfg.Sonarr[0].URL = ""
	cfg.Sonarr[0].APIKey = ""

	errs := cfg.Validate()
	assert.True(t, hasError(errs, "sonarr[0].url"))
	assert.True(t, hasError(errs, "sonarr[0].api_key"))
}

func TestValidate_InstanceURLScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Radarr[0].URL = "ftp://radarr"
	assert.True(t, hasError(cfg.Validate(), "radarr[0].url"))
}

func TestValidate_DuplicateInstanceID(t *testing.T) {
	cfg := validConfig()
	cfg.Radarr[1].ID = 0
	assert.True(t, hasError(cfg.Validate(), "radarr[1].id"))
}

func TestValidate_TwoDefaultsSameTier(t *testing.T) {
	cfg := validConfig()
	cfg.Radarr[1].Is4K = false
	errs := cfg.Validate()
	assert.Contains(t, errs, "radarr: more than one default standard instance")
}

func TestValidate_CronSpec(t *testing.T) {
	cfg := validConfig()
	cfg.Jobs.PlexRecentScan = "every five minutes"
	assert.True(t, hasError(cfg.Validate(), "jobs.plex_recent_scan"))
}

func TestValidate_PlexLibraryType(t *testing.T) {
	cfg := validConfig()
	cfg.Plex.Libraries = []PlexLibrary{{ID: "1", Type: "music"}}
	assert.True(t, hasError(cfg.Validate(), "plex.libraries[0].type"))
}

func TestValidate_Webhook(t *testing.T) {
	cfg := validConfig()
	cfg.Notifications.Webhook = &WebhookConfig{}
	assert.True(t, hasError(cfg.Validate(), "notifications.webhook.url"))
}
