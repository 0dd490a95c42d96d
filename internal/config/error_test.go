package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "nothing recorded",
			err:  ConfigError{Path: "/etc/mediarr/config.toml"},
			want: "",
		},
		{
			name: "missing env",
			err:  ConfigError{Path: "/etc/mediarr/config.toml", Missing: []string{"TMDB_API_KEY", "PLEX_TOKEN"}},
			want: "invalid config /etc/mediarr/config.toml\n  unresolved environment variables: TMDB_API_KEY, PLEX_TOKEN",
		},
		{
			name: "validation only, no path",
			err:  ConfigError{Errors: []string{"server.port: must be 1-65535", "radarr[0].api_key: required"}},
			want: "invalid config\n  server.port: must be 1-65535\n  radarr[0].api_key: required",
		},
		{
			name: "both",
			err:  ConfigError{Path: "c.toml", Missing: []string{"X"}, Errors: []string{"jobs.plex_full_scan: bad cron"}},
			want: "invalid config c.toml\n  unresolved environment variables: X\n  jobs.plex_full_scan: bad cron",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.want != "", tt.err.HasErrors())
		})
	}
}
