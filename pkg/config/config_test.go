package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name: "load from settings file",
			content: `
server:
  host: "0.0.0.0"
  port: 9000
pocketcasts:
  rate_limit: 2.5
`,
			check: func(t *testing.T) {
				assert.Equal(t, 9000, GetInt("server.port"))
				assert.Equal(t, "0.0.0.0", GetString("server.host"))
				assert.Equal(t, 2.5, viper.GetFloat64("pocketcasts.rate_limit"))
			},
		},
		{
			name: "environment variable override",
			content: `
server:
  port: 9000
`,
			env: map[string]string{"CASTSYNC_SERVER_PORT": "9191"},
			check: func(t *testing.T) {
				assert.Equal(t, 9191, GetInt("server.port"))
			},
		},
		{
			name: "missing config file uses defaults",
			check: func(t *testing.T) {
				assert.Equal(t, 8787, GetInt("server.port"))
				assert.Equal(t, "https://api.pocketcasts.com", GetString("pocketcasts.api_base"))
				assert.Equal(t, 15*time.Second, GetDuration("pocketcasts.timeout"))
				assert.True(t, GetBool("download.validate_audio"))
			},
		},
		{
			name: "invalid port is rejected",
			content: `
server:
  port: 70000
`,
			wantErr: true,
		},
		{
			name: "negative rate limit is rejected",
			content: `
pocketcasts:
  rate_limit: -1
`,
			wantErr: true,
		},
		{
			name: "negative sync interval is rejected",
			content: `
sync:
  interval: -5m
`,
			wantErr: true,
		},
		{
			name: "non-positive burst is corrected",
			content: `
pocketcasts:
  burst: 0
`,
			check: func(t *testing.T) {
				assert.Equal(t, 1, GetInt("pocketcasts.burst"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "absent.yaml")
			if tt.content != "" {
				path = writeConfig(t, tt.content)
			}

			err := load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfig(t, `
pocketcasts:
  token: "abc"
  podcast_ttl: 30m
database:
  path: "/tmp/library.db"
logging:
  level: debug
  format: json
sync:
  interval: 15m
  lists: [starred, history]
`)
	require.NoError(t, load(path))

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.PocketCasts.Token)
	assert.Equal(t, 30*time.Minute, cfg.PocketCasts.PodcastTTL)
	assert.Equal(t, "/tmp/library.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "castsync", cfg.Auth.KeyringService)
	assert.Equal(t, int64(500*1024*1024), cfg.Download.MaxSize)
	assert.Equal(t, 15*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, []string{"starred", "history"}, cfg.Sync.Lists)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{
		Server:      ServerConfig{Port: 8787},
		PocketCasts: PocketCastsConfig{RateLimit: 1},
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.PocketCasts.Burst)

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 8787
	cfg.Download.MaxSize = -1
	assert.Error(t, cfg.Validate())
}
