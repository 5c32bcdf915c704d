package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/killallgit/castsync/internal/pocketcasts"
	"github.com/killallgit/castsync/internal/pocketcasts/pocketcaststest"
)

// resetFlags restores every flag to its default, since the command tree is
// shared between tests
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	resetFlags(root)

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	root.SetContext(context.Background())

	err := root.Execute()
	return buf.String(), err
}

// setupEnv points configuration at a fake Pocket Casts and a temporary library
func setupEnv(t *testing.T, authenticated bool) *pocketcaststest.Server {
	t.Helper()
	keyring.MockInit()

	upstream := pocketcaststest.NewServer(t)
	upstream.AddEpisode(pocketcasts.EpisodeRecord{
		UUID: "e-1", Title: "Pilot", Duration: 3600, PodcastUUID: "p-1", PodcastTitle: "Show",
		URL: "https://cdn.example.com/e-1.mp3", PlayingStatus: 1,
	})
	upstream.AddEpisode(pocketcasts.EpisodeRecord{UUID: "e-2", Title: "Second", PodcastUUID: "p-1", Starred: true})
	upstream.AddPodcast(pocketcasts.PodcastRecord{
		UUID: "p-1", Title: "Show", Author: "Host",
		Episodes: []pocketcasts.CatalogueEpisode{
			{UUID: "e-1", Title: "Pilot", Duration: 3600},
			{UUID: "e-2", Title: "Second", Duration: 1800},
		},
	})

	dir := t.TempDir()
	t.Setenv("CASTSYNC_POCKETCASTS_API_BASE", upstream.APIBase())
	t.Setenv("CASTSYNC_POCKETCASTS_PODCAST_API_BASE", upstream.PodcastAPIBase())
	t.Setenv("CASTSYNC_POCKETCASTS_RATE_LIMIT", "0")
	t.Setenv("CASTSYNC_DATABASE_PATH", filepath.Join(dir, "library.db"))
	t.Setenv("CASTSYNC_DOWNLOAD_DIR", filepath.Join(dir, "downloads"))
	if authenticated {
		t.Setenv("CASTSYNC_POCKETCASTS_TOKEN", pocketcaststest.Token)
	} else {
		t.Setenv("CASTSYNC_POCKETCASTS_TOKEN", "")
	}
	return upstream
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{"root command without args shows help", []string{}, false, "castsync"},
		{"root command with --help", []string{"--help"}, false, "Available Commands:"},
		{"root command with invalid flag", []string{"--invalid-flag"}, true, ""},
		{"invalid log level", []string{"journal", "--log-level", "loud"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t, false)
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.expectedOutput)
		})
	}
}

func TestLogFlags(t *testing.T) {
	cmd := NewRootCmd()

	logFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logFlag)
	assert.Equal(t, "", logFlag.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("json-logs"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:      v"+Version)
	assert.Contains(t, out, "OS/Arch:")

	out, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "v"+Version+"\n", out)
}

func TestLoginLogout(t *testing.T) {
	upstream := setupEnv(t, false)

	_, err := execute(t, "login", "--email", pocketcaststest.Email, "--password", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, pocketcasts.ErrUnauthorized)

	out, err := execute(t, "login", "--email", pocketcaststest.Email, "--password", pocketcaststest.Password)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as "+pocketcaststest.Email)
	assert.Len(t, upstream.RequestsTo("/user/login"), 2)

	// the stored token is picked up without CASTSYNC_POCKETCASTS_TOKEN
	out, err = execute(t, "episode", "show", "e-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pilot")

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = execute(t, "episode", "show", "e-1")
	assert.Error(t, err)

	_, err = execute(t, "login")
	assert.Error(t, err, "credentials are required")
}
