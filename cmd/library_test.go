package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/castsync/internal/pocketcasts"
)

func TestLibraryCommand(t *testing.T) {
	upstream := setupEnv(t, true)
	upstream.AddEpisode(pocketcasts.EpisodeRecord{UUID: "e-9", Title: "Elsewhere", PodcastUUID: "p-9", PodcastTitle: "Other"})

	out, err := execute(t, "library")
	require.NoError(t, err)
	assert.Contains(t, out, "Library is empty")

	for _, uuid := range []string{"e-1", "e-9"} {
		_, err = execute(t, "episode", "show", uuid)
		require.NoError(t, err, uuid)
	}

	// reading the library needs neither a token nor Pocket Casts
	t.Setenv("CASTSYNC_POCKETCASTS_TOKEN", "")
	upstream.Close()

	out, err = execute(t, "library")
	require.NoError(t, err)
	assert.Contains(t, out, "Pilot")
	assert.Contains(t, out, "Elsewhere")

	out, err = execute(t, "library", "--podcast", "p-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pilot")
	assert.NotContains(t, out, "Elsewhere")

	out, err = execute(t, "library", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\ne-"), out)
}
