package pocketcasts_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/castsync/internal/pocketcasts"
	"github.com/killallgit/castsync/internal/pocketcasts/pocketcaststest"
	"github.com/killallgit/castsync/internal/services/cache"
)

func seed(s *pocketcaststest.Server) {
	s.AddPodcast(pocketcasts.PodcastRecord{
		UUID:   "p-1",
		Title:  "Show",
		Author: "Host",
		Episodes: []pocketcasts.CatalogueEpisode{
			{UUID: "e-1", Title: "Pilot", URL: "https://cdn.example.com/e-1.mp3", FileType: "audio/mp3", FileSize: 1024, Duration: 3600, Type: "full", Season: 1, Number: 1},
			{UUID: "e-2", Title: "Second", Duration: 1800},
		},
	})
	s.AddEpisode(pocketcasts.EpisodeRecord{
		UUID: "e-1", Title: "Pilot", Duration: 3600, URL: "https://cdn.example.com/e-1.mp3",
		Published: "2021-03-04T05:06:07Z", PlayingStatus: 1, PodcastUUID: "p-1", PodcastTitle: "Show",
	})
	s.AddEpisode(pocketcasts.EpisodeRecord{
		UUID: "e-2", Title: "Second", Duration: 1800, PlayingStatus: 2, PlayedUpTo: 60,
		PodcastUUID: "p-1", PodcastTitle: "Show", Starred: true,
	})
}

func TestClient_Login(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	client := s.Client(false)

	_, err := client.Login(context.Background(), pocketcaststest.Email, "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pocketcasts.ErrUnauthorized))
	assert.Empty(t, client.Token())

	token, err := client.Login(context.Background(), pocketcaststest.Email, pocketcaststest.Password)
	require.NoError(t, err)
	assert.Equal(t, pocketcaststest.Token, token)
	assert.Equal(t, pocketcaststest.Token, client.Token())

	reqs := s.RequestsTo("/user/login")
	require.Len(t, reqs, 2)
	assert.Equal(t, "webplayer", reqs[1].JSON()["scope"])
	assert.Empty(t, reqs[1].Authorization)

	_, err = client.Login(context.Background(), "", "")
	assert.Error(t, err)
}

func TestClient_RequiresToken(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)
	client := s.Client(false)

	_, err := client.GetEpisodeByID(context.Background(), "e-1")
	assert.True(t, errors.Is(err, pocketcasts.ErrNotAuthenticated))
	assert.Empty(t, s.Requests(), "nothing is sent without a token")

	// the catalogue is public
	p, err := client.GetPodcastByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Show", p.Title())
}

func TestClient_GetEpisodeByID(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)
	client := s.Client(true)

	e, err := client.GetEpisodeByID(context.Background(), "e-2")
	require.NoError(t, err)
	assert.Equal(t, "Second", e.Title())
	assert.Equal(t, 60, e.CurrentPosition())
	assert.True(t, e.Starred())
	assert.NotEmpty(t, e.Record().Raw())

	assert.Equal(t, "Bearer "+pocketcaststest.Token, s.RequestsTo("/user/episode")[0].Authorization)

	_, err = client.GetEpisodeByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, pocketcasts.ErrNotFound))
}

func TestClient_EpisodeRoundTrip(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)
	client := s.Client(true)
	ctx := context.Background()

	e, err := client.GetEpisodeByID(ctx, "e-1")
	require.NoError(t, err)

	require.NoError(t, e.UpdateProgress(ctx, 300))
	state, _ := s.Episode("e-1")
	assert.Equal(t, pocketcasts.FlexInt(300), state.PlayedUpTo)
	assert.Equal(t, pocketcasts.FlexInt(pocketcasts.StatusInProgress), state.PlayingStatus)

	require.NoError(t, e.MarkPlayed(ctx))
	require.NoError(t, e.AddStar(ctx))
	require.NoError(t, e.Archive(ctx))
	state, _ = s.Episode("e-1")
	assert.Equal(t, pocketcasts.FlexInt(pocketcasts.StatusPlayed), state.PlayingStatus)
	assert.True(t, state.Starred)
	assert.True(t, state.IsDeleted)

	require.NoError(t, e.Unarchive(ctx))
	require.NoError(t, e.RemoveStar(ctx))
	require.NoError(t, e.MarkUnplayed(ctx))
	state, _ = s.Episode("e-1")
	assert.False(t, state.Starred)
	assert.False(t, state.IsDeleted)
	assert.Equal(t, pocketcasts.FlexInt(0), state.PlayedUpTo)

	s.SetList(pocketcasts.ListUpNext, "e-2")
	require.NoError(t, e.PlayNext(ctx))
	assert.Equal(t, []string{"e-1", "e-2"}, s.ListIDs(pocketcasts.ListUpNext))
	require.NoError(t, e.PlayLast(ctx))
	assert.Equal(t, []string{"e-2", "e-1"}, s.ListIDs(pocketcasts.ListUpNext))

	link, err := e.ShareLink(ctx)
	require.NoError(t, err)
	assert.Equal(t, pocketcaststest.ShareBase+"e-1", link)

	s.SetShowNotes("e-1", "notes")
	notes, err := e.ShowNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "notes", notes)
}

func TestClient_APIErrors(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)
	client := s.Client(true)
	ctx := context.Background()

	e, err := client.GetEpisodeByID(ctx, "e-1")
	require.NoError(t, err)

	s.Fail("/sync/update_episode_star", http.StatusTooManyRequests)
	err = e.AddStar(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pocketcasts.ErrRateLimited))

	var apiErr *pocketcasts.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "/sync/update_episode_star", apiErr.Endpoint)
	assert.Equal(t, "injected failure", apiErr.Message)

	assert.Len(t, s.RequestsTo("/sync/update_episode_star"), 1, "mutations are not retried")

	s.Recover("/sync/update_episode_star")
	require.NoError(t, e.AddStar(ctx))

	expired := pocketcasts.NewClient(pocketcasts.Config{
		APIBase:        s.APIBase(),
		PodcastAPIBase: s.PodcastAPIBase(),
		Token:          "stale",
	})
	_, err = expired.Starred(ctx)
	assert.True(t, errors.Is(err, pocketcasts.ErrUnauthorized))
}

func TestClient_TransportFailureIsUnreachable(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)
	client := s.Client(true)
	ctx := context.Background()

	s.Fail("/user/episode", http.StatusInternalServerError)
	_, err := client.GetEpisodeByID(ctx, "e-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, pocketcasts.ErrUnreachable), "an error status is an answer")

	s.Close()
	_, err = client.GetEpisodeByID(ctx, "e-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pocketcasts.ErrUnreachable))
	assert.False(t, pocketcasts.IsAPIError(err))

	_, err = pocketcasts.NewClient(pocketcasts.Config{APIBase: s.APIBase()}).Starred(ctx)
	assert.True(t, errors.Is(err, pocketcasts.ErrNotAuthenticated))
	assert.False(t, errors.Is(err, pocketcasts.ErrUnreachable), "no request is sent without a token")
}

func TestClient_Lists(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)
	client := s.Client(true)
	ctx := context.Background()

	s.SetList(pocketcasts.ListNewReleases, "e-1", "e-2")
	s.SetList(pocketcasts.ListInProgress, "e-2")
	s.SetList(pocketcasts.ListStarred, "e-2")
	s.SetList(pocketcasts.ListHistory, "e-1")
	s.SetList(pocketcasts.ListUpNext, "e-2", "e-1")

	tests := []struct {
		name  string
		fetch func(context.Context) ([]*pocketcasts.Episode, error)
		want  []string
	}{
		{"new releases", client.NewReleases, []string{"e-1", "e-2"}},
		{"in progress", client.InProgress, []string{"e-2"}},
		{"starred", client.Starred, []string{"e-2"}},
		{"history", client.History, []string{"e-1"}},
		{"up next", client.UpNext, []string{"e-2", "e-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			episodes, err := tt.fetch(ctx)
			require.NoError(t, err)

			var ids []string
			for _, e := range episodes {
				ids = append(ids, e.ID())
				podcastID, err := e.PodcastID()
				require.NoError(t, err)
				assert.Equal(t, "p-1", podcastID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	body := s.RequestsTo("/up_next/list")[0].JSON()
	assert.Equal(t, "webplayer", body["model"])
	assert.Equal(t, float64(2), body["version"])

	_, err := client.List(ctx, pocketcasts.List("favourites"))
	assert.True(t, errors.Is(err, pocketcasts.ErrUnknownEndpoint))
}

func TestParseList(t *testing.T) {
	l, err := pocketcasts.ParseList(" Up-Next ")
	require.NoError(t, err)
	assert.Equal(t, pocketcasts.ListUpNext, l)

	_, err = pocketcasts.ParseList("favourites")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "new-releases")
}

func TestClient_PodcastEpisodesAndSubscriptions(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)
	client := s.Client(true)
	ctx := context.Background()

	episodes, err := client.PodcastEpisodes(ctx, "p-1")
	require.NoError(t, err)
	assert.Len(t, episodes, 2)

	_, err = client.PodcastEpisodes(ctx, "")
	assert.True(t, errors.Is(err, pocketcasts.ErrNoPodcastID))

	subs, err := client.Subscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "p-1", subs[0].ID())
	assert.Equal(t, "Host", subs[0].Author())
	assert.Equal(t, float64(1), s.RequestsTo("/user/podcast/list")[0].JSON()["v"])

	// subscription records carry no episodes, so this fetches the catalogue
	catalogue, err := subs[0].Episodes(ctx)
	require.NoError(t, err)
	require.Len(t, catalogue, 2)
	assert.Len(t, s.RequestsTo("/catalogue/podcast/full/p-1"), 1)

	first := catalogue[0]
	assert.Equal(t, "e-1", first.ID())
	assert.Equal(t, int64(1024), first.Size())
	assert.Equal(t, "full", first.Type())
	parent, err := first.Podcast(ctx)
	require.NoError(t, err)
	assert.Same(t, subs[0], parent)

	_, err = subs[0].Episodes(ctx)
	require.NoError(t, err)
	assert.Len(t, s.RequestsTo("/catalogue/podcast/full/p-1"), 1, "episodes are kept after the first fetch")
}

func TestPodcast_EpisodesConcurrentFirstUse(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)
	podcast := pocketcasts.NewPodcast(pocketcasts.PodcastRecord{UUID: "p-1", Title: "Show"}, s.Client(false))

	var wg sync.WaitGroup
	counts := make([]int, 8)
	errs := make([]error, 8)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			episodes, err := podcast.Episodes(context.Background())
			counts[i], errs[i] = len(episodes), err
			_ = podcast.Record()
		}(i)
	}
	wg.Wait()

	for i := range counts {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, counts[i])
	}
	assert.Len(t, s.RequestsTo("/catalogue/podcast/full/p-1"), 1, "one catalogue fetch serves every caller")
	assert.Len(t, podcast.Record().Episodes, 2)
}

func TestClient_GetPodcastByIDCached(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)

	mc := cache.NewMemoryCache(10, time.Minute)
	defer mc.Stop()

	client := pocketcasts.NewClient(pocketcasts.Config{
		APIBase:        s.APIBase(),
		PodcastAPIBase: s.PodcastAPIBase(),
		Cache:          mc,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := client.GetPodcastByID(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "Show", p.Title())
	}

	assert.Len(t, s.RequestsTo("/catalogue/podcast/full/p-1"), 1)
	metrics := client.Metrics()
	assert.Equal(t, int64(2), metrics.CacheHits)
	assert.Equal(t, int64(1), metrics.CacheMisses)

	_, err := client.GetPodcastByID(ctx, "nope")
	assert.True(t, errors.Is(err, pocketcasts.ErrNotFound))

	_, err = client.GetPodcastByID(ctx, "")
	assert.True(t, errors.Is(err, pocketcasts.ErrNoPodcastID))
}

func TestClient_EmptyAndMalformedBodies(t *testing.T) {
	replies := map[string]string{
		"/empty": "",
		"/bad":   "{not json",
		"/text":  "ignored",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(replies[r.URL.Path]))
	}))
	defer server.Close()

	client := pocketcasts.NewClient(pocketcasts.Config{APIBase: server.URL, Token: "t"})
	ctx := context.Background()

	var out map[string]interface{}
	require.NoError(t, client.PostJSON(ctx, server.URL+"/empty", map[string]int{"v": 1}, &out))
	assert.Nil(t, out)

	assert.Error(t, client.PostJSON(ctx, server.URL+"/bad", nil, &out))

	require.NoError(t, client.Post(ctx, server.URL+"/text", nil))
}

func TestClient_RateLimited(t *testing.T) {
	s := pocketcaststest.NewServer(t)
	seed(s)

	client := pocketcasts.NewClient(pocketcasts.Config{
		APIBase:           s.APIBase(),
		PodcastAPIBase:    s.PodcastAPIBase(),
		Token:             pocketcaststest.Token,
		RequestsPerSecond: 0.001,
		Burst:             1,
	})

	_, err := client.GetEpisodeByID(context.Background(), "e-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.GetEpisodeByID(ctx, "e-1")
	require.Error(t, err)
	assert.Len(t, s.RequestsTo("/user/episode"), 1, "second request waits on the limiter")
}
