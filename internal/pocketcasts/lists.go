package pocketcasts

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// List names one of the user's episode lists.
type List string

const (
	ListNewReleases List = "new-releases"
	ListInProgress  List = "in-progress"
	ListStarred     List = "starred"
	ListHistory     List = "history"
	ListUpNext      List = "up-next"
)

var listEndpoints = map[List]string{
	ListNewReleases: "new_releases",
	ListInProgress:  "in_progress",
	ListStarred:     "starred",
	ListHistory:     "history",
	ListUpNext:      "up_next",
}

// Lists returns every known list in display order.
func Lists() []List {
	return []List{ListNewReleases, ListInProgress, ListStarred, ListHistory, ListUpNext}
}

// ParseList validates a list name.
func ParseList(s string) (List, error) {
	l := List(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := listEndpoints[l]; !ok {
		return "", fmt.Errorf("unknown list %q (want one of %s)", s, strings.Join(lo.Map(Lists(), func(l List, _ int) string {
			return string(l)
		}), ", "))
	}
	return l, nil
}

type upNextRequest struct {
	Version        int    `json:"version"`
	Model          string `json:"model"`
	ServerModified int64  `json:"serverModified"`
	ShowPlayStatus bool   `json:"showPlayStatus"`
}

type podcastEpisodesRequest struct {
	UUID string `json:"uuid"`
}

type episodeRequest struct {
	UUID string `json:"uuid"`
}

// List fetches one of the user's episode lists.
func (c *Client) List(ctx context.Context, l List) ([]*Episode, error) {
	name, ok := listEndpoints[l]
	if !ok {
		return nil, fmt.Errorf("%w: list %q", ErrUnknownEndpoint, l)
	}

	var body interface{} = struct{}{}
	if l == ListUpNext {
		body = upNextRequest{Version: 2, Model: "webplayer", ShowPlayStatus: true}
	}

	var resp episodesResponse
	if err := c.postEndpoint(ctx, name, body, &resp); err != nil {
		return nil, fmt.Errorf("list %s: %w", l, err)
	}
	return c.wrapEpisodes(resp.Episodes), nil
}

func (c *Client) NewReleases(ctx context.Context) ([]*Episode, error) {
	return c.List(ctx, ListNewReleases)
}

func (c *Client) InProgress(ctx context.Context) ([]*Episode, error) {
	return c.List(ctx, ListInProgress)
}

func (c *Client) Starred(ctx context.Context) ([]*Episode, error) {
	return c.List(ctx, ListStarred)
}

func (c *Client) History(ctx context.Context) ([]*Episode, error) {
	return c.List(ctx, ListHistory)
}

func (c *Client) UpNext(ctx context.Context) ([]*Episode, error) {
	return c.List(ctx, ListUpNext)
}

// PodcastEpisodes lists a podcast's episodes with the user's play state.
func (c *Client) PodcastEpisodes(ctx context.Context, podcastID string) ([]*Episode, error) {
	if podcastID == "" {
		return nil, ErrNoPodcastID
	}

	var resp episodesResponse
	if err := c.postEndpoint(ctx, "podcast_episodes", podcastEpisodesRequest{UUID: podcastID}, &resp); err != nil {
		return nil, fmt.Errorf("episodes of podcast %s: %w", podcastID, err)
	}

	for i := range resp.Episodes {
		if resp.Episodes[i].PodcastUUID == "" {
			resp.Episodes[i].PodcastUUID = podcastID
		}
	}
	return c.wrapEpisodes(resp.Episodes), nil
}

// GetEpisodeByID fetches a single episode with the user's play state.
func (c *Client) GetEpisodeByID(ctx context.Context, id string) (*Episode, error) {
	if id == "" {
		return nil, fmt.Errorf("get episode: %w", ErrNotFound)
	}

	var record EpisodeRecord
	if err := c.postEndpoint(ctx, "episode", episodeRequest{UUID: id}, &record); err != nil {
		return nil, fmt.Errorf("get episode %s: %w", id, err)
	}
	if record.UUID == "" {
		return nil, fmt.Errorf("get episode %s: %w", id, ErrNotFound)
	}
	return NewEpisode(record, nil, c), nil
}

func (c *Client) wrapEpisodes(records []EpisodeRecord) []*Episode {
	return lo.Map(records, func(r EpisodeRecord, _ int) *Episode {
		return NewEpisode(r, nil, c)
	})
}
