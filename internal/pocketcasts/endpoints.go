package pocketcasts

import (
	"fmt"
	"strings"
)

const (
	DefaultAPIBase        = "https://api.pocketcasts.com"
	DefaultPodcastAPIBase = "https://podcast-api.pocketcasts.com"
)

var endpoints = map[string]string{
	"login":            "user/login",
	"podcast_list":     "user/podcast/list",
	"podcast_episodes": "user/podcast/episodes",
	"episode":          "user/episode",
	"new_releases":     "user/new_releases",
	"in_progress":      "user/in_progress",
	"starred":          "user/starred",
	"history":          "user/history",
	"up_next":          "up_next/list",
	"play_next":        "up_next/play_next",
	"play_last":        "up_next/play_last",
	"play_status":      "sync/update_episode",
	"episode_star":     "sync/update_episode_star",
	"episode_archive":  "sync/update_episodes_archive",
	"share":            "podcasts/share_link",
}

func endpoint(name string) (string, error) {
	path, ok := endpoints[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEndpoint, name)
	}
	return path, nil
}

// makeURL joins base and a relative path with exactly one slash.
func makeURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
