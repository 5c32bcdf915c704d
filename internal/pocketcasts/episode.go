package pocketcasts

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Episode is a single podcast episode as seen by the logged-in user.
type Episode struct {
	record EpisodeRecord
	api    API

	mu      sync.Mutex
	podcast *Podcast
}

// NewEpisode wraps record. podcast may be nil; it is then resolved on first
// use through api.
func NewEpisode(record EpisodeRecord, podcast *Podcast, api API) *Episode {
	return &Episode{record: record, podcast: podcast, api: api}
}

func (e *Episode) ID() string { return e.record.UUID }
func (e *Episode) Title() string { return e.record.Title }
func (e *Episode) Duration() int { return int(e.record.Duration) }
func (e *Episode) URL() string { return e.record.URL }
func (e *Episode) Playing() bool { return e.record.PlayingStatus > 0 }
func (e *Episode) Size() int64 { return int64(e.record.Size) }
func (e *Episode) FileType() string { return e.record.FileType }
func (e *Episode) Type() string { return e.record.EpisodeType }
func (e *Episode) Season() int { return int(e.record.EpisodeSeason) }
func (e *Episode) Number() int { return int(e.record.EpisodeNumber) }
func (e *Episode) CurrentPosition() int { return int(e.record.PlayedUpTo) }
func (e *Episode) Deleted() bool { return e.record.IsDeleted }
func (e *Episode) Starred() bool { return e.record.Starred }
func (e *Episode) PodcastTitle() string { return e.record.PodcastTitle }
func (e *Episode) Record() EpisodeRecord { return e.record }
func (e *Episode) PlayingStatus() PlayingStatus {
	return PlayingStatus(e.record.PlayingStatus)
}

// PublishedDate parses the published timestamp. ok is false when the field
// is missing or in an unknown format.
func (e *Episode) PublishedDate() (time.Time, bool) {
	if e.record.Published == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, e.record.Published); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PodcastID returns the id of the episode's podcast, taken from the record or
// from an already known parent.
func (e *Episode) PodcastID() (string, error) {
	if e.record.PodcastUUID != "" {
		return e.record.PodcastUUID, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.podcast != nil && e.podcast.ID() != "" {
		return e.podcast.ID(), nil
	}
	return "", fmt.Errorf("episode %s: %w", e.ID(), ErrNoPodcastID)
}

// Podcast returns the parent podcast, fetching it once if needed.
func (e *Episode) Podcast(ctx context.Context) (*Podcast, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.podcast != nil {
		return e.podcast, nil
	}

	if e.record.PodcastUUID == "" {
		return nil, fmt.Errorf("episode %s: %w", e.ID(), ErrNoPodcastID)
	}
	podcast, err := e.api.GetPodcastByID(ctx, e.record.PodcastUUID)
	if err != nil {
		return nil, fmt.Errorf("resolving podcast of episode %s: %w", e.ID(), err)
	}
	e.podcast = podcast
	return podcast, nil
}
