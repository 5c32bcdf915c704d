package pocketcasts

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// ShareLink asks Pocket Casts for a public link to the episode. An empty
// string means the server returned no link.
func (e *Episode) ShareLink(ctx context.Context) (string, error) {
	podcastID, err := e.PodcastID()
	if err != nil {
		return "", err
	}
	path, err := endpoint("share")
	if err != nil {
		return "", err
	}

	var resp shareResponse
	req := shareRequest{Episode: e.ID(), Podcast: podcastID}
	if err := e.api.PostJSON(ctx, makeURL(e.api.APIBase(), path), req, &resp); err != nil {
		return "", fmt.Errorf("share link for episode %s: %w", e.ID(), err)
	}
	return resp.URL, nil
}

// ShowNotes fetches the episode's show notes, "" when there are none.
func (e *Episode) ShowNotes(ctx context.Context) (string, error) {
	notesURL := makeURL(e.api.PodcastAPIBase(), "episode/show_notes/"+url.PathEscape(e.ID()))

	var resp showNotesResponse
	if err := e.api.GetJSON(ctx, notesURL, true, &resp); err != nil {
		return "", fmt.Errorf("show notes for episode %s: %w", e.ID(), err)
	}
	return resp.ShowNotes, nil
}

// UpdateProgress records position seconds as the playback position.
func (e *Episode) UpdateProgress(ctx context.Context, position int) error {
	if position < 0 {
		return fmt.Errorf("episode %s: %w: %d", e.ID(), ErrInvalidProgress, position)
	}
	if d := e.Duration(); d > 0 && position > d {
		return fmt.Errorf("episode %s: %w: %d > %d", e.ID(), ErrProgressExceedsDuration, position, d)
	}
	return e.setPlayStatus(ctx, StatusInProgress, &position)
}

// MarkPlayed marks the episode as played.
func (e *Episode) MarkPlayed(ctx context.Context) error {
	return e.setPlayStatus(ctx, StatusPlayed, nil)
}

// MarkUnplayed marks the episode as unplayed and rewinds it.
func (e *Episode) MarkUnplayed(ctx context.Context) error {
	zero := 0
	return e.setPlayStatus(ctx, StatusUnplayed, &zero)
}

// AddStar stars the episode.
func (e *Episode) AddStar(ctx context.Context) error {
	return e.setStar(ctx, true)
}

// RemoveStar removes the episode's star.
func (e *Episode) RemoveStar(ctx context.Context) error {
	return e.setStar(ctx, false)
}

// Archive archives the episode.
func (e *Episode) Archive(ctx context.Context) error {
	return e.setArchived(ctx, true)
}

// Unarchive restores an archived episode.
func (e *Episode) Unarchive(ctx context.Context) error {
	return e.setArchived(ctx, false)
}

// PlayNext puts the episode at the front of the Up Next queue.
func (e *Episode) PlayNext(ctx context.Context) error {
	return e.enqueue(ctx, "play_next")
}

// PlayLast puts the episode at the end of the Up Next queue.
func (e *Episode) PlayLast(ctx context.Context) error {
	return e.enqueue(ctx, "play_last")
}

func (e *Episode) setPlayStatus(ctx context.Context, status PlayingStatus, position *int) error {
	podcastID, err := e.PodcastID()
	if err != nil {
		return err
	}
	return e.post(ctx, "play_status", playStatusRequest{
		UUID:     e.ID(),
		Podcast:  podcastID,
		Status:   status,
		Position: position,
	})
}

func (e *Episode) setStar(ctx context.Context, star bool) error {
	podcastID, err := e.PodcastID()
	if err != nil {
		return err
	}
	return e.post(ctx, "episode_star", starRequest{UUID: e.ID(), Podcast: podcastID, Star: star})
}

func (e *Episode) setArchived(ctx context.Context, archive bool) error {
	podcastID, err := e.PodcastID()
	if err != nil {
		return err
	}
	return e.post(ctx, "episode_archive", archiveRequest{
		Episodes: []episodeRef{{UUID: e.ID(), Podcast: podcastID}},
		Archive:  archive,
	})
}

func (e *Episode) enqueue(ctx context.Context, name string) error {
	podcastID, err := e.PodcastID()
	if err != nil {
		return err
	}
	return e.post(ctx, name, queueRequest{
		Version: 2,
		Episode: queuedEpisode{
			UUID:      e.ID(),
			Title:     e.Title(),
			URL:       e.URL(),
			Podcast:   podcastID,
			Published: e.record.Published,
		},
	})
}

func (e *Episode) post(ctx context.Context, name string, body interface{}) error {
	path, err := endpoint(name)
	if err != nil {
		return err
	}
	if err := e.api.Post(ctx, makeURL(e.api.APIBase(), path), body); err != nil {
		return fmt.Errorf("%s for episode %s: %w", name, e.ID(), err)
	}
	logrus.WithFields(logrus.Fields{
		"episode": e.ID(),
		"action":  name,
	}).Debug("episode updated")
	return nil
}
