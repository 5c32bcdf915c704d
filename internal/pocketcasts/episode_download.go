package pocketcasts

import (
	"context"
	"fmt"

	"github.com/killallgit/castsync/pkg/download"
)

// Download saves the episode audio into dir, named after the episode title.
func (e *Episode) Download(ctx context.Context, d *download.Downloader, dir string) (*download.Result, error) {
	if e.URL() == "" {
		return nil, fmt.Errorf("episode %s: %w", e.ID(), ErrNoAudioURL)
	}

	name := e.Title()
	if name == "" {
		name = e.ID()
	}

	result, err := d.Download(ctx, e.URL(), dir, name)
	if err != nil {
		return nil, fmt.Errorf("downloading episode %s: %w", e.ID(), err)
	}
	return result, nil
}
