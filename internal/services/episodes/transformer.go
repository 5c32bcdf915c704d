package episodes

import (
	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/pocketcasts"
)

// Transformer handles conversion between API episodes and library rows
type Transformer struct{}

// Ensure Transformer implements EpisodeTransformer interface
var _ EpisodeTransformer = (*Transformer)(nil)

// NewTransformer creates a new transformer instance
func NewTransformer() *Transformer {
	return &Transformer{}
}

// ToSnapshot converts an API episode into a library row. The podcast id is
// left empty when the episode does not carry one; no lookup is made.
func (t *Transformer) ToSnapshot(episode *pocketcasts.Episode) *models.Episode {
	podcastUUID, _ := episode.PodcastID()

	snapshot := &models.Episode{
		UUID:          episode.ID(),
		PodcastUUID:   podcastUUID,
		Title:         episode.Title(),
		PodcastTitle:  episode.PodcastTitle(),
		URL:           episode.URL(),
		Duration:      episode.Duration(),
		Size:          episode.Size(),
		FileType:      episode.FileType(),
		EpisodeType:   episode.Type(),
		Season:        episode.Season(),
		Number:        episode.Number(),
		PlayingStatus: int(episode.PlayingStatus()),
		PlayedUpTo:    episode.CurrentPosition(),
		Deleted:       episode.Deleted(),
		Starred:       episode.Starred(),
		Raw:           string(episode.Record().Raw()),
	}

	if published, ok := episode.PublishedDate(); ok {
		snapshot.Published = &published
	}

	return snapshot
}
