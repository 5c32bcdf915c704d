package episodes

import (
	"context"

	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/pocketcasts"
)

// Remote is the part of the Pocket Casts client the service needs
type Remote interface {
	GetEpisodeByID(ctx context.Context, id string) (*pocketcasts.Episode, error)
	List(ctx context.Context, l pocketcasts.List) ([]*pocketcasts.Episode, error)
}

// EpisodeRepository defines the interface for the local episode library
type EpisodeRepository interface {
	// Snapshots
	UpsertSnapshot(ctx context.Context, episode *models.Episode) error
	UpsertSnapshots(ctx context.Context, episodes []*models.Episode) error
	GetSnapshot(ctx context.Context, uuid string) (*models.Episode, error)
	ListSnapshots(ctx context.Context, podcastUUID string, limit int) ([]models.Episode, error)

	// Action journal
	RecordAction(ctx context.Context, action *models.EpisodeAction) error
	ListActions(ctx context.Context, episodeUUID string, limit int) ([]models.EpisodeAction, error)
}

// EpisodeTransformer converts API episodes into library rows
type EpisodeTransformer interface {
	ToSnapshot(episode *pocketcasts.Episode) *models.Episode
}
