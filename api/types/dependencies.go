package types

import (
	"context"

	"github.com/killallgit/castsync/internal/database"
	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/pocketcasts"
	"github.com/killallgit/castsync/internal/services/cache"
	"github.com/killallgit/castsync/internal/services/episodes"
)

// EpisodeService is the part of the episode service the handlers use
type EpisodeService interface {
	Get(ctx context.Context, uuid string) (*models.Episode, error)
	Apply(ctx context.Context, uuid string, action episodes.Action, position int) (*models.Episode, error)
	ShareLink(ctx context.Context, uuid string) (string, error)
	ShowNotes(ctx context.Context, uuid string) (string, error)
	Sync(ctx context.Context, list pocketcasts.List) ([]*models.Episode, error)
	Journal(ctx context.Context, uuid string, limit int) ([]models.EpisodeAction, error)
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB             *database.DB
	EpisodeService EpisodeService
	Cache          cache.Cache
	Version        string
}
