package episodes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/killallgit/castsync/internal/models"
)

const defaultListLimit = 50

type Repository struct {
	db *gorm.DB
}

// Ensure Repository implements EpisodeRepository interface
var _ EpisodeRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSnapshot inserts the episode or overwrites the stored row
func (r *Repository) UpsertSnapshot(ctx context.Context, episode *models.Episode) error {
	if episode == nil || episode.UUID == "" {
		return NewValidationError("uuid", "episode snapshot needs a uuid")
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(episode).Error; err != nil {
		return fmt.Errorf("upserting episode %s: %w", episode.UUID, err)
	}
	return nil
}

// UpsertSnapshots stores a batch of snapshots in one transaction
func (r *Repository) UpsertSnapshots(ctx context.Context, episodes []*models.Episode) error {
	if len(episodes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return NewRepository(tx).upsertAll(ctx, episodes)
	})
}

func (r *Repository) upsertAll(ctx context.Context, episodes []*models.Episode) error {
	for _, episode := range episodes {
		if err := r.UpsertSnapshot(ctx, episode); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetSnapshot(ctx context.Context, uuid string) (*models.Episode, error) {
	var episode models.Episode
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&episode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(uuid, "library", nil)
		}
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	return &episode, nil
}

// ListSnapshots returns stored episodes, newest first, optionally limited to
// one podcast
func (r *Repository) ListSnapshots(ctx context.Context, podcastUUID string, limit int) ([]models.Episode, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := r.db.WithContext(ctx).Model(&models.Episode{})
	if podcastUUID != "" {
		query = query.Where("podcast_uuid = ?", podcastUUID)
	}

	var episodes []models.Episode
	if err := query.
		Order("published DESC").
		Order("updated_at DESC").
		Limit(limit).
		Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("listing episodes: %w", err)
	}
	return episodes, nil
}

func (r *Repository) RecordAction(ctx context.Context, action *models.EpisodeAction) error {
	if err := r.db.WithContext(ctx).Create(action).Error; err != nil {
		return fmt.Errorf("recording %s for episode %s: %w", action.Action, action.EpisodeUUID, err)
	}
	return nil
}

// ListActions returns journal entries, most recent first, optionally limited
// to one episode
func (r *Repository) ListActions(ctx context.Context, episodeUUID string, limit int) ([]models.EpisodeAction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := r.db.WithContext(ctx).Model(&models.EpisodeAction{})
	if episodeUUID != "" {
		query = query.Where("episode_uuid = ?", episodeUUID)
	}

	var actions []models.EpisodeAction
	if err := query.Order("id DESC").Limit(limit).Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("listing episode actions: %w", err)
	}
	return actions, nil
}
