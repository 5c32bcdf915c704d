package episodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/pocketcasts"
	"github.com/killallgit/castsync/pkg/download"
)

// Service ties the Pocket Casts client to the local library
type Service struct {
	remote      Remote
	repository  EpisodeRepository
	transformer EpisodeTransformer
}

// NewService creates a new episode service
func NewService(remote Remote, repository EpisodeRepository) *Service {
	return &Service{
		remote:      remote,
		repository:  repository,
		transformer: NewTransformer(),
	}
}

// Fetch loads an episode from Pocket Casts and refreshes its snapshot
func (s *Service) Fetch(ctx context.Context, uuid string) (*pocketcasts.Episode, error) {
	if uuid == "" {
		return nil, NewValidationError("uuid", "episode uuid is required")
	}

	episode, err := s.remote.GetEpisodeByID(ctx, uuid)
	if err != nil {
		if errors.Is(err, pocketcasts.ErrNotFound) {
			return nil, NewNotFoundError(uuid, "Pocket Casts", err)
		}
		return nil, err
	}

	if err := s.repository.UpsertSnapshot(ctx, s.transformer.ToSnapshot(episode)); err != nil {
		logrus.WithError(err).WithField("episode", uuid).Warn("failed to store episode snapshot")
	}
	return episode, nil
}

// Get returns the current state of an episode. When Pocket Casts cannot be
// reached the stored snapshot is returned with Stale set.
func (s *Service) Get(ctx context.Context, uuid string) (*models.Episode, error) {
	episode, err := s.Fetch(ctx, uuid)
	if err == nil {
		return s.transformer.ToSnapshot(episode), nil
	}
	if !canFallBack(err) {
		return nil, err
	}

	snapshot, snapErr := s.repository.GetSnapshot(ctx, uuid)
	if snapErr != nil {
		return nil, err
	}

	logrus.WithError(err).WithField("episode", uuid).Warn("serving episode from local library")
	snapshot.Stale = true
	return snapshot, nil
}

// Apply performs action on the episode, journals the attempt and mirrors a
// successful change into the library. position is only used by progress.
func (s *Service) Apply(ctx context.Context, uuid string, action Action, position int) (*models.Episode, error) {
	handler, ok := actions[action]
	if !ok {
		return nil, NewValidationError("action", fmt.Sprintf("unknown action %q", action))
	}

	episode, err := s.Fetch(ctx, uuid)
	if err != nil {
		return nil, err
	}

	runErr := handler.run(ctx, episode, position)

	entry := &models.EpisodeAction{
		EpisodeUUID: uuid,
		Action:      string(action),
		Succeeded:   runErr == nil,
	}
	entry.PodcastUUID, _ = episode.PodcastID()
	if action == ActionProgress {
		entry.Position = &position
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	if err := s.repository.RecordAction(ctx, entry); err != nil {
		logrus.WithError(err).WithField("episode", uuid).Warn("failed to journal episode action")
	}

	log := logrus.WithFields(logrus.Fields{"episode": uuid, "action": action})
	if runErr != nil {
		log.WithError(runErr).Warn("episode action failed")
		return nil, runErr
	}
	log.Info("episode action applied")

	snapshot := s.transformer.ToSnapshot(episode)
	handler.apply(snapshot, position)
	if err := s.repository.UpsertSnapshot(ctx, snapshot); err != nil {
		logrus.WithError(err).WithField("episode", uuid).Warn("failed to store episode snapshot")
	}
	return snapshot, nil
}

// ShareLink returns the public link of an episode
func (s *Service) ShareLink(ctx context.Context, uuid string) (string, error) {
	episode, err := s.Fetch(ctx, uuid)
	if err != nil {
		return "", err
	}
	return episode.ShareLink(ctx)
}

// ShowNotes returns the show notes of an episode
func (s *Service) ShowNotes(ctx context.Context, uuid string) (string, error) {
	episode, err := s.Fetch(ctx, uuid)
	if err != nil {
		return "", err
	}
	return episode.ShowNotes(ctx)
}

// Download saves the episode audio into dir
func (s *Service) Download(ctx context.Context, uuid string, d *download.Downloader, dir string) (*download.Result, error) {
	episode, err := s.Fetch(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return episode.Download(ctx, d, dir)
}

// Sync fetches one of the user's lists and stores every episode in it
func (s *Service) Sync(ctx context.Context, list pocketcasts.List) ([]*models.Episode, error) {
	episodes, err := s.remote.List(ctx, list)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*models.Episode, 0, len(episodes))
	for _, e := range episodes {
		snapshots = append(snapshots, s.transformer.ToSnapshot(e))
	}

	if err := s.repository.UpsertSnapshots(ctx, snapshots); err != nil {
		return nil, fmt.Errorf("storing %s: %w", list, err)
	}

	logrus.WithFields(logrus.Fields{"list": list, "episodes": len(snapshots)}).Info("list synced")
	return snapshots, nil
}

// Journal returns recorded actions, newest first. An empty uuid lists all.
func (s *Service) Journal(ctx context.Context, uuid string, limit int) ([]models.EpisodeAction, error) {
	return s.repository.ListActions(ctx, uuid, limit)
}

// Snapshots returns stored episodes, newest first. An empty podcast id lists all.
func (s *Service) Snapshots(ctx context.Context, podcastUUID string, limit int) ([]models.Episode, error) {
	return s.repository.ListSnapshots(ctx, podcastUUID, limit)
}

// canFallBack reports whether err means Pocket Casts could not be reached, as
// opposed to Pocket Casts answering or the request never being sent.
func canFallBack(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, pocketcasts.ErrUnreachable) || errors.Is(err, context.DeadlineExceeded)
}
