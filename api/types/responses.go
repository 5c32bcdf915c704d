package types

import (
	"github.com/samber/lo"

	"github.com/killallgit/castsync/internal/models"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Episode is the bridge's view of an episode
type Episode struct {
	UUID          string `json:"uuid"`
	PodcastUUID   string `json:"podcastUuid"`
	Title         string `json:"title"`
	PodcastTitle  string `json:"podcastTitle,omitempty"`
	AudioURL      string `json:"audioUrl"`
	Duration      int    `json:"duration"`
	PublishedAt   int64  `json:"publishedAt,omitempty"` // Unix timestamp
	FileType      string `json:"fileType,omitempty"`
	EpisodeType   string `json:"episodeType,omitempty"`
	Season        int    `json:"season,omitempty"`
	Number        int    `json:"number,omitempty"`
	PlayingStatus int    `json:"playingStatus"`
	PlayedUpTo    int    `json:"playedUpTo"`
	Starred       bool   `json:"starred"`
	Archived      bool   `json:"archived"`
	Stale         bool   `json:"stale,omitempty"`
}

// Action is one journal entry
type Action struct {
	ID          uint   `json:"id"`
	EpisodeUUID string `json:"episodeUuid"`
	PodcastUUID string `json:"podcastUuid,omitempty"`
	Action      string `json:"action"`
	Position    *int   `json:"position,omitempty"`
	Succeeded   bool   `json:"succeeded"`
	Error       string `json:"error,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// SingleEpisodeResponse for getting a single episode
type SingleEpisodeResponse struct {
	BaseResponse
	Episode *Episode `json:"episode"`
}

// EpisodesResponse for episode lists
type EpisodesResponse struct {
	BaseResponse
	List     string    `json:"list,omitempty"`
	Episodes []Episode `json:"episodes"`
	Count    int       `json:"count"`
}

// ShareResponse carries an episode share link
type ShareResponse struct {
	BaseResponse
	UUID string `json:"uuid"`
	URL  string `json:"url"`
}

// NotesResponse carries episode show notes
type NotesResponse struct {
	BaseResponse
	UUID  string `json:"uuid"`
	Notes string `json:"notes"`
}

// JournalResponse lists recorded actions
type JournalResponse struct {
	BaseResponse
	Actions []Action `json:"actions"`
	Count   int      `json:"count"`
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// FromModel converts a stored episode into its API form
func FromModel(m *models.Episode) *Episode {
	if m == nil {
		return nil
	}
	e := &Episode{
		UUID:          m.UUID,
		PodcastUUID:   m.PodcastUUID,
		Title:         m.Title,
		PodcastTitle:  m.PodcastTitle,
		AudioURL:      m.URL,
		Duration:      m.Duration,
		FileType:      m.FileType,
		EpisodeType:   m.EpisodeType,
		Season:        m.Season,
		Number:        m.Number,
		PlayingStatus: m.PlayingStatus,
		PlayedUpTo:    m.PlayedUpTo,
		Starred:       m.Starred,
		Archived:      m.Deleted,
		Stale:         m.Stale,
	}
	if m.Published != nil {
		e.PublishedAt = m.Published.Unix()
	}
	return e
}

// FromModels converts a list of stored episodes
func FromModels(ms []*models.Episode) []Episode {
	return lo.Map(ms, func(m *models.Episode, _ int) Episode {
		return *FromModel(m)
	})
}

// FromActions converts journal rows
func FromActions(as []models.EpisodeAction) []Action {
	return lo.Map(as, func(a models.EpisodeAction, _ int) Action {
		return Action{
			ID:          a.ID,
			EpisodeUUID: a.EpisodeUUID,
			PodcastUUID: a.PodcastUUID,
			Action:      a.Action,
			Position:    a.Position,
			Succeeded:   a.Succeeded,
			Error:       a.Error,
			CreatedAt:   a.CreatedAt.Unix(),
		}
	})
}
