package models

import (
	"time"

	"gorm.io/gorm"
)

// Episode is the last known state of a Pocket Casts episode, one row per
// episode UUID.
type Episode struct {
	UUID         string `json:"uuid" gorm:"primaryKey;size:64"`
	PodcastUUID  string `json:"podcast_uuid" gorm:"index;size:64"`
	Title        string `json:"title"`
	PodcastTitle string `json:"podcast_title"`
	URL          string `json:"url"`

	Published *time.Time `json:"published,omitempty"`
	Duration  int        `json:"duration"` // seconds
	Size      int64      `json:"size"`     // bytes
	FileType  string     `json:"file_type"`

	EpisodeType string `json:"episode_type"` // full, trailer, bonus
	Season      int    `json:"season"`
	Number      int    `json:"number"`

	// Playback state
	PlayingStatus int  `json:"playing_status"`
	PlayedUpTo    int  `json:"played_up_to"`
	Deleted       bool `json:"deleted"`
	Starred       bool `json:"starred"`

	// Raw is the upstream payload the row was built from
	Raw string `json:"-" gorm:"type:text"`

	// Stale marks a row served from the library because Pocket Casts was unreachable
	Stale bool `json:"stale,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EpisodeAction is one attempted mutation of an episode.
type EpisodeAction struct {
	gorm.Model
	EpisodeUUID string `json:"episode_uuid" gorm:"index;size:64;not null"`
	PodcastUUID string `json:"podcast_uuid" gorm:"size:64"`
	Action      string `json:"action" gorm:"size:32;not null"`
	Position    *int   `json:"position,omitempty"`
	Succeeded   bool   `json:"succeeded"`
	Error       string `json:"error,omitempty"`
}

// All lists every model the library persists.
func All() []any {
	return []any{&Episode{}, &EpisodeAction{}}
}
