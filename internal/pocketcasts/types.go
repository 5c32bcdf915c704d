package pocketcasts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PlayingStatus values used by sync/update_episode
type PlayingStatus int

const (
	StatusUnplayed   PlayingStatus = 1
	StatusInProgress PlayingStatus = 2
	StatusPlayed     PlayingStatus = 3
)

// FlexInt decodes a JSON number, numeric string, null or "" into an int64.
// Pocket Casts is not consistent about which one it sends.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	s := string(data)
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("decoding flexible int %s: %w", s, err)
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*f = 0
			return nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decoding flexible int %s: %w", string(data), err)
	}
	*f = FlexInt(int64(v))
	return nil
}

// EpisodeRecord mirrors an episode object as returned by the user API.
type EpisodeRecord struct {
	UUID          string  `json:"uuid"`
	Title         string  `json:"title"`
	Duration      FlexInt `json:"duration"`
	Published     string  `json:"published"`
	URL           string  `json:"url"`
	PlayingStatus FlexInt `json:"playingStatus"`
	Size          FlexInt `json:"size"`
	FileType      string  `json:"fileType"`
	EpisodeType   string  `json:"episodeType"`
	EpisodeSeason FlexInt `json:"episodeSeason"`
	EpisodeNumber FlexInt `json:"episodeNumber"`
	PlayedUpTo    FlexInt `json:"playedUpTo"`
	IsDeleted     bool    `json:"isDeleted"`
	Starred       bool    `json:"starred"`
	PodcastUUID   string  `json:"podcastUuid"`
	PodcastTitle  string  `json:"podcastTitle"`

	// up_next/list names the podcast reference "podcast"
	PodcastRef string `json:"podcast,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the record and keeps the payload verbatim.
func (r *EpisodeRecord) UnmarshalJSON(data []byte) error {
	type plain EpisodeRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = EpisodeRecord(p)
	r.raw = append(json.RawMessage(nil), data...)
	if r.PodcastUUID == "" {
		r.PodcastUUID = r.PodcastRef
	}
	return nil
}

// Raw returns the payload the record was decoded from, if any.
func (r EpisodeRecord) Raw() json.RawMessage {
	return r.raw
}

type episodesResponse struct {
	Episodes []EpisodeRecord `json:"episodes"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Scope    string `json:"scope"`
}

type loginResponse struct {
	Token string `json:"token"`
	UUID  string `json:"uuid"`
}

type episodeRef struct {
	UUID    string `json:"uuid"`
	Podcast string `json:"podcast"`
}

type playStatusRequest struct {
	UUID     string        `json:"uuid"`
	Podcast  string        `json:"podcast"`
	Status   PlayingStatus `json:"status"`
	Position *int          `json:"position,omitempty"`
}

type starRequest struct {
	UUID    string `json:"uuid"`
	Podcast string `json:"podcast"`
	Star    bool   `json:"star"`
}

type archiveRequest struct {
	Episodes []episodeRef `json:"episodes"`
	Archive  bool         `json:"archive"`
}

type queuedEpisode struct {
	UUID      string `json:"uuid"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Podcast   string `json:"podcast"`
	Published string `json:"published"`
}

type queueRequest struct {
	Version int           `json:"version"`
	Episode queuedEpisode `json:"episode"`
}

type shareRequest struct {
	Episode string `json:"episode"`
	Podcast string `json:"podcast"`
}

type shareResponse struct {
	URL string `json:"url"`
}

type showNotesResponse struct {
	ShowNotes string `json:"show_notes"`
}
