// Package pocketcaststest provides an in-memory Pocket Casts API for tests.
package pocketcaststest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/killallgit/castsync/internal/pocketcasts"
)

const (
	Email    = "user@example.com"
	Password = "secret"
	Token    = "test-token"

	// ShareBase prefixes every share link the server hands out
	ShareBase = "https://pca.st/episode/"

	cataloguePrefix = "/catalogue"
)

// Request is a request the server received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

// JSON decodes the request body into a generic map.
func (r Request) JSON() map[string]interface{} {
	var m map[string]interface{}
	_ = json.Unmarshal(r.Body, &m)
	return m
}

// Server is a fake of the user API and the podcast catalogue. The catalogue
// is served under /catalogue on the same listener.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	episodes  map[string]pocketcasts.EpisodeRecord
	podcasts  map[string]pocketcasts.PodcastRecord
	lists     map[string][]string
	showNotes map[string]string
	failures  map[string]int
	requests  []Request
}

// NewServer starts a server that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	s := &Server{
		episodes:  make(map[string]pocketcasts.EpisodeRecord),
		podcasts:  make(map[string]pocketcasts.PodcastRecord),
		lists:     make(map[string][]string),
		showNotes: make(map[string]string),
		failures:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// APIBase is the user API base URL.
func (s *Server) APIBase() string { return s.URL }

// PodcastAPIBase is the catalogue base URL.
func (s *Server) PodcastAPIBase() string { return s.URL + cataloguePrefix }

// Client returns a client pointed at the server, logged in when
// authenticated is true.
func (s *Server) Client(authenticated bool) *pocketcasts.Client {
	cfg := pocketcasts.Config{
		APIBase:        s.APIBase(),
		PodcastAPIBase: s.PodcastAPIBase(),
	}
	if authenticated {
		cfg.Token = Token
	}
	return pocketcasts.NewClient(cfg)
}

// AddPodcast stores a podcast in the catalogue.
func (s *Server) AddPodcast(p pocketcasts.PodcastRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.podcasts[p.UUID] = p
}

// AddEpisode stores an episode in the user API.
func (s *Server) AddEpisode(e pocketcasts.EpisodeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodes[e.UUID] = e
}

// Episode returns the stored state of an episode.
func (s *Server) Episode(id string) (pocketcasts.EpisodeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.episodes[id]
	return e, ok
}

// SetList sets the episode ids returned by a list.
func (s *Server) SetList(l pocketcasts.List, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[string(l)] = ids
}

// ListIDs returns the episode ids of a list.
func (s *Server) ListIDs(l pocketcasts.List) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lists[string(l)]...)
}

// SetShowNotes sets the notes returned for an episode.
func (s *Server) SetShowNotes(id, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showNotes[id] = notes
}

// Fail makes every request to path answer with status until Recover.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Recover clears an injected failure.
func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests received for path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})

	if status, ok := s.failures[r.URL.Path]; ok {
		http.Error(w, "injected failure", status)
		return
	}

	if r.URL.Path == "/user/login" {
		s.login(w, body)
		return
	}

	// podcast/full is public, everything else needs the token
	public := strings.HasPrefix(r.URL.Path, cataloguePrefix+"/podcast/full/")
	if !public && r.Header.Get("Authorization") != "Bearer "+Token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if strings.HasPrefix(r.URL.Path, cataloguePrefix+"/") {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.catalogue(w, strings.TrimPrefix(r.URL.Path, cataloguePrefix))
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/user/episode":
		var req struct {
			UUID string `json:"uuid"`
		}
		_ = json.Unmarshal(body, &req)
		e, ok := s.episodes[req.UUID]
		if !ok {
			http.Error(w, "episode not found", http.StatusNotFound)
			return
		}
		writeJSON(w, e)

	case "/user/new_releases":
		s.writeList(w, pocketcasts.ListNewReleases)
	case "/user/in_progress":
		s.writeList(w, pocketcasts.ListInProgress)
	case "/user/starred":
		s.writeList(w, pocketcasts.ListStarred)
	case "/user/history":
		s.writeList(w, pocketcasts.ListHistory)
	case "/up_next/list":
		s.writeUpNext(w)

	case "/user/podcast/list":
		podcasts := make([]pocketcasts.PodcastRecord, 0, len(s.podcasts))
		for _, p := range s.podcasts {
			p.Episodes = nil
			podcasts = append(podcasts, p)
		}
		writeJSON(w, map[string]interface{}{"podcasts": podcasts})

	case "/user/podcast/episodes":
		var req struct {
			UUID string `json:"uuid"`
		}
		_ = json.Unmarshal(body, &req)
		episodes := []pocketcasts.EpisodeRecord{}
		for _, e := range s.episodes {
			if e.PodcastUUID == req.UUID {
				episodes = append(episodes, e)
			}
		}
		writeJSON(w, map[string]interface{}{"episodes": episodes})

	case "/sync/update_episode":
		var req struct {
			UUID     string `json:"uuid"`
			Status   int    `json:"status"`
			Position *int   `json:"position"`
		}
		_ = json.Unmarshal(body, &req)
		s.updateEpisode(w, req.UUID, func(e *pocketcasts.EpisodeRecord) {
			e.PlayingStatus = pocketcasts.FlexInt(req.Status)
			if req.Position != nil {
				e.PlayedUpTo = pocketcasts.FlexInt(*req.Position)
			}
		})

	case "/sync/update_episode_star":
		var req struct {
			UUID string `json:"uuid"`
			Star bool   `json:"star"`
		}
		_ = json.Unmarshal(body, &req)
		s.updateEpisode(w, req.UUID, func(e *pocketcasts.EpisodeRecord) {
			e.Starred = req.Star
		})

	case "/sync/update_episodes_archive":
		var req struct {
			Episodes []struct {
				UUID string `json:"uuid"`
			} `json:"episodes"`
			Archive bool `json:"archive"`
		}
		_ = json.Unmarshal(body, &req)
		for _, ref := range req.Episodes {
			if e, ok := s.episodes[ref.UUID]; ok {
				e.IsDeleted = req.Archive
				s.episodes[ref.UUID] = e
			}
		}
		writeJSON(w, map[string]interface{}{})

	case "/up_next/play_next", "/up_next/play_last":
		var req struct {
			Episode struct {
				UUID string `json:"uuid"`
			} `json:"episode"`
		}
		_ = json.Unmarshal(body, &req)
		key := string(pocketcasts.ListUpNext)
		queue := removeID(s.lists[key], req.Episode.UUID)
		if r.URL.Path == "/up_next/play_next" {
			queue = append([]string{req.Episode.UUID}, queue...)
		} else {
			queue = append(queue, req.Episode.UUID)
		}
		s.lists[key] = queue
		writeJSON(w, map[string]interface{}{})

	case "/podcasts/share_link":
		var req struct {
			Episode string `json:"episode"`
		}
		_ = json.Unmarshal(body, &req)
		writeJSON(w, map[string]string{"url": ShareBase + req.Episode})

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) login(w http.ResponseWriter, body []byte) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.Unmarshal(body, &req)
	if req.Email != Email || req.Password != Password {
		http.Error(w, `{"errorMessage":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]string{"token": Token, "uuid": "user-1"})
}

func (s *Server) catalogue(w http.ResponseWriter, path string) {
	switch {
	case strings.HasPrefix(path, "/podcast/full/"):
		p, ok := s.podcasts[strings.TrimPrefix(path, "/podcast/full/")]
		if !ok {
			http.Error(w, "podcast not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]interface{}{"podcast": p})
	case strings.HasPrefix(path, "/episode/show_notes/"):
		notes := s.showNotes[strings.TrimPrefix(path, "/episode/show_notes/")]
		writeJSON(w, map[string]string{"show_notes": notes})
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) writeList(w http.ResponseWriter, l pocketcasts.List) {
	episodes := []pocketcasts.EpisodeRecord{}
	for _, id := range s.lists[string(l)] {
		if e, ok := s.episodes[id]; ok {
			episodes = append(episodes, e)
		}
	}
	writeJSON(w, map[string]interface{}{"episodes": episodes})
}

// up_next/list uses "podcast" for the podcast reference
func (s *Server) writeUpNext(w http.ResponseWriter) {
	episodes := []map[string]interface{}{}
	for _, id := range s.lists[string(pocketcasts.ListUpNext)] {
		e, ok := s.episodes[id]
		if !ok {
			continue
		}
		episodes = append(episodes, map[string]interface{}{
			"uuid":      e.UUID,
			"title":     e.Title,
			"url":       e.URL,
			"podcast":   e.PodcastUUID,
			"published": e.Published,
		})
	}
	writeJSON(w, map[string]interface{}{"episodes": episodes})
}

func (s *Server) updateEpisode(w http.ResponseWriter, id string, update func(*pocketcasts.EpisodeRecord)) {
	e, ok := s.episodes[id]
	if !ok {
		http.Error(w, "episode not found", http.StatusNotFound)
		return
	}
	update(&e)
	s.episodes[id] = e
	writeJSON(w, map[string]interface{}{})
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
