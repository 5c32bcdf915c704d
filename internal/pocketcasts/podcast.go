package pocketcasts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// PodcastRecord mirrors a podcast object from either the user API or the
// podcast catalogue.
type PodcastRecord struct {
	UUID        string             `json:"uuid"`
	Title       string             `json:"title"`
	Author      string             `json:"author"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Episodes    []CatalogueEpisode `json:"episodes,omitempty"`
}

// CatalogueEpisode is an episode as embedded in podcast/full responses.
type CatalogueEpisode struct {
	UUID      string  `json:"uuid"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	FileType  string  `json:"file_type"`
	FileSize  FlexInt `json:"file_size"`
	Duration  FlexInt `json:"duration"`
	Published string  `json:"published"`
	Type      string  `json:"type"`
	Season    FlexInt `json:"season"`
	Number    FlexInt `json:"number"`
}

func (e CatalogueEpisode) record(p PodcastRecord) EpisodeRecord {
	return EpisodeRecord{
		UUID:          e.UUID,
		Title:         e.Title,
		Duration:      e.Duration,
		Published:     e.Published,
		URL:           e.URL,
		Size:          e.FileSize,
		FileType:      e.FileType,
		EpisodeType:   e.Type,
		EpisodeSeason: e.Season,
		EpisodeNumber: e.Number,
		PodcastUUID:   p.UUID,
		PodcastTitle:  p.Title,
	}
}

type podcastFullResponse struct {
	Podcast PodcastRecord `json:"podcast"`
}

type subscriptionsRequest struct {
	V int `json:"v"`
}

type subscriptionsResponse struct {
	Podcasts []PodcastRecord `json:"podcasts"`
}

// Podcast is a show in the Pocket Casts catalogue.
type Podcast struct {
	api API

	// mu guards record.Episodes, which Episodes fills in lazily
	mu     sync.Mutex
	record PodcastRecord
}

// NewPodcast wraps a podcast record.
func NewPodcast(record PodcastRecord, api API) *Podcast {
	return &Podcast{record: record, api: api}
}

func (p *Podcast) ID() string { return p.record.UUID }
func (p *Podcast) Title() string { return p.record.Title }
func (p *Podcast) Author() string { return p.record.Author }
func (p *Podcast) Description() string { return p.record.Description }
func (p *Podcast) URL() string { return p.record.URL }

func (p *Podcast) Record() PodcastRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record
}

// Episodes returns the podcast's episodes with the podcast attached as their
// parent. Records without embedded episodes are fetched in full first.
func (p *Podcast) Episodes(ctx context.Context) ([]*Episode, error) {
	p.mu.Lock()
	if p.record.Episodes == nil {
		full, err := p.api.GetPodcastByID(ctx, p.ID())
		if err != nil {
			p.mu.Unlock()
			return nil, fmt.Errorf("fetching episodes of podcast %s: %w", p.ID(), err)
		}
		p.record.Episodes = full.Record().Episodes
	}
	record := p.record
	p.mu.Unlock()

	return lo.Map(record.Episodes, func(e CatalogueEpisode, _ int) *Episode {
		return NewEpisode(e.record(record), p, p.api)
	}), nil
}

// GetPodcastByID fetches a podcast with its episode list from the catalogue.
func (c *Client) GetPodcastByID(ctx context.Context, id string) (*Podcast, error) {
	if id == "" {
		return nil, ErrNoPodcastID
	}

	key := "podcast:" + id
	if c.config.Cache != nil {
		if data, ok := c.config.Cache.Get(ctx, key); ok {
			var record PodcastRecord
			if err := json.Unmarshal(data, &record); err == nil {
				c.metrics.cacheHits.Add(1)
				return NewPodcast(record, c), nil
			}
			_ = c.config.Cache.Delete(ctx, key)
		}
		c.metrics.cacheMisses.Add(1)
	}

	var resp podcastFullResponse
	fullURL := makeURL(c.PodcastAPIBase(), "podcast/full/"+url.PathEscape(id))
	if err := c.GetJSON(ctx, fullURL, false, &resp); err != nil {
		return nil, fmt.Errorf("get podcast %s: %w", id, err)
	}
	if resp.Podcast.UUID == "" {
		return nil, fmt.Errorf("get podcast %s: %w", id, ErrNotFound)
	}

	if c.config.Cache != nil {
		if data, err := json.Marshal(resp.Podcast); err == nil {
			if err := c.config.Cache.Set(ctx, key, data, c.config.PodcastCacheTTL); err != nil {
				logrus.WithError(err).WithField("podcast", id).Warn("failed to cache podcast")
			}
		}
	}

	return NewPodcast(resp.Podcast, c), nil
}

// Subscriptions lists the podcasts the user follows.
func (c *Client) Subscriptions(ctx context.Context) ([]*Podcast, error) {
	var resp subscriptionsResponse
	if err := c.postEndpoint(ctx, "podcast_list", subscriptionsRequest{V: 1}, &resp); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return lo.Map(resp.Podcasts, func(r PodcastRecord, _ int) *Podcast {
		return NewPodcast(r, c)
	}), nil
}
