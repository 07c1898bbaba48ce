// Package radio adapts the ABC Radio plays API to the core's SongMetadata.
// The upstream JSON is loosely shaped (every field optional, nested
// artist/release/artwork lists); this package owns the one deterministic
// mapping from that shape into the pipeline's value type, with documented
// defaults for every absent field.
package radio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"nowplaying/core"
	"nowplaying/logging"
)

// DefaultBaseURL is the ABC Radio plays search endpoint.
const DefaultBaseURL = "https://music.abcradio.net.au/api/v1/plays/search.json"

// requestTimeout bounds a single metadata poll.
const requestTimeout = 15 * time.Second

// Client fetches the most recent play for a station.
type Client struct {
	httpClient             *http.Client
	baseURL                string
	station                string
	preferredArtworkHeight int
	location               *time.Location
	log                    *logging.Logger
}

// NewClient creates a radio client for the configured station. The display
// timezone is resolved once here; an unknown zone falls back to UTC with a
// warning rather than failing startup.
func NewClient(cfg *core.Config, log *logging.Logger) *Client {
	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		log.Warn("unknown display timezone, falling back to UTC",
			zap.String("timezone", cfg.DisplayTimezone),
			zap.Error(err))
		loc = time.UTC
	}

	return &Client{
		httpClient:             core.GetHTTPClient(requestTimeout),
		baseURL:                DefaultBaseURL,
		station:                cfg.Station,
		preferredArtworkHeight: cfg.PreferredArtworkHeight,
		location:               loc,
		log:                    log,
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Upstream response shape. Only the fields the mapping reads are declared;
// everything is optional and defaults to its zero value.
type playsResponse struct {
	Items []playItem `json:"items"`
}

type playItem struct {
	PlayedTime string    `json:"played_time"`
	Recording  recording `json:"recording"`
}

type recording struct {
	Title    string    `json:"title"`
	Artists  []artist  `json:"artists"`
	Releases []release `json:"releases"`
}

type artist struct {
	Name string `json:"name"`
}

type release struct {
	Title   string    `json:"title"`
	Artwork []artwork `json:"artwork"`
}

type artwork struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CurrentSong fetches the most recently played song. It returns nil (and no
// error) when the station reports no plays.
func (c *Client) CurrentSong(ctx context.Context) (*core.SongMetadata, error) {
	endpoint := fmt.Sprintf("%s?station=%s&order=desc&limit=1", c.baseURL, url.QueryEscape(c.station))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("radio: failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("radio: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("radio: unexpected status %d from plays API", resp.StatusCode)
	}

	var parsed playsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("radio: failed to decode plays response: %w", err)
	}

	if len(parsed.Items) == 0 {
		c.log.Debug("no plays reported", zap.String("station", c.station))
		return nil, nil
	}

	meta := c.mapPlay(parsed.Items[0])
	return &meta, nil
}

// mapPlay converts one play item to SongMetadata.
//
// Defaults for absent fields: empty title/artist/album strings (the
// compositor substitutes "Unknown"), empty artwork URL (placeholder
// artwork), nil play time (no banner).
func (c *Client) mapPlay(item playItem) core.SongMetadata {
	meta := core.SongMetadata{
		Title: item.Recording.Title,
	}

	if len(item.Recording.Artists) > 0 {
		meta.Artist = item.Recording.Artists[0].Name
	}

	if len(item.Recording.Releases) > 0 {
		rel := item.Recording.Releases[0]
		meta.Album = rel.Title
		meta.ArtworkURL = c.bestArtworkURL(rel.Artwork)
	}

	if t, ok := c.parsePlayTime(item.PlayedTime); ok {
		meta.PlayTime = &t
	}

	return meta
}

// bestArtworkURL picks the artwork entry whose height is closest to the
// preferred height, falling back to the first entry that has a URL at all.
func (c *Client) bestArtworkURL(entries []artwork) string {
	bestURL := ""
	bestDiff := -1
	for _, a := range entries {
		if a.URL == "" {
			continue
		}
		if bestURL == "" {
			bestURL = a.URL // first usable entry is the fallback
		}
		if a.Height <= 0 {
			continue
		}
		diff := a.Height - c.preferredArtworkHeight
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			bestURL = a.URL
		}
	}
	return bestURL
}

// parsePlayTime parses the upstream timestamp and converts it to the
// display timezone. Zone-free timestamps are assumed UTC.
func (c *Client) parsePlayTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(c.location), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.UTC); err == nil {
		return t.In(c.location), true
	}
	c.log.Debug("unparseable played_time", zap.String("value", raw))
	return time.Time{}, false
}
