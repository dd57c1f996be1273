// Package musicbrainz fetches release tracklists from the MusicBrainz
// web service. The catalog treats enrichment as best effort: every
// failure mode collapses to an empty tracklist so a flaky or slow
// metadata service can never block a catalog write.
package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/record-store-api/internal/domain"
)

const (
	DefaultBaseURL = "https://musicbrainz.org/ws/2"

	userAgent = "record-store-api/1.0 (contact@example.com)"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client against baseURL. The caller supplies the
// http.Client and with it the request timeout (10s in production).
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

type releaseResponse struct {
	Media []struct {
		Tracks []struct {
			Title     string `json:"title"`
			Position  int    `json:"position"`
			Length    int    `json:"length"`
			Recording struct {
				Title string `json:"title"`
			} `json:"recording"`
		} `json:"tracks"`
	} `json:"media"`
}

// FetchTracklist returns the tracklist of the release identified by
// mbid. It never returns an error: lookups that fail, time out, or
// reference a release without media yield an empty list. Track titles
// fall back from the track to its recording to "Unknown"; positions
// fall back to the running 1-based index; lengths are converted from
// milliseconds to whole seconds.
func (c *Client) FetchTracklist(ctx context.Context, mbid string) []domain.Track {
	if mbid == "" {
		return []domain.Track{}
	}

	url := fmt.Sprintf("%s/release/%s?inc=recordings&fmt=json", c.baseURL, mbid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("musicbrainz request build failed", "mbid", mbid, "error", err)
		return []domain.Track{}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			c.logger.Error("musicbrainz request timeout", "mbid", mbid)
		} else {
			c.logger.Error("musicbrainz request failed", "mbid", mbid, "error", err)
		}
		return []domain.Track{}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Warn("musicbrainz release not found", "mbid", mbid)
		return []domain.Track{}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("musicbrainz returned unexpected status", "mbid", mbid, "status", resp.StatusCode)
		return []domain.Track{}
	}

	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		c.logger.Error("musicbrainz response decode failed", "mbid", mbid, "error", err)
		return []domain.Track{}
	}

	tracklist := []domain.Track{}
	for _, medium := range release.Media {
		for _, track := range medium.Tracks {
			title := track.Title
			if title == "" {
				title = track.Recording.Title
			}
			if title == "" {
				title = "Unknown"
			}

			position := track.Position
			if position == 0 {
				position = len(tracklist) + 1
			}

			duration := 0
			if track.Length > 0 {
				duration = (track.Length + 500) / 1000
			}

			tracklist = append(tracklist, domain.Track{
				Title:    title,
				Position: position,
				Duration: duration,
			})
		}
	}

	return tracklist
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
