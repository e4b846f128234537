// Package musicbrainz queries the MusicBrainz web service for artist genre
// tags and recording matches.
package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// MusicBrainz requires a contact-identifying user agent.
const userAgent = "listen-brainz-tools/1.0 (https://github.com/ademuri/listen-brainz-tools)"

// MinRecordingScore is the lowest search score a recording match is
// accepted at. Matches below it are treated as not found rather than
// risking a wrong backfill.
const MinRecordingScore = 90

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func New() *Client {
	return NewWithBaseURL(defaultBaseURL)
}

// NewWithBaseURL exists so tests can point the client at a local server.
func NewWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(1*time.Second), 1),
	}
}

type tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

type artistResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Tags  []tag  `json:"tags"`
}

type artistSearchResponse struct {
	Artists []artistResult `json:"artists"`
}

// ArtistGenres searches for an artist by name and returns the genre tags of
// the best match, most-used first. A nil slice means no match or an
// untagged artist.
func (c *Client) ArtistGenres(ctx context.Context, name string) ([]string, error) {
	params := url.Values{}
	params.Set("query", "artist:"+quote(name))
	params.Set("fmt", "json")
	params.Set("limit", "1")

	var resp artistSearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/artist?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("searching artist %q: %w", name, err)
	}
	if len(resp.Artists) == 0 {
		return nil, nil
	}

	tags := resp.Artists[0].Tags
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Count > tags[j].Count
	})
	var genres []string
	for _, t := range tags {
		if t.Name != "" {
			genres = append(genres, t.Name)
		}
	}
	return genres, nil
}

// Recording is one search match from the recording index.
type Recording struct {
	ID    string
	Title string
	Album string
	Score int
}

type recordingResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
	Releases []struct {
		Title string `json:"title"`
	} `json:"releases"`
}

type recordingSearchResponse struct {
	Recordings []recordingResult `json:"recordings"`
}

// SearchRecording looks up a recording by artist and track name, optionally
// narrowed by album. It returns the best match only when its search score
// clears MinRecordingScore; otherwise the second return is false.
func (c *Client) SearchRecording(ctx context.Context, artist, trackName, album string) (Recording, bool, error) {
	terms := []string{
		"artist:" + quote(artist),
		"recording:" + quote(trackName),
	}
	if album != "" {
		terms = append(terms, "release:"+quote(album))
	}
	params := url.Values{}
	params.Set("query", strings.Join(terms, " AND "))
	params.Set("fmt", "json")
	params.Set("limit", "1")

	var resp recordingSearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/recording?"+params.Encode(), &resp); err != nil {
		return Recording{}, false, fmt.Errorf("searching recording %q/%q: %w", artist, trackName, err)
	}
	if len(resp.Recordings) == 0 {
		return Recording{}, false, nil
	}

	best := resp.Recordings[0]
	if best.Score < MinRecordingScore {
		return Recording{}, false, nil
	}
	rec := Recording{ID: best.ID, Title: best.Title, Score: best.Score}
	if len(best.Releases) > 0 {
		rec.Album = best.Releases[0].Title
	}
	return rec, true, nil
}

// quote wraps a Lucene query term in double quotes, escaping embedded
// quotes and backslashes.
func quote(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(term)
	return `"` + escaped + `"`
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("musicbrainz: HTTP %d", e.code)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			return c.getJSONOnce(ctx, endpoint, out)
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.RetryIf(func(err error) bool {
			if serr, ok := err.(*statusError); ok {
				return serr.code/100 == 5 || serr.code == http.StatusTooManyRequests
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}
			return true
		}),
	)
}

func (c *Client) getJSONOnce(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
