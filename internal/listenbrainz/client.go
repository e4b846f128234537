// Package listenbrainz is a minimal client for the ListenBrainz API,
// covering the listens and feedback endpoints the sync engine needs.
package listenbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

const defaultBaseURL = "https://api.listenbrainz.org"

// PageSize is how many listens one request asks for. It is the API's
// documented maximum.
const PageSize = 100

// LikesPageSize is how many feedback entries one request asks for.
const LikesPageSize = 100

// Client talks to the ListenBrainz API. All requests share one rate
// limiter, so listens and likes fetches running concurrently still respect
// the server's request budget.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

func New(token string) *Client {
	return NewWithBaseURL(defaultBaseURL, token)
}

// NewWithBaseURL exists so tests can point the client at a local server.
func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(1*time.Second), 1),
	}
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Code       int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("listenbrainz: HTTP %d", e.Code)
}

// retryableError reports whether an attempt is worth repeating: server
// errors, rate limiting, and transport-level failures. Other HTTP statuses
// and a cancelled context are final.
func retryableError(err error) bool {
	if serr, ok := err.(*StatusError); ok {
		return serr.Code/100 == 5 || serr.Code == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

type listensResponse struct {
	Payload struct {
		Listens []listen.Raw `json:"listens"`
		Count   int          `json:"count"`
	} `json:"payload"`
}

// FetchListens returns up to PageSize listens strictly older than maxTime,
// newest first. An empty slice means the remote history before maxTime is
// exhausted.
func (c *Client) FetchListens(ctx context.Context, user string, maxTime time.Time) ([]listen.Raw, error) {
	params := url.Values{}
	params.Set("max_ts", strconv.FormatInt(maxTime.Unix(), 10))
	params.Set("count", strconv.Itoa(PageSize))

	var resp listensResponse
	endpoint := fmt.Sprintf("%s/1/user/%s/listens?%s", c.baseURL, url.PathEscape(user), params.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching listens for %q: %w", user, err)
	}
	return resp.Payload.Listens, nil
}

type feedbackResponse struct {
	Feedback   []listen.Feedback `json:"feedback"`
	Count      int               `json:"count"`
	TotalCount int               `json:"total_count"`
}

// FetchLikes returns one page of the user's loved recordings, starting at
// offset. The second return reports whether more pages remain.
func (c *Client) FetchLikes(ctx context.Context, user string, offset int) ([]listen.Feedback, bool, error) {
	params := url.Values{}
	params.Set("score", "1")
	params.Set("offset", strconv.Itoa(offset))
	params.Set("count", strconv.Itoa(LikesPageSize))
	params.Set("metadata", "true")

	var resp feedbackResponse
	endpoint := fmt.Sprintf("%s/1/feedback/user/%s/get-feedback?%s", c.baseURL, url.PathEscape(user), params.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, false, fmt.Errorf("fetching likes for %q: %w", user, err)
	}

	more := len(resp.Feedback) == LikesPageSize && offset+len(resp.Feedback) < resp.TotalCount
	return resp.Feedback, more, nil
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
		retry.RetryIf(retryableError),
		retry.OnRetry(func(n uint, err error) {
			if serr, ok := err.(*StatusError); ok && serr.RetryAfter > 0 {
				time.Sleep(serr.RetryAfter)
			}
		}),
	)
}

func (c *Client) getJSONOnce(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		serr := &StatusError{Code: resp.StatusCode}
		if after, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			serr.RetryAfter = time.Duration(after) * time.Second
		}
		return serr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
