package intervals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public API endpoint
const DefaultBaseURL = "https://intervals.icu/api/v1"

// ErrNotConfigured is returned when the API key or athlete id is missing.
// This is an expected steady state, distinct from network failure: callers
// degrade to local data.
var ErrNotConfigured = errors.New("remote service not configured")

// ErrThrottled is returned after the retry budget for 429 responses is spent
var ErrThrottled = errors.New("rate limited by remote service")

// HTTPError is a non-2xx, non-429 response from the service
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
}

// Options tunes the client's rate-limiting behavior. Zero values fall back
// to the observed service tolerance.
type Options struct {
	BaseURL     string
	MaxInFlight int           // concurrent request cap
	Pacing      time.Duration // minimum spacing between requests
	RetryBudget int           // attempts after a 429
	RetryStep   time.Duration // delay grows by this much per attempt
}

// Client talks to the training-analytics service. The concurrency cap and
// request pacing live here, in one place, rather than at each call site.
type Client struct {
	httpClient *http.Client
	baseURL    string
	athleteID  string

	sem    chan struct{}
	pacer  *pacer
	budget int
	step   time.Duration
}

// NewClient creates a client authenticated with a static API key, attached
// to every request as a bearer header.
func NewClient(apiKey, athleteID string, opts Options) (*Client, error) {
	if apiKey == "" || athleteID == "" {
		return nil, ErrNotConfigured
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 5
	}
	if opts.Pacing <= 0 {
		opts.Pacing = 250 * time.Millisecond
	}
	if opts.RetryBudget <= 0 {
		opts.RetryBudget = 3
	}
	if opts.RetryStep <= 0 {
		opts.RetryStep = time.Second
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey})

	return &Client{
		httpClient: oauth2.NewClient(context.Background(), src),
		baseURL:    opts.BaseURL,
		athleteID:  athleteID,
		sem:        make(chan struct{}, opts.MaxInFlight),
		pacer:      newPacer(opts.Pacing),
		budget:     opts.RetryBudget,
		step:       opts.RetryStep,
	}, nil
}

// Activities fetches the athlete's activities for [oldest, newest], both
// YYYY-MM-DD inclusive.
func (c *Client) Activities(ctx context.Context, oldest, newest string) ([]Activity, error) {
	params := url.Values{}
	params.Set("oldest", oldest)
	params.Set("newest", newest)

	var activities []Activity
	path := fmt.Sprintf("/athlete/%s/activities", c.athleteID)
	if err := c.get(ctx, path, params, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Activity fetches one activity's full record, including the description
// the list endpoint omits.
func (c *Client) Activity(ctx context.Context, activityID string) (*Activity, error) {
	var a Activity
	path := fmt.Sprintf("/activity/%s", url.PathEscape(activityID))
	if err := c.get(ctx, path, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ActivityIntervals fetches the interval-split payload for one activity.
// The payload is large and returned raw; the store keeps it verbatim.
func (c *Client) ActivityIntervals(ctx context.Context, activityID string) (json.RawMessage, error) {
	var payload json.RawMessage
	path := fmt.Sprintf("/activity/%s/intervals", url.PathEscape(activityID))
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ActivityMessages fetches coach messages and annotations for one activity
func (c *Client) ActivityMessages(ctx context.Context, activityID string) (json.RawMessage, error) {
	var payload json.RawMessage
	path := fmt.Sprintf("/activity/%s/messages", url.PathEscape(activityID))
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Wellness fetches daily wellness records for [oldest, newest]
func (c *Client) Wellness(ctx context.Context, oldest, newest string) ([]Wellness, error) {
	params := url.Values{}
	params.Set("oldest", oldest)
	params.Set("newest", newest)

	var records []Wellness
	path := fmt.Sprintf("/athlete/%s/wellness", c.athleteID)
	if err := c.get(ctx, path, params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Events fetches calendar events for [oldest, newest]
func (c *Client) Events(ctx context.Context, oldest, newest string) ([]Event, error) {
	params := url.Values{}
	params.Set("oldest", oldest)
	params.Set("newest", newest)

	var events []Event
	path := fmt.Sprintf("/athlete/%s/events", c.athleteID)
	if err := c.get(ctx, path, params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// get issues one authenticated GET with the concurrency cap, pacing, and
// 429 retry policy applied, decoding the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.sem }()

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	for attempt := 0; ; attempt++ {
		if err := c.pacer.wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if attempt >= c.budget {
				return ErrThrottled
			}

			// Delay grows linearly per attempt, bounding total wait at
			// step * budget * (budget+1) / 2.
			delay := time.Duration(attempt+1) * c.step
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return &HTTPError{Status: resp.StatusCode, Body: string(body)}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}
}
