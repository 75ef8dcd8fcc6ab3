// Package fred fetches economic series from the St. Louis Fed: the JSON
// observations API and the fredgraph CSV download.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/recessionwatch/internal/domain/series"
)

// Default endpoints.
const (
	DefaultBaseURL  = "https://api.stlouisfed.org"
	DefaultGraphURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"

	observationsPath = "/fred/series/observations"
	dateLayout       = "2006-01-02"
	// missingValue is how FRED marks a period without data.
	missingValue = "."
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL overrides the JSON API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithGraphURL overrides the fredgraph CSV endpoint.
func WithGraphURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.graphURL = u
		}
	}
}

// WithAPIKey sets the key sent to the JSON API.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithClock sets the source of the download end date.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client talks to FRED.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	graphURL   string
	apiKey     string
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewClient creates a new FRED client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		graphURL:   DefaultGraphURL,
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Series returns a fetcher for seriesID through the JSON API.
func (c *Client) Series(seriesID string, start time.Time) series.Fetcher {
	return series.FetcherFunc(func(ctx context.Context) ([]series.Observation, error) {
		return c.Observations(ctx, seriesID, start)
	})
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Observations fetches every observation of seriesID from start on.
// Periods FRED marks as missing are skipped.
func (c *Client) Observations(ctx context.Context, seriesID string, start time.Time) ([]series.Observation, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	if !start.IsZero() {
		q.Set("observation_start", start.Format(dateLayout))
	}

	body, err := c.get(ctx, c.baseURL+observationsPath+"?"+q.Encode(), seriesID)
	if err != nil {
		return nil, err
	}

	var resp observationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, seriesID, err)
	}
	out := make([]series.Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		obs, ok, err := parseObservation(o.Date, o.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", seriesID, err)
		}
		if ok {
			out = append(out, obs)
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, target, seriesID string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", seriesID, redactQuery(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrHTTPStatus, resp.StatusCode, seriesID)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", seriesID, err)
	}
	return body, nil
}

// redactQuery drops the query string from a transport error so the API key
// never reaches logs or responses.
func redactQuery(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	u, _, _ := strings.Cut(uerr.URL, "?")
	return &url.Error{Op: uerr.Op, URL: u, Err: uerr.Err}
}

// parseObservation reads one (date, value) pair. ok is false for missing
// markers.
func parseObservation(date, value string) (series.Observation, bool, error) {
	value = strings.TrimSpace(value)
	if value == missingValue || value == "" {
		return series.Observation{}, false, nil
	}
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return series.Observation{}, false, fmt.Errorf("%w: date %q", ErrParse, date)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return series.Observation{}, false, fmt.Errorf("%w: value %q on %s", ErrParse, value, date)
	}
	return series.Observation{Date: d, Value: v}, true, nil
}
