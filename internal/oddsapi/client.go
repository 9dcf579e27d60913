// Package oddsapi provides the client for The Odds API v4 and the usage
// tracker fed by its responses.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// ClientConfig holds configuration for the odds API client.
type ClientConfig struct {
	BaseURL          string
	APIKey           string
	Regions          []string
	Timeout          time.Duration
	MaxRetries       int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration
	RateLimit        float64 // requests per second
	FetchConcurrency int     // max in-flight provider requests
}

// DefaultClientConfig returns recommended defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:          "https://api.the-odds-api.com/v4",
		Regions:          []string{"us"},
		Timeout:          15 * time.Second,
		MaxRetries:       3,
		RetryWaitMin:     100 * time.Millisecond,
		RetryWaitMax:     5 * time.Second,
		RateLimit:        5.0,
		FetchConcurrency: 4,
	}
}

// Client fetches event listings and odds from The Odds API. Requests share
// a rate limiter and a concurrency semaphore: calls beyond the limit queue
// rather than firing immediately, bounding upstream load.
type Client struct {
	baseURL string
	apiKey  string
	regions string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	sem     chan struct{}
	usage   *UsageTracker
	logger  *logrus.Logger
}

// NewClient creates a new odds API client.
func NewClient(cfg ClientConfig, usage *UsageTracker, logger *logrus.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy()
	retryClient.Logger = nil

	concurrency := cfg.FetchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 5.0
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		regions: strings.Join(cfg.Regions, ","),
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		sem:     make(chan struct{}, concurrency),
		usage:   usage,
		logger:  logger,
	}
}

// ListEvents retrieves upcoming events for a sport, without odds.
func (c *Client) ListEvents(ctx context.Context, sport string) ([]models.Event, error) {
	endpoint := fmt.Sprintf("/sports/%s/events", sport)

	body, err := c.get(ctx, "events", endpoint, url.Values{})
	if err != nil {
		return nil, err
	}

	var resp []eventResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse events response: %w", err)
	}

	events := make([]models.Event, 0, len(resp))
	for _, e := range resp {
		events = append(events, models.Event{
			ID:           e.ID,
			SportKey:     e.SportKey,
			CommenceTime: e.CommenceTime,
			HomeTeam:     e.HomeTeam,
			AwayTeam:     e.AwayTeam,
		})
	}
	return events, nil
}

// GetOdds retrieves the bulk odds listing for a sport: every upcoming event
// with its featured-market bookmaker quotes.
func (c *Client) GetOdds(ctx context.Context, sport string, markets []string) ([]EventOdds, error) {
	endpoint := fmt.Sprintf("/sports/%s/odds", sport)

	params := url.Values{}
	params.Set("regions", c.regions)
	params.Set("markets", strings.Join(markets, ","))
	params.Set("oddsFormat", "american")

	body, err := c.get(ctx, "odds", endpoint, params)
	if err != nil {
		return nil, err
	}

	var resp []EventOdds
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse odds response: %w", err)
	}
	return resp, nil
}

// GetEventOdds retrieves per-event odds, used for player-prop markets. A
// 403/422 from the provider is returned as *PlanRestrictedError.
func (c *Client) GetEventOdds(ctx context.Context, sport, eventID string, markets []string) (*EventOdds, error) {
	endpoint := fmt.Sprintf("/sports/%s/events/%s/odds", sport, eventID)
	marketList := strings.Join(markets, ",")

	params := url.Values{}
	params.Set("regions", c.regions)
	params.Set("markets", marketList)
	params.Set("oddsFormat", "american")

	body, err := c.get(ctx, "event_odds", endpoint, params)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && (apiErr.StatusCode == http.StatusForbidden || apiErr.StatusCode == http.StatusUnprocessableEntity) {
			return nil, NewPlanRestrictedError(apiErr.StatusCode, marketList)
		}
		return nil, err
	}

	var resp EventOdds
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse event odds response: %w", err)
	}
	return &resp, nil
}

// get executes one provider request under the rate limiter and the
// concurrency semaphore, records usage headers, and returns the body.
func (c *Client) get(ctx context.Context, label, endpoint string, params url.Values) ([]byte, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("apiKey", c.apiKey)
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(label, "error").Inc()
		// Wrapped transport errors can embed the full URL; report only the path.
		return nil, fmt.Errorf("odds API request to %s failed: %w", endpoint, redactURLError(err, fullURL, endpoint))
	}
	defer resp.Body.Close()

	if c.usage != nil {
		c.usage.Observe(resp.Header)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(label, "error").Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		outcome := "error"
		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnprocessableEntity {
			outcome = "plan_restricted"
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(label, outcome).Inc()
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"status":   resp.StatusCode,
			}).Warn("Odds API returned non-OK status")
		}
		return nil, NewAPIError(resp.StatusCode, endpoint, truncate(string(body), 256))
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(label, "success").Inc()
	return body, nil
}

// redactURLError replaces occurrences of the full request URL (which
// carries the apiKey query parameter) inside transport errors.
func redactURLError(err error, fullURL, endpoint string) error {
	msg := err.Error()
	if strings.Contains(msg, fullURL) {
		return fmt.Errorf("%s", strings.ReplaceAll(msg, fullURL, endpoint))
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// retryPolicy retries network errors, 429 and 5xx; other 4xx responses are
// final.
func retryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	}
}
