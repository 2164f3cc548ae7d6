package gong

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/runnerr0/commsift/internal/config"
)

// ErrUnauthorized marks 401/403 responses. Unlike transient chunk
// failures, an auth failure aborts the whole extraction because every
// remaining request would fail the same way.
var ErrUnauthorized = errors.New("session rejected by the vendor API")

// Client talks to the vendor's private AJAX endpoints using a captured
// browser session. Requests run through a circuit breaker so a flapping
// endpoint fails fast instead of stalling every chunk on timeouts.
type Client struct {
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	baseURL     string
	workspaceID string
	teamID      string
	cookie      string
	csrfToken   string
	log         *zap.Logger
}

// NewClient builds a client from the API configuration. Session material
// comes from the environment variables the config names; a missing cookie
// is an error because no request can succeed without it.
func NewClient(cfg config.APIConfig, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cookie := os.Getenv(cfg.CookieEnv)
	if cookie == "" {
		return nil, fmt.Errorf("no session cookie in $%s", cfg.CookieEnv)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gong-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		breaker:     breaker,
		baseURL:     cfg.BaseURL,
		workspaceID: cfg.WorkspaceID,
		teamID:      cfg.TeamID,
		cookie:      cookie,
		csrfToken:   os.Getenv(cfg.CSRFTokenEnv),
		log:         log,
	}, nil
}

// FetchDayActivities requests one chunk of the account timeline from the
// day-activities endpoint and returns the raw response body.
func (c *Client) FetchDayActivities(ctx context.Context, params map[string]string) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("workspace-id", c.workspaceID)
	query.Set("team-id", c.teamID)

	endpoint := c.baseURL + "/ajax/account/day-activities?" + query.Encode()

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, endpoint)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Cookie", c.cookie)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", c.baseURL)
	if c.csrfToken != "" {
		req.Header.Set("X-CSRF-Token", c.csrfToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
