// Package randomuser fetches pages of generated user profiles from a
// randomuser.me compatible API.
package randomuser

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

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
	"github.com/MrSnakeDoc/userbrowser/internal/logger"
)

const (
	baseURLDefault   = "https://randomuser.me"
	defaultPageSize  = 20
	defaultSeed      = "xyz"
	defaultTimeout   = 10 * time.Second
	defaultRetryBase = 300 * time.Millisecond
	maxBodyBytes     = 4 << 20
)

// Options configures the Client
type Options struct {
	BaseURL  string
	PageSize int
	// Seed pins the generator so that the same page number always
	// returns the same users.
	Seed    string
	Timeout time.Duration

	// Retry config for transport errors, 429 and 5xx responses
	MaxRetries int
	RetryBase  time.Duration

	HTTPClient *http.Client
}

// Client implements the feed source contract: one call, one page.
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options, log logger.Logger) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.Seed == "" {
		o.Seed = defaultSeed
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		http:  hc,
		opts:  o,
		log:   log.Named("randomuser"),
		sleep: sleepCtx,
	}
}

// FetchPage returns the users of one page in server order. An empty slice
// means the feed has no more users. Failures are *domain.NetworkError.
func (c *Client) FetchPage(ctx context.Context, page int) ([]domain.User, error) {
	if page < 1 {
		return nil, &domain.NetworkError{Op: "fetch users", Page: page, Err: fmt.Errorf("invalid page number %d", page)}
	}

	endpoint := c.pageURL(page)
	attempt := 0
	for {
		users, retry, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			c.log.Debug("page fetched",
				logger.Int("page", page),
				logger.Int("count", len(users)),
				logger.Int("attempt", attempt))
			return users, nil
		}
		if !retry || attempt >= c.opts.MaxRetries || ctx.Err() != nil {
			return nil, &domain.NetworkError{Op: "fetch users", Page: page, Err: err}
		}

		back := c.backoff(attempt)
		c.log.Warn("feed request failed, retrying",
			logger.Int("page", page),
			logger.Int("attempt", attempt),
			logger.Duration("retry_in", back),
			logger.Error(err))
		if err := c.sleep(ctx, back); err != nil {
			return nil, &domain.NetworkError{Op: "fetch users", Page: page, Err: err}
		}
		attempt++
	}
}

func (c *Client) pageURL(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("results", strconv.Itoa(c.opts.PageSize))
	q.Set("seed", c.opts.Seed)
	return c.opts.BaseURL + "/api/?" + q.Encode()
}

// fetchOnce performs a single request. retry reports whether the failure is transient.
func (c *Client) fetchOnce(ctx context.Context, endpoint string) (users []domain.User, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, !errors.Is(err, context.Canceled), fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.Error != "" {
		return nil, false, fmt.Errorf("api error: %s", payload.Error)
	}

	return payload.users(), false, nil
}

// backoff returns the capped exponential delay for attempt (0-based).
func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << attempt
	if limit := 10 * c.opts.RetryBase; d > limit || d <= 0 {
		d = limit
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
