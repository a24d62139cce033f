// Package github provides a minimal GitHub REST v3 client for the activity feed
package github

import (
	"context"
	"net/http"
	"strings"
	"time"

	perr "gittracker/internal/platform/errors"
	"gittracker/internal/platform/logger"
)

const (
	baseURLDefault = "https://api.github.com"
	defaultTimeout = 10 * time.Second
	defaultUA      = "gittracker"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string

	// Timeout bounds every request so a slow feed resolves to an error
	// instead of hanging the directive
	Timeout time.Duration

	// Token is an optional personal access token; empty means tokenless
	// which is a very low quota
	Token string
}

// Client issues feed requests with conditional revalidation support
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("github"),
		now:  time.Now,
	}
}

// BaseURL returns the API host the client talks to
func (c *Client) BaseURL() string { return c.opts.BaseURL }

// do issues one request with auth and conditional headers.
// etag is optional and adds If-None-Match.
// Failed calls are surfaced, not retried; retry policy belongs to the cache
func (c *Client) do(ctx context.Context, path, etag string) (*http.Response, error) {
	url := c.opts.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "token "+c.opts.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github do failed")
	}

	rate := InspectRate(resp.StatusCode, resp.Header)
	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Int("rate_remaining", rate.Remaining).
		Time("rate_reset", rate.ResetAt).
		Msg("github http response")

	return resp, nil
}
