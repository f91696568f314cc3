// Package discourse wraps the remote forum API: session authentication,
// retry-capable calls, and the handful of endpoints the sync pipeline uses.
package discourse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// HTTPError is a non-2xx response, surfaced as a value so callers can tell
// a skippable not-found from a transient failure.
type HTTPError struct {
	Status int
	Path   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Path)
}

// IsNotFound reports whether err is a 403 or 404 response. Both mean the
// content is gone or private; the sync engine skips such ids for good.
func IsNotFound(err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status == http.StatusNotFound || he.Status == http.StatusForbidden
	}
	return false
}

// CallOpts controls a single API call.
type CallOpts struct {
	Write   bool          // POST instead of GET
	Retry   bool          // retry transport failures indefinitely with backoff
	Timeout time.Duration // per-attempt timeout; falls back to the client default
}

// Client makes authenticated calls against the forum API.
type Client struct {
	httpClient *http.Client
	session    *Session
	logger     *slog.Logger
	baseURL    string
	timeout    time.Duration
}

// NewClient creates an API client on top of an auth session.
func NewClient(httpClient *http.Client, session *Session, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		session:    session,
		logger:     logger,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
	}
}

// AuthEpoch exposes the session epoch for collaborators that cache
// per-session state.
func (c *Client) AuthEpoch() int { return c.session.Epoch() }

// Call performs one API call, decoding the JSON response into out when it
// is non-nil. HTTP 4xx/5xx come back as *HTTPError with the status also
// returned; transport failures are retried with capped backoff only when
// opts.Retry is set.
func (c *Client) Call(ctx context.Context, path string, params url.Values, out any, opts CallOpts) (int, error) {
	if !opts.Retry {
		return c.do(ctx, path, params, out, opts)
	}

	var status int
	err := retry.Do(
		func() error {
			var err error
			status, err = c.do(ctx, path, params, out, opts)
			return err
		},
		retry.Attempts(0), // until success
		retry.Delay(time.Second),
		retry.MaxDelay(60*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("API call failed, will retry", "path", path, "attempt", n, "error", err)
		}),
		retry.RetryIf(func(err error) bool {
			// HTTP-level failures are answers, not outages.
			var he *HTTPError
			return !errors.As(err, &he)
		}),
	)
	if err != nil {
		return status, err
	}
	return status, nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values, out any, opts CallOpts) (int, error) {
	cred, err := c.session.EnsureValid(ctx)
	if err != nil {
		return 0, fmt.Errorf("ensure session: %w", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.baseURL + path
	var req *http.Request
	if opts.Write {
		req, err = http.NewRequestWithContext(callCtx, http.MethodPost, target, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		if len(params) > 0 {
			target += "?" + params.Encode()
		}
		req, err = http.NewRequestWithContext(callCtx, http.MethodGet, target, http.NoBody)
	}
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: c.session.CookieName(), Value: cred})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("HTTP request failed",
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return 0, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	c.logger.Debug("HTTP request completed",
		"path", path,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			// Credential revoked server-side before the ttl elapsed.
			c.session.Invalidate()
		}
		return resp.StatusCode, &HTTPError{Status: resp.StatusCode, Path: path}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// Categories fetches the flat category list. The category refresh is a
// prerequisite for everything else, so transport failures retry until the
// call goes through.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var sr siteResponse
	if _, err := c.Call(ctx, "/site.json", nil, &sr, CallOpts{Retry: true}); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return sr.Categories, nil
}

// LatestPostID returns the highest post id visible on the latest-posts
// page, or 0 when the page is empty.
func (c *Client) LatestPostID(ctx context.Context) (int64, error) {
	var lr latestPostsResponse
	params := url.Values{"before": {"0"}}
	if _, err := c.Call(ctx, "/posts.json", params, &lr, CallOpts{}); err != nil {
		return 0, fmt.Errorf("fetch latest posts: %w", err)
	}
	var max int64
	for _, p := range lr.LatestPosts {
		if p.ID > max {
			max = p.ID
		}
	}
	return max, nil
}

// Post fetches a single post by id.
func (c *Client) Post(ctx context.Context, id int64) (*Post, error) {
	var p Post
	if _, err := c.Call(ctx, fmt.Sprintf("/posts/%d.json", id), nil, &p, CallOpts{}); err != nil {
		return nil, err
	}
	return &p, nil
}

// Topic fetches a single topic by id.
func (c *Client) Topic(ctx context.Context, id int64) (*Topic, error) {
	var t Topic
	if _, err := c.Call(ctx, fmt.Sprintf("/t/%d.json", id), nil, &t, CallOpts{}); err != nil {
		return nil, err
	}
	return &t, nil
}
