package discourse

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// defaultCookieName is the Discourse session cookie.
const defaultCookieName = "_t"

// Session holds the opaque forum credential and refreshes it lazily once
// it outlives the freshness window. Authentication blocks the caller until
// it succeeds; without a session no useful work can proceed.
type Session struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	username   string
	password   string
	cookieName string
	ttl        time.Duration

	mu         sync.Mutex
	cred       string
	acquiredAt time.Time
	epoch      int
}

// NewSession creates a session manager. ttl is the credential freshness
// window, on the order of hours. An empty cookieName selects the stock
// Discourse session cookie.
func NewSession(httpClient *http.Client, baseURL, username, password, cookieName string, ttl time.Duration, logger *slog.Logger) *Session {
	if cookieName == "" {
		cookieName = defaultCookieName
	}
	return &Session{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		password:   password,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// CookieName returns the name of the session cookie attached to API calls.
func (s *Session) CookieName() string { return s.cookieName }

// Epoch increments on every successful re-authentication. The category
// resolver uses it to rebuild its map once per session.
func (s *Session) Epoch() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Invalidate discards the credential so the next call re-authenticates.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = ""
}

// EnsureValid returns a fresh credential, re-authenticating if the current
// one expired. Authentication failures are retried with exponential
// backoff (1s base, 60s cap) until success or context cancellation.
func (s *Session) EnsureValid(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred != "" && time.Since(s.acquiredAt) < s.ttl {
		return s.cred, nil
	}

	err := retry.Do(
		func() error { return s.authenticate(ctx) },
		retry.Attempts(0), // until success
		retry.Delay(time.Second),
		retry.MaxDelay(60*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("Authentication failed, will retry", "attempt", n, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("after retries: %w", err)
	}
	return s.cred, nil
}

func (s *Session) authenticate(ctx context.Context) error {
	form := url.Values{
		"login":    {s.username},
		"password": {s.password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/session", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("login: HTTP %d", resp.StatusCode)
	}

	for _, c := range resp.Cookies() {
		if c.Name == s.cookieName {
			s.cred = c.Value
			s.acquiredAt = time.Now()
			s.epoch++
			s.logger.Info("Session acquired",
				"epoch", s.epoch,
				"duration_ms", time.Since(start).Milliseconds())
			return nil
		}
	}
	return fmt.Errorf("login response missing %s cookie", s.cookieName)
}
