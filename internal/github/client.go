package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-content-sync/content"
	"github.com/goliatone/go-content-sync/internal/logging"
	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "go-content-sync/1.0"
	apiVersion       = "2022-11-28"

	// Backoff window for transient 5xx responses.
	defaultBackoffBase = 2 * time.Second
	// Extra sleep past the advertised rate-limit reset.
	defaultResetBuffer = 2 * time.Second
)

// ClientConfig configures the GitHub contents client.
type ClientConfig struct {
	// BaseURL overrides the API host (tests, GHE). Defaults to api.github.com.
	BaseURL string

	// Token is the bearer credential attached to every request.
	Token string

	// Owner and Repo identify the repository being mirrored.
	Owner string
	Repo  string

	// Ref pins listings and fetches to a branch or commit. Empty means the
	// repository default branch.
	Ref string

	// Timeout for individual requests (default: 30s).
	Timeout time.Duration

	// MaxRetries bounds retry attempts for transient failures (default: 3).
	MaxRetries int

	// RateLimit is client-side request pacing in requests per second
	// (default: 10), independent of the server-side quota headers.
	RateLimit float64

	// RateBurst is the limiter burst size (default: 5).
	RateBurst int

	// BackoffBase is the initial 5xx retry delay (default: 2s). Exposed so
	// tests can shrink the window.
	BackoffBase time.Duration

	// ResetBuffer pads the advertised rate-limit reset before retrying
	// (default: 2s).
	ResetBuffer time.Duration

	// Transport allows injecting a custom round tripper for tests.
	Transport http.RoundTripper

	// UserAgent string sent with every request.
	UserAgent string

	Logger interfaces.Logger
}

// Client talks to the GitHub REST contents API with client-side pacing,
// transient retry, and quota-aware backoff. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  interfaces.Logger
}

// New constructs a Client, applying defaults for unset config fields.
func New(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10.0
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 5
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.ResetBuffer == 0 {
		cfg.ResetBuffer = defaultResetBuffer
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  logger,
	}
}

type response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func (r *response) JSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// get executes a GET with pacing and the retry policy: transient 5xx backs
// off exponentially, a spent primary quota sleeps until the advertised reset
// plus a small buffer, and auth/not-found failures surface immediately.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.doOnce(ctx, path, query)
		if err != nil {
			// Network-level failure, retry with backoff.
			lastErr = err
			if werr := c.sleep(ctx, c.backoff(attempt)); werr != nil {
				return nil, werr
			}
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode == http.StatusUnauthorized:
			return nil, &content.AuthError{Reason: "github rejected credentials"}

		case resp.StatusCode == http.StatusNotFound:
			return nil, &content.NotFoundError{Resource: "github path", Key: path}

		case isRateLimited(resp):
			limited := rateLimitError(resp)
			lastErr = limited
			if attempt == c.cfg.MaxRetries {
				return nil, limited
			}
			wait := limited.RetryAfter
			if wait == 0 && !limited.Reset.IsZero() {
				wait = time.Until(limited.Reset)
			}
			if wait < 0 {
				wait = 0
			}
			c.logger.Warn("github.rate_limited", "path", path, "wait", (wait + c.cfg.ResetBuffer).String())
			if werr := c.sleep(ctx, wait+c.cfg.ResetBuffer); werr != nil {
				return nil, werr
			}

		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("github: server error %d for %s", resp.StatusCode, path)
			if werr := c.sleep(ctx, c.backoff(attempt)); werr != nil {
				return nil, werr
			}

		default:
			return nil, fmt.Errorf("github: unexpected status %d for %s", resp.StatusCode, path)
		}
	}

	return nil, fmt.Errorf("github: retries exhausted for %s: %w", path, lastErr)
}

func (c *Client) doOnce(ctx context.Context, path string, query url.Values) (*response, error) {
	fullURL := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	return c.cfg.BackoffBase * time.Duration(1<<uint(attempt))
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRateLimited detects both primary quota exhaustion (403 with a zeroed
// remaining header) and secondary limits (403/429 with Retry-After).
func isRateLimited(resp *response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	if resp.Headers.Get("Retry-After") != "" {
		return true
	}
	return resp.Headers.Get("X-RateLimit-Remaining") == "0"
}

func rateLimitError(resp *response) *content.RateLimitedError {
	limited := &content.RateLimitedError{}
	if after := resp.Headers.Get("Retry-After"); after != "" {
		if seconds, err := strconv.Atoi(after); err == nil {
			limited.RetryAfter = time.Duration(seconds) * time.Second
		}
	}
	if reset := resp.Headers.Get("X-RateLimit-Reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			limited.Reset = time.Unix(epoch, 0)
		}
	}
	return limited
}
