package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/badgekit/pkg/buildinfo"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/observability"
)

// Defaults for NewClient.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultAttempts = 3
	DefaultBackoff  = 500 * time.Millisecond
	DefaultMaxBytes = 32 << 20
)

// Client downloads assets over HTTP(S).
type Client struct {
	http     *http.Client
	attempts int
	backoff  time.Duration
	maxBytes int64
	agent    string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithMaxBytes limits the accepted response size.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. Its timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.agent = ua }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		maxBytes: DefaultMaxBytes,
		agent:    buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches rawURL and returns the body. Network errors, 429 and 5xx
// responses are retried. Other non-2xx responses fail with NOT_FOUND (404)
// or NETWORK_ERROR.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}

	var body []byte
	err = Retry(ctx, c.attempts, c.backoff, func() error {
		var ferr error
		body, ferr = c.fetch(ctx, u)
		return ferr
	})
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", u.Redacted())
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", u.Redacted())
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, Retryable(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, Retryable(fmt.Errorf("%s: %s", u.Redacted(), resp.Status))
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "%s: %s", u.Redacted(), resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.New(errors.ErrCodeNetwork, "%s: %s", u.Redacted(), resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, Retryable(err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: response exceeds %d bytes", u.Redacted(), c.maxBytes)
	}
	return data, nil
}
