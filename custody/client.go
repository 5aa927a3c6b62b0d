// Package custody is the HTTP client for the external wallet-custody
// backend. Its dispatcher makes exactly one logical call succeed or fail
// cleanly, transparently recovering from a single token expiry and never
// looping.
package custody

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/awnumar/memguard"
	"golang.org/x/sync/singleflight"
)

// defaultTimeout bounds every outbound call. An explicit limit gives
// callers a distinct timeout failure instead of a generic network error.
const defaultTimeout = 30 * time.Second

const apiKeyHeader = "X-API-Key"

// Client talks to the custody backend. It holds no per-request state;
// the session repository is injected into each call so one client can
// serve many concurrent browser sessions.
type Client struct {
	baseURL string
	apiKey  *memguard.Enclave
	httpc   *http.Client
	logger  *slog.Logger

	// refreshing coalesces concurrent token refreshes per wallet id so
	// racing requests await one shared refresh instead of each issuing
	// its own.
	refreshing singleflight.Group

	// Now is overridable in tests.
	Now func() time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The caller owns
// timeout configuration when using this.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithLogger sets the structured logger for refresh and failure events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a custody client for the backend at baseURL. The service
// API key is sealed in a memguard enclave and only opened while stamping
// an outbound request.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  memguard.NewEnclave([]byte(apiKey)),
		httpc:   &http.Client{Timeout: defaultTimeout},
		Now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Client) apiKeyValue() (string, error) {
	buf, err := c.apiKey.Open()
	if err != nil {
		return "", err
	}
	defer buf.Destroy()
	// Copy out: the buffer's own view is invalid after Destroy.
	return string(buf.Bytes()), nil
}
