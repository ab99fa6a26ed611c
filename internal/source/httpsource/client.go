package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 10 * time.Second
	userAgent      = "payloadcrypt/1.0"
)

// StatusError is returned for any non-2xx response. The body is kept so the
// caller can show what the server said.
type StatusError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d from %s", e.StatusCode, e.URL)
}

// Client fetches payload bodies over HTTP
type Client struct {
	client  *http.Client
	baseURL string
	query   url.Values
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithQueryParam adds a query parameter to every request, e.g. udid
func WithQueryParam(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.query.Set(key, value)
		}
	}
}

// NewClient creates a client; a zero timeout means DefaultTimeout
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		query:   url.Values{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch GETs ref. An absolute URL is used as is; anything else is appended to
// the base URL.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	log.Debug().
		Str("request_id", requestID).
		Str("method", http.MethodGet).
		Str("url", target).
		Msg("making HTTP request")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().
			Str("request_id", requestID).
			Str("url", target).
			Err(err).
			Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().
		Str("request_id", requestID).
		Int("status_code", resp.StatusCode).
		Int("body_length", len(body)).
		Msg("received HTTP response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target, Body: body}
	}
	return body, nil
}

func (c *Client) resolve(ref string) (string, error) {
	raw := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		if c.baseURL == "" {
			return "", fmt.Errorf("relative reference %q needs a base URL", ref)
		}
		raw = c.baseURL + "/" + strings.TrimLeft(ref, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if len(c.query) > 0 {
		q := u.Query()
		for k, vs := range c.query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
