// ABOUTME: HTTP client for the Anypoint control plane APIs
// ABOUTME: Wraps bearer-authenticated JSON calls with typed error handling

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single HTTP round trip
const DefaultTimeout = 30 * time.Second

// Dumper receives the raw body of every allocation response
type Dumper interface {
	Write(data []byte) error
	Path() string
}

// Client talks to one control plane with a single access token
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	dumper     Dumper
}

// Option customizes a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout; zero disables it
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithDialContext routes connections through a custom dialer, e.g. a SOCKS5 tunnel
func WithDialContext(dial func(ctx context.Context, network, address string) (net.Conn, error)) Option {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = dial
		c.httpClient.Transport = transport
	}
}

// WithDumper records allocation responses to a debug artifact
func WithDumper(d Dumper) Option {
	return func(c *Client) {
		c.dumper = d
	}
}

// New creates a client for the given control plane base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the control plane endpoint
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs a bearer-authenticated GET and returns the raw body
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	endpoint := "GET " + path
	if c.token == "" {
		return nil, &AuthError{Err: errNotAuthenticated}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, req, endpoint)
}

// do executes a request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	slog.Debug("Control plane call", "endpoint", endpoint, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(endpoint, resp.StatusCode, body)
	}
	return body, nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ctx.Err())
	}
	return fmt.Errorf("cannot connect to control plane at %s: %w", c.baseURL, err)
}

// decode unmarshals a response body, reporting failures as malformed responses
func decode(endpoint string, body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func missing(endpoint, field string) error {
	return &MalformedResponseError{Endpoint: endpoint, Field: field}
}
