package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
)

// maxBodySnippet caps how much of an error response body is kept for logs.
const maxBodySnippet = 512

// Client is a stateless Jules API transport. It holds no per-session
// state beyond the shared Config, so one instance is safe to share across
// every higher-level component.
type Client struct {
	cfg  *Config
	http *http.Client
}

// NewClient creates a client around the given config. The HTTP timeout is
// the only deadline the transport imposes; callers add their own via ctx.
func NewClient(cfg *Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithHTTP creates a client with a custom *http.Client, used by
// tests to point at an httptest server.
func NewClientWithHTTP(cfg *Config, hc *http.Client) *Client {
	return &Client{cfg: cfg, http: hc}
}

// do issues one authenticated request and returns the raw response body.
// Error classification: missing key before any network attempt, transport
// failures, then non-2xx statuses with a captured body snippet.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any) ([]byte, error) {
	apiKey := c.cfg.APIKey()
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u := c.cfg.BaseURL() + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-goog-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	// Correlation id ties log lines from one request together.
	reqID := ulid.Make().String()
	slog.Debug("api request", "id", reqID, "method", method, "endpoint", endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("api transport failure", "id", reqID, "endpoint", endpoint, "error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("api read failure", "id", reqID, "endpoint", endpoint, "error", err)
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := bodySnippet(data)
		slog.Warn("api server error", "id", reqID, "endpoint", endpoint, "status", resp.StatusCode, "body", snippet)
		return nil, &ServerError{Status: resp.StatusCode, Body: snippet}
	}

	return data, nil
}

// request decodes a JSON response into T.
func request[T any](ctx context.Context, c *Client, method, endpoint string, query url.Values, body any) (*T, error) {
	data, err := c.do(ctx, method, endpoint, query, body)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		slog.Warn("api decode failure", "endpoint", endpoint, "error", err, "body", bodySnippet(data))
		return nil, &DecodingError{Err: err}
	}
	return &out, nil
}

// requestVoid issues a request whose success carries no body worth keeping.
func requestVoid(ctx context.Context, c *Client, method, endpoint string, query url.Values, body any) error {
	_, err := c.do(ctx, method, endpoint, query, body)
	return err
}

func bodySnippet(data []byte) string {
	if len(data) > maxBodySnippet {
		data = data[:maxBodySnippet]
	}
	return string(data)
}
