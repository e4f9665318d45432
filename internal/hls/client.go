package hls

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hlsget/internal/logger"
)

// headerTransport injects a shared header set into every outgoing request.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// Client is the HTTP client shared by playlist resolution and segment
// acquisition. Every request carries the reference's header set, a bounded
// timeout, and TLS certificate verification.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a client that attaches headers to every request and
// bounds each call by timeout.
func NewClient(log logger.Logger, headers map[string]string, timeout time.Duration) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &headerTransport{
				headers: headers,
				base:    transport,
			},
		},
		logger: log,
	}
}

// Get issues a GET and returns the response. The caller owns the body.
// Non-2xx statuses are returned as errors with the body drained and closed.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("request to %s returned status %d", url, resp.StatusCode)
	}

	return resp, nil
}

// GetText fetches url and returns the body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body from %s: %w", url, err)
	}
	return string(data), nil
}

// BaseURL returns the directory component of a playlist URL: everything up
// to, but not including, the final slash of the path.
func BaseURL(playlistURL string) string {
	if idx := strings.LastIndex(playlistURL, "/"); idx >= 0 {
		return playlistURL[:idx]
	}
	return playlistURL
}
