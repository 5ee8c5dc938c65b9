// Package toggl is a small client for the Toggl Track v9 API covering the
// calls projctl needs: workspace lookup, project listing and creation, and
// time entries.
package toggl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/projctl/internal/config"
	"github.com/fyrsmithlabs/projctl/internal/logging"
)

const (
	// DefaultBaseURL is the Toggl Track API root.
	DefaultBaseURL = "https://api.track.toggl.com/api/v9"

	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 0.4
	defaultBurst     = 1
)

// Errors returned by the client.
var (
	ErrMissingToken      = errors.New("toggl API token not set")
	ErrWorkspaceNotFound = errors.New("toggl workspace not found")
	ErrProjectNotFound   = errors.New("toggl project not found")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("toggl API error (%d): %s", e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	Token      config.Secret
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second
	Burst      int
	HTTPClient *http.Client
}

// Client talks to Toggl Track. Requests are spaced by a rate limiter.
type Client struct {
	token      config.Secret
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client.
func NewClient(opts Options) (*Client, error) {
	if !opts.Token.IsSet() {
		return nil, ErrMissingToken
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := opts.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &Client{
		token:      opts.Token,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(limit), burst),
	}, nil
}

// do sends a request and decodes a JSON response into out, if non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.token.Value(), "api_token")
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logging.FromContext(ctx)
	log.Debug(ctx, "toggl request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("toggl request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	log.Trace(ctx, "toggl response", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
