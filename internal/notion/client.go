// Package notion creates project pages in a Notion database and links them
// to the client (user) page they belong to.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/projctl/internal/config"
	"github.com/fyrsmithlabs/projctl/internal/logging"
)

const (
	// DefaultBaseURL is the Notion API root.
	DefaultBaseURL = "https://api.notion.com/v1"

	// APIVersion is sent as Notion-Version on every request.
	APIVersion = "2022-06-28"

	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 0.4
	defaultBurst     = 1
)

// Errors returned by the client.
var (
	ErrMissingToken   = errors.New("notion API token not set")
	ErrClientNotFound = errors.New("notion client page not found")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// Options configures a Client.
type Options struct {
	Token     config.Secret
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// Client talks to Notion using a bearer integration token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if !opts.Token.IsSet() {
		return nil, ErrMissingToken
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit, burst := opts.RateLimit, opts.Burst
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if burst <= 0 {
		burst = defaultBurst
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token.Value()})
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = timeout

	return &Client{
		baseURL:    baseURL,
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(limit), burst),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
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

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Notion-Version", APIVersion)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logging.FromContext(ctx)
	log.Debug(ctx, "notion request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	log.Trace(ctx, "notion response", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(respBody, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(respBody)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
