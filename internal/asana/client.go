// Package asana is a minimal Asana REST client for placing new projects in
// a team, optionally from a project template.
package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/projctl/internal/config"
	"github.com/fyrsmithlabs/projctl/internal/logging"
)

const (
	// DefaultBaseURL is the Asana API root.
	DefaultBaseURL = "https://app.asana.com/api/1.0"

	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 0.4
	defaultBurst     = 1
)

// Errors returned by the client.
var (
	ErrMissingToken      = errors.New("asana API token not set")
	ErrWorkspaceNotFound = errors.New("asana workspace not found")
	ErrTeamNotFound      = errors.New("asana team not found")
	ErrTemplateNotFound  = errors.New("asana project template not found")
	ErrProjectNotFound   = errors.New("asana project not found")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Messages   []string
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("asana API error (%d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("asana API error (%d): %s", e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	Token      config.Secret
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	HTTPClient *http.Client
}

// Client talks to Asana.
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

	limit, burst := opts.RateLimit, opts.Burst
	if limit <= 0 {
		limit = defaultRateLimit
	}
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

// envelope is Asana's {"data": ...} wrapper, used for both directions.
type envelope[T any] struct {
	Data T `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do sends in wrapped as {"data": in} and unwraps the response data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(envelope[any]{Data: in})
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
	req.SetBasicAuth(c.token.Value(), "")
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logging.FromContext(ctx)
	log.Debug(ctx, "asana request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("asana request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	log.Trace(ctx, "asana response", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		var er errorResponse
		if json.Unmarshal(respBody, &er) == nil {
			for _, e := range er.Errors {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}
