// Package capsuleapi talks to the CapsuleX backend, the owner of capsule,
// game and leaderboard records.
package capsuleapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"capsulex-blink/actionerr"
	"capsulex-blink/logging"
)

const (
	defaultBaseURL = "http://localhost:3001"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config configures the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a read-only client of the backend REST API. Responses use the
// envelope {success, data, error}.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a backend client. The http.Client is shared by all
// requests.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// get fetches path and returns the envelope's data member. what names the
// resource in errors.
func (c *Client) get(ctx context.Context, path, what string) (gjson.Result, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return gjson.Result{}, actionerr.NewUpstreamUnavailable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, actionerr.NewUpstreamUnavailable(fmt.Errorf("failed to fetch %s: %w", what, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return gjson.Result{}, actionerr.NewUpstreamUnavailable(fmt.Errorf("failed to read %s: %w", what, err))
	}

	logging.For(ctx, c.logger).Debug("backend call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	envelope := gjson.ParseBytes(body)
	upstreamMsg := envelope.Get("error").String()

	if resp.StatusCode == http.StatusNotFound {
		return gjson.Result{}, actionerr.NewNotFound(what, fmt.Errorf("backend 404: %s", upstreamMsg))
	}
	if resp.StatusCode >= 400 {
		return gjson.Result{}, actionerr.NewUpstreamUnavailable(
			fmt.Errorf("failed to fetch %s: status %d: %s", what, resp.StatusCode, upstreamMsg))
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, actionerr.NewUpstreamUnavailable(fmt.Errorf("failed to fetch %s: invalid JSON", what))
	}
	if !envelope.Get("success").Bool() {
		if upstreamMsg == "" {
			upstreamMsg = "request unsuccessful"
		}
		return gjson.Result{}, actionerr.NewUpstreamUnavailable(fmt.Errorf("failed to fetch %s: %s", what, upstreamMsg))
	}

	data := envelope.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return gjson.Result{}, actionerr.NewNotFound(what, fmt.Errorf("backend returned no data"))
	}
	return data, nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
