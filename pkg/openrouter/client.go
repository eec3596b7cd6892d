// Package openrouter is a stateless relay client for the OpenRouter
// chat-completions API: one outbound call per invocation, a fixed timeout,
// no retry and no caching. Any transport-level error or non-2xx status
// collapses to (nil, false); callers must treat nil as "no usable payload",
// not as an empty-but-valid result.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the fixed upstream endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const defaultTimeout = 30 * time.Second

// Client performs single round-trips against the OpenRouter API.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream base URL (tests point it at a local
// mock).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpc = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a relay client with the fixed default timeout.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatCompletion performs one chat-completion round trip. requestID is a
// correlation tag for logging only.
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest, requestID string) (*ChatCompletionResponse, bool) {
	start := time.Now()

	payload := chatPayload{
		Model:            req.Model,
		Messages:         req.Messages,
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Stream:           req.Stream,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("chat completion payload encode failed", "request_id", requestID, "err", err)
		return nil, false
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("chat completion request build failed", "request_id", requestID, "err", err)
		return nil, false
	}
	applyHeaders(httpReq, req)

	c.logger.Info("relaying chat completion", "request_id", requestID, "model", req.Model)

	data, ok := c.roundTrip(httpReq, requestID, start)
	if !ok {
		return nil, false
	}

	usage, _ := data["usage"].(map[string]any)
	c.logger.Info("chat completion succeeded",
		"request_id", requestID, "duration", time.Since(start))

	return &ChatCompletionResponse{
		Success:   true,
		RequestID: requestID,
		Response:  data,
		Model:     req.Model,
		Usage:     usage,
	}, true
}

// ListModels fetches the upstream model catalogue.
func (c *Client) ListModels(ctx context.Context, requestID string) (*ModelsResponse, bool) {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		c.logger.Error("models request build failed", "request_id", requestID, "err", err)
		return nil, false
	}

	data, ok := c.roundTrip(httpReq, requestID, start)
	if !ok {
		return nil, false
	}

	count := 0
	if list, ok := data["data"].([]any); ok {
		count = len(list)
	}
	c.logger.Info("fetched models", "request_id", requestID, "count", count, "duration", time.Since(start))

	return &ModelsResponse{
		Success:   true,
		RequestID: requestID,
		Models:    data,
		Count:     count,
	}, true
}

// roundTrip performs the request and decodes a 2xx JSON body. Everything
// else (transport error, non-2xx, undecodable body) is logged and collapses
// to (nil, false).
func (c *Client) roundTrip(req *http.Request, requestID string, start time.Time) (map[string]any, bool) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Error("upstream request failed",
			"request_id", requestID, "err", err, "duration", time.Since(start))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.logger.Error("upstream returned non-success status",
			"request_id", requestID, "status", resp.StatusCode, "duration", time.Since(start))
		return nil, false
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Error("upstream response decode failed",
			"request_id", requestID, "err", err, "duration", time.Since(start))
		return nil, false
	}
	return data, true
}

// applyHeaders sets the bearer token from the request itself plus the
// optional site attribution headers OpenRouter uses for rankings.
func applyHeaders(httpReq *http.Request, req ChatCompletionRequest) {
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.SiteURL != "" {
		httpReq.Header.Set("HTTP-Referer", req.SiteURL)
	}
	if req.SiteName != "" {
		httpReq.Header.Set("X-Title", req.SiteName)
	}
}
