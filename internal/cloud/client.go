// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the chat-completion API client.
//
// The client speaks the OpenAI-compatible chat completions protocol: a
// single POST with the full message history, a Bearer credential, and a
// JSON body carrying model, messages, temperature, and max_tokens.
package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Configuration constants for the chat completions API.
const (
	// DefaultEndpoint is the chat completions URL used when the config
	// does not override it.
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

	// DefaultModel is the model requested when the config does not
	// override it.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds a whole request. The submission controller
	// relies on this: because the transport always settles, a busy turn
	// always completes.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxRetries is the number of attempts for transient errors.
	DefaultMaxRetries = 3

	// DefaultTemperature and DefaultMaxTokens are fixed request
	// parameters; the app exposes no sampling controls.
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// userAgent identifies the client to the API.
	userAgent = "souschef/0.1.0"
)

// Rate limiter defaults. Interactive use never approaches these; they cap
// retry storms so a failing endpoint is not hammered.
const (
	requestsPerSecond = 5
	requestBurst      = 10
)

// Error variables for common API failures.
var (
	// ErrNotConfigured indicates no API credential is set.
	ErrNotConfigured = errors.New("API credential not configured")

	// ErrAuthFailed indicates the credential was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")
)

// APIError represents an error response from the API, carrying the
// upstream error.message when one was supplied.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// ChatRequest is the request body for the chat completions endpoint.
// Temperature and MaxTokens are always sent; the wire shape is fixed.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ChatResponse is the response body from the chat completions endpoint.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GetContent returns the content of the first choice, or empty string if
// none.
func (r *ChatResponse) GetContent() string {
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content
	}
	return ""
}

// apiErrorResponse is the error envelope returned on non-2xx statuses.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the chat completions API. Credential and model
// are guarded by a mutex because a config reload can swap them while a
// request command is in flight.
type Client struct {
	mu       sync.RWMutex
	apiKey   string
	model    string
	endpoint string

	httpClient *http.Client
	maxRetries int
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a client with the given API credential. An empty
// credential is allowed; Chat then fails with ErrNotConfigured and the
// caller uses the local path instead.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   strings.TrimSpace(apiKey),
		model:    DefaultModel,
		endpoint: DefaultEndpoint,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		maxRetries: DefaultMaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		logger:     zerolog.Nop(),
	}
}

// WithEndpoint sets the chat completions URL.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = strings.TrimSuffix(endpoint, "/")
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithModel sets the model requested from the API.
func (c *Client) WithModel(model string) *Client {
	c.SetModel(model)
	return c
}

// WithLogger sets the logger used for request diagnostics.
func (c *Client) WithLogger(logger zerolog.Logger) *Client {
	c.logger = logger
	return c
}

// SetModel swaps the requested model. Safe under a live config reload.
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

// Model returns the model currently requested from the API.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetCredential swaps the API credential. Safe under a live config reload.
func (c *Client) SetCredential(apiKey string) {
	c.mu.Lock()
	c.apiKey = strings.TrimSpace(apiKey)
	c.mu.Unlock()
}

// IsConfigured returns true if the client has an API credential.
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

// KeyMasked returns a display form of the credential.
// SECURITY: Never exposes credential fragments - use fingerprint instead.
func (c *Client) KeyMasked() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.keyFingerprint())
}

// keyFingerprint returns a short identifier derived from the credential.
// SECURITY: SHA-256 hash identifies the key without exposing it.
func (c *Client) keyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// CHAT
// =============================================================================

// Chat performs a chat completion request and returns the assistant text.
//
// Transient failures (rate limiting, 5xx) are retried with exponential
// backoff. The error variant carries the upstream error.message where the
// API supplied one; the caller decides whether to fall back to the local
// synthesizer.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	c.mu.RLock()
	reqBody := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	endpoint := c.endpoint
	c.mu.RUnlock()

	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			c.logger.Debug().Int("attempt", attempt).Dur("delay", delay).Msg("retrying chat request")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		// Pace attempts so retry loops cannot hammer the endpoint.
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		content, err := c.doRequest(ctx, endpoint, reqBody)
		if err != nil {
			if c.isRetryable(err) {
				lastErr = err
				continue
			}
			return "", err
		}
		return content, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return "", errors.New("max retries exceeded")
}

// doRequest performs a single HTTP request to the chat completions
// endpoint and extracts the first choice's content.
//
// SECURITY: Clears the Authorization header after the request so the
// credential never lingers on a loggable object.
func (c *Client) doRequest(ctx context.Context, endpoint string, reqBody ChatRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	c.setHeaders(req, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	req.Header.Del("Authorization")

	if err != nil {
		c.logger.Warn().Str("request_id", requestID).Err(err).Msg("chat request failed")
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("chat response")

	// SECURITY: Read response with size limit to prevent memory exhaustion
	body, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	// A success body without a first choice is malformed.
	if len(chatResp.Choices) == 0 {
		return "", &APIError{Message: "response contained no choices", Status: resp.StatusCode}
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Int("prompt_tokens", chatResp.Usage.PromptTokens).
		Int("completion_tokens", chatResp.Usage.CompletionTokens).
		Msg("chat usage")

	return chatResp.GetContent(), nil
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request, requestID string) {
	c.mu.RLock()
	apiKey := c.apiKey
	c.mu.RUnlock()

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
}

// readResponse reads the response body with a size cap.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}

	return body, nil
}

// handleErrorResponse converts HTTP error responses to Go errors, keeping
// the upstream error.message when the body parses.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		e := &APIError{
			Code:    apiErr.Error.Code,
			Message: apiErr.Error.Message,
			Status:  statusCode,
		}

		switch statusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrAuthFailed, e.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, e.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, e.Message)
		default:
			return e
		}
	}

	// Unparseable error body.
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{
			Message: strings.TrimSpace(string(body)),
			Status:  statusCode,
		}
	}
}

// isRetryable determines if an error should trigger a retry.
func (c *Client) isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}

	// Context cancellation is never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return false
}

// calculateBackoff returns the delay before the next retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, capped at retryMaxDelay.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
