// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lmstudio provides the HTTP client for communicating with an
// OpenAI-compatible local inference server such as LM Studio.
package lmstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the inference client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeBadStatus
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "inference server is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsNotRunning checks if an error indicates the server is unreachable.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the inference client.
type ClientConfig struct {
	// BaseURL is the server base URL (default: http://127.0.0.1:1234)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string

	// ChatPath is the chat completions path (default: /v1/chat/completions)
	ChatPath string

	// ModelsPath is the model discovery path (default: /v1/models)
	ModelsPath string

	// Timeout for non-streaming requests such as model discovery (default: 5s)
	Timeout time.Duration

	// DefaultModel to use if none specified
	DefaultModel string

	// Temperature for chat requests (default: 0.2)
	Temperature float64

	// MaxTokens requested per response (default: 1024)
	MaxTokens int

	// AssumedBudget is the assumed output size used for progress estimation.
	// This is a heuristic only; the server's real limit is not observable
	// from the stream. Default: 1024.
	AssumedBudget int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://127.0.0.1:1234",
		ChatPath:      "/v1/chat/completions",
		ModelsPath:    "/v1/models",
		Timeout:       5 * time.Second,
		DefaultModel:  "qwen/qwen3-30b-a3b-2507",
		Temperature:   0.2,
		MaxTokens:     1024,
		AssumedBudget: 1024,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with an OpenAI-compatible inference server.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := lmstudio.NewClient()
//	err := client.StreamChat(ctx, "", messages, func(chunk lmstudio.StreamChunk) {
//	    fmt.Print(chunk.Delta)
//	})
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:1234"
	}
	if config.ChatPath == "" {
		config.ChatPath = "/v1/chat/completions"
	}
	if config.ModelsPath == "" {
		config.ModelsPath = "/v1/models"
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Temperature == 0 {
		config.Temperature = 0.2
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 1024
	}
	if config.AssumedBudget == 0 {
		config.AssumedBudget = 1024
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// GetDefaultModel returns the current default model.
func (c *Client) GetDefaultModel() string {
	return c.config.DefaultModel
}

// SetModel updates the default model.
func (c *Client) SetModel(model string) {
	c.config.DefaultModel = model
}

// =============================================================================
// MODEL DISCOVERY
// =============================================================================

// ListModels retrieves the model names known to the server.
//
// The response is accepted in either of the shapes local servers are seen to
// emit: {"data": [{"id"|"name": ...}, ...]} or a bare list of such objects.
// The returned list is de-duplicated, preserving order. Any transport failure,
// non-200 status, or unrecognized shape yields an empty list and an error;
// callers are expected to treat discovery as non-fatal and fall back to a
// saved or default list.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+c.config.ModelsPath, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeBadStatus,
			Message: "failed to list models: " + resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}

	var entries []modelEntry

	// Wrapped form first, then a bare list.
	var wrapped modelListResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Data) > 0 {
		entries = wrapped.Data
	} else if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "unrecognized model list shape", Cause: err}
	}

	names := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := e.ID
		if name == "" {
			name = e.Name
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names, nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// StreamChat sends a streaming chat request and calls the callback for each
// extracted chunk. The callback is called synchronously in the order chunks
// are received. Returns when the stream ends, the context is cancelled, or a
// transport/status failure occurs.
//
// A single malformed payload line does not fail the stream: its text is
// delivered verbatim as a literal chunk (local servers occasionally emit
// non-conforming lines).
func (c *Client) StreamChat(ctx context.Context, model string, messages []Message, callback StreamCallback) error {
	if model == "" {
		model = c.config.DefaultModel
	}

	reqBody := ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Stream:      true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// Use a client without timeout for streaming (cancellation is handled
	// via context).
	// SECURITY: TLS not required - the server runs locally over HTTP.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+c.config.ChatPath, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeNotRunning, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Try to read an error message from the body
		var srvErr serverError
		if err := json.NewDecoder(resp.Body).Decode(&srvErr); err == nil && srvErr.Error != "" {
			return &ClientError{
				Type:    ErrTypeBadStatus,
				Message: "HTTP " + resp.Status + ": " + srvErr.Error,
			}
		}
		return &ClientError{
			Type:    ErrTypeBadStatus,
			Message: "stream request failed: " + resp.Status,
		}
	}

	reader := NewStreamReader(resp.Body, c.config.AssumedBudget)
	return reader.Process(ctx, callback)
}
