// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lmstudio provides the HTTP client for communicating with an
// OpenAI-compatible local inference server such as LM Studio.
package lmstudio

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message in the conversation.
type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // The message content
}

// ChatRequest is the request body for the chat completions endpoint.
type ChatRequest struct {
	Model       string    `json:"model"`       // Model name (e.g., "qwen/qwen3-30b-a3b-2507")
	Messages    []Message `json:"messages"`    // Conversation history
	Temperature float64   `json:"temperature"` // Sampling temperature
	MaxTokens   int       `json:"max_tokens"`  // Max tokens to generate
	Stream      bool      `json:"stream"`      // Enable streaming
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// streamPayload is the wire shape of one streamed chat-completions payload.
// Servers emit either an incremental delta or a full message per choice;
// both fields are captured so extraction can fall back from one to the other.
type streamPayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// modelEntry is one entry of the model discovery response.
type modelEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// modelListResponse is the wrapped form of the model discovery response.
// Some servers return {"data": [...]} and some return a bare list; both
// shapes are accepted by ListModels.
type modelListResponse struct {
	Data []modelEntry `json:"data"`
}

// serverError is the error body some servers attach to non-200 responses.
type serverError struct {
	Error string `json:"error"`
}

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk represents a single extracted piece of a streaming response.
type StreamChunk struct {
	// Delta is the extracted text for this chunk. It is never empty: chunks
	// with no extractable text are not delivered to the callback.
	Delta string

	// Percent is the estimated response progress in [0,100]. The estimate is
	// derived from accumulated character count against an assumed output
	// budget; it is a heuristic, not a true completion fraction.
	Percent int
}

// StreamCallback is called for each chunk received during streaming.
type StreamCallback func(chunk StreamChunk)

// =============================================================================
// HELPER METHODS
// =============================================================================

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}
