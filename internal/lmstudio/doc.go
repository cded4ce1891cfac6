// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lmstudio provides the HTTP client for communicating with an
// OpenAI-compatible local inference server such as LM Studio.
//
// This package implements streaming chat completions over the
// /v1/chat/completions endpoint and model discovery over /v1/models.
//
// # Key Types
//
//   - Client: HTTP client for the inference API
//   - Message: Chat message with role and content
//   - ChatRequest: Request structure for chat completions
//   - StreamReader: Line-framed streaming response reader
//   - StreamChunk: One extracted delta with a progress estimate
//
// # Usage
//
// Create a client and stream a chat response:
//
//	client := lmstudio.NewClient()
//	err := client.StreamChat(ctx, "", messages, func(chunk lmstudio.StreamChunk) {
//	    fmt.Print(chunk.Delta)
//	})
//
// # Framing
//
// The response is a sequence of text lines. Lines may carry a "data:" event
// marker; a "[DONE]" payload ends the stream. Payloads that fail to parse as
// JSON are delivered verbatim as literal deltas rather than failing the
// stream, since local servers occasionally emit non-conforming lines.
package lmstudio
