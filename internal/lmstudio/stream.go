// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lmstudio provides the HTTP client for communicating with an
// OpenAI-compatible local inference server such as LM Studio.
package lmstudio

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// dataPrefix is the SSE event marker local servers prepend to payload lines.
const dataPrefix = "data:"

// doneSentinel is the payload that ends a stream normally.
const doneSentinel = "[DONE]"

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader handles line-by-line parsing of a streamed chat response.
//
// Each line is classified in order of precedence: empty lines are skipped;
// a "data:" prefix is stripped and the remainder is the payload; otherwise
// the whole line is the payload. A payload equal to "[DONE]" ends the stream.
// Any other payload is parsed as JSON; when parsing fails the payload is
// delivered verbatim as a literal delta rather than treated as an error.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder

	// Progress estimation
	charCount     int
	assumedBudget int
	lastPercent   int
}

// NewStreamReader creates a new stream reader from an io.Reader.
// assumedBudget is the assumed output size for progress estimation; values
// below 1 fall back to the default of 1024.
func NewStreamReader(r io.Reader, assumedBudget int) *StreamReader {
	if assumedBudget < 1 {
		assumedBudget = 1024
	}
	return &StreamReader{
		reader:        bufio.NewReader(r),
		assumedBudget: assumedBudget,
	}
}

// Process reads the stream and calls the callback for each extracted chunk.
// Blocks until the stream is complete or the context is cancelled. The
// cancellation check happens before each line is processed.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			delta, done, err := s.readLine()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			if done {
				return nil
			}

			if delta != "" {
				s.accumulator.WriteString(delta)
				s.charCount += len([]rune(delta))
				callback(StreamChunk{Delta: delta, Percent: s.progress()})
			}
		}
	}
}

// readLine reads and classifies a single line from the stream.
// Returns the extracted delta text (possibly empty), whether the end
// sentinel was seen, and any read error.
func (s *StreamReader) readLine() (string, bool, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return "", false, io.EOF
		}
		if len(line) == 0 {
			return "", false, err
		}
		// Process the final unterminated line before surfacing EOF
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}

	payload := line
	if strings.HasPrefix(line, dataPrefix) {
		payload = strings.TrimSpace(line[len(dataPrefix):])
	}
	if payload == "" {
		return "", false, nil
	}
	if payload == doneSentinel {
		return "", true, nil
	}

	var parsed streamPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		// Not an error: servers occasionally emit non-conforming lines.
		// Degrade to literal text.
		return payload, false, nil
	}

	return extractContent(&parsed), false, nil
}

// extractContent pulls the text out of a parsed payload, preferring the
// incremental delta field and falling back to the full message field.
func extractContent(p *streamPayload) string {
	if len(p.Choices) == 0 {
		return ""
	}
	if c := p.Choices[0].Delta.Content; c != "" {
		return c
	}
	return p.Choices[0].Message.Content
}

// progress estimates response completion as min(100, chars/budget*100).
//
// The assumed budget has no relation to the limit the server actually
// enforces, so this value is approximate by construction. It is clamped to
// [0,100] and never decreases within one stream.
func (s *StreamReader) progress() int {
	percent := s.charCount * 100 / s.assumedBudget
	if percent > 100 {
		percent = 100
	}
	if percent < s.lastPercent {
		percent = s.lastPercent
	}
	s.lastPercent = percent
	return percent
}

// GetAccumulated returns all accumulated content.
func (s *StreamReader) GetAccumulated() string {
	return s.accumulator.String()
}

// Progress returns the last estimated progress percentage.
func (s *StreamReader) Progress() int {
	return s.lastPercent
}
