// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lmstudio provides the HTTP client for communicating with an
// OpenAI-compatible local inference server such as LM Studio.
package lmstudio

import (
	"context"
	"strings"
	"testing"
)

// collect runs the reader over the given body and returns the chunks seen.
func collect(t *testing.T, body string, budget int) ([]StreamChunk, error) {
	t.Helper()
	reader := NewStreamReader(strings.NewReader(body), budget)
	var chunks []StreamChunk
	err := reader.Process(context.Background(), func(chunk StreamChunk) {
		chunks = append(chunks, chunk)
	})
	return chunks, err
}

func joined(chunks []StreamChunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Delta)
	}
	return sb.String()
}

// =============================================================================
// FRAMING TESTS
// =============================================================================

func TestStreamReader_DeltaConcatenation(t *testing.T) {
	body := `data: {"choices":[{"delta":{"content":"Hi"}}]}
data: {"choices":[{"delta":{"content":" there"}}]}
data: [DONE]
`
	chunks, err := collect(t, body, 1024)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got := joined(chunks); got != "Hi there" {
		t.Errorf("joined deltas = %q, want 'Hi there'", got)
	}
}

func TestStreamReader_SkipsEmptyLines(t *testing.T) {
	body := "\n\ndata: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\ndata: [DONE]\n"
	chunks, err := collect(t, body, 1024)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(chunks) != 1 || chunks[0].Delta != "a" {
		t.Errorf("chunks = %+v, want single 'a'", chunks)
	}
}

func TestStreamReader_UnprefixedLine(t *testing.T) {
	// Lines without the event marker are treated as whole payloads.
	body := `{"choices":[{"delta":{"content":"raw"}}]}
[DONE]
`
	chunks, err := collect(t, body, 1024)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got := joined(chunks); got != "raw" {
		t.Errorf("joined deltas = %q, want 'raw'", got)
	}
}

func TestStreamReader_MalformedPayloadIsLiteralDelta(t *testing.T) {
	// A payload that fails JSON parsing is not an error; it degrades to
	// literal text.
	body := "data: not json at all\ndata: [DONE]\n"
	chunks, err := collect(t, body, 1024)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(chunks) != 1 || chunks[0].Delta != "not json at all" {
		t.Errorf("chunks = %+v, want literal 'not json at all'", chunks)
	}
}

func TestStreamReader_MessageContentFallback(t *testing.T) {
	// When the delta field is absent or empty, the full-message field is used.
	body := `data: {"choices":[{"message":{"content":"full"}}]}
data: {"choices":[{"delta":{"content":""},"message":{"content":"back"}}]}
data: [DONE]
`
	chunks, err := collect(t, body, 1024)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got := joined(chunks); got != "fullback" {
		t.Errorf("joined deltas = %q, want 'fullback'", got)
	}
}

func TestStreamReader_EmptyExtractionEmitsNothing(t *testing.T) {
	body := `data: {"choices":[{"delta":{}}]}
data: {"choices":[]}
data: [DONE]
`
	chunks, err := collect(t, body, 1024)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(chunks) != 0 {
		t.Errorf("chunks = %+v, want none", chunks)
	}
}

func TestStreamReader_EOFWithoutSentinel(t *testing.T) {
	// A stream ending without [DONE] is still a normal end.
	body := `data: {"choices":[{"delta":{"content":"tail"}}]}`
	chunks, err := collect(t, body, 1024)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got := joined(chunks); got != "tail" {
		t.Errorf("joined deltas = %q, want 'tail'", got)
	}
}

func TestStreamReader_StopsAtSentinel(t *testing.T) {
	body := `data: {"choices":[{"delta":{"content":"a"}}]}
data: [DONE]
data: {"choices":[{"delta":{"content":"b"}}]}
`
	chunks, err := collect(t, body, 1024)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got := joined(chunks); got != "a" {
		t.Errorf("joined deltas = %q, want 'a' (nothing after the sentinel)", got)
	}
}

// =============================================================================
// CANCELLATION TESTS
// =============================================================================

func TestStreamReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewStreamReader(strings.NewReader("data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n"), 1024)
	err := reader.Process(ctx, func(StreamChunk) {
		t.Error("callback should not fire after cancellation")
	})

	if err != context.Canceled {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// PROGRESS TESTS
// =============================================================================

func TestStreamReader_ProgressMonotonicAndClamped(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString(`data: {"choices":[{"delta":{"content":"aaaa"}}]}` + "\n")
	}
	sb.WriteString("data: [DONE]\n")

	// Budget of 100 chars; 200 chars streamed, so progress must clamp at 100.
	chunks, err := collect(t, sb.String(), 100)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	last := -1
	for _, c := range chunks {
		if c.Percent < last {
			t.Fatalf("progress decreased: %d after %d", c.Percent, last)
		}
		if c.Percent > 100 {
			t.Fatalf("progress exceeded 100: %d", c.Percent)
		}
		last = c.Percent
	}

	if last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

func TestStreamReader_ProgressCountsRunes(t *testing.T) {
	// Multi-byte characters count once each.
	body := `data: {"choices":[{"delta":{"content":"你好"}}]}
data: [DONE]
`
	chunks, err := collect(t, body, 4)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(chunks) != 1 || chunks[0].Percent != 50 {
		t.Errorf("chunks = %+v, want one chunk at 50%%", chunks)
	}
}

func TestStreamReader_Accumulated(t *testing.T) {
	reader := NewStreamReader(strings.NewReader("data: {\"choices\":[{\"delta\":{\"content\":\"ab\"}}]}\ndata: [DONE]\n"), 1024)
	if err := reader.Process(context.Background(), func(StreamChunk) {}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got := reader.GetAccumulated(); got != "ab" {
		t.Errorf("GetAccumulated() = %q, want 'ab'", got)
	}
}
