// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/lmstudio"
)

// fakeStreamer scripts a stream: deliver chunks, then return err. With block
// set it waits for cancellation after the chunks; with ignoreCancel it never
// returns until released, simulating a stuck connection.
type fakeStreamer struct {
	chunks       []lmstudio.StreamChunk
	err          error
	block        bool
	ignoreCancel bool
	release      chan struct{}
}

func (f *fakeStreamer) StreamChat(ctx context.Context, model string, messages []lmstudio.Message, callback lmstudio.StreamCallback) error {
	for _, c := range f.chunks {
		callback(c)
	}
	if f.ignoreCancel {
		<-f.release
		return nil
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

// panicStreamer simulates a parser blowing up mid-stream.
type panicStreamer struct{}

func (panicStreamer) StreamChat(ctx context.Context, model string, messages []lmstudio.Message, callback lmstudio.StreamCallback) error {
	panic("bad payload")
}

// drain collects all events until the channel closes, guarded by a timeout.
func drain(t *testing.T, s *Session) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out draining session events")
		}
	}
}

func chunksFor(deltas ...string) []lmstudio.StreamChunk {
	chunks := make([]lmstudio.StreamChunk, len(deltas))
	for i, d := range deltas {
		chunks[i] = lmstudio.StreamChunk{Delta: d, Percent: (i + 1) * 10}
	}
	return chunks
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestSession_CompletesWithFinalText(t *testing.T) {
	m := NewManager(&fakeStreamer{chunks: chunksFor("Hi", " there")})
	s := m.Start("", nil)

	events := drain(t, s)
	last := events[len(events)-1]

	if last.Kind != EventFinished {
		t.Fatalf("last event kind = %d, want EventFinished", last.Kind)
	}
	if last.Status != StatusCompleted {
		t.Errorf("final status = %v, want completed", last.Status)
	}
	if last.Text != "Hi there" {
		t.Errorf("final text = %q, want 'Hi there'", last.Text)
	}
	if s.Status() != StatusCompleted {
		t.Errorf("Status() = %v, want completed", s.Status())
	}
}

func TestSession_ExactlyOneFinishedEvent(t *testing.T) {
	streamers := map[string]ChatStreamer{
		"completed": &fakeStreamer{chunks: chunksFor("ok")},
		"errored":   &fakeStreamer{err: errors.New("boom")},
		"panicked":  panicStreamer{},
	}

	for name, streamer := range streamers {
		t.Run(name, func(t *testing.T) {
			m := NewManager(streamer)
			s := m.Start("", nil)

			finished := 0
			for _, ev := range drain(t, s) {
				if ev.Kind == EventFinished {
					finished++
				}
			}
			if finished != 1 {
				t.Errorf("finished events = %d, want exactly 1", finished)
			}
		})
	}
}

func TestSession_ErrorSurfacesMessage(t *testing.T) {
	m := NewManager(&fakeStreamer{err: errors.New("connection refused")})
	s := m.Start("", nil)

	events := drain(t, s)
	last := events[len(events)-1]

	if last.Status != StatusErrored {
		t.Errorf("final status = %v, want errored", last.Status)
	}
	if last.Message != "connection refused" {
		t.Errorf("message = %q, want 'connection refused'", last.Message)
	}
}

func TestSession_PanicBecomesError(t *testing.T) {
	m := NewManager(panicStreamer{})
	s := m.Start("", nil)

	events := drain(t, s)
	last := events[len(events)-1]

	if last.Status != StatusErrored {
		t.Errorf("final status = %v, want errored", last.Status)
	}
	if last.Message == "" {
		t.Error("panic message should be surfaced")
	}

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Error("session goroutine did not exit after panic")
	}
}

func TestSession_CancelEndsCancelled(t *testing.T) {
	m := NewManager(&fakeStreamer{chunks: chunksFor("partial"), block: true})
	s := m.Start("", nil)

	// Let the chunk land, then cancel.
	deadline := time.After(time.Second)
	for s.Text() == "" {
		select {
		case <-deadline:
			t.Fatal("no delta arrived")
		case <-time.After(time.Millisecond):
		}
	}
	s.Cancel()

	events := drain(t, s)
	last := events[len(events)-1]

	if last.Status != StatusCancelled {
		t.Errorf("final status = %v, want cancelled (not errored)", last.Status)
	}
}

// =============================================================================
// POSTPROCESSING TESTS
// =============================================================================

func TestSession_StripsRolePrefixAcrossDeltas(t *testing.T) {
	// The role label arrives split across two deltas.
	m := NewManager(&fakeStreamer{chunks: chunksFor("AI", "： 你好")})
	s := m.Start("", nil)

	events := drain(t, s)
	last := events[len(events)-1]

	if last.Text != "你好" {
		t.Errorf("final text = %q, want prefix stripped '你好'", last.Text)
	}
}

func TestSession_CollapsesDuplicateSentencesOnCompletion(t *testing.T) {
	m := NewManager(&fakeStreamer{chunks: chunksFor("重复。", "重复。", "结束。")})
	s := m.Start("", nil)

	events := drain(t, s)
	last := events[len(events)-1]

	if last.Text != "重复。结束。" {
		t.Errorf("final text = %q, want duplicates collapsed", last.Text)
	}
}

func TestSession_DeltaSnapshotsGrow(t *testing.T) {
	m := NewManager(&fakeStreamer{chunks: chunksFor("a", "b", "c")})
	s := m.Start("", nil)

	prevLen := 0
	for _, ev := range drain(t, s) {
		if ev.Kind != EventDelta {
			continue
		}
		if len(ev.Text) < prevLen {
			t.Errorf("snapshot shrank: %q", ev.Text)
		}
		prevLen = len(ev.Text)
	}
}

func TestSession_ProgressMonotonic(t *testing.T) {
	m := NewManager(&fakeStreamer{chunks: []lmstudio.StreamChunk{
		{Delta: "a", Percent: 30},
		{Delta: "b", Percent: 20},
		{Delta: "c", Percent: 90},
	}})
	s := m.Start("", nil)

	prev := 0
	for _, ev := range drain(t, s) {
		if ev.Percent < prev {
			t.Errorf("progress regressed: %d after %d", ev.Percent, prev)
		}
		prev = ev.Percent
	}
	if s.Percent() != 100 {
		t.Errorf("completed session Percent() = %d, want 100", s.Percent())
	}
}

// =============================================================================
// MANAGER TESTS
// =============================================================================

func TestManager_StartCancelsPredecessor(t *testing.T) {
	m := NewManager(&fakeStreamer{block: true})

	first := m.Start("", nil)
	second := m.Start("", nil)

	events := drain(t, first)
	if last := events[len(events)-1]; last.Status != StatusCancelled {
		t.Errorf("first session status = %v, want cancelled", last.Status)
	}
	if m.Current() != second {
		t.Error("Current() should be the new session")
	}
	second.Cancel()
	drain(t, second)
}

func TestManager_ShutdownWaitsForExit(t *testing.T) {
	m := NewManager(&fakeStreamer{block: true})
	m.Start("", nil)

	if !m.Shutdown(time.Second) {
		t.Error("Shutdown should report clean exit for a cancellable stream")
	}
}

func TestManager_ShutdownAbandonsStuckStream(t *testing.T) {
	f := &fakeStreamer{ignoreCancel: true, release: make(chan struct{})}
	m := NewManager(f)
	m.Start("", nil)

	if m.Shutdown(50 * time.Millisecond) {
		t.Error("Shutdown should report the stream was abandoned")
	}
	close(f.release)
}

func TestManager_ShutdownWithoutSession(t *testing.T) {
	m := NewManager(&fakeStreamer{})
	if !m.Shutdown(0) {
		t.Error("Shutdown with no session should succeed")
	}
}

func TestManager_Active(t *testing.T) {
	m := NewManager(&fakeStreamer{block: true})
	if m.Active() {
		t.Error("Active() should be false before any start")
	}

	s := m.Start("", nil)
	if !m.Active() {
		t.Error("Active() should be true while streaming")
	}

	s.Cancel()
	drain(t, s)
	if m.Active() {
		t.Error("Active() should be false after terminal state")
	}
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusIdle, "idle"},
		{StatusConnecting, "connecting"},
		{StatusStreaming, "streaming"},
		{StatusCompleted, "completed"},
		{StatusErrored, "errored"},
		{StatusCancelled, "cancelled"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusErrored, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
	for _, s := range []Status{StatusIdle, StatusConnecting, StatusStreaming} {
		if s.Terminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
}
