// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/lmstudio"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/model"
)

// =============================================================================
// STATUS
// =============================================================================

// Status describes where a session is in its lifecycle.
type Status int

const (
	// StatusIdle means the session has been created but not started.
	StatusIdle Status = iota

	// StatusConnecting means the request is in flight but no content has
	// arrived yet.
	StatusConnecting

	// StatusStreaming means at least one delta has been received.
	StatusStreaming

	// StatusCompleted means the stream finished normally.
	StatusCompleted

	// StatusErrored means the stream failed.
	StatusErrored

	// StatusCancelled means the session was cancelled before finishing.
	StatusCancelled
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusErrored:
		return "errored"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal returns true if the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusErrored || s == StatusCancelled
}

// =============================================================================
// EVENTS
// =============================================================================

// EventKind distinguishes the event types a session emits.
type EventKind int

const (
	// EventDelta carries an incremental content update.
	EventDelta EventKind = iota

	// EventFinished is the single terminal event of a session.
	EventFinished
)

// Event is one update from a running session.
//
// Delta events carry the newest fragment plus a full snapshot of the text so
// far, so a consumer that misses a delta loses nothing. The finished event
// carries the terminal status; for StatusCompleted, Text holds the final
// postprocessed reply.
type Event struct {
	Kind    EventKind
	Delta   string
	Text    string
	Percent int
	Status  Status
	Message string
}

// ChatStreamer is the client-side dependency a session needs. *lmstudio.Client
// satisfies it.
type ChatStreamer interface {
	StreamChat(ctx context.Context, model string, messages []lmstudio.Message, callback lmstudio.StreamCallback) error
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one streaming request from submission to terminal state.
//
// A session moves through Connecting and Streaming and ends in exactly one of
// Completed, Errored, or Cancelled. Exactly one EventFinished is emitted on
// the event channel no matter how the stream ends, including a panic inside
// the response parser.
type Session struct {
	id     string
	model  string
	cancel context.CancelFunc
	done   chan struct{}
	events chan Event

	mu      sync.Mutex
	status  Status
	raw     strings.Builder
	text    string
	percent int
	message string

	finishOnce sync.Once
}

// eventBuffer sizes the event channel. Delta events are dropped when the
// consumer falls this far behind; each delta carries a full text snapshot, so
// drops lose no content.
const eventBuffer = 64

func newSession(id, model string, cancel context.CancelFunc) *Session {
	return &Session{
		id:     id,
		model:  model,
		cancel: cancel,
		done:   make(chan struct{}),
		events: make(chan Event, eventBuffer),
		status: StatusIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Model returns the model name the session was started with; empty means the
// client default.
func (s *Session) Model() string {
	return s.model
}

// Events returns the session's event feed. The channel is closed after the
// finished event.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed when the session's goroutine has fully exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Text returns the postprocessed content received so far. After completion it
// is the final reply text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Percent returns the approximate progress, 0-100.
func (s *Session) Percent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.percent
}

// Message returns the error description for an errored or cancelled session.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Cancel requests cancellation. Safe to call repeatedly and after the session
// has finished.
func (s *Session) Cancel() {
	s.cancel()
}

// =============================================================================
// STREAM LOOP
// =============================================================================

// run drives the request to a terminal state. It owns the event channel and
// closes it on exit.
func (s *Session) run(ctx context.Context, streamer ChatStreamer, messages []lmstudio.Message) {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			s.finish(StatusErrored, fmt.Sprintf("internal error: %v", r))
		}
	}()

	s.mu.Lock()
	s.status = StatusConnecting
	s.mu.Unlock()

	err := streamer.StreamChat(ctx, s.model, messages, func(chunk lmstudio.StreamChunk) {
		s.absorb(chunk)
	})

	switch {
	case err == nil:
		s.complete()
	case ctx.Err() == context.Canceled:
		s.finish(StatusCancelled, "已取消")
	default:
		s.finish(StatusErrored, err.Error())
	}
}

// absorb folds one chunk into the session state and emits a delta event.
func (s *Session) absorb(chunk lmstudio.StreamChunk) {
	s.mu.Lock()
	s.status = StatusStreaming
	s.raw.WriteString(chunk.Delta)

	// Strip role labels the model echoes back at the start of its reply.
	// Reapplied on every delta: a label can arrive split across chunks, so
	// an early snapshot that looks clean may gain a prefix later.
	s.text = model.StripRolePrefix(s.raw.String())

	if chunk.Percent > s.percent {
		s.percent = chunk.Percent
	}
	ev := Event{
		Kind:    EventDelta,
		Delta:   chunk.Delta,
		Text:    s.text,
		Percent: s.percent,
		Status:  StatusStreaming,
	}
	s.mu.Unlock()

	// Drop the delta if the consumer is far behind; the next event's Text
	// snapshot carries everything this one did.
	select {
	case s.events <- ev:
	default:
	}
}

// complete applies the final-text postprocessing and finishes the session.
func (s *Session) complete() {
	s.mu.Lock()
	final := model.CollapseConsecutiveDuplicateSentences(strings.TrimSpace(s.text))
	s.text = final
	s.mu.Unlock()
	s.finish(StatusCompleted, "")
}

// finish transitions to a terminal status, emits the finished event, and
// closes the event channel. Only the first call has any effect.
func (s *Session) finish(status Status, message string) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.status = status
		s.message = message
		if status == StatusCompleted {
			s.percent = 100
		}
		ev := Event{
			Kind:    EventFinished,
			Text:    s.text,
			Percent: s.percent,
			Status:  status,
			Message: message,
		}
		s.mu.Unlock()

		// The finished event must land even if the consumer stopped
		// draining; discard stale deltas until there is room.
		for {
			select {
			case s.events <- ev:
				close(s.events)
				return
			default:
				select {
				case <-s.events:
				default:
				}
			}
		}
	})
}
