// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"time"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/lmstudio"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/util"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns at most one active session at a time. Starting a new session
// cancels the previous one first, so two streams never write into the
// conversation concurrently.
type Manager struct {
	streamer ChatStreamer

	// switchWait bounds how long Start waits for a cancelled predecessor
	// to exit before launching its replacement.
	switchWait time.Duration

	current *Session
	nextSeq int
}

// DefaultShutdownGrace matches the interactive feel of the desktop original:
// give an in-flight stream a moment to notice cancellation, then abandon it.
const DefaultShutdownGrace = 2 * time.Second

const defaultSwitchWait = 500 * time.Millisecond

// NewManager creates a manager that issues requests through streamer.
func NewManager(streamer ChatStreamer) *Manager {
	return &Manager{
		streamer:   streamer,
		switchWait: defaultSwitchWait,
	}
}

// Start cancels any active session and launches a new one for messages.
// An empty model means the client's default. The returned session is already
// running.
//
// Safe for single-consumer use only; the Bubble Tea update loop is that
// consumer.
func (m *Manager) Start(model string, messages []lmstudio.Message) *Session {
	if old := m.current; old != nil && !old.Status().Terminal() {
		old.Cancel()
		select {
		case <-old.Done():
		case <-time.After(m.switchWait):
			// The old stream is stuck past cancellation; its finish
			// path is exactly-once, so abandoning it is safe.
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.nextSeq++
	s := newSession(generateSessionID(m.nextSeq), model, cancel)
	m.current = s

	go s.run(ctx, m.streamer, messages)
	return s
}

// Current returns the most recently started session, or nil.
func (m *Manager) Current() *Session {
	return m.current
}

// Active returns true if a session is running.
func (m *Manager) Active() bool {
	return m.current != nil && !m.current.Status().Terminal()
}

// Cancel cancels the active session, if any.
func (m *Manager) Cancel() {
	if m.current != nil {
		m.current.Cancel()
	}
}

// Shutdown cancels the active session and waits up to grace for it to exit.
// It returns false if the session was abandoned still running. A grace of
// zero or less uses DefaultShutdownGrace.
func (m *Manager) Shutdown(grace time.Duration) bool {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	s := m.current
	if s == nil {
		return true
	}
	s.Cancel()
	select {
	case <-s.Done():
		return true
	case <-time.After(grace):
		return false
	}
}

// generateSessionID creates a unique session ID.
func generateSessionID(seq int) string {
	return "chat_" + time.Now().Format("20060102_150405") + "_" + util.IntToString(seq)
}
