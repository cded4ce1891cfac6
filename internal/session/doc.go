// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs streaming chat requests and manages their lifecycle.
//
// A Session wraps one request from submission to a terminal state and emits
// its progress as Events. A Manager owns at most one active session, so a
// resubmission or cancellation can never interleave two streams into the
// same conversation.
//
// # Key Types
//
//   - Session: One streaming request with an event feed
//   - Manager: Single-active-session supervisor
//   - Event: Delta or finished notification from a session
//   - Status: Lifecycle state (connecting, streaming, completed, ...)
//
// # Usage
//
// Start a session and drain its events:
//
//	mgr := session.NewManager(client)
//	s := mgr.Start(model, messages)
//	for ev := range s.Events() {
//	    switch ev.Kind {
//	    case session.EventDelta:
//	        // ev.Text is the full postprocessed text so far
//	    case session.EventFinished:
//	        // ev.Status is Completed, Errored, or Cancelled
//	    }
//	}
//
// # Guarantees
//
// Every session emits exactly one EventFinished, on every path: normal
// completion, server error, cancellation, and parser panic. Delta events may
// be dropped under consumer backpressure; each carries a full text snapshot,
// so drops lose no content.
package session
