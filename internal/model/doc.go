// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
//
// The package owns three concerns:
//
//   - Turn and Role: immutable records of what was said and by whom
//   - ConversationLog: the append-only history plus the single-placeholder
//     lifecycle for an in-flight assistant response
//   - Post-processing: repairs for model artifacts (echoed role labels and
//     repeated sentences) applied to accumulated response text
//
// History invariants: past entries are never mutated, an assistant turn is
// appended at most once per completed stream, and a completion identical to
// the previous assistant turn is discarded. The placeholder is resolved or
// failed exactly once; later attempts are no-ops.
package model
