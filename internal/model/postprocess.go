// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

import (
	"regexp"
	"strings"
)

// =============================================================================
// RESPONSE POST-PROCESSING
// =============================================================================

// rolePrefixPattern matches one leading role label the model may echo back
// at the start of its reply, with either an ASCII or full-width separator.
var rolePrefixPattern = regexp.MustCompile(`(?i)^\s*(AI：|AI:|助手：|助手:|assistant：|assistant:|用户：|User:)\s*`)

// sentenceDelimPattern matches a run of sentence-terminal punctuation or
// line breaks; the run stays attached to the unit it terminates.
var sentenceDelimPattern = regexp.MustCompile(`[。！？!?\n]+`)

// StripRolePrefix removes leading role labels the model re-emits at the
// start of its output. It is applied continuously as text accumulates, so a
// label re-emitted mid-stream at the (still-)beginning of the reply does not
// survive. Stripping repeats until the text no longer starts with a label,
// which makes the function idempotent.
func StripRolePrefix(text string) string {
	for {
		stripped := rolePrefixPattern.ReplaceAllString(text, "")
		if stripped == text {
			return text
		}
		text = stripped
	}
}

// CollapseConsecutiveDuplicateSentences repairs decoding repetition
// artifacts by dropping sentence units identical to the immediately
// preceding unit. Units are split on sentence-terminal punctuation or line
// breaks with the delimiter retained; non-adjacent duplicates are preserved.
//
// Apply only once, at stream completion: while streaming, a repeated partial
// sentence is indistinguishable from legitimate partial text.
func CollapseConsecutiveDuplicateSentences(text string) string {
	if text == "" {
		return text
	}

	// Units are kept verbatim so legitimate line breaks survive; only the
	// trimmed form is used for the duplicate comparison.
	var sb strings.Builder
	lastKey := ""
	prev := 0
	emit := func(unit string) {
		key := strings.TrimSpace(unit)
		if key == "" {
			return
		}
		if key == lastKey {
			return
		}
		sb.WriteString(unit)
		lastKey = key
	}

	for _, loc := range sentenceDelimPattern.FindAllStringIndex(text, -1) {
		emit(text[prev:loc[1]])
		prev = loc[1]
	}
	emit(text[prev:])

	return sb.String()
}
