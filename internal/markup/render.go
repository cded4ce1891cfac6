// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup renders a limited Markdown subset to injection-safe HTML.
//
// The renderer is deliberately small: fenced code blocks, headings, block
// quotes, horizontal rules, bullet lists, and inline bold/italic/code. All
// model-supplied text passes through HTML escaping exactly once, so markup
// tokens in the output always come from this package and never from the
// input. Anything the renderer does not recognize is shown as plain escaped
// text rather than dropped.
package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// =============================================================================
// PATTERNS
// =============================================================================

// Placeholder tokens keep recognized structures out of the way while the rest
// of the text is escaped. The tokens survive escaping unchanged because they
// contain no HTML metacharacters.
var (
	codeFencePattern = regexp.MustCompile("```([\\s\\S]*?)```")
	headingPattern   = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*(.+)$`)
	quotePattern     = regexp.MustCompile(`(?m)^\s*>+\s*(.+)$`)
	tableSepPattern  = regexp.MustCompile(`(?m)^\s*\|?(?:\s*:?-+:?\s*\|)+\s*$`)
	pipePattern      = regexp.MustCompile(`\s*\|\s*`)
	rulePattern      = regexp.MustCompile(`(?m)^\s*(-{3,}|\*{3,})\s*$`)
	bulletPattern    = regexp.MustCompile(`(?m)^\s*-\s+(.*)$`)

	headingExpand = regexp.MustCompile(`(?s)@@HDR@@(.*?)@@ENDHDR@@`)
	quoteExpand   = regexp.MustCompile(`(?s)@@QUOTE@@(.*?)@@ENDQ@@`)

	// Bold runs first so the italic pattern never sees a ** pair. Go's
	// regexp has no lookarounds, so ordering carries that guarantee.
	boldPattern       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern     = regexp.MustCompile(`\*([^*\n]+)\*`)
	inlineCodePattern = regexp.MustCompile("`(.+?)`")

	blankRunPattern = regexp.MustCompile(`(\s*\n){3,}`)
)

const (
	headingHTML    = `<div style="font-weight:700;margin:6px 0;">$1</div>`
	quoteHTML      = `<div style="color:#666;margin-left:10px;border-left:3px solid #eee;padding-left:8px;">$1</div>`
	ruleHTML       = `<hr/>`
	inlineCodeHTML = `<code style="background:#f0f0f0;padding:2px;border-radius:3px;">$1</code>`
	codeBlockOpen  = `<pre style="background:#f6f8fa;padding:8px;border-radius:6px;"><code>`
	codeBlockClose = `</code></pre>`
)

// =============================================================================
// RENDERING
// =============================================================================

// Render converts text to HTML safe for a rich-text display. Empty input
// renders to the empty string.
func Render(text string) string {
	if text == "" {
		return ""
	}

	raw := strings.ReplaceAll(text, "\r\n", "\n")

	// Stage 1: pull fenced code blocks aside so escaping and inline markup
	// never touch their contents.
	var codeBlocks []string
	raw = codeFencePattern.ReplaceAllStringFunc(raw, func(m string) string {
		body := codeFencePattern.FindStringSubmatch(m)[1]
		token := fmt.Sprintf("@@CODE%d@@", len(codeBlocks))
		codeBlocks = append(codeBlocks, body)
		return token
	})

	// Stage 2: mark structural lines with placeholder tokens.
	raw = headingPattern.ReplaceAllString(raw, "@@HDR@@$1@@ENDHDR@@")
	raw = quotePattern.ReplaceAllString(raw, "@@QUOTE@@$1@@ENDQ@@")
	raw = tableSepPattern.ReplaceAllString(raw, "")
	raw = pipePattern.ReplaceAllString(raw, " • ")
	raw = rulePattern.ReplaceAllString(raw, "@@HR@@")
	raw = bulletPattern.ReplaceAllString(raw, "• $1")

	// Stage 3: escape everything that remains. Markup emitted after this
	// point is ours, not the model's.
	escaped := html.EscapeString(raw)

	// Stage 4: expand the structural tokens.
	escaped = headingExpand.ReplaceAllString(escaped, headingHTML)
	escaped = quoteExpand.ReplaceAllString(escaped, quoteHTML)
	escaped = strings.ReplaceAll(escaped, "@@HR@@", ruleHTML)

	// Stage 5: inline styles.
	escaped = boldPattern.ReplaceAllString(escaped, "<b>$1</b>")
	escaped = italicPattern.ReplaceAllString(escaped, "<i>$1</i>")
	escaped = inlineCodePattern.ReplaceAllString(escaped, inlineCodeHTML)

	// Stage 6: restore code blocks, escaping each body independently.
	for idx, body := range codeBlocks {
		token := fmt.Sprintf("@@CODE%d@@", idx)
		block := codeBlockOpen + html.EscapeString(body) + codeBlockClose
		escaped = strings.ReplaceAll(escaped, token, block)
	}

	// Stage 7: collapse runs of three or more newlines to a single blank
	// line, then turn the survivors into explicit breaks.
	escaped = blankRunPattern.ReplaceAllString(escaped, "\n\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br/>")

	return escaped
}
