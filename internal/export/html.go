// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/markup"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter writes the transcript as a standalone HTML page. Message
// content goes through the markup renderer, so model output can carry the
// supported Markdown subset but can never inject markup of its own.
type HTMLExporter struct {
	// Title is the page title. Default: "对话记录".
	Title string
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{Title: "对话记录"}
}

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; padding: 0 1em; }
.turn { margin: 12px 0; }
.label { font-weight: 700; margin-bottom: 4px; }
.user .label { color: #0b5394; }
.assistant .label { color: #38761d; }
</style>
</head>
<body>
`

// Export converts the turns to an HTML document.
func (e *HTMLExporter) Export(turns []model.Turn) ([]byte, error) {
	title := e.Title
	if title == "" {
		title = "对话记录"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(htmlHeader, title))
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", title))

	for _, turn := range turns {
		sb.WriteString(fmt.Sprintf(`<div class="turn %s">`, turn.Role))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf(`<div class="label">%s：</div>`, turn.Role.ExportLabel()))
		sb.WriteString("\n<div class=\"content\">")
		sb.WriteString(markup.Render(turn.Content))
		sb.WriteString("</div>\n</div>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}
