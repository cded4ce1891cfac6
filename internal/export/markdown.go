// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter writes the transcript as a Markdown document with a
// heading per turn. Message content is emitted verbatim; replies are usually
// Markdown already.
type MarkdownExporter struct {
	// Model is recorded in the document header when non-empty.
	Model string
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(modelName string) *MarkdownExporter {
	return &MarkdownExporter{Model: modelName}
}

// Export converts the turns to Markdown.
func (e *MarkdownExporter) Export(turns []model.Turn) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# 对话记录\n\n")
	if e.Model != "" {
		sb.WriteString(fmt.Sprintf("- **模型**: %s\n", e.Model))
	}
	sb.WriteString(fmt.Sprintf("- **导出时间**: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString("---\n\n")

	for _, turn := range turns {
		sb.WriteString(fmt.Sprintf("## %s\n\n", turn.Role.ExportLabel()))
		sb.WriteString(turn.Content)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}
