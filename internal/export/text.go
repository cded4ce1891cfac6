// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/model"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter writes the transcript as plain text, one labeled block per
// turn:
//
//	用户：
//	<content>
//
//	AI：
//	<content>
type TextExporter struct{}

// NewTextExporter creates a plain-text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export renders the turns as labeled plain-text blocks.
func (e *TextExporter) Export(turns []model.Turn) ([]byte, error) {
	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(turn.Role.ExportLabel())
		sb.WriteString("：\n")
		sb.WriteString(turn.Content)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String()), nil
}

// FileExtension returns ".txt".
func (e *TextExporter) FileExtension() string {
	return ".txt"
}
