// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to disk.
//
// # Key Types
//
//   - Exporter: Interface rendering turns to a byte format
//   - TextExporter: Labeled plain-text blocks (用户：/AI：)
//   - MarkdownExporter: Markdown document with a heading per turn
//   - HTMLExporter: Standalone HTML page, content rendered injection-safe
//   - Options: Output directory and filename stem
//
// # Usage
//
// Export a transcript as plain text into the current directory:
//
//	path, err := export.ExportToFile(log.History(), export.NewTextExporter(), nil)
//
// Filenames carry a timestamp, so exports never overwrite each other.
package export
