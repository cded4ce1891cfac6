// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to disk.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/model"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export renders the turns to the target format.
	Export(turns []model.Turn) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".txt").
	FileExtension() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// BaseName is the filename stem before the timestamp.
	// Default: "对话记录"
	BaseName string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir: ".",
		BaseName:  "对话记录",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ErrEmptyTranscript is returned when there are no turns to export.
var ErrEmptyTranscript = fmt.Errorf("没有对话记录可导出")

// ExportToFile exports a transcript using the given exporter and returns the
// output file path. The filename carries a timestamp so repeated exports never
// overwrite each other.
func ExportToFile(turns []model.Turn, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(turns) == 0 {
		return "", ErrEmptyTranscript
	}

	content, err := exporter.Export(turns)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s%s",
		sanitizeFilename(opts.BaseName),
		timestamp,
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "对话记录"
	}

	return string(result)
}
