// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the saved model list between runs.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/util"
)

// =============================================================================
// MODEL STORE
// =============================================================================

// ModelStore handles persistence of the model names shown in the model
// picker. The list is an ordered JSON array; order is the order models were
// saved in.
type ModelStore struct {
	// BaseDir is the directory holding the list file.
	// Default: ~/.smrtlocal/
	BaseDir string
}

// modelsFilename is the list file inside BaseDir.
const modelsFilename = "saved_models.json"

// NewModelStore creates a store under the user's home directory.
func NewModelStore() (*ModelStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewModelStoreWithDir(filepath.Join(homeDir, ".smrtlocal"))
}

// NewModelStoreWithDir creates a store with a custom base directory.
// Useful for testing.
func NewModelStoreWithDir(baseDir string) (*ModelStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &ModelStore{BaseDir: baseDir}, nil
}

// Load returns the saved model list. A missing or unreadable file is not an
// error; the caller falls back to its defaults with an empty list.
func (s *ModelStore) Load() []string {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		return nil
	}

	var models []string
	if err := json.Unmarshal(data, &models); err != nil {
		return nil
	}

	return dedup(models)
}

// Save writes the model list, dropping duplicates and empty names while
// preserving first-seen order.
func (s *ModelStore) Save(models []string) error {
	data, err := json.MarshalIndent(dedup(models), "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.filePath(), data, 0644)
}

// ErrModelExists is returned by Add for a name already in the list.
var ErrModelExists = errors.New("model already saved")

// Add appends one model name to the saved list.
func (s *ModelStore) Add(name string) error {
	if name == "" {
		return errors.New("model name is empty")
	}

	models := s.Load()
	for _, m := range models {
		if m == name {
			return ErrModelExists
		}
	}

	return s.Save(append(models, name))
}

func (s *ModelStore) filePath() string {
	return filepath.Join(s.BaseDir, modelsFilename)
}

// dedup drops empty names and duplicates, keeping first-seen order.
func dedup(models []string) []string {
	seen := make(map[string]bool, len(models))
	out := make([]string, 0, len(models))
	for _, m := range models {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
