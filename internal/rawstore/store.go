// Package rawstore persists the raw page collection and the missing-page
// list as JSON documents on disk.
package rawstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
)

// Store reads and rewrites the collection and missing-list files wholesale.
// It assumes a single writer; the harvester persists after every batch so a
// crash loses at most one batch of work.
type Store struct {
	collectionPath string
	missingPath    string
	logger         *zap.Logger
}

// New constructs a Store over the two configured file paths.
func New(collectionPath, missingPath string, logger *zap.Logger) *Store {
	return &Store{
		collectionPath: collectionPath,
		missingPath:    missingPath,
		logger:         logger,
	}
}

// Attached reports whether the collection file exists on disk.
func (s *Store) Attached() bool {
	_, err := os.Stat(s.collectionPath)
	return err == nil
}

// Load reads both files. A missing or corrupt file yields an empty value:
// that is the fresh-start path, not an error.
func (s *Store) Load() (dictionary.Collection, []int) {
	collection := dictionary.Collection{}
	if data, err := os.ReadFile(s.collectionPath); err != nil {
		s.logger.Info("no collection file found, starting fresh", zap.String("path", s.collectionPath))
	} else if err := json.Unmarshal(data, &collection); err != nil {
		s.logger.Info("collection file unreadable, starting fresh",
			zap.String("path", s.collectionPath), zap.Error(err))
		collection = dictionary.Collection{}
	} else {
		s.logger.Info("loaded existing collection",
			zap.String("path", s.collectionPath), zap.Int("entries", len(collection)))
	}

	var missing []int
	if data, err := os.ReadFile(s.missingPath); err == nil {
		if err := json.Unmarshal(data, &missing); err != nil {
			s.logger.Info("missing-page file unreadable, starting fresh",
				zap.String("path", s.missingPath), zap.Error(err))
			missing = nil
		}
	}

	return collection, missing
}

// Save rewrites both files with pretty-printed UTF-8 JSON.
func (s *Store) Save(collection dictionary.Collection, missing []int) error {
	if err := writeJSON(s.collectionPath, collection); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	if missing == nil {
		missing = []int{}
	}
	if err := writeJSON(s.missingPath, missing); err != nil {
		return fmt.Errorf("save missing list: %w", err)
	}
	s.logger.Debug("progress saved",
		zap.String("path", s.collectionPath),
		zap.Int("entries", len(collection)),
		zap.Int("missing", len(missing)),
	)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
