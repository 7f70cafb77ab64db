// Package verify reports whether the raw page collection and the word
// database are present and in sync with each other.
package verify

import (
	"context"

	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
)

// Data source statuses.
const (
	StatusReady   = "Ready"
	StatusAsync   = "Async"
	StatusMissing = "Missing"
)

// CollectionSource exposes the raw page store state.
type CollectionSource interface {
	Attached() bool
	Load() (dictionary.Collection, []int)
}

// EntryCounter counts persisted word records.
type EntryCounter interface {
	Count(ctx context.Context) (int, error)
}

// Report captures a point-in-time view of both data sources.
type Report struct {
	CollectionAttached bool `json:"collection_attached"`
	CollectionCount    int  `json:"collection_count"`
	DatabaseAttached   bool `json:"database_attached"`
	DatabaseCount      int  `json:"database_count"`
}

// Check inspects the collection file and the database. A counter that
// fails (or a nil counter) marks the database as detached rather than
// failing the whole check.
func Check(ctx context.Context, source CollectionSource, counter EntryCounter, logger *zap.Logger) Report {
	report := Report{}

	if source != nil && source.Attached() {
		report.CollectionAttached = true
		collection, _ := source.Load()
		report.CollectionCount = len(collection)
	}

	if counter != nil {
		count, err := counter.Count(ctx)
		if err != nil {
			logger.Warn("database unreachable", zap.Error(err))
		} else {
			report.DatabaseAttached = true
			report.DatabaseCount = count
		}
	}

	logger.Info("data verification finished",
		zap.Bool("collection_attached", report.CollectionAttached),
		zap.Int("collection_count", report.CollectionCount),
		zap.Bool("database_attached", report.DatabaseAttached),
		zap.Int("database_count", report.DatabaseCount),
	)
	return report
}

// CollectionStatus reduces the report to a collection-side status label.
func (r Report) CollectionStatus() string {
	if !r.CollectionAttached || r.CollectionCount == 0 {
		return StatusMissing
	}
	if r.CollectionCount == r.DatabaseCount {
		return StatusReady
	}
	return StatusAsync
}

// DatabaseStatus reduces the report to a database-side status label.
func (r Report) DatabaseStatus() string {
	if !r.DatabaseAttached || r.DatabaseCount == 0 {
		return StatusMissing
	}
	if r.CollectionCount == r.DatabaseCount {
		return StatusReady
	}
	return StatusAsync
}
