package compose

import (
	"context"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/metrics"
)

// EntryWriter persists structured entries. InsertBatch must be atomic: on
// failure no entry of the batch may remain persisted, so the converter can
// retry each entry individually.
type EntryWriter interface {
	InsertBatch(ctx context.Context, entries []*dictionary.Entry) error
	Insert(ctx context.Context, entry *dictionary.Entry) error
}

// Converter drives the raw-to-structured pipeline: extract every raw record,
// compose derived fields over a worker pool, then bulk-persist.
type Converter struct {
	collection dictionary.Collection
	writer     EntryWriter
	logger     *zap.Logger
	workers    int
}

// NewConverter constructs a Converter over a loaded raw collection.
// workers caps the compose pool; 0 selects min(32, 2x available parallelism).
func NewConverter(collection dictionary.Collection, writer EntryWriter, logger *zap.Logger, workers int) *Converter {
	if workers <= 0 {
		workers = 2 * runtime.GOMAXPROCS(0)
		if workers > 32 {
			workers = 32
		}
	}
	return &Converter{
		collection: collection,
		writer:     writer,
		logger:     logger,
		workers:    workers,
	}
}

// Convert extracts every raw record and composes the derived fields.
// Extraction failures drop the record with a logged error; composition
// failures keep the record with absent derived fields. Entries come back
// ordered by index so batching is deterministic.
func (c *Converter) Convert(ctx context.Context) []*dictionary.Entry {
	keys := make([]string, 0, len(c.collection))
	for key := range c.collection {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})

	entries := make([]*dictionary.Entry, 0, len(keys))
	for _, key := range keys {
		entry, err := Extract(key, c.collection[key])
		if err != nil {
			c.logger.Error("extract failed", zap.String("page", key), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	c.composeAll(ctx, entries)

	c.logger.Info("converted raw records", zap.Int("entries", len(entries)))
	return entries
}

// composeAll fans entries out to a fixed worker pool. Composition is
// parsing-bound and independent per entry; workers share no mutable state.
func (c *Converter) composeAll(ctx context.Context, entries []*dictionary.Entry) {
	work := make(chan *dictionary.Entry)
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range work {
				c.composeOne(entry)
			}
		}()
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		work <- entry
	}
	close(work)
	wg.Wait()
}

// composeOne isolates a single entry's composition: an unexpected panic is
// logged and the partially composed entry is kept for persistence.
func (c *Converter) composeOne(entry *dictionary.Entry) {
	defer func() {
		if r := recover(); r != nil {
			metrics.AddComposed("error")
			c.logger.Error("compose failed", zap.Int("index", entry.Index), zap.Any("panic", r))
		}
	}()
	Compose(entry)
	metrics.AddComposed("ok")
}

// Run converts the collection and persists the entries in batches. A failed
// batch is rolled back and retried record by record, so one bad record never
// sacrifices its batch-mates. Returns the count of entries actually saved.
func (c *Converter) Run(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	entries := c.Convert(ctx)
	saved := 0

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[i:end]
		batchNumber := i/batchSize + 1

		err := c.writer.InsertBatch(ctx, batch)
		if err == nil {
			saved += len(batch)
			metrics.AddInsert("batch", "ok")
			c.logger.Info("saved batch", zap.Int("batch", batchNumber), zap.Int("records", len(batch)))
			continue
		}
		metrics.AddInsert("batch", "error")
		c.logger.Warn("batch insert failed, retrying records individually",
			zap.Int("batch", batchNumber), zap.Error(err))

		for _, entry := range batch {
			if err := c.writer.Insert(ctx, entry); err != nil {
				metrics.AddInsert("single", "error")
				c.logger.Error("record insert failed, dropping record",
					zap.Int("index", entry.Index), zap.Error(err))
				continue
			}
			metrics.AddInsert("single", "ok")
			saved++
		}
	}

	c.logger.Info("conversion finished", zap.Int("saved", saved), zap.Int("converted", len(entries)))
	return saved, nil
}
