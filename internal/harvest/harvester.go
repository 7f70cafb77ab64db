package harvest

import (
	"bytes"
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/config"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/metrics"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/rawstore"
)

// Harvester walks the page id range, captures per-locale HTML fragments and
// persists progress after every batch. Batches run strictly in increasing id
// order; pages within a batch run concurrently.
type Harvester struct {
	client *Client
	store  *rawstore.Store
	logger *zap.Logger
	cfg    config.HarvestConfig

	mu         sync.Mutex
	collection dictionary.Collection
	missing    []int
	missingSet map[int]struct{}
}

// New constructs a Harvester. The store handle is the single writer for both
// the collection and the missing-page list.
func New(client *Client, store *rawstore.Store, logger *zap.Logger, cfg config.HarvestConfig) *Harvester {
	return &Harvester{
		client:     client,
		store:      store,
		logger:     logger,
		cfg:        cfg,
		collection: dictionary.Collection{},
		missingSet: map[int]struct{}{},
	}
}

// LoadProgress reads previously harvested pages so a restarted run resumes
// at the first unprocessed id.
func (h *Harvester) LoadProgress() {
	collection, missing := h.store.Load()
	h.collection = collection
	h.missing = missing
	h.missingSet = make(map[int]struct{}, len(missing))
	for _, id := range missing {
		h.missingSet[id] = struct{}{}
	}
}

// SaveProgress rewrites both files with the current in-memory state.
func (h *Harvester) SaveProgress() error {
	h.mu.Lock()
	collection := h.collection
	missing := append([]int(nil), h.missing...)
	h.mu.Unlock()
	return h.store.Save(collection, missing)
}

// Collection exposes the in-memory raw page collection.
func (h *Harvester) Collection() dictionary.Collection {
	return h.collection
}

// Missing returns a copy of the missing-page list.
func (h *Harvester) Missing() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.missing...)
}

// VerifyPage probes each locale in order with the short timeout and reports
// whether any locale serves real content. Network errors on one locale mean
// "try the next", never failure of the whole probe. On exhaustion the id is
// recorded in the missing-page list.
func (h *Harvester) VerifyPage(ctx context.Context, id int) bool {
	for _, loc := range dictionary.Locales() {
		url := dictionary.PageURL(h.cfg.BaseURL, loc, id)
		status, body, err := h.client.Verify(ctx, url)
		if err != nil {
			h.logger.Debug("verify probe failed",
				zap.Int("page", id), zap.String("locale", string(loc)), zap.Error(err))
			continue
		}
		if status == 200 && !bytes.Contains(body, []byte(dictionary.NotFoundMarker)) {
			return true
		}
	}
	h.markMissing(id)
	return false
}

// FetchPage retrieves one locale variant and cuts out the lead and container
// fragments. Both must be present or the capture is discarded; a partial
// fragment pair is not a valid result.
func (h *Harvester) FetchPage(ctx context.Context, loc dictionary.Locale, id int) (dictionary.Fragments, bool) {
	url := dictionary.PageURL(h.cfg.BaseURL, loc, id)
	start := time.Now()
	status, body, err := h.client.Fetch(ctx, url)
	if err != nil {
		metrics.ObserveFetch(string(loc), "error", time.Since(start))
		h.logger.Debug("fetch failed", zap.String("url", url), zap.Error(err))
		return dictionary.Fragments{}, false
	}
	if status != 200 || bytes.Contains(body, []byte(dictionary.NotFoundMarker)) {
		metrics.ObserveFetch(string(loc), "miss", time.Since(start))
		return dictionary.Fragments{}, false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		metrics.ObserveFetch(string(loc), "error", time.Since(start))
		h.logger.Debug("parse failed", zap.String("url", url), zap.Error(err))
		return dictionary.Fragments{}, false
	}

	lead := outerHTML(doc.Find("div.lead").First())
	container := outerHTML(doc.Find("body > div > div.container").First())
	if lead == "" || container == "" {
		metrics.ObserveFetch(string(loc), "miss", time.Since(start))
		return dictionary.Fragments{}, false
	}

	metrics.ObserveFetch(string(loc), "ok", time.Since(start))
	return dictionary.Fragments{Lead: lead, Container: container}, true
}

// ScrapePage verifies the page exists, then fetches every locale variant.
// The result is valid only if at least one locale yielded a fragment pair.
func (h *Harvester) ScrapePage(ctx context.Context, id int) (dictionary.RawPage, bool) {
	if !h.VerifyPage(ctx, id) {
		return nil, false
	}

	page := dictionary.RawPage{}
	for _, loc := range dictionary.Locales() {
		if fragments, ok := h.FetchPage(ctx, loc, id); ok {
			page[loc] = fragments
		}
	}
	if len(page) == 0 {
		return nil, false
	}
	return page, true
}

// processBatch scrapes every id concurrently. A single page's failure or
// panic is isolated and never aborts its batch-mates; results merge by id
// key so completion order does not matter.
func (h *Harvester) processBatch(ctx context.Context, ids []int) dictionary.Collection {
	results := dictionary.Collection{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					h.logger.Error("page task panicked", zap.Int("page", id), zap.Any("panic", r))
				}
			}()
			page, ok := h.ScrapePage(ctx, id)
			if !ok {
				return
			}
			mu.Lock()
			results[strconv.Itoa(id)] = page
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return results
}

// Run harvests the id range [1, page_max], skipping ids already present in
// the collection, and persists progress after every batch.
func (h *Harvester) Run(ctx context.Context) error {
	remaining := make([]int, 0, h.cfg.PageMax)
	for id := 1; id <= h.cfg.PageMax; id++ {
		if _, ok := h.collection[strconv.Itoa(id)]; !ok {
			remaining = append(remaining, id)
		}
	}
	return h.runBatches(ctx, remaining)
}

// RunMissing re-runs the batch loop over the missing-page list, giving
// transient first-pass failures a second chance. Ids that succeed on this
// pass are cleared from the list.
func (h *Harvester) RunMissing(ctx context.Context) error {
	h.mu.Lock()
	ids := make([]int, 0, len(h.missing))
	for _, id := range h.missing {
		if _, ok := h.collection[strconv.Itoa(id)]; !ok {
			ids = append(ids, id)
		}
	}
	h.mu.Unlock()
	sort.Ints(ids)
	return h.runBatches(ctx, ids)
}

func (h *Harvester) runBatches(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		h.logger.Info("nothing to harvest")
		return nil
	}

	runID := uuid.NewString()
	batchSize := h.cfg.BatchSize
	totalBatches := (len(ids) + batchSize - 1) / batchSize
	h.logger.Info("harvest run starting",
		zap.String("run_id", runID),
		zap.Int("pages", len(ids)),
		zap.Int("batches", totalBatches),
	)

	for i := 0; i < len(ids); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := ids[i:min(i+batchSize, len(ids))]
		batchNumber := i/batchSize + 1
		h.logger.Info("processing batch",
			zap.String("run_id", runID),
			zap.Int("batch", batchNumber),
			zap.Int("total_batches", totalBatches),
			zap.Int("first_page", batch[0]),
			zap.Int("last_page", batch[len(batch)-1]),
		)

		start := time.Now()
		results := h.processBatch(ctx, batch)
		h.merge(results)

		if err := h.SaveProgress(); err != nil {
			return err
		}
		metrics.AddBatch()
		metrics.SetMissing(len(h.Missing()))

		h.logger.Info("batch completed",
			zap.String("run_id", runID),
			zap.Int("batch", batchNumber),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("found", len(results)),
			zap.Int("total", len(h.collection)),
		)
	}
	return nil
}

func (h *Harvester) merge(results dictionary.Collection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, page := range results {
		h.collection[key] = page
		// A page that scraped successfully is no longer missing.
		if id, err := strconv.Atoi(key); err == nil {
			h.clearMissingLocked(id)
		}
	}
}

func (h *Harvester) markMissing(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.missingSet[id]; ok {
		return
	}
	h.missingSet[id] = struct{}{}
	h.missing = append(h.missing, id)
}

func (h *Harvester) clearMissingLocked(id int) {
	if _, ok := h.missingSet[id]; !ok {
		return
	}
	delete(h.missingSet, id)
	for i, m := range h.missing {
		if m == id {
			h.missing = append(h.missing[:i], h.missing[i+1:]...)
			break
		}
	}
}

func outerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(html)
}
