// Package compose turns raw page records into structured dictionary entries
// by running the extraction rules and persisting the results.
package compose

import (
	"fmt"
	"strconv"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/extract"
)

// Extract builds a structured entry from a raw page record: the page key
// becomes the unique index and the three HTML containers are attached.
// Derived fields are filled later by Compose.
func Extract(key string, page dictionary.RawPage) (*dictionary.Entry, error) {
	index, err := strconv.Atoi(key)
	if err != nil {
		return nil, fmt.Errorf("parse page key %q: %w", key, err)
	}

	entry := &dictionary.Entry{Index: index}
	for _, loc := range dictionary.Locales() {
		entry.Fields(loc).Container = page[loc].Container
	}
	return entry, nil
}

// Compose runs the extraction rules against the entry's own HTML containers
// and fills the derived fields in place. It touches no state outside the
// entry, so distinct entries can be composed concurrently, and re-running it
// on unchanged containers yields identical values.
func Compose(entry *dictionary.Entry) {
	for _, loc := range dictionary.Locales() {
		fields := entry.Fields(loc)

		if loc == dictionary.LocaleHE {
			fields.Translation = extract.HebrewHeadword(fields.Container)
		} else {
			fields.Translation = extract.Translation(fields.Container)
		}
		fields.Transcription = extract.Transcription(fields.Container)
		fields.WordType = extract.WordType(fields.Container)
		fields.SearchTokens = extract.SearchTokens(fields.Translation)

		if repaired, changed := extract.RepairLinks(fields.Container, loc); changed {
			fields.Container = repaired
		}
	}
}
