// Package dictionary defines core types shared across the harvest and
// compose pipelines.
package dictionary

import "fmt"

// Locale identifies one of the site's interface languages.
type Locale string

// Locales supported by the source site.
const (
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
	LocaleHE Locale = "he"
)

// Locales returns the supported locales in the order the harvester probes them.
func Locales() []Locale {
	return []Locale{LocaleRU, LocaleEN, LocaleHE}
}

// NotFoundMarker is embedded in the HTML of pages the site considers absent.
// The origin returns 200 for those pages, so status alone is not enough.
const NotFoundMarker = `class="not-found"`

// Fragments holds the two raw HTML fragments captured for one locale.
// Both must be present for the capture to be valid; partial captures
// are discarded by the harvester.
type Fragments struct {
	Lead      string `json:"lead"`
	Container string `json:"container"`
}

// RawPage maps a locale to its captured fragments.
type RawPage map[Locale]Fragments

// Collection is the full raw page store: page id (decimal string, matching
// the site's pagination scheme) to per-locale fragments.
type Collection map[string]RawPage

// PageURL builds the dictionary page URL for a locale and page id.
func PageURL(base string, loc Locale, id int) string {
	return fmt.Sprintf("%s/%s/dict/%d", base, loc, id)
}

// LocaleFields groups the per-locale columns of an Entry. Empty strings and
// nil slices mean the value is absent.
type LocaleFields struct {
	Container     string
	Translation   string
	Transcription string
	WordType      string
	SearchTokens  []string
}

// Entry is one structured dictionary record, uniquely keyed by Index.
// The three HTML containers are required; the derived fields are filled
// by composition and may be absent. The status flags are plain stored
// booleans mutated by user interaction, never by composition.
type Entry struct {
	ID    int64
	Index int

	Favourite bool
	ToLearn   bool
	Known     bool

	RU LocaleFields
	EN LocaleFields
	HE LocaleFields
}

// Fields returns the locale's field group. Unknown locales map to nil so
// callers can treat them as absent.
func (e *Entry) Fields(loc Locale) *LocaleFields {
	switch loc {
	case LocaleRU:
		return &e.RU
	case LocaleEN:
		return &e.EN
	case LocaleHE:
		return &e.HE
	default:
		return nil
	}
}
