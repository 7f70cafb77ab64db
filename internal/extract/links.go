package extract

import (
	"fmt"
	"html"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
)

var (
	// Raw dictionary-page links: /dict/<id> with an optional slug.
	dictPageLink = regexp.MustCompile(`^/dict/(\d+)(?:-[^/?#]*)?/?$`)
	// Parameterized query links: /dict/?... carry no stable target.
	dictQueryLink = regexp.MustCompile(`^/dict/\?`)
)

// RepairLinks rewrites anchors pointing at raw dictionary pages into the
// application's internal route form /dictionary/<locale>/<id> and unwraps
// parameterized query links, keeping their inner text. The returned flag
// reports whether anything changed; when false the fragment is returned
// verbatim so unchanged records are never rewritten.
func RepairLinks(fragment string, loc dictionary.Locale) (string, bool) {
	doc, ok := parse(fragment)
	if !ok {
		return fragment, false
	}

	changed := false
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if m := dictPageLink.FindStringSubmatch(href); m != nil {
			sel.SetAttr("href", fmt.Sprintf("/dictionary/%s/%s", loc, m[1]))
			changed = true
			return
		}
		if dictQueryLink.MatchString(href) {
			sel.ReplaceWithHtml(html.EscapeString(sel.Text()))
			changed = true
		}
	})
	if !changed {
		return fragment, false
	}

	repaired, err := doc.Find("body").Html()
	if err != nil {
		return fragment, false
	}
	return repaired, true
}
