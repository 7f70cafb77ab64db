// Package extract implements the rules that derive structured fields from a
// single locale's raw HTML fragment. Every rule tolerates empty or malformed
// input by returning the zero value ("absent") instead of an error: raw pages
// are hand-authored markup whose shape varies by part of speech, language,
// and page revision.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Transcription anchor points, probed in priority order: infinitive form
// (verbs), singular noun, masculine singular adjective, then the generic
// lead block covering adverbs and conjunctions.
var transcriptionAnchors = []string{
	"div#INF-L",
	"div#s",
	"div#ms-a",
	"div.lead",
}

func parse(fragment string) (*goquery.Document, bool) {
	if strings.TrimSpace(fragment) == "" {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// Translation returns the trimmed text of the fragment's first lead block,
// or "" when the block is missing or empty. Used for the ru and en locales.
func Translation(fragment string) string {
	doc, ok := parse(fragment)
	if !ok {
		return ""
	}
	lead := doc.Find("div.lead").First()
	if lead.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(lead.Text())
}

// HebrewHeadword extracts the Hebrew headword from the page's primary header.
// Inline markup is stripped, the remaining text is split on whitespace, and
// the last token is returned if it contains at least one Hebrew-range rune.
func HebrewHeadword(fragment string) string {
	doc, ok := parse(fragment)
	if !ok {
		return ""
	}
	header := doc.Find("h2.page-header").First()
	if header.Length() == 0 {
		return ""
	}
	words := strings.Fields(header.Text())
	if len(words) == 0 {
		return ""
	}
	last := words[len(words)-1]
	if !containsHebrew(last) {
		return ""
	}
	return last
}

func containsHebrew(s string) bool {
	for _, r := range s {
		if r >= 0x0590 && r <= 0x05FF {
			return true
		}
	}
	return false
}

// Transcription finds the first present anchor point and returns the trimmed
// text of its nested transcription element. The first anchor that exists
// decides the outcome: a present anchor without a transcription yields "".
func Transcription(fragment string) string {
	doc, ok := parse(fragment)
	if !ok {
		return ""
	}
	for _, anchor := range transcriptionAnchors {
		sel := doc.Find(anchor).First()
		if sel.Length() == 0 {
			continue
		}
		return strings.TrimSpace(sel.Find(".transcription").First().Text())
	}
	return ""
}

// WordType derives the part-of-speech label from the first paragraph of the
// fragment's outer container: the text before the first hyphen, trimmed,
// lowercased, with the first rune capitalized. The site mixes ASCII hyphens
// and en dashes, so both terminate the label. Multi-word labels keep only
// the first rune capitalized.
func WordType(fragment string) string {
	doc, ok := parse(fragment)
	if !ok {
		return ""
	}
	container := doc.Find("div.container").First()
	if container.Length() == 0 {
		return ""
	}
	p := container.Find("p").First()
	if p.Length() == 0 {
		return ""
	}
	text := p.Text()
	if i := strings.IndexAny(text, "-–"); i >= 0 {
		text = text[:i]
	}
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(text)
	return strings.ToUpper(string(r)) + text[size:]
}

// SearchTokens splits a translation on commas into trimmed, non-empty search
// tokens, preserving order. Nil means absent.
func SearchTokens(translation string) []string {
	if translation == "" {
		return nil
	}
	var tokens []string
	for _, part := range strings.Split(translation, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}
