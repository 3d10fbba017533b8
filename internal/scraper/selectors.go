package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListingSelectors are tried in order against the page markup; the first one with
// at least one match wins. Class selectors match whole class tokens.
var ListingSelectors = []string{
	"li.event-listings-element",
	"li.event",
	"div.event-listings-element",
	"div.event",
	"article.event",
	`div[data-testid="event-item"]`,
	"li.event-item",
}

// WaitSelectors are polled in the browser after the settle delay, before the
// markup is read. None of them is required to appear.
var WaitSelectors = []string{
	"li.event-listings-element",
	".event-listings li",
	".event-listings .event",
	"[data-testid='event-item']",
	".event-item",
}

// fallbackClassToken is searched for in class attributes when no listing selector matched
const fallbackClassToken = "event"

// Match is the outcome of the selector cascade
type Match struct {
	// Candidate is the selector that matched, empty when nothing did
	Candidate string
	Elements  []*goquery.Selection
	// Fallback is set when elements came from the class substring scan
	Fallback bool
}

// Empty reports whether the cascade found no listing elements
func (m Match) Empty() bool {
	return len(m.Elements) == 0
}

// FindListings runs the selector cascade over a parsed page. Finding nothing is
// a valid result, not an error.
func FindListings(doc *goquery.Document) Match {
	for _, selector := range ListingSelectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			return Match{Candidate: selector, Elements: split(sel)}
		}
	}

	fallback := doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return strings.Contains(strings.ToLower(class), fallbackClassToken)
	})
	if fallback.Length() > 0 {
		return Match{Candidate: "[class*=" + fallbackClassToken + "]", Elements: split(fallback), Fallback: true}
	}

	return Match{}
}

func split(sel *goquery.Selection) []*goquery.Selection {
	elements := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, s)
	})
	return elements
}
