package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/geo"
	"github.com/pfrederiksen/nearby-events/internal/logger"
)

// ErrNoCoordinates is returned for listings without a usable venue position
var ErrNoCoordinates = errors.New("listing has no coordinates")

const (
	ldJSONSelector            = `script[type="application/ld+json"]`
	microformatLDJSONSelector = "div.microformat " + ldJSONSelector
)

// Extractor turns listing elements into events.
type Extractor struct {
	base *url.URL
	log  *logger.Logger
}

// NewExtractor creates an Extractor that resolves event links against baseURL
func NewExtractor(baseURL string, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Default()
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		base = nil
	}
	return &Extractor{base: base, log: log}
}

// Extraction summarizes a pass over listing elements
type Extraction struct {
	Events        []*event.Event
	NoCoordinates int
	Failed        int
}

// ExtractAll extracts every element in order. Elements without coordinates or
// that fail to parse are skipped and counted.
func (x *Extractor) ExtractAll(elements []*goquery.Selection) Extraction {
	result := Extraction{Events: make([]*event.Event, 0, len(elements))}

	for i, el := range elements {
		evt, err := x.Extract(el)
		switch {
		case err == nil:
			result.Events = append(result.Events, evt)
		case errors.Is(err, ErrNoCoordinates):
			result.NoCoordinates++
			x.log.Debug("Skipping listing without coordinates", logger.Fields{"index": i})
		default:
			result.Failed++
			x.log.Warn("Failed to extract listing", logger.Fields{"index": i, "error": err.Error()})
		}
	}

	return result
}

// Extract parses a single listing element. A panic while reading the element is
// recovered and returned as an error.
func (x *Extractor) Extract(el *goquery.Selection) (evt *event.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			evt = nil
			err = fmt.Errorf("panic extracting listing: %v", r)
		}
	}()

	pos, ok := listingPosition(el)
	if !ok {
		return nil, ErrNoCoordinates
	}

	date, _ := listingDate(el)
	name, _ := firstText(el, "strong")
	venue, _ := firstText(el, "a.venue-link")
	link := ""
	if href, ok := el.Find("a.event-link").First().Attr("href"); ok {
		link = x.resolveLink(href)
	}

	evt = event.NewEvent(name, date, venue, link, pos)
	if evt.Date != "" && !evt.HasCalendarDate() {
		x.log.Debug("Dropping non-calendar listing date", logger.Fields{"date": evt.Date, "name": evt.Name})
		evt.Date = ""
	}
	return evt, nil
}

func (x *Extractor) resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil || x.base == nil {
		return href
	}
	return x.base.ResolveReference(ref).String()
}

// listingDate prefers a machine-readable time element and falls back to the
// element title.
func listingDate(el *goquery.Selection) (string, bool) {
	if datetime, ok := el.Find("time").First().Attr("datetime"); ok {
		return datetime, true
	}
	return el.Attr("title")
}

func firstText(el *goquery.Selection, selector string) (string, bool) {
	sel := el.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.Join(strings.Fields(sel.Text()), " "), true
}

func listingPosition(el *goquery.Selection) (geo.Point, bool) {
	script := el.Find(microformatLDJSONSelector).First()
	if script.Length() == 0 {
		script = el.Find(ldJSONSelector).First()
	}
	if script.Length() == 0 {
		return geo.Point{}, false
	}
	return parseLDPosition([]byte(script.Text()))
}

// ldEvent is the part of a schema.org Event document carrying the venue position
type ldEvent struct {
	Location *struct {
		Geo *struct {
			Latitude  *coordinate `json:"latitude"`
			Longitude *coordinate `json:"longitude"`
		} `json:"geo"`
	} `json:"location"`
}

// coordinate accepts both JSON numbers and numeric strings
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	text := string(bytes.TrimSpace(data))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("parsing coordinate %s: %w", data, err)
	}
	*c = coordinate(v)
	return nil
}

// parseLDPosition reads location.geo from an ld+json payload. Arrays yield their
// first item.
func parseLDPosition(data []byte) (geo.Point, bool) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
			return geo.Point{}, false
		}
		data = items[0]
	}

	var doc ldEvent
	if err := json.Unmarshal(data, &doc); err != nil {
		return geo.Point{}, false
	}
	if doc.Location == nil || doc.Location.Geo == nil {
		return geo.Point{}, false
	}
	lat, lon := doc.Location.Geo.Latitude, doc.Location.Geo.Longitude
	if lat == nil || lon == nil {
		return geo.Point{}, false
	}

	pos := geo.Point{Lat: float64(*lat), Lon: float64(*lon)}
	if !pos.Valid() {
		return geo.Point{}, false
	}
	return pos, true
}
