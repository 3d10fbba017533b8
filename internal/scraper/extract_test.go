package scraper

import (
	"bytes"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/nearby-events/internal/logger"
)

func testExtractor() *Extractor {
	return NewExtractor("https://www.songkick.com", logger.New(logger.LevelDebug, &bytes.Buffer{}))
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantName  string
		wantDate  string
		wantVenue string
		wantLink  string
		wantLat   float64
		wantLon   float64
		wantErr   error
	}{
		{
			name: "complete listing",
			html: `<li class="event" title="ignored">
				<time datetime="2026-12-01T21:00:00-0600"></time>
				<a class="event-link" href="/concerts/1-x"><strong>Los Bunkers</strong></a>
				<a class="venue-link">Foro Sol</a>
				<div class="microformat"><script type="application/ld+json">{"location":{"geo":{"latitude":19.4,"longitude":-99.09}}}</script></div>
			</li>`,
			wantName:  "Los Bunkers",
			wantDate:  "2026-12-01",
			wantVenue: "Foro Sol",
			wantLink:  "https://www.songkick.com/concerts/1-x",
			wantLat:   19.4,
			wantLon:   -99.09,
		},
		{
			name: "title date and no venue",
			html: `<li class="event" title="2026-12-02 Wednesday">
				<strong>Siddhartha</strong>
				<div class="microformat"><script type="application/ld+json">[{"location":{"geo":{"latitude":"25.67","longitude":"-100.31"}}},{}]</script></div>
			</li>`,
			wantName: "Siddhartha",
			wantDate: "2026-12-02",
			wantLat:  25.67,
			wantLon:  -100.31,
		},
		{
			name: "title without calendar date",
			html: `<li class="event" title="Saturday night">
				<strong>Enjambre</strong>
				<script type="application/ld+json">{"location":{"geo":{"latitude":20.6,"longitude":-103.3}}}</script>
			</li>`,
			wantName: "Enjambre",
			wantDate: "",
			wantLat:  20.6,
			wantLon:  -103.3,
		},
		{
			name: "absolute link kept",
			html: `<li class="event">
				<a class="event-link" href="https://tickets.example.com/e/9"><strong>Porter</strong></a>
				<script type="application/ld+json">{"location":{"geo":{"latitude":20.6,"longitude":-103.3}}}</script>
			</li>`,
			wantName: "Porter",
			wantLink: "https://tickets.example.com/e/9",
			wantLat:  20.6,
			wantLon:  -103.3,
		},
		{
			name: "zero coordinates are a position",
			html: `<li class="event"><strong>Null Island</strong>
				<div class="microformat"><script type="application/ld+json">{"location":{"geo":{"latitude":0,"longitude":0}}}</script></div>
			</li>`,
			wantName: "Null Island",
		},
		{
			name:    "missing longitude",
			html:    `<li class="event"><script type="application/ld+json">{"location":{"geo":{"latitude":20.6}}}</script></li>`,
			wantErr: ErrNoCoordinates,
		},
		{
			name:    "location as list",
			html:    `<li class="event"><script type="application/ld+json">{"location":[{"geo":{"latitude":20.6,"longitude":-103.3}}]}</script></li>`,
			wantErr: ErrNoCoordinates,
		},
		{
			name:    "non numeric coordinate",
			html:    `<li class="event"><script type="application/ld+json">{"location":{"geo":{"latitude":"north","longitude":"-103.3"}}}</script></li>`,
			wantErr: ErrNoCoordinates,
		},
		{
			name:    "empty array",
			html:    `<li class="event"><script type="application/ld+json">[]</script></li>`,
			wantErr: ErrNoCoordinates,
		},
		{
			name:    "no script",
			html:    `<li class="event"><strong>Nothing</strong></li>`,
			wantErr: ErrNoCoordinates,
		},
	}

	x := testExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, "<ul>"+tt.html+"</ul>")
			evt, err := x.Extract(doc.Find("li.event").First())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if evt.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", evt.Name, tt.wantName)
			}
			if evt.Date != tt.wantDate {
				t.Errorf("Date = %q, want %q", evt.Date, tt.wantDate)
			}
			if evt.Venue != tt.wantVenue {
				t.Errorf("Venue = %q, want %q", evt.Venue, tt.wantVenue)
			}
			if evt.Link != tt.wantLink {
				t.Errorf("Link = %q, want %q", evt.Link, tt.wantLink)
			}
			if evt.Latitude != tt.wantLat || evt.Longitude != tt.wantLon {
				t.Errorf("position = (%v, %v), want (%v, %v)", evt.Latitude, evt.Longitude, tt.wantLat, tt.wantLon)
			}
		})
	}
}

func TestExtract_RecoversPanic(t *testing.T) {
	evt, err := testExtractor().Extract(nil)
	if err == nil {
		t.Fatal("Extract(nil) error = nil")
	}
	if errors.Is(err, ErrNoCoordinates) {
		t.Errorf("Extract(nil) error = %v, want a recovered panic", err)
	}
	if evt != nil {
		t.Errorf("Extract(nil) event = %+v, want nil", evt)
	}
}

func TestExtractAll_SkipsFailures(t *testing.T) {
	doc := parseDoc(t, `<ul>
		<li class="event"><strong>A</strong><script type="application/ld+json">{"location":{"geo":{"latitude":1,"longitude":2}}}</script></li>
		<li class="event"><strong>B</strong></li>
		<li class="event"><strong>C</strong><script type="application/ld+json">{"location":{"geo":{"latitude":3,"longitude":4}}}</script></li>
	</ul>`)
	listed := FindListings(doc).Elements
	elements := []*goquery.Selection{listed[0], nil, listed[1], listed[2]}

	result := testExtractor().ExtractAll(elements)

	if len(result.Events) != 2 || result.Events[0].Name != "A" || result.Events[1].Name != "C" {
		t.Fatalf("Events = %+v, want A then C", result.Events)
	}
	if result.NoCoordinates != 1 {
		t.Errorf("NoCoordinates = %d, want 1", result.NoCoordinates)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
}
