package filter

import (
	"math"
	"testing"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/geo"
)

func newEvent(name string, lat, lon float64) *event.Event {
	return event.NewEvent(name, "2026-11-02", "", "", geo.Point{Lat: lat, Lon: lon})
}

func TestRadius_Apply(t *testing.T) {
	origin := geo.Point{Lat: 19.4, Lon: -99.1}

	tests := []struct {
		name      string
		radiusKM  float64
		events    []*event.Event
		wantNames []string
	}{
		{
			name:     "keeps nearby and drops far",
			radiusKM: 10,
			events: []*event.Event{
				newEvent("near", 19.45, -99.1),
				newEvent("far", 20.67, -103.35),
			},
			wantNames: []string{"near"},
		},
		{
			name:     "preserves order",
			radiusKM: 50,
			events: []*event.Event{
				newEvent("c", 19.5, -99.1),
				newEvent("a", 19.4, -99.1),
				newEvent("b", 19.3, -99.2),
			},
			wantNames: []string{"c", "a", "b"},
		},
		{
			name:      "zero radius keeps exact origin",
			radiusKM:  0,
			events:    []*event.Event{newEvent("here", 19.4, -99.1), newEvent("next door", 19.401, -99.1)},
			wantNames: []string{"here"},
		},
		{
			name:      "negative radius keeps nothing",
			radiusKM:  -1,
			events:    []*event.Event{newEvent("here", 19.4, -99.1)},
			wantNames: []string{},
		},
		{
			name:      "nil events skipped",
			radiusKM:  10,
			events:    []*event.Event{nil, newEvent("here", 19.4, -99.1)},
			wantNames: []string{"here"},
		},
		{
			name:      "empty input",
			radiusKM:  10,
			events:    nil,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRadius(origin, tt.radiusKM).Apply(tt.events)

			if got == nil {
				t.Fatal("Apply() returned nil slice")
			}
			if len(got) != len(tt.wantNames) {
				t.Fatalf("Apply() kept %d events, want %d", len(got), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if got[i].Name != name {
					t.Errorf("event[%d] = %q, want %q", i, got[i].Name, name)
				}
			}
		})
	}
}

func TestRadius_Boundary(t *testing.T) {
	origin := geo.Point{Lat: 19.4, Lon: -99.1}
	evt := newEvent("edge", 19.624830401, -99.1)

	f := NewRadius(origin, 25)
	kept := f.Apply([]*event.Event{evt})
	if len(kept) != 1 {
		t.Fatalf("event at ~25 km dropped by 25 km radius")
	}
	if math.Abs(kept[0].DistanceKM-25.0) > 0.01 {
		t.Errorf("DistanceKM = %v, want ~25.0", kept[0].DistanceKM)
	}

	if got := NewRadius(origin, 24.9).Apply([]*event.Event{newEvent("edge", 19.624830401, -99.1)}); len(got) != 0 {
		t.Errorf("event at ~25 km kept by 24.9 km radius")
	}
}

func TestRadius_TwentyFiveKilometerListing(t *testing.T) {
	origin := geo.Point{Lat: 19.4, Lon: -99.1}

	tests := []struct {
		radiusKM float64
		wantKept bool
	}{
		{radiusKM: 20, wantKept: false},
		{radiusKM: 30, wantKept: true},
	}

	for _, tt := range tests {
		kept := NewRadius(origin, tt.radiusKM).Apply([]*event.Event{newEvent("edge", 19.624830401, -99.1)})
		if got := len(kept) == 1; got != tt.wantKept {
			t.Fatalf("radius %v: kept = %v, want %v", tt.radiusKM, got, tt.wantKept)
		}
		if tt.wantKept && math.Abs(kept[0].DistanceKM-25.0) > 0.1 {
			t.Errorf("radius %v: DistanceKM = %v, want 25.0", tt.radiusKM, kept[0].DistanceKM)
		}
	}
}

func TestRadius_DistanceAnnotation(t *testing.T) {
	origin := geo.Point{Lat: 51.5074, Lon: -0.1278}
	evt := newEvent("paris", 48.8566, 2.3522)

	kept := NewRadius(origin, 400).Apply([]*event.Event{evt})
	if len(kept) != 1 {
		t.Fatal("Paris dropped from 400 km radius around London")
	}
	want := geo.Round(geo.Distance(origin, evt.Point()), DistancePrecision)
	if kept[0].DistanceKM != want {
		t.Errorf("DistanceKM = %v, want %v", kept[0].DistanceKM, want)
	}
	if kept[0].DistanceKM != math.Round(kept[0].DistanceKM*100)/100 {
		t.Errorf("DistanceKM %v has more than two decimals", kept[0].DistanceKM)
	}
}

func TestRadius_Matches(t *testing.T) {
	f := NewRadius(geo.Point{Lat: 19.4, Lon: -99.1}, 5)
	if !f.Matches(newEvent("near", 19.41, -99.1)) {
		t.Error("Matches() = false for event 1.1 km away")
	}
	if f.Matches(newEvent("far", 19.5, -99.1)) {
		t.Error("Matches() = true for event 11 km away")
	}
	if f.Matches(nil) {
		t.Error("Matches(nil) = true")
	}
}
