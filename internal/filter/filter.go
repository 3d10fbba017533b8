// Package filter narrows extracted events down to those within a search radius.
//
// Each kept event is annotated with its great-circle distance from the search
// origin, rounded to two decimals. The comparison itself uses the unrounded
// distance, and document order is preserved.
//
// Example usage:
//
//	f := filter.NewRadius(query.Origin(), query.RadiusKM)
//	nearby := f.Apply(events)
package filter

import (
	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/geo"
)

// DistancePrecision is the number of decimals kept in DistanceKM
const DistancePrecision = 2

// Radius keeps events within RadiusKM of Origin
type Radius struct {
	Origin   geo.Point `json:"origin"`
	RadiusKM float64   `json:"radius_km"`
}

// NewRadius creates a radius filter around origin
func NewRadius(origin geo.Point, radiusKM float64) *Radius {
	return &Radius{Origin: origin, RadiusKM: radiusKM}
}

// Distance returns the distance from the origin to evt in kilometers
func (r *Radius) Distance(evt *event.Event) float64 {
	return geo.Distance(r.Origin, evt.Point())
}

// Matches reports whether evt is within the radius. The boundary is inclusive.
func (r *Radius) Matches(evt *event.Event) bool {
	if evt == nil {
		return false
	}
	return r.Distance(evt) <= r.RadiusKM
}

// Apply returns the events within the radius, in their original order, with
// DistanceKM set. A negative radius matches nothing.
func (r *Radius) Apply(events []*event.Event) []*event.Event {
	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if evt == nil {
			continue
		}
		distance := r.Distance(evt)
		if distance > r.RadiusKM {
			continue
		}
		evt.DistanceKM = geo.Round(distance, DistancePrecision)
		filtered = append(filtered, evt)
	}
	return filtered
}
