package event

import (
	"strings"

	"github.com/pfrederiksen/nearby-events/internal/geo"
)

// Event represents a single listing on the events site
type Event struct {
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	Venue      string  `json:"venue"`
	Link       string  `json:"link"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKM float64 `json:"distance_km"`
}

// NewEvent creates an Event with a normalized date and trimmed text fields
func NewEvent(name, date, venue, link string, pos geo.Point) *Event {
	return &Event{
		Name:      strings.TrimSpace(name),
		Date:      NormalizeDate(date),
		Venue:     strings.TrimSpace(venue),
		Link:      strings.TrimSpace(link),
		Latitude:  pos.Lat,
		Longitude: pos.Lon,
	}
}

// Point returns the venue position of the event
func (e *Event) Point() geo.Point {
	return geo.Point{Lat: e.Latitude, Lon: e.Longitude}
}
