// Package event defines the event record emitted by nearby-events.
//
// Records are built from individual listing elements on the events site. A record
// carries the venue position taken from the listing's embedded structured data and,
// once filtered, the distance from the query point.
package event
