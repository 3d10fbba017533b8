// Package geo provides great-circle distance calculations between latitude/longitude
// points.
//
// All functions are pure and never fail: inputs that are not finite numbers, or
// results the formula cannot represent, degrade to a distance of 0 so callers can
// filter on the value without checking for errors.
package geo
