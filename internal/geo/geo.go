package geo

import (
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKM is the mean earth radius used by Distance.
const EarthRadiusKM = 6371.0

// Point is a position in decimal degrees
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Valid reports whether both coordinates are finite numbers.
func (p Point) Valid() bool {
	return finite(p.Lat) && finite(p.Lon)
}

// Distance returns the haversine distance between a and b in kilometers.
// It returns 0 when either point is not finite or the result is not a finite,
// non-negative number.
func Distance(a, b Point) float64 {
	if !a.Valid() || !b.Valid() {
		return 0
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h a hair outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	d := 2 * EarthRadiusKM * math.Asin(math.Sqrt(h))
	if !finite(d) || d < 0 {
		return 0
	}
	return d
}

// DistanceKM is Distance for raw coordinates.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	return Distance(Point{Lat: lat1, Lon: lon1}, Point{Lat: lat2, Lon: lon2})
}

// DistanceText parses both points from text and returns their distance.
// Anything that does not parse as a finite number yields 0.
func DistanceText(lat1, lon1, lat2, lon2 string) float64 {
	a, ok := ParsePoint(lat1, lon1)
	if !ok {
		return 0
	}
	b, ok := ParsePoint(lat2, lon2)
	if !ok {
		return 0
	}
	return Distance(a, b)
}

// ParseFloat parses s as a finite float64.
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

// ParsePoint parses a latitude/longitude pair.
func ParsePoint(lat, lon string) (Point, bool) {
	la, ok := ParseFloat(lat)
	if !ok {
		return Point{}, false
	}
	lo, ok := ParseFloat(lon)
	if !ok {
		return Point{}, false
	}
	return Point{Lat: la, Lon: lo}, true
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	if !finite(v) {
		return 0
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
