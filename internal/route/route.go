package route

import (
	"fmt"
	"strconv"

	"github.com/pfrederiksen/nearby-events/internal/geo"
)

// DefaultBaseURL is the events site root
const DefaultBaseURL = "https://www.songkick.com"

// Query is a validated search request
type Query struct {
	Latitude  float64
	Longitude float64
	RadiusKM  float64
}

// ParseQuery builds a Query from the three positional arguments
// latitude, longitude and radius in kilometers. It returns false when fewer than
// three arguments are given or any of them is not a finite number.
func ParseQuery(args []string) (Query, bool) {
	if len(args) < 3 {
		return Query{}, false
	}
	pos, ok := geo.ParsePoint(args[0], args[1])
	if !ok {
		return Query{}, false
	}
	radius, ok := geo.ParseFloat(args[2])
	if !ok {
		return Query{}, false
	}
	return Query{Latitude: pos.Lat, Longitude: pos.Lon, RadiusKM: radius}, true
}

// Origin returns the query point
func (q Query) Origin() geo.Point {
	return geo.Point{Lat: q.Latitude, Lon: q.Longitude}
}

// HasCoordinates reports whether both coordinates are set. A zero coordinate is
// treated as unset, matching how callers pass "no location".
func (q Query) HasCoordinates() bool {
	return q.Latitude != 0 && q.Longitude != 0
}

// Metro is a fixed metro-area page on the events site
type Metro struct {
	Name string
	Path string
	// MinLatitude is the exclusive lower bound of the band; bands are checked
	// northernmost first.
	MinLatitude float64
}

// Metros lists the metro-area bands from north to south. The last entry catches
// everything south of the previous band.
var Metros = []Metro{
	{Name: "Tijuana", Path: "/es/metro-areas/31097-mexico-tijuana", MinLatitude: 32.0},
	{Name: "Monterrey", Path: "/es/metro-areas/31098-mexico-monterrey", MinLatitude: 25.0},
	{Name: "Guadalajara", Path: "/es/metro-areas/31099-mexico-guadalajara", MinLatitude: 20.0},
	{Name: "Mexico City", Path: "/es/metro-areas/31100-mexico-mexico-city", MinLatitude: -90.0},
}

// BoundingBox is an exclusive latitude/longitude rectangle
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether p lies strictly inside the box
func (b BoundingBox) Contains(p geo.Point) bool {
	return p.Lat > b.MinLat && p.Lat < b.MaxLat && p.Lon > b.MinLon && p.Lon < b.MaxLon
}

// Mexico covers the metro areas served by Metros
var Mexico = BoundingBox{MinLat: 19.0, MaxLat: 33.0, MinLon: -118.0, MaxLon: -86.0}

// RegionSearch marks a target built from the coordinate search
const RegionSearch = "search"

// Target is the page a run navigates to
type Target struct {
	URL    string
	Region string
}

// Resolver maps queries to targets against a site root
type Resolver struct {
	baseURL string
}

// NewResolver creates a Resolver for the given site root
func NewResolver(baseURL string) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Resolver{baseURL: baseURL}
}

// Resolve returns the target for q using the default site root
func Resolve(q Query) Target {
	return NewResolver(DefaultBaseURL).Resolve(q)
}

// Resolve returns the target for q. The result depends only on q.
func (r *Resolver) Resolve(q Query) Target {
	if !q.HasCoordinates() {
		return r.metro(Metros[0])
	}

	if Mexico.Contains(q.Origin()) {
		for _, m := range Metros {
			if q.Latitude > m.MinLatitude {
				return r.metro(m)
			}
		}
		return r.metro(Metros[len(Metros)-1])
	}

	return r.search(q)
}

func (r *Resolver) metro(m Metro) Target {
	return Target{URL: r.baseURL + m.Path, Region: m.Name}
}

// search builds the coordinate search URL. The location value keeps its comma
// unescaped, as the site expects; formatted floats need no escaping.
func (r *Resolver) search(q Query) Target {
	u := fmt.Sprintf("%s/search?query=&location=%s,%s&radius=%s",
		r.baseURL,
		formatFloat(q.Latitude),
		formatFloat(q.Longitude),
		formatFloat(q.RadiusKM))
	return Target{URL: u, Region: RegionSearch}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
