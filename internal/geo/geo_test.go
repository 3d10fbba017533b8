package geo

import (
	"math"
	"testing"
)

func TestDistance_SamePoint(t *testing.T) {
	points := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 32.5, Lon: -117.0},
		{Lat: -89.9, Lon: 179.9},
		{Lat: 19.4326, Lon: -99.1332},
	}

	for _, p := range points {
		if got := Distance(p, p); got != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", p, p, got)
		}
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 51.5074, Lon: -0.1278}, {Lat: 48.8566, Lon: 2.3522}},
		{{Lat: 32.5, Lon: -117.0}, {Lat: 19.4, Lon: -99.1}},
		{{Lat: -33.86, Lon: 151.2}, {Lat: 40.71, Lon: -74.0}},
	}

	for _, pair := range pairs {
		ab := Distance(pair[0], pair[1])
		ba := Distance(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Distance not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistance_ReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{
			name: "antipodal on the equator",
			a:    Point{Lat: 0, Lon: 0},
			b:    Point{Lat: 0, Lon: 180},
			want: 20015.087,
		},
		{
			name: "London to Paris",
			a:    Point{Lat: 51.5074, Lon: -0.1278},
			b:    Point{Lat: 48.8566, Lon: 2.3522},
			want: 343.556,
		},
		{
			name: "25 km north of Mexico City",
			a:    Point{Lat: 19.4, Lon: -99.1},
			b:    Point{Lat: 19.624830401, Lon: -99.1},
			want: 25.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.1 {
				t.Errorf("Distance() = %.3f, want %.3f (±0.1)", got, tt.want)
			}
		})
	}
}

func TestDistance_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
	}{
		{"NaN latitude", Point{Lat: math.NaN(), Lon: 0}, Point{Lat: 1, Lon: 1}},
		{"NaN longitude", Point{Lat: 1, Lon: 1}, Point{Lat: 0, Lon: math.NaN()}},
		{"positive infinity", Point{Lat: math.Inf(1), Lon: 0}, Point{Lat: 1, Lon: 1}},
		{"negative infinity", Point{Lat: 1, Lon: 1}, Point{Lat: 0, Lon: math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != 0 {
				t.Errorf("Distance() = %v, want 0", got)
			}
		})
	}
}

func TestDistanceText(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 string
		wantZero               bool
	}{
		{"numeric", "51.5074", "-0.1278", "48.8566", "2.3522", false},
		{"padded numeric", " 51.5074 ", "-0.1278", "48.8566", "2.3522", false},
		{"word", "north", "-0.1278", "48.8566", "2.3522", true},
		{"empty", "51.5074", "", "48.8566", "2.3522", true},
		{"NaN text", "51.5074", "-0.1278", "NaN", "2.3522", true},
		{"Inf text", "51.5074", "-0.1278", "48.8566", "+Inf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceText(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if tt.wantZero && got != 0 {
				t.Errorf("DistanceText() = %v, want 0", got)
			}
			if !tt.wantZero && got <= 0 {
				t.Errorf("DistanceText() = %v, want > 0", got)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{24.99259, 2, 24.99},
		{25.004999, 2, 25.0},
		{1.005, 1, 1.0},
		{math.NaN(), 2, 0},
	}

	for _, tt := range tests {
		if got := Round(tt.in, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.want)
		}
	}
}
