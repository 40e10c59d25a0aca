package geo

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

// kmPerDegree is the length of one degree of latitude on the model sphere.
var kmPerDegree = EarthRadiusKm * math.Pi / 180

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{41.0165728, -73.8610076},
		{0, 0},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}

	for _, p := range points {
		d := DistanceKm(p[0], p[1], p[0], p[1])
		if math.Abs(d) > tolerance {
			t.Fatalf("distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := [2]float64{41.0165728, -73.8610076}
	b := [2]float64{40.7128, -74.0060}

	ab := DistanceKm(a[0], a[1], b[0], b[1])
	ba := DistanceKm(b[0], b[1], a[0], a[1])

	if math.Abs(ab-ba) > tolerance {
		t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceKm_OneDegreeOfLatitude(t *testing.T) {
	d := DistanceKm(40, -73, 41, -73)

	if math.Abs(d-111.19) > 0.01 {
		t.Fatalf("got %v km for 1 degree of latitude, want ~111.19", d)
	}
}

func TestIsWithinRadius(t *testing.T) {
	siteLat, siteLon := 41.0165728, -73.8610076

	tests := []struct {
		name   string
		kmAway float64
		want   bool
	}{
		{name: "on_site", kmAway: 0, want: true},
		{name: "one_km", kmAway: 1, want: true},
		{name: "just_inside", kmAway: 1.999, want: true},
		{name: "three_km", kmAway: 3, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userLat := siteLat + tt.kmAway/kmPerDegree

			got := IsWithinRadius(userLat, siteLon, siteLat, siteLon, 2)
			if got != tt.want {
				t.Fatalf("IsWithinRadius(%v km away) = %v, want %v", tt.kmAway, got, tt.want)
			}
		})
	}
}

func TestFenceCheck(t *testing.T) {
	f := Fence{Name: "campus", Lat: 41.0165728, Lon: -73.8610076, RadiusKm: 2}

	ok, d, err := f.Check(f.Lat+1/kmPerDegree, f.Lon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected 1 km to be inside a 2 km fence (d=%v)", d)
	}
	if math.Abs(d-1) > 1e-6 {
		t.Fatalf("distance = %v, want 1", d)
	}

	ok, _, err = f.Check(f.Lat+3/kmPerDegree, f.Lon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected 3 km to be outside a 2 km fence")
	}
}

func TestFenceCheck_InvalidInput(t *testing.T) {
	f := Fence{Lat: 0, Lon: 0, RadiusKm: 2}

	cases := [][2]float64{
		{math.NaN(), 0},
		{0, math.Inf(1)},
		{91, 0},
		{0, -181},
	}

	for _, c := range cases {
		_, _, err := f.Check(c[0], c[1])
		if !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("Check(%v) err = %v, want ErrInvalidCoordinate", c, err)
		}
	}
}
