package spatial

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	// Same point
	if d := HaversineDistance(-31.95, 115.86, -31.95, 115.86); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}

	// One degree of latitude is ~111.2km
	d := HaversineDistance(0, 0, 1, 0)
	if math.Abs(d-111195) > 200 {
		t.Errorf("one degree latitude = %vm, want ~111195m", d)
	}

	// Symmetric
	ab := HaversineDistance(-31.95, 115.86, -33.32, 115.64)
	ba := HaversineDistance(-33.32, 115.64, -31.95, 115.86)
	if math.Abs(ab-ba) > 1e-6 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceKm(t *testing.T) {
	m := HaversineDistance(0, 0, 0.5, 0.5)
	km := DistanceKm(0, 0, 0.5, 0.5)
	if math.Abs(km*1000-m) > 1e-6 {
		t.Errorf("DistanceKm inconsistent with HaversineDistance: %v vs %v", km*1000, m)
	}
}

func TestCentroid(t *testing.T) {
	points := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 2, Lon: 0},
		{Lat: 0, Lon: 2},
		{Lat: 2, Lon: 2},
	}

	c := Centroid(points)
	if c.Lat != 1 || c.Lon != 1 {
		t.Errorf("centroid = %+v, want {1 1}", c)
	}

	if c := Centroid(nil); c.Lat != 0 || c.Lon != 0 {
		t.Errorf("empty centroid = %+v, want origin", c)
	}
}

func TestSpreadMeters(t *testing.T) {
	// Fewer than two points has no spread
	if s := SpreadMeters([]Point{{Lat: 1, Lon: 1}}); s != 0 {
		t.Errorf("single-point spread = %v, want 0", s)
	}

	// Identical points have zero spread
	same := []Point{{Lat: -31.9, Lon: 115.85}, {Lat: -31.9, Lon: 115.85}}
	if s := SpreadMeters(same); s != 0 {
		t.Errorf("identical-point spread = %v, want 0", s)
	}

	// A wider cluster spreads more than a tighter one
	tight := []Point{{Lat: 0, Lon: 0}, {Lat: 0.0001, Lon: 0}, {Lat: -0.0001, Lon: 0}}
	wide := []Point{{Lat: 0, Lon: 0}, {Lat: 0.001, Lon: 0}, {Lat: -0.001, Lon: 0}}
	if SpreadMeters(tight) >= SpreadMeters(wide) {
		t.Error("tighter cluster should have smaller spread")
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Point{
		{Lat: 1, Lon: -1},
		{Lat: 1, Lon: 1},
		{Lat: -1, Lon: 1},
		{Lat: -1, Lon: -1},
	}

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"center", Point{Lat: 0, Lon: 0}, true},
		{"near corner inside", Point{Lat: 0.9, Lon: 0.9}, true},
		{"outside east", Point{Lat: 0, Lon: 2}, false},
		{"outside north", Point{Lat: 2, Lon: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.point, square); got != tt.want {
				t.Errorf("PointInPolygon(%+v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}

	// Degenerate polygons are never hit
	if PointInPolygon(Point{}, square[:2]) {
		t.Error("two-vertex polygon must not contain any point")
	}
}
