package matching

import (
	"testing"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// Kewdale terminal and a few reference points around Perth
var testTerminals = []models.Terminal{
	{ID: 1, Name: "KEWDALE TERMINAL", Latitude: -31.98, Longitude: 115.96, ServiceRadiusKm: 10, PrimaryCarrier: "ACME"},
	{ID: 2, Name: "BUNBURY TERMINAL", Latitude: -33.32, Longitude: 115.64, ServiceRadiusKm: 15, PrimaryCarrier: "OTHER"},
}

var testCustomers = []models.Customer{
	{ID: 1, Name: "PERTH CUSTOMER", Latitude: -31.95, Longitude: 115.86},
	{ID: 2, Name: "REMOTE CUSTOMER", Latitude: -20.0, Longitude: 118.6},
}

func TestScoreTerminalServiceRadius(t *testing.T) {
	gm := NewGeoMatcher(testTerminals, nil)

	// A point right at the terminal sits inside the service radius
	dist, conf, within := gm.ScoreTerminal(-31.98, 115.96, &testTerminals[0])
	if !within {
		t.Error("expected point at terminal to be within service area")
	}
	if conf != 95 {
		t.Errorf("confidence = %d, want 95", conf)
	}
	if dist > 0.001 {
		t.Errorf("distance = %v, want ~0", dist)
	}
}

func TestScoreTerminalDistanceBands(t *testing.T) {
	gm := NewGeoMatcher(nil, nil)

	// Terminal with no service coverage; only the distance gradient applies
	terminal := &models.Terminal{ID: 3, Name: "BARE", Latitude: 0, Longitude: 0}

	tests := []struct {
		name     string
		lat, lon float64
		wantConf int
	}{
		{"within 25km", 0.1, 0, 85},  // ~11km
		{"within 50km", 0.4, 0, 70},  // ~44km
		{"within 100km", 0.8, 0, 50}, // ~89km
		{"beyond 100km", 1.5, 0, 25}, // ~167km
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, conf, within := gm.ScoreTerminal(tt.lat, tt.lon, terminal)
			if within {
				t.Error("bare terminal must not report a service area hit")
			}
			if conf != tt.wantConf {
				t.Errorf("confidence = %d, want %d", conf, tt.wantConf)
			}
		})
	}
}

func TestScoreTerminalPolygonPreferred(t *testing.T) {
	gm := NewGeoMatcher(nil, nil)

	// Square polygon around the origin; tiny service radius that would
	// otherwise exclude the query point
	terminal := &models.Terminal{
		ID: 4, Name: "POLY", Latitude: 0, Longitude: 0,
		ServiceRadiusKm: 0.1,
		ServiceAreaJSON: "[[1,-1],[1,1],[-1,1],[-1,-1]]",
	}

	_, conf, within := gm.ScoreTerminal(0.5, 0.5, terminal)
	if !within {
		t.Fatal("expected point inside polygon to be within service area")
	}
	if conf != 95 {
		t.Errorf("confidence = %d, want 95", conf)
	}

	_, _, within = gm.ScoreTerminal(2, 2, terminal)
	if within {
		t.Error("expected point outside polygon to miss the service area")
	}
}

func TestMatchTerminalsCarrierFilter(t *testing.T) {
	gm := NewGeoMatcher(testTerminals, nil)

	all := gm.MatchTerminals(-31.98, 115.96, 500, "")
	if len(all) != 2 {
		t.Fatalf("got %d terminals, want 2", len(all))
	}

	filtered := gm.MatchTerminals(-31.98, 115.96, 500, "ACME")
	if len(filtered) != 1 || filtered[0].ID != 1 {
		t.Fatalf("carrier filter returned %+v, want only terminal 1", filtered)
	}
}

func TestMatchTerminalsRadiusCutoff(t *testing.T) {
	gm := NewGeoMatcher(testTerminals, nil)

	// Bunbury is ~150km from Kewdale; a 50km cutoff keeps only Kewdale
	candidates := gm.MatchTerminals(-31.98, 115.96, 50, "")
	if len(candidates) != 1 || candidates[0].ID != 1 {
		t.Fatalf("got %+v, want only terminal 1", candidates)
	}
}

func TestMatchCustomersOrdering(t *testing.T) {
	gm := NewGeoMatcher(nil, testCustomers)

	candidates := gm.MatchCustomers(-31.95, 115.86, 5000)
	if len(candidates) != 2 {
		t.Fatalf("got %d customers, want 2", len(candidates))
	}
	if candidates[0].ID != 1 {
		t.Errorf("nearest customer should rank first, got id %d", candidates[0].ID)
	}
	if candidates[0].Confidence < candidates[1].Confidence {
		t.Error("candidates not ordered by confidence")
	}
}

func TestSortCandidatesDeterministic(t *testing.T) {
	candidates := []GeoCandidate{
		{ID: 3, Confidence: 70, DistanceKm: 30},
		{ID: 1, Confidence: 70, DistanceKm: 30},
		{ID: 2, Confidence: 85, DistanceKm: 10},
	}

	sortCandidates(candidates)

	wantOrder := []int64{2, 1, 3}
	for i, want := range wantOrder {
		if candidates[i].ID != want {
			t.Fatalf("position %d: got id %d, want %d", i, candidates[i].ID, want)
		}
	}
}
