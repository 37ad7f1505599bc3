package routes

import (
	"testing"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

func TestClassifyRouteType(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{models.POITypeTerminal, models.POITypeCustomer, models.RouteTypeDelivery},
		{models.POITypeCustomer, models.POITypeTerminal, models.RouteTypeReturn},
		{models.POITypeTerminal, models.POITypeTerminal, models.RouteTypeTransfer},
		{models.POITypeCustomer, models.POITypeCustomer, models.RouteTypeCustomerToCustomer},
		{models.POITypeDepot, models.POITypeCustomer, models.RouteTypePositioning},
		{models.POITypeDepot, models.POITypeTerminal, models.RouteTypePositioning},
		{models.POITypeUnknown, models.POITypeCustomer, models.RouteTypeUnknown},
		{models.POITypeTerminal, models.POITypeUnknown, models.RouteTypeUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyRouteType(tt.start, tt.end); got != tt.want {
			t.Errorf("ClassifyRouteType(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestDeviationRatio(t *testing.T) {
	// Actual distance at least the straight line means a ratio of 100 or more
	if ratio := deviationRatio(120, 100); ratio != 120 {
		t.Errorf("deviationRatio(120, 100) = %v, want 120", ratio)
	}
	if ratio := deviationRatio(100, 100); ratio != 100 {
		t.Errorf("deviationRatio(100, 100) = %v, want 100", ratio)
	}

	// Degenerate same-place pair
	if ratio := deviationRatio(5, 0); ratio != 100 {
		t.Errorf("deviationRatio(5, 0) = %v, want 100", ratio)
	}
}

func TestEfficiencyRating(t *testing.T) {
	tests := []struct {
		name    string
		minutes []float64
		want    int
	}{
		{"constant times", []float64{60, 60, 60, 60}, 95},
		{"tight spread", []float64{60, 62, 58, 61, 59}, 95},
		{"loose spread", []float64{60, 90, 40, 75}, 75},
		{"erratic", []float64{30, 120, 45, 150}, 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EfficiencyRating(tt.minutes); got != tt.want {
				t.Errorf("EfficiencyRating(%v) = %d, want %d", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestQualityTier(t *testing.T) {
	high := &poiRef{Confidence: 90, AccuracyMeters: 30}
	mid := &poiRef{Confidence: 78, AccuracyMeters: 80}
	low := &poiRef{Confidence: 70, AccuracyMeters: 250}
	weak := &poiRef{Confidence: 60, AccuracyMeters: 400}

	tests := []struct {
		name       string
		start, end *poiRef
		tripCount  int
		want       string
	}{
		{"platinum", high, high, 80, models.TierPlatinum},
		{"gold on trip count", high, high, 30, models.TierGold},
		{"gold on confidence", mid, high, 60, models.TierGold},
		{"silver", low, high, 12, models.TierSilver},
		{"bronze on weak poi", weak, high, 100, models.TierBronze},
		{"bronze on few trips", high, high, 9, models.TierBronze},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityTier(tt.start, tt.end, tt.tripCount); got != tt.want {
				t.Errorf("QualityTier = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNearestPOI(t *testing.T) {
	pois := map[int64]*poiRef{
		1: {ID: 1, Lat: -31.900, Lon: 115.850},
		2: {ID: 2, Lat: -31.980, Lon: 115.960},
	}

	// Point ~145m from POI 1
	if got := nearestPOI(pois, -31.901, 115.851, 500); got == nil || got.ID != 1 {
		t.Fatalf("nearestPOI = %+v, want POI 1", got)
	}

	// Point outside the assignment radius of every POI
	if got := nearestPOI(pois, -33.32, 115.64, 500); got != nil {
		t.Fatalf("nearestPOI = %+v, want nil", got)
	}
}

func TestBuildPatternsMinTripFilter(t *testing.T) {
	a := New(nil, models.RouteParams{MinTripCount: 3, POIConfidenceFloor: 70, AssignRadiusMeters: 500})

	pois := map[int64]*poiRef{
		1: {ID: 1, Lat: -31.98, Lon: 115.96, POIType: models.POITypeTerminal, Confidence: 90, AccuracyMeters: 40},
		2: {ID: 2, Lat: -31.90, Lon: 115.85, POIType: models.POITypeCustomer, Confidence: 85, AccuracyMeters: 60},
	}

	groups := map[routeKey]*routeGroup{
		{StartPOI: 1, EndPOI: 2}: {
			DistancesKm:   []float64{15, 16, 15.5},
			TravelMinutes: []float64{30, 32, 31},
			Vehicles:      []string{"KA1", "KA1", "KA2"},
			Drivers:       []string{"D1", "D1", "D2"},
		},
		{StartPOI: 2, EndPOI: 1}: {
			DistancesKm:   []float64{15},
			TravelMinutes: []float64{29},
			Vehicles:      []string{"KA1"},
			Drivers:       []string{"D1"},
		},
	}

	patterns := a.buildPatterns(pois, groups)
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want 1 (reverse pair is under the trip minimum)", len(patterns))
	}

	p := patterns[0]
	if p.StartPOIID != 1 || p.EndPOIID != 2 {
		t.Fatalf("pattern pair = %d->%d, want 1->2", p.StartPOIID, p.EndPOIID)
	}
	if p.RouteType != models.RouteTypeDelivery {
		t.Errorf("route type = %q, want delivery", p.RouteType)
	}
	if p.TripCount != 3 {
		t.Errorf("trip count = %d, want 3", p.TripCount)
	}
	if p.PrimaryVehicle != "KA1" || p.PrimaryDriver != "D1" {
		t.Errorf("modal vehicle/driver = %q/%q, want KA1/D1", p.PrimaryVehicle, p.PrimaryDriver)
	}
	if p.HasReturnLeg {
		t.Error("return leg should not count: the reverse pair was filtered out")
	}
	if p.DeviationRatioPct < 100 {
		t.Errorf("deviation ratio = %v, want >= 100", p.DeviationRatioPct)
	}
	if p.StraightLineKm <= 0 {
		t.Errorf("straight line = %v, want > 0", p.StraightLineKm)
	}
}

func TestBuildPatternsReturnLeg(t *testing.T) {
	a := New(nil, models.RouteParams{MinTripCount: 1, POIConfidenceFloor: 70, AssignRadiusMeters: 500})

	pois := map[int64]*poiRef{
		1: {ID: 1, Lat: -31.98, Lon: 115.96, POIType: models.POITypeTerminal, Confidence: 90, AccuracyMeters: 40},
		2: {ID: 2, Lat: -31.90, Lon: 115.85, POIType: models.POITypeCustomer, Confidence: 85, AccuracyMeters: 60},
	}

	groups := map[routeKey]*routeGroup{
		{StartPOI: 1, EndPOI: 2}: {
			DistancesKm: []float64{15}, TravelMinutes: []float64{30},
			Vehicles: []string{"KA1"}, Drivers: []string{"D1"},
		},
		{StartPOI: 2, EndPOI: 1}: {
			DistancesKm: []float64{15}, TravelMinutes: []float64{29},
			Vehicles: []string{"KA1"}, Drivers: []string{"D1"},
		},
	}

	patterns := a.buildPatterns(pois, groups)
	if len(patterns) != 2 {
		t.Fatalf("got %d patterns, want 2", len(patterns))
	}

	for _, p := range patterns {
		if !p.HasReturnLeg {
			t.Errorf("pattern %d->%d missing return leg", p.StartPOIID, p.EndPOIID)
		}
	}

	// Deterministic ordering by POI pair
	if patterns[0].StartPOIID != 1 || patterns[1].StartPOIID != 2 {
		t.Error("patterns not ordered by start POI")
	}
}
