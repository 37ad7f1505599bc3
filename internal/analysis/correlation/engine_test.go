package correlation

import (
	"testing"
	"time"

	"github.com/DGfinder/fleet-correlation-go/internal/matching"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/normalize"
)

func testReference(terminals []models.Terminal, customers []models.Customer, deliveries []models.DeliveryRecord) *reference {
	n := normalize.NewNormalizer()
	ref := &reference{
		fuzzy:            matching.NewFuzzyMatcher(n),
		geo:              matching.NewGeoMatcher(terminals, customers),
		normalizer:       n,
		terminals:        terminals,
		terminalByNorm:   make(map[string]int),
		businessAliases:  make(map[string]string),
		terminalAliases:  make(map[string]string),
		deliveriesByDate: make(map[string][]models.DeliveryRecord),
	}
	for i, t := range terminals {
		ref.terminalByNorm[n.Normalize(t.Name)] = i
	}
	for _, d := range deliveries {
		ref.deliveriesByDate[d.DeliveryDate] = append(ref.deliveriesByDate[d.DeliveryDate], d)
	}
	return ref
}

func floatPtr(v float64) *float64 { return &v }

var kewdale = models.Terminal{
	ID: 1, Name: "KEWDALE TERMINAL",
	Latitude: -31.98, Longitude: 115.96, ServiceRadiusKm: 10,
}

func tripOn(date string) *models.Trip {
	day, _ := time.Parse("2006-01-02", date)
	return &models.Trip{
		ID:        1,
		Vehicle:   "KA123",
		StartTime: day.Add(6 * time.Hour).Unix(),
		EndTime:   day.Add(10 * time.Hour).Unix(),
	}
}

func TestCorrelateTripAllSignalsStrong(t *testing.T) {
	deliveries := []models.DeliveryRecord{
		{ID: 10, CustomerName: "BHP Iron Ore", TerminalName: "Kewdale", DeliveryDate: "2025-03-10"},
	}
	ref := testReference([]models.Terminal{kewdale}, nil, deliveries)

	trip := tripOn("2025-03-10")
	trip.StartLocation = "BHP SITE"
	trip.EndLocation = "KEWDALE"
	trip.EndLat = floatPtr(kewdale.Latitude)
	trip.EndLon = floatPtr(kewdale.Longitude)

	c := New(nil, models.DefaultCorrelationParams())
	matches := c.correlateTrip(ref, trip)

	if len(matches) != 1 {
		t.Fatalf("got %d correlations, want 1", len(matches))
	}

	corr := matches[0]
	if corr.TextConfidence != 95 {
		t.Errorf("text confidence = %d, want 95 (business identifier)", corr.TextConfidence)
	}
	if corr.TextComparison != "start_vs_customer" {
		t.Errorf("text comparison = %q, want start_vs_customer", corr.TextComparison)
	}
	if corr.GeoConfidence != 95 {
		t.Errorf("geo confidence = %d, want 95 (service area)", corr.GeoConfidence)
	}
	if !corr.WithinServiceArea {
		t.Error("expected within service area")
	}
	if corr.MatchedEndpoint != models.EndpointEnd {
		t.Errorf("matched endpoint = %q, want end", corr.MatchedEndpoint)
	}
	if corr.TemporalConfidence != 100 {
		t.Errorf("temporal confidence = %d, want 100", corr.TemporalConfidence)
	}
	if corr.OverallConfidence != 100 {
		t.Errorf("overall confidence = %d, want 100", corr.OverallConfidence)
	}
	if corr.Quality != models.QualityExcellent {
		t.Errorf("quality = %q, want excellent", corr.Quality)
	}
	if corr.RequiresManualReview {
		t.Error("clean match should not need review")
	}
	if flags := corr.RiskFlags(); len(flags) != 0 {
		t.Errorf("unexpected risk flags: %v", flags)
	}
}

func TestCorrelateTripNoSignals(t *testing.T) {
	// No GPS, free text matching nothing: every candidate scores below the
	// floor and the trip yields zero correlations rather than an error
	deliveries := []models.DeliveryRecord{
		{ID: 10, CustomerName: "ZYX MINING", TerminalName: "Kewdale", DeliveryDate: "2025-03-10"},
	}
	ref := testReference([]models.Terminal{kewdale}, nil, deliveries)

	trip := tripOn("2025-03-10")
	trip.StartLocation = "QORP LOGISTICS YARD"
	trip.EndLocation = ""

	c := New(nil, models.DefaultCorrelationParams())
	matches := c.correlateTrip(ref, trip)

	if len(matches) != 0 {
		t.Fatalf("got %d correlations, want 0", len(matches))
	}
}

func TestCorrelateTripRespectsDateTolerance(t *testing.T) {
	deliveries := []models.DeliveryRecord{
		{ID: 10, CustomerName: "BHP Iron Ore", TerminalName: "Kewdale", DeliveryDate: "2025-03-20"},
	}
	ref := testReference([]models.Terminal{kewdale}, nil, deliveries)

	trip := tripOn("2025-03-10") // ten days out
	trip.StartLocation = "BHP SITE"
	trip.EndLat = floatPtr(kewdale.Latitude)
	trip.EndLon = floatPtr(kewdale.Longitude)

	c := New(nil, models.DefaultCorrelationParams())
	if matches := c.correlateTrip(ref, trip); len(matches) != 0 {
		t.Fatalf("got %d correlations outside the tolerance window, want 0", len(matches))
	}
}

func TestEnumerateCandidatesNearestFirst(t *testing.T) {
	deliveries := []models.DeliveryRecord{
		{ID: 1, CustomerName: "A", DeliveryDate: "2025-03-10"},
		{ID: 2, CustomerName: "B", DeliveryDate: "2025-03-08"},
		{ID: 3, CustomerName: "C", DeliveryDate: "2025-03-12"},
		{ID: 4, CustomerName: "D", DeliveryDate: "2025-03-20"},
	}
	ref := testReference([]models.Terminal{kewdale}, nil, deliveries)

	c := New(nil, models.DefaultCorrelationParams())
	tripDate, _ := time.Parse("2006-01-02", "2025-03-10")
	candidates := c.enumerateCandidates(ref, tripDate)

	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3 (ID 4 is outside the window)", len(candidates))
	}
	if candidates[0].ID != 1 {
		t.Errorf("same-day delivery should enumerate first, got ID %d", candidates[0].ID)
	}
}

func TestTextConfidenceAliasBoost(t *testing.T) {
	ref := testReference([]models.Terminal{kewdale}, nil, nil)
	n := ref.normalizer
	ref.businessAliases[n.Normalize("GOLDEN MILE OPS")] = "KALGOORLIE MINING CO"
	ref.businessAliases[n.Normalize("GM OPERATIONS WA")] = "KALGOORLIE MINING CO"

	c := New(nil, models.DefaultCorrelationParams())

	trip := &models.Trip{StartLocation: "GOLDEN MILE OPS"}
	delivery := &models.DeliveryRecord{CustomerName: "GM OPERATIONS WA"}

	boosted, _, label := c.textConfidence(ref, trip, delivery)
	if label != "start_vs_customer" {
		t.Fatalf("comparison = %q, want start_vs_customer", label)
	}

	// The raw strings share almost nothing; the alias agreement supplies
	// the whole score
	ref2 := testReference([]models.Terminal{kewdale}, nil, nil)
	plain, _, _ := c.textConfidence(ref2, trip, delivery)

	if boosted != plain+c.params.Weights.BusinessAliasBoost {
		t.Errorf("boosted = %d, plain = %d, want a %d-point alias boost",
			boosted, plain, c.params.Weights.BusinessAliasBoost)
	}
}

func TestResolveTerminal(t *testing.T) {
	ref := testReference([]models.Terminal{kewdale}, nil, nil)
	ref.terminalAliases[ref.normalizer.Normalize("KEW FUEL HUB")] = "KEWDALE TERMINAL"

	c := New(nil, models.DefaultCorrelationParams())

	tests := []struct {
		name  string
		input string
		found bool
	}{
		{"exact normalized", "Kewdale Terminal", true},
		{"naming variant folds", "WELSHPOOL DEPOT", true},
		{"alias table", "KEW FUEL HUB", true},
		{"unknown", "NOWHERE SPECIAL", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.resolveTerminal(ref, tt.input)
			if (got != nil) != tt.found {
				t.Errorf("resolveTerminal(%q) found=%v, want %v", tt.input, got != nil, tt.found)
			}
		})
	}
}

func TestRiskFlags(t *testing.T) {
	tests := []struct {
		name      string
		text, geo int
		dateDiff  int
		distKm    float64
		hasGeo    bool
		want      []string
	}{
		{"clean", 90, 90, 0, 5, true, nil},
		{"large date gap", 90, 90, 4, 5, true, []string{models.RiskLargeDateGap}},
		{"long distance", 90, 90, 0, 120, true, []string{models.RiskLongTerminalDistance}},
		{"weak signals and no location", 40, 0, 0, 0, false,
			[]string{models.RiskWeakSignals, models.RiskNoLocationSignal}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := riskFlags(tt.text, tt.geo, tt.dateDiff, tt.distKm, tt.hasGeo)
			if len(got) != len(tt.want) {
				t.Fatalf("flags = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("flags = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRequiresReview(t *testing.T) {
	tests := []struct {
		name     string
		overall  int
		dateDiff int
		distKm   float64
		hasGeo   bool
		flags    int
		want     bool
	}{
		{"confident clean", 90, 0, 10, true, 0, false},
		{"low overall", 65, 0, 10, true, 0, true},
		{"stale date", 90, 4, 10, true, 1, true},
		{"far terminal", 90, 0, 150, true, 1, true},
		{"multiple flags", 90, 0, 10, false, 2, true},
		{"single flag tolerated", 80, 0, 10, false, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requiresReview(tt.overall, tt.dateDiff, tt.distKm, tt.hasGeo, tt.flags)
			if got != tt.want {
				t.Errorf("requiresReview = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlagAmbiguity(t *testing.T) {
	id1, id2 := int64(1), int64(2)

	// Within the margin: both top candidates get flagged
	near := []models.Correlation{
		{DeliveryID: &id1, OverallConfidence: 90, RiskFlagsJSON: "[]"},
		{DeliveryID: &id2, OverallConfidence: 88, RiskFlagsJSON: "[]"},
	}
	flagAmbiguity(near)
	for i, corr := range near {
		if !corr.RequiresManualReview {
			t.Errorf("candidate %d should need review", i)
		}
		flags := corr.RiskFlags()
		if len(flags) != 1 || flags[0] != models.RiskAmbiguousMatch {
			t.Errorf("candidate %d flags = %v, want [ambiguous_match]", i, flags)
		}
	}

	// A clear winner stays unflagged
	distinct := []models.Correlation{
		{DeliveryID: &id1, OverallConfidence: 95, RiskFlagsJSON: "[]"},
		{DeliveryID: &id2, OverallConfidence: 70, RiskFlagsJSON: "[]"},
	}
	flagAmbiguity(distinct)
	for i, corr := range distinct {
		if corr.RequiresManualReview {
			t.Errorf("candidate %d should not need review", i)
		}
	}

	// Single candidates are never ambiguous
	single := []models.Correlation{{DeliveryID: &id1, OverallConfidence: 55, RiskFlagsJSON: "[]"}}
	flagAmbiguity(single)
	if single[0].RequiresManualReview {
		t.Error("single candidate should not be flagged ambiguous")
	}
}
