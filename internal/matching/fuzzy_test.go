package matching

import (
	"testing"

	"github.com/DGfinder/fleet-correlation-go/internal/normalize"
)

func newTestMatcher() *FuzzyMatcher {
	return NewFuzzyMatcher(normalize.NewNormalizer())
}

func TestMatchNamesNullInput(t *testing.T) {
	fm := newTestMatcher()

	for _, pair := range [][2]string{
		{"", "KEWDALE"},
		{"KEWDALE", ""},
		{"   ", "KEWDALE"},
		{"", ""},
	} {
		result := fm.MatchNames(pair[0], pair[1], MatchGeneral)
		if result.Method != MethodNullInput {
			t.Errorf("MatchNames(%q, %q) method = %q, want %q", pair[0], pair[1], result.Method, MethodNullInput)
		}
		if result.Confidence != 0 {
			t.Errorf("MatchNames(%q, %q) confidence = %d, want 0", pair[0], pair[1], result.Confidence)
		}
	}
}

func TestMatchNamesPrecedence(t *testing.T) {
	fm := newTestMatcher()

	tests := []struct {
		name       string
		a, b       string
		wantMethod string
		wantConf   int
	}{
		{
			name:       "business identifier wins",
			a:          "BHP Billiton Iron Ore",
			b:          "BHP Nickel West Kalgoorlie",
			wantMethod: MethodBusinessIDExact,
			wantConf:   95,
		},
		{
			name:       "location reference when no business id",
			a:          "Shell Depot Kalgoorlie",
			b:          "Kalgoorlie Fuel Services",
			wantMethod: MethodLocationRefExact,
			wantConf:   85,
		},
		{
			name:       "normalized exact across naming variants",
			a:          "ACME HAULAGE PTY LTD",
			b:          "Acme Haulage",
			wantMethod: MethodNormalizedExact,
			wantConf:   90,
		},
		{
			name:       "trigram fallback for near matches",
			a:          "NORTHERN STAR MINING SERVICES",
			b:          "NORTHERN STAR MINING SVCS",
			wantMethod: MethodTrigram,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fm.MatchNames(tt.a, tt.b, MatchBusiness)
			if result.Method != tt.wantMethod {
				t.Fatalf("method = %q, want %q", result.Method, tt.wantMethod)
			}
			if tt.wantConf > 0 && result.Confidence != tt.wantConf {
				t.Errorf("confidence = %d, want %d", result.Confidence, tt.wantConf)
			}
		})
	}
}

func TestMatchNamesTrigramTiers(t *testing.T) {
	fm := newTestMatcher()

	// Unrelated names score zero confidence
	result := fm.MatchNames("ZYX MINING", "QORP LOGISTICS", MatchGeneral)
	if result.Method != MethodTrigram {
		t.Fatalf("method = %q, want %q", result.Method, MethodTrigram)
	}
	if result.Confidence != 0 {
		t.Errorf("unrelated names confidence = %d, want 0", result.Confidence)
	}

	// Near-identical names land in the high tier
	result = fm.MatchNames("GOLDFIELDS TRANSPORT SERVICE", "GOLDFIELDS TRANSPORT SERVICES", MatchGeneral)
	if result.Confidence < 80 {
		t.Errorf("near-identical names confidence = %d, want >= 80", result.Confidence)
	}
}

func TestMatchNamesSuffixOnlyCarriesNoSignal(t *testing.T) {
	fm := newTestMatcher()

	// Both names normalize to nothing; similarity must not default to a match
	result := fm.MatchNames("PTY LTD", "GARAGE", MatchGeneral)
	if result.Confidence != 0 {
		t.Errorf("suffix-only names confidence = %d, want 0", result.Confidence)
	}
	if result.Similarity != 0 {
		t.Errorf("suffix-only names similarity = %v, want 0", result.Similarity)
	}
}

func TestMatchNamesIdentifierBonus(t *testing.T) {
	fm := newTestMatcher()

	// Different business identifiers, but both present: trigram score plus bonus
	with := fm.MatchNames("BHP IRON ORE HAULAGE", "FMG IRON ORE HAULAGE", MatchBusiness)
	without := fm.MatchNames("ZYX IRON ORE HAULAGE", "QRP IRON ORE HAULAGE", MatchBusiness)

	if with.Method != MethodTrigram || without.Method != MethodTrigram {
		t.Fatalf("methods = %q / %q, want trigram for both", with.Method, without.Method)
	}
	if !with.BusinessIDMatch {
		t.Error("expected BusinessIDMatch when both sides carry an identifier")
	}
	if with.Confidence <= without.Confidence {
		t.Errorf("identifier bonus missing: with=%d without=%d", with.Confidence, without.Confidence)
	}
}

func TestTrigramSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"ABC", "ABC", 1.0},
		{"ABC", "XYZ", 0.0},
		{"AB", "AB", 1.0},
		{"AB", "CD", 0.0},
	}

	for _, tt := range tests {
		if got := TrigramSimilarity(tt.a, tt.b); got != tt.want {
			t.Errorf("TrigramSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	// Similarity is symmetric and bounded
	a, b := "KALGOORLIE FUEL", "KALGOORLIE FUELS"
	ab := TrigramSimilarity(a, b)
	ba := TrigramSimilarity(b, a)
	if ab != ba {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
	if ab <= 0 || ab > 1 {
		t.Errorf("similarity out of range: %v", ab)
	}
}
