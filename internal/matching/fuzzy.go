package matching

import (
	"strings"

	"github.com/DGfinder/fleet-correlation-go/internal/normalize"
)

// MatchType hints what kind of names are being compared
type MatchType string

// Match type constants
const (
	MatchTerminal MatchType = "terminal"
	MatchBusiness MatchType = "business"
	MatchGeneral  MatchType = "general"
)

// Match method labels, in precedence order
const (
	MethodNullInput        = "null_input"
	MethodBusinessIDExact  = "business_identifier_exact"
	MethodLocationRefExact = "location_reference_exact"
	MethodNormalizedExact  = "normalized_exact"
	MethodTrigram          = "trigram_similarity"
)

// MatchResult is the outcome of one fuzzy name comparison
type MatchResult struct {
	Similarity  float64   `json:"similarity"` // 0.0 - 1.0
	Confidence  int       `json:"confidence"` // 0 - 100
	Method      string    `json:"method"`
	Hint        MatchType `json:"hint"`
	NormalizedA string    `json:"normalized_a"`
	NormalizedB string    `json:"normalized_b"`

	// Whether an identifier extraction contributed to the score
	BusinessIDMatch bool `json:"business_id_match"`
	GeoRefMatch     bool `json:"geo_ref_match"`
}

// FuzzyTiers bucket trigram similarity into confidence scores
type FuzzyTiers struct {
	High            float64 // similarity >= High   -> HighScore
	Medium          float64 // similarity >= Medium -> MediumScore
	Low             float64 // similarity >= Low    -> LowScore
	HighScore       int
	MediumScore     int
	LowScore        int
	IdentifierBonus int // added when both sides carry an identifier
}

// DefaultFuzzyTiers returns the reference tier configuration
func DefaultFuzzyTiers() FuzzyTiers {
	return FuzzyTiers{
		High:            0.8,
		Medium:          0.6,
		Low:             0.4,
		HighScore:       80,
		MediumScore:     60,
		LowScore:        40,
		IdentifierBonus: 10,
	}
}

// FuzzyMatcher scores textual similarity between two free-text names
type FuzzyMatcher struct {
	normalizer *normalize.Normalizer
	tiers      FuzzyTiers
}

// NewFuzzyMatcher creates a fuzzy matcher over the given normalizer
func NewFuzzyMatcher(n *normalize.Normalizer) *FuzzyMatcher {
	return &FuzzyMatcher{
		normalizer: n,
		tiers:      DefaultFuzzyTiers(),
	}
}

// MatchNames compares two raw strings. Rules apply in precedence order and
// the first applicable one wins:
//  1. same non-empty business identifier on both sides
//  2. same non-empty geographic reference on both sides
//  3. equal normalized forms
//  4. trigram similarity bucketed into confidence tiers, with a bonus when
//     both sides independently carry an identifier
func (fm *FuzzyMatcher) MatchNames(a, b string, hint MatchType) MatchResult {
	result := MatchResult{Hint: hint}

	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		result.Method = MethodNullInput
		return result
	}

	result.NormalizedA = fm.normalizer.Normalize(a)
	result.NormalizedB = fm.normalizer.Normalize(b)

	bizA := fm.normalizer.BusinessIdentifier(a)
	bizB := fm.normalizer.BusinessIdentifier(b)
	if bizA != "" && bizA == bizB {
		result.Method = MethodBusinessIDExact
		result.Confidence = 95
		result.Similarity = 1.0
		result.BusinessIDMatch = true
		return result
	}

	geoA := fm.normalizer.LocationReference(a)
	geoB := fm.normalizer.LocationReference(b)
	if geoA != "" && geoA == geoB {
		result.Method = MethodLocationRefExact
		result.Confidence = 85
		result.Similarity = 1.0
		result.GeoRefMatch = true
		return result
	}

	if result.NormalizedA != "" && result.NormalizedA == result.NormalizedB {
		result.Method = MethodNormalizedExact
		result.Confidence = 90
		result.Similarity = 1.0
		return result
	}

	result.Method = MethodTrigram

	// Names made entirely of stripped suffixes normalize to nothing and
	// carry no signal
	if result.NormalizedA == "" || result.NormalizedB == "" {
		return result
	}

	result.Similarity = TrigramSimilarity(result.NormalizedA, result.NormalizedB)

	confidence := 0
	switch {
	case result.Similarity >= fm.tiers.High:
		confidence = fm.tiers.HighScore
	case result.Similarity >= fm.tiers.Medium:
		confidence = fm.tiers.MediumScore
	case result.Similarity >= fm.tiers.Low:
		confidence = fm.tiers.LowScore
	}

	// Both sides naming a known account or region is weak corroboration even
	// when the identifiers differ
	if bizA != "" && bizB != "" {
		confidence += fm.tiers.IdentifierBonus
		result.BusinessIDMatch = true
	}
	if geoA != "" && geoB != "" {
		confidence += fm.tiers.IdentifierBonus
		result.GeoRefMatch = true
	}

	if confidence > 100 {
		confidence = 100
	}
	result.Confidence = confidence

	return result
}

// TrigramSimilarity computes Jaccard similarity over character trigram sets.
// Strings shorter than three characters contribute themselves as a single gram.
func TrigramSimilarity(a, b string) float64 {
	gramsA := trigrams(a)
	gramsB := trigrams(b)

	if len(gramsA) == 0 && len(gramsB) == 0 {
		return 1.0
	}
	if len(gramsA) == 0 || len(gramsB) == 0 {
		return 0.0
	}

	intersection := 0
	for g := range gramsA {
		if gramsB[g] {
			intersection++
		}
	}

	union := len(gramsA) + len(gramsB) - intersection
	return float64(intersection) / float64(union)
}

// trigrams builds the set of character 3-grams for a string
func trigrams(s string) map[string]bool {
	grams := make(map[string]bool)

	if s == "" {
		return grams
	}
	if len(s) < 3 {
		grams[s] = true
		return grams
	}

	for i := 0; i <= len(s)-3; i++ {
		grams[s[i:i+3]] = true
	}

	return grams
}
