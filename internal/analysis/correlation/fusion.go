package correlation

import (
	"math"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// fusionRule is one row of the confidence fusion decision table. Rules are
// evaluated in order and the first applicable one wins, which keeps the rule
// set auditable and testable rule by rule.
type fusionRule struct {
	Name    string
	Applies func(text, geo int, w models.FusionWeights) bool
	Score   func(text, geo, temporal int, w models.FusionWeights) float64
}

// fusionTable encodes the tiered weighting: a single very strong signal
// dominates weak or absent others, rather than being averaged away.
var fusionTable = []fusionRule{
	{
		Name: "both_strong",
		Applies: func(text, geo int, w models.FusionWeights) bool {
			return text >= w.StrongBand && geo >= w.StrongBand
		},
		Score: func(text, geo, temporal int, w models.FusionWeights) float64 {
			return float64(w.BothStrongBase) + w.BothStrongTemporal*float64(temporal)
		},
	},
	{
		Name: "text_strong",
		Applies: func(text, geo int, w models.FusionWeights) bool {
			return text >= w.StrongBand
		},
		Score: func(text, geo, temporal int, w models.FusionWeights) float64 {
			return float64(w.TextStrongBase) + w.TextStrongGeo*float64(geo) + w.TextStrongTemporal*float64(temporal)
		},
	},
	{
		Name: "geo_strong",
		Applies: func(text, geo int, w models.FusionWeights) bool {
			return geo >= w.StrongBand
		},
		Score: func(text, geo, temporal int, w models.FusionWeights) float64 {
			return float64(w.GeoStrongBase) + w.GeoStrongText*float64(text) + w.GeoStrongTemporal*float64(temporal)
		},
	},
	{
		Name: "both_moderate",
		Applies: func(text, geo int, w models.FusionWeights) bool {
			return text >= w.ModerateBand && geo >= w.ModerateBand
		},
		Score: func(text, geo, temporal int, w models.FusionWeights) float64 {
			return w.BothModerateText*float64(text) + w.BothModerateGeo*float64(geo) + w.BothModerateTemporal*float64(temporal)
		},
	},
	{
		Name: "text_moderate",
		Applies: func(text, geo int, w models.FusionWeights) bool {
			return text >= w.ModerateBand
		},
		Score: func(text, geo, temporal int, w models.FusionWeights) float64 {
			return float64(w.TextModerateBase) + w.TextModerateGeo*float64(geo) + w.TextModerateTemporal*float64(temporal)
		},
	},
	{
		Name: "geo_moderate",
		Applies: func(text, geo int, w models.FusionWeights) bool {
			return geo >= w.ModerateBand
		},
		Score: func(text, geo, temporal int, w models.FusionWeights) float64 {
			return float64(w.GeoModerateBase) + w.GeoModerateText*float64(text) + w.GeoModerateTemporal*float64(temporal)
		},
	},
	{
		Name: "all_weak",
		Applies: func(text, geo int, w models.FusionWeights) bool {
			return true
		},
		Score: func(text, geo, temporal int, w models.FusionWeights) float64 {
			return w.FallbackText*float64(text) + w.FallbackGeo*float64(geo) + w.FallbackTemporal*float64(temporal)
		},
	},
}

// Fuse combines the three per-signal confidences into one overall confidence
// using the decision table. The result is capped at 100 and is a pure
// function of the three inputs, so any stored correlation can be re-derived
// from its per-signal breakdown.
func Fuse(text, geo, temporal int, w models.FusionWeights) (int, string) {
	for _, rule := range fusionTable {
		if !rule.Applies(text, geo, w) {
			continue
		}

		overall := int(math.Round(rule.Score(text, geo, temporal, w)))
		if overall > 100 {
			overall = 100
		}
		if overall < 0 {
			overall = 0
		}
		return overall, rule.Name
	}

	return 0, "" // unreachable: the last rule always applies
}

// TemporalConfidence maps an absolute date difference in days to the fixed
// temporal step function
func TemporalConfidence(dateDiffDays int) int {
	if dateDiffDays < 0 {
		dateDiffDays = -dateDiffDays
	}

	switch {
	case dateDiffDays == 0:
		return 100
	case dateDiffDays == 1:
		return 80
	case dateDiffDays == 2:
		return 60
	case dateDiffDays == 3:
		return 40
	case dateDiffDays <= 5:
		return 20
	default:
		return 0
	}
}

// QualityLabel assigns the coarse quality bucket from the per-signal scores
func QualityLabel(text, geo, temporal int) string {
	switch {
	case text >= 85 && geo >= 85 && temporal >= 80:
		return models.QualityExcellent
	case text >= 75 && geo >= 70 && temporal >= 60:
		return models.QualityGood
	case text >= 60 || geo >= 60:
		return models.QualityFair
	default:
		return models.QualityPoor
	}
}
