package matching

import (
	"sort"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/spatial"
)

// Candidate kind constants
const (
	CandidateTerminal = "terminal"
	CandidateCustomer = "customer"
)

// GeoCandidate is one ranked reference location near a query point
type GeoCandidate struct {
	Kind       string  `json:"kind"`
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
	Confidence int     `json:"confidence"`

	// Terminal-only: the point fell inside the terminal's service area
	WithinServiceArea bool `json:"within_service_area"`
}

// GeoBands configure the distance-banded confidence gradient
type GeoBands struct {
	ServiceAreaScore int     // inside service polygon / radius
	NearKm           float64 // <= NearKm -> NearScore
	MidKm            float64
	FarKm            float64
	NearScore        int
	MidScore         int
	FarScore         int
	BeyondScore      int
}

// DefaultGeoBands returns the reference confidence gradient
func DefaultGeoBands() GeoBands {
	return GeoBands{
		ServiceAreaScore: 95,
		NearKm:           25,
		MidKm:            50,
		FarKm:            100,
		NearScore:        85,
		MidScore:         70,
		FarScore:         50,
		BeyondScore:      25,
	}
}

// GeoMatcher ranks known terminals and customers by proximity to a point.
// It holds read-only reference data and is safe for concurrent use.
type GeoMatcher struct {
	terminals []models.Terminal
	customers []models.Customer
	bands     GeoBands
}

// NewGeoMatcher creates a geospatial matcher over the reference registries
func NewGeoMatcher(terminals []models.Terminal, customers []models.Customer) *GeoMatcher {
	return &GeoMatcher{
		terminals: terminals,
		customers: customers,
		bands:     DefaultGeoBands(),
	}
}

// TerminalCount returns the number of terminals in the registry
func (gm *GeoMatcher) TerminalCount() int { return len(gm.terminals) }

// CustomerCount returns the number of customers in the registry
func (gm *GeoMatcher) CustomerCount() int { return len(gm.customers) }

// MatchTerminals returns terminals within maxRadiusKm of the point, ranked by
// confidence then distance. carrier filters by primary carrier when non-empty.
func (gm *GeoMatcher) MatchTerminals(lat, lon, maxRadiusKm float64, carrier string) []GeoCandidate {
	var candidates []GeoCandidate

	for i := range gm.terminals {
		t := &gm.terminals[i]
		if carrier != "" && t.PrimaryCarrier != carrier {
			continue
		}

		distKm, confidence, within := gm.ScoreTerminal(lat, lon, t)
		if distKm > maxRadiusKm {
			continue
		}

		candidates = append(candidates, GeoCandidate{
			Kind:              CandidateTerminal,
			ID:                t.ID,
			Name:              t.Name,
			DistanceKm:        distKm,
			Confidence:        confidence,
			WithinServiceArea: within,
		})
	}

	sortCandidates(candidates)
	return candidates
}

// MatchCustomers returns customers within maxRadiusKm of the point, ranked by
// confidence then distance
func (gm *GeoMatcher) MatchCustomers(lat, lon, maxRadiusKm float64) []GeoCandidate {
	var candidates []GeoCandidate

	for i := range gm.customers {
		c := &gm.customers[i]

		distKm := spatial.DistanceKm(lat, lon, c.Latitude, c.Longitude)
		if distKm > maxRadiusKm {
			continue
		}

		candidates = append(candidates, GeoCandidate{
			Kind:       CandidateCustomer,
			ID:         c.ID,
			Name:       c.Name,
			DistanceKm: distKm,
			Confidence: gm.distanceBandScore(distKm),
		})
	}

	sortCandidates(candidates)
	return candidates
}

// ScoreTerminal scores one terminal against a point: distance in km, a
// confidence score, and whether the point fell inside the service area
func (gm *GeoMatcher) ScoreTerminal(lat, lon float64, t *models.Terminal) (float64, int, bool) {
	distKm := spatial.DistanceKm(lat, lon, t.Latitude, t.Longitude)

	if gm.withinServiceArea(lat, lon, t, distKm) {
		return distKm, gm.bands.ServiceAreaScore, true
	}

	return distKm, gm.distanceBandScore(distKm), false
}

// withinServiceArea prefers the curated polygon; terminals without one fall
// back to their service radius
func (gm *GeoMatcher) withinServiceArea(lat, lon float64, t *models.Terminal, distKm float64) bool {
	if ring := t.ServiceArea(); ring != nil {
		polygon := make([]spatial.Point, len(ring))
		for i, vertex := range ring {
			polygon[i] = spatial.Point{Lat: vertex[0], Lon: vertex[1]}
		}
		return spatial.PointInPolygon(spatial.Point{Lat: lat, Lon: lon}, polygon)
	}

	return t.ServiceRadiusKm > 0 && distKm <= t.ServiceRadiusKm
}

// distanceBandScore maps distance to the banded confidence gradient
func (gm *GeoMatcher) distanceBandScore(distKm float64) int {
	switch {
	case distKm <= gm.bands.NearKm:
		return gm.bands.NearScore
	case distKm <= gm.bands.MidKm:
		return gm.bands.MidScore
	case distKm <= gm.bands.FarKm:
		return gm.bands.FarScore
	default:
		return gm.bands.BeyondScore
	}
}

// sortCandidates orders by confidence desc, then distance asc, then id asc
// so results are deterministic
func sortCandidates(candidates []GeoCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].ID < candidates[j].ID
	})
}
