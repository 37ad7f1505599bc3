package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/DGfinder/fleet-correlation-go/internal/analysis"
	"github.com/DGfinder/fleet-correlation-go/internal/database"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/spatial"
	"github.com/DGfinder/fleet-correlation-go/internal/stats"
)

func init() {
	analysis.RegisterRunner(models.RunKindRoutes, func(db *sql.DB, paramsJSON string) (analysis.Runner, error) {
		params := models.DefaultRouteParams()
		if paramsJSON != "" {
			if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
				return nil, fmt.Errorf("invalid route params: %w", err)
			}
		}
		return New(db, params), nil
	})
}

// Aggregator recomputes route patterns from trips whose endpoints both map to
// a classified POI. Each run replaces all prior route patterns wholesale.
type Aggregator struct {
	*analysis.BaseRun
	params models.RouteParams
}

// New creates a route aggregation job
func New(db *sql.DB, params models.RouteParams) *Aggregator {
	return &Aggregator{
		BaseRun: analysis.NewBaseRun(db, "RoutePatterns"),
		params:  params,
	}
}

// Kind returns the run kind
func (a *Aggregator) Kind() string { return models.RunKindRoutes }

// poiRef is the subset of a classified POI the aggregator needs
type poiRef struct {
	ID             int64
	Lat, Lon       float64
	POIType        string
	Confidence     int
	AccuracyMeters float64
}

// routeKey identifies one directed POI pair
type routeKey struct {
	StartPOI int64
	EndPOI   int64
}

// routeGroup accumulates trips for one POI pair
type routeGroup struct {
	DistancesKm   []float64
	TravelMinutes []float64
	Vehicles      []string
	Drivers       []string
}

// Run executes the aggregation
func (a *Aggregator) Run(ctx context.Context, runID int64) error {
	log.Printf("[RoutePatterns] Starting run %d (min_trips=%d, poi_floor=%d)",
		runID, a.params.MinTripCount, a.params.POIConfidenceFloor)

	if err := a.params.Validate(); err != nil {
		return a.Fail(runID, fmt.Errorf("invalid route parameters: %w", err))
	}

	if err := a.MarkRunning(runID); err != nil {
		return fmt.Errorf("failed to mark run as running: %w", err)
	}

	pois, err := a.loadClassifiedPOIs(ctx)
	if err != nil {
		return a.Fail(runID, err)
	}

	groups, err := a.groupTrips(ctx, pois)
	if err != nil {
		return a.Fail(runID, err)
	}

	patterns := a.buildPatterns(pois, groups)

	if err := a.replacePatterns(patterns); err != nil {
		return a.Fail(runID, err)
	}

	summary := map[string]interface{}{
		"classified_pois": len(pois),
		"poi_pairs":       len(groups),
		"routes":          len(patterns),
	}
	summaryJSON, _ := json.Marshal(summary)

	if err := a.MarkCompleted(runID, string(summaryJSON)); err != nil {
		return fmt.Errorf("failed to mark run as completed: %w", err)
	}

	log.Printf("[RoutePatterns] Run %d completed: %d routes from %d POI pairs",
		runID, len(patterns), len(groups))
	return nil
}

// loadClassifiedPOIs reads POIs eligible as route endpoints
func (a *Aggregator) loadClassifiedPOIs(ctx context.Context) (map[int64]*poiRef, error) {
	query := `
		SELECT id, latitude, longitude, poi_type, confidence, accuracy_meters
		FROM discovered_pois
		WHERE status = ? AND confidence >= ?
	`

	rows, err := a.DB.QueryContext(ctx, query, models.POIStatusClassified, a.params.POIConfidenceFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to query classified POIs: %w", err)
	}
	defer rows.Close()

	pois := make(map[int64]*poiRef)
	for rows.Next() {
		var p poiRef
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lon, &p.POIType, &p.Confidence, &p.AccuracyMeters); err != nil {
			return nil, fmt.Errorf("failed to scan POI: %w", err)
		}
		pois[p.ID] = &p
	}

	return pois, rows.Err()
}

// groupTrips assigns each trip's endpoints to the nearest classified POI
// within the assign radius and accumulates per-pair statistics. Trips that do
// not resolve on both ends are skipped.
func (a *Aggregator) groupTrips(ctx context.Context, pois map[int64]*poiRef) (map[routeKey]*routeGroup, error) {
	query := `
		SELECT vehicle, driver, start_lat, start_lon, end_lat, end_lon,
			distance_km, travel_minutes
		FROM trips
		WHERE start_lat IS NOT NULL AND start_lon IS NOT NULL
		  AND end_lat IS NOT NULL AND end_lon IS NOT NULL
		ORDER BY id
	`

	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	groups := make(map[routeKey]*routeGroup)
	for rows.Next() {
		var vehicle, driver string
		var startLat, startLon, endLat, endLon, distKm, travelMin float64

		if err := rows.Scan(&vehicle, &driver, &startLat, &startLon, &endLat, &endLon,
			&distKm, &travelMin); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}

		startPOI := nearestPOI(pois, startLat, startLon, a.params.AssignRadiusMeters)
		endPOI := nearestPOI(pois, endLat, endLon, a.params.AssignRadiusMeters)
		if startPOI == nil || endPOI == nil || startPOI.ID == endPOI.ID {
			continue
		}

		key := routeKey{StartPOI: startPOI.ID, EndPOI: endPOI.ID}
		group, ok := groups[key]
		if !ok {
			group = &routeGroup{}
			groups[key] = group
		}
		group.DistancesKm = append(group.DistancesKm, distKm)
		group.TravelMinutes = append(group.TravelMinutes, travelMin)
		group.Vehicles = append(group.Vehicles, vehicle)
		group.Drivers = append(group.Drivers, driver)
	}

	return groups, rows.Err()
}

// nearestPOI finds the closest POI within radiusMeters, nil when none
func nearestPOI(pois map[int64]*poiRef, lat, lon, radiusMeters float64) *poiRef {
	var best *poiRef
	bestDist := radiusMeters

	for _, p := range pois {
		dist := spatial.HaversineDistance(lat, lon, p.Lat, p.Lon)
		if dist < bestDist || (best != nil && dist == bestDist && p.ID < best.ID) {
			best = p
			bestDist = dist
		}
	}

	return best
}

// buildPatterns computes the statistics for every pair meeting the minimum
// trip count
func (a *Aggregator) buildPatterns(pois map[int64]*poiRef, groups map[routeKey]*routeGroup) []models.RoutePattern {
	// Emitted pairs, needed for return-leg detection
	emitted := make(map[routeKey]bool)
	for key, group := range groups {
		if len(group.DistancesKm) >= a.params.MinTripCount {
			emitted[key] = true
		}
	}

	var patterns []models.RoutePattern
	for key := range emitted {
		group := groups[key]
		start := pois[key.StartPOI]
		end := pois[key.EndPOI]

		pattern := models.RoutePattern{
			StartPOIID: key.StartPOI,
			EndPOIID:   key.EndPOI,
			TripCount:  len(group.DistancesKm),

			AvgDistanceKm: stats.Mean(group.DistancesKm),
			MinDistanceKm: stats.Min(group.DistancesKm),
			MaxDistanceKm: stats.Max(group.DistancesKm),

			AvgTravelMinutes:    stats.Mean(group.TravelMinutes),
			MinTravelMinutes:    stats.Min(group.TravelMinutes),
			MaxTravelMinutes:    stats.Max(group.TravelMinutes),
			TravelMinutesStdDev: stats.StdDev(group.TravelMinutes),

			PrimaryVehicle: stats.StringMode(group.Vehicles),
			PrimaryDriver:  stats.StringMode(group.Drivers),

			RouteType:    ClassifyRouteType(start.POIType, end.POIType),
			HasReturnLeg: emitted[routeKey{StartPOI: key.EndPOI, EndPOI: key.StartPOI}],
		}

		pattern.StraightLineKm = spatial.DistanceKm(start.Lat, start.Lon, end.Lat, end.Lon)
		pattern.DeviationRatioPct = deviationRatio(pattern.AvgDistanceKm, pattern.StraightLineKm)
		pattern.EfficiencyRating = EfficiencyRating(group.TravelMinutes)
		pattern.QualityTier = QualityTier(start, end, pattern.TripCount)

		patterns = append(patterns, pattern)
	}

	// Deterministic output order
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].StartPOIID != patterns[j].StartPOIID {
			return patterns[i].StartPOIID < patterns[j].StartPOIID
		}
		return patterns[i].EndPOIID < patterns[j].EndPOIID
	})

	return patterns
}

// ClassifyRouteType derives the route type purely from the endpoint POI types
func ClassifyRouteType(startType, endType string) string {
	if startType == models.POITypeDepot {
		return models.RouteTypePositioning
	}

	switch {
	case startType == models.POITypeTerminal && endType == models.POITypeCustomer:
		return models.RouteTypeDelivery
	case startType == models.POITypeCustomer && endType == models.POITypeTerminal:
		return models.RouteTypeReturn
	case startType == models.POITypeTerminal && endType == models.POITypeTerminal:
		return models.RouteTypeTransfer
	case startType == models.POITypeCustomer && endType == models.POITypeCustomer:
		return models.RouteTypeCustomerToCustomer
	default:
		return models.RouteTypeUnknown
	}
}

// deviationRatio is mean actual distance over straight-line distance, as a
// percentage. An identical-location pair degenerates to 100.
func deviationRatio(avgDistanceKm, straightLineKm float64) float64 {
	if straightLineKm <= 0 {
		return 100
	}
	return avgDistanceKm / straightLineKm * 100
}

// EfficiencyRating maps the coefficient of variation of travel time to the
// four fixed bands; a tighter distribution rates higher
func EfficiencyRating(travelMinutes []float64) int {
	cv := stats.CoefficientOfVariation(travelMinutes)

	switch {
	case cv < 0.15:
		return 95
	case cv < 0.25:
		return 85
	case cv < 0.35:
		return 75
	default:
		return 65
	}
}

// QualityTier combines both POIs' classification confidence, GPS accuracy,
// and trip count into the four trustworthiness bands
func QualityTier(start, end *poiRef, tripCount int) string {
	minConfidence := start.Confidence
	if end.Confidence < minConfidence {
		minConfidence = end.Confidence
	}

	maxAccuracy := start.AccuracyMeters
	if end.AccuracyMeters > maxAccuracy {
		maxAccuracy = end.AccuracyMeters
	}

	switch {
	case minConfidence >= 85 && maxAccuracy < 50 && tripCount >= 50:
		return models.TierPlatinum
	case minConfidence >= 75 && maxAccuracy < 100 && tripCount >= 20:
		return models.TierGold
	case minConfidence >= 70 && tripCount >= 10:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

// replacePatterns swaps all route patterns in one transaction
func (a *Aggregator) replacePatterns(patterns []models.RoutePattern) error {
	return database.TransactionOn(a.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM route_patterns"); err != nil {
			return fmt.Errorf("failed to clear route patterns: %w", err)
		}

		insert := `
			INSERT INTO route_patterns (
				start_poi_id, end_poi_id, route_type, quality_tier, trip_count,
				avg_distance_km, min_distance_km, max_distance_km,
				avg_travel_minutes, min_travel_minutes, max_travel_minutes,
				travel_minutes_stddev, straight_line_km, deviation_ratio_pct,
				efficiency_rating, primary_vehicle, primary_driver, has_return_leg
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		stmt, err := tx.Prepare(insert)
		if err != nil {
			return fmt.Errorf("failed to prepare route insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range patterns {
			if _, err := stmt.Exec(
				p.StartPOIID, p.EndPOIID, p.RouteType, p.QualityTier, p.TripCount,
				p.AvgDistanceKm, p.MinDistanceKm, p.MaxDistanceKm,
				p.AvgTravelMinutes, p.MinTravelMinutes, p.MaxTravelMinutes,
				p.TravelMinutesStdDev, p.StraightLineKm, p.DeviationRatioPct,
				p.EfficiencyRating, p.PrimaryVehicle, p.PrimaryDriver, p.HasReturnLeg,
			); err != nil {
				return fmt.Errorf("failed to insert route pattern: %w", err)
			}
		}
		return nil
	})
}
