package discovery

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/DGfinder/fleet-correlation-go/internal/analysis"
	"github.com/DGfinder/fleet-correlation-go/internal/database"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/spatial"
)

func init() {
	analysis.RegisterRunner(models.RunKindDiscover, func(db *sql.DB, paramsJSON string) (analysis.Runner, error) {
		params := models.DefaultClusterParams()
		if paramsJSON != "" {
			if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
				return nil, fmt.Errorf("invalid discovery params: %w", err)
			}
		}
		return New(db, params), nil
	})
}

// Discoverer clusters trip endpoints into recurring stop locations (POIs).
// Clustering is density-based: a point joins a cluster when at least
// MinPoints points, itself included, lie within RadiusMeters, and clusters
// grow transitively through such dense points.
type Discoverer struct {
	*analysis.BaseRun
	params models.ClusterParams
}

// New creates a POI discovery job
func New(db *sql.DB, params models.ClusterParams) *Discoverer {
	return &Discoverer{
		BaseRun: analysis.NewBaseRun(db, "POIDiscovery"),
		params:  params,
	}
}

// Kind returns the run kind
func (d *Discoverer) Kind() string { return models.RunKindDiscover }

// endpoint is one trip endpoint candidate for clustering
type endpoint struct {
	TripID      int64
	Point       spatial.Point
	IdleMinutes float64
}

// candidate is an in-memory POI before insertion
type candidate struct {
	Points         []spatial.Point
	IdleMinutes    []float64
	StartTripCount int
	EndTripCount   int

	// Filled during the cross-pass merge
	absorbedBy int // index of the surviving candidate, -1 when surviving
}

// Run executes POI discovery
func (d *Discoverer) Run(ctx context.Context, runID int64) error {
	log.Printf("[POIDiscovery] Starting run %d (radius=%.0fm, min_points=%d, min_idle=%.0fmin)",
		runID, d.params.RadiusMeters, d.params.MinPoints, d.params.MinIdleMinutes)

	if err := d.params.Validate(); err != nil {
		return d.Fail(runID, fmt.Errorf("invalid cluster parameters: %w", err))
	}

	if err := d.MarkRunning(runID); err != nil {
		return fmt.Errorf("failed to mark run as running: %w", err)
	}

	starts, ends, err := d.loadEndpoints(ctx)
	if err != nil {
		return d.Fail(runID, err)
	}

	log.Printf("[POIDiscovery] Loaded %d start points and %d end points", len(starts), len(ends))

	// The two passes are independent and may run concurrently; each pass
	// itself is a single sweep because cluster membership is transitive.
	var wg sync.WaitGroup
	var startClusters, endClusters [][]int
	wg.Add(2)
	go func() {
		defer wg.Done()
		startClusters = clusterEndpoints(starts, d.params.RadiusMeters, d.params.MinPoints)
	}()
	go func() {
		defer wg.Done()
		endClusters = clusterEndpoints(ends, d.params.RadiusMeters, d.params.MinPoints)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return d.Fail(runID, err)
	}

	candidates := buildCandidates(starts, startClusters, ends, endClusters)
	merged := mergeCrossPass(candidates, d.params.RadiusMeters)

	log.Printf("[POIDiscovery] %d start clusters + %d end clusters -> %d POIs (%d merged)",
		len(startClusters), len(endClusters), surviving(candidates), merged)

	inserted, err := d.insertPOIs(candidates)
	if err != nil {
		return d.Fail(runID, err)
	}

	summary := map[string]interface{}{
		"start_points":   len(starts),
		"end_points":     len(ends),
		"start_clusters": len(startClusters),
		"end_clusters":   len(endClusters),
		"pois":           inserted,
	}
	summaryJSON, _ := json.Marshal(summary)

	if err := d.MarkCompleted(runID, string(summaryJSON)); err != nil {
		return fmt.Errorf("failed to mark run as completed: %w", err)
	}

	log.Printf("[POIDiscovery] Run %d completed: %d POIs", runID, inserted)
	return nil
}

// loadEndpoints reads qualifying trip endpoints. Trips without coordinates or
// with idle time below the threshold are skipped as noise, not errors.
func (d *Discoverer) loadEndpoints(ctx context.Context) ([]endpoint, []endpoint, error) {
	query := `
		SELECT id, start_lat, start_lon, end_lat, end_lon, idle_minutes
		FROM trips
		ORDER BY id
	`

	rows, err := d.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var starts, ends []endpoint
	for rows.Next() {
		var id int64
		var startLat, startLon, endLat, endLon sql.NullFloat64
		var idle float64

		if err := rows.Scan(&id, &startLat, &startLon, &endLat, &endLon, &idle); err != nil {
			return nil, nil, fmt.Errorf("failed to scan trip: %w", err)
		}

		if idle < d.params.MinIdleMinutes {
			continue
		}

		if startLat.Valid && startLon.Valid {
			starts = append(starts, endpoint{
				TripID:      id,
				Point:       spatial.Point{Lat: startLat.Float64, Lon: startLon.Float64},
				IdleMinutes: idle,
			})
		}
		if endLat.Valid && endLon.Valid {
			ends = append(ends, endpoint{
				TripID:      id,
				Point:       spatial.Point{Lat: endLat.Float64, Lon: endLon.Float64},
				IdleMinutes: idle,
			})
		}
	}

	return starts, ends, rows.Err()
}

// clusterEndpoints runs density-based clustering over one point set and
// returns clusters as index lists. Points not density-reachable from any
// sufficiently dense neighborhood are discarded as noise.
func clusterEndpoints(points []endpoint, radiusMeters float64, minPoints int) [][]int {
	n := len(points)
	if n == 0 {
		return nil
	}

	const (
		unvisited = 0
		noise     = -1
	)

	// labels: 0 unvisited, -1 noise, >0 cluster number
	labels := make([]int, n)
	clusterNum := 0
	var clusters [][]int

	neighbors := func(i int) []int {
		var result []int
		for j := 0; j < n; j++ {
			if spatial.HaversineDistance(
				points[i].Point.Lat, points[i].Point.Lon,
				points[j].Point.Lat, points[j].Point.Lon,
			) <= radiusMeters {
				result = append(result, j)
			}
		}
		return result
	}

	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}

		seed := neighbors(i)
		if len(seed) < minPoints {
			labels[i] = noise
			continue
		}

		// Grow a new cluster from this dense point by BFS over
		// density-reachable neighbors
		clusterNum++
		labels[i] = clusterNum
		members := []int{i}

		queue := append([]int(nil), seed...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] == noise {
				// Border point: joins the cluster but does not extend it
				labels[j] = clusterNum
				members = append(members, j)
				continue
			}
			if labels[j] != unvisited {
				continue
			}

			labels[j] = clusterNum
			members = append(members, j)

			reachable := neighbors(j)
			if len(reachable) >= minPoints {
				queue = append(queue, reachable...)
			}
		}

		clusters = append(clusters, members)
	}

	return clusters
}

// buildCandidates turns index clusters from both passes into POI candidates
func buildCandidates(starts []endpoint, startClusters [][]int, ends []endpoint, endClusters [][]int) []*candidate {
	var candidates []*candidate

	for _, members := range startClusters {
		c := &candidate{absorbedBy: -1}
		for _, i := range members {
			c.Points = append(c.Points, starts[i].Point)
			c.IdleMinutes = append(c.IdleMinutes, starts[i].IdleMinutes)
		}
		c.StartTripCount = len(members)
		candidates = append(candidates, c)
	}

	for _, members := range endClusters {
		c := &candidate{absorbedBy: -1}
		for _, i := range members {
			c.Points = append(c.Points, ends[i].Point)
			c.IdleMinutes = append(c.IdleMinutes, ends[i].IdleMinutes)
		}
		c.EndTripCount = len(members)
		candidates = append(candidates, c)
	}

	return candidates
}

// mergeCrossPass absorbs start-pass and end-pass clusters whose centroids lie
// within the neighborhood radius of each other into one mixed-use POI. The
// absorbed cluster stays in the list, marked, to preserve the audit trail.
// Returns the number of merges performed.
func mergeCrossPass(candidates []*candidate, radiusMeters float64) int {
	merges := 0

	for i, a := range candidates {
		if a.absorbedBy >= 0 || a.StartTripCount == 0 {
			continue // only surviving start-pass clusters absorb
		}
		centroidA := spatial.Centroid(a.Points)

		for j, b := range candidates {
			if i == j || b.absorbedBy >= 0 || b.EndTripCount == 0 || b.StartTripCount > 0 {
				continue
			}
			centroidB := spatial.Centroid(b.Points)

			if spatial.HaversineDistance(centroidA.Lat, centroidA.Lon, centroidB.Lat, centroidB.Lon) > radiusMeters {
				continue
			}

			// Union of role counts and member points; statistics recompute
			// over the combined membership
			a.Points = append(a.Points, b.Points...)
			a.IdleMinutes = append(a.IdleMinutes, b.IdleMinutes...)
			a.EndTripCount += b.EndTripCount
			b.absorbedBy = i
			merges++
		}
	}

	return merges
}

// surviving counts candidates not absorbed by a merge
func surviving(candidates []*candidate) int {
	count := 0
	for _, c := range candidates {
		if c.absorbedBy < 0 {
			count++
		}
	}
	return count
}

// Confidence returns the discovery confidence for a cluster: base 50, plus
// trip-count tiers, plus GPS-accuracy tiers. More trips and a tighter spread
// always score at least as high.
func Confidence(tripCount int, accuracyMeters float64) int {
	confidence := 50

	switch {
	case tripCount > 100:
		confidence += 30
	case tripCount > 50:
		confidence += 20
	case tripCount > 20:
		confidence += 10
	}

	switch {
	case accuracyMeters < 50:
		confidence += 20
	case accuracyMeters < 100:
		confidence += 10
	}

	return confidence
}

// insertPOIs writes the candidates inside one transaction. When Reset is set,
// prior discoveries are cleared first so the run is a full recompute.
func (d *Discoverer) insertPOIs(candidates []*candidate) (int, error) {
	inserted := 0
	err := database.TransactionOn(d.DB, func(tx *sql.Tx) error {
		if d.params.Reset {
			if _, err := tx.Exec("DELETE FROM discovered_pois"); err != nil {
				return fmt.Errorf("failed to clear discovered POIs: %w", err)
			}
			log.Printf("[POIDiscovery] Cleared prior discoveries")
		}

		insert := `
			INSERT INTO discovered_pois (
				latitude, longitude,
				start_trip_count, end_trip_count, trip_count,
				avg_idle_minutes, total_idle_minutes,
				accuracy_meters, confidence, status, merged_into_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		// Survivors first so absorbed rows can reference their ids
		ids := make(map[int]int64)

		for i, c := range candidates {
			if c.absorbedBy >= 0 {
				continue
			}
			id, err := insertCandidate(tx, insert, c, models.POIStatusDiscovered, nil)
			if err != nil {
				return err
			}
			ids[i] = id
			inserted++
		}

		for _, c := range candidates {
			if c.absorbedBy < 0 {
				continue
			}
			survivor := ids[c.absorbedBy]
			if _, err := insertCandidate(tx, insert, c, models.POIStatusMerged, &survivor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertCandidate(tx *sql.Tx, query string, c *candidate, status string, mergedInto *int64) (int64, error) {
	centroid := spatial.Centroid(c.Points)
	accuracy := spatial.SpreadMeters(c.Points)
	tripCount := c.StartTripCount + c.EndTripCount

	var totalIdle float64
	for _, idle := range c.IdleMinutes {
		totalIdle += idle
	}
	avgIdle := 0.0
	if len(c.IdleMinutes) > 0 {
		avgIdle = totalIdle / float64(len(c.IdleMinutes))
	}

	result, err := tx.Exec(query,
		centroid.Lat, centroid.Lon,
		c.StartTripCount, c.EndTripCount, tripCount,
		avgIdle, totalIdle,
		accuracy, Confidence(tripCount, accuracy), status, mergedInto,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert POI: %w", err)
	}

	return result.LastInsertId()
}
