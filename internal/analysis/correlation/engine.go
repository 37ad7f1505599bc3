package correlation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/DGfinder/fleet-correlation-go/internal/analysis"
	"github.com/DGfinder/fleet-correlation-go/internal/database"
	"github.com/DGfinder/fleet-correlation-go/internal/matching"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/normalize"
)

func init() {
	analysis.RegisterRunner(models.RunKindCorrelate, func(db *sql.DB, paramsJSON string) (analysis.Runner, error) {
		params := models.DefaultCorrelationParams()
		if paramsJSON != "" {
			if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
				return nil, fmt.Errorf("invalid correlation params: %w", err)
			}
		}
		return New(db, params), nil
	})
}

// Correlator links trips to delivery records by fusing text, geospatial, and
// temporal evidence into one confidence score per (trip, delivery) pair.
type Correlator struct {
	*analysis.BaseRun
	params models.CorrelationParams
}

// New creates a correlation job
func New(db *sql.DB, params models.CorrelationParams) *Correlator {
	return &Correlator{
		BaseRun: analysis.NewBaseRun(db, "TripCorrelation"),
		params:  params,
	}
}

// Kind returns the run kind
func (c *Correlator) Kind() string { return models.RunKindCorrelate }

// ambiguityMargin is the confidence gap below which two top candidates are
// treated as materially equal and flagged for review instead of forcing a pick
const ambiguityMargin = 5

// reference holds the read-only collaborators shared by all workers
type reference struct {
	fuzzy      *matching.FuzzyMatcher
	geo        *matching.GeoMatcher
	normalizer *normalize.Normalizer

	terminals        []models.Terminal
	terminalByNorm   map[string]int // normalized name -> index into terminals
	businessAliases  map[string]string
	terminalAliases  map[string]string
	deliveriesByDate map[string][]models.DeliveryRecord
}

// Run executes the correlation batch
func (c *Correlator) Run(ctx context.Context, runID int64) error {
	log.Printf("[TripCorrelation] Starting run %d (tolerance=%dd, radius=%.0fkm, floor=%d)",
		runID, c.params.DateToleranceDays, c.params.MaxSearchRadiusKm, c.params.MinConfidence)

	if err := c.params.Validate(); err != nil {
		return c.Fail(runID, fmt.Errorf("invalid correlation parameters: %w", err))
	}

	if err := c.MarkRunning(runID); err != nil {
		return fmt.Errorf("failed to mark run as running: %w", err)
	}

	ref, err := c.loadReference(ctx)
	if err != nil {
		return c.Fail(runID, err)
	}

	trips, err := c.loadTrips(ctx)
	if err != nil {
		return c.Fail(runID, err)
	}

	log.Printf("[TripCorrelation] Loaded %d trips, %d terminals, %d delivery dates",
		len(trips), len(ref.terminals), len(ref.deliveriesByDate))

	correlations, err := c.correlateAll(ctx, runID, ref, trips)
	if err != nil {
		return c.Fail(runID, err)
	}

	if err := c.replaceCorrelations(runID, correlations); err != nil {
		return c.Fail(runID, err)
	}

	summary := map[string]interface{}{
		"trips":        len(trips),
		"correlations": len(correlations),
		"review":       countReview(correlations),
	}
	summaryJSON, _ := json.Marshal(summary)

	if err := c.MarkCompleted(runID, string(summaryJSON)); err != nil {
		return fmt.Errorf("failed to mark run as completed: %w", err)
	}

	log.Printf("[TripCorrelation] Run %d completed: %d correlations from %d trips",
		runID, len(correlations), len(trips))
	return nil
}

// loadReference loads the registries and alias tables. An empty terminal
// registry is a fatal configuration defect, not a per-trip condition.
func (c *Correlator) loadReference(ctx context.Context) (*reference, error) {
	normalizer := normalize.NewNormalizer()
	ref := &reference{
		fuzzy:            matching.NewFuzzyMatcher(normalizer),
		normalizer:       normalizer,
		terminalByNorm:   make(map[string]int),
		businessAliases:  make(map[string]string),
		terminalAliases:  make(map[string]string),
		deliveriesByDate: make(map[string][]models.DeliveryRecord),
	}

	rows, err := c.DB.QueryContext(ctx, `
		SELECT id, name, latitude, longitude, service_radius_km, service_area_json, primary_carrier
		FROM terminals ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query terminals: %w", err)
	}
	for rows.Next() {
		var t models.Terminal
		if err := rows.Scan(&t.ID, &t.Name, &t.Latitude, &t.Longitude,
			&t.ServiceRadiusKm, &t.ServiceAreaJSON, &t.PrimaryCarrier); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan terminal: %w", err)
		}
		ref.terminals = append(ref.terminals, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating terminals: %w", err)
	}

	if len(ref.terminals) == 0 {
		return nil, fmt.Errorf("terminal registry is empty: %w", analysis.ErrEmptyRegistry)
	}
	for i, t := range ref.terminals {
		ref.terminalByNorm[normalizer.Normalize(t.Name)] = i
	}

	var customers []models.Customer
	rows, err = c.DB.QueryContext(ctx, `SELECT id, name, latitude, longitude FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	for rows.Next() {
		var cust models.Customer
		if err := rows.Scan(&cust.ID, &cust.Name, &cust.Latitude, &cust.Longitude); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, cust)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	ref.geo = matching.NewGeoMatcher(ref.terminals, customers)

	// Alias tables are optional boosts; empty is fine
	if err := c.loadAliases(ctx, "business_aliases", ref.businessAliases, normalizer); err != nil {
		return nil, err
	}
	if err := c.loadAliases(ctx, "terminal_aliases", ref.terminalAliases, normalizer); err != nil {
		return nil, err
	}

	rows, err = c.DB.QueryContext(ctx, `
		SELECT id, customer_name, terminal_name, delivery_date, volume_litres, carrier
		FROM delivery_records ORDER BY delivery_date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery records: %w", err)
	}
	for rows.Next() {
		var d models.DeliveryRecord
		if err := rows.Scan(&d.ID, &d.CustomerName, &d.TerminalName,
			&d.DeliveryDate, &d.VolumeLitres, &d.Carrier); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan delivery record: %w", err)
		}
		// Unparseable dates are an input defect on that record only
		if _, err := time.Parse("2006-01-02", d.DeliveryDate); err != nil {
			continue
		}
		ref.deliveriesByDate[d.DeliveryDate] = append(ref.deliveriesByDate[d.DeliveryDate], d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery records: %w", err)
	}

	return ref, nil
}

func (c *Correlator) loadAliases(ctx context.Context, table string, dest map[string]string, n *normalize.Normalizer) error {
	rows, err := c.DB.QueryContext(ctx, "SELECT alias, canonical FROM "+table)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var alias, canonical string
		if err := rows.Scan(&alias, &canonical); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		dest[n.Normalize(alias)] = canonical
	}
	return rows.Err()
}

// loadTrips reads the trips covered by the run's date range
func (c *Correlator) loadTrips(ctx context.Context) ([]models.Trip, error) {
	query := `
		SELECT id, vehicle, driver, start_time, end_time,
			start_location, end_location,
			start_lat, start_lon, end_lat, end_lon,
			distance_km, travel_minutes, idle_minutes
		FROM trips
	`
	var args []interface{}
	from, to, ok := c.dateRangeBounds()
	if ok {
		query += " WHERE start_time >= ? AND start_time < ?"
		args = append(args, from, to)
	}
	query += " ORDER BY id"

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(&t.ID, &t.Vehicle, &t.Driver, &t.StartTime, &t.EndTime,
			&t.StartLocation, &t.EndLocation,
			&t.StartLat, &t.StartLon, &t.EndLat, &t.EndLon,
			&t.DistanceKm, &t.TravelMinutes, &t.IdleMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}

	return trips, rows.Err()
}

// dateRangeBounds converts the optional YYYY-MM-DD range into unix bounds
func (c *Correlator) dateRangeBounds() (int64, int64, bool) {
	if c.params.StartDate == "" || c.params.EndDate == "" {
		return 0, 0, false
	}
	from, err := time.Parse("2006-01-02", c.params.StartDate)
	if err != nil {
		return 0, 0, false
	}
	to, err := time.Parse("2006-01-02", c.params.EndDate)
	if err != nil {
		return 0, 0, false
	}
	return from.Unix(), to.AddDate(0, 0, 1).Unix(), true
}

// correlateAll fans trips out over a bounded worker pool. Each trip's
// computation is independent of every other trip's.
func (c *Correlator) correlateAll(ctx context.Context, runID int64, ref *reference, trips []models.Trip) ([]models.Correlation, error) {
	workers := c.params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(trips) && len(trips) > 0 {
		workers = len(trips)
	}

	jobs := make(chan models.Trip)
	var mu sync.Mutex
	var results []models.Correlation
	var processed int64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trip := range jobs {
				matches := c.correlateTrip(ref, &trip)
				mu.Lock()
				results = append(results, matches...)
				processed++
				if processed%500 == 0 {
					c.UpdateProgress(runID, processed, int64(len(trips)), 0)
				}
				mu.Unlock()
			}
		}()
	}

	for _, trip := range trips {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- trip:
		}
	}
	close(jobs)
	wg.Wait()

	if err := c.UpdateProgress(runID, processed, int64(len(trips)), 0); err != nil {
		return nil, fmt.Errorf("failed to update run progress: %w", err)
	}

	// Deterministic output order regardless of worker scheduling
	sort.Slice(results, func(i, j int) bool {
		if results[i].TripID != results[j].TripID {
			return results[i].TripID < results[j].TripID
		}
		return derefID(results[i].DeliveryID) < derefID(results[j].DeliveryID)
	})

	return results, nil
}

// correlateTrip evaluates every delivery candidate inside the date tolerance
// window and returns the correlations that clear the confidence floor. A trip
// with no endpoints or no candidates yields zero correlations, not an error.
func (c *Correlator) correlateTrip(ref *reference, trip *models.Trip) []models.Correlation {
	tripDate, err := time.Parse("2006-01-02", trip.StartDate())
	if err != nil {
		return nil
	}

	var matches []models.Correlation

	for _, candidate := range c.enumerateCandidates(ref, tripDate) {
		corr := c.scoreCandidate(ref, trip, tripDate, candidate)
		if corr.OverallConfidence >= c.params.MinConfidence {
			matches = append(matches, corr)
		}
	}

	flagAmbiguity(matches)
	return matches
}

// enumerateCandidates returns delivery records within the tolerance window,
// nearest date first
func (c *Correlator) enumerateCandidates(ref *reference, tripDate time.Time) []models.DeliveryRecord {
	var candidates []models.DeliveryRecord

	for offset := 0; offset <= c.params.DateToleranceDays; offset++ {
		dates := []time.Time{tripDate.AddDate(0, 0, -offset)}
		if offset > 0 {
			dates = append(dates, tripDate.AddDate(0, 0, offset))
		}
		for _, d := range dates {
			candidates = append(candidates, ref.deliveriesByDate[d.Format("2006-01-02")]...)
		}
	}

	return candidates
}

// scoreCandidate computes the per-signal scores for one (trip, delivery)
// pair and fuses them
func (c *Correlator) scoreCandidate(ref *reference, trip *models.Trip, tripDate time.Time, delivery models.DeliveryRecord) models.Correlation {
	corr := models.Correlation{
		TripID: trip.ID,
	}
	deliveryID := delivery.ID
	corr.DeliveryID = &deliveryID

	deliveryDate, _ := time.Parse("2006-01-02", delivery.DeliveryDate)
	corr.DateDifferenceDays = absDays(tripDate, deliveryDate)

	text, method, comparison := c.textConfidence(ref, trip, &delivery)
	geo, endpoint, distKm, within, hasGeo := c.geoConfidence(ref, trip, &delivery)
	temporal := TemporalConfidence(corr.DateDifferenceDays)

	if !c.params.TextEnabled {
		text, method, comparison = 0, "", ""
	}
	if !c.params.GeoEnabled {
		geo, endpoint, distKm, within, hasGeo = 0, "", 0, false, false
	}
	if !c.params.TemporalEnabled {
		temporal = 0
	}

	corr.TextConfidence = text
	corr.TextMethod = method
	corr.TextComparison = comparison
	corr.GeoConfidence = geo
	corr.MatchedEndpoint = endpoint
	corr.TerminalDistanceKm = distKm
	corr.WithinServiceArea = within
	corr.TemporalConfidence = temporal

	overall, _ := Fuse(text, geo, temporal, c.params.Weights)
	corr.OverallConfidence = overall
	corr.Quality = QualityLabel(text, geo, temporal)

	flags := riskFlags(text, geo, corr.DateDifferenceDays, distKm, hasGeo)
	corr.SetRiskFlags(flags)
	corr.RequiresManualReview = requiresReview(overall, corr.DateDifferenceDays, distKm, hasGeo, len(flags))

	return corr
}

// textConfidence takes the best fuzzy score across the four trip-text vs
// delivery-text comparisons and applies the alias-table boost
func (c *Correlator) textConfidence(ref *reference, trip *models.Trip, delivery *models.DeliveryRecord) (int, string, string) {
	type comparison struct {
		label    string
		tripText string
		other    string
		hint     matching.MatchType
		aliases  map[string]string
		boost    int
	}

	comparisons := []comparison{
		{"start_vs_customer", trip.StartLocation, delivery.CustomerName, matching.MatchBusiness, ref.businessAliases, c.params.Weights.BusinessAliasBoost},
		{"end_vs_customer", trip.EndLocation, delivery.CustomerName, matching.MatchBusiness, ref.businessAliases, c.params.Weights.BusinessAliasBoost},
		{"start_vs_terminal", trip.StartLocation, delivery.TerminalName, matching.MatchTerminal, ref.terminalAliases, c.params.Weights.TerminalAliasBoost},
		{"end_vs_terminal", trip.EndLocation, delivery.TerminalName, matching.MatchTerminal, ref.terminalAliases, c.params.Weights.TerminalAliasBoost},
	}

	best := 0
	bestMethod := ""
	bestLabel := ""

	for _, cmp := range comparisons {
		result := ref.fuzzy.MatchNames(cmp.tripText, cmp.other, cmp.hint)
		confidence := result.Confidence

		// Lookup-table boost: the alias table resolving both sides to the
		// same canonical entity is stronger evidence than similarity alone
		if aliasesAgree(ref.normalizer, cmp.aliases, cmp.tripText, cmp.other) {
			confidence += cmp.boost
			if confidence > 100 {
				confidence = 100
			}
		}

		if confidence > best {
			best = confidence
			bestMethod = result.Method
			bestLabel = cmp.label
		}
	}

	return best, bestMethod, bestLabel
}

// aliasesAgree reports whether the alias table maps both raw strings to the
// same canonical entity
func aliasesAgree(n *normalize.Normalizer, aliases map[string]string, a, b string) bool {
	if len(aliases) == 0 || a == "" || b == "" {
		return false
	}
	canonA, okA := aliases[n.Normalize(a)]
	canonB, okB := aliases[n.Normalize(b)]
	return okA && okB && canonA == canonB
}

// geoConfidence scores both trip endpoints against the delivery's terminal
// and keeps the higher one
func (c *Correlator) geoConfidence(ref *reference, trip *models.Trip, delivery *models.DeliveryRecord) (int, string, float64, bool, bool) {
	terminal := c.resolveTerminal(ref, delivery.TerminalName)
	if terminal == nil {
		return 0, "", 0, false, false
	}

	best := 0
	endpoint := ""
	bestDist := 0.0
	bestWithin := false
	found := false

	score := func(lat, lon float64, which string) {
		distKm, confidence, within := ref.geo.ScoreTerminal(lat, lon, terminal)
		if distKm > c.params.MaxSearchRadiusKm {
			return
		}
		if !found || confidence > best || (confidence == best && distKm < bestDist) {
			best = confidence
			endpoint = which
			bestDist = distKm
			bestWithin = within
			found = true
		}
	}

	if trip.HasStartCoords() {
		score(*trip.StartLat, *trip.StartLon, models.EndpointStart)
	}
	if trip.HasEndCoords() {
		score(*trip.EndLat, *trip.EndLon, models.EndpointEnd)
	}

	if !found {
		return 0, "", 0, false, false
	}
	return best, endpoint, bestDist, bestWithin, true
}

// resolveTerminal maps a free-text terminal name to a registry terminal:
// exact normalized match, then alias table, then best fuzzy match
func (c *Correlator) resolveTerminal(ref *reference, name string) *models.Terminal {
	if name == "" {
		return nil
	}

	norm := ref.normalizer.Normalize(name)
	if i, ok := ref.terminalByNorm[norm]; ok {
		return &ref.terminals[i]
	}

	if canonical, ok := ref.terminalAliases[norm]; ok {
		if i, ok := ref.terminalByNorm[ref.normalizer.Normalize(canonical)]; ok {
			return &ref.terminals[i]
		}
	}

	bestConfidence := 0
	bestIndex := -1
	for i := range ref.terminals {
		result := ref.fuzzy.MatchNames(name, ref.terminals[i].Name, matching.MatchTerminal)
		if result.Confidence > bestConfidence {
			bestConfidence = result.Confidence
			bestIndex = i
		}
	}
	if bestIndex >= 0 && bestConfidence >= 60 {
		return &ref.terminals[bestIndex]
	}

	return nil
}

// riskFlags collects the risk conditions for one correlation
func riskFlags(text, geo, dateDiff int, distKm float64, hasGeo bool) []string {
	var flags []string

	if dateDiff > 3 {
		flags = append(flags, models.RiskLargeDateGap)
	}
	if hasGeo && distKm > 100 {
		flags = append(flags, models.RiskLongTerminalDistance)
	}
	if text < 60 && geo < 60 {
		flags = append(flags, models.RiskWeakSignals)
	}
	if !hasGeo {
		flags = append(flags, models.RiskNoLocationSignal)
	}

	return flags
}

// requiresReview decides whether an operator must look at the correlation
func requiresReview(overall, dateDiff int, distKm float64, hasGeo bool, flagCount int) bool {
	return overall < 70 ||
		dateDiff > 3 ||
		(hasGeo && distKm > 100) ||
		flagCount > 1
}

// flagAmbiguity marks materially equal top candidates for review instead of
// forcing a winner
func flagAmbiguity(matches []models.Correlation) {
	if len(matches) < 2 {
		return
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].OverallConfidence != matches[j].OverallConfidence {
			return matches[i].OverallConfidence > matches[j].OverallConfidence
		}
		if matches[i].DateDifferenceDays != matches[j].DateDifferenceDays {
			return matches[i].DateDifferenceDays < matches[j].DateDifferenceDays
		}
		return derefID(matches[i].DeliveryID) < derefID(matches[j].DeliveryID)
	})

	if matches[0].OverallConfidence-matches[1].OverallConfidence >= ambiguityMargin {
		return
	}

	for i := range matches[:2] {
		flags := append(matches[i].RiskFlags(), models.RiskAmbiguousMatch)
		matches[i].SetRiskFlags(flags)
		matches[i].RequiresManualReview = true
	}
}

// replaceCorrelations swaps out prior correlations for the covered trips in
// one transaction so re-runs never leave duplicates
func (c *Correlator) replaceCorrelations(runID int64, correlations []models.Correlation) error {
	return database.TransactionOn(c.DB, func(tx *sql.Tx) error {
		from, to, bounded := c.dateRangeBounds()
		var err error
		if bounded {
			_, err = tx.Exec(
				"DELETE FROM correlations WHERE trip_id IN (SELECT id FROM trips WHERE start_time >= ? AND start_time < ?)",
				from, to,
			)
		} else {
			_, err = tx.Exec("DELETE FROM correlations")
		}
		if err != nil {
			return fmt.Errorf("failed to clear prior correlations: %w", err)
		}

		insert := `
			INSERT INTO correlations (
				trip_id, delivery_id, run_id,
				overall_confidence, text_confidence, geo_confidence, temporal_confidence,
				text_method, text_comparison,
				matched_endpoint, terminal_distance_km, within_service_area,
				date_difference_days, quality, risk_flags_json, requires_manual_review
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		stmt, err := tx.Prepare(insert)
		if err != nil {
			return fmt.Errorf("failed to prepare correlation insert: %w", err)
		}
		defer stmt.Close()

		for _, corr := range correlations {
			if _, err := stmt.Exec(
				corr.TripID, corr.DeliveryID, runID,
				corr.OverallConfidence, corr.TextConfidence, corr.GeoConfidence, corr.TemporalConfidence,
				corr.TextMethod, corr.TextComparison,
				corr.MatchedEndpoint, corr.TerminalDistanceKm, corr.WithinServiceArea,
				corr.DateDifferenceDays, corr.Quality, corr.RiskFlagsJSON, corr.RequiresManualReview,
			); err != nil {
				return fmt.Errorf("failed to insert correlation: %w", err)
			}
		}
		return nil
	})
}

func countReview(correlations []models.Correlation) int {
	count := 0
	for _, corr := range correlations {
		if corr.RequiresManualReview {
			count++
		}
	}
	return count
}

func absDays(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
