package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DGfinder/fleet-correlation-go/internal/database"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestGetCorrelationsDateRangeFilter(t *testing.T) {
	db := newTestDB(t)

	trips := NewTripRepository(db)
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	inserted, err := trips.CreateTrips([]models.Trip{{
		Vehicle:   "KA1",
		StartTime: start.Unix(),
		EndTime:   start.Add(4 * time.Hour).Unix(),
	}})
	if err != nil {
		t.Fatalf("failed to insert trip: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("inserted = %d, want 1", inserted)
	}

	if _, err := db.Exec(
		"INSERT INTO correlations (trip_id, run_id, overall_confidence, quality) VALUES (1, 1, 90, 'excellent')",
	); err != nil {
		t.Fatalf("failed to insert correlation: %v", err)
	}

	repo := NewCorrelationRepository(db)

	// Trip date falls inside the requested range
	rows, total, err := repo.GetCorrelations(models.CorrelationFilter{
		StartDate: "2025-03-01",
		EndDate:   "2025-03-31",
	})
	if err != nil {
		t.Fatalf("GetCorrelations: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Errorf("in-range filter returned total=%d rows=%d, want 1 row", total, len(rows))
	}

	// A range that excludes the trip date returns nothing
	rows, total, err = repo.GetCorrelations(models.CorrelationFilter{
		StartDate: "2025-04-01",
		EndDate:   "2025-04-30",
	})
	if err != nil {
		t.Fatalf("GetCorrelations: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Errorf("out-of-range filter returned total=%d rows=%d, want 0 rows", total, len(rows))
	}

	// Unfiltered query still sees the row
	rows, total, err = repo.GetCorrelations(models.CorrelationFilter{})
	if err != nil {
		t.Fatalf("GetCorrelations: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Errorf("unfiltered query returned total=%d rows=%d, want 1 row", total, len(rows))
	}
}

func TestReplaceTerminalsIsWholesale(t *testing.T) {
	db := newTestDB(t)
	repo := NewRegistryRepository(db)

	inserted, err := repo.ReplaceTerminals([]models.Terminal{
		{Name: "KEWDALE TERMINAL", Latitude: -31.98, Longitude: 115.96, ServiceRadiusKm: 10},
		{Name: "BUNBURY TERMINAL", Latitude: -33.32, Longitude: 115.64, ServiceRadiusKm: 15},
	})
	if err != nil {
		t.Fatalf("ReplaceTerminals: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("inserted = %d, want 2", inserted)
	}

	// A second load replaces, never appends
	if _, err := repo.ReplaceTerminals([]models.Terminal{
		{Name: "GERALDTON TERMINAL", Latitude: -28.77, Longitude: 114.61, ServiceRadiusKm: 12},
	}); err != nil {
		t.Fatalf("ReplaceTerminals: %v", err)
	}

	terminals, err := repo.ListTerminals()
	if err != nil {
		t.Fatalf("ListTerminals: %v", err)
	}
	if len(terminals) != 1 || terminals[0].Name != "GERALDTON TERMINAL" {
		t.Errorf("terminals after reload = %+v, want only GERALDTON TERMINAL", terminals)
	}
}
