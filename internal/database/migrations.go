package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents one versioned schema change
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order at startup. Never edit an applied
// migration; append a new version instead.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "ingested_feeds",
		SQL: `
			CREATE TABLE IF NOT EXISTS trips (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				vehicle TEXT NOT NULL,
				driver TEXT NOT NULL DEFAULT '',
				start_time INTEGER NOT NULL,
				end_time INTEGER NOT NULL,
				start_location TEXT NOT NULL DEFAULT '',
				end_location TEXT NOT NULL DEFAULT '',
				start_lat REAL,
				start_lon REAL,
				end_lat REAL,
				end_lon REAL,
				distance_km REAL NOT NULL DEFAULT 0,
				travel_minutes REAL NOT NULL DEFAULT 0,
				idle_minutes REAL NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_trips_start_time ON trips(start_time);
			CREATE INDEX IF NOT EXISTS idx_trips_vehicle ON trips(vehicle);

			CREATE TABLE IF NOT EXISTS delivery_records (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				customer_name TEXT NOT NULL,
				terminal_name TEXT NOT NULL DEFAULT '',
				delivery_date TEXT NOT NULL,
				volume_litres REAL NOT NULL DEFAULT 0,
				carrier TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_delivery_records_date ON delivery_records(delivery_date);
		`,
	},
	{
		Version: 2,
		Name:    "reference_registries",
		SQL: `
			CREATE TABLE IF NOT EXISTS terminals (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				service_radius_km REAL NOT NULL DEFAULT 0,
				service_area_json TEXT NOT NULL DEFAULT '',
				primary_carrier TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS customers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL
			);

			CREATE TABLE IF NOT EXISTS business_aliases (
				alias TEXT PRIMARY KEY,
				canonical TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS terminal_aliases (
				alias TEXT PRIMARY KEY,
				canonical TEXT NOT NULL
			);
		`,
	},
	{
		Version: 3,
		Name:    "discovered_pois",
		SQL: `
			CREATE TABLE IF NOT EXISTS discovered_pois (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				start_trip_count INTEGER NOT NULL DEFAULT 0,
				end_trip_count INTEGER NOT NULL DEFAULT 0,
				trip_count INTEGER NOT NULL DEFAULT 0,
				avg_idle_minutes REAL NOT NULL DEFAULT 0,
				total_idle_minutes REAL NOT NULL DEFAULT 0,
				accuracy_meters REAL NOT NULL DEFAULT 0,
				confidence INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'discovered',
				poi_type TEXT NOT NULL DEFAULT 'unknown',
				matched_terminal_id INTEGER,
				matched_customer_id INTEGER,
				merged_into_id INTEGER,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_pois_status ON discovered_pois(status);
		`,
	},
	{
		Version: 4,
		Name:    "correlations_and_routes",
		SQL: `
			CREATE TABLE IF NOT EXISTS analysis_runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				kind TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				params_json TEXT NOT NULL DEFAULT '',
				progress_percent REAL NOT NULL DEFAULT 0,
				total_records INTEGER NOT NULL DEFAULT 0,
				processed_records INTEGER NOT NULL DEFAULT 0,
				failed_records INTEGER NOT NULL DEFAULT 0,
				summary_json TEXT NOT NULL DEFAULT '',
				error_message TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				completed_at TIMESTAMP
			);

			CREATE TABLE IF NOT EXISTS correlations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				trip_id INTEGER NOT NULL REFERENCES trips(id),
				delivery_id INTEGER REFERENCES delivery_records(id),
				run_id INTEGER NOT NULL DEFAULT 0,
				overall_confidence INTEGER NOT NULL DEFAULT 0,
				text_confidence INTEGER NOT NULL DEFAULT 0,
				geo_confidence INTEGER NOT NULL DEFAULT 0,
				temporal_confidence INTEGER NOT NULL DEFAULT 0,
				text_method TEXT NOT NULL DEFAULT '',
				text_comparison TEXT NOT NULL DEFAULT '',
				matched_endpoint TEXT NOT NULL DEFAULT '',
				terminal_distance_km REAL NOT NULL DEFAULT 0,
				within_service_area INTEGER NOT NULL DEFAULT 0,
				date_difference_days INTEGER NOT NULL DEFAULT 0,
				quality TEXT NOT NULL DEFAULT 'poor',
				risk_flags_json TEXT NOT NULL DEFAULT '[]',
				requires_manual_review INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_correlations_trip ON correlations(trip_id);
			CREATE INDEX IF NOT EXISTS idx_correlations_confidence ON correlations(overall_confidence);

			CREATE TABLE IF NOT EXISTS route_patterns (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_poi_id INTEGER NOT NULL REFERENCES discovered_pois(id),
				end_poi_id INTEGER NOT NULL REFERENCES discovered_pois(id),
				route_type TEXT NOT NULL DEFAULT 'unknown',
				quality_tier TEXT NOT NULL DEFAULT 'bronze',
				trip_count INTEGER NOT NULL DEFAULT 0,
				avg_distance_km REAL NOT NULL DEFAULT 0,
				min_distance_km REAL NOT NULL DEFAULT 0,
				max_distance_km REAL NOT NULL DEFAULT 0,
				avg_travel_minutes REAL NOT NULL DEFAULT 0,
				min_travel_minutes REAL NOT NULL DEFAULT 0,
				max_travel_minutes REAL NOT NULL DEFAULT 0,
				travel_minutes_stddev REAL NOT NULL DEFAULT 0,
				straight_line_km REAL NOT NULL DEFAULT 0,
				deviation_ratio_pct REAL NOT NULL DEFAULT 0,
				efficiency_rating INTEGER NOT NULL DEFAULT 0,
				primary_vehicle TEXT NOT NULL DEFAULT '',
				primary_driver TEXT NOT NULL DEFAULT '',
				has_return_leg INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_routes_pair ON route_patterns(start_poi_id, end_poi_id);
		`,
	},
}

// Migrate applies all pending migrations in version order
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		log.Printf("Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}
