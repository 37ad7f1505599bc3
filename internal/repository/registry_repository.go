package repository

import (
	"database/sql"
	"fmt"

	"github.com/DGfinder/fleet-correlation-go/internal/database"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// RegistryRepository handles the curated reference data: terminals, customers,
// and the alias tables. Loads are wholesale replacements so re-running an
// import converges to the same state.
type RegistryRepository struct {
	db *sql.DB
}

// NewRegistryRepository creates a new registry repository
func NewRegistryRepository(db *sql.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// ListTerminals returns all terminals ordered by name
func (r *RegistryRepository) ListTerminals() ([]models.Terminal, error) {
	rows, err := r.db.Query(`
		SELECT id, name, latitude, longitude, service_radius_km, service_area_json, primary_carrier
		FROM terminals ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query terminals: %w", err)
	}
	defer rows.Close()

	var terminals []models.Terminal
	for rows.Next() {
		var t models.Terminal
		if err := rows.Scan(&t.ID, &t.Name, &t.Latitude, &t.Longitude,
			&t.ServiceRadiusKm, &t.ServiceAreaJSON, &t.PrimaryCarrier); err != nil {
			return nil, fmt.Errorf("failed to scan terminal: %w", err)
		}
		terminals = append(terminals, t)
	}

	return terminals, rows.Err()
}

// ListCustomers returns all customers ordered by name
func (r *RegistryRepository) ListCustomers() ([]models.Customer, error) {
	rows, err := r.db.Query("SELECT id, name, latitude, longitude FROM customers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	return customers, rows.Err()
}

// ReplaceTerminals swaps the terminal registry in one transaction
func (r *RegistryRepository) ReplaceTerminals(terminals []models.Terminal) (int64, error) {
	var inserted int64
	err := database.TransactionOn(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM terminals"); err != nil {
			return fmt.Errorf("failed to clear terminals: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO terminals (name, latitude, longitude, service_radius_km, service_area_json, primary_carrier)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare terminal insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range terminals {
			if _, err := stmt.Exec(t.Name, t.Latitude, t.Longitude,
				t.ServiceRadiusKm, t.ServiceAreaJSON, t.PrimaryCarrier); err != nil {
				return fmt.Errorf("failed to insert terminal: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ReplaceCustomers swaps the customer registry in one transaction
func (r *RegistryRepository) ReplaceCustomers(customers []models.Customer) (int64, error) {
	var inserted int64
	err := database.TransactionOn(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM customers"); err != nil {
			return fmt.Errorf("failed to clear customers: %w", err)
		}

		stmt, err := tx.Prepare("INSERT INTO customers (name, latitude, longitude) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare customer insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range customers {
			if _, err := stmt.Exec(c.Name, c.Latitude, c.Longitude); err != nil {
				return fmt.Errorf("failed to insert customer: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ReplaceAliases swaps an alias table (business_aliases or terminal_aliases)
// in one transaction. Alias and canonical values are stored as given; callers
// normalize before lookup, not before storage.
func (r *RegistryRepository) ReplaceAliases(table string, aliases map[string]string) (int64, error) {
	if table != "business_aliases" && table != "terminal_aliases" {
		return 0, fmt.Errorf("unknown alias table %q", table)
	}

	var inserted int64
	err := database.TransactionOn(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}

		stmt, err := tx.Prepare("INSERT INTO " + table + " (alias, canonical) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare alias insert: %w", err)
		}
		defer stmt.Close()

		for alias, canonical := range aliases {
			if _, err := stmt.Exec(alias, canonical); err != nil {
				return fmt.Errorf("failed to insert alias: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
