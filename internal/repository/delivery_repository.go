package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/DGfinder/fleet-correlation-go/internal/database"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// DeliveryRepository handles database operations for delivery records
type DeliveryRepository struct {
	db *sql.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// GetDeliveries retrieves delivery records with filtering and pagination
func (r *DeliveryRepository) GetDeliveries(filter models.DeliveryFilter) ([]models.DeliveryRecord, int64, error) {
	query := `SELECT id, customer_name, terminal_name, delivery_date, volume_litres, carrier
		FROM delivery_records`

	var conditions []string
	var args []interface{}

	if filter.StartDate != "" {
		conditions = append(conditions, "delivery_date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, "delivery_date <= ?")
		args = append(args, filter.EndDate)
	}
	if filter.Carrier != "" {
		conditions = append(conditions, "carrier = ?")
		args = append(args, filter.Carrier)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM delivery_records"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count delivery records: %w", err)
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize
	query += " ORDER BY delivery_date DESC, id LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query delivery records: %w", err)
	}
	defer rows.Close()

	var records []models.DeliveryRecord
	for rows.Next() {
		var d models.DeliveryRecord
		if err := rows.Scan(&d.ID, &d.CustomerName, &d.TerminalName,
			&d.DeliveryDate, &d.VolumeLitres, &d.Carrier); err != nil {
			return nil, 0, fmt.Errorf("failed to scan delivery record: %w", err)
		}
		records = append(records, d)
	}

	return records, total, rows.Err()
}

// CreateDeliveries bulk-inserts a batch of delivery records inside one transaction
func (r *DeliveryRepository) CreateDeliveries(records []models.DeliveryRecord) (int64, error) {
	var inserted int64
	err := database.TransactionOn(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO delivery_records (customer_name, terminal_name, delivery_date, volume_litres, carrier)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare delivery insert: %w", err)
		}
		defer stmt.Close()

		for _, d := range records {
			if _, err := stmt.Exec(d.CustomerName, d.TerminalName, d.DeliveryDate,
				d.VolumeLitres, d.Carrier); err != nil {
				return fmt.Errorf("failed to insert delivery record: %w", err)
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
