package models

// DeliveryRecord represents one free-text billing/delivery row from the billing feed
type DeliveryRecord struct {
	ID int64 `json:"id" db:"id"`

	// Free text - billing systems never agreed on naming
	CustomerName string `json:"customer_name" db:"customer_name"`
	TerminalName string `json:"terminal_name" db:"terminal_name"`

	DeliveryDate string  `json:"delivery_date" db:"delivery_date"` // YYYY-MM-DD
	VolumeLitres float64 `json:"volume_litres" db:"volume_litres"`
	Carrier      string  `json:"carrier,omitempty" db:"carrier"`
}

// DeliveriesResponse represents a paginated response of delivery records
type DeliveriesResponse struct {
	Data       []DeliveryRecord `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}
