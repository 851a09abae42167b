package reservations

import "time"

type Reservation struct {
	ID              string    `json:"id"`
	ExternalID      string    `json:"external_id,omitempty"`
	Status          Status    `json:"status"` // lihat status.go
	Units           int       `json:"units"`
	Days            int       `json:"days"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	PriceCents      int       `json:"price_cents"`
	DeliveryAddress string    `json:"delivery_address"`
	RequesterName   string    `json:"requester_name,omitempty"`
	RequesterHandle string    `json:"requester_handle,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Totals adalah counter dashboard hasil ComputeTotals.
// Skipped = record yang created_at-nya rusak dan di-exclude dari revenue.
type Totals struct {
	Total               int `json:"total"`
	Active              int `json:"active"`
	MonthlyRevenueCents int `json:"monthly_revenue_cents"`
	Skipped             int `json:"skipped,omitempty"`
}
