package reservations

import (
	"encoding/json"
	"time"
)

const (
	EventReservationCreated = "ReservationCreated"
	EventStatusChanged      = "ReservationStatusChanged"
	EventReservationDeleted = "ReservationDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "rental-admin-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // reservation_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type ReservationCreatedPayload struct {
	ReservationID   string    `json:"reservation_id"`
	ExternalID      string    `json:"external_id"`
	Units           int       `json:"units"`
	Days            int       `json:"days"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	PriceCents      int       `json:"price_cents"`
	DeliveryAddress string    `json:"delivery_address"`
	RequesterName   string    `json:"requester_name,omitempty"`
	RequesterHandle string    `json:"requester_handle,omitempty"`
}

type StatusChangedPayload struct {
	ReservationID string `json:"reservation_id"`
	From          Status `json:"from"`
	To            Status `json:"to"`
}

type ReservationDeletedPayload struct {
	ReservationID string `json:"reservation_id"`
}
