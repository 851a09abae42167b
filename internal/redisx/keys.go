package redisx

import "time"

const (
	// Idempotency create reservation: idem:reservation:create:{external_id} -> reservation_id
	KeyIdemReservationCreate = "idem:reservation:create:%s"

	// Cache status reservation: reservation_status:{reservation_id} -> {"status": "..."}
	KeyReservationStatus = "reservation_status:%s"

	// Cache counter dashboard: hasil ComputeTotals ter-serialize.
	// Di-invalidate oleh setiap mutasi (transition/delete/create).
	KeyStatsCache = "reservation_stats"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLStatsCache  = 30 * time.Second
	TTLDedup       = 48 * time.Hour
)
