package reservations

const (
	TopicReservationCreated = "reservation.created"
	TopicStatusChanged      = "reservation.status.changed"
	TopicReservationDeleted = "reservation.deleted"
)

// Partition key = reservation_id, supaya semua event 1 reservation maintain urutan.
func PartitionKey(reservationID string) []byte { return []byte(reservationID) }
