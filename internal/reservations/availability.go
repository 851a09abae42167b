package reservations

import (
	"context"
	"time"
)

const (
	availabilityHorizonDays = 30
	availabilityMaxResults  = 7
)

type UnitsCounter interface {
	UnitsBooked(ctx context.Context, from, to time.Time) (int, error)
}

// AvailableDates scan 30 hari ke depan dan return max 7 tanggal mulai
// yang masih muat `units` unit selama `days` hari terhadap kapasitas
// inventory. Mulai besok, hari ini tidak bisa dibooking.
func AvailableDates(ctx context.Context, counter UnitsCounter, units, days, capacity int, now time.Time) ([]time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var out []time.Time
	for i := 1; i <= availabilityHorizonDays; i++ {
		start := today.AddDate(0, 0, i)
		end := start.AddDate(0, 0, days)

		booked, err := counter.UnitsBooked(ctx, start, end)
		if err != nil {
			return nil, err
		}
		if booked+units <= capacity {
			out = append(out, start)
		}
		if len(out) >= availabilityMaxResults {
			break
		}
	}
	return out, nil
}
