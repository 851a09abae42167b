package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	booked map[string]int // key = start date YYYY-MM-DD
}

func (f *fakeCounter) UnitsBooked(_ context.Context, from, to time.Time) (int, error) {
	return f.booked[from.Format("2006-01-02")], nil
}

func TestAvailableDatesCapsAtSeven(t *testing.T) {
	now := time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)
	dates, err := AvailableDates(context.Background(), &fakeCounter{}, 1, 2, 2, now)
	assert.NoError(t, err)
	assert.Len(t, dates, 7)
	// mulai besok, midnight UTC
	assert.Equal(t, time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC), dates[0])
}

func TestAvailableDatesSkipsFullDays(t *testing.T) {
	now := time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)
	counter := &fakeCounter{booked: map[string]int{
		"2025-06-11": 2, // penuh
		"2025-06-12": 1, // sisa 1 unit
	}}

	// minta 2 unit: 11 & 12 kelewat dua-duanya
	dates, err := AvailableDates(context.Background(), counter, 2, 1, 2, now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC), dates[0])

	// minta 1 unit: 12 masih muat
	dates, err = AvailableDates(context.Background(), counter, 1, 1, 2, now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC), dates[0])
}

func TestAvailableDatesNoCapacity(t *testing.T) {
	now := time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)
	full := map[string]int{}
	for i := 1; i <= 30; i++ {
		full[now.AddDate(0, 0, i).Format("2006-01-02")] = 2
	}
	dates, err := AvailableDates(context.Background(), &fakeCounter{booked: full}, 1, 1, 2, now)
	assert.NoError(t, err)
	assert.Empty(t, dates)
}
