package pricing

import "fmt"

// Tarif flat per kombinasi unit x durasi, dalam cents.
// Sumber kebenaran harga ada di sini, jangan trust dari client.
var rates = map[int]map[int]int{
	1: {1: 7000, 2: 13000, 3: 18000},
	2: {1: 14000, 2: 26000, 3: 36000},
}

// Quote return harga untuk `units` unit selama `days` hari.
// Kombinasi di luar tabel = error, bukan harga 0.
func Quote(units, days int) (int, error) {
	byDays, ok := rates[units]
	if !ok {
		return 0, fmt.Errorf("no rate for %d units", units)
	}
	cents, ok := byDays[days]
	if !ok {
		return 0, fmt.Errorf("no rate for %d units x %d days", units, days)
	}
	return cents, nil
}
