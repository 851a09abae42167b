package reservations

import "time"

// ComputeTotals menghitung counter dashboard dari snapshot koleksi.
// Pure function: tidak pernah gagal, record rusak di-skip saja.
//
// Aturan "active" dimiliki store (lihat Repo.ListActive) — di sini cukup
// dihitung, jangan di-recompute supaya dua definisi tidak diverge.
func ComputeTotals(all, active []Reservation, now time.Time) Totals {
	t := Totals{Total: len(all), Active: len(active)}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for _, r := range all {
		if r.CreatedAt.IsZero() {
			// created_at rusak/absent: exclude dari revenue, jangan abort
			t.Skipped++
			continue
		}
		if r.Status == StatusCancelled {
			continue
		}
		if r.CreatedAt.Before(monthStart) || r.CreatedAt.After(now) {
			continue
		}
		t.MonthlyRevenueCents += r.PriceCents
	}
	return t
}
