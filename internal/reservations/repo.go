package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var ErrNotFound = errors.New("reservation not found")

// created_at bisa NULL di data lama; COALESCE ke zero time supaya
// aggregator tinggal cek IsZero (record tetap masuk koleksi, cuma
// di-exclude dari revenue).
const selectCols = `id, external_id, status, units, days, start_date, end_date,
       price_cents, delivery_address, requester_name, requester_handle,
       COALESCE(created_at, '0001-01-01T00:00:00Z'::timestamptz)`

func scanReservation(row pgx.Row) (Reservation, error) {
	var r Reservation
	err := row.Scan(&r.ID, &r.ExternalID, &r.Status, &r.Units, &r.Days,
		&r.StartDate, &r.EndDate, &r.PriceCents, &r.DeliveryAddress,
		&r.RequesterName, &r.RequesterHandle, &r.CreatedAt)
	return r, err
}

type CreateInput struct {
	ExternalID      string
	Units           int
	Days            int
	StartDate       time.Time
	PriceCents      int
	DeliveryAddress string
	RequesterName   string
	RequesterHandle string
}

// CreateReservationTx: idempotent via external_id.
// - jika external_id sudah ada -> return existing reservation (existed=true).
func (r *Repo) CreateReservationTx(ctx context.Context, in CreateInput) (res Reservation, existed bool, err error) {
	// cek existing by external_id
	row := r.DB.QueryRow(ctx, `SELECT `+selectCols+` FROM reservations WHERE external_id=$1`, in.ExternalID)
	if res, err = scanReservation(row); err == nil {
		return res, true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, false, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Reservation{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res = Reservation{
		ID:              uuid.NewString(),
		ExternalID:      in.ExternalID,
		Status:          StatusPending,
		Units:           in.Units,
		Days:            in.Days,
		StartDate:       in.StartDate,
		EndDate:         in.StartDate.AddDate(0, 0, in.Days),
		PriceCents:      in.PriceCents,
		DeliveryAddress: in.DeliveryAddress,
		RequesterName:   in.RequesterName,
		RequesterHandle: in.RequesterHandle,
		CreatedAt:       time.Now().UTC(),
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO reservations(id, external_id, status, units, days, start_date, end_date,
		                         price_cents, delivery_address, requester_name, requester_handle, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, res.ID, res.ExternalID, res.Status, res.Units, res.Days, res.StartDate, res.EndDate,
		res.PriceCents, res.DeliveryAddress, res.RequesterName, res.RequesterHandle, res.CreatedAt)
	if err != nil {
		return Reservation{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Reservation{}, false, err
	}
	return res, false, nil
}

func (r *Repo) ListAll(ctx context.Context) ([]Reservation, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+selectCols+` FROM reservations ORDER BY created_at DESC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListActive: aturan "active" hidup di sini (dan cuma di sini) —
// pending/confirmed yang periodenya belum lewat.
func (r *Repo) ListActive(ctx context.Context, now time.Time) ([]Reservation, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+selectCols+` FROM reservations
		WHERE status IN ('pending','confirmed') AND end_date >= $1
		ORDER BY start_date`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *Repo) GetStatus(ctx context.Context, id string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM reservations WHERE id=$1`, id).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// UpdateStatus menulis status baru dan return record terbaru.
// Transition check bukan urusan repo — itu tugas Lifecycle.
func (r *Repo) UpdateStatus(ctx context.Context, id string, s Status) (Reservation, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE reservations SET status=$2 WHERE id=$1`, id, s)
	if err != nil {
		return Reservation{}, err
	}
	if ct.RowsAffected() == 0 {
		return Reservation{}, ErrNotFound
	}
	row := r.DB.QueryRow(ctx, `SELECT `+selectCols+` FROM reservations WHERE id=$1`, id)
	return scanReservation(row)
}

// Delete: unconditional. Return false kalau id memang sudah tidak ada.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM reservations WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// UnitsBooked: total unit pending/confirmed yang overlap dengan [from, to).
func (r *Repo) UnitsBooked(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(units), 0) FROM reservations
		WHERE status IN ('pending','confirmed')
		  AND start_date < $2 AND end_date > $1`, from, to).Scan(&n)
	return n, err
}
