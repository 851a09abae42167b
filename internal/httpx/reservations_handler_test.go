package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-rental-admin.git/internal/reservations"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

// fakeRepo memenuhi Store + reservations.Store sekaligus, cukup buat
// handler test tanpa Postgres/Redis/Kafka.
type fakeRepo struct {
	items  map[string]reservations.Reservation
	booked int
}

func newFakeRepo(items ...reservations.Reservation) *fakeRepo {
	m := map[string]reservations.Reservation{}
	for _, r := range items {
		m[r.ID] = r
	}
	return &fakeRepo{items: m}
}

func (f *fakeRepo) ListAll(_ context.Context) ([]reservations.Reservation, error) {
	var out []reservations.Reservation
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) ListActive(_ context.Context, now time.Time) ([]reservations.Reservation, error) {
	var out []reservations.Reservation
	for _, r := range f.items {
		if (r.Status == reservations.StatusPending || r.Status == reservations.StatusConfirmed) && !r.EndDate.Before(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateReservationTx(_ context.Context, in reservations.CreateInput) (reservations.Reservation, bool, error) {
	for _, r := range f.items {
		if r.ExternalID == in.ExternalID {
			return r, true, nil
		}
	}
	res := reservations.Reservation{
		ID:              fmt.Sprintf("res-%d", len(f.items)+1),
		ExternalID:      in.ExternalID,
		Status:          reservations.StatusPending,
		Units:           in.Units,
		Days:            in.Days,
		StartDate:       in.StartDate,
		EndDate:         in.StartDate.AddDate(0, 0, in.Days),
		PriceCents:      in.PriceCents,
		DeliveryAddress: in.DeliveryAddress,
		CreatedAt:       time.Now().UTC(),
	}
	f.items[res.ID] = res
	return res, false, nil
}

func (f *fakeRepo) UnitsBooked(_ context.Context, from, to time.Time) (int, error) {
	return f.booked, nil
}

func (f *fakeRepo) GetStatus(_ context.Context, id string) (reservations.Status, error) {
	r, ok := f.items[id]
	if !ok {
		return "", reservations.ErrNotFound
	}
	return r.Status, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, s reservations.Status) (reservations.Reservation, error) {
	r, ok := f.items[id]
	if !ok {
		return reservations.Reservation{}, reservations.ErrNotFound
	}
	r.Status = s
	f.items[id] = r
	return r, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func newTestHandler(repo *fakeRepo) (*ReservationsHandler, http.Handler) {
	h := &ReservationsHandler{
		Store:     repo,
		Lifecycle: &reservations.Lifecycle{Store: repo, Service: "test"},
		Service:   "test",
		Capacity:  2,
		Validate:  validator.New(),
	}
	r := NewRouter()
	h.Register(r)
	return h, r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListReservationsEmpty(t *testing.T) {
	_, r := newTestHandler(newFakeRepo())
	w := doJSON(t, r, http.MethodGet, "/reservations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestStats(t *testing.T) {
	now := time.Now().UTC()
	// awal bulan berjalan supaya selalu masuk window revenue
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(
		reservations.Reservation{ID: "a", Status: reservations.StatusConfirmed, PriceCents: 1000,
			CreatedAt: monthStart, EndDate: now.AddDate(0, 0, 2)},
		reservations.Reservation{ID: "b", Status: reservations.StatusCancelled, PriceCents: 500,
			CreatedAt: monthStart},
	)
	_, r := newTestHandler(repo)

	w := doJSON(t, r, http.MethodGet, "/reservations/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got reservations.Totals
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Active)
	assert.Equal(t, 1000, got.MonthlyRevenueCents)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	repo := newFakeRepo(reservations.Reservation{ID: "r1", Status: reservations.StatusConfirmed})
	_, r := newTestHandler(repo)

	w := doJSON(t, r, http.MethodPut, "/reservations/r1/status", map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusOK, w.Code)

	var got reservations.Reservation
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, reservations.StatusCancelled, got.Status)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	repo := newFakeRepo(reservations.Reservation{ID: "r1", Status: reservations.StatusPending})
	_, r := newTestHandler(repo)

	// pending -> completed bukan jalur legal
	w := doJSON(t, r, http.MethodPut, "/reservations/r1/status", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	// store tidak berubah
	assert.Equal(t, reservations.StatusPending, repo.items["r1"].Status)
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	repo := newFakeRepo(reservations.Reservation{ID: "r1", Status: reservations.StatusPending})
	_, r := newTestHandler(repo)

	w := doJSON(t, r, http.MethodPut, "/reservations/r1/status", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusNotFound(t *testing.T) {
	_, r := newTestHandler(newFakeRepo())
	w := doJSON(t, r, http.MethodPut, "/reservations/ghost/status", map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteIdempotent(t *testing.T) {
	repo := newFakeRepo(reservations.Reservation{ID: "r1", Status: reservations.StatusPending})
	_, r := newTestHandler(repo)

	w := doJSON(t, r, http.MethodDelete, "/reservations/r1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, repo.items, "r1")

	// kedua kali tetap 200
	w = doJSON(t, r, http.MethodDelete, "/reservations/r1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateReservation(t *testing.T) {
	repo := newFakeRepo()
	_, r := newTestHandler(repo)

	req := CreateReservationReq{
		ExternalID:      "tg-123",
		Units:           1,
		Days:            2,
		StartDate:       time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		DeliveryAddress: "Jl. Sudirman 1",
		RequesterName:   "Budi",
	}
	w := doJSON(t, r, http.MethodPost, "/reservations", req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp CreateReservationResp
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Idempotent)
	assert.Equal(t, reservations.StatusPending, resp.Reservation.Status)
	assert.Equal(t, 13000, resp.Reservation.PriceCents) // 1 unit x 2 hari
	assert.Equal(t, req.StartDate.AddDate(0, 0, 2), resp.Reservation.EndDate)

	// external_id sama = idempotent, tidak bikin record baru
	w = doJSON(t, r, http.MethodPost, "/reservations", req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Idempotent)
	assert.Len(t, repo.items, 1)
}

func TestCreateReservationValidation(t *testing.T) {
	_, r := newTestHandler(newFakeRepo())

	// units di luar range
	req := CreateReservationReq{
		ExternalID: "tg-1", Units: 5, Days: 1,
		StartDate:       time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		DeliveryAddress: "x",
	}
	w := doJSON(t, r, http.MethodPost, "/reservations", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationNoCapacity(t *testing.T) {
	repo := newFakeRepo()
	repo.booked = 2 // periode penuh
	_, r := newTestHandler(repo)

	req := CreateReservationReq{
		ExternalID: "tg-9", Units: 1, Days: 1,
		StartDate:       time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		DeliveryAddress: "x",
	}
	w := doJSON(t, r, http.MethodPost, "/reservations", req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAvailabilityBadParams(t *testing.T) {
	_, r := newTestHandler(newFakeRepo())

	w := doJSON(t, r, http.MethodGet, "/reservations/availability", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// kombinasi di luar tabel tarif
	w = doJSON(t, r, http.MethodGet, "/reservations/availability?units=3&days=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailability(t *testing.T) {
	_, r := newTestHandler(newFakeRepo())

	w := doJSON(t, r, http.MethodGet, "/reservations/availability?units=1&days=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Dates []time.Time `json:"dates"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Dates, 7)
}
