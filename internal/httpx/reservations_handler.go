package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-rental-admin.git/internal/kafka"
	"github.com/ariefcatur/go-rental-admin.git/internal/pricing"
	"github.com/ariefcatur/go-rental-admin.git/internal/redisx"
	"github.com/ariefcatur/go-rental-admin.git/internal/reservations"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Store adalah subset *reservations.Repo yang dipakai handler.
// Interface di sisi consumer supaya test bisa pakai fake tanpa DB.
type Store interface {
	reservations.UnitsCounter
	ListAll(ctx context.Context) ([]reservations.Reservation, error)
	ListActive(ctx context.Context, now time.Time) ([]reservations.Reservation, error)
	CreateReservationTx(ctx context.Context, in reservations.CreateInput) (reservations.Reservation, bool, error)
}

type ReservationsHandler struct {
	Store     Store
	Lifecycle *reservations.Lifecycle
	Producer  reservations.Publisher // topic reservation.created
	Redis     *redis.Client          // nil di unit test: cache jadi no-op
	Service   string
	Capacity  int
	Validate  *validator.Validate
}

type CreateReservationReq struct {
	ExternalID      string    `json:"external_id" validate:"required"`
	Units           int       `json:"units" validate:"required,min=1,max=2"`
	Days            int       `json:"days" validate:"required,min=1,max=3"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	DeliveryAddress string    `json:"delivery_address" validate:"required"`
	RequesterName   string    `json:"requester_name"`
	RequesterHandle string    `json:"requester_handle"`
}

type CreateReservationResp struct {
	Reservation reservations.Reservation `json:"reservation"`
	Idempotent  bool                     `json:"idempotent"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *ReservationsHandler) Register(r *chi.Mux) {
	r.Get("/reservations", h.listReservations)
	r.Get("/reservations/active", h.listActive)
	r.Get("/reservations/stats", h.stats)
	r.Get("/reservations/availability", h.availability)
	r.Post("/reservations", h.createReservation)
	r.Put("/reservations/{id}/status", h.updateStatus)
	r.Delete("/reservations/{id}", h.deleteReservation)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *ReservationsHandler) listReservations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rs, err := h.Store.ListAll(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rs == nil {
		rs = []reservations.Reservation{}
	}
	writeJSON(w, http.StatusOK, rs)
}

func (h *ReservationsHandler) listActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rs, err := h.Store.ListActive(ctx, time.Now().UTC())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rs == nil {
		rs = []reservations.Reservation{}
	}
	writeJSON(w, http.StatusOK, rs)
}

// stats: counter dashboard, cache pendek di Redis. Mutasi manapun
// menghapus cache ini, jadi paling lama basi TTLStatsCache.
func (h *ReservationsHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyStatsCache).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	now := time.Now().UTC()
	all, err := h.Store.ListAll(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	active, err := h.Store.ListActive(ctx, now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	totals := reservations.ComputeTotals(all, active, now)
	if totals.Skipped > 0 {
		log.Printf("stats: %d reservation(s) skipped from revenue (bad created_at)", totals.Skipped)
	}

	if h.Redis != nil {
		b, _ := json.Marshal(totals)
		_ = h.Redis.Set(ctx, redisx.KeyStatsCache, b, redisx.TTLStatsCache).Err()
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *ReservationsHandler) availability(w http.ResponseWriter, r *http.Request) {
	units, err1 := strconv.Atoi(r.URL.Query().Get("units"))
	days, err2 := strconv.Atoi(r.URL.Query().Get("days"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "units and days are required"})
		return
	}
	// kombinasi di luar tarif = request tidak valid
	if _, err := pricing.Quote(units, days); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dates, err := reservations.AvailableDates(ctx, h.Store, units, days, h.Capacity, time.Now().UTC())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if dates == nil {
		dates = []time.Time{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

func (h *ReservationsHandler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	cents, err := pricing.Quote(req.Units, req.Days)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// cek kapasitas periode yang diminta (DB tetap jadi kebenaran,
	// race kecil antara cek dan insert diterima seperti aslinya)
	start := req.StartDate
	end := start.AddDate(0, 0, req.Days)
	booked, err := h.Store.UnitsBooked(ctx, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if booked+req.Units > h.Capacity {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no capacity for requested period"})
		return
	}

	res, existed, err := h.Store.CreateReservationTx(ctx, reservations.CreateInput{
		ExternalID:      req.ExternalID,
		Units:           req.Units,
		Days:            req.Days,
		StartDate:       start,
		PriceCents:      cents,
		DeliveryAddress: req.DeliveryAddress,
		RequesterName:   req.RequesterName,
		RequesterHandle: req.RequesterHandle,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.Redis != nil {
		idemKey := fmt.Sprintf(redisx.KeyIdemReservationCreate, req.ExternalID)
		_ = h.Redis.Set(ctx, idemKey, res.ID, redisx.TTLIdempotency).Err()
		statusKey := fmt.Sprintf(redisx.KeyReservationStatus, res.ID)
		_ = h.Redis.Set(ctx, statusKey, `{"status":"pending"}`, redisx.TTLStatusCache).Err()
		_ = h.Redis.Del(ctx, redisx.KeyStatsCache).Err()
	}

	if !existed && h.Producer != nil {
		ev := reservations.Envelope{
			EventID:       uuid.NewString(),
			EventType:     reservations.EventReservationCreated,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: res.ID,
			Payload: kafkax.MustMarshal(reservations.ReservationCreatedPayload{
				ReservationID:   res.ID,
				ExternalID:      res.ExternalID,
				Units:           res.Units,
				Days:            res.Days,
				StartDate:       res.StartDate,
				EndDate:         res.EndDate,
				PriceCents:      res.PriceCents,
				DeliveryAddress: res.DeliveryAddress,
				RequesterName:   res.RequesterName,
				RequesterHandle: res.RequesterHandle,
			}),
		}
		h.Producer.Publish(reservations.PartitionKey(res.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(reservations.EventReservationCreated)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusCreated, CreateReservationResp{Reservation: res, Idempotent: existed})
}

func (h *ReservationsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	target, err := reservations.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Lifecycle.RequestTransition(ctx, id, target)
	switch {
	case errors.Is(err, reservations.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reservation not found"})
		return
	case errors.Is(err, reservations.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.invalidate(ctx, id, string(updated.Status))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ReservationsHandler) deleteReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// idempotent: id yang sudah hilang tetap 200
	if err := h.Lifecycle.RequestDeletion(ctx, id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.invalidate(ctx, id, "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// invalidate buang cache yang menyentuh reservation ini; snapshot lama
// dianggap basi setelah mutasi, caller harus refetch.
func (h *ReservationsHandler) invalidate(ctx context.Context, id, status string) {
	if h.Redis == nil {
		return
	}
	statusKey := fmt.Sprintf(redisx.KeyReservationStatus, id)
	if status == "" {
		_ = h.Redis.Del(ctx, statusKey).Err()
	} else {
		b, _ := json.Marshal(map[string]string{"status": status})
		_ = h.Redis.Set(ctx, statusKey, b, redisx.TTLStatusCache).Err()
	}
	_ = h.Redis.Del(ctx, redisx.KeyStatsCache).Err()
}
