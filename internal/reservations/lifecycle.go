package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Store adalah kontrak minimum ke persistence yang dibutuhkan Lifecycle.
// *Repo memenuhinya; test pakai fake in-memory.
type Store interface {
	GetStatus(ctx context.Context, id string) (Status, error)
	UpdateStatus(ctx context.Context, id string, s Status) (Reservation, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Producer di internal/kafka terikat 1 topic, makanya ada dua field.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Lifecycle memediasi SEMUA perubahan status. Tidak ada state internal
// antar call; setelah mutasi sukses caller wajib refetch koleksi, bukan
// patch cache lokal.
type Lifecycle struct {
	Store           Store
	ProducerStatus  Publisher // topic reservation.status.changed
	ProducerDeleted Publisher // topic reservation.deleted
	Service         string
}

// RequestTransition: cek transition table dulu, baru forward ke store.
// Gagal = tidak ada mutasi sama sekali.
func (l *Lifecycle) RequestTransition(ctx context.Context, id string, target Status) (Reservation, error) {
	current, err := l.Store.GetStatus(ctx, id)
	if err != nil {
		return Reservation{}, fmt.Errorf("lookup %s: %w", id, err)
	}
	if !CanTransition(current, target) {
		return Reservation{}, fmt.Errorf("%s -> %s: %w", current, target, ErrInvalidTransition)
	}

	updated, err := l.Store.UpdateStatus(ctx, id, target)
	if err != nil {
		return Reservation{}, err
	}

	l.publish(l.ProducerStatus, EventStatusChanged, id, StatusChangedPayload{
		ReservationID: id, From: current, To: target,
	})
	return updated, nil
}

// RequestDeletion: unconditional, tanpa transition check. Id yang sudah
// hilang = no-op sukses (idempotent).
func (l *Lifecycle) RequestDeletion(ctx context.Context, id string) error {
	removed, err := l.Store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if removed {
		l.publish(l.ProducerDeleted, EventReservationDeleted, id, ReservationDeletedPayload{ReservationID: id})
	}
	return nil
}

func (l *Lifecycle) publish(p Publisher, eventType, reservationID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      l.Service,
		CorrelationID: reservationID,
		Payload:       mustJSON(payload),
	}
	p.Publish(PartitionKey(reservationID), mustJSON(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
