package notifier

import (
	"context"
	"fmt"

	kafkax "github.com/ariefcatur/go-rental-admin.git/internal/kafka"
	"github.com/ariefcatur/go-rental-admin.git/internal/redisx"
	"github.com/ariefcatur/go-rental-admin.git/internal/reservations"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Sender mengirim satu pesan notifikasi ke admin.
type Sender interface {
	Send(ctx context.Context, text string) error
}

type Service struct {
	Redis       *redis.Client
	Sender      Sender
	ServiceName string
}

// HandleReservationCreated: dipasang sebagai handler consumer.
// Return error = offset tidak di-commit, pesan di-retry.
func (s *Service) HandleReservationCreated(ctx context.Context, m kafkago.Message) error {
	var env reservations.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != reservations.EventReservationCreated {
		return nil
	} // ignore

	// dedup via Redis (SETNX atomik, pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if s.Redis != nil {
		first, err := redisx.Claim(ctx, s.Redis, dkey, redisx.TTLDedup)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[reservations.ReservationCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Sender.Send(ctx, FormatCreated(p)); err != nil {
		// lepas claim supaya retry berikutnya boleh kirim lagi
		if s.Redis != nil {
			_ = s.Redis.Del(ctx, dkey).Err()
		}
		return err
	}
	return nil
}

// FormatCreated menyusun ringkasan booking baru buat admin.
func FormatCreated(p reservations.ReservationCreatedPayload) string {
	name := p.RequesterName
	if name == "" {
		name = "unknown"
	}
	handle := p.RequesterHandle
	if handle == "" {
		handle = "-"
	}
	return fmt.Sprintf(
		"New reservation!\n\n"+
			"Customer: %s (@%s)\n"+
			"Units: %d\n"+
			"Period: %s - %s (%d day(s))\n"+
			"Price: %.2f\n"+
			"Delivery address: %s\n"+
			"Reservation ID: %s\n\n"+
			"Status: pending confirmation",
		name, handle,
		p.Units,
		p.StartDate.Format("02.01.2006"), p.EndDate.Format("02.01.2006"), p.Days,
		float64(p.PriceCents)/100,
		p.DeliveryAddress,
		p.ReservationID,
	)
}
