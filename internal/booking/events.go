package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/queue"
)

// EventPublisher delivers reservation events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ReservationEvent) error { return nil }

// SeatLabel renders a claim as car-row-column, e.g. "3-12A".  Non-reserved
// claims render as "free".
func SeatLabel(s model.SeatReservation) string {
	if s.CarNumber == 0 {
		return "free"
	}
	return fmt.Sprintf("%d-%d%s", s.CarNumber, s.SeatRow, s.SeatColumn)
}

func newEvent(typ string, r model.Reservation, seats []model.SeatReservation, at time.Time) queue.ReservationEvent {
	labels := make([]string, 0, len(seats))
	for _, s := range seats {
		labels = append(labels, SeatLabel(s))
	}
	ev := queue.ReservationEvent{
		Type:          typ,
		ReservationID: r.ID,
		UserID:        r.UserID,
		Date:          r.Date.Format(DateLayout),
		TrainClass:    r.TrainClass,
		TrainName:     r.TrainName,
		Departure:     r.Departure,
		Arrival:       r.Arrival,
		SeatClass:     r.SeatClass,
		CarNumber:     r.CarNumber,
		SeatLabels:    labels,
		Amount:        r.Amount,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
	if r.PaymentID != nil {
		ev.PaymentID = *r.PaymentID
	}
	return ev
}
