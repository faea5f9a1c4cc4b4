// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// ReservationQueue is the default queue and topic name for reservation
// events.
const ReservationQueue = "reservation.events"

// Event types published after a reservation changes state.
const (
	EventReservationCommitted = "reservation.committed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationRejected  = "reservation.rejected"
)

// ReservationEvent is published once a reservation transaction has committed.
// It carries enough of the booking for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type ReservationEvent struct {
	Type          string   `json:"type"`
	ReservationID int64    `json:"reservation_id"`
	UserID        int64    `json:"user_id"`
	Date          string   `json:"date"`
	TrainClass    string   `json:"train_class"`
	TrainName     string   `json:"train_name"`
	Departure     string   `json:"departure"`
	Arrival       string   `json:"arrival"`
	SeatClass     string   `json:"seat_class"`
	CarNumber     int      `json:"car_number"`
	SeatLabels    []string `json:"seats"`
	Amount        int      `json:"amount"`
	PaymentID     string   `json:"payment_id,omitempty"`
	OccurredAt    string   `json:"occurred_at"`
}
