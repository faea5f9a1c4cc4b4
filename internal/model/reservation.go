package model

import "time"

// Reservation statuses.
const (
	StatusRequesting = "requesting"
	StatusDone       = "done"
	StatusRejected   = "rejected"
)

// Reservation is a booking for one segment of one train run.  It is
// created in the requesting state, moves to done once payment has been
// captured, and is deleted together with its seat claims on cancel.
// Rejected is terminal.
//
// Fields:
//  ID         – generated reservation id.
//  UserID     – owner of the reservation.
//  Date       – service date of the train.
//  TrainClass – train class.
//  TrainName  – train name.
//  CarNumber  – car shared by every claimed seat (0 for non-reserved).
//  SeatClass  – seat class booked.
//  Departure  – boarding station name.
//  Arrival    – alighting station name.
//  Status     – requesting, done or rejected.
//  PaymentID  – processor payment id once paid.
//  Adult      – number of adult passengers.
//  Child      – number of child passengers.
//  Amount     – total amount in integer currency units.
//  CreatedAt  – creation timestamp.
type Reservation struct {
	ID         int64     `json:"reservation_id"`       // reservations.reservation_id
	UserID     int64     `json:"-"`                    // reservations.user_id
	Date       time.Time `json:"date"`                 // reservations.date
	TrainClass string    `json:"train_class"`          // reservations.train_class
	TrainName  string    `json:"train_name"`           // reservations.train_name
	CarNumber  int       `json:"car_number"`           // reservations.car_number
	SeatClass  string    `json:"seat_class"`           // reservations.seat_class
	Departure  string    `json:"departure"`            // reservations.departure
	Arrival    string    `json:"arrival"`              // reservations.arrival
	Status     string    `json:"status"`               // reservations.status
	PaymentID  *string   `json:"payment_id,omitempty"` // reservations.payment_id (nullable)
	Adult      int       `json:"adult"`                // reservations.adult
	Child      int       `json:"child"`                // reservations.child
	Amount     int       `json:"amount"`               // reservations.amount
	CreatedAt  time.Time `json:"created_at"`           // reservations.created_at
}

// TrainKey returns the run the reservation belongs to.
func (r Reservation) TrainKey() TrainKey {
	return TrainKey{Date: r.Date, TrainClass: r.TrainClass, TrainName: r.TrainName}
}

// Passengers is the party size.
func (r Reservation) Passengers() int { return r.Adult + r.Child }

// SeatReservation is a single seat claim owned by a reservation.
// Non-reserved claims carry car 0, row 0 and an empty column, one per
// passenger.
type SeatReservation struct {
	ReservationID int64  `json:"reservation_id,omitempty"` // seat_reservations.reservation_id
	CarNumber     int    `json:"car_number"`               // seat_reservations.car_number
	SeatRow       int    `json:"seat_row"`                 // seat_reservations.seat_row
	SeatColumn    string `json:"seat_column"`              // seat_reservations.seat_column
}

// Position returns the physical location claimed.
func (s SeatReservation) Position() SeatPosition {
	return SeatPosition{CarNumber: s.CarNumber, Row: s.SeatRow, Column: s.SeatColumn}
}
