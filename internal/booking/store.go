package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// Sentinel errors the store implementations return.
var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrLockConflict is returned when the store aborts a transaction
	// because of a lock conflict (deadlock or lock wait timeout).
	ErrLockConflict = errors.New("lock conflict")
)

// Car is the seat class of one car of a train class.
type Car struct {
	CarNumber int    `json:"car_number"`
	SeatClass string `json:"seat_class"`
}

// Reader is the read side of the store.  Reads outside a transaction take
// no locks and may observe slightly stale committed data.
type Reader interface {
	Stations(ctx context.Context) ([]model.Station, error)
	Train(ctx context.Context, key model.TrainKey) (model.Train, error)
	Trains(ctx context.Context, date time.Time, classes []string, inbound bool) ([]model.Train, error)
	StopTime(ctx context.Context, key model.TrainKey, station string) (model.StopTime, error)
	// Seats returns seat master rows ordered by car, row and column.
	Seats(ctx context.Context, trainClass, seatClass string, smoking bool) ([]model.Seat, error)
	CarSeats(ctx context.Context, trainClass string, carNumber int) ([]model.Seat, error)
	Cars(ctx context.Context, trainClass string) ([]Car, error)
	DistanceFares(ctx context.Context) ([]model.DistanceFare, error)
	FareMultipliers(ctx context.Context, trainClass, seatClass string) ([]model.FareMultiplier, error)
	Reservations(ctx context.Context, key model.TrainKey) ([]model.Reservation, error)
	SeatReservations(ctx context.Context, reservationIDs []int64) ([]model.SeatReservation, error)
	UserReservations(ctx context.Context, userID int64) ([]model.Reservation, error)
	Reservation(ctx context.Context, id, userID int64) (model.Reservation, error)
}

// Tx is a store transaction.  Lock methods take row locks that are held
// until Commit or Rollback.
type Tx interface {
	Reader
	// LockTrain locks the train run; every booking on the run serializes here.
	LockTrain(ctx context.Context, key model.TrainKey) (model.Train, error)
	LockReservations(ctx context.Context, key model.TrainKey) ([]model.Reservation, error)
	LockSeatReservations(ctx context.Context, reservationID int64) ([]model.SeatReservation, error)
	LockReservation(ctx context.Context, id, userID int64) (model.Reservation, error)
	LockReservationByID(ctx context.Context, id int64) (model.Reservation, error)
	User(ctx context.Context, id int64) (model.User, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	CreateSeatReservations(ctx context.Context, seats []model.SeatReservation) error
	MarkPaid(ctx context.Context, id int64, paymentID string) error
	SetStatus(ctx context.Context, id int64, status string) error
	DeleteReservation(ctx context.Context, id int64) error
	Commit() error
	Rollback() error
}

// Store opens transactions and serves unlocked reads.
type Store interface {
	Reader
	Begin(ctx context.Context) (Tx, error)
}
