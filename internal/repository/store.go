package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// Store implements booking.Store on top of the MySQL repositories.
type Store struct {
	db           *sql.DB
	stations     *StationRepo
	trains       *TrainRepo
	seats        *SeatRepo
	fares        *FareRepo
	reservations *ReservationRepo
	users        *UserRepo
}

// NewStore wires every repository to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		stations:     NewStationRepo(db),
		trains:       NewTrainRepo(db),
		seats:        NewSeatRepo(db),
		fares:        NewFareRepo(db),
		reservations: NewReservationRepo(db),
		users:        NewUserRepo(db),
	}
}

func (s *Store) Stations(ctx context.Context) ([]model.Station, error) {
	return s.stations.List(ctx)
}

func (s *Store) Train(ctx context.Context, key model.TrainKey) (model.Train, error) {
	return s.trains.Get(ctx, key)
}

func (s *Store) Trains(ctx context.Context, date time.Time, classes []string, inbound bool) ([]model.Train, error) {
	return s.trains.ListByDate(ctx, date, classes, inbound)
}

func (s *Store) StopTime(ctx context.Context, key model.TrainKey, station string) (model.StopTime, error) {
	return s.trains.StopTime(ctx, key, station)
}

func (s *Store) Seats(ctx context.Context, trainClass, seatClass string, smoking bool) ([]model.Seat, error) {
	return s.seats.ListByClass(ctx, trainClass, seatClass, smoking)
}

func (s *Store) CarSeats(ctx context.Context, trainClass string, carNumber int) ([]model.Seat, error) {
	return s.seats.ListByCar(ctx, trainClass, carNumber)
}

func (s *Store) Cars(ctx context.Context, trainClass string) ([]booking.Car, error) {
	return s.seats.Cars(ctx, trainClass)
}

func (s *Store) DistanceFares(ctx context.Context) ([]model.DistanceFare, error) {
	return s.fares.DistanceFares(ctx)
}

func (s *Store) FareMultipliers(ctx context.Context, trainClass, seatClass string) ([]model.FareMultiplier, error) {
	return s.fares.Multipliers(ctx, trainClass, seatClass)
}

func (s *Store) Reservations(ctx context.Context, key model.TrainKey) ([]model.Reservation, error) {
	return s.reservations.ListByTrain(ctx, key)
}

func (s *Store) SeatReservations(ctx context.Context, ids []int64) ([]model.SeatReservation, error) {
	return s.reservations.Seats(ctx, ids)
}

func (s *Store) UserReservations(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return s.reservations.ListByUser(ctx, userID)
}

func (s *Store) Reservation(ctx context.Context, id, userID int64) (model.Reservation, error) {
	return s.reservations.GetForUser(ctx, id, userID)
}

// Begin opens a READ COMMITTED transaction.  Locking reads always see the
// latest committed rows, so the availability computed after LockTrain is
// current for the run.
func (s *Store) Begin(ctx context.Context) (booking.Tx, error) {
	tx, err := BeginTx(ctx, s.db)
	if err != nil {
		return nil, translate(err)
	}
	return &Tx{tx: tx, s: s}, nil
}

// BeginTx starts a READ COMMITTED transaction on db.
func BeginTx(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
	return db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// Tx implements booking.Tx.
type Tx struct {
	tx *sql.Tx
	s  *Store
}

func (t *Tx) Stations(ctx context.Context) ([]model.Station, error) {
	return t.s.stations.ListTx(ctx, t.tx)
}

func (t *Tx) Train(ctx context.Context, key model.TrainKey) (model.Train, error) {
	return t.s.trains.GetTx(ctx, t.tx, key)
}

func (t *Tx) Trains(ctx context.Context, date time.Time, classes []string, inbound bool) ([]model.Train, error) {
	return t.s.trains.ListByDateTx(ctx, t.tx, date, classes, inbound)
}

func (t *Tx) StopTime(ctx context.Context, key model.TrainKey, station string) (model.StopTime, error) {
	return t.s.trains.StopTimeTx(ctx, t.tx, key, station)
}

func (t *Tx) Seats(ctx context.Context, trainClass, seatClass string, smoking bool) ([]model.Seat, error) {
	return t.s.seats.ListByClassTx(ctx, t.tx, trainClass, seatClass, smoking)
}

func (t *Tx) CarSeats(ctx context.Context, trainClass string, carNumber int) ([]model.Seat, error) {
	return t.s.seats.ListByCarTx(ctx, t.tx, trainClass, carNumber)
}

func (t *Tx) Cars(ctx context.Context, trainClass string) ([]booking.Car, error) {
	return t.s.seats.CarsTx(ctx, t.tx, trainClass)
}

func (t *Tx) DistanceFares(ctx context.Context) ([]model.DistanceFare, error) {
	return t.s.fares.DistanceFaresTx(ctx, t.tx)
}

func (t *Tx) FareMultipliers(ctx context.Context, trainClass, seatClass string) ([]model.FareMultiplier, error) {
	return t.s.fares.MultipliersTx(ctx, t.tx, trainClass, seatClass)
}

func (t *Tx) Reservations(ctx context.Context, key model.TrainKey) ([]model.Reservation, error) {
	return t.s.reservations.ListByTrainTx(ctx, t.tx, key)
}

func (t *Tx) SeatReservations(ctx context.Context, ids []int64) ([]model.SeatReservation, error) {
	return t.s.reservations.SeatsTx(ctx, t.tx, ids)
}

func (t *Tx) UserReservations(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return t.s.reservations.ListByUserTx(ctx, t.tx, userID)
}

func (t *Tx) Reservation(ctx context.Context, id, userID int64) (model.Reservation, error) {
	return t.s.reservations.GetForUserTx(ctx, t.tx, id, userID)
}

func (t *Tx) LockTrain(ctx context.Context, key model.TrainKey) (model.Train, error) {
	return t.s.trains.GetForUpdateTx(ctx, t.tx, key)
}

func (t *Tx) LockReservations(ctx context.Context, key model.TrainKey) ([]model.Reservation, error) {
	return t.s.reservations.ListByTrainForUpdateTx(ctx, t.tx, key)
}

func (t *Tx) LockSeatReservations(ctx context.Context, reservationID int64) ([]model.SeatReservation, error) {
	return t.s.reservations.SeatsForUpdateTx(ctx, t.tx, reservationID)
}

func (t *Tx) LockReservation(ctx context.Context, id, userID int64) (model.Reservation, error) {
	return t.s.reservations.GetForUserForUpdateTx(ctx, t.tx, id, userID)
}

func (t *Tx) LockReservationByID(ctx context.Context, id int64) (model.Reservation, error) {
	return t.s.reservations.GetForUpdateTx(ctx, t.tx, id)
}

func (t *Tx) User(ctx context.Context, id int64) (model.User, error) {
	return t.s.users.GetByIDTx(ctx, t.tx, id)
}

func (t *Tx) CreateReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.reservations.CreateTx(ctx, t.tx, r)
}

func (t *Tx) CreateSeatReservations(ctx context.Context, seats []model.SeatReservation) error {
	return t.s.reservations.CreateSeatsBulkTx(ctx, t.tx, seats)
}

func (t *Tx) MarkPaid(ctx context.Context, id int64, paymentID string) error {
	return t.s.reservations.MarkPaidTx(ctx, t.tx, id, paymentID)
}

func (t *Tx) SetStatus(ctx context.Context, id int64, status string) error {
	return t.s.reservations.SetStatusTx(ctx, t.tx, id, status)
}

func (t *Tx) DeleteReservation(ctx context.Context, id int64) error {
	return t.s.reservations.DeleteTx(ctx, t.tx, id)
}

func (t *Tx) Commit() error { return translate(t.tx.Commit()) }

func (t *Tx) Rollback() error { return t.tx.Rollback() }

var (
	_ booking.Store = (*Store)(nil)
	_ booking.Tx    = (*Tx)(nil)
)
