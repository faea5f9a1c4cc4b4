package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// SeatRepo reads the seat master.  Seat maps are defined per train class
// and shared by every date.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatColumns = `train_class, car_number, seat_row, seat_column, seat_class, is_smoking_seat`

func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
	defer rows.Close()
	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.TrainClass, &s.CarNumber, &s.SeatRow, &s.SeatColumn, &s.SeatClass, &s.IsSmokingSeat); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByClass returns the seats of a seat class and smoking flag ordered by
// car, row and column.
func (r *SeatRepo) ListByClass(ctx context.Context, trainClass, seatClass string, smoking bool) ([]model.Seat, error) {
	return r.listByClass(ctx, r.db, trainClass, seatClass, smoking)
}

// ListByClassTx is ListByClass inside a transaction.
func (r *SeatRepo) ListByClassTx(ctx context.Context, tx *sql.Tx, trainClass, seatClass string, smoking bool) ([]model.Seat, error) {
	return r.listByClass(ctx, tx, trainClass, seatClass, smoking)
}

func (r *SeatRepo) listByClass(ctx context.Context, q querier, trainClass, seatClass string, smoking bool) ([]model.Seat, error) {
	const sel = `SELECT ` + seatColumns + ` FROM seat_master
               WHERE train_class = ? AND seat_class = ? AND is_smoking_seat = ?
               ORDER BY car_number, seat_row, seat_column`
	rows, err := q.QueryContext(ctx, sel, trainClass, seatClass, smoking)
	if err != nil {
		return nil, translate(err)
	}
	return scanSeats(rows)
}

// ListByCar returns every seat of one car ordered by row and column.
func (r *SeatRepo) ListByCar(ctx context.Context, trainClass string, carNumber int) ([]model.Seat, error) {
	return r.listByCar(ctx, r.db, trainClass, carNumber)
}

// ListByCarTx is ListByCar inside a transaction.
func (r *SeatRepo) ListByCarTx(ctx context.Context, tx *sql.Tx, trainClass string, carNumber int) ([]model.Seat, error) {
	return r.listByCar(ctx, tx, trainClass, carNumber)
}

func (r *SeatRepo) listByCar(ctx context.Context, q querier, trainClass string, carNumber int) ([]model.Seat, error) {
	const sel = `SELECT ` + seatColumns + ` FROM seat_master
               WHERE train_class = ? AND car_number = ?
               ORDER BY seat_row, seat_column`
	rows, err := q.QueryContext(ctx, sel, trainClass, carNumber)
	if err != nil {
		return nil, translate(err)
	}
	return scanSeats(rows)
}

// Cars lists the cars present in the seat master for a train class with the
// seat class of each.
func (r *SeatRepo) Cars(ctx context.Context, trainClass string) ([]booking.Car, error) {
	return r.cars(ctx, r.db, trainClass)
}

// CarsTx is Cars inside a transaction.
func (r *SeatRepo) CarsTx(ctx context.Context, tx *sql.Tx, trainClass string) ([]booking.Car, error) {
	return r.cars(ctx, tx, trainClass)
}

func (r *SeatRepo) cars(ctx context.Context, q querier, trainClass string) ([]booking.Car, error) {
	const sel = `SELECT car_number, MIN(seat_class) FROM seat_master
               WHERE train_class = ? GROUP BY car_number ORDER BY car_number`
	rows, err := q.QueryContext(ctx, sel, trainClass)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var out []booking.Car
	for rows.Next() {
		var c booking.Car
		if err := rows.Scan(&c.CarNumber, &c.SeatClass); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
