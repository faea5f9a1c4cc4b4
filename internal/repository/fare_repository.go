package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// FareRepo reads the distance fare table and the fare multipliers.
type FareRepo struct {
	db *sql.DB
}

// NewFareRepo returns a new FareRepo bound to the given database.
func NewFareRepo(db *sql.DB) *FareRepo { return &FareRepo{db: db} }

// DistanceFares returns the distance fare breakpoints in ascending order.
func (r *FareRepo) DistanceFares(ctx context.Context) ([]model.DistanceFare, error) {
	return r.distanceFares(ctx, r.db)
}

// DistanceFaresTx is DistanceFares inside a transaction.
func (r *FareRepo) DistanceFaresTx(ctx context.Context, tx *sql.Tx) ([]model.DistanceFare, error) {
	return r.distanceFares(ctx, tx)
}

func (r *FareRepo) distanceFares(ctx context.Context, q querier) ([]model.DistanceFare, error) {
	rows, err := q.QueryContext(ctx, `SELECT distance, fare FROM distance_fare_master ORDER BY distance`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var out []model.DistanceFare
	for rows.Next() {
		var d model.DistanceFare
		if err := rows.Scan(&d.Distance, &d.Fare); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Multipliers returns the multipliers of a train class and seat class
// ordered by start date.
func (r *FareRepo) Multipliers(ctx context.Context, trainClass, seatClass string) ([]model.FareMultiplier, error) {
	return r.multipliers(ctx, r.db, trainClass, seatClass)
}

// MultipliersTx is Multipliers inside a transaction.
func (r *FareRepo) MultipliersTx(ctx context.Context, tx *sql.Tx, trainClass, seatClass string) ([]model.FareMultiplier, error) {
	return r.multipliers(ctx, tx, trainClass, seatClass)
}

func (r *FareRepo) multipliers(ctx context.Context, q querier, trainClass, seatClass string) ([]model.FareMultiplier, error) {
	const sel = `SELECT train_class, seat_class, start_date, fare_multiplier FROM fare_master
               WHERE train_class = ? AND seat_class = ? ORDER BY start_date`
	rows, err := q.QueryContext(ctx, sel, trainClass, seatClass)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var out []model.FareMultiplier
	for rows.Next() {
		var m model.FareMultiplier
		var start time.Time
		if err := rows.Scan(&m.TrainClass, &m.SeatClass, &start, &m.Multiplier); err != nil {
			return nil, err
		}
		m.StartDate = serviceDate(start)
		out = append(out, m)
	}
	return out, rows.Err()
}
