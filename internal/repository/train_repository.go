package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// TrainRepo reads the train master and the timetable.
type TrainRepo struct {
	db *sql.DB
}

// NewTrainRepo returns a new TrainRepo bound to the given database.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

const trainColumns = `date, departure_at, train_class, train_name, start_station, last_station, is_inbound`

func scanTrain(row interface{ Scan(...any) error }) (model.Train, error) {
	var t model.Train
	var date time.Time
	if err := row.Scan(&date, &t.DepartureAt, &t.TrainClass, &t.TrainName, &t.StartStation, &t.LastStation, &t.IsInbound); err != nil {
		return model.Train{}, translate(err)
	}
	t.Date = serviceDate(date)
	return t, nil
}

// Get returns the scheduled run identified by key, or ErrNotFound.
func (r *TrainRepo) Get(ctx context.Context, key model.TrainKey) (model.Train, error) {
	const sel = `SELECT ` + trainColumns + ` FROM train_master WHERE date = ? AND train_class = ? AND train_name = ?`
	return scanTrain(r.db.QueryRowContext(ctx, sel, key.Date.Format(dateLayout), key.TrainClass, key.TrainName))
}

// GetForUpdateTx locks the train_master row of the run.  Every booking
// transaction on the run takes this lock first, which serializes them.
func (r *TrainRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, key model.TrainKey) (model.Train, error) {
	const sel = `SELECT ` + trainColumns + ` FROM train_master WHERE date = ? AND train_class = ? AND train_name = ? FOR UPDATE`
	return scanTrain(tx.QueryRowContext(ctx, sel, key.Date.Format(dateLayout), key.TrainClass, key.TrainName))
}

// GetTx reads the run without locking it.
func (r *TrainRepo) GetTx(ctx context.Context, tx *sql.Tx, key model.TrainKey) (model.Train, error) {
	const sel = `SELECT ` + trainColumns + ` FROM train_master WHERE date = ? AND train_class = ? AND train_name = ?`
	return scanTrain(tx.QueryRowContext(ctx, sel, key.Date.Format(dateLayout), key.TrainClass, key.TrainName))
}

// ListByDate returns the runs of the given classes and direction on date,
// ordered by departure time.
func (r *TrainRepo) ListByDate(ctx context.Context, date time.Time, classes []string, inbound bool) ([]model.Train, error) {
	return r.listByDate(ctx, r.db, date, classes, inbound)
}

// ListByDateTx is ListByDate inside a transaction.
func (r *TrainRepo) ListByDateTx(ctx context.Context, tx *sql.Tx, date time.Time, classes []string, inbound bool) ([]model.Train, error) {
	return r.listByDate(ctx, tx, date, classes, inbound)
}

func (r *TrainRepo) listByDate(ctx context.Context, q querier, date time.Time, classes []string, inbound bool) ([]model.Train, error) {
	if len(classes) == 0 {
		return nil, nil
	}
	sel := `SELECT ` + trainColumns + ` FROM train_master
            WHERE date = ? AND is_inbound = ? AND train_class IN (` + placeholders(len(classes)) + `)
            ORDER BY departure_at, train_name`
	args := make([]any, 0, len(classes)+2)
	args = append(args, date.Format(dateLayout), inbound)
	for _, c := range classes {
		args = append(args, c)
	}
	rows, err := q.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var out []model.Train
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// StopTime returns the timetable entry of the run at station, or
// ErrNotFound when the run has none.
func (r *TrainRepo) StopTime(ctx context.Context, key model.TrainKey, station string) (model.StopTime, error) {
	return r.stopTime(ctx, r.db, key, station)
}

// StopTimeTx is StopTime inside a transaction.
func (r *TrainRepo) StopTimeTx(ctx context.Context, tx *sql.Tx, key model.TrainKey, station string) (model.StopTime, error) {
	return r.stopTime(ctx, tx, key, station)
}

func (r *TrainRepo) stopTime(ctx context.Context, q querier, key model.TrainKey, station string) (model.StopTime, error) {
	const sel = `SELECT departure, arrival FROM train_timetable_master
               WHERE date = ? AND train_class = ? AND train_name = ? AND station = ?`
	var st model.StopTime
	err := q.QueryRowContext(ctx, sel, key.Date.Format(dateLayout), key.TrainClass, key.TrainName, station).
		Scan(&st.Departure, &st.Arrival)
	if err != nil {
		return model.StopTime{}, translate(err)
	}
	return st, nil
}
