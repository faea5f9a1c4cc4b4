package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their seat
// claims.  Seats claimed under a reservation are stored in the
// seat_reservations table.  Timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `reservation_id, user_id, date, train_class, train_name, car_number, seat_class,
                      departure, arrival, status, payment_id, adult, child, amount, created_at`

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var res model.Reservation
	var date time.Time
	var paymentID sql.NullString
	err := row.Scan(
		&res.ID, &res.UserID, &date, &res.TrainClass, &res.TrainName, &res.CarNumber, &res.SeatClass,
		&res.Departure, &res.Arrival, &res.Status, &paymentID, &res.Adult, &res.Child, &res.Amount, &res.CreatedAt,
	)
	if err != nil {
		return model.Reservation{}, translate(err)
	}
	res.Date = serviceDate(date)
	if paymentID.Valid {
		p := paymentID.String
		res.PaymentID = &p
	}
	return res, nil
}

func scanReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListByTrain returns every reservation on a run without locking.
func (r *ReservationRepo) ListByTrain(ctx context.Context, key model.TrainKey) ([]model.Reservation, error) {
	return r.listByTrain(ctx, r.db, key, false)
}

// ListByTrainTx is ListByTrain inside a transaction.
func (r *ReservationRepo) ListByTrainTx(ctx context.Context, tx *sql.Tx, key model.TrainKey) ([]model.Reservation, error) {
	return r.listByTrain(ctx, tx, key, false)
}

// ListByTrainForUpdateTx locks every reservation row on the run.
func (r *ReservationRepo) ListByTrainForUpdateTx(ctx context.Context, tx *sql.Tx, key model.TrainKey) ([]model.Reservation, error) {
	return r.listByTrain(ctx, tx, key, true)
}

func (r *ReservationRepo) listByTrain(ctx context.Context, q querier, key model.TrainKey, lock bool) ([]model.Reservation, error) {
	sel := `SELECT ` + reservationColumns + ` FROM reservations
               WHERE date = ? AND train_class = ? AND train_name = ?
               ORDER BY reservation_id`
	if lock {
		sel += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, sel, key.Date.Format(dateLayout), key.TrainClass, key.TrainName)
	if err != nil {
		return nil, translate(err)
	}
	return scanReservations(rows)
}

// ListByUser returns the reservations of a user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return r.listByUser(ctx, r.db, userID)
}

// ListByUserTx is ListByUser inside a transaction.
func (r *ReservationRepo) ListByUserTx(ctx context.Context, tx *sql.Tx, userID int64) ([]model.Reservation, error) {
	return r.listByUser(ctx, tx, userID)
}

func (r *ReservationRepo) listByUser(ctx context.Context, q querier, userID int64) ([]model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? ORDER BY reservation_id DESC`
	rows, err := q.QueryContext(ctx, sel, userID)
	if err != nil {
		return nil, translate(err)
	}
	return scanReservations(rows)
}

// GetForUser returns a reservation owned by userID.  Reservations of other
// users are reported as ErrNotFound.
func (r *ReservationRepo) GetForUser(ctx context.Context, id, userID int64) (model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ? AND user_id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, sel, id, userID))
}

// GetForUserTx is GetForUser inside a transaction.
func (r *ReservationRepo) GetForUserTx(ctx context.Context, tx *sql.Tx, id, userID int64) (model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ? AND user_id = ?`
	return scanReservation(tx.QueryRowContext(ctx, sel, id, userID))
}

// GetForUserForUpdateTx locks a reservation owned by userID.
func (r *ReservationRepo) GetForUserForUpdateTx(ctx context.Context, tx *sql.Tx, id, userID int64) (model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ? AND user_id = ? FOR UPDATE`
	return scanReservation(tx.QueryRowContext(ctx, sel, id, userID))
}

// GetForUpdateTx locks a reservation regardless of its owner.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id int64) (model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ? FOR UPDATE`
	return scanReservation(tx.QueryRowContext(ctx, sel, id))
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID.  The caller must commit or
// rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
               (user_id, date, train_class, train_name, car_number, seat_class, departure, arrival,
                status, adult, child, amount, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.UserID, res.Date.Format(dateLayout), res.TrainClass, res.TrainName, res.CarNumber, res.SeatClass,
		res.Departure, res.Arrival, res.Status, res.Adult, res.Child, res.Amount, res.CreatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

// CreateSeatsBulkTx inserts multiple seat_reservations rows in a single
// statement.  The caller must supply the reservation ID in each record.
// Passing an empty slice has no effect and returns nil.
func (r *ReservationRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []model.SeatReservation) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seat_reservations (reservation_id, car_number, seat_row, seat_column) VALUES `)
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, s.ReservationID, s.CarNumber, s.SeatRow, s.SeatColumn)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return translate(err)
}

// Seats returns the seat claims of the given reservations.
func (r *ReservationRepo) Seats(ctx context.Context, reservationIDs []int64) ([]model.SeatReservation, error) {
	return r.seats(ctx, r.db, reservationIDs, false)
}

// SeatsTx is Seats inside a transaction.
func (r *ReservationRepo) SeatsTx(ctx context.Context, tx *sql.Tx, reservationIDs []int64) ([]model.SeatReservation, error) {
	return r.seats(ctx, tx, reservationIDs, false)
}

// SeatsForUpdateTx locks the seat claims of one reservation.
func (r *ReservationRepo) SeatsForUpdateTx(ctx context.Context, tx *sql.Tx, reservationID int64) ([]model.SeatReservation, error) {
	return r.seats(ctx, tx, []int64{reservationID}, true)
}

func (r *ReservationRepo) seats(ctx context.Context, q querier, ids []int64, lock bool) ([]model.SeatReservation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel := `SELECT reservation_id, car_number, seat_row, seat_column FROM seat_reservations
               WHERE reservation_id IN (` + placeholders(len(ids)) + `)
               ORDER BY reservation_id, car_number, seat_row, seat_column`
	if lock {
		sel += ` FOR UPDATE`
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := q.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var out []model.SeatReservation
	for rows.Next() {
		var s model.SeatReservation
		if err := rows.Scan(&s.ReservationID, &s.CarNumber, &s.SeatRow, &s.SeatColumn); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkPaidTx moves a reservation to done and records the payment id.
func (r *ReservationRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, id int64, paymentID string) error {
	const q = `UPDATE reservations SET status = ?, payment_id = ? WHERE reservation_id = ?`
	return r.exec1(ctx, tx, q, model.StatusDone, paymentID, id)
}

// SetStatusTx changes the status of a reservation.
func (r *ReservationRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	const q = `UPDATE reservations SET status = ? WHERE reservation_id = ?`
	return r.exec1(ctx, tx, q, status, id)
}

// DeleteTx removes a reservation together with its seat claims.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM seat_reservations WHERE reservation_id = ?`, id); err != nil {
		return translate(err)
	}
	return r.exec1(ctx, tx, `DELETE FROM reservations WHERE reservation_id = ?`, id)
}

// exec1 runs a statement that must affect exactly one row.
func (r *ReservationRepo) exec1(ctx context.Context, tx *sql.Tx, q string, args ...any) error {
	result, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
