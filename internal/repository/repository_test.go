package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testKey(t *testing.T) model.TrainKey {
	t.Helper()
	d, err := booking.ParseDate("2020-01-01")
	require.NoError(t, err)
	return model.TrainKey{Date: d, TrainClass: model.TrainClassLocal, TrainName: "L1"}
}

var reservationCols = []string{
	"reservation_id", "user_id", "date", "train_class", "train_name", "car_number", "seat_class",
	"departure", "arrival", "status", "payment_id", "adult", "child", "amount", "created_at",
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}), ErrLockConflict)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout"}), booking.ErrLockConflict)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestStationList(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "name", "distance", "is_stop_express", "is_stop_semi_express", "is_stop_local"}).
		AddRow(1, "Tokyo", 0.0, true, true, true).
		AddRow(2, "Shinagawa", 6.8, false, true, true)
	mock.ExpectQuery(`SELECT id, name, distance[\s\S]*FROM station_master ORDER BY distance, id`).WillReturnRows(rows)

	got, err := NewStationRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Shinagawa", got[1].Name)
	assert.Equal(t, 6.8, got[1].Distance)
	assert.False(t, got[1].IsStopExpress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainLockAndTimetable(t *testing.T) {
	db, mock := newMock(t)
	key := testKey(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM train_master WHERE date = \? AND train_class = \? AND train_name = \? FOR UPDATE`).
		WithArgs("2020-01-01", "local", "L1").
		WillReturnRows(sqlmock.NewRows([]string{"date", "departure_at", "train_class", "train_name", "start_station", "last_station", "is_inbound"}).
			AddRow(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "09:00:00", "local", "L1", "Tokyo", "Osaka", false))
	mock.ExpectQuery(`SELECT departure, arrival FROM train_timetable_master`).
		WithArgs("2020-01-01", "local", "L1", "Tokyo").
		WillReturnRows(sqlmock.NewRows([]string{"departure", "arrival"}).AddRow("09:00:00", "09:00:00"))
	mock.ExpectQuery(`SELECT departure, arrival FROM train_timetable_master`).
		WithArgs("2020-01-01", "local", "L1", "Nowhere").
		WillReturnRows(sqlmock.NewRows([]string{"departure", "arrival"}))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	train, err := tx.LockTrain(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key.Date, train.Date)
	assert.Equal(t, "Osaka", train.LastStation)

	st, err := tx.StopTime(ctx, key, "Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", st.Departure)
	_, err = tx.StopTime(ctx, key, "Nowhere")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainListByDate(t *testing.T) {
	db, mock := newMock(t)
	key := testKey(t)
	mock.ExpectQuery(`FROM train_master\s+WHERE date = \? AND is_inbound = \? AND train_class IN \(\?,\?\)\s+ORDER BY departure_at`).
		WithArgs("2020-01-01", true, "semi_express", "local").
		WillReturnRows(sqlmock.NewRows([]string{"date", "departure_at", "train_class", "train_name", "start_station", "last_station", "is_inbound"}).
			AddRow(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "06:00:00", "local", "L2", "Osaka", "Tokyo", true))

	got, err := NewTrainRepo(db).ListByDate(context.Background(), key.Date, []string{"semi_express", "local"}, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsInbound)

	none, err := NewTrainRepo(db).ListByDate(context.Background(), key.Date, nil, true)
	require.NoError(t, err)
	assert.Empty(t, none)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockConflictIsTranslated(t *testing.T) {
	db, mock := newMock(t)
	key := testKey(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations\s+WHERE date = \? AND train_class = \? AND train_name = \?\s+ORDER BY reservation_id FOR UPDATE`).
		WithArgs("2020-01-01", "local", "L1").
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := NewStore(db).Begin(ctx)
	require.NoError(t, err)
	_, err = tx.LockReservations(ctx, key)
	assert.ErrorIs(t, err, ErrLockConflict)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCreateAndSeats(t *testing.T) {
	db, mock := newMock(t)
	key := testKey(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(int64(7), "2020-01-01", "local", "L1", 1, "reserved", "Tokyo", "Osaka", "requesting", 2, 0, 6000, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(`INSERT INTO seat_reservations \(reservation_id, car_number, seat_row, seat_column\) VALUES \(\?, \?, \?, \?\),\(\?, \?, \?, \?\)`).
		WithArgs(int64(42), 1, 1, "A", int64(42), 1, 1, "B").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := NewStore(db).Begin(ctx)
	require.NoError(t, err)
	res := model.Reservation{
		UserID: 7, Date: key.Date, TrainClass: key.TrainClass, TrainName: key.TrainName,
		CarNumber: 1, SeatClass: "reserved", Departure: "Tokyo", Arrival: "Osaka",
		Status: model.StatusRequesting, Adult: 2, Amount: 6000, CreatedAt: time.Now(),
	}
	require.NoError(t, tx.CreateReservation(ctx, &res))
	assert.Equal(t, int64(42), res.ID)
	require.NoError(t, tx.CreateSeatReservations(ctx, []model.SeatReservation{
		{ReservationID: 42, CarNumber: 1, SeatRow: 1, SeatColumn: "A"},
		{ReservationID: 42, CarNumber: 1, SeatRow: 1, SeatColumn: "B"},
	}))
	require.NoError(t, tx.CreateSeatReservations(ctx, nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationGetForUser(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2019, 12, 20, 3, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM reservations WHERE reservation_id = \? AND user_id = \?`).
		WithArgs(int64(42), int64(7)).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(42, 7, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "local", "L1", 1, "reserved",
				"Tokyo", "Osaka", "done", "pay-1", 2, 1, 7500, created))
	mock.ExpectQuery(`FROM reservations WHERE reservation_id = \? AND user_id = \?`).
		WithArgs(int64(42), int64(8)).
		WillReturnRows(sqlmock.NewRows(reservationCols))

	repo := NewReservationRepo(db)
	res, err := repo.GetForUser(context.Background(), 42, 7)
	require.NoError(t, err)
	require.NotNil(t, res.PaymentID)
	assert.Equal(t, "pay-1", *res.PaymentID)
	assert.Equal(t, model.StatusDone, res.Status)
	assert.Equal(t, 3, res.Passengers())
	assert.Equal(t, "2020-01-01", res.Date.Format("2006-01-02"))

	_, err = repo.GetForUser(context.Background(), 42, 8)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationDeleteAndStatus(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM seat_reservations WHERE reservation_id = \?`).WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM reservations WHERE reservation_id = \?`).WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE reservations SET status = \?, payment_id = \? WHERE reservation_id = \?`).
		WithArgs("done", "pay-9", int64(43)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := NewStore(db).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.DeleteReservation(ctx, 42))
	assert.ErrorIs(t, tx.MarkPaid(ctx, 43, "pay-9"), ErrNotFound)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatsLookup(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM seat_reservations\s+WHERE reservation_id IN \(\?,\?\)`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "car_number", "seat_row", "seat_column"}).
			AddRow(1, 3, 2, "C").
			AddRow(2, 3, 2, "D"))

	repo := NewReservationRepo(db)
	got, err := repo.Seats(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.SeatPosition{CarNumber: 3, Row: 2, Column: "D"}, got[1].Position())

	empty, err := repo.Seats(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFareMultipliers(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM fare_master\s+WHERE train_class = \? AND seat_class = \? ORDER BY start_date`).
		WithArgs("express", "premium").
		WillReturnRows(sqlmock.NewRows([]string{"train_class", "seat_class", "start_date", "fare_multiplier"}).
			AddRow("express", "premium", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 1.5))

	got, err := NewFareRepo(db).Multipliers(context.Background(), "express", "premium")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1.5, got[0].Multiplier)
	assert.Equal(t, booking.Tokyo, got[0].StartDate.Location())
	require.NoError(t, mock.ExpectationsWereMet())
}
