package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// memStore is an in-memory Store.  Transactions are serialized by a single
// lock held from Begin until Commit or Rollback, and writes are staged until
// Commit so a rolled back transaction leaves no trace.
type memStore struct {
	txMu sync.Mutex

	mu           sync.RWMutex
	stations     []model.Station
	trains       map[string]model.Train
	stops        map[string]model.StopTime
	seats        []model.Seat
	distances    []model.DistanceFare
	multipliers  []model.FareMultiplier
	reservations map[int64]model.Reservation
	claims       []model.SeatReservation
	users        map[int64]model.User
	nextID       int64

	commitErr error
}

func newMemStore() *memStore {
	return &memStore{
		trains:       map[string]model.Train{},
		stops:        map[string]model.StopTime{},
		reservations: map[int64]model.Reservation{},
		users:        map[int64]model.User{},
	}
}

func trainKeyString(k model.TrainKey) string {
	return ServiceDate(k.Date).Format(DateLayout) + "/" + k.TrainClass + "/" + k.TrainName
}

func (s *memStore) addTrain(t model.Train) { s.trains[trainKeyString(t.Key())] = t }

func (s *memStore) addStop(k model.TrainKey, station, dep, arr string) {
	s.stops[trainKeyString(k)+"@"+station] = model.StopTime{Departure: dep, Arrival: arr}
}

func (s *memStore) reservationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reservations)
}

func (s *memStore) Stations(context.Context) ([]model.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Station(nil), s.stations...), nil
}

func (s *memStore) Train(_ context.Context, key model.TrainKey) (model.Train, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trains[trainKeyString(key)]
	if !ok {
		return model.Train{}, ErrNotFound
	}
	return t, nil
}

func (s *memStore) Trains(_ context.Context, date time.Time, classes []string, inbound bool) ([]model.Train, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := ServiceDate(date).Format(DateLayout)
	var out []model.Train
	for _, t := range s.trains {
		if ServiceDate(t.Date).Format(DateLayout) == day && t.IsInbound == inbound && containsClass(classes, t.TrainClass) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureAt == out[j].DepartureAt {
			return out[i].TrainName < out[j].TrainName
		}
		return out[i].DepartureAt < out[j].DepartureAt
	})
	return out, nil
}

func (s *memStore) StopTime(_ context.Context, key model.TrainKey, station string) (model.StopTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stops[trainKeyString(key)+"@"+station]
	if !ok {
		return model.StopTime{}, ErrNotFound
	}
	return st, nil
}

func (s *memStore) filterSeats(keep func(model.Seat) bool) []model.Seat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Seat
	for _, seat := range s.seats {
		if keep(seat) {
			out = append(out, seat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CarNumber != b.CarNumber {
			return a.CarNumber < b.CarNumber
		}
		if a.SeatRow != b.SeatRow {
			return a.SeatRow < b.SeatRow
		}
		return a.SeatColumn < b.SeatColumn
	})
	return out
}

func (s *memStore) Seats(_ context.Context, trainClass, seatClass string, smoking bool) ([]model.Seat, error) {
	return s.filterSeats(func(seat model.Seat) bool {
		return seat.TrainClass == trainClass && seat.SeatClass == seatClass && seat.IsSmokingSeat == smoking
	}), nil
}

func (s *memStore) CarSeats(_ context.Context, trainClass string, car int) ([]model.Seat, error) {
	return s.filterSeats(func(seat model.Seat) bool {
		return seat.TrainClass == trainClass && seat.CarNumber == car
	}), nil
}

func (s *memStore) Cars(_ context.Context, trainClass string) ([]Car, error) {
	seen := map[int]bool{}
	var out []Car
	for _, seat := range s.filterSeats(func(seat model.Seat) bool { return seat.TrainClass == trainClass }) {
		if !seen[seat.CarNumber] {
			seen[seat.CarNumber] = true
			out = append(out, Car{CarNumber: seat.CarNumber, SeatClass: seat.SeatClass})
		}
	}
	return out, nil
}

func (s *memStore) DistanceFares(context.Context) ([]model.DistanceFare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DistanceFare(nil), s.distances...), nil
}

func (s *memStore) FareMultipliers(_ context.Context, trainClass, seatClass string) ([]model.FareMultiplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.FareMultiplier
	for _, m := range s.multipliers {
		if m.TrainClass == trainClass && m.SeatClass == seatClass {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) Reservations(_ context.Context, key model.TrainKey) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if trainKeyString(r.TrainKey()) == trainKeyString(key) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) SeatReservations(_ context.Context, ids []int64) ([]model.SeatReservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []model.SeatReservation
	for _, c := range s.claims {
		if want[c.ReservationID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) UserReservations(_ context.Context, userID int64) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) Reservation(_ context.Context, id, userID int64) (model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok || r.UserID != userID {
		return model.Reservation{}, ErrNotFound
	}
	return r, nil
}

func (s *memStore) Begin(context.Context) (Tx, error) {
	s.txMu.Lock()
	return &memTx{memStore: s}, nil
}

type memTx struct {
	*memStore
	ops  []func()
	done bool
}

func (tx *memTx) LockTrain(ctx context.Context, key model.TrainKey) (model.Train, error) {
	return tx.Train(ctx, key)
}

func (tx *memTx) LockReservations(ctx context.Context, key model.TrainKey) ([]model.Reservation, error) {
	return tx.Reservations(ctx, key)
}

func (tx *memTx) LockSeatReservations(ctx context.Context, id int64) ([]model.SeatReservation, error) {
	return tx.SeatReservations(ctx, []int64{id})
}

func (tx *memTx) LockReservation(ctx context.Context, id, userID int64) (model.Reservation, error) {
	return tx.Reservation(ctx, id, userID)
}

func (tx *memTx) LockReservationByID(_ context.Context, id int64) (model.Reservation, error) {
	tx.mu.RLock()
	defer tx.mu.RUnlock()
	r, ok := tx.reservations[id]
	if !ok {
		return model.Reservation{}, ErrNotFound
	}
	return r, nil
}

func (tx *memTx) User(_ context.Context, id int64) (model.User, error) {
	tx.mu.RLock()
	defer tx.mu.RUnlock()
	u, ok := tx.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (tx *memTx) CreateReservation(_ context.Context, r *model.Reservation) error {
	tx.mu.Lock()
	tx.nextID++
	r.ID = tx.nextID
	tx.mu.Unlock()
	row := *r
	tx.ops = append(tx.ops, func() { tx.reservations[row.ID] = row })
	return nil
}

func (tx *memTx) CreateSeatReservations(_ context.Context, seats []model.SeatReservation) error {
	rows := append([]model.SeatReservation(nil), seats...)
	tx.ops = append(tx.ops, func() { tx.claims = append(tx.claims, rows...) })
	return nil
}

func (tx *memTx) MarkPaid(_ context.Context, id int64, paymentID string) error {
	tx.ops = append(tx.ops, func() {
		r := tx.reservations[id]
		r.Status = model.StatusDone
		r.PaymentID = &paymentID
		tx.reservations[id] = r
	})
	return nil
}

func (tx *memTx) SetStatus(_ context.Context, id int64, status string) error {
	tx.ops = append(tx.ops, func() {
		r := tx.reservations[id]
		r.Status = status
		tx.reservations[id] = r
	})
	return nil
}

func (tx *memTx) DeleteReservation(_ context.Context, id int64) error {
	tx.ops = append(tx.ops, func() {
		delete(tx.reservations, id)
		kept := tx.claims[:0]
		for _, c := range tx.claims {
			if c.ReservationID != id {
				kept = append(kept, c)
			}
		}
		tx.claims = kept
	})
	return nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true
	defer tx.txMu.Unlock()
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.mu.Lock()
	for _, op := range tx.ops {
		op()
	}
	tx.mu.Unlock()
	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.txMu.Unlock()
	return nil
}

// fakePayments records charges and refunds.
type fakePayments struct {
	mu        sync.Mutex
	charges   []ChargeRequest
	refunds   []string
	chargeErr error
	refundErr error
}

func (p *fakePayments) Charge(_ context.Context, req ChargeRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chargeErr != nil {
		return "", p.chargeErr
	}
	p.charges = append(p.charges, req)
	return fmt.Sprintf("pay-%d", len(p.charges)), nil
}

func (p *fakePayments) Refund(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refundErr != nil {
		return p.refundErr
	}
	p.refunds = append(p.refunds, id)
	return nil
}
