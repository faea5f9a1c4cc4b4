// Package booking is the seat-inventory and booking engine.  It resolves
// trips against the station line, computes availability and fares, assigns
// seats and drives the reservation state machine on top of a transactional
// Store.
package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/queue"
)

// DefaultSearchLimit caps the number of trains returned by a search.
const DefaultSearchLimit = 10

// Options tune the engine.
type Options struct {
	Window       Window
	SearchLimit  int
	MaxCarNumber int
}

// Engine implements the booking operations.  It holds no mutable state of
// its own; every operation reads from or opens a transaction on the store.
type Engine struct {
	store    Store
	payments PaymentGateway
	events   EventPublisher
	log      *zap.SugaredLogger
	opts     Options
	now      func() time.Time
}

// NewEngine wires an engine.  A nil publisher discards events and a nil
// logger disables logging.
func NewEngine(store Store, payments PaymentGateway, events EventPublisher, log *zap.SugaredLogger, opts Options) *Engine {
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.MaxCarNumber <= 0 {
		opts.MaxCarNumber = DefaultMaxCarNumber
	}
	return &Engine{store: store, payments: payments, events: events, log: log, opts: opts, now: time.Now}
}

// storeErr classifies a store failure.  Lock conflicts are reported to the
// caller as a conflict so the request can be retried.
func storeErr(err error, format string, args ...any) error {
	if errors.Is(err, ErrLockConflict) {
		return conflictErr(err, format, args...)
	}
	return internalErr(err, format, args...)
}

// Stations lists the line in distance order.
func (e *Engine) Stations(ctx context.Context) ([]model.Station, error) {
	stations, err := e.store.Stations(ctx)
	if err != nil {
		return nil, storeErr(err, "load stations")
	}
	return NewLine(stations).Stations(), nil
}

func resolveTrip(line *Line, fromName, toName string) (model.Station, model.Station, error) {
	from, ok := line.Station(fromName)
	if !ok {
		return model.Station{}, model.Station{}, validationErr("unknown station %q", fromName)
	}
	to, ok := line.Station(toName)
	if !ok {
		return model.Station{}, model.Station{}, validationErr("unknown station %q", toName)
	}
	if from.Name == to.Name {
		return model.Station{}, model.Station{}, validationErr("departure and arrival must differ")
	}
	return from, to, nil
}

// resolveLeg checks that train can carry a passenger from fromName to
// toName: the class stops at both stations, the trip runs in the train's
// direction and lies within its routed range.
func resolveLeg(line *Line, train model.Train, fromName, toName string) (Segment, error) {
	from, to, err := resolveTrip(line, fromName, toName)
	if err != nil {
		return Segment{}, err
	}
	if !containsClass(UsableTrainClasses(from, to), train.TrainClass) {
		return Segment{}, routeErr("%s trains do not stop at both %s and %s", train.TrainClass, from.Name, to.Name)
	}
	inbound := IsInbound(from, to)
	if inbound != train.IsInbound {
		return Segment{}, routeErr("train %s runs in the opposite direction", train.TrainName)
	}
	if !line.Serves(train, from.Name, to.Name) {
		return Segment{}, routeErr("train %s does not run between %s and %s", train.TrainName, from.Name, to.Name)
	}
	seg, _ := line.Segment(from.Name, to.Name, inbound)
	return seg, nil
}

// SearchTrains lists trains departing after q.UseAt that serve the trip,
// with seat availability tiers and party fares per seat class.
func (e *Engine) SearchTrains(ctx context.Context, q SearchQuery) ([]TrainOffer, error) {
	if q.UseAt.IsZero() {
		return nil, validationErr("use_at is required")
	}
	if q.Adult < 0 || q.Child < 0 {
		return nil, validationErr("passenger counts must not be negative")
	}
	if q.TrainClass != "" && !model.IsTrainClass(q.TrainClass) {
		return nil, validationErr("unknown train class %q", q.TrainClass)
	}
	date := ServiceDate(q.UseAt)
	if !e.opts.Window.Contains(date) {
		return nil, validationErr("date %s is outside the booking window", date.Format(DateLayout))
	}

	stations, err := e.store.Stations(ctx)
	if err != nil {
		return nil, storeErr(err, "load stations")
	}
	line := NewLine(stations)
	from, to, err := resolveTrip(line, q.From, q.To)
	if err != nil {
		return nil, err
	}
	inbound := IsInbound(from, to)
	classes := UsableTrainClasses(from, to)
	if q.TrainClass != "" {
		if !containsClass(classes, q.TrainClass) {
			return []TrainOffer{}, nil
		}
		classes = []string{q.TrainClass}
	}
	if len(classes) == 0 {
		return []TrainOffer{}, nil
	}

	trains, err := e.store.Trains(ctx, date, classes, inbound)
	if err != nil {
		return nil, storeErr(err, "load trains")
	}
	fares, err := loadFareTable(ctx, e.store)
	if err != nil {
		return nil, storeErr(err, "load distance fares")
	}
	seg, _ := line.Segment(from.Name, to.Name, inbound)

	offers := make([]TrainOffer, 0, e.opts.SearchLimit)
	for _, t := range trains {
		if len(offers) >= e.opts.SearchLimit {
			break
		}
		if !line.Serves(t, from.Name, to.Name) {
			continue
		}
		dep, err := e.store.StopTime(ctx, t.Key(), from.Name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr(err, "load timetable for %s", t.TrainName)
		}
		arr, err := e.store.StopTime(ctx, t.Key(), to.Name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr(err, "load timetable for %s", t.TrainName)
		}
		departAt, err := departureInstant(date, dep.Departure)
		if err != nil {
			return nil, internalErr(err, "bad departure time %q for %s", dep.Departure, t.TrainName)
		}
		if !departAt.After(q.UseAt) {
			continue
		}

		offer := TrainOffer{
			TrainClass:    t.TrainClass,
			TrainName:     t.TrainName,
			Start:         t.StartStation,
			Last:          t.LastStation,
			Departure:     from.Name,
			Arrival:       to.Name,
			DepartureTime: dep.Departure,
			ArrivalTime:   arr.Arrival,
		}
		if offer.SeatAvailability, err = e.availabilitySummary(ctx, line, t, seg); err != nil {
			return nil, err
		}
		if offer.Fare, err = e.fareSummary(ctx, fares, date, from, to, t.TrainClass, q.Adult, q.Child); err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func (e *Engine) availabilitySummary(ctx context.Context, line *Line, t model.Train, seg Segment) (map[string]string, error) {
	kinds := []struct {
		key     string
		class   string
		smoking bool
	}{
		{KeyPremium, model.SeatClassPremium, false},
		{KeyPremiumSmoke, model.SeatClassPremium, true},
		{KeyReserved, model.SeatClassReserved, false},
		{KeyReservedSmoke, model.SeatClassReserved, true},
	}
	out := map[string]string{KeyNonReserved: TierPlenty}
	for _, k := range kinds {
		free, err := AvailableSeats(ctx, e.store, line, t, seg, k.class, k.smoking)
		if err != nil {
			return nil, storeErr(err, "compute availability for %s", t.TrainName)
		}
		out[k.key] = Tier(len(free))
	}
	return out, nil
}

func (e *Engine) fareSummary(ctx context.Context, fares *fareTable, date time.Time, from, to model.Station, trainClass string, adult, child int) (map[string]int, error) {
	out := make(map[string]int, 5)
	for _, sc := range []string{model.SeatClassPremium, model.SeatClassReserved, model.SeatClassNonReserved} {
		fare, err := fares.adultFare(ctx, e.store, date, from, to, trainClass, sc)
		if err != nil {
			return nil, storeErr(err, "compute %s fare", sc)
		}
		total := TotalFare(fare, adult, child)
		switch sc {
		case model.SeatClassPremium:
			out[KeyPremium], out[KeyPremiumSmoke] = total, total
		case model.SeatClassReserved:
			out[KeyReserved], out[KeyReservedSmoke] = total, total
		default:
			out[KeyNonReserved] = total
		}
	}
	return out, nil
}

// SeatMap returns one car of a train with the occupancy of each seat for
// the requested leg.
func (e *Engine) SeatMap(ctx context.Context, q SeatMapQuery) (CarInformation, error) {
	if !model.IsTrainClass(q.TrainClass) {
		return CarInformation{}, validationErr("unknown train class %q", q.TrainClass)
	}
	if q.TrainName == "" {
		return CarInformation{}, validationErr("train name is required")
	}
	if q.CarNumber < 1 {
		return CarInformation{}, validationErr("car number must be positive")
	}
	date := ServiceDate(q.Date)
	if !e.opts.Window.Contains(date) {
		return CarInformation{}, validationErr("date %s is outside the booking window", date.Format(DateLayout))
	}
	key := model.TrainKey{Date: date, TrainClass: q.TrainClass, TrainName: q.TrainName}
	train, err := e.store.Train(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return CarInformation{}, validationErr("unknown train %s %s on %s", q.TrainClass, q.TrainName, date.Format(DateLayout))
	}
	if err != nil {
		return CarInformation{}, storeErr(err, "load train")
	}
	stations, err := e.store.Stations(ctx)
	if err != nil {
		return CarInformation{}, storeErr(err, "load stations")
	}
	line := NewLine(stations)
	seg, err := resolveLeg(line, train, q.From, q.To)
	if err != nil {
		return CarInformation{}, err
	}

	seats, err := e.store.CarSeats(ctx, train.TrainClass, q.CarNumber)
	if err != nil {
		return CarInformation{}, storeErr(err, "load car seats")
	}
	if len(seats) == 0 {
		return CarInformation{}, validationErr("train class %s has no car %d", train.TrainClass, q.CarNumber)
	}
	existing, err := e.store.Reservations(ctx, key)
	if err != nil {
		return CarInformation{}, storeErr(err, "load reservations")
	}
	claimed, err := overlappingClaims(ctx, e.store, line, train, seg, existing)
	if err != nil {
		return CarInformation{}, storeErr(err, "load seat claims")
	}
	cars, err := e.store.Cars(ctx, train.TrainClass)
	if err != nil {
		return CarInformation{}, storeErr(err, "load cars")
	}

	info := CarInformation{
		Date:       date.Format(DateLayout),
		TrainClass: train.TrainClass,
		TrainName:  train.TrainName,
		CarNumber:  q.CarNumber,
		Seats:      make([]SeatInformation, 0, len(seats)),
		Cars:       cars,
	}
	for _, s := range seats {
		_, occupied := claimed[s.Position()]
		info.Seats = append(info.Seats, SeatInformation{
			Row:           s.SeatRow,
			Column:        s.SeatColumn,
			Class:         s.SeatClass,
			IsSmokingSeat: s.IsSmokingSeat,
			IsOccupied:    occupied,
		})
	}
	return info, nil
}

func (e *Engine) validateReserve(req ReserveRequest) error {
	if !model.IsTrainClass(req.TrainClass) {
		return validationErr("unknown train class %q", req.TrainClass)
	}
	if req.TrainName == "" {
		return validationErr("train name is required")
	}
	if !model.IsSeatClass(req.SeatClass) {
		return validationErr("unknown seat class %q", req.SeatClass)
	}
	if req.Adult < 0 || req.Child < 0 {
		return validationErr("passenger counts must not be negative")
	}
	n := req.Passengers()
	if n < 1 {
		return validationErr("at least one passenger is required")
	}
	if !e.opts.Window.Contains(req.Date) {
		return validationErr("date %s is outside the booking window", ServiceDate(req.Date).Format(DateLayout))
	}
	if len(req.Seats) == 0 {
		return nil
	}
	if req.SeatClass == model.SeatClassNonReserved {
		return validationErr("non-reserved tickets cannot pin seats")
	}
	if req.CarNumber < 1 {
		return validationErr("car number is required when seats are given")
	}
	if len(req.Seats) != n {
		return validationErr("%d seats given for %d passengers", len(req.Seats), n)
	}
	seen := make(map[RequestSeat]struct{}, len(req.Seats))
	for _, s := range req.Seats {
		if s.Row < 1 || s.Column == "" {
			return validationErr("seat row and column are required")
		}
		if _, dup := seen[s]; dup {
			return validationErr("seat %d%s requested twice", s.Row, s.Column)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// Reserve books seats for a party on one leg of a train.  The reservation
// is created in the requesting state and must be paid with CommitPayment.
func (e *Engine) Reserve(ctx context.Context, userID int64, req ReserveRequest) (ReserveResult, error) {
	if err := e.validateReserve(req); err != nil {
		return ReserveResult{}, err
	}
	date := ServiceDate(req.Date)
	key := model.TrainKey{Date: date, TrainClass: req.TrainClass, TrainName: req.TrainName}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return ReserveResult{}, storeErr(err, "begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	train, err := tx.LockTrain(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return ReserveResult{}, validationErr("unknown train %s %s on %s", req.TrainClass, req.TrainName, date.Format(DateLayout))
	}
	if err != nil {
		return ReserveResult{}, storeErr(err, "lock train")
	}
	stations, err := tx.Stations(ctx)
	if err != nil {
		return ReserveResult{}, storeErr(err, "load stations")
	}
	line := NewLine(stations)
	seg, err := resolveLeg(line, train, req.Departure, req.Arrival)
	if err != nil {
		return ReserveResult{}, err
	}
	from, _ := line.Station(req.Departure)
	to, _ := line.Station(req.Arrival)

	existing, err := tx.LockReservations(ctx, key)
	if err != nil {
		return ReserveResult{}, storeErr(err, "lock reservations")
	}
	claims, car, err := e.resolveSeats(ctx, tx, line, train, seg, req)
	if err != nil {
		return ReserveResult{}, err
	}
	if err := checkConflicts(ctx, tx, line, train, seg, existing, claims, req.SeatClass); err != nil {
		return ReserveResult{}, err
	}

	fares, err := loadFareTable(ctx, tx)
	if err != nil {
		return ReserveResult{}, storeErr(err, "load distance fares")
	}
	fare, err := fares.adultFare(ctx, tx, date, from, to, train.TrainClass, req.SeatClass)
	if err != nil {
		return ReserveResult{}, storeErr(err, "compute fare")
	}
	user, err := tx.User(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ReserveResult{}, authErr("unknown user")
	}
	if err != nil {
		return ReserveResult{}, storeErr(err, "load user")
	}

	res := model.Reservation{
		UserID:     user.ID,
		Date:       date,
		TrainClass: train.TrainClass,
		TrainName:  train.TrainName,
		CarNumber:  car,
		SeatClass:  req.SeatClass,
		Departure:  from.Name,
		Arrival:    to.Name,
		Status:     model.StatusRequesting,
		Adult:      req.Adult,
		Child:      req.Child,
		Amount:     TotalFare(fare, req.Adult, req.Child),
		CreatedAt:  e.now(),
	}
	if err := tx.CreateReservation(ctx, &res); err != nil {
		return ReserveResult{}, storeErr(err, "insert reservation")
	}
	for i := range claims {
		claims[i].ReservationID = res.ID
	}
	if err := tx.CreateSeatReservations(ctx, claims); err != nil {
		return ReserveResult{}, storeErr(err, "insert seat reservations")
	}
	if err := tx.Commit(); err != nil {
		return ReserveResult{}, storeErr(err, "commit reservation")
	}
	committed = true

	e.log.Infow("reservation created",
		"reservation_id", res.ID, "user_id", user.ID, "train", train.TrainName,
		"date", date.Format(DateLayout), "seat_class", req.SeatClass, "amount", res.Amount)
	return ReserveResult{ReservationID: res.ID, Amount: res.Amount, CarNumber: car, Seats: claims}, nil
}

// resolveSeats produces the seat claims of a request and the car they sit
// in.  Non-reserved parties get one placeholder claim per passenger.
func (e *Engine) resolveSeats(ctx context.Context, tx Tx, line *Line, train model.Train, seg Segment, req ReserveRequest) ([]model.SeatReservation, int, error) {
	n := req.Passengers()
	switch {
	case req.SeatClass == model.SeatClassNonReserved:
		return make([]model.SeatReservation, n), 0, nil

	case len(req.Seats) == 0:
		free, err := AvailableSeats(ctx, tx, line, train, seg, req.SeatClass, req.IsSmokingSeat)
		if err != nil {
			return nil, 0, storeErr(err, "compute availability")
		}
		a, ok := AssignSeats(free, e.opts.MaxCarNumber, n, req.Column)
		if !ok {
			return nil, 0, availabilityErr("no car has %d free %s seats", n, req.SeatClass)
		}
		claims := make([]model.SeatReservation, 0, n)
		for _, p := range a.Seats {
			claims = append(claims, model.SeatReservation{CarNumber: p.CarNumber, SeatRow: p.Row, SeatColumn: p.Column})
		}
		return claims, a.CarNumber, nil
	}

	master, err := tx.CarSeats(ctx, train.TrainClass, req.CarNumber)
	if err != nil {
		return nil, 0, storeErr(err, "load car seats")
	}
	byPos := make(map[model.SeatPosition]model.Seat, len(master))
	for _, s := range master {
		byPos[s.Position()] = s
	}
	claims := make([]model.SeatReservation, 0, n)
	for _, rs := range req.Seats {
		p := model.SeatPosition{CarNumber: req.CarNumber, Row: rs.Row, Column: rs.Column}
		s, ok := byPos[p]
		if !ok || s.SeatClass != req.SeatClass || s.IsSmokingSeat != req.IsSmokingSeat {
			return nil, 0, validationErr("seat %d%s in car %d is not a matching %s seat", rs.Row, rs.Column, req.CarNumber, req.SeatClass)
		}
		claims = append(claims, model.SeatReservation{CarNumber: p.CarNumber, SeatRow: p.Row, SeatColumn: p.Column})
	}
	return claims, req.CarNumber, nil
}

// checkConflicts locks the seat claims of every overlapping reservation and
// fails when one of them holds a seat in claims.
func checkConflicts(ctx context.Context, tx Tx, line *Line, train model.Train, seg Segment, existing []model.Reservation, claims []model.SeatReservation, seatClass string) error {
	if seatClass == model.SeatClassNonReserved {
		return nil
	}
	wanted := make(map[model.SeatPosition]struct{}, len(claims))
	for _, c := range claims {
		wanted[c.Position()] = struct{}{}
	}
	for _, r := range existing {
		if r.SeatClass == model.SeatClassNonReserved {
			continue
		}
		other, ok := line.Segment(r.Departure, r.Arrival, train.IsInbound)
		if !ok || !seg.Overlaps(other) {
			continue
		}
		held, err := tx.LockSeatReservations(ctx, r.ID)
		if err != nil {
			return storeErr(err, "lock seat reservations of %d", r.ID)
		}
		for _, h := range held {
			if _, clash := wanted[h.Position()]; clash {
				return conflictErr(nil, "seat %s is already reserved", SeatLabel(h))
			}
		}
	}
	return nil
}

// CommitPayment charges the card for a requesting reservation and marks it
// done.  Calling it again for a done reservation is a no-op that reports the
// existing payment.
func (e *Engine) CommitPayment(ctx context.Context, userID, reservationID int64, cardToken string) (CommitResult, error) {
	if cardToken == "" {
		return CommitResult{}, validationErr("card token is required")
	}
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return CommitResult{}, storeErr(err, "begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.LockReservation(ctx, reservationID, userID)
	if errors.Is(err, ErrNotFound) {
		return CommitResult{}, notFoundErr("reservation %d not found", reservationID)
	}
	if err != nil {
		return CommitResult{}, storeErr(err, "lock reservation")
	}
	switch res.Status {
	case model.StatusDone:
		out := CommitResult{ReservationID: res.ID, Status: res.Status, AlreadyDone: true}
		if res.PaymentID != nil {
			out.PaymentID = *res.PaymentID
		}
		return out, nil
	case model.StatusRejected:
		return CommitResult{}, stateErr("reservation %d was rejected", reservationID)
	}

	paymentID, err := e.payments.Charge(ctx, ChargeRequest{ReservationID: res.ID, CardToken: cardToken, Amount: res.Amount})
	if err != nil {
		e.log.Warnw("payment charge failed", "reservation_id", res.ID, "error", err)
		return CommitResult{}, upstreamErr(err, "charge reservation %d", res.ID)
	}
	if err := tx.MarkPaid(ctx, res.ID, paymentID); err != nil {
		e.compensate(ctx, res.ID, paymentID)
		return CommitResult{}, storeErr(err, "mark reservation %d paid", res.ID)
	}
	if err := tx.Commit(); err != nil {
		e.compensate(ctx, res.ID, paymentID)
		return CommitResult{}, storeErr(err, "commit payment")
	}
	committed = true

	res.Status = model.StatusDone
	res.PaymentID = &paymentID
	e.log.Infow("reservation paid", "reservation_id", res.ID, "user_id", userID, "payment_id", paymentID)
	e.publish(ctx, queue.EventReservationCommitted, res)
	return CommitResult{ReservationID: res.ID, PaymentID: paymentID, Status: res.Status}, nil
}

// compensate refunds a charge whose reservation update did not commit.
func (e *Engine) compensate(ctx context.Context, reservationID int64, paymentID string) {
	if err := e.payments.Refund(context.WithoutCancel(ctx), paymentID); err != nil {
		e.log.Errorw("refund after failed commit did not succeed",
			"reservation_id", reservationID, "payment_id", paymentID, "error", err)
		return
	}
	e.log.Warnw("charge refunded after failed commit", "reservation_id", reservationID, "payment_id", paymentID)
}

// Cancel deletes a reservation and its seat claims.  Paid reservations are
// refunded first and stay untouched when the refund fails.
func (e *Engine) Cancel(ctx context.Context, userID, reservationID int64) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return storeErr(err, "begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.LockReservation(ctx, reservationID, userID)
	if errors.Is(err, ErrNotFound) {
		return notFoundErr("reservation %d not found", reservationID)
	}
	if err != nil {
		return storeErr(err, "lock reservation")
	}
	seats, err := tx.SeatReservations(ctx, []int64{res.ID})
	if err != nil {
		return storeErr(err, "load seat reservations")
	}
	switch res.Status {
	case model.StatusRejected:
		return stateErr("reservation %d was rejected and cannot be cancelled", reservationID)
	case model.StatusDone:
		if err := e.refund(ctx, res); err != nil {
			return err
		}
	}
	if err := tx.DeleteReservation(ctx, res.ID); err != nil {
		return e.afterRefundErr(res, storeErr(err, "delete reservation %d", res.ID))
	}
	if err := tx.Commit(); err != nil {
		return e.afterRefundErr(res, storeErr(err, "commit cancel"))
	}
	committed = true

	e.log.Infow("reservation cancelled", "reservation_id", res.ID, "user_id", userID, "status", res.Status)
	e.publishWithSeats(ctx, queue.EventReservationCancelled, res, seats)
	return nil
}

// Reject is the administrative transition to the terminal rejected state.
// Paid reservations are refunded first.
func (e *Engine) Reject(ctx context.Context, reservationID int64) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return storeErr(err, "begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.LockReservationByID(ctx, reservationID)
	if errors.Is(err, ErrNotFound) {
		return notFoundErr("reservation %d not found", reservationID)
	}
	if err != nil {
		return storeErr(err, "lock reservation")
	}
	switch res.Status {
	case model.StatusRejected:
		return stateErr("reservation %d is already rejected", reservationID)
	case model.StatusDone:
		if err := e.refund(ctx, res); err != nil {
			return err
		}
	}
	if err := tx.SetStatus(ctx, res.ID, model.StatusRejected); err != nil {
		return e.afterRefundErr(res, storeErr(err, "reject reservation %d", res.ID))
	}
	if err := tx.Commit(); err != nil {
		return e.afterRefundErr(res, storeErr(err, "commit reject"))
	}
	committed = true

	res.Status = model.StatusRejected
	e.log.Infow("reservation rejected", "reservation_id", res.ID, "user_id", res.UserID)
	e.publish(ctx, queue.EventReservationRejected, res)
	return nil
}

func (e *Engine) refund(ctx context.Context, res model.Reservation) error {
	if res.PaymentID == nil || *res.PaymentID == "" {
		return internalErr(nil, "reservation %d is done without a payment id", res.ID)
	}
	if err := e.payments.Refund(ctx, *res.PaymentID); err != nil {
		e.log.Warnw("refund failed", "reservation_id", res.ID, "payment_id", *res.PaymentID, "error", err)
		return upstreamErr(err, "refund reservation %d", res.ID)
	}
	return nil
}

// afterRefundErr records a failure that happened after money was returned
// but before the row change committed.
func (e *Engine) afterRefundErr(res model.Reservation, err error) error {
	if res.Status == model.StatusDone {
		e.log.Errorw("reservation refunded but not updated", "reservation_id", res.ID, "error", err)
	}
	return err
}

func (e *Engine) publish(ctx context.Context, typ string, res model.Reservation) {
	seats, err := e.store.SeatReservations(ctx, []int64{res.ID})
	if err != nil {
		e.log.Warnw("load seats for event", "reservation_id", res.ID, "error", err)
	}
	e.publishWithSeats(ctx, typ, res, seats)
}

// publishWithSeats runs after the transaction has committed.  Delivery is
// best effort.
func (e *Engine) publishWithSeats(ctx context.Context, typ string, res model.Reservation, seats []model.SeatReservation) {
	ev := newEvent(typ, res, seats, e.now())
	if err := e.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		e.log.Warnw("publish event failed", "type", typ, "reservation_id", res.ID, "error", err)
	}
}

// ListReservations returns the caller's reservations with their seats.
func (e *Engine) ListReservations(ctx context.Context, userID int64) ([]ReservationDetail, error) {
	list, err := e.store.UserReservations(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "load reservations")
	}
	out := make([]ReservationDetail, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	seats, err := e.store.SeatReservations(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "load seat reservations")
	}
	byRes := make(map[int64][]model.SeatReservation, len(list))
	for _, s := range seats {
		byRes[s.ReservationID] = append(byRes[s.ReservationID], s)
	}
	for _, r := range list {
		s := byRes[r.ID]
		if s == nil {
			s = []model.SeatReservation{}
		}
		out = append(out, ReservationDetail{Reservation: r, Seats: s})
	}
	return out, nil
}

// ReservationDetail returns one of the caller's reservations.
func (e *Engine) ReservationDetail(ctx context.Context, userID, reservationID int64) (ReservationDetail, error) {
	r, err := e.store.Reservation(ctx, reservationID, userID)
	if errors.Is(err, ErrNotFound) {
		return ReservationDetail{}, notFoundErr("reservation %d not found", reservationID)
	}
	if err != nil {
		return ReservationDetail{}, storeErr(err, "load reservation")
	}
	seats, err := e.store.SeatReservations(ctx, []int64{r.ID})
	if err != nil {
		return ReservationDetail{}, storeErr(err, "load seat reservations")
	}
	if seats == nil {
		seats = []model.SeatReservation{}
	}
	return ReservationDetail{Reservation: r, Seats: seats}, nil
}
