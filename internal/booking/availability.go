package booking

import (
	"context"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// Availability tiers shown next to each seat class in search results.
const (
	TierNone    = "none"
	TierLimited = "limited"
	TierPlenty  = "plenty"
)

// Tier buckets a free seat count for display.
func Tier(free int) string {
	switch {
	case free <= 0:
		return TierNone
	case free < 10:
		return TierLimited
	default:
		return TierPlenty
	}
}

// overlappingClaims collects the seats claimed by reservations on train
// whose leg overlaps seg.  Non-reserved reservations hold no physical seat
// and are ignored.
func overlappingClaims(ctx context.Context, r Reader, line *Line, train model.Train, seg Segment, existing []model.Reservation) (map[model.SeatPosition]int64, error) {
	ids := make([]int64, 0, len(existing))
	for _, res := range existing {
		if res.SeatClass == model.SeatClassNonReserved {
			continue
		}
		other, ok := line.Segment(res.Departure, res.Arrival, train.IsInbound)
		if !ok {
			continue
		}
		if seg.Overlaps(other) {
			ids = append(ids, res.ID)
		}
	}
	claimed := make(map[model.SeatPosition]int64)
	if len(ids) == 0 {
		return claimed, nil
	}
	claims, err := r.SeatReservations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range claims {
		claimed[c.Position()] = c.ReservationID
	}
	return claimed, nil
}

// AvailableSeats returns the seats of the given class and smoking flag that
// no overlapping reservation on the train claims, in seat master order.
func AvailableSeats(ctx context.Context, r Reader, line *Line, train model.Train, seg Segment, seatClass string, smoking bool) ([]model.Seat, error) {
	seats, err := r.Seats(ctx, train.TrainClass, seatClass, smoking)
	if err != nil {
		return nil, err
	}
	existing, err := r.Reservations(ctx, train.Key())
	if err != nil {
		return nil, err
	}
	claimed, err := overlappingClaims(ctx, r, line, train, seg, existing)
	if err != nil {
		return nil, err
	}
	free := make([]model.Seat, 0, len(seats))
	for _, s := range seats {
		if _, taken := claimed[s.Position()]; !taken {
			free = append(free, s)
		}
	}
	return free, nil
}
