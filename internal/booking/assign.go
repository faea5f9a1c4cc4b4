package booking

import "github.com/iliyamo/train-seat-reservation/internal/model"

// DefaultMaxCarNumber is the highest car number scanned by the seat search.
const DefaultMaxCarNumber = 16

// Assignment is the outcome of a successful seat search: n seats that all
// sit in the same car.
type Assignment struct {
	CarNumber int
	Seats     []model.SeatPosition
}

// AssignSeats finds n free seats in a single car, scanning cars 1..maxCar in
// order.  free must be in seat master order.  A non-empty column is a soft
// preference: the first free seat in that column of a car is taken first
// when there is one, and the rest of the party fills any other free seat.
func AssignSeats(free []model.Seat, maxCar, n int, column string) (Assignment, bool) {
	if n <= 0 {
		return Assignment{}, false
	}
	byCar := make(map[int][]model.Seat)
	for _, s := range free {
		byCar[s.CarNumber] = append(byCar[s.CarNumber], s)
	}
	for car := 1; car <= maxCar; car++ {
		seats := byCar[car]
		if len(seats) < n {
			continue
		}
		anchor := -1
		if column != "" {
			for i, s := range seats {
				if s.SeatColumn == column {
					anchor = i
					break
				}
			}
		}
		picks := make([]model.SeatPosition, 0, n)
		if anchor >= 0 {
			picks = append(picks, seats[anchor].Position())
		}
		for i, s := range seats {
			if len(picks) == n {
				break
			}
			if i == anchor {
				continue
			}
			picks = append(picks, s.Position())
		}
		if len(picks) == n {
			return Assignment{CarNumber: car, Seats: picks}, true
		}
	}
	return Assignment{}, false
}
