package model

import "time"

// DistanceFare is one breakpoint of the distance fare table.  The fare
// applies to trips whose distance is at least Distance and below the next
// breakpoint.
type DistanceFare struct {
	Distance float64 `json:"distance"` // distance_fare_master.distance
	Fare     int     `json:"fare"`     // distance_fare_master.fare
}

// FareMultiplier scales the distance fare for a train class and seat class
// from StartDate onward.
type FareMultiplier struct {
	TrainClass string    `json:"train_class"`     // fare_master.train_class
	SeatClass  string    `json:"seat_class"`      // fare_master.seat_class
	StartDate  time.Time `json:"start_date"`      // fare_master.start_date
	Multiplier float64   `json:"fare_multiplier"` // fare_master.fare_multiplier
}
