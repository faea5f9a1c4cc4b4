package booking

import (
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// Availability and fare keys used in search results.
const (
	KeyPremium       = "premium"
	KeyPremiumSmoke  = "premium_smoke"
	KeyReserved      = "reserved"
	KeyReservedSmoke = "reserved_smoke"
	KeyNonReserved   = "non_reserved"
)

// SearchQuery selects trains between two stations.
type SearchQuery struct {
	UseAt      time.Time
	From       string
	To         string
	TrainClass string // optional
	Adult      int
	Child      int
}

// TrainOffer is one search result.
type TrainOffer struct {
	TrainClass       string            `json:"train_class"`
	TrainName        string            `json:"train_name"`
	Start            string            `json:"start"`
	Last             string            `json:"last"`
	Departure        string            `json:"departure"`
	Arrival          string            `json:"arrival"`
	DepartureTime    string            `json:"departure_time"`
	ArrivalTime      string            `json:"arrival_time"`
	SeatAvailability map[string]string `json:"seat_availability"`
	Fare             map[string]int    `json:"seat_fare"`
}

// SeatMapQuery selects one car of a train for a leg.
type SeatMapQuery struct {
	Date       time.Time
	TrainClass string
	TrainName  string
	CarNumber  int
	From       string
	To         string
}

// SeatInformation is one seat of a car with its occupancy for the leg.
type SeatInformation struct {
	Row           int    `json:"row"`
	Column        string `json:"column"`
	Class         string `json:"class"`
	IsSmokingSeat bool   `json:"is_smoking_seat"`
	IsOccupied    bool   `json:"is_occupied"`
}

// CarInformation is the seat map of one car.
type CarInformation struct {
	Date       string            `json:"date"`
	TrainClass string            `json:"train_class"`
	TrainName  string            `json:"train_name"`
	CarNumber  int               `json:"car_number"`
	Seats      []SeatInformation `json:"seats"`
	Cars       []Car             `json:"cars"`
}

// RequestSeat pins one seat of the requested car.
type RequestSeat struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
}

// ReserveRequest is a booking request.  With no Seats a reserved or premium
// booking is resolved by the ambiguous seat search, in which case CarNumber
// is ignored and Column is an optional preference.
type ReserveRequest struct {
	Date          time.Time
	TrainClass    string
	TrainName     string
	CarNumber     int
	SeatClass     string
	IsSmokingSeat bool
	Departure     string
	Arrival       string
	Adult         int
	Child         int
	Column        string
	Seats         []RequestSeat
}

// Passengers is the party size.
func (r ReserveRequest) Passengers() int { return r.Adult + r.Child }

// ReserveResult is returned by a successful booking.
type ReserveResult struct {
	ReservationID int64                   `json:"reservation_id"`
	Amount        int                     `json:"amount"`
	CarNumber     int                     `json:"car_number"`
	Seats         []model.SeatReservation `json:"seats"`
}

// CommitResult is returned by CommitPayment.  AlreadyDone is set when the
// reservation had been paid by an earlier call.
type CommitResult struct {
	ReservationID int64  `json:"reservation_id"`
	PaymentID     string `json:"payment_id"`
	Status        string `json:"status"`
	AlreadyDone   bool   `json:"already_done"`
}

// ReservationDetail is a reservation together with its seat claims.
type ReservationDetail struct {
	model.Reservation
	Seats []model.SeatReservation `json:"seats"`
}
