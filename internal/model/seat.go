package model

// Seat classes.  Non-reserved seats are free seating with no physical claim.
const (
	SeatClassPremium     = "premium"
	SeatClassReserved    = "reserved"
	SeatClassNonReserved = "non-reserved"
)

// IsSeatClass reports whether c names a known seat class.
func IsSeatClass(c string) bool {
	switch c {
	case SeatClassPremium, SeatClassReserved, SeatClassNonReserved:
		return true
	}
	return false
}

// Seat is a row of the seat master.  The seat map is defined per train
// class and car and is shared by every date.
//
// Fields:
//  TrainClass    – train class the seat map belongs to.
//  CarNumber     – car (carriage) number starting at 1.
//  SeatRow       – row within the car starting at 1.
//  SeatColumn    – column letter (A..E).
//  SeatClass     – premium, reserved or non-reserved.
//  IsSmokingSeat – smoking seat flag.
type Seat struct {
	TrainClass    string `json:"train_class"`     // seat_master.train_class
	CarNumber     int    `json:"car_number"`      // seat_master.car_number
	SeatRow       int    `json:"seat_row"`        // seat_master.seat_row
	SeatColumn    string `json:"seat_column"`     // seat_master.seat_column
	SeatClass     string `json:"seat_class"`      // seat_master.seat_class
	IsSmokingSeat bool   `json:"is_smoking_seat"` // seat_master.is_smoking_seat
}

// Position returns the physical location of the seat.
func (s Seat) Position() SeatPosition {
	return SeatPosition{CarNumber: s.CarNumber, Row: s.SeatRow, Column: s.SeatColumn}
}

// SeatPosition is the (car, row, column) triple that identifies a
// physical seat within a train class.
type SeatPosition struct {
	CarNumber int    `json:"car_number"`
	Row       int    `json:"row"`
	Column    string `json:"column"`
}
