package model

import "time"

// Train classes in order from fastest to slowest.
const (
	TrainClassExpress     = "express"
	TrainClassSemiExpress = "semi_express"
	TrainClassLocal       = "local"
)

// TrainClasses lists every known train class.
var TrainClasses = []string{TrainClassExpress, TrainClassSemiExpress, TrainClassLocal}

// IsTrainClass reports whether c names a known train class.
func IsTrainClass(c string) bool {
	for _, tc := range TrainClasses {
		if tc == c {
			return true
		}
	}
	return false
}

// TrainKey uniquely identifies a scheduled run.  It is also the locking
// scope for bookings: concurrent reservations on the same key serialize.
type TrainKey struct {
	Date       time.Time
	TrainClass string
	TrainName  string
}

// Train is one scheduled run of a train on a given date.
//
// Fields:
//  Date         – service date (midnight, Asia/Tokyo).
//  DepartureAt  – departure time from StartStation (HH:MM:SS).
//  TrainClass   – express, semi_express or local.
//  TrainName    – train name, unique per date and class.
//  StartStation – first station of the run.
//  LastStation  – terminal station of the run.
//  IsInbound    – true when the train travels in decreasing distance order.
type Train struct {
	Date         time.Time `json:"date"`          // train_master.date
	DepartureAt  string    `json:"departure_at"`  // train_master.departure_at
	TrainClass   string    `json:"train_class"`   // train_master.train_class
	TrainName    string    `json:"train_name"`    // train_master.train_name
	StartStation string    `json:"start_station"` // train_master.start_station
	LastStation  string    `json:"last_station"`  // train_master.last_station
	IsInbound    bool      `json:"is_inbound"`    // train_master.is_inbound
}

// Key returns the identity of the run.
func (t Train) Key() TrainKey {
	return TrainKey{Date: t.Date, TrainClass: t.TrainClass, TrainName: t.TrainName}
}

// StopTime is a timetable row for a train at a station.
type StopTime struct {
	Departure string // train_timetable_master.departure
	Arrival   string // train_timetable_master.arrival
}
