package model

// Station is a stop on the line.  Stations are totally ordered by
// Distance, which is the position of the station along the full line.
//
// Fields:
//  ID                – stable ordering key.
//  Name              – unique station name.
//  Distance          – position along the line (monotonic with ID).
//  IsStopExpress     – whether express trains stop here.
//  IsStopSemiExpress – whether semi-express trains stop here.
//  IsStopLocal       – whether local trains stop here.
type Station struct {
	ID                int64   `json:"id"`                   // station_master.id
	Name              string  `json:"name"`                 // station_master.name
	Distance          float64 `json:"-"`                    // station_master.distance
	IsStopExpress     bool    `json:"is_stop_express"`      // station_master.is_stop_express
	IsStopSemiExpress bool    `json:"is_stop_semi_express"` // station_master.is_stop_semi_express
	IsStopLocal       bool    `json:"is_stop_local"`        // station_master.is_stop_local
}

// Stops reports whether a train of the given class stops at the station.
func (s Station) Stops(trainClass string) bool {
	switch trainClass {
	case TrainClassExpress:
		return s.IsStopExpress
	case TrainClassSemiExpress:
		return s.IsStopSemiExpress
	case TrainClassLocal:
		return s.IsStopLocal
	}
	return false
}
