package booking

import (
	"sort"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// Line is the full station list ordered by distance.  Positions returned
// by a Line are indexes in that ordering and are the coordinates used by
// segment arithmetic.
type Line struct {
	stations []model.Station
	index    map[string]int
}

// NewLine builds a Line from master data in any order.
func NewLine(stations []model.Station) *Line {
	sorted := make([]model.Station, len(stations))
	copy(sorted, stations)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Distance == sorted[j].Distance {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Distance < sorted[j].Distance
	})
	idx := make(map[string]int, len(sorted))
	for i, s := range sorted {
		idx[s.Name] = i
	}
	return &Line{stations: sorted, index: idx}
}

// Stations returns the stations in distance order.
func (l *Line) Stations() []model.Station { return l.stations }

// Station looks up a station by name.
func (l *Line) Station(name string) (model.Station, bool) {
	i, ok := l.index[name]
	if !ok {
		return model.Station{}, false
	}
	return l.stations[i], true
}

// Position returns the index of the named station in distance order.
func (l *Line) Position(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// IsInbound derives the travel direction of a trip.
func IsInbound(from, to model.Station) bool {
	return from.Distance > to.Distance
}

// UsableTrainClasses returns the train classes that stop at both stations,
// fastest first.
func UsableTrainClasses(from, to model.Station) []string {
	out := make([]string, 0, len(model.TrainClasses))
	for _, tc := range model.TrainClasses {
		if from.Stops(tc) && to.Stops(tc) {
			out = append(out, tc)
		}
	}
	return out
}

func containsClass(classes []string, c string) bool {
	for _, v := range classes {
		if v == c {
			return true
		}
	}
	return false
}

// Serves reports whether the train passes through from and then to along
// its own direction of travel, between its first and last station.
func (l *Line) Serves(train model.Train, from, to string) bool {
	start, ok1 := l.Position(train.StartStation)
	last, ok2 := l.Position(train.LastStation)
	f, ok3 := l.Position(from)
	t, ok4 := l.Position(to)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	if train.IsInbound {
		// travel order is decreasing position
		return start >= f && f > t && t >= last
	}
	return start <= f && f < t && t <= last
}

// Segment resolves a trip to positions on the line.
func (l *Line) Segment(from, to string, inbound bool) (Segment, bool) {
	f, ok1 := l.Position(from)
	t, ok2 := l.Position(to)
	if !ok1 || !ok2 {
		return Segment{}, false
	}
	return Segment{Dep: f, Arr: t, Inbound: inbound}, true
}
