package booking

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

var (
	errEmptyDistanceFares = errors.New("distance fare table is empty")
	errEmptyMultipliers   = errors.New("fare multiplier table is empty")
)

// DistanceFare looks up the base fare for a trip of the given length.  The
// table is a step function: the fare of the last breakpoint not exceeding
// distance applies.
func DistanceFare(table []model.DistanceFare, distance float64) (int, error) {
	if len(table) == 0 {
		return 0, errEmptyDistanceFares
	}
	sorted := make([]model.DistanceFare, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	fare := 0
	for _, df := range sorted {
		if df.Distance > distance {
			break
		}
		fare = df.Fare
	}
	return fare, nil
}

// SelectMultiplier picks the latest entry that has started on or before
// date.  When none has started yet the earliest entry applies.
func SelectMultiplier(table []model.FareMultiplier, date time.Time) (model.FareMultiplier, error) {
	if len(table) == 0 {
		return model.FareMultiplier{}, errEmptyMultipliers
	}
	sorted := make([]model.FareMultiplier, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })

	selected := sorted[0]
	day := ServiceDate(date)
	for _, m := range sorted {
		if ServiceDate(m.StartDate).After(day) {
			break
		}
		selected = m
	}
	return selected, nil
}

// AdultFare applies the multiplier and truncates to whole currency units.
func AdultFare(distanceFare int, multiplier float64) int {
	return int(math.Floor(float64(distanceFare) * multiplier))
}

// TotalFare prices a party.  Children pay half the adult fare, rounded down.
func TotalFare(adultFare, adult, child int) int {
	return adult*adultFare + child*(adultFare/2)
}

// fareTable caches the distance table for the duration of one request.
type fareTable struct {
	distances []model.DistanceFare
}

func loadFareTable(ctx context.Context, r Reader) (*fareTable, error) {
	d, err := r.DistanceFares(ctx)
	if err != nil {
		return nil, err
	}
	return &fareTable{distances: d}, nil
}

// adultFare prices one adult between two stations for a train and seat class.
func (ft *fareTable) adultFare(ctx context.Context, r Reader, date time.Time, from, to model.Station, trainClass, seatClass string) (int, error) {
	base, err := DistanceFare(ft.distances, math.Abs(to.Distance-from.Distance))
	if err != nil {
		return 0, err
	}
	mults, err := r.FareMultipliers(ctx, trainClass, seatClass)
	if err != nil {
		return 0, err
	}
	m, err := SelectMultiplier(mults, date)
	if err != nil {
		return 0, err
	}
	return AdultFare(base, m.Multiplier), nil
}
