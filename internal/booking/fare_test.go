package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

var distanceTable = []model.DistanceFare{
	{Distance: 50, Fare: 2000},
	{Distance: 0, Fare: 1000},
	{Distance: 100, Fare: 3000},
}

func TestDistanceFareStep(t *testing.T) {
	cases := []struct {
		distance float64
		want     int
	}{
		{0, 1000},
		{49.9, 1000},
		{50, 2000},
		{99, 2000},
		{100, 3000},
		{500, 3000},
	}
	for _, tc := range cases {
		got, err := DistanceFare(distanceTable, tc.distance)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "distance %v", tc.distance)
	}

	_, err := DistanceFare(nil, 10)
	assert.Error(t, err)
}

func TestDistanceFareMonotonic(t *testing.T) {
	prev := 0
	for d := 0.0; d <= 300; d += 7.5 {
		f, err := DistanceFare(distanceTable, d)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f, prev)
		prev = f
	}
}

func TestSelectMultiplier(t *testing.T) {
	day := func(s string) time.Time {
		d, err := ParseDate(s)
		require.NoError(t, err)
		return d
	}
	table := []model.FareMultiplier{
		{StartDate: day("2020-05-01"), Multiplier: 1.5},
		{StartDate: day("2020-01-01"), Multiplier: 1.0},
		{StartDate: day("2020-08-01"), Multiplier: 2.0},
	}
	cases := []struct {
		date string
		want float64
	}{
		{"2019-12-31", 1.0},
		{"2020-01-01", 1.0},
		{"2020-04-30", 1.0},
		{"2020-05-01", 1.5},
		{"2020-07-31", 1.5},
		{"2020-08-01", 2.0},
		{"2021-01-01", 2.0},
	}
	for _, tc := range cases {
		m, err := SelectMultiplier(table, day(tc.date))
		require.NoError(t, err)
		assert.Equal(t, tc.want, m.Multiplier, tc.date)
	}

	_, err := SelectMultiplier(nil, day("2020-01-01"))
	assert.Error(t, err)
}

func TestAdultFareTruncates(t *testing.T) {
	assert.Equal(t, 1500, AdultFare(1000, 1.5))
	assert.Equal(t, 1233, AdultFare(1111, 1.11))
}

func TestTotalFareChildrenPayHalf(t *testing.T) {
	for _, fare := range []int{0, 1, 999, 1000, 1501} {
		assert.Equal(t, fare/2, TotalFare(fare, 0, 1))
		assert.Equal(t, fare, TotalFare(fare, 1, 0))
		assert.Equal(t, 2*fare+3*(fare/2), TotalFare(fare, 2, 3))
	}
}
