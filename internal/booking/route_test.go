package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

func scenarioStations() []model.Station {
	return []model.Station{
		{ID: 3, Name: "S3", Distance: 120, IsStopExpress: true, IsStopSemiExpress: true, IsStopLocal: true},
		{ID: 1, Name: "S1", Distance: 0, IsStopExpress: false, IsStopSemiExpress: true, IsStopLocal: true},
		{ID: 2, Name: "S2", Distance: 50, IsStopExpress: true, IsStopSemiExpress: false, IsStopLocal: true},
	}
}

func TestNewLineOrdersByDistance(t *testing.T) {
	line := NewLine(scenarioStations())
	names := []string{}
	for _, s := range line.Stations() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"S1", "S2", "S3"}, names)

	p, ok := line.Position("S3")
	require.True(t, ok)
	assert.Equal(t, 2, p)
	_, ok = line.Position("nowhere")
	assert.False(t, ok)
}

func TestUsableTrainClasses(t *testing.T) {
	line := NewLine(scenarioStations())
	s1, _ := line.Station("S1")
	s2, _ := line.Station("S2")
	s3, _ := line.Station("S3")

	assert.Equal(t, []string{model.TrainClassSemiExpress, model.TrainClassLocal}, UsableTrainClasses(s1, s3))
	assert.Equal(t, []string{model.TrainClassExpress, model.TrainClassLocal}, UsableTrainClasses(s2, s3))
	assert.Equal(t, []string{model.TrainClassLocal}, UsableTrainClasses(s1, s2))
}

func TestDirection(t *testing.T) {
	line := NewLine(scenarioStations())
	s1, _ := line.Station("S1")
	s3, _ := line.Station("S3")
	assert.False(t, IsInbound(s1, s3))
	assert.True(t, IsInbound(s3, s1))
}

func TestServes(t *testing.T) {
	line := NewLine(scenarioStations())
	outbound := model.Train{TrainName: "out", StartStation: "S1", LastStation: "S3"}
	short := model.Train{TrainName: "short", StartStation: "S2", LastStation: "S3"}
	inbound := model.Train{TrainName: "in", StartStation: "S3", LastStation: "S1", IsInbound: true}

	cases := []struct {
		name     string
		train    model.Train
		from, to string
		want     bool
	}{
		{"outbound full", outbound, "S1", "S3", true},
		{"outbound inner", outbound, "S2", "S3", true},
		{"outbound reversed", outbound, "S3", "S1", false},
		{"outside start", short, "S1", "S3", false},
		{"short inner", short, "S2", "S3", true},
		{"inbound full", inbound, "S3", "S1", true},
		{"inbound inner", inbound, "S2", "S1", true},
		{"inbound reversed", inbound, "S1", "S3", false},
		{"unknown station", outbound, "S1", "S9", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, line.Serves(tc.train, tc.from, tc.to))
		})
	}
}

func TestSegmentOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Segment
		want bool
	}{
		{"outbound same", Segment{0, 2, false}, Segment{0, 2, false}, true},
		{"outbound nested", Segment{0, 3, false}, Segment{1, 2, false}, true},
		{"outbound partial", Segment{0, 2, false}, Segment{1, 3, false}, true},
		{"outbound touching", Segment{0, 1, false}, Segment{1, 2, false}, false},
		{"outbound touching reversed", Segment{1, 2, false}, Segment{0, 1, false}, false},
		{"outbound apart", Segment{0, 1, false}, Segment{2, 3, false}, false},
		{"inbound same", Segment{2, 0, true}, Segment{2, 0, true}, true},
		{"inbound partial", Segment{3, 1, true}, Segment{2, 0, true}, true},
		{"inbound touching", Segment{2, 1, true}, Segment{1, 0, true}, false},
		{"inbound apart", Segment{3, 2, true}, Segment{1, 0, true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap is symmetric")
		})
	}
}
