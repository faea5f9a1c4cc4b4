package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func committedEvent() ReservationEvent {
	return ReservationEvent{
		Type:          EventReservationCommitted,
		ReservationID: 3,
		UserID:        1,
		Date:          "2020-01-05",
		TrainClass:    "local",
		TrainName:     "L1",
		Departure:     "S1",
		Arrival:       "S3",
		SeatClass:     "reserved",
		CarNumber:     1,
		SeatLabels:    []string{"1-1A", "1-1B"},
		Amount:        4500,
		PaymentID:     "pay-1",
		OccurredAt:    "2020-01-01T03:00:00Z",
	}
}

func TestFormatLine(t *testing.T) {
	got := FormatLine(committedEvent())
	want := `[2020-01-01T03:00:00Z] reservation.committed | reservation_id=3 | user_id=1 | date=2020-01-05 | train="local L1" | segment=S1-S3 | seat_class=reserved | car=1 | seats=[1-1A,1-1B] | amount=4500 | payment_id=pay-1` + "\n"
	assert.Equal(t, want, got)

	ev := committedEvent()
	ev.SeatLabels = nil
	ev.PaymentID = ""
	line := FormatLine(ev)
	assert.Contains(t, line, "seats=[]")
	assert.NotContains(t, line, "payment_id")
}

func TestRecorderAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "booking.log")
	rec := NewRecorder(path)

	body, err := json.Marshal(committedEvent())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rec.HandleMessage(body))
		}()
	}
	wg.Wait()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	assert.Len(t, lines, 5)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "[2020-01-01T03:00:00Z] reservation.committed"))
	}
}

func TestRecorderRejectsBadMessages(t *testing.T) {
	rec := NewRecorder(filepath.Join(t.TempDir(), "booking.log"))
	assert.Error(t, rec.HandleMessage([]byte("not json")))
	assert.Error(t, rec.HandleMessage([]byte(`{"type":"reservation.committed"}`)))
}

func TestNewRecorderDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultLogPath, NewRecorder("").path)
}
