package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultLogPath is where consumed events are appended.
var DefaultLogPath = filepath.Join("logs", "booking.log")

// Recorder appends one human-friendly line per event to a log file.  It is
// safe for concurrent use by several consumers.
type Recorder struct {
	mu   sync.Mutex
	path string
}

// NewRecorder returns a Recorder writing to path, or DefaultLogPath when
// path is empty.
func NewRecorder(path string) *Recorder {
	if path == "" {
		path = DefaultLogPath
	}
	return &Recorder{path: path}
}

// HandleMessage decodes a JSON ReservationEvent and records it.
func (r *Recorder) HandleMessage(body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.ReservationID == 0 {
		return fmt.Errorf("incomplete event: type=%q reservation_id=%d", ev.Type, ev.ReservationID)
	}
	return r.Record(ev)
}

// Record appends ev to the log file, creating its directory if needed.
func (r *Recorder) Record(ev ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single newline-terminated log line.
func FormatLine(ev ReservationEvent) string {
	seats := "[]"
	if len(ev.SeatLabels) > 0 {
		seats = fmt.Sprintf("[%s]", strings.Join(ev.SeatLabels, ","))
	}
	line := fmt.Sprintf("[%s] %s | reservation_id=%d | user_id=%d | date=%s | train=\"%s %s\" | segment=%s-%s | seat_class=%s | car=%d | seats=%s | amount=%d",
		ev.OccurredAt, ev.Type, ev.ReservationID, ev.UserID, ev.Date, ev.TrainClass, ev.TrainName,
		ev.Departure, ev.Arrival, ev.SeatClass, ev.CarNumber, seats, ev.Amount)
	if ev.PaymentID != "" {
		line += " | payment_id=" + ev.PaymentID
	}
	return line + "\n"
}
