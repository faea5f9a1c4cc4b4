package booking

import "time"

// DateLayout is the wire format of service dates.
const DateLayout = "2006-01-02"

// Tokyo is the time zone every service date and timetable entry is in.
var Tokyo = time.FixedZone("Asia/Tokyo", 9*60*60)

// ServiceDate truncates t to midnight of its calendar day in Tokyo.
func ServiceDate(t time.Time) time.Time {
	y, m, d := t.In(Tokyo).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Tokyo)
}

// ParseDate parses a YYYY-MM-DD service date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, Tokyo)
}

// Window is the range of service dates open for booking.  A zero Days
// leaves the window unbounded.
type Window struct {
	Start time.Time
	Days  int
}

// Contains reports whether date falls inside the window.
func (w Window) Contains(date time.Time) bool {
	if w.Days <= 0 {
		return true
	}
	d := ServiceDate(date)
	start := ServiceDate(w.Start)
	end := start.AddDate(0, 0, w.Days)
	return !d.Before(start) && d.Before(end)
}

// departureInstant combines a service date with a HH:MM:SS timetable entry.
func departureInstant(date time.Time, clock string) (time.Time, error) {
	c, err := time.ParseInLocation("15:04:05", clock, Tokyo)
	if err != nil {
		return time.Time{}, err
	}
	d := ServiceDate(date)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, Tokyo), nil
}
