package booking

// Segment is a trip leg expressed as positions on the line.  Outbound
// segments have Dep < Arr, inbound segments have Dep > Arr.
type Segment struct {
	Dep     int
	Arr     int
	Inbound bool
}

// Overlaps reports whether two legs of the same train share any stretch of
// track.  Legs that only touch at a station are disjoint, so a seat may be
// handed over at the shared stop.
func (s Segment) Overlaps(o Segment) bool {
	if s.Inbound {
		return !(s.Arr >= o.Dep || o.Arr >= s.Dep)
	}
	return !(s.Arr <= o.Dep || o.Arr <= s.Dep)
}
