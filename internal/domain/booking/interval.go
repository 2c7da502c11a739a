package booking

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// Interval is half-open: [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Within(o Interval) bool {
	return !i.Start.Before(o.Start) && !i.End.After(o.End)
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

func BookingInterval(b models.Booking) Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

func HoldInterval(h models.BookingHold) Interval {
	return Interval{Start: h.StartTime, End: h.EndTime}
}

// FirstBookingConflict returns the first booking overlapping iv that still
// occupies its slot.
func FirstBookingConflict(iv Interval, bookings []models.Booking) (*models.Booking, bool) {
	for i := range bookings {
		if !Status(bookings[i].Status).Occupies() {
			continue
		}
		if iv.Overlaps(BookingInterval(bookings[i])) {
			return &bookings[i], true
		}
	}
	return nil, false
}

// FirstHoldConflict returns the first hold overlapping iv that is not owned
// by session and is still live at now.
func FirstHoldConflict(
	iv Interval,
	holds []models.BookingHold,
	session string,
	now time.Time,
) (*models.BookingHold, bool) {
	for i := range holds {
		h := holds[i]
		if session != "" && h.SessionID == session {
			continue
		}
		if !h.IsLive(now) {
			continue
		}
		if iv.Overlaps(HoldInterval(h)) {
			return &holds[i], true
		}
	}
	return nil, false
}
