package booking

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// Window is the resolved working day of one staff member on one local date.
// Minute fields are wall clock; the intervals are absolute instants.
type Window struct {
	Date     time.Time
	StartMin int
	EndMin   int
	Open     Interval
	Blocks   []Block
}

type Block struct {
	Rule     models.ScheduleBlock
	Interval Interval
}

// ResolveWindow turns a schedule row into absolute intervals for date.
// A nil rule or a day-off override yields a nil window.
func ResolveWindow(
	rule *models.StaffAvailability,
	date time.Time,
	loc *time.Location,
) (*Window, error) {

	if rule == nil || rule.IsDayOff() {
		return nil, nil
	}

	startMin, err := timezone.ParseClock(rule.StartTime)
	if err != nil {
		return nil, err
	}
	endMin, err := timezone.ParseClock(rule.EndTime)
	if err != nil {
		return nil, err
	}
	if startMin >= endMin {
		return nil, nil
	}

	w := &Window{
		Date:     date,
		StartMin: startMin,
		EndMin:   endMin,
		Open: Interval{
			Start: timezone.WallClock(date, startMin, loc),
			End:   timezone.WallClock(date, endMin, loc),
		},
	}

	for _, b := range rule.Blocks {
		bs, err := timezone.ParseClock(b.StartTime)
		if err != nil {
			return nil, err
		}
		be, err := timezone.ParseClock(b.EndTime)
		if err != nil {
			return nil, err
		}

		w.Blocks = append(w.Blocks, Block{
			Rule: b,
			Interval: Interval{
				Start: timezone.WallClock(date, bs, loc),
				End:   timezone.WallClock(date, be, loc),
			},
		})
	}

	return w, nil
}

// Fits reports whether iv lies inside the window and clear of every block.
// The reason is meant for end users.
func (w *Window) Fits(iv Interval) (bool, string) {
	if w == nil {
		return false, "staff is not working on this date"
	}

	if !iv.Within(w.Open) {
		return false, fmt.Sprintf(
			"outside working hours %s-%s",
			timezone.FormatClock(w.StartMin),
			timezone.FormatClock(w.EndMin),
		)
	}

	for _, b := range w.Blocks {
		if iv.Overlaps(b.Interval) {
			return false, fmt.Sprintf(
				"overlaps %s %s-%s",
				b.Rule.Type,
				b.Rule.StartTime,
				b.Rule.EndTime,
			)
		}
	}

	return true, ""
}
