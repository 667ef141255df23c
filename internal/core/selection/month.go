package selection

import "time"

// MonthBounds returns the first and last instant of the calendar month containing t,
// in t's location.
func MonthBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// ShiftMonth returns the bounds of the month delta months away from the one
// containing anchor. Normalizing to day 1 first avoids AddDate overflowing
// Jan 31 into March.
func ShiftMonth(anchor time.Time, delta int) (start, end time.Time) {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	return MonthBounds(first.AddDate(0, delta, 0))
}

func monthAnchor(s State, now time.Time) time.Time {
	if s.DateRangeStart != nil {
		return *s.DateRangeStart
	}
	return now
}
