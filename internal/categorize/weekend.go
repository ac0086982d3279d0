package categorize

import "time"

// InWeekendWindow reports whether a timestamp falls in the weekend travel
// window: Friday 17:00 through Monday 06:59. Times are naive local time;
// no timezone normalization is applied. The weekly aggregator uses this
// same predicate so the two stay in lock-step.
func InWeekendWindow(t time.Time) bool {
	switch t.Weekday() {
	case time.Friday:
		return t.Hour() >= 17
	case time.Saturday, time.Sunday:
		return true
	case time.Monday:
		return t.Hour() < 7
	}
	return false
}

// IsWeekday reports whether the timestamp is Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}
