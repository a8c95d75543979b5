package schedule

import "time"

// Frequency constants
const (
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

// Schedule is the cadence input for Advance. The caller owns persistence and
// the end-date deactivation decision.
type Schedule struct {
	Frequency string
	Interval  int
	AnchorDay int // day-of-month the monthly cadence is anchored to
	NextRun   time.Time
}

// Advance computes the run date that follows sched.NextRun. Monthly cadences
// clamp the day to the last day of the target month, so a schedule anchored on
// the 31st lands on Feb 28/29 instead of spilling into March. Yearly cadences
// go through the same clamp to keep Feb 29 anchors stable.
func Advance(sched Schedule) time.Time {
	interval := sched.Interval
	if interval < 1 {
		interval = 1
	}

	switch sched.Frequency {
	case FrequencyWeekly:
		return sched.NextRun.AddDate(0, 0, 7*interval)
	case FrequencyYearly:
		return addMonthsClamped(sched.NextRun, 12*interval, sched.AnchorDay)
	default: // monthly
		return addMonthsClamped(sched.NextRun, interval, sched.AnchorDay)
	}
}

// Expired reports whether a candidate run date falls past the schedule's end
// date. A zero end date never expires.
func Expired(next time.Time, endDate *time.Time) bool {
	if endDate == nil || endDate.IsZero() {
		return false
	}
	return next.After(*endDate)
}

func addMonthsClamped(from time.Time, months, anchorDay int) time.Time {
	if anchorDay < 1 {
		anchorDay = from.Day()
	}

	// Anchor on the first of the target month, then clamp the day. Using
	// AddDate from a day >28 would normalize Jan 31 + 1 month to Mar 2/3.
	first := time.Date(from.Year(), from.Month(), 1, from.Hour(), from.Minute(), from.Second(), 0, from.Location())
	target := first.AddDate(0, months, 0)

	day := anchorDay
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, from.Hour(), from.Minute(), from.Second(), 0, from.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
