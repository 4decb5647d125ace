package domain

import (
	"math"
	"time"
)

// DateLayout is the wire format of leave dates.
const DateLayout = "2006-01-02"

// MaxDays is the largest day count a single request or credit may carry.
const MaxDays = 999999999

// Interval is an inclusive, day-granular date range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// RequestInterval returns the dates occupied by a request of days starting
// at start. The end is start plus floor(days-1) whole days, so one day
// occupies start..start and fractional counts round toward the earlier date.
// Offsets beyond MaxDays saturate.
func RequestInterval(start time.Time, days float64) Interval {
	start = DateOnly(start)
	return Interval{Start: start, End: start.AddDate(0, 0, dayOffset(days))}
}

func dayOffset(days float64) int {
	offset := math.Floor(days - 1)
	switch {
	case math.IsNaN(offset):
		return 0
	case offset > MaxDays:
		return MaxDays
	case offset < -MaxDays:
		return -MaxDays
	}
	return int(offset)
}

// Overlaps reports whether the two inclusive intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return !i.Start.After(other.End) && !i.End.Before(other.Start)
}

// String renders the interval as "start to end".
func (i Interval) String() string {
	return i.Start.Format(DateLayout) + " to " + i.End.Format(DateLayout)
}

// Conflict describes an existing request that blocks a candidate.
type Conflict struct {
	Existing         Request
	ExistingInterval Interval
	Candidate        Interval
}

// FindConflict returns the first existing request whose interval overlaps
// candidate. Request status is not considered.
func FindConflict(candidate Interval, existing []Request) (Conflict, bool) {
	for _, req := range existing {
		interval := req.Interval()
		if candidate.Overlaps(interval) {
			return Conflict{Existing: req, ExistingInterval: interval, Candidate: candidate}, true
		}
	}
	return Conflict{}, false
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}
