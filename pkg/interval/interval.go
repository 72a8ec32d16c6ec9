package interval

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when an interval's end is not after its start.
var ErrInvalidInterval = errors.New("interval end must be after start")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New builds an Interval, rejecting ranges where end <= start.
func New(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, fmt.Errorf("%w: start=%s end=%s", ErrInvalidInterval,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether two intervals intersect. Touching endpoints
// (one interval's end equals the other's start) do not overlap, so
// back-to-back shifts are legal.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Hours returns the length of the interval in hours.
func (i Interval) Hours() float64 {
	return i.End.Sub(i.Start).Hours()
}

// Weekday returns the weekday of the interval's start in the given location.
func (i Interval) Weekday(loc *time.Location) time.Weekday {
	return i.Start.In(loc).Weekday()
}

// ClockRange returns the interval's start and end as minutes since midnight
// in the given location. Used to compare against availability windows, which
// are declared per weekday as clock times rather than absolute instants.
func (i Interval) ClockRange(loc *time.Location) (startMin, endMin int) {
	s := i.Start.In(loc)
	e := i.End.In(loc)
	startMin = s.Hour()*60 + s.Minute()
	endMin = e.Hour()*60 + e.Minute()
	if endMin == 0 && i.Duration() > 0 {
		endMin = 24 * 60 // shifts ending exactly at midnight
	}
	return startMin, endMin
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}
