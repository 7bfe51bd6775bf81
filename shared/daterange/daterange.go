package daterange

import (
	"fmt"
	"time"
)

// Range is a half-open date interval [CheckIn, CheckOut): the check-out day
// itself is free, so a check-out and a check-in on the same day do not clash.
type Range struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a Range after normalizing both dates to midnight UTC.
// The range must be chronological: check-in strictly before check-out.
func New(checkIn, checkOut time.Time) (Range, error) {
	r := Range{
		CheckIn:  Truncate(checkIn),
		CheckOut: Truncate(checkOut),
	}

	if !r.CheckIn.Before(r.CheckOut) {
		return Range{}, fmt.Errorf("check-in %s must be before check-out %s", r.CheckIn.Format(time.DateOnly), r.CheckOut.Format(time.DateOnly))
	}

	return r, nil
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(checkIn, checkOut string) (Range, error) {
	start, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return Range{}, fmt.Errorf("invalid check-in date %q: %w", checkIn, err)
	}

	end, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return Range{}, fmt.Errorf("invalid check-out date %q: %w", checkOut, err)
	}

	return New(start, end)
}

// Truncate drops the time-of-day component, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two ranges share at least one night.
func (r Range) Overlaps(other Range) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Contains reports whether the given date falls on a booked night of the range.
func (r Range) Contains(t time.Time) bool {
	day := Truncate(t)

	return !day.Before(r.CheckIn) && day.Before(r.CheckOut)
}

// Nights returns the number of nights covered by the range.
func (r Range) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.CheckIn.Format(time.DateOnly), r.CheckOut.Format(time.DateOnly))
}
