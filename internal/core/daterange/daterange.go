// Package daterange parses day-granularity date bounds and filters events
// into a half-open interval
package daterange

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	perr "gittracker/internal/platform/errors"
)

// CalendarDate is a single day parsed from a YYYY/MM/DD literal
type CalendarDate struct {
	Year  int
	Month int
	Day   int
}

// maxInstant stands in for positive infinity on the open upper bound
var maxInstant = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Parse reads a strict YYYY/MM/DD literal.
// All three components must be numeric and non-zero, and the combination
// must be a real calendar day; anything else is a parse failure, never a default
func Parse(literal string) (CalendarDate, error) {
	parts := strings.Split(literal, "/")
	if len(parts) != 3 {
		return CalendarDate{}, perr.Parsef("date %q: want YYYY/MM/DD", literal)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return CalendarDate{}, perr.Parsef("date %q: component %q is not a positive number", literal, p)
		}
		nums[i] = n
	}
	d := CalendarDate{Year: nums[0], Month: nums[1], Day: nums[2]}

	// time.Date normalizes out-of-range components (month 13 becomes January),
	// so a changed round-trip means the combination was not a real day
	t := d.UTCMidnight()
	if t.Year() != d.Year || int(t.Month()) != d.Month || t.Day() != d.Day {
		return CalendarDate{}, perr.Parsef("date %q: not a valid calendar day", literal)
	}
	return d, nil
}

// UTCMidnight returns the instant the day begins
func (d CalendarDate) UTCMidnight() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// String renders the date back to its YYYY/MM/DD literal form
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Interval is a half-open [Lower, Upper) instant range
type Interval struct {
	Lower time.Time
	Upper time.Time
}

// HalfOpen builds the filtering interval from optional day bounds.
// The upper bound is the stop day at midnight plus one day, which makes the
// stop day itself inclusive; an absent bound is open on that side
func HalfOpen(start, stop *CalendarDate) Interval {
	iv := Interval{Lower: time.Time{}, Upper: maxInstant}
	if start != nil {
		iv.Lower = start.UTCMidnight()
	}
	if stop != nil {
		iv.Upper = stop.UTCMidnight().AddDate(0, 0, 1)
	}
	return iv
}

// Bounded reports whether either side of the interval is constrained
func (iv Interval) Bounded() bool {
	return !iv.Lower.IsZero() || !iv.Upper.Equal(maxInstant)
}

// Contains reports Lower <= t < Upper
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Lower) && t.Before(iv.Upper)
}

// Filter keeps the items whose instant falls inside the interval
func Filter[T any](xs []T, at func(T) time.Time, iv Interval) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if iv.Contains(at(x)) {
			out = append(out, x)
		}
	}
	return out
}
