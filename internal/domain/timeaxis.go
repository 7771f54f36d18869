package domain

import (
	"fmt"
	"math"
	"time"
)

// Origin is the calendar origin for dataset time offsets. ERSST encodes
// time as "days since 1800-01-01".
var Origin = time.Date(1800, time.January, 1, 0, 0, 0, 0, time.UTC)

// TimeAxis is an ordered sequence of numeric day-offsets from Origin.
// It is read-only once extracted from a source.
type TimeAxis struct {
	Offsets []float64
	Origin  time.Time
}

// NewTimeAxis creates a time axis over the default 1800-01-01 origin.
func NewTimeAxis(offsets []float64) TimeAxis {
	return TimeAxis{Offsets: offsets, Origin: Origin}
}

// Len returns the number of time steps.
func (a TimeAxis) Len() int {
	return len(a.Offsets)
}

// Date converts the offset at index i into a calendar date. Fractional
// day components are dropped; malformed offsets are not validated.
func (a TimeAxis) Date(i int) time.Time {
	return a.Origin.AddDate(0, 0, int(math.Floor(a.Offsets[i])))
}

// Year returns the 4-digit year string for index i.
func (a TimeAxis) Year(i int) string {
	return fmt.Sprintf("%04d", a.Date(i).Year())
}

// Month returns the zero-padded 2-digit month string for index i.
func (a TimeAxis) Month(i int) string {
	return fmt.Sprintf("%02d", int(a.Date(i).Month()))
}

// YearMonth returns the combined "YYYY-MM" string for index i.
func (a TimeAxis) YearMonth(i int) string {
	return a.Year(i) + "-" + a.Month(i)
}

// Months returns the month string for every time step, in order. The
// result is what MonthMean matches slices against.
func (a TimeAxis) Months() []string {
	out := make([]string, a.Len())
	for i := range a.Offsets {
		out[i] = a.Month(i)
	}
	return out
}

// YearMonths returns the "YYYY-MM" string for every time step, in order.
// Used for frame titles.
func (a TimeAxis) YearMonths() []string {
	out := make([]string, a.Len())
	for i := range a.Offsets {
		out[i] = a.YearMonth(i)
	}
	return out
}
