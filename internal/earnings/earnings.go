package earnings

import (
	"math"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
)

// Interval is a worked span. A zero Start or End marks a missing endpoint.
type Interval struct {
	Start time.Time
	End   time.Time
}

type Calculator struct {
	HourlyWage float64
}

func NewCalculator(hourlyWage float64) Calculator {
	return Calculator{HourlyWage: hourlyWage}
}

// Compute sums the intervals that have both endpoints and converts the total
// to money at the hourly wage, rounded to cents. Empty input yields 0.
func (c Calculator) Compute(intervals []Interval) float64 {
	return c.Amount(TotalSeconds(intervals))
}

func (c Calculator) Amount(seconds float64) float64 {
	hours := seconds / 3600
	return Round2(hours * c.HourlyWage)
}

// ComputeEvents is Compute over stored clock events; open events are skipped.
func (c Calculator) ComputeEvents(events []clock.Event) float64 {
	return c.Compute(FromEvents(events))
}

func TotalSeconds(intervals []Interval) float64 {
	var total float64
	for _, iv := range intervals {
		if iv.Start.IsZero() || iv.End.IsZero() {
			continue
		}
		total += iv.End.Sub(iv.Start).Seconds()
	}
	return total
}

func FromEvents(events []clock.Event) []Interval {
	out := make([]Interval, 0, len(events))
	for _, e := range events {
		iv := Interval{Start: e.ClockIn}
		if e.ClockOut != nil {
			iv.End = *e.ClockOut
		}
		out = append(out, iv)
	}
	return out
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
