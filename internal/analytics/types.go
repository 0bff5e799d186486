// Package analytics provides calendar and numeric helpers shared by the daily
// aggregator and the forecast engine.
package analytics

import (
	"time"
)

// DayMillis is one calendar day in epoch milliseconds
const DayMillis int64 = 86_400_000

// DayLabelLayout renders "Mon D" (e.g. "Nov 5"), no year
const DayLabelLayout = "Jan 2"

// DayLabel renders the calendar day of an epoch-millisecond timestamp in loc
func DayLabel(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format(DayLabelLayout)
}

// Mean calculates the mean of all values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
