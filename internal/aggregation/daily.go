// Package aggregation reduces raw upstream samples to one peak per calendar day
// and derives the live headline metrics from that daily series.
package aggregation

import (
	"sort"
	"time"

	"github.com/anirame128/fortnite-insight-dashboard/internal/analytics"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
)

// DailyAggregator buckets samples by calendar day in a fixed location
type DailyAggregator struct {
	loc *time.Location
}

// NewDailyAggregator creates an aggregator cutting days in loc (UTC when nil)
func NewDailyAggregator(loc *time.Location) *DailyAggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyAggregator{loc: loc}
}

// Location returns the zone days are cut in
func (a *DailyAggregator) Location() *time.Location {
	return a.loc
}

// Aggregate keeps the maximum sample per day label and returns the peaks in
// ascending timestamp order. Ties keep the earliest sample.
func (a *DailyAggregator) Aggregate(series models.RawSeries) []models.DailyPeak {
	if len(series.Values) == 0 {
		return []models.DailyPeak{}
	}

	index := make(map[string]int)
	peaks := make([]models.DailyPeak, 0, 32)

	for i, value := range series.Values {
		ts := series.TimestampMs(i)
		key := analytics.DayLabel(ts, a.loc)

		pos, seen := index[key]
		if !seen {
			index[key] = len(peaks)
			peaks = append(peaks, models.DailyPeak{DateKey: key, PeakValue: value, TimestampMs: ts})
			continue
		}
		if value > peaks[pos].PeakValue {
			peaks[pos] = models.DailyPeak{DateKey: key, PeakValue: value, TimestampMs: ts}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].TimestampMs < peaks[j].TimestampMs
	})

	return peaks
}

// AggregateDaily is Aggregate with days cut in loc
func AggregateDaily(series models.RawSeries, loc *time.Location) []models.DailyPeak {
	return NewDailyAggregator(loc).Aggregate(series)
}

// Split returns the peak values and their timestamps as parallel slices
func Split(peaks []models.DailyPeak) (labels []string, values []float64, timestampsMs []int64) {
	labels = make([]string, len(peaks))
	values = make([]float64, len(peaks))
	timestampsMs = make([]int64, len(peaks))
	for i, p := range peaks {
		labels[i] = p.DateKey
		values[i] = p.PeakValue
		timestampsMs[i] = p.TimestampMs
	}
	return labels, values, timestampsMs
}
