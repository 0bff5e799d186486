package aggregation

import (
	"math"

	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
)

// Summary holds the headline numbers shown next to the daily chart
type Summary struct {
	CurrentPlayers float64 `json:"currentPlayers"`
	Peak24h        float64 `json:"peak24h"`
	DailyGain      float64 `json:"dailyGain"` // percent, one decimal
}

// Summarize derives the headline metrics. The live value wins over the last
// daily peak when hasLive is set.
func Summarize(peaks []models.DailyPeak, live float64, hasLive bool) Summary {
	var s Summary

	n := len(peaks)
	if n > 0 {
		s.Peak24h = peaks[n-1].PeakValue
	}

	if hasLive {
		s.CurrentPlayers = live
	} else {
		s.CurrentPlayers = s.Peak24h
	}

	if n >= 2 {
		s.DailyGain = DailyGain(peaks[n-2].PeakValue, peaks[n-1].PeakValue)
	}

	return s
}

// DailyGain is the percentage change from prev to last rounded to one
// decimal, 0 when prev is 0.
func DailyGain(prev, last float64) float64 {
	if prev == 0 {
		return 0
	}
	pct := (last - prev) / prev * 100
	return math.Round(pct*10) / 10
}
