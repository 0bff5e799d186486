package models

// RawSeries is a uniformly sampled upstream value series.
// Values[i] was sampled at StartEpochSeconds + i*StepSeconds.
type RawSeries struct {
	StartEpochSeconds int64     `json:"start"`
	StepSeconds       int64     `json:"step"`
	Values            []float64 `json:"values"`
}

// TimestampMs returns the epoch-millisecond timestamp of sample i
func (s RawSeries) TimestampMs(i int) int64 {
	return (s.StartEpochSeconds + s.StepSeconds*int64(i)) * 1000
}

// MapSeries is what the extraction client returns for one map code
type MapSeries struct {
	MapCode    string    `json:"map_code"`
	ResourceID string    `json:"resource_id"`
	SourceURL  string    `json:"source_url"`
	Series     RawSeries `json:"series"`

	// CurrentPlayers is the live "players right now" figure, 0 when the
	// detail document did not carry one (HasCurrent is false then).
	CurrentPlayers float64 `json:"current_players"`
	HasCurrent     bool    `json:"has_current"`
}

// DailyPeak is the highest sample observed on one calendar day
type DailyPeak struct {
	DateKey     string  `json:"date"`
	PeakValue   float64 `json:"peak"`
	TimestampMs int64   `json:"timestamp"` // sample that produced the peak
}
