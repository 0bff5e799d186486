package forecast

// SeasonalNaiveForecaster repeats the most recent season
type SeasonalNaiveForecaster struct{}

// NewSeasonalNaiveForecaster creates a new repeat-last-season forecaster
func NewSeasonalNaiveForecaster() *SeasonalNaiveForecaster {
	return &SeasonalNaiveForecaster{}
}

func init() {
	RegisterForecaster("seasonal_naive", NewSeasonalNaiveForecaster())
}

// Name returns the algorithm name
func (f *SeasonalNaiveForecaster) Name() string {
	return "seasonal_naive"
}

// Forecast repeats the last SeasonLength observations
func (f *SeasonalNaiveForecaster) Forecast(values []float64, timestampsMs []int64, params Params) (*Result, error) {
	if err := validate(values, timestampsMs, params); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return emptyResult(f.Name()), nil
	}

	result := seasonalNaive(values, timestampsMs, params)
	result.Info.Algorithm = f.Name()
	return result, nil
}

// seasonalNaive projects step h as the observation (h-1) places into the last
// season. With fewer than SeasonLength points the whole series is the season.
// Fitted values are the observations themselves.
func seasonalNaive(values []float64, timestampsMs []int64, params Params) *Result {
	n := len(values)
	start := n - params.SeasonLength
	if start < 0 {
		start = 0
	}
	lastSeason := values[start:]

	forecastValues := make([]float64, params.Horizon+1)
	forecastValues[0] = values[n-1]
	for h := 1; h <= params.Horizon; h++ {
		forecastValues[h] = lastSeason[(h-1)%len(lastSeason)]
	}
	if params.ClampNegative {
		clampNonNegative(forecastValues[1:])
	}

	fitted := make([]float64, n)
	copy(fitted, values)

	ts, labels := projectionAxis(timestampsMs[n-1], params)

	result := &Result{
		Values:       forecastValues,
		Labels:       labels,
		TimestampsMs: ts,
		Fitted:       fitted,
		Info: ModelInfo{
			Regime: RegimeFallback,
			Parameters: map[string]interface{}{
				"period": params.SeasonLength,
			},
		},
	}
	fitInfo(&result.Info, values, fitted)
	return result
}
