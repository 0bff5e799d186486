package forecast

import (
	"github.com/anirame128/fortnite-insight-dashboard/internal/analytics"
)

// Seasonality selects how the seasonal factor combines with level and trend
type Seasonality int

const (
	// Multiplicative scales level+trend by the seasonal factor
	Multiplicative Seasonality = iota
	// Additive adds the seasonal offset to level+trend
	Additive
)

// HoltWintersForecaster implements Holt-Winters (Triple Exponential Smoothing)
// forecasting. Series shorter than one season fall back to repeating the
// observed days.
type HoltWintersForecaster struct {
	seasonality Seasonality
}

// NewHoltWintersForecaster creates a new Holt-Winters forecaster
func NewHoltWintersForecaster(seasonality Seasonality) *HoltWintersForecaster {
	return &HoltWintersForecaster{seasonality: seasonality}
}

func init() {
	RegisterForecaster("holt_winters", NewHoltWintersForecaster(Multiplicative))
	RegisterForecaster("holt_winters_additive", NewHoltWintersForecaster(Additive))
}

// Name returns the algorithm name
func (f *HoltWintersForecaster) Name() string {
	if f.seasonality == Additive {
		return "holt_winters_additive"
	}
	return "holt_winters"
}

// Forecast generates predictions using Holt-Winters Triple Exponential Smoothing
func (f *HoltWintersForecaster) Forecast(values []float64, timestampsMs []int64, params Params) (*Result, error) {
	if err := validate(values, timestampsMs, params); err != nil {
		return nil, err
	}

	n := len(values)
	if n == 0 {
		return emptyResult(f.Name()), nil
	}

	period := params.SeasonLength
	if n < period {
		result := seasonalNaive(values, timestampsMs, params)
		result.Info.Algorithm = f.Name()
		result.Info.Regime = RegimeFallback
		return result, nil
	}

	alpha, beta, gamma := params.Alpha, params.Beta, params.Gamma

	level := make([]float64, n)
	trend := make([]float64, n)
	// circular: slot t%period always holds the latest factor for that phase
	seasonal := make([]float64, period)

	level[0] = values[0]
	trend[0] = initialTrend(values, period)

	seasonAvg := analytics.Mean(values[:period])
	for i := 0; i < period; i++ {
		seasonal[i] = f.initialFactor(values[i], seasonAvg)
	}

	fitted := make([]float64, n)
	fitted[0] = values[0]

	for t := 1; t < n; t++ {
		slot := t % period
		prevSeason := seasonal[slot]
		if f.seasonality == Multiplicative && prevSeason == 0 {
			prevSeason = 1.0
		}

		base := level[t-1] + trend[t-1]
		fitted[t] = f.combine(base, prevSeason)

		if f.seasonality == Multiplicative {
			level[t] = alpha*(values[t]/prevSeason) + (1-alpha)*base
		} else {
			level[t] = alpha*(values[t]-prevSeason) + (1-alpha)*base
		}

		trend[t] = beta*(level[t]-level[t-1]) + (1-beta)*trend[t-1]

		switch {
		case f.seasonality == Additive:
			seasonal[slot] = gamma*(values[t]-level[t]) + (1-gamma)*prevSeason
		case level[t] != 0:
			seasonal[slot] = gamma*(values[t]/level[t]) + (1-gamma)*prevSeason
		default:
			seasonal[slot] = prevSeason
		}
	}

	forecastValues := make([]float64, params.Horizon+1)
	forecastValues[0] = values[n-1]

	lastLevel := level[n-1]
	lastTrend := trend[n-1]
	for h := 1; h <= params.Horizon; h++ {
		factor := seasonal[(n+h-1)%period]
		forecastValues[h] = f.combine(lastLevel+float64(h)*lastTrend, factor)
	}
	if params.ClampNegative {
		clampNonNegative(forecastValues[1:])
	}

	ts, labels := projectionAxis(timestampsMs[n-1], params)

	result := &Result{
		Values:       forecastValues,
		Labels:       labels,
		TimestampsMs: ts,
		Fitted:       fitted,
		Info: ModelInfo{
			Algorithm: f.Name(),
			Regime:    RegimeSeasonal,
			Parameters: map[string]interface{}{
				"alpha":  alpha,
				"beta":   beta,
				"gamma":  gamma,
				"period": period,
			},
		},
	}
	fitInfo(&result.Info, values, fitted)

	return result, nil
}

func (f *HoltWintersForecaster) combine(base, factor float64) float64 {
	if f.seasonality == Additive {
		return base + factor
	}
	return base * factor
}

func (f *HoltWintersForecaster) initialFactor(v, seasonAvg float64) float64 {
	if f.seasonality == Additive {
		return v - seasonAvg
	}
	if seasonAvg == 0 {
		return 1.0
	}
	return v / seasonAvg
}

// initialTrend averages the per-step change between the first two seasons.
// Only pairs inside the series contribute, so a series shorter than two
// seasons uses fewer pairs and one of exactly one season starts flat.
func initialTrend(values []float64, period int) float64 {
	sum := 0.0
	count := 0
	for i := 0; i < period && i+period < len(values); i++ {
		sum += (values[i+period] - values[i]) / float64(period)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
