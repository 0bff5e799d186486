package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/anirame128/fortnite-insight-dashboard/internal/analytics"
)

// ErrInvalidArgument marks a caller contract violation (mismatched lengths,
// unordered timestamps, nonsensical parameters).
var ErrInvalidArgument = errors.New("invalid forecast argument")

// Regimes reported in ModelInfo
const (
	RegimeSeasonal = "seasonal"
	RegimeFallback = "fallback"
	RegimeEmpty    = "empty"
)

// Params holds the smoothing parameters and output shape
type Params struct {
	Horizon       int            // Days to forecast
	Alpha         float64        // Level smoothing (0-1)
	Beta          float64        // Trend smoothing (0-1)
	Gamma         float64        // Seasonal smoothing (0-1)
	SeasonLength  int            // Points per season, 7 for weekly
	ClampNegative bool           // Floor forecast values at 0
	Location      *time.Location // Zone the day labels are rendered in
}

// DefaultParams returns the daily/weekly defaults
func DefaultParams() Params {
	return Params{
		Horizon:      30,
		Alpha:        0.3,
		Beta:         0.1,
		Gamma:        0.05,
		SeasonLength: 7,
		Location:     time.UTC,
	}
}

// ModelInfo contains metadata about the forecast model
type ModelInfo struct {
	Algorithm  string                 `json:"algorithm"`
	Regime     string                 `json:"regime"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	MAPE       float64                `json:"mape"` // Mean Absolute Percentage Error
	MAE        float64                `json:"mae"`  // Mean Absolute Error
	RMSE       float64                `json:"rmse"` // Root Mean Squared Error
	DataPoints int                    `json:"data_points"`
}

// Result is the forecast block. Values, Labels and TimestampsMs have
// Horizon+1 entries; entry 0 is the last observed day.
type Result struct {
	Values       []float64 `json:"values"`
	Labels       []string  `json:"labels"`
	TimestampsMs []int64   `json:"timestamps"`
	Fitted       []float64 `json:"fitted"` // In-sample predictions, one per input point
	Info         ModelInfo `json:"model"`
}

// Forecaster interface for all forecasting algorithms
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast projects the daily series Horizon days ahead
	Forecast(values []float64, timestampsMs []int64, params Params) (*Result, error)
}

var (
	registryMu           sync.RWMutex
	forecasterRegistry   = make(map[string]Forecaster)
	errUnknownForecaster = errors.New("unknown forecaster")
)

// RegisterForecaster adds a forecaster to the registry
func RegisterForecaster(name string, forecaster Forecaster) {
	registryMu.Lock()
	defer registryMu.Unlock()
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name
func GetForecaster(name string) (Forecaster, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	return nil, fmt.Errorf("%w: %s", errUnknownForecaster, name)
}

// ListForecasters returns the sorted list of available forecaster names
func ListForecasters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Forecast runs the default multiplicative Holt-Winters model
func Forecast(values []float64, timestampsMs []int64, params Params) (*Result, error) {
	return NewHoltWintersForecaster(Multiplicative).Forecast(values, timestampsMs, params)
}

func validate(values []float64, timestampsMs []int64, params Params) error {
	if len(values) != len(timestampsMs) {
		return fmt.Errorf("%w: %d values but %d timestamps", ErrInvalidArgument, len(values), len(timestampsMs))
	}
	if params.Horizon < 1 {
		return fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidArgument, params.Horizon)
	}
	if params.SeasonLength < 1 {
		return fmt.Errorf("%w: season length must be positive, got %d", ErrInvalidArgument, params.SeasonLength)
	}
	for i := 1; i < len(timestampsMs); i++ {
		if timestampsMs[i] <= timestampsMs[i-1] {
			return fmt.Errorf("%w: timestamps not ascending at index %d", ErrInvalidArgument, i)
		}
	}
	return nil
}

// emptyResult is the forecast of a series with no observations
func emptyResult(algorithm string) *Result {
	return &Result{
		Values:       []float64{},
		Labels:       []string{},
		TimestampsMs: []int64{},
		Fitted:       []float64{},
		Info:         ModelInfo{Algorithm: algorithm, Regime: RegimeEmpty},
	}
}

// projectionAxis builds Horizon+1 timestamps and labels anchored on the last
// observed day, one calendar day apart.
func projectionAxis(lastTs int64, params Params) ([]int64, []string) {
	ts := make([]int64, params.Horizon+1)
	labels := make([]string, params.Horizon+1)
	for i := range ts {
		ts[i] = lastTs + int64(i)*analytics.DayMillis
		labels[i] = analytics.DayLabel(ts[i], params.Location)
	}
	return ts, labels
}

func clampNonNegative(values []float64) {
	for i, v := range values {
		if v < 0 {
			values[i] = 0
		}
	}
}

// fitInfo fills the error metrics of fitted against actual
func fitInfo(info *ModelInfo, actual, fitted []float64) {
	info.MAPE = CalculateMAPE(actual, fitted)
	info.MAE = CalculateMAE(actual, fitted)
	info.RMSE = CalculateRMSE(actual, fitted)
	info.DataPoints = len(actual)
}

// CalculateMAPE calculates Mean Absolute Percentage Error
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}
