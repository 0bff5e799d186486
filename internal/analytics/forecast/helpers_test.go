package forecast

import (
	"math"
	"testing"

	"github.com/anirame128/fortnite-insight-dashboard/internal/analytics"
)

// 2024-03-10T00:00:00Z
const testBaseMs int64 = 1710028800000

// dailyAxis returns n consecutive day timestamps starting at testBaseMs
func dailyAxis(n int) []int64 {
	ts := make([]int64, n)
	for i := range ts {
		ts[i] = testBaseMs + int64(i)*analytics.DayMillis
	}
	return ts
}

// generateWeeklyData creates n daily peaks with a weekend bump and slow growth
func generateWeeklyData(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		weekday := 1.0
		if i%7 >= 5 {
			weekday = 1.4
		}
		values[i] = (500 + float64(i)*3) * weekday
	}
	return values
}

func assertInDelta(t *testing.T, expected, actual, delta float64, msg string) {
	t.Helper()
	if math.Abs(expected-actual) > delta {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// checkShape verifies the Horizon+1 axis invariants shared by every forecaster
func checkShape(t *testing.T, result *Result, values []float64, ts []int64, horizon int) {
	t.Helper()

	if len(result.Values) != horizon+1 {
		t.Fatalf("Expected %d values, got %d", horizon+1, len(result.Values))
	}
	if len(result.Labels) != horizon+1 || len(result.TimestampsMs) != horizon+1 {
		t.Fatalf("Expected %d labels and timestamps, got %d and %d", horizon+1, len(result.Labels), len(result.TimestampsMs))
	}
	if len(result.Fitted) != len(values) {
		t.Errorf("Expected %d fitted values, got %d", len(values), len(result.Fitted))
	}

	last := len(values) - 1
	if result.Values[0] != values[last] {
		t.Errorf("Expected forecast to start at last observation %v, got %v", values[last], result.Values[0])
	}
	if result.TimestampsMs[0] != ts[last] {
		t.Errorf("Expected first timestamp %d, got %d", ts[last], result.TimestampsMs[0])
	}
	for i := 1; i <= horizon; i++ {
		if result.TimestampsMs[i]-result.TimestampsMs[i-1] != analytics.DayMillis {
			t.Errorf("Timestamp %d is not one day after its predecessor", i)
		}
	}
	for i, v := range result.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("Value %d is not finite: %v", i, v)
		}
	}
}
