package forecast

import (
	"math"
	"reflect"
	"testing"
)

func TestForecasterRegistry(t *testing.T) {
	expected := []string{"holt_winters", "holt_winters_additive", "seasonal_naive"}
	if names := ListForecasters(); !reflect.DeepEqual(expected, names) {
		t.Errorf("Expected forecasters %v, got %v", expected, names)
	}

	for _, name := range expected {
		f, err := GetForecaster(name)
		if err != nil {
			t.Fatalf("GetForecaster(%q) failed: %v", name, err)
		}
		if f.Name() != name {
			t.Errorf("Expected name %q, got %q", name, f.Name())
		}
	}

	if _, err := GetForecaster("prophet"); err == nil {
		t.Error("Expected error for unknown forecaster")
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Horizon != 30 || p.SeasonLength != 7 {
		t.Errorf("Unexpected shape defaults: %+v", p)
	}
	if p.Alpha != 0.3 || p.Beta != 0.1 || p.Gamma != 0.05 {
		t.Errorf("Unexpected smoothing defaults: %+v", p)
	}
}

func TestErrorMetrics(t *testing.T) {
	actual := []float64{100, 200, 0}
	predicted := []float64{110, 180, 5}

	assertInDelta(t, 35.0/3, CalculateMAE(actual, predicted), 1e-9, "MAE")
	assertInDelta(t, math.Sqrt((100+400+25)/3.0), CalculateRMSE(actual, predicted), 1e-9, "RMSE")
	// zero actuals are skipped
	assertInDelta(t, 10, CalculateMAPE(actual, predicted), 1e-9, "MAPE")

	if CalculateMAE(actual, predicted[:2]) != 0 {
		t.Error("Expected 0 for mismatched lengths")
	}
}
