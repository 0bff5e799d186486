package models

import (
	"github.com/anirame128/fortnite-insight-dashboard/internal/analytics/forecast"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp"`
	Version     string   `json:"version"`
	Queue       string   `json:"queue,omitempty"`
	GateStore   string   `json:"gate_store,omitempty"`
	Forecasters []string `json:"forecasters,omitempty"`
}

// StatsResponse is the body of a successful stats request. Labels,
// DailyHistory and Timestamps are parallel, one entry per calendar day.
type StatsResponse struct {
	MapCode        string           `json:"mapCode"`
	CurrentPlayers float64          `json:"currentPlayers"`
	Peak24h        float64          `json:"peak24h"`
	DailyGain      float64          `json:"dailyGain"`
	Labels         []string         `json:"labels"`
	DailyHistory   []float64        `json:"dailyHistory"`
	Timestamps     []int64          `json:"timestamps"`
	Forecast       *forecast.Result `json:"forecast"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
