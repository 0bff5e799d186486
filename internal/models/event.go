package models

import "time"

// StatsEvent is published after every successful stats computation
type StatsEvent struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id,omitempty"`
	MapCode        string    `json:"map_code"`
	ResourceID     string    `json:"resource_id"`
	ComputedAt     time.Time `json:"computed_at"`
	CurrentPlayers float64   `json:"current_players"`
	Peak24h        float64   `json:"peak_24h"`
	DailyGain      float64   `json:"daily_gain"`
	Days           int       `json:"days"`
	Algorithm      string    `json:"algorithm"`
	Regime         string    `json:"regime"`
	// NextDay is the first projected day, 0 when there was nothing to forecast
	NextDay float64 `json:"next_day"`
}
