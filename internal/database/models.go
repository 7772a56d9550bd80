package database

import (
	"time"
)

// DailySample represents one user's passive health signals for one calendar
// day. Signal fields are nullable so partial uploads can still contribute to
// baselines for the signals they do carry.
type DailySample struct {
	ID                int64
	UserID            string
	Date              time.Time
	Steps             *int64
	SleepMinutes      *int64
	SedentaryMinutes  *int64
	LocationDiversity *float64
	ActiveMinutes     *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SignalBaseline holds the personal mean/std for one signal, computed once
// at baseline activation.
type SignalBaseline struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// BaselineProfile tracks a user's baseline learning phase and, once active,
// the per-signal baselines and latest risk score.
type BaselineProfile struct {
	UserID           string
	Status           string
	DaysCollected    int
	StartDate        time.Time
	EnabledSignals   map[string]bool
	Baselines        map[string]SignalBaseline
	CurrentRiskScore float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const (
	BaselineStatusCollecting = "collecting"
	BaselineStatusActive     = "active"
)

// SignalEnabled reports whether the user monitors the given signal.
// Unknown signals default to enabled, matching profile auto-creation.
func (p *BaselineProfile) SignalEnabled(signal string) bool {
	enabled, ok := p.EnabledSignals[signal]
	if !ok {
		return true
	}
	return enabled
}

// HasBaseline reports whether an activated baseline exists for the signal.
func (p *BaselineProfile) HasBaseline(signal string) bool {
	_, ok := p.Baselines[signal]
	return ok
}

// RecommendedAction is one prioritized recommendation inside an insight.
type RecommendedAction struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Insight is one generated, immutable evaluation of a user's day.
type Insight struct {
	ID                 string
	UserID             string
	Date               time.Time
	RiskScore          float64
	RiskLevel          string
	SummaryMessage     string
	RecommendedActions []RecommendedAction
	DeviationFlags     map[string]bool
	CreatedAt          time.Time
}

const (
	RiskLevelLow      = "Low"
	RiskLevelModerate = "Moderate"
	RiskLevelElevated = "Elevated"
)
