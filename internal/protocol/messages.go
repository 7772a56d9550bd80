package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// SampleMessage is the queue format for one user's daily sample.
type SampleMessage struct {
	EventID           string    `json:"event_id"`
	UserID            string    `json:"user_id"`
	Date              string    `json:"date"` // YYYY-MM-DD
	Steps             int64     `json:"steps"`
	SleepMinutes      int64     `json:"sleep_minutes"`
	SedentaryMinutes  int64     `json:"sedentary_minutes"`
	LocationDiversity float64   `json:"location_diversity"`
	ActiveMinutes     int64     `json:"active_minutes"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// Day parses the message's calendar day.
func (m *SampleMessage) Day() (time.Time, error) {
	day, err := time.Parse("2006-01-02", m.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", m.Date, err)
	}
	return day, nil
}

// Validate rejects out-of-range values before they reach the engine.
func (m *SampleMessage) Validate() error {
	if m.UserID == "" {
		return fmt.Errorf("missing user_id")
	}
	if _, err := m.Day(); err != nil {
		return err
	}
	if m.Steps < 0 || m.SleepMinutes < 0 || m.SedentaryMinutes < 0 || m.ActiveMinutes < 0 {
		return fmt.Errorf("negative signal value")
	}
	if m.LocationDiversity < 0 || m.LocationDiversity > 100 {
		return fmt.Errorf("location_diversity out of range: %.1f", m.LocationDiversity)
	}
	return nil
}

// InsightNotification is the queue format for downstream insight consumers.
type InsightNotification struct {
	Type           string    `json:"type"` // INSIGHT_CREATED, BASELINE_ACTIVATED
	UserID         string    `json:"user_id"`
	InsightID      string    `json:"insight_id,omitempty"`
	Date           time.Time `json:"date"`
	RiskScore      float64   `json:"risk_score"`
	RiskLevel      string    `json:"risk_level,omitempty"`
	SummaryMessage string    `json:"summary_message,omitempty"`
	Deviations     int       `json:"deviations"`
}

const (
	NotificationTypeInsight           = "INSIGHT_CREATED"
	NotificationTypeBaselineActivated = "BASELINE_ACTIVATED"
)

// EncodeSampleMessage encodes a SampleMessage to JSON
func EncodeSampleMessage(msg *SampleMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeSampleMessage decodes JSON to SampleMessage
func DecodeSampleMessage(data []byte) (*SampleMessage, error) {
	var msg SampleMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EncodeInsightNotification encodes an InsightNotification to JSON
func EncodeInsightNotification(n *InsightNotification) ([]byte, error) {
	return json.Marshal(n)
}

// DecodeInsightNotification decodes JSON to InsightNotification
func DecodeInsightNotification(data []byte) (*InsightNotification, error) {
	var n InsightNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
