package engine

import (
	"math"

	"github.com/prevanet/prevention-server/internal/database"
	"github.com/prevanet/prevention-server/internal/stats"
)

// DeviationReason classifies why a signal was flagged.
type DeviationReason string

const (
	ReasonNormal    DeviationReason = "normal"
	ReasonZScore    DeviationReason = "z_score_exceeded"
	ReasonPctChange DeviationReason = "pct_change_exceeded"
	ReasonTrend     DeviationReason = "trend_deviation"
)

// DeviationResult describes one signal's evaluation for one day.
type DeviationResult struct {
	IsDeviated bool            `json:"is_deviated"`
	ZScore     float64         `json:"z_score"`
	PctChange  float64         `json:"pct_change"`
	Reason     DeviationReason `json:"reason"`
}

// detect evaluates a single value against the signal's baseline. recent
// holds up to trendDays prior-day values, newest first, current day
// excluded.
//
// When both the z-score and percent-change thresholds trip, the
// percent-change reason wins (last check overwrites); a consistent 3-day
// trend overrides both and forces a deviation even if the current day is
// within bounds.
func detect(profile *database.BaselineProfile, signal string, value float64, recent []float64) DeviationResult {
	normal := DeviationResult{Reason: ReasonNormal}

	if profile == nil || profile.Status != database.BaselineStatusActive {
		return normal
	}
	baseline, ok := profile.Baselines[signal]
	if !ok {
		return normal
	}

	// std=0 disables z-score detection; mean=0 disables percent change.
	z := stats.ZScore(value, baseline.Mean, baseline.Std)
	pct := stats.PercentChange(value, baseline.Mean)

	result := DeviationResult{
		ZScore:    stats.Round(z, 3),
		PctChange: stats.Round(pct, 1),
		Reason:    ReasonNormal,
	}

	if math.Abs(z) > zScoreThreshold {
		result.IsDeviated = true
		result.Reason = ReasonZScore
	}

	if math.Abs(pct) > pctChangeThreshold {
		result.IsDeviated = true
		result.Reason = ReasonPctChange
	}

	// Sustained mild drift: the last trendDays prior values all outliers in
	// the same direction, against the same baseline.
	if len(recent) >= trendDays {
		allAbove, allBelow := true, true
		for _, v := range recent[:trendDays] {
			rz := stats.ZScore(v, baseline.Mean, baseline.Std)
			if rz <= zScoreThreshold {
				allAbove = false
			}
			if rz >= -zScoreThreshold {
				allBelow = false
			}
		}
		if allAbove || allBelow {
			result.IsDeviated = true
			result.Reason = ReasonTrend
		}
	}

	return result
}
