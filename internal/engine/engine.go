package engine

import (
	"context"
	"time"

	"github.com/prevanet/prevention-server/internal/database"
)

// Detection thresholds and weights are fixed design constants, not tunable
// per signal or per user.
const (
	zScoreThreshold    = 1.5
	pctChangeThreshold = 25.0
	trendDays          = 3

	minBaselineDays      = 14
	baselineLookbackDays = 20

	maxIntensity = 3.0
	riskScale    = 30.0

	moderateRiskThreshold = 30.0
	elevatedRiskThreshold = 60.0
)

// signalWeights determines each deviated signal's contribution to the risk
// score. Weights sum to 1.0.
var signalWeights = map[string]float64{
	database.SignalSleep:         0.35,
	database.SignalSteps:         0.25,
	database.SignalSedentary:     0.20,
	database.SignalLocation:      0.10,
	database.SignalActiveMinutes: 0.10,
}

// MetricsHistory supplies the daily sample history the engine reads.
type MetricsHistory interface {
	SamplesInRange(ctx context.Context, userID string, from, to time.Time) ([]database.DailySample, error)
	RecentValuesBefore(ctx context.Context, userID, signal string, day time.Time, limit int) ([]float64, error)
}

// ProfileStore persists baseline profiles.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (*database.BaselineProfile, error)
	SaveProfile(ctx context.Context, p *database.BaselineProfile) error
}

// InsightStore persists generated insights.
type InsightStore interface {
	AppendInsight(ctx context.Context, ins *database.Insight) error
	LatestInsights(ctx context.Context, userID string, limit int) ([]database.Insight, error)
}

// Engine is the baseline-and-deviation core: baseline activation, per-signal
// deviation detection, weighted risk scoring, and rule-based insight
// generation over injected persistence.
type Engine struct {
	history  MetricsHistory
	profiles ProfileStore
	insights InsightStore
}

// NewEngine creates a new engine over the given collaborators.
func NewEngine(history MetricsHistory, profiles ProfileStore, insights InsightStore) *Engine {
	return &Engine{
		history:  history,
		profiles: profiles,
		insights: insights,
	}
}

// DayEvaluation is the outcome of running the full pipeline for one
// ingested day.
type DayEvaluation struct {
	Activated      bool
	DeviationFlags map[string]bool
	Deviations     map[string]DeviationResult
	RiskScore      float64
	Insight        *database.Insight
}

// EvaluateDay runs the full pipeline for a freshly stored sample: baseline
// activation check, per-signal deviation detection, risk scoring, and
// insight generation. Returns nil when the user has no profile or the
// baseline is still collecting.
func (e *Engine) EvaluateDay(ctx context.Context, sample *database.DailySample) (*DayEvaluation, error) {
	profile, err := e.profiles.Profile(ctx, sample.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	eval := &DayEvaluation{}

	if profile.Status == database.BaselineStatusCollecting {
		activated, err := e.activateBaseline(ctx, profile)
		if err != nil {
			return nil, err
		}
		eval.Activated = activated
	}

	if profile.Status != database.BaselineStatusActive {
		if eval.Activated {
			return eval, nil
		}
		return nil, nil
	}

	eval.DeviationFlags = make(map[string]bool)
	eval.Deviations = make(map[string]DeviationResult)

	for _, signal := range database.Signals {
		if !profile.SignalEnabled(signal) {
			continue
		}

		// Missing fields evaluate as zero, matching stored-sample reads.
		value, _ := database.SignalValue(sample, signal)

		recent, err := e.history.RecentValuesBefore(ctx, sample.UserID, signal, sample.Date, trendDays)
		if err != nil {
			return nil, err
		}

		result := detect(profile, signal, value, recent)
		eval.DeviationFlags[signal] = result.IsDeviated
		eval.Deviations[signal] = result
	}

	eval.RiskScore = scoreRisk(profile, eval.DeviationFlags, sample)

	insight, err := e.generateInsight(ctx, profile, eval.DeviationFlags, eval.RiskScore)
	if err != nil {
		return nil, err
	}
	eval.Insight = insight

	return eval, nil
}

// TryActivateBaseline activates the user's baseline once 14+ days of data
// are collected and retrievable. No-op (false) for missing, already-active,
// or not-yet-ready profiles.
func (e *Engine) TryActivateBaseline(ctx context.Context, userID string) (bool, error) {
	profile, err := e.profiles.Profile(ctx, userID)
	if err != nil {
		return false, err
	}
	if profile == nil || profile.Status != database.BaselineStatusCollecting {
		return false, nil
	}
	return e.activateBaseline(ctx, profile)
}

// DetectDeviation evaluates one signal's current value against the user's
// baseline. A missing profile, inactive baseline, or disabled signal yields
// a normal (non-deviated) result rather than an error.
func (e *Engine) DetectDeviation(ctx context.Context, userID, signal string, value float64, recent []float64) (DeviationResult, error) {
	profile, err := e.profiles.Profile(ctx, userID)
	if err != nil {
		return DeviationResult{Reason: ReasonNormal}, err
	}
	return detect(profile, signal, value, recent), nil
}

// ComputeRisk aggregates deviation flags into a 0-100 risk score. Returns 0
// when the baseline is not active.
func (e *Engine) ComputeRisk(ctx context.Context, userID string, flags map[string]bool, sample *database.DailySample) (float64, error) {
	profile, err := e.profiles.Profile(ctx, userID)
	if err != nil {
		return 0, err
	}
	return scoreRisk(profile, flags, sample), nil
}

// GenerateInsight produces and persists the insight record for the given
// deviation flags and risk score, and updates the profile's current risk
// score. Returns nil without error when the user has no profile.
func (e *Engine) GenerateInsight(ctx context.Context, userID string, flags map[string]bool, riskScore float64) (*database.Insight, error) {
	profile, err := e.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}
	return e.generateInsight(ctx, profile, flags, riskScore)
}
