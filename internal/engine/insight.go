package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prevanet/prevention-server/internal/database"
)

// riskLevel maps a 0-100 risk score to its display category.
func riskLevel(score float64) string {
	switch {
	case score < moderateRiskThreshold:
		return database.RiskLevelLow
	case score < elevatedRiskThreshold:
		return database.RiskLevelModerate
	default:
		return database.RiskLevelElevated
	}
}

// generateInsight builds and persists the insight for the given deviation
// flags and risk score, then updates the profile's current risk score.
// Rules are evaluated in a fixed order; the order sets display priority.
func (e *Engine) generateInsight(ctx context.Context, profile *database.BaselineProfile, flags map[string]bool, riskScore float64) (*database.Insight, error) {
	if flags == nil {
		flags = make(map[string]bool)
	}

	level := riskLevel(riskScore)

	var actions []database.RecommendedAction

	if flags[database.SignalSleep] {
		actions = append(actions, database.RecommendedAction{
			ID:       "sleep_priority",
			Text:     "Prioritize consistent sleep timing this week. Aim for your usual bedtime.",
			Priority: database.PriorityHigh,
		})
	}

	// A combined movement recommendation replaces the steps-only one when
	// both steps and sedentary time drifted together.
	if flags[database.SignalSteps] && flags[database.SignalSedentary] {
		actions = append(actions, database.RecommendedAction{
			ID:       "movement_breaks",
			Text:     "Movement levels have declined. Consider 10-minute activity breaks every hour.",
			Priority: database.PriorityHigh,
		})
	} else if flags[database.SignalSteps] {
		actions = append(actions, database.RecommendedAction{
			ID:       "increase_steps",
			Text:     "Add 2,000 steps to your daily routine with short walks.",
			Priority: database.PriorityMedium,
		})
	}

	if flags[database.SignalSedentary] {
		actions = append(actions, database.RecommendedAction{
			ID:       "reduce_sedentary",
			Text:     "Reduce consecutive sitting time. Stand and stretch every 30 minutes.",
			Priority: database.PriorityMedium,
		})
	}

	if flags[database.SignalLocation] {
		actions = append(actions, database.RecommendedAction{
			ID:       "location_variety",
			Text:     "Increase location variety. Visit different environments during the day.",
			Priority: database.PriorityLow,
		})
	}

	if flags[database.SignalActiveMinutes] {
		actions = append(actions, database.RecommendedAction{
			ID:       "exercise_routine",
			Text:     "Return to your regular exercise routine. Start with lighter activity.",
			Priority: database.PriorityMedium,
		})
	}

	deviationCount := 0
	for _, deviated := range flags {
		if deviated {
			deviationCount++
		}
	}

	var summary string
	switch {
	case deviationCount >= 3:
		summary = fmt.Sprintf("Your behavioral patterns show %d significant deviations. Please review recommendations and consider adjustments.", deviationCount)
	case deviationCount > 0:
		summary = fmt.Sprintf("%s risk detected based on recent activity patterns. %d recommendations provided.", level, len(actions))
	default:
		summary = "Your behavioral patterns are stable. Continue with your current routine."
		actions = append(actions, database.RecommendedAction{
			ID:       "maintain",
			Text:     "Maintain your current healthy routine.",
			Priority: database.PriorityLow,
		})
	}

	insight := &database.Insight{
		UserID:             profile.UserID,
		Date:               time.Now().UTC(),
		RiskScore:          riskScore,
		RiskLevel:          level,
		SummaryMessage:     summary,
		RecommendedActions: actions,
		DeviationFlags:     flags,
	}

	if err := e.insights.AppendInsight(ctx, insight); err != nil {
		return nil, fmt.Errorf("failed to append insight: %w", err)
	}

	profile.CurrentRiskScore = riskScore
	if err := e.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile risk score: %w", err)
	}

	log.Info().
		Str("user_id", profile.UserID).
		Str("insight_id", insight.ID).
		Float64("risk_score", riskScore).
		Str("risk_level", level).
		Int("deviations", deviationCount).
		Msg("Insight generated")

	return insight, nil
}
