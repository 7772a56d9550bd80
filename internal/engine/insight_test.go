package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prevanet/prevention-server/internal/database"
)

func actionIDs(actions []database.RecommendedAction) []string {
	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestRiskLevelBoundaries(t *testing.T) {
	assert.Equal(t, database.RiskLevelLow, riskLevel(0))
	assert.Equal(t, database.RiskLevelLow, riskLevel(29.9))
	assert.Equal(t, database.RiskLevelModerate, riskLevel(30.0))
	assert.Equal(t, database.RiskLevelModerate, riskLevel(59.9))
	assert.Equal(t, database.RiskLevelElevated, riskLevel(60.0))
	assert.Equal(t, database.RiskLevelElevated, riskLevel(100))
}

func TestGenerateInsight_NoDeviations(t *testing.T) {
	eng, profiles, insights := newTestEngine(nil, activeProfile("u1", uniformBaselines(100, 10)))

	ins, err := eng.GenerateInsight(context.Background(), "u1", map[string]bool{}, 0)
	require.NoError(t, err)
	require.NotNil(t, ins)

	assert.Equal(t, "Your behavioral patterns are stable. Continue with your current routine.", ins.SummaryMessage)
	require.Len(t, ins.RecommendedActions, 1)
	assert.Equal(t, "maintain", ins.RecommendedActions[0].ID)
	assert.Equal(t, database.PriorityLow, ins.RecommendedActions[0].Priority)

	assert.Len(t, insights.insights, 1)
	assert.Equal(t, 0.0, profiles.profiles["u1"].CurrentRiskScore)
}

func TestGenerateInsight_SleepDeviation(t *testing.T) {
	eng, _, _ := newTestEngine(nil, activeProfile("u1", uniformBaselines(100, 10)))

	flags := map[string]bool{database.SignalSleep: true}
	ins, err := eng.GenerateInsight(context.Background(), "u1", flags, 21.0)
	require.NoError(t, err)

	assert.Equal(t, []string{"sleep_priority"}, actionIDs(ins.RecommendedActions))
	assert.Equal(t, database.PriorityHigh, ins.RecommendedActions[0].Priority)
	assert.Equal(t, "Low risk detected based on recent activity patterns. 1 recommendations provided.", ins.SummaryMessage)
}

// Steps and sedentary deviating together produce the combined movement
// recommendation in place of the steps-only one; the sedentary rule still
// fires independently.
func TestGenerateInsight_CombinedMovementRule(t *testing.T) {
	eng, _, _ := newTestEngine(nil, activeProfile("u1", uniformBaselines(100, 10)))

	flags := map[string]bool{
		database.SignalSteps:     true,
		database.SignalSedentary: true,
	}
	ins, err := eng.GenerateInsight(context.Background(), "u1", flags, 40.0)
	require.NoError(t, err)

	assert.Equal(t, []string{"movement_breaks", "reduce_sedentary"}, actionIDs(ins.RecommendedActions))
	assert.Equal(t, database.RiskLevelModerate, ins.RiskLevel)
}

func TestGenerateInsight_StepsAlone(t *testing.T) {
	eng, _, _ := newTestEngine(nil, activeProfile("u1", uniformBaselines(100, 10)))

	flags := map[string]bool{database.SignalSteps: true}
	ins, err := eng.GenerateInsight(context.Background(), "u1", flags, 22.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"increase_steps"}, actionIDs(ins.RecommendedActions))
	assert.Equal(t, database.PriorityMedium, ins.RecommendedActions[0].Priority)
}

func TestGenerateInsight_AllRulesInDisplayOrder(t *testing.T) {
	eng, _, _ := newTestEngine(nil, activeProfile("u1", uniformBaselines(100, 10)))

	flags := make(map[string]bool)
	for _, signal := range database.Signals {
		flags[signal] = true
	}
	ins, err := eng.GenerateInsight(context.Background(), "u1", flags, 90.0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sleep_priority",
		"movement_breaks",
		"reduce_sedentary",
		"location_variety",
		"exercise_routine",
	}, actionIDs(ins.RecommendedActions))
}

// Three or more deviations switch to the count-based warning regardless of
// the risk level.
func TestGenerateInsight_MultiDeviationSummary(t *testing.T) {
	eng, _, _ := newTestEngine(nil, activeProfile("u1", uniformBaselines(100, 10)))

	flags := map[string]bool{
		database.SignalSleep:     true,
		database.SignalSteps:     true,
		database.SignalLocation:  true,
		database.SignalSedentary: false,
	}
	ins, err := eng.GenerateInsight(context.Background(), "u1", flags, 5.0)
	require.NoError(t, err)

	assert.Equal(t, "Your behavioral patterns show 3 significant deviations. Please review recommendations and consider adjustments.", ins.SummaryMessage)
	assert.Equal(t, database.RiskLevelLow, ins.RiskLevel)
}

func TestGenerateInsight_UpdatesProfileRiskScore(t *testing.T) {
	eng, profiles, insights := newTestEngine(nil, activeProfile("u1", uniformBaselines(100, 10)))

	flags := map[string]bool{database.SignalSleep: true}
	_, err := eng.GenerateInsight(context.Background(), "u1", flags, 63.0)
	require.NoError(t, err)

	assert.Equal(t, 63.0, profiles.profiles["u1"].CurrentRiskScore)
	require.Len(t, insights.insights, 1)
	assert.Equal(t, database.RiskLevelElevated, insights.insights[0].RiskLevel)
	assert.NotEmpty(t, insights.insights[0].ID)
}

// Insights append: repeated generation for the same day accumulates records
// rather than overwriting (deduplication is the caller's concern).
func TestGenerateInsight_AppendsHistory(t *testing.T) {
	eng, _, insights := newTestEngine(nil, activeProfile("u1", uniformBaselines(100, 10)))

	for i := 0; i < 3; i++ {
		_, err := eng.GenerateInsight(context.Background(), "u1", map[string]bool{}, 0)
		require.NoError(t, err)
	}

	assert.Len(t, insights.insights, 3)
}

func TestGenerateInsight_NoProfile(t *testing.T) {
	eng, _, insights := newTestEngine(nil, nil)

	ins, err := eng.GenerateInsight(context.Background(), "ghost", map[string]bool{}, 0)
	require.NoError(t, err)

	assert.Nil(t, ins)
	assert.Empty(t, insights.insights)
}
