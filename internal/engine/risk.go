package engine

import (
	"math"

	"github.com/prevanet/prevention-server/internal/database"
	"github.com/prevanet/prevention-server/internal/stats"
)

// scoreRisk combines deviation flags into a 0-100 weighted risk score.
// Only flagged signals contribute; each contributes weight x min(3, |z|).
// With all five signals at max intensity the raw sum is 3.0, so the x30
// scale maps the theoretical maximum to 90, a soft ceiling under the clamp.
func scoreRisk(profile *database.BaselineProfile, flags map[string]bool, sample *database.DailySample) float64 {
	if profile == nil || profile.Status != database.BaselineStatusActive {
		return 0
	}

	var total float64
	for _, signal := range database.Signals {
		if !flags[signal] {
			continue
		}

		baseline, ok := profile.Baselines[signal]
		if !ok {
			continue
		}

		value, _ := database.SignalValue(sample, signal)
		z := stats.ZScore(value, baseline.Mean, baseline.Std)
		intensity := math.Min(maxIntensity, math.Abs(z))

		total += signalWeights[signal] * intensity
	}

	return stats.Round(math.Min(100.0, total*riskScale), 1)
}
