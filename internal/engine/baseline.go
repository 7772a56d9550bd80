package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prevanet/prevention-server/internal/database"
	"github.com/prevanet/prevention-server/internal/stats"
)

// activateBaseline computes and persists per-signal baselines once enough
// actual history exists, transitioning the profile to active. The transition
// happens exactly once; baselines are never recomputed afterwards.
func (e *Engine) activateBaseline(ctx context.Context, profile *database.BaselineProfile) (bool, error) {
	if profile.DaysCollected < minBaselineDays {
		return false, nil
	}

	// Lookback is wider than the minimum window to tolerate gaps.
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -baselineLookbackDays)

	samples, err := e.history.SamplesInRange(ctx, profile.UserID, from, to)
	if err != nil {
		return false, err
	}

	// The day counter can run ahead of retrievable history; never activate
	// on fewer actual samples than the minimum.
	if len(samples) < minBaselineDays {
		return false, nil
	}

	baselines := make(map[string]database.SignalBaseline)
	for _, signal := range database.Signals {
		if !profile.SignalEnabled(signal) {
			continue
		}

		var values []float64
		for i := range samples {
			if v, ok := database.SignalValue(&samples[i], signal); ok {
				values = append(values, v)
			}
		}

		if len(values) == 0 {
			baselines[signal] = database.SignalBaseline{Mean: 0, Std: 0}
			continue
		}

		baselines[signal] = database.SignalBaseline{
			Mean: stats.Round(stats.Mean(values), 2),
			Std:  stats.Round(stats.StdDev(values), 2),
		}
	}

	profile.Baselines = baselines
	profile.Status = database.BaselineStatusActive

	if err := e.profiles.SaveProfile(ctx, profile); err != nil {
		return false, err
	}

	log.Info().
		Str("user_id", profile.UserID).
		Int("samples", len(samples)).
		Msg("Baseline activated")

	return true, nil
}
