package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prevanet/prevention-server/internal/database"
)

func variedSamples(userID string, n int) []database.DailySample {
	day := time.Now().UTC().AddDate(0, 0, -n)
	steps := []int64{10, 12, 11, 13, 12}

	var samples []database.DailySample
	for i := 0; i < n; i++ {
		s := flatSample(userID, day.AddDate(0, 0, i))
		s.Steps = intPtr(steps[i%len(steps)])
		samples = append(samples, s)
	}
	return samples
}

func TestTryActivateBaseline_NotEnoughDaysCollected(t *testing.T) {
	history := &fakeHistory{samples: variedSamples("u1", 14)}
	eng, profiles, _ := newTestEngine(history, collectingProfile("u1", 13))

	activated, err := eng.TryActivateBaseline(context.Background(), "u1")
	require.NoError(t, err)

	assert.False(t, activated)
	assert.Equal(t, database.BaselineStatusCollecting, profiles.profiles["u1"].Status)
	assert.Zero(t, profiles.saves)
}

// The day counter can claim 14 while fewer samples are actually retrievable;
// activation must refuse until the history itself is sufficient.
func TestTryActivateBaseline_NotEnoughRetrievableSamples(t *testing.T) {
	history := &fakeHistory{samples: variedSamples("u1", 10)}
	eng, profiles, _ := newTestEngine(history, collectingProfile("u1", 14))

	activated, err := eng.TryActivateBaseline(context.Background(), "u1")
	require.NoError(t, err)

	assert.False(t, activated)
	assert.Equal(t, database.BaselineStatusCollecting, profiles.profiles["u1"].Status)
}

func TestTryActivateBaseline_ComputesPopulationBaselines(t *testing.T) {
	// 15 samples cycling steps through [10,12,11,13,12] three times: the
	// population statistics of that series are mean=11.6, std~=1.02.
	history := &fakeHistory{samples: variedSamples("u1", 15)}
	eng, profiles, _ := newTestEngine(history, collectingProfile("u1", 15))

	activated, err := eng.TryActivateBaseline(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, activated)

	p := profiles.profiles["u1"]
	assert.Equal(t, database.BaselineStatusActive, p.Status)

	steps := p.Baselines[database.SignalSteps]
	assert.Equal(t, 11.6, steps.Mean)
	assert.Equal(t, 1.02, steps.Std)

	sleep := p.Baselines[database.SignalSleep]
	assert.Equal(t, 420.0, sleep.Mean)
	assert.Equal(t, 0.0, sleep.Std)
}

func TestTryActivateBaseline_SkipsSamplesMissingField(t *testing.T) {
	samples := variedSamples("u1", 14)
	// Drop active_minutes from a few days; those days are skipped for that
	// signal only.
	samples[2].ActiveMinutes = nil
	samples[7].ActiveMinutes = nil

	history := &fakeHistory{samples: samples}
	eng, profiles, _ := newTestEngine(history, collectingProfile("u1", 14))

	activated, err := eng.TryActivateBaseline(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, activated)

	active := profiles.profiles["u1"].Baselines[database.SignalActiveMinutes]
	assert.Equal(t, 25.0, active.Mean)
	assert.Equal(t, 0.0, active.Std)
}

func TestTryActivateBaseline_EmptySeriesGetsZeroBaseline(t *testing.T) {
	samples := variedSamples("u1", 14)
	for i := range samples {
		samples[i].LocationDiversity = nil
	}

	history := &fakeHistory{samples: samples}
	eng, profiles, _ := newTestEngine(history, collectingProfile("u1", 14))

	activated, err := eng.TryActivateBaseline(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, activated)

	location, ok := profiles.profiles["u1"].Baselines[database.SignalLocation]
	require.True(t, ok)
	assert.Equal(t, database.SignalBaseline{Mean: 0, Std: 0}, location)
}

func TestTryActivateBaseline_DisabledSignalSkipped(t *testing.T) {
	profile := collectingProfile("u1", 14)
	profile.EnabledSignals[database.SignalLocation] = false

	history := &fakeHistory{samples: variedSamples("u1", 14)}
	eng, profiles, _ := newTestEngine(history, profile)

	activated, err := eng.TryActivateBaseline(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, activated)

	assert.False(t, profiles.profiles["u1"].HasBaseline(database.SignalLocation))
	assert.True(t, profiles.profiles["u1"].HasBaseline(database.SignalSteps))
}

func TestTryActivateBaseline_UnknownUser(t *testing.T) {
	eng, _, _ := newTestEngine(nil, nil)

	activated, err := eng.TryActivateBaseline(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, activated)
}
