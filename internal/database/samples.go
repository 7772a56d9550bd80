package database

import (
	"context"
	"fmt"
	"time"
)

// Monitored signal names. These are the keys used in enabled_signals,
// baselines, and deviation flag maps throughout the system.
const (
	SignalSteps         = "steps"
	SignalSleep         = "sleep"
	SignalSedentary     = "sedentary"
	SignalLocation      = "location"
	SignalActiveMinutes = "active_minutes"
)

// Signals lists all monitored signals in evaluation order.
var Signals = []string{
	SignalSteps,
	SignalSleep,
	SignalSedentary,
	SignalLocation,
	SignalActiveMinutes,
}

// signalColumns maps signal names to daily_samples columns. Acts as the
// whitelist for queries built per signal.
var signalColumns = map[string]string{
	SignalSteps:         "steps",
	SignalSleep:         "sleep_minutes",
	SignalSedentary:     "sedentary_minutes",
	SignalLocation:      "location_diversity",
	SignalActiveMinutes: "active_minutes",
}

// SignalValue extracts the named signal's value from a sample. The second
// return is false when the sample does not carry that signal.
func SignalValue(s *DailySample, signal string) (float64, bool) {
	switch signal {
	case SignalSteps:
		if s.Steps != nil {
			return float64(*s.Steps), true
		}
	case SignalSleep:
		if s.SleepMinutes != nil {
			return float64(*s.SleepMinutes), true
		}
	case SignalSedentary:
		if s.SedentaryMinutes != nil {
			return float64(*s.SedentaryMinutes), true
		}
	case SignalLocation:
		if s.LocationDiversity != nil {
			return *s.LocationDiversity, true
		}
	case SignalActiveMinutes:
		if s.ActiveMinutes != nil {
			return float64(*s.ActiveMinutes), true
		}
	}
	return 0, false
}

// UpsertDailySample inserts or replaces the sample for (user_id, date).
// Returns true when a new row was created, false when an existing day was
// overwritten. The day counter on the profile must only move for new rows.
func (db *DB) UpsertDailySample(ctx context.Context, s *DailySample) (bool, error) {
	query := `
		INSERT INTO daily_samples (
			user_id, date, steps, sleep_minutes, sedentary_minutes,
			location_diversity, active_minutes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, date) DO UPDATE
		SET steps = EXCLUDED.steps,
		    sleep_minutes = EXCLUDED.sleep_minutes,
		    sedentary_minutes = EXCLUDED.sedentary_minutes,
		    location_diversity = EXCLUDED.location_diversity,
		    active_minutes = EXCLUDED.active_minutes,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id, (xmax = 0) AS inserted
	`

	var inserted bool
	err := db.QueryRowContext(
		ctx,
		query,
		s.UserID,
		s.Date,
		s.Steps,
		s.SleepMinutes,
		s.SedentaryMinutes,
		s.LocationDiversity,
		s.ActiveMinutes,
	).Scan(&s.ID, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert daily sample: %w", err)
	}

	return inserted, nil
}

// SamplesInRange retrieves a user's samples within [from, to], oldest first.
func (db *DB) SamplesInRange(ctx context.Context, userID string, from, to time.Time) ([]DailySample, error) {
	query := `
		SELECT id, user_id, date, steps, sleep_minutes, sedentary_minutes,
		       location_diversity, active_minutes, created_at, updated_at
		FROM daily_samples
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []DailySample
	for rows.Next() {
		var s DailySample
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Date,
			&s.Steps,
			&s.SleepMinutes,
			&s.SedentaryMinutes,
			&s.LocationDiversity,
			&s.ActiveMinutes,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// RecentValuesBefore retrieves up to limit prior-day values for one signal,
// newest first, excluding the given day. Days missing the signal are skipped.
func (db *DB) RecentValuesBefore(ctx context.Context, userID, signal string, day time.Time, limit int) ([]float64, error) {
	column, ok := signalColumns[signal]
	if !ok {
		return nil, fmt.Errorf("unknown signal: %s", signal)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM daily_samples
		WHERE user_id = $1 AND date < $2 AND %s IS NOT NULL
		ORDER BY date DESC
		LIMIT $3
	`, column, column)

	rows, err := db.QueryContext(ctx, query, userID, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, rows.Err()
}
