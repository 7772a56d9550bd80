package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Profile retrieves a user's baseline profile, or nil if none exists.
func (db *DB) Profile(ctx context.Context, userID string) (*BaselineProfile, error) {
	query := `
		SELECT user_id, status, days_collected, start_date, enabled_signals,
		       baselines, current_risk_score, created_at, updated_at
		FROM baseline_profiles
		WHERE user_id = $1
	`

	var p BaselineProfile
	var enabledSignals, baselines []byte
	err := db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Status,
		&p.DaysCollected,
		&p.StartDate,
		&enabledSignals,
		&baselines,
		&p.CurrentRiskScore,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(enabledSignals, &p.EnabledSignals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enabled signals: %w", err)
	}
	if err := json.Unmarshal(baselines, &p.Baselines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal baselines: %w", err)
	}

	return &p, nil
}

// SaveProfile inserts or updates a baseline profile.
func (db *DB) SaveProfile(ctx context.Context, p *BaselineProfile) error {
	enabledSignals, err := json.Marshal(p.EnabledSignals)
	if err != nil {
		return fmt.Errorf("failed to marshal enabled signals: %w", err)
	}
	baselines, err := json.Marshal(p.Baselines)
	if err != nil {
		return fmt.Errorf("failed to marshal baselines: %w", err)
	}

	query := `
		INSERT INTO baseline_profiles (
			user_id, status, days_collected, start_date, enabled_signals,
			baselines, current_risk_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET status = EXCLUDED.status,
		    days_collected = EXCLUDED.days_collected,
		    enabled_signals = EXCLUDED.enabled_signals,
		    baselines = EXCLUDED.baselines,
		    current_risk_score = EXCLUDED.current_risk_score,
		    updated_at = CURRENT_TIMESTAMP
	`

	_, err = db.ExecContext(
		ctx,
		query,
		p.UserID,
		p.Status,
		p.DaysCollected,
		p.StartDate,
		enabledSignals,
		baselines,
		p.CurrentRiskScore,
	)
	return err
}
