package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendInsight stores a new insight record, assigning its id and creation
// timestamp. Insights are write-once; there is no update path.
func (db *DB) AppendInsight(ctx context.Context, ins *Insight) error {
	actions, err := json.Marshal(ins.RecommendedActions)
	if err != nil {
		return fmt.Errorf("failed to marshal recommended actions: %w", err)
	}
	flags, err := json.Marshal(ins.DeviationFlags)
	if err != nil {
		return fmt.Errorf("failed to marshal deviation flags: %w", err)
	}

	ins.ID = uuid.New().String()
	ins.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO ai_insights (
			id, user_id, date, risk_score, risk_level, summary_message,
			recommended_actions, deviation_flags, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = db.ExecContext(
		ctx,
		query,
		ins.ID,
		ins.UserID,
		ins.Date,
		ins.RiskScore,
		ins.RiskLevel,
		ins.SummaryMessage,
		actions,
		flags,
		ins.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert insight: %w", err)
	}

	return nil
}

// LatestInsights retrieves up to limit insights for a user, newest first.
func (db *DB) LatestInsights(ctx context.Context, userID string, limit int) ([]Insight, error) {
	query := `
		SELECT id, user_id, date, risk_score, risk_level, summary_message,
		       recommended_actions, deviation_flags, created_at
		FROM ai_insights
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insights []Insight
	for rows.Next() {
		var ins Insight
		var actions, flags []byte
		if err := rows.Scan(
			&ins.ID,
			&ins.UserID,
			&ins.Date,
			&ins.RiskScore,
			&ins.RiskLevel,
			&ins.SummaryMessage,
			&actions,
			&flags,
			&ins.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(actions, &ins.RecommendedActions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommended actions: %w", err)
		}
		if err := json.Unmarshal(flags, &ins.DeviationFlags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal deviation flags: %w", err)
		}
		insights = append(insights, ins)
	}

	return insights, rows.Err()
}
