package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"teamcal-backend/internal/models"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

// ReplaceActivities upserts each item keyed by (id, resource_type). Items
// failing minimal validation are skipped; the first storage failure aborts the
// remaining batch (already-written rows stay committed).
func (r *ActivityRepo) ReplaceActivities(ctx context.Context, items []models.Activity) error {
	if len(items) == 0 {
		return nil
	}

	// Both timestamps are reset on every upsert, matching REPLACE semantics.
	now := time.Now().UTC()

	query := `
		INSERT INTO activities (id, resource_type, starts_at, ends_at, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id, resource_type) DO UPDATE SET
			starts_at  = EXCLUDED.starts_at,
			ends_at    = EXCLUDED.ends_at,
			payload    = EXCLUDED.payload,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`

	for _, item := range items {
		if item.ID == "" || item.ResourceType == "" || item.StartsAt.IsZero() {
			continue
		}

		payload := item.Payload
		if len(payload) == 0 {
			payload = json.RawMessage("{}")
		}

		if _, err := r.pool.Exec(ctx, query, item.ID, item.ResourceType, item.StartsAt, item.EndsAt, payload, now); err != nil {
			return fmt.Errorf("failed to upsert activity %s/%s: %w", item.ResourceType, item.ID, err)
		}
	}

	return nil
}

// GetActivities returns activities overlapping [from, to], ordered by start.
func (r *ActivityRepo) GetActivities(ctx context.Context, from, to time.Time) ([]models.Activity, error) {
	query := `
		SELECT id, resource_type, starts_at, ends_at, payload, created_at, updated_at
		FROM activities
		WHERE starts_at <= $1 AND (ends_at IS NULL OR ends_at >= $2)
		ORDER BY starts_at ASC
	`

	rows, err := r.pool.Query(ctx, query, to, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.ResourceType, &a.StartsAt, &a.EndsAt, &a.Payload, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	return activities, nil
}

// DeleteOlderThan removes activities whose start is older than the given
// number of days. Returns the number of rows deleted.
func (r *ActivityRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE starts_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old activities: %w", err)
	}

	return tag.RowsAffected(), nil
}
