// ABOUTME: User preference rows consulted when building delegation context
// ABOUTME: Upsert by key with confidence in [0,1]; listed by descending confidence

package store

import (
	"context"
	"fmt"
	"time"
)

// UpsertPreference inserts or updates a preference by key.
func (s *SQLiteStore) UpsertPreference(ctx context.Context, pref *Preference) error {
	if pref.Key == "" {
		return fmt.Errorf("preference key is required")
	}
	if pref.Confidence < 0 || pref.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", pref.Confidence)
	}
	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO preferences (key, value, confidence, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		pref.Key,
		pref.Value,
		pref.Confidence,
		pref.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting preference: %w", err)
	}
	return nil
}

// ListPreferences returns all preferences, highest confidence first.
func (s *SQLiteStore) ListPreferences(ctx context.Context) ([]Preference, error) {
	query := `
		SELECT key, value, confidence, updated_at
		FROM preferences
		ORDER BY confidence DESC, key ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		var tsStr string
		if err := rows.Scan(&p.Key, &p.Value, &p.Confidence, &tsStr); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		p.UpdatedAt, err = time.Parse(time.RFC3339Nano, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		prefs = append(prefs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preferences: %w", err)
	}

	if prefs == nil {
		prefs = []Preference{}
	}
	return prefs, nil
}
