package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGPreferenceStore reads user notification preferences from Postgres.
type PGPreferenceStore struct {
	pool *pgxpool.Pool
}

// NewPGPreferenceStore creates a Postgres-backed preference store.
func NewPGPreferenceStore(pool *pgxpool.Pool) *PGPreferenceStore {
	return &PGPreferenceStore{pool: pool}
}

func (s *PGPreferenceStore) Preferences(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT preference_key, enabled
		FROM user_notification_preferences
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("policy: preference lookup: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]bool)
	for rows.Next() {
		var key string
		var enabled bool
		if err := rows.Scan(&key, &enabled); err != nil {
			return nil, fmt.Errorf("policy: scan preference: %w", err)
		}
		prefs[key] = enabled
	}
	return prefs, rows.Err()
}

// PGMuteStore reads per-(user, league) mute flags from Postgres.
type PGMuteStore struct {
	pool *pgxpool.Pool
}

// NewPGMuteStore creates a Postgres-backed mute store.
func NewPGMuteStore(pool *pgxpool.Pool) *PGMuteStore {
	return &PGMuteStore{pool: pool}
}

func (s *PGMuteStore) IsMuted(ctx context.Context, userID, leagueID string) (bool, error) {
	var muted bool
	err := s.pool.QueryRow(ctx, `
		SELECT muted FROM league_mutes
		WHERE user_id = $1 AND league_id = $2`, userID, leagueID,
	).Scan(&muted)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("policy: mute lookup: %w", err)
	}
	return muted, nil
}
