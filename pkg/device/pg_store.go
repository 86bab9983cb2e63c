package device

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store over a Postgres devices table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed device store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) ActiveForUser(ctx context.Context, userID string) ([]Device, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, platform, token, COALESCE(external_id, ''), active, subscribed, updated_at
		FROM devices
		WHERE user_id = $1 AND active AND subscribed
		ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("device: lookup for user: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Platform, &d.Token,
			&d.ExternalID, &d.Active, &d.Subscribed, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("device: scan row: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (s *PGStore) MarkUnsubscribed(ctx context.Context, deviceID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE devices SET subscribed = FALSE, updated_at = NOW()
		WHERE id = $1`, deviceID)
	if err != nil {
		return fmt.Errorf("device: mark unsubscribed: %w", err)
	}
	return nil
}

// Upsert registers or refreshes a device by (user_id, token). Used by the
// surrounding app's registration path and by tests exercising the
// unsubscribed write-back.
func (s *PGStore) Upsert(ctx context.Context, d Device) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO devices (id, user_id, platform, token, external_id, active, subscribed, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NOW())
		ON CONFLICT (user_id, token) DO UPDATE
		SET platform = EXCLUDED.platform,
		    external_id = EXCLUDED.external_id,
		    active = EXCLUDED.active,
		    subscribed = EXCLUDED.subscribed,
		    updated_at = NOW()`,
		d.ID, d.UserID, d.Platform, d.Token, d.ExternalID, d.Active, d.Subscribed,
	)
	if err != nil {
		return fmt.Errorf("device: upsert: %w", err)
	}
	return nil
}
