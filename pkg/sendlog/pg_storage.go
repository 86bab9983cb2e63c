package sendlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predictarena/pushkit/pkg/pg"
)

// PGStorage implements Storage over a Postgres send_log table. The table's
// unique index on (environment, notification_key, event_id, user_id) is the
// source of truth for claims; see migrations/.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a Postgres-backed ledger.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

const claimQuery = `
	INSERT INTO send_log (id, environment, notification_key, event_id, user_id, result)
	VALUES ($1, $2, $3, $4, NULLIF($5, ''), 'pending')
	RETURNING id`

// Claim inserts a pending row. A duplicate-key violation means the tuple is
// already owned elsewhere; the existing result is read best-effort for
// diagnostics. The pre-insert existence check is deliberately absent: the
// insert itself decides the race.
func (s *PGStorage) Claim(ctx context.Context, key ClaimKey) (ClaimOutcome, error) {
	if key.Environment == "" || key.NotificationKey == "" || key.EventID == "" {
		return ClaimOutcome{}, ErrInvalidClaimKey
	}

	id := uuid.New()
	err := s.pool.QueryRow(ctx, claimQuery,
		id, key.Environment, key.NotificationKey, key.EventID, key.UserID,
	).Scan(&id)
	if err == nil {
		return ClaimOutcome{Claimed: true, LogID: id}, nil
	}

	if !pg.IsDuplicateKeyError(err) {
		return ClaimOutcome{}, errors.Join(ErrStorageUnavailable, err)
	}

	// Lost the race. Surface the winner's result when readable; a failed
	// read here is immaterial to correctness.
	outcome := ClaimOutcome{Claimed: false}
	var existing Result
	lookupErr := s.pool.QueryRow(ctx, `
		SELECT result FROM send_log
		WHERE environment = $1 AND notification_key = $2 AND event_id = $3
		  AND user_id IS NOT DISTINCT FROM NULLIF($4, '')`,
		key.Environment, key.NotificationKey, key.EventID, key.UserID,
	).Scan(&existing)
	if lookupErr == nil {
		outcome.ExistingResult = existing
	}
	return outcome, nil
}

// Update applies the terminal transition, guarded on the row still being
// pending so a double update cannot overwrite an earlier terminal result.
func (s *PGStorage) Update(ctx context.Context, id uuid.UUID, upd TerminalUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE send_log
		SET result = $2,
		    target_type = NULLIF($3, ''),
		    targeting_summary = NULLIF($4, ''),
		    payload_summary = NULLIF($5, ''),
		    error = NULLIF($6, ''),
		    provider_notification_id = NULLIF($7, ''),
		    updated_at = NOW()
		WHERE id = $1 AND result = 'pending'`,
		id, upd.Result, upd.TargetType, upd.TargetingSummary,
		upd.PayloadSummary, upd.Error, upd.ProviderID,
	)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		var result Result
		err := s.pool.QueryRow(ctx, `SELECT result FROM send_log WHERE id = $1`, id).Scan(&result)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEntryNotFound
		}
		if err != nil {
			return errors.Join(ErrStorageUnavailable, err)
		}
		return ErrAlreadyTerminal
	}
	return nil
}

// LastAcceptedAt returns the newest accepted row's creation time for the
// user and notification type, across all events.
func (s *PGStorage) LastAcceptedAt(ctx context.Context, environment, notificationKey, userID string) (*time.Time, error) {
	var at time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT created_at FROM send_log
		WHERE environment = $1 AND notification_key = $2 AND user_id = $3
		  AND result = 'accepted'
		ORDER BY created_at DESC
		LIMIT 1`,
		environment, notificationKey, userID,
	).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return &at, nil
}
