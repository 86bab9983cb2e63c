package sendlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage is the idempotency ledger. The insert performed by Claim is the
// only cross-invocation coordination primitive in the engine: a uniqueness
// constraint on (environment, notification_key, event_id, user_id) decides
// every race, with no external lock service.
type Storage interface {
	// Claim attempts an unconditional insert of a pending row under the
	// natural-key constraint. On success the caller holds exclusive
	// responsibility for the row's terminal result. A uniqueness violation
	// means another invocation owns the tuple: Claimed is false and the
	// caller must not reattempt. Any other storage error is returned as-is
	// (fail-closed: no claim, no send).
	Claim(ctx context.Context, key ClaimKey) (ClaimOutcome, error)

	// Update applies the single terminal transition to a claimed row.
	// Updating a row that is no longer pending returns ErrAlreadyTerminal.
	Update(ctx context.Context, id uuid.UUID, upd TerminalUpdate) error

	// LastAcceptedAt returns the created_at of the most recent accepted row
	// for (environment, notification_key, user_id) across all event ids, or
	// nil when none exists. Used by the cooldown policy check.
	LastAcceptedAt(ctx context.Context, environment, notificationKey, userID string) (*time.Time, error)
}
