package sendlog

import (
	"time"

	"github.com/google/uuid"
)

// Result is the outcome recorded for one (environment, notification type,
// event, user) tuple. A row starts as ResultPending and transitions exactly
// once to a terminal result.
type Result string

const (
	ResultPending Result = "pending"

	ResultAccepted Result = "accepted"
	ResultFailed   Result = "failed"

	ResultSuppressedDuplicate    Result = "suppressed_duplicate"
	ResultSuppressedPreference   Result = "suppressed_preference"
	ResultSuppressedCooldown     Result = "suppressed_cooldown"
	ResultSuppressedQuietHours   Result = "suppressed_quiet_hours"
	ResultSuppressedMuted        Result = "suppressed_muted"
	ResultSuppressedRollout      Result = "suppressed_rollout"
	ResultSuppressedUnsubscribed Result = "suppressed_unsubscribed"
)

// IsTerminal reports whether the result is a final state.
func (r Result) IsTerminal() bool {
	return r != ResultPending && r != ""
}

// IsSuppression reports whether the result is a named non-delivery outcome,
// as opposed to a delivery or a failure.
func (r Result) IsSuppression() bool {
	switch r {
	case ResultSuppressedDuplicate, ResultSuppressedPreference,
		ResultSuppressedCooldown, ResultSuppressedQuietHours,
		ResultSuppressedMuted, ResultSuppressedRollout,
		ResultSuppressedUnsubscribed:
		return true
	}
	return false
}

// ClaimKey is the natural key of a send-log row. An empty UserID represents
// a global/broadcast claim and is stored as NULL.
type ClaimKey struct {
	Environment     string
	NotificationKey string
	EventID         string
	UserID          string
}

// ClaimOutcome reports whether the caller won the insert race. When Claimed
// is false, ExistingResult carries the prior row's result if it could be
// read; it is diagnostic only and callers must not reattempt the claim.
type ClaimOutcome struct {
	Claimed        bool
	LogID          uuid.UUID
	ExistingResult Result
}

// TerminalUpdate carries the single terminal transition applied to a
// claimed row. Summaries are short, redacted previews; raw device tokens
// and full message bodies are never persisted.
type TerminalUpdate struct {
	Result           Result
	TargetType       string
	TargetingSummary string
	PayloadSummary   string
	Error            string
	ProviderID       string
}

// Entry is the full audit record for one claim.
type Entry struct {
	ID               uuid.UUID
	Environment      string
	NotificationKey  string
	EventID          string
	UserID           string
	Result           Result
	TargetType       string
	TargetingSummary string
	PayloadSummary   string
	Error            string
	ProviderID       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
