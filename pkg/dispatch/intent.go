package dispatch

import (
	"github.com/predictarena/pushkit/pkg/sendlog"
)

// Intent is a caller's request to notify a set of users about one logical
// event. EventID must already be fully formatted (the catalog's trigger
// template filled in by the caller) before the engine is invoked.
type Intent struct {
	NotificationKey string
	EventID         string
	UserIDs         []string

	Title string
	Body  string
	Data  map[string]string
	URL   string

	// GroupingParams feed the catalog's collapse/thread/group and deep-link
	// templates.
	GroupingParams map[string]string

	// SkipCooldown opts this intent out of the per-user cooldown check.
	SkipCooldown bool

	// LeagueID enables the league mute check when non-empty.
	LeagueID string
}

// UserResult is the terminal outcome recorded for one user of an intent.
type UserResult struct {
	UserID     string         `json:"user_id"`
	Result     sendlog.Result `json:"result"`
	ProviderID string         `json:"provider_id,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// BatchResult aggregates one dispatch call. Every user in the intent
// appears in Results exactly once; Counts is keyed by terminal result.
type BatchResult struct {
	NotificationKey string                 `json:"notification_key"`
	EventID         string                 `json:"event_id"`
	Total           int                    `json:"total"`
	Counts          map[sendlog.Result]int `json:"counts"`
	Results         []UserResult           `json:"results"`
	Errors          []string               `json:"errors,omitempty"`
}

// Accepted returns how many users reached a successful send.
func (b *BatchResult) Accepted() int {
	return b.Counts[sendlog.ResultAccepted]
}

// Failed returns how many users ended in a hard failure.
func (b *BatchResult) Failed() int {
	return b.Counts[sendlog.ResultFailed]
}

// Suppressed returns how many users were suppressed for any reason.
func (b *BatchResult) Suppressed() int {
	n := 0
	for result, count := range b.Counts {
		if result.IsSuppression() {
			n += count
		}
	}
	return n
}
