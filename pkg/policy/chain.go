package policy

import (
	"context"
	"log/slog"
	"time"

	"github.com/predictarena/pushkit/pkg/catalog"
	"github.com/predictarena/pushkit/pkg/logger"
	"github.com/predictarena/pushkit/pkg/sendlog"
)

// PreferenceStore reads a user's notification preference toggles.
// Externally owned, read-only to the engine.
type PreferenceStore interface {
	// Preferences returns the preference-key -> enabled mapping for a user.
	// Users with no stored preferences return an empty map, not an error.
	Preferences(ctx context.Context, userID string) (map[string]bool, error)
}

// MuteStore reads per-(user, league) mute flags.
type MuteStore interface {
	IsMuted(ctx context.Context, userID, leagueID string) (bool, error)
}

// CooldownSource answers "when did this user last get an accepted send of
// this notification type". Satisfied by sendlog.Storage.
type CooldownSource interface {
	LastAcceptedAt(ctx context.Context, environment, notificationKey, userID string) (*time.Time, error)
}

// Decision is the outcome of a policy evaluation. Reason is set only when
// Allowed is false and is always one of the suppressed_* results.
type Decision struct {
	Allowed bool
	Reason  sendlog.Result
}

// Options carries the per-intent inputs to the chain.
type Options struct {
	// SkipCooldown lets the caller opt a specific intent out of the
	// cooldown check (e.g. transactional notifications the user asked for).
	SkipCooldown bool

	// LeagueID enables the league mute check when non-empty.
	LeagueID string
}

// Chain runs the ordered suppression checks for one user: rollout bucket,
// preference, quiet hours, cooldown, league mute. The order is fixed,
// cheapest and most global first, short-circuiting at the first failure.
//
// Fail-open/fail-closed is a deliberate per-check policy: cooldown and mute
// lookups fail open (a transient store outage must not silently block
// legitimate notifications), while the idempotency claim upstream of this
// chain fails closed.
type Chain struct {
	prefs       PreferenceStore
	mutes       MuteStore
	cooldowns   CooldownSource
	marker      *CooldownMarker
	environment string
	now         func() time.Time
	log         *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithMuteStore enables the league mute check.
func WithMuteStore(s MuteStore) ChainOption {
	return func(c *Chain) { c.mutes = s }
}

// WithCooldownMarker adds a Redis fast path consulted before the ledger on
// cooldown checks. Purely an optimization; the ledger stays authoritative.
func WithCooldownMarker(m *CooldownMarker) ChainOption {
	return func(c *Chain) { c.marker = m }
}

// WithClock overrides the reference clock, primarily for quiet hours tests.
func WithClock(now func() time.Time) ChainOption {
	return func(c *Chain) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the chain's logger.
func WithLogger(log *slog.Logger) ChainOption {
	return func(c *Chain) {
		if log != nil {
			c.log = log
		}
	}
}

// NewChain creates a policy chain for one deployment environment.
func NewChain(environment string, prefs PreferenceStore, cooldowns CooldownSource, opts ...ChainOption) *Chain {
	c := &Chain{
		prefs:       prefs,
		cooldowns:   cooldowns,
		environment: environment,
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate runs the chain for one user and returns the first failing
// suppression reason, or an allowed decision when every check passes.
func (c *Chain) Evaluate(ctx context.Context, userID string, entry catalog.Entry, opts Options) Decision {
	if !rolloutAllows(userID, entry.Rollout) {
		return suppress(sendlog.ResultSuppressedRollout)
	}

	if !c.preferenceAllows(ctx, userID, entry.Preferences) {
		return suppress(sendlog.ResultSuppressedPreference)
	}

	if c.inQuietHours(entry.QuietHours) {
		return suppress(sendlog.ResultSuppressedQuietHours)
	}

	if !opts.SkipCooldown && c.inCooldown(ctx, userID, entry) {
		return suppress(sendlog.ResultSuppressedCooldown)
	}

	if opts.LeagueID != "" && c.isMuted(ctx, userID, opts.LeagueID) {
		return suppress(sendlog.ResultSuppressedMuted)
	}

	return Decision{Allowed: true}
}

func suppress(reason sendlog.Result) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// preferenceAllows: no preference key on the entry means the type cannot be
// opted out of. An explicit false suppresses; a missing value falls back to
// the catalog default; anything else allows.
func (c *Chain) preferenceAllows(ctx context.Context, userID string, prefs catalog.Preferences) bool {
	if prefs.PreferenceKey == "" {
		return true
	}

	stored, err := c.prefs.Preferences(ctx, userID)
	if err != nil {
		// Fail open: preference store outages must not drop notifications
		// the user most likely wants.
		c.log.LogAttrs(ctx, slog.LevelWarn, "preference lookup failed, allowing",
			logger.UserID(userID), logger.Error(err))
		return true
	}

	enabled, ok := stored[prefs.PreferenceKey]
	if !ok {
		return prefs.Default
	}
	return enabled
}

func (c *Chain) inQuietHours(window catalog.QuietHours) bool {
	inWindow, err := inQuietWindow(c.now().UTC(), window)
	if err != nil {
		// Unparseable windows are treated as unset rather than blocking
		// delivery on a config typo.
		c.log.Warn("invalid quiet hours window, ignoring",
			"start", window.Start, "end", window.End, logger.Error(err))
		return false
	}
	return inWindow
}

func (c *Chain) inCooldown(ctx context.Context, userID string, entry catalog.Entry) bool {
	seconds := entry.Cooldown.PerUserSeconds
	if seconds <= 0 {
		return false
	}

	// Redis fast path: a live marker means an accepted send within the
	// window, skipping the ledger round trip. Misses and errors fall
	// through to the authoritative ledger query.
	if c.marker != nil {
		if hit, err := c.marker.Active(ctx, c.environment, entry.Key, userID); err == nil && hit {
			return true
		}
	}

	last, err := c.cooldowns.LastAcceptedAt(ctx, c.environment, entry.Key, userID)
	if err != nil {
		// Fail open per the error design: a transient audit-store outage
		// must not silently block legitimate notifications.
		c.log.LogAttrs(ctx, slog.LevelWarn, "cooldown lookup failed, allowing",
			logger.UserID(userID), logger.NotificationKey(entry.Key), logger.Error(err))
		return false
	}
	if last == nil {
		return false
	}
	return c.now().Sub(*last) < time.Duration(seconds)*time.Second
}

func (c *Chain) isMuted(ctx context.Context, userID, leagueID string) bool {
	if c.mutes == nil {
		return false
	}
	muted, err := c.mutes.IsMuted(ctx, userID, leagueID)
	if err != nil {
		c.log.LogAttrs(ctx, slog.LevelWarn, "mute lookup failed, allowing",
			logger.UserID(userID), slog.String("league_id", leagueID), logger.Error(err))
		return false
	}
	return muted
}
