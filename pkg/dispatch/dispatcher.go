package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/predictarena/pushkit/pkg/catalog"
	"github.com/predictarena/pushkit/pkg/device"
	"github.com/predictarena/pushkit/pkg/logger"
	"github.com/predictarena/pushkit/pkg/onesignal"
	"github.com/predictarena/pushkit/pkg/policy"
	"github.com/predictarena/pushkit/pkg/sendlog"
)

// Config for the dispatcher. Environment scopes the idempotency key so
// staging and production never collide in a shared ledger.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`

	// MaxConcurrent bounds in-flight users per intent, protecting the
	// ledger store and provider from unbounded parallelism.
	MaxConcurrent int `env:"DISPATCH_MAX_CONCURRENT" envDefault:"50"`

	// StoreTimeout bounds each individual ledger call.
	StoreTimeout time.Duration `env:"DISPATCH_STORE_TIMEOUT" envDefault:"5s"`
}

// PushClient is the provider surface the dispatcher needs. Satisfied by
// *onesignal.Client.
type PushClient interface {
	BuildPayload(entry catalog.Entry, opts onesignal.SendOptions) *onesignal.Notification
	Send(ctx context.Context, n *onesignal.Notification) (*onesignal.SendResult, error)
}

// TargetResolver is the device resolution surface. Satisfied by
// *device.Resolver.
type TargetResolver interface {
	Resolve(ctx context.Context, userID string) (device.Target, error)
	MarkUnsubscribed(ctx context.Context, userID string, target device.Target) error
}

// PolicyChain is the suppression evaluation surface. Satisfied by
// *policy.Chain.
type PolicyChain interface {
	Evaluate(ctx context.Context, userID string, entry catalog.Entry, opts policy.Options) policy.Decision
}

// Dispatcher drives an intent through claim, policy, resolution and send
// for every user, and records one terminal outcome per user in the ledger.
// All collaborators are injected; there is no process-wide state beyond the
// one-time config load.
type Dispatcher struct {
	cfg      Config
	catalog  *catalog.Catalog
	ledger   sendlog.Storage
	chain    PolicyChain
	resolver TargetResolver
	provider PushClient
	marker   *policy.CooldownMarker
	log      *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCooldownMarker makes the dispatcher write a Redis cooldown marker on
// every accepted send, feeding the policy chain's fast path. Best effort:
// marker failures never affect the send outcome.
func WithCooldownMarker(m *policy.CooldownMarker) Option {
	return func(d *Dispatcher) { d.marker = m }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// New creates a dispatcher. Every collaborator is required except the
// cooldown marker.
func New(cfg Config, cat *catalog.Catalog, ledger sendlog.Storage, chain PolicyChain,
	resolver TargetResolver, provider PushClient, opts ...Option,
) (*Dispatcher, error) {
	if cat == nil || ledger == nil || chain == nil || resolver == nil || provider == nil {
		return nil, errors.New("dispatch: all collaborators are required")
	}
	if cfg.Environment == "" {
		return nil, errors.New("dispatch: environment is required")
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 50
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}

	d := &Dispatcher{
		cfg:      cfg,
		catalog:  cat,
		ledger:   ledger,
		chain:    chain,
		resolver: resolver,
		provider: provider,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch processes one intent and returns a complete per-user result set.
// Only configuration errors (unknown key, invalid intent) return an error;
// everything else, including total provider outage, yields a BatchResult.
// There is no cancellation once started: partial sends must still be
// reconciled through the ledger, so the user list is always driven to
// completion.
func (d *Dispatcher) Dispatch(ctx context.Context, intent Intent) (*BatchResult, error) {
	if intent.NotificationKey == "" || intent.EventID == "" {
		return nil, ErrInvalidIntent
	}

	entry, err := d.catalog.Lookup(intent.NotificationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNotificationKey, intent.NotificationKey)
	}

	batch := &BatchResult{
		NotificationKey: intent.NotificationKey,
		EventID:         intent.EventID,
		Total:           len(intent.UserIDs),
		Counts:          make(map[sendlog.Result]int),
		Results:         make([]UserResult, len(intent.UserIDs)),
	}

	// A globally-disabled type short-circuits the whole intent without
	// creating ledger rows; claims for a type that can never send would
	// only pollute the audit table.
	if !d.catalog.IsEnabled(intent.NotificationKey) {
		for i, userID := range intent.UserIDs {
			batch.Results[i] = UserResult{UserID: userID, Result: sendlog.ResultSuppressedRollout}
		}
		batch.Counts[sendlog.ResultSuppressedRollout] = len(intent.UserIDs)
		return batch, nil
	}

	// Bounded concurrency: per-user work is independent, but downstream
	// rate limits cap how much of it may be in flight.
	sem := make(chan struct{}, d.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i, userID := range intent.UserIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, userID string) {
			defer wg.Done()
			defer func() { <-sem }()
			batch.Results[i] = d.dispatchUser(ctx, entry, intent, userID)
		}(i, userID)
	}
	wg.Wait()

	for _, r := range batch.Results {
		batch.Counts[r.Result]++
		if r.Result == sendlog.ResultFailed && r.Error != "" {
			batch.Errors = append(batch.Errors, fmt.Sprintf("%s: %s", r.UserID, r.Error))
		}
	}

	d.log.LogAttrs(ctx, slog.LevelInfo, "dispatch complete",
		logger.NotificationKey(intent.NotificationKey),
		logger.EventID(intent.EventID),
		slog.Int("total", batch.Total),
		slog.Int("accepted", batch.Accepted()),
		slog.Int("suppressed", batch.Suppressed()),
		slog.Int("failed", batch.Failed()),
	)

	return batch, nil
}

// dispatchUser runs the per-user state machine:
// pending -> {suppressed_duplicate | suppressed_* | accepted | failed}.
// Panics are caught here so one user's crash never aborts the batch.
func (d *Dispatcher) dispatchUser(ctx context.Context, entry catalog.Entry, intent Intent, userID string) (result UserResult) {
	result = UserResult{UserID: userID}

	defer func() {
		if r := recover(); r != nil {
			d.log.LogAttrs(ctx, slog.LevelError, "panic during user dispatch",
				logger.UserID(userID), slog.Any("panic", r))
			result.Result = sendlog.ResultFailed
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	// Step 1: claim the idempotency lock. Fail-closed: a ledger outage
	// means no send for this user.
	claimCtx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	outcome, err := d.ledger.Claim(claimCtx, sendlog.ClaimKey{
		Environment:     d.cfg.Environment,
		NotificationKey: intent.NotificationKey,
		EventID:         intent.EventID,
		UserID:          userID,
	})
	cancel()
	if err != nil {
		result.Result = sendlog.ResultFailed
		result.Error = err.Error()
		return result
	}
	if !outcome.Claimed {
		// Already handled by a concurrent or earlier invocation. No row
		// write, no policy evaluation, no provider call.
		result.Result = sendlog.ResultSuppressedDuplicate
		return result
	}

	// Step 2: policy chain.
	decision := d.chain.Evaluate(ctx, userID, entry, policy.Options{
		SkipCooldown: intent.SkipCooldown,
		LeagueID:     intent.LeagueID,
	})
	if !decision.Allowed {
		result.Result = decision.Reason
		d.finalize(ctx, outcome.LogID, userID, sendlog.TerminalUpdate{Result: decision.Reason})
		return result
	}

	// Step 3: resolve a deliverable target.
	target, err := d.resolver.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, device.ErrNoTarget) || errors.Is(err, device.ErrNotSubscribed) {
			result.Result = sendlog.ResultSuppressedUnsubscribed
			d.finalize(ctx, outcome.LogID, userID, sendlog.TerminalUpdate{Result: sendlog.ResultSuppressedUnsubscribed})
			return result
		}
		result.Result = sendlog.ResultFailed
		result.Error = err.Error()
		d.finalize(ctx, outcome.LogID, userID, sendlog.TerminalUpdate{
			Result: sendlog.ResultFailed, Error: err.Error(),
		})
		return result
	}

	// Step 4: build and submit the payload.
	payload := d.provider.BuildPayload(entry, onesignal.SendOptions{
		Title:          intent.Title,
		Body:           intent.Body,
		Targets:        []device.Target{target},
		Data:           intent.Data,
		URL:            intent.URL,
		GroupingParams: intent.GroupingParams,
	})

	sent, err := d.provider.Send(ctx, payload)
	switch {
	case err == nil:
		result.Result = sendlog.ResultAccepted
		result.ProviderID = sent.ProviderID
		d.finalize(ctx, outcome.LogID, userID, sendlog.TerminalUpdate{
			Result:           sendlog.ResultAccepted,
			TargetType:       string(target.Type),
			TargetingSummary: targetingSummary(target),
			PayloadSummary:   payloadSummary(intent),
			ProviderID:       sent.ProviderID,
		})
		d.markCooldown(ctx, entry, userID)

	case errors.Is(err, onesignal.ErrNotSubscribed):
		// Local state said deliverable, provider disagreed. Suppression,
		// not failure; flip the local flag so the next resolution skips it.
		result.Result = sendlog.ResultSuppressedUnsubscribed
		if markErr := d.resolver.MarkUnsubscribed(ctx, userID, target); markErr != nil {
			d.log.LogAttrs(ctx, slog.LevelWarn, "unsubscribed write-back failed",
				logger.UserID(userID), logger.Error(markErr))
		}
		d.finalize(ctx, outcome.LogID, userID, sendlog.TerminalUpdate{
			Result:           sendlog.ResultSuppressedUnsubscribed,
			TargetType:       string(target.Type),
			TargetingSummary: targetingSummary(target),
		})

	default:
		result.Result = sendlog.ResultFailed
		result.Error = err.Error()
		d.finalize(ctx, outcome.LogID, userID, sendlog.TerminalUpdate{
			Result:           sendlog.ResultFailed,
			TargetType:       string(target.Type),
			TargetingSummary: targetingSummary(target),
			Error:            err.Error(),
		})
	}

	return result
}

// finalize writes the terminal result for a claimed row. ErrAlreadyTerminal
// is a programming error (double update) that is logged, never fatal; a
// transport failure is logged too since the row will remain pending and
// needs operator attention, but the batch continues either way.
func (d *Dispatcher) finalize(ctx context.Context, logID uuid.UUID, userID string, upd sendlog.TerminalUpdate) {
	updateCtx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	if err := d.ledger.Update(updateCtx, logID, upd); err != nil {
		level := slog.LevelError
		if errors.Is(err, sendlog.ErrAlreadyTerminal) {
			level = slog.LevelWarn
		}
		d.log.LogAttrs(ctx, level, "failed to finalize send log entry",
			logger.UserID(userID),
			slog.String("log_id", logID.String()),
			slog.String("result", string(upd.Result)),
			logger.Error(err),
		)
	}
}

// markCooldown best-effort records an accepted send in Redis so the policy
// fast path can suppress within the window without a ledger query.
func (d *Dispatcher) markCooldown(ctx context.Context, entry catalog.Entry, userID string) {
	if d.marker == nil || entry.Cooldown.PerUserSeconds <= 0 {
		return
	}
	ttl := time.Duration(entry.Cooldown.PerUserSeconds) * time.Second
	if err := d.marker.Set(ctx, d.cfg.Environment, entry.Key, userID, ttl); err != nil {
		d.log.LogAttrs(ctx, slog.LevelDebug, "cooldown marker write failed",
			logger.UserID(userID), logger.NotificationKey(entry.Key), logger.Error(err))
	}
}

// targetingSummary is the audit-safe description of where the push went.
// Raw device tokens never reach the ledger.
func targetingSummary(t device.Target) string {
	return fmt.Sprintf("%s:%s", t.Type, redact(t.Value))
}

// payloadSummary is a short, truncated preview of the message for audit.
func payloadSummary(intent Intent) string {
	const maxPreview = 80
	body := intent.Body
	if len(body) > maxPreview {
		body = body[:maxPreview] + "…"
	}
	if intent.Title == "" {
		return body
	}
	return intent.Title + " | " + body
}

// redact keeps just enough of an identifier to correlate during debugging.
func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "…" + s[len(s)-4:]
}
