package device

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/predictarena/pushkit/pkg/logger"
)

// Store owns device registrations: lookup for resolution and the
// unsubscribed write-back when the provider contradicts local state.
type Store interface {
	// ActiveForUser returns the user's active, subscribed devices.
	ActiveForUser(ctx context.Context, userID string) ([]Device, error)

	// MarkUnsubscribed flips the local subscribed flag so future
	// resolutions skip the device without re-querying the provider.
	MarkUnsubscribed(ctx context.Context, deviceID uuid.UUID) error
}

// Verifier checks live deliverability with the push provider. Implemented
// by the OneSignal client.
type Verifier interface {
	// VerifySubscription returns whether the target is currently
	// subscribed at the provider. Transport errors are returned as-is;
	// the resolver fails open on them.
	VerifySubscription(ctx context.Context, target Target) (bool, error)
}

// Resolver maps a user id to a deliverable push target.
type Resolver struct {
	store    Store
	verifier Verifier
	log      *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithVerifier enables pre-send provider verification. Without one, the
// resolver trusts local state.
func WithVerifier(v Verifier) ResolverOption {
	return func(r *Resolver) { r.verifier = v }
}

// WithLogger sets the resolver's logger.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a resolver over a device store.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store: store,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks the user's most recently updated active device and, when a
// verifier is configured, confirms it is still subscribed at the provider.
// Returns ErrNoTarget when nothing is deliverable and ErrNotSubscribed when
// the provider contradicts local state (after writing the flag back).
// A verifier transport failure fails open: stale diagnostics must not block
// an otherwise deliverable send.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Target, error) {
	devices, err := r.store.ActiveForUser(ctx, userID)
	if err != nil {
		return Target{}, err
	}
	devices = deliverable(devices)
	if len(devices) == 0 {
		return Target{}, ErrNoTarget
	}

	// Most recent wins; device id breaks ties so repeated resolutions pick
	// the same device.
	sort.Slice(devices, func(i, j int) bool {
		if !devices[i].UpdatedAt.Equal(devices[j].UpdatedAt) {
			return devices[i].UpdatedAt.After(devices[j].UpdatedAt)
		}
		return devices[i].ID.String() < devices[j].ID.String()
	})
	chosen := devices[0]
	target := chosen.Target()

	if r.verifier == nil {
		return target, nil
	}

	subscribed, err := r.verifier.VerifySubscription(ctx, target)
	if err != nil {
		r.log.LogAttrs(ctx, slog.LevelWarn, "provider verification failed, proceeding with send",
			logger.UserID(userID), logger.Error(err))
		return target, nil
	}
	if !subscribed {
		if err := r.store.MarkUnsubscribed(ctx, chosen.ID); err != nil {
			r.log.LogAttrs(ctx, slog.LevelWarn, "failed to record unsubscribed device",
				logger.UserID(userID), slog.String("device_id", chosen.ID.String()), logger.Error(err))
		}
		return Target{}, ErrNotSubscribed
	}

	return target, nil
}

// MarkUnsubscribed flips the local subscribed flag for whichever of the
// user's devices resolves to target. Called by the dispatcher when the
// provider rejects a send as not-subscribed after resolution succeeded.
func (r *Resolver) MarkUnsubscribed(ctx context.Context, userID string, target Target) error {
	devices, err := r.store.ActiveForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, d := range devices {
		if d.Target() == target {
			return r.store.MarkUnsubscribed(ctx, d.ID)
		}
	}
	return nil
}

func deliverable(devices []Device) []Device {
	out := devices[:0]
	for _, d := range devices {
		if d.Active && d.Subscribed && (d.Token != "" || d.ExternalID != "") {
			out = append(out, d)
		}
	}
	return out
}
