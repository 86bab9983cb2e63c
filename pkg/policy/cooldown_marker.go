package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownMarker is a Redis fast path for the cooldown check. The
// dispatcher sets a marker with the cooldown TTL on every accepted send;
// the chain treats a live marker as "within cooldown" without querying the
// ledger. All operations are best-effort: errors are surfaced to callers
// who uniformly fall back to the authoritative ledger query.
type CooldownMarker struct {
	client *redis.Client
}

// NewCooldownMarker wraps a connected Redis client.
func NewCooldownMarker(client *redis.Client) *CooldownMarker {
	return &CooldownMarker{client: client}
}

func markerKey(environment, notificationKey, userID string) string {
	return fmt.Sprintf("pushkit:cooldown:%s:%s:%s", environment, notificationKey, userID)
}

// Active reports whether a cooldown marker exists for the tuple.
func (m *CooldownMarker) Active(ctx context.Context, environment, notificationKey, userID string) (bool, error) {
	n, err := m.client.Exists(ctx, markerKey(environment, notificationKey, userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Set writes a marker that expires with the cooldown window. A zero or
// negative TTL is a no-op since the corresponding check is disabled.
func (m *CooldownMarker) Set(ctx context.Context, environment, notificationKey, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return m.client.Set(ctx, markerKey(environment, notificationKey, userID), "1", ttl).Err()
}
