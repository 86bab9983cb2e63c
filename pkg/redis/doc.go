// Package redis provides connection bootstrap for the Redis instance
// backing the policy chain's cooldown fast path (pkg/policy). Redis is an
// optimization layer only; the send log remains the source of truth for
// cooldown decisions.
package redis
