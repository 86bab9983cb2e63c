package device

import "errors"

var (
	// ErrNoTarget is returned when a user has no active, subscribed device.
	ErrNoTarget = errors.New("device: no deliverable target for user")

	// ErrNotSubscribed is returned when the provider confirms the resolved
	// device is no longer subscribed. The resolver writes the flag back
	// locally before returning it.
	ErrNotSubscribed = errors.New("device: target not subscribed at provider")
)
