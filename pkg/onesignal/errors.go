package onesignal

import "errors"

var (
	// ErrInvalidConfig is returned when required client configuration is
	// missing or malformed.
	ErrInvalidConfig = errors.New("onesignal: invalid config")

	// ErrNoTargets is returned when a payload carries no recipients.
	ErrNoTargets = errors.New("onesignal: payload has no targets")

	// ErrSendFailed wraps transport or provider errors for a send request.
	ErrSendFailed = errors.New("onesignal: send failed")

	// ErrNotSubscribed indicates the provider rejected the send because no
	// included recipient is subscribed. The dispatcher treats this as a
	// first-class suppression outcome, not a failure.
	ErrNotSubscribed = errors.New("onesignal: recipients not subscribed")

	// ErrVerifyFailed wraps transport errors from subscription verification
	// lookups. Callers fail open on it.
	ErrVerifyFailed = errors.New("onesignal: subscription verification failed")
)
