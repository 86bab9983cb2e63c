package sendlog

import "errors"

var (
	// ErrInvalidClaimKey is returned when a claim key is missing required
	// fields.
	ErrInvalidClaimKey = errors.New("sendlog: claim key requires environment, notification key and event id")

	// ErrEntryNotFound is returned when updating or reading a row that does
	// not exist.
	ErrEntryNotFound = errors.New("sendlog: entry not found")

	// ErrAlreadyTerminal is returned when a terminal update targets a row
	// that already left the pending state. Double-update is a programming
	// error in the dispatcher; callers log it and continue the batch.
	ErrAlreadyTerminal = errors.New("sendlog: entry already has a terminal result")

	// ErrStorageUnavailable wraps transport failures talking to the backing
	// store. Fatal for the affected user's processing only, never for the
	// whole batch.
	ErrStorageUnavailable = errors.New("sendlog: storage unavailable")
)
