package dispatch

import "errors"

var (
	// ErrUnknownNotificationKey is returned when the intent names a
	// notification type absent from the catalog. A configuration error:
	// the whole intent is rejected with no ledger writes.
	ErrUnknownNotificationKey = errors.New("dispatch: unknown notification key")

	// ErrInvalidIntent is returned when the intent is missing its
	// notification key or event id.
	ErrInvalidIntent = errors.New("dispatch: intent requires notification key and event id")
)
