package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEntryNotFound is returned by Lookup for unknown notification keys.
	ErrEntryNotFound = errors.New("catalog: entry not found")

	// ErrInvalidEntry is returned when a catalog source document contains
	// an entry that fails validation.
	ErrInvalidEntry = errors.New("catalog: invalid entry")

	// ErrInvalidSource is returned when the catalog source document cannot
	// be parsed at all.
	ErrInvalidSource = errors.New("catalog: invalid source document")
)

func notFoundError(key string) error {
	return fmt.Errorf("%w: %q", ErrEntryNotFound, key)
}

func duplicateKeyError(key string) error {
	return fmt.Errorf("%w: duplicate key %q", ErrInvalidEntry, key)
}

func (e Entry) validate() error {
	if e.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidEntry)
	}
	switch e.Status {
	case StatusActive, StatusDeprecated, StatusDisabled:
	default:
		return fmt.Errorf("%w: %q has unknown status %q", ErrInvalidEntry, e.Key, e.Status)
	}
	switch e.Dedupe.Scope {
	case ScopePerUserPerEvent, ScopePerLeaguePerGW, ScopeGlobal:
	default:
		return fmt.Errorf("%w: %q has unknown dedupe scope %q", ErrInvalidEntry, e.Key, e.Dedupe.Scope)
	}
	if p := e.Rollout.Percentage; p < 0 || p > 100 {
		return fmt.Errorf("%w: %q has rollout percentage %d outside [0,100]", ErrInvalidEntry, e.Key, p)
	}
	if e.Cooldown.PerUserSeconds < 0 {
		return fmt.Errorf("%w: %q has negative cooldown", ErrInvalidEntry, e.Key)
	}
	if (e.QuietHours.Start == "") != (e.QuietHours.End == "") {
		return fmt.Errorf("%w: %q has a half-open quiet hours window", ErrInvalidEntry, e.Key)
	}
	return nil
}
