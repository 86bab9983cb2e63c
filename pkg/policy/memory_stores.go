package policy

import (
	"context"
	"sync"
)

// MemoryPreferenceStore is an in-memory PreferenceStore for development and
// tests.
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]map[string]bool
}

// NewMemoryPreferenceStore creates an empty in-memory preference store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{prefs: make(map[string]map[string]bool)}
}

// Set stores one preference toggle for a user.
func (s *MemoryPreferenceStore) Set(userID, key string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs[userID] == nil {
		s.prefs[userID] = make(map[string]bool)
	}
	s.prefs[userID][key] = enabled
}

func (s *MemoryPreferenceStore) Preferences(ctx context.Context, userID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.prefs[userID]))
	for k, v := range s.prefs[userID] {
		out[k] = v
	}
	return out, nil
}

// MemoryMuteStore is an in-memory MuteStore for development and tests.
type MemoryMuteStore struct {
	mu    sync.RWMutex
	muted map[string]bool // userID + "\x00" + leagueID
}

// NewMemoryMuteStore creates an empty in-memory mute store.
func NewMemoryMuteStore() *MemoryMuteStore {
	return &MemoryMuteStore{muted: make(map[string]bool)}
}

// SetMuted flips the mute flag for a (user, league) pair.
func (s *MemoryMuteStore) SetMuted(userID, leagueID string, muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted[userID+"\x00"+leagueID] = muted
}

func (s *MemoryMuteStore) IsMuted(ctx context.Context, userID, leagueID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted[userID+"\x00"+leagueID], nil
}
