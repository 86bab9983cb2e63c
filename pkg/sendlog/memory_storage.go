package sendlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of Storage. Suitable for
// development and tests; the map write under a single mutex gives the same
// at-most-once claim semantics as the database uniqueness constraint.
type MemoryStorage struct {
	mu      sync.Mutex
	byKey   map[ClaimKey]uuid.UUID
	entries map[uuid.UUID]*Entry
	now     func() time.Time
}

// NewMemoryStorage creates an empty in-memory ledger.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byKey:   make(map[ClaimKey]uuid.UUID),
		entries: make(map[uuid.UUID]*Entry),
		now:     time.Now,
	}
}

// SetClock overrides the clock, for cooldown tests.
func (s *MemoryStorage) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStorage) Claim(ctx context.Context, key ClaimKey) (ClaimOutcome, error) {
	if key.Environment == "" || key.NotificationKey == "" || key.EventID == "" {
		return ClaimOutcome{}, ErrInvalidClaimKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byKey[key]; ok {
		return ClaimOutcome{Claimed: false, ExistingResult: s.entries[existingID].Result}, nil
	}

	id := uuid.New()
	now := s.now()
	s.byKey[key] = id
	s.entries[id] = &Entry{
		ID:              id,
		Environment:     key.Environment,
		NotificationKey: key.NotificationKey,
		EventID:         key.EventID,
		UserID:          key.UserID,
		Result:          ResultPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return ClaimOutcome{Claimed: true, LogID: id}, nil
}

func (s *MemoryStorage) Update(ctx context.Context, id uuid.UUID, upd TerminalUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	if e.Result != ResultPending {
		return ErrAlreadyTerminal
	}

	e.Result = upd.Result
	e.TargetType = upd.TargetType
	e.TargetingSummary = upd.TargetingSummary
	e.PayloadSummary = upd.PayloadSummary
	e.Error = upd.Error
	e.ProviderID = upd.ProviderID
	e.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStorage) LastAcceptedAt(ctx context.Context, environment, notificationKey, userID string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *time.Time
	for _, e := range s.entries {
		if e.Environment != environment || e.NotificationKey != notificationKey ||
			e.UserID != userID || e.Result != ResultAccepted {
			continue
		}
		if latest == nil || e.CreatedAt.After(*latest) {
			at := e.CreatedAt
			latest = &at
		}
	}
	return latest, nil
}

// Get returns a copy of an entry by id, for assertions in tests.
func (s *MemoryStorage) Get(id uuid.UUID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Find returns a copy of the entry for a claim key, for assertions in tests.
func (s *MemoryStorage) Find(key ClaimKey) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return *s.entries[id], true
}

// Len returns the number of rows ever created.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
