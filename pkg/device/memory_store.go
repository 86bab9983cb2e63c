package device

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	devices map[uuid.UUID]Device
}

// NewMemoryStore creates an empty in-memory device store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{devices: make(map[uuid.UUID]Device)}
}

// Add registers a device, assigning an id when missing.
func (s *MemoryStore) Add(d Device) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	s.devices[d.ID] = d
	return d.ID
}

func (s *MemoryStore) ActiveForUser(ctx context.Context, userID string) ([]Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Device
	for _, d := range s.devices {
		if d.UserID == userID && d.Active && d.Subscribed {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkUnsubscribed(ctx context.Context, deviceID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[deviceID]
	if !ok {
		return nil
	}
	d.Subscribed = false
	s.devices[deviceID] = d
	return nil
}

// Get returns a device by id, for assertions in tests.
func (s *MemoryStore) Get(deviceID uuid.UUID) (Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[deviceID]
	return d, ok
}
