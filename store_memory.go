package reliosdk

import (
	"encoding/json"
	"fmt"
	"sync"
)

// InMemoryContactStore is a thread-safe in-memory ContactStore for
// development and tests. Data is lost on restart. Snapshots are stored
// marshaled so callers never alias the stored state.
type InMemoryContactStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryContactStore creates a new in-memory store.
func NewInMemoryContactStore() *InMemoryContactStore {
	return &InMemoryContactStore{data: make(map[string][]byte)}
}

func (s *InMemoryContactStore) Load(contactID string) (*ContactSnapshot, error) {
	s.mu.RLock()
	raw, ok := s.data[contactID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var snap ContactSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", contactID, err)
	}
	return &snap, nil
}

func (s *InMemoryContactStore) Save(snapshot *ContactSnapshot) error {
	if snapshot == nil || snapshot.Contact == nil || snapshot.Contact.ContactID == "" {
		return fmt.Errorf("snapshot missing contact id")
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snapshot.Contact.ContactID, err)
	}
	s.mu.Lock()
	s.data[snapshot.Contact.ContactID] = raw
	s.mu.Unlock()
	return nil
}

func (s *InMemoryContactStore) Delete(contactID string) error {
	s.mu.Lock()
	delete(s.data, contactID)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryContactStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
