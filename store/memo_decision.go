package store

import (
	"fmt"
	"sync"

	"github.com/Sumitdevelops/codered/decision"
)

// InMemoryDecisionStore keeps decision records in insertion order. It is
// the default history store when durability is not configured.
type InMemoryDecisionStore struct {
	mu      sync.Mutex
	records map[string]*decision.Record
	order   []string
}

func NewInMemoryDecisionStore() *InMemoryDecisionStore {
	return &InMemoryDecisionStore{records: make(map[string]*decision.Record)}
}

func (s *InMemoryDecisionStore) Put(key string, value interface{}) error {
	record, ok := value.(*decision.Record)
	if !ok {
		return fmt.Errorf("value %v is not a decision.Record type", value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[key]; !exists {
		s.order = append(s.order, key)
	}
	s.records[key] = record

	return nil
}

func (s *InMemoryDecisionStore) Get(key string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("decision record with key %s does not exist", key)
	}

	return record, nil
}

func (s *InMemoryDecisionStore) List() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*decision.Record, 0, len(s.order))
	for _, key := range s.order {
		records = append(records, s.records[key])
	}

	return records, nil
}

func (s *InMemoryDecisionStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records), nil
}
