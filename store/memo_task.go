package store

import (
	"fmt"
	"sync"

	"github.com/Sumitdevelops/codered/task"
)

// InMemoryTaskStore tracks submitted task descriptors and their
// lifecycle state. It stores and hands out value copies only, the same
// discipline the registry applies to snapshots, so a caller mutating a
// task after Put (or a task returned by Get/List) never races with
// concurrent readers of the store.
type InMemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[string]task.Task
	order []string
}

func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[string]task.Task)}
}

func (s *InMemoryTaskStore) Put(key string, value interface{}) error {
	t, ok := value.(*task.Task)

	if !ok {
		return fmt.Errorf("value %v is not a task.Task type", value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[key]; !exists {
		s.order = append(s.order, key)
	}
	s.tasks[key] = *t

	return nil
}

func (s *InMemoryTaskStore) Get(key string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key]

	if !ok {
		return nil, fmt.Errorf("task with key %s does not exist", key)
	}

	copied := t
	return &copied, nil
}

func (s *InMemoryTaskStore) List() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]*task.Task, 0, len(s.order))
	for _, key := range s.order {
		t := s.tasks[key]
		tasks = append(tasks, &t)
	}

	return tasks, nil
}

func (s *InMemoryTaskStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tasks), nil
}
