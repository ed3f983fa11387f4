package demo

import (
	"slices"
	"sync"
)

// TaskStore is the in-memory task list. It keeps at most max entries,
// dropping the oldest first. Safe for concurrent use.
type TaskStore struct {
	mu    sync.Mutex
	max   int
	tasks []string
}

// NewTaskStore creates a store holding at most max tasks, seeded with initial.
func NewTaskStore(max int, initial ...string) *TaskStore {
	s := &TaskStore{max: max}
	s.Add(initial...)
	return s
}

// Add appends tasks.
func (s *TaskStore) Add(tasks ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = bounded(append(s.tasks, tasks...), s.max)
}

// Remove deletes the first task equal to task and reports whether one was found.
func (s *TaskStore) Remove(task string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.tasks, task)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return true
}

// List returns a copy of the tasks, oldest first.
func (s *TaskStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.tasks)
}

// ChatStore is the in-memory chat transcript, bounded like TaskStore.
type ChatStore struct {
	mu       sync.Mutex
	max      int
	messages []Message
}

// NewChatStore creates a store holding at most max messages, seeded with initial.
func NewChatStore(max int, initial ...Message) *ChatStore {
	s := &ChatStore{max: max}
	for _, m := range initial {
		s.Append(m)
	}
	return s
}

// Append adds a message to the end of the transcript.
func (s *ChatStore) Append(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = bounded(append(s.messages, m), s.max)
}

// List returns a copy of the transcript, oldest first.
func (s *ChatStore) List() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.messages)
}

// bounded drops leading entries so that at most max remain. max <= 0 means no bound.
func bounded[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}
	return slices.Clone(items[len(items)-max:])
}
