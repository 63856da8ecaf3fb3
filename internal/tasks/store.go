package tasks

import (
	"context"
	"sync"
)

// Repository is what the HTTP handlers need from task storage.
// Store is the in-memory implementation; a Postgres-backed one can
// replace it without touching the handlers.
type Repository interface {
	List(ctx context.Context) []Task
	Get(ctx context.Context, id int) (Task, error)
	Create(ctx context.Context, in CreateInput) Task
	Update(ctx context.Context, id int, in PatchInput) (Task, error)
	Delete(ctx context.Context, id int) (Task, error)
}

// Store keeps tasks in insertion order and hands out ids from a counter
// that only grows. Deleted ids are never reused.
//
// net/http serves requests concurrently, so every operation holds mu for
// its whole duration: a mutation is either fully applied or not at all.
type Store struct {
	mu     sync.RWMutex
	tasks  []Task
	nextID int
}

// NewStore copies seed and starts the counter at nextID, raised above the
// largest seeded id if needed.
func NewStore(seed []Task, nextID int) *Store {
	s := &Store{
		tasks:  append([]Task(nil), seed...),
		nextID: nextID,
	}
	for _, t := range s.tasks {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	if s.nextID < 1 {
		s.nextID = 1
	}
	return s
}

// List returns a snapshot of all tasks in insertion order.
func (s *Store) List(ctx context.Context) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Get(ctx context.Context, id int) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx == -1 {
		return Task{}, ErrNotFound
	}
	return s.tasks[idx], nil
}

// Create assigns the next id and appends the task.
func (s *Store) Create(ctx context.Context, in CreateInput) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{ID: s.nextID, Titulo: in.Titulo, Hecho: in.Hecho}
	s.nextID++
	s.tasks = append(s.tasks, t)
	return t
}

// Update merges the supplied fields of in into the task, in place.
func (s *Store) Update(ctx context.Context, id int, in PatchInput) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx == -1 {
		return Task{}, ErrNotFound
	}

	t := &s.tasks[idx]
	if in.Titulo != nil {
		t.Titulo = *in.Titulo
	}
	if in.Hecho != nil {
		t.Hecho = *in.Hecho
	}
	return *t, nil
}

// Delete removes the task and returns its last state.
func (s *Store) Delete(ctx context.Context, id int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx == -1 {
		return Task{}, ErrNotFound
	}

	removed := s.tasks[idx]
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	return removed, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// indexOf is a linear scan; callers hold mu.
func (s *Store) indexOf(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
