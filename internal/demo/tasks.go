package demo

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Task is an unscheduled item on the palette. Dragging it onto the
// calendar schedules a copy; dropping it on the bin deletes it.
type Task struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// TaskStore is an in-memory task store.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	nextID int
	now    func() time.Time
}

// NewTaskStore creates a store holding the given titles in order.
func NewTaskStore(titles ...string) *TaskStore {
	s := &TaskStore{
		tasks:  make(map[string]*Task),
		nextID: 1,
		now:    time.Now,
	}
	for _, title := range titles {
		s.Add(title)
	}
	return s
}

// Add creates a task and returns its ID, which doubles as its DOM id.
func (s *TaskStore) Add(title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("task-%d", s.nextID)
	s.nextID++
	s.tasks[id] = &Task{ID: id, Title: title, CreatedAt: s.now()}
	return id
}

// Get returns a task by ID.
func (s *TaskStore) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	return true
}

// List returns all tasks, oldest first.
func (s *TaskStore) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return taskSeq(result[i].ID) < taskSeq(result[j].ID)
	})
	return result
}

// Len returns the number of tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func taskSeq(id string) int {
	var n int
	fmt.Sscanf(id, "task-%d", &n)
	return n
}
