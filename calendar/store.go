package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pthm/hxwidget"
)

// MemoryStore keeps calendar events in memory. It serves as an
// EventSource and applies the moves and resizes the widget reports.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int
	events map[int]CalendarEvent
}

var _ EventSource = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding evs. Events without an ID get one.
func NewMemoryStore(evs ...CalendarEvent) *MemoryStore {
	s := &MemoryStore{nextID: 1, events: make(map[int]CalendarEvent)}
	for _, ev := range evs {
		s.Add(ev)
	}
	return s
}

// Add stores ev and returns its ID. A zero ID is replaced by the next free
// one.
func (s *MemoryStore) Add(ev CalendarEvent) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == 0 {
		for s.events[s.nextID].ID != 0 {
			s.nextID++
		}
		ev.ID = s.nextID
		s.nextID++
	}
	s.events[ev.ID] = ev
	return ev.ID
}

// Get returns the event with the given ID.
func (s *MemoryStore) Get(id int) (CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return CalendarEvent{}, fmt.Errorf("event %d: %w", id, hxwidget.ErrNotFound)
	}
	return ev, nil
}

// Update replaces a stored event.
func (s *MemoryStore) Update(ev CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[ev.ID]; !ok {
		return fmt.Errorf("event %d: %w", ev.ID, hxwidget.ErrNotFound)
	}
	s.events[ev.ID] = ev
	return nil
}

// Remove deletes an event.
func (s *MemoryStore) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("event %d: %w", id, hxwidget.ErrNotFound)
	}
	delete(s.events, id)
	return nil
}

// ErrNegativeDuration is returned by Resize when the event would end
// before it starts.
var ErrNegativeDuration = errors.New("calendar: event would end before it starts")

// Move shifts an event by deltaMillis, as reported by eventDrop. Both ends
// move; allDay records the slot kind it was dropped on.
func (s *MemoryStore) Move(id int, deltaMillis int64, allDay bool) (CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return CalendarEvent{}, fmt.Errorf("event %d: %w", id, hxwidget.ErrNotFound)
	}
	d := time.Duration(deltaMillis) * time.Millisecond
	ev.Start = ev.Start.Add(d)
	if !ev.End.IsZero() {
		ev.End = ev.End.Add(d)
	}
	ev.AllDay = allDay
	s.events[id] = ev
	return ev, nil
}

// Resize extends an event's end by deltaMillis, as reported by
// eventResize. An open-ended event is treated as ending at its start.
func (s *MemoryStore) Resize(id int, deltaMillis int64) (CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return CalendarEvent{}, fmt.Errorf("event %d: %w", id, hxwidget.ErrNotFound)
	}
	end := ev.End
	if end.IsZero() {
		end = ev.Start
	}
	end = end.Add(time.Duration(deltaMillis) * time.Millisecond)
	if end.Before(ev.Start) {
		return CalendarEvent{}, fmt.Errorf("event %d: %w", id, ErrNegativeDuration)
	}
	ev.End = end
	s.events[id] = ev
	return ev, nil
}

// All returns every event sorted by start.
func (s *MemoryStore) All() []CalendarEvent {
	s.mu.RLock()
	out := make([]CalendarEvent, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev)
	}
	s.mu.RUnlock()

	sortEvents(out)
	return out
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Events implements EventSource. A zero bound leaves that side open.
func (s *MemoryStore) Events(_ context.Context, start, end time.Time) ([]CalendarEvent, error) {
	all := s.All()
	out := all[:0]
	for _, ev := range all {
		if inRange(ev, start, end) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func inRange(ev CalendarEvent, start, end time.Time) bool {
	switch {
	case start.IsZero() && end.IsZero():
		return true
	case start.IsZero():
		return ev.Start.Before(end)
	case end.IsZero():
		return ev.endsAfter(start)
	default:
		return ev.Overlaps(start, end)
	}
}
