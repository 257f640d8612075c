package droppable

// Event is one decoded droppable callback. DropEvent, OverEvent and
// ExitEvent are the only implementations.
type Event interface {
	Name() string
	// DraggableID is the DOM id of the element being dragged. It is empty
	// when the element has no id.
	DraggableID() string
	droppableEvent()
}

// DropEvent is sent when an accepted draggable is dropped on the target.
type DropEvent struct{ Draggable string }

// OverEvent is sent when an accepted draggable moves over the target.
type OverEvent struct{ Draggable string }

// ExitEvent is sent when an accepted draggable leaves the target.
type ExitEvent struct{ Draggable string }

func (DropEvent) Name() string { return EventDrop }
func (OverEvent) Name() string { return EventOver }
func (ExitEvent) Name() string { return EventExit }

func (e DropEvent) DraggableID() string { return e.Draggable }
func (e OverEvent) DraggableID() string { return e.Draggable }
func (e ExitEvent) DraggableID() string { return e.Draggable }

func (DropEvent) droppableEvent() {}
func (OverEvent) droppableEvent() {}
func (ExitEvent) droppableEvent() {}
