package droppable

import (
	"context"

	"github.com/pthm/hxwidget"
)

// Listener receives droppable callbacks. Drop is always bound; over and
// exit only when their predicate holds at construction.
type Listener interface {
	IsOverEventEnabled() bool
	IsExitEventEnabled() bool

	OnDrop(ctx context.Context, t *hxwidget.Target, draggable string) error
	OnOver(ctx context.Context, t *hxwidget.Target, draggable string) error
	OnExit(ctx context.Context, t *hxwidget.Target, draggable string) error
}

// Adapter implements Listener with over and exit disabled and no-op
// handlers.
type Adapter struct{}

var _ Listener = Adapter{}

func (Adapter) IsOverEventEnabled() bool { return false }
func (Adapter) IsExitEventEnabled() bool { return false }

func (Adapter) OnDrop(context.Context, *hxwidget.Target, string) error { return nil }
func (Adapter) OnOver(context.Context, *hxwidget.Target, string) error { return nil }
func (Adapter) OnExit(context.Context, *hxwidget.Target, string) error { return nil }

// Dispatch calls the listener method matching ev. It panics on a variant
// without an arm.
func Dispatch(ctx context.Context, t *hxwidget.Target, l Listener, ev Event) error {
	switch e := ev.(type) {
	case DropEvent:
		return l.OnDrop(ctx, t, e.Draggable)
	case OverEvent:
		return l.OnOver(ctx, t, e.Draggable)
	case ExitEvent:
		return l.OnExit(ctx, t, e.Draggable)
	default:
		panic(hxwidget.UnknownEventError(ev))
	}
}
