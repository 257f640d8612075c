package demo

import (
	"context"
	"fmt"

	"github.com/pthm/hxwidget"
	"github.com/pthm/hxwidget/droppable"
	"github.com/pthm/hxwidget/lib/logging"
)

// Client events the bin triggers while a task hovers over it.
const (
	TriggerBinArmed    = "bin-armed"
	TriggerBinDisarmed = "bin-disarmed"
)

// Bin deletes the tasks dropped on it.
type Bin struct {
	droppable.Adapter

	tasks      *TaskStore
	draggables *droppable.Draggables

	// forget unregisters the draggable of a deleted task.
	forget func(hxwidget.Widget)
}

var _ droppable.Listener = (*Bin)(nil)

func (b *Bin) IsOverEventEnabled() bool { return true }
func (b *Bin) IsExitEventEnabled() bool { return true }

func (b *Bin) OnDrop(ctx context.Context, t *hxwidget.Target, id string) error {
	d, ok := b.draggables.Lookup(id)
	if !ok {
		return fmt.Errorf("draggable %q: %w", id, hxwidget.ErrNotFound)
	}
	task, _ := b.tasks.Get(id)
	b.tasks.Delete(id)
	b.draggables.Remove(id)
	if b.forget != nil {
		b.forget(d)
	}
	logging.Info().Str("task", id).Msg("task deleted")

	t.Swap(id, nil, hxwidget.SwapDelete).
		Trigger(TriggerBinDisarmed).
		Flash(hxwidget.FlashInfo, fmt.Sprintf("Deleted %q", task.Title))
	return nil
}

func (b *Bin) OnOver(ctx context.Context, t *hxwidget.Target, id string) error {
	t.Trigger(TriggerBinArmed, map[string]any{"task": id})
	return nil
}

func (b *Bin) OnExit(ctx context.Context, t *hxwidget.Target, id string) error {
	t.Trigger(TriggerBinDisarmed, map[string]any{"task": id})
	return nil
}
