package calendar

import (
	"fmt"

	"github.com/pthm/hxwidget"
)

// View identifies a fullCalendar view.
type View string

const (
	ViewMonth      View = "month"
	ViewBasicWeek  View = "basicWeek"
	ViewBasicDay   View = "basicDay"
	ViewAgendaWeek View = "agendaWeek"
	ViewAgendaDay  View = "agendaDay"
	ViewListDay    View = "listDay"
	ViewListWeek   View = "listWeek"
	ViewListMonth  View = "listMonth"
	ViewListYear   View = "listYear"
)

// FallbackView is what ViewOf returns for names it does not know.
const FallbackView = ViewMonth

var views = []View{
	ViewMonth,
	ViewBasicWeek,
	ViewBasicDay,
	ViewAgendaWeek,
	ViewAgendaDay,
	ViewListDay,
	ViewListWeek,
	ViewListMonth,
	ViewListYear,
}

// Views returns every known view.
func Views() []View {
	return append([]View(nil), views...)
}

// ParseView looks up a view by its client name. Unknown names return
// FallbackView together with ErrUnrecognizedView.
func ParseView(name string) (View, error) {
	for _, v := range views {
		if string(v) == name {
			return v, nil
		}
	}
	return FallbackView, fmt.Errorf("%w: %q", hxwidget.ErrUnrecognizedView, name)
}

// ViewOf looks up a view by name, mapping unknown names to FallbackView.
func ViewOf(name string) View {
	v, _ := ParseView(name)
	return v
}

func (v View) String() string {
	return string(v)
}
