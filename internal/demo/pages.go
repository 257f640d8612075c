package demo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/pthm/hxwidget"
	"github.com/pthm/hxwidget/calendar"
)

// Scripts the page loads before any widget resources.
const (
	JQueryURL = "https://code.jquery.com/jquery-3.7.1.min.js"
	HTMXURL   = "https://unpkg.com/htmx.org@2.0.4"
)

const pageStyle = `
body { font-family: system-ui, sans-serif; margin: 0; display: grid; grid-template-columns: 16rem 1fr; }
aside { padding: 1rem; border-right: 1px solid #ddd; }
main { padding: 1rem; }
.task { cursor: move; padding: .4rem .6rem; margin: .3rem 0; border-radius: 3px; }
#bin { margin-top: 1rem; padding: 1.5rem; border: 2px dashed #bbb; text-align: center; color: #888; }
#bin.armed, #bin.bin-hover { border-color: #c33; color: #c33; }
.toast-container { position: fixed; top: 1rem; right: 1rem; }
.toast { padding: .6rem 1rem; margin-bottom: .4rem; border-radius: 3px; background: #333; color: #fff; }
.toast-error, .toast-warning { background: #c33; }
.toast-success { background: #2a7; }
`

// toastScript removes toasts after their dismiss delay and tracks the
// bin's armed state from the callback triggers.
const toastScript = `
document.body.addEventListener("htmx:oobAfterSwap", function() {
  document.querySelectorAll(".toast[data-auto-dismiss]").forEach(function(el) {
    var ms = parseInt(el.dataset.autoDismiss, 10);
    el.removeAttribute("data-auto-dismiss");
    setTimeout(function() { el.remove(); }, ms);
  });
});
document.body.addEventListener("` + TriggerBinArmed + `", function() { jQuery("#bin").addClass("armed"); });
document.body.addEventListener("` + TriggerBinDisarmed + `", function() { jQuery("#bin").removeClass("armed"); });
`

func write(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// indexPage is the calendar with the task palette and the bin.
func (a *App) indexPage() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, "<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n",
			templ.EscapeString(a.title)); err != nil {
			return err
		}
		if err := write(w, "<style>%s</style>\n<script src=\"%s\"></script>\n<script src=\"%s\"></script>\n",
			pageStyle, JQueryURL, HTMXURL); err != nil {
			return err
		}
		for _, r := range a.jqueryUI() {
			if err := r.Render(ctx, w); err != nil {
				return err
			}
		}
		if err := a.cal.Render().Render(ctx, w); err != nil {
			return err
		}
		if err := a.bin.Render().Render(ctx, w); err != nil {
			return err
		}
		for _, d := range a.draggables.Widgets() {
			if err := d.HXBehavior().Render().Render(ctx, w); err != nil {
				return err
			}
		}
		if err := write(w, "\n</head>\n<body>\n<aside>\n<h2>Tasks</h2>\n<ul id=\"tasks\">\n"); err != nil {
			return err
		}
		for _, t := range a.tasks.List() {
			if err := taskItem(t).Render(ctx, w); err != nil {
				return err
			}
		}
		if err := write(w, "</ul>\n<div id=\"bin\">Drop here to delete</div>\n<div id=\"%s\"></div>\n</aside>\n", RegionDetail); err != nil {
			return err
		}
		if err := write(w, "<main>\n<h1>%s</h1>\n<div id=\"%s\"></div>\n<div id=\"calendar\"></div>\n</main>\n",
			templ.EscapeString(a.title), RegionRange); err != nil {
			return err
		}
		if err := hxwidget.ToastContainer().Render(ctx, w); err != nil {
			return err
		}
		return write(w, "\n<script>%s</script>\n</body>\n</html>\n", toastScript)
	})
}

// jqueryUI loads jQuery UI once for the page. The widgets are built with
// empty settings so they do not repeat it.
func (a *App) jqueryUI() []templ.Component {
	s := a.uiSettings
	var out []templ.Component
	if s.StylesheetURL != "" {
		out = append(out, rawHTML(fmt.Sprintf("<link rel=\"stylesheet\" href=\"%s\">\n", templ.EscapeString(s.StylesheetURL))))
	}
	if s.ScriptURL != "" {
		out = append(out, rawHTML(fmt.Sprintf("<script src=\"%s\"></script>\n", templ.EscapeString(s.ScriptURL))))
	}
	return out
}

func rawHTML(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func taskItem(t Task) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, "<li id=\"%s\" class=\"task fc-event\">%s</li>\n",
			templ.EscapeString(t.ID), templ.EscapeString(t.Title))
	})
}

func rangeLabel(view calendar.View, start, end time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		// end is exclusive
		last := end.AddDate(0, 0, -1)
		return write(w, "<p class=\"range\" data-view=\"%s\">%s to %s</p>",
			templ.EscapeString(string(view)), start.Format("2 Jan 2006"), last.Format("2 Jan 2006"))
	})
}

func dayDetail(date time.Time, allDay bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, "<h3>%s</h3><p>Select a range or drop a task to schedule something.</p>",
			formatWhen(date, allDay))
	})
}

func eventDetail(ev calendar.CalendarEvent) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		when := formatWhen(ev.Start, ev.AllDay)
		if !ev.End.IsZero() {
			when += " to " + formatWhen(ev.End, ev.AllDay)
		}
		return write(w, "<h3 data-event=\"%d\">%s</h3><p>%s</p>", ev.ID, templ.EscapeString(ev.Title), when)
	})
}

func readOnlyDetail(eventID int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, "<h3 data-event=\"%d\">Subscribed event</h3><p>Events from calendar feeds are read-only.</p>", eventID)
	})
}
