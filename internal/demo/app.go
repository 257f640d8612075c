// Package demo is the sample application served by the hxwidget command:
// a fullCalendar agenda editing an in-memory store, a palette of draggable
// tasks and a bin that deletes the tasks dropped on it.
package demo

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pthm/hxwidget"
	hxwidgetchi "github.com/pthm/hxwidget/adapters/chi"
	"github.com/pthm/hxwidget/calendar"
	"github.com/pthm/hxwidget/droppable"
	"github.com/pthm/hxwidget/lib/ics"
	"github.com/pthm/hxwidget/lib/logging"
)

// DefaultTasks seed the palette.
var DefaultTasks = []string{"Write report", "Review PR", "Call dentist", "Plan sprint"}

// Options configures an App.
type Options struct {
	Title string

	// Key signs callback tokens. Nil generates a random key.
	Key          []byte
	CallbackPath string
	Location     *time.Location
	CORSOrigins  []string

	// Feeds are shown read-only next to the store's events.
	Feeds []*ics.Feed

	Tasks []string

	// Now anchors the seeded events. Defaults to time.Now.
	Now func() time.Time

	CalendarSettings  calendar.Settings
	DroppableSettings droppable.Settings
}

func (o *Options) normalize() {
	if o.Title == "" {
		o.Title = "hxwidget"
	}
	if o.CallbackPath == "" {
		o.CallbackPath = hxwidget.DefaultPath
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Tasks == nil {
		o.Tasks = DefaultTasks
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// App is the wired demo application.
type App struct {
	title      string
	uiSettings droppable.Settings

	router     chi.Router
	reg        *hxwidget.Registry
	store      *calendar.MemoryStore
	tasks      *TaskStore
	draggables *droppable.Draggables
	feeds      []*ics.Feed

	cal *calendar.Calendar
	bin *droppable.Droppable
}

// New builds the application and its router.
func New(opts Options) *App {
	opts.normalize()

	a := &App{
		title:      opts.Title,
		uiSettings: opts.DroppableSettings,
		router:     chi.NewRouter(),
		store:      calendar.NewMemoryStore(seedEvents(opts.Now().In(opts.Location))...),
		tasks:      NewTaskStore(opts.Tasks...),
		draggables: droppable.NewDraggables(),
		feeds:      opts.Feeds,
	}

	a.setupMiddleware(opts.CORSOrigins)
	a.reg = hxwidgetchi.Mount(a.router,
		hxwidgetchi.WithKey(opts.Key),
		hxwidgetchi.WithPath(opts.CallbackPath),
		hxwidgetchi.WithRegistryOptions(hxwidget.WithLocation(opts.Location)),
	)
	a.setupWidgets(opts.CalendarSettings)
	a.setupRoutes()
	return a
}

func seedEvents(now time.Time) []calendar.CalendarEvent {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return []calendar.CalendarEvent{
		{Title: "Standup", Start: day.Add(9 * time.Hour), End: day.Add(9*time.Hour + 15*time.Minute)},
		{Title: "Lunch", Start: day.AddDate(0, 0, 1).Add(12 * time.Hour), End: day.AddDate(0, 0, 1).Add(13 * time.Hour)},
		{Title: "Offsite", Start: day.AddDate(0, 0, 3), End: day.AddDate(0, 0, 5), AllDay: true},
	}
}

func (a *App) setupMiddleware(origins []string) {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(requestLogger)
	a.router.Use(middleware.Recoverer)

	if len(origins) > 0 {
		a.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "HX-Request", "HX-Current-URL", "HX-Target", "HX-Trigger"},
			ExposedHeaders: []string{"HX-Trigger", "HX-Redirect", hxwidget.RequestIDHeader},
			MaxAge:         300,
		}))
	}
}

func (a *App) setupWidgets(settings calendar.Settings) {
	agenda := NewAgenda(a.store)

	sources := calendar.MultiSource{a.store}
	for _, f := range a.feeds {
		sources = append(sources, f)
	}
	a.cal = calendar.New("#calendar", agenda, settings, calendar.WithEventSource(sources))
	a.cal.Options().
		Set("header", map[string]string{
			"left":   "prev,next today",
			"center": "title",
			"right":  "month,agendaWeek,agendaDay,listWeek",
		}).
		Set("defaultView", string(calendar.ViewMonth))
	agenda.refetch = a.cal.Refetch()

	for _, t := range a.tasks.List() {
		a.draggables.Add(droppable.NewDraggable(t.ID, droppable.Settings{},
			droppable.WithTitle(t.Title),
			droppable.WithRevert(true),
			droppable.WithZIndex(999),
		))
	}

	bin := &Bin{
		tasks:      a.tasks,
		draggables: a.draggables,
		forget:     func(w hxwidget.Widget) { a.reg.Remove(w) },
	}
	a.bin = droppable.New("#bin", bin, droppable.Settings{},
		droppable.WithDraggables(a.draggables),
		droppable.WithAccept(".task"),
		droppable.WithHoverClass("bin-hover"),
	)

	a.reg.Add(a.cal, a.bin)
	a.reg.Add(a.draggables.Widgets()...)
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/healthz", a.handleHealth)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := hxwidget.Render(w, r, a.indexPage()); err != nil {
		logging.Error().Err(err).Msg("render index")
	}
}

type healthResponse struct {
	Status string       `json:"status"`
	Events int          `json:"events"`
	Tasks  int          `json:"tasks"`
	Feeds  []feedHealth `json:"feeds,omitempty"`
}

type feedHealth struct {
	URL       string     `json:"url"`
	Events    int        `json:"events"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Events: a.store.Len(), Tasks: a.tasks.Len()}
	for _, f := range a.feeds {
		fh := feedHealth{URL: f.URL(), Events: f.Len()}
		if at := f.UpdatedAt(); !at.IsZero() {
			fh.UpdatedAt = &at
		}
		resp.Feeds = append(resp.Feeds, fh)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Handler returns the application router.
func (a *App) Handler() http.Handler { return a.router }

// Registry returns the widget registry.
func (a *App) Registry() *hxwidget.Registry { return a.reg }

// Calendar returns the agenda widget.
func (a *App) Calendar() *calendar.Calendar { return a.cal }

// Bin returns the delete target.
func (a *App) Bin() *droppable.Droppable { return a.bin }

// Store returns the editable events.
func (a *App) Store() *calendar.MemoryStore { return a.store }

// Tasks returns the palette tasks.
func (a *App) Tasks() *TaskStore { return a.tasks }

// Draggables returns the palette handles.
func (a *App) Draggables() *droppable.Draggables { return a.draggables }

// Widgets returns every registered widget, in page order.
func (a *App) Widgets() []hxwidget.Widget {
	return append([]hxwidget.Widget{a.cal, a.bin}, a.draggables.Widgets()...)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
