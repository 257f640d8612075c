// Package hxwidget binds client-side jQuery widgets to Go handlers through
// htmx callbacks.
//
// A widget such as fullCalendar reports user interaction through callback
// options: select, dayClick, eventDrop and so on. hxwidget generates those
// callbacks, ships the interesting values back to the server as query
// parameters, and hands them to typed Go code.
//
// # Describing an Event
//
// Each widget event is an EventDescriptor: the callback's arguments and
// the expressions whose values reach the server.
//
//	var eventDrop = hxwidget.EventDescriptor{
//	    Name: "eventDrop",
//	    Params: []hxwidget.CallbackParameter{
//	        hxwidget.Context("event"),
//	        hxwidget.Context("delta"),
//	        hxwidget.Resolved("millisDelta", "delta.asMilliseconds()"),
//	        hxwidget.Resolved("eventId", "event.id"),
//	    },
//	}
//
// Context parameters only name callback arguments. Resolved parameters are
// javascript expressions evaluated when the event fires. Converted
// parameters are both: a callback argument sent in a converted form, such
// as a moment formatted as an ISO date.
//
// An optional precondition guards the callback. When it evaluates false
// on the client no request is made.
//
// # Behaviors and Bindings
//
// A Behavior applies a jQuery plugin to an element and owns one Binding
// per installed event:
//
//	b := hxwidget.NewBehavior("cal", "#calendar", "fullCalendar")
//	b.Install(eventDrop, func(ctx context.Context, t *hxwidget.Target, p *hxwidget.Params) error {
//	    id, delta := p.Int("eventId"), p.Int64("millisDelta")
//	    if err := p.Err(); err != nil {
//	        return err
//	    }
//	    _, err := store.Move(id, delta, false)
//	    return err
//	})
//
// The calendar and droppable packages build on this with typed listener
// interfaces, so most applications never install descriptors by hand.
//
// # Registration and Routing
//
// Behaviors are registered explicitly with a Registry:
//
//	reg := hxwidget.NewRegistry(key)
//	reg.Add(cal, dropZone)
//	http.Handle("/_w/", reg.Handler())
//
// Registration seals a callback token for every binding and installs the
// generated functions into the widget options. Render the behavior in the
// page head to emit the resources and the plugin call.
//
// # Security Model
//
// Every callback URL carries a token naming its behavior and event:
//   - Signed (default): HMAC-authenticated msgpack, visible but tamper-proof
//   - Encrypted: AES-GCM, opaque to clients (use .Sensitive())
//
// Requests with a missing or foreign token are rejected before any
// parameter is decoded. Mutating methods require the HX-Request header.
//
// # Responses
//
// Handlers describe their response on a Target: regions to re-render out
// of band, scripts to run, flash messages and HX-Trigger events.
//
// # Testing
//
// TestEvent and TestRequestBuilder exercise a binding through the registry
// handler. Fire plays the client side with an Evaluator standing in for
// the browser, which makes precondition gating testable.
package hxwidget
