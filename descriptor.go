package hxwidget

import "fmt"

// EventDescriptor describes one widget event: the callback parameters the
// widget passes, which of them reach the server, and an optional client-side
// guard.
//
// Name is the server-side event name and the last path segment of the
// callback URL. Option is the widget option the generated handler is
// installed under; it defaults to Name.
type EventDescriptor struct {
	Name         string
	Option       string
	Params       []CallbackParameter
	Precondition string
}

// OptionKey returns the widget option key for the event handler.
func (d EventDescriptor) OptionKey() string {
	if d.Option != "" {
		return d.Option
	}
	return d.Name
}

// WithPrecondition returns a copy of d guarded by a javascript boolean
// expression. An empty expression removes the guard.
func (d EventDescriptor) WithPrecondition(expr string) EventDescriptor {
	d.Precondition = expr
	return d
}

// Arguments returns the parameters forming the client function signature.
func (d EventDescriptor) Arguments() []CallbackParameter {
	var out []CallbackParameter
	for _, p := range d.Params {
		if p.IsArgument() {
			out = append(out, p)
		}
	}
	return out
}

// Transmitted returns the parameters sent to the server, in declaration order.
func (d EventDescriptor) Transmitted() []CallbackParameter {
	var out []CallbackParameter
	for _, p := range d.Params {
		if p.IsTransmitted() {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the descriptor and all its parameters.
func (d EventDescriptor) Validate() error {
	if !isIdentifier(d.Name) {
		return fmt.Errorf("%w: event name %q", ErrInvalidParameter, d.Name)
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("event %q: %w", d.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: event %q declares %q twice", ErrInvalidParameter, d.Name, p.Name)
		}
		seen[p.Name] = true
		if p.Name == tokenParam {
			return fmt.Errorf("%w: event %q: %q is reserved", ErrInvalidParameter, d.Name, tokenParam)
		}
	}
	return nil
}
