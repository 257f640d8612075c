package hxwidget

import "fmt"

// ParamKind says how a callback parameter travels from the widget's event
// handler to the server.
type ParamKind int

const (
	// RawContext is an argument of the widget callback that stays in the
	// client function's scope. It is never sent to the server.
	RawContext ParamKind = iota

	// ResolvedExpression is computed from the handler scope at fire time and
	// sent as-is.
	ResolvedExpression

	// ConvertedExpression is a callback argument whose value is replaced by
	// an expression before sending. The server converts it further (dates).
	ConvertedExpression
)

func (k ParamKind) String() string {
	switch k {
	case RawContext:
		return "context"
	case ResolvedExpression:
		return "resolved"
	case ConvertedExpression:
		return "converted"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// CallbackParameter declares one named value of a widget event.
//
//	hxwidget.Context("jsEvent")                         // function(jsEvent) only
//	hxwidget.Converted("startDate", "startDate.format()") // argument, sent formatted
//	hxwidget.Resolved("viewName", "view.name")          // sent, not an argument
type CallbackParameter struct {
	Name       string
	Kind       ParamKind
	Expression string
}

// Context declares a raw callback argument.
func Context(name string) CallbackParameter {
	return CallbackParameter{Name: name, Kind: RawContext}
}

// Resolved declares a parameter computed by expr in the handler scope.
func Resolved(name, expr string) CallbackParameter {
	return CallbackParameter{Name: name, Kind: ResolvedExpression, Expression: expr}
}

// Converted declares a callback argument transmitted as expr's value.
func Converted(name, expr string) CallbackParameter {
	return CallbackParameter{Name: name, Kind: ConvertedExpression, Expression: expr}
}

// IsArgument reports whether the parameter appears in the generated
// function's argument list.
func (p CallbackParameter) IsArgument() bool {
	return p.Kind == RawContext || p.Kind == ConvertedExpression
}

// IsTransmitted reports whether the parameter becomes a query parameter.
func (p CallbackParameter) IsTransmitted() bool {
	return p.Kind == ResolvedExpression || p.Kind == ConvertedExpression
}

// Validate checks that the expression is present iff the kind needs one.
func (p CallbackParameter) Validate() error {
	if !isIdentifier(p.Name) {
		return fmt.Errorf("%w: name %q is not a javascript identifier", ErrInvalidParameter, p.Name)
	}
	switch p.Kind {
	case RawContext:
		if p.Expression != "" {
			return fmt.Errorf("%w: context parameter %q has an expression", ErrInvalidParameter, p.Name)
		}
	case ResolvedExpression, ConvertedExpression:
		if p.Expression == "" {
			return fmt.Errorf("%w: %s parameter %q has no expression", ErrInvalidParameter, p.Kind, p.Name)
		}
	default:
		return fmt.Errorf("%w: %q has unknown kind %d", ErrInvalidParameter, p.Name, int(p.Kind))
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
