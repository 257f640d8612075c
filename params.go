package hxwidget

import (
	"errors"
	"net/url"
	"strconv"
	"time"
)

// Date layouts accepted from widget callbacks. Fractional seconds are
// accepted by time.Parse after the seconds field without being spelled out.
const (
	DateLayout          = "2006-01-02"
	LocalDateTimeLayout = "2006-01-02T15:04:05"
	localMinuteLayout   = "2006-01-02T15:04"
)

var (
	errMissing   = errors.New("missing")
	errNotBool   = errors.New("want true or false")
	errNotDate   = errors.New("want a calendar date (2006-01-02)")
	errNotMoment = errors.New("want a date-time (2006-01-02T15:04:05)")
)

// Params decodes the query parameters of one callback request.
//
// The first conversion failure is kept and every later getter returns a zero
// value, so a decoder reads all its fields and checks Err once:
//
//	allDay := p.Bool("allDay")
//	start := p.DateTime("startDate", allDay)
//	if err := p.Err(); err != nil {
//	    return nil, err
//	}
type Params struct {
	values url.Values
	loc    *time.Location
	err    error
}

// NewParams wraps values. Dates without an offset are read in loc
// (UTC when nil).
func NewParams(values url.Values, loc *time.Location) *Params {
	if loc == nil {
		loc = time.UTC
	}
	return &Params{values: values, loc: loc}
}

// Err returns the first decode failure, a *MalformedError.
func (p *Params) Err() error {
	return p.err
}

// Location returns the zone used for zone-less date-times.
func (p *Params) Location() *time.Location {
	return p.loc
}

// Has reports whether name was sent.
func (p *Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p *Params) fail(name, value string, err error) {
	if p.err != nil {
		return
	}
	if errors.Is(err, errMissing) {
		err = nil
	}
	p.err = &MalformedError{Param: name, Value: value, Err: err}
}

func (p *Params) raw(name string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	vs, ok := p.values[name]
	if !ok || len(vs) == 0 {
		p.fail(name, "", errMissing)
		return "", false
	}
	return vs[0], true
}

// String returns the value verbatim. Empty values are allowed.
func (p *Params) String(name string) string {
	v, _ := p.raw(name)
	return v
}

// Bool accepts exactly "true" or "false".
func (p *Params) Bool(name string) bool {
	v, ok := p.raw(name)
	if !ok {
		return false
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	p.fail(name, v, errNotBool)
	return false
}

// Int parses a base-10 int.
func (p *Params) Int(name string) int {
	v, ok := p.raw(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v, err)
		return 0
	}
	return n
}

// Int64 parses a base-10 int64.
func (p *Params) Int64(name string) int64 {
	v, ok := p.raw(name)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(name, v, err)
		return 0
	}
	return n
}

// DateTime parses a date whose shape depends on a sibling all-day flag: a
// calendar date at midnight when allDay, a full date-time otherwise.
func (p *Params) DateTime(name string, allDay bool) time.Time {
	v, ok := p.raw(name)
	if !ok {
		return time.Time{}
	}
	var (
		t   time.Time
		err error
	)
	if allDay {
		t, err = ParseDate(v, p.loc)
	} else {
		t, err = ParseLocalDateTime(v, p.loc)
	}
	if err != nil {
		p.fail(name, v, err)
		return time.Time{}
	}
	return t
}

// Moment parses either a calendar date or a date-time, whichever matches.
// Used where the widget sends no all-day flag (view bounds, feed ranges).
func (p *Params) Moment(name string) time.Time {
	v, ok := p.raw(name)
	if !ok {
		return time.Time{}
	}
	if t, err := ParseDate(v, p.loc); err == nil {
		return t
	}
	t, err := ParseLocalDateTime(v, p.loc)
	if err != nil {
		p.fail(name, v, err)
		return time.Time{}
	}
	return t
}

// ParseDate parses a calendar date at midnight in loc.
func ParseDate(v string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, v, loc)
	if err != nil {
		return time.Time{}, errNotDate
	}
	return t, nil
}

// ParseLocalDateTime parses an ISO date-time. Values without an offset are
// read in loc; RFC 3339 values keep their own offset.
func ParseLocalDateTime(v string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{LocalDateTimeLayout, localMinuteLayout} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	return time.Time{}, errNotMoment
}
