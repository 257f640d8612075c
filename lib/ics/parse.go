// Package ics turns iCalendar feeds into calendar event sources: it fetches
// ICS payloads with conditional requests and retries, parses VEVENTs,
// expands recurrences and keeps the result fresh on a cron schedule.
package ics

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pthm/hxwidget/lib/logging"
)

// ParsedEvent is a VEVENT before recurrence expansion.
type ParsedEvent struct {
	UID string
	Seq int

	Summary     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID of an overridden instance
}

// IsOverride reports whether the event replaces one instance of a
// recurring event.
func (ev ParsedEvent) IsOverride() bool {
	return ev.Recurrence != nil
}

// ErrEmptyFeed is returned for an empty ICS payload.
var ErrEmptyFeed = errors.New("ics: empty payload")

// Parse reads every VEVENT of an ICS payload. Events that cannot be read
// are logged and skipped.
//
// All-day events are anchored at UTC midnight; expansion re-anchors them
// in the display zone.
func Parse(body []byte) ([]ParsedEvent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyFeed
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, err := parseVEvent(comp)
		if err != nil {
			logging.Warn().Err(err).Msg("ics: skipping vevent")
			continue
		}
		events = append(events, ev)
	}
	logging.Debug().Int("events", len(events)).Msg("ics: parsed")
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySequence); p != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(p.Value)); err == nil {
			out.Seq = n
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDate(dtStart)

	start, err := ve.GetStartAt()
	if err != nil {
		if start, err = parseTime(dtStart.Value, tzid(dtStart)); err != nil {
			return out, err
		}
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = time.Time{}
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			end, _ = parseTime(p.Value, tzid(p))
		}
	}

	if out.AllDay {
		start = floatingDate(start)
		if end.IsZero() {
			end = start.AddDate(0, 0, 1)
		} else {
			end = floatingDate(end)
		}
	} else if end.IsZero() {
		end = start
	}
	out.Start, out.End = start, end

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		loc := tzid(p)
		for _, part := range strings.Split(p.Value, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			if t, err := parseTime(part, loc); err == nil {
				if out.AllDay {
					t = floatingDate(t)
				}
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseTime(p.Value, tzid(p)); err == nil {
			if out.AllDay {
				t = floatingDate(t)
			}
			out.Recurrence = &t
		}
	}

	return out, nil
}

func isDate(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// tzid loads the zone named by a TZID parameter, or UTC.
func tzid(p *ical.IANAProperty) *time.Location {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		if loc, err := time.LoadLocation(tzs[0]); err == nil {
			return loc
		}
	}
	return time.UTC
}

// floatingDate keeps the calendar date of t at UTC midnight.
func floatingDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseTime reads an ICS DATE or DATE-TIME value. Values ending in Z are
// UTC; other values are read in loc.
func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
