package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/pthm/hxwidget/lib/logging"
)

const defaultMaxOccurrences = 5000

// Occurrence is one concrete instance of an event.
type Occurrence struct {
	UID string
	// InstanceKey identifies the instance within its UID.
	InstanceKey string

	Summary     string
	Description string
	Location    string

	AllDay bool
	Start  time.Time
	End    time.Time
}

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the zone occurrences are converted to. Nil means
	// UTC.
	DisplayLocation *time.Location

	// RangeStart and RangeEnd bound the occurrences returned. The end is
	// exclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps the instances of a single rule. Zero
	// means 5000.
	MaxOccurrencesPerEvent int
}

// ExpandResult is the outcome of Expand.
type ExpandResult struct {
	Occurrences []Occurrence
	// Truncated lists the UIDs that hit MaxOccurrencesPerEvent.
	Truncated []string
}

// Expand turns parsed events into the occurrences intersecting the
// configured range, sorted by start. RRULE and EXDATE are honoured and
// RECURRENCE-ID overrides replace the instance they name.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("ics: range end before range start")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.UTC
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrences
	}

	bases := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	var uids []string
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := bases[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		bases[ev.UID] = append(bases[ev.UID], ev)
	}

	for _, uid := range uids {
		truncated := false
		for _, ev := range bases[uid] {
			occ, hitCap := expandEvent(ev, overrides[uid], cfg)
			truncated = truncated || hitCap
			result.Occurrences = append(result.Occurrences, occ...)
		}
		if truncated {
			result.Truncated = append(result.Truncated, uid)
			logging.Warn().Str("uid", uid).Int("cap", cfg.MaxOccurrencesPerEvent).Msg("ics: occurrences truncated")
		}
	}

	sort.SliceStable(result.Occurrences, func(i, j int) bool {
		return result.Occurrences[i].Start.Before(result.Occurrences[j].Start)
	})
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]Occurrence, bool) {
	// All-day events are floating dates; compare them against the dates
	// the range covers in the display zone.
	if ev.AllDay {
		cfg.RangeStart = floatingDate(cfg.RangeStart.In(cfg.DisplayLocation))
		end := cfg.RangeEnd.In(cfg.DisplayLocation)
		cfg.RangeEnd = floatingDate(end)
		if end.Hour()|end.Minute()|end.Second()|end.Nanosecond() != 0 {
			cfg.RangeEnd = cfg.RangeEnd.AddDate(0, 0, 1)
		}
	}

	if ev.RawRRule == "" {
		if !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
			return nil, false
		}
		if o, ok := findOverride(overrides, ev.Start); ok {
			return []Occurrence{occurrence(o, o.Start, o.End, cfg.DisplayLocation)}, false
		}
		return []Occurrence{occurrence(ev, ev.Start, ev.End, cfg.DisplayLocation)}, false
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		logging.Warn().Err(err).Str("uid", ev.UID).Str("rrule", ev.RawRRule).Msg("ics: bad RRULE")
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Instances starting before the range may still run into it.
	dur := ev.End.Sub(ev.Start)
	loc := ev.Start.Location()
	starts := set.Between(cfg.RangeStart.Add(-dur).In(loc), cfg.RangeEnd.In(loc), true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		end := start.Add(dur)
		if o, ok := findOverride(overrides, start); ok {
			if overlaps(o.Start, o.End, cfg.RangeStart, cfg.RangeEnd) {
				out = append(out, occurrence(o, o.Start, o.End, cfg.DisplayLocation))
			}
			continue
		}
		if !overlaps(start, end, cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		out = append(out, occurrence(ev, start, end, cfg.DisplayLocation))
	}
	return out, hitCap
}

func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func occurrence(ev ParsedEvent, start, end time.Time, loc *time.Location) Occurrence {
	if ev.AllDay {
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	} else {
		start, end = start.In(loc), end.In(loc)
	}
	return Occurrence{
		UID:         ev.UID,
		InstanceKey: start.Format(time.RFC3339Nano),
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Start:       start,
		End:         end,
	}
}

// overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd). A
// zero-length event counts when its instant lies in the range.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
