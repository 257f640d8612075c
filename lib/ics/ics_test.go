package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icsDoc(events ...string) []byte {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//hxwidget//test//EN"}
	for _, ev := range events {
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, strings.Split(strings.TrimSpace(ev), "\n")...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

const standup = `UID:standup@example.com
SUMMARY:Standup
DTSTART:20240304T090000Z
DTEND:20240304T091500Z
RRULE:FREQ=DAILY;COUNT=5
EXDATE:20240306T090000Z`

const standupMoved = `UID:standup@example.com
RECURRENCE-ID:20240305T090000Z
SUMMARY:Standup (late)
DTSTART:20240305T110000Z
DTEND:20240305T111500Z`

const holiday = `UID:holiday@example.com
SUMMARY:Holiday
DTSTART;VALUE=DATE:20240308
DTEND;VALUE=DATE:20240309
LOCATION:Everywhere
SEQUENCE:2`

func utc(d, h, m int) time.Time { return time.Date(2024, 3, d, h, m, 0, 0, time.UTC) }

func TestParse(t *testing.T) {
	events, err := Parse(icsDoc(standup, standupMoved, holiday, "SUMMARY:no uid\nDTSTART:20240301T000000Z"))
	require.NoError(t, err)
	require.Len(t, events, 3)

	s := events[0]
	assert.Equal(t, "standup@example.com", s.UID)
	assert.Equal(t, "FREQ=DAILY;COUNT=5", s.RawRRule)
	assert.True(t, s.Start.Equal(utc(4, 9, 0)))
	assert.True(t, s.End.Equal(utc(4, 9, 15)))
	require.Len(t, s.ExDates, 1)
	assert.True(t, s.ExDates[0].Equal(utc(6, 9, 0)))
	assert.False(t, s.IsOverride())

	o := events[1]
	require.True(t, o.IsOverride())
	assert.True(t, o.Recurrence.Equal(utc(5, 9, 0)))

	h := events[2]
	assert.True(t, h.AllDay)
	assert.Equal(t, utc(8, 0, 0), h.Start)
	assert.Equal(t, utc(9, 0, 0), h.End)
	assert.Equal(t, "Everywhere", h.Location)
	assert.Equal(t, 2, h.Seq)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse([]byte("  \r\n"))
	assert.ErrorIs(t, err, ErrEmptyFeed)
}

func TestExpand(t *testing.T) {
	events, err := Parse(icsDoc(standup, standupMoved, holiday))
	require.NoError(t, err)

	res, err := Expand(events, ExpandConfig{RangeStart: utc(1, 0, 0), RangeEnd: utc(31, 0, 0)})
	require.NoError(t, err)
	assert.Empty(t, res.Truncated)

	var got []string
	for _, occ := range res.Occurrences {
		got = append(got, occ.Start.Format("02 15:04")+" "+occ.Summary)
	}
	assert.Equal(t, []string{
		"04 09:00 Standup",
		"05 11:00 Standup (late)",
		"07 09:00 Standup",
		"08 00:00 Holiday",
		"08 09:00 Standup",
	}, got)
}

func TestExpandRangeAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	events, err := Parse(icsDoc(standup, holiday))
	require.NoError(t, err)

	res, err := Expand(events, ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      time.Date(2024, 3, 8, 0, 0, 0, 0, loc),
		RangeEnd:        time.Date(2024, 3, 9, 0, 0, 0, 0, loc),
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 2)

	h := res.Occurrences[0]
	assert.Equal(t, "Holiday", h.Summary)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, loc), h.Start)

	s := res.Occurrences[1]
	assert.True(t, s.Start.Equal(time.Date(2024, 3, 8, 11, 0, 0, 0, loc)))
	assert.Equal(t, loc, s.Start.Location())
}

func TestExpandCap(t *testing.T) {
	events, err := Parse(icsDoc(`UID:tick
SUMMARY:Tick
DTSTART:20240301T000000Z
DTEND:20240301T000100Z
RRULE:FREQ=HOURLY`))
	require.NoError(t, err)

	res, err := Expand(events, ExpandConfig{
		RangeStart:             utc(1, 0, 0),
		RangeEnd:               utc(3, 0, 0),
		MaxOccurrencesPerEvent: 10,
	})
	require.NoError(t, err)
	assert.Len(t, res.Occurrences, 10)
	assert.Equal(t, []string{"tick"}, res.Truncated)
}

func TestExpandRejectsInvertedRange(t *testing.T) {
	_, err := Expand(nil, ExpandConfig{RangeStart: utc(2, 0, 0), RangeEnd: utc(1, 0, 0)})
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, overlaps(utc(1, 9, 0), utc(1, 10, 0), utc(1, 9, 30), utc(1, 11, 0)))
	assert.False(t, overlaps(utc(1, 9, 0), utc(1, 10, 0), utc(1, 10, 0), utc(1, 11, 0)))
	assert.True(t, overlaps(utc(1, 10, 0), utc(1, 10, 0), utc(1, 10, 0), utc(1, 11, 0)))
	assert.False(t, overlaps(utc(1, 11, 0), utc(1, 11, 0), utc(1, 10, 0), utc(1, 11, 0)))
}

func TestFeedEvents(t *testing.T) {
	f := NewFeed("", WithColor("#888"))
	require.NoError(t, f.Load(icsDoc(standup, holiday)))
	assert.Equal(t, 2, f.Len())
	assert.False(t, f.UpdatedAt().IsZero())

	evs, err := f.Events(context.Background(), utc(8, 0, 0), utc(9, 0, 0))
	require.NoError(t, err)
	require.Len(t, evs, 2)

	h := evs[0]
	assert.Equal(t, "Holiday", h.Title)
	assert.True(t, h.AllDay)
	assert.Equal(t, "#888", h.Color)
	require.NotNil(t, h.Editable)
	assert.False(t, *h.Editable)
	assert.Greater(t, h.ID, 1<<30-1)
	assert.NotEqual(t, evs[0].ID, evs[1].ID)

	again, err := f.Events(context.Background(), utc(8, 0, 0), utc(9, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, evs[1].ID, again[1].ID)
}

func TestFeedWithoutURL(t *testing.T) {
	assert.Error(t, NewFeed("").Refresh(context.Background()))
}

func TestFetcherConditionalGet(t *testing.T) {
	body := icsDoc(holiday)
	var hits, notModified atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			notModified.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(WithCacheDir(t.TempDir()), WithRetries(0, time.Millisecond))
	first, err := f.Fetch(context.Background(), srv.URL+"/cal.ics")
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, body, first.Body)

	second, err := f.Fetch(context.Background(), srv.URL+"/cal.ics")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, body, second.Body)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(1), notModified.Load())
}

func TestFetcherDiskCacheSurvivesRestart(t *testing.T) {
	body := icsDoc(holiday)
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := NewFetcher(WithCacheDir(dir)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	fail.Store(true)
	res, err := NewFetcher(WithCacheDir(dir), WithRetries(1, time.Millisecond)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, body, res.Body)
}

func TestFetcherRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(icsDoc(holiday))
	}))
	defer srv.Close()

	res, err := NewFetcher(WithRetries(5, time.Millisecond)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetcherDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewFetcher(WithRetries(5, time.Millisecond)).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), hits.Load())
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://calendar.example.com/...", redactURL("https://calendar.example.com/private/abc123/basic.ics?token=x"))
	assert.Equal(t, "ics://(redacted)", redactURL("not a url"))
}

func TestRefresher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(icsDoc(standup, holiday))
	}))
	defer srv.Close()

	good := NewFeed(srv.URL)
	bad := NewFeed(srv.URL+"/missing", WithFetcher(NewFetcher(WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusGone, Status: "410 Gone", Body: http.NoBody, Header: http.Header{}}, nil
		}),
	}))))

	r, err := NewRefresher("@every 1h", good, bad)
	require.NoError(t, err)
	r.Start(context.Background())
	defer r.Stop()

	assert.Equal(t, 2, good.Len())
	assert.NoError(t, r.LastError(good.URL()))
	assert.Error(t, r.LastError(bad.URL()))
	assert.Zero(t, bad.Len())
}

func TestRefresherRejectsBadSchedule(t *testing.T) {
	_, err := NewRefresher("not a schedule")
	assert.Error(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
