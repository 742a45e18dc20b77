package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/daypanel/daypanel/internal/config"
	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icsBody(events ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
	}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func serveFeed(t *testing.T, body string) *Feed {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewFeed(config.Feed{Name: "team", Url: server.URL})
}

func window(date string) (time.Time, time.Time) {
	day, _ := time.Parse("2006-01-02", date)
	return day, day.Add(24 * time.Hour)
}

func TestFeed_SingleTimedEvent(t *testing.T) {
	feed := serveFeed(t, icsBody(
		"BEGIN:VEVENT",
		"UID:standup@team",
		"SUMMARY:Standup",
		"LOCATION:Zoom",
		"DTSTART:20260314T090000Z",
		"DTEND:20260314T091500Z",
		"END:VEVENT",
	))

	dayStart, dayEnd := window("2026-03-14")
	events, err := feed.ListEvents(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "standup@team@20260314T090000Z", event.Id)
	assert.Equal(t, "Standup", event.Title)
	assert.Equal(t, "Zoom", event.Location)
	assert.Equal(t, "ics:team", event.CalendarId)
	assert.True(t, event.IsReadOnly())
	assert.True(t, event.IsExternal())
	assert.False(t, event.IsAllDay())
}

func TestFeed_EventOutsideWindowIsSkipped(t *testing.T) {
	feed := serveFeed(t, icsBody(
		"BEGIN:VEVENT",
		"UID:standup@team",
		"SUMMARY:Standup",
		"DTSTART:20260313T090000Z",
		"DTEND:20260313T091500Z",
		"END:VEVENT",
	))

	dayStart, dayEnd := window("2026-03-14")
	events, err := feed.ListEvents(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFeed_WeeklyRecurrenceExpandsIntoWindow(t *testing.T) {
	feed := serveFeed(t, icsBody(
		"BEGIN:VEVENT",
		"UID:weekly@team",
		"SUMMARY:Weekly review",
		"DTSTART:20260302T100000Z", // a Monday
		"DTEND:20260302T110000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"END:VEVENT",
	))

	// 2026-03-16 is a Monday two weeks later
	dayStart, dayEnd := window("2026-03-16")
	events, err := feed.ListEvents(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2026, time.March, 16, 10, 0, 0, 0, time.UTC), events[0].Start.In(time.UTC))
	assert.Equal(t, time.Date(2026, time.March, 16, 11, 0, 0, 0, time.UTC), events[0].End.In(time.UTC))
}

func TestFeed_ExDateRemovesOccurrence(t *testing.T) {
	feed := serveFeed(t, icsBody(
		"BEGIN:VEVENT",
		"UID:weekly@team",
		"SUMMARY:Weekly review",
		"DTSTART:20260302T100000Z",
		"DTEND:20260302T110000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"EXDATE:20260316T100000Z",
		"END:VEVENT",
	))

	dayStart, dayEnd := window("2026-03-16")
	events, err := feed.ListEvents(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFeed_RecurrenceOverrideReplacesInstance(t *testing.T) {
	feed := serveFeed(t, icsBody(
		"BEGIN:VEVENT",
		"UID:weekly@team",
		"SUMMARY:Weekly review",
		"DTSTART:20260302T100000Z",
		"DTEND:20260302T110000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:weekly@team",
		"RECURRENCE-ID:20260316T100000Z",
		"SUMMARY:Weekly review (moved)",
		"DTSTART:20260316T140000Z",
		"DTEND:20260316T150000Z",
		"END:VEVENT",
	))

	dayStart, dayEnd := window("2026-03-16")
	events, err := feed.ListEvents(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Weekly review (moved)", events[0].Title)
	assert.Equal(t, time.Date(2026, time.March, 16, 14, 0, 0, 0, time.UTC), events[0].Start.In(time.UTC))
}

func TestFeed_AllDayEvent(t *testing.T) {
	feed := serveFeed(t, icsBody(
		"BEGIN:VEVENT",
		"UID:holiday@team",
		"SUMMARY:Public holiday",
		"DTSTART;VALUE=DATE:20260314",
		"DTEND;VALUE=DATE:20260315",
		"END:VEVENT",
	))

	dayStart, dayEnd := window("2026-03-14")
	events, err := feed.ListEvents(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].IsAllDay())
	assert.Equal(t, "2026-03-14", events[0].Start.Date)
}

func TestFeed_ServerErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	feed := NewFeed(config.Feed{Name: "team", Url: server.URL})

	dayStart, dayEnd := window("2026-03-14")
	_, err := feed.ListEvents(context.Background(), dayStart, dayEnd)
	require.Error(t, err)
	var requestErr *calendar.RequestError
	assert.ErrorAs(t, err, &requestErr)
}
