package layout

import (
	"testing"
	"time"

	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/daypanel/daypanel/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engine = NewEngine(geometry.NewMapper(geometry.DefaultHourHeight))

func timedEvent(id string, start, end time.Time) calendar.Event {
	return calendar.Event{
		Id:         id,
		Title:      id,
		Start:      calendar.NewDateTime(start),
		End:        calendar.NewDateTime(end),
		CalendarId: calendar.PrimaryCalendarId,
		AccessRole: calendar.RoleOwner,
	}
}

func TestEngine_Layout_PartitionsAllDayAndTimed(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	events := []calendar.Event{
		{Id: "allday", Start: calendar.NewDate("2026-03-14"), End: calendar.NewDate("2026-03-15")},
		timedEvent("meeting", day.Add(9*time.Hour), day.Add(10*time.Hour)),
	}

	frame := engine.Layout(events, day, day.Add(-48*time.Hour))

	require.Len(t, frame.AllDay, 1)
	require.Len(t, frame.Timed, 1)
	assert.Equal(t, "allday", frame.AllDay[0].Id)
	assert.Equal(t, "meeting", frame.Timed[0].Event.Id)
}

func TestEngine_Layout_SortsTimedByStartKeepingFetchOrderOnTies(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	events := []calendar.Event{
		timedEvent("late", day.Add(15*time.Hour), day.Add(16*time.Hour)),
		timedEvent("first-at-nine", day.Add(9*time.Hour), day.Add(10*time.Hour)),
		timedEvent("second-at-nine", day.Add(9*time.Hour), day.Add(9*time.Hour+30*time.Minute)),
	}

	frame := engine.Layout(events, day, day)

	require.Len(t, frame.Timed, 3)
	assert.Equal(t, "first-at-nine", frame.Timed[0].Event.Id)
	assert.Equal(t, "second-at-nine", frame.Timed[1].Event.Id)
	assert.Equal(t, "late", frame.Timed[2].Event.Id)
}

func TestEngine_Layout_ComputesGeometry(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	events := []calendar.Event{
		timedEvent("morning", day.Add(9*time.Hour+30*time.Minute), day.Add(10*time.Hour)),
		// short event still rendered at the minimum height
		timedEvent("ping", day.Add(12*time.Hour), day.Add(12*time.Hour+5*time.Minute)),
		// crosses midnight: 23:30 -> 00:15 renders as 45 minutes
		timedEvent("night", day.Add(23*time.Hour+30*time.Minute), day.Add(24*time.Hour+15*time.Minute)),
	}

	frame := engine.Layout(events, day, day)

	require.Len(t, frame.Timed, 3)
	assert.Equal(t, 48.0*9+24.0, frame.Timed[0].Top)
	assert.Equal(t, 24.0, frame.Timed[0].Height)
	assert.Equal(t, geometry.MinCardHeight, frame.Timed[1].Height)
	assert.Equal(t, 48.0*23+24.0, frame.Timed[2].Top)
	assert.Equal(t, 36.0, frame.Timed[2].Height)
}

func TestEngine_Layout_StatusForToday(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	now := day.Add(9*time.Hour + 30*time.Minute)
	events := []calendar.Event{
		timedEvent("done", day.Add(7*time.Hour), day.Add(8*time.Hour)),
		timedEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour)),
		timedEvent("upcoming", day.Add(14*time.Hour), day.Add(15*time.Hour)),
	}

	frame := engine.Layout(events, day, now)

	require.Len(t, frame.Timed, 3)
	assert.Equal(t, StatusPast, frame.Timed[0].Status)
	assert.Equal(t, StatusCurrent, frame.Timed[1].Status)
	assert.Equal(t, StatusNone, frame.Timed[2].Status)

	require.NotNil(t, frame.NowOffset)
	assert.Equal(t, 48.0*9+24.0, *frame.NowOffset)
}

func TestEngine_Layout_NoStatusOrIndicatorForOtherDays(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 16, 9, 30, 0, 0, time.UTC)

	frame := engine.Layout([]calendar.Event{
		timedEvent("a", day.Add(7*time.Hour), day.Add(8*time.Hour)),
	}, day, now)

	require.Len(t, frame.Timed, 1)
	assert.Equal(t, StatusNone, frame.Timed[0].Status)
	assert.Nil(t, frame.NowOffset)
}

func TestEngine_Layout_EmptyDay(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	frame := engine.Layout(nil, day, day)

	assert.Empty(t, frame.AllDay)
	assert.Empty(t, frame.Timed)
}
