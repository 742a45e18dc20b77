package gesture

import (
	"testing"
	"time"

	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/daypanel/daypanel/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

func manipulableEvent(id string, start, end time.Time) calendar.Event {
	return calendar.Event{
		Id:         id,
		Title:      "Event " + id,
		Start:      calendar.NewDateTime(start),
		End:        calendar.NewDateTime(end),
		Location:   "Room 1",
		CalendarId: calendar.PrimaryCalendarId,
		AccessRole: calendar.RoleOwner,
	}
}

func setup(t *testing.T) *Controller {
	return NewController(geometry.NewMapper(geometry.DefaultHourHeight))
}

func TestController_PointerDown_Eligibility(t *testing.T) {
	tests := []struct {
		name  string
		event calendar.Event
	}{
		{
			name: "all-day event",
			event: calendar.Event{
				Id: "allday", Start: calendar.NewDate("2026-03-14"), End: calendar.NewDate("2026-03-15"),
				CalendarId: calendar.PrimaryCalendarId, AccessRole: calendar.RoleOwner,
			},
		},
		{
			name: "read-only event",
			event: calendar.Event{
				Id: "ro", Start: calendar.NewDateTime(day.Add(9 * time.Hour)), End: calendar.NewDateTime(day.Add(10 * time.Hour)),
				CalendarId: calendar.PrimaryCalendarId, AccessRole: calendar.RoleReader,
			},
		},
		{
			name: "external event",
			event: calendar.Event{
				Id: "ext", Start: calendar.NewDateTime(day.Add(9 * time.Hour)), End: calendar.NewDateTime(day.Add(10 * time.Hour)),
				CalendarId: "work", AccessRole: calendar.RoleFreeBusyReader,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := setup(t)
			err := controller.PointerDown(tt.event, KindDrag, 0, 0, time.UTC)
			assert.ErrorIs(t, err, ErrNotManipulable)
			assert.False(t, controller.Active())
		})
	}
}

func TestController_SecondSessionRejected(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindDrag, 0, 0, time.UTC))
	err := controller.PointerDown(event, KindDrag, 0, 0, time.UTC)
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestController_SubThresholdReleaseIsClick(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindDrag, 100, 100, time.UTC))
	assert.Nil(t, controller.PointerMove(101, 102))

	resolution := controller.Release()
	assert.Equal(t, OutcomeClick, resolution.Outcome)
	assert.Equal(t, "a", resolution.EventId)
	assert.False(t, resolution.Commit)
	assert.False(t, controller.Active())
}

func TestController_DragPreservesDurationAndSnaps(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindDrag, 50, 100, time.UTC))

	// 48px down = one hour; plus a little noise that snaps away
	preview := controller.PointerMove(50, 100+48+2)
	require.NotNil(t, preview)
	assert.Equal(t, day.Add(10*time.Hour), preview.Start)
	assert.Equal(t, day.Add(11*time.Hour), preview.End)
	assert.Equal(t, 480.0, preview.Top)
	assert.Equal(t, 48.0, preview.Height)

	resolution := controller.Release()
	require.True(t, resolution.Commit)
	assert.Equal(t, "a", resolution.EventId)
	assert.Equal(t, day.Add(10*time.Hour), resolution.Payload.StartDateTime)
	assert.Equal(t, day.Add(11*time.Hour), resolution.Payload.EndDateTime)
	// original fields travel with the commit
	assert.Equal(t, "Event a", resolution.Payload.Title)
	assert.Equal(t, "Room 1", resolution.Payload.Location)
	assert.Equal(t, calendar.PrimaryCalendarId, resolution.Payload.CalendarId)
	assert.Equal(t, "UTC", resolution.Payload.TimeZone)
	assert.False(t, controller.Active())
}

func TestController_DragClampedToVisibleDay(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(22*time.Hour), day.Add(23*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindDrag, 0, 0, time.UTC))
	preview := controller.PointerMove(0, 10*48) // way past midnight
	require.NotNil(t, preview)
	assert.Equal(t, day.Add(23*time.Hour), preview.Start)
	assert.Equal(t, day.Add(24*time.Hour), preview.End)
}

func TestController_ZeroNetDisplacementDoesNotCommit(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindDrag, 0, 0, time.UTC))
	// cross the threshold, then come back to the origin
	require.NotNil(t, controller.PointerMove(0, 20))
	require.NotNil(t, controller.PointerMove(0, 1))

	resolution := controller.Release()
	assert.Equal(t, OutcomeNoChange, resolution.Outcome)
	assert.False(t, resolution.Commit)
}

func TestController_ResizeTopClampKeepsMinimumDuration(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindResizeTop, 0, 0, time.UTC))
	// drag the top handle far below the bottom handle
	preview := controller.PointerMove(0, 5*48)
	require.NotNil(t, preview)
	assert.Equal(t, day.Add(9*time.Hour+45*time.Minute), preview.Start)
	assert.Equal(t, day.Add(10*time.Hour), preview.End)
	assert.True(t, preview.Start.Before(preview.End))

	resolution := controller.Release()
	require.True(t, resolution.Commit)
	got := resolution.Payload.EndDateTime.Sub(resolution.Payload.StartDateTime)
	assert.Equal(t, 15*time.Minute, got)
}

func TestController_ResizeTopMovesOnlyStart(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindResizeTop, 0, 0, time.UTC))
	preview := controller.PointerMove(0, -24) // half an hour up
	require.NotNil(t, preview)
	assert.Equal(t, day.Add(8*time.Hour+30*time.Minute), preview.Start)
	assert.Equal(t, day.Add(10*time.Hour), preview.End)
}

func TestController_ResizeBottomClamps(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindResizeBottom, 0, 0, time.UTC))
	// shrink past the start: clamped to a 15 minute card
	preview := controller.PointerMove(0, -5*48)
	require.NotNil(t, preview)
	assert.Equal(t, day.Add(9*time.Hour), preview.Start)
	assert.Equal(t, day.Add(9*time.Hour+15*time.Minute), preview.End)

	// grow past midnight: clamped to 24:00
	preview = controller.PointerMove(0, 40*48)
	require.NotNil(t, preview)
	assert.Equal(t, day.Add(24*time.Hour), preview.End)
}

func TestController_ReleaseWithoutSession(t *testing.T) {
	controller := setup(t)
	resolution := controller.Release()
	assert.Equal(t, OutcomeNone, resolution.Outcome)
	assert.False(t, resolution.Commit)
}

func TestController_Cancel(t *testing.T) {
	controller := setup(t)
	event := manipulableEvent("a", day.Add(9*time.Hour), day.Add(10*time.Hour))

	require.NoError(t, controller.PointerDown(event, KindDrag, 0, 0, time.UTC))
	require.NotNil(t, controller.PointerMove(0, 48))
	controller.Cancel()

	assert.False(t, controller.Active())
	assert.Equal(t, OutcomeNone, controller.Release().Outcome)
}
