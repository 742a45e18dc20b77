package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_Permissions(t *testing.T) {
	tests := []struct {
		name         string
		calendarId   string
		role         AccessRole
		wantReadOnly bool
		wantExternal bool
	}{
		{
			name:         "primary calendar with owner role is editable",
			calendarId:   PrimaryCalendarId,
			role:         RoleOwner,
			wantReadOnly: false,
			wantExternal: false,
		},
		{
			name:         "non-primary calendar with reader role is external",
			calendarId:   "work",
			role:         RoleReader,
			wantReadOnly: true,
			wantExternal: true,
		},
		{
			name:         "non-primary calendar with freeBusyReader role is external",
			calendarId:   "team",
			role:         RoleFreeBusyReader,
			wantReadOnly: true,
			wantExternal: true,
		},
		{
			name:         "non-primary calendar with writer role is editable and not external",
			calendarId:   "family",
			role:         RoleWriter,
			wantReadOnly: false,
			wantExternal: false,
		},
		{
			name:         "primary calendar with reader role is read-only but not external",
			calendarId:   PrimaryCalendarId,
			role:         RoleReader,
			wantReadOnly: true,
			wantExternal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := Event{Id: "e1", CalendarId: tt.calendarId, AccessRole: tt.role}
			assert.Equal(t, tt.wantReadOnly, event.IsReadOnly())
			assert.Equal(t, tt.wantExternal, event.IsExternal())
		})
	}
}

func TestEventTime_IsDateOnly(t *testing.T) {
	allDay := NewDate("2026-03-14")
	timed := NewDateTime(time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC))

	assert.True(t, allDay.IsDateOnly())
	assert.False(t, timed.IsDateOnly())

	assert.True(t, Event{Start: allDay, End: allDay}.IsAllDay())
	assert.False(t, Event{Start: timed, End: timed}.IsAllDay())
}

func TestEventTime_In(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatal(err)
	}

	allDay := NewDate("2026-03-14")
	resolved := allDay.In(warsaw)
	assert.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, warsaw), resolved)

	timed := NewDateTime(time.Date(2026, time.March, 14, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, 9, timed.In(warsaw).Hour())
}
