package calendar

import (
	"time"
)

// PrimaryCalendarId is the sentinel id of the user's own calendar.
const PrimaryCalendarId = "primary"

// AccessRole is the access level the user has on the calendar an event
// belongs to, as reported by the provider.
type AccessRole string

const (
	RoleOwner          AccessRole = "owner"
	RoleWriter         AccessRole = "writer"
	RoleReader         AccessRole = "reader"
	RoleFreeBusyReader AccessRole = "freeBusyReader"
)

// EventTime is a point in time that is either a full date-time (timed
// events) or a calendar date without a time-of-day component (all-day
// events).
type EventTime struct {
	DateTime time.Time
	// Date is set instead of DateTime for all-day events, in "2006-01-02" form.
	Date string
}

func NewDateTime(t time.Time) EventTime {
	return EventTime{DateTime: t}
}

func NewDate(date string) EventTime {
	return EventTime{Date: date}
}

// IsDateOnly reports whether this value carries no time-of-day component.
func (t EventTime) IsDateOnly() bool {
	return t.Date != ""
}

// In resolves the value to a concrete time in the given location. Date-only
// values resolve to midnight of that date.
func (t EventTime) In(loc *time.Location) time.Time {
	if t.IsDateOnly() {
		d, err := time.ParseInLocation("2006-01-02", t.Date, loc)
		if err != nil {
			return time.Time{}
		}
		return d
	}
	return t.DateTime.In(loc)
}

type Attendee struct {
	Email          string
	DisplayName    string
	ResponseStatus string
}

// Event is a single calendar entry for the selected day. Id is unique within
// a day's result set and is used as the card correlation key by the renderer.
type Event struct {
	Id            string
	Title         string
	Start         EventTime
	End           EventTime
	Location      string
	Description   string
	ColorId       string
	CalendarId    string
	CalendarColor string
	HangoutLink   string
	Attendees     []Attendee
	AccessRole    AccessRole
}

// IsAllDay reports whether the event has calendar-date granularity only.
func (e Event) IsAllDay() bool {
	return e.Start.IsDateOnly()
}

// IsReadOnly reports whether the owning calendar grants no write access.
func (e Event) IsReadOnly() bool {
	return e.AccessRole == RoleReader || e.AccessRole == RoleFreeBusyReader
}

// IsExternal reports whether the event comes from a non-primary calendar the
// user cannot edit. Non-primary events with writer access are not external.
func (e Event) IsExternal() bool {
	return e.CalendarId != PrimaryCalendarId && e.IsReadOnly()
}
