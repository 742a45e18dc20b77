package google

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/daypanel/daypanel/pkg/calendar"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// maxEventsPerCalendar bounds a single day's listing; a day view never needs
// more.
const maxEventsPerCalendar = 50

// Backend reads and mutates events through the Google Calendar API. Listing
// covers every calendar the user keeps visible; mutations target the calendar
// the payload names.
type Backend struct {
	auth *Auth
}

func NewBackend(auth *Auth) *Backend {
	return &Backend{auth: auth}
}

func (b *Backend) ListEvents(ctx context.Context, dayStart time.Time, dayEnd time.Time) ([]calendar.Event, error) {
	svc, err := b.service(ctx)
	if err != nil {
		return nil, err
	}
	return listDayEvents(ctx, svc, dayStart, dayEnd)
}

// listDayEvents collects the day's events from every visible calendar. A
// single broken calendar must not take the whole day down, so per-calendar
// fetch failures are logged and skipped; only auth failures abort the
// listing, since every remaining calendar would fail the same way.
func listDayEvents(ctx context.Context, svc *gcal.Service, dayStart time.Time, dayEnd time.Time) ([]calendar.Event, error) {
	calendarList, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("listCalendars", err)
	}

	var events []calendar.Event
	for _, entry := range calendarList.Items {
		if !entry.Selected && !entry.Primary {
			continue
		}
		result, err := svc.Events.List(entry.Id).
			TimeMin(dayStart.Format(time.RFC3339)).
			TimeMax(dayEnd.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(maxEventsPerCalendar).
			Context(ctx).
			Do()
		if err != nil {
			wrapped := wrapErr("listEvents", err)
			if errors.Is(wrapped, calendar.ErrNotAuthenticated) {
				return nil, wrapped
			}
			log.Warnf("skipping calendar %s after fetch failure: %v", entry.Id, err)
			continue
		}
		for _, item := range result.Items {
			if item.Status == "cancelled" {
				continue
			}
			events = append(events, transformEvent(item, entry))
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.In(time.UTC).Before(events[j].Start.In(time.UTC))
	})
	return events, nil
}

func (b *Backend) CreateEvent(ctx context.Context, payload calendar.EventPayload) (*calendar.Event, error) {
	svc, err := b.service(ctx)
	if err != nil {
		return nil, err
	}
	calendarId := payloadCalendarId(payload)
	inserted, err := svc.Events.Insert(calendarId, buildEvent(payload)).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("insertEvent", err)
	}
	log.Debugf("Created event %s in calendar %s", inserted.Id, calendarId)
	return b.transformMutated(ctx, svc, inserted, calendarId), nil
}

func (b *Backend) UpdateEvent(ctx context.Context, id string, payload calendar.EventPayload) (*calendar.Event, error) {
	svc, err := b.service(ctx)
	if err != nil {
		return nil, err
	}
	calendarId := payloadCalendarId(payload)
	updated, err := svc.Events.Update(calendarId, id, buildEvent(payload)).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("updateEvent", err)
	}
	log.Debugf("Updated event %s in calendar %s", id, calendarId)
	return b.transformMutated(ctx, svc, updated, calendarId), nil
}

func (b *Backend) DeleteEvent(ctx context.Context, id string) error {
	svc, err := b.service(ctx)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(calendar.PrimaryCalendarId, id).Context(ctx).Do(); err != nil {
		return wrapErr("deleteEvent", err)
	}
	log.Debugf("Deleted event %s", id)
	return nil
}

// CalendarItem is one entry of the user's calendar list.
type CalendarItem struct {
	Id       string
	Summary  string
	Color    string
	Primary  bool
	Selected bool
}

func (b *Backend) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	svc, err := b.service(ctx)
	if err != nil {
		return nil, err
	}
	calendarList, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("listCalendars", err)
	}
	items := make([]CalendarItem, 0, len(calendarList.Items))
	for _, entry := range calendarList.Items {
		items = append(items, CalendarItem{
			Id:       entry.Id,
			Summary:  entry.Summary,
			Color:    entry.BackgroundColor,
			Primary:  entry.Primary,
			Selected: entry.Selected || entry.Primary,
		})
	}
	return items, nil
}

func (b *Backend) service(ctx context.Context) (*gcal.Service, error) {
	client, err := b.auth.client(ctx)
	if err != nil {
		return nil, &calendar.RequestError{Op: "auth", Err: err}
	}
	if client == nil {
		log.Debug("no stored Google token, login is required")
		return nil, calendar.ErrNotAuthenticated
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, &calendar.RequestError{Op: "newService", Err: err}
	}
	return svc, nil
}

// transformMutated maps a mutation result back to the domain event. The
// calendar list entry supplies color and access role; when the lookup fails
// the event is still returned with owner defaults.
func (b *Backend) transformMutated(ctx context.Context, svc *gcal.Service, item *gcal.Event, calendarId string) *calendar.Event {
	entry, err := svc.CalendarList.Get(calendarId).Context(ctx).Do()
	if err != nil {
		log.Warnf("unable to resolve calendar %s after mutation: %v", calendarId, err)
		entry = &gcal.CalendarListEntry{
			Id:         calendarId,
			Primary:    calendarId == calendar.PrimaryCalendarId,
			AccessRole: string(calendar.RoleOwner),
		}
	}
	event := transformEvent(item, entry)
	return &event
}

func transformEvent(item *gcal.Event, entry *gcal.CalendarListEntry) calendar.Event {
	calendarId := entry.Id
	if entry.Primary {
		calendarId = calendar.PrimaryCalendarId
	}

	var attendees []calendar.Attendee
	for _, attendee := range item.Attendees {
		attendees = append(attendees, calendar.Attendee{
			Email:          attendee.Email,
			DisplayName:    attendee.DisplayName,
			ResponseStatus: attendee.ResponseStatus,
		})
	}

	return calendar.Event{
		Id:            item.Id,
		Title:         item.Summary,
		Start:         eventTime(item.Start),
		End:           eventTime(item.End),
		Location:      item.Location,
		Description:   item.Description,
		ColorId:       item.ColorId,
		CalendarId:    calendarId,
		CalendarColor: entry.BackgroundColor,
		HangoutLink:   item.HangoutLink,
		Attendees:     attendees,
		AccessRole:    calendar.AccessRole(entry.AccessRole),
	}
}

func eventTime(t *gcal.EventDateTime) calendar.EventTime {
	if t == nil {
		return calendar.EventTime{}
	}
	if t.Date != "" {
		return calendar.NewDate(t.Date)
	}
	parsed, err := time.Parse(time.RFC3339, t.DateTime)
	if err != nil {
		log.Warnf("unable to parse event time %q: %v", t.DateTime, err)
		return calendar.EventTime{}
	}
	return calendar.NewDateTime(parsed)
}

func buildEvent(payload calendar.EventPayload) *gcal.Event {
	event := &gcal.Event{
		Summary:     payload.Title,
		Location:    payload.Location,
		Description: payload.Description,
		ColorId:     payload.ColorId,
	}
	if payload.IsAllDay {
		event.Start = &gcal.EventDateTime{Date: payload.StartDate}
		event.End = &gcal.EventDateTime{Date: payload.EndDate}
	} else {
		event.Start = &gcal.EventDateTime{
			DateTime: payload.StartDateTime.Format(time.RFC3339),
			TimeZone: payload.TimeZone,
		}
		event.End = &gcal.EventDateTime{
			DateTime: payload.EndDateTime.Format(time.RFC3339),
			TimeZone: payload.TimeZone,
		}
	}
	return event
}

func payloadCalendarId(payload calendar.EventPayload) string {
	if payload.CalendarId == "" {
		return calendar.PrimaryCalendarId
	}
	return payload.CalendarId
}

func wrapErr(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return calendar.ErrNotAuthenticated
		case http.StatusNotFound, http.StatusGone:
			return calendar.ErrEventNotFound
		}
	}
	return &calendar.RequestError{Op: op, Err: err}
}
