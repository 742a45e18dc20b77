package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StubBackend is an in-memory Backend for tests.
type StubBackend struct {
	Events []Event

	// FailWith, when set, is returned by every operation.
	FailWith error

	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int
}

func NewStubBackend() *StubBackend {
	return &StubBackend{}
}

func (s *StubBackend) ListEvents(_ context.Context, _ time.Time, _ time.Time) ([]Event, error) {
	s.ListCalls++
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return events, nil
}

func (s *StubBackend) CreateEvent(_ context.Context, payload EventPayload) (*Event, error) {
	s.CreateCalls++
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	event := payloadToEvent(uuid.NewString(), payload)
	s.Events = append(s.Events, event)
	return &event, nil
}

func (s *StubBackend) UpdateEvent(_ context.Context, id string, payload EventPayload) (*Event, error) {
	s.UpdateCalls++
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	for i := range s.Events {
		if s.Events[i].Id == id {
			updated := payloadToEvent(id, payload)
			updated.CalendarColor = s.Events[i].CalendarColor
			updated.AccessRole = s.Events[i].AccessRole
			s.Events[i] = updated
			return &updated, nil
		}
	}
	return nil, &RequestError{Op: "update", Err: ErrEventNotFound}
}

func (s *StubBackend) DeleteEvent(_ context.Context, id string) error {
	s.DeleteCalls++
	if s.FailWith != nil {
		return s.FailWith
	}
	for i := range s.Events {
		if s.Events[i].Id == id {
			s.Events = append(s.Events[:i], s.Events[i+1:]...)
			return nil
		}
	}
	return &RequestError{Op: "delete", Err: ErrEventNotFound}
}

func (s *StubBackend) Cleanup() {
	s.Events = nil
	s.FailWith = nil
	s.ListCalls = 0
	s.CreateCalls = 0
	s.UpdateCalls = 0
	s.DeleteCalls = 0
}

func payloadToEvent(id string, payload EventPayload) Event {
	event := Event{
		Id:          id,
		Title:       payload.Title,
		Location:    payload.Location,
		Description: payload.Description,
		ColorId:     payload.ColorId,
		CalendarId:  payload.CalendarId,
		AccessRole:  RoleOwner,
	}
	if event.CalendarId == "" {
		event.CalendarId = PrimaryCalendarId
	}
	if payload.IsAllDay {
		event.Start = NewDate(payload.StartDate)
		event.End = NewDate(payload.EndDate)
	} else {
		event.Start = NewDateTime(payload.StartDateTime)
		event.End = NewDateTime(payload.EndDateTime)
	}
	return event
}
