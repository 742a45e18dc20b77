package calendar

import (
	"context"
	"fmt"
	"time"
)

// ErrNotAuthenticated is returned when the provider rejects the stored
// credentials (or none exist). Callers must prompt for a re-login and must
// not retry automatically.
var ErrNotAuthenticated = fmt.Errorf("not authenticated, login is required")

// ErrEventNotFound is returned when a mutation targets an id the provider
// does not know.
var ErrEventNotFound = fmt.Errorf("event not found")

// RequestError wraps a network or provider API failure for a single
// operation.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("calendar request %s failed: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// EventPayload carries the fields accepted by event mutations. Either
// StartDate/EndDate (all-day) or StartDateTime/EndDateTime (timed) is set,
// never both.
type EventPayload struct {
	Title         string
	IsAllDay      bool
	StartDate     string
	EndDate       string
	StartDateTime time.Time
	EndDateTime   time.Time
	// TimeZone defaults to the local system zone when empty.
	TimeZone    string
	Location    string
	Description string
	ColorId     string
	// CalendarId defaults to PrimaryCalendarId when empty.
	CalendarId string
}

// Backend abstracts the remote calendar provider (auth plus REST calls).
type Backend interface {
	ListEvents(ctx context.Context, dayStart time.Time, dayEnd time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, payload EventPayload) (*Event, error)
	UpdateEvent(ctx context.Context, id string, payload EventPayload) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// ReadOnlySource is a listing-only event source aggregated next to the
// primary backend (e.g. an ICS subscription).
type ReadOnlySource interface {
	ListEvents(ctx context.Context, dayStart time.Time, dayEnd time.Time) ([]Event, error)
}
