package dayview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/daypanel/daypanel/internal/utils"
	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/daypanel/daypanel/pkg/gesture"
	"github.com/daypanel/daypanel/pkg/render"
	"github.com/daypanel/daypanel/pkg/toast"
	log "github.com/sirupsen/logrus"
)

// ErrUnknownEvent is returned when an operation targets an event id that is
// not part of the current day's snapshot.
var ErrUnknownEvent = fmt.Errorf("event is not part of the current day")

// Service owns the day view state: the selected date, the authoritative
// event snapshot, and the single active manipulation session. All state is
// guarded by one mutex; the snapshot generation counter protects against a
// slow fetch landing after a newer snapshot (either a poll or a gesture
// commit) has already been applied.
type Service struct {
	mu         sync.Mutex
	backend    calendar.Backend
	renderer   *render.Renderer
	surface    *render.Surface
	controller *gesture.Controller
	toasts     *toast.Queue
	clock      utils.Clock
	loc        *time.Location

	selectedDate time.Time
	events       []calendar.Event
	generation   uint64
}

func NewService(
	backend calendar.Backend,
	renderer *render.Renderer,
	surface *render.Surface,
	controller *gesture.Controller,
	toasts *toast.Queue,
	clock utils.Clock,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		backend:    backend,
		renderer:   renderer,
		surface:    surface,
		controller: controller,
		toasts:     toasts,
		clock:      clock,
		loc:        loc,
	}
	s.selectedDate = midnight(clock.Now().In(loc))
	return s
}

// SelectedDate returns the currently shown day (midnight, local zone).
func (s *Service) SelectedDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedDate
}

// Surface returns the presentation surface the panel frontend polls.
func (s *Service) Surface() *render.Surface {
	return s.surface
}

// Events returns a copy of the authoritative snapshot.
func (s *Service) Events() []calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]calendar.Event, len(s.events))
	copy(events, s.events)
	return events
}

// Refresh fetches the selected day and reconciles the panel. Visible
// refreshes show the loading state and surface failures; silent ones are
// poll ticks whose failures are swallowed so an open view is not disrupted.
func (s *Service) Refresh(ctx context.Context, visible bool) error {
	s.mu.Lock()
	if visible {
		// a user-initiated fetch discards any in-flight manipulation
		s.controller.Cancel()
		s.surface.SetLoading()
	}
	date := s.selectedDate
	generation := s.generation
	s.mu.Unlock()

	dayStart := date
	dayEnd := date.Add(24*time.Hour - time.Millisecond)
	events, err := s.backend.ListEvents(ctx, dayStart, dayEnd)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if !visible {
			log.Debugf("silent refresh failed: %v", err)
			return nil
		}
		if errors.Is(err, calendar.ErrNotAuthenticated) {
			s.surface.SetError("Please sign in again")
			return err
		}
		s.surface.SetError(err.Error())
		return err
	}

	if s.generation != generation {
		log.Debug("discarding stale fetch result")
		if visible {
			// the loading state must still resolve to a frame; draw the
			// newer snapshot that outran this fetch
			s.renderer.Render(s.events, s.selectedDate, s.clock.Now().In(s.loc))
		}
		return nil
	}
	if !visible && s.controller.Active() {
		// never stomp an in-progress drag/resize preview; the next tick
		// will catch up
		log.Debug("skipping poll render during an active manipulation")
		return nil
	}

	previous := s.events
	s.events = events
	s.generation++

	now := s.clock.Now().In(s.loc)
	if visible {
		s.renderer.Render(events, s.selectedDate, now)
	} else {
		s.renderer.RenderIfChanged(previous, events, s.selectedDate, now)
	}
	return nil
}

// NavigateDay moves the selected date by the given number of days and
// fetches it visibly. The poll cadence is unaffected.
func (s *Service) NavigateDay(ctx context.Context, offset int) error {
	s.mu.Lock()
	s.selectedDate = s.selectedDate.AddDate(0, 0, offset)
	s.mu.Unlock()
	return s.Refresh(ctx, true)
}

// ShowDate selects a specific day and fetches it visibly.
func (s *Service) ShowDate(ctx context.Context, date time.Time) error {
	s.mu.Lock()
	s.selectedDate = midnight(date.In(s.loc))
	s.mu.Unlock()
	return s.Refresh(ctx, true)
}

// GoToToday jumps back to the real today and fetches it visibly.
func (s *Service) GoToToday(ctx context.Context) error {
	s.mu.Lock()
	s.selectedDate = midnight(s.clock.Now().In(s.loc))
	s.mu.Unlock()
	return s.Refresh(ctx, true)
}

// Rerender redraws the current snapshot with a fresh "now" so statuses and
// the now indicator stay honest without refetching. Used by the midnight
// rollover job.
func (s *Service) Rerender() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controller.Active() {
		return
	}
	s.renderer.Render(s.events, s.selectedDate, s.clock.Now().In(s.loc))
}

// CardClicked applies the click policy: editable events open the editor
// (the event is returned), read-only and external ones only surface a
// notification.
func (s *Service) CardClicked(id string) (*calendar.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.findEvent(id)
	if !ok {
		return nil, ErrUnknownEvent
	}
	if event.IsReadOnly() || event.IsExternal() {
		s.toasts.Push(toast.KindInfo, "This event is from a read-only calendar")
		return nil, nil
	}
	return &event, nil
}

// CreateEvent creates the event and refetches the day: a new id is not
// tracked by the renderer, so a targeted patch is not possible.
func (s *Service) CreateEvent(ctx context.Context, payload calendar.EventPayload) (*calendar.Event, error) {
	created, err := s.backend.CreateEvent(ctx, s.defaultTimeZone(payload))
	if err != nil {
		s.toastFailure("create", err)
		return nil, err
	}
	s.toasts.Push(toast.KindSuccess, "Event created")
	if err := s.Refresh(ctx, true); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateEvent persists the change and patches the single affected card,
// falling back to a full render when the patch rules demand it.
func (s *Service) UpdateEvent(ctx context.Context, id string, payload calendar.EventPayload) (*calendar.Event, error) {
	updated, err := s.backend.UpdateEvent(ctx, id, s.defaultTimeZone(payload))
	if err != nil {
		s.toastFailure("update", err)
		return nil, err
	}

	needsRefresh := s.applyUpdatedEvent(*updated)
	s.toasts.Push(toast.KindSuccess, "Event updated")
	if needsRefresh {
		if err := s.Refresh(ctx, true); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

// DeleteEvent removes the event and drops its card.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := s.backend.DeleteEvent(ctx, id); err != nil {
		s.toastFailure("delete", err)
		return err
	}

	s.mu.Lock()
	for i := range s.events {
		if s.events[i].Id == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			break
		}
	}
	s.generation++
	if !s.renderer.RemoveCard(id) {
		s.renderer.Render(s.events, s.selectedDate, s.clock.Now().In(s.loc))
	}
	s.mu.Unlock()

	s.toasts.Push(toast.KindSuccess, "Event deleted")
	return nil
}

// PointerDown arms a manipulation session on the addressed card.
func (s *Service) PointerDown(id string, kind gesture.Kind, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.findEvent(id)
	if !ok {
		return ErrUnknownEvent
	}
	return s.controller.PointerDown(event, kind, x, y, s.loc)
}

// PointerMove advances the session and previews the new geometry locally.
func (s *Service) PointerMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preview := s.controller.PointerMove(x, y)
	if preview != nil {
		s.surface.PreviewCard(preview.EventId, preview.Top, preview.Height)
	}
}

// PointerUp commits or resolves the session. A commit's backend write runs
// outside the state lock so frame polls are not stalled behind a slow
// provider. On a click the event to edit is returned (nil for
// read-only/external cards, which only get a toast).
func (s *Service) PointerUp(ctx context.Context) (*calendar.Event, gesture.Result) {
	s.mu.Lock()
	resolution := s.controller.Release()

	if !resolution.Commit {
		if resolution.Outcome == gesture.OutcomeNoChange {
			// the preview may have nudged the card; restore authoritative geometry
			if event, ok := s.findEvent(resolution.EventId); ok {
				s.renderer.UpdateSingleCard(event, s.selectedDate, s.clock.Now().In(s.loc))
			}
		}
		s.mu.Unlock()

		result := gesture.Result{Outcome: resolution.Outcome, EventId: resolution.EventId}
		if result.Outcome == gesture.OutcomeClick {
			event, err := s.CardClicked(result.EventId)
			if err != nil {
				return nil, result
			}
			return event, result
		}
		return nil, result
	}
	s.mu.Unlock()

	updated, err := s.backend.UpdateEvent(ctx, resolution.EventId, resolution.Payload)

	s.mu.Lock()
	now := s.clock.Now().In(s.loc)
	if err != nil {
		log.Warnf("commit of event %s failed, reverting: %v", resolution.EventId, err)
		// discard the optimistic preview by re-rendering the snapshot
		s.renderer.Render(s.events, s.selectedDate, now)
		s.mu.Unlock()
		s.toastFailure("update", err)
		return nil, gesture.Result{Outcome: gesture.OutcomeReverted, EventId: resolution.EventId, Err: err}
	}

	for i := range s.events {
		if s.events[i].Id == resolution.EventId {
			s.events[i] = *updated
			break
		}
	}
	s.generation++
	if s.renderer.UpdateSingleCard(*updated, s.selectedDate, now) != render.PatchApplied {
		s.renderer.Render(s.events, s.selectedDate, now)
	}
	s.mu.Unlock()
	s.toasts.Push(toast.KindSuccess, "Event updated")
	return nil, gesture.Result{Outcome: gesture.OutcomeCommitted, EventId: resolution.EventId, Updated: updated}
}

func (s *Service) findEvent(id string) (calendar.Event, bool) {
	for _, event := range s.events {
		if event.Id == id {
			return event, true
		}
	}
	return calendar.Event{}, false
}

func (s *Service) defaultTimeZone(payload calendar.EventPayload) calendar.EventPayload {
	if payload.TimeZone == "" && !payload.IsAllDay {
		payload.TimeZone = s.loc.String()
	}
	return payload
}

// applyUpdatedEvent replaces the snapshot entry and patches the card.
// It reports whether a full refetch is needed instead (untracked id).
func (s *Service) applyUpdatedEvent(updated calendar.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].Id == updated.Id {
			s.events[i] = updated
			break
		}
	}
	s.generation++

	switch s.renderer.UpdateSingleCard(updated, s.selectedDate, s.clock.Now().In(s.loc)) {
	case render.PatchApplied:
		return false
	case render.PatchNeedsFullRender:
		s.renderer.Render(s.events, s.selectedDate, s.clock.Now().In(s.loc))
		return false
	default:
		return true
	}
}

func (s *Service) toastFailure(op string, err error) {
	if errors.Is(err, calendar.ErrNotAuthenticated) {
		s.toasts.Push(toast.KindError, "Please sign in again")
		return
	}
	s.toasts.Push(toast.KindError, fmt.Sprintf("Failed to %s event: %v", op, err))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
