package gesture

import (
	"fmt"
	"math"
	"time"

	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/daypanel/daypanel/pkg/geometry"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Kind is the manipulation a pointer-down starts.
type Kind string

const (
	KindDrag         Kind = "drag"
	KindResizeTop    Kind = "resizeTop"
	KindResizeBottom Kind = "resizeBottom"
)

// moveThresholdPx separates a click from a manipulation. A session that
// never crosses it must not trigger a backend write.
const moveThresholdPx = 3.0

const (
	minDurationMinutes = 15
	minutesPerDay      = 24 * 60
)

var ErrSessionActive = fmt.Errorf("a manipulation session is already active")
var ErrNotManipulable = fmt.Errorf("event cannot be dragged or resized")

type sessionState int

const (
	stateArmed sessionState = iota
	statePreviewing
)

// Session is one in-flight drag or resize. At most one exists system-wide.
type Session struct {
	Id    string
	Event calendar.Event
	Kind  Kind

	originX float64
	originY float64

	dayStart      time.Time
	originalStart time.Time
	originalEnd   time.Time
	pendingStart  time.Time
	pendingEnd    time.Time

	state sessionState
}

// Preview is the transient geometry shown while the pointer moves. Nothing
// is persisted until pointer-up.
type Preview struct {
	EventId string
	Top     float64
	Height  float64
	Start   time.Time
	End     time.Time
}

// Outcome classifies what a pointer-up resolved to.
type Outcome int

const (
	// OutcomeNone: no session was active.
	OutcomeNone Outcome = iota
	// OutcomeClick: the pointer never crossed the move threshold.
	OutcomeClick
	// OutcomeNoChange: a manipulation ended where it started.
	OutcomeNoChange
	// OutcomeCommitted: the backend accepted the new time range.
	OutcomeCommitted
	// OutcomeReverted: the backend rejected it; the optimistic preview must
	// be discarded by re-rendering the authoritative snapshot.
	OutcomeReverted
)

// Result is what the session owner reports after acting on a resolution.
type Result struct {
	Outcome Outcome
	EventId string
	Updated *calendar.Event
	Err     error
}

// Resolution is what a pointer release resolved to before any backend
// write. When Commit is set, Outcome is not meaningful: the owner must
// persist Payload and report Committed or Reverted depending on the write.
type Resolution struct {
	Outcome Outcome
	EventId string
	Commit  bool
	Payload calendar.EventPayload
}

// Controller runs the drag/resize state machine:
// Idle -> Armed -> Previewing -> Idle. It never performs backend writes
// itself; a commit is handed to the session owner via Resolution, so the
// owner can release its state lock around the network call.
type Controller struct {
	mapper  geometry.Mapper
	session *Session
}

func NewController(mapper geometry.Mapper) *Controller {
	return &Controller{mapper: mapper}
}

// Active reports whether a session exists (armed or previewing).
func (c *Controller) Active() bool {
	return c.session != nil
}

// ActiveEventId returns the id of the event under manipulation, if any.
func (c *Controller) ActiveEventId() string {
	if c.session == nil {
		return ""
	}
	return c.session.Event.Id
}

// Cancel drops the session without committing. Not bound to a user gesture;
// used by the session owner on logout or forced re-render.
func (c *Controller) Cancel() {
	c.session = nil
}

// PointerDown arms a session on an eligible card. All-day, read-only and
// external events are not manipulable.
func (c *Controller) PointerDown(event calendar.Event, kind Kind, x, y float64, loc *time.Location) error {
	if c.session != nil {
		return ErrSessionActive
	}
	if event.IsAllDay() || event.IsReadOnly() || event.IsExternal() {
		return ErrNotManipulable
	}

	start := event.Start.In(loc)
	end := event.End.In(loc)
	c.session = &Session{
		Id:            uuid.NewString(),
		Event:         event,
		Kind:          kind,
		originX:       x,
		originY:       y,
		dayStart:      time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc),
		originalStart: start,
		originalEnd:   end,
		pendingStart:  start,
		pendingEnd:    end,
		state:         stateArmed,
	}
	log.Debugf("armed %s session %s for event %s", kind, c.session.Id, event.Id)
	return nil
}

// PointerMove advances the session. It returns a preview once the pointer
// has crossed the move threshold, and nil while the session still counts as
// a potential click.
func (c *Controller) PointerMove(x, y float64) *Preview {
	s := c.session
	if s == nil {
		return nil
	}

	if s.state == stateArmed {
		if math.Hypot(x-s.originX, y-s.originY) <= moveThresholdPx {
			return nil
		}
		s.state = statePreviewing
	}

	deltaY := y - s.originY
	switch s.Kind {
	case KindDrag:
		c.previewDrag(s, deltaY)
	case KindResizeTop:
		c.previewResizeTop(s, deltaY)
	case KindResizeBottom:
		c.previewResizeBottom(s, deltaY)
	}

	startMinutes := s.pendingStart.Hour()*60 + s.pendingStart.Minute()
	duration := geometry.DurationMinutes(s.pendingStart.Hour(), s.pendingStart.Minute(), s.pendingEnd.Hour(), s.pendingEnd.Minute())
	return &Preview{
		EventId: s.Event.Id,
		Top:     c.mapper.TimeToOffset(startMinutes/60, startMinutes%60),
		Height:  c.mapper.CardHeight(duration),
		Start:   s.pendingStart,
		End:     s.pendingEnd,
	}
}

// Release resolves the session. Sub-threshold sessions resolve to a click
// and never reach the backend; unchanged manipulations no-op; everything
// else asks the owner to commit the new time range, preserving all other
// event fields.
func (c *Controller) Release() Resolution {
	s := c.session
	if s == nil {
		return Resolution{Outcome: OutcomeNone}
	}
	c.session = nil

	if s.state == stateArmed {
		return Resolution{Outcome: OutcomeClick, EventId: s.Event.Id}
	}

	if s.pendingStart.Equal(s.originalStart) && s.pendingEnd.Equal(s.originalEnd) {
		log.Debugf("session %s ended without a change", s.Id)
		return Resolution{Outcome: OutcomeNoChange, EventId: s.Event.Id}
	}

	return Resolution{
		EventId: s.Event.Id,
		Commit:  true,
		Payload: calendar.EventPayload{
			Title:         s.Event.Title,
			IsAllDay:      false,
			StartDateTime: s.pendingStart,
			EndDateTime:   s.pendingEnd,
			TimeZone:      s.dayStart.Location().String(),
			Location:      s.Event.Location,
			Description:   s.Event.Description,
			ColorId:       s.Event.ColorId,
			CalendarId:    s.Event.CalendarId,
		},
	}
}

// previewDrag keeps the original duration and snaps the new start, clamped
// so the event stays inside the visible day.
func (c *Controller) previewDrag(s *Session, deltaY float64) {
	duration := geometry.DurationMinutes(s.originalStart.Hour(), s.originalStart.Minute(), s.originalEnd.Hour(), s.originalEnd.Minute())

	startOffset := c.mapper.TimeToOffset(s.originalStart.Hour(), s.originalStart.Minute())
	newStart := c.mapper.OffsetToSnappedMinutes(startOffset + deltaY)

	if newStart+duration > minutesPerDay {
		newStart = minutesPerDay - duration
	}
	if newStart < 0 {
		newStart = 0
	}

	s.pendingStart = s.dayStart.Add(time.Duration(newStart) * time.Minute)
	s.pendingEnd = s.pendingStart.Add(time.Duration(duration) * time.Minute)
}

// previewResizeTop moves only the start; the end stays fixed and a 15-minute
// minimum duration is enforced by clamping the start.
func (c *Controller) previewResizeTop(s *Session, deltaY float64) {
	startOffset := c.mapper.TimeToOffset(s.originalStart.Hour(), s.originalStart.Minute())
	newStart := c.mapper.OffsetToSnappedMinutes(startOffset + deltaY)

	startTotal := s.originalStart.Hour()*60 + s.originalStart.Minute()
	endTotal := s.originalEnd.Hour()*60 + s.originalEnd.Minute()
	if endTotal > startTotal && newStart > endTotal-minDurationMinutes {
		// keep start strictly before the fixed end
		newStart = endTotal - minDurationMinutes
	}
	if newStart < 0 {
		newStart = 0
	}

	s.pendingStart = s.dayStart.Add(time.Duration(newStart) * time.Minute)
	s.pendingEnd = s.originalEnd
}

// previewResizeBottom is the symmetric clamp for the end edge. The end may
// land on 24:00 exactly.
func (c *Controller) previewResizeBottom(s *Session, deltaY float64) {
	endOffset := c.mapper.TimeToOffset(s.originalEnd.Hour(), s.originalEnd.Minute())
	rawMinutes := (endOffset + deltaY) * 60 / c.mapper.HourHeight()
	newEnd := geometry.SnapToInterval(int(math.Round(rawMinutes)))

	startTotal := s.originalStart.Hour()*60 + s.originalStart.Minute()
	if newEnd < startTotal+minDurationMinutes {
		newEnd = startTotal + minDurationMinutes
	}
	if newEnd > minutesPerDay {
		newEnd = minutesPerDay
	}

	s.pendingStart = s.originalStart
	s.pendingEnd = s.dayStart.Add(time.Duration(newEnd) * time.Minute)
}
