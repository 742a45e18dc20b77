package render

import (
	"encoding/json"
	"time"

	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/daypanel/daypanel/pkg/layout"
	log "github.com/sirupsen/logrus"
)

// PatchResult tells the caller what a targeted card update achieved.
type PatchResult int

const (
	// PatchApplied means the card was mutated in place.
	PatchApplied PatchResult = iota
	// PatchNeedsFullRender means the patch could not be applied and the
	// caller should re-render the whole frame from its snapshot.
	PatchNeedsFullRender
	// PatchNeedsRefresh means the event id is not tracked at all (newly
	// created events) and the caller should refetch the day.
	PatchNeedsRefresh
)

// Renderer decides between full re-renders and targeted in-place patches so
// poll ticks and single-event mutations do not churn the whole panel.
type Renderer struct {
	engine    layout.Engine
	presenter Presenter
	tracked   map[string]CardKind
}

func NewRenderer(engine layout.Engine, presenter Presenter) *Renderer {
	return &Renderer{
		engine:    engine,
		presenter: presenter,
		tracked:   map[string]CardKind{},
	}
}

// EventsEqual reports whether two event lists carry the same events,
// compared as an id-keyed set of serialized field values. Order differences
// are not a change.
func EventsEqual(old, new []calendar.Event) bool {
	if len(old) != len(new) {
		return false
	}
	newById := make(map[string][]byte, len(new))
	for _, event := range new {
		serialized, err := json.Marshal(event)
		if err != nil {
			return false
		}
		newById[event.Id] = serialized
	}
	for _, event := range old {
		serialized, err := json.Marshal(event)
		if err != nil {
			return false
		}
		other, ok := newById[event.Id]
		if !ok || string(serialized) != string(other) {
			return false
		}
	}
	return true
}

// Render rebuilds the whole frame from the event list.
func (r *Renderer) Render(events []calendar.Event, selectedDate time.Time, now time.Time) layout.Frame {
	frame := r.engine.Layout(events, selectedDate, now)

	cards := make([]Card, 0, len(frame.AllDay)+len(frame.Timed))
	r.tracked = make(map[string]CardKind, cap(cards))

	for _, event := range frame.AllDay {
		card := buildAllDayCard(event)
		cards = append(cards, card)
		r.tracked[event.Id] = CardAllDay
	}
	for _, positioned := range frame.Timed {
		card := buildTimelineCard(positioned, selectedDate.Location())
		cards = append(cards, card)
		r.tracked[positioned.Event.Id] = CardTimeline
	}

	r.presenter.ShowFrame(selectedDate, cards, frame.NowOffset)
	return frame
}

// RenderIfChanged runs a full render only when the event set actually
// changed, and reports whether it did.
func (r *Renderer) RenderIfChanged(previous, next []calendar.Event, selectedDate time.Time, now time.Time) bool {
	if EventsEqual(previous, next) {
		log.Debug("event set unchanged, skipping re-render")
		return false
	}
	r.Render(next, selectedDate, now)
	return true
}

// UpdateSingleCard patches one card in place after a successful mutation,
// avoiding a refetch-triggered full re-render. It falls back when the id is
// unknown, the card element is gone, or the event switched between the
// all-day and timed sections.
func (r *Renderer) UpdateSingleCard(event calendar.Event, selectedDate time.Time, now time.Time) PatchResult {
	kind := CardTimeline
	if event.IsAllDay() {
		kind = CardAllDay
	}

	previousKind, known := r.tracked[event.Id]
	if !known {
		return PatchNeedsRefresh
	}
	if previousKind != kind {
		log.Debugf("event %s switched card section, falling back to full render", event.Id)
		return PatchNeedsFullRender
	}

	var card Card
	if kind == CardAllDay {
		card = buildAllDayCard(event)
	} else {
		frame := r.engine.Layout([]calendar.Event{event}, selectedDate, now)
		if len(frame.Timed) != 1 {
			return PatchNeedsFullRender
		}
		card = buildTimelineCard(frame.Timed[0], selectedDate.Location())
	}

	if !r.presenter.PatchCard(card) {
		log.Debugf("card for event %s is missing, falling back to full render", event.Id)
		return PatchNeedsFullRender
	}
	return PatchApplied
}

// RemoveCard drops a deleted event's card. It reports false when the card
// was not tracked, in which case the caller should re-render fully.
func (r *Renderer) RemoveCard(id string) bool {
	if _, known := r.tracked[id]; !known {
		return false
	}
	delete(r.tracked, id)
	return r.presenter.RemoveCard(id)
}

// Tracks reports whether the given event id currently has a rendered card.
func (r *Renderer) Tracks(id string) bool {
	_, known := r.tracked[id]
	return known
}

func buildAllDayCard(event calendar.Event) Card {
	return Card{
		EventId:     event.Id,
		Kind:        CardAllDay,
		Permission:  permissionOf(event),
		Title:       event.Title,
		Location:    event.Location,
		HangoutLink: event.HangoutLink,
		Color:       cardColor(event),
	}
}

func buildTimelineCard(positioned layout.PositionedEvent, loc *time.Location) Card {
	event := positioned.Event
	return Card{
		EventId:     event.Id,
		Kind:        CardTimeline,
		Permission:  permissionOf(event),
		Title:       event.Title,
		TimeLabel:   formatTimeRange(event.Start.In(loc), event.End.In(loc)),
		Location:    event.Location,
		HangoutLink: event.HangoutLink,
		Color:       cardColor(event),
		Status:      positioned.Status,
		Top:         positioned.Top,
		Height:      positioned.Height,
	}
}

func permissionOf(event calendar.Event) CardPermission {
	switch {
	case event.IsExternal():
		return PermissionExternal
	case event.IsReadOnly():
		return PermissionReadOnly
	default:
		return PermissionEditable
	}
}

func cardColor(event calendar.Event) string {
	if event.ColorId != "" {
		return event.ColorId
	}
	return event.CalendarColor
}
