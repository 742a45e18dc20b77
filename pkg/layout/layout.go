package layout

import (
	"sort"
	"time"

	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/daypanel/daypanel/pkg/geometry"
)

// Status marks where a timed event sits relative to "now". It is only
// computed when the selected day is the real today.
type Status string

const (
	StatusNone    Status = ""
	StatusPast    Status = "past"
	StatusCurrent Status = "current"
)

// PositionedEvent is a timed event with its computed timeline geometry.
type PositionedEvent struct {
	Event  calendar.Event
	Top    float64
	Height float64
	Status Status
}

// Frame is the pure layout description of a single day. It carries no
// presentation state; the renderer decides how to apply it.
type Frame struct {
	Date   time.Time
	AllDay []calendar.Event
	Timed  []PositionedEvent
	// NowOffset is set only when the selected day is the real today.
	NowOffset *float64
}

// Engine computes day-view frames from an event list.
type Engine struct {
	mapper geometry.Mapper
}

func NewEngine(mapper geometry.Mapper) Engine {
	return Engine{mapper: mapper}
}

func (e Engine) Mapper() geometry.Mapper {
	return e.mapper
}

// Layout partitions the day's events, positions the timed ones on the
// 24-hour timeline, and computes statuses and the now indicator when
// selectedDate is today. Sort is stable so ties keep fetch order.
func (e Engine) Layout(events []calendar.Event, selectedDate time.Time, now time.Time) Frame {
	frame := Frame{Date: selectedDate}
	loc := selectedDate.Location()

	var timed []calendar.Event
	for _, event := range events {
		if event.IsAllDay() {
			frame.AllDay = append(frame.AllDay, event)
		} else {
			timed = append(timed, event)
		}
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].Start.In(loc).Before(timed[j].Start.In(loc))
	})

	isToday := sameDay(selectedDate, now.In(loc))

	frame.Timed = make([]PositionedEvent, 0, len(timed))
	for _, event := range timed {
		start := event.Start.In(loc)
		end := event.End.In(loc)

		duration := geometry.DurationMinutes(start.Hour(), start.Minute(), end.Hour(), end.Minute())
		positioned := PositionedEvent{
			Event:  event,
			Top:    e.mapper.TimeToOffset(start.Hour(), start.Minute()),
			Height: e.mapper.CardHeight(duration),
		}
		if isToday {
			if end.Before(now) {
				positioned.Status = StatusPast
			} else if !start.After(now) {
				positioned.Status = StatusCurrent
			}
		}
		frame.Timed = append(frame.Timed, positioned)
	}

	if isToday {
		localNow := now.In(loc)
		offset := e.mapper.TimeToOffset(localNow.Hour(), localNow.Minute())
		frame.NowOffset = &offset
	}

	return frame
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
