package ics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/daypanel/daypanel/internal/config"
	"github.com/daypanel/daypanel/pkg/calendar"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

// maxOccurrencesPerEvent caps recurrence expansion inside a single day
// window.
const maxOccurrencesPerEvent = 100

const fetchTimeout = 10 * time.Second

// Feed is a read-only ICS subscription. Its events always carry reader
// access, so the panel renders them locked.
type Feed struct {
	name   string
	url    string
	client *http.Client
}

func NewFeed(cfg config.Feed) *Feed {
	return &Feed{
		name:   cfg.Name,
		url:    cfg.Url,
		client: &http.Client{Timeout: fetchTimeout},
	}
}

func (f *Feed) Name() string {
	return f.name
}

// CalendarId returns the synthetic calendar id feed events are grouped
// under.
func (f *Feed) CalendarId() string {
	return "ics:" + f.name
}

func (f *Feed) ListEvents(ctx context.Context, dayStart time.Time, dayEnd time.Time) ([]calendar.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &calendar.RequestError{Op: "fetchFeed", Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &calendar.RequestError{Op: "fetchFeed", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &calendar.RequestError{
			Op:  "fetchFeed",
			Err: fmt.Errorf("feed %s returned status %d", f.name, resp.StatusCode),
		}
	}

	cal, err := ical.ParseCalendar(resp.Body)
	if err != nil {
		return nil, &calendar.RequestError{Op: "parseFeed", Err: err}
	}

	return f.eventsInWindow(cal, dayStart, dayEnd), nil
}

type parsedEvent struct {
	uid          string
	summary      string
	description  string
	location     string
	start        time.Time
	end          time.Time
	allDay       bool
	rawRRule     string
	exDates      []time.Time
	recurrenceId *time.Time
}

func (f *Feed) eventsInWindow(cal *ical.Calendar, dayStart, dayEnd time.Time) []calendar.Event {
	var bases []parsedEvent
	overridesByUid := make(map[string][]parsedEvent)

	for _, component := range cal.Events() {
		parsed, err := parseVEvent(component)
		if err != nil {
			log.Warnf("skipping malformed event in feed %s: %v", f.name, err)
			continue
		}
		if parsed.recurrenceId != nil {
			overridesByUid[parsed.uid] = append(overridesByUid[parsed.uid], parsed)
			continue
		}
		bases = append(bases, parsed)
	}

	var events []calendar.Event
	for _, base := range bases {
		for _, occurrence := range expand(base, overridesByUid[base.uid], dayStart, dayEnd) {
			events = append(events, f.toEvent(occurrence))
		}
	}
	return events
}

// expand resolves a base event into its concrete occurrences inside
// [dayStart, dayEnd). Overrides replace the occurrence whose original start
// matches their RECURRENCE-ID.
func expand(base parsedEvent, overrides []parsedEvent, dayStart, dayEnd time.Time) []parsedEvent {
	var starts []time.Time
	if base.rawRRule == "" {
		starts = []time.Time{base.start}
	} else {
		rule, err := rrule.StrToRRule(base.rawRRule)
		if err != nil {
			log.Warnf("unable to parse RRULE %q: %v", base.rawRRule, err)
			return nil
		}
		rule.DTStart(base.start)

		var set rrule.Set
		set.RRule(rule)
		for _, exDate := range base.exDates {
			set.ExDate(exDate.In(base.start.Location()))
		}

		// widen the window by the duration so running occurrences that
		// started earlier are still found
		duration := base.end.Sub(base.start)
		starts = set.Between(dayStart.Add(-duration).In(base.start.Location()), dayEnd.In(base.start.Location()), true)
		if len(starts) > maxOccurrencesPerEvent {
			log.Warnf("feed event %s expansion capped at %d occurrences", base.uid, maxOccurrencesPerEvent)
			starts = starts[:maxOccurrencesPerEvent]
		}
	}

	duration := base.end.Sub(base.start)
	var out []parsedEvent
	for _, start := range starts {
		occurrence := base
		occurrence.start = start
		occurrence.end = start.Add(duration)
		if override, ok := findOverride(overrides, start); ok {
			occurrence = override
		}
		if occurrence.start.Before(dayEnd) && occurrence.end.After(dayStart) {
			out = append(out, occurrence)
		}
	}
	return out
}

func findOverride(overrides []parsedEvent, start time.Time) (parsedEvent, bool) {
	for _, override := range overrides {
		if override.recurrenceId.In(start.Location()).Equal(start) {
			return override, true
		}
	}
	return parsedEvent{}, false
}

func (f *Feed) toEvent(occurrence parsedEvent) calendar.Event {
	event := calendar.Event{
		Id:          occurrence.uid + "@" + occurrence.start.UTC().Format("20060102T150405Z"),
		Title:       occurrence.summary,
		Location:    occurrence.location,
		Description: occurrence.description,
		CalendarId:  f.CalendarId(),
		AccessRole:  calendar.RoleReader,
	}
	if occurrence.allDay {
		event.Start = calendar.NewDate(occurrence.start.Format("2006-01-02"))
		event.End = calendar.NewDate(occurrence.end.Format("2006-01-02"))
	} else {
		event.Start = calendar.NewDateTime(occurrence.start)
		event.End = calendar.NewDateTime(occurrence.end)
	}
	return event
}

func parseVEvent(ve *ical.VEvent) (parsedEvent, error) {
	var out parsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, fmt.Errorf("missing UID")
	}
	out.uid = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.location = p.Value
	}

	if dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart); dtStartProp != nil {
		out.allDay = isDateOnly(dtStartProp)
	}

	start, err := ve.GetStartAt()
	if err != nil {
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return out, fmt.Errorf("missing DTSTART: %w", err)
		}
	}
	out.start = start

	end, err := ve.GetEndAt()
	if err != nil {
		end, err = ve.GetAllDayEndAt()
		if err != nil {
			if out.allDay {
				end = start.Add(24 * time.Hour)
			} else {
				end = start
			}
		}
	}
	out.end = end

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.rawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, start.Location()); err == nil {
				out.exDates = append(out.exDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseICSTime(p.Value, start.Location()); err == nil {
			out.recurrenceId = &t
		}
	}

	return out, nil
}

func isDateOnly(prop *ical.IANAProperty) bool {
	if values, ok := prop.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

func parseICSTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	switch {
	case strings.HasSuffix(value, "Z"):
		return time.Parse("20060102T150405Z", value)
	case strings.Contains(value, "T"):
		return time.ParseInLocation("20060102T150405", value, loc)
	default:
		return time.ParseInLocation("20060102", value, loc)
	}
}
