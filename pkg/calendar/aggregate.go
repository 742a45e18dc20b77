package calendar

import (
	"context"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// Aggregate merges the writable primary backend with additional read-only
// sources. Mutations always go to the primary backend. A failing secondary
// source is logged and skipped so one broken feed does not take the whole
// day view down.
type Aggregate struct {
	primary Backend
	sources []ReadOnlySource
}

func NewAggregate(primary Backend, sources ...ReadOnlySource) *Aggregate {
	return &Aggregate{primary: primary, sources: sources}
}

func (a *Aggregate) ListEvents(ctx context.Context, dayStart time.Time, dayEnd time.Time) ([]Event, error) {
	events, err := a.primary.ListEvents(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	for _, source := range a.sources {
		sourceEvents, err := source.ListEvents(ctx, dayStart, dayEnd)
		if err != nil {
			log.Warnf("skipping event source after fetch failure: %v", err)
			continue
		}
		events = append(events, sourceEvents...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.In(dayStart.Location()).Before(events[j].Start.In(dayStart.Location()))
	})
	return events, nil
}

func (a *Aggregate) CreateEvent(ctx context.Context, payload EventPayload) (*Event, error) {
	return a.primary.CreateEvent(ctx, payload)
}

func (a *Aggregate) UpdateEvent(ctx context.Context, id string, payload EventPayload) (*Event, error) {
	return a.primary.UpdateEvent(ctx, id, payload)
}

func (a *Aggregate) DeleteEvent(ctx context.Context, id string) error {
	return a.primary.DeleteEvent(ctx, id)
}
