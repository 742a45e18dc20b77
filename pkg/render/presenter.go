package render

import (
	"strings"
	"time"

	"github.com/daypanel/daypanel/pkg/layout"
)

// CardKind tells which section of the panel a card belongs to.
type CardKind string

const (
	CardTimeline CardKind = "timeline"
	CardAllDay   CardKind = "allDay"
)

// CardPermission drives the interaction wiring of a card: editable cards get
// click-to-edit and drag/resize handlers, the other two render a lock
// affordance and only surface a notification on click.
type CardPermission string

const (
	PermissionEditable CardPermission = "editable"
	PermissionReadOnly CardPermission = "readOnly"
	PermissionExternal CardPermission = "external"
)

// Card is one rendered event card.
type Card struct {
	EventId     string
	Kind        CardKind
	Permission  CardPermission
	Title       string
	TimeLabel   string
	Location    string
	HangoutLink string
	Color       string
	Status      layout.Status
	Top         float64
	Height      float64
}

// Presenter is the presentation collaborator the renderer draws through.
// PatchCard and RemoveCard report false when the card is unknown so the
// renderer can fall back to a full render.
type Presenter interface {
	ShowFrame(date time.Time, cards []Card, nowOffset *float64)
	PatchCard(card Card) bool
	RemoveCard(id string) bool
}

func formatTimeRange(start, end time.Time) string {
	return formatClock(start) + " – " + formatClock(end)
}

func formatClock(t time.Time) string {
	return strings.ToLower(t.Format("3:04 PM"))
}
