package google

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daypanel/daypanel/internal/rest"
	"github.com/daypanel/daypanel/pkg/calendar"
)

type CalendarItemDto struct {
	Id       string `json:"id"`
	Summary  string `json:"summary"`
	Color    string `json:"color,omitempty"`
	Primary  bool   `json:"primary"`
	Selected bool   `json:"selected"`
}

type Handler struct {
	backend *Backend
}

func NewHandler(backend *Backend) *Handler {
	return &Handler{backend}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	calendars, err := h.backend.ListCalendars(r.Context())
	if err != nil {
		if errors.Is(err, calendar.ErrNotAuthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Please sign in again", NeedsLogin: true})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Failed to list calendars"})
		return
	}

	w.WriteHeader(http.StatusOK)
	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}

	if err := json.NewEncoder(w).Encode(calendarItems); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:       ci.Id,
		Summary:  ci.Summary,
		Color:    ci.Color,
		Primary:  ci.Primary,
		Selected: ci.Selected,
	}
}
