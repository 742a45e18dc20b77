package dayview

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/daypanel/daypanel/internal/rest"
	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/daypanel/daypanel/pkg/gesture"
	"github.com/daypanel/daypanel/pkg/render"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type EventDTO struct {
	Id            string        `json:"id"`
	Title         string        `json:"title"`
	Start         string        `json:"start"`
	End           string        `json:"end"`
	IsAllDay      bool          `json:"isAllDay"`
	Location      string        `json:"location,omitempty"`
	Description   string        `json:"description,omitempty"`
	ColorId       string        `json:"colorId,omitempty"`
	CalendarId    string        `json:"calendarId"`
	CalendarColor string        `json:"calendarColor,omitempty"`
	HangoutLink   string        `json:"hangoutLink,omitempty"`
	Attendees     []AttendeeDTO `json:"attendees,omitempty"`
	IsReadOnly    bool          `json:"isReadOnly"`
	IsExternal    bool          `json:"isExternal"`
}

type AttendeeDTO struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

type CardDTO struct {
	EventId     string   `json:"eventId"`
	Kind        string   `json:"kind"`
	Permission  string   `json:"permission"`
	Title       string   `json:"title"`
	TimeLabel   string   `json:"timeLabel,omitempty"`
	Location    string   `json:"location,omitempty"`
	HangoutLink string   `json:"hangoutLink,omitempty"`
	Color       string   `json:"color,omitempty"`
	Status      string   `json:"status,omitempty"`
	Top         float64  `json:"top"`
	Height      float64  `json:"height"`
}

type FrameDTO struct {
	State        string    `json:"state"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	Date         string    `json:"date"`
	Cards        []CardDTO `json:"cards"`
	NowOffset    *float64  `json:"nowOffset,omitempty"`
	Version      uint64    `json:"version"`
}

type EventPayloadDTO struct {
	Title         string `json:"title"`
	IsAllDay      bool   `json:"isAllDay"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	StartDateTime string `json:"startDateTime,omitempty"`
	EndDateTime   string `json:"endDateTime,omitempty"`
	TimeZone      string `json:"timeZone,omitempty"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
	ColorId       string `json:"colorId,omitempty"`
	CalendarId    string `json:"calendarId,omitempty"`
}

type navigateRequest struct {
	Offset int `json:"offset"`
}

type pointerDownRequest struct {
	EventId string  `json:"eventId"`
	Kind    string  `json:"kind"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type pointerMoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type pointerUpResponse struct {
	Outcome   string    `json:"outcome"`
	EditEvent *EventDTO `json:"editEvent,omitempty"`
}

// GetDay selects the requested date (default: the currently selected one)
// and runs a visible fetch before returning the frame.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	var err error
	if dateString := r.URL.Query().Get("date"); dateString != "" {
		date, parseErr := time.Parse(dateLayout, dateString)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format", "'date' must be YYYY-MM-DD")
			return
		}
		err = h.service.ShowDate(ctx, date)
	} else {
		err = h.service.Refresh(ctx, true)
	}
	if err != nil {
		writeFetchError(w, err)
		return
	}
	h.writeFrame(w)
}

// GetFrame returns the current frame without refetching.
func (h *Handler) GetFrame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeFrame(w)
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.service.NavigateDay(r.Context(), req.Offset); err != nil {
		writeFetchError(w, err)
		return
	}
	h.writeFrame(w)
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.service.GoToToday(r.Context()); err != nil {
		writeFetchError(w, err)
		return
	}
	h.writeFrame(w)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateEvent(r.Context(), payload)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	encode(w, eventToDTO(*created))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	eventId := mux.Vars(r)["eventId"]
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	updated, err := h.service.UpdateEvent(r.Context(), eventId, payload)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	encode(w, eventToDTO(*updated))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	if err := h.service.DeleteEvent(r.Context(), eventId); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeMutationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PointerDown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req pointerDownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	err := h.service.PointerDown(req.EventId, gesture.Kind(req.Kind), req.X, req.Y)
	switch {
	case errors.Is(err, ErrUnknownEvent):
		writeError(w, http.StatusNotFound, "Unknown event", "")
	case errors.Is(err, gesture.ErrNotManipulable), errors.Is(err, gesture.ErrSessionActive):
		writeError(w, http.StatusConflict, err.Error(), "")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error(), "")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) PointerMove(w http.ResponseWriter, r *http.Request) {
	var req pointerMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	h.service.PointerMove(req.X, req.Y)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PointerUp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	editEvent, result := h.service.PointerUp(r.Context())
	response := pointerUpResponse{Outcome: outcomeName(result.Outcome)}
	if editEvent != nil {
		dto := eventToDTO(*editEvent)
		response.EditEvent = &dto
	}
	encode(w, response)
}

func (h *Handler) writeFrame(w http.ResponseWriter) {
	encode(w, frameToDTO(h.service.Surface().Snapshot()))
}

func decodePayload(w http.ResponseWriter, r *http.Request) (calendar.EventPayload, bool) {
	var dto EventPayloadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return calendar.EventPayload{}, false
	}

	payload := calendar.EventPayload{
		Title:       dto.Title,
		IsAllDay:    dto.IsAllDay,
		TimeZone:    dto.TimeZone,
		Location:    dto.Location,
		Description: dto.Description,
		ColorId:     dto.ColorId,
		CalendarId:  dto.CalendarId,
	}
	if dto.IsAllDay {
		payload.StartDate = dto.StartDate
		payload.EndDate = dto.EndDate
		if payload.StartDate == "" {
			writeError(w, http.StatusBadRequest, "Missing startDate", "all-day events need 'startDate'")
			return calendar.EventPayload{}, false
		}
	} else {
		start, err := time.Parse(time.RFC3339, dto.StartDateTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid startDateTime", "'startDateTime' must be RFC3339")
			return calendar.EventPayload{}, false
		}
		end, err := time.Parse(time.RFC3339, dto.EndDateTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid endDateTime", "'endDateTime' must be RFC3339")
			return calendar.EventPayload{}, false
		}
		payload.StartDateTime = start
		payload.EndDateTime = end
	}
	return payload, true
}

func eventToDTO(event calendar.Event) EventDTO {
	dto := EventDTO{
		Id:            event.Id,
		Title:         event.Title,
		IsAllDay:      event.IsAllDay(),
		Location:      event.Location,
		Description:   event.Description,
		ColorId:       event.ColorId,
		CalendarId:    event.CalendarId,
		CalendarColor: event.CalendarColor,
		HangoutLink:   event.HangoutLink,
		IsReadOnly:    event.IsReadOnly(),
		IsExternal:    event.IsExternal(),
	}
	dto.Start = eventTimeToString(event.Start)
	dto.End = eventTimeToString(event.End)
	for _, attendee := range event.Attendees {
		dto.Attendees = append(dto.Attendees, AttendeeDTO{
			Email:          attendee.Email,
			DisplayName:    attendee.DisplayName,
			ResponseStatus: attendee.ResponseStatus,
		})
	}
	return dto
}

func eventTimeToString(t calendar.EventTime) string {
	if t.IsDateOnly() {
		return t.Date
	}
	return t.DateTime.Format(time.RFC3339)
}

func frameToDTO(snapshot render.Snapshot) FrameDTO {
	dto := FrameDTO{
		State:        string(snapshot.State),
		ErrorMessage: snapshot.ErrorMessage,
		Date:         snapshot.Date.Format(dateLayout),
		Cards:        make([]CardDTO, 0, len(snapshot.Cards)),
		NowOffset:    snapshot.NowOffset,
		Version:      snapshot.Version,
	}
	for _, card := range snapshot.Cards {
		dto.Cards = append(dto.Cards, CardDTO{
			EventId:     card.EventId,
			Kind:        string(card.Kind),
			Permission:  string(card.Permission),
			Title:       card.Title,
			TimeLabel:   card.TimeLabel,
			Location:    card.Location,
			HangoutLink: card.HangoutLink,
			Color:       card.Color,
			Status:      string(card.Status),
			Top:         card.Top,
			Height:      card.Height,
		})
	}
	return dto
}

func outcomeName(outcome gesture.Outcome) string {
	switch outcome {
	case gesture.OutcomeClick:
		return "click"
	case gesture.OutcomeNoChange:
		return "noChange"
	case gesture.OutcomeCommitted:
		return "committed"
	case gesture.OutcomeReverted:
		return "reverted"
	default:
		return "none"
	}
}

func writeFetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, calendar.ErrNotAuthenticated) {
		writeNeedsLogin(w)
		return
	}
	writeError(w, http.StatusBadGateway, err.Error(), "")
}

func writeMutationError(w http.ResponseWriter, err error) {
	if errors.Is(err, calendar.ErrNotAuthenticated) {
		writeNeedsLogin(w)
		return
	}
	if errors.Is(err, calendar.ErrEventNotFound) || errors.Is(err, ErrUnknownEvent) {
		writeError(w, http.StatusNotFound, "Event not found", "")
		return
	}
	writeError(w, http.StatusBadGateway, err.Error(), "")
}

func writeNeedsLogin(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:      "Not authenticated",
		NeedsLogin: true,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string, details string) {
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   message,
		Details: details,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func encode(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
