package toast

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/daypanel/daypanel/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	queue *Queue
}

func NewHandler(queue *Queue) *Handler {
	return &Handler{queue: queue}
}

type ToastDTO struct {
	Id      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// ExpiresAt lets the frontend schedule its own dismissal animation.
	ExpiresAt string `json:"expiresAt"`
}

func (h *Handler) List(w http.ResponseWriter, _ *http.Request) {
	active := h.queue.Active()
	dtos := make([]ToastDTO, 0, len(active))
	for _, item := range active {
		dtos = append(dtos, toastToDTO(item))
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		log.Errorf("Failed to encode toasts: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Failed to encode response"})
	}
}

func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["toastId"]
	if !h.queue.Dismiss(id) {
		w.WriteHeader(http.StatusNotFound)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Toast not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toastToDTO(item Toast) ToastDTO {
	return ToastDTO{
		Id:        item.Id,
		Kind:      string(item.Kind),
		Message:   item.Message,
		ExpiresAt: item.ExpiresAt.Format(time.RFC3339),
	}
}
