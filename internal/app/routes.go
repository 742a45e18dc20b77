package app

import (
	"github.com/daypanel/daypanel/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Day view
	r.HandleFunc("/api/day", deps.DayHandler.GetDay).Methods("GET")
	r.HandleFunc("/api/day/frame", deps.DayHandler.GetFrame).Methods("GET")
	r.HandleFunc("/api/day/navigate", deps.DayHandler.Navigate).Methods("POST")
	r.HandleFunc("/api/day/today", deps.DayHandler.Today).Methods("POST")

	// Events
	r.HandleFunc("/api/events", deps.DayHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events/{eventId}", deps.DayHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events/{eventId}", deps.DayHandler.DeleteEvent).Methods("DELETE")

	// Drag and resize gestures
	r.HandleFunc("/api/gesture/down", deps.DayHandler.PointerDown).Methods("POST")
	r.HandleFunc("/api/gesture/move", deps.DayHandler.PointerMove).Methods("POST")
	r.HandleFunc("/api/gesture/up", deps.DayHandler.PointerUp).Methods("POST")

	// Toasts
	r.HandleFunc("/api/toasts", deps.ToastHandler.List).Methods("GET")
	r.HandleFunc("/api/toasts/{toastId}", deps.ToastHandler.Dismiss).Methods("DELETE")

	// Google integration
	r.HandleFunc("/api/auth/google/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/auth/google/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/auth/google/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/auth/google/status", deps.GoogleAuth.Status).Methods("GET")
	r.HandleFunc("/api/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
}
