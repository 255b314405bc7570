package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Calendars
	r.HandleFunc("/api/calendars", deps.CalendarHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/calendars", deps.CalendarHandler.CreateCalendar).Methods("POST")
	r.HandleFunc("/api/calendars/{name}", deps.CalendarHandler.EditCalendar).Methods("PUT")
	r.HandleFunc("/api/calendars/{name}/active", deps.CalendarHandler.UseCalendar).Methods("PUT")
	r.HandleFunc("/api/calendars/{name}/ics", deps.ExportHandler.ExportCalendar).Methods("GET")
	r.HandleFunc("/api/calendars/{name}/stats", deps.StatsHandler.GetStats).Methods("GET")

	// Events of the active calendar
	r.HandleFunc("/api/events/view", deps.CalendarHandler.ViewEvents).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/events", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events", deps.CalendarHandler.EditEvents).Methods("PATCH")
	r.HandleFunc("/api/status", deps.CalendarHandler.GetStatus).Methods("GET")

	// Copy into another calendar
	r.HandleFunc("/api/copy/event", deps.CalendarHandler.CopyEvent).Methods("POST")
	r.HandleFunc("/api/copy/day", deps.CalendarHandler.CopyEventsOn).Methods("POST")
	r.HandleFunc("/api/copy/range", deps.CalendarHandler.CopyEventsBetween).Methods("POST")
}
