package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gorilla/mux"
	"github.com/klokku/calstore/internal/rest"
	"github.com/klokku/calstore/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	manager *Manager
	clock   utils.Clock
}

type EventDTO struct {
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status,omitempty"`
}

type CreateEventDTO struct {
	EventDTO
	// Weekdays is a string of weekday letters, e.g. "MWF".
	Weekdays    string `json:"weekdays,omitempty"`
	RepeatCount int    `json:"repeatCount,omitempty"`
	// Until (yyyy-mm-dd) repeats the event through that date instead of a
	// fixed count. It cannot be combined with RepeatCount.
	Until string `json:"until,omitempty"`
}

type EditEventDTO struct {
	// Scope is one of event, following or series.
	Scope    string `json:"scope"`
	Property string `json:"property"`
	Subject  string `json:"subject"`
	Start    string `json:"start"`
	Value    string `json:"value"`
}

type CalendarDTO struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Active   bool   `json:"active,omitempty"`
}

type EditCalendarDTO struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type ViewDTO struct {
	Events []EventDTO `json:"events"`
	Left   int        `json:"left"`
}

type StatusDTO struct {
	At     string `json:"at"`
	Status string `json:"status"`
}

type CopyEventDTO struct {
	Subject  string `json:"subject"`
	Start    string `json:"start"`
	Target   string `json:"target"`
	NewStart string `json:"newStart"`
}

type CopyDayDTO struct {
	Date    string `json:"date"`
	Target  string `json:"target"`
	NewDate string `json:"newDate"`
}

type CopyRangeDTO struct {
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Target       string `json:"target"`
	NewStartDate string `json:"newStartDate"`
}

type CopyResultDTO struct {
	Copied int `json:"copied"`
}

func NewHandler(manager *Manager, clock utils.Clock) *Handler {
	return &Handler{manager: manager, clock: clock}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing calendars")
	active := h.manager.ActiveCalendar()
	calendars := h.manager.Calendars()
	dtos := make([]CalendarDTO, 0, len(calendars))
	for _, c := range calendars {
		dto := calendarToDTO(c)
		dto.Active = c == active
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var dto CalendarDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	cal, err := h.manager.CreateCalendar(r.Context(), dto.Name, dto.Timezone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, calendarToDTO(cal))
}

func (h *Handler) EditCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var dto EditCalendarDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	cal, err := h.manager.EditCalendar(r.Context(), name, dto.Property, dto.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calendarToDTO(cal))
}

func (h *Handler) UseCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	cal, err := h.manager.UseCalendar(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	dto := calendarToDTO(cal)
	dto.Active = true
	writeJSON(w, http.StatusOK, dto)
}

// GetEvents lists the active calendar's events: all of them, the ones on
// ?date=, or the ones inside ?from=&to=.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var events []Event
	var err error

	switch {
	case query.Get("date") != "":
		date, parseErr := ParseDate(query.Get("date"))
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be yyyy-mm-dd")
			return
		}
		events, err = h.manager.EventsOn(r.Context(), date)
	case query.Get("from") != "" || query.Get("to") != "":
		from, parseErr := ParseDateTime(query.Get("from"))
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be yyyy-mm-ddThh:mm")
			return
		}
		to, parseErr := ParseDateTime(query.Get("to"))
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be yyyy-mm-ddThh:mm")
			return
		}
		events, err = h.manager.EventsWithin(r.Context(), from, to)
	default:
		events, err = h.manager.Events(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsToDTO(events))
}

func (h *Handler) ViewEvents(w http.ResponseWriter, r *http.Request) {
	date, err := ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be yyyy-mm-dd")
		return
	}
	events, err := h.manager.EventsToView(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	left, err := h.manager.EventsLeft(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ViewDTO{Events: eventsToDTO(events), Left: left})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto CreateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	req, err := dtoToCreateRequest(dto)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.manager.CreateEvent(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Tracef("Events created: %d", len(created))
	writeJSON(w, http.StatusCreated, eventsToDTO(created))
}

func (h *Handler) EditEvents(w http.ResponseWriter, r *http.Request) {
	var dto EditEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	var updated []Event
	var err error
	switch strings.ToLower(dto.Scope) {
	case "", "event":
		start, parseErr := ParseDateTime(dto.Start)
		if parseErr != nil {
			writeError(w, parseErr)
			return
		}
		var e Event
		e, err = h.manager.EditEvent(r.Context(), dto.Property, dto.Subject, start, dto.Value)
		updated = []Event{e}
	case "following":
		start, parseErr := ParseDateTime(dto.Start)
		if parseErr != nil {
			writeError(w, parseErr)
			return
		}
		updated, err = h.manager.EditEvents(r.Context(), dto.Property, dto.Subject, start, dto.Value)
	case "series":
		updated, err = h.manager.EditSeries(r.Context(), dto.Property, dto.Subject, dto.Value)
	default:
		rest.WriteError(w, http.StatusBadRequest, "Invalid scope", "'scope' must be event, following or series")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsToDTO(updated))
}

// GetStatus answers busy/available for ?at=, defaulting to the current time
// in the active calendar's zone.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	var at civil.DateTime
	var status string
	var err error
	if value := r.URL.Query().Get("at"); value != "" {
		parsed, parseErr := ParseDateTime(value)
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid at format", "'at' must be yyyy-mm-ddThh:mm")
			return
		}
		at = parsed
		status, err = h.manager.Status(r.Context(), at)
	} else {
		at, status, err = h.manager.StatusNow(r.Context(), h.clock)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusDTO{At: FormatDateTime(at), Status: status})
}

func (h *Handler) CopyEvent(w http.ResponseWriter, r *http.Request) {
	var dto CopyEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	start, err := ParseDateTime(dto.Start)
	if err != nil {
		writeError(w, err)
		return
	}
	newStart, err := ParseDateTime(dto.NewStart)
	if err != nil {
		writeError(w, err)
		return
	}
	copied, err := h.manager.CopyEvent(r.Context(), dto.Subject, start, dto.Target, newStart)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CopyResultDTO{Copied: copied})
}

func (h *Handler) CopyEventsOn(w http.ResponseWriter, r *http.Request) {
	var dto CopyDayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	date, err := ParseDate(dto.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	newDate, err := ParseDate(dto.NewDate)
	if err != nil {
		writeError(w, err)
		return
	}
	copied, err := h.manager.CopyEventsOn(r.Context(), date, dto.Target, newDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CopyResultDTO{Copied: copied})
}

func (h *Handler) CopyEventsBetween(w http.ResponseWriter, r *http.Request) {
	var dto CopyRangeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	dates := make([]civil.Date, 0, 3)
	for _, value := range []string{dto.StartDate, dto.EndDate, dto.NewStartDate} {
		d, err := ParseDate(value)
		if err != nil {
			writeError(w, err)
			return
		}
		dates = append(dates, d)
	}
	copied, err := h.manager.CopyEventsBetween(r.Context(), dates[0], dates[1], dto.Target, dates[2])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CopyResultDTO{Copied: copied})
}

func dtoToCreateRequest(dto CreateEventDTO) (CreateRequest, error) {
	start, err := ParseDateTime(dto.Start)
	if err != nil {
		return CreateRequest{}, err
	}
	req := CreateRequest{
		Subject:     dto.Subject,
		Description: dto.Description,
		Start:       start,
		RepeatCount: dto.RepeatCount,
	}
	if dto.End != "" {
		if req.End, err = ParseDateTime(dto.End); err != nil {
			return CreateRequest{}, err
		}
	}
	if dto.Location != "" {
		if req.Location, err = ParseLocation(dto.Location); err != nil {
			return CreateRequest{}, err
		}
	}
	if dto.Status != "" {
		if req.Status, err = ParseStatus(dto.Status); err != nil {
			return CreateRequest{}, err
		}
	}
	for _, letter := range dto.Weekdays {
		if letter == ' ' || letter == ',' {
			continue
		}
		req.Weekdays = append(req.Weekdays, string(letter))
	}
	if dto.Until != "" {
		if dto.RepeatCount != 0 {
			return CreateRequest{}, fmt.Errorf("%w: until and repeatCount cannot be combined", ErrValidation)
		}
		until, err := ParseDate(dto.Until)
		if err != nil {
			return CreateRequest{}, err
		}
		if req.RepeatCount, err = RepeatCountUntil(req.Start, until, req.Weekdays); err != nil {
			return CreateRequest{}, err
		}
	}
	return req, nil
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		Subject:     e.Subject,
		Description: e.Description,
		Start:       FormatDateTime(e.Start),
		End:         FormatDateTime(e.End),
		Location:    e.Location.String(),
		Status:      e.Status.String(),
	}
}

func eventsToDTO(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	return dtos
}

func calendarToDTO(c *Calendar) CalendarDTO {
	return CalendarDTO{Name: c.Name(), Timezone: c.Timezone().String()}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, ErrDuplicateEvent):
		rest.WriteError(w, http.StatusConflict, "Duplicate event", err.Error())
	case errors.Is(err, ErrNotFound):
		rest.WriteError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrNoActiveCalendar):
		rest.WriteError(w, http.StatusConflict, "No active calendar", err.Error())
	default:
		log.Errorf("unexpected error: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
