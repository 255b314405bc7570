package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/klokku/calstore/internal/event_bus"
	"github.com/klokku/calstore/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Manager is the registry of calendars and the entry point for every event
// operation. All state, including each calendar's store, is guarded by one
// mutex.
type Manager struct {
	mu        sync.Mutex
	calendars []*Calendar
	active    *Calendar
	bus       *event_bus.EventBus
}

// NewManager returns an empty Manager. bus may be nil.
func NewManager(bus *event_bus.EventBus) *Manager {
	return &Manager{bus: bus}
}

func (m *Manager) CreateCalendar(ctx context.Context, name, zone string) (*Calendar, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: calendar name cannot be empty", ErrValidation)
	}
	loc, err := loadZone(zone)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cal := NewCalendar(name, loc, NewEventStore())
	m.calendars = append(m.calendars, cal)
	log.Debugf("created calendar %q in %s", name, loc)
	return cal, nil
}

// EditCalendar renames a calendar or changes its zone. The entry is rebuilt
// around the same event store.
func (m *Manager) EditCalendar(ctx context.Context, name, property, value string) (*Calendar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: calendar %q", ErrNotFound, name)
	}
	current := m.calendars[i]

	var rebuilt *Calendar
	switch strings.ToLower(property) {
	case "name":
		if value == "" {
			return nil, fmt.Errorf("%w: calendar name cannot be empty", ErrValidation)
		}
		rebuilt = NewCalendar(value, current.zone, current.store)
	case "timezone":
		loc, err := loadZone(value)
		if err != nil {
			return nil, err
		}
		rebuilt = NewCalendar(current.name, loc, current.store)
	default:
		return nil, fmt.Errorf("%w: invalid calendar property %q", ErrValidation, property)
	}

	m.calendars[i] = rebuilt
	if m.active == current {
		m.active = rebuilt
	}
	return rebuilt, nil
}

// UseCalendar makes the named calendar the active one.
func (m *Manager) UseCalendar(ctx context.Context, name string) (*Calendar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: calendar %q", ErrNotFound, name)
	}
	m.active = m.calendars[i]
	return m.active, nil
}

// ActiveCalendar returns the active calendar, or nil when none is selected.
func (m *Manager) ActiveCalendar() *Calendar {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) Calendars() []*Calendar {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Calendar, len(m.calendars))
	copy(out, m.calendars)
	return out
}

// Snapshot copies the state of the named calendar.
func (m *Manager) Snapshot(name string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(name)
	if i < 0 {
		return Snapshot{}, fmt.Errorf("%w: calendar %q", ErrNotFound, name)
	}
	return m.calendars[i].Snapshot(), nil
}

func (m *Manager) CreateEvent(ctx context.Context, req CreateRequest) ([]Event, error) {
	m.mu.Lock()
	cal, err := m.activeLocked()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	created, err := cal.store.CreateEvent(req)
	name, zone := cal.name, cal.zone
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.publishAdded(ctx, name, zone, created)
	return created, nil
}

func (m *Manager) EditEvent(ctx context.Context, property, subject string, start civil.DateTime, value string) (Event, error) {
	m.mu.Lock()
	cal, err := m.activeLocked()
	if err != nil {
		m.mu.Unlock()
		return Event{}, err
	}
	updated, err := cal.store.EditEvent(property, subject, start, value)
	name, zone := cal.name, cal.zone
	m.mu.Unlock()
	if err != nil {
		return Event{}, err
	}

	m.publishEdited(ctx, name, zone, property, []Event{updated})
	return updated, nil
}

func (m *Manager) EditEvents(ctx context.Context, property, subject string, start civil.DateTime, value string) ([]Event, error) {
	m.mu.Lock()
	cal, err := m.activeLocked()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	updated, err := cal.store.EditEvents(property, subject, start, value)
	name, zone := cal.name, cal.zone
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.publishEdited(ctx, name, zone, property, updated)
	return updated, nil
}

func (m *Manager) EditSeries(ctx context.Context, property, subject, value string) ([]Event, error) {
	m.mu.Lock()
	cal, err := m.activeLocked()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	updated, err := cal.store.EditSeries(property, subject, value)
	name, zone := cal.name, cal.zone
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.publishEdited(ctx, name, zone, property, updated)
	return updated, nil
}

func (m *Manager) Events(ctx context.Context) ([]Event, error) {
	return readActive(m, func(s *EventStore) []Event { return s.Events() })
}

func (m *Manager) EventsOn(ctx context.Context, date civil.Date) ([]Event, error) {
	return readActive(m, func(s *EventStore) []Event { return s.EventsOn(date) })
}

func (m *Manager) EventsWithin(ctx context.Context, start, end civil.DateTime) ([]Event, error) {
	return readActive(m, func(s *EventStore) []Event { return s.EventsWithin(start, end) })
}

func (m *Manager) EventsToView(ctx context.Context, date civil.Date) ([]Event, error) {
	return readActive(m, func(s *EventStore) []Event { return s.EventsToView(date) })
}

func (m *Manager) EventsLeft(ctx context.Context, date civil.Date) (int, error) {
	return readActive(m, func(s *EventStore) int { return s.EventsLeft(date) })
}

// Status reports "busy" or "available" for at in the active calendar.
func (m *Manager) Status(ctx context.Context, at civil.DateTime) (string, error) {
	return readActive(m, func(s *EventStore) string { return s.PrintStatus(at) })
}

// StatusNow reports the status of the active calendar at the clock's current
// time in that calendar's zone. The zone and the lookup share one lock.
func (m *Manager) StatusNow(ctx context.Context, clock utils.Clock) (civil.DateTime, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cal, err := m.activeLocked()
	if err != nil {
		return civil.DateTime{}, "", err
	}
	at := utils.LocalNow(clock, cal.zone)
	return at, cal.store.PrintStatus(at), nil
}

func readActive[T any](m *Manager, read func(*EventStore) T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cal, err := m.activeLocked()
	if err != nil {
		var zero T
		return zero, err
	}
	return read(cal.store), nil
}

// CopyEvent copies the active calendar's event (subject, start) into target
// so that it starts at newStart. The original instant is first re-expressed
// in the target zone, then moved by newStart minus the original start.
func (m *Manager) CopyEvent(ctx context.Context, subject string, start civil.DateTime, target string, newStart civil.DateTime) (int, error) {
	m.mu.Lock()
	source, dest, err := m.copyCalendarsLocked(target)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}
	event, err := source.store.Find(subject, start)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}

	delta := elapsed(event.Start, newStart)
	moved := event
	moved.Start = civil.DateTimeOf(event.Start.In(source.zone).In(dest.zone).Add(delta))
	moved.End = civil.DateTimeOf(event.End.In(source.zone).In(dest.zone).Add(delta))
	pasted, err := pasteLocked(dest, []Event{moved})
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}

	m.publishAdded(ctx, dest.name, dest.zone, pasted)
	return len(pasted), nil
}

// CopyEventsOn copies every event of the active calendar that starts on date
// into target, shifted by whole days so that date lands on newDate.
func (m *Manager) CopyEventsOn(ctx context.Context, date civil.Date, target string, newDate civil.Date) (int, error) {
	m.mu.Lock()
	source, dest, err := m.copyCalendarsLocked(target)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}

	days := newDate.DaysSince(date)
	var moved []Event
	for _, e := range source.store.events {
		if e.Start.Date != date {
			continue
		}
		moved = append(moved, shiftInto(e, source.zone, dest.zone, days))
	}
	pasted, err := pasteLocked(dest, moved)
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}

	m.publishAdded(ctx, dest.name, dest.zone, pasted)
	return len(pasted), nil
}

// CopyEventsBetween copies every event of the active calendar overlapping the
// inclusive day range [startDate, endDate] into target, shifted by whole days
// so that startDate lands on newStartDate.
func (m *Manager) CopyEventsBetween(ctx context.Context, startDate, endDate civil.Date, target string, newStartDate civil.Date) (int, error) {
	if endDate.Before(startDate) {
		return 0, fmt.Errorf("%w: end date %s is before start date %s", ErrValidation, endDate, startDate)
	}

	m.mu.Lock()
	source, dest, err := m.copyCalendarsLocked(target)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}

	days := newStartDate.DaysSince(startDate)
	var moved []Event
	for _, e := range source.store.events {
		if e.End.Date.Before(startDate) || e.Start.Date.After(endDate) {
			continue
		}
		moved = append(moved, shiftInto(e, source.zone, dest.zone, days))
	}
	pasted, err := pasteLocked(dest, moved)
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}

	m.publishAdded(ctx, dest.name, dest.zone, pasted)
	return len(pasted), nil
}

func shiftInto(e Event, from, to *time.Location, days int) Event {
	e.Start = addDays(convertZone(e.Start, from, to), days)
	e.End = addDays(convertZone(e.End, from, to), days)
	return e
}

// pasteLocked rebuilds each event through NewEvent before pasting it.
func pasteLocked(dest *Calendar, events []Event) ([]Event, error) {
	built := make([]Event, 0, len(events))
	for _, e := range events {
		b, err := NewEvent(e.params())
		if err != nil {
			return nil, err
		}
		built = append(built, b)
	}
	return dest.store.Paste(built), nil
}

func (m *Manager) copyCalendarsLocked(target string) (*Calendar, *Calendar, error) {
	source, err := m.activeLocked()
	if err != nil {
		return nil, nil, err
	}
	i := m.indexLocked(target)
	if i < 0 {
		return nil, nil, fmt.Errorf("%w: target calendar %q", ErrNotFound, target)
	}
	return source, m.calendars[i], nil
}

func (m *Manager) activeLocked() (*Calendar, error) {
	if m.active == nil {
		return nil, ErrNoActiveCalendar
	}
	return m.active, nil
}

// indexLocked returns the index of the last calendar called name.
func (m *Manager) indexLocked(name string) int {
	for i := len(m.calendars) - 1; i >= 0; i-- {
		if m.calendars[i].name == name {
			return i
		}
	}
	return -1
}

func loadZone(zone string) (*time.Location, error) {
	if zone == "" {
		return nil, fmt.Errorf("%w: time zone cannot be empty", ErrValidation)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", ErrValidation, zone)
	}
	return loc, nil
}

func (m *Manager) publishAdded(ctx context.Context, calendar string, zone *time.Location, events []Event) {
	if len(events) == 0 {
		return
	}
	m.publish(ctx, event_bus.CalendarEventsAddedType, event_bus.CalendarEventsAdded{
		Calendar: calendar,
		Events:   toBusEvents(events, zone),
	})
}

func (m *Manager) publishEdited(ctx context.Context, calendar string, zone *time.Location, property string, events []Event) {
	m.publish(ctx, event_bus.CalendarEventsEditedType, event_bus.CalendarEventsEdited{
		Calendar: calendar,
		Property: strings.ToLower(property),
		Events:   toBusEvents(events, zone),
	})
}

// publish never fails the operation; the mutation has already happened.
func (m *Manager) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Errorf("failed to publish %s: %v", eventType, err)
	}
}

func toBusEvents(events []Event, zone *time.Location) []event_bus.CalendarEvent {
	out := make([]event_bus.CalendarEvent, 0, len(events))
	for _, e := range events {
		out = append(out, event_bus.CalendarEvent{
			Summary:   e.Subject,
			StartTime: e.Start.In(zone),
			EndTime:   e.End.In(zone),
		})
	}
	return out
}
