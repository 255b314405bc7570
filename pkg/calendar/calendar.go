package calendar

import "time"

// Calendar is a named set of events sharing one time zone.
type Calendar struct {
	name  string
	zone  *time.Location
	store *EventStore
}

func NewCalendar(name string, zone *time.Location, store *EventStore) *Calendar {
	if store == nil {
		store = NewEventStore()
	}
	return &Calendar{name: name, zone: zone, store: store}
}

func (c *Calendar) Name() string {
	return c.name
}

func (c *Calendar) Timezone() *time.Location {
	return c.zone
}

// SetTimezone changes the zone only; stored wall-clock times are untouched.
func (c *Calendar) SetTimezone(zone *time.Location) {
	c.zone = zone
}

// Snapshot is a detached copy of a calendar's state.
type Snapshot struct {
	Name     string
	Timezone *time.Location
	Events   []Event
}

func (c *Calendar) Snapshot() Snapshot {
	return Snapshot{Name: c.name, Timezone: c.zone, Events: c.store.Events()}
}
