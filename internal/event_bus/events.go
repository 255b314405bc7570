package event_bus

import "time"

const (
	CalendarEventsAddedType  EventType = "calendar.events.added"
	CalendarEventsEditedType EventType = "calendar.events.edited"
)

// CalendarEvent is the bus representation of a stored event. Times are
// resolved in the owning calendar's zone.
type CalendarEvent struct {
	Summary   string
	StartTime time.Time
	EndTime   time.Time
}

// CalendarEventsAdded is published after events were created in or pasted
// into a calendar.
type CalendarEventsAdded struct {
	Calendar string
	Events   []CalendarEvent
}

type CalendarEventsEdited struct {
	Calendar string
	Property string
	Events   []CalendarEvent
}
