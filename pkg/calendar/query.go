package calendar

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

const (
	StatusBusy      = "busy"
	StatusAvailable = "available"

	viewPageSize = 10
)

// EventsOn returns the events that start or end on date.
func (s *EventStore) EventsOn(date civil.Date) []Event {
	return s.filter(func(e Event) bool {
		return e.Start.Date == date || e.End.Date == date
	})
}

// EventsWithin returns the events that lie entirely inside [start, end].
func (s *EventStore) EventsWithin(start, end civil.DateTime) []Event {
	return s.filter(func(e Event) bool {
		return !e.Start.Before(start) && !e.End.After(end)
	})
}

// IsBusy reports whether any event covers at, both ends included.
func (s *EventStore) IsBusy(at civil.DateTime) bool {
	for _, e := range s.events {
		if !at.Before(e.Start) && !at.After(e.End) {
			return true
		}
	}
	return false
}

func (s *EventStore) PrintDate(date civil.Date) string {
	var b strings.Builder
	for _, e := range s.EventsOn(date) {
		fmt.Fprintf(&b, "* %s on %s\n", label(e), e.Start.Date)
	}
	return b.String()
}

func (s *EventStore) PrintDateTimeString(start, end civil.DateTime) string {
	var b strings.Builder
	for _, e := range s.EventsWithin(start, end) {
		fmt.Fprintf(&b, "* %s between %s and %s\n", label(e), FormatDateTime(e.Start), FormatDateTime(e.End))
	}
	return b.String()
}

func (s *EventStore) PrintStatus(at civil.DateTime) string {
	if s.IsBusy(at) {
		return StatusBusy
	}
	return StatusAvailable
}

// EventsLeft counts the events starting on or before date.
func (s *EventStore) EventsLeft(date civil.Date) int {
	return len(s.filter(func(e Event) bool {
		return !e.Start.Date.After(date)
	}))
}

// EventsToView returns up to one page of events starting on or after date.
func (s *EventStore) EventsToView(date civil.Date) []Event {
	events := s.filter(func(e Event) bool {
		return !e.Start.Date.Before(date)
	})
	if len(events) > viewPageSize {
		events = events[:viewPageSize]
	}
	return events
}

func (s *EventStore) filter(keep func(Event) bool) []Event {
	var out []Event
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func label(e Event) string {
	if e.Location == NoLocation {
		return e.Subject
	}
	return e.Location.String() + " " + e.Subject
}
