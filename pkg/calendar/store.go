package calendar

import (
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	log "github.com/sirupsen/logrus"
)

// CreateRequest describes an event and, optionally, the series generated
// after it. Weekdays holds single letters (M T W R F S U).
type CreateRequest struct {
	Subject     string
	Description string
	Start       civil.DateTime
	End         civil.DateTime
	Location    Location
	Status      Status
	Weekdays    []string
	RepeatCount int
}

// EventStore keeps the events of one calendar in chronological order of
// their start. It does no locking of its own.
type EventStore struct {
	events []Event
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Len() int {
	return len(s.events)
}

// Events returns a copy of the stored events in store order.
func (s *EventStore) Events() []Event {
	return slices.Clone(s.events)
}

// CreateEvent stores the described event and any occurrences generated by
// the repeat count. Nothing is stored when an error is returned.
func (s *EventStore) CreateEvent(req CreateRequest) ([]Event, error) {
	base, err := NewEvent(EventParams{
		Subject:     req.Subject,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		Location:    req.Location,
		Status:      req.Status,
	})
	if err != nil {
		return nil, err
	}
	if req.RepeatCount < 0 {
		return nil, fmt.Errorf("%w: repeat count cannot be negative", ErrValidation)
	}
	weekdays, err := ParseWeekdays(req.Weekdays)
	if err != nil {
		return nil, err
	}
	if s.contains(base) {
		return nil, fmt.Errorf("%w: %q from %s to %s", ErrDuplicateEvent, base.Subject, FormatDateTime(base.Start), FormatDateTime(base.End))
	}
	occurrences, err := expandOccurrences(base, weekdays, req.RepeatCount)
	if err != nil {
		return nil, err
	}

	s.insertSorted(base)
	s.events = append(s.events, occurrences...)
	log.Debugf("created event %q with %d occurrences", base.Subject, len(occurrences))

	return append([]Event{base}, occurrences...), nil
}

// Paste inserts every event that is not already stored and returns the ones
// inserted. Existing identity triples are skipped without error.
func (s *EventStore) Paste(events []Event) []Event {
	inserted := make([]Event, 0, len(events))
	for _, e := range events {
		if s.contains(e) {
			log.Tracef("paste skipped existing event %q at %s", e.Subject, FormatDateTime(e.Start))
			continue
		}
		s.insertSorted(e)
		inserted = append(inserted, e)
	}
	return inserted
}

// insertSorted compares against the last event first and walks backwards
// only while the stored start is later than the new one, so events sharing a
// start keep insertion order.
func (s *EventStore) insertSorted(e Event) {
	i := len(s.events)
	for i > 0 && s.events[i-1].Start.After(e.Start) {
		i--
	}
	s.events = slices.Insert(s.events, i, e)
}

func (s *EventStore) contains(e Event) bool {
	return slices.ContainsFunc(s.events, e.SameAs)
}

// Find returns the first event with the given subject and exact start.
func (s *EventStore) Find(subject string, start civil.DateTime) (Event, error) {
	i := s.indexOf(subject, start)
	if i < 0 {
		return Event{}, fmt.Errorf("%w: event %q at %s", ErrNotFound, subject, FormatDateTime(start))
	}
	return s.events[i], nil
}

func (s *EventStore) indexOf(subject string, start civil.DateTime) int {
	return slices.IndexFunc(s.events, func(e Event) bool {
		return e.Subject == subject && e.Start == start
	})
}

type Property string

const (
	PropertySubject     Property = "subject"
	PropertyStart       Property = "start"
	PropertyEnd         Property = "end"
	PropertyDescription Property = "description"
	PropertyLocation    Property = "location"
	PropertyStatus      Property = "status"
)

func ParseProperty(value string) (Property, error) {
	p := Property(strings.ToLower(value))
	switch p {
	case PropertySubject, PropertyStart, PropertyEnd, PropertyDescription, PropertyLocation, PropertyStatus:
		return p, nil
	default:
		return "", fmt.Errorf("%w: invalid property %q", ErrValidation, value)
	}
}

// EditEvent changes one property of the event matching subject and start.
func (s *EventStore) EditEvent(property, subject string, start civil.DateTime, value string) (Event, error) {
	p, err := ParseProperty(property)
	if err != nil {
		return Event{}, err
	}
	i := s.indexOf(subject, start)
	if i < 0 {
		return Event{}, fmt.Errorf("%w: event %q at %s", ErrNotFound, subject, FormatDateTime(start))
	}
	updated, err := applyEdit(s.events[i], p, value)
	if err != nil {
		return Event{}, err
	}
	s.events[i] = updated
	return updated, nil
}

// EditEvents changes the property on every event with the subject that
// starts at or after start.
func (s *EventStore) EditEvents(property, subject string, start civil.DateTime, value string) ([]Event, error) {
	return s.editMatching(property, value, func(e Event) bool {
		return e.Subject == subject && !e.Start.Before(start)
	})
}

// EditSeries changes the property on every event with the subject.
func (s *EventStore) EditSeries(property, subject string, value string) ([]Event, error) {
	return s.editMatching(property, value, func(e Event) bool {
		return e.Subject == subject
	})
}

func (s *EventStore) editMatching(property, value string, match func(Event) bool) ([]Event, error) {
	p, err := ParseProperty(property)
	if err != nil {
		return nil, err
	}

	var indices []int
	var updated []Event
	for i, e := range s.events {
		if !match(e) {
			continue
		}
		u, err := applyEdit(e, p, value)
		if err != nil {
			return nil, err
		}
		indices = append(indices, i)
		updated = append(updated, u)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no events found in series", ErrNotFound)
	}

	for n, i := range indices {
		s.events[i] = updated[n]
	}
	return updated, nil
}

func applyEdit(e Event, p Property, value string) (Event, error) {
	params := e.params()
	switch p {
	case PropertySubject:
		params.Subject = value
	case PropertyDescription:
		params.Description = value
	case PropertyStart:
		start, err := ParseDateTime(value)
		if err != nil {
			return Event{}, err
		}
		if start.After(e.End) {
			return Event{}, fmt.Errorf("%w: new start %s is after end %s", ErrValidation, FormatDateTime(start), FormatDateTime(e.End))
		}
		params.Start = start
	case PropertyEnd:
		end, err := ParseDateTime(value)
		if err != nil {
			return Event{}, err
		}
		if end.Before(e.Start) {
			return Event{}, fmt.Errorf("%w: new end %s is before start %s", ErrValidation, FormatDateTime(end), FormatDateTime(e.Start))
		}
		params.End = end
	case PropertyLocation:
		location, err := ParseLocation(value)
		if err != nil {
			return Event{}, err
		}
		params.Location = location
	case PropertyStatus:
		status, err := ParseStatus(value)
		if err != nil {
			return Event{}, err
		}
		params.Status = status
	}
	return NewEvent(params)
}
