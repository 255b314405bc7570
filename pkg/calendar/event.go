package calendar

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

type Location int

const (
	NoLocation Location = iota
	Physical
	Online
)

func (l Location) String() string {
	switch l {
	case Physical:
		return "PHYSICAL"
	case Online:
		return "ONLINE"
	default:
		return ""
	}
}

// ParseLocation accepts PHYSICAL or ONLINE in any case.
func ParseLocation(value string) (Location, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "PHYSICAL":
		return Physical, nil
	case "ONLINE":
		return Online, nil
	default:
		return NoLocation, fmt.Errorf("%w: unknown location %q", ErrValidation, value)
	}
}

type Status int

const (
	NoStatus Status = iota
	Public
	Private
)

func (s Status) String() string {
	switch s {
	case Public:
		return "PUBLIC"
	case Private:
		return "PRIVATE"
	default:
		return ""
	}
}

// ParseStatus accepts PUBLIC or PRIVATE in any case.
func ParseStatus(value string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "PUBLIC":
		return Public, nil
	case "PRIVATE":
		return Private, nil
	default:
		return NoStatus, fmt.Errorf("%w: unknown status %q", ErrValidation, value)
	}
}

// Event is a single occurrence. Start and End are wall-clock values in the
// time zone of the calendar that owns the event.
type Event struct {
	Subject     string
	Description string
	Start       civil.DateTime
	End         civil.DateTime
	Location    Location
	Status      Status
}

// EventParams carries the fields NewEvent validates. A zero End makes the
// event an all-day event.
type EventParams struct {
	Subject     string
	Description string
	Start       civil.DateTime
	End         civil.DateTime
	Location    Location
	Status      Status
}

func NewEvent(p EventParams) (Event, error) {
	if p.Subject == "" {
		return Event{}, fmt.Errorf("%w: subject cannot be empty", ErrValidation)
	}
	if isZeroDateTime(p.Start) {
		return Event{}, fmt.Errorf("%w: start cannot be empty", ErrValidation)
	}

	start, end := p.Start, p.End
	if isZeroDateTime(end) {
		start = civil.DateTime{Date: p.Start.Date, Time: allDayStart}
		end = civil.DateTime{Date: p.Start.Date, Time: allDayEnd}
	} else if end.Before(start) {
		return Event{}, fmt.Errorf("%w: end %s is before start %s", ErrValidation, FormatDateTime(end), FormatDateTime(start))
	}

	return Event{
		Subject:     p.Subject,
		Description: p.Description,
		Start:       start,
		End:         end,
		Location:    p.Location,
		Status:      p.Status,
	}, nil
}

func (e Event) params() EventParams {
	return EventParams{
		Subject:     e.Subject,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		Location:    e.Location,
		Status:      e.Status,
	}
}

// SameAs reports whether both events share the identity triple
// (subject, start, end).
func (e Event) SameAs(other Event) bool {
	return e.Subject == other.Subject && e.Start == other.Start && e.End == other.End
}
