package ics

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/klokku/calstore/pkg/calendar"
)

const productID = "-//klokku//calstore//EN"

// Encode writes snapshot as a VCALENDAR document. stamp becomes the DTSTAMP
// of every VEVENT.
func Encode(w io.Writer, snapshot calendar.Snapshot, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", snapshot.Name)

	zone := snapshot.Timezone
	if zone == nil {
		zone = time.UTC
	}

	for _, e := range snapshot.Events {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, EventUID(snapshot.Name, e))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetText(ical.PropSummary, e.Subject)
		event.Props.SetDateTime(ical.PropDateTimeStart, e.Start.In(zone).UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, e.End.In(zone).UTC())
		if e.Description != "" {
			event.Props.SetText(ical.PropDescription, e.Description)
		}
		if e.Location != calendar.NoLocation {
			event.Props.SetText(ical.PropLocation, e.Location.String())
		}
		if e.Status != calendar.NoStatus {
			event.Props.SetText(ical.PropClass, e.Status.String())
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar %q: %w", snapshot.Name, err)
	}
	return nil
}

// EventUID derives a stable UID from the calendar name and the event's
// identity triple, so re-exports keep the same UIDs.
func EventUID(calendarName string, e calendar.Event) string {
	key := fmt.Sprintf("%s|%s|%s|%s", calendarName, e.Subject, calendar.FormatDateTime(e.Start), calendar.FormatDateTime(e.End))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
