package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

const (
	dateTimeMinutesLayout = "2006-01-02T15:04"
	dateTimeSecondsLayout = "2006-01-02T15:04:05"
)

var (
	allDayStart = civil.Time{Hour: 8}
	allDayEnd   = civil.Time{Hour: 17}
)

// ParseDateTime parses an ISO local date-time with minute or second precision.
func ParseDateTime(value string) (civil.DateTime, error) {
	for _, layout := range []string{dateTimeMinutesLayout, dateTimeSecondsLayout} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return civil.DateTimeOf(t), nil
		}
	}
	return civil.DateTime{}, fmt.Errorf("%w: %q is not a date-time (expected yyyy-mm-ddThh:mm)", ErrValidation, value)
}

// ParseDate parses an ISO local date (yyyy-mm-dd).
func ParseDate(value string) (civil.Date, error) {
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q is not a date (expected yyyy-mm-dd)", ErrValidation, value)
	}
	return d, nil
}

// FormatDateTime renders a local date-time, dropping the seconds when they are zero.
func FormatDateTime(dt civil.DateTime) string {
	t := dt.In(time.UTC)
	if dt.Time.Second == 0 && dt.Time.Nanosecond == 0 {
		return t.Format(dateTimeMinutesLayout)
	}
	return t.Format(dateTimeSecondsLayout)
}

func isZeroDateTime(dt civil.DateTime) bool {
	return dt == civil.DateTime{}
}

// elapsed returns the wall-clock distance between two local date-times.
func elapsed(from, to civil.DateTime) time.Duration {
	return to.In(time.UTC).Sub(from.In(time.UTC))
}

// convertZone re-expresses the instant that dt denotes in from as a local
// date-time in to.
func convertZone(dt civil.DateTime, from, to *time.Location) civil.DateTime {
	return civil.DateTimeOf(dt.In(from).In(to))
}

func addDays(dt civil.DateTime, days int) civil.DateTime {
	return civil.DateTime{Date: dt.Date.AddDays(days), Time: dt.Time}
}

func weekdayOf(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}
