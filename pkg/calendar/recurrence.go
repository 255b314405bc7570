package calendar

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/teambition/rrule-go"
)

var weekdayLetters = map[string]time.Weekday{
	"M": time.Monday,
	"T": time.Tuesday,
	"W": time.Wednesday,
	"R": time.Thursday,
	"F": time.Friday,
	"S": time.Saturday,
	"U": time.Sunday,
}

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// ParseWeekdays maps weekday letters (M T W R F S U, any case) to weekdays.
// Repeated letters are collapsed.
func ParseWeekdays(letters []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(letters))
	seen := make(map[time.Weekday]bool, len(letters))
	for _, letter := range letters {
		day, ok := weekdayLetters[strings.ToUpper(strings.TrimSpace(letter))]
		if !ok {
			return nil, fmt.Errorf("%w: invalid weekday %q", ErrValidation, letter)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	return days, nil
}

// expandOccurrences builds the count occurrences that follow base. Without
// weekdays every following day gets one; with weekdays only matching days do.
func expandOccurrences(base Event, weekdays []time.Weekday, count int) ([]Event, error) {
	if count <= 0 {
		return nil, nil
	}

	first := civil.DateTime{Date: base.Start.Date.AddDays(1), Time: base.Start.Time}
	opt := rrule.ROption{
		Freq:    rrule.DAILY,
		Count:   count,
		Dtstart: first.In(time.UTC),
	}
	for _, day := range weekdays {
		opt.Byweekday = append(opt.Byweekday, rruleWeekdays[day])
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: could not build recurrence: %v", ErrValidation, err)
	}

	span := base.End.Date.DaysSince(base.Start.Date)
	occurrences := make([]Event, 0, count)
	for _, t := range rule.All() {
		date := civil.DateOf(t)
		occurrence := base
		occurrence.Start = civil.DateTime{Date: date, Time: base.Start.Time}
		occurrence.End = civil.DateTime{Date: date.AddDays(span), Time: base.End.Time}
		occurrences = append(occurrences, occurrence)
	}
	return occurrences, nil
}

// RepeatCountUntil returns the repeat count that makes a series starting on
// start end on or before until: the number of matching days after start's
// date up to and including until. No weekdays means every day matches.
func RepeatCountUntil(start civil.DateTime, until civil.Date, weekdays []string) (int, error) {
	days, err := ParseWeekdays(weekdays)
	if err != nil {
		return 0, err
	}
	if until.Before(start.Date) {
		return 0, fmt.Errorf("%w: until %s is before start %s", ErrValidation, until, start.Date)
	}

	matches := make(map[time.Weekday]bool, len(days))
	for _, day := range days {
		matches[day] = true
	}

	count := 0
	for d := start.Date.AddDays(1); !d.After(until); d = d.AddDays(1) {
		if len(matches) == 0 || matches[weekdayOf(d)] {
			count++
		}
	}
	return count, nil
}
