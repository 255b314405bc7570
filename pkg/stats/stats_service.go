package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/klokku/calstore/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

// MaxDays bounds the number of days a single stats request may cover.
const MaxDays = 366

type StatsService interface {
	GetStats(ctx context.Context, calendarName string, from civil.Date, to civil.Date) (StatsSummary, error)
}

type SnapshotProvider func(name string) (calendar.Snapshot, error)

type StatsServiceImpl struct {
	snapshot SnapshotProvider
}

func NewStatsServiceImpl(snapshot SnapshotProvider) *StatsServiceImpl {
	return &StatsServiceImpl{snapshot: snapshot}
}

// GetStats sums, per day of [from, to], the booked time of each subject.
// Events crossing midnight are split between the days they cover.
func (s *StatsServiceImpl) GetStats(ctx context.Context, calendarName string, from civil.Date, to civil.Date) (StatsSummary, error) {
	if to.Before(from) {
		return StatsSummary{}, fmt.Errorf("%w: to date %s is before from date %s", calendar.ErrValidation, to, from)
	}
	if days := to.DaysSince(from) + 1; days > MaxDays {
		return StatsSummary{}, fmt.Errorf("%w: range of %d days exceeds the limit of %d", calendar.ErrValidation, days, MaxDays)
	}
	snapshot, err := s.snapshot(calendarName)
	if err != nil {
		return StatsSummary{}, err
	}
	log.Tracef("Computing stats for %q with %d events", calendarName, len(snapshot.Events))

	summary := StatsSummary{
		Calendar:  snapshot.Name,
		StartDate: from,
		EndDate:   to,
	}
	totals := make(map[string]*SubjectStats)
	for day := from; !day.After(to); day = day.AddDays(1) {
		dayStart := civil.DateTime{Date: day}
		dayEnd := civil.DateTime{Date: day.AddDays(1)}

		bySubject := make(map[string]*SubjectStats)
		for _, e := range snapshot.Events {
			d := overlap(e, dayStart, dayEnd)
			starts := startsWithin(e, dayStart, dayEnd)
			if d <= 0 && !starts {
				continue
			}
			addTo(bySubject, e.Subject, d, starts)
			addTo(totals, e.Subject, d, starts)
		}

		daily := DailyStats{Date: day, Subjects: sortedStats(bySubject)}
		for _, st := range daily.Subjects {
			daily.TotalTime += st.Duration
		}
		summary.Days = append(summary.Days, daily)
		summary.TotalTime += daily.TotalTime
	}
	summary.Subjects = sortedStats(totals)

	return summary, nil
}

func addTo(stats map[string]*SubjectStats, subject string, d time.Duration, counted bool) {
	st, ok := stats[subject]
	if !ok {
		st = &SubjectStats{Subject: subject}
		stats[subject] = st
	}
	st.Duration += d
	if counted {
		st.Events++
	}
}

func sortedStats(stats map[string]*SubjectStats) []SubjectStats {
	out := make([]SubjectStats, 0, len(stats))
	for _, st := range stats {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Subject < out[j].Subject
	})
	return out
}

// overlap is the part of e that falls inside [from, to).
func overlap(e calendar.Event, from, to civil.DateTime) time.Duration {
	start, end := e.Start, e.End
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return end.In(time.UTC).Sub(start.In(time.UTC))
}

func startsWithin(e calendar.Event, from, to civil.DateTime) bool {
	return !e.Start.Before(from) && e.Start.Before(to)
}
