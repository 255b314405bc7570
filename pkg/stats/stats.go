package stats

import (
	"time"

	"cloud.google.com/go/civil"
)

type DailyStats struct {
	Date      civil.Date
	Subjects  []SubjectStats
	TotalTime time.Duration
}

// SubjectStats is the time booked under one event subject.
type SubjectStats struct {
	Subject  string
	Events   int
	Duration time.Duration
}

type StatsSummary struct {
	Calendar  string
	StartDate civil.Date
	EndDate   civil.Date
	Days      []DailyStats
	Subjects  []SubjectStats
	TotalTime time.Duration
}
