package stats

import (
	"bytes"
	"encoding/csv"
	"slices"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderStats writes one row per day and one column per subject, followed
// by a row of totals.
func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	subjects := make([]string, 0, len(stats.Subjects)+2)
	subjects = append(subjects, "")
	for _, subjectStats := range stats.Subjects {
		subjects = append(subjects, subjectStats.Subject)
	}

	statsByDay := make([][]string, 0, len(stats.Days))
	for _, dailyStats := range stats.Days {
		statsByDay = append(statsByDay, getStatsForDay(dailyStats, subjects[1:]))
	}

	statsBySubject := make([]string, 0, len(stats.Subjects)+2)
	statsBySubject = append(statsBySubject, "Total")
	for _, subjectStats := range stats.Subjects {
		statsBySubject = append(statsBySubject, durationToString(subjectStats.Duration))
	}
	statsBySubject = append(statsBySubject, durationToString(stats.TotalTime))

	subjects = append(subjects, "SUM")
	data := make([][]string, 0, 1+len(statsByDay)+1)
	data = append(data, subjects)
	data = append(data, statsByDay...)
	data = append(data, statsBySubject)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

// getStatsForDay expects dailyStats.Subjects sorted by subject.
func getStatsForDay(dailyStats DailyStats, subjects []string) []string {
	dayStats := make([]string, 0, len(subjects)+2)
	dayStats = append(dayStats, dailyStats.Date.String())
	for _, name := range subjects {
		idx, found := slices.BinarySearchFunc(dailyStats.Subjects, name, func(subjectStats SubjectStats, name string) int {
			return strings.Compare(subjectStats.Subject, name)
		})
		if found {
			dayStats = append(dayStats, durationToString(dailyStats.Subjects[idx].Duration))
		} else {
			dayStats = append(dayStats, "00:00:00")
		}
	}
	dayStats = append(dayStats, durationToString(dailyStats.TotalTime))
	return dayStats
}

func durationToString(duration time.Duration) string {
	hours := strconv.Itoa(int(duration.Hours()))
	if len(hours) == 1 {
		hours = "0" + hours
	}
	minutes := strconv.Itoa(int(duration.Minutes()) % 60)
	if len(minutes) == 1 {
		minutes = "0" + minutes
	}
	seconds := strconv.Itoa(int(duration.Seconds()) % 60)
	if len(seconds) == 1 {
		seconds = "0" + seconds
	}
	return hours + ":" + minutes + ":" + seconds
}
