package stats

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var startDate = civil.Date{Year: 2024, Month: time.January, Day: 1}
var endDate = civil.Date{Year: 2024, Month: time.January, Day: 2}

func TestCsvStatsRendererImpl_RenderStats(t *testing.T) {
	tests := []struct {
		name  string
		stats StatsSummary
		want  string
	}{
		{
			name: "RenderStats with valid data",
			stats: StatsSummary{
				StartDate: startDate,
				EndDate:   endDate,
				Days: []DailyStats{
					{
						Date:      startDate,
						TotalTime: time.Duration(30+60) * time.Minute,
						Subjects: []SubjectStats{
							{Subject: "Gym", Duration: time.Duration(30) * time.Minute},
							{Subject: "Standup", Duration: time.Duration(60) * time.Minute},
						},
					},
					{
						Date:      endDate,
						TotalTime: time.Duration(120) * time.Minute,
						Subjects: []SubjectStats{
							{Subject: "Standup", Duration: time.Duration(120) * time.Minute},
						},
					},
				},
				Subjects: []SubjectStats{
					{Subject: "Gym", Duration: time.Duration(30) * time.Minute},
					{Subject: "Standup", Duration: time.Duration(180) * time.Minute},
				},
				TotalTime: time.Duration(210) * time.Minute,
			},
			want: ",Gym,Standup,SUM\n" +
				"2024-01-01,00:30:00,01:00:00,01:30:00\n" +
				"2024-01-02,00:00:00,02:00:00,02:00:00\n" +
				"Total,00:30:00,03:00:00,03:30:00\n",
		},
		{
			name: "RenderStats with no events",
			stats: StatsSummary{
				StartDate: startDate,
				EndDate:   startDate,
				Days:      []DailyStats{{Date: startDate}},
			},
			want: ",SUM\n" +
				"2024-01-01,00:00:00\n" +
				"Total,00:00:00\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewCsvStatsRenderer()
			got, err := renderer.RenderStats(tt.stats)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDurationToString(t *testing.T) {
	assert.Equal(t, "00:00:00", durationToString(0))
	assert.Equal(t, "01:05:09", durationToString(time.Hour+5*time.Minute+9*time.Second))
	assert.Equal(t, "26:00:00", durationToString(26*time.Hour))
}
