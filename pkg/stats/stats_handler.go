package stats

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/calstore/internal/rest"
	"github.com/klokku/calstore/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

type DailyStatsDTO struct {
	Date      string            `json:"date"`
	Subjects  []SubjectStatsDTO `json:"subjects"`
	TotalTime int               `json:"totalTime"`
}

type SubjectStatsDTO struct {
	Subject  string `json:"subject"`
	Events   int    `json:"events"`
	Duration int    `json:"duration"`
}

type StatsSummaryDTO struct {
	Calendar  string            `json:"calendar"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
	Days      []DailyStatsDTO   `json:"days"`
	Subjects  []SubjectStatsDTO `json:"subjects"`
	TotalTime int               `json:"totalTime"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

// GetStats answers JSON, or CSV when the client accepts text/csv.
func (handler *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	fromDate, err := calendar.ParseDate(r.URL.Query().Get("fromDate"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid fromDate format", "fromDate must be yyyy-mm-dd")
		return
	}
	toDate, err := calendar.ParseDate(r.URL.Query().Get("toDate"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid toDate format", "toDate must be yyyy-mm-dd")
		return
	}

	stats, err := handler.statsService.GetStats(r.Context(), name, fromDate, toDate)
	if err != nil {
		switch {
		case errors.Is(err, calendar.ErrValidation):
			rest.WriteError(w, http.StatusBadRequest, "Invalid date range", err.Error())
		case errors.Is(err, calendar.ErrNotFound):
			rest.WriteError(w, http.StatusNotFound, "Calendar not found", err.Error())
		default:
			log.Errorf("failed to compute stats: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Stats failed", err.Error())
		}
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderStats(stats)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write csv stats: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(convertToJsonResponse(&stats)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func convertToJsonResponse(stats *StatsSummary) *StatsSummaryDTO {
	days := make([]DailyStatsDTO, 0, len(stats.Days))
	for _, day := range stats.Days {
		days = append(days, DailyStatsDTO{
			Date:      day.Date.String(),
			Subjects:  subjectsToDTO(day.Subjects),
			TotalTime: int(day.TotalTime.Seconds()),
		})
	}

	return &StatsSummaryDTO{
		Calendar:  stats.Calendar,
		StartDate: stats.StartDate.String(),
		EndDate:   stats.EndDate.String(),
		Days:      days,
		Subjects:  subjectsToDTO(stats.Subjects),
		TotalTime: int(stats.TotalTime.Seconds()),
	}
}

func subjectsToDTO(subjects []SubjectStats) []SubjectStatsDTO {
	dtos := make([]SubjectStatsDTO, 0, len(subjects))
	for _, s := range subjects {
		dtos = append(dtos, SubjectStatsDTO{
			Subject:  s.Subject,
			Events:   s.Events,
			Duration: int(s.Duration.Seconds()),
		})
	}
	return dtos
}
