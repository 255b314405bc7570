package ics

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/calstore/internal/rest"
	"github.com/klokku/calstore/internal/utils"
	"github.com/klokku/calstore/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

type SnapshotProvider func(name string) (calendar.Snapshot, error)

type Handler struct {
	snapshot SnapshotProvider
	clock    utils.Clock
}

func NewHandler(snapshot SnapshotProvider, clock utils.Clock) *Handler {
	return &Handler{snapshot: snapshot, clock: clock}
}

func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	log.Debugf("Exporting calendar %q", name)

	snapshot, err := h.snapshot(name)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Calendar not found", err.Error())
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Export failed", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := Encode(&buf, snapshot, h.clock.Now()); err != nil {
		log.Errorf("failed to export calendar: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Export failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Errorf("failed to write calendar export: %v", err)
	}
}
