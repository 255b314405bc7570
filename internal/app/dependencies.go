package app

import (
	"context"
	"fmt"

	"github.com/klokku/calstore/internal/config"
	"github.com/klokku/calstore/internal/event_bus"
	"github.com/klokku/calstore/internal/utils"
	"github.com/klokku/calstore/pkg/calendar"
	"github.com/klokku/calstore/pkg/ics"
	"github.com/klokku/calstore/pkg/stats"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	CalendarManager *calendar.Manager
	CalendarHandler *calendar.Handler
	ExportHandler   *ics.Handler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler
}

// BuildDependencies initializes the services, seeds the configured calendars
// and selects the configured active calendar.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	subscribeAuditLog(deps.EventBus)

	deps.Clock = &utils.SystemClock{}

	deps.CalendarManager = calendar.NewManager(deps.EventBus)
	ctx := context.Background()
	for _, c := range cfg.Calendars {
		if _, err := deps.CalendarManager.CreateCalendar(ctx, c.Name, c.Timezone); err != nil {
			return nil, fmt.Errorf("failed to create calendar %q: %w", c.Name, err)
		}
	}
	if cfg.Active != "" {
		if _, err := deps.CalendarManager.UseCalendar(ctx, cfg.Active); err != nil {
			return nil, fmt.Errorf("failed to activate calendar %q: %w", cfg.Active, err)
		}
	}

	deps.CalendarHandler = calendar.NewHandler(deps.CalendarManager, deps.Clock)
	deps.ExportHandler = ics.NewHandler(deps.CalendarManager.Snapshot, deps.Clock)

	deps.StatsService = stats.NewStatsServiceImpl(deps.CalendarManager.Snapshot)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	return deps, nil
}

func subscribeAuditLog(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventsAddedType,
		func(e event_bus.EventT[event_bus.CalendarEventsAdded]) error {
			log.Infof("calendar %q: %d event(s) added", e.Data.Calendar, len(e.Data.Events))
			return nil
		})
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventsEditedType,
		func(e event_bus.EventT[event_bus.CalendarEventsEdited]) error {
			log.Infof("calendar %q: %s edited on %d event(s)", e.Data.Calendar, e.Data.Property, len(e.Data.Events))
			return nil
		})
}
