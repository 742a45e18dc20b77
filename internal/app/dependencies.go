package app

import (
	"database/sql"
	"time"

	"github.com/daypanel/daypanel/internal/config"
	"github.com/daypanel/daypanel/internal/utils"
	"github.com/daypanel/daypanel/pkg/calendar"
	"github.com/daypanel/daypanel/pkg/dayview"
	"github.com/daypanel/daypanel/pkg/geometry"
	"github.com/daypanel/daypanel/pkg/gesture"
	"github.com/daypanel/daypanel/pkg/google"
	"github.com/daypanel/daypanel/pkg/ics"
	"github.com/daypanel/daypanel/pkg/layout"
	"github.com/daypanel/daypanel/pkg/render"
	"github.com/daypanel/daypanel/pkg/toast"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	GoogleAuth    *google.Auth
	GoogleBackend *google.Backend
	GoogleHandler *google.Handler

	Feeds    []*ics.Feed
	Calendar *calendar.Aggregate

	Surface    *render.Surface
	Renderer   *render.Renderer
	Controller *gesture.Controller

	Toasts       *toast.Queue
	ToastHandler *toast.Handler

	DayService *dayview.Service
	DayHandler *dayview.Handler
	Scheduler  *dayview.Scheduler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.GoogleAuth = google.NewAuth(db, cfg)
	deps.GoogleBackend = google.NewBackend(deps.GoogleAuth)
	deps.GoogleHandler = google.NewHandler(deps.GoogleBackend)

	sources := make([]calendar.ReadOnlySource, 0, len(cfg.Feeds))
	for _, feedCfg := range cfg.Feeds {
		feed := ics.NewFeed(feedCfg)
		deps.Feeds = append(deps.Feeds, feed)
		sources = append(sources, feed)
	}
	deps.Calendar = calendar.NewAggregate(deps.GoogleBackend, sources...)

	mapper := geometry.NewMapper(cfg.Timeline.HourHeight)
	deps.Surface = render.NewSurface()
	deps.Renderer = render.NewRenderer(layout.NewEngine(mapper), deps.Surface)
	deps.Controller = gesture.NewController(mapper)

	deps.Toasts = toast.NewQueue(cfg.Toasts.Capacity, time.Duration(cfg.Toasts.TtlMillis)*time.Millisecond, deps.Clock)
	deps.ToastHandler = toast.NewHandler(deps.Toasts)

	deps.DayService = dayview.NewService(deps.Calendar, deps.Renderer, deps.Surface, deps.Controller, deps.Toasts, deps.Clock, dayLocation(cfg))
	deps.DayHandler = dayview.NewHandler(deps.DayService)
	deps.Scheduler = dayview.NewScheduler(deps.DayService, time.Duration(cfg.Poll.IntervalSeconds)*time.Second)

	// the poll loop follows the Google session
	deps.GoogleAuth.OnChange(func(authenticated bool) {
		if authenticated {
			deps.Scheduler.Start()
		} else {
			deps.Scheduler.Stop()
			deps.Surface.SetError("Please sign in again")
		}
	})

	return deps
}

func dayLocation(cfg config.Application) *time.Location {
	if cfg.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %q, falling back to system zone: %v", cfg.Timezone, err)
		return time.Local
	}
	return loc
}
