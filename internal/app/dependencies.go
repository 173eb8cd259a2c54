package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eventcal/eventcal/internal/config"
	"github.com/eventcal/eventcal/internal/database"
	"github.com/eventcal/eventcal/internal/event_bus"
	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/calendar_provider"
	"github.com/eventcal/eventcal/pkg/calendar_view"
	"github.com/eventcal/eventcal/pkg/clickup"
	"github.com/eventcal/eventcal/pkg/event"
	"github.com/eventcal/eventcal/pkg/google"
	"github.com/eventcal/eventcal/pkg/ics"
	"github.com/eventcal/eventcal/pkg/integration"
	"github.com/eventcal/eventcal/pkg/layout"
	"github.com/eventcal/eventcal/pkg/passkey"
	"github.com/eventcal/eventcal/pkg/storage"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/eventcal/eventcal/pkg/view"
	log "github.com/sirupsen/logrus"
)

const viewCacheSize = 256

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	KeyValue storage.KeyValue

	UserService user.Service
	UserHandler *user.Handler

	EventService *event.EventServiceImpl
	EventHandler *event.EventHandler

	IntegrationService *integration.ServiceImpl
	IntegrationHandler *integration.Handler
	Syncer             *integration.Syncer
	Scheduler          *integration.Scheduler

	GoogleAuth    *google.GoogleAuth
	GoogleSource  *google.Source
	GoogleHandler *google.Handler
	ClickUpSource *clickup.Source
	IcsSource     *ics.Source

	CalendarProvider    *calendar_provider.CalendarProvider
	CalendarViewService *calendar_view.ServiceImpl
	CalendarViewHandler *calendar_view.Handler

	PasskeyService *passkey.ServiceImpl
	PasskeyHandler *passkey.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, db database.DB, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	kv, err := newKeyValue(ctx, db, cfg)
	if err != nil {
		return nil, err
	}
	deps.KeyValue = kv

	defaults, err := defaultUserSettings(cfg.Calendar)
	if err != nil {
		return nil, err
	}
	deps.UserService = user.NewUserService(user.NewUserRepo(db), defaults)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.EventService = event.NewEventService(event.NewEventRepo(db), deps.EventBus)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.IntegrationService = integration.NewService(kv, deps.EventBus, deps.Clock)
	deps.IntegrationHandler = integration.NewHandler(deps.IntegrationService)

	deps.GoogleAuth = google.NewGoogleAuth(kv, deps.UserService, deps.IntegrationService, cfg)
	deps.GoogleSource = google.NewSource(deps.GoogleAuth)
	deps.GoogleHandler = google.NewHandler(deps.GoogleSource, deps.IntegrationService)
	deps.ClickUpSource = clickup.NewSource(clickup.NewClient(""))
	deps.IcsSource = ics.NewSource()

	ttl, err := time.ParseDuration(cfg.Integrations.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid integrations cache ttl %q: %w", cfg.Integrations.CacheTTL, err)
	}
	deps.Syncer = integration.NewSyncer(integration.Sources{
		integration.TypeGoogleCalendar: deps.GoogleSource,
		integration.TypeClickUp:        deps.ClickUpSource,
		integration.TypeOutlook:        deps.IcsSource,
	}, kv, deps.Clock, ttl)
	deps.Scheduler, err = integration.NewScheduler(cfg.Integrations.SyncCron, deps.UserService, deps.IntegrationService, deps.Syncer, deps.Clock)
	if err != nil {
		return nil, err
	}

	deps.CalendarProvider = calendar_provider.NewCalendarProvider(deps.EventService, deps.IntegrationService, deps.Syncer)
	deps.CalendarViewService = calendar_view.NewService(deps.CalendarProvider, view.NewCache(viewCacheSize), deps.EventBus, deps.Clock)
	deps.CalendarViewHandler = calendar_view.NewHandler(deps.CalendarViewService, calendar_view.NewCsvAgendaRenderer(), deps.Clock)

	deps.PasskeyService = passkey.NewService(cfg.Passkey.Code, kv, deps.Clock)
	deps.PasskeyHandler = passkey.NewHandler(deps.PasskeyService, cfg.Passkey.Enabled)

	SubscribeEvents(deps)

	return deps, nil
}

func newKeyValue(ctx context.Context, db database.DB, cfg config.Application) (storage.KeyValue, error) {
	driver, err := storage.ParseDriver(cfg.Storage.Driver)
	if err != nil {
		return nil, err
	}
	log.Infof("Using %s key-value storage", driver)
	switch driver {
	case storage.DriverRedis:
		client, err := storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return storage.NewRedis(client), nil
	case storage.DriverMemory:
		return storage.NewMemory(), nil
	default:
		return storage.NewPostgres(db), nil
	}
}

// defaultUserSettings turns the calendar section of the configuration into the
// settings new users start with.
func defaultUserSettings(cfg config.Calendar) (user.Settings, error) {
	settings := user.DefaultSettings()
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return user.Settings{}, fmt.Errorf("invalid calendar timezone %q: %w", cfg.Timezone, err)
		}
		settings.Timezone = cfg.Timezone
	}
	if cfg.WeekStart != "" {
		weekStart, err := user.ParseWeekday(cfg.WeekStart)
		if err != nil {
			return user.Settings{}, fmt.Errorf("invalid calendar week start: %w", err)
		}
		settings.WeekFirstDay = weekStart
	}
	if cfg.VisibleHours != "" {
		visible, err := parseHourRange(cfg.VisibleHours)
		if err != nil {
			return user.Settings{}, fmt.Errorf("invalid calendar visible hours: %w", err)
		}
		settings.VisibleHours = visible
	}
	if cfg.WorkingHours != "" {
		working, err := parseHourRange(cfg.WorkingHours)
		if err != nil {
			return user.Settings{}, fmt.Errorf("invalid calendar working hours: %w", err)
		}
		settings.WorkingHours = make(layout.WorkingHours, 5)
		for d := time.Monday; d <= time.Friday; d++ {
			settings.WorkingHours[d] = working
		}
	}
	return settings, nil
}

// parseHourRange reads the "8-18" notation.
func parseHourRange(s string) (layout.HourRange, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return layout.HourRange{}, fmt.Errorf("%q is not in the from-to format", s)
	}
	fromHour, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return layout.HourRange{}, fmt.Errorf("invalid start hour in %q: %w", s, err)
	}
	toHour, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return layout.HourRange{}, fmt.Errorf("invalid end hour in %q: %w", s, err)
	}
	r := layout.HourRange{From: fromHour, To: toHour}
	if err := r.Validate(); err != nil {
		return layout.HourRange{}, err
	}
	return r, nil
}
