package calendar_view

import (
	"context"
	"fmt"
	"time"

	"github.com/eventcal/eventcal/internal/event_bus"
	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/layout"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/eventcal/eventcal/pkg/view"
	log "github.com/sirupsen/logrus"
)

// AllUsers disables the owner filter.
const AllUsers = "all"

type Service interface {
	Build(ctx context.Context, focus time.Time, g view.Granularity, userFilter string) (CalendarView, error)
	Agenda(ctx context.Context, focus time.Time, userFilter string) ([]view.AgendaDay, error)
}

type ServiceImpl struct {
	events   calendar.Calendar
	cache    *view.Cache
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(events calendar.Calendar, cache *view.Cache, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{events: events, cache: cache, eventBus: eventBus, clock: clock}
}

// visibleEvents is the range filter output for one request, normalized into the
// user's timezone.
type visibleEvents struct {
	focus     time.Time
	weekStart time.Weekday
	settings  user.Settings
	events    []calendar.Event
	visible   view.Visible
}

func (s *ServiceImpl) load(ctx context.Context, focus time.Time, g view.Granularity, userFilter string) (visibleEvents, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return visibleEvents{}, fmt.Errorf("failed to get current user: %w", err)
	}
	settings := currentUser.Settings
	loc := settings.Location()
	focus = focus.In(loc)
	window := view.WindowFor(focus, g, settings.WeekFirstDay)

	loaded, err := s.events.GetEvents(ctx, window.Start, window.End)
	if err != nil {
		return visibleEvents{}, fmt.Errorf("failed to load events: %w", err)
	}
	events := make([]calendar.Event, 0, len(loaded))
	for _, e := range loaded {
		if userFilter != "" && userFilter != AllUsers && e.User.Id != userFilter {
			continue
		}
		events = append(events, e.In(loc))
	}

	return visibleEvents{
		focus:     focus,
		weekStart: settings.WeekFirstDay,
		settings:  settings,
		events:    events,
		visible:   s.cache.FilterVisible(events, focus, g, settings.WeekFirstDay),
	}, nil
}

// Build computes the layout of the view around focus and announces the view change.
func (s *ServiceImpl) Build(ctx context.Context, focus time.Time, g view.Granularity, userFilter string) (CalendarView, error) {
	v, err := s.load(ctx, focus, g, userFilter)
	if err != nil {
		return CalendarView{}, err
	}
	now := s.clock.Now().In(v.focus.Location())

	result := CalendarView{
		Granularity:  g,
		Date:         v.focus,
		RangeText:    view.RangeText(v.focus, g, v.weekStart),
		Window:       WindowDTO{Start: v.visible.Window.Start, End: v.visible.Window.End},
		EventsCount:  view.EventsCount(v.events, v.focus, g, v.weekStart),
		BadgeVariant: string(v.settings.BadgeVariant),
		Single:       calendar.EventsToDTO(v.visible.Single),
		Multi:        calendar.EventsToDTO(v.visible.Multi),
		Current:      calendar.EventsToDTO(view.CurrentEvents(v.visible.All(), now)),
	}

	switch g {
	case view.Day, view.Week:
		s.buildTimeGrid(&result, v, g, now)
	case view.Month:
		cells := view.MonthCells(v.focus, v.weekStart)
		lanes := layout.MonthLanes(v.visible.Multi, v.visible.Single, v.focus)
		result.Month = monthGridToDTO(layout.MonthGrid(cells, v.visible.All(), lanes))
	case view.Year:
		result.Year = yearMonths(v.visible.All(), v.focus, v.weekStart)
	case view.Agenda:
		result.Agenda = agendaToDTO(view.AgendaDays(v.visible.Single, v.visible.Multi, v.focus))
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.CalendarViewChanged, event_bus.ViewChanged{
		Granularity: string(g),
		Date:        v.focus,
	}))
	if err != nil {
		log.Warnf("failed to publish view change: %v", err)
	}
	return result, nil
}

// Agenda returns the agenda days of the month around focus.
func (s *ServiceImpl) Agenda(ctx context.Context, focus time.Time, userFilter string) ([]view.AgendaDay, error) {
	v, err := s.load(ctx, focus, view.Agenda, userFilter)
	if err != nil {
		return nil, err
	}
	return view.AgendaDays(v.visible.Single, v.visible.Multi, v.focus), nil
}

func (s *ServiceImpl) buildTimeGrid(result *CalendarView, v visibleEvents, g view.Granularity, now time.Time) {
	visibleHours := v.settings.VisibleHours
	if visibleHours.Validate() != nil {
		visibleHours = layout.HourRange{From: 0, To: 24}
	}
	visibleHours = layout.VisibleHours(visibleHours, v.visible.Single)
	result.VisibleHours = &visibleHours

	days := []time.Time{view.StartOfDay(v.focus)}
	if g == view.Week {
		days = view.EachDay(v.visible.Window.Start, v.visible.Window.End)
		result.WeekRows = weekRowsToDTO(layout.WeekRows(v.visible.Multi, v.focus, v.weekStart))
	}

	result.Days = make([]DayColumn, 0, len(days))
	for _, day := range days {
		dayEvents := make([]calendar.Event, 0)
		for _, e := range v.visible.Single {
			if calendar.SameDay(e.StartTime, day) {
				dayEvents = append(dayEvents, e)
			}
		}
		column := DayColumn{
			Date:     day,
			Lanes:    layout.DayLanes(dayEvents),
			Blocks:   blocksToDTO(layout.DayBlocks(dayEvents, day, visibleHours)),
			MultiDay: calendar.EventsToDTO(layout.DayMultiDay(v.visible.Multi, day)),
		}
		if working, ok := v.settings.WorkingHours[day.Weekday()]; ok {
			column.WorkingHours = &working
		}
		result.Days = append(result.Days, column)

		if calendar.SameDay(now, day) {
			if position, ok := layout.TimelinePosition(now, visibleHours); ok {
				result.Timeline = &position
			}
		}
	}
}

// yearMonths counts, for every day of the twelve month grids, the events covering it.
func yearMonths(events []calendar.Event, focus time.Time, weekStart time.Weekday) []YearMonthDTO {
	months := view.YearMonths(focus)
	result := make([]YearMonthDTO, 0, len(months))
	for _, month := range months {
		cells := view.MonthCells(month, weekStart)
		days := make([]YearDayDTO, 0, len(cells))
		for _, cell := range cells {
			count := 0
			if cell.CurrentMonth {
				for _, e := range events {
					if layout.OccupiesDay(e, cell.Date) {
						count++
					}
				}
			}
			days = append(days, YearDayDTO{Date: cell.Date, CurrentMonth: cell.CurrentMonth, Count: count})
		}
		result = append(result, YearMonthDTO{Month: month, Days: days})
	}
	return result
}
