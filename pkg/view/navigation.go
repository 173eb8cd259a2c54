package view

import (
	"sort"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
)

const rangeTextLayout = "Jan 2, 2006"

// Navigate moves date one period backward or forward. Agenda moves by month.
func Navigate(date time.Time, g Granularity, dir Direction) time.Time {
	n := int(dir)
	switch g {
	case Day:
		return date.AddDate(0, 0, n)
	case Week:
		return date.AddDate(0, 0, 7*n)
	case Year:
		return date.AddDate(n, 0, 0)
	default:
		return addMonthsClamped(date, n)
	}
}

// addMonthsClamped adds months without overflowing into the following month,
// so Jan 31 + 1 month is Feb 28/29.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	day := t.Day()
	if last := DaysInMonth(target); day > last {
		day = last
	}
	return target.AddDate(0, 0, day-1)
}

// RangeText is the human readable label of the window shown for the view.
func RangeText(date time.Time, g Granularity, weekStart time.Weekday) string {
	if g == Day {
		return date.Format(rangeTextLayout)
	}
	w := WindowFor(date, g, weekStart)
	return w.Start.Format(rangeTextLayout) + " - " + w.End.Format(rangeTextLayout)
}

// EventsCount counts events starting in the same period as date.
func EventsCount(events []calendar.Event, date time.Time, g Granularity, weekStart time.Weekday) int {
	count := 0
	for _, e := range events {
		start := e.StartTime.In(date.Location())
		var same bool
		switch g {
		case Day:
			same = calendar.SameDay(start, date)
		case Week:
			same = StartOfWeek(start, weekStart).Equal(StartOfWeek(date, weekStart))
		case Year:
			same = start.Year() == date.Year()
		default:
			same = start.Year() == date.Year() && start.Month() == date.Month()
		}
		if same {
			count++
		}
	}
	return count
}

// CurrentEvents returns the events in progress at now, boundaries included.
func CurrentEvents(events []calendar.Event, now time.Time) []calendar.Event {
	current := make([]calendar.Event, 0)
	for _, e := range events {
		if !now.Before(e.StartTime) && !now.After(e.EndTime) {
			current = append(current, e)
		}
	}
	return current
}

// Cell is one day of the month grid.
type Cell struct {
	Day          int
	CurrentMonth bool
	Date         time.Time
}

// MonthCells builds the month grid for focus: trailing days of the previous month,
// the focused month, and leading days of the next month to complete the last week.
func MonthCells(focus time.Time, weekStart time.Weekday) []Cell {
	first := StartOfMonth(focus)
	daysInMonth := DaysInMonth(focus)
	leading := (int(first.Weekday()) - int(weekStart) + 7) % 7
	trailing := (7 - (leading+daysInMonth)%7) % 7

	cells := make([]Cell, 0, leading+daysInMonth+trailing)
	for i := leading; i > 0; i-- {
		d := first.AddDate(0, 0, -i)
		cells = append(cells, Cell{Day: d.Day(), CurrentMonth: false, Date: d})
	}
	for i := 0; i < daysInMonth; i++ {
		d := first.AddDate(0, 0, i)
		cells = append(cells, Cell{Day: d.Day(), CurrentMonth: true, Date: d})
	}
	next := first.AddDate(0, 1, 0)
	for i := 0; i < trailing; i++ {
		d := next.AddDate(0, 0, i)
		cells = append(cells, Cell{Day: d.Day(), CurrentMonth: false, Date: d})
	}
	return cells
}

// YearMonths returns the first day of each month of focus's year.
func YearMonths(focus time.Time) []time.Time {
	start := StartOfYear(focus)
	months := make([]time.Time, 0, 12)
	for i := 0; i < 12; i++ {
		months = append(months, start.AddDate(0, i, 0))
	}
	return months
}

// AgendaDay groups the events shown under one date of the agenda.
type AgendaDay struct {
	Date     time.Time
	Events   []calendar.Event
	MultiDay []calendar.Event
}

// AgendaDays groups the focused month's events by day. Single-day events are listed
// under their start day; multi-day events under every day of the month they cover.
func AgendaDays(single, multi []calendar.Event, focus time.Time) []AgendaDay {
	loc := focus.Location()
	byDay := make(map[time.Time]*AgendaDay)
	get := func(d time.Time) *AgendaDay {
		day, ok := byDay[d]
		if !ok {
			day = &AgendaDay{Date: d, Events: []calendar.Event{}, MultiDay: []calendar.Event{}}
			byDay[d] = day
		}
		return day
	}
	sameMonth := func(t time.Time) bool {
		return t.Year() == focus.Year() && t.Month() == focus.Month()
	}

	for _, e := range single {
		start := e.StartTime.In(loc)
		if !sameMonth(start) {
			continue
		}
		day := get(StartOfDay(start))
		day.Events = append(day.Events, e)
	}
	for _, e := range multi {
		for _, d := range EachDay(e.StartTime.In(loc), e.EndTime.In(loc)) {
			if !sameMonth(d) {
				continue
			}
			day := get(d)
			day.MultiDay = append(day.MultiDay, e)
		}
	}

	days := make([]AgendaDay, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}
