package layout

import (
	"sort"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/view"
)

type BarPosition string

const (
	BarNone   BarPosition = "none"
	BarFirst  BarPosition = "first"
	BarMiddle BarPosition = "middle"
	BarLast   BarPosition = "last"
)

// WeekBar is a multi-day event clipped to a week. Indexes are 0..6 from the week start.
type WeekBar struct {
	Event      calendar.Event
	StartIndex int
	EndIndex   int
}

// Position returns the bar's shape on the day with the given index.
func (b WeekBar) Position(index int) BarPosition {
	if index < b.StartIndex || index > b.EndIndex {
		return BarNone
	}
	if b.StartIndex == b.EndIndex {
		return BarNone
	}
	switch index {
	case b.StartIndex:
		return BarFirst
	case b.EndIndex:
		return BarLast
	default:
		return BarMiddle
	}
}

// WeekRows stacks the multi-day events of the focused week into rows of
// non-overlapping bars. Bars are sorted by clipped start, longer first on ties.
func WeekRows(multi []calendar.Event, focus time.Time, weekStart time.Weekday) [][]WeekBar {
	loc := focus.Location()
	weekFrom := view.StartOfWeek(focus, weekStart)
	weekTo := view.EndOfWeek(focus, weekStart)

	bars := make([]WeekBar, 0, len(multi))
	for _, e := range multi {
		start := view.StartOfDay(e.StartTime.In(loc))
		end := view.StartOfDay(e.EndTime.In(loc))
		if end.Before(weekFrom) || start.After(weekTo) {
			continue
		}
		startIndex := max(view.CalendarDays(weekFrom, start), 0)
		endIndex := min(view.CalendarDays(weekFrom, end), 6)
		bars = append(bars, WeekBar{Event: e, StartIndex: startIndex, EndIndex: endIndex})
	}
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].StartIndex != bars[j].StartIndex {
			return bars[i].StartIndex < bars[j].StartIndex
		}
		return bars[i].EndIndex-bars[i].StartIndex > bars[j].EndIndex-bars[j].StartIndex
	})

	rows := make([][]WeekBar, 0)
	for _, bar := range bars {
		placed := false
		for i, row := range rows {
			fits := true
			for _, other := range row {
				if !(other.EndIndex < bar.StartIndex || other.StartIndex > bar.EndIndex) {
					fits = false
					break
				}
			}
			if fits {
				rows[i] = append(row, bar)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []WeekBar{bar})
		}
	}
	return rows
}

// DayMultiDay returns the multi-day events that touch day, longest first.
func DayMultiDay(multi []calendar.Event, day time.Time) []calendar.Event {
	loc := day.Location()
	result := make([]calendar.Event, 0)
	for _, e := range multi {
		if OccupiesDay(e, day) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		a := view.CalendarDays(result[i].StartTime.In(loc), result[i].EndTime.In(loc))
		b := view.CalendarDays(result[j].StartTime.In(loc), result[j].EndTime.In(loc))
		return a > b
	})
	return result
}

func barPositionOnDay(e calendar.Event, day time.Time) BarPosition {
	if !e.IsMultiDay() {
		return BarNone
	}
	loc := day.Location()
	switch {
	case calendar.SameDay(e.StartTime.In(loc), day):
		return BarFirst
	case calendar.SameDay(e.EndTime.In(loc), day):
		return BarLast
	default:
		return BarMiddle
	}
}
