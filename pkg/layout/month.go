package layout

import (
	"sort"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/view"
)

// MaxMonthLanes is the number of event slots a month cell shows before "+N more".
const MaxMonthLanes = 3

// MonthLanes packs the focused month's events into at most MaxMonthLanes lanes per day.
// Multi-day events are placed first, longest first (in whole 24h periods) then earliest
// first, followed by single-day events by start. Each event takes the first lane that is free on every day
// it covers within the month. Events that fit no lane are left out of the result.
func MonthLanes(multi, single []calendar.Event, focus time.Time) Lanes {
	loc := focus.Location()
	monthStart := view.StartOfMonth(focus)
	monthEnd := view.EndOfMonth(focus)
	occupied := make([][MaxMonthLanes]bool, view.DaysInMonth(focus))

	sortedMulti := make([]calendar.Event, len(multi))
	copy(sortedMulti, multi)
	sort.SliceStable(sortedMulti, func(i, j int) bool {
		a, b := sortedMulti[i], sortedMulti[j]
		aSpan, bSpan := wholeDays(a), wholeDays(b)
		if aSpan != bSpan {
			return aSpan > bSpan
		}
		return a.StartTime.Before(b.StartTime)
	})
	sortedSingle := make([]calendar.Event, len(single))
	copy(sortedSingle, single)
	sort.SliceStable(sortedSingle, func(i, j int) bool {
		return sortedSingle[i].StartTime.Before(sortedSingle[j].StartTime)
	})

	lanes := make(Lanes, len(multi)+len(single))
	for _, e := range append(sortedMulti, sortedSingle...) {
		start := e.StartTime.In(loc)
		end := e.EndTime.In(loc)
		if start.Before(monthStart) {
			start = monthStart
		}
		if end.After(monthEnd) {
			end = monthEnd
		}
		if end.Before(start) {
			continue
		}
		first, last := start.Day()-1, end.Day()-1

		lane := -1
		for i := 0; i < MaxMonthLanes && lane == -1; i++ {
			free := true
			for d := first; d <= last; d++ {
				if occupied[d][i] {
					free = false
					break
				}
			}
			if free {
				lane = i
			}
		}
		if lane == -1 {
			continue
		}
		for d := first; d <= last; d++ {
			occupied[d][lane] = true
		}
		lanes[e.UID] = lane
	}
	return lanes
}

// wholeDays counts the complete 24h periods between start and end.
func wholeDays(e calendar.Event) int {
	return int(e.EndTime.Sub(e.StartTime) / (24 * time.Hour))
}

// CellEvent is an event as shown in one month cell.
type CellEvent struct {
	Event calendar.Event
	// Lane is the slot the event is drawn in, or -1 when it is only counted in the overflow.
	Lane     int
	MultiDay bool
	// Position tells where the cell sits within a multi-day bar.
	Position BarPosition
}

// DayCell is a month cell with its slotted events.
type DayCell struct {
	view.Cell
	Events   []CellEvent
	Slots    [MaxMonthLanes]*calendar.Event
	Overflow int
}

// MonthGrid distributes events over the month cells using the lanes from MonthLanes.
// Overflow is the number of events occupying the day that have no slot in it.
func MonthGrid(cells []view.Cell, events []calendar.Event, lanes Lanes) []DayCell {
	grid := make([]DayCell, 0, len(cells))
	for _, cell := range cells {
		dc := DayCell{Cell: cell, Events: make([]CellEvent, 0)}
		for _, e := range events {
			if !OccupiesDay(e, cell.Date) {
				continue
			}
			lane, ok := lanes[e.UID]
			if !ok || lane < 0 || lane >= MaxMonthLanes || dc.Slots[lane] != nil {
				lane = -1
			}
			ce := CellEvent{
				Event:    e,
				Lane:     lane,
				MultiDay: e.IsMultiDay(),
				Position: barPositionOnDay(e, cell.Date),
			}
			if lane >= 0 {
				event := e
				dc.Slots[lane] = &event
			} else {
				dc.Overflow++
			}
			dc.Events = append(dc.Events, ce)
		}
		sort.SliceStable(dc.Events, func(i, j int) bool {
			a, b := dc.Events[i], dc.Events[j]
			if a.MultiDay != b.MultiDay {
				return a.MultiDay
			}
			return laneOrder(a.Lane) < laneOrder(b.Lane)
		})
		grid = append(grid, dc)
	}
	return grid
}

func laneOrder(lane int) int {
	if lane < 0 {
		return MaxMonthLanes
	}
	return lane
}

// OccupiesDay reports whether the event covers the calendar day of day, counting
// both its start and its end day.
func OccupiesDay(e calendar.Event, day time.Time) bool {
	loc := day.Location()
	d := view.StartOfDay(day)
	return !d.Before(view.StartOfDay(e.StartTime.In(loc))) && !d.After(view.StartOfDay(e.EndTime.In(loc)))
}
