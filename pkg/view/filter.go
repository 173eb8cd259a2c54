package view

import (
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
)

// Window is a closed time interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether the closed interval [start, end] touches the window.
func (w Window) Overlaps(start, end time.Time) bool {
	return !start.After(w.End) && !end.Before(w.Start)
}

// WindowFor derives the visible window around focus. Agenda uses the month window.
func WindowFor(focus time.Time, g Granularity, weekStart time.Weekday) Window {
	switch g {
	case Day:
		return Window{Start: StartOfDay(focus), End: EndOfDay(focus)}
	case Week:
		return Window{Start: StartOfWeek(focus, weekStart), End: EndOfWeek(focus, weekStart)}
	case Year:
		return Window{Start: StartOfYear(focus), End: EndOfYear(focus)}
	default:
		return Window{Start: StartOfMonth(focus), End: EndOfMonth(focus)}
	}
}

// Filter returns the events whose [start, end] interval intersects the window.
// Input order is preserved and the input slice is not modified.
func Filter(events []calendar.Event, w Window) []calendar.Event {
	visible := make([]calendar.Event, 0, len(events))
	for _, e := range events {
		if w.Overlaps(e.StartTime, e.EndTime) {
			visible = append(visible, e)
		}
	}
	return visible
}

// Split partitions events into single-day and multi-day subsets.
func Split(events []calendar.Event) (single []calendar.Event, multi []calendar.Event) {
	single = make([]calendar.Event, 0, len(events))
	multi = make([]calendar.Event, 0)
	for _, e := range events {
		if e.IsMultiDay() {
			multi = append(multi, e)
		} else {
			single = append(single, e)
		}
	}
	return single, multi
}

// Visible is the output of the range filter for one view.
type Visible struct {
	Window Window
	Single []calendar.Event
	Multi  []calendar.Event
}

// All returns the multi-day events followed by the single-day ones.
func (v Visible) All() []calendar.Event {
	all := make([]calendar.Event, 0, len(v.Single)+len(v.Multi))
	all = append(all, v.Multi...)
	return append(all, v.Single...)
}

// FilterVisible windows the events around focus and splits the result.
func FilterVisible(events []calendar.Event, focus time.Time, g Granularity, weekStart time.Weekday) Visible {
	w := WindowFor(focus, g, weekStart)
	single, multi := Split(Filter(events, w))
	return Visible{Window: w, Single: single, Multi: multi}
}
