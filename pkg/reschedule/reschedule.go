// Package reschedule computes the new placement of an event dropped on the calendar.
// Nothing here checks for collisions; overlapping results are stacked by the layout.
package reschedule

import (
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
)

// ToDay moves the event to the calendar date of day keeping its time of day and duration.
func ToDay(e calendar.Event, day time.Time) calendar.Event {
	start := e.StartTime.In(day.Location())
	y, m, d := day.Date()
	newStart := time.Date(y, m, d, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), day.Location())
	return moveTo(e, newStart)
}

// ToSlot moves the event to hour:minute of day. The minute is snapped down to a quarter.
func ToSlot(e calendar.Event, day time.Time, hour, minute int) calendar.Event {
	y, m, d := day.Date()
	newStart := time.Date(y, m, d, hour, SnapToQuarter(minute), 0, 0, day.Location())
	return moveTo(e, newStart)
}

// SnapToQuarter floors minute to 0, 15, 30 or 45.
func SnapToQuarter(minute int) int {
	if minute < 0 {
		return 0
	}
	if minute > 59 {
		return 45
	}
	return minute / 15 * 15
}

// Replace returns a copy of events with the event of the same UID swapped for updated.
// The input slice is left untouched.
func Replace(events []calendar.Event, updated calendar.Event) []calendar.Event {
	result := make([]calendar.Event, len(events))
	copy(result, events)
	for i, e := range result {
		if e.UID == updated.UID {
			result[i] = updated
		}
	}
	return result
}

func moveTo(e calendar.Event, start time.Time) calendar.Event {
	duration := e.Duration()
	e.StartTime = start
	e.EndTime = start.Add(duration)
	return e
}
