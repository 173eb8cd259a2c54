package layout

import (
	"sort"

	"github.com/eventcal/eventcal/pkg/calendar"
)

// Lanes maps an event UID to the lane it occupies.
type Lanes map[string]int

// GroupByLane assigns events to lanes first-fit by start time. An event goes to the
// first lane whose latest event has ended by the time it starts; otherwise a new lane
// is opened. Equal start times keep their input order. The result is not guaranteed
// to use the minimum number of lanes.
func GroupByLane(events []calendar.Event) [][]calendar.Event {
	sorted := make([]calendar.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	groups := make([][]calendar.Event, 0)
	for _, e := range sorted {
		placed := false
		for i, group := range groups {
			last := group[len(group)-1]
			if !e.StartTime.Before(last.EndTime) {
				groups[i] = append(group, e)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []calendar.Event{e})
		}
	}
	return groups
}

// DayLanes returns the lane index of every event for a day or week column.
func DayLanes(events []calendar.Event) Lanes {
	lanes := make(Lanes, len(events))
	for i, group := range GroupByLane(events) {
		for _, e := range group {
			lanes[e.UID] = i
		}
	}
	return lanes
}
