package layout

import (
	"fmt"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/view"
)

// HourRange is a half-open range of whole hours, From inclusive and To exclusive.
type HourRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (r HourRange) Validate() error {
	if r.From < 0 || r.To > 24 || r.From >= r.To {
		return fmt.Errorf("invalid hour range %d-%d", r.From, r.To)
	}
	return nil
}

func (r HourRange) minutes() float64 {
	return float64((r.To - r.From) * 60)
}

// WorkingHours holds the working range per weekday. Missing days have no working hours.
type WorkingHours map[time.Weekday]HourRange

// DefaultWorkingHours is Monday to Friday, 8 to 18.
func DefaultWorkingHours() WorkingHours {
	wh := make(WorkingHours, 5)
	for d := time.Monday; d <= time.Friday; d++ {
		wh[d] = HourRange{From: 8, To: 18}
	}
	return wh
}

// IsWorkingHour reports whether hour falls in the working hours of day's weekday.
func IsWorkingHour(day time.Time, hour int, working WorkingHours) bool {
	r, ok := working[day.Weekday()]
	if !ok {
		return false
	}
	return hour >= r.From && hour < r.To
}

// VisibleHours widens the configured range so every single-day event fits. An event
// ending past the hour extends the range by one. The result never exceeds 24.
func VisibleHours(configured HourRange, single []calendar.Event) HourRange {
	from, to := configured.From, configured.To
	for _, e := range single {
		startHour := e.StartTime.Hour()
		endHour := e.EndTime.Hour()
		if e.EndTime.Minute() > 0 {
			endHour++
		}
		if !calendar.SameDay(e.StartTime, e.EndTime) {
			endHour = 24
		}
		from = min(from, startHour)
		to = max(to, endHour)
	}
	return HourRange{From: from, To: min(to, 24)}
}

// Block is the placement of a timed event within a day column, all values in percent.
type Block struct {
	Event  calendar.Event `json:"event"`
	Top    float64        `json:"top"`
	Height float64        `json:"height"`
	Left   float64        `json:"left"`
	Width  float64        `json:"width"`
}

// BlockStyle places an event in lane of laneCount lanes. The start is clipped to the
// beginning of day.
func BlockStyle(e calendar.Event, day time.Time, lane, laneCount int, visible HourRange) Block {
	loc := day.Location()
	dayStart := view.StartOfDay(day)
	start := e.StartTime.In(loc)
	if start.Before(dayStart) {
		start = dayStart
	}
	end := e.EndTime.In(loc)
	startMinutes := float64(start.Hour()*60 + start.Minute())
	top := (startMinutes - float64(visible.From*60)) / visible.minutes() * 100
	height := end.Sub(start).Minutes() / visible.minutes() * 100

	if laneCount < 1 {
		laneCount = 1
	}
	width := 100 / float64(laneCount)
	return Block{
		Event:  e,
		Top:    top,
		Height: height,
		Left:   float64(lane) * width,
		Width:  width,
	}
}

// DayBlocks lays out the timed events of a day column. Events that overlap nothing in
// another lane take the full width.
func DayBlocks(events []calendar.Event, day time.Time, visible HourRange) []Block {
	groups := GroupByLane(events)
	blocks := make([]Block, 0, len(events))
	for lane, group := range groups {
		for _, e := range group {
			if overlapsOtherLane(e, lane, groups) {
				blocks = append(blocks, BlockStyle(e, day, lane, len(groups), visible))
			} else {
				blocks = append(blocks, BlockStyle(e, day, 0, 1, visible))
			}
		}
	}
	return blocks
}

func overlapsOtherLane(e calendar.Event, lane int, groups [][]calendar.Event) bool {
	for i, group := range groups {
		if i == lane {
			continue
		}
		for _, other := range group {
			if e.StartTime.Before(other.EndTime) && other.StartTime.Before(e.EndTime) {
				return true
			}
		}
	}
	return false
}

// TimelinePosition is the offset of now within the visible hours, in percent.
// ok is false when now lies outside them.
func TimelinePosition(now time.Time, visible HourRange) (position float64, ok bool) {
	if now.Hour() < visible.From || now.Hour() >= visible.To {
		return 0, false
	}
	minutes := float64(now.Hour()*60+now.Minute()) - float64(visible.From*60)
	return minutes / visible.minutes() * 100, true
}
