package calendar_view

import (
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/layout"
	"github.com/eventcal/eventcal/pkg/view"
)

// CalendarView is everything a renderer needs to draw one view. Only the section
// matching Granularity is filled.
type CalendarView struct {
	Granularity  view.Granularity    `json:"view"`
	Date         time.Time           `json:"date"`
	RangeText    string              `json:"rangeText"`
	Window       WindowDTO           `json:"window"`
	EventsCount  int                 `json:"eventsCount"`
	BadgeVariant string              `json:"badgeVariant"`
	Single       []calendar.EventDTO `json:"singleDayEvents"`
	Multi        []calendar.EventDTO `json:"multiDayEvents"`
	Current      []calendar.EventDTO `json:"currentEvents"`

	VisibleHours *layout.HourRange `json:"visibleHours,omitempty"`
	Days         []DayColumn       `json:"days,omitempty"`
	WeekRows     [][]WeekBarDTO    `json:"weekRows,omitempty"`
	Month        []MonthCellDTO    `json:"month,omitempty"`
	Year         []YearMonthDTO    `json:"year,omitempty"`
	Agenda       []AgendaDayDTO    `json:"agenda,omitempty"`

	// Timeline is the current time indicator offset in percent, when now is on screen.
	Timeline *float64 `json:"timeline,omitempty"`
}

type WindowDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DayColumn is one column of the day or week time grid.
type DayColumn struct {
	Date         time.Time           `json:"date"`
	Lanes        layout.Lanes        `json:"lanes"`
	Blocks       []BlockDTO          `json:"blocks"`
	MultiDay     []calendar.EventDTO `json:"multiDayEvents"`
	WorkingHours *layout.HourRange   `json:"workingHours,omitempty"`
}

type BlockDTO struct {
	Event  calendar.EventDTO `json:"event"`
	Top    float64           `json:"top"`
	Height float64           `json:"height"`
	Left   float64           `json:"left"`
	Width  float64           `json:"width"`
}

type WeekBarDTO struct {
	Event      calendar.EventDTO `json:"event"`
	StartIndex int               `json:"startIndex"`
	EndIndex   int               `json:"endIndex"`

	// Positions holds the bar shape for each of the seven days of the week.
	Positions [7]layout.BarPosition `json:"positions"`
}

type MonthCellDTO struct {
	Date         time.Time           `json:"date"`
	Day          int                 `json:"day"`
	CurrentMonth bool                `json:"currentMonth"`
	Events       []MonthCellEventDTO `json:"events"`
	Overflow     int                 `json:"overflow"`
}

type MonthCellEventDTO struct {
	Event    calendar.EventDTO  `json:"event"`
	Lane     int                `json:"lane"`
	MultiDay bool               `json:"multiDay"`
	Position layout.BarPosition `json:"position"`
}

type YearMonthDTO struct {
	Month time.Time    `json:"month"`
	Days  []YearDayDTO `json:"days"`
}

type YearDayDTO struct {
	Date         time.Time `json:"date"`
	CurrentMonth bool      `json:"currentMonth"`
	Count        int       `json:"count"`
}

type AgendaDayDTO struct {
	Date     time.Time           `json:"date"`
	Events   []calendar.EventDTO `json:"events"`
	MultiDay []calendar.EventDTO `json:"multiDayEvents"`
}

func blocksToDTO(blocks []layout.Block) []BlockDTO {
	dtos := make([]BlockDTO, 0, len(blocks))
	for _, b := range blocks {
		dtos = append(dtos, BlockDTO{
			Event:  calendar.EventToDTO(b.Event),
			Top:    b.Top,
			Height: b.Height,
			Left:   b.Left,
			Width:  b.Width,
		})
	}
	return dtos
}

func weekRowsToDTO(rows [][]layout.WeekBar) [][]WeekBarDTO {
	dtos := make([][]WeekBarDTO, 0, len(rows))
	for _, row := range rows {
		bars := make([]WeekBarDTO, 0, len(row))
		for _, bar := range row {
			dto := WeekBarDTO{
				Event:      calendar.EventToDTO(bar.Event),
				StartIndex: bar.StartIndex,
				EndIndex:   bar.EndIndex,
			}
			for i := range dto.Positions {
				dto.Positions[i] = bar.Position(i)
			}
			bars = append(bars, dto)
		}
		dtos = append(dtos, bars)
	}
	return dtos
}

func monthGridToDTO(grid []layout.DayCell) []MonthCellDTO {
	dtos := make([]MonthCellDTO, 0, len(grid))
	for _, cell := range grid {
		events := make([]MonthCellEventDTO, 0, len(cell.Events))
		for _, ce := range cell.Events {
			events = append(events, MonthCellEventDTO{
				Event:    calendar.EventToDTO(ce.Event),
				Lane:     ce.Lane,
				MultiDay: ce.MultiDay,
				Position: ce.Position,
			})
		}
		dtos = append(dtos, MonthCellDTO{
			Date:         cell.Date,
			Day:          cell.Day,
			CurrentMonth: cell.CurrentMonth,
			Events:       events,
			Overflow:     cell.Overflow,
		})
	}
	return dtos
}

func agendaToDTO(days []view.AgendaDay) []AgendaDayDTO {
	dtos := make([]AgendaDayDTO, 0, len(days))
	for _, d := range days {
		dtos = append(dtos, AgendaDayDTO{
			Date:     d.Date,
			Events:   calendar.EventsToDTO(d.Events),
			MultiDay: calendar.EventsToDTO(d.MultiDay),
		})
	}
	return dtos
}
