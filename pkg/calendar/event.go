package calendar

import (
	"fmt"
	"time"
)

type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorGray   Color = "gray"
)

var Colors = []Color{ColorBlue, ColorGreen, ColorRed, ColorYellow, ColorPurple, ColorOrange, ColorGray}

// ParseColor converts a palette name to a Color. Unknown names are rejected.
func ParseColor(s string) (Color, error) {
	for _, c := range Colors {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown event color: %q", s)
}

type Event struct {
	UID         string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Color       Color
	User        UserRef
	Integration IntegrationRef
	// Recurrence is an optional RRULE (without the "RRULE:" prefix) for manual events.
	Recurrence string
}

// UserRef identifies the owner of an event.
type UserRef struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	PicturePath string `json:"picturePath,omitempty"`
}

// IntegrationRef describes the integration an event was imported from.
type IntegrationRef struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	ExternalId string `json:"externalId,omitempty"`
	URL        string `json:"url,omitempty"`
}

// IsMultiDay reports whether the event starts and ends on different calendar days.
// Both instants are compared in the location of the start time.
func (e Event) IsMultiDay() bool {
	return !SameDay(e.StartTime, e.EndTime.In(e.StartTime.Location()))
}

// Duration is the span between start and end.
func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// In returns a copy of the event with both instants converted to loc.
func (e Event) In(loc *time.Location) Event {
	e.StartTime = e.StartTime.In(loc)
	e.EndTime = e.EndTime.In(loc)
	return e
}

// SameDay reports whether a and b fall on the same calendar date in their own locations.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
