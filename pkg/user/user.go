package user

import (
	"time"

	"github.com/eventcal/eventcal/pkg/layout"
)

type User struct {
	Id          int
	Uid         string
	Name        string
	PicturePath string
	Settings    Settings
}

// BadgeVariant controls how event badges are drawn in month and agenda views.
type BadgeVariant string

const (
	BadgeDot     BadgeVariant = "dot"
	BadgeColored BadgeVariant = "colored"
	BadgeMixed   BadgeVariant = "mixed"
)

func (b BadgeVariant) Valid() bool {
	return b == BadgeDot || b == BadgeColored || b == BadgeMixed
}

type Settings struct {
	Timezone     string
	WeekFirstDay time.Weekday
	BadgeVariant BadgeVariant
	WorkingHours layout.WorkingHours
	VisibleHours layout.HourRange
}

// Location resolves the settings timezone, falling back to UTC when it is unknown.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func DefaultSettings() Settings {
	return Settings{
		Timezone:     "UTC",
		WeekFirstDay: time.Sunday,
		BadgeVariant: BadgeColored,
		WorkingHours: layout.DefaultWorkingHours(),
		VisibleHours: layout.HourRange{From: 0, To: 24},
	}
}
