package view

import "fmt"

// Granularity is the active view mode. It determines the visible time window.
type Granularity string

const (
	Day    Granularity = "day"
	Week   Granularity = "week"
	Month  Granularity = "month"
	Year   Granularity = "year"
	Agenda Granularity = "agenda"
)

var Granularities = []Granularity{Day, Week, Month, Year, Agenda}

func ParseGranularity(s string) (Granularity, error) {
	for _, g := range Granularities {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown view: %q", s)
}

type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)
