package integration

import (
	"context"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
)

// Source loads the events of one connected integration.
type Source interface {
	Events(ctx context.Context, integration Integration, from, to time.Time) ([]calendar.Event, error)
}

// Sources maps integration types to their event source. Types without an entry
// contribute no events.
type Sources map[Type]Source
