package calendar

import (
	"context"
	"time"
)

// Calendar is the read side every event source of the application exposes.
type Calendar interface {
	GetEvents(ctx context.Context, from time.Time, to time.Time) ([]Event, error)
}
