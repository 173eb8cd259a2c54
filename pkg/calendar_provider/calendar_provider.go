package calendar_provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/integration"
	"github.com/eventcal/eventcal/pkg/user"
	log "github.com/sirupsen/logrus"
)

// IntegrationEvents serves the events of a single integration.
type IntegrationEvents interface {
	HasSource(t integration.Type) bool
	Events(ctx context.Context, userUid string, integration integration.Integration, from, to time.Time) ([]calendar.Event, error)
}

// CalendarProvider merges the user's own events with the events of every connected
// integration that has a source.
type CalendarProvider struct {
	manual       calendar.Calendar
	integrations integration.Service
	syncer       IntegrationEvents
}

func NewCalendarProvider(manual calendar.Calendar, integrations integration.Service, syncer IntegrationEvents) *CalendarProvider {
	return &CalendarProvider{
		manual:       manual,
		integrations: integrations,
		syncer:       syncer,
	}
}

// GetEvents returns all events overlapping [from, to] ordered by start. A failing
// integration is logged and left out.
func (c *CalendarProvider) GetEvents(ctx context.Context, from time.Time, to time.Time) ([]calendar.Event, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user when getting events: %w", err)
	}

	events, err := c.manual.GetEvents(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get manual events: %w", err)
	}

	integrations, err := c.integrations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	owner := calendar.UserRef{Id: currentUser.Uid, Name: currentUser.Name, PicturePath: currentUser.PicturePath}
	for _, i := range integrations {
		if !i.IsConnected || !c.syncer.HasSource(i.Type) {
			continue
		}
		imported, err := c.syncer.Events(ctx, currentUser.Uid, i, from, to)
		if err != nil {
			log.Warnf("skipping integration %s: %v", i.Id, err)
			continue
		}
		for _, e := range imported {
			e.User = owner
			events = append(events, e)
		}
	}

	sort.SliceStable(events, func(a, b int) bool {
		return events[a].StartTime.Before(events[b].StartTime)
	})
	return events, nil
}
