package clickup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/integration"
	log "github.com/sirupsen/logrus"
)

var ErrUnauthenticated = fmt.Errorf("%w: clickup API key is missing or rejected", integration.ErrMissingCredentials)

// maxPages bounds the paging per workspace.
const maxPages = 50

// Source turns ClickUp tasks with a due date into calendar events.
type Source struct {
	client Client
}

func NewSource(client Client) *Source {
	return &Source{client: client}
}

func (s *Source) Events(ctx context.Context, in integration.Integration, from time.Time, to time.Time) ([]calendar.Event, error) {
	if in.APIKey == "" {
		return nil, ErrUnauthenticated
	}

	workspaces, err := s.client.GetAuthorizedWorkspaces(ctx, in.APIKey)
	if err != nil {
		return nil, err
	}

	events := make([]calendar.Event, 0)
	for _, workspace := range workspaces {
		for page := 0; page < maxPages; page++ {
			tasks, err := s.client.GetTasksDueBetween(ctx, in.APIKey, workspace.Id, page, from, to)
			if err != nil {
				return nil, err
			}
			// If no tasks are returned, we've reached the end
			if len(tasks) == 0 {
				break
			}
			for _, task := range tasks {
				if event, ok := taskToEvent(in, task); ok {
					events = append(events, event)
				}
			}
		}
	}
	log.Debugf("loaded %d ClickUp task(s) for integration %s", len(events), in.Id)
	return events, nil
}

// taskToEvent converts a task with a due date. The event starts at the task's start date,
// or at the due date when there is none, and ends at the due date.
func taskToEvent(in integration.Integration, task Task) (calendar.Event, bool) {
	due, ok := parseMillis(task.DueDate)
	if !ok {
		return calendar.Event{}, false
	}
	start, ok := parseMillis(task.StartDate)
	if !ok || start.After(due) {
		start = due
	}
	description := task.Description
	if task.Status.Status != "" {
		description = fmt.Sprintf("[%s] %s", task.Status.Status, description)
	}
	return calendar.Event{
		UID:         in.EventUID(task.Id),
		Title:       task.Name,
		Description: description,
		StartTime:   start,
		EndTime:     due,
		Color:       in.EventColor(),
		Integration: in.Ref(task.Id, task.URL),
	}, true
}

func parseMillis(value *string) (time.Time, bool) {
	if value == nil || *value == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(*value, 10, 64)
	if err != nil {
		log.Warnf("invalid ClickUp timestamp %q", *value)
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
