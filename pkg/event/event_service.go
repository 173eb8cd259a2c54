package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventcal/eventcal/internal/event_bus"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/reschedule"
	"github.com/eventcal/eventcal/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidEvent = errors.New("invalid event")

// Drop is the target of a drag and drop. A drop on a month cell has no Hour.
type Drop struct {
	Date   time.Time
	Hour   *int
	Minute *int
}

// AddRequest asks for a new event at a day, or at a time slot when Hour is set.
type AddRequest struct {
	Date   time.Time
	Hour   *int
	Minute *int
}

const defaultDraftDuration = 30 * time.Minute

type EventServiceImpl struct {
	repo     EventRepository
	eventBus *event_bus.EventBus
}

func NewEventService(repo EventRepository, eventBus *event_bus.EventBus) *EventServiceImpl {
	return &EventServiceImpl{
		repo:     repo,
		eventBus: eventBus,
	}
}

func (s *EventServiceImpl) AddEvent(ctx context.Context, event calendar.Event) (*calendar.Event, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	event, err = normalize(event)
	if err != nil {
		return nil, err
	}

	eventUid, err := s.repo.StoreEvent(ctx, currentUser.Id, event)
	if err != nil {
		return nil, fmt.Errorf("failed to store event: %w", err)
	}
	event.UID = eventUid
	event.User = calendar.UserRef{Id: currentUser.Uid, Name: currentUser.Name, PicturePath: currentUser.PicturePath}

	return &event, nil
}

// GetEvents returns the current user's stored events overlapping [from, to], with
// recurring events expanded into occurrences.
func (s *EventServiceImpl) GetEvents(ctx context.Context, from time.Time, to time.Time) ([]calendar.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	stored, err := s.repo.GetEvents(ctx, userId, from, to)
	if err != nil {
		return nil, err
	}
	events := make([]calendar.Event, 0, len(stored))
	for _, e := range stored {
		occurrences, err := calendar.Expand(e, from, to)
		if err != nil {
			log.Warnf("skipping event %s with invalid recurrence: %v", e.UID, err)
			continue
		}
		events = append(events, occurrences...)
	}
	return events, nil
}

// GetEvent returns a stored event or a single occurrence of a recurring one.
func (s *EventServiceImpl) GetEvent(ctx context.Context, uid string) (*calendar.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	seriesUID, occurrenceStart, isOccurrence := calendar.SplitOccurrenceUID(uid)
	event, err := s.repo.GetEvent(ctx, userId, seriesUID)
	if err != nil {
		return nil, err
	}
	if isOccurrence {
		duration := event.Duration()
		event.UID = uid
		event.StartTime = occurrenceStart.In(event.StartTime.Location())
		event.EndTime = event.StartTime.Add(duration)
	}
	return &event, nil
}

// RequestDetail loads the event and publishes a detail request for it.
func (s *EventServiceImpl) RequestDetail(ctx context.Context, uid string) (*calendar.Event, error) {
	event, err := s.GetEvent(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, event_bus.CalendarDetailRequested, event_bus.EventDetailRequested{UID: uid})
	return event, nil
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, event calendar.Event) (*calendar.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	event, err = normalize(event)
	if err != nil {
		return nil, err
	}
	event.UID, _, _ = calendar.SplitOccurrenceUID(event.UID)
	if err = s.repo.UpdateEvent(ctx, userId, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &event, nil
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, uid string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	seriesUID, _, _ := calendar.SplitOccurrenceUID(uid)
	return s.repo.DeleteEvent(ctx, userId, seriesUID)
}

// Reschedule moves an event to the drop target keeping its duration. Dropping an
// occurrence of a recurring event shifts the whole series by the same offset.
// No collision checks are made.
func (s *EventServiceImpl) Reschedule(ctx context.Context, uid string, drop Drop) (*calendar.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	dropped, err := s.GetEvent(ctx, uid)
	if err != nil {
		return nil, err
	}

	var moved calendar.Event
	if drop.Hour != nil {
		minute := 0
		if drop.Minute != nil {
			minute = *drop.Minute
		}
		moved = reschedule.ToSlot(*dropped, drop.Date, *drop.Hour, minute)
	} else {
		moved = reschedule.ToDay(*dropped, drop.Date)
	}
	offset := moved.StartTime.Sub(dropped.StartTime)

	var updated calendar.Event
	err = s.repo.WithTransaction(ctx, func(repo EventRepository) error {
		seriesUID, _, _ := calendar.SplitOccurrenceUID(uid)
		series, err := repo.GetEvent(ctx, userId, seriesUID)
		if err != nil {
			return err
		}
		series.StartTime = series.StartTime.Add(offset)
		series.EndTime = series.EndTime.Add(offset)
		if err := repo.UpdateEvent(ctx, userId, series); err != nil {
			return err
		}
		updated = series
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule event: %w", err)
	}

	s.publish(ctx, event_bus.CalendarEventRescheduled, event_bus.EventRescheduled{
		UID:      uid,
		OldStart: dropped.StartTime,
		OldEnd:   dropped.EndTime,
		NewStart: moved.StartTime,
		NewEnd:   moved.EndTime,
	})
	if updated.Recurrence != "" {
		moved.UID = calendar.OccurrenceUID(updated.UID, moved.StartTime)
		return &moved, nil
	}
	return &updated, nil
}

// RequestAdd publishes an add request and returns a draft event for the slot.
func (s *EventServiceImpl) RequestAdd(ctx context.Context, req AddRequest) calendar.Event {
	y, m, d := req.Date.Date()
	hour, minute := 0, 0
	if req.Hour != nil {
		hour = *req.Hour
		if req.Minute != nil {
			minute = reschedule.SnapToQuarter(*req.Minute)
		}
	}
	start := time.Date(y, m, d, hour, minute, 0, 0, req.Date.Location())
	s.publish(ctx, event_bus.CalendarAddRequested, event_bus.AddRequested{
		Date:   req.Date,
		Hour:   req.Hour,
		Minute: req.Minute,
	})
	return calendar.Event{
		StartTime: start,
		EndTime:   start.Add(defaultDraftDuration),
		Color:     calendar.ColorBlue,
	}
}

func (s *EventServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Errorf("failed to publish %s: %v", eventType, err)
	}
}

func normalize(event calendar.Event) (calendar.Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return calendar.Event{}, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if event.EndTime.Before(event.StartTime) {
		return calendar.Event{}, fmt.Errorf("%w: end must not be before start", ErrInvalidEvent)
	}
	if event.Color == "" {
		event.Color = calendar.ColorBlue
	}
	if _, err := calendar.ParseColor(string(event.Color)); err != nil {
		return calendar.Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if event.Recurrence != "" {
		if _, err := calendar.ParseRecurrence(event.Recurrence, event.StartTime); err != nil {
			return calendar.Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
	}
	return event, nil
}
