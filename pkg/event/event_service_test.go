package event

import (
	"context"
	"testing"
	"time"

	"github.com/eventcal/eventcal/internal/event_bus"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = user.User{Id: 1, Uid: "u1", Name: "Jane", Settings: user.DefaultSettings()}

func setupServiceTest(t *testing.T) (context.Context, *EventServiceImpl, *StubEventRepository, *event_bus.EventBus) {
	t.Helper()
	repo := NewStubEventRepository()
	bus := event_bus.NewEventBus()
	return user.WithUser(context.Background(), testUser), NewEventService(repo, bus), repo, bus
}

func intPtr(v int) *int { return &v }

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC)
}

func TestEventServiceImpl_AddEvent(t *testing.T) {
	t.Run("should store event with default color and owner", func(t *testing.T) {
		// given
		ctx, service, repo, _ := setupServiceTest(t)

		// when
		created, err := service.AddEvent(ctx, calendar.Event{Title: "  Lunch ", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0)})

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.UID)
		assert.Equal(t, "Lunch", created.Title)
		assert.Equal(t, calendar.ColorBlue, created.Color)
		assert.Equal(t, "u1", created.User.Id)
		stored, err := repo.GetEvent(ctx, 1, created.UID)
		require.NoError(t, err)
		assert.Equal(t, "Lunch", stored.Title)
	})

	t.Run("should reject invalid events", func(t *testing.T) {
		ctx, service, _, _ := setupServiceTest(t)
		invalid := []calendar.Event{
			{Title: "", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0)},
			{Title: "Backwards", StartTime: at(11, 14, 0), EndTime: at(11, 13, 0)},
			{Title: "Pink", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0), Color: "pink"},
			{Title: "Rule", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0), Recurrence: "FREQ=OFTEN"},
		}
		for _, e := range invalid {
			_, err := service.AddEvent(ctx, e)
			assert.ErrorIs(t, err, ErrInvalidEvent, e.Title)
		}
	})

	t.Run("should require a user", func(t *testing.T) {
		_, service, _, _ := setupServiceTest(t)

		_, err := service.AddEvent(context.Background(), calendar.Event{Title: "x"})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestEventServiceImpl_GetEvents(t *testing.T) {
	t.Run("should expand recurring events and keep plain ones", func(t *testing.T) {
		// given
		ctx, service, _, _ := setupServiceTest(t)
		_, err := service.AddEvent(ctx, calendar.Event{Title: "Standup", StartTime: at(3, 9, 0), EndTime: at(3, 9, 15), Recurrence: "FREQ=DAILY"})
		require.NoError(t, err)
		_, err = service.AddEvent(ctx, calendar.Event{Title: "Lunch", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0)})
		require.NoError(t, err)
		_, err = service.AddEvent(ctx, calendar.Event{Title: "Later", StartTime: at(20, 13, 0), EndTime: at(20, 14, 0)})
		require.NoError(t, err)

		// when
		events, err := service.GetEvents(ctx, at(10, 0, 0), at(12, 23, 59))

		// then
		require.NoError(t, err)
		titles := map[string]int{}
		for _, e := range events {
			titles[e.Title]++
		}
		assert.Equal(t, map[string]int{"Standup": 3, "Lunch": 1}, titles)
	})

	t.Run("should not return events of another user", func(t *testing.T) {
		ctx, service, _, _ := setupServiceTest(t)
		_, err := service.AddEvent(ctx, calendar.Event{Title: "Lunch", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0)})
		require.NoError(t, err)
		otherCtx := user.WithUser(context.Background(), user.User{Id: 2, Uid: "u2"})

		events, err := service.GetEvents(otherCtx, at(1, 0, 0), at(31, 0, 0))

		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestEventServiceImpl_RequestDetail(t *testing.T) {
	ctx, service, _, bus := setupServiceTest(t)
	created, err := service.AddEvent(ctx, calendar.Event{Title: "Lunch", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0)})
	require.NoError(t, err)
	var requested []string
	event_bus.SubscribeTyped(bus, event_bus.CalendarDetailRequested, func(e event_bus.EventT[event_bus.EventDetailRequested]) error {
		requested = append(requested, e.Data.UID)
		return nil
	})

	detail, err := service.RequestDetail(ctx, created.UID)

	require.NoError(t, err)
	assert.Equal(t, "Lunch", detail.Title)
	assert.Equal(t, []string{created.UID}, requested)

	_, err = service.RequestDetail(ctx, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Len(t, requested, 1)
}

func TestEventServiceImpl_GetEvent_Occurrence(t *testing.T) {
	ctx, service, _, _ := setupServiceTest(t)
	created, err := service.AddEvent(ctx, calendar.Event{Title: "Standup", StartTime: at(3, 9, 0), EndTime: at(3, 9, 15), Recurrence: "FREQ=DAILY"})
	require.NoError(t, err)
	uid := calendar.OccurrenceUID(created.UID, at(5, 9, 0))

	occurrence, err := service.GetEvent(ctx, uid)

	require.NoError(t, err)
	assert.Equal(t, uid, occurrence.UID)
	assert.Equal(t, at(5, 9, 0), occurrence.StartTime)
	assert.Equal(t, at(5, 9, 15), occurrence.EndTime)
}

func TestEventServiceImpl_Reschedule(t *testing.T) {
	t.Run("should move event to time slot keeping duration", func(t *testing.T) {
		// given
		ctx, service, repo, bus := setupServiceTest(t)
		created, err := service.AddEvent(ctx, calendar.Event{Title: "Lunch", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0)})
		require.NoError(t, err)
		var published []event_bus.EventRescheduled
		event_bus.SubscribeTyped(bus, event_bus.CalendarEventRescheduled, func(e event_bus.EventT[event_bus.EventRescheduled]) error {
			published = append(published, e.Data)
			return nil
		})

		// when
		moved, err := service.Reschedule(ctx, created.UID, Drop{Date: at(11, 0, 0), Hour: intPtr(15), Minute: intPtr(15)})

		// then
		require.NoError(t, err)
		assert.Equal(t, at(11, 15, 15), moved.StartTime)
		assert.Equal(t, at(11, 16, 15), moved.EndTime)
		stored, err := repo.GetEvent(ctx, 1, created.UID)
		require.NoError(t, err)
		assert.Equal(t, at(11, 15, 15), stored.StartTime)
		require.Len(t, published, 1)
		assert.Equal(t, at(11, 13, 0), published[0].OldStart)
		assert.Equal(t, at(11, 16, 15), published[0].NewEnd)
	})

	t.Run("should move event to another day keeping time of day", func(t *testing.T) {
		ctx, service, _, _ := setupServiceTest(t)
		created, err := service.AddEvent(ctx, calendar.Event{Title: "Trip", StartTime: at(10, 8, 0), EndTime: at(12, 18, 0)})
		require.NoError(t, err)

		moved, err := service.Reschedule(ctx, created.UID, Drop{Date: at(17, 0, 0)})

		require.NoError(t, err)
		assert.Equal(t, at(17, 8, 0), moved.StartTime)
		assert.Equal(t, at(19, 18, 0), moved.EndTime)
	})

	t.Run("should shift the whole series when an occurrence is dropped", func(t *testing.T) {
		ctx, service, repo, _ := setupServiceTest(t)
		created, err := service.AddEvent(ctx, calendar.Event{Title: "Standup", StartTime: at(3, 9, 0), EndTime: at(3, 9, 15), Recurrence: "FREQ=DAILY"})
		require.NoError(t, err)

		moved, err := service.Reschedule(ctx, calendar.OccurrenceUID(created.UID, at(5, 9, 0)), Drop{Date: at(5, 0, 0), Hour: intPtr(10), Minute: intPtr(0)})

		require.NoError(t, err)
		assert.Equal(t, at(5, 10, 0), moved.StartTime)
		assert.Equal(t, calendar.OccurrenceUID(created.UID, at(5, 10, 0)), moved.UID)
		series, err := repo.GetEvent(ctx, 1, created.UID)
		require.NoError(t, err)
		assert.Equal(t, at(3, 10, 0), series.StartTime)
		assert.Equal(t, at(3, 10, 15), series.EndTime)
	})

	t.Run("should return not found for unknown event", func(t *testing.T) {
		ctx, service, _, _ := setupServiceTest(t)

		_, err := service.Reschedule(ctx, "missing", Drop{Date: at(5, 0, 0)})

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestEventServiceImpl_RequestAdd(t *testing.T) {
	ctx, service, _, bus := setupServiceTest(t)
	var requests []event_bus.AddRequested
	event_bus.SubscribeTyped(bus, event_bus.CalendarAddRequested, func(e event_bus.EventT[event_bus.AddRequested]) error {
		requests = append(requests, e.Data)
		return nil
	})

	slot := service.RequestAdd(ctx, AddRequest{Date: at(11, 0, 0), Hour: intPtr(9), Minute: intPtr(40)})
	day := service.RequestAdd(ctx, AddRequest{Date: at(12, 0, 0)})

	assert.Equal(t, at(11, 9, 30), slot.StartTime)
	assert.Equal(t, at(11, 10, 0), slot.EndTime)
	assert.Equal(t, at(12, 0, 0), day.StartTime)
	require.Len(t, requests, 2)
	assert.Nil(t, requests[1].Hour)
	assert.Equal(t, 40, *requests[0].Minute)
}

func TestEventServiceImpl_DeleteEvent(t *testing.T) {
	ctx, service, _, _ := setupServiceTest(t)
	created, err := service.AddEvent(ctx, calendar.Event{Title: "Lunch", StartTime: at(11, 13, 0), EndTime: at(11, 14, 0)})
	require.NoError(t, err)

	require.NoError(t, service.DeleteEvent(ctx, created.UID))

	_, err = service.GetEvent(ctx, created.UID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, service.DeleteEvent(ctx, created.UID), ErrEventNotFound)
}
