package calendar_provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventcal/eventcal/internal/event_bus"
	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/integration"
	"github.com/eventcal/eventcal/pkg/storage"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = user.User{Id: 1, Uid: "u1", Name: "Jane"}

var (
	from = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
)

type stubManual struct {
	events []calendar.Event
	err    error
}

func (s *stubManual) GetEvents(_ context.Context, _, _ time.Time) ([]calendar.Event, error) {
	return append([]calendar.Event(nil), s.events...), s.err
}

type stubSyncer struct {
	events map[integration.Type][]calendar.Event
	errs   map[integration.Type]error
	calls  []string
}

func (s *stubSyncer) HasSource(t integration.Type) bool {
	_, hasEvents := s.events[t]
	_, hasErr := s.errs[t]
	return hasEvents || hasErr
}

func (s *stubSyncer) Events(_ context.Context, userUid string, i integration.Integration, _, _ time.Time) ([]calendar.Event, error) {
	s.calls = append(s.calls, userUid+"/"+i.Id)
	if err := s.errs[i.Type]; err != nil {
		return nil, err
	}
	return s.events[i.Type], nil
}

func at(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func setupProviderTest(t *testing.T, manual *stubManual, syncer *stubSyncer) (context.Context, *CalendarProvider, *integration.ServiceImpl) {
	t.Helper()
	integrations := integration.NewService(storage.NewMemory(), event_bus.NewEventBus(), utils.NewMockClock(from))
	ctx := user.WithUser(context.Background(), testUser)
	return ctx, NewCalendarProvider(manual, integrations, syncer), integrations
}

func TestCalendarProvider_GetEvents(t *testing.T) {
	t.Run("should merge manual and connected integration events by start", func(t *testing.T) {
		// given
		manual := &stubManual{events: []calendar.Event{
			{UID: "m1", Title: "Lunch", StartTime: at(5, 12), EndTime: at(5, 13)},
		}}
		syncer := &stubSyncer{events: map[integration.Type][]calendar.Event{
			integration.TypeClickUp: {{UID: "clickup-1:t1", Title: "Task", StartTime: at(3, 9), EndTime: at(3, 10)}},
		}}
		ctx, provider, integrations := setupProviderTest(t, manual, syncer)
		_, err := integrations.Connect(ctx, integration.TypeClickUp)
		require.NoError(t, err)

		// when
		events, err := provider.GetEvents(ctx, from, to)

		// then
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "clickup-1:t1", events[0].UID)
		assert.Equal(t, "m1", events[1].UID)
		assert.Equal(t, calendar.UserRef{Id: "u1", Name: "Jane"}, events[0].User)
	})

	t.Run("should skip disconnected integrations", func(t *testing.T) {
		syncer := &stubSyncer{events: map[integration.Type][]calendar.Event{
			integration.TypeClickUp: {{UID: "clickup-1:t1", StartTime: at(3, 9), EndTime: at(3, 10)}},
		}}
		ctx, provider, integrations := setupProviderTest(t, &stubManual{}, syncer)
		connected, err := integrations.Connect(ctx, integration.TypeClickUp)
		require.NoError(t, err)
		require.NoError(t, integrations.Disconnect(ctx, connected.Id))

		events, err := provider.GetEvents(ctx, from, to)

		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Empty(t, syncer.calls)
	})

	t.Run("should leave out a failing integration", func(t *testing.T) {
		manual := &stubManual{events: []calendar.Event{
			{UID: "m1", StartTime: at(5, 12), EndTime: at(5, 13)},
		}}
		syncer := &stubSyncer{
			events: map[integration.Type][]calendar.Event{
				integration.TypeClickUp: {{UID: "clickup-1:t1", StartTime: at(3, 9), EndTime: at(3, 10)}},
			},
			errs: map[integration.Type]error{integration.TypeGoogleCalendar: errors.New("token expired")},
		}
		ctx, provider, integrations := setupProviderTest(t, manual, syncer)
		_, err := integrations.Connect(ctx, integration.TypeGoogleCalendar)
		require.NoError(t, err)
		_, err = integrations.Connect(ctx, integration.TypeClickUp)
		require.NoError(t, err)

		events, err := provider.GetEvents(ctx, from, to)

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Len(t, syncer.calls, 2)
	})

	t.Run("should fail when manual events cannot be loaded", func(t *testing.T) {
		ctx, provider, _ := setupProviderTest(t, &stubManual{err: errors.New("db down")}, &stubSyncer{})

		_, err := provider.GetEvents(ctx, from, to)

		assert.Error(t, err)
	})

	t.Run("should require a user", func(t *testing.T) {
		_, provider, _ := setupProviderTest(t, &stubManual{}, &stubSyncer{})

		_, err := provider.GetEvents(context.Background(), from, to)

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}
