package calendar_view

import (
	"context"
	"testing"
	"time"

	"github.com/eventcal/eventcal/internal/event_bus"
	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/layout"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/eventcal/eventcal/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = user.User{Id: 1, Uid: "u1", Name: "Jane", Settings: user.DefaultSettings()}

var now = time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

type stubCalendar struct {
	events []calendar.Event
	from   time.Time
	to     time.Time
}

func (s *stubCalendar) GetEvents(_ context.Context, from, to time.Time) ([]calendar.Event, error) {
	s.from, s.to = from, to
	return s.events, nil
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC)
}

func event(uid string, start, end time.Time) calendar.Event {
	return calendar.Event{UID: uid, Title: uid, StartTime: start, EndTime: end, Color: calendar.ColorBlue,
		User: calendar.UserRef{Id: "u1", Name: "Jane"}}
}

func setupViewTest(t *testing.T, events ...calendar.Event) (context.Context, *ServiceImpl, *stubCalendar, *event_bus.EventBus, *view.Cache) {
	t.Helper()
	cal := &stubCalendar{events: events}
	bus := event_bus.NewEventBus()
	cache := view.NewCache(16)
	service := NewService(cal, cache, bus, utils.NewMockClock(now))
	return user.WithUser(context.Background(), testUser), service, cal, bus, cache
}

func TestServiceImpl_Build_Month(t *testing.T) {
	t.Run("should slot a multi-day event above an overlapping single-day one", func(t *testing.T) {
		// given
		a := event("A", at(3, 9, 0), at(5, 10, 0))
		b := event("B", at(4, 10, 0), at(4, 11, 0))
		ctx, service, cal, _, _ := setupViewTest(t, a, b)

		// when
		result, err := service.Build(ctx, at(12, 0, 0), view.Month, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, at(1, 0, 0), cal.from)
		require.Len(t, result.Month, 42)
		tuesday := result.Month[9]
		assert.Equal(t, 4, tuesday.Day)
		require.Len(t, tuesday.Events, 2)
		assert.Equal(t, "A", tuesday.Events[0].Event.UID)
		assert.Equal(t, 0, tuesday.Events[0].Lane)
		assert.Equal(t, layout.BarMiddle, tuesday.Events[0].Position)
		assert.Equal(t, "B", tuesday.Events[1].Event.UID)
		assert.Equal(t, 1, tuesday.Events[1].Lane)
		assert.Equal(t, 0, tuesday.Overflow)
		assert.Len(t, result.Multi, 1)
		assert.Len(t, result.Single, 1)
		assert.Nil(t, result.Days)
	})

	t.Run("should count overflow beyond three lanes", func(t *testing.T) {
		events := []calendar.Event{
			event("e1", at(20, 0, 0), at(20, 23, 59)),
			event("e2", at(20, 0, 0), at(20, 23, 59)),
			event("e3", at(20, 0, 0), at(20, 23, 59)),
			event("e4", at(20, 0, 0), at(20, 23, 59)),
		}
		ctx, service, _, _, _ := setupViewTest(t, events...)

		result, err := service.Build(ctx, at(20, 0, 0), view.Month, "")

		require.NoError(t, err)
		cell := result.Month[6+19]
		assert.Equal(t, 20, cell.Day)
		assert.Len(t, cell.Events, 4)
		assert.Equal(t, 1, cell.Overflow)
		assert.Equal(t, -1, cell.Events[3].Lane)
	})
}

func TestServiceImpl_Build_Week(t *testing.T) {
	t.Run("should lay out overlapping events side by side", func(t *testing.T) {
		// given
		c := event("C", at(12, 9, 0), at(12, 10, 0))
		d := event("D", at(12, 9, 30), at(12, 10, 30))
		ctx, service, _, _, _ := setupViewTest(t, c, d)

		// when
		result, err := service.Build(ctx, at(12, 0, 0), view.Week, "")

		// then
		require.NoError(t, err)
		require.Len(t, result.Days, 7)
		assert.Equal(t, at(9, 0, 0), result.Days[0].Date)
		wednesday := result.Days[3]
		assert.Equal(t, layout.Lanes{"C": 0, "D": 1}, wednesday.Lanes)
		require.Len(t, wednesday.Blocks, 2)
		assert.Equal(t, "C", wednesday.Blocks[0].Event.UID)
		assert.InDelta(t, 37.5, wednesday.Blocks[0].Top, 0.001)
		assert.InDelta(t, 50.0, wednesday.Blocks[0].Width, 0.001)
		assert.InDelta(t, 50.0, wednesday.Blocks[1].Left, 0.001)
		require.NotNil(t, wednesday.WorkingHours)
		assert.Equal(t, layout.HourRange{From: 8, To: 18}, *wednesday.WorkingHours)
		assert.Nil(t, result.Days[0].WorkingHours)
		require.NotNil(t, result.Timeline)
		assert.InDelta(t, 50.0, *result.Timeline, 0.001)
		assert.Equal(t, "Mar 9, 2025 - Mar 15, 2025", result.RangeText)
	})

	t.Run("should stack multi-day bars into rows", func(t *testing.T) {
		long := event("long", at(10, 9, 0), at(13, 9, 0))
		short := event("short", at(11, 9, 0), at(12, 9, 0))
		ctx, service, _, _, _ := setupViewTest(t, long, short)

		result, err := service.Build(ctx, at(12, 0, 0), view.Week, "")

		require.NoError(t, err)
		require.Len(t, result.WeekRows, 2)
		assert.Equal(t, "long", result.WeekRows[0][0].Event.UID)
		assert.Equal(t, layout.BarFirst, result.WeekRows[0][0].Positions[1])
		assert.Equal(t, layout.BarLast, result.WeekRows[0][0].Positions[4])
		assert.Equal(t, layout.BarNone, result.WeekRows[0][0].Positions[5])
	})

	t.Run("should hide the timeline outside the shown days", func(t *testing.T) {
		ctx, service, _, _, _ := setupViewTest(t)

		result, err := service.Build(ctx, at(20, 0, 0), view.Week, "")

		require.NoError(t, err)
		assert.Nil(t, result.Timeline)
	})
}

func TestServiceImpl_Build_Day(t *testing.T) {
	t.Run("should keep only the focused day and report events in progress", func(t *testing.T) {
		ongoing := event("ongoing", at(12, 11, 0), at(12, 13, 0))
		tomorrow := event("tomorrow", at(13, 11, 0), at(13, 13, 0))
		ctx, service, _, _, _ := setupViewTest(t, ongoing, tomorrow)

		result, err := service.Build(ctx, at(12, 8, 0), view.Day, "")

		require.NoError(t, err)
		require.Len(t, result.Days, 1)
		require.Len(t, result.Single, 1)
		assert.Equal(t, "ongoing", result.Single[0].UID)
		require.Len(t, result.Current, 1)
		assert.Equal(t, 1, result.EventsCount)
		assert.Equal(t, "Mar 12, 2025", result.RangeText)
	})

	t.Run("should normalize events into the user's timezone", func(t *testing.T) {
		late := event("late", at(3, 23, 30), at(3, 23, 45))
		ctx, service, _, _, _ := setupViewTest(t, late)
		warsaw := testUser
		warsaw.Settings.Timezone = "Europe/Warsaw"
		ctx = user.WithUser(ctx, warsaw)
		loc, err := time.LoadLocation("Europe/Warsaw")
		require.NoError(t, err)

		result, err := service.Build(ctx, time.Date(2025, 3, 4, 12, 0, 0, 0, loc), view.Day, "")

		require.NoError(t, err)
		require.Len(t, result.Single, 1)
		assert.Equal(t, loc.String(), result.Single[0].StartTime.Location().String())
		assert.Equal(t, 0, result.Single[0].StartTime.Hour())
	})
}

func TestServiceImpl_Build_Filters(t *testing.T) {
	mine := event("mine", at(12, 9, 0), at(12, 10, 0))
	theirs := event("theirs", at(12, 9, 0), at(12, 10, 0))
	theirs.User = calendar.UserRef{Id: "u2", Name: "John"}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{name: "should keep everything without a filter", filter: "", want: []string{"mine", "theirs"}},
		{name: "should keep everything for all", filter: AllUsers, want: []string{"mine", "theirs"}},
		{name: "should keep only the selected owner", filter: "u2", want: []string{"theirs"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, service, _, _, _ := setupViewTest(t, mine, theirs)

			result, err := service.Build(ctx, at(12, 0, 0), view.Day, tt.filter)

			require.NoError(t, err)
			uids := make([]string, 0)
			for _, e := range result.Single {
				uids = append(uids, e.UID)
			}
			assert.Equal(t, tt.want, uids)
		})
	}
}

func TestServiceImpl_Build_YearAndAgenda(t *testing.T) {
	a := event("A", at(3, 9, 0), at(5, 10, 0))
	b := event("B", at(4, 10, 0), at(4, 11, 0))

	t.Run("should count events per day of the year", func(t *testing.T) {
		ctx, service, _, _, _ := setupViewTest(t, a, b)

		result, err := service.Build(ctx, at(12, 0, 0), view.Year, "")

		require.NoError(t, err)
		require.Len(t, result.Year, 12)
		march := result.Year[2]
		assert.Equal(t, at(1, 0, 0), march.Month)
		assert.Equal(t, 2, march.Days[6+3].Count)
		assert.Equal(t, 1, march.Days[6+2].Count)
		assert.Equal(t, 0, march.Days[0].Count)
	})

	t.Run("should group agenda days", func(t *testing.T) {
		ctx, service, _, _, _ := setupViewTest(t, a, b)

		result, err := service.Build(ctx, at(12, 0, 0), view.Agenda, "")

		require.NoError(t, err)
		require.Len(t, result.Agenda, 3)
		assert.Equal(t, at(4, 0, 0), result.Agenda[1].Date)
		assert.Len(t, result.Agenda[1].Events, 1)
		assert.Len(t, result.Agenda[1].MultiDay, 1)
	})
}

func TestServiceImpl_Build_Notifications(t *testing.T) {
	t.Run("should publish the view change", func(t *testing.T) {
		ctx, service, _, bus, _ := setupViewTest(t)
		var received []event_bus.ViewChanged
		event_bus.SubscribeTyped(bus, event_bus.CalendarViewChanged, func(e event_bus.EventT[event_bus.ViewChanged]) error {
			received = append(received, e.Data)
			return nil
		})

		_, err := service.Build(ctx, at(12, 0, 0), view.Week, "")

		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, "week", received[0].Granularity)
		assert.Equal(t, at(12, 0, 0), received[0].Date)
	})

	t.Run("should reuse the range filter result for identical requests", func(t *testing.T) {
		ctx, service, _, _, cache := setupViewTest(t, event("A", at(3, 9, 0), at(3, 10, 0)))

		_, err := service.Build(ctx, at(12, 0, 0), view.Month, "")
		require.NoError(t, err)
		_, err = service.Build(ctx, at(12, 0, 0), view.Month, "")
		require.NoError(t, err)

		assert.Equal(t, 1, cache.Len())
	})

	t.Run("should require a user", func(t *testing.T) {
		_, service, _, _, _ := setupViewTest(t)

		_, err := service.Build(context.Background(), at(12, 0, 0), view.Month, "")

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}
