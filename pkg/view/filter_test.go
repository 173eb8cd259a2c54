package view

import (
	"testing"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(uid string, start, end time.Time) calendar.Event {
	return calendar.Event{UID: uid, Title: uid, StartTime: start, EndTime: end, Color: calendar.ColorBlue}
}

func uids(events []calendar.Event) []string {
	result := make([]string, 0, len(events))
	for _, e := range events {
		result = append(result, e.UID)
	}
	return result
}

func TestFilterVisible(t *testing.T) {
	focus := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	events := []calendar.Event{
		event("before-month", time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC), time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC)),
		event("spans-into-month", time.Date(2025, 2, 27, 9, 0, 0, 0, time.UTC), time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)),
		event("same-day", time.Date(2025, 3, 12, 13, 0, 0, 0, time.UTC), time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)),
		event("other-day", time.Date(2025, 3, 13, 13, 0, 0, 0, time.UTC), time.Date(2025, 3, 13, 14, 0, 0, 0, time.UTC)),
		event("covers-all", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
	}

	testCases := []struct {
		name       string
		g          Granularity
		wantSingle []string
		wantMulti  []string
	}{
		{name: "day", g: Day, wantSingle: []string{"same-day"}, wantMulti: []string{"covers-all"}},
		{name: "week", g: Week, wantSingle: []string{"same-day", "other-day"}, wantMulti: []string{"covers-all"}},
		{name: "month", g: Month, wantSingle: []string{"same-day", "other-day"}, wantMulti: []string{"spans-into-month", "covers-all"}},
		{name: "agenda uses month window", g: Agenda, wantSingle: []string{"same-day", "other-day"}, wantMulti: []string{"spans-into-month", "covers-all"}},
		{name: "year", g: Year, wantSingle: []string{"before-month", "same-day", "other-day"}, wantMulti: []string{"spans-into-month", "covers-all"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			visible := FilterVisible(events, focus, tc.g, time.Sunday)
			assert.Equal(t, tc.wantSingle, uids(visible.Single))
			assert.Equal(t, tc.wantMulti, uids(visible.Multi))
		})
	}
}

func TestFilter_BoundariesAreInclusive(t *testing.T) {
	w := WindowFor(time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), Day, time.Sunday)
	endsAtMidnight := event("ends-at-start", time.Date(2025, 3, 11, 23, 0, 0, 0, time.UTC), w.Start)
	startsAtEnd := event("starts-at-end", w.End, w.End.Add(time.Hour))

	result := Filter([]calendar.Event{endsAtMidnight, startsAtEnd}, w)

	assert.Equal(t, []string{"ends-at-start", "starts-at-end"}, uids(result))
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	in := []calendar.Event{
		event("b", time.Date(2025, 3, 12, 13, 0, 0, 0, time.UTC), time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)),
		event("a", time.Date(2025, 1, 12, 13, 0, 0, 0, time.UTC), time.Date(2025, 1, 12, 14, 0, 0, 0, time.UTC)),
	}
	snapshot := append([]calendar.Event(nil), in...)

	out := Filter(in, WindowFor(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Month, time.Sunday))

	assert.Equal(t, snapshot, in)
	assert.Equal(t, []string{"b"}, uids(out))
}

func TestFilterVisible_EmptyInput(t *testing.T) {
	visible := FilterVisible(nil, time.Now(), Week, time.Monday)
	assert.Empty(t, visible.Single)
	assert.Empty(t, visible.Multi)
	assert.Empty(t, visible.All())
}

func TestWindowFor_WeekStart(t *testing.T) {
	wednesday := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	sunday := WindowFor(wednesday, Week, time.Sunday)
	monday := WindowFor(wednesday, Week, time.Monday)

	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), sunday.Start)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), monday.Start)
	assert.Equal(t, time.Date(2025, 3, 16, 23, 59, 59, 999999999, time.UTC), monday.End)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("week")
	require.NoError(t, err)
	assert.Equal(t, Week, g)

	_, err = ParseGranularity("fortnight")
	assert.Error(t, err)
}
