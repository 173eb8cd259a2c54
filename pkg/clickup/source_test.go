package clickup

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clickUp = integration.Integration{Id: "clickup-1", Type: integration.TypeClickUp, Name: "ClickUp", APIKey: "pk_1"}

func millis(t time.Time) *string {
	s := strconv.FormatInt(t.UnixMilli(), 10)
	return &s
}

func setupSourceTest(t *testing.T) (*Source, *ClientStub) {
	t.Helper()
	client := NewClientStub()
	return NewSource(client), client
}

func TestSource_Events(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC)
	start := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	t.Run("should convert tasks with due date across pages", func(t *testing.T) {
		// given
		source, client := setupSourceTest(t)
		client.AddWorkspace(Workspace{Id: "w1", Name: "Team"},
			[]Task{{Id: "t1", Name: "Ship", StartDate: millis(start), DueDate: millis(due), URL: "https://app.clickup.com/t/t1", Status: TaskStatus{Status: "in progress"}}},
			[]Task{{Id: "t2", Name: "Deadline", DueDate: millis(due)}, {Id: "t3", Name: "Someday"}},
		)

		// when
		events, err := source.Events(context.Background(), clickUp, from, to)

		// then
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "clickup-1:t1", events[0].UID)
		assert.Equal(t, start, events[0].StartTime)
		assert.Equal(t, due, events[0].EndTime)
		assert.True(t, events[0].IsMultiDay())
		assert.Equal(t, "[in progress] ", events[0].Description)
		assert.Equal(t, calendar.ColorPurple, events[0].Color)
		assert.Equal(t, "https://app.clickup.com/t/t1", events[0].Integration.URL)
		assert.Equal(t, due, events[1].StartTime)
		assert.Equal(t, []string{"pk_1"}, client.apiKeys)
	})

	t.Run("should require an API key", func(t *testing.T) {
		source, _ := setupSourceTest(t)

		_, err := source.Events(context.Background(), integration.Integration{Type: integration.TypeClickUp}, from, to)

		assert.ErrorIs(t, err, integration.ErrMissingCredentials)
	})

	t.Run("should return client errors", func(t *testing.T) {
		source, client := setupSourceTest(t)
		client.AddWorkspace(Workspace{Id: "w1"})
		client.tasksErr = errors.New("rate limited")

		_, err := source.Events(context.Background(), clickUp, from, to)

		assert.ErrorContains(t, err, "rate limited")
	})
}
