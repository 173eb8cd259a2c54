package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecurrence(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	_, err := ParseRecurrence("FREQ=WEEKLY;BYDAY=MO,WE", start)
	assert.NoError(t, err)

	_, err = ParseRecurrence("RRULE:FREQ=DAILY;COUNT=3", start)
	assert.NoError(t, err)

	_, err = ParseRecurrence("FREQ=SOMETIMES", start)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	standup := Event{
		UID:        "standup",
		Title:      "Standup",
		StartTime:  time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, 3, 3, 9, 15, 0, 0, time.UTC),
		Recurrence: "FREQ=DAILY;COUNT=10",
	}

	t.Run("should return occurrences inside range", func(t *testing.T) {
		from := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 3, 7, 23, 59, 59, 0, time.UTC)

		occurrences, err := Expand(standup, from, to)

		require.NoError(t, err)
		require.Len(t, occurrences, 3)
		assert.Equal(t, "standup@2025-03-05T09:00:00Z", occurrences[0].UID)
		assert.Equal(t, time.Date(2025, 3, 7, 9, 15, 0, 0, time.UTC), occurrences[2].EndTime)
		assert.Equal(t, "Standup", occurrences[1].Title)
	})

	t.Run("should include occurrence that started before range", func(t *testing.T) {
		from := time.Date(2025, 3, 4, 9, 10, 0, 0, time.UTC)
		to := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)

		occurrences, err := Expand(standup, from, to)

		require.NoError(t, err)
		require.Len(t, occurrences, 1)
		assert.Equal(t, time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC), occurrences[0].StartTime)
	})

	t.Run("should stop at count", func(t *testing.T) {
		occurrences, err := Expand(standup, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		assert.Len(t, occurrences, 10)
	})

	t.Run("should pass through plain events", func(t *testing.T) {
		plain := standup
		plain.Recurrence = ""

		inside, err := Expand(plain, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		outside, err := Expand(plain, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		assert.Equal(t, []Event{plain}, inside)
		assert.Empty(t, outside)
	})

	t.Run("should fail on invalid rule", func(t *testing.T) {
		broken := standup
		broken.Recurrence = "FREQ=NEVER"

		_, err := Expand(broken, time.Time{}, time.Now())

		assert.Error(t, err)
	})
}

func TestSplitOccurrenceUID(t *testing.T) {
	start := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	series, parsed, ok := SplitOccurrenceUID(OccurrenceUID("abc", start))
	assert.True(t, ok)
	assert.Equal(t, "abc", series)
	assert.True(t, parsed.Equal(start))

	series, _, ok = SplitOccurrenceUID("plain-uid")
	assert.False(t, ok)
	assert.Equal(t, "plain-uid", series)

	series, _, ok = SplitOccurrenceUID("someone@example.com")
	assert.False(t, ok)
	assert.Equal(t, "someone@example.com", series)
}
