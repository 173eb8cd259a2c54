package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	occurrenceSeparator   = "@"
	maxOccurrencesPerRule = 5000
)

// ParseRecurrence validates an RRULE value. The "RRULE:" prefix is optional.
func ParseRecurrence(rule string, start time.Time) (*rrule.RRule, error) {
	option, err := rrule.StrToROption(strings.TrimPrefix(rule, "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	option.Dtstart = start
	r, err := rrule.NewRRule(*option)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	return r, nil
}

// Expand returns the occurrences of e overlapping [from, to]. A non-recurring event is
// returned as is when it overlaps. Occurrences keep the duration of e and get the UID
// "<uid>@<start RFC3339>".
func Expand(e Event, from, to time.Time) ([]Event, error) {
	if e.Recurrence == "" {
		if !e.StartTime.After(to) && !e.EndTime.Before(from) {
			return []Event{e}, nil
		}
		return []Event{}, nil
	}

	r, err := ParseRecurrence(e.Recurrence, e.StartTime)
	if err != nil {
		return nil, err
	}
	duration := e.Duration()
	loc := e.StartTime.Location()
	starts := r.Between(from.Add(-duration).In(loc), to.In(loc), true)
	if len(starts) > maxOccurrencesPerRule {
		starts = starts[:maxOccurrencesPerRule]
	}

	occurrences := make([]Event, 0, len(starts))
	for _, start := range starts {
		occurrence := e
		occurrence.UID = OccurrenceUID(e.UID, start)
		occurrence.StartTime = start
		occurrence.EndTime = start.Add(duration)
		occurrences = append(occurrences, occurrence)
	}
	return occurrences, nil
}

func OccurrenceUID(seriesUID string, start time.Time) string {
	return seriesUID + occurrenceSeparator + start.UTC().Format(time.RFC3339)
}

// SplitOccurrenceUID returns the series UID and the occurrence start of an occurrence UID.
// ok is false for plain event UIDs.
func SplitOccurrenceUID(uid string) (seriesUID string, start time.Time, ok bool) {
	i := strings.LastIndex(uid, occurrenceSeparator)
	if i < 0 {
		return uid, time.Time{}, false
	}
	start, err := time.Parse(time.RFC3339, uid[i+1:])
	if err != nil {
		return uid, time.Time{}, false
	}
	return uid[:i], start, true
}
