package ics

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const maxOccurrencesPerEvent = 5000

// Occurrence is one concrete instance of a VEVENT.
type Occurrence struct {
	VEvent
	// InstanceKey is empty for non-recurring events and the RFC3339 start of the
	// instance otherwise.
	InstanceKey string
}

// Expand returns the occurrences of events overlapping [from, to]. RRULE and EXDATE are
// applied and RECURRENCE-ID overrides replace the instance they point at.
func Expand(events []VEvent, from, to time.Time) []Occurrence {
	overrides := make(map[string][]VEvent)
	for _, e := range events {
		if e.RecurrenceId != nil {
			overrides[e.UID] = append(overrides[e.UID], e)
		}
	}

	occurrences := make([]Occurrence, 0)
	for _, e := range events {
		if e.RecurrenceId != nil {
			continue
		}
		if e.RRule == "" {
			if overlaps(e.Start, e.End, from, to) {
				occurrences = append(occurrences, Occurrence{VEvent: e})
			}
			continue
		}
		occurrences = append(occurrences, expandRecurring(e, overrides[e.UID], from, to)...)
	}
	return occurrences
}

func expandRecurring(e VEvent, overrides []VEvent, from, to time.Time) []Occurrence {
	r, err := rrule.StrToRRule(strings.TrimPrefix(e.RRule, "RRULE:"))
	if err != nil {
		log.Warnf("skipping %s with invalid RRULE %q: %v", e.UID, e.RRule, err)
		return nil
	}
	r.DTStart(e.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range e.ExDates {
		set.ExDate(ex.In(e.Start.Location()))
	}

	duration := e.End.Sub(e.Start)
	loc := e.Start.Location()
	starts := set.Between(from.Add(-duration).In(loc), to.In(loc), true)
	if len(starts) > maxOccurrencesPerEvent {
		log.Warnf("truncating %s to %d occurrences", e.UID, maxOccurrencesPerEvent)
		starts = starts[:maxOccurrencesPerEvent]
	}

	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		instance := e
		instance.RRule = ""
		instance.Start = start
		instance.End = start.Add(duration)
		if o, ok := findOverride(overrides, start); ok {
			instance = o
		}
		if !overlaps(instance.Start, instance.End, from, to) {
			continue
		}
		out = append(out, Occurrence{VEvent: instance, InstanceKey: start.UTC().Format(time.RFC3339)})
	}
	return out
}

func findOverride(overrides []VEvent, start time.Time) (VEvent, bool) {
	for _, o := range overrides {
		if o.RecurrenceId.Equal(start) {
			return o, true
		}
	}
	return VEvent{}, false
}

func overlaps(start, end, from, to time.Time) bool {
	return !start.After(to) && !end.Before(from)
}
