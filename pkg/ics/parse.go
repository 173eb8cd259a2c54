// Package ics reads published iCalendar feeds and expands them into calendar events.
package ics

import (
	"errors"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
)

const (
	dateLayout        = "20060102"
	dateTimeLayout    = "20060102T150405"
	dateTimeUTCLayout = "20060102T150405Z"
)

// VEvent is the part of a VEVENT the calendar needs. Recurrence is not expanded here.
type VEvent struct {
	UID         string
	Summary     string
	Description string
	URL         string
	Start       time.Time
	End         time.Time
	AllDay      bool
	RRule       string
	ExDates     []time.Time
	// RecurrenceId is set on a VEVENT that overrides one instance of a recurring event.
	RecurrenceId *time.Time
}

// Parse reads every VEVENT of an ICS payload. Events that cannot be parsed are logged
// and skipped.
func Parse(r io.Reader) ([]VEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, err
	}

	events := make([]VEvent, 0)
	for _, component := range cal.Events() {
		event, err := parseVEvent(component)
		if err != nil {
			log.Warnf("skipping VEVENT: %v", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (VEvent, error) {
	var out VEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		out.URL = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return out, errors.New("missing DTSTART in " + out.UID)
	}
	start, allDay, err := parseDateProperty(startProp)
	if err != nil {
		return out, err
	}
	out.Start, out.AllDay = start, allDay

	switch endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); {
	case endProp != nil:
		if out.End, _, err = parseDateProperty(endProp); err != nil {
			return out, err
		}
	case allDay:
		out.End = start.AddDate(0, 0, 1)
	default:
		out.End = start
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseValue(strings.TrimSpace(part), tzid(p), isDate(p)); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}
	if p := ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); p != nil {
		if t, err := parseValue(p.Value, tzid(p), isDate(p)); err == nil {
			out.RecurrenceId = &t
		}
	}
	return out, nil
}

func parseDateProperty(p *ical.IANAProperty) (time.Time, bool, error) {
	allDay := isDate(p)
	t, err := parseValue(p.Value, tzid(p), allDay)
	return t, allDay, err
}

// parseValue parses a DATE or DATE-TIME value. Floating times and unknown TZIDs are read as UTC.
func parseValue(value string, tz string, date bool) (time.Time, error) {
	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			log.Debugf("unknown TZID %q, using UTC", tz)
		}
	}
	switch {
	case date:
		return time.ParseInLocation(dateLayout, value, loc)
	case strings.HasSuffix(value, "Z"):
		return time.Parse(dateTimeUTCLayout, value)
	default:
		return time.ParseInLocation(dateTimeLayout, value, loc)
	}
}

func isDate(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func tzid(p *ical.IANAProperty) string {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		return tzs[0]
	}
	return ""
}
