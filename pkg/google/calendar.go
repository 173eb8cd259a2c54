package google

import (
	"context"
	"fmt"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/integration"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	primaryCalendarId = "primary"
	dateLayout        = "2006-01-02"
)

var ErrUnauthenticated = fmt.Errorf("%w: google calendar is not authorized", integration.ErrMissingCredentials)

// Source reads the events of the user's primary Google calendar.
type Source struct {
	auth       *GoogleAuth
	calendarId string
	options    []option.ClientOption
}

func NewSource(auth *GoogleAuth, options ...option.ClientOption) *Source {
	return &Source{auth: auth, calendarId: primaryCalendarId, options: options}
}

func (s *Source) Events(ctx context.Context, in integration.Integration, from time.Time, to time.Time) ([]calendar.Event, error) {
	service, err := s.prepareGoogleService(ctx, in)
	if err != nil {
		return nil, err
	}

	events := make([]calendar.Event, 0)
	err = service.Events.List(s.calendarId).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcal.Events) error {
			for _, item := range page.Items {
				event, ok := googleEventToEvent(in, item)
				if ok {
					events = append(events, event)
				}
			}
			return nil
		})
	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func (s *Source) prepareGoogleService(ctx context.Context, in integration.Integration) (*gcal.Service, error) {
	if in.RefreshToken == "" {
		log.Debugf("integration %s has no refresh token, authentication is required", in.Id)
		return nil, ErrUnauthenticated
	}
	client := s.auth.oauthConfig.Client(ctx, &oauth2.Token{RefreshToken: in.RefreshToken})
	options := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)
	service, err := gcal.NewService(ctx, options...)
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}

// googleEventToEvent converts a Google event. Cancelled and unparsable events are skipped.
// All-day events end one second before their exclusive end date.
func googleEventToEvent(in integration.Integration, item *gcal.Event) (calendar.Event, bool) {
	if item.Status == "cancelled" || item.Start == nil || item.End == nil {
		return calendar.Event{}, false
	}
	start, err := parseEventDateTime(item.Start)
	if err != nil {
		log.Warnf("skipping Google event %s with invalid start: %v", item.Id, err)
		return calendar.Event{}, false
	}
	end, err := parseEventDateTime(item.End)
	if err != nil {
		log.Warnf("skipping Google event %s with invalid end: %v", item.Id, err)
		return calendar.Event{}, false
	}
	if item.End.DateTime == "" {
		end = end.Add(-time.Second)
	}
	if end.Before(start) {
		end = start
	}

	return calendar.Event{
		UID:         in.EventUID(item.Id),
		Title:       item.Summary,
		Description: item.Description,
		StartTime:   start,
		EndTime:     end,
		Color:       in.EventColor(),
		Integration: in.Ref(item.Id, item.HtmlLink),
	}, true
}

func parseEventDateTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	loc := time.UTC
	if dt.TimeZone != "" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	return time.ParseInLocation(dateLayout, dt.Date, loc)
}
