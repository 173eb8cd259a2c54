package ics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/integration"
	log "github.com/sirupsen/logrus"
)

var ErrMissingFeed = fmt.Errorf("%w: ICS feed URL is not configured", integration.ErrMissingCredentials)

// Source reads the events of the ICS feed configured on an integration.
type Source struct {
	client *http.Client
}

func NewSource() *Source {
	return &Source{client: &http.Client{Timeout: 15 * time.Second}}
}

func (s *Source) Events(ctx context.Context, in integration.Integration, from time.Time, to time.Time) ([]calendar.Event, error) {
	if in.FeedURL == "" {
		return nil, ErrMissingFeed
	}

	vevents, err := s.fetch(ctx, feedURL(in.FeedURL))
	if err != nil {
		return nil, err
	}

	occurrences := Expand(vevents, from, to)
	events := make([]calendar.Event, 0, len(occurrences))
	for _, o := range occurrences {
		events = append(events, toEvent(in, o))
	}
	log.Debugf("loaded %d ICS event(s) for integration %s", len(events), in.Id)
	return events, nil
}

func (s *Source) fetch(ctx context.Context, url string) ([]VEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ICS feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ICS feed returned non-OK status: %d", resp.StatusCode)
	}

	events, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ICS feed: %w", err)
	}
	return events, nil
}

// toEvent converts an occurrence. All-day events end one second before their exclusive end.
func toEvent(in integration.Integration, o Occurrence) calendar.Event {
	externalId := o.UID
	if o.InstanceKey != "" {
		externalId = o.UID + "@" + o.InstanceKey
	}
	end := o.End
	if o.AllDay && end.After(o.Start) {
		end = end.Add(-time.Second)
	}
	return calendar.Event{
		UID:         in.EventUID(externalId),
		Title:       o.Summary,
		Description: o.Description,
		StartTime:   o.Start,
		EndTime:     end,
		Color:       in.EventColor(),
		Integration: in.Ref(externalId, o.URL),
	}
}

// feedURL maps webcal:// subscriptions to https.
func feedURL(raw string) string {
	if rest, ok := strings.CutPrefix(raw, "webcal://"); ok {
		return "https://" + rest
	}
	return raw
}
