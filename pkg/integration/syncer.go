package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const eventsKeyPrefix = "calendar-integration-events:"

// The scheduler keeps this window around now warm.
const (
	syncMonthsBefore = 1
	syncMonthsAfter  = 3
)

type snapshot struct {
	From      time.Time           `json:"from"`
	To        time.Time           `json:"to"`
	FetchedAt time.Time           `json:"fetchedAt"`
	Events    []calendar.EventDTO `json:"events"`
}

// Syncer fetches integration events and keeps a snapshot per integration in the
// key-value store.
type Syncer struct {
	sources Sources
	kv      storage.KeyValue
	clock   utils.Clock
	ttl     time.Duration
}

func NewSyncer(sources Sources, kv storage.KeyValue, clock utils.Clock, ttl time.Duration) *Syncer {
	return &Syncer{sources: sources, kv: kv, clock: clock, ttl: ttl}
}

func (s *Syncer) HasSource(t Type) bool {
	_, ok := s.sources[t]
	return ok
}

// Events returns the events of integration overlapping [from, to]. A fresh snapshot
// covering the range is used as is. Otherwise the source is queried and the snapshot
// replaced.
func (s *Syncer) Events(ctx context.Context, userUid string, integration Integration, from, to time.Time) ([]calendar.Event, error) {
	if !s.HasSource(integration.Type) {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, integration.Type)
	}

	key := eventsKey(userUid, integration.Id)
	if snap, ok := s.loadSnapshot(ctx, key); ok && s.isFresh(snap) && covers(snap, from, to) {
		log.Tracef("serving %s events from snapshot", integration.Id)
		return overlapping(snapshotEvents(snap), from, to), nil
	}

	windowFrom, windowTo := s.window()
	if from.Before(windowFrom) {
		windowFrom = from
	}
	if to.After(windowTo) {
		windowTo = to
	}
	events, err := s.fetch(ctx, key, integration, windowFrom, windowTo)
	if err != nil {
		return nil, err
	}
	return overlapping(events, from, to), nil
}

// Sync refreshes the snapshot of the sync window and returns the number of events fetched.
func (s *Syncer) Sync(ctx context.Context, userUid string, integration Integration) (int, error) {
	if !s.HasSource(integration.Type) {
		return 0, fmt.Errorf("%w: %s", ErrNoSource, integration.Type)
	}
	from, to := s.window()
	events, err := s.fetch(ctx, eventsKey(userUid, integration.Id), integration, from, to)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// Forget drops the snapshot, used when an integration is disconnected.
func (s *Syncer) Forget(ctx context.Context, userUid string, integrationId string) error {
	return s.kv.Delete(ctx, eventsKey(userUid, integrationId))
}

func (s *Syncer) fetch(ctx context.Context, key string, integration Integration, from, to time.Time) ([]calendar.Event, error) {
	events, err := s.sources[integration.Type].Events(ctx, integration, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s events: %w", integration.Id, err)
	}

	snap := snapshot{From: from, To: to, FetchedAt: s.clock.Now(), Events: calendar.EventsToDTO(events)}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.kv.Save(ctx, key, data); err != nil {
		log.Warnf("failed to save snapshot of %s: %v", integration.Id, err)
	}
	return events, nil
}

func (s *Syncer) loadSnapshot(ctx context.Context, key string) (snapshot, bool) {
	data, err := s.kv.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return snapshot{}, false
	}
	if err != nil {
		log.Warnf("failed to load snapshot %s: %v", key, err)
		return snapshot{}, false
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warnf("ignoring corrupt snapshot %s: %v", key, err)
		return snapshot{}, false
	}
	return snap, true
}

func (s *Syncer) isFresh(snap snapshot) bool {
	return s.clock.Now().Sub(snap.FetchedAt) < s.ttl
}

func (s *Syncer) window() (time.Time, time.Time) {
	now := s.clock.Now()
	return now.AddDate(0, -syncMonthsBefore, 0), now.AddDate(0, syncMonthsAfter, 0)
}

func covers(snap snapshot, from, to time.Time) bool {
	return !snap.From.After(from) && !snap.To.Before(to)
}

func snapshotEvents(snap snapshot) []calendar.Event {
	events := make([]calendar.Event, 0, len(snap.Events))
	for _, dto := range snap.Events {
		e := calendar.DTOToEvent(dto)
		e.User = dto.User
		e.Integration = dto.Integration
		events = append(events, e)
	}
	return events
}

func overlapping(events []calendar.Event, from, to time.Time) []calendar.Event {
	result := make([]calendar.Event, 0, len(events))
	for _, e := range events {
		if !e.StartTime.After(to) && !e.EndTime.Before(from) {
			result = append(result, e)
		}
	}
	return result
}

func eventsKey(userUid, integrationId string) string {
	return eventsKeyPrefix + userUid + ":" + integrationId
}
